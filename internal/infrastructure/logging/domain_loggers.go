package logging

import (
	"context"
)

// domainLogger etiqueta cada entrada con su dominio (http, upstream, store, query, security)
type domainLogger struct {
	base   Logger
	domain string
}

func (d domainLogger) tag(fields Fields) Fields {
	out := make(Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[FieldDomain] = d.domain
	return out
}

func (d domainLogger) Debug(ctx context.Context, message string, fields Fields) {
	d.base.Debug(ctx, message, d.tag(fields))
}

func (d domainLogger) Info(ctx context.Context, message string, fields Fields) {
	d.base.Info(ctx, message, d.tag(fields))
}

func (d domainLogger) Warn(ctx context.Context, message string, fields Fields) {
	d.base.Warn(ctx, message, d.tag(fields))
}

func (d domainLogger) Error(ctx context.Context, message string, fields Fields) {
	d.base.Error(ctx, message, d.tag(fields))
}

func (d domainLogger) WarnWithError(ctx context.Context, message string, err error, fields Fields) {
	d.base.WarnWithError(ctx, message, err, d.tag(fields))
}

func (d domainLogger) ErrorWithError(ctx context.Context, message string, err error, fields Fields) {
	d.base.ErrorWithError(ctx, message, err, d.tag(fields))
}

func (d domainLogger) SetLevel(level LogLevel) { d.base.SetLevel(level) }
func (d domainLogger) GetLevel() LogLevel      { return d.base.GetLevel() }

// byStatus: 5xx error, 4xx warn, resto info
func (d domainLogger) byStatus(ctx context.Context, statusCode int, message string, fields Fields) {
	switch {
	case statusCode >= 500:
		d.Error(ctx, message, fields)
	case statusCode >= 400:
		d.Warn(ctx, message, fields)
	default:
		d.Info(ctx, message, fields)
	}
}

type httpLogger struct{ domainLogger }

func (l httpLogger) RequestReceived(ctx context.Context, method, path, userAgent, remoteIP string) {
	l.Debug(ctx, "HTTP request received", Fields{
		FieldHTTPMethod: method,
		FieldHTTPPath:   path,
		FieldUserAgent:  userAgent,
		FieldRemoteIP:   remoteIP,
	})
}

func (l httpLogger) RequestCompleted(ctx context.Context, method, path string, statusCode int, durationMs float64) {
	l.byStatus(ctx, statusCode, "HTTP request completed", Fields{
		FieldHTTPMethod:     method,
		FieldHTTPPath:       path,
		FieldHTTPStatusCode: statusCode,
		FieldDuration:       durationMs,
	})
}

type externalAPILogger struct{ domainLogger }

func (l externalAPILogger) RequestStarted(ctx context.Context, service, endpoint, method string) {
	l.Debug(ctx, "Upstream request started", Fields{
		FieldExternalService:  service,
		FieldExternalEndpoint: endpoint,
		FieldExternalMethod:   method,
	})
}

func (l externalAPILogger) RequestCompleted(ctx context.Context, service, endpoint string, statusCode int, durationMs float64) {
	l.byStatus(ctx, statusCode, "Upstream request completed", Fields{
		FieldExternalService:  service,
		FieldExternalEndpoint: endpoint,
		FieldExternalStatus:   statusCode,
		FieldDuration:         durationMs,
	})
}

// RequestFailed: 429 y cancelaciones son esperables, van a WARN
func (l externalAPILogger) RequestFailed(ctx context.Context, service, endpoint string, statusCode int, err error, durationMs float64) {
	fields := Fields{
		FieldExternalService:  service,
		FieldExternalEndpoint: endpoint,
		FieldExternalStatus:   statusCode,
		FieldDuration:         durationMs,
	}
	if statusCode == 429 || ctx.Err() != nil {
		l.WarnWithError(ctx, "Upstream request failed", err, fields)
		return
	}
	l.ErrorWithError(ctx, "Upstream request failed", err, fields)
}

type cacheLogger struct{ domainLogger }

func (l cacheLogger) Lookup(ctx context.Context, operation, key string, hit bool) {
	l.Debug(ctx, "Store lookup", Fields{
		FieldCacheOperation: operation,
		FieldCacheKey:       key,
		FieldCacheHit:       hit,
	})
}

func (l cacheLogger) Stored(ctx context.Context, key string) {
	l.Debug(ctx, "Store entry written", Fields{
		FieldCacheOperation: "write",
		FieldCacheKey:       key,
	})
}

// CacheError se registra en WARN: un fallo del store nunca llega al consumidor
func (l cacheLogger) CacheError(ctx context.Context, operation, key string, err error) {
	l.WarnWithError(ctx, "Store operation failed", err, Fields{
		FieldCacheOperation: operation,
		FieldCacheKey:       key,
	})
}

type queryLogger struct{ domainLogger }

func (l queryLogger) Triggered(ctx context.Context, family, kind, key string) {
	l.Debug(ctx, "Query triggered", Fields{
		FieldFamily:   family,
		FieldKind:     kind,
		FieldCacheKey: key,
	})
}

func (l queryLogger) Served(ctx context.Context, family, key, status string, fromCache bool) {
	l.Info(ctx, "Query result published", Fields{
		FieldFamily:   family,
		FieldCacheKey: key,
		FieldStatus:   status,
		FieldCacheHit: fromCache,
	})
}

func (l queryLogger) FallbackServed(ctx context.Context, family, key string, err error) {
	l.WarnWithError(ctx, "Live fetch failed, serving stale entry", err, Fields{
		FieldFamily:   family,
		FieldCacheKey: key,
	})
}

func (l queryLogger) Failed(ctx context.Context, family, key string, err error) {
	l.ErrorWithError(ctx, "Live fetch failed with no fallback", err, Fields{
		FieldFamily:   family,
		FieldCacheKey: key,
	})
}

func (l queryLogger) Discarded(ctx context.Context, family, key string, tokenID uint64) {
	l.Debug(ctx, "Superseded result discarded", Fields{
		FieldFamily:   family,
		FieldCacheKey: key,
		FieldTokenID:  tokenID,
	})
}

func (l queryLogger) ValidationFailed(ctx context.Context, input string, reason string) {
	l.Warn(ctx, "Input validation failed", Fields{
		"input":  input,
		"reason": reason,
	})
}

type securityLogger struct{ domainLogger }

func (l securityLogger) RateLimitExceeded(ctx context.Context, clientIP string, endpoint string) {
	l.Warn(ctx, "Rate limit exceeded", Fields{
		FieldClientIP: clientIP,
		"endpoint":    endpoint,
	})
}

func (l securityLogger) SuspiciousActivity(ctx context.Context, clientIP string, activity string) {
	l.Error(ctx, "Suspicious activity detected", Fields{
		FieldClientIP: clientIP,
		"activity":    activity,
	})
}
