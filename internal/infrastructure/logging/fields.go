package logging

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Fields son los campos estructurados de una entrada
type Fields map[string]interface{}

// LogLevel es el nivel de una entrada
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// Campos comunes
const (
	FieldTimestamp   = "timestamp"
	FieldLevel       = "level"
	FieldMessage     = "message"
	FieldRequestID   = "request_id"
	FieldService     = "service"
	FieldVersion     = "version"
	FieldEnvironment = "environment"
	FieldDomain      = "domain"
	FieldError       = "error"
	FieldErrorType   = "error_type"
	FieldDuration    = "duration_ms"
)

// HTTP y upstream
const (
	FieldHTTPMethod       = "http_method"
	FieldHTTPPath         = "http_path"
	FieldHTTPStatusCode   = "http_status_code"
	FieldUserAgent        = "user_agent"
	FieldRemoteIP         = "remote_ip"
	FieldExternalService  = "external_service"
	FieldExternalEndpoint = "external_endpoint"
	FieldExternalMethod   = "external_method"
	FieldExternalStatus   = "external_status_code"
)

// Store y familias de consultas
const (
	FieldCacheOperation = "cache_operation"
	FieldCacheKey       = "cache_key"
	FieldCacheHit       = "cache_hit"
	FieldFamily         = "family"
	FieldKind           = "kind"
	FieldStatus         = "status"
	FieldCurrency       = "currency"
	FieldCoinID         = "coin_id"
	FieldTokenID        = "token_id"
	FieldClientIP       = "client_ip"
)

// requestMeta viaja en el contexto de cada request HTTP
type requestMeta struct {
	id        string
	startTime time.Time
	userAgent string
	remoteIP  string
}

type metaKey struct{}

func metaFrom(ctx context.Context) requestMeta {
	if ctx == nil {
		return requestMeta{}
	}
	m, _ := ctx.Value(metaKey{}).(requestMeta)
	return m
}

func withMeta(ctx context.Context, update func(*requestMeta)) context.Context {
	m := metaFrom(ctx)
	update(&m)
	return context.WithValue(ctx, metaKey{}, m)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withMeta(ctx, func(m *requestMeta) { m.id = requestID })
}

func WithStartTime(ctx context.Context, startTime time.Time) context.Context {
	return withMeta(ctx, func(m *requestMeta) { m.startTime = startTime })
}

func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return withMeta(ctx, func(m *requestMeta) { m.userAgent = userAgent })
}

func WithRemoteIP(ctx context.Context, remoteIP string) context.Context {
	return withMeta(ctx, func(m *requestMeta) { m.remoteIP = remoteIP })
}

func GetRequestID(ctx context.Context) string    { return metaFrom(ctx).id }
func GetStartTime(ctx context.Context) time.Time { return metaFrom(ctx).startTime }
func GetUserAgent(ctx context.Context) string    { return metaFrom(ctx).userAgent }
func GetRemoteIP(ctx context.Context) string     { return metaFrom(ctx).remoteIP }

// withError copia fields y agrega el error; nunca muta el mapa del caller
func withError(fields Fields, err error) Fields {
	out := make(Fields, len(fields)+2)
	for k, v := range fields {
		out[k] = v
	}
	if err != nil {
		out[FieldError] = err.Error()
		out[FieldErrorType] = errorType(err)
	}
	return out
}

// errorType devuelve el tipo Go del error más interno
func errorType(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return fmt.Sprintf("%T", err)
		}
		err = next
	}
}
