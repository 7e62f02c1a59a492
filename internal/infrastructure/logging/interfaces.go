package logging

import (
	"context"
)

// Logger es el contrato de logging estructurado del servicio.
// Los campos del request (request_id, duración) salen del contexto.
type Logger interface {
	Debug(ctx context.Context, message string, fields Fields)
	Info(ctx context.Context, message string, fields Fields)
	Warn(ctx context.Context, message string, fields Fields)
	Error(ctx context.Context, message string, fields Fields)

	WarnWithError(ctx context.Context, message string, err error, fields Fields)
	ErrorWithError(ctx context.Context, message string, err error, fields Fields)

	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

// HTTPLogger covers the inbound API
type HTTPLogger interface {
	Logger
	RequestReceived(ctx context.Context, method, path, userAgent, remoteIP string)
	RequestCompleted(ctx context.Context, method, path string, statusCode int, durationMs float64)
}

// ExternalAPILogger covers calls to the market data provider
type ExternalAPILogger interface {
	Logger
	RequestStarted(ctx context.Context, service, endpoint, method string)
	RequestCompleted(ctx context.Context, service, endpoint string, statusCode int, durationMs float64)
	RequestFailed(ctx context.Context, service, endpoint string, statusCode int, err error, durationMs float64)
}

// CacheLogger covers the expiring store and its backends
type CacheLogger interface {
	Logger
	Lookup(ctx context.Context, operation, key string, hit bool)
	Stored(ctx context.Context, key string)
	CacheError(ctx context.Context, operation, key string, err error)
}

// QueryLogger sigue las transiciones de cada familia de consultas
type QueryLogger interface {
	Logger
	Triggered(ctx context.Context, family, kind, key string)
	Served(ctx context.Context, family, key, status string, fromCache bool)
	FallbackServed(ctx context.Context, family, key string, err error)
	Failed(ctx context.Context, family, key string, err error)
	Discarded(ctx context.Context, family, key string, tokenID uint64)
	ValidationFailed(ctx context.Context, input string, reason string)
}

// SecurityLogger covers inbound abuse signals
type SecurityLogger interface {
	Logger
	RateLimitExceeded(ctx context.Context, clientIP string, endpoint string)
	SuspiciousActivity(ctx context.Context, clientIP string, activity string)
}
