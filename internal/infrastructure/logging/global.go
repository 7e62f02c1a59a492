package logging

import (
	"context"
	"fmt"
	"sync"
)

// LoggerSet agrupa el logger base y sus vistas por dominio
type LoggerSet struct {
	Base        Logger
	HTTP        HTTPLogger
	ExternalAPI ExternalAPILogger
	Cache       CacheLogger
	Query       QueryLogger
	Security    SecurityLogger
}

// NewLoggerSet construye todas las vistas sobre un único StructuredLogger
func NewLoggerSet(config *LoggerConfig) (*LoggerSet, error) {
	base, err := NewStructuredLogger(config)
	if err != nil {
		return nil, fmt.Errorf("build base logger: %w", err)
	}
	return newLoggerSet(base), nil
}

func newLoggerSet(base Logger) *LoggerSet {
	return &LoggerSet{
		Base:        base,
		HTTP:        httpLogger{domainLogger{base, "http"}},
		ExternalAPI: externalAPILogger{domainLogger{base, "upstream"}},
		Cache:       cacheLogger{domainLogger{base, "store"}},
		Query:       queryLogger{domainLogger{base, "query"}},
		Security:    securityLogger{domainLogger{base, "security"}},
	}
}

var (
	globalMu  sync.RWMutex
	globalSet *LoggerSet
)

// InitializeGlobalLoggers reemplaza el set global; se llama una vez desde main
func InitializeGlobalLoggers(config *LoggerConfig) error {
	set, err := NewLoggerSet(config)
	if err != nil {
		return fmt.Errorf("initialize global loggers: %w", err)
	}
	globalMu.Lock()
	globalSet = set
	globalMu.Unlock()
	return nil
}

// GetGlobalLoggers devuelve el set global. Sin inicializar, usa DefaultConfig
// para que tests y paquetes sueltos puedan loguear igual.
func GetGlobalLoggers() *LoggerSet {
	globalMu.RLock()
	set := globalSet
	globalMu.RUnlock()
	if set != nil {
		return set
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalSet == nil {
		globalSet, _ = NewLoggerSet(DefaultConfig())
	}
	return globalSet
}

func Debug(ctx context.Context, message string, fields Fields) {
	GetGlobalLoggers().Base.Debug(ctx, message, fields)
}

func Info(ctx context.Context, message string, fields Fields) {
	GetGlobalLoggers().Base.Info(ctx, message, fields)
}

func Warn(ctx context.Context, message string, fields Fields) {
	GetGlobalLoggers().Base.Warn(ctx, message, fields)
}

func Error(ctx context.Context, message string, fields Fields) {
	GetGlobalLoggers().Base.Error(ctx, message, fields)
}

func WarnWithError(ctx context.Context, message string, err error, fields Fields) {
	GetGlobalLoggers().Base.WarnWithError(ctx, message, err, fields)
}

func ErrorWithError(ctx context.Context, message string, err error, fields Fields) {
	GetGlobalLoggers().Base.ErrorWithError(ctx, message, err, fields)
}

// HTTPRequest cierra un request entrante; la duración sale de response_time_ms
// o, si no viene, del start time guardado en el contexto
func HTTPRequest(ctx context.Context, method, path string, statusCode int, fields Fields) {
	durationMs, ok := fields["response_time_ms"].(float64)
	if !ok {
		if d, isInt := fields["response_time_ms"].(int64); isInt {
			durationMs, ok = float64(d), true
		}
	}
	if !ok {
		if start := GetStartTime(ctx); !start.IsZero() {
			durationMs = msSince(start)
		}
	}
	GetGlobalLoggers().HTTP.RequestCompleted(ctx, method, path, statusCode, durationMs)
}

func HTTP() HTTPLogger               { return GetGlobalLoggers().HTTP }
func ExternalAPI() ExternalAPILogger { return GetGlobalLoggers().ExternalAPI }
func Cache() CacheLogger             { return GetGlobalLoggers().Cache }
func Query() QueryLogger             { return GetGlobalLoggers().Query }
func Security() SecurityLogger       { return GetGlobalLoggers().Security }
