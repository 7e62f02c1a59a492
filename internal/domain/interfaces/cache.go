package interfaces

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a raw string key/value backend. A ttl <= 0 stores the value without expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// HealthChecker is implemented by backends that can report connectivity.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ExpiringStore stores JSON payloads stamped with their write time.
// Reads report absence instead of failing; writes are best-effort.
type ExpiringStore interface {
	Read(ctx context.Context, key string, maxAge time.Duration) (json.RawMessage, bool)
	ReadAnyAge(ctx context.Context, key string) (json.RawMessage, bool)
	Write(ctx context.Context, key string, payload any)
	Ping(ctx context.Context) error
}
