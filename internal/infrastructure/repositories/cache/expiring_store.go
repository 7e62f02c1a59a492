package cache

import (
	"coin-dashboard-service/internal/domain/entities"
	"coin-dashboard-service/internal/domain/interfaces"
	"coin-dashboard-service/internal/infrastructure/logging"
	"coin-dashboard-service/internal/infrastructure/metrics"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Entry is the stored envelope: the payload and its write time in epoch millis.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// StoredAt returns the write time of the entry.
func (e Entry) StoredAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// ExpiringStore wraps a backend with write-time stamping and freshness checks.
// Entries never expire physically; freshness is decided at read time. Every
// backend or serialization failure is logged and reported as a miss.
type ExpiringStore struct {
	backend   interfaces.Cache
	namespace string
	now       func() time.Time
}

// StoreOption configures an ExpiringStore
type StoreOption func(*ExpiringStore)

// WithNamespace prefixes every key before it reaches the backend
func WithNamespace(namespace string) StoreOption {
	return func(s *ExpiringStore) { s.namespace = namespace }
}

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) StoreOption {
	return func(s *ExpiringStore) { s.now = now }
}

// NewExpiringStore creates a store over backend
func NewExpiringStore(backend interfaces.Cache, opts ...StoreOption) *ExpiringStore {
	s := &ExpiringStore{
		backend: backend,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the payload when present and now-storedAt <= maxAge.
func (s *ExpiringStore) Read(ctx context.Context, key string, maxAge time.Duration) (json.RawMessage, bool) {
	entry, ok := s.lookup(ctx, "read", key)
	if !ok {
		return nil, false
	}

	if s.now().UnixMilli()-entry.Timestamp > maxAge.Milliseconds() {
		metrics.RecordStoreOperation("read", "stale")
		logging.Cache().Lookup(ctx, "read", key, false)
		return nil, false
	}

	metrics.RecordStoreOperation("read", "hit")
	logging.Cache().Lookup(ctx, "read", key, true)
	return entry.Data, true
}

// ReadAnyAge returns the payload regardless of its age.
func (s *ExpiringStore) ReadAnyAge(ctx context.Context, key string) (json.RawMessage, bool) {
	entry, ok := s.lookup(ctx, "read_any", key)
	if !ok {
		return nil, false
	}

	metrics.RecordStoreOperation("read_any", "hit")
	logging.Cache().Lookup(ctx, "read_any", key, true)
	return entry.Data, true
}

// Lookup returns the whole entry regardless of its age.
func (s *ExpiringStore) Lookup(ctx context.Context, key string) (Entry, bool) {
	return s.lookup(ctx, "lookup", key)
}

// Write replaces the entry under key with payload stamped with the current time.
// It never fails: errors are logged and the write is skipped.
func (s *ExpiringStore) Write(ctx context.Context, key string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.storageFailure(ctx, "write", key, fmt.Errorf("%w: encode payload: %w", entities.ErrStorage, err))
		return
	}

	raw, err := json.Marshal(Entry{Data: data, Timestamp: s.now().UnixMilli()})
	if err != nil {
		s.storageFailure(ctx, "write", key, fmt.Errorf("%w: encode entry: %w", entities.ErrStorage, err))
		return
	}

	if err := s.backend.Set(ctx, s.namespace+key, string(raw), 0); err != nil {
		s.storageFailure(ctx, "write", key, fmt.Errorf("%w: %w", entities.ErrStorage, err))
		return
	}

	metrics.RecordStoreOperation("write", "success")
	logging.Cache().Stored(ctx, key)
}

// Ping reports backend connectivity when the backend supports it.
func (s *ExpiringStore) Ping(ctx context.Context) error {
	if hc, ok := s.backend.(interfaces.HealthChecker); ok {
		return hc.Ping(ctx)
	}
	return nil
}

func (s *ExpiringStore) lookup(ctx context.Context, operation, key string) (Entry, bool) {
	raw, err := s.backend.Get(ctx, s.namespace+key)
	if err != nil {
		if IsMiss(err) {
			metrics.RecordStoreOperation(operation, "miss")
			logging.Cache().Lookup(ctx, operation, key, false)
		} else {
			s.storageFailure(ctx, operation, key, fmt.Errorf("%w: %w", entities.ErrStorage, err))
		}
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.Data == nil {
		if err == nil {
			err = fmt.Errorf("entry has no data")
		}
		s.storageFailure(ctx, operation, key, fmt.Errorf("%w: decode entry: %w", entities.ErrStorage, err))
		return Entry{}, false
	}

	return entry, true
}

func (s *ExpiringStore) storageFailure(ctx context.Context, operation, key string, err error) {
	metrics.RecordStoreOperation(operation, "error")
	logging.Cache().CacheError(ctx, operation, key, err)
}
