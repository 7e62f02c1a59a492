package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteCache persists keys in a single kv table so cached entries,
// the watchlist and the theme survive restarts.
type SQLiteCache struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteCache opens (or creates) the database at path with WAL enabled.
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// a single connection serialises writers and keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &SQLiteCache{db: db, now: time.Now}, nil
}

// Get retrieves a value; expires_at = 0 means the row never expires.
func (s *SQLiteCache) Get(ctx context.Context, key string) (string, error) {
	var value string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, "SELECT value, expires_at FROM kv WHERE key = ?", key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key %s: %w", key, err)
	}

	if expiresAt > 0 && s.now().UnixMilli() > expiresAt {
		_ = s.Delete(ctx, key)
		return "", ErrKeyExpired
	}

	return value, nil
}

// Set upserts a value.
func (s *SQLiteCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	now := s.now()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).UnixMilli()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value, expires_at, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, expires_at=excluded.expires_at, updated_at=excluded.updated_at",
		key, value, expiresAt, now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes a key.
func (s *SQLiteCache) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	return err
}

// Ping checks the database handle.
func (s *SQLiteCache) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Size returns the number of stored keys.
func (s *SQLiteCache) Size(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM kv").Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteCache) Close() error {
	return s.db.Close()
}
