package cache

import (
	"coin-dashboard-service/internal/domain/interfaces"
	"coin-dashboard-service/internal/infrastructure/logging"
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"
)

// CacheType represents the type of backend implementation
type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
	CacheTypeSQLite CacheType = "sqlite"
)

const (
	redisPingTimeout = 2 * time.Second
	redisRetryDelay  = 200 * time.Millisecond
)

// Config holds backend configuration options
type Config struct {
	Type            CacheType
	RedisURL        string
	RedisDB         int
	Password        string
	ConnectAttempts uint
	SQLitePath      string
}

// Factory provides methods to create backend instances
type Factory struct {
	newRedisClient func(*redis.Options) redisClient
}

// NewFactory creates a new backend factory
func NewFactory() *Factory {
	return &Factory{
		newRedisClient: func(opts *redis.Options) redisClient { return redis.NewClient(opts) },
	}
}

// CreateCache creates a backend based on configuration
func (f *Factory) CreateCache(ctx context.Context, config Config) (interfaces.Cache, error) {
	switch config.Type {
	case CacheTypeMemory:
		logging.Info(ctx, "Creating memory store backend", logging.Fields{
			"type": "memory",
		})
		return NewMemoryCache(), nil

	case CacheTypeRedis:
		logging.Info(ctx, "Creating Redis store backend", logging.Fields{
			"type":     "redis",
			"addr":     config.RedisURL,
			"database": config.RedisDB,
		})
		return f.createRedisCache(ctx, config)

	case CacheTypeSQLite:
		logging.Info(ctx, "Creating SQLite store backend", logging.Fields{
			"type": "sqlite",
			"path": config.SQLitePath,
		})
		c, err := NewSQLiteCache(config.SQLitePath)
		if err != nil {
			return nil, err
		}
		return c, nil

	default:
		return nil, fmt.Errorf("unsupported store backend: %s", config.Type)
	}
}

// createRedisCache connects to Redis, retrying the initial ping with backoff
func (f *Factory) createRedisCache(ctx context.Context, config Config) (interfaces.Cache, error) {
	client := f.newRedisClient(&redis.Options{
		Addr:     config.RedisURL,
		Password: config.Password,
		DB:       config.RedisDB,
	})

	attempts := config.ConnectAttempts
	if attempts == 0 {
		attempts = 1
	}

	err := retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
			defer cancel()
			return client.Ping(pingCtx).Err()
		},
		retry.Attempts(attempts),
		retry.Delay(redisRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logging.Warn(ctx, "Redis connection attempt failed", logging.Fields{
				"attempt":      n + 1,
				"max_attempts": attempts,
				"addr":         config.RedisURL,
				"error":        err.Error(),
			})
		}),
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", config.RedisURL, err)
	}

	logging.Info(ctx, "Redis connection established successfully", logging.Fields{
		"addr":     config.RedisURL,
		"database": config.RedisDB,
	})
	return NewRedisCacheWithClient(client), nil
}
