package cache

import (
	"coin-dashboard-service/internal/domain/interfaces"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient: lo mínimo de *redis.Client que usa el backend (mockeable en tests)
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisCache guarda las entradas del store como strings en Redis.
// No agrega prefijo propio: el namespace lo pone ExpiringStore.
type RedisCache struct {
	client redisClient
}

var _ interfaces.HealthChecker = (*RedisCache)(nil)

func NewRedisCache(addr, password string, db int) interfaces.Cache {
	opts := &redis.Options{Addr: addr, Password: password, DB: db}
	return NewRedisCacheWithClient(redis.NewClient(opts))
}

func NewRedisCacheWithClient(client redisClient) *RedisCache {
	return &RedisCache{client: client}
}

// Get mapea redis.Nil a ErrKeyNotFound; el resto de errores sube envuelto
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	raw, err := r.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", ErrKeyNotFound
	case err != nil:
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

// Set con ttl <= 0 deja la key sin expiración (el store maneja la edad)
func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, max(ttl, 0)).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
