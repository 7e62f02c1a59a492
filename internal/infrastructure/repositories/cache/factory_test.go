package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFactory_CreateCache(t *testing.T) {
	ctx := context.Background()
	f := NewFactory()

	t.Run("memory", func(t *testing.T) {
		c, err := f.CreateCache(ctx, Config{Type: CacheTypeMemory})
		require.NoError(t, err)
		assert.IsType(t, &MemoryCache{}, c)
	})

	t.Run("sqlite", func(t *testing.T) {
		c, err := f.CreateCache(ctx, Config{
			Type:       CacheTypeSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "store.db"),
		})
		require.NoError(t, err)
		require.IsType(t, &SQLiteCache{}, c)
		_ = c.(*SQLiteCache).Close()
	})

	t.Run("unsupported", func(t *testing.T) {
		c, err := f.CreateCache(ctx, Config{Type: "memcached"})
		assert.Error(t, err)
		assert.Nil(t, c)
	})
}

func TestFactory_CreateRedisCache_RetriesPing(t *testing.T) {
	ctx := context.Background()
	client := new(MockRedisClient)
	client.On("Ping", mock.Anything).Return(errors.New("connection refused")).Once()
	client.On("Ping", mock.Anything).Return(nil).Once()

	f := &Factory{newRedisClient: func(*redis.Options) redisClient { return client }}
	c, err := f.CreateCache(ctx, Config{
		Type:            CacheTypeRedis,
		RedisURL:        "localhost:6379",
		ConnectAttempts: 3,
	})

	require.NoError(t, err)
	assert.IsType(t, &RedisCache{}, c)
	client.AssertNumberOfCalls(t, "Ping", 2)
}

func TestFactory_CreateRedisCache_GivesUp(t *testing.T) {
	ctx := context.Background()
	client := new(MockRedisClient)
	client.On("Ping", mock.Anything).Return(errors.New("connection refused"))
	client.On("Close").Return(nil)

	f := &Factory{newRedisClient: func(*redis.Options) redisClient { return client }}
	c, err := f.CreateCache(ctx, Config{
		Type:            CacheTypeRedis,
		RedisURL:        "localhost:6379",
		ConnectAttempts: 2,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Nil(t, c)
	client.AssertNumberOfCalls(t, "Ping", 2)
	client.AssertCalled(t, "Close")
}
