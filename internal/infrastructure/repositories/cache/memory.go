package cache

import (
	"coin-dashboard-service/internal/domain/interfaces"
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// el janitor de go-cache solo barre entradas con ttl; las del store no expiran
const memoryCleanupInterval = 10 * time.Minute

// MemoryCache es el backend por defecto, sobre patrickmn/go-cache.
// Se pierde al reiniciar el proceso.
type MemoryCache struct {
	items *gocache.Cache
}

func NewMemoryCache() interfaces.Cache {
	return &MemoryCache{items: gocache.New(gocache.NoExpiration, memoryCleanupInterval)}
}

// Get: una entrada vencida es indistinguible de una ausente
func (c *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := c.items.Get(key)
	if !ok {
		return "", ErrKeyNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", ErrKeyNotFound
	}
	return s, nil
}

// Set con ttl <= 0 guarda sin expiración
func (c *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.items.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.items.Delete(key)
	return nil
}

func (c *MemoryCache) Ping(ctx context.Context) error { return nil }

// Size cuenta también las entradas vencidas que el janitor no barrió todavía
func (c *MemoryCache) Size() int {
	return c.items.ItemCount()
}
