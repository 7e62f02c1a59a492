package ratelimit

import (
	"math"
	"sync"
	"time"
)

// TokenBucket limita la API entrante, un bucket por cliente.
// El pacing hacia CoinGecko usa rate.Limiter (ver NewPerMinuteLimiter).
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64 // tokens/segundo
	updatedAt  time.Time
	now        func() time.Time
}

// NewTokenBucket arranca lleno
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return newTokenBucketWithClock(capacity, refillRate, time.Now)
}

func newTokenBucketWithClock(capacity int, refillRate float64, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillRate,
		updatedAt:  now(),
		now:        now,
	}
}

func (tb *TokenBucket) Allow() bool { return tb.AllowN(1) }

// AllowN consume n tokens solo si están todos disponibles
func (tb *TokenBucket) AllowN(n int) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.advance()
	if tb.tokens < float64(n) {
		return false
	}
	tb.tokens -= float64(n)
	return true
}

func (tb *TokenBucket) Tokens() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.advance()
	return int(tb.tokens)
}

// advance acredita los tokens del tiempo transcurrido. Requiere tb.mu.
func (tb *TokenBucket) advance() {
	now := tb.now()
	if elapsed := now.Sub(tb.updatedAt); elapsed > 0 {
		tb.tokens = math.Min(tb.capacity, tb.tokens+elapsed.Seconds()*tb.refillRate)
		tb.updatedAt = now
	}
}

func (tb *TokenBucket) full(before time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.tokens >= tb.capacity && tb.updatedAt.Before(before)
}

const (
	sweepEvery = 10 * time.Minute
	idleAfter  = 30 * time.Minute
)

// RateLimiterCollection mantiene un bucket por cliente.
// Los buckets llenos e inactivos se barren cada sweepEvery.
type RateLimiterCollection struct {
	mu         sync.Mutex
	buckets    map[string]*TokenBucket
	capacity   int
	refillRate float64
	lastSweep  time.Time
}

func NewRateLimiterCollection(capacity int, refillRate float64) *RateLimiterCollection {
	return &RateLimiterCollection{
		buckets:    map[string]*TokenBucket{},
		capacity:   capacity,
		refillRate: refillRate,
		lastSweep:  time.Now(),
	}
}

func (c *RateLimiterCollection) Allow(clientID string) bool {
	return c.bucket(clientID).Allow()
}

func (c *RateLimiterCollection) Tokens(clientID string) int {
	return c.bucket(clientID).Tokens()
}

func (c *RateLimiterCollection) bucket(clientID string) *TokenBucket {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.buckets[clientID]
	if !ok {
		b = NewTokenBucket(c.capacity, c.refillRate)
		c.buckets[clientID] = b
	}

	if now := time.Now(); now.Sub(c.lastSweep) >= sweepEvery {
		cutoff := now.Add(-idleAfter)
		for id, other := range c.buckets {
			if id != clientID && other.full(cutoff) {
				delete(c.buckets, id)
			}
		}
		c.lastSweep = now
	}
	return b
}

func (c *RateLimiterCollection) Stats() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return map[string]interface{}{
		"total_clients": len(c.buckets),
		"capacity":      c.capacity,
		"refill_rate":   c.refillRate,
	}
}
