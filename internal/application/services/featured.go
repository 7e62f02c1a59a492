package services

import (
	"coin-dashboard-service/internal/domain/entities"
	"coin-dashboard-service/internal/domain/interfaces"
	"coin-dashboard-service/internal/infrastructure/logging"
	"coin-dashboard-service/internal/infrastructure/metrics"
	"context"
	"math/rand"
	"sync"
	"time"
)

// FeaturedRotator samples a few ticker coins for the hero section on a fixed interval.
type FeaturedRotator struct {
	source    func() []entities.MarketCoin
	size      int
	interval  time.Duration
	publisher interfaces.StatePublisher

	mu      sync.Mutex
	rng     *rand.Rand
	current []entities.MarketCoin
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewFeaturedRotator(source func() []entities.MarketCoin, size int, interval time.Duration, publisher interfaces.StatePublisher) *FeaturedRotator {
	return &FeaturedRotator{
		source:    source,
		size:      size,
		interval:  interval,
		publisher: publisher,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		current:   []entities.MarketCoin{},
	}
}

// Start rotates once immediately and then on every tick until Stop. Calling
// Start on a running rotator does nothing.
func (r *FeaturedRotator) Start(ctx context.Context) {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	logging.Info(ctx, "Featured rotation started", logging.Fields{
		"interval_ms": r.interval.Milliseconds(),
		"size":        r.size,
	})

	r.Rotate()
	go r.loop(loopCtx, done)
}

func (r *FeaturedRotator) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Rotate()
		}
	}
}

// Stop ends the rotation and waits for the loop to exit
func (r *FeaturedRotator) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the rotation loop is active
func (r *FeaturedRotator) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Rotate picks a new random sample of distinct coins. With an empty source
// the previous sample is kept.
func (r *FeaturedRotator) Rotate() []entities.MarketCoin {
	coins := r.source()

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(coins) == 0 {
		return append([]entities.MarketCoin(nil), r.current...)
	}

	n := r.size
	if n > len(coins) {
		n = len(coins)
	}
	sample := make([]entities.MarketCoin, 0, n)
	for _, i := range r.rng.Perm(len(coins))[:n] {
		sample = append(sample, coins[i])
	}
	r.current = sample

	metrics.RecordFeaturedRotation()
	if r.publisher != nil {
		r.publisher.Publish(entities.FamilyFeatured, append([]entities.MarketCoin(nil), sample...))
	}
	return append([]entities.MarketCoin(nil), sample...)
}

// Current returns the latest sample
func (r *FeaturedRotator) Current() []entities.MarketCoin {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.MarketCoin{}, r.current...)
}
