package services

import (
	"coin-dashboard-service/internal/domain/entities"
	"coin-dashboard-service/internal/domain/interfaces"
	"coin-dashboard-service/internal/infrastructure/logging"
	"coin-dashboard-service/internal/infrastructure/metrics"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNothingToRetry is returned by Retry before the family ever loaded.
var ErrNothingToRetry = errors.New("nothing to retry")

// FetchFunc performs the live request for a descriptor.
type FetchFunc[T any] func(ctx context.Context, d entities.Descriptor) (T, error)

// FamilyDeps are the collaborators shared by every family.
type FamilyDeps struct {
	Store     interfaces.ExpiringStore
	Windows   entities.FreshnessWindows
	Publisher interfaces.StatePublisher
	Now       func() time.Time
}

// Family runs the cache-then-fetch state machine for one query stream:
// IDLE -> LOADING -> SUCCEEDED | FAILED_WITH_FALLBACK | FAILED_EMPTY.
// A result is written and published only while its token is still active,
// and the check, the write and the publish happen under one lock.
type Family[T any] struct {
	name       entities.Family
	deps       FamilyDeps
	controller *CancellationController
	fetch      FetchFunc[T]
	empty      func() T
	logger     logging.QueryLogger

	mu    sync.Mutex
	state entities.QueryResult[T]
	last  *entities.Descriptor
}

// NewFamily creates an IDLE family. empty builds the data published on FAILED_EMPTY.
func NewFamily[T any](name entities.Family, deps FamilyDeps, fetch FetchFunc[T], empty func() T) *Family[T] {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Windows == nil {
		deps.Windows = entities.DefaultFreshnessWindows()
	}

	return &Family[T]{
		name:       name,
		deps:       deps,
		controller: NewCancellationController(),
		fetch:      fetch,
		empty:      empty,
		logger:     logging.Query(),
		state: entities.QueryResult[T]{
			Data:   empty(),
			Status: entities.StatusIdle,
		},
	}
}

func (f *Family[T]) Name() entities.Family { return f.name }

// Snapshot returns the current published state
func (f *Family[T]) Snapshot() entities.QueryResult[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Status returns the current state machine state
func (f *Family[T]) Status() entities.QueryStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Status
}

// LastDescriptor returns the descriptor of the latest trigger, if any
func (f *Family[T]) LastDescriptor() (entities.Descriptor, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil {
		return entities.Descriptor{}, false
	}
	return *f.last, true
}

// Load triggers the family for d and blocks until the attempt settles. The
// attempt is detached from ctx cancellation: only a newer trigger, Clear or
// Abort can cancel it. The returned state is the family snapshot after the
// attempt, which belongs to a newer attempt when this one was superseded.
func (f *Family[T]) Load(ctx context.Context, d entities.Descriptor) entities.QueryResult[T] {
	return f.run(f.begin(ctx, d), d)
}

// begin supersede el intento activo y registra d como última consulta.
// Los llamadores que derivan d de estado compartido lo invocan bajo su propio lock.
func (f *Family[T]) begin(ctx context.Context, d entities.Descriptor) *Token {
	token := f.controller.Begin(context.WithoutCancel(ctx))
	f.remember(d)
	return token
}

// run ejecuta el intento de token hasta que se resuelve
func (f *Family[T]) run(token *Token, d entities.Descriptor) entities.QueryResult[T] {
	defer f.controller.Finish(token)
	tctx := token.Context()

	key := d.CacheKey()
	f.logger.Triggered(tctx, string(f.name), string(d.Kind), key)

	window, cacheable := f.deps.Windows.Window(d.Kind)
	if cacheable {
		if raw, ok := f.deps.Store.Read(tctx, key, window); ok {
			if data, err := decode[T](raw); err == nil {
				if f.publishIfActive(tctx, token, d, key, func(s *entities.QueryResult[T]) {
					s.Data = data
					s.Status = entities.StatusSucceeded
				}) {
					f.logger.Served(tctx, string(f.name), key, string(entities.StatusSucceeded), true)
				}
				return f.Snapshot()
			}
		}
	}

	if !f.publishIfActive(tctx, token, d, key, func(s *entities.QueryResult[T]) {
		s.Loading = true
		s.Status = entities.StatusLoading
	}) {
		return f.Snapshot()
	}

	data, err := f.fetch(tctx, d)
	if err == nil {
		published := f.commitIfActive(tctx, token, key, cacheable, func() {
			f.state.Data = data
			f.state.Status = entities.StatusSucceeded
		}, d)
		if published {
			f.logger.Served(tctx, string(f.name), key, string(entities.StatusSucceeded), false)
		}
		return f.Snapshot()
	}

	if errors.Is(err, entities.ErrCancelled) || errors.Is(err, context.Canceled) || !f.controller.IsActive(token) {
		f.discard(tctx, key, token)
		return f.Snapshot()
	}

	if raw, ok := f.deps.Store.ReadAnyAge(tctx, key); ok {
		if fallback, derr := decode[T](raw); derr == nil {
			if f.publishIfActive(tctx, token, d, key, func(s *entities.QueryResult[T]) {
				s.Data = fallback
				s.Status = entities.StatusFailedWithFallback
			}) {
				metrics.RecordFallbackActivation(string(f.name), fallbackReason(err))
				f.logger.FallbackServed(tctx, string(f.name), key, err)
			}
			return f.Snapshot()
		}
	}

	msg := entities.UserMessage(err)
	if f.publishIfActive(tctx, token, d, key, func(s *entities.QueryResult[T]) {
		s.Data = f.empty()
		s.Error = &msg
		s.Status = entities.StatusFailedEmpty
	}) {
		f.logger.Failed(tctx, string(f.name), key, err)
	}
	return f.Snapshot()
}

// Resolve publishes data for d as SUCCEEDED without touching the store or
// the network. It supersedes any attempt in flight.
func (f *Family[T]) Resolve(ctx context.Context, d entities.Descriptor, data T) entities.QueryResult[T] {
	token := f.controller.Begin(context.WithoutCancel(ctx))
	defer f.controller.Finish(token)

	f.remember(d)
	f.publishIfActive(token.Context(), token, d, d.CacheKey(), func(s *entities.QueryResult[T]) {
		s.Data = data
		s.Status = entities.StatusSucceeded
	})
	return f.Snapshot()
}

// Retry reloads the latest descriptor
func (f *Family[T]) Retry(ctx context.Context) (entities.QueryResult[T], error) {
	d, ok := f.LastDescriptor()
	if !ok {
		return f.Snapshot(), fmt.Errorf("%w: %s has not loaded yet", ErrNothingToRetry, f.name)
	}
	return f.Load(ctx, d), nil
}

// Clear cancels the attempt in flight and publishes empty data in loading state.
func (f *Family[T]) Clear() {
	f.controller.Abort()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Data = f.empty()
	f.state.Loading = true
	f.state.Error = nil
	f.state.Status = entities.StatusLoading
	f.state.UpdatedAt = f.deps.Now()
	f.publishLocked()
}

// Abort cancels the attempt in flight, if any
func (f *Family[T]) Abort() {
	f.controller.Abort()
}

func (f *Family[T]) remember(d entities.Descriptor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dc := d
	f.last = &dc
}

// publishIfActive applies mutate on top of a reset loading/error state and
// publishes it, unless token was superseded.
func (f *Family[T]) publishIfActive(ctx context.Context, token *Token, d entities.Descriptor, key string, mutate func(*entities.QueryResult[T])) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.controller.IsActive(token) {
		f.discardLocked(ctx, key, token)
		return false
	}

	dc := d
	f.state.Loading = false
	f.state.Error = nil
	f.state.Descriptor = &dc
	mutate(&f.state)
	f.state.UpdatedAt = f.deps.Now()
	f.publishLocked()
	return true
}

// commitIfActive writes the fresh data to the store and publishes it as one step
func (f *Family[T]) commitIfActive(ctx context.Context, token *Token, key string, cacheable bool, apply func(), d entities.Descriptor) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.controller.IsActive(token) {
		f.discardLocked(ctx, key, token)
		return false
	}

	apply()
	if cacheable {
		f.deps.Store.Write(ctx, key, f.state.Data)
	}

	dc := d
	f.state.Loading = false
	f.state.Error = nil
	f.state.Descriptor = &dc
	f.state.UpdatedAt = f.deps.Now()
	f.publishLocked()
	return true
}

func (f *Family[T]) discard(ctx context.Context, key string, token *Token) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discardLocked(ctx, key, token)
}

func (f *Family[T]) discardLocked(ctx context.Context, key string, token *Token) {
	metrics.RecordSupersededResult(string(f.name))
	f.logger.Discarded(ctx, string(f.name), key, token.ID())
}

func (f *Family[T]) publishLocked() {
	metrics.RecordFamilyTransition(string(f.name), string(f.state.Status))
	if f.deps.Publisher != nil {
		f.deps.Publisher.Publish(f.name, f.state)
	}
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, entities.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, entities.ErrCoinNotFound):
		return "not_found"
	default:
		return "upstream"
	}
}
