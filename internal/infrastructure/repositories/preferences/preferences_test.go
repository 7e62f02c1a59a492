package preferences

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"coin-dashboard-service/internal/domain/entities"
	"coin-dashboard-service/internal/domain/interfaces"
	"coin-dashboard-service/internal/infrastructure/repositories/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenBackend struct{}

func (brokenBackend) Get(context.Context, string) (string, error) { return "", errors.New("io error") }
func (brokenBackend) Set(context.Context, string, string, time.Duration) error {
	return errors.New("io error")
}
func (brokenBackend) Delete(context.Context, string) error { return nil }

func TestWatchlist_ToggleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemoryCache()
	repo := NewWatchlistRepository(ctx, backend, "coin_dash:")

	_, _, err := repo.Toggle(ctx, "bitcoin")
	require.NoError(t, err)
	_, _, err = repo.Toggle(ctx, "ethereum")
	require.NoError(t, err)
	original := repo.List()

	ids, added, err := repo.Toggle(ctx, "solana")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"bitcoin", "ethereum", "solana"}, ids)

	ids, added, err = repo.Toggle(ctx, "solana")
	require.NoError(t, err)
	assert.False(t, added)
	assert.ElementsMatch(t, original, ids)
	assert.False(t, repo.Contains("solana"))
}

func TestWatchlist_PersistsAcrossSessions(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemoryCache()

	first := NewWatchlistRepository(ctx, backend, "coin_dash:")
	_, _, _ = first.Toggle(ctx, "bitcoin")
	_, _, _ = first.Toggle(ctx, "dogecoin")

	raw, err := backend.Get(ctx, "coin_dash:watchlist")
	require.NoError(t, err)
	assert.JSONEq(t, `["bitcoin","dogecoin"]`, raw)

	second := NewWatchlistRepository(ctx, backend, "coin_dash:")
	assert.Equal(t, []string{"bitcoin", "dogecoin"}, second.List())
}

func TestWatchlist_LoadCleansStoredValue(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemoryCache()
	require.NoError(t, backend.Set(ctx, "watchlist", `["a","","a","b"]`, 0))

	repo := NewWatchlistRepository(ctx, backend, "")
	assert.Equal(t, []string{"a", "b"}, repo.List())

	require.NoError(t, backend.Set(ctx, "watchlist", `{"not":"a list"}`, 0))
	repo = NewWatchlistRepository(ctx, backend, "")
	assert.Empty(t, repo.List())
}

func TestWatchlist_RejectsEmptyID(t *testing.T) {
	repo := NewWatchlistRepository(context.Background(), cache.NewMemoryCache(), "")
	_, _, err := repo.Toggle(context.Background(), "  ")
	assert.ErrorIs(t, err, entities.ErrInvalidDescriptor)
}

func TestWatchlist_StorageFailureKeepsSessionState(t *testing.T) {
	ctx := context.Background()
	repo := NewWatchlistRepository(ctx, brokenBackend{}, "")

	ids, added, err := repo.Toggle(ctx, "bitcoin")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"bitcoin"}, ids)
}

func TestTheme_DefaultsAndPersists(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemoryCache()

	repo := NewThemeRepository(ctx, backend, "coin_dash:")
	assert.Equal(t, entities.ThemeDark, repo.Get())

	require.NoError(t, repo.Set(ctx, entities.ThemeLight))
	assert.Error(t, repo.Set(ctx, entities.Theme("sepia")))
	assert.Equal(t, entities.ThemeLight, repo.Get())

	reloaded := NewThemeRepository(ctx, backend, "coin_dash:")
	assert.Equal(t, entities.ThemeLight, reloaded.Get())

	broken := NewThemeRepository(ctx, brokenBackend{}, "")
	assert.Equal(t, entities.ThemeDark, broken.Get())
	assert.NoError(t, broken.Set(ctx, entities.ThemeLight))
}

// jitterBackend demora cada Set para que escrituras concurrentes puedan llegar desordenadas
type jitterBackend struct {
	interfaces.Cache
	n atomic.Int64
}

func (b *jitterBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	time.Sleep(time.Duration(b.n.Add(7)%5) * time.Millisecond)
	return b.Cache.Set(ctx, key, value, ttl)
}

func TestWatchlist_ConcurrentTogglesPersistFinalList(t *testing.T) {
	ctx := context.Background()
	ids := []string{"bitcoin", "ethereum", "solana", "dogecoin", "cardano", "ripple", "tron", "polkadot"}

	for round := 0; round < 10; round++ {
		backend := &jitterBackend{Cache: cache.NewMemoryCache()}
		repo := NewWatchlistRepository(ctx, backend, "coin_dash:")

		var wg sync.WaitGroup
		for _, id := range ids {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, _, err := repo.Toggle(ctx, id)
				assert.NoError(t, err)
			}(id)
		}
		wg.Wait()

		reloaded := NewWatchlistRepository(ctx, backend, "coin_dash:")
		require.Equal(t, repo.List(), reloaded.List(), "round %d", round)
		assert.Len(t, reloaded.List(), len(ids))
	}
}
