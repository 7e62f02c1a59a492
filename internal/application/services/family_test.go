package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"coin-dashboard-service/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustDescriptor(t)(NewXDescriptor(...)) falla el test si el constructor devuelve error
func mustDescriptor(t *testing.T) func(entities.Descriptor, error) entities.Descriptor {
	return func(d entities.Descriptor, err error) entities.Descriptor {
		t.Helper()
		require.NoError(t, err)
		return d
	}
}

func TestFamily_FreshCacheSkipsNetwork(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	gw := newFakeGateway()
	store := newTestStore(clock)
	f := fetchers{gateway: gw, perPage: 10, searchLimit: 10}
	fam := NewFamily(entities.FamilyMarket, FamilyDeps{Store: store, Now: clock.Now}, f.markets, emptyCoins)

	d := mustDescriptor(t)(entities.NewMarketPageDescriptor("usd", 1))
	store.Write(ctx, d.CacheKey(), []entities.MarketCoin{coin("cached", "usd", 1, 0)})
	clock.Advance(119 * time.Second)

	res := fam.Load(ctx, d)
	assert.Equal(t, entities.StatusSucceeded, res.Status)
	assert.False(t, res.Loading)
	assert.Nil(t, res.Error)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "cached", res.Data[0].ID)
	assert.Equal(t, 0, gw.count("markets"))
}

func TestFamily_StaleCacheFetchesAndRewrites(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	gw := newFakeGateway()
	store := newTestStore(clock)
	f := fetchers{gateway: gw, perPage: 10, searchLimit: 10}
	fam := NewFamily(entities.FamilyMarket, FamilyDeps{Store: store, Now: clock.Now}, f.markets, emptyCoins)

	d := mustDescriptor(t)(entities.NewMarketPageDescriptor("usd", 1))
	store.Write(ctx, d.CacheKey(), []entities.MarketCoin{coin("cached", "usd", 1, 0)})
	clock.Advance(2*time.Minute + time.Millisecond)

	res := fam.Load(ctx, d)
	assert.Equal(t, entities.StatusSucceeded, res.Status)
	assert.Len(t, res.Data, 10)
	assert.Equal(t, 1, gw.count("markets"))

	_, fresh := store.Read(ctx, d.CacheKey(), time.Millisecond)
	assert.True(t, fresh, "successful fetch restamps the entry")
}

func TestFamily_FailureFallsBackToStaleEntry(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	gw := newFakeGateway()
	gw.markets = func(context.Context, string, int, int) ([]entities.MarketCoin, error) {
		return nil, fmt.Errorf("%w: HTTP 429", entities.ErrRateLimited)
	}
	store := newTestStore(clock)
	pub := newRecordingPublisher()
	f := fetchers{gateway: gw, perPage: 10, searchLimit: 10}
	fam := NewFamily(entities.FamilyMarket, FamilyDeps{Store: store, Publisher: pub, Now: clock.Now}, f.markets, emptyCoins)

	d := mustDescriptor(t)(entities.NewMarketPageDescriptor("usd", 1))
	store.Write(ctx, d.CacheKey(), []entities.MarketCoin{coin("ten-minutes-old", "usd", 1, 0)})
	clock.Advance(10 * time.Minute)

	res := fam.Load(ctx, d)
	assert.Equal(t, entities.StatusFailedWithFallback, res.Status)
	assert.Nil(t, res.Error, "stale data is shown without an error banner")
	assert.False(t, res.Loading)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "ten-minutes-old", res.Data[0].ID)

	states := pub.markets(entities.FamilyMarket)
	require.Len(t, states, 2)
	assert.Equal(t, entities.StatusLoading, states[0].Status)
	assert.Equal(t, entities.StatusFailedWithFallback, states[1].Status)
}

func TestFamily_FailureWithoutEntryIsEmptyWithError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{name: "rate limited", err: entities.ErrRateLimited, message: "Rate limit exceeded. Please wait."},
		{name: "upstream", err: fmt.Errorf("%w: HTTP 500", entities.ErrUpstream), message: "Server error."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newTestClock()
			gw := newFakeGateway()
			gw.markets = func(context.Context, string, int, int) ([]entities.MarketCoin, error) {
				return nil, tt.err
			}
			f := fetchers{gateway: gw, perPage: 10, searchLimit: 10}
			fam := NewFamily(entities.FamilyMarket, FamilyDeps{Store: newTestStore(clock), Now: clock.Now}, f.markets, emptyCoins)

			res := fam.Load(context.Background(), mustDescriptor(t)(entities.NewMarketPageDescriptor("usd", 4)))
			assert.Equal(t, entities.StatusFailedEmpty, res.Status)
			require.NotNil(t, res.Error)
			assert.Equal(t, tt.message, *res.Error)
			assert.NotNil(t, res.Data)
			assert.Empty(t, res.Data)
		})
	}
}

func TestFamily_LoadingKeepsPreviousData(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	gw := newFakeGateway()
	pub := newRecordingPublisher()
	f := fetchers{gateway: gw, perPage: 10, searchLimit: 10}
	fam := NewFamily(entities.FamilyMarket, FamilyDeps{Store: newTestStore(clock), Publisher: pub, Now: clock.Now}, f.markets, emptyCoins)

	fam.Load(ctx, mustDescriptor(t)(entities.NewMarketPageDescriptor("usd", 1)))
	fam.Load(ctx, mustDescriptor(t)(entities.NewMarketPageDescriptor("usd", 2)))

	states := pub.markets(entities.FamilyMarket)
	require.Len(t, states, 4)
	loading := states[2]
	assert.True(t, loading.Loading)
	assert.Nil(t, loading.Error)
	require.NotEmpty(t, loading.Data)
	assert.Equal(t, "coin-001", loading.Data[0].ID, "page 1 stays visible while page 2 loads")
	assert.Equal(t, "coin-011", states[3].Data[0].ID)
}

func TestFamily_SupersededResultIsDiscarded(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	gw := newFakeGateway()

	started := make(chan struct{})
	release := make(chan struct{})
	gw.markets = func(_ context.Context, currency string, page, perPage int) ([]entities.MarketCoin, error) {
		if page == 1 {
			close(started)
			<-release // ignora la cancelación: la corrección depende del token
		}
		return pageOf(currency, page, perPage), nil
	}

	store := newTestStore(clock)
	pub := newRecordingPublisher()
	f := fetchers{gateway: gw, perPage: 10, searchLimit: 10}
	fam := NewFamily(entities.FamilyMarket, FamilyDeps{Store: store, Publisher: pub, Now: clock.Now}, f.markets, emptyCoins)

	slow := mustDescriptor(t)(entities.NewMarketPageDescriptor("usd", 1))
	fast := mustDescriptor(t)(entities.NewMarketPageDescriptor("usd", 2))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		fam.Load(ctx, slow)
	}()
	<-started

	res := fam.Load(ctx, fast)
	assert.Equal(t, "coin-011", res.Data[0].ID)

	close(release)
	wg.Wait()

	final := fam.Snapshot()
	assert.Equal(t, entities.StatusSucceeded, final.Status)
	assert.Equal(t, "coin-011", final.Data[0].ID, "the slow page 1 never overwrites page 2")
	require.NotNil(t, final.Descriptor)
	assert.Equal(t, 2, final.Descriptor.Page)

	_, ok := store.ReadAnyAge(ctx, slow.CacheKey())
	assert.False(t, ok, "a superseded attempt never writes the store")

	last := pub.markets(entities.FamilyMarket)
	assert.Equal(t, 2, last[len(last)-1].Descriptor.Page)
}

func TestFamily_CancelledFetchPublishesNothing(t *testing.T) {
	clock := newTestClock()
	gw := newFakeGateway()
	gw.markets = func(context.Context, string, int, int) ([]entities.MarketCoin, error) {
		return nil, fmt.Errorf("%w: context canceled", entities.ErrCancelled)
	}
	pub := newRecordingPublisher()
	f := fetchers{gateway: gw, perPage: 10, searchLimit: 10}
	fam := NewFamily(entities.FamilyMarket, FamilyDeps{Store: newTestStore(clock), Publisher: pub, Now: clock.Now}, f.markets, emptyCoins)

	res := fam.Load(context.Background(), mustDescriptor(t)(entities.NewMarketPageDescriptor("usd", 1)))

	assert.Equal(t, entities.StatusLoading, res.Status, "only the loading transition was published")
	assert.Nil(t, res.Error)
	assert.Equal(t, 1, pub.count(entities.FamilyMarket))
}

func TestFamily_SearchNeverUsesOrWritesCache(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	gw := newFakeGateway()
	gw.search = func(_ context.Context, term string) ([]entities.SearchHit, error) {
		hits := make([]entities.SearchHit, 0, 15)
		for i := 0; i < 15; i++ {
			hits = append(hits, entities.SearchHit{ID: fmt.Sprintf("%s-%02d", term, i)})
		}
		return hits, nil
	}
	var gotIDs []string
	gw.byIDs = func(_ context.Context, currency string, ids []string) ([]entities.MarketCoin, error) {
		gotIDs = ids
		return []entities.MarketCoin{coin(ids[0], currency, 1, 0)}, nil
	}

	store := newTestStore(clock)
	f := fetchers{gateway: gw, perPage: 10, searchLimit: 10}
	fam := NewFamily(entities.FamilyMarket, FamilyDeps{Store: store, Now: clock.Now}, f.markets, emptyCoins)

	d := mustDescriptor(t)(entities.NewSearchDescriptor("usd", "doge"))
	store.Write(ctx, d.CacheKey(), []entities.MarketCoin{coin("planted", "usd", 1, 0)})

	res := fam.Load(ctx, d)
	assert.Equal(t, entities.StatusSucceeded, res.Status)
	assert.Equal(t, "doge-00", res.Data[0].ID, "search ignores the proactive cache")
	assert.Len(t, gotIDs, 10, "only the top matches are fetched")

	data, _ := store.ReadAnyAge(ctx, d.CacheKey())
	assert.Contains(t, string(data), "planted", "search results are not written")
}

func TestFamily_EmptySearchIsNotAnError(t *testing.T) {
	clock := newTestClock()
	gw := newFakeGateway()
	f := fetchers{gateway: gw, perPage: 10, searchLimit: 10}
	fam := NewFamily(entities.FamilyMarket, FamilyDeps{Store: newTestStore(clock), Now: clock.Now}, f.markets, emptyCoins)

	res := fam.Load(context.Background(), mustDescriptor(t)(entities.NewSearchDescriptor("usd", "zzzznotacoin")))

	assert.Equal(t, entities.StatusSucceeded, res.Status)
	assert.False(t, res.Loading)
	assert.Nil(t, res.Error)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Equal(t, 0, gw.count("by_ids"))
}

func TestFamily_RetryAndClear(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	gw := newFakeGateway()
	f := fetchers{gateway: gw, perPage: 10, searchLimit: 10}
	fam := NewFamily(entities.FamilyMarket, FamilyDeps{Store: newTestStore(clock), Now: clock.Now}, f.markets, emptyCoins)

	_, err := fam.Retry(ctx)
	assert.True(t, errors.Is(err, ErrNothingToRetry))
	assert.Equal(t, entities.StatusIdle, fam.Status())

	fam.Load(ctx, mustDescriptor(t)(entities.NewMarketPageDescriptor("usd", 3)))
	clock.Advance(time.Hour)

	res, err := fam.Retry(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Descriptor.Page)
	assert.Equal(t, 2, gw.count("markets"))

	fam.Clear()
	cleared := fam.Snapshot()
	assert.True(t, cleared.Loading)
	assert.Empty(t, cleared.Data)
	assert.Equal(t, entities.StatusLoading, cleared.Status)
}

func TestFamily_CoinDetailNotFound(t *testing.T) {
	clock := newTestClock()
	gw := newFakeGateway()
	gw.byIDs = func(context.Context, string, []string) ([]entities.MarketCoin, error) {
		return []entities.MarketCoin{}, nil
	}
	f := fetchers{gateway: gw}
	fam := NewFamily(entities.FamilyCoinDetail, FamilyDeps{Store: newTestStore(clock), Now: clock.Now}, f.coinDetail, emptyDetail)

	res := fam.Load(context.Background(), mustDescriptor(t)(entities.NewCoinDetailDescriptor("usd", "nope")))
	assert.Equal(t, entities.StatusFailedEmpty, res.Status)
	assert.Nil(t, res.Data)
	assert.Equal(t, "Coin not found.", res.ErrorMessage())
}
