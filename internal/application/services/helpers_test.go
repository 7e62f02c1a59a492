package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"coin-dashboard-service/internal/domain/entities"
	"coin-dashboard-service/internal/infrastructure/repositories/cache"
)

// fakeGateway cuenta las llamadas y delega en funciones configurables
type fakeGateway struct {
	mu    sync.Mutex
	calls map[string]int

	markets  func(ctx context.Context, currency string, page, perPage int) ([]entities.MarketCoin, error)
	ticker   func(ctx context.Context, currency string) ([]entities.MarketCoin, error)
	trending func(ctx context.Context) ([]entities.TrendingCoin, error)
	search   func(ctx context.Context, term string) ([]entities.SearchHit, error)
	byIDs    func(ctx context.Context, currency string, ids []string) ([]entities.MarketCoin, error)
	chart    func(ctx context.Context, coinID, currency string, days int) ([]entities.ChartPoint, error)
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		calls: map[string]int{},
		markets: func(_ context.Context, currency string, page, perPage int) ([]entities.MarketCoin, error) {
			return pageOf(currency, page, perPage), nil
		},
		ticker: func(_ context.Context, currency string) ([]entities.MarketCoin, error) {
			return []entities.MarketCoin{
				coin("bitcoin", currency, 100, 1.5),
				coin("ethereum", currency, 50, -2),
				coin("solana", currency, 10, 3),
				coin("ripple", currency, 1, -1),
			}, nil
		},
		trending: func(context.Context) ([]entities.TrendingCoin, error) {
			return []entities.TrendingCoin{{ID: "pepe", Name: "Pepe"}}, nil
		},
		search: func(_ context.Context, term string) ([]entities.SearchHit, error) {
			return []entities.SearchHit{}, nil
		},
		byIDs: func(_ context.Context, currency string, ids []string) ([]entities.MarketCoin, error) {
			out := make([]entities.MarketCoin, 0, len(ids))
			for _, id := range ids {
				out = append(out, coin(id, currency, 1, 0))
			}
			return out, nil
		},
		chart: func(_ context.Context, coinID, currency string, days int) ([]entities.ChartPoint, error) {
			return []entities.ChartPoint{{Date: 1, Price: 1}, {Date: 2, Price: 2}}, nil
		},
	}
}

func (g *fakeGateway) record(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[name]++
}

func (g *fakeGateway) count(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[name]
}

func (g *fakeGateway) FetchTrending(ctx context.Context) ([]entities.TrendingCoin, error) {
	g.record("trending")
	return g.trending(ctx)
}

func (g *fakeGateway) FetchMarkets(ctx context.Context, currency string, page, perPage int, _ bool) ([]entities.MarketCoin, error) {
	g.record("markets")
	return g.markets(ctx, currency, page, perPage)
}

func (g *fakeGateway) FetchTickerTop(ctx context.Context, currency string) ([]entities.MarketCoin, error) {
	g.record("ticker")
	return g.ticker(ctx, currency)
}

func (g *fakeGateway) SearchCoins(ctx context.Context, term string) ([]entities.SearchHit, error) {
	g.record("search")
	return g.search(ctx, term)
}

func (g *fakeGateway) FetchMarketsByIDs(ctx context.Context, currency string, ids []string, _ bool) ([]entities.MarketCoin, error) {
	g.record("by_ids")
	return g.byIDs(ctx, currency, ids)
}

func (g *fakeGateway) FetchChart(ctx context.Context, coinID, currency string, days int) ([]entities.ChartPoint, error) {
	g.record("chart")
	return g.chart(ctx, coinID, currency, days)
}

// recordingPublisher guarda cada estado publicado por familia
type recordingPublisher struct {
	mu     sync.Mutex
	events map[entities.Family][]any
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: map[entities.Family][]any{}}
}

func (p *recordingPublisher) Publish(family entities.Family, state any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[family] = append(p.events[family], state)
}

func (p *recordingPublisher) markets(family entities.Family) []entities.QueryResult[[]entities.MarketCoin] {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []entities.QueryResult[[]entities.MarketCoin]{}
	for _, e := range p.events[family] {
		if r, ok := e.(entities.QueryResult[[]entities.MarketCoin]); ok {
			out = append(out, r)
		}
	}
	return out
}

func (p *recordingPublisher) count(family entities.Family) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events[family])
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(clock *testClock) *cache.ExpiringStore {
	return cache.NewExpiringStore(cache.NewMemoryCache(), cache.WithClock(clock.Now), cache.WithNamespace("test:"))
}

func coin(id, currency string, price, change float64) entities.MarketCoin {
	return entities.MarketCoin{
		ID:                       id,
		Symbol:                   id,
		Name:                     fmt.Sprintf("%s (%s)", id, currency),
		CurrentPrice:             price,
		PriceChangePercentage24h: change,
	}
}

func pageOf(currency string, page, perPage int) []entities.MarketCoin {
	out := make([]entities.MarketCoin, 0, perPage)
	for i := 0; i < perPage; i++ {
		rank := (page-1)*perPage + i + 1
		c := coin(fmt.Sprintf("coin-%03d", rank), currency, float64(1000-rank), 0)
		c.MarketCapRank = rank
		out = append(out, c)
	}
	return out
}

// memoryWatchlist implementa WatchlistStore en memoria
type memoryWatchlist struct {
	mu  sync.Mutex
	ids []string
}

func (w *memoryWatchlist) List() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.ids...)
}

func (w *memoryWatchlist) Toggle(_ context.Context, id string) ([]string, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, v := range w.ids {
		if v == id {
			w.ids = append(w.ids[:i:i], w.ids[i+1:]...)
			return append([]string(nil), w.ids...), false, nil
		}
	}
	w.ids = append(w.ids, id)
	return append([]string(nil), w.ids...), true, nil
}

type memoryTheme struct{ theme entities.Theme }

func (t *memoryTheme) Get() entities.Theme { return t.theme }
func (t *memoryTheme) Set(_ context.Context, theme entities.Theme) error {
	t.theme = theme
	return nil
}
