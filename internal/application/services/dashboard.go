package services

import (
	"coin-dashboard-service/internal/domain/entities"
	"coin-dashboard-service/internal/domain/interfaces"
	"coin-dashboard-service/internal/infrastructure/logging"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// WatchlistStore is the durable favorites list
type WatchlistStore interface {
	List() []string
	Toggle(ctx context.Context, id string) ([]string, bool, error)
}

// ThemeStore is the durable theme preference
type ThemeStore interface {
	Get() entities.Theme
	Set(ctx context.Context, theme entities.Theme) error
}

// DashboardConfig holds the session defaults
type DashboardConfig struct {
	DefaultCurrency  string
	Currencies       []string
	PerPage          int
	SearchLimit      int
	FeaturedInterval time.Duration
	FeaturedSize     int
	Windows          entities.FreshnessWindows
}

// Dashboard owns the application state (currency, page, search term, theme
// and watchlist) and drives one Family per query stream. Every mutation goes
// through its methods.
type Dashboard struct {
	cfg       DashboardConfig
	store     interfaces.ExpiringStore
	watchlist WatchlistStore
	theme     ThemeStore

	market    *Family[[]entities.MarketCoin]
	ticker    *Family[[]entities.MarketCoin]
	trending  *Family[[]entities.TrendingCoin]
	detail    *Family[*entities.MarketCoin]
	chart     *Family[[]entities.ChartPoint]
	favorites *Family[[]entities.MarketCoin]
	featured  *FeaturedRotator

	trendingOnce sync.Once

	mu       sync.RWMutex
	currency string
	page     int
	term     string
}

// NewDashboard wires the families over gateway and store. publisher may be nil.
func NewDashboard(
	cfg DashboardConfig,
	gateway interfaces.MarketDataGateway,
	store interfaces.ExpiringStore,
	watchlist WatchlistStore,
	theme ThemeStore,
	publisher interfaces.StatePublisher,
) *Dashboard {
	if cfg.PerPage <= 0 {
		cfg.PerPage = 10
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 10
	}
	if cfg.FeaturedInterval <= 0 {
		cfg.FeaturedInterval = 4 * time.Second
	}
	if cfg.FeaturedSize <= 0 {
		cfg.FeaturedSize = 3
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "usd"
	}
	if len(cfg.Currencies) == 0 {
		cfg.Currencies = []string{cfg.DefaultCurrency}
	}

	deps := FamilyDeps{Store: store, Windows: cfg.Windows, Publisher: publisher}
	f := fetchers{gateway: gateway, perPage: cfg.PerPage, searchLimit: cfg.SearchLimit}

	d := &Dashboard{
		cfg:       cfg,
		store:     store,
		watchlist: watchlist,
		theme:     theme,
		market:    NewFamily(entities.FamilyMarket, deps, f.markets, emptyCoins),
		ticker:    NewFamily(entities.FamilyTicker, deps, f.ticker, emptyCoins),
		trending:  NewFamily(entities.FamilyTrending, deps, f.trending, emptyTrending),
		detail:    NewFamily(entities.FamilyCoinDetail, deps, f.coinDetail, emptyDetail),
		chart:     NewFamily(entities.FamilyChart, deps, f.chart, emptyChart),
		favorites: NewFamily(entities.FamilyFavorites, deps, f.favorites, emptyCoins),
		currency:  strings.ToLower(cfg.DefaultCurrency),
		page:      1,
	}
	d.featured = NewFeaturedRotator(func() []entities.MarketCoin {
		return d.ticker.Snapshot().Data
	}, cfg.FeaturedSize, cfg.FeaturedInterval, publisher)

	return d
}

// Start loads market page 1, the ticker and trending concurrently, then
// starts the featured rotation if the ticker has data.
func (d *Dashboard) Start(ctx context.Context) error {
	logging.Info(ctx, "Starting dashboard session", logging.Fields{
		"currency": d.Currency(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.loadMarkets(gctx) })
	g.Go(func() error { return d.loadTicker(gctx) })
	g.Go(func() error {
		d.loadTrendingOnce(gctx)
		return nil
	})
	return g.Wait()
}

// Close stops the rotation and cancels everything in flight
func (d *Dashboard) Close() {
	d.featured.Stop()
	d.market.Abort()
	d.ticker.Abort()
	d.trending.Abort()
	d.detail.Abort()
	d.chart.Abort()
	d.favorites.Abort()
}

func (d *Dashboard) Currency() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.currency
}

func (d *Dashboard) Currencies() []string {
	return append([]string(nil), d.cfg.Currencies...)
}

func (d *Dashboard) Page() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.page
}

func (d *Dashboard) SearchTerm() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.term
}

// SetCurrency clears the market table right away, since prices in the old
// currency are wrong, and then refetches every family that depends on currency.
func (d *Dashboard) SetCurrency(ctx context.Context, currency string) error {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if !d.supports(currency) {
		return fmt.Errorf("%w: currency %q", entities.ErrUnsupported, currency)
	}

	d.mu.Lock()
	if d.currency == currency {
		d.mu.Unlock()
		return nil
	}
	d.currency = currency
	d.mu.Unlock()

	logging.Info(ctx, "Currency changed", logging.Fields{logging.FieldCurrency: currency})
	d.market.Clear()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.loadMarkets(gctx) })
	g.Go(func() error { return d.loadTicker(gctx) })
	if d.favorites.Status() != entities.StatusIdle {
		g.Go(func() error {
			d.LoadFavorites(gctx)
			return nil
		})
	}
	if last, ok := d.detail.LastDescriptor(); ok {
		g.Go(func() error {
			_, err := d.LoadCoinDetail(gctx, last.CoinID)
			return err
		})
	}
	if last, ok := d.chart.LastDescriptor(); ok {
		g.Go(func() error {
			_, err := d.LoadChart(gctx, last.CoinID, last.Days)
			return err
		})
	}
	return g.Wait()
}

// SetPage moves the paginated table; it leaves any active search.
func (d *Dashboard) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", entities.ErrInvalidDescriptor, page)
	}

	d.mu.Lock()
	d.page = page
	d.term = ""
	d.mu.Unlock()

	return d.loadMarkets(ctx)
}

// Search replaces the paginated view with the results for term. An empty
// term clears the search.
func (d *Dashboard) Search(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return d.ClearSearch(ctx)
	}

	d.mu.Lock()
	d.term = term
	d.mu.Unlock()

	return d.loadMarkets(ctx)
}

// ClearSearch drops the search term and goes back to page 1
func (d *Dashboard) ClearSearch(ctx context.Context) error {
	d.mu.Lock()
	d.term = ""
	d.page = 1
	d.mu.Unlock()

	return d.loadMarkets(ctx)
}

// Reset returns to page 1 without search
func (d *Dashboard) Reset(ctx context.Context) error {
	d.mu.Lock()
	d.term = ""
	d.page = 1
	d.mu.Unlock()

	return d.loadMarkets(ctx)
}

// Retry reloads the latest query of family
func (d *Dashboard) Retry(ctx context.Context, family entities.Family) error {
	var err error
	switch family {
	case entities.FamilyMarket:
		_, err = d.market.Retry(ctx)
	case entities.FamilyTicker:
		_, err = d.ticker.Retry(ctx)
		d.ensureFeatured(ctx)
	case entities.FamilyTrending:
		_, err = d.trending.Retry(ctx)
	case entities.FamilyCoinDetail:
		_, err = d.detail.Retry(ctx)
	case entities.FamilyChart:
		_, err = d.chart.Retry(ctx)
	case entities.FamilyFavorites:
		d.LoadFavorites(ctx)
	default:
		err = fmt.Errorf("%w: family %q", entities.ErrUnsupported, family)
	}
	return err
}

func (d *Dashboard) Markets() entities.QueryResult[[]entities.MarketCoin] {
	return d.market.Snapshot()
}

func (d *Dashboard) Ticker() entities.QueryResult[[]entities.MarketCoin] {
	return d.ticker.Snapshot()
}

func (d *Dashboard) Trending() entities.QueryResult[[]entities.TrendingCoin] {
	return d.trending.Snapshot()
}

func (d *Dashboard) Featured() []entities.MarketCoin {
	return d.featured.Current()
}

func (d *Dashboard) LoadCoinDetail(ctx context.Context, coinID string) (entities.QueryResult[*entities.MarketCoin], error) {
	desc, err := entities.NewCoinDetailDescriptor(d.Currency(), coinID)
	if err != nil {
		logging.Query().ValidationFailed(ctx, coinID, err.Error())
		return entities.QueryResult[*entities.MarketCoin]{}, err
	}
	return d.detail.Load(ctx, desc), nil
}

func (d *Dashboard) LoadChart(ctx context.Context, coinID string, days int) (entities.QueryResult[[]entities.ChartPoint], error) {
	desc, err := entities.NewChartDescriptor(d.Currency(), coinID, days)
	if err != nil {
		logging.Query().ValidationFailed(ctx, fmt.Sprintf("%s/%d", coinID, days), err.Error())
		return entities.QueryResult[[]entities.ChartPoint]{}, err
	}
	return d.chart.Load(ctx, desc), nil
}

// LoadFavorites fetches the market rows of the watchlist. An empty watchlist
// resolves to an empty list without any network call.
func (d *Dashboard) LoadFavorites(ctx context.Context) entities.QueryResult[[]entities.MarketCoin] {
	desc, err := entities.NewFavoritesDescriptor(d.Currency(), d.watchlist.List())
	if err != nil {
		// la moneda siempre es válida aquí; se registra por si acaso
		logging.ErrorWithError(ctx, "Invalid favorites descriptor", err, nil)
		return d.favorites.Snapshot()
	}
	if len(desc.IDs) == 0 {
		return d.favorites.Resolve(ctx, desc, emptyCoins())
	}
	return d.favorites.Load(ctx, desc)
}

func (d *Dashboard) Watchlist() []string {
	return d.watchlist.List()
}

// ToggleFavorite flips coinID in the watchlist and refreshes favorites when they are in use
func (d *Dashboard) ToggleFavorite(ctx context.Context, coinID string) ([]string, error) {
	ids, added, err := d.watchlist.Toggle(ctx, coinID)
	if err != nil {
		return nil, err
	}

	logging.Info(ctx, "Watchlist toggled", logging.Fields{
		logging.FieldCoinID: coinID,
		"added":             added,
		"size":              len(ids),
	})

	if d.favorites.Status() != entities.StatusIdle {
		d.LoadFavorites(ctx)
	}
	return ids, nil
}

func (d *Dashboard) Theme() entities.Theme {
	return d.theme.Get()
}

func (d *Dashboard) SetTheme(ctx context.Context, theme entities.Theme) error {
	return d.theme.Set(ctx, theme)
}

// Ping reports whether the durable store is reachable
func (d *Dashboard) Ping(ctx context.Context) error {
	return d.store.Ping(ctx)
}

// loadMarkets triggers the shared market family with the current page or term
func (d *Dashboard) loadMarkets(ctx context.Context) error {
	// leer el estado y arrancar el intento bajo el mismo lock: el último
	// intento activo siempre refleja la última moneda, página y término
	d.mu.Lock()
	var (
		desc entities.Descriptor
		err  error
	)
	if d.term != "" {
		desc, err = entities.NewSearchDescriptor(d.currency, d.term)
	} else {
		desc, err = entities.NewMarketPageDescriptor(d.currency, d.page)
	}
	if err != nil {
		term := d.term
		d.mu.Unlock()
		logging.Query().ValidationFailed(ctx, term, err.Error())
		return err
	}
	token := d.market.begin(ctx, desc)
	d.mu.Unlock()

	d.market.run(token, desc)
	return nil
}

func (d *Dashboard) loadTicker(ctx context.Context) error {
	desc, err := entities.NewTickerDescriptor(d.Currency())
	if err != nil {
		return err
	}
	d.ticker.Load(ctx, desc)
	d.ensureFeatured(ctx)
	return nil
}

// loadTrendingOnce fetches trending at most once per session; Retry bypasses it
func (d *Dashboard) loadTrendingOnce(ctx context.Context) {
	d.trendingOnce.Do(func() {
		d.trending.Load(ctx, entities.NewTrendingDescriptor())
	})
}

// ensureFeatured starts the rotation the first time the ticker has data
func (d *Dashboard) ensureFeatured(ctx context.Context) {
	if len(d.ticker.Snapshot().Data) > 0 {
		d.featured.Start(ctx)
	}
}

func (d *Dashboard) supports(currency string) bool {
	for _, c := range d.cfg.Currencies {
		if c == currency {
			return true
		}
	}
	return false
}

var _ interfaces.DashboardService = (*Dashboard)(nil)
