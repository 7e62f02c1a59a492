package exchange

import (
	"coin-dashboard-service/internal/domain/entities"
	"coin-dashboard-service/internal/domain/interfaces"
	"coin-dashboard-service/internal/infrastructure/logging"
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
)

// mockCoin es una moneda del catálogo falso con su precio base en USD
type mockCoin struct {
	id, symbol, name string
	priceUSD         float64
	marketCapUSD     float64
	change24h        float64
}

// MockGateway implementa MarketDataGateway sin red para development.mock_mode.
// Retorna datos falsos pero realistas para facilitar el desarrollo.
type MockGateway struct {
	mu       sync.Mutex
	coins    []mockCoin
	rates    map[string]float64 // conversión desde USD
	variance float64            // variación porcentual para simular volatilidad
	rng      *rand.Rand
	now      func() time.Time
}

// NewMockGateway crea una nueva instancia del mock gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{
		coins: []mockCoin{
			{"bitcoin", "btc", "Bitcoin", 65000, 1.28e12, 1.8},
			{"ethereum", "eth", "Ethereum", 3200, 3.85e11, -0.9},
			{"tether", "usdt", "Tether", 1.0, 1.1e11, 0.01},
			{"binancecoin", "bnb", "BNB", 580, 8.9e10, 0.6},
			{"solana", "sol", "Solana", 150, 6.8e10, 4.2},
			{"ripple", "xrp", "XRP", 0.52, 2.9e10, -2.3},
			{"dogecoin", "doge", "Dogecoin", 0.16, 2.3e10, 6.1},
			{"cardano", "ada", "Cardano", 0.45, 1.6e10, -1.2},
			{"tron", "trx", "TRON", 0.12, 1.05e10, 0.4},
			{"avalanche-2", "avax", "Avalanche", 35, 1.4e10, -3.4},
			{"polkadot", "dot", "Polkadot", 7.1, 1.0e10, 1.1},
			{"chainlink", "link", "Chainlink", 14.5, 8.5e9, 2.7},
			{"litecoin", "ltc", "Litecoin", 95, 7.1e9, -0.5},
			{"shiba-inu", "shib", "Shiba Inu", 0.0000245, 1.45e10, -4.8},
			{"pepe", "pepe", "Pepe", 0.0000089, 3.7e9, 9.3},
		},
		rates:    map[string]float64{"usd": 1, "eur": 0.92, "mxn": 17.1},
		variance: 0.02, // ±2% variation
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

// AddCoin agrega una moneda al catálogo (útil para testing)
func (m *MockGateway) AddCoin(id, symbol, name string, priceUSD, marketCapUSD, change24h float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coins = append(m.coins, mockCoin{id, symbol, name, priceUSD, marketCapUSD, change24h})
}

// SetVariance configura la variación porcentual; 0 hace las respuestas deterministas
func (m *MockGateway) SetVariance(variance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.variance = variance
}

func (m *MockGateway) FetchTrending(ctx context.Context) ([]entities.TrendingCoin, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sorted := m.sortedLocked()
	// las de mayor movimiento, como un feed de tendencias
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].change24h) > math.Abs(sorted[j].change24h)
	})
	if len(sorted) > 7 {
		sorted = sorted[:7]
	}

	out := make([]entities.TrendingCoin, 0, len(sorted))
	for _, c := range sorted {
		out = append(out, entities.TrendingCoin{
			ID:             c.id,
			Name:           c.name,
			Symbol:         strings.ToUpper(c.symbol),
			MarketCapRank:  m.rankLocked(c.id),
			PriceChange24h: c.change24h,
		})
	}

	logging.Debug(ctx, "MockGateway: trending generated", logging.Fields{"count": len(out)})
	return out, nil
}

func (m *MockGateway) FetchMarkets(ctx context.Context, currency string, page, perPage int, includeSparkline bool) ([]entities.MarketCoin, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rate, err := m.rateLocked(currency)
	if err != nil {
		return nil, err
	}

	sorted := m.sortedLocked()
	start := (page - 1) * perPage
	if page < 1 || perPage < 1 || start >= len(sorted) {
		return []entities.MarketCoin{}, nil
	}
	end := start + perPage
	if end > len(sorted) {
		end = len(sorted)
	}

	out := make([]entities.MarketCoin, 0, end-start)
	for i, c := range sorted[start:end] {
		out = append(out, m.marketCoinLocked(c, start+i+1, rate, includeSparkline))
	}
	return out, nil
}

func (m *MockGateway) FetchTickerTop(ctx context.Context, currency string) ([]entities.MarketCoin, error) {
	return m.FetchMarkets(ctx, currency, 1, 50, false)
}

func (m *MockGateway) SearchCoins(ctx context.Context, term string) ([]entities.SearchHit, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	term = strings.ToLower(strings.TrimSpace(term))
	hits := []entities.SearchHit{}
	for _, c := range m.sortedLocked() {
		if strings.Contains(c.id, term) || strings.Contains(strings.ToLower(c.name), term) || c.symbol == term {
			hits = append(hits, entities.SearchHit{
				ID:            c.id,
				Name:          c.name,
				Symbol:        strings.ToUpper(c.symbol),
				MarketCapRank: m.rankLocked(c.id),
			})
		}
	}
	return hits, nil
}

func (m *MockGateway) FetchMarketsByIDs(ctx context.Context, currency string, ids []string, includeSparkline bool) ([]entities.MarketCoin, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rate, err := m.rateLocked(currency)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	out := []entities.MarketCoin{}
	for i, c := range m.sortedLocked() {
		if wanted[c.id] {
			out = append(out, m.marketCoinLocked(c, i+1, rate, includeSparkline))
		}
	}
	return out, nil
}

func (m *MockGateway) FetchChart(ctx context.Context, coinID, currency string, days int) ([]entities.ChartPoint, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rate, err := m.rateLocked(currency)
	if err != nil {
		return nil, err
	}

	var coin *mockCoin
	for i := range m.coins {
		if m.coins[i].id == coinID {
			coin = &m.coins[i]
			break
		}
	}
	if coin == nil {
		return []entities.ChartPoint{}, nil
	}

	// granularidad horaria hasta 30 días, diaria después
	step := time.Hour
	samples := days * 24
	if days > 30 {
		step = 24 * time.Hour
		samples = days
	}

	end := m.now().Truncate(step)
	points := make([]entities.ChartPoint, 0, samples+1)
	for i := samples; i >= 0; i-- {
		at := end.Add(-time.Duration(i) * step)
		wave := math.Sin(float64(at.Unix())/86400) * m.variance
		points = append(points, entities.ChartPoint{
			Date:  at.UnixMilli(),
			Price: coin.priceUSD * rate * (1 + wave),
		})
	}
	return points, nil
}

func (m *MockGateway) marketCoinLocked(c mockCoin, rank int, rate float64, includeSparkline bool) entities.MarketCoin {
	variation := (m.rng.Float64()*2 - 1) * m.variance // -variance% to +variance%
	price := c.priceUSD * rate * (1 + variation)

	coin := entities.MarketCoin{
		ID:                       c.id,
		Symbol:                   c.symbol,
		Name:                     c.name,
		CurrentPrice:             price,
		MarketCap:                c.marketCapUSD * rate,
		MarketCapRank:            rank,
		TotalVolume:              c.marketCapUSD * rate * 0.04,
		High24h:                  price * 1.02,
		Low24h:                   price * 0.98,
		PriceChangePercentage24h: c.change24h,
	}
	if includeSparkline {
		spark := make([]float64, 168)
		for i := range spark {
			spark[i] = price * (1 + math.Sin(float64(i)/12)*m.variance)
		}
		coin.Sparkline = &entities.Sparkline{Price: spark}
	}
	return coin
}

func (m *MockGateway) sortedLocked() []mockCoin {
	sorted := append([]mockCoin(nil), m.coins...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].marketCapUSD > sorted[j].marketCapUSD })
	return sorted
}

func (m *MockGateway) rankLocked(id string) int {
	for i, c := range m.sortedLocked() {
		if c.id == id {
			return i + 1
		}
	}
	return 0
}

func (m *MockGateway) rateLocked(currency string) (float64, error) {
	rate, ok := m.rates[currency]
	if !ok {
		return 0, fmt.Errorf("%w: unsupported currency %q", entities.ErrUpstream, currency)
	}
	return rate, nil
}

func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", entities.ErrCancelled, err)
	}
	return nil
}

var _ interfaces.MarketDataGateway = (*MockGateway)(nil)
