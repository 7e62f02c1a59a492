package coingecko

import (
	"coin-dashboard-service/internal/domain/entities"
	"coin-dashboard-service/internal/domain/interfaces"
	"coin-dashboard-service/internal/infrastructure/config"
	"coin-dashboard-service/internal/infrastructure/logging"
	"coin-dashboard-service/internal/infrastructure/metrics"
	"coin-dashboard-service/internal/infrastructure/ratelimit"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	CoinGeckoAPIBaseURL = "https://api.coingecko.com/api/v3"
	DefaultTimeout      = 10 * time.Second
	DefaultTickerSize   = 50

	serviceName = "coingecko"
)

// RestClient implementa MarketDataGateway sobre la API REST de CoinGecko.
// No reintenta ni cachea: cada llamada es exactamente una petición HTTP.
type RestClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	tickerSize int
	limiter    *rate.Limiter
}

// Option configura el cliente
type Option func(*RestClient)

// WithHTTPClient reemplaza el cliente HTTP
func WithHTTPClient(c *http.Client) Option {
	return func(r *RestClient) { r.httpClient = c }
}

// WithTickerSize fija cuántas monedas trae FetchTickerTop
func WithTickerSize(n int) Option {
	return func(r *RestClient) {
		if n > 0 {
			r.tickerSize = n
		}
	}
}

// WithLimiter reemplaza el limitador de salida; nil desactiva el pacing
func WithLimiter(l *rate.Limiter) Option {
	return func(r *RestClient) { r.limiter = l }
}

// NewRestClient crea el cliente con la configuración de upstream
func NewRestClient(cfg config.UpstreamConfig, opts ...Option) *RestClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = CoinGeckoAPIBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := &RestClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		timeout:    timeout,
		tickerSize: DefaultTickerSize,
	}
	if cfg.RequestsPerMinute > 0 {
		client.limiter = ratelimit.NewPerMinuteLimiter(cfg.Burst, cfg.RequestsPerMinute)
	}

	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FetchTrending obtiene las monedas en tendencia
func (c *RestClient) FetchTrending(ctx context.Context) ([]entities.TrendingCoin, error) {
	var resp TrendingResponse
	if err := c.getJSON(ctx, "/search/trending", "/search/trending", nil, &resp); err != nil {
		return nil, err
	}

	coins := make([]entities.TrendingCoin, 0, len(resp.Coins))
	for _, coin := range resp.Coins {
		coins = append(coins, coin.Item.ToEntity())
	}
	return coins, nil
}

// FetchMarkets obtiene una página del listado ordenado por market cap
func (c *RestClient) FetchMarkets(ctx context.Context, currency string, page, perPage int, includeSparkline bool) ([]entities.MarketCoin, error) {
	query := url.Values{}
	query.Set("vs_currency", currency)
	query.Set("order", "market_cap_desc")
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))
	query.Set("sparkline", strconv.FormatBool(includeSparkline))

	return c.fetchMarkets(ctx, query)
}

// FetchTickerTop obtiene el top N por market cap sin sparkline
func (c *RestClient) FetchTickerTop(ctx context.Context, currency string) ([]entities.MarketCoin, error) {
	query := url.Values{}
	query.Set("vs_currency", currency)
	query.Set("order", "market_cap_desc")
	query.Set("per_page", strconv.Itoa(c.tickerSize))
	query.Set("page", "1")
	query.Set("sparkline", "false")
	query.Set("price_change_percentage", "24h")

	return c.fetchMarkets(ctx, query)
}

// SearchCoins resuelve un término libre a monedas
func (c *RestClient) SearchCoins(ctx context.Context, term string) ([]entities.SearchHit, error) {
	query := url.Values{}
	query.Set("query", term)

	var resp SearchResponse
	if err := c.getJSON(ctx, "/search", "/search", query, &resp); err != nil {
		return nil, err
	}
	if resp.Coins == nil {
		return []entities.SearchHit{}, nil
	}
	return resp.Coins, nil
}

// FetchMarketsByIDs obtiene el listado filtrado por ids
func (c *RestClient) FetchMarketsByIDs(ctx context.Context, currency string, ids []string, includeSparkline bool) ([]entities.MarketCoin, error) {
	if len(ids) == 0 {
		return []entities.MarketCoin{}, nil
	}

	query := url.Values{}
	query.Set("vs_currency", currency)
	query.Set("ids", strings.Join(ids, ","))
	query.Set("order", "market_cap_desc")
	query.Set("sparkline", strconv.FormatBool(includeSparkline))

	return c.fetchMarkets(ctx, query)
}

// FetchChart obtiene la serie histórica de precios
func (c *RestClient) FetchChart(ctx context.Context, coinID, currency string, days int) ([]entities.ChartPoint, error) {
	query := url.Values{}
	query.Set("vs_currency", currency)
	query.Set("days", strconv.Itoa(days))

	var resp MarketChartResponse
	path := "/coins/" + url.PathEscape(coinID) + "/market_chart"
	if err := c.getJSON(ctx, path, "/coins/{id}/market_chart", query, &resp); err != nil {
		return nil, err
	}
	return resp.Points(), nil
}

func (c *RestClient) fetchMarkets(ctx context.Context, query url.Values) ([]entities.MarketCoin, error) {
	var coins []entities.MarketCoin
	if err := c.getJSON(ctx, "/coins/markets", "/coins/markets", query, &coins); err != nil {
		return nil, err
	}
	if coins == nil {
		coins = []entities.MarketCoin{}
	}
	return coins, nil
}

// getJSON hace un GET y decodifica el cuerpo en out.
// endpoint es la plantilla usada como etiqueta de métricas y logs.
func (c *RestClient) getJSON(ctx context.Context, path, endpoint string, query url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return classifyContextError(ctx, err)
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", entities.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	logging.ExternalAPI().RequestStarted(ctx, serviceName, endpoint, http.MethodGet)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	durationMs := float64(time.Since(start).Nanoseconds()) / 1e6

	if err != nil {
		metrics.RecordUpstreamCall(serviceName, endpoint, 0, durationMs)
		classified := classifyContextError(ctx, err)
		if !errors.Is(classified, entities.ErrCancelled) {
			logging.ExternalAPI().RequestFailed(ctx, serviceName, endpoint, 0, err, durationMs)
		}
		return classified
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	metrics.RecordUpstreamCall(serviceName, endpoint, resp.StatusCode, durationMs)
	logging.ExternalAPI().RequestCompleted(ctx, serviceName, endpoint, resp.StatusCode, durationMs)

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s returned HTTP 429", entities.ErrRateLimited, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned HTTP %d", entities.ErrUpstream, endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return classifyContextError(ctx, err)
		}
		return fmt.Errorf("%w: failed to decode %s response: %w", entities.ErrUpstream, endpoint, err)
	}
	return nil
}

// classifyContextError distingue una cancelación del llamador de un timeout o error de red
func classifyContextError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %w", entities.ErrCancelled, ctx.Err())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out: %w", entities.ErrUpstream, err)
	}
	return fmt.Errorf("%w: %w", entities.ErrUpstream, err)
}

var _ interfaces.MarketDataGateway = (*RestClient)(nil)
