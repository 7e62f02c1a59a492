package interfaces

import (
	"coin-dashboard-service/internal/domain/entities"
	"context"
)

// MarketDataGateway is the only contact point with the upstream market API.
// Implementations never retry and never cache. Failures wrap
// entities.ErrRateLimited, entities.ErrUpstream or entities.ErrCancelled.
type MarketDataGateway interface {
	FetchTrending(ctx context.Context) ([]entities.TrendingCoin, error)
	FetchMarkets(ctx context.Context, currency string, page, perPage int, includeSparkline bool) ([]entities.MarketCoin, error)
	FetchTickerTop(ctx context.Context, currency string) ([]entities.MarketCoin, error)
	SearchCoins(ctx context.Context, term string) ([]entities.SearchHit, error)
	FetchMarketsByIDs(ctx context.Context, currency string, ids []string, includeSparkline bool) ([]entities.MarketCoin, error)
	FetchChart(ctx context.Context, coinID, currency string, days int) ([]entities.ChartPoint, error)
}
