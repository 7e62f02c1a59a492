package interfaces

import (
	"coin-dashboard-service/internal/domain/entities"
	"context"
)

// DashboardService exposes the application state and the user intents that mutate it.
type DashboardService interface {
	Currency() string
	Currencies() []string
	Page() int
	SearchTerm() string
	SetCurrency(ctx context.Context, currency string) error
	SetPage(ctx context.Context, page int) error
	Search(ctx context.Context, term string) error
	ClearSearch(ctx context.Context) error
	Reset(ctx context.Context) error
	Retry(ctx context.Context, family entities.Family) error

	Markets() entities.QueryResult[[]entities.MarketCoin]
	Ticker() entities.QueryResult[[]entities.MarketCoin]
	Trending() entities.QueryResult[[]entities.TrendingCoin]
	Featured() []entities.MarketCoin

	LoadCoinDetail(ctx context.Context, coinID string) (entities.QueryResult[*entities.MarketCoin], error)
	LoadChart(ctx context.Context, coinID string, days int) (entities.QueryResult[[]entities.ChartPoint], error)
	LoadFavorites(ctx context.Context) entities.QueryResult[[]entities.MarketCoin]

	Watchlist() []string
	ToggleFavorite(ctx context.Context, coinID string) ([]string, error)
	Theme() entities.Theme
	SetTheme(ctx context.Context, theme entities.Theme) error

	// Ping reports whether the durable store is reachable.
	Ping(ctx context.Context) error
}
