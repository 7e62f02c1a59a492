package services

import (
	"coin-dashboard-service/internal/domain/entities"
	"coin-dashboard-service/internal/domain/interfaces"
	"context"
	"fmt"
)

// fetchers adapts MarketDataGateway calls to the FetchFunc of each family
type fetchers struct {
	gateway     interfaces.MarketDataGateway
	perPage     int
	searchLimit int
}

// markets serves the shared MarketPage/Search family
func (f fetchers) markets(ctx context.Context, d entities.Descriptor) ([]entities.MarketCoin, error) {
	switch d.Kind {
	case entities.KindMarketPage:
		coins, err := f.gateway.FetchMarkets(ctx, d.Currency, d.Page, f.perPage, true)
		return nonNil(coins), err
	case entities.KindSearch:
		return f.search(ctx, d)
	default:
		return nil, fmt.Errorf("%w: market family cannot serve %s", entities.ErrInvalidDescriptor, d.Kind)
	}
}

// search resolves the term to the top matches first, then fetches their market rows
func (f fetchers) search(ctx context.Context, d entities.Descriptor) ([]entities.MarketCoin, error) {
	hits, err := f.gateway.SearchCoins(ctx, d.Term)
	if err != nil {
		return nil, err
	}
	if len(hits) > f.searchLimit {
		hits = hits[:f.searchLimit]
	}
	if len(hits) == 0 {
		return []entities.MarketCoin{}, nil
	}

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}

	coins, err := f.gateway.FetchMarketsByIDs(ctx, d.Currency, ids, true)
	return nonNil(coins), err
}

func (f fetchers) ticker(ctx context.Context, d entities.Descriptor) ([]entities.MarketCoin, error) {
	coins, err := f.gateway.FetchTickerTop(ctx, d.Currency)
	if err != nil {
		return nil, err
	}
	return InterleaveMovers(coins), nil
}

func (f fetchers) trending(ctx context.Context, _ entities.Descriptor) ([]entities.TrendingCoin, error) {
	coins, err := f.gateway.FetchTrending(ctx)
	if coins == nil {
		coins = []entities.TrendingCoin{}
	}
	return coins, err
}

func (f fetchers) coinDetail(ctx context.Context, d entities.Descriptor) (*entities.MarketCoin, error) {
	coins, err := f.gateway.FetchMarketsByIDs(ctx, d.Currency, []string{d.CoinID}, false)
	if err != nil {
		return nil, err
	}
	if len(coins) == 0 {
		return nil, fmt.Errorf("%w: %s", entities.ErrCoinNotFound, d.CoinID)
	}
	coin := coins[0]
	return &coin, nil
}

func (f fetchers) chart(ctx context.Context, d entities.Descriptor) ([]entities.ChartPoint, error) {
	points, err := f.gateway.FetchChart(ctx, d.CoinID, d.Currency, d.Days)
	if points == nil {
		points = []entities.ChartPoint{}
	}
	return points, err
}

func (f fetchers) favorites(ctx context.Context, d entities.Descriptor) ([]entities.MarketCoin, error) {
	coins, err := f.gateway.FetchMarketsByIDs(ctx, d.Currency, d.IDs, true)
	return nonNil(coins), err
}

func nonNil(coins []entities.MarketCoin) []entities.MarketCoin {
	if coins == nil {
		return []entities.MarketCoin{}
	}
	return coins
}

func emptyCoins() []entities.MarketCoin      { return []entities.MarketCoin{} }
func emptyTrending() []entities.TrendingCoin { return []entities.TrendingCoin{} }
func emptyChart() []entities.ChartPoint      { return []entities.ChartPoint{} }
func emptyDetail() *entities.MarketCoin      { return nil }
