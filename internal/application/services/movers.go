package services

import "coin-dashboard-service/internal/domain/entities"

// InterleaveMovers alternates gainers (24h change >= 0) and losers, keeping
// each group's order, and appends whatever remains of the longer group.
func InterleaveMovers(coins []entities.MarketCoin) []entities.MarketCoin {
	gainers := make([]entities.MarketCoin, 0, len(coins))
	losers := make([]entities.MarketCoin, 0, len(coins))
	for _, c := range coins {
		if c.PriceChangePercentage24h >= 0 {
			gainers = append(gainers, c)
		} else {
			losers = append(losers, c)
		}
	}

	out := make([]entities.MarketCoin, 0, len(coins))
	for i := 0; i < len(gainers) || i < len(losers); i++ {
		if i < len(gainers) {
			out = append(out, gainers[i])
		}
		if i < len(losers) {
			out = append(out, losers[i])
		}
	}
	return out
}
