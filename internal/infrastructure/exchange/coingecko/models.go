package coingecko

import "coin-dashboard-service/internal/domain/entities"

// TrendingResponse representa la respuesta de /search/trending
type TrendingResponse struct {
	Coins []struct {
		Item TrendingItem `json:"item"`
	} `json:"coins"`
}

type TrendingItem struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Thumb         string `json:"thumb"`
	MarketCapRank int    `json:"market_cap_rank"`
	Data          struct {
		PriceChangePercentage24h map[string]float64 `json:"price_change_percentage_24h"`
	} `json:"data"`
}

// ToEntity convierte el item en la entidad de dominio; el cambio 24h se toma en USD
func (t TrendingItem) ToEntity() entities.TrendingCoin {
	return entities.TrendingCoin{
		ID:             t.ID,
		Name:           t.Name,
		Symbol:         t.Symbol,
		Thumb:          t.Thumb,
		MarketCapRank:  t.MarketCapRank,
		PriceChange24h: t.Data.PriceChangePercentage24h["usd"],
	}
}

// SearchResponse representa la respuesta de /search
type SearchResponse struct {
	Coins []entities.SearchHit `json:"coins"`
}

// MarketChartResponse representa la respuesta de /coins/{id}/market_chart.
// Cada muestra es [epoch_ms, price].
type MarketChartResponse struct {
	Prices [][]float64 `json:"prices"`
}

// Points convierte las muestras a ChartPoint, descartando las incompletas
func (m MarketChartResponse) Points() []entities.ChartPoint {
	points := make([]entities.ChartPoint, 0, len(m.Prices))
	for _, sample := range m.Prices {
		if len(sample) < 2 {
			continue
		}
		points = append(points, entities.ChartPoint{
			Date:  int64(sample[0]),
			Price: sample[1],
		})
	}
	return points
}
