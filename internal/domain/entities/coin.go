package entities

// MarketCoin is one row of a CoinGecko markets listing.
type MarketCoin struct {
	ID                       string     `json:"id"`
	Symbol                   string     `json:"symbol"`
	Name                     string     `json:"name"`
	Image                    string     `json:"image"`
	CurrentPrice             float64    `json:"current_price"`
	MarketCap                float64    `json:"market_cap"`
	MarketCapRank            int        `json:"market_cap_rank"`
	TotalVolume              float64    `json:"total_volume"`
	High24h                  float64    `json:"high_24h"`
	Low24h                   float64    `json:"low_24h"`
	PriceChangePercentage24h float64    `json:"price_change_percentage_24h"`
	Sparkline                *Sparkline `json:"sparkline_in_7d,omitempty"`
}

type Sparkline struct {
	Price []float64 `json:"price"`
}

// TrendingCoin is an entry of the trending feed.
type TrendingCoin struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	Thumb          string  `json:"thumb"`
	MarketCapRank  int     `json:"market_cap_rank"`
	PriceChange24h float64 `json:"price_change_percentage_24h"`
}

// SearchHit is a coin matched by a free-text search.
type SearchHit struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
}

// ChartPoint is one sample of a historical price series; Date is epoch millis.
type ChartPoint struct {
	Date  int64   `json:"date"`
	Price float64 `json:"price"`
}
