package dto

import (
	"coin-dashboard-service/internal/domain/entities"
	"time"

	"github.com/shopspring/decimal"
)

// ErrorResponse represents a standard error response for endpoints
type ErrorResponse struct {
	Error   string `json:"error"`             // Error code, e.g. INVALID_PARAMETER
	Message string `json:"message,omitempty"` // Detailed error description
	Code    string `json:"code,omitempty"`    // HTTP status code
}

// HealthResponse represents the health check response with service status
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
}

// StateResponse is the full dashboard state as seen by a freshly connected client
type StateResponse struct {
	Currency   string                                        `json:"currency"`
	Currencies []string                                      `json:"currencies"`
	Page       int                                           `json:"page"`
	SearchTerm string                                        `json:"search_term"`
	Theme      entities.Theme                                `json:"theme"`
	Watchlist  []string                                      `json:"watchlist"`
	Markets    entities.QueryResult[[]entities.MarketCoin]   `json:"markets"`
	Ticker     entities.QueryResult[[]entities.MarketCoin]   `json:"ticker"`
	Trending   entities.QueryResult[[]entities.TrendingCoin] `json:"trending"`
	Featured   []entities.MarketCoin                         `json:"featured"`
}

// WatchlistResponse lists the favorite coin ids in insertion order
type WatchlistResponse struct {
	IDs []string `json:"ids"`
}

// ThemeResponse carries the theme preference
type ThemeResponse struct {
	Theme entities.Theme `json:"theme"`
}

// SimulationResponse is the investment projection for a coin
type SimulationResponse struct {
	CoinID        string          `json:"coin_id"`
	Currency      string          `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	TargetPrice   decimal.Decimal `json:"target_price"`
	SmartTarget   decimal.Decimal `json:"smart_target"`
	CoinsOwned    decimal.Decimal `json:"coins_owned"`
	FutureValue   decimal.Decimal `json:"future_value"`
	Profit        decimal.Decimal `json:"profit"`
	GrowthPercent decimal.Decimal `json:"growth_percent"`
}

// StreamMessage is one push over the websocket stream
type StreamMessage struct {
	Family    entities.Family `json:"family"`
	State     any             `json:"state"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(error string, message string) *ErrorResponse {
	return &ErrorResponse{
		Error:   error,
		Message: message,
	}
}

// NewErrorResponseWithCode creates an error response with code
func NewErrorResponseWithCode(error string, message string, code string) *ErrorResponse {
	return &ErrorResponse{
		Error:   error,
		Message: message,
		Code:    code,
	}
}

// NewHealthResponse creates a health check response
func NewHealthResponse(status string, services map[string]string) *HealthResponse {
	return &HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
	}
}
