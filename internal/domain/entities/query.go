package entities

import "time"

// QueryStatus is the state of a query family.
type QueryStatus string

const (
	StatusIdle               QueryStatus = "IDLE"
	StatusLoading            QueryStatus = "LOADING"
	StatusSucceeded          QueryStatus = "SUCCEEDED"
	StatusFailedWithFallback QueryStatus = "FAILED_WITH_FALLBACK"
	StatusFailedEmpty        QueryStatus = "FAILED_EMPTY"
)

// Family names an independent query stream.
type Family string

const (
	FamilyMarket     Family = "market"
	FamilyTicker     Family = "ticker"
	FamilyTrending   Family = "trending"
	FamilyCoinDetail Family = "coin_detail"
	FamilyChart      Family = "chart"
	FamilyFavorites  Family = "favorites"
	FamilyFeatured   Family = "featured"
)

// QueryResult is the state published for a family.
type QueryResult[T any] struct {
	Data       T           `json:"data"`
	Loading    bool        `json:"loading"`
	Error      *string     `json:"error"`
	Status     QueryStatus `json:"status"`
	Descriptor *Descriptor `json:"descriptor,omitempty"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// ErrorMessage returns the error text or "" when there is none.
func (r QueryResult[T]) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}
