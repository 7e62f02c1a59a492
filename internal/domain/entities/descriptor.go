package entities

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the logical query a Descriptor stands for.
type Kind string

const (
	KindMarketPage Kind = "MARKET_PAGE"
	KindSearch     Kind = "SEARCH"
	KindCoinDetail Kind = "COIN_DETAIL"
	KindFavorites  Kind = "FAVORITES"
	KindTrending   Kind = "TRENDING"
	KindChart      Kind = "CHART"
	KindTicker     Kind = "TICKER"
)

// ChartRanges are the day ranges accepted for CHART descriptors.
var ChartRanges = []int{1, 7, 30, 365}

var currencyPattern = regexp.MustCompile(`^[a-z]{3}$`)

// Descriptor identifies one logical data request. Only the fields relevant
// to Kind are populated; constructors validate and normalize them.
type Descriptor struct {
	Kind     Kind     `json:"kind"`
	Currency string   `json:"currency,omitempty"`
	Page     int      `json:"page,omitempty"`
	Term     string   `json:"term,omitempty"`
	CoinID   string   `json:"coin_id,omitempty"`
	Days     int      `json:"days,omitempty"`
	IDs      []string `json:"ids,omitempty"`
}

func NewMarketPageDescriptor(currency string, page int) (Descriptor, error) {
	d := Descriptor{Kind: KindMarketPage, Currency: normalizeCurrency(currency), Page: page}
	return d, d.Validate()
}

func NewSearchDescriptor(currency, term string) (Descriptor, error) {
	d := Descriptor{Kind: KindSearch, Currency: normalizeCurrency(currency), Term: strings.TrimSpace(term)}
	return d, d.Validate()
}

func NewCoinDetailDescriptor(currency, coinID string) (Descriptor, error) {
	d := Descriptor{Kind: KindCoinDetail, Currency: normalizeCurrency(currency), CoinID: strings.TrimSpace(coinID)}
	return d, d.Validate()
}

func NewChartDescriptor(currency, coinID string, days int) (Descriptor, error) {
	d := Descriptor{Kind: KindChart, Currency: normalizeCurrency(currency), CoinID: strings.TrimSpace(coinID), Days: days}
	return d, d.Validate()
}

// NewFavoritesDescriptor keeps the watchlist order but drops blanks and duplicates.
func NewFavoritesDescriptor(currency string, ids []string) (Descriptor, error) {
	seen := make(map[string]bool, len(ids))
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		clean = append(clean, id)
	}
	d := Descriptor{Kind: KindFavorites, Currency: normalizeCurrency(currency), IDs: clean}
	return d, d.Validate()
}

func NewTickerDescriptor(currency string) (Descriptor, error) {
	d := Descriptor{Kind: KindTicker, Currency: normalizeCurrency(currency)}
	return d, d.Validate()
}

// NewTrendingDescriptor has no parameters: trending data is the same for every currency.
func NewTrendingDescriptor() Descriptor {
	return Descriptor{Kind: KindTrending}
}

// Validate checks the kind-specific parameters.
func (d Descriptor) Validate() error {
	if d.Kind != KindTrending && !currencyPattern.MatchString(d.Currency) {
		return fmt.Errorf("%w: currency %q must be a 3-letter code", ErrInvalidDescriptor, d.Currency)
	}

	switch d.Kind {
	case KindMarketPage:
		if d.Page < 1 {
			return fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidDescriptor, d.Page)
		}
	case KindSearch:
		if d.Term == "" {
			return fmt.Errorf("%w: search term cannot be empty", ErrInvalidDescriptor)
		}
	case KindCoinDetail:
		if d.CoinID == "" {
			return fmt.Errorf("%w: coin id cannot be empty", ErrInvalidDescriptor)
		}
	case KindChart:
		if d.CoinID == "" {
			return fmt.Errorf("%w: coin id cannot be empty", ErrInvalidDescriptor)
		}
		if !IsValidChartRange(d.Days) {
			return fmt.Errorf("%w: days must be one of %v, got %d", ErrInvalidDescriptor, ChartRanges, d.Days)
		}
	case KindFavorites, KindTicker, KindTrending:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidDescriptor, d.Kind)
	}
	return nil
}

// CacheKey maps the descriptor to its storage key. Parameters are query-escaped
// so ':' and ',' only ever appear as separators, which keeps keys unique per
// kind and parameter combination.
func (d Descriptor) CacheKey() string {
	esc := url.QueryEscape
	parts := []string{strings.ToLower(string(d.Kind))}

	switch d.Kind {
	case KindMarketPage:
		parts = append(parts, esc(d.Currency), strconv.Itoa(d.Page))
	case KindSearch:
		parts = append(parts, esc(d.Currency), esc(d.Term))
	case KindCoinDetail:
		parts = append(parts, esc(d.Currency), esc(d.CoinID))
	case KindChart:
		parts = append(parts, esc(d.Currency), esc(d.CoinID), strconv.Itoa(d.Days))
	case KindFavorites:
		ids := make([]string, len(d.IDs))
		for i, id := range d.IDs {
			ids[i] = esc(id)
		}
		sort.Strings(ids)
		parts = append(parts, esc(d.Currency), strings.Join(ids, ","))
	case KindTicker:
		parts = append(parts, esc(d.Currency))
	}

	return strings.Join(parts, ":")
}

// IsValidChartRange reports whether days is an accepted chart range.
func IsValidChartRange(days int) bool {
	for _, r := range ChartRanges {
		if r == days {
			return true
		}
	}
	return false
}

func normalizeCurrency(currency string) string {
	return strings.ToLower(strings.TrimSpace(currency))
}
