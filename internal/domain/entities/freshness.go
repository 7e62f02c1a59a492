package entities

import "time"

// FreshnessWindows holds the maximum age per kind for proactive cache use.
// A kind without a window (SEARCH) is never served from the proactive cache.
type FreshnessWindows map[Kind]time.Duration

func DefaultFreshnessWindows() FreshnessWindows {
	return FreshnessWindows{
		KindMarketPage: 2 * time.Minute,
		KindTicker:     5 * time.Minute,
		KindTrending:   15 * time.Minute,
		KindCoinDetail: 5 * time.Minute,
		KindChart:      10 * time.Minute,
		KindFavorites:  5 * time.Minute,
	}
}

// Window returns the freshness window for kind and whether the kind is cacheable.
func (w FreshnessWindows) Window(kind Kind) (time.Duration, bool) {
	if kind == KindSearch {
		return 0, false
	}
	d, ok := w[kind]
	return d, ok
}
