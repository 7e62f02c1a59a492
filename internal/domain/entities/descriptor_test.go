package entities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustDescriptor(t)(NewXDescriptor(...)) falla el test si el constructor devuelve error
func mustDescriptor(t *testing.T) func(Descriptor, error) Descriptor {
	return func(d Descriptor, err error) Descriptor {
		t.Helper()
		require.NoError(t, err)
		return d
	}
}

func TestDescriptor_Validate(t *testing.T) {
	tests := []struct {
		name        string
		build       func() (Descriptor, error)
		expectError bool
	}{
		{"market page ok", func() (Descriptor, error) { return NewMarketPageDescriptor("USD", 1) }, false},
		{"market page zero", func() (Descriptor, error) { return NewMarketPageDescriptor("usd", 0) }, true},
		{"bad currency", func() (Descriptor, error) { return NewMarketPageDescriptor("dollars", 1) }, true},
		{"search blank term", func() (Descriptor, error) { return NewSearchDescriptor("usd", "   ") }, true},
		{"search ok", func() (Descriptor, error) { return NewSearchDescriptor("usd", " btc ") }, false},
		{"coin detail empty id", func() (Descriptor, error) { return NewCoinDetailDescriptor("eur", "") }, true},
		{"chart bad days", func() (Descriptor, error) { return NewChartDescriptor("usd", "bitcoin", 14) }, true},
		{"chart ok", func() (Descriptor, error) { return NewChartDescriptor("usd", "bitcoin", 365) }, false},
		{"favorites empty ok", func() (Descriptor, error) { return NewFavoritesDescriptor("mxn", nil) }, false},
		{"ticker ok", func() (Descriptor, error) { return NewTickerDescriptor("mxn") }, false},
		{"unknown kind", func() (Descriptor, error) {
			d := Descriptor{Kind: "NOPE", Currency: "usd"}
			return d, d.Validate()
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidDescriptor))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDescriptor_CacheKeyDeterministic(t *testing.T) {
	a := mustDescriptor(t)(NewMarketPageDescriptor("USD", 2))
	b := mustDescriptor(t)(NewMarketPageDescriptor("usd", 2))
	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.Equal(t, "market_page:usd:2", a.CacheKey())

	fav1 := mustDescriptor(t)(NewFavoritesDescriptor("usd", []string{"solana", "bitcoin", "bitcoin"}))
	fav2 := mustDescriptor(t)(NewFavoritesDescriptor("usd", []string{"bitcoin", "solana"}))
	assert.Equal(t, fav1.CacheKey(), fav2.CacheKey())
	assert.Equal(t, []string{"solana", "bitcoin"}, fav1.IDs)

	assert.Equal(t, "trending", NewTrendingDescriptor().CacheKey())
}

func TestDescriptor_CacheKeyCollisionFree(t *testing.T) {
	descriptors := []Descriptor{
		mustDescriptor(t)(NewMarketPageDescriptor("usd", 1)),
		mustDescriptor(t)(NewMarketPageDescriptor("usd", 11)),
		mustDescriptor(t)(NewMarketPageDescriptor("eur", 1)),
		mustDescriptor(t)(NewSearchDescriptor("usd", "1")),
		mustDescriptor(t)(NewSearchDescriptor("usd", "a:b")),
		mustDescriptor(t)(NewSearchDescriptor("usd", "a")),
		mustDescriptor(t)(NewCoinDetailDescriptor("usd", "a:b")),
		mustDescriptor(t)(NewCoinDetailDescriptor("usd", "a")),
		mustDescriptor(t)(NewChartDescriptor("usd", "a", 1)),
		mustDescriptor(t)(NewChartDescriptor("usd", "a:1", 7)),
		mustDescriptor(t)(NewChartDescriptor("usd", "a", 7)),
		mustDescriptor(t)(NewFavoritesDescriptor("usd", []string{"a,b"})),
		mustDescriptor(t)(NewFavoritesDescriptor("usd", []string{"a", "b"})),
		mustDescriptor(t)(NewFavoritesDescriptor("usd", nil)),
		mustDescriptor(t)(NewTickerDescriptor("usd")),
		NewTrendingDescriptor(),
	}

	seen := make(map[string]int)
	for i, d := range descriptors {
		key := d.CacheKey()
		if prev, ok := seen[key]; ok {
			t.Fatalf("descriptors %d and %d share key %q", prev, i, key)
		}
		seen[key] = i
	}
}

func TestFreshnessWindows_Window(t *testing.T) {
	w := DefaultFreshnessWindows()

	d, ok := w.Window(KindMarketPage)
	assert.True(t, ok)
	assert.Equal(t, "2m0s", d.String())

	_, ok = w.Window(KindSearch)
	assert.False(t, ok)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Rate limit exceeded. Please wait.", UserMessage(ErrRateLimited))
	assert.Equal(t, "Server error.", UserMessage(ErrUpstream))
	assert.Equal(t, "Coin not found.", UserMessage(ErrCoinNotFound))
	assert.Equal(t, "", UserMessage(nil))
}
