package services

import (
	"context"
	"testing"
	"time"

	"coin-dashboard-service/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeaturedRotator_SamplesDistinctCoins(t *testing.T) {
	source := []entities.MarketCoin{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}}
	pub := newRecordingPublisher()
	r := NewFeaturedRotator(func() []entities.MarketCoin { return source }, 3, time.Hour, pub)

	for i := 0; i < 20; i++ {
		sample := r.Rotate()
		require.Len(t, sample, 3)
		seen := map[string]bool{}
		for _, c := range sample {
			assert.False(t, seen[c.ID], "duplicate %s", c.ID)
			seen[c.ID] = true
		}
	}
	assert.Equal(t, 20, pub.count(entities.FamilyFeatured))
}

func TestFeaturedRotator_SmallOrEmptySource(t *testing.T) {
	var source []entities.MarketCoin
	r := NewFeaturedRotator(func() []entities.MarketCoin { return source }, 3, time.Hour, nil)

	assert.Empty(t, r.Rotate())

	source = []entities.MarketCoin{{ID: "only"}}
	assert.Len(t, r.Rotate(), 1)

	source = nil
	assert.Len(t, r.Rotate(), 1, "an empty source keeps the previous sample")
}

func TestFeaturedRotator_StartStop(t *testing.T) {
	source := []entities.MarketCoin{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	pub := newRecordingPublisher()
	r := NewFeaturedRotator(func() []entities.MarketCoin { return source }, 3, 10*time.Millisecond, pub)

	r.Start(context.Background())
	r.Start(context.Background())
	assert.True(t, r.Running())

	assert.Eventually(t, func() bool {
		return pub.count(entities.FamilyFeatured) >= 3
	}, time.Second, 5*time.Millisecond)

	r.Stop()
	assert.False(t, r.Running())
	stopped := pub.count(entities.FamilyFeatured)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, pub.count(entities.FamilyFeatured))

	r.Stop()
}
