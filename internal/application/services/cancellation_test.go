package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCancellationController_BeginSupersedes(t *testing.T) {
	c := NewCancellationController()

	first := c.Begin(context.Background())
	assert.True(t, c.IsActive(first))

	second := c.Begin(context.Background())
	assert.False(t, c.IsActive(first))
	assert.ErrorIs(t, first.Context().Err(), context.Canceled)
	assert.True(t, c.IsActive(second))
	assert.Greater(t, second.ID(), first.ID())
}

func TestCancellationController_AbortAndFinish(t *testing.T) {
	c := NewCancellationController()

	tok := c.Begin(context.Background())
	c.Abort()
	assert.False(t, c.IsActive(tok))
	assert.Error(t, tok.Context().Err())

	tok = c.Begin(context.Background())
	stale := tok
	newer := c.Begin(context.Background())
	c.Finish(stale)
	assert.True(t, c.IsActive(newer), "finishing a superseded token leaves the newer one active")

	c.Finish(newer)
	assert.False(t, c.IsActive(newer))
	assert.False(t, c.IsActive(nil))
}

func TestCancellationController_ParentValuesSurviveDetach(t *testing.T) {
	type key struct{}
	parent, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "req_1"))
	c := NewCancellationController()

	tok := c.Begin(context.WithoutCancel(parent))
	cancel()

	assert.True(t, c.IsActive(tok), "a client disconnect does not cancel a detached attempt")
	assert.Equal(t, "req_1", tok.Context().Value(key{}))
}
