package services

import (
	"context"
	"sync"
)

// Token identifies one fetch attempt of a family. Its context is cancelled
// as soon as the attempt is superseded, aborted or finished.
type Token struct {
	id     uint64
	ctx    context.Context
	cancel context.CancelFunc
}

func (t *Token) ID() uint64 { return t.id }

func (t *Token) Context() context.Context { return t.ctx }

// CancellationController tracks the most recent attempt of one fetch stream.
type CancellationController struct {
	mu     sync.Mutex
	seq    uint64
	active *Token
}

func NewCancellationController() *CancellationController {
	return &CancellationController{}
}

// Begin cancels the pending attempt, if any, and returns a new active token
// whose context derives from parent.
func (c *CancellationController) Begin(parent context.Context) *Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		c.active.cancel()
	}

	c.seq++
	ctx, cancel := context.WithCancel(parent)
	c.active = &Token{id: c.seq, ctx: ctx, cancel: cancel}
	return c.active
}

// IsActive reports whether t is still the current attempt and was not cancelled.
func (c *CancellationController) IsActive(t *Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return t != nil && c.active == t && t.ctx.Err() == nil
}

// Abort cancels the pending attempt without starting a new one.
func (c *CancellationController) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		c.active.cancel()
		c.active = nil
	}
}

// Finish releases t. It only clears the controller when t is still active.
func (c *CancellationController) Finish(t *Token) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == t {
		c.active = nil
	}
	t.cancel()
}
