package services

import (
	"context"
	"sync"
)

// Confirmation is the two-step intent of a destructive action: Request
// records the target, Confirm performs the action once, Cancel forgets it.
type Confirmation[K comparable] struct {
	mu      sync.Mutex
	pending *K
	action  func(ctx context.Context, id K) error
}

func NewConfirmation[K comparable](action func(ctx context.Context, id K) error) *Confirmation[K] {
	return &Confirmation[K]{action: action}
}

func (c *Confirmation[K]) Request(id K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = &id
}

func (c *Confirmation[K]) Pending() (K, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		var zero K
		return zero, false
	}
	return *c.pending, true
}

func (c *Confirmation[K]) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

// Confirm runs the action for the pending target. The request is consumed
// whether or not the action succeeds.
func (c *Confirmation[K]) Confirm(ctx context.Context) error {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return ErrNothingToConfirm
	}
	id := *c.pending
	c.pending = nil
	c.mu.Unlock()

	return c.action(ctx, id)
}
