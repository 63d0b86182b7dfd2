// Package notify provides a condition variable whose Wait can be abandoned
// through a [context.Context].
package notify

import (
	"context"
	"sync"
)

// Cond is a condition variable in the spirit of [sync.Cond]. Waiters are woken
// in the order they started waiting.
//
// L must be held when calling Wait, Signal, Broadcast and Len.
type Cond struct {
	L sync.Locker

	waiters []chan struct{}
}

// NewCond returns a [Cond] guarded by l.
func NewCond(l sync.Locker) *Cond {
	return &Cond{L: l}
}

// Wait atomically unlocks c.L and suspends the calling goroutine until it is
// woken by Signal or Broadcast, or until ctx is done. c.L is locked again
// before Wait returns, in every case.
//
// A non-nil error is ctx.Err(). A waiter that is cancelled after being
// selected by Signal passes the wakeup on to the next waiter.
func (c *Cond) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ch := make(chan struct{})
	c.waiters = append(c.waiters, ch)
	c.L.Unlock()

	select {
	case <-ch:
		c.L.Lock()
		return nil
	case <-ctx.Done():
		c.L.Lock()
		if !c.remove(ch) {
			c.Signal()
		}
		return ctx.Err()
	}
}

// Signal wakes the longest waiting goroutine, if there is one.
func (c *Cond) Signal() {
	if len(c.waiters) == 0 {
		return
	}
	ch := c.waiters[0]
	c.waiters[0] = nil
	c.waiters = c.waiters[1:]
	close(ch)
}

// Broadcast wakes all waiting goroutines.
func (c *Cond) Broadcast() {
	for _, ch := range c.waiters {
		close(ch)
	}
	c.waiters = nil
}

// Len returns the number of goroutines currently waiting.
func (c *Cond) Len() int {
	return len(c.waiters)
}

func (c *Cond) remove(ch chan struct{}) bool {
	for i, w := range c.waiters {
		if w == ch {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return true
		}
	}
	return false
}
