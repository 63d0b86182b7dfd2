// Package blockingqueue implements an unbounded, thread-safe FIFO queue with a
// blocking Take.
package blockingqueue

import (
	"context"
	"sync"

	"github.com/eapache/queue"

	"github.com/tomasbasham/tieredpool/internal/notify"
)

// Queue is an unbounded FIFO. Put never blocks; Take blocks until an item is
// available or its context is done.
type Queue[T any] struct {
	mu       sync.Mutex
	items    *queue.Queue
	notEmpty *notify.Cond
}

// New creates an empty [Queue].
func New[T any]() *Queue[T] {
	q := &Queue[T]{items: queue.New()}
	q.notEmpty = notify.NewCond(&q.mu)
	return q
}

// Put appends item to the tail of the queue and wakes one blocked taker.
func (q *Queue[T]) Put(item T) {
	q.mu.Lock()
	q.items.Add(item)
	q.notEmpty.Signal()
	q.mu.Unlock()
}

// Take removes and returns the head of the queue, blocking while the queue is
// empty. The error is ctx.Err() if ctx is done first.
func (q *Queue[T]) Take(ctx context.Context) (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.Length() == 0 {
		if err := q.notEmpty.Wait(ctx); err != nil {
			var zero T
			return zero, err
		}
	}

	item := q.items.Remove().(T)

	// Another taker may have missed the wakeup for an item still queued.
	if q.items.Length() > 0 {
		q.notEmpty.Signal()
	}
	return item, nil
}

// Poll removes and returns the head of the queue without blocking.
func (q *Queue[T]) Poll() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.items.Length() == 0 {
		var zero T
		return zero, false
	}
	return q.items.Remove().(T), true
}

// Peek returns the head of the queue without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.items.Length() == 0 {
		var zero T
		return zero, false
	}
	return q.items.Peek().(T), true
}

// DrainTo moves every queued item, in order, onto the end of sink and returns
// how many were moved.
func (q *Queue[T]) DrainTo(sink *[]T) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.items.Length()
	for range n {
		*sink = append(*sink, q.items.Remove().(T))
	}
	return n
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}
