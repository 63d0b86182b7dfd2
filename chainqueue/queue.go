package chainqueue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomasbasham/tieredpool/internal/blockingqueue"
	"github.com/tomasbasham/tieredpool/internal/notify"
)

// Queue is a node in a chain of blocking FIFO queues. It is unbounded and
// safe for concurrent use.
type Queue[T any] struct {
	parent *Queue[T]
	child  atomic.Pointer[Queue[T]]

	store *blockingqueue.Queue[T]

	// Mutex guards take resolution across the chain and the wait set below.
	// Locks are only ever nested from child to parent.
	mu       sync.Mutex
	notEmpty *notify.Cond
}

// New creates a new [Queue] with the given options. It fails with
// [ErrChildLinked] if the parent already has a child.
func New[T any](opts ...Option[T]) (*Queue[T], error) {
	o := &Options[T]{}
	for _, opt := range opts {
		opt(o)
	}

	q := &Queue[T]{
		parent: o.Parent,
		store:  blockingqueue.New[T](),
	}
	q.notEmpty = notify.NewCond(&q.mu)

	if q.parent != nil && !q.parent.child.CompareAndSwap(nil, q) {
		return nil, ErrChildLinked
	}
	return q, nil
}

// Parent returns the queue this one is chained beneath, or nil.
func (q *Queue[T]) Parent() *Queue[T] {
	return q.parent
}

// Child returns the queue chained beneath this one, or nil.
func (q *Queue[T]) Child() *Queue[T] {
	return q.child.Load()
}

// Len returns the number of items in this queue, excluding its parents.
func (q *Queue[T]) Len() int {
	return q.store.Len()
}

// TotalPending returns the number of items in this queue and all of its
// parents. The count is a snapshot and may be stale by the time it is used.
func (q *Queue[T]) TotalPending() int {
	n := 0
	for p := q; p != nil; p = p.parent {
		n += p.store.Len()
	}
	return n
}

// Offer appends item to this queue and wakes a blocked taker on this queue and
// on each of its descendants. It never blocks.
func (q *Queue[T]) Offer(item T) {
	q.store.Put(item)
	q.signalNotEmpty()
}

// Poll removes and returns the highest priority item available to this queue
// without blocking. Items held by parents are returned before its own.
func (q *Queue[T]) Poll() (T, bool) {
	if q.parent == nil {
		return q.store.Poll()
	}
	if q.TotalPending() == 0 {
		var zero T
		return zero, false
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.poll()
}

// Peek returns the item Poll would remove, without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if q.parent == nil {
		return q.store.Peek()
	}
	if q.TotalPending() == 0 {
		var zero T
		return zero, false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if item, ok := q.parent.Peek(); ok {
		return item, true
	}
	return q.store.Peek()
}

// Take removes and returns the highest priority item available to this queue,
// blocking until there is one. If ctx is done first, Take returns an error
// wrapping both [ErrInterrupted] and ctx.Err().
func (q *Queue[T]) Take(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, interrupted(err)
	}

	if q.parent == nil {
		item, err := q.store.Take(ctx)
		if err != nil {
			return zero, interrupted(err)
		}
		return item, nil
	}

	q.mu.Lock()
	for {
		for q.TotalPending() == 0 {
			if err := q.notEmpty.Wait(ctx); err != nil {
				q.mu.Unlock()
				return zero, interrupted(err)
			}
		}

		// A parent's own takers may have won the race for the item counted
		// above, in which case go back to waiting.
		item, ok := q.poll()
		if !ok {
			continue
		}

		remaining := q.TotalPending() != 0
		q.mu.Unlock()

		if remaining {
			q.signalNotEmpty()
		}
		return item, nil
	}
}

// DrainTo moves every item available to this queue onto the end of sink, the
// parents' items first, and returns how many were moved.
func (q *Queue[T]) DrainTo(sink *[]T) int {
	n := 0
	if q.parent != nil {
		n += q.parent.DrainTo(sink)
	}
	return n + q.store.DrainTo(sink)
}

// PollTimeout always fails with [ErrUnsupported].
func (q *Queue[T]) PollTimeout(time.Duration) (T, error) {
	var zero T
	return zero, ErrUnsupported
}

// OfferTimeout always fails with [ErrUnsupported].
func (q *Queue[T]) OfferTimeout(T, time.Duration) error {
	return ErrUnsupported
}

// poll must be called with q.mu held.
func (q *Queue[T]) poll() (T, bool) {
	if item, ok := q.parent.Poll(); ok {
		return item, true
	}
	return q.store.Poll()
}

// signalNotEmpty wakes one taker on q and then on each descendant in turn.
// Only one lock is held at a time.
func (q *Queue[T]) signalNotEmpty() {
	for n := q; n != nil; n = n.child.Load() {
		n.mu.Lock()
		n.notEmpty.Signal()
		n.mu.Unlock()
	}
}
