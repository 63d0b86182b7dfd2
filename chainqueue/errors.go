package chainqueue

import (
	"errors"
	"fmt"
)

var (
	// ErrInterrupted is returned by [Queue.Take] when its context is done
	// before an item becomes available. The returned error also wraps the
	// context's error.
	ErrInterrupted = errors.New("chainqueue: interrupted while waiting")

	// ErrUnsupported is returned by the timed operations, which a chained
	// queue does not provide.
	ErrUnsupported = fmt.Errorf("chainqueue: timed operation: %w", errors.ErrUnsupported)

	// ErrChildLinked is returned when creating a queue beneath a parent that
	// already has a child.
	ErrChildLinked = errors.New("chainqueue: parent already has a child")
)

func interrupted(err error) error {
	return fmt.Errorf("%w: %w", ErrInterrupted, err)
}
