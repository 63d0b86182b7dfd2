package tieredpool

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// Task is a unit of work submitted to a [Dispatcher]. The context is cancelled
// when the dispatcher is closed.
//
// A task fails by returning an error or by panicking. Either way the failure
// is logged and reported, and the worker carries on.
type Task func(ctx context.Context) error

// PanicError is the failure reported for a [Task] that panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("tieredpool: task panicked: %v", e.Value)
}

func (t Task) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return t(ctx)
}

// envelope is what travels through the queues. The tier and submission time
// are fixed when the task is submitted.
type envelope struct {
	task      Task
	tier      Tier
	submitted time.Time
}
