package tieredpool

import (
	"context"
	"fmt"
	"runtime/pprof"
	"sync"
)

// WorkerLoop is the body of a worker. It runs until ctx is done.
type WorkerLoop func(ctx context.Context, name string)

// WorkerFactory creates the workers of a [Dispatcher].
type WorkerFactory interface {
	// NewWorker names a worker for tier and returns a function that runs loop
	// under that name on the calling goroutine.
	NewWorker(tier Tier, loop WorkerLoop) func(ctx context.Context)
}

// NewWorkerFactory returns the default [WorkerFactory]. Workers are named
// "<prefix>-pool-<Tier>-thread-<n>", numbered from 1 within each tier, and run
// with pprof labels carrying the pool, tier and worker names.
func NewWorkerFactory(prefix string) WorkerFactory {
	if prefix == "" {
		prefix = DefaultNamePrefix
	}
	return &workerFactory{
		prefix: prefix,
		counts: make(map[Tier]int),
	}
}

type workerFactory struct {
	prefix string

	mu     sync.Mutex
	counts map[Tier]int
}

func (f *workerFactory) NewWorker(tier Tier, loop WorkerLoop) func(ctx context.Context) {
	f.mu.Lock()
	f.counts[tier]++
	n := f.counts[tier]
	f.mu.Unlock()

	name := fmt.Sprintf("%s-pool-%s-thread-%d", f.prefix, title(tier.String()), n)
	labels := pprof.Labels("pool", f.prefix, "tier", tier.String(), "worker", name)

	return func(ctx context.Context) {
		pprof.Do(ctx, labels, func(ctx context.Context) {
			loop(ctx, name)
		})
	}
}

func title(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
