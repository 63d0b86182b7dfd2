package tieredpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/joeycumines/logiface"
	"golang.org/x/sync/errgroup"

	"github.com/tomasbasham/tieredpool/chainqueue"
)

var (
	// ErrUnknownTier is returned when submitting to a tier the [Dispatcher]
	// does not run.
	ErrUnknownTier = errors.New("tieredpool: unknown tier")

	// ErrNilTask is returned when submitting a nil [Task].
	ErrNilTask = errors.New("tieredpool: nil task")

	// ErrClosed is returned when submitting to a closed [Dispatcher].
	ErrClosed = errors.New("tieredpool: dispatcher closed")
)

// MetricsHook defines hooks for monitoring submit and execute events. Hooks
// are called synchronously, execute hooks from worker goroutines.
type MetricsHook interface {
	OnSubmit(tier Tier)
	OnExecute(e Execution)
}

// Execution describes a finished [Task].
type Execution struct {
	// Tier is the tier the task was submitted to.
	Tier Tier
	// WorkerTier is the tier of the worker that ran the task. It is never
	// higher than Tier, since workers also serve the tiers above their own.
	WorkerTier Tier
	Worker     string

	Queued  time.Duration
	Elapsed time.Duration
	Err     error
}

// Dispatcher runs tasks on a fixed set of worker pools, one per [Tier]:
//
//   - High, with 1 worker
//   - Medium, with 2 workers
//   - Low, with 3 workers
//
// Every worker serves its own tier and the tiers above it, always taking from
// the highest tier with pending work first. Within a tier tasks start in the
// order they were submitted. Nothing prevents sustained high tier load from
// starving the lower tiers.
type Dispatcher struct {
	mu     sync.RWMutex
	closed bool

	queues map[Tier]*chainqueue.Queue[envelope]
	lowest *chainqueue.Queue[envelope]

	logger  *logiface.Logger[logiface.Event]
	metrics MetricsHook

	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group
}

// New creates a new [Dispatcher] with the given options. All workers are
// started, and waiting for work, by the time New returns.
func New(opts ...Option) *Dispatcher {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}

	factory := o.WorkerFactory
	if factory == nil {
		factory = NewWorkerFactory(o.NamePrefix)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		queues:  make(map[Tier]*chainqueue.Queue[envelope]),
		logger:  o.Logger,
		metrics: o.Metrics,
		ctx:     ctx,
		cancel:  cancel,
	}

	// Each tier's queue is chained beneath the one above it.
	var parent *chainqueue.Queue[envelope]
	for _, tier := range Tiers.All() {
		var qopts []chainqueue.Option[envelope]
		if parent != nil {
			qopts = append(qopts, chainqueue.WithParent(parent))
		}
		q, err := chainqueue.New(qopts...)
		if err != nil {
			panic(err) // parents are fresh, so they cannot have a child yet.
		}
		d.queues[tier] = q
		parent = q
	}
	d.lowest = parent

	var ready sync.WaitGroup
	for _, tier := range Tiers.All() {
		for range tier.Workers() {
			ready.Add(1)
			run := factory.NewWorker(tier, d.work(tier, &ready))
			d.group.Go(func() error {
				run(d.ctx)
				return nil
			})
		}
	}
	ready.Wait()

	d.logger.Debug().Log("dispatcher started")
	return d
}

// Submit queues task on the given tier. It never blocks.
func (d *Dispatcher) Submit(task Task, tier Tier) error {
	if !tier.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	if task == nil {
		return ErrNilTask
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}

	d.queues[tier].Offer(envelope{
		task:      task,
		tier:      tier,
		submitted: time.Now(),
	})

	if d.metrics != nil {
		d.metrics.OnSubmit(tier)
	}
	return nil
}

// Pending returns the number of tasks waiting on the given tier, excluding the
// tiers above it.
func (d *Dispatcher) Pending(tier Tier) int {
	q, ok := d.queues[tier]
	if !ok {
		return 0
	}
	return q.Len()
}

// Close stops the workers and waits for running tasks to return. Tasks still
// waiting are returned, highest tier first, without being run. Running tasks
// see their context cancelled.
//
// Only the first call does anything; later calls return nil straight away.
func (d *Dispatcher) Close() []Task {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	_ = d.group.Wait()

	var pending []envelope
	d.lowest.DrainTo(&pending)

	tasks := make([]Task, len(pending))
	for i, env := range pending {
		tasks[i] = env.task
	}

	d.logger.Debug().
		Int("unexecuted", len(tasks)).
		Log("dispatcher closed")

	return tasks
}

// work returns the loop run by each worker of tier.
func (d *Dispatcher) work(tier Tier, ready *sync.WaitGroup) WorkerLoop {
	q := d.queues[tier]

	return func(ctx context.Context, name string) {
		logger := d.logger.Clone().
			Str("tier", tier.String()).
			Str("worker", name).
			Logger()

		logger.Debug().Log("worker started")
		ready.Done()

		for {
			env, err := q.Take(ctx)
			if err != nil {
				logger.Debug().Err(err).Log("worker stopped")
				return
			}
			d.execute(ctx, logger, tier, name, env)
		}
	}
}

func (d *Dispatcher) execute(ctx context.Context, logger *logiface.Logger[logiface.Event], tier Tier, name string, env envelope) {
	start := time.Now()
	err := env.task.run(ctx)
	elapsed := time.Since(start)

	if err != nil {
		b := logger.Err().
			Err(err).
			Str("task_tier", env.tier.String())

		var perr *PanicError
		if errors.As(err, &perr) {
			b = b.Str("stack", string(perr.Stack))
		}
		b.Log("task failed")
	}

	if d.metrics != nil {
		d.metrics.OnExecute(Execution{
			Tier:       env.tier,
			WorkerTier: tier,
			Worker:     name,
			Queued:     start.Sub(env.submitted),
			Elapsed:    elapsed,
			Err:        err,
		})
	}
}
