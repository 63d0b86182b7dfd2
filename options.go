package tieredpool

import "github.com/joeycumines/logiface"

// DefaultNamePrefix is the pool name used for workers when no prefix is
// configured.
const DefaultNamePrefix = "RG"

// Options holds configuration options for the [Dispatcher].
type Options struct {
	Logger        *logiface.Logger[logiface.Event]
	WorkerFactory WorkerFactory
	NamePrefix    string
	Metrics       MetricsHook
}

// Option is a function that configures [Options].
type Option func(*Options)

// WithLogger sets the logger for the [Dispatcher]. Without one nothing is
// logged.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithWorkerFactory sets the [WorkerFactory] used to start workers. It takes
// precedence over [WithNamePrefix].
func WithWorkerFactory(f WorkerFactory) Option {
	return func(o *Options) {
		o.WorkerFactory = f
	}
}

// WithNamePrefix sets the pool name used by the default [WorkerFactory].
func WithNamePrefix(prefix string) Option {
	return func(o *Options) {
		o.NamePrefix = prefix
	}
}

// WithMetricsHook sets the metrics hook for the [Dispatcher].
func WithMetricsHook(hook MetricsHook) Option {
	return func(o *Options) {
		o.Metrics = hook
	}
}
