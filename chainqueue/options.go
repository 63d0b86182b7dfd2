package chainqueue

// Options holds configuration options for a [Queue].
type Options[T any] struct {
	Parent *Queue[T]
}

// Option is a function that configures [Options].
type Option[T any] func(*Options[T])

// WithParent chains the [Queue] beneath parent, whose items take precedence
// over its own.
func WithParent[T any](parent *Queue[T]) Option[T] {
	return func(o *Options[T]) {
		o.Parent = parent
	}
}
