package broadcast

import "context"

// Future is a read-only view of the next activation (or termination)
// of an emitter. A future settles exactly once: it either resolves
// with an activation value or rejects with a deactivation error.
//
// Futures form the emitter's settlement chain. When an activation
// resolves a future, the emitter has already installed the successor,
// so chain-following consumers (On, Values, Clone, Merge, Filter)
// never lose an activation between wakeups.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
	next  *Future[T] // successor; nil until resolved, stays nil on rejection
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Done returns a channel that is closed when the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has been resolved or rejected.
func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the future settles or ctx ends.
//
// On resolution it returns the activation value. On rejection it
// returns the deactivation error unfiltered: a graceful cancellation
// surfaces here as [ErrCanceled]. If ctx ends first, Await returns
// the context error and the future remains pending from the caller's
// point of view.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
