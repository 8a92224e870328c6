package broadcast

import (
	"context"
	"iter"
)

// Cancelable wraps the safe queue core with a terminal deactivation
// capability and graceful-stop filtering. Composition keeps the two
// capability sets separate: the embedded core owns {activate,
// observe-next}, the wrapper adds {deactivate} and the [ErrCanceled]
// filter on Once/On/Values.
//
// Raw Next is deliberately NOT filtered: a consumer awaiting the
// pending future sees the true rejection, including ErrCanceled. That
// asymmetry is what lets OnceCancelable's race distinguish a
// graceful listener cancel from a graceful emitter cancel.
type Cancelable[T any] struct {
	base *Emitter[T]
}

// NewCancelable creates a cancellable emitter. It starts alive and
// stays activatable until the first Deactivate or Cancel.
func NewCancelable[T any](opts ...Option) *Cancelable[T] {
	return &Cancelable[T]{base: New[T](opts...)}
}

// Activate settles the pending future with v and re-arms. No-op once
// the emitter is dead. Returns the emitter for chaining.
func (c *Cancelable[T]) Activate(v T) *Cancelable[T] {
	c.base.Activate(v)
	return c
}

// Next returns the current pending future, unfiltered. After
// deactivation it returns the rejected terminal future carrying the
// original error, graceful or not.
func (c *Cancelable[T]) Next() *Future[T] {
	return c.base.Next()
}

// Deactivate terminates the emitter: the pending future rejects with
// err and no further activation is possible. Idempotent — calling it
// (or Cancel) on a dead emitter is a no-op. A nil err is treated as a
// graceful cancellation.
func (c *Cancelable[T]) Deactivate(err error) *Cancelable[T] {
	if err == nil {
		err = ErrCanceled
	}
	c.base.deactivate(err)
	return c
}

// Cancel is the graceful-stop path: Deactivate with [ErrCanceled].
func (c *Cancelable[T]) Cancel() *Cancelable[T] {
	return c.Deactivate(ErrCanceled)
}

// Alive reports whether the emitter can still be activated.
func (c *Cancelable[T]) Alive() bool {
	return c.base.isAlive()
}

// Done returns a channel that is closed when the emitter is
// deactivated, for select-based composition.
func (c *Cancelable[T]) Done() <-chan struct{} {
	return c.base.dead
}

// Once waits for the next activation and invokes fn with its value.
// A graceful cancellation before the activation returns nil without
// calling fn; a fatal deactivation returns its error. fn's own error
// always propagates.
func (c *Cancelable[T]) Once(ctx context.Context, fn func(T) error) error {
	return filterCanceled(c.base.Once(ctx, fn))
}

// On invokes fn for every activation from the moment of the call
// onward and blocks until termination: nil on graceful cancellation,
// the deactivation error on fatal, fn's error if a delivery fails, or
// the context error if ctx ends first.
func (c *Cancelable[T]) On(ctx context.Context, fn func(T) error) error {
	return filterCanceled(c.base.On(ctx, fn))
}

// Values returns a pull-based sequence of activation values, starting
// with activations that occur after the call. A graceful cancellation
// simply ends the sequence; a fatal deactivation yields one final
// (zero, err) element. The returned sequence is single-use.
func (c *Cancelable[T]) Values(ctx context.Context) iter.Seq2[T, error] {
	f := c.Next()
	return func(yield func(T, error) bool) {
		for {
			v, err := f.Await(ctx)
			if err != nil {
				if !Canceled(err) {
					var zero T
					yield(zero, err)
				}
				return
			}
			if !yield(v, nil) {
				return
			}
			f = f.next
		}
	}
}

// filterCanceled swallows the graceful-stop sentinel at the
// consumption boundary. Context cancellation is unrelated and passes
// through.
func filterCanceled(err error) error {
	if Canceled(err) {
		return nil
	}
	return err
}
