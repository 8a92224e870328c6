package broadcast

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/broadcast/pkg/broadcast/observability"
)

// Emitter is the safe variant: an activation source whose futures only
// ever resolve. It has no terminal state of its own — every consuming
// method runs until its context ends. Wrap it in a [Cancelable] (or
// derive one with [Clone]) when termination is needed.
//
// The zero value is not usable; construct with [New].
type Emitter[T any] struct {
	cfg settings

	mu      sync.Mutex
	pending *Future[T]
	alive   bool
	seq     uint64        // activations so far, for log attribution
	dead    chan struct{} // closed on deactivation (Cancelable only)
}

// New creates a safe emitter. It starts alive with one pending future.
func New[T any](opts ...Option) *Emitter[T] {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Emitter[T]{
		cfg:     cfg,
		pending: newFuture[T](),
		alive:   true,
		dead:    make(chan struct{}),
	}
}

// Activate settles the current pending future with v and installs a
// fresh one before any awaiting consumer can observe the settlement.
// It is safe to call from any goroutine, any number of times,
// back-to-back: consecutive activations never merge into one
// observation for chain-following consumers.
//
// Returns the emitter for chaining. No-op once the emitter has been
// deactivated through a [Cancelable] wrapper.
func (e *Emitter[T]) Activate(v T) *Emitter[T] {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		if e.cfg.logger != nil {
			e.cfg.logger.Debug("activation dropped, emitter dead",
				slog.String("emitter_id", e.cfg.id))
		}
		return e
	}
	f := e.pending
	succ := newFuture[T]()
	e.pending = succ
	e.seq++
	seq := e.seq
	f.value = v
	f.next = succ
	close(f.done)
	e.mu.Unlock()

	e.cfg.metrics.RecordActivation(context.Background(), e.cfg.id)
	observability.LogActivation(e.cfg.logger, e.cfg.id, seq)
	return e
}

// Next returns the current pending future. Between two activations the
// same future instance is returned, so repeated reads settle together
// on the same activation. After deactivation it returns the rejected
// terminal future, unfiltered (a graceful cancel is visible here as
// [ErrCanceled]).
func (e *Emitter[T]) Next() *Future[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// Once waits for the next activation and invokes fn with its value.
// It returns fn's error, the deactivation error if the emitter
// terminates first, or the context error if ctx ends first.
// Activations that occurred before the call are not delivered.
func (e *Emitter[T]) Once(ctx context.Context, fn func(T) error) error {
	f := e.Next()
	v, err := f.Await(ctx)
	if err != nil {
		return err
	}
	return e.deliver(ctx, v, fn)
}

// On invokes fn for every activation from the moment of the call
// onward, exactly once per activation, in activation order. It blocks
// until the emitter terminates (rejecting the chain), fn returns an
// error, or ctx ends.
func (e *Emitter[T]) On(ctx context.Context, fn func(T) error) error {
	f := e.Next()
	for {
		v, err := f.Await(ctx)
		if err != nil {
			return err
		}
		if err := e.deliver(ctx, v, fn); err != nil {
			return err
		}
		f = f.next
	}
}

// Values returns a pull-based sequence of activation values, starting
// with activations that occur after the call. For the safe variant the
// sequence is unbounded; it stops only when ctx ends or the consumer
// breaks. The returned sequence is single-use.
func (e *Emitter[T]) Values(ctx context.Context) iter.Seq[T] {
	f := e.Next()
	return func(yield func(T) bool) {
		for {
			v, err := f.Await(ctx)
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
			f = f.next
		}
	}
}

// deliver runs one listener callback with span/metric instrumentation.
func (e *Emitter[T]) deliver(ctx context.Context, v T, fn func(T) error) error {
	ctx, span := e.cfg.spans.StartDeliverySpan(ctx, e.cfg.id)
	start := time.Now()

	err := fn(v)
	elapsed := time.Since(start)

	e.cfg.spans.EndSpanWithError(span, err)
	e.cfg.metrics.RecordDelivery(ctx, e.cfg.id, elapsed, err)
	if err != nil {
		observability.LogListenerError(e.cfg.logger, e.cfg.id, err)
		return &ListenerError{EmitterID: e.cfg.id, Err: err}
	}
	observability.LogDelivery(e.cfg.logger, e.cfg.id, float64(elapsed.Milliseconds()))
	return nil
}

// deactivate rejects the pending future and marks the emitter dead.
// Reports whether this call was the terminal one (false when already
// dead). Exposed publicly only through Cancelable.
func (e *Emitter[T]) deactivate(err error) bool {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return false
	}
	e.alive = false
	f := e.pending
	f.err = err
	close(f.done)
	close(e.dead)
	e.mu.Unlock()

	graceful := Canceled(err)
	e.cfg.metrics.RecordDeactivation(context.Background(), e.cfg.id, graceful)
	observability.LogDeactivation(e.cfg.logger, e.cfg.id, err, graceful)
	return true
}

// isAlive reports whether the settlement capability is still live.
func (e *Emitter[T]) isAlive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alive
}
