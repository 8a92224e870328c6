package broadcast

import (
	"context"
	"fmt"
	"sync"
)

// CancelFunc detaches a single listener. Idempotent and safe to call
// from any goroutine. It never affects the emitter itself or its
// other listeners.
type CancelFunc func()

// OnceCancelable races the next activation against a per-listener
// killer. If the activation wins, fn is invoked with its value; if the
// returned CancelFunc fires first, the listener stops silently (a
// graceful stop, same filter as Once). Errors — fn's return, a
// recovered fn panic, or a fatal emitter deactivation — are routed to
// errFn so no failure goes unobserved; a nil errFn defaults to a
// no-op.
//
// The listener runs in its own goroutine; OnceCancelable returns
// immediately, already registered on the current pending future.
// Activations have priority: if the future settled before the killer
// fires, the delivery still happens.
func (c *Cancelable[T]) OnceCancelable(fn func(T) error, errFn func(error)) CancelFunc {
	if errFn == nil {
		errFn = func(error) {}
	}
	f := c.Next()
	kill := make(chan struct{})
	var once sync.Once

	go func() {
		if !f.Settled() {
			select {
			case <-f.done:
			case <-kill:
				// The future may have settled in the same instant; a
				// settled activation outranks the canceller.
				if !f.Settled() {
					return
				}
			}
		}
		if f.err != nil {
			if !Canceled(f.err) {
				errFn(f.err)
			}
			return
		}
		if err := safeInvoke(fn, f.value); err != nil {
			errFn(err)
		}
	}()

	return func() { once.Do(func() { close(kill) }) }
}

// OnCancelable registers fn as a repeating listener with an
// independent lifetime. It derives a clone of the emitter, runs On on
// the clone in a goroutine, and returns a CancelFunc that cancels the
// clone only — the source emitter and its other listeners are
// unaffected. Delivery errors and fatal deactivations are routed to
// errFn (nil defaults to a no-op); a graceful stop, whether from the
// canceller or from the source cancelling, ends the listener silently.
//
// Cancellation does not retract a delivery that is already settled on
// the clone's chain: activations have priority over the canceller.
func (c *Cancelable[T]) OnCancelable(fn func(T) error, errFn func(error)) CancelFunc {
	if errFn == nil {
		errFn = func(error) {}
	}
	mirror := Clone[T](c, WithID(c.base.cfg.id+"/listener"), WithLogger(c.base.cfg.logger))

	go func() {
		if err := mirror.On(context.Background(), func(v T) error {
			return safeInvoke(fn, v)
		}); err != nil {
			errFn(err)
		}
	}()

	return func() { mirror.Cancel() }
}

// safeInvoke runs a listener callback, converting a panic into an
// error so combinator listeners cannot take down the process from a
// background goroutine.
func safeInvoke[T any](fn func(T) error, v T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()
	return fn(v)
}
