package broadcast

import (
	"errors"
	"fmt"
)

// ErrCanceled marks a graceful stop. Cancel rejects the pending future
// with this sentinel, and the filtering consumption methods (Once, On,
// Values on [Cancelable]) treat it as normal termination rather than a
// failure. Any other deactivation error is fatal and propagates.
var ErrCanceled = errors.New("emitter canceled")

// Canceled reports whether err marks a graceful cancellation.
func Canceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// ListenerError wraps an error returned by a listener callback with
// the emitter it was listening on. Callback errors are never swallowed
// by the core; they surface through Once/On or are routed to the
// combinators' errFn.
type ListenerError struct {
	// EmitterID identifies the emitter the listener was attached to.
	EmitterID string
	// Err is the error returned by the callback.
	Err error
}

// Error implements the error interface.
func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener on emitter %s: %v", e.EmitterID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ListenerError) Unwrap() error {
	return e.Err
}
