package broadcast

import "context"

// Filter blocks until an activation value of src satisfies pred and
// returns it. It follows the settlement chain from this call onward,
// so no activation between wakeups is skipped. If src terminates
// first, the raw deactivation error is returned — including
// [ErrCanceled] on a graceful cancel, which callers distinguish with
// [Canceled]. If ctx ends first, the context error is returned.
func Filter[T any](ctx context.Context, src Nexter[T], pred func(T) bool) (T, error) {
	f := src.Next()
	for {
		v, err := f.Await(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		if pred(v) {
			return v, nil
		}
		f = f.next
	}
}
