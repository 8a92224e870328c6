package broadcast

// Nexter is the listener-side contract shared by both emitter
// variants: anything exposing a pending-future chain can be cloned,
// merged, or filtered.
type Nexter[T any] interface {
	// Next returns the current pending future.
	Next() *Future[T]
}

// Clone derives an independent cancellable emitter that mirrors every
// activation of src from this call onward. Forwarding runs through the
// same settlement chain as any other listener, so the clone observes
// activations exactly once, in order.
//
// The clone's lifecycle is linked one way: when src terminates, the
// clone terminates the same way (graceful cancel mirrors as Cancel,
// fatal as Deactivate with the same error). Cancelling the clone never
// affects src; it just stops the mirror.
func Clone[T any](src Nexter[T], opts ...Option) *Cancelable[T] {
	out := NewCancelable[T](opts...)
	f := src.Next()

	go func() {
		for {
			select {
			case <-f.done:
			case <-out.Done():
				return
			}
			if f.err != nil {
				out.Deactivate(f.err)
				return
			}
			out.Activate(f.value)
			f = f.next
		}
	}()

	return out
}
