package broadcast

// Tagged pairs an activation value with the name of the source it
// originated from in a merged stream.
type Tagged[T any] struct {
	// Source is the key the originating emitter was registered under.
	Source string
	// Value is the activation value.
	Value T
}

// Merge fans the activations of several named sources into one
// cancellable emitter of [Tagged] values. Each source is mirrored
// through its own settlement chain, so per-source ordering is
// preserved; ordering across sources is not guaranteed.
//
// The first source to terminate terminates the merged emitter the same
// way (graceful cancel mirrors as a cancel, fatal as a deactivation
// with the same error). Cancelling the merged emitter stops all
// forwarding without affecting the sources.
func Merge[T any](sources map[string]Nexter[T], opts ...Option) *Cancelable[Tagged[T]] {
	out := NewCancelable[Tagged[T]](opts...)

	for name, src := range sources {
		f := src.Next()
		go func(name string, f *Future[T]) {
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
				out.Activate(Tagged[T]{Source: name, Value: f.value})
				f = f.next
			}
		}(name, f)
	}

	return out
}
