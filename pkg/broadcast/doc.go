/*
Package broadcast provides promise-queue based event propagation primitives.

# Overview

broadcast replaces the traditional listener-list event emitter with a
single chainable settlement: an emitter owns exactly one pending
[Future] at a time, and every activation settles the current future
and atomically installs a fresh one. Settled futures keep a pointer to
their successor, so consumers that follow the chain observe every
activation exactly once, in order, without any registration
bookkeeping or forgotten unsubscribes.

Two variants are provided:

  - [Emitter] is the safe variant. Its futures only ever resolve, so
    every consuming method runs until its context ends.
  - [Cancelable] adds a terminal state. Deactivate rejects the pending
    future with an error; Cancel does the same with the graceful
    [ErrCanceled] sentinel, which the higher-level consumption methods
    (Once, On, Values) swallow while fatal errors propagate.

# Basic Usage

	e := broadcast.NewCancelable[int]()

	go func() {
	    err := e.On(context.Background(), func(v int) error {
	        fmt.Println("got", v)
	        return nil
	    })
	    if err != nil {
	        log.Fatal(err)
	    }
	}()

	e.Activate(1).Activate(2).Activate(3)
	e.Cancel() // On returns nil: graceful stop

# Consumption

Next returns the raw pending future; it always reflects the true
settlement, including a graceful cancellation:

	v, err := e.Next().Await(ctx)

Once delivers a single activation, On loops until termination, and
Values exposes pull-based iteration:

	for v, err := range e.Values(ctx) {
	    if err != nil {
	        return err // fatal deactivation
	    }
	    process(v) // graceful cancel just ends the range
	}

# Listener Lifetime

OnceCancelable and OnCancelable return a [CancelFunc] that detaches
one listener without touching the emitter or its other listeners.
Activations have priority over the canceller: a delivery that is
already settled still reaches the listener.

Clone, Merge and Filter build on the same chain: Clone mirrors every
future activation of a source onto an independent emitter, Merge fans
several sources into one [Tagged] stream, and Filter blocks until an
activation matches a predicate.

# Observability

Logging (log/slog), metrics and tracing (OpenTelemetry) are opt-in via
options and no-op by default:

	e := broadcast.NewCancelable[int](
	    broadcast.WithLogger(slog.Default()),
	    broadcast.WithMetrics(observability.NewMetricsRecorder()),
	)
*/
package broadcast
