// Package observability provides opt-in observability for broadcast
// emitters: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds emitter context to a logger.
// Returns a new logger with the emitter_id field attached.
//
// Example:
//
//	enriched := EnrichLogger(logger, "em-1234")
//	enriched.Info("listener attached") // includes emitter_id
func EnrichLogger(logger *slog.Logger, emitterID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("emitter_id", emitterID))
}

// LogActivation logs a single activation. seq is the activation's
// position in the emitter's lifetime, starting at 1.
func LogActivation(logger *slog.Logger, emitterID string, seq uint64) {
	if logger == nil {
		return
	}
	logger.Debug("activation",
		slog.String("emitter_id", emitterID),
		slog.Uint64("seq", seq),
	)
}

// LogDeactivation logs the terminal deactivation of an emitter.
func LogDeactivation(logger *slog.Logger, emitterID string, err error, graceful bool) {
	if logger == nil {
		return
	}
	if graceful {
		logger.Info("emitter canceled",
			slog.String("emitter_id", emitterID),
		)
		return
	}
	logger.Warn("emitter deactivated",
		slog.String("emitter_id", emitterID),
		slog.String("error", err.Error()),
	)
}

// LogListenerError logs a listener callback failure (non-fatal for
// the emitter; the error still propagates to the listener's owner).
func LogListenerError(logger *slog.Logger, emitterID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("listener failed",
		slog.String("emitter_id", emitterID),
		slog.String("error", err.Error()),
	)
}

// LogDelivery logs a completed delivery to one listener.
func LogDelivery(logger *slog.Logger, emitterID string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("delivery completed",
		slog.String("emitter_id", emitterID),
		slog.Float64("duration_ms", durationMs),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
