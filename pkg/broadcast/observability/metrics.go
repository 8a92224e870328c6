package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records emitter metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordActivation records one activation of an emitter.
	RecordActivation(ctx context.Context, emitterID string)

	// RecordDelivery records one listener delivery with its duration
	// and error status.
	RecordDelivery(ctx context.Context, emitterID string, duration time.Duration, err error)

	// RecordDeactivation records the terminal deactivation of an
	// emitter, distinguishing graceful cancellation from fatal errors.
	RecordDeactivation(ctx context.Context, emitterID string, graceful bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	activations     metric.Int64Counter
	deliveries      metric.Int64Counter
	deliveryLatency metric.Float64Histogram
	listenerErrors  metric.Int64Counter
	deactivations   metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("broadcast")

	activations, err := meter.Int64Counter("broadcast.activations",
		metric.WithDescription("Number of emitter activations"),
	)
	if err != nil {
		return nil, err
	}

	deliveries, err := meter.Int64Counter("broadcast.deliveries",
		metric.WithDescription("Number of listener deliveries"),
	)
	if err != nil {
		return nil, err
	}

	deliveryLatency, err := meter.Float64Histogram("broadcast.delivery.latency_ms",
		metric.WithDescription("Listener delivery latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	listenerErrors, err := meter.Int64Counter("broadcast.listener.errors",
		metric.WithDescription("Number of listener callback errors"),
	)
	if err != nil {
		return nil, err
	}

	deactivations, err := meter.Int64Counter("broadcast.deactivations",
		metric.WithDescription("Number of emitter deactivations"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		activations:     activations,
		deliveries:      deliveries,
		deliveryLatency: deliveryLatency,
		listenerErrors:  listenerErrors,
		deactivations:   deactivations,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordActivation records one activation.
func (m *otelMetrics) RecordActivation(ctx context.Context, emitterID string) {
	m.activations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("emitter_id", emitterID),
	))
}

// RecordDelivery records one listener delivery.
func (m *otelMetrics) RecordDelivery(ctx context.Context, emitterID string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("emitter_id", emitterID),
	}

	m.deliveries.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.deliveryLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.listenerErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordDeactivation records the terminal deactivation of an emitter.
func (m *otelMetrics) RecordDeactivation(ctx context.Context, emitterID string, graceful bool) {
	m.deactivations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("emitter_id", emitterID),
		attribute.Bool("graceful", graceful),
	))
}
