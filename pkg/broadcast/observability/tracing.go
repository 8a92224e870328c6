package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the broadcast tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("broadcast")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartDeliverySpan starts a span for one listener delivery.
	// Returns the context with span and the span itself.
	StartDeliverySpan(ctx context.Context, emitterID string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartDeliverySpan starts a span for one listener delivery.
func (m *otelSpanManager) StartDeliverySpan(ctx context.Context, emitterID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "broadcast.deliver",
		trace.WithAttributes(
			attribute.String("emitter.id", emitterID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// StartDeliverySpan starts a delivery span on the global tracer.
// Convenience for simple cases where the interface isn't needed.
func StartDeliverySpan(ctx context.Context, emitterID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "broadcast.deliver",
		trace.WithAttributes(
			attribute.String("emitter.id", emitterID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}
