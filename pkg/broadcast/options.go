package broadcast

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/randalmurphal/broadcast/pkg/broadcast/config"
	"github.com/randalmurphal/broadcast/pkg/broadcast/observability"
)

// settings holds per-emitter configuration.
type settings struct {
	id      string
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// defaultSettings returns the default emitter configuration:
// a generated ID, no logging, no-op metrics and tracing.
func defaultSettings() settings {
	return settings{
		id:      "em-" + uuid.New().String()[:8],
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures an emitter at construction time.
type Option func(*settings)

// WithID sets the emitter ID used in logs, metrics and spans.
// Default: auto-generated ("em-" + short UUID).
func WithID(id string) Option {
	return func(s *settings) {
		if id != "" {
			s.id = id
		}
	}
}

// WithLogger enables structured logging on the emitter. A nil logger
// disables logging (the default).
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder. Default: no-op.
//
// Example:
//
//	e := broadcast.NewCancelable[int](
//	    broadcast.WithMetrics(observability.NewMetricsRecorder()),
//	)
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(s *settings) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithSpans sets the span manager for per-delivery tracing.
// Default: no-op.
func WithSpans(sm observability.SpanManager) Option {
	return func(s *settings) {
		if sm != nil {
			s.spans = sm
		}
	}
}

// OptionsFromConfig builds emitter options from a loaded configuration.
//
// Recognized keys:
//
//	id      string — emitter ID
//	logging bool   — attach slog.Default()
//	metrics bool   — enable OpenTelemetry metrics
//	tracing bool   — enable OpenTelemetry tracing
//
// Example:
//
//	cfg, err := config.FromFile("broadcast.yaml")
//	if err != nil { ... }
//	e := broadcast.NewCancelable[int](broadcast.OptionsFromConfig(cfg)...)
func OptionsFromConfig(cfg config.Config) []Option {
	var opts []Option
	if id := cfg.String("id", ""); id != "" {
		opts = append(opts, WithID(id))
	}
	if cfg.Bool("logging", false) {
		opts = append(opts, WithLogger(slog.Default()))
	}
	if cfg.Bool("metrics", false) {
		opts = append(opts, WithMetrics(observability.NewMetricsRecorder()))
	}
	if cfg.Bool("tracing", false) {
		opts = append(opts, WithSpans(observability.NewSpanManager()))
	}
	return opts
}
