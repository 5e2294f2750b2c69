// Package observability provides OpenTelemetry integration and in-process
// execution metrics.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry records traces and metrics for executions. It matches the hook
// interface the runner package consumes.
type Telemetry interface {
	// StartSpan starts a trace span; the returned func ends it.
	StartSpan(ctx context.Context, name string) (context.Context, func())

	// RecordDuration records an execution duration in seconds.
	RecordDuration(name string, seconds float64, labels map[string]string)

	// RecordCounter increments a counter.
	RecordCounter(name string, labels map[string]string)
}

// TelemetryConfig configures telemetry.
type TelemetryConfig struct {
	// ServiceName is the service name for tracing.
	ServiceName string

	// ServiceVersion is the service version.
	ServiceVersion string

	// EnableTracing enables distributed tracing.
	EnableTracing bool

	// EnableMetrics enables metrics collection.
	EnableMetrics bool

	// MetricsPrefix is the prefix for all metric names.
	MetricsPrefix string
}

// DefaultTelemetryConfig returns default configuration.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		ServiceName:    "procrun",
		ServiceVersion: "1.0.0",
		EnableTracing:  true,
		EnableMetrics:  true,
		MetricsPrefix:  "procrun_",
	}
}

// telemetry implements Telemetry on the global OTel providers.
type telemetry struct {
	config TelemetryConfig
	tracer trace.Tracer
	meter  metric.Meter

	runCounter  metric.Int64Counter
	runDuration metric.Float64Histogram
	failCounter metric.Int64Counter
}

// NewTelemetry creates a new telemetry instance.
func NewTelemetry(config TelemetryConfig) (Telemetry, error) {
	t := &telemetry{
		config: config,
		tracer: otel.Tracer(config.ServiceName),
		meter:  otel.Meter(config.ServiceName),
	}

	var err error

	t.runCounter, err = t.meter.Int64Counter(
		config.MetricsPrefix+"runs_total",
		metric.WithDescription("Total number of child process executions"),
	)
	if err != nil {
		return nil, err
	}

	t.runDuration, err = t.meter.Float64Histogram(
		config.MetricsPrefix+"run_duration_seconds",
		metric.WithDescription("Wall clock duration of child process executions"),
	)
	if err != nil {
		return nil, err
	}

	t.failCounter, err = t.meter.Int64Counter(
		config.MetricsPrefix+"failures_total",
		metric.WithDescription("Total number of non-zero child exits"),
	)
	if err != nil {
		return nil, err
	}

	return t, nil
}

// StartSpan implements Telemetry.StartSpan.
func (t *telemetry) StartSpan(ctx context.Context, name string) (context.Context, func()) {
	if !t.config.EnableTracing {
		return ctx, func() {}
	}

	ctx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	return ctx, func() {
		span.End()
	}
}

// RecordDuration implements Telemetry.RecordDuration.
func (t *telemetry) RecordDuration(name string, seconds float64, labels map[string]string) {
	if !t.config.EnableMetrics {
		return
	}

	attrs := labelsToAttributes(labels)
	t.runDuration.Record(context.Background(), seconds, metric.WithAttributes(attrs...))
}

// RecordCounter implements Telemetry.RecordCounter.
func (t *telemetry) RecordCounter(name string, labels map[string]string) {
	if !t.config.EnableMetrics {
		return
	}

	attrs := labelsToAttributes(labels)
	switch name {
	case t.config.MetricsPrefix + "failures_total":
		t.failCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	default:
		t.runCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	}
}

// labelsToAttributes converts labels to OTel attributes.
func labelsToAttributes(labels map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for k, v := range labels {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}

// NoopTelemetry returns a no-op telemetry implementation.
func NoopTelemetry() Telemetry {
	return &noopTelemetry{}
}

type noopTelemetry struct{}

func (t *noopTelemetry) StartSpan(ctx context.Context, name string) (context.Context, func()) {
	return ctx, func() {}
}

func (t *noopTelemetry) RecordDuration(name string, seconds float64, labels map[string]string) {}
func (t *noopTelemetry) RecordCounter(name string, labels map[string]string)                   {}
