package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/microdi/version"
)

// Resolution kinds recorded on metrics.
const (
	KindTransient = "transient"
	KindSingleton = "singleton"
	KindCached    = "cached"
	KindUnknown   = "unknown"
)

// Resolution statuses recorded on metrics.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Meter returns the microdi meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName, metric.WithInstrumentationVersion(version.String()))
}

// Metrics holds OpenTelemetry instruments for registry activity.
type Metrics struct {
	resolutionTotal    metric.Int64Counter
	resolutionDuration metric.Float64Histogram
	constructionTotal  metric.Int64Counter
	errorTotal         metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	resolutionTotal, err := meter.Int64Counter("di.resolution.total",
		metric.WithDescription("Total number of resolutions by name, kind and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolution.total counter: %w", err)
	}

	resolutionDuration, err := meter.Float64Histogram("di.resolution.duration",
		metric.WithDescription("Duration of resolutions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolution.duration histogram: %w", err)
	}

	constructionTotal, err := meter.Int64Counter("di.construction.total",
		metric.WithDescription("Total number of constructor invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.construction.total counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("di.error.total",
		metric.WithDescription("Total errors by code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.error.total counter: %w", err)
	}

	return &Metrics{
		resolutionTotal:    resolutionTotal,
		resolutionDuration: resolutionDuration,
		constructionTotal:  constructionTotal,
		errorTotal:         errorTotal,
	}, nil
}

// RecordResolution records a completed resolution.
func (m *Metrics) RecordResolution(ctx context.Context, name, kind, status string, duration time.Duration) {
	m.resolutionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("name", name),
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
	m.resolutionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("name", name),
		attribute.String("kind", kind),
	))
}

// RecordConstruction records one constructor invocation.
func (m *Metrics) RecordConstruction(ctx context.Context, name string) {
	m.constructionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("name", name),
	))
}

// RecordError records an error by code.
func (m *Metrics) RecordError(ctx context.Context, code, name string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("name", name),
	))
}
