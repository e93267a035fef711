package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/microdi/version"
)

func TestNewMetricsNoop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordResolution(ctx, "svc", KindTransient, StatusOK, time.Millisecond)
	metrics.RecordConstruction(ctx, "svc")
	metrics.RecordError(ctx, "UNKNOWN_IMPLEMENTATION", "svc")
}

func TestMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewMetrics(mp.Meter(InstrumentationName))
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	ctx := context.Background()
	metrics.RecordResolution(ctx, "svc", KindSingleton, StatusOK, 2*time.Millisecond)
	metrics.RecordResolution(ctx, "svc", KindCached, StatusOK, time.Microsecond)
	metrics.RecordConstruction(ctx, "svc")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	if sums["di.resolution.total"] != 2 {
		t.Errorf("expected 2 resolutions, got %d", sums["di.resolution.total"])
	}
	if sums["di.construction.total"] != 1 {
		t.Errorf("expected 1 construction, got %d", sums["di.construction.total"])
	}
}

func TestTracerFromProvider(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	ctx, span := TracerFrom(tp).Start(context.Background(), SpanResolve)
	SetSpanAttribute(ctx, AttrName, "svc")
	SetSpanAttribute(ctx, AttrSingleton, true)
	SetSpanAttribute(ctx, AttrArgCount, 2)
	EndSpan(span, fmt.Errorf("boom"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != SpanResolve {
		t.Errorf("expected span %q, got %q", SpanResolve, s.Name())
	}
	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status().Code)
	}
	if s.InstrumentationScope().Name != InstrumentationName {
		t.Errorf("unexpected scope %q", s.InstrumentationScope().Name)
	}
	if s.InstrumentationScope().Version != version.String() {
		t.Errorf("expected scope version %q, got %q", version.String(), s.InstrumentationScope().Version)
	}

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs[AttrName].AsString() != "svc" {
		t.Errorf("expected name attribute, got %v", attrs[AttrName])
	}
	if !attrs[AttrSingleton].AsBool() {
		t.Error("expected singleton attribute to be true")
	}
	if attrs[AttrArgCount].AsInt64() != 2 {
		t.Errorf("expected args attribute 2, got %v", attrs[AttrArgCount])
	}
}

func TestTracerFromNilUsesGlobal(t *testing.T) {
	if TracerFrom(nil) == nil {
		t.Fatal("expected a tracer from the global provider")
	}
	ctx, span := StartSpan(context.Background(), SpanInject)
	SetSpanAttribute(ctx, AttrKey, "client")
	EndSpan(span, nil)
}
