package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/microdi/version"
)

// InstrumentationName identifies spans and metrics emitted by microdi.
const InstrumentationName = "github.com/kbukum/microdi"

// Span names.
const (
	SpanResolve   = "di.resolve"
	SpanConstruct = "di.construct"
	SpanInject    = "di.inject"
)

// Attribute keys.
const (
	AttrRegistryID = "di.registry.id"
	AttrName       = "di.name"
	AttrKey        = "di.key"
	AttrSingleton  = "di.singleton"
	AttrCached     = "di.cached"
	AttrArgCount   = "di.args"
	AttrStatus     = "di.status"
)

// Tracer returns the microdi tracer from the global provider.
func Tracer() trace.Tracer {
	return TracerFrom(otel.GetTracerProvider())
}

// TracerFrom returns the microdi tracer from tp, or the global one if tp is nil.
func TracerFrom(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		return Tracer()
	}
	return tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(version.String()))
}

// StartSpan starts a new span using the global microdi tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// EndSpan records err, if any, and ends the span.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// SetSpanAttribute sets an attribute on the current span in context.
func SetSpanAttribute(ctx context.Context, key string, value any) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	switch v := value.(type) {
	case string:
		span.SetAttributes(attribute.String(key, v))
	case int:
		span.SetAttributes(attribute.Int(key, v))
	case int64:
		span.SetAttributes(attribute.Int64(key, v))
	case float64:
		span.SetAttributes(attribute.Float64(key, v))
	case bool:
		span.SetAttributes(attribute.Bool(key, v))
	case []string:
		span.SetAttributes(attribute.StringSlice(key, v))
	}
}
