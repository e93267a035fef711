// Package observability provides the OpenTelemetry tracing and metrics
// instruments microdi uses to report resolutions.
//
// Spans and instruments are created from the global providers unless a
// registry is given its own. Applications configure exporters themselves:
//
//	otel.SetTracerProvider(tp)
//	metrics, err := observability.NewMetrics(observability.Meter())
//	reg := di.NewRegistry(di.WithMetrics(metrics))
package observability
