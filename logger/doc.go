// Package logger provides structured logging for microdi using zerolog.
//
// It supports JSON and console output, per-logger levels, component-scoped
// loggers and trace correlation from OpenTelemetry span contexts.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("di")
//	log.Info("implementation registered", logger.Fields("name", "svc.Client"))
package logger
