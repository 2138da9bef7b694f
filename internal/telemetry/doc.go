// Package telemetry wraps OpenTelemetry SDK setup for traces. Prometheus
// serves process metrics, so no OTel metric pipeline is configured here.
// This package is internal and should not be imported by external projects.
package telemetry
