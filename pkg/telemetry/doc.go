// Package telemetry groups the observability concerns of the server.
//
//   - logging: process-wide structured logging via log/slog
//   - metrics: Prometheus metrics for lifecycle, connections and
//     admission
//   - stats: cron-scheduled runtime stats reports
//
// Each subpackage stands alone; the binary wires them together around
// a server instance.
package telemetry
