// Package metrics provides Prometheus metrics for the server core.
//
// A Collector tracks the lifecycle gauge, live connection count,
// admitted request counters and durations, and admission rejections.
// The server core calls the Collector directly on each event; the
// /metrics endpoint is served by Handler.
//
//	collector := metrics.NewCollector(nil, nil)
//	http.Handle("/metrics", collector.Handler())
package metrics
