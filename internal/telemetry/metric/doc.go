// Package metric provides Prometheus metrics for GhostTape.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: metric registry and HTTP handler
//   - collector.go: custom collector for ghost index statistics
//
// Metrics include:
//
//   - Recording session counters (started, finished, failed)
//   - Chunk and byte throughput counters
//   - Trace load counters with failure reasons
//   - Ghost index size gauges
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
