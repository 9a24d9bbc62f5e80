// Package metric provides Prometheus metrics for NFTMesh.
//
// Metrics cover ledger operations (per-operation outcome counters, a
// token supply gauge, per-type event counters) and the HTTP surface
// (request counters and latency histograms). Everything registers on a
// private prometheus.Registry exposed at /metrics.
package metric
