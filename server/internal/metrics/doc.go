// Package metrics instruments the serving path.
//
// Metrics holds the Prometheus collectors exported on /metrics. Tracker keeps
// the running serving statistics (prediction count, mean latency, mean
// confidence, anomalies, recent throughput) that feed the WebSocket
// monitoring snapshots with real values instead of placeholders.
package metrics
