// Package ws implements the WebSocket monitoring stream.
//
// Hub manages a set of connected subscribers and broadcasts an operational
// snapshot to all of them on a configurable interval (default 2s in
// production).
//
// New(tracker, m, interval) creates a Hub.
// Hub.Run(ctx) starts the broadcast ticker — blocks until ctx is cancelled,
// then closes all active subscribers.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the current
// snapshot immediately on connect, then streams updates on each tick.
//
// Snapshot format sent to clients:
//
//	{
//	  "timestamp": "...",
//	  "predictions_made": 42,
//	  "avg_prediction_time": 0.012,
//	  "model_confidence": 0.81,
//	  "system_load": 0.34,
//	  "active_connections": 3,
//	  "anomalies_detected": 2,
//	  "throughput": 17
//	}
//
// Before any prediction has been served, the activity fields carry synthetic
// placeholder values so the monitoring UI has something to render.
//
// Subscriber lifecycle: a connection is registered after the upgrade, removed
// on client disconnect or on send failure during a broadcast pass, and never
// re-registered. Removal is idempotent. Failed subscribers are collected
// during a broadcast pass and removed only after it, never while iterating
// the live set.
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws by the server.
package ws
