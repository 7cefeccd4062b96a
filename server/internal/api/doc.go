// Package api implements the HTTP JSON endpoints of the serving process.
//
// Prediction endpoints (one per schema preset — both are supported, not
// merged):
//
//	POST /api/v1/predict      fixed schema; responds {status,
//	                          failure_probability, alert} with alert as the
//	                          strings "True"/"False" at threshold 0.5
//	POST /api/v1/predict/raw  flexible schema {"features": [...]}; responds
//	                          {prediction, confidence, anomaly, features_used,
//	                          timestamp, status}; failures come back as
//	                          HTTP 200 with an "error" field — a deliberate
//	                          compatibility choice that keeps monitoring
//	                          clients resilient, at the cost of making genuine
//	                          failures harder to distinguish from degraded
//	                          results
//
// Read-only status endpoints: GET / (banner), GET /api/v1/health,
// GET /api/v1/model, GET /api/v1/registry, GET /api/v1/alerts.
package api
