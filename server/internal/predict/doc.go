// Package predict implements the prediction service: request validation,
// canonical feature vector assembly, delegation to the model gateway, and
// derivation of the confidence and alert fields.
//
// One Service implementation is parameterized by a Schema preset. Two presets
// exist, matching the two historical request shapes:
//
//   - Flexible: a positional feature array; columns are derived from request
//     order as feature_0..n-1; anomaly fires at probability > 0.8.
//   - Fixed: four declared fields in a documented order; alert fires at
//     probability ≥ 0.5.
//
// The presets keep their differing thresholds on purpose — they are
// backward-compatible defaults, not calibrated values. Likewise the
// confidence clamp max(0.70, min(0.95, p)) is a display-only heuristic whose
// bounds are preserved verbatim for client compatibility.
//
// A validation failure rejects the request before the gateway is invoked. An
// inference failure is returned as an error-shaped Result; it never takes the
// service down.
package predict
