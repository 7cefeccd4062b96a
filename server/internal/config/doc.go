// Package config loads and validates the serving process configuration.
//
// Settings come from the `server:` section of a YAML file; the `pipeline:`
// key in the same file is ignored. Missing fields fall back to defaults that
// reproduce the historical serving behavior: fixed-schema alerts at 0.5,
// flexible-schema anomalies at 0.8, a 2-second monitoring broadcast tick and
// the 0.70/0.95 confidence clamp. The thresholds and clamp bounds are
// backward-compatible constants, not calibrated values.
package config
