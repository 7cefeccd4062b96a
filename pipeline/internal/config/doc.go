// Package config loads and validates the offline pipeline configuration.
//
// The pipeline reads its settings from the `pipeline:` section of a YAML file.
// Missing fields fall back to the defaults that match the historical dataset
// layout (raw_system_logs.csv / prepared_data.csv, 4h rolling window, 24h
// failure horizon).
package config
