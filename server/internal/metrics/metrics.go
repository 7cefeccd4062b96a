package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the serving path.
type Metrics struct {
	// PredictionsTotal counts served predictions by schema preset and
	// outcome ("success" | "error").
	PredictionsTotal *prometheus.CounterVec

	// PredictionSeconds observes end-to-end prediction handling latency.
	PredictionSeconds prometheus.Histogram

	// AnomaliesTotal counts predictions that crossed the alert threshold.
	AnomaliesTotal prometheus.Counter

	// WSClients tracks currently connected monitoring subscribers.
	WSClients prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PredictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "failsense",
				Name:      "predictions_total",
				Help:      "Predictions served, by schema preset and outcome.",
			},
			[]string{"schema", "status"},
		),
		PredictionSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "failsense",
				Name:      "prediction_seconds",
				Help:      "Prediction handling latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		AnomaliesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "failsense",
				Name:      "anomalies_total",
				Help:      "Predictions that crossed the alert threshold.",
			},
		),
		WSClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "failsense",
				Name:      "ws_clients",
				Help:      "Currently connected monitoring stream subscribers.",
			},
		),
	}

	reg.MustRegister(m.PredictionsTotal, m.PredictionSeconds, m.AnomaliesTotal, m.WSClients)
	return m
}
