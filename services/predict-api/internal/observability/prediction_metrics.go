package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Verdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upi_fraud",
			Name:      "verdicts_total",
			Help:      "Scored transactions by path and verdict",
		},
		[]string{"path", "verdict"},
	)

	PredictionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upi_fraud",
			Name:      "predictions_failed_total",
			Help:      "Rejected or failed prediction requests by path and error code",
		},
		[]string{"path", "code"},
	)

	InferenceLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "upi_fraud",
			Name:      "inference_duration_seconds",
			Help:      "Assembly plus scoring latency per request",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	BatchRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "upi_fraud",
			Name:      "batch_rows",
			Help:      "Rows per uploaded CSV",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10), // 1 .. ~262k
		},
	)

	ModelReady = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "upi_fraud",
			Name:      "model_ready",
			Help:      "1 when the model and encoders loaded at startup, 0 otherwise",
		},
	)
)
