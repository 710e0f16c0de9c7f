package analytics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metricDuration observes how long each metric run takes.
var metricDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "argo_analytics",
		Subsystem: "metrics",
		Name:      "duration_seconds",
		Help:      "Time to compute one metric over a ledger",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	},
	[]string{"metric", "mode"},
)

var metricFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "argo_analytics",
		Subsystem: "metrics",
		Name:      "failures_total",
		Help:      "Metric runs that returned an error",
	},
	[]string{"metric"},
)
