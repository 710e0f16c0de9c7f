package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultHit         = "hit"
	resultMiss        = "miss"
	resultUnavailable = "unavailable"
)

// lookups counts Load calls by outcome.
var lookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "argo_analytics",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Balance cache lookups by result (hit, miss, unavailable)",
	},
	[]string{"result"},
)

var rowsWritten = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "argo_analytics",
		Subsystem: "cache",
		Name:      "rows_written_total",
		Help:      "Balance rows written to the cache",
	},
)

var rowsInvalidated = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "argo_analytics",
		Subsystem: "cache",
		Name:      "rows_invalidated_total",
		Help:      "Balance rows deleted from the cache",
	},
)
