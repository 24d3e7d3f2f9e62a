// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolver_queries_total",
			Help: "Total number of queries resolved, by outcome",
		},
		[]string{"outcome"},
	)

	ResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "resolver_resolution_duration_seconds",
			Help: "Duration of full query resolution in seconds",
		},
		[]string{"mode"},
	)

	StrategyAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolver_location_strategy_attempts_total",
			Help: "Location strategy attempts, by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolver_location_cache_hits_total",
			Help: "Location cache lookups, by result (hit/miss)",
		},
		[]string{"result"},
	)

	CompletenessSeverity = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resolver_completeness_severity",
			Help:    "Completeness severity score per resolved query (0-10)",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		},
	)
)
