package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Retrieval pipeline Prometheus metrics.
var (
	IndexBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_build_duration_seconds",
			Help:      "Index build duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	IndexBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_builds_total",
			Help:      "Total index builds by outcome",
		},
		[]string{"status"},
	)

	IndexEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_entries",
			Help:      "Number of entries in the active index",
		},
	)

	SearchExcludedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_excluded_entries_total",
			Help:      "Entries excluded from ranking because of a degenerate vector",
		},
	)

	EvaluationScoresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluation_scores_total",
			Help:      "Evaluation outcomes by rubric score",
		},
		[]string{"score"}, // "0" / "0.5" / "1" / "unscored"
	)
)

var registerOnce sync.Once

// Register registers provider and pipeline metrics with the default registry.
// It is safe to call concurrently; only the first call registers.
func Register() {
	registerOnce.Do(register)
}

func register() {
	prometheus.MustRegister(
		ProviderRequestsTotal,
		ProviderRequestDuration,
		ProviderTokensTotal,
		ProviderErrorsTotal,
		ProviderRetriesTotal,
		TokenBudgetRemaining,
		EmbeddingCacheTotal,
		IndexBuildDuration,
		IndexBuildsTotal,
		IndexEntries,
		SearchExcludedTotal,
		EvaluationScoresTotal,
	)
}
