package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	MatchesFoundTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbscan_matching_matches_found_total",
		Help: "Cross-platform market matches emitted",
	})

	CandidatesConsideredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbscan_matching_candidates_considered_total",
		Help: "Candidates that survived the pre-filter and were ranked",
	})

	MatchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arbscan_matching_duration_seconds",
		Help:    "Duration of one FindMatches pass",
		Buckets: prometheus.DefBuckets,
	})
)
