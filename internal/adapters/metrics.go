package adapters

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	FetchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arbscan_adapter_fetch_duration_seconds",
			Help:    "Duration of platform HTTP fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"platform"},
	)

	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbscan_adapter_fetch_errors_total",
			Help: "Platform fetch errors by taxonomy kind",
		},
		[]string{"platform", "kind"},
	)

	MarketsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbscan_adapter_markets_fetched_total",
			Help: "Normalized markets produced by adapters",
		},
		[]string{"platform"},
	)

	MarketsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbscan_adapter_markets_skipped_total",
			Help: "Raw markets dropped during normalization",
		},
		[]string{"platform", "reason"},
	)
)
