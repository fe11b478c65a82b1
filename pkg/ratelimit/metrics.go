package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	ReservoirDepletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbscan_ratelimit_reservoir_depleted_total",
			Help: "Times a caller found the reservoir empty",
		},
		[]string{"platform"},
	)

	WaitersQueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbscan_ratelimit_waiters_queued_total",
			Help: "Callers that had to queue for a slot",
		},
		[]string{"platform"},
	)
)
