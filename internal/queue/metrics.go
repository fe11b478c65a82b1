package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	JobsEnqueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbscan_queue_jobs_enqueued_total",
		Help: "Jobs pushed onto the waiting list",
	})

	JobsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbscan_queue_jobs_completed_total",
		Help: "Jobs that finished successfully",
	})

	JobsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbscan_queue_jobs_failed_total",
		Help: "Jobs that exhausted their retry budget",
	})

	JobsRetriedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbscan_queue_jobs_retried_total",
		Help: "Jobs rescheduled onto the delayed set after a failure",
	})

	JobDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arbscan_queue_job_duration_seconds",
		Help:    "Wall time of one job attempt",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})
)
