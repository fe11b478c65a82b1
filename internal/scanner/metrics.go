package scanner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	ScansCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbscan_scanner_scans_completed_total",
		Help: "Completed scan pipeline runs",
	})

	ScanDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arbscan_scanner_scan_duration_seconds",
		Help:    "End-to-end duration of one scan",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})
)
