package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agewise_reports_total",
		Help: "Report runs by outcome.",
	}, []string{"status"})

	reportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agewise_report_duration_seconds",
		Help:    "Wall time of report generation.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	invoicesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agewise_invoices_processed_total",
		Help: "Invoices reconciled across all report runs.",
	})

	connectionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agewise_connection_failures_total",
		Help: "Connections that failed during report runs.",
	})
)
