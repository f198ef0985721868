// Package metrics exposes Prometheus instrumentation for the portal.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsIngested counts ledger rows persisted per account type.
	RowsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_ingest_rows_total",
		Help: "Number of spreadsheet rows persisted as ledger entries.",
	}, []string{"account_type"})

	// RowsSkipped counts rows dropped during ingestion.
	RowsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backoffice_ingest_rows_skipped_total",
		Help: "Number of spreadsheet rows skipped (missing or unresolvable account).",
	})

	// NotificationsDispatched counts in-app notifications created, by type.
	NotificationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_notifications_dispatched_total",
		Help: "Number of in-app notifications created.",
	}, []string{"type"})

	// IngestDuration observes wall time of whole-file ingestion runs.
	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backoffice_ingest_duration_seconds",
		Help:    "Duration of spreadsheet ingestion requests.",
		Buckets: prometheus.DefBuckets,
	})
)
