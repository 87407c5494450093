package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Error kinds used as the error_type label.
const (
	ErrorKindValidation = "validation"
	ErrorKindDataFetch  = "data_fetch"
	ErrorKindProjection = "projection"
	ErrorKindLedger     = "ledger"
	ErrorKindInternal   = "internal"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Export metrics
	ExportsGenerated     prometheus.Counter
	ExportsPreviewed     prometheus.Counter
	ExportDuration       prometheus.Histogram
	ExportEntries        prometheus.Histogram
	ExportInvoices       prometheus.Histogram
	ExportErrors         *prometheus.CounterVec
	HistoryWriteFailures prometheus.Counter

	// Database metrics
	DBQueries  *prometheus.CounterVec
	DBDuration *prometheus.HistogramVec
	DBErrors   *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates all metrics on the default Prometheus registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ExportsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "craftly_fec_exports_generated_total",
			Help: "Total number of FEC files generated",
		}),
		ExportsPreviewed: factory.NewCounter(prometheus.CounterOpts{
			Name: "craftly_fec_exports_previewed_total",
			Help: "Total number of FEC previews computed",
		}),
		ExportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "craftly_fec_export_duration_seconds",
			Help:    "Duration of FEC export runs, fetch included",
			Buckets: prometheus.DefBuckets,
		}),
		ExportEntries: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "craftly_fec_export_entries",
			Help:    "Accounting entries per generated FEC file",
			Buckets: []float64{0, 10, 100, 1000, 10000, 100000},
		}),
		ExportInvoices: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "craftly_fec_export_invoices",
			Help:    "Invoices per generated FEC file",
			Buckets: []float64{0, 5, 50, 500, 5000, 50000},
		}),
		ExportErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "craftly_fec_export_errors_total",
				Help: "Total number of failed exports by error type",
			},
			[]string{"error_type"},
		),
		HistoryWriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "craftly_fec_history_write_failures_total",
			Help: "Export history rows that could not be stored",
		}),

		DBQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "craftly_fec_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "craftly_fec_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "craftly_fec_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "craftly_fec_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
}
