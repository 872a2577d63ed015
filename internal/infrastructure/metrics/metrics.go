package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Journal metrics
	EntriesPosted    *prometheus.CounterVec
	EntriesCancelled prometheus.Counter
	EntriesReverted  prometheus.Counter
	ReturnsSettled   *prometheus.CounterVec
	EntryAmount      prometheus.Histogram
	PostingDuration  prometheus.Histogram
	PostingErrors    *prometheus.CounterVec

	// Account metrics
	AccountsCreated   prometheus.Counter
	BalanceReads      *prometheus.CounterVec
	AccountOperations *prometheus.CounterVec

	// Reconciliation metrics
	ReconciliationRuns   prometheus.Counter
	ReconciliationDrifts prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Journal metrics
		EntriesPosted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cariledger_entries_posted_total",
				Help: "Total number of journal entries posted by type",
			},
			[]string{"type"},
		),
		EntriesCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cariledger_entries_cancelled_total",
			Help: "Total number of journal entries cancelled",
		}),
		EntriesReverted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cariledger_entries_reverted_total",
			Help: "Total number of cancellations reverted",
		}),
		ReturnsSettled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cariledger_returns_settled_total",
				Help: "Total number of sale returns settled by method",
			},
			[]string{"method"},
		),
		EntryAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cariledger_entry_amount",
			Help:    "Posted entry amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		PostingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cariledger_posting_duration_seconds",
			Help:    "Duration of posting operations",
			Buckets: prometheus.DefBuckets,
		}),
		PostingErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cariledger_posting_errors_total",
				Help: "Total number of posting errors by type",
			},
			[]string{"error_type"},
		),

		// Account metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cariledger_accounts_created_total",
			Help: "Total number of cari accounts created",
		}),
		BalanceReads: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cariledger_balance_reads_total",
				Help: "Total balance reads by source",
			},
			[]string{"source"},
		),
		AccountOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cariledger_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),

		// Reconciliation metrics
		ReconciliationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cariledger_reconciliation_runs_total",
			Help: "Total number of reconciliation runs",
		}),
		ReconciliationDrifts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cariledger_reconciliation_drifts_total",
			Help: "Total number of cached balances found drifted from the journal",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cariledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cariledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cariledger_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cariledger_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cariledger_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cariledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cariledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cariledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Authentication metrics
		AuthAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cariledger_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cariledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cariledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		// Audit metrics
		AuditLogsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cariledger_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),

		// Outbox metrics
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cariledger_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cariledger_outbox_failures_total",
			Help: "Total outbox publish failures",
		}),
	}
}
