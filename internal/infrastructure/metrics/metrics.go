package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Closure metrics
	ClosuresDeclared *prometheus.CounterVec
	ClosureReplays   *prometheus.CounterVec
	ClosureErrors    *prometheus.CounterVec
	DeclareDuration  prometheus.Histogram
	ClosureTotalDiff prometheus.Histogram

	// Ledger metrics
	LedgerReadDuration prometheus.Histogram
	LedgerReadErrors   *prometheus.CounterVec

	// Audit metrics
	AuditEmitFailures prometheus.Counter
	OutboxPublished   *prometheus.CounterVec

	// Lock metrics
	LockContention prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics and registers them on reg
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Closure metrics
		ClosuresDeclared: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goclosing_closures_declared_total",
				Help: "Total number of closures created by verdict",
			},
			[]string{"status"},
		),
		ClosureReplays: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goclosing_closure_replays_total",
				Help: "Total number of declarations served as idempotent replays",
			},
			[]string{"source"},
		),
		ClosureErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goclosing_closure_errors_total",
				Help: "Total number of failed declarations by error type",
			},
			[]string{"error_type"},
		),
		DeclareDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goclosing_declare_duration_seconds",
			Help:    "Duration of declare operations",
			Buckets: prometheus.DefBuckets,
		}),
		ClosureTotalDiff: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goclosing_closure_total_diff_abs",
			Help:    "Absolute aggregate diff of divergent closures in minor units",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		// Ledger metrics
		LedgerReadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goclosing_ledger_read_duration_seconds",
			Help:    "Duration of payment ledger aggregation",
			Buckets: prometheus.DefBuckets,
		}),
		LedgerReadErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goclosing_ledger_read_errors_total",
				Help: "Total payment ledger read errors",
			},
			[]string{"error_type"},
		),

		// Audit metrics
		AuditEmitFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "goclosing_audit_emit_failures_total",
			Help: "Total audit events that could not be emitted",
		}),
		OutboxPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goclosing_outbox_events_total",
				Help: "Total outbox events processed by result",
			},
			[]string{"result"},
		),

		LockContention: factory.NewCounter(prometheus.CounterOpts{
			Name: "goclosing_declaration_lock_contention_total",
			Help: "Total declarations that proceeded without the declaration lock",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goclosing_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goclosing_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "goclosing_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Redis metrics
		RedisOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goclosing_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goclosing_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goclosing_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"tenant_id"},
		),
	}
}
