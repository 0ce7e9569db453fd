package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the matchday backend

var (
	// Dispatcher metrics
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchday_dispatch_total",
			Help: "Total number of dispatched sport/intent commands",
		},
		[]string{"sport", "intent", "status"},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matchday_dispatch_duration_seconds",
			Help:    "Duration of dispatched commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"sport", "intent"},
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchday_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matchday_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Ledger metrics
	PredictionsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchday_predictions_recorded_total",
			Help: "Total number of predictions recorded",
		},
	)

	PredictionsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchday_predictions_resolved_total",
			Help: "Total number of predictions resolved by reconciliation",
		},
	)

	OpenPredictions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchday_open_predictions",
			Help: "Number of currently unresolved predictions",
		},
	)

	// Reconciliation metrics
	ReconcileRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchday_reconcile_runs_total",
			Help: "Total number of reconciliation passes",
		},
		[]string{"status"},
	)

	ReconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matchday_reconcile_duration_seconds",
			Help:    "Duration of reconciliation passes in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchday_cache_hits_total",
			Help: "Total number of accuracy cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchday_cache_misses_total",
			Help: "Total number of accuracy cache misses",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchday_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchday_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulReconcile = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchday_last_successful_reconcile_timestamp",
			Help: "Timestamp of last successful reconciliation pass",
		},
	)
)

// RecordDispatch records a dispatched command
func RecordDispatch(sport, intent, status string, duration float64) {
	DispatchTotal.WithLabelValues(sport, intent, status).Inc()
	DispatchDuration.WithLabelValues(sport, intent).Observe(duration)
}

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(route, method, code string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(route, method, code).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(duration)
}

// RecordReconcileRun records a reconciliation pass
func RecordReconcileRun(status string, duration float64, resolved int) {
	ReconcileRunsTotal.WithLabelValues(status).Inc()
	ReconcileDuration.Observe(duration)
	PredictionsResolved.Add(float64(resolved))

	if status == "success" {
		LastSuccessfulReconcile.SetToCurrentTime()
	}
}

// RecordCacheHit records an accuracy cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records an accuracy cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
