package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the back-office service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Store Metrics
	StoreUp          *prometheus.GaugeVec
	StoreCallSeconds *prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Sync Metrics
	SyncRecordsTotal   *prometheus.CounterVec
	SyncTickDuration   *prometheus.HistogramVec
	SyncTicksSkipped   prometheus.Counter
	SyncLastSuccess    prometheus.Gauge
	SyncPendingRecords *prometheus.GaugeVec
}

// NewMetricsRegistry registers every metric with reg.
// Pass prometheus.DefaultRegisterer in main and prometheus.NewRegistry() in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "backoffice_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed by method",
			},
			[]string{"method"},
		),

		// Store Metrics
		StoreUp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "backoffice_store_up",
				Help: "1 when the last health probe of the store succeeded",
			},
			[]string{"store"},
		),
		StoreCallSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_store_call_duration_seconds",
				Help:    "Latency of sync calls to each store",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 30},
			},
			[]string{"store", "operation"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Sync Metrics
		SyncRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_sync_records_total",
				Help: "Records handled by the sync job by direction and outcome",
			},
			[]string{"direction", "outcome"},
		),
		SyncTickDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_sync_tick_duration_seconds",
				Help:    "Sync tick execution time in seconds",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"trigger"},
		),
		SyncTicksSkipped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "backoffice_sync_ticks_skipped_total",
				Help: "Ticks skipped because the previous tick was still running",
			},
		),
		SyncLastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "backoffice_sync_last_success_timestamp_seconds",
				Help: "Unix time of the last tick that finished without direction-level failures",
			},
		),
		SyncPendingRecords: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "backoffice_sync_records_by_status",
				Help: "Rows of each relational store per sync_status, refreshed by the backlog monitor and the health probe",
			},
			[]string{"store", "sync_status"},
		),
	}
}
