package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/smart-edu-api/internal/models"
)

var (
	httpLabels     = []string{"method", "path", "status"}
	latencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
)

// MetricsService owns a private Prometheus registry and keeps running totals for the JSON summary.
// A nil *MetricsService is a valid no-op.
type MetricsService struct {
	handler http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	conflicts       *prometheus.CounterVec
	exports         *prometheus.CounterVec
	snapshotSave    *prometheus.HistogramVec
	dbQueryDuration *prometheus.HistogramVec

	requests        atomic.Uint64
	requestNanos    atomic.Uint64
	conflictCount   atomic.Uint64
	exportCount     atomic.Uint64
	snapshotSaves   atomic.Uint64
	snapshotFailure atomic.Uint64
}

func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(registry)

	return &MetricsService{
		handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: latencyBuckets,
		}, httpLabels),
		requestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, httpLabels),
		conflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_conflicts_total",
			Help: "Timetable writes rejected because of a conflict",
		}, []string{"dimension"}),
		exports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Generated export documents",
		}, []string{"kind", "format"}),
		snapshotSave: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "snapshot_save_seconds",
			Help:    "Latency of snapshot saves",
			Buckets: latencyBuckets,
		}, []string{"key", "result"}),
		dbQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of directory and messaging queries",
			Buckets: latencyBuckets,
		}, []string{"query"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
	m.requests.Add(1)
	m.requestNanos.Add(uint64(duration.Nanoseconds()))
}

// RecordConflict counts a rejected timetable write.
func (m *MetricsService) RecordConflict(dimension string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(dimension).Inc()
	m.conflictCount.Add(1)
}

// RecordExport counts a generated export.
func (m *MetricsService) RecordExport(kind, format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(kind, format).Inc()
	m.exportCount.Add(1)
}

func (m *MetricsService) ObserveSnapshotSave(key string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
		m.snapshotFailure.Add(1)
	} else {
		m.snapshotSaves.Add(1)
	}
	m.snapshotSave.WithLabelValues(key, result).Observe(duration.Seconds())
}

func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// Snapshot returns the running totals served by /metrics/summary.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests := m.requests.Load()
	var avgMs float64
	if requests > 0 {
		avgMs = float64(m.requestNanos.Load()) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgMs,
		ConflictsTotal:           m.conflictCount.Load(),
		ExportsTotal:             m.exportCount.Load(),
		SnapshotSaves:            m.snapshotSaves.Load(),
		SnapshotFailures:         m.snapshotFailure.Load(),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
