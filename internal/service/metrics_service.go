package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusflow/timetable-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP surface
// and the scheduling engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	schedulingRuns  *prometheus.CounterVec
	conflictsTotal  *prometheus.CounterVec
	qualityScore    prometheus.Histogram
	resolvedTotal   prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	schedulingRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduling_runs_total",
		Help: "Scheduling runs by outcome",
	}, []string{"outcome"})

	conflictsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduling_conflicts_total",
		Help: "Conflicts detected during scheduling, by type",
	}, []string{"type"})

	qualityScore := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_quality_score",
		Help:    "Quality score of accepted placements",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	resolvedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optimization_resolved_conflicts_total",
		Help: "Conflicts resolved by schedule optimization",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, schedulingRuns, conflictsTotal, qualityScore, resolvedTotal, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		schedulingRuns:  schedulingRuns,
		conflictsTotal:  conflictsTotal,
		qualityScore:    qualityScore,
		resolvedTotal:   resolvedTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordSchedulingRun counts one engine run by outcome.
func (m *MetricsService) RecordSchedulingRun(outcome string) {
	if m == nil {
		return
	}
	m.schedulingRuns.WithLabelValues(outcome).Inc()
}

// RecordConflict counts one detected conflict by type.
func (m *MetricsService) RecordConflict(conflictType models.ConflictType) {
	if m == nil {
		return
	}
	m.conflictsTotal.WithLabelValues(string(conflictType)).Inc()
}

// ObserveQuality records the quality score of an accepted placement.
func (m *MetricsService) ObserveQuality(score float64) {
	if m == nil {
		return
	}
	m.qualityScore.Observe(score)
}

// RecordResolvedConflicts counts conflicts repaired by the optimizer.
func (m *MetricsService) RecordResolvedConflicts(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.resolvedTotal.Add(float64(count))
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
