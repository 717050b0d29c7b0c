// Package metrics exposes CoachHub's Prometheus collectors.
//
// A Metrics value owns its own registry so tests can build one per case.
// Every recording method is safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "coachhub"

type Metrics struct {
	registry *prometheus.Registry

	Reviews         *prometheus.CounterVec
	ProgressUpdates prometheus.Counter
	RosterResets    prometheus.Counter
	WriteConflicts  *prometheus.CounterVec
	PendingReviews  *prometheus.GaugeVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New registers every collector, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submission_reviews_total",
			Help:      "Submission review decisions by kind (kpi, assignment) and decision.",
		}, []string{"kind", "decision"}),
		ProgressUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "member_progress_updates_total",
			Help:      "Per-student KPI detail value updates.",
		}),
		RosterResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detail_roster_resets_total",
			Help:      "KPI detail edits that rebuilt the roster and reset progress.",
		}),
		WriteConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_conflicts_total",
			Help:      "Writes lost to a concurrent change, by entity.",
		}, []string{"entity"}),
		PendingReviews: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_reviews",
			Help:      "Submissions awaiting a coach decision, by kind (kpi_required, kpi_team, assignment).",
		}, []string{"kind"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Reviews,
		m.ProgressUpdates,
		m.RosterResets,
		m.WriteConflicts,
		m.PendingReviews,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Review(kind, decision string) {
	if m == nil {
		return
	}
	m.Reviews.WithLabelValues(kind, decision).Inc()
}

func (m *Metrics) ProgressUpdated() {
	if m == nil {
		return
	}
	m.ProgressUpdates.Inc()
}

func (m *Metrics) RosterReset() {
	if m == nil {
		return
	}
	m.RosterResets.Inc()
}

func (m *Metrics) Conflict(entity string) {
	if m == nil {
		return
	}
	m.WriteConflicts.WithLabelValues(entity).Inc()
}

// SetPending records the current backlog for one submission kind.
func (m *Metrics) SetPending(kind string, n int64) {
	if m == nil {
		return
	}
	m.PendingReviews.WithLabelValues(kind).Set(float64(n))
}

// Middleware records request count and latency keyed by the chi route
// pattern, so /goals/{id} is one series rather than one per id.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
