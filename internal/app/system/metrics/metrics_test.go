package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/coachhub/internal/app/system/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorders(t *testing.T) {
	m := metrics.New()

	m.Review("kpi", "approved")
	m.Review("kpi", "approved")
	m.Review("assignment", "rejected")
	m.ProgressUpdated()
	m.RosterReset()
	m.Conflict("team_kpi_detail")
	m.SetPending("assignment", 4)
	m.SetPending("assignment", 3)

	if got := testutil.ToFloat64(m.Reviews.WithLabelValues("kpi", "approved")); got != 2 {
		t.Errorf("kpi approvals = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ProgressUpdates); got != 1 {
		t.Errorf("progress updates = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.WriteConflicts.WithLabelValues("team_kpi_detail")); got != 1 {
		t.Errorf("conflicts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PendingReviews.WithLabelValues("assignment")); got != 3 {
		t.Errorf("pending assignments = %v, want 3", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	m.Review("kpi", "approved")
	m.ProgressUpdated()
	m.RosterReset()
	m.Conflict("x")
	m.SetPending("kpi_team", 1)

	called := false
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if !called {
		t.Error("nil middleware did not pass through")
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := metrics.New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/goals/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/goals/"+id, nil))
	}

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/goals/{id}", "404")); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "coachhub_http_requests_total") {
		t.Error("exposition missing coachhub_http_requests_total")
	}
}
