package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/system/metrics"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "coachhub",
		MongoMaxPoolSize: 100,
		MongoMinPoolSize: 10,
		AuditLogReview:   "all",
		AuditLogAdmin:    "db",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", func(*AppConfig) {}, false},
		{"bad uri", func(c *AppConfig) { c.MongoURI = "postgres://nope" }, true},
		{"empty database", func(c *AppConfig) { c.MongoDatabase = "" }, true},
		{"min above max", func(c *AppConfig) { c.MongoMinPoolSize = 200 }, true},
		{"unknown review destination", func(c *AppConfig) { c.AuditLogReview = "file" }, true},
		{"admin off", func(c *AppConfig) { c.AuditLogAdmin = "off" }, false},
		{"negative rate", func(c *AppConfig) { c.RateLimitPerMinute = -1 }, true},
		{"rate without burst", func(c *AppConfig) { c.RateLimitPerMinute = 60 }, true},
		{"rate with burst", func(c *AppConfig) { c.RateLimitPerMinute = 60; c.RateLimitBurst = 5 }, false},
		{"metrics without refresh", func(c *AppConfig) { c.MetricsEnabled = true; c.PendingRefresh = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(nil, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStartup_AppliesTimeouts(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	cfg := validConfig()
	cfg.TimeoutShort = 750 * time.Millisecond
	if err := Startup(context.Background(), nil, cfg, DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	if got := timeouts.Short(); got != 750*time.Millisecond {
		t.Errorf("Short() = %v, want 750ms", got)
	}
	if got := timeouts.Long(); got != timeouts.DefaultLong {
		t.Errorf("Long() = %v, want default %v", got, timeouts.DefaultLong)
	}
}

func TestRouter_UnknownRouteIsJSON(t *testing.T) {
	r := newRouter(shared.Deps{Log: testLogger()}, nil, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	testutil.AssertStatus(t, rec, http.StatusNotFound)
	env := testutil.DecodeEnvelope(t, rec, nil)
	if env.StatusCode != http.StatusNotFound {
		t.Errorf("status_code = %d, want 404", env.StatusCode)
	}
}

func TestRouter_MetricsOnlyWhenEnabled(t *testing.T) {
	r := newRouter(shared.Deps{Log: testLogger()}, nil, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	testutil.AssertStatus(t, rec, http.StatusNotFound)

	m := metrics.New()
	r = newRouter(shared.Deps{Log: testLogger(), Metrics: m}, nil, nil)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	testutil.AssertStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "coachhub_http_requests_total") {
		t.Error("metrics output missing coachhub_http_requests_total")
	}
	if n := promtest.CollectAndCount(m.HTTPRequests); n == 0 {
		t.Error("expected at least one request series")
	}
}

func TestBuildHandler_ServesFeatures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cfg := validConfig()
	cfg.MetricsEnabled = true
	cfg.PendingRefresh = time.Hour
	cfg.RateLimitPerMinute = 60
	cfg.RateLimitBurst = 10
	deps := DBDeps{CoachHubMongoDatabase: db}

	h, err := BuildHandler(nil, cfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	defer func() {
		if err := Shutdown(context.Background(), nil, cfg, DBDeps{}, testLogger()); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	}()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	testutil.AssertStatus(t, rec, http.StatusOK)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, testutil.JSONRequest(t, http.MethodPost, "/kpi-templates", map[string]any{
		"name": "Reading minutes",
		"unit": "minutes",
	}))
	testutil.AssertStatus(t, rec, http.StatusCreated)

	// Admin events go to the database under the "db" destination.
	n, err := db.Collection("audit_events").CountDocuments(ctx, bson.M{"category": "admin"})
	if err != nil {
		t.Fatalf("count audit events: %v", err)
	}
	if n != 1 {
		t.Errorf("admin audit events = %d, want 1", n)
	}
}
