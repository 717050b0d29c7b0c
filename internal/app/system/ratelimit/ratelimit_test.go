package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/ratelimit"
)

func TestLimiter_BurstThenDeny(t *testing.T) {
	l := ratelimit.New(60, 2, time.Minute)
	defer l.Stop()

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.Allow("a") {
		t.Error("third immediate request should be denied")
	}
	if !l.Allow("b") {
		t.Error("other keys have their own bucket")
	}

	l.Reset("a")
	if !l.Allow("a") {
		t.Error("reset key should be allowed again")
	}
}

func TestWrites_OnlyLimitsMutations(t *testing.T) {
	l := ratelimit.New(60, 1, time.Minute)
	defer l.Stop()

	h := l.Writes(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(method string) int {
		r := httptest.NewRequest(method, "/goals", nil)
		r.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	if got := serve(http.MethodPost); got != http.StatusNoContent {
		t.Fatalf("first POST = %d, want 204", got)
	}
	if got := serve(http.MethodPost); got != http.StatusTooManyRequests {
		t.Errorf("second POST = %d, want 429", got)
	}
	if got := serve(http.MethodGet); got != http.StatusNoContent {
		t.Errorf("GET = %d, want 204", got)
	}
}

func TestWrites_NilPassesThrough(t *testing.T) {
	var l *ratelimit.Limiter
	called := false
	l.Writes(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	if !called {
		t.Error("nil limiter should pass through")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded list", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "10.0.0.2:80", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": " 5.6.7.8 "}, "10.0.0.2:80", "5.6.7.8"},
		{"remote with port", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"remote without port", nil, "9.9.9.9", "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			if got := ratelimit.ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
