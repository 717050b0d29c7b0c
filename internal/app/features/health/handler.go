// internal/app/features/health/handler.go
package health

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/coachhub/internal/app/store/queries/submissionqueries"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB      *mongo.Database
	Log     *zap.Logger
	started time.Time
}

// NewHandler constructs a health Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{DB: db, Log: logger, started: time.Now()}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	Transactions bool   `json:"transactions"`
	Pending      *int64 `json:"pending_reviews,omitempty"`
	Uptime       string `json:"uptime"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "transactions":true, "pending_reviews":3, "uptime":"1h2m0s" }
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Ping(), h.Log, "health")
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:       "ok",
		Database:     "connected",
		Transactions: txn.Supported(),
		Uptime:       time.Since(h.started).Round(time.Second).String(),
	}

	if err := h.DB.Client().Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	// Informational only; a slow count does not fail the check.
	if counts, err := submissionqueries.CountPending(ctx, h.DB, submissionqueries.Filter{}); err == nil {
		resp.Pending = &counts.Total
	} else {
		h.Log.Warn("health-check: pending count failed", zap.Error(err))
	}

	_ = json.NewEncoder(w).Encode(resp)
}
