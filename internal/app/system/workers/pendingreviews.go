// internal/app/system/workers/pendingreviews.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/coachhub/internal/app/store/queries/submissionqueries"
	"github.com/dalemusser/coachhub/internal/app/system/metrics"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// PendingReviews is a background worker that publishes the review backlog
// to the pending_reviews gauge.
type PendingReviews struct {
	db       *mongo.Database
	metrics  *metrics.Metrics
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewPendingReviews creates a new backlog worker that refreshes every interval.
func NewPendingReviews(db *mongo.Database, m *metrics.Metrics, logger *zap.Logger, interval time.Duration) *PendingReviews {
	return &PendingReviews{
		db:       db,
		metrics:  m,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start refreshes once, then begins the background loop.
func (w *PendingReviews) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("pending reviews worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *PendingReviews) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("pending reviews worker stopped")
}

func (w *PendingReviews) run() {
	defer w.wg.Done()

	w.Refresh()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Refresh()
		}
	}
}

// Refresh counts pending submissions and updates the gauge. Errors are
// logged and the previous values are kept.
func (w *PendingReviews) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()

	counts, err := submissionqueries.CountPending(ctx, w.db, submissionqueries.Filter{})
	if err != nil {
		w.log.Error("failed to count pending reviews", zap.Error(err))
		return
	}

	w.metrics.SetPending("kpi_required", counts.KPIRequired)
	w.metrics.SetPending("kpi_team", counts.KPITeam)
	w.metrics.SetPending("assignment", counts.Assignment)
}
