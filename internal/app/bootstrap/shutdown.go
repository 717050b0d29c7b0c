// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/coachhub/internal/app/system/ratelimit"
	"github.com/dalemusser/coachhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// background holds what BuildHandler started so Shutdown can stop it.
var background struct {
	pending *workers.PendingReviews
	limiter *ratelimit.Limiter
}

// Shutdown stops background work, then tears down DB connections.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if background.pending != nil {
		background.pending.Stop()
		background.pending = nil
	}
	if background.limiter != nil {
		background.limiter.Stop()
		background.limiter = nil
	}
	if deps.CoachHubMongoClient != nil {
		logger.Info("disconnecting CoachHub MongoDB client")
		if err := deps.CoachHubMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
