// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	auditlogfeature "github.com/dalemusser/coachhub/internal/app/features/auditlog"
	healthfeature "github.com/dalemusser/coachhub/internal/app/features/health"
	kpitemplatesfeature "github.com/dalemusser/coachhub/internal/app/features/kpitemplates"
	programsfeature "github.com/dalemusser/coachhub/internal/app/features/programs"
	"github.com/dalemusser/coachhub/internal/app/features/shared"
	submissionsfeature "github.com/dalemusser/coachhub/internal/app/features/submissions"
	teamgoalsfeature "github.com/dalemusser/coachhub/internal/app/features/teamgoals"
	teamsfeature "github.com/dalemusser/coachhub/internal/app/features/teams"
	"github.com/dalemusser/coachhub/internal/app/store/audit"
	"github.com/dalemusser/coachhub/internal/app/system/auditlog"
	"github.com/dalemusser/coachhub/internal/app/system/jsonresp"
	"github.com/dalemusser/coachhub/internal/app/system/metrics"
	"github.com/dalemusser/coachhub/internal/app/system/notify"
	"github.com/dalemusser/coachhub/internal/app/system/ratelimit"
	"github.com/dalemusser/coachhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. CoachHub builds the shared handler
// dependencies (audit logger, metrics, notification sink) once and mounts
// every feature router with them.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.CoachHubMongoDatabase

	var m *metrics.Metrics
	if appCfg.MetricsEnabled {
		m = metrics.New()
	}

	d := shared.Deps{
		DB:  db,
		Log: logger,
		Audit: auditlog.New(audit.New(db), logger, auditlog.Config{
			Review: appCfg.AuditLogReview,
			Admin:  appCfg.AuditLogAdmin,
		}),
		Metrics: m,
		Notify:  notify.Log{L: logger},
	}

	if m != nil {
		background.pending = workers.NewPendingReviews(db, m, logger, appCfg.PendingRefresh)
		background.pending.Start()
	}

	var limiter *ratelimit.Limiter
	if appCfg.RateLimitPerMinute > 0 {
		limiter = ratelimit.New(appCfg.RateLimitPerMinute, appCfg.RateLimitBurst, 10*time.Minute)
		background.limiter = limiter
	}

	return newRouter(d, db, limiter), nil
}

func newRouter(d shared.Deps, db *mongo.Database, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(d.Metrics.Middleware)
	r.Use(limiter.Writes)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		jsonresp.Message(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		jsonresp.Message(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(db, d.Log)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	// KPI catalog and program configuration
	templatesHandler := kpitemplatesfeature.NewHandler(d)
	r.Mount("/kpi-templates", kpitemplatesfeature.Routes(templatesHandler))

	programsHandler := programsfeature.NewHandler(d)
	r.Mount("/programs", programsfeature.Routes(programsHandler))

	// Teams, rosters and team goals. Goals are created under their team.
	goalsHandler := teamgoalsfeature.NewHandler(d)
	teamsHandler := teamsfeature.NewHandler(d)
	r.Mount("/teams", teamsfeature.Routes(teamsHandler, goalsHandler.HandleCreate))
	r.Mount("/goals", teamgoalsfeature.Routes(goalsHandler))
	r.Mount("/details", teamgoalsfeature.DetailRoutes(goalsHandler))

	// Submission review
	submissionsHandler := submissionsfeature.NewHandler(d)
	r.Mount("/submissions", submissionsfeature.Routes(submissionsHandler))

	auditHandler := auditlogfeature.NewHandler(d)
	r.Mount("/audit-events", auditlogfeature.Routes(auditHandler))

	return r
}
