// internal/app/features/submissions/routes.go
package submissions

import "github.com/go-chi/chi/v5"

// Routes mounts under /submissions.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/pending-counts", h.ServePendingCounts)

	r.Route("/kpi", func(r chi.Router) {
		r.Get("/", h.ServeKPIList)
		r.Post("/", h.HandleCreateKPI)
		r.Post("/{id}/approve", h.HandleApproveKPI)
		r.Post("/{id}/reject", h.HandleRejectKPI)
	})

	r.Route("/assignments", func(r chi.Router) {
		r.Get("/", h.ServeAssignmentList)
		r.Post("/", h.HandleCreateAssignment)
		r.Post("/{id}/approve", h.HandleApproveAssignment)
		r.Post("/{id}/reject", h.HandleRejectAssignment)
	})

	return r
}
