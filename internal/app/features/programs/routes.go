// internal/app/features/programs/routes.go
package programs

import "github.com/go-chi/chi/v5"

// Routes mounts under /programs.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Route("/{id}/kpis", func(r chi.Router) {
		r.Get("/", h.ServeKPIs)
		r.Post("/", h.HandleAssign)
		r.Get("/selectable", h.ServeSelectable)
		r.Delete("/{kpiID}", h.HandleRemoveKPI)
	})

	return r
}
