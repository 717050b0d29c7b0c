// internal/app/features/kpitemplates/routes.go
package kpitemplates

import "github.com/go-chi/chi/v5"

// Routes mounts under /kpi-templates.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeTemplate)
	r.Post("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
