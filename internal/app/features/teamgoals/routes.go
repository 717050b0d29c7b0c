// internal/app/features/teamgoals/routes.go
package teamgoals

import "github.com/go-chi/chi/v5"

// Routes mounts under /goals. Goal creation lives under /teams/{id}/goals
// (see HandleCreate).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.ServeGoal)
		r.Post("/", h.HandleUpdate)
		r.Delete("/", h.HandleDelete)
		r.Get("/details", h.ServeDetails)
		r.Post("/details", h.HandleCreateDetail)
	})

	return r
}

// DetailRoutes mounts under /details.
func DetailRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Route("/{id}", func(r chi.Router) {
		r.Post("/", h.HandleEditDetail)
		r.Delete("/", h.HandleDeleteDetail)
		r.Post("/members/{studentID}/progress", h.HandleMemberProgress)
	})

	return r
}
