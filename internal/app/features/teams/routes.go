// internal/app/features/teams/routes.go
package teams

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts under /teams. createGoal serves POST /teams/{id}/goals; it
// belongs to the goals feature but shares this prefix.
func Routes(h *Handler, createGoal http.HandlerFunc) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/roster", h.ServeRoster)
		r.Post("/roster", h.HandleAddStudents)
		r.Delete("/roster/{studentID}", h.HandleRemoveStudent)
		if createGoal != nil {
			r.Post("/goals", createGoal)
		}
	})

	return r
}
