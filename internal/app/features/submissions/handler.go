// internal/app/features/submissions/handler.go
package submissions

import "github.com/dalemusser/coachhub/internal/app/features/shared"

// Handler serves KPI and assignment submissions and their review.
type Handler struct {
	shared.Deps
}

// NewHandler constructs a submissions Handler.
func NewHandler(d shared.Deps) *Handler {
	return &Handler{Deps: d.WithDefaults()}
}
