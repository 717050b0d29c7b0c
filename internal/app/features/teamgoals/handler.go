// internal/app/features/teamgoals/handler.go
package teamgoals

import "github.com/dalemusser/coachhub/internal/app/features/shared"

// Handler serves team KPI goals, their details and member progress.
type Handler struct {
	shared.Deps
}

// NewHandler constructs a teamgoals Handler.
func NewHandler(d shared.Deps) *Handler {
	return &Handler{Deps: d.WithDefaults()}
}
