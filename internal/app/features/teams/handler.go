// internal/app/features/teams/handler.go
package teams

import "github.com/dalemusser/coachhub/internal/app/features/shared"

// Handler serves teams and their rosters.
type Handler struct {
	shared.Deps
}

// NewHandler constructs a teams Handler.
func NewHandler(d shared.Deps) *Handler {
	return &Handler{Deps: d.WithDefaults()}
}
