// internal/app/features/programs/handler.go
package programs

import "github.com/dalemusser/coachhub/internal/app/features/shared"

// Handler serves programs and the KPIs bound to them.
type Handler struct {
	shared.Deps
}

// NewHandler constructs a programs Handler.
func NewHandler(d shared.Deps) *Handler {
	return &Handler{Deps: d.WithDefaults()}
}
