// internal/app/features/kpitemplates/handler.go
package kpitemplates

import "github.com/dalemusser/coachhub/internal/app/features/shared"

// Handler serves the KPI template catalog.
type Handler struct {
	shared.Deps
}

// NewHandler constructs a kpitemplates Handler.
func NewHandler(d shared.Deps) *Handler {
	return &Handler{Deps: d.WithDefaults()}
}
