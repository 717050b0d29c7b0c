// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/dalemusser/coachhub/internal/app/features/shared"
)

// Handler serves the audit event history.
type Handler struct {
	shared.Deps
}

// NewHandler constructs an audit log feature handler.
func NewHandler(d shared.Deps) *Handler {
	return &Handler{Deps: d.WithDefaults()}
}
