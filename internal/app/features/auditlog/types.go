// internal/app/features/auditlog/types.go
package auditlog

import "github.com/dalemusser/coachhub/internal/app/store/audit"

// listResponse is one page of audit events, newest first.
type listResponse struct {
	Items      []audit.Event `json:"items"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Total      int64         `json:"total"`
	HasPrev    bool          `json:"has_prev"`
	HasNext    bool          `json:"has_next"`
}

func allCategories() []string {
	return []string{audit.CategoryReview, audit.CategoryAdmin}
}
