// internal/app/features/submissions/review.go
package submissions

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/store/audit"
	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Review kinds, used as the metrics label.
const (
	kindKPI        = "kpi"
	kindAssignment = "assignment"
)

var reviewEvents = map[string]map[string]string{
	kindKPI: {
		models.ReviewApproved: audit.EventKPISubmissionApproved,
		models.ReviewRejected: audit.EventKPISubmissionRejected,
	},
	kindAssignment: {
		models.ReviewApproved: audit.EventAssignmentSubmissionApproved,
		models.ReviewRejected: audit.EventAssignmentSubmissionRejected,
	},
}

func reviewMessage(decision string) string {
	if decision == models.ReviewApproved {
		return "승인되었습니다."
	}
	return "반려되었습니다."
}

// reviewed records a completed decision.
func (h *Handler) reviewed(ctx context.Context, r *http.Request, kind, decision string, id primitive.ObjectID, rev models.Review) {
	h.Metrics.Review(kind, decision)
	coachID := primitive.NilObjectID
	if rev.CoachID != nil {
		coachID = *rev.CoachID
	}
	h.Audit.Reviewed(ctx, r, reviewEvents[kind][decision], id, coachID, rev.CoachName, rev.Feedback)
	h.Log.Info("submission reviewed",
		zap.String("kind", kind),
		zap.String("decision", decision),
		zap.String("submission_id", id.Hex()))
}

// reviewFailed records a refused decision and writes the error response.
func (h *Handler) reviewFailed(ctx context.Context, w http.ResponseWriter, r *http.Request, kind, decision string, id primitive.ObjectID, err error) {
	if kpierr.IsKnown(err) {
		h.Audit.ReviewFailed(ctx, r, reviewEvents[kind][decision], id, kpierr.Message(err, ""))
	}
	if errors.Is(err, kpierr.ErrInvalidState) {
		h.Metrics.Conflict(kind + "_submission")
	}
	h.Fail(w, r, err, "Could not review submission.")
}
