// Package approval holds the review state machine shared by KPI and
// assignment submissions.
//
// A submission starts pending and moves exactly once, to approved or
// rejected. Both end states are terminal. Decide functions are pure; the
// stores apply a Decision with a write conditioned on the pending status.
package approval

import (
	"strings"
	"time"

	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultApprovalFeedback is recorded when a coach approves without a comment.
const DefaultApprovalFeedback = "승인되었습니다."

// MsgRejectReasonRequired is returned when a rejection has no comment.
const MsgRejectReasonRequired = "반려 사유 필수"

var transitions = map[string][]string{
	models.ReviewPending: {models.ReviewApproved, models.ReviewRejected},
}

// CanTransition reports whether a submission in status from may move to to.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether status admits no further review.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

// Coach identifies the reviewer. There is no auth layer, so callers supply it.
type Coach struct {
	ID   primitive.ObjectID
	Name string
}

// Decision is the review block to write once the transition is allowed.
type Decision struct {
	From   string
	Review models.Review
}

// Approve decides an approval. The trimmed comment becomes the feedback, or
// DefaultApprovalFeedback when it is blank.
func Approve(current string, coach Coach, comment string, now time.Time) (Decision, error) {
	feedback := strings.TrimSpace(comment)
	if feedback == "" {
		feedback = DefaultApprovalFeedback
	}
	return decide(current, models.ReviewApproved, coach, feedback, now)
}

// Reject decides a rejection. The comment is required and is checked before
// the current status, so a blank rejection is a validation error even for a
// submission that was already reviewed.
func Reject(current string, coach Coach, comment string, now time.Time) (Decision, error) {
	if err := CheckRejectComment(comment); err != nil {
		return Decision{}, err
	}
	return decide(current, models.ReviewRejected, coach, strings.TrimSpace(comment), now)
}

// CheckRejectComment fails when comment is blank. Stores call it before
// loading the submission.
func CheckRejectComment(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return kpierr.Validation(MsgRejectReasonRequired)
	}
	return nil
}

func decide(current, to string, coach Coach, feedback string, now time.Time) (Decision, error) {
	if !CanTransition(current, to) {
		return Decision{}, kpierr.InvalidState("submission is already %s", current)
	}
	coachID := coach.ID
	at := now.UTC()
	return Decision{
		From: current,
		Review: models.Review{
			Status:     to,
			CoachID:    &coachID,
			CoachName:  coach.Name,
			Feedback:   feedback,
			ReviewedAt: &at,
		},
	}, nil
}

// ValidRating reports whether r is an allowed assignment rating.
func ValidRating(r int) bool {
	return r >= 1 && r <= 5
}
