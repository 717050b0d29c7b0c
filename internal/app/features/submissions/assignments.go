// internal/app/features/submissions/assignments.go
package submissions

import (
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	assignmentsubmissionstore "github.com/dalemusser/coachhub/internal/app/store/assignmentsubmissions"
	"github.com/dalemusser/coachhub/internal/app/store/queries/submissionqueries"
	"github.com/dalemusser/coachhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/coachhub/internal/app/system/jsonresp"
	"github.com/dalemusser/coachhub/internal/app/system/paging"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
)

// ServeAssignmentList handles GET /submissions/assignments.
func (h *Handler) ServeAssignmentList(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(w, r, false)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "assignment submission list")
	defer cancel()

	rows, info, err := submissionqueries.ListAssignments(ctx, h.DB, f, paging.Parse(r))
	if err != nil {
		h.Fail(w, r, err, "Could not load assignment submissions.")
		return
	}
	jsonresp.Data(w, http.StatusOK, "", assignmentListResponse{Items: rows, Page: info})
}

// HandleCreateAssignment handles POST /submissions/assignments.
func (h *Handler) HandleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	var in assignmentCreateInput
	if !jsonresp.Decode(w, r, &in) {
		return
	}
	ns := assignmentsubmissionstore.NewSubmission{
		TeamID:          shared.MustID(in.TeamID),
		StudentID:       shared.MustID(in.StudentID),
		AssignmentTitle: htmlsanitize.PlainText(in.AssignmentTitle),
		SubmissionURL:   in.SubmissionURL,
		SubmissionNote:  htmlsanitize.PlainText(in.SubmissionNote),
		SubmitDate:      in.SubmitDate,
	}
	if in.AssignmentID != "" {
		ns.AssignmentID = shared.MustID(in.AssignmentID)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "assignment submission create")
	defer cancel()

	sub, err := assignmentsubmissionstore.New(h.DB).Create(ctx, ns)
	if err != nil {
		h.Fail(w, r, err, "Could not submit assignment.")
		return
	}
	h.OK(w, r, http.StatusCreated, "과제가 제출되었습니다.", sub)
}

// HandleApproveAssignment handles POST /submissions/assignments/{id}/approve.
func (h *Handler) HandleApproveAssignment(w http.ResponseWriter, r *http.Request) {
	h.reviewAssignment(w, r, models.ReviewApproved)
}

// HandleRejectAssignment handles POST /submissions/assignments/{id}/reject.
func (h *Handler) HandleRejectAssignment(w http.ResponseWriter, r *http.Request) {
	h.reviewAssignment(w, r, models.ReviewRejected)
}

func (h *Handler) reviewAssignment(w http.ResponseWriter, r *http.Request, decision string) {
	id, ok := shared.PathID(w, r, "id", "Submission")
	if !ok {
		return
	}
	var in assignmentReviewInput
	if !jsonresp.Decode(w, r, &in) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "assignment submission review")
	defer cancel()

	store := assignmentsubmissionstore.New(h.DB)
	var (
		sub models.AssignmentSubmission
		err error
	)
	if decision == models.ReviewApproved {
		sub, err = store.Approve(ctx, id, in.coach(), in.comment(), in.Rating)
	} else {
		sub, err = store.Reject(ctx, id, in.coach(), in.comment(), in.Rating)
	}
	if err != nil {
		h.reviewFailed(ctx, w, r, kindAssignment, decision, id, err)
		return
	}
	h.reviewed(ctx, r, kindAssignment, decision, id, sub.Review)
	h.OK(w, r, http.StatusOK, reviewMessage(decision), sub)
}
