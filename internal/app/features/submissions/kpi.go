// internal/app/features/submissions/kpi.go
package submissions

import (
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	kpisubmissionstore "github.com/dalemusser/coachhub/internal/app/store/kpisubmissions"
	"github.com/dalemusser/coachhub/internal/app/store/queries/submissionqueries"
	"github.com/dalemusser/coachhub/internal/app/system/jsonresp"
	"github.com/dalemusser/coachhub/internal/app/system/paging"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
)

// ServeKPIList handles GET /submissions/kpi, newest submit date first.
func (h *Handler) ServeKPIList(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(w, r, true)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "kpi submission list")
	defer cancel()

	rows, info, err := submissionqueries.ListKPI(ctx, h.DB, f, paging.Parse(r))
	if err != nil {
		h.Fail(w, r, err, "Could not load KPI submissions.")
		return
	}
	jsonresp.Data(w, http.StatusOK, "", kpiListResponse{Items: rows, Page: info})
}

// HandleCreateKPI handles POST /submissions/kpi.
func (h *Handler) HandleCreateKPI(w http.ResponseWriter, r *http.Request) {
	var in kpiCreateInput
	if !jsonresp.Decode(w, r, &in) {
		return
	}
	ns := kpisubmissionstore.NewSubmission{
		Type:        in.Type,
		TeamID:      shared.MustID(in.TeamID),
		StudentID:   shared.MustID(in.StudentID),
		Week:        in.Week,
		ActualValue: in.ActualValue,
		SubmitDate:  in.SubmitDate,
	}
	if in.Type == models.KPISubmissionRequired {
		ns.ProgramKPIID = shared.MustID(in.ProgramKPIID)
	} else {
		ns.TeamKPIDetailID = shared.MustID(in.TeamKPIDetailID)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "kpi submission create")
	defer cancel()

	sub, err := kpisubmissionstore.New(h.DB, h.Log).Create(ctx, ns)
	if err != nil {
		h.Fail(w, r, err, "Could not submit KPI.")
		return
	}
	h.OK(w, r, http.StatusCreated, "KPI가 제출되었습니다.", sub)
}

// HandleApproveKPI handles POST /submissions/kpi/{id}/approve. Approving a
// team-type submission also sets the student's value on its KPI detail.
func (h *Handler) HandleApproveKPI(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id", "Submission")
	if !ok {
		return
	}
	var in kpiReviewInput
	if !decodeKPIReview(w, r, &in) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "kpi submission approve")
	defer cancel()

	res, err := kpisubmissionstore.New(h.DB, h.Log).Approve(ctx, id, in.coach(), in.comment())
	if err != nil {
		h.reviewFailed(ctx, w, r, kindKPI, models.ReviewApproved, id, err)
		return
	}
	h.reviewed(ctx, r, kindKPI, models.ReviewApproved, id, res.Submission.Review)
	if res.Detail != nil {
		h.Metrics.ProgressUpdated()
		h.Audit.MemberProgressUpdated(ctx, r, res.Detail.ID, res.Submission.StudentID,
			res.Submission.ActualValue, res.Detail.TotalProgress)
	}
	h.OK(w, r, http.StatusOK, reviewMessage(models.ReviewApproved),
		kpiReviewResponse{Submission: res.Submission, Detail: res.Detail})
}

// HandleRejectKPI handles POST /submissions/kpi/{id}/reject.
func (h *Handler) HandleRejectKPI(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id", "Submission")
	if !ok {
		return
	}
	var in kpiReviewInput
	if !decodeKPIReview(w, r, &in) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "kpi submission reject")
	defer cancel()

	sub, err := kpisubmissionstore.New(h.DB, h.Log).Reject(ctx, id, in.coach(), in.comment())
	if err != nil {
		h.reviewFailed(ctx, w, r, kindKPI, models.ReviewRejected, id, err)
		return
	}
	h.reviewed(ctx, r, kindKPI, models.ReviewRejected, id, sub.Review)
	h.OK(w, r, http.StatusOK, reviewMessage(models.ReviewRejected), kpiReviewResponse{Submission: sub})
}
