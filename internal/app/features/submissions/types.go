// internal/app/features/submissions/types.go
package submissions

import (
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/coachhub/internal/app/system/inputval"
	"github.com/dalemusser/coachhub/internal/app/system/jsonresp"
	"github.com/dalemusser/coachhub/internal/app/system/paging"
	"github.com/dalemusser/coachhub/internal/domain/approval"
	"github.com/dalemusser/coachhub/internal/domain/models"
)

// reviewInput is the coach's decision. Comment is free text; rejection
// requires it, approval falls back to the default acknowledgement.
type reviewInput struct {
	CoachID   string `json:"coach_id" validate:"required,objectid" label:"Coach"`
	CoachName string `json:"coach_name" validate:"notblank,max=100" label:"Coach name"`
	Comment   string `json:"comment" validate:"max=2000" label:"Comment"`
}

// kpiReviewInput decodes rating only to refuse it; KPI reviews have no
// rating.
type kpiReviewInput struct {
	reviewInput
	Rating *int `json:"rating" label:"Rating"`
}

// decodeKPIReview is jsonresp.Decode plus the no-rating rule.
func decodeKPIReview(w http.ResponseWriter, r *http.Request, in *kpiReviewInput) bool {
	if !jsonresp.Decode(w, r, in) {
		return false
	}
	if in.Rating != nil {
		jsonresp.Validation(w, &inputval.Result{Errors: []inputval.FieldError{{
			Field:   "Rating",
			Rule:    "absent",
			Message: "Rating applies only to assignment reviews.",
		}}})
		return false
	}
	return true
}

type assignmentReviewInput struct {
	reviewInput
	Rating *int `json:"rating" label:"Rating"`
}

func (in reviewInput) coach() approval.Coach {
	return approval.Coach{ID: shared.MustID(in.CoachID), Name: htmlsanitize.PlainText(in.CoachName)}
}

func (in reviewInput) comment() string {
	return htmlsanitize.PlainText(in.Comment)
}

type kpiCreateInput struct {
	Type            string  `json:"type" validate:"required,oneof=required team" label:"Type"`
	TeamID          string  `json:"team_id" validate:"required,objectid" label:"Team"`
	StudentID       string  `json:"student_id" validate:"required,objectid" label:"Student"`
	Week            int     `json:"week" validate:"gte=0" label:"Week"`
	ProgramKPIID    string  `json:"program_kpi_id" validate:"required_if=Type required,omitempty,objectid" label:"Program KPI"`
	TeamKPIDetailID string  `json:"team_kpi_detail_id" validate:"required_if=Type team,omitempty,objectid" label:"KPI detail"`
	ActualValue     float64 `json:"actual_value" validate:"gte=0" label:"Actual value"`
	SubmitDate      string  `json:"submit_date" validate:"omitempty,ymd" label:"Submit date"`
}

type assignmentCreateInput struct {
	TeamID          string `json:"team_id" validate:"required,objectid" label:"Team"`
	StudentID       string `json:"student_id" validate:"required,objectid" label:"Student"`
	AssignmentID    string `json:"assignment_id" validate:"omitempty,objectid" label:"Assignment"`
	AssignmentTitle string `json:"assignment_title" validate:"notblank,max=200" label:"Assignment title"`
	SubmissionURL   string `json:"submission_url" validate:"omitempty,httpurl,max=2000" label:"Submission URL"`
	SubmissionNote  string `json:"submission_note" validate:"max=5000" label:"Submission note"`
	SubmitDate      string `json:"submit_date" validate:"omitempty,ymd" label:"Submit date"`
}

type kpiListResponse struct {
	Items []models.KPISubmission `json:"items"`
	Page  paging.Info            `json:"page"`
}

type assignmentListResponse struct {
	Items []models.AssignmentSubmission `json:"items"`
	Page  paging.Info                   `json:"page"`
}

// kpiReviewResponse carries the KPI detail an approval moved, if any.
type kpiReviewResponse struct {
	Submission models.KPISubmission  `json:"submission"`
	Detail     *models.TeamKPIDetail `json:"detail,omitempty"`
}
