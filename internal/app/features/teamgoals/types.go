// internal/app/features/teamgoals/types.go
package teamgoals

import (
	"github.com/dalemusser/coachhub/internal/app/features/shared"
	goalqueries "github.com/dalemusser/coachhub/internal/app/store/queries/goalqueries"
	teamdetailstore "github.com/dalemusser/coachhub/internal/app/store/teamdetails"
	teamgoalstore "github.com/dalemusser/coachhub/internal/app/store/teamgoals"
	"github.com/dalemusser/coachhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/coachhub/internal/app/system/inputval"
	"github.com/dalemusser/coachhub/internal/app/system/paging"
	"github.com/dalemusser/coachhub/internal/domain/models"
)

type goalInput struct {
	GoalName            string `json:"goal_name" validate:"notblank,max=200" label:"Goal name"`
	Description         string `json:"description" validate:"max=2000" label:"Description"`
	StartDate           string `json:"start_date" validate:"required,ymd" label:"Start date"`
	EndDate             string `json:"end_date" validate:"required,ymd" label:"End date"`
	ProgressDisplayType string `json:"progress_display_type" validate:"required,oneof=bar pie number percentage donut" label:"Progress display"`
	Status              string `json:"status" validate:"omitempty,oneof=active completed cancelled" label:"Status"`
}

func (in goalInput) fields() teamgoalstore.Fields {
	return teamgoalstore.Fields{
		GoalName:            htmlsanitize.PlainText(in.GoalName),
		Description:         htmlsanitize.PlainText(in.Description),
		StartDate:           in.StartDate,
		EndDate:             in.EndDate,
		ProgressDisplayType: in.ProgressDisplayType,
		Status:              in.Status,
	}
}

type detailInput struct {
	Name        string  `json:"name" validate:"notblank,max=200" label:"KPI name"`
	Description string  `json:"description" validate:"max=2000" label:"Description"`
	TargetValue float64 `json:"target_value" validate:"gt=0" label:"Target value"`
	Unit        string  `json:"unit" validate:"notblank,max=50" label:"Unit"`
	DueDate     string  `json:"due_date" validate:"omitempty,ymd" label:"Due date"`
}

func (in detailInput) fields() teamdetailstore.Fields {
	return teamdetailstore.Fields{
		Name:        htmlsanitize.PlainText(in.Name),
		Description: htmlsanitize.PlainText(in.Description),
		TargetValue: in.TargetValue,
		Unit:        htmlsanitize.PlainText(in.Unit),
		DueDate:     in.DueDate,
	}
}

type createDetailInput struct {
	detailInput
	AssignedStudentIDs []string `json:"assigned_student_ids" validate:"required,min=1,dive,objectid" label:"Assigned students"`
}

// editDetailInput replaces the student list only when AssignedStudentIDs is
// present, and then only with ConfirmReset.
type editDetailInput struct {
	detailInput
	AssignedStudentIDs *[]string `json:"assigned_student_ids"`
	ConfirmReset       bool      `json:"confirm_reset"`
	Version            int64     `json:"version" validate:"gte=0" label:"Version"`
}

// badStudentID returns the first assigned id that is not an ObjectID.
func (in editDetailInput) badStudentID() (string, bool) {
	if in.AssignedStudentIDs == nil {
		return "", false
	}
	for _, id := range *in.AssignedStudentIDs {
		if !inputval.IsValidObjectID(id) {
			return id, true
		}
	}
	return "", false
}

func (in editDetailInput) edit() teamdetailstore.Edit {
	e := teamdetailstore.Edit{
		Fields:       in.fields(),
		ConfirmReset: in.ConfirmReset,
		IfVersion:    in.Version,
	}
	if in.AssignedStudentIDs != nil {
		e.ReplaceStudents = true
		e.StudentIDs = shared.MustIDs(*in.AssignedStudentIDs)
	}
	return e
}

type progressInput struct {
	Value   *float64 `json:"value" validate:"required" label:"Value"`
	Version int64    `json:"version" validate:"gte=0" label:"Version"`
}

type listResponse struct {
	Items []goalqueries.Row `json:"items"`
	Page  paging.Info       `json:"page"`
}

type goalResponse struct {
	goalqueries.Row
	Details []models.TeamKPIDetail `json:"details"`
}

type editDetailResponse struct {
	Detail        models.TeamKPIDetail `json:"detail"`
	ProgressReset bool                 `json:"progress_reset"`
}
