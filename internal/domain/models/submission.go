// internal/domain/models/submission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review states shared by KPI and assignment submissions.
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// ReviewStatuses is the allowed set for Review.Status.
var ReviewStatuses = []string{ReviewPending, ReviewApproved, ReviewRejected}

// Review is the coach-owned part of a submission.
type Review struct {
	Status     string              `bson:"status" json:"status"`
	CoachID    *primitive.ObjectID `bson:"coach_id,omitempty" json:"coach_id,omitempty"`
	CoachName  string              `bson:"coach_name,omitempty" json:"coach_name,omitempty"`
	Feedback   string              `bson:"feedback,omitempty" json:"feedback,omitempty"`
	ReviewedAt *time.Time          `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
}

// SubmissionBase holds the fields common to every submission kind.
// Submissions are created by the student and mutated only through review.
type SubmissionBase struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	StudentID     primitive.ObjectID `bson:"student_id" json:"student_id"`
	StudentName   string             `bson:"student_name" json:"student_name"`
	StudentNameCI string             `bson:"student_name_ci" json:"-"`
	TeamID        primitive.ObjectID `bson:"team_id" json:"team_id"`
	TeamName      string             `bson:"team_name" json:"team_name"`
	ProgramID     primitive.ObjectID `bson:"program_id" json:"program_id"`
	ProgramName   string             `bson:"program_name" json:"program_name"`
	SubmitDate    string             `bson:"submit_date" json:"submit_date"` // YYYY-MM-DD

	Review `bson:",inline"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// KPI submission kinds.
const (
	KPISubmissionRequired = "required"
	KPISubmissionTeam     = "team"
)

// KPISubmissionTypes is the allowed set for KPISubmission.Type.
var KPISubmissionTypes = []string{KPISubmissionRequired, KPISubmissionTeam}

// RequiredKPIRef points a "required" submission at a ProgramKPI.
type RequiredKPIRef struct {
	ProgramKPIID primitive.ObjectID `bson:"program_kpi_id" json:"program_kpi_id"`
	KPIName      string             `bson:"kpi_name" json:"kpi_name"`
}

// TeamKPIRef points a "team" submission at a TeamKPIDetail.
type TeamKPIRef struct {
	TeamKPIDetailID primitive.ObjectID `bson:"team_kpi_detail_id" json:"team_kpi_detail_id"`
	TeamGoalID      primitive.ObjectID `bson:"team_goal_id" json:"team_goal_id"`
	DetailName      string             `bson:"detail_name" json:"detail_name"`
}

// KPISubmission is a student-reported KPI value awaiting review.
//
// Type selects the variant: exactly one of Required or Team is set, matching
// Type. KPINameCI indexes the variant's display name for search.
type KPISubmission struct {
	SubmissionBase `bson:",inline"`

	Type      string          `bson:"type" json:"type"`
	Week      int             `bson:"week" json:"week"`
	Required  *RequiredKPIRef `bson:"required,omitempty" json:"required,omitempty"`
	Team      *TeamKPIRef     `bson:"team,omitempty" json:"team,omitempty"`
	KPINameCI string          `bson:"kpi_name_ci" json:"-"`

	ActualValue float64 `bson:"actual_value" json:"actual_value"`
	TargetValue float64 `bson:"target_value" json:"target_value"`
	Unit        string  `bson:"unit" json:"unit"`
}

// DisplayName returns the KPI name of whichever variant is set.
func (s *KPISubmission) DisplayName() string {
	switch {
	case s.Required != nil:
		return s.Required.KPIName
	case s.Team != nil:
		return s.Team.DetailName
	}
	return ""
}

// VariantOK reports whether exactly the variant named by Type is present.
func (s *KPISubmission) VariantOK() bool {
	switch s.Type {
	case KPISubmissionRequired:
		return s.Required != nil && s.Team == nil
	case KPISubmissionTeam:
		return s.Team != nil && s.Required == nil
	}
	return false
}

// AssignmentSubmission is a student's hand-in for an assignment.
// At least one of SubmissionURL or SubmissionNote is expected but not enforced.
type AssignmentSubmission struct {
	SubmissionBase `bson:",inline"`

	AssignmentID      primitive.ObjectID `bson:"assignment_id" json:"assignment_id"`
	AssignmentTitle   string             `bson:"assignment_title" json:"assignment_title"`
	AssignmentTitleCI string             `bson:"assignment_title_ci" json:"-"`
	Rating            *int               `bson:"rating,omitempty" json:"rating,omitempty"` // 1-5
	SubmissionURL     string             `bson:"submission_url,omitempty" json:"submission_url,omitempty"`
	SubmissionNote    string             `bson:"submission_note,omitempty" json:"submission_note,omitempty"`
}
