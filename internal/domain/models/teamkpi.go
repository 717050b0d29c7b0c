// internal/domain/models/teamkpi.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TeamKPIGoal is a team-level objective over a date window. Its progress is
// not stored; it is the mean of its details' TotalProgress.
type TeamKPIGoal struct {
	ID                  primitive.ObjectID `bson:"_id" json:"id"`
	TeamID              primitive.ObjectID `bson:"team_id" json:"team_id"`
	TeamName            string             `bson:"team_name" json:"team_name"`
	ProgramID           primitive.ObjectID `bson:"program_id" json:"program_id"`
	ProgramName         string             `bson:"program_name" json:"program_name"`
	GoalName            string             `bson:"goal_name" json:"goal_name"`
	GoalNameCI          string             `bson:"goal_name_ci" json:"-"`
	Description         string             `bson:"description" json:"description"`
	StartDate           string             `bson:"start_date" json:"start_date"` // YYYY-MM-DD
	EndDate             string             `bson:"end_date" json:"end_date"`     // YYYY-MM-DD, >= StartDate
	ProgressDisplayType string             `bson:"progress_display_type" json:"progress_display_type"`
	Status              string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AssignedStudent is one student's contribution to a TeamKPIDetail.
type AssignedStudent struct {
	StudentID    primitive.ObjectID `bson:"student_id" json:"student_id"`
	StudentName  string             `bson:"student_name" json:"student_name"`
	CurrentValue float64            `bson:"current_value" json:"current_value"`
	Progress     int                `bson:"progress" json:"progress"`
}

// TeamKPIDetail is a measurable sub-goal under a TeamKPIGoal.
//
// TargetValue is the per-student target. TotalCurrentValue, TotalProgress and
// Status are derived from AssignedStudents and must be recomputed (see the
// progress package) whenever a member value changes. Version guards writes.
type TeamKPIDetail struct {
	ID                primitive.ObjectID `bson:"_id" json:"id"`
	TeamGoalID        primitive.ObjectID `bson:"team_goal_id" json:"team_goal_id"`
	Name              string             `bson:"name" json:"name"`
	Description       string             `bson:"description" json:"description"`
	TargetValue       float64            `bson:"target_value" json:"target_value"`
	Unit              string             `bson:"unit" json:"unit"`
	AssignedStudents  []AssignedStudent  `bson:"assigned_students" json:"assigned_students"`
	TotalCurrentValue float64            `bson:"total_current_value" json:"total_current_value"`
	TotalProgress     int                `bson:"total_progress" json:"total_progress"`
	Status            string             `bson:"status" json:"status"`
	DueDate           string             `bson:"due_date,omitempty" json:"due_date,omitempty"`
	Version           int64              `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Student returns the assignment entry for studentID.
func (d *TeamKPIDetail) Student(studentID primitive.ObjectID) (AssignedStudent, bool) {
	for _, s := range d.AssignedStudents {
		if s.StudentID == studentID {
			return s, true
		}
	}
	return AssignedStudent{}, false
}

// StudentIDs returns the assigned student ids in roster order.
func (d *TeamKPIDetail) StudentIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(d.AssignedStudents))
	for _, s := range d.AssignedStudents {
		ids = append(ids, s.StudentID)
	}
	return ids
}
