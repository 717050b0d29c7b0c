// internal/domain/models/team.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team is a cohort of students inside a program.
//
// NOTE:
//   - The roster is not embedded on Team. It lives in team_memberships,
//     one document per (team_id, student_id).
type Team struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	ProgramID   primitive.ObjectID `bson:"program_id" json:"program_id"`
	ProgramName string             `bson:"program_name" json:"program_name"`
	Status      string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// TeamMembership places one student on one team's roster.
// Roster order is (created_at, _id) ascending.
type TeamMembership struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TeamID        primitive.ObjectID `bson:"team_id" json:"team_id"`
	StudentID     primitive.ObjectID `bson:"student_id" json:"student_id"`
	StudentName   string             `bson:"student_name" json:"student_name"`
	StudentNameCI string             `bson:"student_name_ci" json:"-"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
