// internal/domain/models/program.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Program is a coaching program. Teams and ProgramKPIs belong to one program
// and copy its name at creation time.
type Program struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	Status      string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ProgramKPI binds a KPITemplate to a Program with a per-student target.
// KPIName and Unit are snapshots of the template at assignment time.
type ProgramKPI struct {
	ID                primitive.ObjectID `bson:"_id" json:"id"`
	ProgramID         primitive.ObjectID `bson:"program_id" json:"program_id"`
	ProgramName       string             `bson:"program_name" json:"program_name"`
	KPITemplateID     primitive.ObjectID `bson:"kpi_template_id" json:"kpi_template_id"`
	KPIName           string             `bson:"kpi_name" json:"kpi_name"`
	TargetValue       float64            `bson:"target_value" json:"target_value"`
	Unit              string             `bson:"unit" json:"unit"`
	IsRequired        bool               `bson:"is_required" json:"is_required"`
	VisualizationType string             `bson:"visualization_type" json:"visualization_type"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
