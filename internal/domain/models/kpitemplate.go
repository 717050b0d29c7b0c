// internal/domain/models/kpitemplate.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// KPITemplate is a reusable, unit-tagged KPI definition that can be bound to
// programs (ProgramKPI) or used as the basis of team KPI details.
//
// Deleting a template never cascades: ProgramKPIs and submissions keep their
// own name/unit snapshot.
type KPITemplate struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Name          string             `bson:"name" json:"name"`
	NameCI        string             `bson:"name_ci" json:"-"`
	Description   string             `bson:"description" json:"description"`
	DescriptionCI string             `bson:"description_ci" json:"-"`
	Unit          string             `bson:"unit" json:"unit"` // free text, e.g. "%", "시간"
	Language      string             `bson:"language" json:"language"`
	IsActive      bool               `bson:"is_active" json:"is_active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
