// internal/app/store/teamgoals/teamgoalstore.go
package teamgoalstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c       *mongo.Collection
	details *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:       db.Collection("team_kpi_goals"),
		details: db.Collection("team_kpi_details"),
	}
}

// Fields are the operator-editable parts of a goal.
type Fields struct {
	GoalName            string
	Description         string
	StartDate           string
	EndDate             string
	ProgressDisplayType string
	Status              string // empty keeps the current status (active on create)
}

func (f Fields) validate() error {
	if strings.TrimSpace(f.GoalName) == "" {
		return kpierr.Validation("goal name is required")
	}
	start, err := models.ParseDate(f.StartDate)
	if err != nil {
		return kpierr.Validation("start date must be YYYY-MM-DD")
	}
	end, err := models.ParseDate(f.EndDate)
	if err != nil {
		return kpierr.Validation("end date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return kpierr.Validation("end date must not be before start date")
	}
	if !models.Contains(models.ProgressDisplayTypes, f.ProgressDisplayType) {
		return kpierr.Validation("progress display type must be one of: %s", strings.Join(models.ProgressDisplayTypes, ", "))
	}
	if f.Status != "" && !models.Contains(models.GoalStatuses, f.Status) {
		return kpierr.Validation("status must be one of: %s", strings.Join(models.GoalStatuses, ", "))
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.TeamKPIGoal, error) {
	var g models.TeamKPIGoal
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.TeamKPIGoal{}, kpierr.NotFound("team goal %s not found", id.Hex())
		}
		return models.TeamKPIGoal{}, err
	}
	return g, nil
}

// Create adds a goal to team, snapshotting the team and program names.
func (s *Store) Create(ctx context.Context, team models.Team, f Fields) (models.TeamKPIGoal, error) {
	if err := f.validate(); err != nil {
		return models.TeamKPIGoal{}, err
	}
	if f.Status == "" {
		f.Status = models.GoalActive
	}
	now := time.Now().UTC()
	g := models.TeamKPIGoal{
		ID:                  primitive.NewObjectID(),
		TeamID:              team.ID,
		TeamName:            team.Name,
		ProgramID:           team.ProgramID,
		ProgramName:         team.ProgramName,
		GoalName:            f.GoalName,
		GoalNameCI:          text.Fold(f.GoalName),
		Description:         f.Description,
		StartDate:           f.StartDate,
		EndDate:             f.EndDate,
		ProgressDisplayType: f.ProgressDisplayType,
		Status:              f.Status,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.TeamKPIGoal{}, err
	}
	return g, nil
}

// Update replaces the editable fields and returns the stored goal.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, f Fields) (models.TeamKPIGoal, error) {
	if err := f.validate(); err != nil {
		return models.TeamKPIGoal{}, err
	}
	set := bson.M{
		"goal_name":             f.GoalName,
		"goal_name_ci":          text.Fold(f.GoalName),
		"description":           f.Description,
		"start_date":            f.StartDate,
		"end_date":              f.EndDate,
		"progress_display_type": f.ProgressDisplayType,
		"updated_at":            time.Now().UTC(),
	}
	if f.Status != "" {
		set["status"] = f.Status
	}
	var out models.TeamKPIGoal
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.TeamKPIGoal{}, kpierr.NotFound("team goal %s not found", id.Hex())
	}
	return out, err
}

// Delete removes a goal together with its KPI details and returns how many
// details went with it. Run it inside txn.Run so both deletes commit together.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	if res.DeletedCount == 0 {
		return 0, kpierr.NotFound("team goal %s not found", id.Hex())
	}
	dres, err := s.details.DeleteMany(ctx, bson.M{"team_goal_id": id})
	if err != nil {
		return 0, err
	}
	return dres.DeletedCount, nil
}
