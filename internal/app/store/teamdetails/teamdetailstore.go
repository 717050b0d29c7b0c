// internal/app/store/teamdetails/teamdetailstore.go
package teamdetailstore

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	rosterstore "github.com/dalemusser/coachhub/internal/app/store/rosters"
	teamgoalstore "github.com/dalemusser/coachhub/internal/app/store/teamgoals"
	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/domain/progress"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Every write replaces the whole document conditioned on the version it was
// read at, so derived totals always match assigned_students.

type Store struct {
	c       *mongo.Collection
	goals   *teamgoalstore.Store
	rosters *rosterstore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:       db.Collection("team_kpi_details"),
		goals:   teamgoalstore.New(db),
		rosters: rosterstore.New(db),
	}
}

// Fields are the scalar, operator-editable parts of a detail.
type Fields struct {
	Name        string
	Description string
	TargetValue float64
	Unit        string
	DueDate     string // optional YYYY-MM-DD
}

func (f Fields) validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return kpierr.Validation("KPI 이름은 필수입니다")
	}
	if !(f.TargetValue > 0) || math.IsInf(f.TargetValue, 0) {
		return kpierr.Validation("목표 값은 0보다 커야 합니다")
	}
	if strings.TrimSpace(f.Unit) == "" {
		return kpierr.Validation("단위는 필수입니다")
	}
	if f.DueDate != "" && !models.ValidDate(f.DueDate) {
		return kpierr.Validation("due date must be YYYY-MM-DD")
	}
	return nil
}

func notFound(id primitive.ObjectID) error {
	return kpierr.NotFound("KPI detail %s not found", id.Hex())
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.TeamKPIDetail, error) {
	var d models.TeamKPIDetail
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.TeamKPIDetail{}, notFound(id)
		}
		return models.TeamKPIDetail{}, err
	}
	return d, nil
}

// ListByGoal returns a goal's details in creation order.
func (s *Store) ListByGoal(ctx context.Context, goalID primitive.ObjectID) ([]models.TeamKPIDetail, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"team_goal_id": goalID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.TeamKPIDetail{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// assignments resolves studentIDs against the roster of the goal's team.
func (s *Store) assignments(ctx context.Context, goalID primitive.ObjectID, studentIDs []primitive.ObjectID) ([]models.AssignedStudent, error) {
	if len(studentIDs) == 0 {
		return progress.BuildAssignments(nil, nil)
	}
	goal, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	roster, err := s.rosters.ListByTeam(ctx, goal.TeamID)
	if err != nil {
		return nil, err
	}
	return progress.BuildAssignments(roster, studentIDs)
}

// Create adds a detail under goalID assigned to studentIDs, all of whom must
// be on the goal's team roster. Every student starts at zero.
func (s *Store) Create(ctx context.Context, goalID primitive.ObjectID, f Fields, studentIDs []primitive.ObjectID) (models.TeamKPIDetail, error) {
	if err := f.validate(); err != nil {
		return models.TeamKPIDetail{}, err
	}
	assigned, err := s.assignments(ctx, goalID, studentIDs)
	if err != nil {
		return models.TeamKPIDetail{}, err
	}

	now := time.Now().UTC()
	d := models.TeamKPIDetail{
		ID:               primitive.NewObjectID(),
		TeamGoalID:       goalID,
		Name:             f.Name,
		Description:      f.Description,
		TargetValue:      f.TargetValue,
		Unit:             f.Unit,
		AssignedStudents: assigned,
		DueDate:          f.DueDate,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	progress.Recompute(&d)
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.TeamKPIDetail{}, err
	}
	return d, nil
}

// Edit describes a change to an existing detail.
type Edit struct {
	Fields

	// ReplaceStudents rebuilds the assignment list from StudentIDs. It
	// zeroes every student's progress and so requires ConfirmReset.
	ReplaceStudents bool
	StudentIDs      []primitive.ObjectID
	ConfirmReset    bool

	// IfVersion, when non-zero, must match the stored version.
	IfVersion int64
}

// Edit applies e to the detail. It reports whether progress was reset.
// A target change alone recomputes the totals from the existing values.
func (s *Store) Edit(ctx context.Context, id primitive.ObjectID, e Edit) (models.TeamKPIDetail, bool, error) {
	if err := e.Fields.validate(); err != nil {
		return models.TeamKPIDetail{}, false, err
	}
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return models.TeamKPIDetail{}, false, err
	}
	if e.IfVersion != 0 && e.IfVersion != d.Version {
		return models.TeamKPIDetail{}, false, conflict(id)
	}
	if e.ReplaceStudents && !e.ConfirmReset {
		return models.TeamKPIDetail{}, false, kpierr.ConfirmationRequired(
			"학생 배정을 변경하면 모든 진행 상황이 0으로 초기화됩니다. confirm_reset=true 로 다시 요청하세요")
	}

	d.Name = e.Name
	d.Description = e.Description
	d.TargetValue = e.TargetValue
	d.Unit = e.Unit
	d.DueDate = e.DueDate
	if e.ReplaceStudents {
		assigned, err := s.assignments(ctx, d.TeamGoalID, e.StudentIDs)
		if err != nil {
			return models.TeamKPIDetail{}, false, err
		}
		d.AssignedStudents = assigned
	}
	progress.Recompute(&d)

	if err := s.replace(ctx, &d); err != nil {
		return models.TeamKPIDetail{}, false, err
	}
	return d, e.ReplaceStudents, nil
}

// UpdateMemberProgress sets one assigned student's current value and
// recomputes the detail's totals. Values above target are accepted.
func (s *Store) UpdateMemberProgress(ctx context.Context, detailID, studentID primitive.ObjectID, value float64) (models.TeamKPIDetail, error) {
	return s.UpdateMemberProgressAt(ctx, detailID, studentID, value, 0)
}

// UpdateMemberProgressAt is UpdateMemberProgress for a caller holding a
// specific version. A zero version skips the check.
func (s *Store) UpdateMemberProgressAt(ctx context.Context, detailID, studentID primitive.ObjectID, value float64, version int64) (models.TeamKPIDetail, error) {
	d, err := s.GetByID(ctx, detailID)
	if err != nil {
		return models.TeamKPIDetail{}, err
	}
	if version != 0 && version != d.Version {
		return models.TeamKPIDetail{}, conflict(detailID)
	}
	if err := progress.ApplyMemberValue(&d, studentID, value); err != nil {
		return models.TeamKPIDetail{}, err
	}
	if err := s.replace(ctx, &d); err != nil {
		return models.TeamKPIDetail{}, err
	}
	return d, nil
}

func conflict(id primitive.ObjectID) error {
	return kpierr.Conflict("KPI detail %s was changed by someone else; reload and try again", id.Hex())
}

// replace writes d if the stored version still equals d.Version, then
// advances d.Version.
func (s *Store) replace(ctx context.Context, d *models.TeamKPIDetail) error {
	read := d.Version
	d.Version = read + 1
	d.UpdatedAt = time.Now().UTC()

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": d.ID, "version": read}, d)
	if err != nil {
		d.Version = read
		return err
	}
	if res.MatchedCount == 0 {
		d.Version = read
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": d.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return notFound(d.ID)
		}
		return conflict(d.ID)
	}
	return nil
}

// Delete removes one detail.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}
