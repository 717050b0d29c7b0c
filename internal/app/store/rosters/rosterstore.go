// internal/app/store/rosters/rosterstore.go
package rosterstore

// Students have no collection of their own: a student is known by the
// student_id and student_name recorded on each roster entry.

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/domain/progress"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("team_memberships")}
}

// Entry is one student to place on a roster. A zero StudentID gets a new id.
type Entry struct {
	StudentID   primitive.ObjectID
	StudentName string
}

func newMembership(teamID primitive.ObjectID, e Entry, now time.Time) models.TeamMembership {
	if e.StudentID.IsZero() {
		e.StudentID = primitive.NewObjectID()
	}
	return models.TeamMembership{
		ID:            primitive.NewObjectID(),
		TeamID:        teamID,
		StudentID:     e.StudentID,
		StudentName:   e.StudentName,
		StudentNameCI: text.Fold(e.StudentName),
		CreatedAt:     now,
	}
}

// Add puts one student on the team's roster.
func (s *Store) Add(ctx context.Context, teamID primitive.ObjectID, e Entry) (models.TeamMembership, error) {
	m := newMembership(teamID, e, time.Now().UTC())
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.TeamMembership{}, kpierr.Conflict("student %s is already on this team", m.StudentID.Hex())
		}
		return models.TeamMembership{}, err
	}
	return m, nil
}

// AddBatchResult contains counts from a batch roster add.
type AddBatchResult struct {
	Added      int
	Duplicates int
}

// AddBatch adds several students at once. Students already on the roster
// are counted as duplicates, not errors.
func (s *Store) AddBatch(ctx context.Context, teamID primitive.ObjectID, entries []Entry) (AddBatchResult, error) {
	if len(entries) == 0 {
		return AddBatchResult{}, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(entries))
	for i, e := range entries {
		// keep roster order stable within one batch
		docs = append(docs, newMembership(teamID, e, now.Add(time.Duration(i)*time.Millisecond)))
	}

	_, err := s.c.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return AddBatchResult{Added: len(entries)}, nil
	}
	var bulkErr mongo.BulkWriteException
	if !errors.As(err, &bulkErr) {
		return AddBatchResult{}, err
	}
	dups := 0
	for _, we := range bulkErr.WriteErrors {
		if we.Code != 11000 {
			return AddBatchResult{}, err
		}
		dups++
	}
	return AddBatchResult{Added: len(entries) - dups, Duplicates: dups}, nil
}

// Remove takes a student off the roster. Existing KPI detail assignments
// keep their snapshot.
func (s *Store) Remove(ctx context.Context, teamID, studentID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"team_id": teamID, "student_id": studentID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return kpierr.NotFound("student %s is not on this team", studentID.Hex())
	}
	return nil
}

// Get returns the membership for (teamID, studentID) or InvalidMember.
func (s *Store) Get(ctx context.Context, teamID, studentID primitive.ObjectID) (models.TeamMembership, error) {
	var m models.TeamMembership
	err := s.c.FindOne(ctx, bson.M{"team_id": teamID, "student_id": studentID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.TeamMembership{}, kpierr.InvalidMember("student %s is not a member of this team", studentID.Hex())
	}
	return m, err
}

// List returns the full roster in roster order.
func (s *Store) List(ctx context.Context, teamID primitive.ObjectID) ([]models.TeamMembership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"team_id": teamID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.TeamMembership{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByTeam is the roster provider used when assigning KPI details.
func (s *Store) ListByTeam(ctx context.Context, teamID primitive.ObjectID) ([]progress.RosterEntry, error) {
	ms, err := s.List(ctx, teamID)
	if err != nil {
		return nil, err
	}
	out := make([]progress.RosterEntry, 0, len(ms))
	for _, m := range ms {
		out = append(out, progress.RosterEntry{StudentID: m.StudentID, StudentName: m.StudentName})
	}
	return out, nil
}

// CountByTeam returns the roster size.
func (s *Store) CountByTeam(ctx context.Context, teamID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"team_id": teamID})
}
