// internal/app/store/assignmentsubmissions/assignmentsubmissionstore.go
package assignmentsubmissionstore

import (
	"context"
	"errors"
	"strings"
	"time"

	reviewstore "github.com/dalemusser/coachhub/internal/app/store/review"
	rosterstore "github.com/dalemusser/coachhub/internal/app/store/rosters"
	teamstore "github.com/dalemusser/coachhub/internal/app/store/teams"
	"github.com/dalemusser/coachhub/internal/domain/approval"
	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c       *mongo.Collection
	teams   *teamstore.Store
	rosters *rosterstore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:       db.Collection("assignment_submissions"),
		teams:   teamstore.New(db),
		rosters: rosterstore.New(db),
	}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.AssignmentSubmission, error) {
	var sub models.AssignmentSubmission
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sub); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.AssignmentSubmission{}, kpierr.NotFound("assignment submission %s not found", id.Hex())
		}
		return models.AssignmentSubmission{}, err
	}
	return sub, nil
}

// NewSubmission is a student's hand-in. A zero AssignmentID gets a new id.
type NewSubmission struct {
	TeamID          primitive.ObjectID
	StudentID       primitive.ObjectID
	AssignmentID    primitive.ObjectID
	AssignmentTitle string
	SubmissionURL   string
	SubmissionNote  string
	SubmitDate      string // defaults to today
}

// Create records a pending hand-in from a student on the team's roster.
func (s *Store) Create(ctx context.Context, in NewSubmission) (models.AssignmentSubmission, error) {
	if strings.TrimSpace(in.AssignmentTitle) == "" {
		return models.AssignmentSubmission{}, kpierr.Validation("assignment title is required")
	}
	if in.SubmitDate == "" {
		in.SubmitDate = models.Today()
	} else if !models.ValidDate(in.SubmitDate) {
		return models.AssignmentSubmission{}, kpierr.Validation("submit date must be YYYY-MM-DD")
	}
	if in.AssignmentID.IsZero() {
		in.AssignmentID = primitive.NewObjectID()
	}

	team, err := s.teams.GetByID(ctx, in.TeamID)
	if err != nil {
		return models.AssignmentSubmission{}, err
	}
	member, err := s.rosters.Get(ctx, team.ID, in.StudentID)
	if err != nil {
		return models.AssignmentSubmission{}, err
	}

	now := time.Now().UTC()
	sub := models.AssignmentSubmission{
		SubmissionBase: models.SubmissionBase{
			ID:            primitive.NewObjectID(),
			StudentID:     member.StudentID,
			StudentName:   member.StudentName,
			StudentNameCI: member.StudentNameCI,
			TeamID:        team.ID,
			TeamName:      team.Name,
			ProgramID:     team.ProgramID,
			ProgramName:   team.ProgramName,
			SubmitDate:    in.SubmitDate,
			Review:        models.Review{Status: models.ReviewPending},
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		AssignmentID:      in.AssignmentID,
		AssignmentTitle:   in.AssignmentTitle,
		AssignmentTitleCI: text.Fold(in.AssignmentTitle),
		SubmissionURL:     in.SubmissionURL,
		SubmissionNote:    in.SubmissionNote,
	}
	if _, err := s.c.InsertOne(ctx, sub); err != nil {
		return models.AssignmentSubmission{}, err
	}
	return sub, nil
}

func ratingSet(rating *int) (bson.M, error) {
	if rating == nil {
		return nil, nil
	}
	if !approval.ValidRating(*rating) {
		return nil, kpierr.Validation("rating must be between 1 and 5")
	}
	return bson.M{"rating": *rating}, nil
}

func (s *Store) review(ctx context.Context, id primitive.ObjectID, rating *int, decide func(string, time.Time) (approval.Decision, error)) (models.AssignmentSubmission, error) {
	extra, err := ratingSet(rating)
	if err != nil {
		return models.AssignmentSubmission{}, err
	}
	dec, err := reviewstore.Decide(ctx, s.c, id, decide)
	if err != nil {
		return models.AssignmentSubmission{}, err
	}
	var sub models.AssignmentSubmission
	if err := reviewstore.Apply(ctx, s.c, id, dec, extra, &sub); err != nil {
		return models.AssignmentSubmission{}, err
	}
	return sub, nil
}

// Approve approves a pending hand-in with an optional 1-5 rating.
func (s *Store) Approve(ctx context.Context, id primitive.ObjectID, coach approval.Coach, comment string, rating *int) (models.AssignmentSubmission, error) {
	return s.review(ctx, id, rating, func(cur string, now time.Time) (approval.Decision, error) {
		return approval.Approve(cur, coach, comment, now)
	})
}

// Reject rejects a pending hand-in. The comment is required.
func (s *Store) Reject(ctx context.Context, id primitive.ObjectID, coach approval.Coach, comment string, rating *int) (models.AssignmentSubmission, error) {
	if err := approval.CheckRejectComment(comment); err != nil {
		return models.AssignmentSubmission{}, err
	}
	return s.review(ctx, id, rating, func(cur string, now time.Time) (approval.Decision, error) {
		return approval.Reject(cur, coach, comment, now)
	})
}
