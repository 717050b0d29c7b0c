// internal/app/store/kpisubmissions/kpisubmissionstore.go
package kpisubmissionstore

import (
	"context"
	"errors"
	"math"
	"time"

	programkpistore "github.com/dalemusser/coachhub/internal/app/store/programkpis"
	reviewstore "github.com/dalemusser/coachhub/internal/app/store/review"
	rosterstore "github.com/dalemusser/coachhub/internal/app/store/rosters"
	teamdetailstore "github.com/dalemusser/coachhub/internal/app/store/teamdetails"
	teamgoalstore "github.com/dalemusser/coachhub/internal/app/store/teamgoals"
	teamstore "github.com/dalemusser/coachhub/internal/app/store/teams"
	"github.com/dalemusser/coachhub/internal/app/system/txn"
	"github.com/dalemusser/coachhub/internal/domain/approval"
	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Store struct {
	db      *mongo.Database
	c       *mongo.Collection
	log     *zap.Logger
	teams   *teamstore.Store
	rosters *rosterstore.Store
	kpis    *programkpistore.Store
	goals   *teamgoalstore.Store
	details *teamdetailstore.Store
}

// New returns a Store. log receives transaction fallback and compensation
// messages; nil uses zap.L().
func New(db *mongo.Database, log *zap.Logger) *Store {
	if log == nil {
		log = zap.L()
	}
	return &Store{
		db:      db,
		c:       db.Collection("kpi_submissions"),
		log:     log,
		teams:   teamstore.New(db),
		rosters: rosterstore.New(db),
		kpis:    programkpistore.New(db),
		goals:   teamgoalstore.New(db),
		details: teamdetailstore.New(db),
	}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.KPISubmission, error) {
	var sub models.KPISubmission
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sub); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.KPISubmission{}, kpierr.NotFound("KPI submission %s not found", id.Hex())
		}
		return models.KPISubmission{}, err
	}
	return sub, nil
}

// NewSubmission is what a student reports.
type NewSubmission struct {
	Type            string
	TeamID          primitive.ObjectID
	StudentID       primitive.ObjectID
	Week            int
	ProgramKPIID    primitive.ObjectID // Type required
	TeamKPIDetailID primitive.ObjectID // Type team
	ActualValue     float64
	SubmitDate      string // defaults to today
}

// Create records a pending submission. The student must be on the team's
// roster; a team-type submission must also target a detail of one of the
// team's goals that the student is assigned to.
func (s *Store) Create(ctx context.Context, in NewSubmission) (models.KPISubmission, error) {
	if !models.Contains(models.KPISubmissionTypes, in.Type) {
		return models.KPISubmission{}, kpierr.Validation("type must be required or team")
	}
	if in.ActualValue < 0 || math.IsNaN(in.ActualValue) || math.IsInf(in.ActualValue, 0) {
		return models.KPISubmission{}, kpierr.Validation("actual value must be 0 or greater")
	}
	if in.Week < 0 {
		return models.KPISubmission{}, kpierr.Validation("week must not be negative")
	}
	if in.SubmitDate == "" {
		in.SubmitDate = models.Today()
	} else if !models.ValidDate(in.SubmitDate) {
		return models.KPISubmission{}, kpierr.Validation("submit date must be YYYY-MM-DD")
	}

	team, err := s.teams.GetByID(ctx, in.TeamID)
	if err != nil {
		return models.KPISubmission{}, err
	}
	member, err := s.rosters.Get(ctx, team.ID, in.StudentID)
	if err != nil {
		return models.KPISubmission{}, err
	}

	now := time.Now().UTC()
	sub := models.KPISubmission{
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
		Type:        in.Type,
		Week:        in.Week,
		ActualValue: in.ActualValue,
	}

	switch in.Type {
	case models.KPISubmissionRequired:
		pk, err := s.kpis.GetByID(ctx, in.ProgramKPIID)
		if err != nil {
			return models.KPISubmission{}, err
		}
		if pk.ProgramID != team.ProgramID {
			return models.KPISubmission{}, kpierr.Validation("KPI %q is not part of program %q", pk.KPIName, team.ProgramName)
		}
		sub.Required = &models.RequiredKPIRef{ProgramKPIID: pk.ID, KPIName: pk.KPIName}
		sub.TargetValue = pk.TargetValue
		sub.Unit = pk.Unit
	case models.KPISubmissionTeam:
		d, err := s.details.GetByID(ctx, in.TeamKPIDetailID)
		if err != nil {
			return models.KPISubmission{}, err
		}
		goal, err := s.goals.GetByID(ctx, d.TeamGoalID)
		if err != nil {
			return models.KPISubmission{}, err
		}
		if goal.TeamID != team.ID {
			return models.KPISubmission{}, kpierr.Validation("KPI detail %q does not belong to team %q", d.Name, team.Name)
		}
		if _, ok := d.Student(in.StudentID); !ok {
			return models.KPISubmission{}, kpierr.InvalidMember("student %s is not assigned to KPI detail %q", in.StudentID.Hex(), d.Name)
		}
		sub.Team = &models.TeamKPIRef{TeamKPIDetailID: d.ID, TeamGoalID: goal.ID, DetailName: d.Name}
		sub.TargetValue = d.TargetValue
		sub.Unit = d.Unit
	}
	sub.KPINameCI = text.Fold(sub.DisplayName())

	if _, err := s.c.InsertOne(ctx, sub); err != nil {
		return models.KPISubmission{}, err
	}
	return sub, nil
}

// Result is the outcome of a review. Detail is set when an approved
// team-type submission moved a KPI detail.
type Result struct {
	Submission models.KPISubmission
	Detail     *models.TeamKPIDetail
}

// Approve approves a pending submission. For a team-type submission the
// actual value becomes the student's current value on the referenced
// detail, in the same transaction when the server supports one. If the
// detail is gone or no longer lists the student, the approval still commits
// and Detail is nil. Without a transaction any other failed progress write
// puts the submission back to pending.
func (s *Store) Approve(ctx context.Context, id primitive.ObjectID, coach approval.Coach, comment string) (Result, error) {
	var out Result
	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		out = Result{}
		dec, err := reviewstore.Decide(ctx, s.c, id, func(cur string, now time.Time) (approval.Decision, error) {
			return approval.Approve(cur, coach, comment, now)
		})
		if err != nil {
			return err
		}
		if err := reviewstore.Apply(ctx, s.c, id, dec, nil, &out.Submission); err != nil {
			return err
		}
		sub := out.Submission
		if sub.Type != models.KPISubmissionTeam || sub.Team == nil {
			return nil
		}

		d, err := s.details.UpdateMemberProgress(ctx, sub.Team.TeamKPIDetailID, sub.StudentID, sub.ActualValue)
		if errors.Is(err, kpierr.ErrNotFound) || errors.Is(err, kpierr.ErrInvalidMember) {
			// The detail was deleted or its roster rebuilt without this
			// student since submission. The approval stands on its own.
			s.log.Warn("approved KPI submission without a progress update",
				zap.String("submission_id", id.Hex()),
				zap.String("detail_id", sub.Team.TeamKPIDetailID.Hex()),
				zap.String("student_id", sub.StudentID.Hex()),
				zap.Error(err))
			return nil
		}
		if err != nil {
			if !txn.InTransaction(ctx) {
				s.compensate(ctx, id, err)
			}
			return err
		}
		out.Detail = &d
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return out, nil
}

func (s *Store) compensate(ctx context.Context, id primitive.ObjectID, cause error) {
	if err := reviewstore.Revert(ctx, s.c, id, models.ReviewApproved); err != nil {
		s.log.Error("could not return KPI submission to pending after failed progress update",
			zap.String("submission_id", id.Hex()), zap.NamedError("cause", cause), zap.Error(err))
		return
	}
	s.log.Warn("KPI submission returned to pending after failed progress update",
		zap.String("submission_id", id.Hex()), zap.Error(cause))
}

// Reject rejects a pending submission. The comment is required.
func (s *Store) Reject(ctx context.Context, id primitive.ObjectID, coach approval.Coach, comment string) (models.KPISubmission, error) {
	if err := approval.CheckRejectComment(comment); err != nil {
		return models.KPISubmission{}, err
	}
	dec, err := reviewstore.Decide(ctx, s.c, id, func(cur string, now time.Time) (approval.Decision, error) {
		return approval.Reject(cur, coach, comment, now)
	})
	if err != nil {
		return models.KPISubmission{}, err
	}
	var sub models.KPISubmission
	if err := reviewstore.Apply(ctx, s.c, id, dec, nil, &sub); err != nil {
		return models.KPISubmission{}, err
	}
	return sub, nil
}
