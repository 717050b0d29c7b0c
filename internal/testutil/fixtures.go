package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/domain/progress"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures inserts test documents directly, bypassing the stores under test.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert into %s: %v", coll, err)
	}
}

// CreateTemplate inserts a KPI template.
func (f *Fixtures) CreateTemplate(ctx context.Context, name, unit string, active bool) models.KPITemplate {
	f.t.Helper()
	now := time.Now().UTC()
	tpl := models.KPITemplate{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Unit:      unit,
		Language:  models.DefaultLanguage,
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "kpi_templates", tpl)
	return tpl
}

// CreateProgram inserts an active program.
func (f *Fixtures) CreateProgram(ctx context.Context, name string) models.Program {
	f.t.Helper()
	now := time.Now().UTC()
	p := models.Program{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "programs", p)
	return p
}

// CreateTeam inserts an active team under program.
func (f *Fixtures) CreateTeam(ctx context.Context, name string, program models.Program) models.Team {
	f.t.Helper()
	now := time.Now().UTC()
	tm := models.Team{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		ProgramID:   program.ID,
		ProgramName: program.Name,
		Status:      models.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "teams", tm)
	return tm
}

// AddStudent puts a new student on team's roster. Successive calls are
// spaced so roster order follows call order.
func (f *Fixtures) AddStudent(ctx context.Context, team models.Team, name string) models.TeamMembership {
	f.t.Helper()
	m := models.TeamMembership{
		ID:            primitive.NewObjectID(),
		TeamID:        team.ID,
		StudentID:     primitive.NewObjectID(),
		StudentName:   name,
		StudentNameCI: text.Fold(name),
		CreatedAt:     time.Now().UTC(),
	}
	f.insert(ctx, "team_memberships", m)
	time.Sleep(2 * time.Millisecond)
	return m
}

// CreateGoal inserts an active goal for team spanning March 2025.
func (f *Fixtures) CreateGoal(ctx context.Context, team models.Team, name string) models.TeamKPIGoal {
	f.t.Helper()
	now := time.Now().UTC()
	g := models.TeamKPIGoal{
		ID:                  primitive.NewObjectID(),
		TeamID:              team.ID,
		TeamName:            team.Name,
		ProgramID:           team.ProgramID,
		ProgramName:         team.ProgramName,
		GoalName:            name,
		GoalNameCI:          text.Fold(name),
		StartDate:           "2025-03-01",
		EndDate:             "2025-03-31",
		ProgressDisplayType: models.DisplayBar,
		Status:              models.GoalActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	f.insert(ctx, "team_kpi_goals", g)
	return g
}

// CreateDetail inserts a detail under goal with the given members and
// current values (values[i] belongs to members[i]; missing values are 0).
func (f *Fixtures) CreateDetail(ctx context.Context, goal models.TeamKPIGoal, name string, target float64, members []models.TeamMembership, values ...float64) models.TeamKPIDetail {
	f.t.Helper()
	now := time.Now().UTC()
	d := models.TeamKPIDetail{
		ID:          primitive.NewObjectID(),
		TeamGoalID:  goal.ID,
		Name:        name,
		TargetValue: target,
		Unit:        "건",
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, m := range members {
		s := models.AssignedStudent{StudentID: m.StudentID, StudentName: m.StudentName}
		if i < len(values) {
			s.CurrentValue = values[i]
		}
		d.AssignedStudents = append(d.AssignedStudents, s)
	}
	progress.Recompute(&d)
	f.insert(ctx, "team_kpi_details", d)
	return d
}

// CreateProgramKPI binds tpl to program with the given per-student target.
func (f *Fixtures) CreateProgramKPI(ctx context.Context, program models.Program, tpl models.KPITemplate, target float64) models.ProgramKPI {
	f.t.Helper()
	pk := models.ProgramKPI{
		ID:                primitive.NewObjectID(),
		ProgramID:         program.ID,
		ProgramName:       program.Name,
		KPITemplateID:     tpl.ID,
		KPIName:           tpl.Name,
		TargetValue:       target,
		Unit:              tpl.Unit,
		IsRequired:        true,
		VisualizationType: models.VisualizationProgress,
		CreatedAt:         time.Now().UTC(),
	}
	f.insert(ctx, "program_kpis", pk)
	return pk
}

func (f *Fixtures) submissionBase(team models.Team, student models.TeamMembership, submitDate string) models.SubmissionBase {
	now := time.Now().UTC()
	return models.SubmissionBase{
		ID:            primitive.NewObjectID(),
		StudentID:     student.StudentID,
		StudentName:   student.StudentName,
		StudentNameCI: text.Fold(student.StudentName),
		TeamID:        team.ID,
		TeamName:      team.Name,
		ProgramID:     team.ProgramID,
		ProgramName:   team.ProgramName,
		SubmitDate:    submitDate,
		Review:        models.Review{Status: models.ReviewPending},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CreateRequiredSubmission inserts a pending "required" KPI submission.
func (f *Fixtures) CreateRequiredSubmission(ctx context.Context, team models.Team, student models.TeamMembership, pk models.ProgramKPI, week int, actual float64, submitDate string) models.KPISubmission {
	f.t.Helper()
	s := models.KPISubmission{
		SubmissionBase: f.submissionBase(team, student, submitDate),
		Type:           models.KPISubmissionRequired,
		Week:           week,
		Required:       &models.RequiredKPIRef{ProgramKPIID: pk.ID, KPIName: pk.KPIName},
		KPINameCI:      text.Fold(pk.KPIName),
		ActualValue:    actual,
		TargetValue:    pk.TargetValue,
		Unit:           pk.Unit,
	}
	f.insert(ctx, "kpi_submissions", s)
	return s
}

// CreateTeamSubmission inserts a pending "team" KPI submission against detail.
func (f *Fixtures) CreateTeamSubmission(ctx context.Context, team models.Team, student models.TeamMembership, detail models.TeamKPIDetail, actual float64, submitDate string) models.KPISubmission {
	f.t.Helper()
	s := models.KPISubmission{
		SubmissionBase: f.submissionBase(team, student, submitDate),
		Type:           models.KPISubmissionTeam,
		Team: &models.TeamKPIRef{
			TeamKPIDetailID: detail.ID,
			TeamGoalID:      detail.TeamGoalID,
			DetailName:      detail.Name,
		},
		KPINameCI:   text.Fold(detail.Name),
		ActualValue: actual,
		TargetValue: detail.TargetValue,
		Unit:        detail.Unit,
	}
	f.insert(ctx, "kpi_submissions", s)
	return s
}

// CreateAssignmentSubmission inserts a pending assignment submission.
func (f *Fixtures) CreateAssignmentSubmission(ctx context.Context, team models.Team, student models.TeamMembership, title, submitDate string) models.AssignmentSubmission {
	f.t.Helper()
	s := models.AssignmentSubmission{
		SubmissionBase:    f.submissionBase(team, student, submitDate),
		AssignmentID:      primitive.NewObjectID(),
		AssignmentTitle:   title,
		AssignmentTitleCI: text.Fold(title),
		SubmissionURL:     "https://example.com/work",
	}
	f.insert(ctx, "assignment_submissions", s)
	return s
}
