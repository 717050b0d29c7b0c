package teamgoalstore_test

import (
	"errors"
	"testing"

	teamgoalstore "github.com/dalemusser/coachhub/internal/app/store/teamgoals"
	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validFields() teamgoalstore.Fields {
	return teamgoalstore.Fields{
		GoalName:            "Spring Reading",
		StartDate:           "2025-03-01",
		EndDate:             "2025-05-31",
		ProgressDisplayType: models.DisplayDonut,
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamgoalstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Team A", fixtures.CreateProgram(ctx, "Program"))

	g, err := store.Create(ctx, team, validFields())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if g.Status != models.GoalActive {
		t.Errorf("Status: got %q, want active", g.Status)
	}
	if g.TeamName != "Team A" || g.ProgramName != "Program" || g.ProgramID != team.ProgramID {
		t.Errorf("snapshot mismatch: %+v", g)
	}

	got, err := store.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.GoalNameCI != "spring reading" {
		t.Errorf("GoalNameCI: got %q", got.GoalNameCI)
	}
}

func TestStore_Create_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamgoalstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Team", fixtures.CreateProgram(ctx, "Program"))

	tests := []struct {
		name   string
		mutate func(*teamgoalstore.Fields)
	}{
		{"blank name", func(f *teamgoalstore.Fields) { f.GoalName = "  " }},
		{"bad start", func(f *teamgoalstore.Fields) { f.StartDate = "03/01/2025" }},
		{"end before start", func(f *teamgoalstore.Fields) { f.EndDate = "2025-02-28" }},
		{"bad display", func(f *teamgoalstore.Fields) { f.ProgressDisplayType = "gauge" }},
		{"bad status", func(f *teamgoalstore.Fields) { f.Status = "paused" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := validFields()
			tc.mutate(&f)
			if _, err := store.Create(ctx, team, f); !errors.Is(err, kpierr.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}

	same := validFields()
	same.EndDate = same.StartDate
	if _, err := store.Create(ctx, team, same); err != nil {
		t.Errorf("single-day window should be allowed: %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamgoalstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Team", fixtures.CreateProgram(ctx, "Program"))
	goal := fixtures.CreateGoal(ctx, team, "Old Name")

	f := validFields()
	f.GoalName = "New Name"
	f.Status = models.GoalCompleted
	updated, err := store.Update(ctx, goal.ID, f)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.GoalName != "New Name" || updated.Status != models.GoalCompleted {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.TeamID != team.ID {
		t.Error("team must not change on update")
	}

	if _, err := store.Update(ctx, primitive.NewObjectID(), f); !errors.Is(err, kpierr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Delete_RemovesDetails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := teamgoalstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := fixtures.CreateTeam(ctx, "Team", fixtures.CreateProgram(ctx, "Program"))
	s1 := fixtures.AddStudent(ctx, team, "Kim")
	goal := fixtures.CreateGoal(ctx, team, "Goal")
	other := fixtures.CreateGoal(ctx, team, "Other")
	fixtures.CreateDetail(ctx, goal, "D1", 10, []models.TeamMembership{s1})
	fixtures.CreateDetail(ctx, goal, "D2", 10, []models.TeamMembership{s1})
	fixtures.CreateDetail(ctx, other, "D3", 10, []models.TeamMembership{s1})

	n, err := store.Delete(ctx, goal.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 2 {
		t.Errorf("details deleted: got %d, want 2", n)
	}
	left, err := db.Collection("team_kpi_details").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if left != 1 {
		t.Errorf("expected the other goal's detail to remain, got %d", left)
	}

	if _, err := store.Delete(ctx, goal.ID); !errors.Is(err, kpierr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
