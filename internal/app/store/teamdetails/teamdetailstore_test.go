package teamdetailstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	teamdetailstore "github.com/dalemusser/coachhub/internal/app/store/teamdetails"
	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type world struct {
	db      *mongo.Database
	store   *teamdetailstore.Store
	fx      *testutil.Fixtures
	team    models.Team
	goal    models.TeamKPIGoal
	members []models.TeamMembership
}

func setup(t *testing.T, ctx context.Context, names ...string) world {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	team := fx.CreateTeam(ctx, "Team", fx.CreateProgram(ctx, "Program"))
	w := world{db: db, store: teamdetailstore.New(db), fx: fx, team: team}
	for _, n := range names {
		w.members = append(w.members, fx.AddStudent(ctx, team, n))
	}
	w.goal = fx.CreateGoal(ctx, team, "Goal")
	return w
}

func ids(ms ...models.TeamMembership) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.StudentID)
	}
	return out
}

func fields(target float64) teamdetailstore.Fields {
	return teamdetailstore.Fields{Name: "Books read", TargetValue: target, Unit: "건"}
}

func TestStore_Create(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := setup(t, ctx, "Kim", "Lee", "Park")

	d, err := w.store.Create(ctx, w.goal.ID, fields(10), ids(w.members[2], w.members[0]))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(d.AssignedStudents) != 2 {
		t.Fatalf("expected 2 assigned students, got %d", len(d.AssignedStudents))
	}
	if d.AssignedStudents[0].StudentName != "Park" || d.AssignedStudents[1].StudentName != "Kim" {
		t.Errorf("selection order not kept: %+v", d.AssignedStudents)
	}
	if d.Status != models.DetailNotStarted || d.TotalProgress != 0 || d.Version != 1 {
		t.Errorf("unexpected initial state: status=%q progress=%d version=%d", d.Status, d.TotalProgress, d.Version)
	}

	got, err := w.store.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.TeamGoalID != w.goal.ID {
		t.Errorf("TeamGoalID mismatch")
	}
}

func TestStore_Create_Rejects(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := setup(t, ctx, "Kim")

	stranger := primitive.NewObjectID()
	tests := []struct {
		name     string
		goal     primitive.ObjectID
		f        teamdetailstore.Fields
		students []primitive.ObjectID
		want     error
	}{
		{"no students", w.goal.ID, fields(10), nil, kpierr.ErrValidation},
		{"zero target", w.goal.ID, fields(0), ids(w.members...), kpierr.ErrValidation},
		{"blank unit", w.goal.ID, teamdetailstore.Fields{Name: "x", TargetValue: 1}, ids(w.members...), kpierr.ErrValidation},
		{"blank name", w.goal.ID, teamdetailstore.Fields{Unit: "u", TargetValue: 1}, ids(w.members...), kpierr.ErrValidation},
		{"off roster", w.goal.ID, fields(10), []primitive.ObjectID{stranger}, kpierr.ErrInvalidMember},
		{"missing goal", primitive.NewObjectID(), fields(10), ids(w.members...), kpierr.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := w.store.Create(ctx, tc.goal, tc.f, tc.students); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}

	list, err := w.store.ListByGoal(ctx, w.goal.ID)
	if err != nil {
		t.Fatalf("ListByGoal failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("rejected creates must not write, got %d details", len(list))
	}
}

func TestStore_UpdateMemberProgress_CompleteThenDrop(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := setup(t, ctx, "Kim", "Lee")
	d := w.fx.CreateDetail(ctx, w.goal, "Detail", 10, w.members)

	// Values {12, 8} against target 10 complete the detail.
	if _, err := w.store.UpdateMemberProgress(ctx, d.ID, w.members[0].StudentID, 12); err != nil {
		t.Fatalf("update 1 failed: %v", err)
	}
	got, err := w.store.UpdateMemberProgress(ctx, d.ID, w.members[1].StudentID, 8)
	if err != nil {
		t.Fatalf("update 2 failed: %v", err)
	}
	if got.TotalCurrentValue != 20 || got.TotalProgress != 100 || got.Status != models.DetailCompleted {
		t.Errorf("after complete: total=%v progress=%d status=%q", got.TotalCurrentValue, got.TotalProgress, got.Status)
	}
	if got.AssignedStudents[0].Progress != 100 || got.AssignedStudents[1].Progress != 80 {
		t.Errorf("after complete per-student: %+v", got.AssignedStudents)
	}

	// Dropping the first student to 0 leaves 8/20.
	got, err = w.store.UpdateMemberProgress(ctx, d.ID, w.members[0].StudentID, 0)
	if err != nil {
		t.Fatalf("update 3 failed: %v", err)
	}
	if got.TotalCurrentValue != 8 || got.TotalProgress != 40 || got.Status != models.DetailInProgress {
		t.Errorf("after drop: total=%v progress=%d status=%q", got.TotalCurrentValue, got.TotalProgress, got.Status)
	}

	stored, err := w.store.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Version != d.Version+3 {
		t.Errorf("Version: got %d, want %d", stored.Version, d.Version+3)
	}
	if stored.TotalProgress != 40 {
		t.Errorf("stored aggregate is stale: %d", stored.TotalProgress)
	}
}

func TestStore_UpdateMemberProgress_Errors(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := setup(t, ctx, "Kim")
	d := w.fx.CreateDetail(ctx, w.goal, "Detail", 10, w.members, 4)

	if _, err := w.store.UpdateMemberProgress(ctx, primitive.NewObjectID(), w.members[0].StudentID, 1); !errors.Is(err, kpierr.ErrNotFound) {
		t.Errorf("missing detail: got %v", err)
	}
	if _, err := w.store.UpdateMemberProgress(ctx, d.ID, primitive.NewObjectID(), 1); !errors.Is(err, kpierr.ErrInvalidMember) {
		t.Errorf("unassigned student: got %v", err)
	}
	if _, err := w.store.UpdateMemberProgress(ctx, d.ID, w.members[0].StudentID, -1); !errors.Is(err, kpierr.ErrValidation) {
		t.Errorf("negative value: got %v", err)
	}
	if _, err := w.store.UpdateMemberProgressAt(ctx, d.ID, w.members[0].StudentID, 5, d.Version+7); !errors.Is(err, kpierr.ErrConflict) {
		t.Errorf("stale version: got %v", err)
	}

	stored, _ := w.store.GetByID(ctx, d.ID)
	if stored.TotalCurrentValue != 4 || stored.Version != d.Version {
		t.Errorf("failed updates must not write: %+v", stored)
	}
}

func TestStore_UpdateMemberProgress_Concurrent(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := setup(t, ctx, "Kim", "Lee")
	d := w.fx.CreateDetail(ctx, w.goal, "Detail", 10, w.members)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = w.store.UpdateMemberProgressAt(ctx, d.ID, w.members[i].StudentID, 5, d.Version)
		}(i)
	}
	wg.Wait()

	ok, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, kpierr.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != 1 {
		t.Errorf("expected one winner and one conflict, got ok=%d conflicts=%d", ok, conflicts)
	}
	stored, _ := w.store.GetByID(ctx, d.ID)
	if stored.TotalCurrentValue != 5 {
		t.Errorf("expected exactly one write to land, total=%v", stored.TotalCurrentValue)
	}
}

func TestStore_Edit_TargetRecomputes(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := setup(t, ctx, "Kim", "Lee")
	d := w.fx.CreateDetail(ctx, w.goal, "Detail", 10, w.members, 5, 5)

	f := fields(5)
	f.Name = "Renamed"
	got, reset, err := w.store.Edit(ctx, d.ID, teamdetailstore.Edit{Fields: f})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if reset {
		t.Error("target-only edit must not reset progress")
	}
	if got.TotalCurrentValue != 10 || got.TotalProgress != 100 || got.Status != models.DetailCompleted {
		t.Errorf("expected recompute against new target: %+v", got)
	}
	if got.Name != "Renamed" {
		t.Errorf("Name: got %q", got.Name)
	}
}

func TestStore_Edit_RosterChangeNeedsConfirmation(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := setup(t, ctx, "Kim", "Lee", "Park")
	d := w.fx.CreateDetail(ctx, w.goal, "Detail", 10, w.members[:2], 7, 3)

	e := teamdetailstore.Edit{
		Fields:          fields(10),
		ReplaceStudents: true,
		StudentIDs:      ids(w.members[0], w.members[2]),
	}
	if _, _, err := w.store.Edit(ctx, d.ID, e); !errors.Is(err, kpierr.ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}
	unchanged, _ := w.store.GetByID(ctx, d.ID)
	if unchanged.TotalCurrentValue != 10 || unchanged.Version != d.Version {
		t.Errorf("unconfirmed edit must not write: %+v", unchanged)
	}

	// A confirmed roster edit resets everyone to zero.
	e.ConfirmReset = true
	got, reset, err := w.store.Edit(ctx, d.ID, e)
	if err != nil {
		t.Fatalf("confirmed Edit failed: %v", err)
	}
	if !reset {
		t.Error("expected reset to be reported")
	}
	if len(got.AssignedStudents) != 2 || got.AssignedStudents[1].StudentName != "Park" {
		t.Errorf("roster not replaced: %+v", got.AssignedStudents)
	}
	for _, s := range got.AssignedStudents {
		if s.CurrentValue != 0 || s.Progress != 0 {
			t.Errorf("student %s not reset: %+v", s.StudentName, s)
		}
	}
	if got.Status != models.DetailNotStarted || got.TotalCurrentValue != 0 {
		t.Errorf("aggregate not reset: %+v", got)
	}
}

func TestStore_Edit_OffRoster(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := setup(t, ctx, "Kim")
	d := w.fx.CreateDetail(ctx, w.goal, "Detail", 10, w.members, 3)

	_, _, err := w.store.Edit(ctx, d.ID, teamdetailstore.Edit{
		Fields:          fields(10),
		ReplaceStudents: true,
		StudentIDs:      []primitive.ObjectID{primitive.NewObjectID()},
		ConfirmReset:    true,
	})
	if !errors.Is(err, kpierr.ErrInvalidMember) {
		t.Errorf("expected ErrInvalidMember, got %v", err)
	}
}

func TestStore_DeleteAndList(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := setup(t, ctx, "Kim")
	d1 := w.fx.CreateDetail(ctx, w.goal, "One", 10, w.members)
	w.fx.CreateDetail(ctx, w.goal, "Two", 10, w.members)

	if err := w.store.Delete(ctx, d1.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := w.store.Delete(ctx, d1.ID); !errors.Is(err, kpierr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	list, err := w.store.ListByGoal(ctx, w.goal.ID)
	if err != nil {
		t.Fatalf("ListByGoal failed: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Two" {
		t.Errorf("unexpected list: %+v", list)
	}
	if _, err := w.store.UpdateMemberProgress(ctx, d1.ID, w.members[0].StudentID, 1); !errors.Is(err, kpierr.ErrNotFound) {
		t.Errorf("update after delete: got %v", err)
	}
}
