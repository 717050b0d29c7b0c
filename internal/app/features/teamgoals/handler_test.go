package teamgoals_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/features/teamgoals"
	"github.com/dalemusser/coachhub/internal/app/features/teams"
	"github.com/dalemusser/coachhub/internal/app/system/metrics"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type env struct {
	router  chi.Router
	fx      *testutil.Fixtures
	metrics *metrics.Metrics
	team    models.Team
	members []models.TeamMembership
}

func newEnv(t *testing.T) env {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	db := testutil.SetupTestDB(t)
	m := metrics.New()
	deps := shared.Deps{DB: db, Log: zap.NewNop(), Metrics: m}
	h := teamgoals.NewHandler(deps)

	r := chi.NewRouter()
	r.Mount("/teams", teams.Routes(teams.NewHandler(deps), h.HandleCreate))
	r.Mount("/goals", teamgoals.Routes(h))
	r.Mount("/details", teamgoals.DetailRoutes(h))

	fx := testutil.NewFixtures(t, db)
	team := fx.CreateTeam(ctx, "Blue", fx.CreateProgram(ctx, "Program"))
	e := env{router: r, fx: fx, metrics: m, team: team}
	for _, n := range []string{"Kim", "Lee", "Park"} {
		e.members = append(e.members, fx.AddStudent(ctx, team, n))
	}
	return e
}

func (e env) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, testutil.JSONRequest(t, method, target, body))
	return rec
}

type goalRow struct {
	models.TeamKPIGoal
	Progress    int                    `json:"progress"`
	DetailCount int                    `json:"detail_count"`
	Details     []models.TeamKPIDetail `json:"details"`
}

func TestCreateGoal(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, "POST", "/teams/"+e.team.ID.Hex()+"/goals", map[string]any{
		"goal_name":             "Spring reading",
		"start_date":            "2025-03-01",
		"end_date":              "2025-05-31",
		"progress_display_type": models.DisplayDonut,
	})
	testutil.AssertStatus(t, rec, http.StatusCreated)
	var got goalRow
	testutil.DecodeEnvelope(t, rec, &got)
	if got.Status != models.GoalActive || got.TeamName != "Blue" || got.ProgramName != "Program" {
		t.Errorf("unexpected goal: %+v", got.TeamKPIGoal)
	}
}

func TestCreateGoal_Validation(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{"end before start", map[string]any{
			"goal_name": "G", "start_date": "2025-03-10", "end_date": "2025-03-01", "progress_display_type": "bar",
		}, http.StatusBadRequest},
		{"bad date", map[string]any{
			"goal_name": "G", "start_date": "2025/03/10", "end_date": "2025-03-11", "progress_display_type": "bar",
		}, http.StatusBadRequest},
		{"bad display", map[string]any{
			"goal_name": "G", "start_date": "2025-03-01", "end_date": "2025-03-11", "progress_display_type": "gauge",
		}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			testutil.AssertStatus(t, e.do(t, "POST", "/teams/"+e.team.ID.Hex()+"/goals", tc.body), tc.want)
		})
	}

	testutil.AssertStatus(t, e.do(t, "POST", "/teams/507f1f77bcf86cd799439011/goals", map[string]any{
		"goal_name": "G", "start_date": "2025-03-01", "end_date": "2025-03-11", "progress_display_type": "bar",
	}), http.StatusNotFound)
}

func TestGoal_ProgressFromDetails(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	goal := e.fx.CreateGoal(ctx, e.team, "Goal")
	e.fx.CreateDetail(ctx, goal, "Done", 10, e.members[:2], 12, 8)
	e.fx.CreateDetail(ctx, goal, "Started", 10, e.members[:2], 2, 0)

	rec := e.do(t, "GET", "/goals/"+goal.ID.Hex(), nil)
	testutil.AssertStatus(t, rec, http.StatusOK)
	var got goalRow
	testutil.DecodeEnvelope(t, rec, &got)
	// (100 + 10) / 2
	if got.Progress != 55 || got.DetailCount != 2 || len(got.Details) != 2 {
		t.Errorf("progress=%d count=%d details=%d", got.Progress, got.DetailCount, len(got.Details))
	}

	rec = e.do(t, "GET", "/goals?team="+e.team.ID.Hex()+"&status=active", nil)
	testutil.AssertStatus(t, rec, http.StatusOK)
	var list struct {
		Items []goalRow `json:"items"`
	}
	testutil.DecodeEnvelope(t, rec, &list)
	if len(list.Items) != 1 || list.Items[0].Progress != 55 {
		t.Errorf("unexpected list: %+v", list.Items)
	}

	testutil.AssertStatus(t, e.do(t, "GET", "/goals?status=paused", nil), http.StatusBadRequest)
}

func TestMemberProgress_Flow(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	goal := e.fx.CreateGoal(ctx, e.team, "Goal")

	rec := e.do(t, "POST", "/goals/"+goal.ID.Hex()+"/details", map[string]any{
		"name":                 "Books",
		"target_value":         10,
		"unit":                 "권",
		"assigned_student_ids": []string{e.members[0].StudentID.Hex(), e.members[1].StudentID.Hex()},
	})
	testutil.AssertStatus(t, rec, http.StatusCreated)
	var d models.TeamKPIDetail
	testutil.DecodeEnvelope(t, rec, &d)

	progressURL := func(m models.TeamMembership) string {
		return "/details/" + d.ID.Hex() + "/members/" + m.StudentID.Hex() + "/progress"
	}

	testutil.AssertStatus(t, e.do(t, "POST", progressURL(e.members[0]), map[string]any{"value": 12}), http.StatusOK)
	rec = e.do(t, "POST", progressURL(e.members[1]), map[string]any{"value": 8, "version": 2})
	testutil.AssertStatus(t, rec, http.StatusOK)
	testutil.DecodeEnvelope(t, rec, &d)
	if d.TotalProgress != 100 || d.Status != models.DetailCompleted {
		t.Errorf("progress=%d status=%q, want 100 completed", d.TotalProgress, d.Status)
	}

	// stale version
	testutil.AssertStatus(t, e.do(t, "POST", progressURL(e.members[1]), map[string]any{"value": 1, "version": 2}), http.StatusConflict)
	// not assigned to this detail
	testutil.AssertStatus(t, e.do(t, "POST", progressURL(e.members[2]), map[string]any{"value": 1}), http.StatusUnprocessableEntity)
	testutil.AssertStatus(t, e.do(t, "POST", progressURL(e.members[0]), map[string]any{"value": -1}), http.StatusBadRequest)
	testutil.AssertStatus(t, e.do(t, "POST", progressURL(e.members[0]), map[string]any{}), http.StatusBadRequest)

	if got := promtest.ToFloat64(e.metrics.ProgressUpdates); got != 2 {
		t.Errorf("progress updates = %v, want 2", got)
	}
	if got := promtest.ToFloat64(e.metrics.WriteConflicts.WithLabelValues("team_kpi_detail")); got != 1 {
		t.Errorf("write conflicts = %v, want 1", got)
	}
}

func TestEditDetail_RosterResetNeedsConfirmation(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	goal := e.fx.CreateGoal(ctx, e.team, "Goal")
	d := e.fx.CreateDetail(ctx, goal, "Books", 10, e.members[:2], 5, 5)

	body := map[string]any{
		"name":                 "Books",
		"target_value":         10,
		"unit":                 "권",
		"assigned_student_ids": []string{e.members[2].StudentID.Hex()},
	}
	testutil.AssertStatus(t, e.do(t, "POST", "/details/"+d.ID.Hex(), body), http.StatusConflict)

	var stored models.TeamKPIDetail
	if err := e.fx.DB().Collection("team_kpi_details").FindOne(ctx, bson.M{"_id": d.ID}).Decode(&stored); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if stored.TotalProgress != 50 || len(stored.AssignedStudents) != 2 {
		t.Errorf("unconfirmed edit must not write: %+v", stored)
	}

	body["confirm_reset"] = true
	rec := e.do(t, "POST", "/details/"+d.ID.Hex(), body)
	testutil.AssertStatus(t, rec, http.StatusOK)
	var got struct {
		Detail        models.TeamKPIDetail `json:"detail"`
		ProgressReset bool                 `json:"progress_reset"`
	}
	testutil.DecodeEnvelope(t, rec, &got)
	if !got.ProgressReset || got.Detail.TotalProgress != 0 || len(got.Detail.AssignedStudents) != 1 {
		t.Errorf("unexpected reset result: %+v", got)
	}
	if n := promtest.ToFloat64(e.metrics.RosterResets); n != 1 {
		t.Errorf("roster resets = %v, want 1", n)
	}
}

func TestEditDetail_TargetOnly(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	goal := e.fx.CreateGoal(ctx, e.team, "Goal")
	d := e.fx.CreateDetail(ctx, goal, "Books", 10, e.members[:2], 5, 5)

	rec := e.do(t, "POST", "/details/"+d.ID.Hex(), map[string]any{"name": "Books", "target_value": 5, "unit": "권"})
	testutil.AssertStatus(t, rec, http.StatusOK)
	var got struct {
		Detail        models.TeamKPIDetail `json:"detail"`
		ProgressReset bool                 `json:"progress_reset"`
	}
	testutil.DecodeEnvelope(t, rec, &got)
	if got.ProgressReset || got.Detail.TotalProgress != 100 {
		t.Errorf("target change should recompute without reset: %+v", got)
	}

	testutil.AssertStatus(t, e.do(t, "POST", "/details/"+d.ID.Hex(), map[string]any{
		"name": "Books", "target_value": 5, "unit": "권", "assigned_student_ids": []string{"nope"},
	}), http.StatusBadRequest)
}

func TestDeleteGoal_RemovesDetails(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	goal := e.fx.CreateGoal(ctx, e.team, "Goal")
	e.fx.CreateDetail(ctx, goal, "A", 10, e.members[:1])
	e.fx.CreateDetail(ctx, goal, "B", 10, e.members[:1])

	rec := e.do(t, "DELETE", "/goals/"+goal.ID.Hex(), nil)
	testutil.AssertStatus(t, rec, http.StatusOK)
	var got map[string]int64
	testutil.DecodeEnvelope(t, rec, &got)
	if got["details_deleted"] != 2 {
		t.Errorf("details_deleted = %d, want 2", got["details_deleted"])
	}
	n, _ := e.fx.DB().Collection("team_kpi_details").CountDocuments(ctx, bson.M{"team_goal_id": goal.ID})
	if n != 0 {
		t.Errorf("expected details removed, %d left", n)
	}
	testutil.AssertStatus(t, e.do(t, "DELETE", "/goals/"+goal.ID.Hex(), nil), http.StatusNotFound)
}

func TestDeleteDetail(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	d := e.fx.CreateDetail(ctx, e.fx.CreateGoal(ctx, e.team, "Goal"), "A", 10, e.members[:1])

	testutil.AssertStatus(t, e.do(t, "DELETE", "/details/"+d.ID.Hex(), nil), http.StatusOK)
	testutil.AssertStatus(t, e.do(t, "DELETE", "/details/"+d.ID.Hex(), nil), http.StatusNotFound)
}
