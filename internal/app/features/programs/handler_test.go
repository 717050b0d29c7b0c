package programs_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/coachhub/internal/app/features/programs"
	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*programs.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return programs.NewHandler(shared.Deps{DB: db, Log: zap.NewNop()}), testutil.NewFixtures(t, db)
}

func TestHandleCreate_DuplicateName(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateProgram(ctx, "Spring Cohort")

	rec := httptest.NewRecorder()
	h.HandleCreate(rec, testutil.JSONRequest(t, "POST", "/programs", map[string]any{"name": "spring cohort"}))

	testutil.AssertStatus(t, rec, http.StatusConflict)
}

func TestServeList(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateProgram(ctx, "Bravo")
	fx.CreateProgram(ctx, "Alpha")

	rec := httptest.NewRecorder()
	h.ServeList(rec, httptest.NewRequest("GET", "/programs", nil))

	testutil.AssertStatus(t, rec, http.StatusOK)
	var got []models.Program
	testutil.DecodeEnvelope(t, rec, &got)
	if len(got) != 2 || got[0].Name != "Alpha" {
		t.Errorf("unexpected programs: %+v", got)
	}
}

func assign(t *testing.T, h *programs.Handler, program models.Program, items ...map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.JSONRequest(t, "POST", "/programs/"+program.ID.Hex()+"/kpis", map[string]any{"items": items})
	req = testutil.WithChiURLParams(req, "id", program.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleAssign(rec, req)
	return rec
}

func item(tpl models.KPITemplate, target float64) map[string]any {
	return map[string]any{
		"kpi_template_id":    tpl.ID.Hex(),
		"target_value":       target,
		"visualization_type": models.VisualizationProgress,
		"is_required":        true,
	}
}

func TestHandleAssign_Success(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	program := fx.CreateProgram(ctx, "Program")
	a := fx.CreateTemplate(ctx, "Attendance", "%", true)
	b := fx.CreateTemplate(ctx, "Books", "권", true)

	rec := assign(t, h, program, item(a, 90), item(b, 4))

	testutil.AssertStatus(t, rec, http.StatusCreated)
	var got []models.ProgramKPI
	testutil.DecodeEnvelope(t, rec, &got)
	if len(got) != 2 {
		t.Fatalf("expected 2 program KPIs, got %d", len(got))
	}
	if got[0].KPIName != "Attendance" || got[0].ProgramName != "Program" {
		t.Errorf("unexpected snapshot: %+v", got[0])
	}
}

func TestHandleAssign_AllOrNothing(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	program := fx.CreateProgram(ctx, "Program")
	a := fx.CreateTemplate(ctx, "Attendance", "%", true)
	b := fx.CreateTemplate(ctx, "Books", "권", true)

	rec := assign(t, h, program, item(a, 90), item(b, 0))

	testutil.AssertStatus(t, rec, http.StatusBadRequest)
	env := testutil.DecodeEnvelope(t, rec, nil)
	if !strings.Contains(env.Message, "Books") {
		t.Errorf("message %q should name the offending KPI", env.Message)
	}
	n, _ := fx.DB().Collection("program_kpis").CountDocuments(ctx, bson.M{})
	if n != 0 {
		t.Errorf("expected no program KPIs after a failed batch, found %d", n)
	}
}

func TestHandleAssign_InactiveTemplate(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	program := fx.CreateProgram(ctx, "Program")
	off := fx.CreateTemplate(ctx, "Retired", "건", false)

	testutil.AssertStatus(t, assign(t, h, program, item(off, 3)), http.StatusConflict)
}

func TestHandleAssign_EmptyItems(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	program := fx.CreateProgram(ctx, "Program")

	testutil.AssertStatus(t, assign(t, h, program), http.StatusBadRequest)
}

func TestServeSelectable_ExcludesBound(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	program := fx.CreateProgram(ctx, "Program")
	bound := fx.CreateTemplate(ctx, "Attendance", "%", true)
	fx.CreateTemplate(ctx, "Books", "권", true)
	fx.CreateTemplate(ctx, "Retired", "건", false)
	fx.CreateProgramKPI(ctx, program, bound, 90)

	req := testutil.WithChiURLParams(httptest.NewRequest("GET", "/programs/x/kpis/selectable", nil), "id", program.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeSelectable(rec, req)

	testutil.AssertStatus(t, rec, http.StatusOK)
	var got []models.KPITemplate
	testutil.DecodeEnvelope(t, rec, &got)
	if len(got) != 1 || got[0].Name != "Books" {
		t.Errorf("selectable = %+v, want only Books", got)
	}
}

func TestHandleRemoveKPI(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	program := fx.CreateProgram(ctx, "Program")
	pk := fx.CreateProgramKPI(ctx, program, fx.CreateTemplate(ctx, "Attendance", "%", true), 90)

	remove := func() *httptest.ResponseRecorder {
		req := testutil.WithChiURLParams(httptest.NewRequest("DELETE", "/", nil), "id", program.ID.Hex(), "kpiID", pk.ID.Hex())
		rec := httptest.NewRecorder()
		h.HandleRemoveKPI(rec, req)
		return rec
	}
	testutil.AssertStatus(t, remove(), http.StatusOK)
	testutil.AssertStatus(t, remove(), http.StatusNotFound)
}

func TestServeKPIs_UnknownProgram(t *testing.T) {
	h, _ := newTestHandler(t)

	id := "507f1f77bcf86cd799439011"
	req := testutil.WithChiURLParams(httptest.NewRequest("GET", "/", nil), "id", id)
	rec := httptest.NewRecorder()
	h.ServeKPIs(rec, req)

	testutil.AssertStatus(t, rec, http.StatusNotFound)
}
