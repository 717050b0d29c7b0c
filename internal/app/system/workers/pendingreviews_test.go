package workers_test

import (
	"testing"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/metrics"
	"github.com/dalemusser/coachhub/internal/app/system/workers"
	"github.com/dalemusser/coachhub/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

func TestPendingReviews_Refresh(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	program := fx.CreateProgram(ctx, "Spring")
	team := fx.CreateTeam(ctx, "Blue", program)
	student := fx.AddStudent(ctx, team, "Ada")
	tpl := fx.CreateTemplate(ctx, "Reading", "minutes", true)
	pk := fx.CreateProgramKPI(ctx, program, tpl, 100)

	fx.CreateRequiredSubmission(ctx, team, student, pk, 1, 30, "2026-03-02")
	fx.CreateAssignmentSubmission(ctx, team, student, "Essay", "2026-03-02")
	fx.CreateAssignmentSubmission(ctx, team, student, "Poster", "2026-03-03")

	m := metrics.New()
	w := workers.NewPendingReviews(db, m, zap.NewNop(), time.Hour)
	w.Refresh()

	if got := promtest.ToFloat64(m.PendingReviews.WithLabelValues("kpi_required")); got != 1 {
		t.Errorf("kpi_required = %v, want 1", got)
	}
	if got := promtest.ToFloat64(m.PendingReviews.WithLabelValues("assignment")); got != 2 {
		t.Errorf("assignment = %v, want 2", got)
	}
}

func TestPendingReviews_StartStop(t *testing.T) {
	db := testutil.SetupTestDB(t)

	m := metrics.New()
	w := workers.NewPendingReviews(db, m, zap.NewNop(), 10*time.Millisecond)
	w.Start()
	time.Sleep(30 * time.Millisecond)
	w.Stop()

	if got := promtest.ToFloat64(m.PendingReviews.WithLabelValues("kpi_team")); got != 0 {
		t.Errorf("kpi_team = %v, want 0", got)
	}
}
