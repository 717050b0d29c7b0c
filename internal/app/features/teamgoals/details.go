// internal/app/features/teamgoals/details.go
package teamgoals

import (
	"errors"
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/store/audit"
	teamdetailstore "github.com/dalemusser/coachhub/internal/app/store/teamdetails"
	teamgoalstore "github.com/dalemusser/coachhub/internal/app/store/teamgoals"
	"github.com/dalemusser/coachhub/internal/app/system/jsonresp"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"go.uber.org/zap"
)

// ServeDetails handles GET /goals/{id}/details.
func (h *Handler) ServeDetails(w http.ResponseWriter, r *http.Request) {
	goalID, ok := shared.PathID(w, r, "id", "Goal")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "detail list")
	defer cancel()

	if _, err := teamgoalstore.New(h.DB).GetByID(ctx, goalID); err != nil {
		h.Fail(w, r, err, "Could not load goal.")
		return
	}
	rows, err := teamdetailstore.New(h.DB).ListByGoal(ctx, goalID)
	if err != nil {
		h.Fail(w, r, err, "Could not load goal details.")
		return
	}
	jsonresp.Data(w, http.StatusOK, "", rows)
}

// HandleCreateDetail handles POST /goals/{id}/details.
func (h *Handler) HandleCreateDetail(w http.ResponseWriter, r *http.Request) {
	goalID, ok := shared.PathID(w, r, "id", "Goal")
	if !ok {
		return
	}
	var in createDetailInput
	if !jsonresp.Decode(w, r, &in) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "detail create")
	defer cancel()

	if _, err := teamgoalstore.New(h.DB).GetByID(ctx, goalID); err != nil {
		h.Fail(w, r, err, "Could not load goal.")
		return
	}
	d, err := teamdetailstore.New(h.DB).Create(ctx, goalID, in.fields(), shared.MustIDs(in.AssignedStudentIDs))
	if err != nil {
		h.Fail(w, r, err, "Could not create KPI detail.")
		return
	}
	h.Audit.Admin(ctx, r, audit.EventKPIDetailCreated, d.ID, map[string]string{
		"team_goal_id": goalID.Hex(),
		"name":         d.Name,
	})
	h.OK(w, r, http.StatusCreated, "KPI가 추가되었습니다.", d)
}

// HandleEditDetail handles POST /details/{id}. Sending assigned_student_ids
// replaces the assignment list and zeroes all progress, which is refused
// with 409 unless confirm_reset is true.
func (h *Handler) HandleEditDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id", "KPI detail")
	if !ok {
		return
	}
	var in editDetailInput
	if !jsonresp.Decode(w, r, &in) {
		return
	}
	if bad, found := in.badStudentID(); found {
		jsonresp.Message(w, http.StatusBadRequest, "Assigned student "+bad+" is not a valid id.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "detail edit")
	defer cancel()

	d, reset, err := teamdetailstore.New(h.DB).Edit(ctx, id, in.edit())
	if err != nil {
		if errors.Is(err, kpierr.ErrConflict) {
			h.Metrics.Conflict("team_kpi_detail")
		}
		h.Fail(w, r, err, "Could not update KPI detail.")
		return
	}

	event, msg := audit.EventKPIDetailUpdated, "KPI가 수정되었습니다."
	if reset {
		event, msg = audit.EventKPIDetailRosterReset, "학생 배정이 변경되어 진행 상황이 초기화되었습니다."
		h.Metrics.RosterReset()
		h.Log.Info("kpi detail roster reset",
			zap.String("detail_id", d.ID.Hex()),
			zap.Int("students", len(d.AssignedStudents)))
	}
	h.Audit.Admin(ctx, r, event, d.ID, map[string]string{"name": d.Name})
	h.OK(w, r, http.StatusOK, msg, editDetailResponse{Detail: d, ProgressReset: reset})
}

// HandleDeleteDetail handles DELETE /details/{id}.
func (h *Handler) HandleDeleteDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id", "KPI detail")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "detail delete")
	defer cancel()

	if err := teamdetailstore.New(h.DB).Delete(ctx, id); err != nil {
		h.Fail(w, r, err, "Could not delete KPI detail.")
		return
	}
	h.Audit.Admin(ctx, r, audit.EventKPIDetailDeleted, id, nil)
	h.OK(w, r, http.StatusOK, "KPI가 삭제되었습니다.", nil)
}

// HandleMemberProgress handles POST /details/{id}/members/{studentID}/progress.
// A non-zero version must match the stored detail or the write is refused
// with 409.
func (h *Handler) HandleMemberProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id", "KPI detail")
	if !ok {
		return
	}
	studentID, ok := shared.PathID(w, r, "studentID", "Student")
	if !ok {
		return
	}
	var in progressInput
	if !jsonresp.Decode(w, r, &in) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "member progress")
	defer cancel()

	d, err := teamdetailstore.New(h.DB).UpdateMemberProgressAt(ctx, id, studentID, *in.Value, in.Version)
	if err != nil {
		if errors.Is(err, kpierr.ErrConflict) {
			h.Metrics.Conflict("team_kpi_detail")
		}
		h.Fail(w, r, err, "Could not update progress.")
		return
	}
	h.Metrics.ProgressUpdated()
	h.Audit.MemberProgressUpdated(ctx, r, d.ID, studentID, *in.Value, d.TotalProgress)
	h.OK(w, r, http.StatusOK, "진행 상황이 업데이트되었습니다.", d)
}
