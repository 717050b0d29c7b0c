// internal/app/features/teamgoals/goals.go
package teamgoals

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/store/audit"
	goalqueries "github.com/dalemusser/coachhub/internal/app/store/queries/goalqueries"
	teamdetailstore "github.com/dalemusser/coachhub/internal/app/store/teamdetails"
	teamgoalstore "github.com/dalemusser/coachhub/internal/app/store/teamgoals"
	teamstore "github.com/dalemusser/coachhub/internal/app/store/teams"
	"github.com/dalemusser/coachhub/internal/app/system/jsonresp"
	"github.com/dalemusser/coachhub/internal/app/system/paging"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/app/system/txn"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// ServeList handles GET /goals?program=&team=&status=&q=, latest start date
// first, each row with its computed progress.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	programID, ok := shared.QueryID(w, r, "program", "Program")
	if !ok {
		return
	}
	teamID, ok := shared.QueryID(w, r, "team", "Team")
	if !ok {
		return
	}
	status, ok := shared.QueryOneOf(w, r, "status", "Status", models.GoalStatuses)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "goal list")
	defer cancel()

	f := goalqueries.Filter{ProgramID: programID, TeamID: teamID, Status: status, Search: query.Get(r, "q")}
	rows, info, err := goalqueries.List(ctx, h.DB, f, paging.Parse(r))
	if err != nil {
		h.Fail(w, r, err, "Could not load goals.")
		return
	}
	jsonresp.Data(w, http.StatusOK, "", listResponse{Items: rows, Page: info})
}

// ServeGoal handles GET /goals/{id}: the goal, its progress and its details.
func (h *Handler) ServeGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id", "Goal")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "goal get")
	defer cancel()

	goal, err := teamgoalstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		h.Fail(w, r, err, "Could not load goal.")
		return
	}
	row, err := goalqueries.Get(ctx, h.DB, goal)
	if err != nil {
		h.Fail(w, r, err, "Could not load goal.")
		return
	}
	details, err := teamdetailstore.New(h.DB).ListByGoal(ctx, id)
	if err != nil {
		h.Fail(w, r, err, "Could not load goal details.")
		return
	}
	jsonresp.Data(w, http.StatusOK, "", goalResponse{Row: row, Details: details})
}

// HandleCreate handles POST /teams/{id}/goals.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	teamID, ok := shared.PathID(w, r, "id", "Team")
	if !ok {
		return
	}
	var in goalInput
	if !jsonresp.Decode(w, r, &in) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "goal create")
	defer cancel()

	team, err := teamstore.New(h.DB).GetByID(ctx, teamID)
	if err != nil {
		h.Fail(w, r, err, "Could not load team.")
		return
	}
	goal, err := teamgoalstore.New(h.DB).Create(ctx, team, in.fields())
	if err != nil {
		h.Fail(w, r, err, "Could not create goal.")
		return
	}
	h.Audit.Admin(ctx, r, audit.EventTeamGoalCreated, goal.ID, map[string]string{
		"team_id":   team.ID.Hex(),
		"goal_name": goal.GoalName,
	})
	h.OK(w, r, http.StatusCreated, "팀 목표가 생성되었습니다.", goalqueries.Row{TeamKPIGoal: goal})
}

// HandleUpdate handles POST /goals/{id}. The body replaces every editable
// field; an empty status keeps the current one.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id", "Goal")
	if !ok {
		return
	}
	var in goalInput
	if !jsonresp.Decode(w, r, &in) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "goal update")
	defer cancel()

	goal, err := teamgoalstore.New(h.DB).Update(ctx, id, in.fields())
	if err != nil {
		h.Fail(w, r, err, "Could not update goal.")
		return
	}
	row, err := goalqueries.Get(ctx, h.DB, goal)
	if err != nil {
		h.Fail(w, r, err, "Could not load goal.")
		return
	}
	h.Audit.Admin(ctx, r, audit.EventTeamGoalUpdated, goal.ID, map[string]string{"status": goal.Status})
	h.OK(w, r, http.StatusOK, "팀 목표가 수정되었습니다.", row)
}

// HandleDelete handles DELETE /goals/{id}, removing the goal's details with it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id", "Goal")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "goal delete")
	defer cancel()

	var removed int64
	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		n, err := teamgoalstore.New(h.DB).Delete(ctx, id)
		removed = n
		return err
	})
	if err != nil {
		h.Fail(w, r, err, "Could not delete goal.")
		return
	}
	h.Log.Info("goal deleted", zap.String("goal_id", id.Hex()), zap.Int64("details_deleted", removed))
	h.Audit.Admin(ctx, r, audit.EventTeamGoalDeleted, id, map[string]string{
		"details_deleted": strconv.FormatInt(removed, 10),
	})
	h.OK(w, r, http.StatusOK, "팀 목표가 삭제되었습니다.", map[string]int64{"details_deleted": removed})
}
