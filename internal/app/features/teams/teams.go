// internal/app/features/teams/teams.go
package teams

import (
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/store/audit"
	programstore "github.com/dalemusser/coachhub/internal/app/store/programs"
	teamstore "github.com/dalemusser/coachhub/internal/app/store/teams"
	"github.com/dalemusser/coachhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/coachhub/internal/app/system/jsonresp"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
)

type teamInput struct {
	ProgramID string `json:"program_id" validate:"required,objectid" label:"Program"`
	Name      string `json:"name" validate:"notblank,max=200" label:"Name"`
}

// ServeList handles GET /teams?program=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	programID, ok := shared.QueryID(w, r, "program", "Program")
	if !ok {
		return
	}
	if programID == nil {
		jsonresp.Message(w, http.StatusBadRequest, "Program is required.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "team list")
	defer cancel()

	rows, err := teamstore.New(h.DB).ListByProgram(ctx, *programID)
	if err != nil {
		h.Fail(w, r, err, "Could not load teams.")
		return
	}
	jsonresp.Data(w, http.StatusOK, "", rows)
}

// HandleCreate handles POST /teams.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in teamInput
	if !jsonresp.Decode(w, r, &in) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "team create")
	defer cancel()

	program, err := programstore.New(h.DB).GetByID(ctx, shared.MustID(in.ProgramID))
	if err != nil {
		h.Fail(w, r, err, "Could not load program.")
		return
	}
	team, err := teamstore.New(h.DB).Create(ctx, program, htmlsanitize.PlainText(in.Name))
	if err != nil {
		h.Fail(w, r, err, "Could not create team.")
		return
	}
	h.Audit.Admin(ctx, r, audit.EventTeamCreated, team.ID, map[string]string{
		"name":       team.Name,
		"program_id": program.ID.Hex(),
	})
	h.OK(w, r, http.StatusCreated, "팀이 생성되었습니다.", team)
}
