// internal/app/features/programs/programs.go
package programs

import (
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/store/audit"
	programstore "github.com/dalemusser/coachhub/internal/app/store/programs"
	"github.com/dalemusser/coachhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/coachhub/internal/app/system/jsonresp"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type programInput struct {
	Name        string `json:"name" validate:"notblank,max=200" label:"Name"`
	Description string `json:"description" validate:"max=2000" label:"Description"`
}

// ServeList handles GET /programs?q=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "program list")
	defer cancel()

	rows, err := programstore.New(h.DB).List(ctx, query.Get(r, "q"))
	if err != nil {
		h.Fail(w, r, err, "Could not load programs.")
		return
	}
	jsonresp.Data(w, http.StatusOK, "", rows)
}

// HandleCreate handles POST /programs.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in programInput
	if !jsonresp.Decode(w, r, &in) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "program create")
	defer cancel()

	p, err := programstore.New(h.DB).Create(ctx, models.Program{
		Name:        htmlsanitize.PlainText(in.Name),
		Description: htmlsanitize.PlainText(in.Description),
	})
	if err != nil {
		h.Fail(w, r, err, "Could not create program.")
		return
	}
	h.Audit.Admin(ctx, r, audit.EventProgramCreated, p.ID, map[string]string{"name": p.Name})
	h.OK(w, r, http.StatusCreated, "프로그램이 생성되었습니다.", p)
}
