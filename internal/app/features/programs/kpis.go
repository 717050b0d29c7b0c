// internal/app/features/programs/kpis.go
package programs

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/store/audit"
	programkpistore "github.com/dalemusser/coachhub/internal/app/store/programkpis"
	programstore "github.com/dalemusser/coachhub/internal/app/store/programs"
	"github.com/dalemusser/coachhub/internal/app/system/jsonresp"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

type assignItemInput struct {
	KPITemplateID     string  `json:"kpi_template_id" validate:"required,objectid" label:"KPI template"`
	TargetValue       float64 `json:"target_value" label:"Target value"`
	VisualizationType string  `json:"visualization_type" label:"Visualization type"`
	IsRequired        bool    `json:"is_required" label:"Required"`
}

type assignInput struct {
	Items []assignItemInput `json:"items" validate:"required,min=1,dive" label:"KPIs"`
}

// ServeKPIs handles GET /programs/{id}/kpis.
func (h *Handler) ServeKPIs(w http.ResponseWriter, r *http.Request) {
	programID, ok := shared.PathID(w, r, "id", "Program")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "program kpi list")
	defer cancel()

	if _, err := programstore.New(h.DB).GetByID(ctx, programID); err != nil {
		h.Fail(w, r, err, "Could not load program.")
		return
	}
	rows, err := programkpistore.New(h.DB).ListByProgram(ctx, programID)
	if err != nil {
		h.Fail(w, r, err, "Could not load program KPIs.")
		return
	}
	jsonresp.Data(w, http.StatusOK, "", rows)
}

// ServeSelectable handles GET /programs/{id}/kpis/selectable?q=, the first
// step of KPI assignment: active templates not yet bound to the program.
func (h *Handler) ServeSelectable(w http.ResponseWriter, r *http.Request) {
	programID, ok := shared.PathID(w, r, "id", "Program")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "program kpi selectable")
	defer cancel()

	if _, err := programstore.New(h.DB).GetByID(ctx, programID); err != nil {
		h.Fail(w, r, err, "Could not load program.")
		return
	}
	rows, err := programkpistore.New(h.DB).ListSelectable(ctx, programID, query.Get(r, "q"))
	if err != nil {
		h.Fail(w, r, err, "Could not load KPI templates.")
		return
	}
	jsonresp.Data(w, http.StatusOK, "", rows)
}

// HandleAssign handles POST /programs/{id}/kpis. The batch is all or
// nothing; the store reports every bad target in one validation error.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	programID, ok := shared.PathID(w, r, "id", "Program")
	if !ok {
		return
	}
	var in assignInput
	if !jsonresp.Decode(w, r, &in) {
		return
	}

	items := make([]programkpistore.AssignItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, programkpistore.AssignItem{
			KPITemplateID:     shared.MustID(it.KPITemplateID),
			TargetValue:       it.TargetValue,
			VisualizationType: it.VisualizationType,
			IsRequired:        it.IsRequired,
		})
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "program kpi assign")
	defer cancel()

	program, err := programstore.New(h.DB).GetByID(ctx, programID)
	if err != nil {
		h.Fail(w, r, err, "Could not load program.")
		return
	}
	created, err := programkpistore.New(h.DB).AssignBatch(ctx, program, items)
	if err != nil {
		h.Fail(w, r, err, "Could not assign KPIs.")
		return
	}
	h.Audit.Admin(ctx, r, audit.EventProgramKPIsAssigned, program.ID, map[string]string{
		"count": strconv.Itoa(len(created)),
	})
	h.OK(w, r, http.StatusCreated, strconv.Itoa(len(created))+"개의 KPI가 할당되었습니다.", created)
}

// HandleRemoveKPI handles DELETE /programs/{id}/kpis/{kpiID}.
func (h *Handler) HandleRemoveKPI(w http.ResponseWriter, r *http.Request) {
	programID, ok := shared.PathID(w, r, "id", "Program")
	if !ok {
		return
	}
	kpiID, ok := shared.PathID(w, r, "kpiID", "Program KPI")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "program kpi remove")
	defer cancel()

	if err := programkpistore.New(h.DB).Delete(ctx, programID, kpiID); err != nil {
		h.Fail(w, r, err, "Could not remove program KPI.")
		return
	}
	h.Audit.Admin(ctx, r, audit.EventProgramKPIRemoved, kpiID, map[string]string{"program_id": programID.Hex()})
	h.OK(w, r, http.StatusOK, "프로그램 KPI가 삭제되었습니다.", nil)
}
