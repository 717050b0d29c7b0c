// internal/app/features/kpitemplates/edit.go
package kpitemplates

import (
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/store/audit"
	kpitemplatestore "github.com/dalemusser/coachhub/internal/app/store/kpitemplates"
	"github.com/dalemusser/coachhub/internal/app/system/jsonresp"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
)

// HandleCreate handles POST /kpi-templates.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in templateInput
	if !jsonresp.Decode(w, r, &in) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "kpi template create")
	defer cancel()

	t, err := kpitemplatestore.New(h.DB).Create(ctx, in.model())
	if err != nil {
		h.Fail(w, r, err, "Could not create KPI template.")
		return
	}
	h.Audit.Admin(ctx, r, audit.EventKPITemplateCreated, t.ID, map[string]string{"name": t.Name, "unit": t.Unit})
	h.OK(w, r, http.StatusCreated, "KPI 템플릿이 생성되었습니다.", t)
}

// HandleUpdate handles POST /kpi-templates/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id", "KPI template")
	if !ok {
		return
	}
	var in templateInput
	if !jsonresp.Decode(w, r, &in) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "kpi template update")
	defer cancel()

	t, err := kpitemplatestore.New(h.DB).Update(ctx, id, in.model())
	if err != nil {
		h.Fail(w, r, err, "Could not update KPI template.")
		return
	}
	h.Audit.Admin(ctx, r, audit.EventKPITemplateUpdated, t.ID, map[string]string{"name": t.Name})
	h.OK(w, r, http.StatusOK, "KPI 템플릿이 수정되었습니다.", t)
}

// HandleDelete handles DELETE /kpi-templates/{id}. Program KPIs and
// submissions created from the template keep their own copy of its name.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id", "KPI template")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "kpi template delete")
	defer cancel()

	n, err := kpitemplatestore.New(h.DB).Delete(ctx, id)
	if err != nil {
		h.Fail(w, r, err, "Could not delete KPI template.")
		return
	}
	if n == 0 {
		jsonresp.Message(w, http.StatusNotFound, "KPI template not found.")
		return
	}
	h.Audit.Admin(ctx, r, audit.EventKPITemplateDeleted, id, nil)
	h.OK(w, r, http.StatusOK, "KPI 템플릿이 삭제되었습니다.", nil)
}
