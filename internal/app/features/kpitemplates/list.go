// internal/app/features/kpitemplates/list.go
package kpitemplates

import (
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	kpitemplatestore "github.com/dalemusser/coachhub/internal/app/store/kpitemplates"
	"github.com/dalemusser/coachhub/internal/app/system/jsonresp"
	"github.com/dalemusser/coachhub/internal/app/system/paging"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeList handles GET /kpi-templates?q=&active=&limit=&after=&before=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	active, ok := shared.QueryBool(w, r, "active", "Active")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "kpi template list")
	defer cancel()

	f := kpitemplatestore.ListFilter{Query: query.Get(r, "q"), Active: active}
	rows, info, err := kpitemplatestore.New(h.DB).List(ctx, f, paging.Parse(r).Keyset(false))
	if err != nil {
		h.Fail(w, r, err, "Could not load KPI templates.")
		return
	}
	jsonresp.Data(w, http.StatusOK, "", listResponse{Items: rows, Page: info})
}

// ServeTemplate handles GET /kpi-templates/{id}.
func (h *Handler) ServeTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "id", "KPI template")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "kpi template get")
	defer cancel()

	t, err := kpitemplatestore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		h.Fail(w, r, err, "Could not load KPI template.")
		return
	}
	jsonresp.Data(w, http.StatusOK, "", t)
}
