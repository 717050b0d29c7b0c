// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/store/audit"
	"github.com/dalemusser/coachhub/internal/app/system/jsonresp"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

const pageSize = 50

// ServeList handles GET /audit-events?category=&event_type=&entity=&actor=
// &start_date=&end_date=&page=. Dates are YYYY-MM-DD in UTC; end_date is
// inclusive.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	category, ok := shared.QueryOneOf(w, r, "category", "Category", allCategories())
	if !ok {
		return
	}
	entityID, ok := shared.QueryID(w, r, "entity", "Entity")
	if !ok {
		return
	}
	actorID, ok := shared.QueryID(w, r, "actor", "Actor")
	if !ok {
		return
	}

	page := 1
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		page = p
	}

	filter := audit.QueryFilter{
		Category:  category,
		EventType: query.Get(r, "event_type"),
		EntityID:  entityID,
		ActorID:   actorID,
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}
	if s := query.Get(r, "start_date"); s != "" {
		t, err := models.ParseDate(s)
		if err != nil {
			jsonresp.Message(w, http.StatusBadRequest, "Start date must be a date in YYYY-MM-DD form.")
			return
		}
		filter.StartTime = &t
	}
	if s := query.Get(r, "end_date"); s != "" {
		t, err := models.ParseDate(s)
		if err != nil {
			jsonresp.Message(w, http.StatusBadRequest, "End date must be a date in YYYY-MM-DD form.")
			return
		}
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &endOfDay
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	store := audit.New(h.DB)
	events, err := store.Query(ctx, filter)
	if err != nil {
		h.Fail(w, r, err, "Could not load audit events.")
		return
	}
	total, err := store.CountByFilter(ctx, filter)
	if err != nil {
		h.Fail(w, r, err, "Could not count audit events.")
		return
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages == 0 {
		totalPages = 1
	}
	jsonresp.Data(w, http.StatusOK, "", listResponse{
		Items:      events,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	})
}
