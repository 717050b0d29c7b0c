// internal/app/features/submissions/counts.go
package submissions

import (
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/store/queries/submissionqueries"
	"github.com/dalemusser/coachhub/internal/app/system/jsonresp"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
)

// ServePendingCounts handles GET /submissions/pending-counts?program=&team=&student=,
// the dashboard badge numbers.
func (h *Handler) ServePendingCounts(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(w, r, false)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "pending counts")
	defer cancel()

	counts, err := submissionqueries.CountPending(ctx, h.DB, f)
	if err != nil {
		h.Fail(w, r, err, "Could not count pending submissions.")
		return
	}
	jsonresp.Data(w, http.StatusOK, "", counts)
}
