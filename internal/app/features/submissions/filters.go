// internal/app/features/submissions/filters.go
package submissions

import (
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/store/queries/submissionqueries"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

// parseFilter reads program, team, student, status, type, week and q.
// withKPI enables the KPI-only type and week parameters.
func parseFilter(w http.ResponseWriter, r *http.Request, withKPI bool) (submissionqueries.Filter, bool) {
	var f submissionqueries.Filter
	var ok bool

	if f.ProgramID, ok = shared.QueryID(w, r, "program", "Program"); !ok {
		return f, false
	}
	if f.TeamID, ok = shared.QueryID(w, r, "team", "Team"); !ok {
		return f, false
	}
	if f.StudentID, ok = shared.QueryID(w, r, "student", "Student"); !ok {
		return f, false
	}
	if f.Status, ok = shared.QueryOneOf(w, r, "status", "Status", models.ReviewStatuses); !ok {
		return f, false
	}
	if withKPI {
		if f.Type, ok = shared.QueryOneOf(w, r, "type", "Type", models.KPISubmissionTypes); !ok {
			return f, false
		}
		if f.Week, ok = shared.QueryInt(w, r, "week", "Week"); !ok {
			return f, false
		}
	}
	f.Search = query.Get(r, "q")
	return f, true
}
