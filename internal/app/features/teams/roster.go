// internal/app/features/teams/roster.go
package teams

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	"github.com/dalemusser/coachhub/internal/app/store/audit"
	rosterstore "github.com/dalemusser/coachhub/internal/app/store/rosters"
	teamstore "github.com/dalemusser/coachhub/internal/app/store/teams"
	"github.com/dalemusser/coachhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/coachhub/internal/app/system/jsonresp"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type studentInput struct {
	StudentID   string `json:"student_id" validate:"omitempty,objectid" label:"Student"`
	StudentName string `json:"student_name" validate:"notblank,max=100" label:"Student name"`
}

type addStudentsInput struct {
	Students []studentInput `json:"students" validate:"required,min=1,max=500,dive" label:"Students"`
}

type addStudentsResponse struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
}

// ServeRoster handles GET /teams/{id}/roster in roster order.
func (h *Handler) ServeRoster(w http.ResponseWriter, r *http.Request) {
	teamID, ok := shared.PathID(w, r, "id", "Team")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "roster list")
	defer cancel()

	if _, err := teamstore.New(h.DB).GetByID(ctx, teamID); err != nil {
		h.Fail(w, r, err, "Could not load team.")
		return
	}
	rows, err := rosterstore.New(h.DB).List(ctx, teamID)
	if err != nil {
		h.Fail(w, r, err, "Could not load roster.")
		return
	}
	jsonresp.Data(w, http.StatusOK, "", rows)
}

// HandleAddStudents handles POST /teams/{id}/roster. Students already on
// the roster are counted, not rejected.
func (h *Handler) HandleAddStudents(w http.ResponseWriter, r *http.Request) {
	teamID, ok := shared.PathID(w, r, "id", "Team")
	if !ok {
		return
	}
	var in addStudentsInput
	if !jsonresp.Decode(w, r, &in) {
		return
	}

	entries := make([]rosterstore.Entry, 0, len(in.Students))
	for _, s := range in.Students {
		e := rosterstore.Entry{StudentName: htmlsanitize.PlainText(s.StudentName)}
		if s.StudentID != "" {
			e.StudentID = shared.MustID(s.StudentID)
		}
		entries = append(entries, e)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "roster add")
	defer cancel()

	team, err := teamstore.New(h.DB).GetByID(ctx, teamID)
	if err != nil {
		h.Fail(w, r, err, "Could not load team.")
		return
	}
	res, err := rosterstore.New(h.DB).AddBatch(ctx, team.ID, entries)
	if err != nil {
		h.Fail(w, r, err, "Could not update roster.")
		return
	}
	h.Audit.Admin(ctx, r, audit.EventRosterMemberAdded, team.ID, map[string]string{
		"added":      fmt.Sprint(res.Added),
		"duplicates": fmt.Sprint(res.Duplicates),
	})

	msg := fmt.Sprintf("%d명의 학생이 추가되었습니다.", res.Added)
	if res.Duplicates > 0 {
		msg = fmt.Sprintf("%d명의 학생이 추가되었습니다. (이미 등록된 학생 %d명)", res.Added, res.Duplicates)
	}
	h.OK(w, r, http.StatusOK, msg, addStudentsResponse{Added: res.Added, Duplicates: res.Duplicates})
}

// HandleRemoveStudent handles DELETE /teams/{id}/roster/{studentID}.
// Existing KPI detail assignments keep the student until the detail's
// roster is reset.
func (h *Handler) HandleRemoveStudent(w http.ResponseWriter, r *http.Request) {
	teamID, ok := shared.PathID(w, r, "id", "Team")
	if !ok {
		return
	}
	studentID, ok := shared.PathID(w, r, "studentID", "Student")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "roster remove")
	defer cancel()

	if err := rosterstore.New(h.DB).Remove(ctx, teamID, studentID); err != nil {
		h.Fail(w, r, err, "Could not update roster.")
		return
	}
	h.Audit.Admin(ctx, r, audit.EventRosterMemberRemoved, teamID, map[string]string{"student_id": studentID.Hex()})
	h.OK(w, r, http.StatusOK, "학생이 팀에서 제외되었습니다.", map[string]primitive.ObjectID{"student_id": studentID})
}
