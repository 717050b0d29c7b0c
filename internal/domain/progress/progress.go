// Package progress derives KPI detail and goal progress from per-student values.
//
// Everything here is pure: callers load a TeamKPIDetail, mutate it through
// these functions and persist the result. No function touches storage.
package progress

import (
	"math"
	"strings"

	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxPercent caps every progress figure.
const MaxPercent = 100

// Totals are the derived fields of a TeamKPIDetail.
type Totals struct {
	CurrentValue float64
	Progress     int
	Status       string
}

// Percent returns min(100, round(value/target*100)). A non-positive target
// yields 0 rather than dividing by zero.
func Percent(value, target float64) int {
	if target <= 0 || value <= 0 {
		return 0
	}
	p := math.Round(value / target * 100)
	if p >= MaxPercent {
		return MaxPercent
	}
	return int(p)
}

// StudentProgress is one student's percentage of the per-student target.
// Values above target are legitimate and cap at 100.
func StudentProgress(current, target float64) int {
	return Percent(current, target)
}

// DetailStatus maps a total progress percentage to a detail status.
func DetailStatus(totalProgress int) string {
	switch {
	case totalProgress <= 0:
		return models.DetailNotStarted
	case totalProgress >= MaxPercent:
		return models.DetailCompleted
	default:
		return models.DetailInProgress
	}
}

// Aggregate computes the totals for a detail with the given per-student
// target. The aggregate target scales with headcount: target * len(students).
func Aggregate(target float64, students []models.AssignedStudent) Totals {
	var sum float64
	for _, s := range students {
		sum += s.CurrentValue
	}
	pct := Percent(sum, target*float64(len(students)))
	return Totals{
		CurrentValue: sum,
		Progress:     pct,
		Status:       DetailStatus(pct),
	}
}

// Recompute refreshes every derived field of d in place: each student's
// progress, then the totals and status.
func Recompute(d *models.TeamKPIDetail) {
	for i := range d.AssignedStudents {
		d.AssignedStudents[i].Progress = StudentProgress(d.AssignedStudents[i].CurrentValue, d.TargetValue)
	}
	t := Aggregate(d.TargetValue, d.AssignedStudents)
	d.TotalCurrentValue = t.CurrentValue
	d.TotalProgress = t.Progress
	d.Status = t.Status
}

// ApplyMemberValue sets one student's current value and recomputes d.
// It fails without touching d when value is negative or the student is
// not assigned to the detail.
func ApplyMemberValue(d *models.TeamKPIDetail, studentID primitive.ObjectID, value float64) error {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return kpierr.Validation("현재 값은 0 이상이어야 합니다")
	}
	idx := -1
	for i, s := range d.AssignedStudents {
		if s.StudentID == studentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return kpierr.InvalidMember("student %s is not assigned to KPI detail %s", studentID.Hex(), d.ID.Hex())
	}
	d.AssignedStudents[idx].CurrentValue = value
	Recompute(d)
	return nil
}

// RosterEntry is a student on a team roster.
type RosterEntry struct {
	StudentID   primitive.ObjectID
	StudentName string
}

// BuildAssignments snapshots the selected students from roster into fresh
// assignment entries with zero progress. Selection order is preserved and
// duplicate ids are collapsed. Every id must be on the roster.
func BuildAssignments(roster []RosterEntry, selected []primitive.ObjectID) ([]models.AssignedStudent, error) {
	if len(selected) == 0 {
		return nil, kpierr.Validation("최소 한 명의 학생을 선택해야 합니다")
	}
	names := make(map[primitive.ObjectID]string, len(roster))
	for _, e := range roster {
		names[e.StudentID] = e.StudentName
	}

	seen := make(map[primitive.ObjectID]bool, len(selected))
	out := make([]models.AssignedStudent, 0, len(selected))
	var missing []string
	for _, id := range selected {
		if seen[id] {
			continue
		}
		seen[id] = true
		name, ok := names[id]
		if !ok {
			missing = append(missing, id.Hex())
			continue
		}
		out = append(out, models.AssignedStudent{StudentID: id, StudentName: name})
	}
	if len(missing) > 0 {
		return nil, kpierr.InvalidMember("students not on the team roster: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// GoalProgress is the rounded mean of the details' TotalProgress,
// or 0 when the goal has no details.
func GoalProgress(details []models.TeamKPIDetail) int {
	totals := make([]int, 0, len(details))
	for _, d := range details {
		totals = append(totals, d.TotalProgress)
	}
	return MeanOf(totals)
}

// MeanOf is GoalProgress over raw percentages, used when only the detail
// totals were projected from storage.
func MeanOf(totals []int) int {
	if len(totals) == 0 {
		return 0
	}
	sum := 0
	for _, p := range totals {
		sum += p
	}
	return int(math.Round(float64(sum) / float64(len(totals))))
}
