// internal/domain/models/kpitypes.go
package models

// Canonical enum values stored on KPI documents.
//
// These are stable, language-agnostic keys; display labels live in the client.
const (
	VisualizationChart    = "chart"
	VisualizationProgress = "progress"
	VisualizationValue    = "value"
)

// VisualizationTypes is the allowed set for ProgramKPI.VisualizationType.
var VisualizationTypes = []string{
	VisualizationChart,
	VisualizationProgress,
	VisualizationValue,
}

const (
	DisplayBar        = "bar"
	DisplayPie        = "pie"
	DisplayNumber     = "number"
	DisplayPercentage = "percentage"
	DisplayDonut      = "donut"
)

// ProgressDisplayTypes is the allowed set for TeamKPIGoal.ProgressDisplayType.
var ProgressDisplayTypes = []string{
	DisplayBar,
	DisplayPie,
	DisplayNumber,
	DisplayPercentage,
	DisplayDonut,
}

const (
	GoalActive    = "active"
	GoalCompleted = "completed"
	GoalCancelled = "cancelled"
)

// GoalStatuses is the allowed set for TeamKPIGoal.Status.
var GoalStatuses = []string{GoalActive, GoalCompleted, GoalCancelled}

const (
	DetailNotStarted = "not_started"
	DetailInProgress = "in_progress"
	DetailCompleted  = "completed"
)

// DetailStatuses is the allowed set for TeamKPIDetail.Status.
var DetailStatuses = []string{DetailNotStarted, DetailInProgress, DetailCompleted}

// DefaultLanguage is the language tag given to templates created without one.
const DefaultLanguage = "ko"

// Contains reports whether v is one of the allowed values.
func Contains(allowed []string, v string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// Lifecycle statuses for programs and teams.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// RecordStatuses is the allowed set for Program.Status and Team.Status.
var RecordStatuses = []string{StatusActive, StatusArchived}
