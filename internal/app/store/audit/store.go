// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryReview = "review" // coach decisions on submissions
	CategoryAdmin  = "admin"  // catalog, program, team and goal changes
)

// Review event types
const (
	EventKPISubmissionApproved        = "kpi_submission_approved"
	EventKPISubmissionRejected        = "kpi_submission_rejected"
	EventAssignmentSubmissionApproved = "assignment_submission_approved"
	EventAssignmentSubmissionRejected = "assignment_submission_rejected"
	EventMemberProgressUpdated        = "member_progress_updated"
)

// Admin event types
const (
	EventKPITemplateCreated   = "kpi_template_created"
	EventKPITemplateUpdated   = "kpi_template_updated"
	EventKPITemplateDeleted   = "kpi_template_deleted"
	EventProgramCreated       = "program_created"
	EventProgramKPIsAssigned  = "program_kpis_assigned"
	EventProgramKPIRemoved    = "program_kpi_removed"
	EventTeamCreated          = "team_created"
	EventRosterMemberAdded    = "roster_member_added"
	EventRosterMemberRemoved  = "roster_member_removed"
	EventTeamGoalCreated      = "team_goal_created"
	EventTeamGoalUpdated      = "team_goal_updated"
	EventTeamGoalDeleted      = "team_goal_deleted"
	EventKPIDetailCreated     = "kpi_detail_created"
	EventKPIDetailUpdated     = "kpi_detail_updated"
	EventKPIDetailRosterReset = "kpi_detail_roster_reset"
	EventKPIDetailDeleted     = "kpi_detail_deleted"
)

// Event is one audited action.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`

	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"event_type"`

	// Who acted. Coach identity is client-supplied; there is no login.
	ActorID   *primitive.ObjectID `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	ActorName string              `bson:"actor_name,omitempty" json:"actor_name,omitempty"`

	// What was acted on.
	EntityID *primitive.ObjectID `bson:"entity_id,omitempty" json:"entity_id,omitempty"`

	RequestID string `bson:"request_id,omitempty" json:"request_id,omitempty"`
	IP        string `bson:"ip" json:"ip"`

	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter narrows Query and CountByFilter.
type QueryFilter struct {
	Category  string
	EventType string
	ActorID   *primitive.ObjectID
	EntityID  *primitive.ObjectID
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}

func (f QueryFilter) bson() bson.M {
	q := bson.M{}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.EventType != "" {
		q["event_type"] = f.EventType
	}
	if f.ActorID != nil {
		q["actor_id"] = *f.ActorID
	}
	if f.EntityID != nil {
		q["entity_id"] = *f.EntityID
	}
	if f.StartTime != nil || f.EndTime != nil {
		tq := bson.M{}
		if f.StartTime != nil {
			tq["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			tq["$lte"] = *f.EndTime
		}
		q["timestamp"] = tq
	}
	return q
}

// Store persists audit events in audit_events.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event, filling ID and Timestamp when unset.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query returns matching events, newest first. Limit defaults to 100.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, filter.bson(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the number of matching events.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.bson())
}

// GetByEntity returns recent events about one record, such as a submission.
func (s *Store) GetByEntity(ctx context.Context, entityID primitive.ObjectID, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{EntityID: &entityID, Limit: limit})
}

// GetRecent returns the most recent events.
func (s *Store) GetRecent(ctx context.Context, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{Limit: limit})
}
