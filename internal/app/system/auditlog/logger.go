// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/coachhub/internal/app/store/audit"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	DestAll = "all" // MongoDB + zap
	DestDB  = "db"  // MongoDB only
	DestLog = "log" // zap only
	DestOff = "off"
)

// ValidDest reports whether s is a known destination.
func ValidDest(s string) bool {
	switch s {
	case DestAll, DestDB, DestLog, DestOff:
		return true
	}
	return false
}

// Config selects the destination per category.
type Config struct {
	Review string
	Admin  string
}

// Logger writes audit events to audit.Store and zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// requestID returns the chi request id, or a fresh UUID when the request
// did not pass through the RequestID middleware.
func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
		zap.String("request_id", event.RequestID),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.EntityID != nil {
		fields = append(fields, zap.String("entity_id", event.EntityID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to its category's destination.
// A nil Logger is a no-op so handlers under test can omit it.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var dest string
	switch event.Category {
	case audit.CategoryReview:
		dest = l.config.Review
	case audit.CategoryAdmin:
		dest = l.config.Admin
	}
	if dest == "" {
		dest = DestAll
	}
	if dest == DestOff {
		return
	}

	if dest == DestAll || dest == DestLog {
		l.logToZap(event)
	}
	if dest == DestAll || dest == DestDB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func base(r *http.Request, category, eventType string, entityID primitive.ObjectID) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		EntityID:  &entityID,
		RequestID: requestID(r),
		IP:        clientIP(r),
		Success:   true,
	}
}

// Reviewed logs a coach decision on a submission.
func (l *Logger) Reviewed(ctx context.Context, r *http.Request, eventType string, submissionID, coachID primitive.ObjectID, coachName, feedback string) {
	if l == nil {
		return
	}
	e := base(r, audit.CategoryReview, eventType, submissionID)
	e.ActorID = &coachID
	e.ActorName = coachName
	e.Details = map[string]string{"feedback": feedback}
	l.Log(ctx, e)
}

// ReviewFailed logs a rejected review attempt, such as a second approval.
func (l *Logger) ReviewFailed(ctx context.Context, r *http.Request, eventType string, submissionID primitive.ObjectID, reason string) {
	if l == nil {
		return
	}
	e := base(r, audit.CategoryReview, eventType, submissionID)
	e.Success = false
	e.FailureReason = reason
	l.Log(ctx, e)
}

// MemberProgressUpdated logs a change to one student's value on a detail.
func (l *Logger) MemberProgressUpdated(ctx context.Context, r *http.Request, detailID, studentID primitive.ObjectID, value float64, totalProgress int) {
	if l == nil {
		return
	}
	e := base(r, audit.CategoryReview, audit.EventMemberProgressUpdated, detailID)
	e.Details = map[string]string{
		"student_id":     studentID.Hex(),
		"value":          strconv.FormatFloat(value, 'f', -1, 64),
		"total_progress": strconv.Itoa(totalProgress),
	}
	l.Log(ctx, e)
}

// Admin logs a catalog, program, team or goal change.
func (l *Logger) Admin(ctx context.Context, r *http.Request, eventType string, entityID primitive.ObjectID, details map[string]string) {
	if l == nil {
		return
	}
	e := base(r, audit.CategoryAdmin, eventType, entityID)
	e.Details = details
	l.Log(ctx, e)
}
