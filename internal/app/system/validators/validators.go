// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/coachhub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and attaches JSON-Schema
// validators. Servers that reject collMod validators are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Catalog and structure
	ensure("kpi_templates", kpiTemplatesSchema())
	ensure("programs", programsSchema())
	ensure("teams", teamsSchema())
	ensure("team_memberships", teamMembershipsSchema())

	// KPI assignment and progress
	ensure("program_kpis", programKPIsSchema())
	ensure("team_kpi_goals", teamKPIGoalsSchema())
	ensure("team_kpi_details", teamKPIDetailsSchema())

	// Review queue
	ensure("kpi_submissions", kpiSubmissionsSchema())
	ensure("assignment_submissions", assignmentSubmissionsSchema())

	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	objectID = bson.M{"bsonType": "objectId"}
	number   = bson.A{"double", "int", "long"}
	// YYYY-MM-DD; calendar validity is checked by the application
	ymd = bson.M{"bsonType": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"}
)

func enum(values []string) bson.M {
	a := make(bson.A, len(values))
	for i, v := range values {
		a[i] = v
	}
	return bson.M{"enum": a}
}

func positive() bson.M {
	return bson.M{"bsonType": number, "minimum": 0, "exclusiveMinimum": true}
}

func nonNegative() bson.M {
	return bson.M{"bsonType": number, "minimum": 0}
}

func schema(required bson.A, props bson.M) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   required,
			"properties": props,
		},
	}
}

func kpiTemplatesSchema() bson.M {
	return schema(bson.A{"name", "name_ci", "unit", "is_active"}, bson.M{
		"name":      nonBlank,
		"name_ci":   nonBlank,
		"unit":      nonBlank,
		"language":  bson.M{"bsonType": "string"},
		"is_active": bson.M{"bsonType": "bool"},
	})
}

func programsSchema() bson.M {
	return schema(bson.A{"name", "name_ci", "status"}, bson.M{
		"name":    nonBlank,
		"name_ci": nonBlank,
		"status":  enum(models.RecordStatuses),
	})
}

func teamsSchema() bson.M {
	return schema(bson.A{"program_id", "name", "name_ci", "status"}, bson.M{
		"program_id": objectID,
		"name":       nonBlank,
		"name_ci":    nonBlank,
		"status":     enum(models.RecordStatuses),
	})
}

func teamMembershipsSchema() bson.M {
	return schema(bson.A{"team_id", "student_id", "student_name", "created_at"}, bson.M{
		"team_id":      objectID,
		"student_id":   objectID,
		"student_name": nonBlank,
		"created_at":   bson.M{"bsonType": "date"},
	})
}

func programKPIsSchema() bson.M {
	return schema(bson.A{"program_id", "kpi_template_id", "kpi_name", "target_value", "visualization_type"}, bson.M{
		"program_id":         objectID,
		"kpi_template_id":    objectID,
		"kpi_name":           nonBlank,
		"target_value":       positive(),
		"is_required":        bson.M{"bsonType": "bool"},
		"visualization_type": enum(models.VisualizationTypes),
	})
}

func teamKPIGoalsSchema() bson.M {
	return schema(bson.A{"team_id", "goal_name", "start_date", "end_date", "progress_display_type", "status"}, bson.M{
		"team_id":               objectID,
		"program_id":            objectID,
		"goal_name":             nonBlank,
		"start_date":            ymd,
		"end_date":              ymd,
		"progress_display_type": enum(models.ProgressDisplayTypes),
		"status":                enum(models.GoalStatuses),
	})
}

func teamKPIDetailsSchema() bson.M {
	return schema(bson.A{"team_goal_id", "name", "target_value", "unit", "assigned_students", "status", "version"}, bson.M{
		"team_goal_id": objectID,
		"name":         nonBlank,
		"unit":         nonBlank,
		"target_value": positive(),
		"assigned_students": bson.M{
			"bsonType": "array",
			"minItems": 1,
			"items": bson.M{
				"bsonType": "object",
				"required": bson.A{"student_id", "current_value", "progress"},
				"properties": bson.M{
					"student_id":    objectID,
					"current_value": nonNegative(),
					"progress":      bson.M{"bsonType": number, "minimum": 0, "maximum": 100},
				},
			},
		},
		"total_current_value": nonNegative(),
		"total_progress":      bson.M{"bsonType": number, "minimum": 0, "maximum": 100},
		"status":              enum(models.DetailStatuses),
		"due_date":            ymd,
		"version":             bson.M{"bsonType": number},
	})
}

func submissionProps() bson.M {
	return bson.M{
		"student_id":   objectID,
		"student_name": nonBlank,
		"team_id":      objectID,
		"program_id":   objectID,
		"submit_date":  ymd,
		"status":       enum(models.ReviewStatuses),
		"reviewed_at":  bson.M{"bsonType": "date"},
	}
}

func kpiSubmissionsSchema() bson.M {
	props := submissionProps()
	props["type"] = enum(models.KPISubmissionTypes)
	props["actual_value"] = nonNegative()
	props["week"] = bson.M{"bsonType": number, "minimum": 0}
	return schema(bson.A{"student_id", "team_id", "submit_date", "status", "type", "actual_value"}, props)
}

func assignmentSubmissionsSchema() bson.M {
	props := submissionProps()
	props["assignment_id"] = objectID
	props["assignment_title"] = nonBlank
	props["rating"] = bson.M{"bsonType": number, "minimum": 1, "maximum": 5}
	return schema(bson.A{"student_id", "team_id", "assignment_id", "submit_date", "status"}, props)
}
