// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	sets := []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"kpi_templates", ensureKPITemplates},
		{"programs", ensurePrograms},
		{"teams", ensureTeams},
		{"team_memberships", ensureTeamMemberships},
		{"program_kpis", ensureProgramKPIs},
		{"team_kpi_goals", ensureTeamKPIGoals},
		{"team_kpi_details", ensureTeamKPIDetails},
		{"kpi_submissions", ensureKPISubmissions},
		{"assignment_submissions", ensureAssignmentSubmissions},
		{"audit_events", ensureAuditEvents},
	}

	var problems []string
	for _, s := range sets {
		if err := s.fn(ctx, db); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(p *bool) bool { return p != nil && *p }

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Some servers report IndexOptionsConflict when the same keys exist under
// another name or with other options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

func recreate(ctx context.Context, coll *mongo.Collection, old string, m mongo.IndexModel) error {
	if _, err := coll.Indexes().DropOne(ctx, old); err != nil {
		return fmt.Errorf("drop %s: %w", old, err)
	}
	_, err := coll.Indexes().CreateOne(ctx, m)
	return err
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var name string
		var unique bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = boolVal(m.Options.Unique)
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique))

		existing, err := listExisting(ctx, coll)
		if err != nil {
			// A missing collection lists as an error on some servers; creating
			// the index creates the collection.
			existing = map[string]existingIndex{}
		}

		ex, found := existing[sig]
		switch {
		case found && boolVal(ex.Unique) == unique && (name == "" || ex.Name == name):
			log.Debug("reusing existing index")
			continue

		case found:
			// Same keys under another name, or uniqueness changed.
			err = recreate(ctx, coll, ex.Name, m)

		default:
			_, err = coll.Indexes().CreateOne(ctx, m)
			if isOptionsConflictErr(err) {
				if again, lerr := listExisting(ctx, coll); lerr == nil {
					if match, ok := again[sig]; ok {
						err = recreate(ctx, coll, match.Name, m)
					}
				}
			}
		}

		if err != nil {
			if unique && isDuplicateKeyErr(err) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			log.Warn("index ensure failed", zap.Duration("took", time.Since(start)), zap.Error(err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureKPITemplates(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("kpi_templates"), []mongo.IndexModel{
		// Selection list: active templates by name
		{
			Keys:    bson.D{{Key: "is_active", Value: 1}, {Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_kpit_active_nameci__id"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_kpit_nameci__id"),
		},
	})
}

func ensurePrograms(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("programs"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_program_nameci"),
		},
	})
}

func ensureTeams(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("teams"), []mongo.IndexModel{
		// No duplicate team names inside one program
		{
			Keys:    bson.D{{Key: "program_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_team_program_nameci"),
		},
	})
}

func ensureTeamMemberships(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("team_memberships"), []mongo.IndexModel{
		// A student is on a team at most once
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "student_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_tm_team_student"),
		},
		// Roster order
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_tm_team_created__id"),
		},
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}},
			Options: options.Index().SetName("idx_tm_student"),
		},
	})
}

func ensureProgramKPIs(ctx context.Context, db *mongo.Database) error {
	// A template may be bound to a program at most once, but that rule is
	// enforced at save time rather than by a unique index.
	return ensureIndexSet(ctx, db.Collection("program_kpis"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "program_id", Value: 1}, {Key: "kpi_template_id", Value: 1}},
			Options: options.Index().SetName("idx_pk_program_template"),
		},
		{
			Keys:    bson.D{{Key: "program_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_pk_program_created__id"),
		},
	})
}

func ensureTeamKPIGoals(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("team_kpi_goals"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "status", Value: 1}, {Key: "start_date", Value: -1}},
			Options: options.Index().SetName("idx_tkg_team_status_start"),
		},
		{
			Keys:    bson.D{{Key: "program_id", Value: 1}, {Key: "status", Value: 1}, {Key: "start_date", Value: -1}},
			Options: options.Index().SetName("idx_tkg_program_status_start"),
		},
	})
}

func ensureTeamKPIDetails(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("team_kpi_details"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "team_goal_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_tkd_goal_created__id"),
		},
		// Details a student contributes to
		{
			Keys:    bson.D{{Key: "assigned_students.student_id", Value: 1}},
			Options: options.Index().SetName("idx_tkd_student"),
		},
	})
}

func submissionIndexes(prefix string) []mongo.IndexModel {
	return []mongo.IndexModel{
		// Review queue: pending first, newest first
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "submit_date", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_" + prefix + "_status_date__id"),
		},
		{
			Keys:    bson.D{{Key: "program_id", Value: 1}, {Key: "status", Value: 1}, {Key: "submit_date", Value: -1}},
			Options: options.Index().SetName("idx_" + prefix + "_program_status_date"),
		},
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "status", Value: 1}, {Key: "submit_date", Value: -1}},
			Options: options.Index().SetName("idx_" + prefix + "_team_status_date"),
		},
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "submit_date", Value: -1}},
			Options: options.Index().SetName("idx_" + prefix + "_student_date"),
		},
	}
}

func ensureKPISubmissions(ctx context.Context, db *mongo.Database) error {
	models := append(submissionIndexes("ks"),
		mongo.IndexModel{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "week", Value: 1}},
			Options: options.Index().SetName("idx_ks_type_week"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "team.team_kpi_detail_id", Value: 1}},
			Options: options.Index().SetName("idx_ks_team_detail").SetSparse(true),
		},
	)
	return ensureIndexSet(ctx, db.Collection("kpi_submissions"), models)
}

func ensureAssignmentSubmissions(ctx context.Context, db *mongo.Database) error {
	models := append(submissionIndexes("as"),
		mongo.IndexModel{
			Keys:    bson.D{{Key: "assignment_id", Value: 1}},
			Options: options.Index().SetName("idx_as_assignment"),
		},
	)
	return ensureIndexSet(ctx, db.Collection("assignment_submissions"), models)
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_ts"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_cat_type_ts"),
		},
		{
			Keys:    bson.D{{Key: "entity_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_entity_ts"),
		},
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_actor_ts"),
		},
	})
}
