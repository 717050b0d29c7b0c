// internal/app/store/programkpis/programkpistore.go
package programkpistore

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	kpitemplatestore "github.com/dalemusser/coachhub/internal/app/store/kpitemplates"
	"github.com/dalemusser/coachhub/internal/app/system/txn"
	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Store struct {
	db        *mongo.Database
	c         *mongo.Collection
	templates *kpitemplatestore.Store
	log       *zap.Logger
}

func New(db *mongo.Database) *Store {
	return &Store{
		db:        db,
		log:       zap.L(),
		c:         db.Collection("program_kpis"),
		templates: kpitemplatestore.New(db),
	}
}

// ListByProgram returns a program's KPIs in the order they were assigned.
func (s *Store) ListByProgram(ctx context.Context, programID primitive.ObjectID) ([]models.ProgramKPI, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"program_id": programID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.ProgramKPI{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.ProgramKPI, error) {
	var pk models.ProgramKPI
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&pk); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ProgramKPI{}, kpierr.NotFound("program KPI %s not found", id.Hex())
		}
		return models.ProgramKPI{}, err
	}
	return pk, nil
}

// BoundTemplateIDs returns the templates already assigned to the program.
func (s *Store) BoundTemplateIDs(ctx context.Context, programID primitive.ObjectID) ([]primitive.ObjectID, error) {
	raw, err := s.c.Distinct(ctx, "kpi_template_id", bson.M{"program_id": programID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ListSelectable returns the active templates not yet bound to the program,
// filtered by a case-insensitive substring of name or description.
func (s *Store) ListSelectable(ctx context.Context, programID primitive.ObjectID, q string) ([]models.KPITemplate, error) {
	bound, err := s.BoundTemplateIDs(ctx, programID)
	if err != nil {
		return nil, err
	}
	active := true
	return s.templates.ListAll(ctx, kpitemplatestore.ListFilter{
		Query:      q,
		Active:     &active,
		ExcludeIDs: bound,
	})
}

// AssignItem configures one selected template for a program.
type AssignItem struct {
	KPITemplateID     primitive.ObjectID
	TargetValue       float64
	VisualizationType string
	IsRequired        bool
}

// AssignBatch binds every item's template to the program, or none of them.
//
// Items with a non-positive target or an unknown visualization type fail
// the batch with one ValidationError naming each offending KPI. Templates
// that are missing, inactive, repeated or already bound fail it with
// InvalidState. Nothing is written unless every item passes, and the
// insert itself runs in a transaction where the server supports one.
func (s *Store) AssignBatch(ctx context.Context, program models.Program, items []AssignItem) ([]models.ProgramKPI, error) {
	if len(items) == 0 {
		return nil, kpierr.Validation("select at least one KPI")
	}

	ids := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.KPITemplateID)
	}
	tpls, err := s.templates.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	label := func(id primitive.ObjectID) string {
		if t, ok := tpls[id]; ok {
			return t.Name
		}
		return id.Hex()
	}

	var badTarget, badViz []string
	for _, it := range items {
		if it.TargetValue <= 0 || math.IsNaN(it.TargetValue) || math.IsInf(it.TargetValue, 0) {
			badTarget = append(badTarget, label(it.KPITemplateID))
		}
		if !models.Contains(models.VisualizationTypes, it.VisualizationType) {
			badViz = append(badViz, label(it.KPITemplateID))
		}
	}
	switch {
	case len(badTarget) > 0 && len(badViz) > 0:
		return nil, kpierr.Validation("target value must be greater than 0 for: %s; visualization type must be one of %s for: %s",
			strings.Join(badTarget, ", "), strings.Join(models.VisualizationTypes, ", "), strings.Join(badViz, ", "))
	case len(badTarget) > 0:
		return nil, kpierr.Validation("target value must be greater than 0 for: %s", strings.Join(badTarget, ", "))
	case len(badViz) > 0:
		return nil, kpierr.Validation("visualization type must be one of %s for: %s",
			strings.Join(models.VisualizationTypes, ", "), strings.Join(badViz, ", "))
	}

	bound, err := s.BoundTemplateIDs(ctx, program.ID)
	if err != nil {
		return nil, err
	}
	seen := make(map[primitive.ObjectID]bool, len(bound)+len(items))
	for _, id := range bound {
		seen[id] = true
	}
	for _, it := range items {
		t, ok := tpls[it.KPITemplateID]
		switch {
		case !ok:
			return nil, kpierr.InvalidState("KPI template %s no longer exists", it.KPITemplateID.Hex())
		case !t.IsActive:
			return nil, kpierr.InvalidState("KPI template %q is inactive", t.Name)
		case seen[t.ID]:
			return nil, kpierr.InvalidState("KPI template %q is already assigned to %q", t.Name, program.Name)
		}
		seen[t.ID] = true
	}

	now := time.Now().UTC()
	out := make([]models.ProgramKPI, 0, len(items))
	docs := make([]interface{}, 0, len(items))
	newIDs := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		t := tpls[it.KPITemplateID]
		pk := models.ProgramKPI{
			ID:                primitive.NewObjectID(),
			ProgramID:         program.ID,
			ProgramName:       program.Name,
			KPITemplateID:     t.ID,
			KPIName:           t.Name,
			TargetValue:       it.TargetValue,
			Unit:              t.Unit,
			IsRequired:        it.IsRequired,
			VisualizationType: it.VisualizationType,
			CreatedAt:         now,
		}
		out = append(out, pk)
		docs = append(docs, pk)
		newIDs = append(newIDs, pk.ID)
	}
	if err := s.insertAll(ctx, docs, newIDs); err != nil {
		return nil, err
	}
	return out, nil
}

// insertAll writes docs in one transaction. Without transactions, a batch
// that fails part way has its already-written prefix deleted again.
func (s *Store) insertAll(ctx context.Context, docs []interface{}, ids []primitive.ObjectID) error {
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		_, err := s.c.InsertMany(ctx, docs)
		if err == nil || txn.InTransaction(ctx) {
			return err
		}
		written := len(ids)
		var bwe mongo.BulkWriteException
		if errors.As(err, &bwe) {
			for _, we := range bwe.WriteErrors {
				if we.Index < written {
					written = we.Index
				}
			}
		}
		if written > 0 {
			if _, derr := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids[:written]}}); derr != nil {
				s.log.Error("could not remove partial program KPI batch",
					zap.Int("written", written), zap.NamedError("cause", err), zap.Error(derr))
			}
		}
		return err
	})
}

// Delete unbinds one KPI from its program. Submissions keep their snapshot.
func (s *Store) Delete(ctx context.Context, programID, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "program_id": programID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return kpierr.NotFound("program KPI %s not found", id.Hex())
	}
	return nil
}
