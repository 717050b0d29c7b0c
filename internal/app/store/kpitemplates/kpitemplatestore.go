// internal/app/store/kpitemplates/kpitemplatestore.go
package kpitemplatestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/coachhub/internal/app/system/paging"
	"github.com/dalemusser/coachhub/internal/app/system/search"
	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("kpi_templates")}
}

func notFound(id primitive.ObjectID) error {
	return kpierr.NotFound("KPI template %s not found", id.Hex())
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.KPITemplate, error) {
	var t models.KPITemplate
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.KPITemplate{}, notFound(id)
		}
		return models.KPITemplate{}, err
	}
	return t, nil
}

// GetMany returns the templates with the given ids keyed by id. Missing ids
// are simply absent from the map.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.KPITemplate, error) {
	out := make(map[primitive.ObjectID]models.KPITemplate, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var t models.KPITemplate
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		out[t.ID] = t
	}
	return out, cur.Err()
}

// Create inserts t with a new id, folded search keys and timestamps.
// Language defaults to models.DefaultLanguage.
func (s *Store) Create(ctx context.Context, t models.KPITemplate) (models.KPITemplate, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.NameCI = text.Fold(t.Name)
	t.DescriptionCI = text.Fold(t.Description)
	if t.Language == "" {
		t.Language = models.DefaultLanguage
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.KPITemplate{}, err
	}
	return t, nil
}

// Update replaces the editable fields and returns the stored result.
// Existing ProgramKPIs keep their snapshot of the old name and unit.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, t models.KPITemplate) (models.KPITemplate, error) {
	if t.Language == "" {
		t.Language = models.DefaultLanguage
	}
	set := bson.M{
		"name":           t.Name,
		"name_ci":        text.Fold(t.Name),
		"description":    t.Description,
		"description_ci": text.Fold(t.Description),
		"unit":           t.Unit,
		"language":       t.Language,
		"is_active":      t.IsActive,
		"updated_at":     time.Now().UTC(),
	}
	var out models.KPITemplate
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.KPITemplate{}, notFound(id)
	}
	return out, err
}

// Delete removes a template. Nothing referencing it is touched.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListFilter narrows List.
type ListFilter struct {
	Query      string              // substring of name or description
	Active     *bool               // nil means both
	ExcludeIDs []primitive.ObjectID // templates to leave out
}

func (f ListFilter) clauses() []bson.M {
	var cl []bson.M
	if f.Active != nil {
		cl = append(cl, bson.M{"is_active": *f.Active})
	}
	if len(f.ExcludeIDs) > 0 {
		cl = append(cl, bson.M{"_id": bson.M{"$nin": f.ExcludeIDs}})
	}
	if q := search.AnyField(f.Query, "name_ci", "description_ci"); q != nil {
		cl = append(cl, q)
	}
	return cl
}

// List returns one page of templates ordered by name.
func (s *Store) List(ctx context.Context, f ListFilter, ks paging.Keyset) ([]models.KPITemplate, paging.Info, error) {
	cl := f.clauses()
	if w := ks.Window("name_ci"); w != nil {
		cl = append(cl, w)
	}
	cur, err := s.c.Find(ctx, search.And(cl...), ks.FindOptions("name_ci"))
	if err != nil {
		return nil, paging.Info{}, err
	}
	defer cur.Close(ctx)

	rows := []models.KPITemplate{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, paging.Info{}, err
	}
	rows, info := paging.Finish(rows, ks,
		func(t models.KPITemplate) string { return t.NameCI },
		func(t models.KPITemplate) primitive.ObjectID { return t.ID })
	return rows, info, nil
}

// ListAll returns every template matching f ordered by name, unpaged.
// The selection step uses it: the candidate list is small.
func (s *Store) ListAll(ctx context.Context, f ListFilter) ([]models.KPITemplate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, search.And(f.clauses()...), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	rows := []models.KPITemplate{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
