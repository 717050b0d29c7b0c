// Package goalqueries lists team KPI goals with their computed progress.
package goalqueries

import (
	"context"

	"github.com/dalemusser/coachhub/internal/app/system/paging"
	"github.com/dalemusser/coachhub/internal/app/system/search"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/domain/progress"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SortField orders goal lists: latest start date first.
const SortField = "start_date"

// Filter narrows a goal list. Zero fields match everything.
type Filter struct {
	ProgramID *primitive.ObjectID
	TeamID    *primitive.ObjectID
	Status    string
	Search    string // goal name substring
}

// BuildFilter builds the team_kpi_goals match for f.
func BuildFilter(f Filter) bson.M {
	var cl []bson.M
	if f.ProgramID != nil {
		cl = append(cl, bson.M{"program_id": *f.ProgramID})
	}
	if f.TeamID != nil {
		cl = append(cl, bson.M{"team_id": *f.TeamID})
	}
	if f.Status != "" {
		cl = append(cl, bson.M{"status": f.Status})
	}
	cl = append(cl, search.AnyField(f.Search, "goal_name_ci"))
	return search.And(cl...)
}

// Row is a goal with its derived progress.
type Row struct {
	models.TeamKPIGoal `bson:",inline"`

	Progress    int `bson:"-" json:"progress"`
	DetailCount int `bson:"-" json:"detail_count"`
}

// Summary is the detail-derived part of a Row.
type Summary struct {
	Progress    int
	DetailCount int
}

// Summaries reads the total_progress of every detail under goalIDs in one
// aggregation and reduces them to per-goal progress. Goals without details
// are absent from the map; their progress is 0.
func Summaries(ctx context.Context, db *mongo.Database, goalIDs []primitive.ObjectID) (map[primitive.ObjectID]Summary, error) {
	out := make(map[primitive.ObjectID]Summary, len(goalIDs))
	if len(goalIDs) == 0 {
		return out, nil
	}
	pipe := []bson.M{
		{"$match": bson.M{"team_goal_id": bson.M{"$in": goalIDs}}},
		{"$group": bson.M{
			"_id":    "$team_goal_id",
			"totals": bson.M{"$push": "$total_progress"},
		}},
	}
	cur, err := db.Collection("team_kpi_details").Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var row struct {
			ID     primitive.ObjectID `bson:"_id"`
			Totals []int              `bson:"totals"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.ID] = Summary{Progress: progress.MeanOf(row.Totals), DetailCount: len(row.Totals)}
	}
	return out, cur.Err()
}

// List returns one page of goals, latest start date first, each with its
// progress and detail count.
func List(ctx context.Context, db *mongo.Database, f Filter, page paging.Page) ([]Row, paging.Info, error) {
	ks := page.Keyset(true)
	match := BuildFilter(f)
	if w := ks.Window(SortField); w != nil {
		match = search.And(match, w)
	}
	cur, err := db.Collection("team_kpi_goals").Find(ctx, match, ks.FindOptions(SortField))
	if err != nil {
		return nil, paging.Info{}, err
	}
	defer cur.Close(ctx)

	rows := []Row{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, paging.Info{}, err
	}
	rows, info := paging.Finish(rows, ks,
		func(r Row) string { return r.StartDate },
		func(r Row) primitive.ObjectID { return r.ID })

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	sums, err := Summaries(ctx, db, ids)
	if err != nil {
		return nil, paging.Info{}, err
	}
	for i := range rows {
		s := sums[rows[i].ID]
		rows[i].Progress = s.Progress
		rows[i].DetailCount = s.DetailCount
	}
	return rows, info, nil
}

// Get returns one goal with its progress.
func Get(ctx context.Context, db *mongo.Database, goal models.TeamKPIGoal) (Row, error) {
	sums, err := Summaries(ctx, db, []primitive.ObjectID{goal.ID})
	if err != nil {
		return Row{}, err
	}
	s := sums[goal.ID]
	return Row{TeamKPIGoal: goal, Progress: s.Progress, DetailCount: s.DetailCount}, nil
}
