// Package submissionqueries provides the read-only review-queue queries for
// KPI and assignment submissions.
package submissionqueries

import (
	"context"

	"github.com/dalemusser/coachhub/internal/app/system/paging"
	"github.com/dalemusser/coachhub/internal/app/system/search"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SortField orders every submission list: newest submit date first, ties by
// _id descending.
const SortField = "submit_date"

// Filter narrows a submission list. Zero fields match everything.
type Filter struct {
	ProgramID *primitive.ObjectID
	TeamID    *primitive.ObjectID
	StudentID *primitive.ObjectID
	Status    string // pending, approved or rejected
	Type      string // required or team; KPI submissions only
	Week      *int   // KPI submissions only
	Search    string // student name or KPI/assignment title substring
}

func baseClauses(f Filter) []bson.M {
	var cl []bson.M
	if f.ProgramID != nil {
		cl = append(cl, bson.M{"program_id": *f.ProgramID})
	}
	if f.TeamID != nil {
		cl = append(cl, bson.M{"team_id": *f.TeamID})
	}
	if f.StudentID != nil {
		cl = append(cl, bson.M{"student_id": *f.StudentID})
	}
	if f.Status != "" {
		cl = append(cl, bson.M{"status": f.Status})
	}
	return cl
}

// KPIFilter builds the kpi_submissions match for f.
func KPIFilter(f Filter) bson.M {
	cl := baseClauses(f)
	if f.Type != "" {
		cl = append(cl, bson.M{"type": f.Type})
	}
	if f.Week != nil {
		cl = append(cl, bson.M{"week": *f.Week})
	}
	cl = append(cl, search.AnyField(f.Search, "student_name_ci", "kpi_name_ci"))
	return search.And(cl...)
}

// AssignmentFilter builds the assignment_submissions match for f. Type and
// Week do not apply to assignments and are ignored.
func AssignmentFilter(f Filter) bson.M {
	cl := baseClauses(f)
	cl = append(cl, search.AnyField(f.Search, "student_name_ci", "assignment_title_ci"))
	return search.And(cl...)
}

func list[T any](ctx context.Context, c *mongo.Collection, match bson.M, ks paging.Keyset, key func(T) (string, primitive.ObjectID)) ([]T, paging.Info, error) {
	if w := ks.Window(SortField); w != nil {
		match = search.And(match, w)
	}
	cur, err := c.Find(ctx, match, ks.FindOptions(SortField))
	if err != nil {
		return nil, paging.Info{}, err
	}
	defer cur.Close(ctx)

	rows := []T{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, paging.Info{}, err
	}
	sortKey := func(r T) string {
		k, _ := key(r)
		return k
	}
	idOf := func(r T) primitive.ObjectID {
		_, id := key(r)
		return id
	}
	rows, info := paging.Finish(rows, ks, sortKey, idOf)
	return rows, info, nil
}

// ListKPI returns one page of KPI submissions, newest first.
func ListKPI(ctx context.Context, db *mongo.Database, f Filter, page paging.Page) ([]models.KPISubmission, paging.Info, error) {
	return list(ctx, db.Collection("kpi_submissions"), KPIFilter(f), page.Keyset(true),
		func(s models.KPISubmission) (string, primitive.ObjectID) { return s.SubmitDate, s.ID })
}

// ListAssignments returns one page of assignment submissions, newest first.
func ListAssignments(ctx context.Context, db *mongo.Database, f Filter, page paging.Page) ([]models.AssignmentSubmission, paging.Info, error) {
	return list(ctx, db.Collection("assignment_submissions"), AssignmentFilter(f), page.Keyset(true),
		func(s models.AssignmentSubmission) (string, primitive.ObjectID) { return s.SubmitDate, s.ID })
}

// PendingCounts is the dashboard badge data.
type PendingCounts struct {
	KPIRequired int64 `json:"kpi_required"`
	KPITeam     int64 `json:"kpi_team"`
	KPI         int64 `json:"kpi"`
	Assignment  int64 `json:"assignment"`
	Total       int64 `json:"total"`
}

// CountPending counts pending submissions of each kind within f's program,
// team and student scope. f.Status, f.Type, f.Week and f.Search are ignored.
func CountPending(ctx context.Context, db *mongo.Database, f Filter) (PendingCounts, error) {
	scope := Filter{ProgramID: f.ProgramID, TeamID: f.TeamID, StudentID: f.StudentID, Status: models.ReviewPending}
	var out PendingCounts

	pipe := []bson.M{
		{"$match": KPIFilter(scope)},
		{"$group": bson.M{"_id": "$type", "count": bson.M{"$sum": 1}}},
	}
	cur, err := db.Collection("kpi_submissions").Aggregate(ctx, pipe)
	if err != nil {
		return out, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var row struct {
			Type  string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return out, err
		}
		switch row.Type {
		case models.KPISubmissionRequired:
			out.KPIRequired = row.Count
		case models.KPISubmissionTeam:
			out.KPITeam = row.Count
		}
		out.KPI += row.Count
	}
	if err := cur.Err(); err != nil {
		return out, err
	}

	out.Assignment, err = db.Collection("assignment_submissions").CountDocuments(ctx, AssignmentFilter(scope))
	if err != nil {
		return out, err
	}
	out.Total = out.KPI + out.Assignment
	return out, nil
}
