// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit is the page size when the client sends none.
const DefaultLimit = 50

// MaxLimit caps client-requested page sizes.
const MaxLimit = 200

// Page is the client's position in a keyset-paginated list.
type Page struct {
	Limit  int
	Before string
	After  string
}

// Parse reads limit, before and after from the query string.
func Parse(r *http.Request) Page {
	p := Page{
		Limit:  DefaultLimit,
		Before: query.Get(r, "before"),
		After:  query.Get(r, "after"),
	}
	if s := query.Get(r, "limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			p.Limit = min(n, MaxLimit)
		}
	}
	return p
}

// Direction indicates which way the client is paging.
type Direction int

const (
	Forward  Direction = iota // toward the end of the list
	Backward                  // toward the start of the list
)

// Keyset is a Page resolved against a sort order.
type Keyset struct {
	Direction Direction
	SortOrder int // Mongo sort value to query with
	Cursor    *wafflemongo.Cursor
	Limit     int
	desc      bool
}

// Keyset resolves p for a list whose natural order is ascending, or
// descending when desc is set (newest first). Before wins over After.
func (p Page) Keyset(desc bool) Keyset {
	ks := Keyset{Direction: Forward, Limit: p.Limit, desc: desc}
	if ks.Limit <= 0 {
		ks.Limit = DefaultLimit
	}
	cur := p.After
	if p.Before != "" {
		ks.Direction = Backward
		cur = p.Before
	}
	if cur != "" {
		if c, ok := wafflemongo.DecodeCursor(cur); ok {
			ks.Cursor = &c
		}
	}
	ks.SortOrder = 1
	if desc != (ks.Direction == Backward) {
		ks.SortOrder = -1
	}
	return ks
}

// Window returns the cursor condition on sortField, or nil on the first page.
func (k Keyset) Window(sortField string) bson.M {
	if k.Cursor == nil {
		return nil
	}
	dir := "gt"
	if k.SortOrder < 0 {
		dir = "lt"
	}
	return wafflemongo.KeysetWindow(sortField, dir, k.Cursor.CI, k.Cursor.ID)
}

// FindOptions sorts on (sortField, _id) and fetches one extra row to detect
// whether another page exists.
func (k Keyset) FindOptions(sortField string) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: sortField, Value: k.SortOrder}, {Key: "_id", Value: k.SortOrder}}).
		SetLimit(int64(k.Limit + 1))
}

// Info describes the returned page to the client.
type Info struct {
	HasPrev    bool   `json:"has_prev"`
	HasNext    bool   `json:"has_next"`
	PrevCursor string `json:"prev_cursor,omitempty"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// Finish trims the look-ahead row, restores display order when paging
// backward, and builds the cursors for neighbouring pages.
func Finish[T any](rows []T, k Keyset, keyFn func(T) string, idFn func(T) primitive.ObjectID) ([]T, Info) {
	var info Info
	more := len(rows) > k.Limit
	if more {
		rows = rows[:k.Limit]
	}
	if k.Direction == Backward {
		Reverse(rows)
		info.HasPrev = more
		info.HasNext = true
	} else {
		info.HasNext = more
		info.HasPrev = k.Cursor != nil
	}
	if len(rows) > 0 {
		first, last := rows[0], rows[len(rows)-1]
		if info.HasPrev {
			info.PrevCursor = wafflemongo.EncodeCursor(keyFn(first), idFn(first))
		}
		if info.HasNext {
			info.NextCursor = wafflemongo.EncodeCursor(keyFn(last), idFn(last))
		}
	}
	return rows, info
}

// Reverse reverses a slice in place.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}
