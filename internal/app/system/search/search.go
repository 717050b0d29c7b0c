// internal/app/system/search/search.go
package search

import (
	"regexp"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
)

// Fold normalizes a user query the same way *_ci fields are stored.
// Blank input folds to "".
func Fold(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}
	return text.Fold(q)
}

// Contains matches a folded field containing q anywhere. Regex
// metacharacters in q are matched literally.
func Contains(q string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(Fold(q))}
}

// AnyField builds an $or of Contains over the given *_ci fields, or nil
// when q is blank so callers can skip the clause.
func AnyField(q string, fields ...string) bson.M {
	if Fold(q) == "" || len(fields) == 0 {
		return nil
	}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: Contains(q)})
	}
	if len(or) == 1 {
		return or[0].(bson.M)
	}
	return bson.M{"$or": or}
}

// And combines clauses, dropping nils. Zero clauses yield an empty filter
// and one clause is returned unwrapped.
func And(clauses ...bson.M) bson.M {
	kept := make(bson.A, 0, len(clauses))
	for _, c := range clauses {
		if len(c) > 0 {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return bson.M{}
	case 1:
		return kept[0].(bson.M)
	}
	return bson.M{"$and": kept}
}
