// internal/app/features/shared/shared.go
package shared

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/coachhub/internal/app/system/auditlog"
	"github.com/dalemusser/coachhub/internal/app/system/jsonresp"
	"github.com/dalemusser/coachhub/internal/app/system/metrics"
	"github.com/dalemusser/coachhub/internal/app/system/notify"
	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Deps is the dependency set every feature handler is built from. Audit and
// Metrics may be nil; Notify and Log default to no-ops.
type Deps struct {
	DB      *mongo.Database
	Log     *zap.Logger
	Audit   *auditlog.Logger
	Metrics *metrics.Metrics
	Notify  notify.Sink
}

// WithDefaults fills the optional dependencies.
func (d Deps) WithDefaults() Deps {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Notify == nil {
		d.Notify = notify.Nop{}
	}
	return d
}

// OK notifies the operator of a completed action and writes the success
// envelope with the same message.
func (d Deps) OK(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	d.Notify.Notify(r.Context(), notify.Success, message)
	jsonresp.Data(w, status, message, data)
}

// Fail writes err as an error envelope. Domain errors are also sent to the
// notification sink; unexpected ones are logged and answered with fallback.
func (d Deps) Fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if kpierr.IsKnown(err) {
		d.Notify.Notify(r.Context(), notify.Error, kpierr.Message(err, fallback))
	}
	jsonresp.Error(w, r, d.Log, err, fallback)
}

// PathID parses the URL parameter name as an ObjectID. A malformed id is
// answered with 400 and ok=false.
func PathID(w http.ResponseWriter, r *http.Request, name, label string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil {
		jsonresp.Message(w, http.StatusBadRequest, label+" is not a valid id.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// QueryID parses an optional ObjectID query parameter. It returns nil when
// the parameter is absent and answers 400 when it is malformed.
func QueryID(w http.ResponseWriter, r *http.Request, name, label string) (*primitive.ObjectID, bool) {
	raw := query.Get(r, name)
	if raw == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		jsonresp.Message(w, http.StatusBadRequest, label+" is not a valid id.")
		return nil, false
	}
	return &id, true
}

// QueryInt parses an optional integer query parameter.
func QueryInt(w http.ResponseWriter, r *http.Request, name, label string) (*int, bool) {
	raw := query.Get(r, name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		jsonresp.Message(w, http.StatusBadRequest, label+" must be a whole number.")
		return nil, false
	}
	return &n, true
}

// QueryBool parses an optional true/false query parameter.
func QueryBool(w http.ResponseWriter, r *http.Request, name, label string) (*bool, bool) {
	raw := query.Get(r, name)
	if raw == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		jsonresp.Message(w, http.StatusBadRequest, label+" must be true or false.")
		return nil, false
	}
	return &b, true
}

// QueryOneOf reads an optional query parameter restricted to allowed.
func QueryOneOf(w http.ResponseWriter, r *http.Request, name, label string, allowed []string) (string, bool) {
	raw := query.Get(r, name)
	if raw == "" {
		return "", true
	}
	for _, a := range allowed {
		if raw == a {
			return raw, true
		}
	}
	jsonresp.Message(w, http.StatusBadRequest, label+" must be one of: "+strings.Join(allowed, ", ")+".")
	return "", false
}

// MustID converts a hex id that already passed the objectid rule.
func MustID(hex string) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	return id
}

// MustIDs converts hex ids that already passed the objectid rule.
func MustIDs(hexes []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		out = append(out, MustID(h))
	}
	return out
}
