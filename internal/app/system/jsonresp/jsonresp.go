// Package jsonresp writes the API's JSON envelopes and maps domain errors
// onto HTTP statuses.
//
// Success:    {"status_code": 200, "message": "...", "data": ...}
// Failure:    {"status_code": 409, "message": "..."}
// Validation: {"status_code": 400, "message": "...", "errors": {"field": "message"}}
package jsonresp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/system/inputval"
	"github.com/dalemusser/coachhub/internal/domain/kpierr"
	"go.uber.org/zap"
)

// MaxBodyBytes bounds every decoded request body.
const MaxBodyBytes = 1 << 20

// Envelope is the body of every response.
type Envelope struct {
	StatusCode int               `json:"status_code"`
	Message    string            `json:"message,omitempty"`
	Data       any               `json:"data,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func write(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(env.StatusCode)
	_ = json.NewEncoder(w).Encode(env)
}

// Data writes a success envelope carrying data.
func Data(w http.ResponseWriter, status int, message string, data any) {
	write(w, Envelope{StatusCode: status, Message: message, Data: data})
}

// Message writes an envelope with only a message.
func Message(w http.ResponseWriter, status int, message string) {
	write(w, Envelope{StatusCode: status, Message: message})
}

// Validation writes a 400 listing each failed field.
func Validation(w http.ResponseWriter, res *inputval.Result) {
	fields := make(map[string]string, len(res.Errors))
	for _, fe := range res.Errors {
		if _, seen := fields[fe.Field]; !seen {
			fields[fe.Field] = fe.Message
		}
	}
	write(w, Envelope{StatusCode: http.StatusBadRequest, Message: res.First(), Errors: fields})
}

// StatusFor maps err to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, kpierr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, kpierr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, kpierr.ErrInvalidMember):
		return http.StatusUnprocessableEntity
	case errors.Is(err, kpierr.ErrInvalidState),
		errors.Is(err, kpierr.ErrConflict),
		errors.Is(err, kpierr.ErrConfirmationRequired):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Error writes err as an envelope. Domain errors carry their own message;
// anything else is logged and answered with fallback.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, fallback string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError && log != nil {
		log.Error(fallback,
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
	}
	Message(w, status, kpierr.Message(err, fallback))
}

// Decode reads a JSON body into v and runs its validate tags. On failure it
// writes the 400 response itself and returns false.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			Message(w, http.StatusBadRequest, "Request body is required.")
			return false
		}
		Message(w, http.StatusBadRequest, fmt.Sprintf("Malformed JSON: %v", err))
		return false
	}
	if res := inputval.Validate(v); res.HasErrors() {
		Validation(w, res)
		return false
	}
	return true
}
