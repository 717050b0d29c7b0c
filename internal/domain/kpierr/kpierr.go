// internal/domain/kpierr/kpierr.go
package kpierr

import (
	"errors"
	"fmt"
)

// Error kinds. Callers test with errors.Is; handlers map them to HTTP statuses.
var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrInvalidMember        = errors.New("student is not assigned")
	ErrInvalidState         = errors.New("invalid state")
	ErrConflict             = errors.New("concurrent modification")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// Error pairs a kind with the message shown to the operator.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

func newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Validation reports input that fails a precondition.
func Validation(format string, args ...any) error { return newf(ErrValidation, format, args...) }

// NotFound reports a reference to an id missing from the collection.
func NotFound(format string, args ...any) error { return newf(ErrNotFound, format, args...) }

// InvalidMember reports a student id that is not part of the relevant roster.
func InvalidMember(format string, args ...any) error { return newf(ErrInvalidMember, format, args...) }

// InvalidState reports an operation against a record in the wrong state.
func InvalidState(format string, args ...any) error { return newf(ErrInvalidState, format, args...) }

// Conflict reports a lost compare-and-swap against a newer write.
func Conflict(format string, args ...any) error { return newf(ErrConflict, format, args...) }

// ConfirmationRequired reports a destructive change the caller has not acknowledged.
func ConfirmationRequired(format string, args ...any) error {
	return newf(ErrConfirmationRequired, format, args...)
}

// Message returns the user-facing message for err. Errors outside the
// taxonomy return fallback so internal details never leak to clients.
func Message(err error, fallback string) string {
	var ke *Error
	if errors.As(err, &ke) {
		return ke.Error()
	}
	return fallback
}

// IsKnown reports whether err belongs to the taxonomy.
func IsKnown(err error) bool {
	var ke *Error
	return errors.As(err, &ke)
}
