// internal/domain/models/dates.go
package models

import "time"

// DateLayout is the wire and storage format for calendar dates (start, end, due, submit).
const DateLayout = "2006-01-02"

// Today returns the current UTC calendar date as YYYY-MM-DD.
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}
