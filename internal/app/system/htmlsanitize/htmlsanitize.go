// Package htmlsanitize cleans free text coming from operators and students
// (descriptions, review feedback, submission notes) before it is stored.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText removes every tag and returns trimmed text. Entities that
// bluemonday escapes are decoded again, so "a & b" round-trips unchanged
// and clients can escape on render.
func PlainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains nothing that looks like markup.
func IsPlainText(s string) bool {
	return !strings.ContainsRune(s, '<')
}
