package moderation

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\w\s]+`)

// Sanitize lowercases text, strips every character that is not
// alphanumeric, underscore, or whitespace, and trims surrounding
// whitespace. Idempotent; may return an empty string, which callers
// treat as "no content to analyze".
func Sanitize(text string) string {
	return strings.TrimSpace(nonWord.ReplaceAllString(strings.ToLower(text), ""))
}
