/*
sanitize.go - Display-string sanitization

PURPOSE:
  Every name or description that reaches a kitchen-tablet screen passes
  through here first: whitespace collapsed, control characters stripped,
  length capped, and the usual injection substrings rejected. Applied at
  every create/update path rather than at render time.
*/
package household

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Length caps for display strings.
const (
	MaxTaskNameLen   = 30
	MaxMemberNameLen = 15
)

var suspiciousPatterns = []string{"<script", "javascript:", "data:", "vbscript:"}

// SanitizeDisplayString normalizes a user-supplied display string.
// Returns a ValidationError when the result is empty, too long, or
// contains injection-looking content.
func SanitizeDisplayString(field, value string, maxLen int) (string, error) {
	// Collapse runs of whitespace and trim.
	sanitized := strings.Join(strings.Fields(value), " ")

	// Strip control characters.
	sanitized = strings.Map(func(r rune) rune {
		if r < 32 || unicode.Is(unicode.Cc, r) {
			return -1
		}
		return r
	}, sanitized)

	if sanitized == "" {
		return "", &ValidationError{Field: field, Message: field + " cannot be empty"}
	}
	// Length caps are in characters, not bytes.
	if utf8.RuneCountInString(sanitized) > maxLen {
		return "", &ValidationError{Field: field, Message: field + " is too long"}
	}

	lower := strings.ToLower(sanitized)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(lower, pattern) {
			return "", &ValidationError{Field: field, Message: field + " contains invalid content"}
		}
	}

	return sanitized, nil
}
