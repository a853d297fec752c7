// Package sanitizer cleans raw form input before it is validated.
// Values are otherwise kept as typed: validation rules decide what
// surrounding whitespace means.
package sanitizer

import (
	"strings"
	"unicode"
)

// Line drops control characters, which a single-line input never carries.
func Line(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// Email is Line with surrounding whitespace trimmed, for addresses carried
// in URLs and hidden inputs.
func Email(s string) string {
	return strings.TrimSpace(Line(s))
}

// MaxLength truncates s to at most n runes.
func MaxLength(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
