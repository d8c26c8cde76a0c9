package utils

import (
	"strings"
	"unicode/utf8"
)

// Truncate shortens s to at most max characters (runes), never splitting a
// multi-byte character. A non-positive max returns s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// DefaultIfBlank returns fallback when s is empty or only whitespace.
func DefaultIfBlank(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// FirstNonEmpty returns the first argument that is not empty.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
