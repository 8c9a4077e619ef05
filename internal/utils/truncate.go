package utils

import "strings"

const ellipsis = "…"

// TruncateForLog makes a one-line preview of s: runs of whitespace become a
// single space and the result is cut to limit runes.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + ellipsis
}
