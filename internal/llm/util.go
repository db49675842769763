// Package llm - util.go provides shared helpers for preparing model input.
package llm

import "strings"

// TruncateText trims s and cuts it to at most limit runes. A non-positive
// limit disables truncation.
func TruncateText(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
