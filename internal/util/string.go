package util

import "unicode/utf8"

// TruncateString cuts s to at most maxRunes runes and marks the cut with "...".
func TruncateString(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	return string([]rune(s)[:maxRunes]) + "..."
}
