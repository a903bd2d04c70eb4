package document

import (
	"strings"
	"unicode/utf8"
)

// Clip truncates text to at most max runes, appending an ellipsis when
// anything was cut. Rune-based so multi-byte characters are never split.
func Clip(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + "..."
}

// FirstContentLine returns the first non-empty, non-heading line of a
// markdown section, used for one-line section summaries in chat context.
func FirstContentLine(md string) string {
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return trimmed
	}
	return ""
}

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}
