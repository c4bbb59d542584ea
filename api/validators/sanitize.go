package validators

import "strings"

// SanitizeString trims surrounding whitespace and caps the value at
// maxLen runes so operator-entered text fits its column width.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 {
		return trimmed
	}
	if runes := []rune(trimmed); len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return trimmed
}
