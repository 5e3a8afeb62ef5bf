package validators

import (
	"strings"
	"unicode/utf8"
)

// SanitizeString trims input and caps it at maxLen characters, the unit the
// validator's max tag counts. Invalid UTF-8 bytes are dropped.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(strings.ToValidUTF8(input, ""))
	if maxLen <= 0 || utf8.RuneCountInString(trimmed) <= maxLen {
		return trimmed
	}
	cut, n := 0, 0
	for i := range trimmed {
		if n == maxLen {
			cut = i
			break
		}
		n++
	}
	return strings.TrimSpace(trimmed[:cut])
}
