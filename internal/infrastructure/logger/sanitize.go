package logger

import (
	"fmt"
	"strings"
)

// SanitizeForLog escapes control characters in a string before it is
// logged. Submitted URLs and extractor output are attacker-controlled, so
// newlines that could forge log entries, tabs, null bytes, ANSI escapes
// and other control characters are escaped while Unicode text (accented
// characters, CJK, emoji) passes through untouched.
func SanitizeForLog(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\n':
			result.WriteString("\\n")
		case '\r':
			result.WriteString("\\r")
		case '\t':
			result.WriteString("\\t")
		case '\x00':
			result.WriteString("\\x00")
		default:
			if r < 32 || r == 127 || r == '\x1b' {
				result.WriteString(fmt.Sprintf("\\x%02x", r))
			} else {
				result.WriteRune(r)
			}
		}
	}
	return result.String()
}
