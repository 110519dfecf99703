package service

import "strings"

// pathDangerousChars are replaced when a resolved series name or filename
// is used as a single path component. Extractor metadata is remote input;
// a separator inside a series title must not escape the library tree.
var pathDangerousChars = map[rune]bool{
	'/':  true,
	'\\': true,
	':':  true,
	'\n': true,
	'\r': true,
}

// safePathComponent sanitizes one path component. Unicode is preserved;
// separators and control characters become underscores; empty or
// underscore-only results fall back to "unknown".
func safePathComponent(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))

	for _, r := range name {
		if r < 32 || r == 127 || pathDangerousChars[r] {
			sb.WriteRune('_')
		} else {
			sb.WriteRune(r)
		}
	}

	result := strings.TrimSpace(sb.String())
	if result == "" || strings.Trim(result, "_") == "" {
		return "unknown"
	}
	if result == "." || result == ".." {
		return "unknown"
	}
	return result
}
