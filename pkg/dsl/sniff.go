package dsl

import (
	"strings"
	"unicode"
)

// IsDSL reports whether the first non-comment line of text starts with a DSL
// keyword followed by whitespace.
func IsDSL(text string) bool {
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if isSkippable(line) {
			continue
		}
		i := strings.IndexFunc(line, unicode.IsSpace)
		if i < 0 {
			return false
		}
		_, ok := keywords[strings.ToUpper(line[:i])]
		return ok
	}
	return false
}

// IsJSON reports whether text looks like a JSON object or array.
func IsJSON(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}
