package dsl

import "fmt"

// SyntaxError reports a DSL line that could not be parsed or resolved.
type SyntaxError struct {
	// Line is the 1-based line number in the input.
	Line int
	// Text is the offending line, trimmed.
	Text string
	// Reason describes what is wrong with the line.
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Reason, e.Text)
}

func syntaxErrorf(d directive, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: d.line, Text: d.text, Reason: fmt.Sprintf(format, args...)}
}
