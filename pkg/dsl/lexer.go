package dsl

import (
	"fmt"
	"strings"
	"unicode"
)

type directiveKind int

const (
	kindTable directiveKind = iota
	kindColumn
	kindRef
	kindMemo
)

func (k directiveKind) String() string {
	switch k {
	case kindTable:
		return "TABLE"
	case kindColumn:
		return "COL"
	case kindRef:
		return "REF"
	case kindMemo:
		return "MEMO"
	}
	return "UNKNOWN"
}

var keywords = map[string]directiveKind{
	"TABLE": kindTable,
	"COL":   kindColumn,
	"REF":   kindRef,
	"MEMO":  kindMemo,
}

// token is one word of a directive line. Quoted tokens carry their decoded
// contents without the surrounding quotes.
type token struct {
	text   string
	quoted bool
}

// directive is a classified, tokenized line. tokens excludes the keyword.
type directive struct {
	kind   directiveKind
	line   int
	text   string
	tokens []token
}

// isSkippable reports whether a trimmed line is blank or a comment.
func isSkippable(line string) bool {
	return line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//")
}

// classify turns one raw input line into a directive. ok is false for blank
// and comment lines.
func classify(lineNo int, raw string) (d directive, ok bool, err error) {
	line := strings.TrimSpace(raw)
	if isSkippable(line) {
		return directive{}, false, nil
	}

	d = directive{line: lineNo, text: line}
	tokens, err := tokenize(line)
	if err != nil {
		return directive{}, false, &SyntaxError{Line: lineNo, Text: line, Reason: err.Error()}
	}

	head := tokens[0]
	kind, known := keywords[strings.ToUpper(head.text)]
	if head.quoted || !known {
		return directive{}, false, syntaxErrorf(d, "unknown directive %q", head.text)
	}
	d.kind = kind
	d.tokens = tokens[1:]
	return d, true, nil
}

// tokenize splits a line on whitespace, keeping "..." runs as single quoted
// tokens. Inside quotes \" is a literal quote, \\ a literal backslash and \n
// a line break; any other backslash is kept as is.
func tokenize(line string) ([]token, error) {
	var (
		tokens  []token
		current strings.Builder
		inQuote bool
	)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, token{text: current.String()})
			current.Reset()
		}
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuote && r == '\\' && i+1 < len(runes) && runes[i+1] == '"':
			current.WriteRune('"')
			i++
		case inQuote && r == '\\' && i+1 < len(runes) && runes[i+1] == '\\':
			current.WriteRune('\\')
			i++
		case inQuote && r == '\\' && i+1 < len(runes) && runes[i+1] == 'n':
			current.WriteRune('\n')
			i++
		case inQuote && r == '"':
			tokens = append(tokens, token{text: current.String(), quoted: true})
			current.Reset()
			inQuote = false
		case inQuote:
			current.WriteRune(r)
		case r == '"':
			flush()
			inQuote = true
		case unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quoted string")
	}
	flush()
	return tokens, nil
}

// splitQualified splits "table.column" at the first dot.
func splitQualified(s string) (table, column string, ok bool) {
	table, column, ok = strings.Cut(s, ".")
	if !ok || table == "" || column == "" {
		return "", "", false
	}
	return table, column, true
}
