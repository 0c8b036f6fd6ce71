package formatter

import "strings"

// comment is a standalone source comment: a ';' comment that was the
// only content on its line. Trailing comments after code are dropped.
type comment struct {
	line int
	text string
}

// scanComments walks the raw source once, tracking string state so that
// a ';' inside a string literal is never mistaken for a comment.
// Strings may span lines.
func scanComments(source string) []comment {
	var out []comment
	line := 1
	inString := false
	lineHasCode := false

	for i := 0; i < len(source); {
		ch := source[i]
		switch {
		case ch == '\n':
			line++
			lineHasCode = false
			i++
		case inString:
			if ch == '\\' {
				i++
				if i < len(source) && source[i] == '\n' {
					line++
					lineHasCode = false
				}
				if i < len(source) {
					i++
				}
				continue
			}
			if ch == '"' {
				inString = false
			}
			i++
		case ch == '"':
			inString = true
			lineHasCode = true
			i++
		case ch == ';':
			start := i
			for i < len(source) && source[i] != '\n' {
				i++
			}
			if !lineHasCode {
				out = append(out, comment{line: line, text: strings.TrimRight(source[start:i], " \t")})
			}
		case ch == ' ' || ch == '\t' || ch == '\r':
			i++
		default:
			lineHasCode = true
			i++
		}
	}
	return out
}
