package formatter

import (
	"github.com/wirekit/wirescript/pkg/lexer"
	"github.com/wirekit/wirescript/pkg/schema"
)

// frame is one entry on the balancer's stack of open forms. Parenthesis
// groups that do not open a named form (parameter lists) are pushed
// unnamed and are exempt from schema placement rules.
type frame struct {
	name  string
	named bool
}

// balance repairs a token stream so that every opened form is closed,
// using only static schema metadata to decide where closers belong. It
// never fails: structurally broken input comes out structurally valid.
// Synthesized closers carry a zero span.
func balance(tokens []lexer.Token) []lexer.Token {
	var stack []frame
	out := make([]lexer.Token, 0, len(tokens))

	closer := lexer.Token{Type: lexer.TokRParen, Value: ")"}

	pop := func() {
		out = append(out, closer)
		stack = stack[:len(stack)-1]
	}
	hasFrame := func(name string) bool {
		for _, f := range stack {
			if f.named && f.name == name {
				return true
			}
		}
		return false
	}
	top := func() (frame, bool) {
		if len(stack) == 0 {
			return frame{}, false
		}
		return stack[len(stack)-1], true
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.Type {
		case lexer.TokLParen:
			name := ""
			if i+1 < len(tokens) && tokens[i+1].Type == lexer.TokSymbol {
				name = tokens[i+1].Value
			}

			// Top-level-only forms pop everything back to the document
			// root; overlay forms pop back to the nearest screen.
			if name != "" && schema.IsTopLevelOnly(name) && len(stack) > 0 {
				if hasFrame("wire") {
					for t, _ := top(); !(t.named && t.name == "wire"); t, _ = top() {
						pop()
					}
				} else {
					for len(stack) > 0 {
						pop()
					}
				}
			} else if name != "" && schema.IsOverlayKind(name) && hasFrame("screen") {
				for t, _ := top(); !(t.named && t.name == "screen"); t, _ = top() {
					pop()
				}
			}

			// A leaf parent cannot hold this form; close it first. This
			// mirrors the parser's no-children condition exactly, or formatted
			// output would not round-trip.
			if t, ok := top(); ok && t.named && isLeaf(t.name) {
				pop()
			}

			stack = append(stack, frame{name: name, named: name != ""})
			out = append(out, tok)

		case lexer.TokRParen:
			if len(stack) == 0 {
				// Stray closer with nothing open: drop it.
				continue
			}
			stack = stack[:len(stack)-1]
			out = append(out, tok)

		case lexer.TokEOF:
			for len(stack) > 0 {
				pop()
			}
			out = append(out, tok)

		default:
			out = append(out, tok)
		}
	}
	return out
}

// isLeaf reports whether a form name is schema-classified as having no
// children. Structural containers, overlay kinds, and unknown names all
// allow children.
func isLeaf(name string) bool {
	if schema.IsStructural(name) || schema.IsOverlayKind(name) {
		return false
	}
	sch, known := schema.Lookup(name)
	return known && !sch.AcceptsChildren
}
