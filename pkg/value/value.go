// Package value implements the WireScript literal coercion table. The
// parser consults it whenever a property's schema type is boolean, number,
// or string, so that `:gap "16"` and `:gap 16` coerce to the same value.
package value

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the textual form a literal was written in.
type Kind int

const (
	KindSymbol Kind = iota // bare word
	KindString             // quoted string
	KindNumber             // numeric literal
)

// Literal wraps a raw literal and exposes the fixed coercion table.
type Literal struct {
	Kind Kind
	Text string
}

// Symbol wraps a bare-word literal.
func Symbol(text string) Literal { return Literal{Kind: KindSymbol, Text: text} }

// String wraps a quoted-string literal (text is the processed content).
func String(text string) Literal { return Literal{Kind: KindString, Text: text} }

// Number wraps a numeric literal (text is the written form).
func Number(text string) Literal { return Literal{Kind: KindNumber, Text: text} }

// IsBool reports whether the literal is boolean-like: a bare true/t/false/nil
// (case-sensitive), a quoted form of those (case-insensitive) or "1"/"0",
// or any number (zero and nonzero both carry a boolean reading).
func (l Literal) IsBool() bool {
	switch l.Kind {
	case KindSymbol:
		switch l.Text {
		case "true", "t", "false", "nil":
			return true
		}
		return false
	case KindString:
		switch strings.ToLower(l.Text) {
		case "true", "t", "false", "nil", "1", "0":
			return true
		}
		return false
	default:
		return true
	}
}

// AsBool converts the literal to a boolean. Bare true/t map to true and
// false/nil to false; the same words match case-insensitively only in
// quoted-string form (a deliberate Lisp-style asymmetry). "1"/"0" map to
// true/false, and numbers are false exactly when zero.
func (l Literal) AsBool() bool {
	switch l.Kind {
	case KindSymbol:
		switch l.Text {
		case "true", "t":
			return true
		case "false", "nil":
			return false
		}
		return l.parseFloat() != 0
	case KindString:
		switch strings.ToLower(l.Text) {
		case "true", "t", "1":
			return true
		case "false", "nil", "0":
			return false
		}
		return l.parseFloat() != 0
	default:
		return l.parseFloat() != 0
	}
}

// AsInt converts the literal to an integer, truncating toward zero.
func (l Literal) AsInt() int {
	return int(math.Trunc(l.parseFloat()))
}

// AsFloat converts the literal to a float64.
func (l Literal) AsFloat() float64 {
	return l.parseFloat()
}

// AsString returns the text for strings and symbols, and a canonical
// numeric rendering for numbers.
func (l Literal) AsString() string {
	if l.Kind == KindNumber {
		return strconv.FormatFloat(l.parseFloat(), 'g', -1, 64)
	}
	return l.Text
}

// parseFloat parses the textual form as a number; unparsable text is 0.
func (l Literal) parseFloat() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(l.Text), 64)
	if err != nil {
		return 0
	}
	return v
}
