// Package lexer implements the WireScript tokenizer.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wirekit/wirescript/pkg/ast"
	"github.com/wirekit/wirescript/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	TokLParen   TokenType = iota // (
	TokRParen                    // )
	TokSymbol                    // bare word
	TokKeyword                   // :name (Value holds name without the colon)
	TokString                    // "..." (Value holds the processed text)
	TokNumber                    // 42, -3.5 (Value holds the literal text)
	TokHashRef                   // #id (Value holds id without the hash)
	TokParamRef                  // $name (Value holds name without the dollar)
	TokEOF
)

// Token represents a single lexer token. Tokens are immutable once produced.
type Token struct {
	Type  TokenType
	Value string
	Span  ast.Span
}

// LexError wraps a diagnostic for lexical errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

type scanner struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) span(startLine, startCol int) ast.Span {
	return ast.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func (s *scanner) lexError(line, col int, msg string) error {
	return &LexError{Diag: diagnostics.At(diagnostics.ELex, msg, s.filename, line, col)}
}

func (s *scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		ch := s.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			s.advance()
		} else if ch == ';' {
			// Skip comment to end of line. Comments never produce tokens;
			// the formatter re-extracts them from the raw source.
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			break
		}
	}
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isSymbolChar(ch byte) bool {
	return isAlpha(ch) || isDigit(ch) || ch == '-' || ch == '_'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func hexValue(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	default:
		return int(ch-'A') + 10
	}
}

// readHex consumes exactly n hex digits and returns their value. The error
// points at the first offending character.
func (s *scanner) readHex(n int) (int, error) {
	v := 0
	for i := 0; i < n; i++ {
		if s.atEnd() || !isHexDigit(s.peek()) {
			return 0, s.lexError(s.line, s.col, "Invalid hex digit")
		}
		v = v*16 + hexValue(s.advance())
	}
	return v, nil
}

func (s *scanner) scanString() (Token, error) {
	startLine, startCol := s.line, s.col
	s.advance() // consume opening "

	var buf strings.Builder
	for {
		if s.atEnd() {
			return Token{}, s.lexError(startLine, startCol, "Unterminated string")
		}
		ch := s.peek()
		if ch == '"' {
			s.advance() // consume closing "
			return Token{
				Type:  TokString,
				Value: buf.String(),
				Span:  s.span(startLine, startCol),
			}, nil
		}
		if ch == '\\' {
			s.advance() // consume backslash
			if s.atEnd() {
				return Token{}, s.lexError(startLine, startCol, "Unterminated escape sequence")
			}
			esc := s.advance()
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			case 'r':
				buf.WriteByte('\r')
			case '"':
				buf.WriteByte('"')
			case '\\':
				buf.WriteByte('\\')
			case 'x':
				// \xHH, exactly two hex digits
				v, err := s.readHex(2)
				if err != nil {
					return Token{}, err
				}
				buf.WriteByte(byte(v))
			case 'u':
				r, err := s.scanUnicodeEscape()
				if err != nil {
					return Token{}, err
				}
				buf.WriteRune(r)
			default:
				return Token{}, s.lexError(s.line, s.col-1, fmt.Sprintf("Invalid escape sequence '\\%c'", esc))
			}
			continue
		}
		// Strings may span lines; spans must stay correct either way.
		r, size := utf8.DecodeRuneInString(s.source[s.pos:])
		if r == utf8.RuneError && size == 1 {
			return Token{}, s.lexError(s.line, s.col, "Invalid UTF-8 character in string")
		}
		buf.WriteRune(r)
		for i := 0; i < size; i++ {
			s.advance()
		}
	}
}

// scanUnicodeEscape handles the part after "\u": either exactly four hex
// digits or a braced form {H..H} with one to six digits.
func (s *scanner) scanUnicodeEscape() (rune, error) {
	if s.peek() == '{' {
		s.advance() // consume '{'
		digits := 0
		v := 0
		for !s.atEnd() && isHexDigit(s.peek()) {
			v = v*16 + hexValue(s.advance())
			digits++
		}
		if digits == 0 || digits > 6 {
			return 0, s.lexError(s.line, s.col, "Invalid unicode escape")
		}
		if s.atEnd() || s.peek() != '}' {
			return 0, s.lexError(s.line, s.col, "Invalid unicode escape")
		}
		s.advance() // consume '}'
		if v > 0x10FFFF {
			return 0, s.lexError(s.line, s.col, "Code point out of range")
		}
		if isSurrogate(v) {
			return 0, s.lexError(s.line, s.col, "Invalid code point")
		}
		return rune(v), nil
	}
	v, err := s.readHex(4)
	if err != nil {
		return 0, err
	}
	// Surrogate halves are not valid code points; WriteRune would
	// silently replace them with U+FFFD.
	if isSurrogate(v) {
		return 0, s.lexError(s.line, s.col, "Invalid code point")
	}
	return rune(v), nil
}

func isSurrogate(v int) bool {
	return v >= 0xD800 && v <= 0xDFFF
}

func (s *scanner) scanNumber() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	if s.peek() == '-' {
		s.advance()
	}
	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}
	// A decimal point is only consumed when a digit follows; a trailing
	// bare '.' is left behind and surfaces as an unexpected character.
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance()
		for !s.atEnd() && isDigit(s.peek()) {
			s.advance()
		}
	}

	return Token{
		Type:  TokNumber,
		Value: s.source[startPos:s.pos],
		Span:  s.span(startLine, startCol),
	}
}

func (s *scanner) scanSymbol() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isSymbolChar(s.peek()) {
		s.advance()
	}

	return Token{
		Type:  TokSymbol,
		Value: s.source[startPos:s.pos],
		Span:  s.span(startLine, startCol),
	}
}

// scanPrefixed handles :keyword, $param, and #hash references. The prefix
// character has already been inspected but not consumed.
func (s *scanner) scanPrefixed(typ TokenType, emptyMsg string) (Token, error) {
	startLine, startCol := s.line, s.col
	s.advance() // consume the prefix

	startPos := s.pos
	for !s.atEnd() && isSymbolChar(s.peek()) {
		s.advance()
	}
	name := s.source[startPos:s.pos]
	if name == "" {
		return Token{}, s.lexError(startLine, startCol, emptyMsg)
	}

	return Token{
		Type:  typ,
		Value: name,
		Span:  s.span(startLine, startCol),
	}, nil
}

func (s *scanner) nextToken() (Token, error) {
	s.skipWhitespaceAndComments()

	if s.atEnd() {
		return Token{
			Type: TokEOF,
			Span: s.span(s.line, s.col),
		}, nil
	}

	ch := s.peek()
	startLine, startCol := s.line, s.col

	switch ch {
	case '(':
		s.advance()
		return Token{Type: TokLParen, Value: "(", Span: s.span(startLine, startCol)}, nil
	case ')':
		s.advance()
		return Token{Type: TokRParen, Value: ")", Span: s.span(startLine, startCol)}, nil
	case '"':
		return s.scanString()
	case ':':
		return s.scanPrefixed(TokKeyword, "Empty keyword")
	case '$':
		return s.scanPrefixed(TokParamRef, "Empty parameter reference")
	case '#':
		return s.scanPrefixed(TokHashRef, "Empty hash reference")
	case '-':
		if isDigit(s.peekAt(1)) {
			return s.scanNumber(), nil
		}
		// A leading '-' without a digit starts a symbol char run, which is
		// not a valid symbol start.
		s.advance()
		return Token{}, s.lexError(startLine, startCol, "Unexpected character '-'")
	}

	if isDigit(ch) {
		return s.scanNumber(), nil
	}
	if isAlpha(ch) {
		return s.scanSymbol(), nil
	}

	s.advance()
	return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("Unexpected character '%c'", ch))
}

// Tokenize breaks WireScript source into a flat token sequence ending in
// an EOF token. Lexical errors abort immediately with a *LexError.
func Tokenize(source, filename string) ([]Token, error) {
	s := newScanner(source, filename)
	var tokens []Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, nil
}
