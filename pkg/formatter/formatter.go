// Package formatter pretty-prints source text, repairing unbalanced
// parentheses along the way. It works purely on the token stream and
// never consults the parser, so input that would not parse cleanly
// still formats to structurally valid output.
package formatter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wirekit/wirescript/pkg/lexer"
)

// Options controls formatting output.
type Options struct {
	// Indent is the per-level indentation string. Defaults to two spaces.
	Indent string
	// MaxLineLength is the soft limit beyond which a container form is
	// split one child per line. Defaults to 80.
	MaxLineLength int
}

// Format lexes, balances, and pretty-prints source. The only errors it
// can return are lex errors; everything downstream is repair, not
// rejection.
func Format(source string, opts Options) (string, error) {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = 80
	}

	tokens, err := lexer.Tokenize(source, "")
	if err != nil {
		return "", err
	}

	p := &printer{
		toks:     balance(tokens),
		comments: scanComments(source),
		indent:   opts.Indent,
		maxLine:  opts.MaxLineLength,
	}
	p.run()
	return p.out.String(), nil
}

type printer struct {
	toks     []lexer.Token
	comments []comment
	ci       int

	indent  string
	maxLine int
	out     strings.Builder
}

func (p *printer) run() {
	i := 0
	prevEnd := 0
	first := true
	for i < len(p.toks) && p.toks[i].Type != lexer.TokEOF {
		start := p.startLine(i)
		if !first {
			p.maybeGap(prevEnd, start)
		}
		if p.toks[i].Type == lexer.TokLParen {
			end := p.matchEnd(i)
			p.flushComments(start, 0)
			prevEnd = p.endLine(i, end)
			i = p.writeForm(i, 0)
		} else {
			// Stray atoms outside any form: one run per line.
			p.flushComments(start, 0)
			j := i
			for j < len(p.toks) && p.toks[j].Type != lexer.TokLParen && p.toks[j].Type != lexer.TokEOF {
				j++
			}
			p.line(0, p.renderAtoms(i, j))
			prevEnd = p.endLine(i, j-1)
			i = j
		}
		first = false
	}
	p.flushAll(0)
}

// writeForm emits the form opening at index i and returns the index
// just past its matching closer.
func (p *printer) writeForm(i, depth int) int {
	end := p.matchEnd(i)
	inline := p.renderAtoms(i, end+1)

	name := ""
	if p.toks[i+1].Type == lexer.TokSymbol {
		name = p.toks[i+1].Value
	}
	isRoot := depth == 0 && name == "wire"

	// The document root always splits; anything else stays inline when it
	// has no child forms or fits within the line limit.
	fits := len(p.indent)*depth+len(inline) <= p.maxLine && !p.commentsWithin(i, end)
	if !p.hasChildForms(i, end) || (fits && !isRoot) {
		p.flushComments(p.startLine(i), depth)
		p.line(depth, inline)
		return end + 1
	}

	gapAware := isRoot

	// Opening line: the head atoms up to the first child form.
	j := i + 1
	for j < end && p.toks[j].Type != lexer.TokLParen {
		j++
	}
	p.flushComments(p.startLine(i), depth)
	p.line(depth, "("+p.renderAtoms(i+1, j))

	prevEnd := p.endLine(i, j-1)
	for j < end {
		if p.toks[j].Type == lexer.TokLParen {
			childEnd := p.matchEnd(j)
			start := p.startLine(j)
			if gapAware {
				p.maybeGap(prevEnd, start)
			}
			p.flushComments(start, depth+1)
			prevEnd = p.endLine(j, childEnd)
			j = p.writeForm(j, depth+1)
		} else {
			k := j
			for k < end && p.toks[k].Type != lexer.TokLParen {
				k++
			}
			p.flushComments(p.startLine(j), depth+1)
			p.line(depth+1, p.renderAtoms(j, k))
			prevEnd = p.endLine(j, k-1)
			j = k
		}
	}
	p.flushComments(p.endLine(i, end)+1, depth+1)
	p.line(depth, ")")
	return end + 1
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

// renderAtoms joins tokens [from, to) on one line with s-expression
// spacing: no space after '(' or before ')'.
func (p *printer) renderAtoms(from, to int) string {
	var b strings.Builder
	prev := lexer.TokLParen
	for i := from; i < to; i++ {
		t := p.toks[i]
		if b.Len() > 0 && prev != lexer.TokLParen && t.Type != lexer.TokRParen {
			b.WriteByte(' ')
		}
		b.WriteString(atomText(t))
		prev = t.Type
	}
	return b.String()
}

func atomText(t lexer.Token) string {
	switch t.Type {
	case lexer.TokLParen:
		return "("
	case lexer.TokRParen:
		return ")"
	case lexer.TokKeyword:
		return ":" + t.Value
	case lexer.TokParamRef:
		return "$" + t.Value
	case lexer.TokHashRef:
		return "#" + t.Value
	case lexer.TokString:
		return quote(t.Value)
	default:
		return t.Value
	}
}

// quote renders a string literal using only escape forms the lexer
// accepts, which rules out strconv.Quote.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			fmt.Fprintf(&b, "\\x%02X", s[i])
			i++
			continue
		}
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, "\\u{%X}", r)
			} else {
				b.WriteRune(r)
			}
		}
		i += size
	}
	b.WriteByte('"')
	return b.String()
}

func (p *printer) line(depth int, text string) {
	for i := 0; i < depth; i++ {
		p.out.WriteString(p.indent)
	}
	p.out.WriteString(text)
	p.out.WriteByte('\n')
}

// ---------------------------------------------------------------------------
// Comments and spacing
// ---------------------------------------------------------------------------

// flushComments emits every pending comment from before the given
// source line, each on its own line at the given depth.
func (p *printer) flushComments(beforeLine, depth int) {
	for p.ci < len(p.comments) && p.comments[p.ci].line < beforeLine {
		p.line(depth, p.comments[p.ci].text)
		p.ci++
	}
}

func (p *printer) flushAll(depth int) {
	for p.ci < len(p.comments) {
		p.line(depth, p.comments[p.ci].text)
		p.ci++
	}
}

// maybeGap preserves a single blank line between forms that were
// separated by one or more blank lines in the source.
func (p *printer) maybeGap(prevEnd, nextStart int) {
	if p.ci < len(p.comments) && p.comments[p.ci].line < nextStart {
		nextStart = p.comments[p.ci].line
	}
	if prevEnd > 0 && nextStart-prevEnd > 1 {
		p.out.WriteByte('\n')
	}
}

// ---------------------------------------------------------------------------
// Token stream helpers
// ---------------------------------------------------------------------------

// matchEnd returns the index of the closer matching the opener at i.
// The stream is balanced, so a match always exists.
func (p *printer) matchEnd(i int) int {
	depth := 0
	for j := i; j < len(p.toks); j++ {
		switch p.toks[j].Type {
		case lexer.TokLParen:
			depth++
		case lexer.TokRParen:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return len(p.toks) - 1
}

func (p *printer) hasChildForms(open, close int) bool {
	for j := open + 1; j < close; j++ {
		if p.toks[j].Type == lexer.TokLParen {
			return true
		}
	}
	return false
}

// startLine is the original source line of the first real token at or
// after i. Synthesized closers have zero spans and are skipped.
func (p *printer) startLine(i int) int {
	for j := i; j < len(p.toks); j++ {
		if p.toks[j].Span.StartLine > 0 {
			return p.toks[j].Span.StartLine
		}
	}
	return 0
}

// endLine is the last original source line covered by tokens [from, to].
func (p *printer) endLine(from, to int) int {
	max := 0
	for j := from; j <= to && j < len(p.toks); j++ {
		if l := p.toks[j].Span.EndLine; l > max {
			max = l
		}
	}
	return max
}

func (p *printer) commentsWithin(open, close int) bool {
	start := p.startLine(open)
	end := p.endLine(open, close)
	for k := p.ci; k < len(p.comments); k++ {
		c := p.comments[k]
		if c.line >= end {
			return false
		}
		if c.line > start {
			return true
		}
	}
	return false
}
