// Package parser implements the schema-driven WireScript parser. It
// consumes the lexer's token sequence and produces a Document, collecting
// recoverable errors instead of aborting on the first one.
package parser

import (
	"fmt"
	"strings"

	"github.com/wirekit/wirescript/pkg/ast"
	"github.com/wirekit/wirescript/pkg/diagnostics"
	"github.com/wirekit/wirescript/pkg/lexer"
	"github.com/wirekit/wirescript/pkg/schema"
	"github.com/wirekit/wirescript/pkg/value"
)

// viewports are the screen viewport symbols recognized in the screen head.
var viewports = map[string]bool{
	"mobile":  true,
	"tablet":  true,
	"desktop": true,
	"wide":    true,
}

// actionTargets are the navigation action keywords (:close etc).
var actionTargets = map[string]bool{
	"close":  true,
	"back":   true,
	"submit": true,
}

type parser struct {
	tokens []lexer.Token
	pos    int
	diags  []diagnostics.Diagnostic
}

// Parse builds a Document from a token sequence. The returned document may
// be partial when diagnostics are present; it is nil only when the root
// (wire ...) wrapper is missing entirely.
func Parse(tokens []lexer.Token) (*ast.Document, []diagnostics.Diagnostic) {
	if len(tokens) == 0 {
		return nil, []diagnostics.Diagnostic{
			diagnostics.MakeDiag(diagnostics.EParse, "Expected (wire ...) document root", nil, ""),
		}
	}
	p := &parser{tokens: tokens}
	doc := p.parseDocument()
	return doc, p.diags
}

// ParseSource tokenizes and parses source text in one step.
func ParseSource(source, filename string) (*ast.Document, []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ELex, err.Error(), nil, "")}
	}
	return Parse(tokens)
}

// --- Token plumbing ---

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) peekAt(offset int) lexer.TokenType {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return lexer.TokEOF
	}
	return p.tokens[idx].Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ lexer.TokenType, what string) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		p.addError(fmt.Sprintf("Expected %s, got '%s'", what, describe(tok)), &tok.Span)
		return tok, false
	}
	return p.advance(), true
}

func (p *parser) addError(msg string, span *ast.Span) {
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.EParse, msg, span, ""))
}

func (p *parser) spanFrom(start ast.Span) ast.Span {
	cur := p.current().Span
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   cur.StartLine,
		EndCol:    cur.StartCol,
	}
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokEOF:
		return "end of input"
	case lexer.TokString:
		return fmt.Sprintf("%q", tok.Value)
	case lexer.TokKeyword:
		return ":" + tok.Value
	case lexer.TokParamRef:
		return "$" + tok.Value
	case lexer.TokHashRef:
		return "#" + tok.Value
	default:
		return tok.Value
	}
}

// skipForm consumes tokens until the current form's closing paren. It is
// called with the opening paren already consumed, so depth starts at one.
// Unbalanced input simply runs to EOF: token consumption for that branch
// terminates there.
func (p *parser) skipForm() {
	depth := 1
	for depth > 0 && p.peek() != lexer.TokEOF {
		switch p.advance().Type {
		case lexer.TokLParen:
			depth++
		case lexer.TokRParen:
			depth--
		}
	}
}

// --- Document ---

func (p *parser) parseDocument() *ast.Document {
	startSpan := p.current().Span

	if p.peek() != lexer.TokLParen || p.peekAt(1) != lexer.TokSymbol || p.tokens[p.pos+1].Value != "wire" {
		tok := p.current()
		p.addError("Expected (wire ...) document root", &tok.Span)
		return nil
	}
	p.advance() // (
	p.advance() // wire

	doc := ast.NewDocument()

	for p.peek() != lexer.TokRParen && p.peek() != lexer.TokEOF {
		if p.peek() != lexer.TokLParen {
			tok := p.advance()
			p.addError(fmt.Sprintf("Expected form, got '%s'", describe(tok)), &tok.Span)
			continue
		}
		open := p.advance() // (
		head := p.current()
		if head.Type != lexer.TokSymbol {
			p.addError(fmt.Sprintf("Expected form name, got '%s'", describe(head)), &head.Span)
			p.skipForm()
			continue
		}
		p.advance() // form name

		switch head.Value {
		case "meta":
			p.parseMeta(doc)
		case "screen":
			if scr := p.parseScreen(open.Span); scr != nil {
				doc.Screens = append(doc.Screens, scr)
			}
		case "define":
			if def := p.parseDefine(open.Span); def != nil {
				doc.AddComponent(def)
			}
		case "layout":
			if l := p.parseLayout(open.Span); l != nil {
				doc.AddLayout(l)
			}
		case "include":
			if inc := p.parseInclude(open.Span); inc != nil {
				doc.Includes = append(doc.Includes, inc)
			}
		default:
			p.addError(fmt.Sprintf("Unknown form type: %s", head.Value), &head.Span)
			p.skipForm()
		}
	}

	if _, ok := p.expect(lexer.TokRParen, "')'"); !ok {
		// Truncated document; keep the partial result.
	}

	doc.Span = p.spanFrom(startSpan)
	return doc
}

// --- Top-level forms ---

func (p *parser) parseMeta(doc *ast.Document) {
	for p.peek() != lexer.TokRParen && p.peek() != lexer.TokEOF {
		kw, ok := p.expect(lexer.TokKeyword, "meta key")
		if !ok {
			p.skipForm()
			return
		}
		if v, ok := p.propValueToken(); ok {
			doc.Meta[kw.Value] = p.coerce(schema.PropSchema{Type: schema.PropAny}, v)
		} else {
			doc.Meta[kw.Value] = ast.BoolValue{Value: true}
		}
	}
	p.expect(lexer.TokRParen, "')'")
}

func (p *parser) parseScreen(start ast.Span) *ast.ScreenNode {
	idTok, ok := p.expect(lexer.TokSymbol, "screen id")
	if !ok {
		p.skipForm()
		return nil
	}

	scr := &ast.ScreenNode{ID: idTok.Value}

	if p.peek() == lexer.TokString {
		scr.Name = p.advance().Value
	}

	// Head keywords: a viewport symbol and/or a :layout reference.
	for p.peek() == lexer.TokKeyword {
		kw := p.current()
		if kw.Value == "layout" {
			p.advance()
			nameTok, ok := p.expect(lexer.TokSymbol, "layout name")
			if !ok {
				p.skipForm()
				return scr
			}
			scr.Layout = nameTok.Value
		} else if viewports[kw.Value] {
			p.advance()
			scr.Viewport = kw.Value
		} else {
			break
		}
	}

	// Body: overlay forms are lifted out of the element tree.
	var body []ast.BodyNode
	for p.peek() != lexer.TokRParen && p.peek() != lexer.TokEOF {
		if p.peek() != lexer.TokLParen {
			tok := p.advance()
			p.addError(fmt.Sprintf("Unexpected '%s' in screen body", describe(tok)), &tok.Span)
			continue
		}
		if p.peekAt(1) == lexer.TokSymbol && schema.IsOverlayKind(p.tokens[p.pos+1].Value) {
			open := p.advance() // (
			kind := p.advance() // overlay kind
			if ov := p.parseOverlay(open.Span, kind.Value); ov != nil {
				scr.Overlays = append(scr.Overlays, ov)
			}
			continue
		}
		if node := p.parseBodyNode(); node != nil {
			body = append(body, node)
		}
	}
	p.expect(lexer.TokRParen, "')'")

	scr.Root = p.rootOf(body, start)
	scr.Span = p.spanFrom(start)
	return scr
}

// rootOf reduces a screen or definition body to a single root element. A
// lone element is the root itself; several siblings get an implicit col
// wrapper so child order survives.
func (p *parser) rootOf(body []ast.BodyNode, span ast.Span) *ast.ElementNode {
	if len(body) == 1 {
		if el, ok := body[0].(*ast.ElementNode); ok {
			return el
		}
	}
	if len(body) == 0 {
		return nil
	}
	return &ast.ElementNode{
		Span:     span,
		Name:     "col",
		Props:    map[string]ast.PropValue{},
		Children: body,
	}
}

func (p *parser) parseOverlay(start ast.Span, kind string) *ast.OverlayNode {
	idTok, ok := p.expect(lexer.TokSymbol, "overlay id")
	if !ok {
		p.skipForm()
		return nil
	}

	ov := &ast.OverlayNode{
		Overlay: kind,
		ID:      idTok.Value,
		Props:   map[string]ast.PropValue{},
	}

	for p.peek() != lexer.TokRParen && p.peek() != lexer.TokEOF {
		switch p.peek() {
		case lexer.TokKeyword:
			kw := p.advance()
			ps, known := schema.OverlayProp(kw.Value)
			if !known {
				ps = schema.PropSchema{Type: schema.PropAny}
			}
			if v, ok := p.propValueToken(); ok {
				ov.Props[kw.Value] = p.coerce(ps, v)
			} else {
				ov.Props[kw.Value] = ast.BoolValue{Value: true}
			}
		case lexer.TokLParen:
			if node := p.parseBodyNode(); node != nil {
				ov.Children = append(ov.Children, node)
			}
		default:
			tok := p.advance()
			p.addError(fmt.Sprintf("Unexpected '%s' in %s", describe(tok), kind), &tok.Span)
		}
	}
	p.expect(lexer.TokRParen, "')'")

	ov.Span = p.spanFrom(start)
	return ov
}

func (p *parser) parseDefine(start ast.Span) *ast.ComponentDef {
	nameTok, ok := p.expect(lexer.TokSymbol, "component name")
	if !ok {
		p.skipForm()
		return nil
	}

	def := &ast.ComponentDef{Name: nameTok.Value}

	if _, ok := p.expect(lexer.TokLParen, "parameter list"); !ok {
		p.skipForm()
		return nil
	}
	for p.peek() != lexer.TokRParen && p.peek() != lexer.TokEOF {
		tok := p.advance()
		switch tok.Type {
		case lexer.TokSymbol, lexer.TokParamRef:
			def.Params = append(def.Params, tok.Value)
		default:
			p.addError(fmt.Sprintf("Expected parameter name, got '%s'", describe(tok)), &tok.Span)
		}
	}
	p.expect(lexer.TokRParen, "')'")

	def.Body = p.parseSingleBody(nameTok.Value)
	p.expect(lexer.TokRParen, "')'")

	def.Span = p.spanFrom(start)
	return def
}

func (p *parser) parseLayout(start ast.Span) *ast.LayoutNode {
	nameTok, ok := p.expect(lexer.TokSymbol, "layout name")
	if !ok {
		p.skipForm()
		return nil
	}

	l := &ast.LayoutNode{Name: nameTok.Value}
	l.Body = p.parseSingleBody(nameTok.Value)
	p.expect(lexer.TokRParen, "')'")

	l.Span = p.spanFrom(start)
	return l
}

// parseSingleBody reads the body forms of a define or layout and reduces
// them to one element, wrapping siblings like rootOf does.
func (p *parser) parseSingleBody(owner string) *ast.ElementNode {
	start := p.current().Span
	var body []ast.BodyNode
	for p.peek() != lexer.TokRParen && p.peek() != lexer.TokEOF {
		if p.peek() != lexer.TokLParen {
			tok := p.advance()
			p.addError(fmt.Sprintf("Unexpected '%s' in %s body", describe(tok), owner), &tok.Span)
			continue
		}
		if node := p.parseBodyNode(); node != nil {
			body = append(body, node)
		}
	}
	return p.rootOf(body, start)
}

func (p *parser) parseInclude(start ast.Span) *ast.IncludeDirective {
	pathTok, ok := p.expect(lexer.TokString, "include path")
	if !ok {
		p.skipForm()
		return nil
	}
	p.expect(lexer.TokRParen, "')'")
	return &ast.IncludeDirective{Span: p.spanFrom(start), Path: pathTok.Value}
}

// --- Elements ---

// parseBodyNode parses one body form: a repeat or an element. Called with
// the current token at the opening paren.
func (p *parser) parseBodyNode() ast.BodyNode {
	open := p.advance() // (
	head := p.current()
	if head.Type != lexer.TokSymbol {
		p.addError(fmt.Sprintf("Expected element name, got '%s'", describe(head)), &head.Span)
		p.skipForm()
		return nil
	}
	p.advance() // element name

	if head.Value == "repeat" {
		return p.parseRepeat(open.Span)
	}
	return p.parseElement(open.Span, head.Value)
}

func (p *parser) parseElement(start ast.Span, name string) *ast.ElementNode {
	sch, known := schema.Lookup(name)

	elem := &ast.ElementNode{
		Name:        name,
		Props:       map[string]ast.PropValue{},
		IsComponent: !known && !schema.IsStructural(name),
	}

	// Inline content comes first when the schema allows it; component
	// invocations are given the benefit of the doubt.
	acceptsContent := sch.AcceptsContent || elem.IsComponent
	if acceptsContent {
		switch p.peek() {
		case lexer.TokString:
			elem.Content = ast.TextContent{Value: p.advance().Value}
		case lexer.TokParamRef:
			elem.Content = ast.ParamContent{Name: p.advance().Value}
		}
	}

	allowsChildren := schema.AllowsChildren(name)

	for p.peek() != lexer.TokRParen && p.peek() != lexer.TokEOF {
		switch p.peek() {
		case lexer.TokKeyword:
			p.parseProp(elem, sch)
		case lexer.TokLParen:
			if !allowsChildren {
				open := p.current()
				p.addError(fmt.Sprintf("Element '%s' does not allow children", name), &open.Span)
				p.advance()
				p.skipForm()
				continue
			}
			if node := p.parseBodyNode(); node != nil {
				elem.Children = append(elem.Children, node)
			}
		default:
			tok := p.advance()
			p.addError(fmt.Sprintf("Unexpected '%s' in (%s ...)", describe(tok), name), &tok.Span)
		}
	}
	p.expect(lexer.TokRParen, "')'")

	elem.Span = p.spanFrom(start)
	return elem
}

// parseProp reads one :name or :name value pair, coercing the written
// literal to the property's declared schema type.
func (p *parser) parseProp(elem *ast.ElementNode, sch schema.Schema) {
	kw := p.advance()
	ps, declared := sch.Props[kw.Value]
	if !declared {
		ps = schema.PropSchema{Type: schema.PropAny}
	}

	// Navigation targets may be written as action keywords (:to :back),
	// which would otherwise read as the start of the next property.
	if ps.Type == schema.PropTarget && p.peek() == lexer.TokKeyword && actionTargets[p.current().Value] {
		act := p.advance()
		elem.Props[kw.Value] = ast.NavTarget{Kind: ast.TargetAction, Value: act.Value}
		return
	}

	if v, ok := p.propValueToken(); ok {
		elem.Props[kw.Value] = p.coerce(ps, v)
		return
	}
	// Bare keyword: a boolean flag implying true.
	elem.Props[kw.Value] = ast.BoolValue{Value: true}
}

// propValueToken consumes the next token when it can serve as a property
// value. A following keyword, paren, or EOF means the property was a bare
// flag.
func (p *parser) propValueToken() (lexer.Token, bool) {
	switch p.peek() {
	case lexer.TokString, lexer.TokNumber, lexer.TokSymbol, lexer.TokParamRef, lexer.TokHashRef:
		return p.advance(), true
	}
	return lexer.Token{}, false
}

// coerce applies the fixed coercion table to a written literal according
// to the declared property type. Parameter references are never coerced.
func (p *parser) coerce(ps schema.PropSchema, tok lexer.Token) ast.PropValue {
	if tok.Type == lexer.TokParamRef {
		return ast.ParamRef{Name: tok.Value}
	}
	if ps.Type == schema.PropTarget {
		return navTargetOf(tok)
	}
	if tok.Type == lexer.TokHashRef {
		// Overlay references only make sense as targets; elsewhere the
		// text coerces like a bare word.
		if ps.Type == schema.PropAny {
			return ast.NavTarget{Kind: ast.TargetOverlay, Value: tok.Value}
		}
		tok = lexer.Token{Type: lexer.TokSymbol, Value: tok.Value, Span: tok.Span}
	}

	lit := literalOf(tok)
	switch ps.Type {
	case schema.PropBool:
		return ast.BoolValue{Value: lit.AsBool()}
	case schema.PropNumber:
		return ast.NumberValue{Value: lit.AsFloat()}
	case schema.PropString:
		return ast.StringValue{Value: lit.AsString()}
	case schema.PropSymbol:
		return ast.SymbolValue{Value: lit.AsString()}
	default: // any: keep the written shape
		switch tok.Type {
		case lexer.TokString:
			return ast.StringValue{Value: tok.Value}
		case lexer.TokNumber:
			return ast.NumberValue{Value: lit.AsFloat()}
		default:
			if lit.IsBool() && (tok.Value == "true" || tok.Value == "false" || tok.Value == "t" || tok.Value == "nil") {
				return ast.BoolValue{Value: lit.AsBool()}
			}
			return ast.SymbolValue{Value: tok.Value}
		}
	}
}

func literalOf(tok lexer.Token) value.Literal {
	switch tok.Type {
	case lexer.TokString:
		return value.String(tok.Value)
	case lexer.TokNumber:
		return value.Number(tok.Value)
	default:
		return value.Symbol(tok.Value)
	}
}

func navTargetOf(tok lexer.Token) ast.NavTarget {
	switch tok.Type {
	case lexer.TokHashRef:
		return ast.NavTarget{Kind: ast.TargetOverlay, Value: tok.Value}
	case lexer.TokString:
		if strings.Contains(tok.Value, "://") {
			return ast.NavTarget{Kind: ast.TargetURL, Value: tok.Value}
		}
		return ast.NavTarget{Kind: ast.TargetScreen, Value: tok.Value}
	default:
		return ast.NavTarget{Kind: ast.TargetScreen, Value: tok.Value}
	}
}

func (p *parser) parseRepeat(start ast.Span) *ast.RepeatNode {
	rep := &ast.RepeatNode{}

	switch p.peek() {
	case lexer.TokNumber:
		tok := p.advance()
		rep.Num = ast.FixedCount{Value: value.Number(tok.Value).AsInt()}
	case lexer.TokParamRef:
		rep.Num = ast.ParamCount{Name: p.advance().Value}
	default:
		tok := p.current()
		p.addError(fmt.Sprintf("Expected repeat count, got '%s'", describe(tok)), &tok.Span)
		p.skipForm()
		return nil
	}

	if p.peek() == lexer.TokKeyword && p.current().Value == "as" {
		p.advance()
		if varTok, ok := p.expect(lexer.TokSymbol, "loop variable"); ok {
			rep.Var = varTok.Value
		}
	}

	if p.peek() != lexer.TokLParen {
		tok := p.current()
		p.addError(fmt.Sprintf("Expected repeat body, got '%s'", describe(tok)), &tok.Span)
		p.skipForm()
		return nil
	}
	body := p.parseBodyNode()
	el, ok := body.(*ast.ElementNode)
	if !ok {
		if body != nil {
			span := body.NodeSpan()
			p.addError("Repeat body must be a single element", &span)
		}
		p.skipForm()
		return nil
	}
	rep.Body = el

	// Anything after the body is surplus.
	for p.peek() != lexer.TokRParen && p.peek() != lexer.TokEOF {
		tok := p.advance()
		p.addError(fmt.Sprintf("Unexpected '%s' after repeat body", describe(tok)), &tok.Span)
		if tok.Type == lexer.TokLParen {
			p.skipForm()
		}
	}
	p.expect(lexer.TokRParen, "')'")

	rep.Span = p.spanFrom(start)
	return rep
}
