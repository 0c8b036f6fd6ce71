// Package compiler orchestrates the WireScript pipeline: lex, parse,
// include resolution, and document-level validation. The core itself
// performs no I/O; file loading is delegated entirely to the injected
// resolver callback.
package compiler

import (
	"fmt"

	"github.com/wirekit/wirescript/pkg/ast"
	"github.com/wirekit/wirescript/pkg/diagnostics"
	"github.com/wirekit/wirescript/pkg/parser"
)

// ResolveFunc loads the content of an include directive. includePath is
// the path as written in the source; fromPath is the path of the including
// file (empty for the root source). It returns the loaded content and the
// resolved path used for cycle detection and nested resolution.
type ResolveFunc func(includePath, fromPath string) (content string, resolvedPath string, err error)

// Options configures a compilation.
type Options struct {
	// FilePath names the root source in diagnostics and is handed to the
	// resolver as the fromPath of root-level includes.
	FilePath string
	// Resolver loads include directives. Leaving it nil makes any include
	// directive a compile error.
	Resolver ResolveFunc
}

// Result is the single uniform outcome of a compilation. Success is false
// exactly when Errors is non-empty; warnings never affect it.
type Result struct {
	Success  bool                     `json:"success"`
	Document *ast.Document            `json:"document,omitempty"`
	Errors   []diagnostics.Diagnostic `json:"errors"`
	Warnings []diagnostics.Diagnostic `json:"warnings"`
}

type compiler struct {
	opts      Options
	errors    []diagnostics.Diagnostic
	warnings  []diagnostics.Diagnostic
	active    map[string]bool // resolved paths on the current include chain
	spliced   map[string]bool // resolved paths already merged into the document
	dupWarned map[string]bool // definition conflicts already reported by splice
}

// Compile runs the full pipeline on source text. Identical input and
// resolver behavior always yield an identical result.
func Compile(source string, opts *Options) Result {
	c := &compiler{
		active:    make(map[string]bool),
		spliced:   make(map[string]bool),
		dupWarned: make(map[string]bool),
	}
	if opts != nil {
		c.opts = *opts
	}
	if c.opts.FilePath != "" {
		c.active[c.opts.FilePath] = true
	}

	doc, diags := parser.ParseSource(source, c.opts.FilePath)
	c.errors = append(c.errors, diags...)

	if doc != nil {
		c.resolveIncludes(doc, c.opts.FilePath, 0)
		c.validate(doc)
	}

	return Result{
		Success:  len(c.errors) == 0,
		Document: doc,
		Errors:   c.errors,
		Warnings: c.warnings,
	}
}

// maxIncludeDepth guards against resolver implementations that keep
// producing fresh paths.
const maxIncludeDepth = 32

func (c *compiler) resolveIncludes(doc *ast.Document, fromPath string, depth int) {
	for _, inc := range doc.Includes {
		span := inc.Span
		if c.opts.Resolver == nil {
			c.addError(diagnostics.EInclude,
				fmt.Sprintf("Cannot include %q: no resolver configured", inc.Path), &span)
			continue
		}
		if depth >= maxIncludeDepth {
			c.addError(diagnostics.EInclude,
				fmt.Sprintf("Cannot include %q: include depth limit reached", inc.Path), &span)
			continue
		}

		content, resolvedPath, err := c.opts.Resolver(inc.Path, fromPath)
		if err != nil {
			c.addError(diagnostics.EInclude,
				fmt.Sprintf("Cannot include %q: %v", inc.Path, err), &span)
			continue
		}
		if c.active[resolvedPath] {
			c.addError(diagnostics.EInclude,
				fmt.Sprintf("Include cycle detected at %q", resolvedPath), &span)
			continue
		}
		// A shared fragment reached along two include paths is merged
		// once; only true ancestry counts as a cycle.
		if c.spliced[resolvedPath] {
			continue
		}
		c.active[resolvedPath] = true

		frag, diags := parser.ParseSource(content, resolvedPath)
		c.errors = append(c.errors, diags...)
		if frag != nil {
			c.resolveIncludes(frag, resolvedPath, depth+1)
			c.splice(doc, frag, resolvedPath)
		}
		delete(c.active, resolvedPath)
		c.spliced[resolvedPath] = true
	}
}

// splice merges an included fragment into the root document. Fragments
// typically hold only definitions, but screens are legal and appended in
// include order. On meta conflicts the root document wins.
func (c *compiler) splice(doc, frag *ast.Document, path string) {
	for _, def := range frag.Components {
		if _, exists := doc.ComponentsByName[def.Name]; exists {
			span := def.Span
			c.addWarning(diagnostics.WDup,
				fmt.Sprintf("Component '%s' from %q redefines an earlier definition", def.Name, path), &span)
			c.dupWarned["component:"+def.Name] = true
		}
		doc.AddComponent(def)
	}
	for _, l := range frag.Layouts {
		if _, exists := doc.LayoutsByName[l.Name]; exists {
			span := l.Span
			c.addWarning(diagnostics.WDup,
				fmt.Sprintf("Layout '%s' from %q redefines an earlier definition", l.Name, path), &span)
			c.dupWarned["layout:"+l.Name] = true
		}
		doc.AddLayout(l)
	}
	for k, v := range frag.Meta {
		if _, exists := doc.Meta[k]; exists {
			c.addWarning(diagnostics.WDup,
				fmt.Sprintf("Meta key '%s' from %q shadowed by the including document", k, path), nil)
			continue
		}
		doc.Meta[k] = v
	}
	doc.Screens = append(doc.Screens, frag.Screens...)
}

// validate enforces document-level invariants after a successful parse.
// Failures join the same error list as parser diagnostics so callers have
// one uniform channel.
func (c *compiler) validate(doc *ast.Document) {
	if len(doc.Screens) == 0 {
		span := doc.Span
		c.addError(diagnostics.EValidate,
			"Document must contain at least one screen", &span)
	}

	seenScreens := make(map[string]bool)
	for _, scr := range doc.Screens {
		if seenScreens[scr.ID] {
			span := scr.Span
			c.addWarning(diagnostics.WDup,
				fmt.Sprintf("Duplicate screen id '%s'", scr.ID), &span)
		}
		seenScreens[scr.ID] = true
	}

	seenDefs := make(map[string]bool)
	for _, def := range doc.Components {
		if seenDefs[def.Name] && !c.dupWarned["component:"+def.Name] {
			span := def.Span
			c.addWarning(diagnostics.WDup,
				fmt.Sprintf("Duplicate component definition '%s'", def.Name), &span)
		}
		seenDefs[def.Name] = true
	}

	seenLayouts := make(map[string]bool)
	for _, l := range doc.Layouts {
		if seenLayouts[l.Name] && !c.dupWarned["layout:"+l.Name] {
			span := l.Span
			c.addWarning(diagnostics.WDup,
				fmt.Sprintf("Duplicate layout definition '%s'", l.Name), &span)
		}
		seenLayouts[l.Name] = true
		if !hasSlot(l.Body) {
			span := l.Span
			c.addWarning(diagnostics.WNoSlot,
				fmt.Sprintf("Layout '%s' has no slot element", l.Name), &span)
		}
	}
}

// hasSlot reports whether the element tree contains the slot marker.
func hasSlot(el *ast.ElementNode) bool {
	if el == nil {
		return false
	}
	if el.Name == "slot" {
		return true
	}
	for _, child := range el.Children {
		switch n := child.(type) {
		case *ast.ElementNode:
			if hasSlot(n) {
				return true
			}
		case *ast.RepeatNode:
			if hasSlot(n.Body) {
				return true
			}
		}
	}
	return false
}

func (c *compiler) addError(code, msg string, span *ast.Span) {
	c.errors = append(c.errors, diagnostics.MakeDiag(code, msg, span, ""))
}

func (c *compiler) addWarning(code, msg string, span *ast.Span) {
	c.warnings = append(c.warnings, diagnostics.MakeDiag(code, msg, span, ""))
}
