package compiler_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/wirekit/wirescript/pkg/ast"
	"github.com/wirekit/wirescript/pkg/compiler"
	"github.com/wirekit/wirescript/pkg/diagnostics"
)

// mapResolver serves includes from an in-memory path -> content map.
func mapResolver(files map[string]string) compiler.ResolveFunc {
	return func(includePath, fromPath string) (string, string, error) {
		content, ok := files[includePath]
		if !ok {
			return "", includePath, fmt.Errorf("not found")
		}
		return content, includePath, nil
	}
}

func mustCompile(t *testing.T, source string, opts *compiler.Options) compiler.Result {
	t.Helper()
	result := compiler.Compile(source, opts)
	if !result.Success {
		t.Fatalf("unexpected compile errors: %v", result.Errors)
	}
	return result
}

func hasDiag(diags []diagnostics.Diagnostic, code, substr string) bool {
	for _, d := range diags {
		if d.Code == code && strings.Contains(d.Message, substr) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Test: successful compilation of a plain document
// ---------------------------------------------------------------------------
func TestCompileMinimal(t *testing.T) {
	result := mustCompile(t, `(wire (screen home "Home" (text "Hi")))`, nil)

	if result.Document == nil || len(result.Document.Screens) != 1 {
		t.Fatalf("unexpected document: %+v", result.Document)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

// ---------------------------------------------------------------------------
// Test: parse errors surface in the uniform error list
// ---------------------------------------------------------------------------
func TestCompileParseFailure(t *testing.T) {
	result := compiler.Compile(`(screen home (text "x"))`, nil)
	if result.Success {
		t.Fatal("expected failure without a wire root")
	}
	if !hasDiag(result.Errors, diagnostics.EParse, "document root") {
		t.Errorf("expected parse diagnostic, got %v", result.Errors)
	}
	if result.Document != nil {
		t.Error("no document should be produced without a root")
	}
}

func TestCompileLexFailure(t *testing.T) {
	result := compiler.Compile(`(wire (screen s (text "\x4")))`, nil)
	if result.Success {
		t.Fatal("expected failure on a lex error")
	}
	if !hasDiag(result.Errors, diagnostics.ELex, "Invalid hex digit") {
		t.Errorf("expected lex diagnostic, got %v", result.Errors)
	}
}

// ---------------------------------------------------------------------------
// Test: a document without screens parses but does not compile
// ---------------------------------------------------------------------------
func TestCompileRequiresScreen(t *testing.T) {
	result := compiler.Compile(`(wire (meta :title "empty"))`, nil)
	if result.Success {
		t.Fatal("expected validation failure")
	}
	if !hasDiag(result.Errors, diagnostics.EValidate, "at least one screen") {
		t.Errorf("expected screen-count diagnostic, got %v", result.Errors)
	}
	if result.Document == nil {
		t.Error("the parsed document should still be returned")
	}
}

// ---------------------------------------------------------------------------
// Test: include resolution and splicing
// ---------------------------------------------------------------------------
func TestIncludeSplicesDefinitions(t *testing.T) {
	files := map[string]string{
		"shared.ws": `(wire
			(define user-card (name) (card (text $name)))
			(layout shell (col (navbar) (slot))))`,
	}
	result := mustCompile(t, `(wire
		(include "shared.ws")
		(screen s :layout shell (user-card :name "Ada")))`,
		&compiler.Options{FilePath: "main.ws", Resolver: mapResolver(files)})

	doc := result.Document
	if _, ok := doc.ComponentsByName["user-card"]; !ok {
		t.Error("included component missing")
	}
	if _, ok := doc.LayoutsByName["shell"]; !ok {
		t.Error("included layout missing")
	}
}

func TestIncludeAppendsScreens(t *testing.T) {
	files := map[string]string{
		"extra.ws": `(wire (screen about "About" (text "hi")))`,
	}
	result := mustCompile(t, `(wire
		(include "extra.ws")
		(screen home (text "x")))`,
		&compiler.Options{Resolver: mapResolver(files)})

	ids := make([]string, 0, 2)
	for _, scr := range result.Document.Screens {
		ids = append(ids, scr.ID)
	}
	// Root screens parse first; included screens are appended after.
	if len(ids) != 2 || ids[0] != "home" || ids[1] != "about" {
		t.Errorf("screen order = %v", ids)
	}
}

func TestIncludeWithoutResolver(t *testing.T) {
	result := compiler.Compile(`(wire (include "a.ws") (screen s (text "x")))`, nil)
	if result.Success {
		t.Fatal("expected failure without a resolver")
	}
	if !hasDiag(result.Errors, diagnostics.EInclude, "no resolver configured") {
		t.Errorf("expected resolver diagnostic, got %v", result.Errors)
	}
}

func TestIncludeResolverError(t *testing.T) {
	result := compiler.Compile(`(wire (include "missing.ws") (screen s (text "x")))`,
		&compiler.Options{Resolver: mapResolver(nil)})
	if result.Success {
		t.Fatal("expected failure on resolver error")
	}
	if !hasDiag(result.Errors, diagnostics.EInclude, `Cannot include "missing.ws"`) {
		t.Errorf("expected include diagnostic, got %v", result.Errors)
	}
}

func TestIncludeCycle(t *testing.T) {
	files := map[string]string{
		"a.ws": `(wire (include "b.ws"))`,
		"b.ws": `(wire (include "a.ws"))`,
	}
	result := compiler.Compile(`(wire (include "a.ws") (screen s (text "x")))`,
		&compiler.Options{Resolver: mapResolver(files)})
	if result.Success {
		t.Fatal("expected failure on an include cycle")
	}
	if !hasDiag(result.Errors, diagnostics.EInclude, "Include cycle detected") {
		t.Errorf("expected cycle diagnostic, got %v", result.Errors)
	}
}

// A shared fragment reached through two includes is not a cycle and must
// be merged exactly once.
func TestIncludeDiamond(t *testing.T) {
	files := map[string]string{
		"a.ws":      `(wire (include "common.ws") (define chip (x) (badge $x)))`,
		"b.ws":      `(wire (include "common.ws") (define pill (x) (badge $x)))`,
		"common.ws": `(wire (define card (x) (box (text $x))))`,
	}
	result := mustCompile(t, `(wire (include "a.ws") (include "b.ws") (screen s (card :x "1")))`,
		&compiler.Options{Resolver: mapResolver(files)})

	if len(result.Warnings) != 0 {
		t.Errorf("shared fragment must merge silently, got %v", result.Warnings)
	}
	if got := len(result.Document.Components); got != 3 {
		t.Errorf("expected 3 components after the diamond merge, got %d", got)
	}
}

func TestIncludeRepeated(t *testing.T) {
	files := map[string]string{
		"frag.ws": `(wire (define chip (x) (badge $x)))`,
	}
	result := mustCompile(t, `(wire (include "frag.ws") (include "frag.ws") (screen s (chip :x "1")))`,
		&compiler.Options{Resolver: mapResolver(files)})

	if len(result.Warnings) != 0 {
		t.Errorf("repeated include must merge once, got %v", result.Warnings)
	}
	if got := len(result.Document.Components); got != 1 {
		t.Errorf("expected a single component, got %d", got)
	}
}

// An include that redefines an existing definition reports one warning,
// not one from splicing plus one from validation.
func TestIncludeRedefinitionWarnsOnce(t *testing.T) {
	files := map[string]string{
		"frag.ws": `(wire (define chip (x) (badge $x)))`,
	}
	result := compiler.Compile(`(wire
		(define chip (x) (text $x))
		(include "frag.ws")
		(screen s (chip :x "1")))`,
		&compiler.Options{Resolver: mapResolver(files)})

	if !result.Success {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	count := 0
	for _, w := range result.Warnings {
		if w.Code == diagnostics.WDup && strings.Contains(w.Message, "chip") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one warning for 'chip', got %d: %v", count, result.Warnings)
	}
	if !hasDiag(result.Warnings, diagnostics.WDup, "redefines an earlier definition") {
		t.Errorf("expected the include-side message, got %v", result.Warnings)
	}
}

func TestIncludeNested(t *testing.T) {
	files := map[string]string{
		"a.ws": `(wire (include "b.ws") (define chip (x) (badge $x)))`,
		"b.ws": `(wire (define pill (x) (badge $x)))`,
	}
	result := mustCompile(t, `(wire (include "a.ws") (screen s (chip :x "1") (pill :x "2")))`,
		&compiler.Options{Resolver: mapResolver(files)})

	for _, name := range []string{"chip", "pill"} {
		if _, ok := result.Document.ComponentsByName[name]; !ok {
			t.Errorf("component %s missing after nested include", name)
		}
	}
}

// ---------------------------------------------------------------------------
// Test: meta conflicts resolve in favor of the root document
// ---------------------------------------------------------------------------
func TestIncludeMetaRootWins(t *testing.T) {
	files := map[string]string{
		"frag.ws": `(wire (meta :title "Fragment" :author "frag"))`,
	}
	result := compiler.Compile(`(wire
		(meta :title "Root")
		(include "frag.ws")
		(screen s (text "x")))`,
		&compiler.Options{Resolver: mapResolver(files)})

	if !result.Success {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	doc := result.Document
	if v, ok := doc.Meta["title"].(ast.StringValue); !ok || v.Value != "Root" {
		t.Errorf("root meta must win, got %+v", doc.Meta["title"])
	}
	if v, ok := doc.Meta["author"].(ast.StringValue); !ok || v.Value != "frag" {
		t.Errorf("non-conflicting meta should merge, got %+v", doc.Meta["author"])
	}
	if !hasDiag(result.Warnings, diagnostics.WDup, "Meta key 'title'") {
		t.Errorf("expected shadowing warning, got %v", result.Warnings)
	}
}

// ---------------------------------------------------------------------------
// Test: duplicate warnings never fail the compile
// ---------------------------------------------------------------------------
func TestDuplicateWarnings(t *testing.T) {
	result := compiler.Compile(`(wire
		(screen s (text "a"))
		(screen s (text "b"))
		(define chip (x) (text $x))
		(define chip (x) (badge $x))
		(layout shell (col (slot)))
		(layout shell (row (slot))))`, nil)

	if !result.Success {
		t.Fatalf("duplicates must be warnings, got errors: %v", result.Errors)
	}
	if !hasDiag(result.Warnings, diagnostics.WDup, "Duplicate screen id 's'") {
		t.Errorf("expected duplicate screen warning, got %v", result.Warnings)
	}
	if !hasDiag(result.Warnings, diagnostics.WDup, "Duplicate component definition 'chip'") {
		t.Errorf("expected duplicate component warning, got %v", result.Warnings)
	}
	if !hasDiag(result.Warnings, diagnostics.WDup, "Duplicate layout definition 'shell'") {
		t.Errorf("expected duplicate layout warning, got %v", result.Warnings)
	}
}

func TestLayoutWithoutSlotWarns(t *testing.T) {
	result := compiler.Compile(`(wire
		(layout bare (col (navbar)))
		(screen s :layout bare (text "x")))`, nil)

	if !result.Success {
		t.Fatalf("a slotless layout must not fail the compile: %v", result.Errors)
	}
	if !hasDiag(result.Warnings, diagnostics.WNoSlot, "Layout 'bare' has no slot") {
		t.Errorf("expected no-slot warning, got %v", result.Warnings)
	}
}

// ---------------------------------------------------------------------------
// Test: determinism
// ---------------------------------------------------------------------------
func TestCompileDeterministic(t *testing.T) {
	source := `(wire
		(include "shared.ws")
		(screen home "Home" (box (user-card :name "Ada") (button "Go" :to #confirm)))
		(screen s (text "b")))`
	files := map[string]string{
		"shared.ws": `(wire (define user-card (name) (card (text $name))))`,
	}
	opts := &compiler.Options{FilePath: "main.ws", Resolver: mapResolver(files)}

	a := compiler.Compile(source, opts)
	b := compiler.Compile(source, opts)

	if a.Success != b.Success || len(a.Errors) != len(b.Errors) || len(a.Warnings) != len(b.Warnings) {
		t.Fatal("repeat compilation diverged")
	}
	if len(a.Document.Screens) != len(b.Document.Screens) {
		t.Fatal("screen lists diverged")
	}
}
