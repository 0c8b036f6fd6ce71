package parser_test

import (
	"testing"

	"github.com/wirekit/wirescript/pkg/parser"
)

// FuzzParseSource feeds random inputs to the parser to catch panics.
// The parser should never panic — it should return diagnostics for invalid input.
func FuzzParseSource(f *testing.F) {
	// Seed corpus with valid and edge-case documents
	seeds := []string{
		// Minimal valid document
		`(wire (screen home "Home" (text "Hi")))`,
		// Meta block
		`(wire (meta :title "App" :version 2) (screen s (text "x")))`,
		// Props and coercion
		`(wire (screen s (box :gap "16" :align center (text "x" :bold "TRUE"))))`,
		// Param refs
		`(wire (screen s (box :gap $spacing (text $title))))`,
		// Nav targets
		`(wire (screen s (button "Go" :to #confirm) (link "Out" :to "https://x.y")))`,
		// Action target
		`(wire (screen s (button "Back" :to :back)))`,
		// Overlays
		`(wire (screen s (box) (modal m :title "Sure?" (text "?")) (toast t2 (text "!"))))`,
		// Components
		`(wire (define user-card (name) (card (text $name))) (screen s (user-card :name "A")))`,
		// Layouts
		`(wire (layout shell (col (navbar) (slot))) (screen s :layout shell (text "x")))`,
		// Repeat
		`(wire (screen s (list (repeat 3 :as i (text $i)))))`,
		`(wire (screen s (list (repeat $n (text "r")))))`,
		// Include
		`(wire (include "a.ws") (screen s (text "x")))`,
		// Viewports
		`(wire (screen s :mobile (text "x")) (screen w :wide (text "y")))`,
		// Deep nesting
		`(wire (screen s (box (row (card (col (text "deep")))))))`,
		// Errors and recovery
		``,
		`   `,
		`(screen home (text "x"))`,
		`(wire (widget foo) (screen s (text "x")))`,
		`(wire (screen s (text "x" (box))))`,
		`(wire (screen s (text "x"`,
		`(wire`,
		`)`,
		`(wire (screen (text "x")))`,
		`(wire (repeat))`,
		`(wire (screen s (repeat x (text "y"))))`,
		`(wire (define))`,
		`(wire (include))`,
		// Unterminated string
		`(wire (screen s (text "x`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		// ParseSource should never panic, regardless of input.
		// It may return diagnostics or a nil document, but should not crash.
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("parser.ParseSource panicked on input %q: %v", input, r)
				}
			}()
			parser.ParseSource(input, "fuzz.ws")
		}()
	})
}
