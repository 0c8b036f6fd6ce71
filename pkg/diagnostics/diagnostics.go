// Package diagnostics defines WireScript diagnostic types for lex, parse,
// and document-validation errors and warnings.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wirekit/wirescript/pkg/ast"
)

// Diagnostic code constants.
const (
	ELex      = "E_LEX"
	EParse    = "E_PARSE"
	EValidate = "E_VALIDATE"
	EInclude  = "E_INCLUDE"
	EIO       = "E_IO"
	WDup      = "W_DUP"
	WNoSlot   = "W_NO_SLOT"
)

// Diagnostic represents a lex, parse, include, or validation diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// At creates a Diagnostic positioned at a single point.
func At(code, message, file string, line, col int) Diagnostic {
	return MakeDiag(code, message, &ast.Span{
		File:      file,
		StartLine: line,
		StartCol:  col,
		EndLine:   line,
		EndCol:    col + 1,
	}, "")
}

// IsWarning reports whether the diagnostic is a warning code.
func (d Diagnostic) IsWarning() bool {
	return strings.HasPrefix(d.Code, "W_")
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)
	}
	level := "error"
	if d.IsWarning() {
		level = "warning"
	}
	out := fmt.Sprintf("%s[%s]: %s\n  --> %s", level, d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
