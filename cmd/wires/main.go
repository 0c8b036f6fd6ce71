// Command wires is the native WireScript CLI entry point.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/wirekit/wirescript/pkg/compiler"
	"github.com/wirekit/wirescript/pkg/diagnostics"
	"github.com/wirekit/wirescript/pkg/formatter"
	"github.com/wirekit/wirescript/pkg/lexer"
	"github.com/wirekit/wirescript/pkg/schema"
)

const (
	historyFile = ".wirescript_history"
	promptMain  = "==> "
	promptCont  = "... "
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: wires <command> [options]")
		fmt.Fprintln(os.Stderr, "commands: compile, check, fmt, schema, repl")
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "compile":
		os.Exit(cmdCompile(os.Args[2:]))
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "fmt":
		os.Exit(cmdFmt(os.Args[2:]))
	case "schema":
		os.Exit(cmdSchema(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		os.Exit(1)
	}
}

// fileResolver resolves include paths relative to the including file.
func fileResolver(includePath, fromPath string) (string, string, error) {
	resolved := includePath
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(fromPath), includePath)
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", resolved, err
	}
	return string(data), resolved, nil
}

func cmdCompile(args []string) int {
	var file string
	pretty := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: wires compile <file> [--pretty]")
		return 1
	}

	source, filename, exitCode := readSource(file, pretty)
	if exitCode != 0 {
		return exitCode
	}

	result := compiler.Compile(source, &compiler.Options{
		FilePath: filename,
		Resolver: fileResolver,
	})

	if len(result.Warnings) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(result.Warnings, pretty))
	}
	if !result.Success {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(result.Errors, pretty))
		return 2
	}

	var out []byte
	var err error
	if pretty {
		out, err = json.MarshalIndent(result.Document, "", "  ")
	} else {
		out, err = json.Marshal(result.Document)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error serializing document: %s\n", err)
		return 4
	}
	fmt.Println(string(out))
	return 0
}

func cmdCheck(args []string) int {
	var file string
	pretty := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: wires check <file> [--pretty]")
		return 1
	}

	source, filename, exitCode := readSource(file, pretty)
	if exitCode != 0 {
		return exitCode
	}

	result := compiler.Compile(source, &compiler.Options{
		FilePath: filename,
		Resolver: fileResolver,
	})

	diags := append(append([]diagnostics.Diagnostic(nil), result.Errors...), result.Warnings...)
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diags, pretty))
	}
	if !result.Success {
		return 2
	}

	if pretty {
		fmt.Println("No errors found.")
	} else {
		fmt.Println("[]")
	}
	return 0
}

func cmdFmt(args []string) int {
	var file string
	write := false
	indent := ""

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--write":
			write = true
		case "--indent":
			if i+1 < len(args) {
				i++
				indent = args[i]
			}
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: wires fmt <file> [--write] [--indent <string>]")
		return 1
	}

	sourceBytes, err := os.ReadFile(file)
	if err != nil {
		diag := diagnostics.At(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), file, 0, 0)
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, false))
		return 1
	}

	formatted, fmtErr := formatter.Format(string(sourceBytes), formatter.Options{Indent: indent})
	if fmtErr != nil {
		var lexErr *lexer.LexError
		if errors.As(fmtErr, &lexErr) {
			fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{lexErr.Diag}, false))
			return 2
		}
		fmt.Fprintln(os.Stderr, fmtErr.Error())
		return 2
	}

	if write {
		if err := os.WriteFile(file, []byte(formatted), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing file: %s\n", err)
			return 1
		}
	} else {
		fmt.Print(formatted)
	}
	return 0
}

func cmdSchema(args []string) int {
	pretty := false
	for _, arg := range args {
		if arg == "--pretty" {
			pretty = true
		}
	}

	snap := schema.Snapshot()
	var out []byte
	var err error
	if pretty {
		out, err = json.MarshalIndent(snap, "", "  ")
	} else {
		out, err = json.Marshal(snap)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error serializing schema: %s\n", err)
		return 4
	}
	fmt.Println(string(out))
	return 0
}

// ---------------------------------------------------------------------------
// repl
// ---------------------------------------------------------------------------

func cmdRepl(_ []string) int {
	fmt.Println("WireScript REPL")
	fmt.Println("Ctrl+C cancels input, Ctrl+D exits. Type :quit to exit.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		code, ok := readBalanced(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		result := compiler.Compile(code, &compiler.Options{FilePath: "<repl>"})
		diags := append(append([]diagnostics.Diagnostic(nil), result.Errors...), result.Warnings...)
		if len(diags) > 0 {
			fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diags, true))
		}
		if result.Success {
			out, err := json.MarshalIndent(result.Document, "", "  ")
			if err == nil {
				fmt.Println(string(out))
			}
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

// readBalanced keeps prompting for continuation lines until the input's
// parentheses balance, so multi-line forms can be typed naturally.
func readBalanced(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if depth, ok := parenDepth(src); !ok || depth <= 0 {
			return src, true
		}
	}
}

// parenDepth lexes source and reports the net open-paren depth. A lex
// error means the snippet is complete enough to hand to the compiler
// for a real diagnostic.
func parenDepth(source string) (int, bool) {
	tokens, err := lexer.Tokenize(source, "<repl>")
	if err != nil {
		return 0, false
	}
	depth := 0
	for _, t := range tokens {
		switch t.Type {
		case lexer.TokLParen:
			depth++
		case lexer.TokRParen:
			depth--
		}
	}
	return depth, true
}

// readSource reads a file, or stdin when the name is "-".
func readSource(file string, pretty bool) (string, string, int) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading stdin: %s\n", err)
			return "", "", 1
		}
		return string(data), "<stdin>", 0
	}

	data, err := os.ReadFile(file)
	if err != nil {
		diag := diagnostics.At(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), file, 0, 0)
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
		return "", "", 1
	}
	return string(data), file, 0
}
