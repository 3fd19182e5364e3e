// Command cflat-parse turns a token stream into a checked AST. Its stdout
// contract is the indented JSON serialization of the AST (the same
// artifact cflat-lower reads as a .ast.json file) followed by the sorted
// type-checking diagnostics, one per line. A syntax error is fatal and
// reported instead: "parse error at token <n>" and nothing else.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"cflat/internal/ast"
	"cflat/internal/cliutil"
	"cflat/internal/config"
	"cflat/internal/diagnostics"
	"cflat/internal/parser"
	"cflat/internal/semantic"
	"cflat/internal/token"
)

func main() {
	f := cliutil.Parse("cflat-parse", os.Args[1:])

	cfg, err := config.Load("cflat.yaml")
	if err != nil {
		cliutil.Fail(err)
	}
	f.ApplyConfig(cfg)
	logger := cliutil.Logger("cflat-parse", f.Verbose)

	data, err := os.ReadFile(f.Path)
	if err != nil {
		cliutil.Fail(err)
	}

	toks, err := token.ParseStream(string(data))
	if err != nil {
		cliutil.Fail(err)
	}
	logger.Printf("read %d tokens from %s", len(toks), f.Path)

	prog, err := parser.Parse(toks)
	if err != nil {
		// A parse error is its own complete, single-line report — no
		// diagnostics, no AST, nonzero exit.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Printf("parsed program:\n%s", ast.Print(prog))

	out, err := json.MarshalIndent(prog, "", "  ")
	if err != nil {
		cliutil.Fail(err)
	}
	fmt.Println(string(out))

	diags := semantic.Check(prog)
	logger.Printf("type checker produced %d diagnostics", len(diags))

	if f.Pretty && len(diags) > 0 {
		// The parse stage's input is a bare token stream with no
		// original source text, so the Reporter has no line to quote —
		// it still renders the message and position, just without the
		// source line and caret.
		reporter := diagnostics.NewReporter(f.Path, "")
		fmt.Fprint(os.Stderr, reporter.FormatAll(diags))
	}
	fmt.Print(diagnostics.Lines(diags))
}
