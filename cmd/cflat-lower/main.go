// Command cflat-lower reads a checked AST (a .ast.json file) and lowers it
// to LIR. The type checker runs again here rather than trusting the file:
// if it reports any diagnostic, those diagnostics are the stage's entire
// output and no LIR is produced. A clean AST's stdout contract is the
// indented JSON serialization of the resulting *ir.Program, the same
// artifact cflat-opt and cflat-codegen read back.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"cflat/internal/ast"
	"cflat/internal/cliutil"
	"cflat/internal/config"
	"cflat/internal/diagnostics"
	"cflat/internal/ir"
	"cflat/internal/lower"
	"cflat/internal/semantic"
)

func main() {
	f := cliutil.Parse("cflat-lower", os.Args[1:])

	cfg, err := config.Load("cflat.yaml")
	if err != nil {
		cliutil.Fail(err)
	}
	f.ApplyConfig(cfg)
	logger := cliutil.Logger("cflat-lower", f.Verbose)

	data, err := os.ReadFile(f.Path)
	if err != nil {
		cliutil.Fail(err)
	}

	prog, err := ast.UnmarshalProgram(data)
	if err != nil {
		cliutil.Fail(err)
	}
	logger.Printf("loaded program with %d functions from %s", len(prog.Functions), f.Path)

	diags := semantic.Check(prog)
	if len(diags) > 0 {
		logger.Printf("type checker rejected program: %d diagnostics, no LIR emitted", len(diags))
		if f.Pretty {
			reporter := diagnostics.NewReporter(f.Path, "")
			fmt.Fprint(os.Stderr, reporter.FormatAll(diags))
		}
		fmt.Print(diagnostics.Lines(diags))
		return
	}

	irProg := lower.Program(prog)
	logger.Printf("lowered to LIR:\n%s", ir.Print(irProg))

	for _, fn := range irProg.Functions {
		if err := ir.CheckIntegrity(fn); err != nil {
			cliutil.Fail(diagnostics.WrapFault(err, "lowerer produced malformed LIR"))
		}
	}

	out, err := json.MarshalIndent(irProg, "", "  ")
	if err != nil {
		cliutil.Fail(err)
	}
	fmt.Println(string(out))
}
