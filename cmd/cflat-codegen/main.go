// Command cflat-codegen reads a LIR program (a .lir.json file, optimized
// or not) and emits 64-bit x86 AT&T-syntax assembly to stdout. It honors
// an optional cflat.yaml in the working directory for the runtime
// allocator/panic symbol names (see internal/config).
package main

import (
	"fmt"
	"os"

	"cflat/internal/cliutil"
	"cflat/internal/codegen"
	"cflat/internal/config"
	"cflat/internal/diagnostics"
	"cflat/internal/ir"
)

func main() {
	f := cliutil.Parse("cflat-codegen", os.Args[1:])

	cfg, err := config.Load("cflat.yaml")
	if err != nil {
		cliutil.Fail(err)
	}
	f.ApplyConfig(cfg)
	logger := cliutil.Logger("cflat-codegen", f.Verbose)
	logger.Printf("using alloc=%s panic=%s", cfg.AllocSymbol, cfg.PanicSymbol)

	data, err := os.ReadFile(f.Path)
	if err != nil {
		cliutil.Fail(err)
	}

	prog, err := ir.UnmarshalProgram(data)
	if err != nil {
		cliutil.Fail(err)
	}
	logger.Printf("loaded %d functions from %s", len(prog.Functions), f.Path)

	for _, fn := range prog.Functions {
		if err := ir.CheckIntegrity(fn); err != nil {
			cliutil.Fail(diagnostics.WrapFault(err, "malformed LIR reached codegen"))
		}
	}

	asm := codegen.GenerateWithConfig(prog, cfg)
	logger.Printf("generated %d bytes of assembly", len(asm))

	fmt.Print(asm)
}
