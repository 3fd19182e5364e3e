// Command cflat-opt reads a LIR program (a .lir.json file) and runs the
// constant-propagation pass over every function in it — the pass is
// intraprocedural, so each function optimizes independently of the
// others. The result is written back in the same indented-JSON form.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"cflat/internal/cliutil"
	"cflat/internal/config"
	"cflat/internal/ir"
	"cflat/internal/opt"
)

func main() {
	f := cliutil.Parse("cflat-opt", os.Args[1:])

	cfg, err := config.Load("cflat.yaml")
	if err != nil {
		cliutil.Fail(err)
	}
	f.ApplyConfig(cfg)
	logger := cliutil.Logger("cflat-opt", f.Verbose)

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
		opt.Function(fn)
		logger.Printf("optimized %s", fn.Name)
	}

	out, err := json.MarshalIndent(prog, "", "  ")
	if err != nil {
		cliutil.Fail(err)
	}
	fmt.Println(string(out))
}
