// Command cflat-lex scans a cflat source file and prints its token stream,
// one token per line, in an "Id(name)" / "Num(digits)" / bare-tag format.
// The dump is also cflat-parse's input format, so this binary and
// cflat-parse's token reader are two halves of one contract.
package main

import (
	"bufio"
	"fmt"
	"os"

	"cflat/internal/cliutil"
	"cflat/internal/config"
	"cflat/internal/lexer"
)

func main() {
	f := cliutil.Parse("cflat-lex", os.Args[1:])

	cfg, err := config.Load("cflat.yaml")
	if err != nil {
		cliutil.Fail(err)
	}
	f.ApplyConfig(cfg)
	logger := cliutil.Logger("cflat-lex", f.Verbose)

	src, err := os.ReadFile(f.Path)
	if err != nil {
		cliutil.Fail(err)
	}
	logger.Printf("read %d bytes from %s", len(src), f.Path)

	toks, err := lexer.Scan(string(src))
	if err != nil {
		cliutil.Fail(err)
	}
	logger.Printf("scanned %d tokens", len(toks))

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for _, t := range toks {
		fmt.Fprintln(w, t.String())
	}
}
