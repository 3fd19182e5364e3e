// Package cliutil holds the flag parsing, logging, and exit-code
// conventions shared by the five cflat-* stage binaries under cmd/. Each
// stage is a thin wrapper around one compiler package; this is the part
// that would otherwise be copy-pasted five times.
package cliutil

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"cflat/internal/config"
)

// Flags is the shared flag surface every cflat-* binary exposes: a single
// positional path argument plus -vb (verbose stderr logging) and -pretty
// (colorized stderr diagnostic rendering, additive to the plain stdout
// contract).
type Flags struct {
	Verbose bool
	Pretty  bool
	Path    string
}

// Parse registers the shared flags under stage's name and requires exactly
// one positional argument. It exits the process directly on a usage error,
// matching the other stage binaries' fail-fast contract.
func Parse(stage string, args []string) *Flags {
	fs := flag.NewFlagSet(stage, flag.ExitOnError)
	vb := fs.Bool("vb", false, "write verbose progress to stderr")
	pretty := fs.Bool("pretty", false, "render diagnostics with color on stderr")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [-vb] [-pretty] <path>\n", stage)
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	return &Flags{Verbose: *vb, Pretty: *pretty, Path: fs.Arg(0)}
}

// ApplyConfig folds cflat.yaml's Verbose/Pretty settings into f: either
// source can turn a setting on, and neither can turn off a setting the
// other turned on. Called after Parse, once cfg has been loaded.
func (f *Flags) ApplyConfig(cfg *config.Config) {
	f.Verbose = f.Verbose || cfg.Verbose
	f.Pretty = f.Pretty || cfg.Pretty
}

// Logger returns a stage-tagged logger writing to stderr when verbose is
// set, or a logger that discards everything otherwise — callers never need
// to guard every call site with an `if verbose` check.
func Logger(stage string, verbose bool) *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "["+stage+"] ", log.LstdFlags)
}

// Fail reports err to stderr and exits nonzero. Every stage's I/O failures,
// malformed input, and internal faults route through here.
func Fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
