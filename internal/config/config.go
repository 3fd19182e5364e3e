// Package config loads optional per-project compiler settings from a
// cflat.yaml file, falling back to compiled-in defaults when absent.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by every cflat-* binary.
type Config struct {
	// Pretty enables the caret-annotated stderr diagnostic renderer in
	// addition to the plain sorted stdout contract.
	Pretty bool `yaml:"pretty"`

	// Verbose enables -vb style pass logging.
	Verbose bool `yaml:"verbose"`

	// ScratchRegisters records the registers the code generator reuses
	// freely as scratch space. It is descriptive only: internal/codegen
	// always uses %r8, %r9 and %r10 and does not read this field.
	ScratchRegisters []string `yaml:"scratch_registers"`

	// AllocSymbol and PanicSymbol name the externally provided runtime
	// allocator and panic-handler entry points generated calls target.
	AllocSymbol string `yaml:"alloc_symbol"`
	PanicSymbol string `yaml:"panic_symbol"`
}

// Default returns the compiled-in configuration used when no cflat.yaml
// is present.
func Default() *Config {
	return &Config{
		Pretty:           false,
		Verbose:          false,
		ScratchRegisters: []string{"%r8", "%r9", "%r10"},
		AllocSymbol:      "_cflat_alloc",
		PanicSymbol:      "_cflat_panic",
	}
}

// Load reads path (typically "cflat.yaml") if it exists, merging its
// fields over Default. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
