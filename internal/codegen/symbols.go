package codegen

import (
	"regexp"

	"github.com/iancoleman/strcase"
)

// validLabelChar matches characters the AT&T assembler accepts unescaped
// in a symbol name. Source identifiers are already restricted to this by
// the lexer, but struct and global names can in principle carry
// characters (Unicode, punctuation the lexer's identifier rule permits)
// that don't survive into an assembler label; sanitize defensively.
var validLabelChar = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// sanitize rewrites name into a safe assembler symbol, snake-casing it
// first so the mangling stays readable in generated listings.
func sanitize(name string) string {
	if validLabelChar.MatchString(name) {
		return name
	}
	return strcase.ToSnake(name)
}

// funcLabel returns the code symbol for function/extern name.
func funcLabel(name string) string { return sanitize(name) }

// blockLabel returns the assembler label for block within function fn,
// namespaced so every block's jump target is unique across the module
// ("jmp funcName_L").
func blockLabel(fn, block string) string { return sanitize(fn) + "_" + block }

// epilogueLabel returns the label CodeGen jumps to from every Ret.
func epilogueLabel(fn string) string { return sanitize(fn) + "_epilogue" }

// fnPtrCellLabel returns the trailing-underscore companion symbol that
// holds a function or extern's own address (e.g. `printf_`, read via
// `printf_(%rip)`) — the indirection AddrOf routes through whenever a
// function's name is used as a value. CallIndirect does not read it: it
// calls through the pointer operand's own storage.
func fnPtrCellLabel(name string) string { return sanitize(name) + "_" }
