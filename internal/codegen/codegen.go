// Package codegen walks a LIR program (optimized or not) and emits
// x86_64 AT&T-syntax assembly, using a fixed stack frame per function
// (no register allocation), the System V AMD64 calling convention for
// external calls, and an all-stack convention for calls within the
// module.
package codegen

import (
	"fmt"
	"sort"
	"strings"

	"cflat/internal/config"
	"cflat/internal/ir"
)

// asm is a minimal line-oriented assembly writer: instructions are
// tab-indented, labels are flush left, matching how `as` listings are
// conventionally laid out.
type asm struct {
	b strings.Builder
}

func (a *asm) line(format string, args ...interface{}) {
	a.b.WriteString("\t")
	fmt.Fprintf(&a.b, format, args...)
	a.b.WriteString("\n")
}

func (a *asm) label(name string) {
	a.b.WriteString(name)
	a.b.WriteString(":\n")
}

func (a *asm) raw(s string) { a.b.WriteString(s) }

// Generate renders prog as a complete assembly module using the
// compiled-in runtime symbol names (see GenerateWithConfig for a
// cflat.yaml-configured build).
func Generate(prog *ir.Program) string {
	return GenerateWithConfig(prog, config.Default())
}

// GenerateWithConfig is Generate, but the allocator and panic entry points
// a program's Alloc instructions and fault handlers call out to come from
// cfg rather than the compiled-in defaults — the knob internal/config
// exists to carry.
func GenerateWithConfig(prog *ir.Program, cfg *config.Config) string {
	out := &asm{}

	funcNames := map[string]bool{}
	for _, fn := range prog.Functions {
		funcNames[fn.Name] = true
	}
	externNames := map[string]bool{}
	for name := range prog.Externs {
		externNames[name] = true
	}

	out.raw(".text\n")
	for _, name := range sortedFuncNames(prog) {
		out.line(".globl %s", funcLabel(name))
	}
	out.raw("\n")

	offs := structOffsets(prog)
	for _, fn := range prog.Functions {
		genFunction(out, fn, funcNames, externNames, offs, cfg.AllocSymbol)
		out.raw("\n")
	}

	genFaultHandlers(out, cfg.PanicSymbol)
	genDataSection(out, prog, funcNames, externNames)

	return out.b.String()
}

func sortedFuncNames(prog *ir.Program) []string {
	names := make([]string, len(prog.Functions))
	for i, fn := range prog.Functions {
		names[i] = fn.Name
	}
	sort.Strings(names)
	return names
}

func genFunction(out *asm, fn *ir.Function, funcNames, externNames map[string]bool, offs map[string]map[string]int, allocSymbol string) {
	fr := buildFrame(fn)
	e := &emitter{
		fn:          fn.Name,
		fr:          fr,
		funcNames:   funcNames,
		externNames: externNames,
		structOffs:  offs,
		allocSymbol: allocSymbol,
		out:         out,
	}

	out.label(funcLabel(fn.Name))
	out.line("pushq %%rbp")
	out.line("movq %%rsp, %%rbp")
	if fr.frameSize > 0 {
		out.line("subq $%d, %%rsp", fr.frameSize)
	}
	zeroed := map[string]bool{}
	for _, loc := range fn.Locals {
		if fr.isParam(loc.Name) || zeroed[loc.Name] {
			continue
		}
		zeroed[loc.Name] = true
		off, _ := fr.slotOffset(loc.Name)
		out.line("movq $0, %d(%%rbp)", off)
	}

	for _, label := range fn.Order {
		out.label(blockLabel(fn.Name, label))
		block := fn.Blocks[label]
		for _, instr := range block.Instructions {
			e.emitInstr(instr)
		}
		e.emitTerminator(block.Terminator)
	}

	out.label(epilogueLabel(fn.Name))
	out.line("movq %%rbp, %%rsp")
	out.line("popq %%rbp")
	out.line("ret")
}

// genFaultHandlers emits the two shared labels every bounds/allocation
// check jumps to: each loads a fixed message and calls panicSymbol, which
// never returns.
func genFaultHandlers(out *asm, panicSymbol string) {
	out.label(".out_of_bounds")
	out.line("leaq .Lmsg_out_of_bounds(%%rip), %%rdi")
	out.line("call %s", panicSymbol)

	out.label(".invalid_alloc_length")
	out.line("leaq .Lmsg_invalid_alloc_length(%%rip), %%rdi")
	out.line("call %s", panicSymbol)
	out.raw("\n")
}

func genDataSection(out *asm, prog *ir.Program, funcNames, externNames map[string]bool) {
	out.raw(".data\n")
	out.label(".Lmsg_out_of_bounds")
	out.line(".asciz \"array index out of bounds\"")
	out.label(".Lmsg_invalid_alloc_length")
	out.line(".asciz \"allocation length must be positive\"")

	for _, name := range sortedNameSet(funcNames) {
		out.label(fnPtrCellLabel(name))
		out.line(".quad %s", funcLabel(name))
	}
	for _, name := range sortedNameSet(externNames) {
		out.label(fnPtrCellLabel(name))
		out.line(".quad %s", funcLabel(name))
	}

	out.raw("\n.bss\n")
	for _, name := range sortedGlobalNames(prog) {
		out.label(sanitize(name))
		out.line(".zero 8")
	}
}

func sortedNameSet(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedGlobalNames(prog *ir.Program) []string {
	names := make([]string, 0, len(prog.Globals))
	for name := range prog.Globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
