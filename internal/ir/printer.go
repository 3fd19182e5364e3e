package ir

import (
	"fmt"
	"sort"
	"strings"
)

// Printer renders a Program as indented text, in the same writeIndent /
// writeLine shape as the AST's text printer.
type Printer struct {
	indent int
	out    strings.Builder
}

// Print renders prog as text. Functions are printed in declaration
// order; each function's blocks are printed in Order (the order the
// Lowerer emitted them), which is deterministic even though Blocks
// itself is a map.
func Print(prog *Program) string {
	p := &Printer{}
	p.printProgram(prog)
	return p.out.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.out.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.out.WriteString(fmt.Sprintf(format, args...))
	p.out.WriteString("\n")
}

func (p *Printer) printProgram(prog *Program) {
	for _, name := range sortedKeys(prog.Globals) {
		p.writeLine("global %s: %s", name, prog.Globals[name])
	}
	for _, name := range sortedKeys(prog.Externs) {
		p.writeLine("extern %s: %s", name, prog.Externs[name])
	}
	for _, name := range sortedKeys(prog.Structs) {
		p.writeLine("struct %s {", name)
		p.indent++
		for _, f := range prog.Structs[name] {
			p.writeLine("%s: %s", f.Name, f.Type)
		}
		p.indent--
		p.writeLine("}")
	}
	for _, fn := range prog.Functions {
		p.printFunction(fn)
	}
}

func (p *Printer) printFunction(fn *Function) {
	ret := "_"
	if fn.RetType != nil {
		ret = fn.RetType.String()
	}
	p.writeLine("fn %s(%s) -> %s {", fn.Name, strings.Join(fn.Params, ", "), ret)
	p.indent++
	for _, l := range fn.Locals {
		p.writeLine("local %s: %s", l.Name, l.Type)
	}
	for _, label := range fn.Order {
		block := fn.Blocks[label]
		p.printBlock(block)
	}
	p.indent--
	p.writeLine("}")
}

func (p *Printer) printBlock(b *BasicBlock) {
	p.writeLine("%s:", b.Label)
	p.indent++
	for _, instr := range b.Instructions {
		p.writeLine("%s", instr)
	}
	if b.Terminator != nil {
		p.writeLine("%s", b.Terminator)
	}
	p.indent--
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

