package codegen

import (
	"fmt"

	"cflat/internal/ir"
)

// emitter carries everything instruction emission needs for one
// function: its frame, the program-wide symbol sets that distinguish a
// local read from a global or function/extern read, and the struct
// field-offset tables Gfp consults.
type emitter struct {
	fn          string
	fr          *frame
	funcNames   map[string]bool
	externNames map[string]bool
	structOffs  map[string]map[string]int
	allocSymbol string
	out         *asm
}

// ref renders how to read/write operand o's storage: a slot(%rbp) form
// for a local/param, or a name(%rip) form for a global. o must not be a
// Const (callers check IsConst first) and must not name a bare
// function/extern (those have no value-operand form — only AddrOf may
// reference one, via the fnPtrCellLabel indirection).
func (e *emitter) ref(name string) string {
	if off, ok := e.fr.slotOffset(name); ok {
		return fmt.Sprintf("%d(%%rbp)", off)
	}
	return fmt.Sprintf("%s(%%rip)", sanitize(name))
}

// operandRef renders o (Const or Var) as an AT&T operand for
// instructions that accept either an immediate or a memory operand
// directly, such as `pushq`.
func (e *emitter) operandRef(o ir.Operand) string {
	if o.IsConst {
		return fmt.Sprintf("$%d", o.Const)
	}
	return e.ref(o.Var)
}

// loadInto emits a movq of operand o into register reg.
func (e *emitter) loadInto(o ir.Operand, reg string) {
	if o.IsConst {
		e.out.line("movq $%d, %%%s", o.Const, reg)
		return
	}
	e.out.line("movq %s, %%%s", e.ref(o.Var), reg)
}

// storeFrom emits a movq of register reg into operand dst's storage.
func (e *emitter) storeFrom(reg string, dst ir.Operand) {
	e.out.line("movq %%%s, %s", reg, e.ref(dst.Var))
}
