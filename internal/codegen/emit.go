package codegen

import "cflat/internal/ir"

var argRegs = [6]string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

func (e *emitter) emitInstr(instr ir.Instruction) {
	switch n := instr.(type) {
	case ir.Copy:
		e.loadInto(n.Src, "r8")
		e.storeFrom("r8", n.Dst)

	case ir.Arith:
		e.emitArith(n)

	case ir.Cmp:
		e.emitCmp(n)

	case ir.Alloc:
		e.emitAlloc(n)

	case ir.Load:
		e.loadInto(n.Addr, "r8")
		e.out.line("movq 0(%%r8), %%r9")
		e.out.line("movq %%r9, %s", e.ref(n.Dst.Var))

	case ir.Store:
		e.loadInto(n.Val, "r8")
		e.loadInto(n.Addr, "r9")
		e.out.line("movq %%r8, 0(%%r9)")

	case ir.Gep:
		e.emitGep(n)

	case ir.Gfp:
		e.emitGfp(n)

	case ir.AddrOf:
		e.emitAddrOf(n)

	case ir.CallExt:
		e.emitCallExt(n)
	}
}

func (e *emitter) emitArith(n ir.Arith) {
	if n.Op == ir.DivOp {
		e.loadInto(n.A, "rax")
		e.out.line("cqo")
		if n.B.IsConst {
			e.out.line("movq $%d, %%r8", n.B.Const)
			e.out.line("idivq %%r8")
		} else {
			e.out.line("idivq %s", e.ref(n.B.Var))
		}
		e.out.line("movq %%rax, %s", e.ref(n.Dst.Var))
		return
	}
	e.loadInto(n.A, "r8")
	op := map[ir.ArithOp]string{ir.Add: "addq", ir.Sub: "subq", ir.Mul: "imulq"}[n.Op]
	if n.B.IsConst {
		e.out.line("%s $%d, %%r8", op, n.B.Const)
	} else {
		e.out.line("%s %s, %%r8", op, e.ref(n.B.Var))
	}
	e.out.line("movq %%r8, %s", e.ref(n.Dst.Var))
}

var setForCmp = map[ir.CmpOp]string{
	ir.Eq: "sete", ir.Neq: "setne", ir.Lt: "setl", ir.Lte: "setle", ir.Gt: "setg", ir.Gte: "setge",
}

func (e *emitter) emitCmp(n ir.Cmp) {
	// cmpq's second operand is the one the comparison is against; an
	// immediate can only appear as the first (source) operand, so a
	// constant A is loaded into a register like any Var would be.
	e.loadInto(n.A, "r8")
	if n.B.IsConst {
		e.out.line("cmpq $%d, %%r8", n.B.Const)
	} else {
		e.out.line("cmpq %s, %%r8", e.ref(n.B.Var))
	}
	e.out.line("%s %%r9b", setForCmp[n.Op])
	e.out.line("movzbq %%r9b, %%r9")
	e.out.line("movq %%r9, %s", e.ref(n.Dst.Var))
}

func (e *emitter) emitAlloc(n ir.Alloc) {
	e.loadInto(n.Size, "r9") // keep the element count for the header write
	e.out.line("cmpq $0, %%r9")
	e.out.line("jle .invalid_alloc_length")
	e.out.line("movq %%r9, %%r8")
	e.out.line("addq $1, %%r8")
	e.out.line("imulq $8, %%r8")
	e.out.line("movq %%r8, %%rdi")
	e.out.line("call %s", e.allocSymbol)
	e.loadInto(n.Size, "r9") // %r9 is caller-saved, so reload the count after the call
	e.out.line("movq %%r9, 0(%%rax)")
	e.out.line("leaq 8(%%rax), %%r8")
	e.out.line("movq %%r8, %s", e.ref(n.Dst.Var))
}

func (e *emitter) emitGep(n ir.Gep) {
	e.loadInto(n.Index, "r8")
	e.out.line("cmpq $0, %%r8")
	e.out.line("jl .out_of_bounds")
	e.loadInto(n.Ptr, "r9")
	e.out.line("movq -8(%%r9), %%r10")
	e.out.line("cmpq %%r10, %%r8")
	e.out.line("jge .out_of_bounds")
	e.out.line("imulq $8, %%r8")
	e.out.line("addq %%r9, %%r8")
	e.out.line("movq %%r8, %s", e.ref(n.Dst.Var))
}

func (e *emitter) emitGfp(n ir.Gfp) {
	off := e.structOffs[e.structOfPtr(n)][n.Field]
	e.loadInto(n.Ptr, "r8")
	e.out.line("leaq %d(%%r8), %%r9", off)
	e.out.line("movq %%r9, %s", e.ref(n.Dst.Var))
}

// structOfPtr resolves which struct's offset table Gfp should use. The
// LIR carries no pointee-struct annotation on Gfp itself, so CodeGen
// looks the field up in whichever single struct declares it; cflat has
// no field-name overloading across structs (the checker's Δ is keyed
// per-struct, but a given source program's Gfp instructions are only
// ever lowered against the one struct type the checker already proved
// Ptr points at).
func (e *emitter) structOfPtr(n ir.Gfp) string {
	for name, fields := range e.structOffs {
		if _, ok := fields[n.Field]; ok {
			return name
		}
	}
	return ""
}

func (e *emitter) emitAddrOf(n ir.AddrOf) {
	switch {
	case e.funcNames[n.Name] || e.externNames[n.Name]:
		e.out.line("movq %s(%%rip), %%r8", fnPtrCellLabel(n.Name))
	case e.fr.isParam(n.Name):
		off, _ := e.fr.slotOffset(n.Name)
		e.out.line("leaq %d(%%rbp), %%r8", off)
	default:
		if off, ok := e.fr.slotOffset(n.Name); ok {
			e.out.line("leaq %d(%%rbp), %%r8", off)
		} else {
			e.out.line("leaq %s(%%rip), %%r8", sanitize(n.Name))
		}
	}
	e.out.line("movq %%r8, %s", e.ref(n.Dst.Var))
}

func (e *emitter) emitCallExt(n ir.CallExt) {
	nreg := len(n.Args)
	if nreg > 6 {
		nreg = 6
	}
	extra := n.Args[nreg:]
	extraBytes := e.pushArgs(extra)

	for i := 0; i < nreg; i++ {
		e.loadInto(n.Args[i], argRegs[i])
	}
	e.out.line("call %s", funcLabel(n.Extern))
	if extraBytes > 0 {
		e.out.line("addq $%d, %%rsp", extraBytes)
	}
	if n.Dst != nil {
		e.storeFrom("rax", *n.Dst)
	}
}

// pushArgs pushes args right-to-left (so the first argument ends on top
// of the stack, at the lowest address), pre-padding by 8 bytes when the
// count is odd so the stack stays 16-aligned at the following `call`.
// It returns the total bytes the caller must restore afterward.
func (e *emitter) pushArgs(args []ir.Operand) int {
	pad := 0
	if len(args)%2 == 1 {
		pad = 8
		e.out.line("subq $8, %%rsp")
	}
	for i := len(args) - 1; i >= 0; i-- {
		e.out.line("pushq %s", e.operandRef(args[i]))
	}
	return len(args)*8 + pad
}

func (e *emitter) emitTerminator(term ir.Terminator) {
	switch n := term.(type) {
	case ir.Jump:
		e.out.line("jmp %s", blockLabel(e.fn, n.Label))

	case ir.Branch:
		e.loadInto(n.Cond, "r8")
		e.out.line("cmpq $0, %%r8")
		e.out.line("jne %s", blockLabel(e.fn, n.TrueLabel))
		e.out.line("jmp %s", blockLabel(e.fn, n.FalseLabel))

	case ir.Ret:
		if n.Value != nil {
			e.loadInto(*n.Value, "rax")
		}
		e.out.line("jmp %s", epilogueLabel(e.fn))

	case ir.CallDirect:
		e.emitCallDirect(n)

	case ir.CallIndirect:
		e.emitCallIndirect(n)
	}
}

func (e *emitter) emitCallDirect(n ir.CallDirect) {
	restore := e.pushArgs(n.Args)
	e.out.line("call %s", funcLabel(n.Func))
	if n.Dst != nil {
		e.storeFrom("rax", *n.Dst)
	}
	if restore > 0 {
		e.out.line("addq $%d, %%rsp", restore)
	}
	e.out.line("jmp %s", blockLabel(e.fn, n.Next))
}

func (e *emitter) emitCallIndirect(n ir.CallIndirect) {
	restore := e.pushArgs(n.Args)
	e.out.line("call *%s", e.ref(n.Ptr.Var))
	if n.Dst != nil {
		e.storeFrom("rax", *n.Dst)
	}
	if restore > 0 {
		e.out.line("addq $%d, %%rsp", restore)
	}
	e.out.line("jmp %s", blockLabel(e.fn, n.Next))
}
