package opt

import "cflat/internal/ir"

// rewrite replays each block's instructions against the per-block entry
// store computed by analyze, substituting a Var operand with its
// propagated Const wherever the store says that variable's value is
// known at that program point, and folding any instruction that
// produces a known constant into a Copy. An operand whose store value
// is Top (conflicting/non-constant) or Bottom (not yet defined on any
// analyzed path) is left exactly as the Lowerer emitted it.
func rewrite(fn *ir.Function, blockIn map[string]map[string]lattice) {
	for _, label := range fn.Order {
		block := fn.Blocks[label]
		store := cloneStore(blockIn[label])
		block.Instructions = rewriteInstrs(block.Instructions, store)
		block.Terminator = rewriteTerminator(block.Terminator, store)
	}
}

func propagate(o ir.Operand, store map[string]lattice) ir.Operand {
	if o.IsConst {
		return o
	}
	if v, ok := store[o.Var]; ok && v.kind == constKind {
		return ir.Const(v.val)
	}
	return o
}

func rewriteInstrs(instrs []ir.Instruction, store map[string]lattice) []ir.Instruction {
	out := make([]ir.Instruction, len(instrs))
	for i, instr := range instrs {
		out[i] = rewriteInstr(instr, store)
		transferInstr(instr, store)
	}
	return out
}

func rewriteInstr(instr ir.Instruction, store map[string]lattice) ir.Instruction {
	switch n := instr.(type) {
	case ir.Copy:
		n.Src = propagate(n.Src, store)
		return n

	case ir.Arith:
		n.A = propagate(n.A, store)
		n.B = propagate(n.B, store)
		if n.A.IsConst && n.A.Const == 0 && n.Op == ir.Mul {
			return ir.Copy{Dst: n.Dst, Src: ir.Const(0)}
		}
		if n.B.IsConst && n.B.Const == 0 && n.Op == ir.Mul {
			return ir.Copy{Dst: n.Dst, Src: ir.Const(0)}
		}
		if n.A.IsConst && n.B.IsConst {
			if folded := evalArith(n.Op, constLattice(n.A.Const), constLattice(n.B.Const)); folded.kind == constKind {
				return ir.Copy{Dst: n.Dst, Src: ir.Const(folded.val)}
			}
		}
		return n

	case ir.Cmp:
		n.A = propagate(n.A, store)
		n.B = propagate(n.B, store)
		if n.A.IsConst && n.B.IsConst {
			folded := evalCmp(n.Op, constLattice(n.A.Const), constLattice(n.B.Const))
			return ir.Copy{Dst: n.Dst, Src: ir.Const(folded.val)}
		}
		return n

	case ir.Store:
		n.Addr = propagate(n.Addr, store)
		n.Val = propagate(n.Val, store)
		return n

	case ir.Load:
		n.Addr = propagate(n.Addr, store)
		return n

	case ir.Gep:
		n.Ptr = propagate(n.Ptr, store)
		n.Index = propagate(n.Index, store)
		return n

	case ir.Gfp:
		n.Ptr = propagate(n.Ptr, store)
		return n

	case ir.CallExt:
		args := make([]ir.Operand, len(n.Args))
		for i, a := range n.Args {
			args[i] = propagate(a, store)
		}
		n.Args = args
		return n
	}
	return instr
}

func rewriteTerminator(term ir.Terminator, store map[string]lattice) ir.Terminator {
	switch n := term.(type) {
	case ir.Branch:
		n.Cond = propagate(n.Cond, store)
		return n

	case ir.Ret:
		if n.Value != nil {
			v := propagate(*n.Value, store)
			n.Value = &v
		}
		return n

	case ir.CallDirect:
		args := make([]ir.Operand, len(n.Args))
		for i, a := range n.Args {
			args[i] = propagate(a, store)
		}
		n.Args = args
		return n

	case ir.CallIndirect:
		n.Ptr = propagate(n.Ptr, store)
		args := make([]ir.Operand, len(n.Args))
		for i, a := range n.Args {
			args[i] = propagate(a, store)
		}
		n.Args = args
		return n
	}
	return term
}
