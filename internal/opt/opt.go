// Package opt implements the optional constant-propagation pass: a
// single intraprocedural dataflow analysis over one LIR function,
// followed by a rewrite that folds Copy/Arith/Cmp instructions whose
// operands are all known constants and simplifies an `Arith(_, mul,
// _, 0)` pattern to 0 even when the other multiplicand isn't a
// known constant.
package opt

import (
	"cflat/internal/ir"
)

// lattice is the constant-propagation value for one variable: Bottom
// (never assigned, i.e. unreachable/unknown-before-first-def), a known
// Const, or Top (assigned conflicting constants along different paths,
// or assigned a non-constant value).
type lattice struct {
	kind latticeKind
	val  int64
}

type latticeKind int

const (
	bottomKind latticeKind = iota
	constKind
	topKind
)

var bottom = lattice{kind: bottomKind}
var top = lattice{kind: topKind}

func constLattice(v int64) lattice { return lattice{kind: constKind, val: v} }

// join implements the lattice meet used when a variable's store reaches
// a point from more than one predecessor: Bottom is the identity
// (unvisited paths don't constrain anything yet), equal constants stay
// that constant, anything else collapses to Top.
func join(a, b lattice) lattice {
	if a.kind == bottomKind {
		return b
	}
	if b.kind == bottomKind {
		return a
	}
	if a.kind == constKind && b.kind == constKind && a.val == b.val {
		return a
	}
	return top
}

// Function runs constant propagation to a fixed point over fn and
// rewrites its instructions in place, then returns fn. The optimizer
// operates on a single function at a time and is agnostic to its name;
// cflat-opt calls it once for every function in the program.
//
// Running Function twice on its own output is a no-op: the second run
// starts from the same per-block store snapshot the first run already
// converged to, so the fixed point it recomputes is identical and every
// rewrite it would apply was already applied.
func Function(fn *ir.Function) *ir.Function {
	blockIn := analyze(fn)
	rewrite(fn, blockIn)
	return fn
}

// analyze computes, for every block, the store (a map from variable
// name to lattice value) holding at block entry, by iterating the
// transfer function to a fixed point over the block's predecessors.
// Because this IR never exposes predecessor pointers (CFGs are computed
// on demand from terminators), analyze derives them once up front.
func analyze(fn *ir.Function) map[string]map[string]lattice {
	preds := predecessors(fn)

	in := map[string]map[string]lattice{}
	out := map[string]map[string]lattice{}
	for _, label := range fn.Order {
		in[label] = map[string]lattice{}
		out[label] = map[string]lattice{}
	}

	changed := true
	for changed {
		changed = false
		for _, label := range fn.Order {
			merged := map[string]lattice{}
			for _, p := range preds[label] {
				for name, v := range out[p] {
					if existing, ok := merged[name]; ok {
						merged[name] = join(existing, v)
					} else {
						merged[name] = v
					}
				}
			}
			if !equalStores(in[label], merged) {
				in[label] = merged
				changed = true
			}

			store := cloneStore(in[label])
			transferBlock(fn.Blocks[label], store)
			if !equalStores(out[label], store) {
				out[label] = store
				changed = true
			}
		}
	}
	return in
}

func predecessors(fn *ir.Function) map[string][]string {
	preds := map[string][]string{}
	for _, label := range fn.Order {
		preds[label] = nil
	}
	for _, label := range fn.Order {
		block := fn.Blocks[label]
		if block.Terminator == nil {
			continue
		}
		for _, succ := range block.Terminator.Successors() {
			preds[succ] = append(preds[succ], label)
		}
	}
	return preds
}

func cloneStore(s map[string]lattice) map[string]lattice {
	out := make(map[string]lattice, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func equalStores(a, b map[string]lattice) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// eval resolves an operand's lattice value against store: a constant
// operand is always itself; a variable operand is Bottom if the store
// has no entry for it yet (no definition has reached this point on any
// path analyzed so far).
func eval(o ir.Operand, store map[string]lattice) lattice {
	if o.IsConst {
		return constLattice(o.Const)
	}
	if v, ok := store[o.Var]; ok {
		return v
	}
	return bottom
}

// transferBlock applies every instruction's transfer function in
// sequence, mutating store into the block's exit store.
func transferBlock(block *ir.BasicBlock, store map[string]lattice) {
	for _, instr := range block.Instructions {
		transferInstr(instr, store)
	}
}

func transferInstr(instr ir.Instruction, store map[string]lattice) {
	switch n := instr.(type) {
	case ir.Copy:
		store[n.Dst.Var] = eval(n.Src, store)

	case ir.Arith:
		a, b := eval(n.A, store), eval(n.B, store)
		store[n.Dst.Var] = evalArith(n.Op, a, b)

	case ir.Cmp:
		a, b := eval(n.A, store), eval(n.B, store)
		store[n.Dst.Var] = evalCmp(n.Op, a, b)

	case ir.Alloc:
		store[n.Dst.Var] = top

	case ir.Load:
		store[n.Dst.Var] = top

	case ir.Gep:
		store[n.Dst.Var] = top

	case ir.Gfp:
		store[n.Dst.Var] = top

	case ir.AddrOf:
		store[n.Dst.Var] = top

	case ir.CallExt:
		if n.Dst != nil {
			store[n.Dst.Var] = top
		}
	}
}

// evalArith folds a two-constant Arith instruction; a `mul, _, 0`
// (or `0, _, mul`) pattern folds to 0 even when the other operand
// isn't known, since the result is 0 regardless.
func evalArith(op ir.ArithOp, a, b lattice) lattice {
	if op == ir.Mul {
		if (a.kind == constKind && a.val == 0) || (b.kind == constKind && b.val == 0) {
			return constLattice(0)
		}
	}
	if a.kind == topKind || b.kind == topKind {
		return top
	}
	if a.kind != constKind || b.kind != constKind {
		return bottom
	}
	switch op {
	case ir.Add:
		return constLattice(a.val + b.val)
	case ir.Sub:
		return constLattice(a.val - b.val)
	case ir.Mul:
		return constLattice(a.val * b.val)
	case ir.DivOp:
		if b.val == 0 {
			return top
		}
		return constLattice(a.val / b.val)
	default:
		return top
	}
}

func evalCmp(op ir.CmpOp, a, b lattice) lattice {
	if a.kind == topKind || b.kind == topKind {
		return top
	}
	if a.kind != constKind || b.kind != constKind {
		return bottom
	}
	var result bool
	switch op {
	case ir.Eq:
		result = a.val == b.val
	case ir.Neq:
		result = a.val != b.val
	case ir.Lt:
		result = a.val < b.val
	case ir.Lte:
		result = a.val <= b.val
	case ir.Gt:
		result = a.val > b.val
	case ir.Gte:
		result = a.val >= b.val
	}
	if result {
		return constLattice(1)
	}
	return constLattice(0)
}
