package lower

import (
	"fmt"

	"cflat/internal/ast"
	"cflat/internal/ir"
)

// lvalAddr computes the address an assignment through l should write
// to. It is never called on an IdLval: lowerAssign handles that shape
// directly with a Copy/Alloc into the variable's own slot, since a
// plain variable has no separate "address" step in this IR.
func (fl *functionLowerer) lvalAddr(l ast.Lval) ir.Operand {
	valueType := fl.ctx.resolver.TypeOfLval(l, fl.env)

	switch n := l.(type) {
	case *ast.DerefLval:
		return fl.lvalValue(n.Base)

	case *ast.ArrayIndexLval:
		p := fl.lvalValue(n.Base)
		i := fl.lowerExp(n.Index)
		t := fl.freshTemp(ptrTo(valueType))
		fl.emit(ir.Gep{Dst: t, Ptr: p, Index: i})
		return t

	case *ast.FieldLval:
		p := fl.lvalValue(n.Base)
		t := fl.freshTemp(ptrTo(valueType))
		fl.emit(ir.Gfp{Dst: t, Ptr: p, Field: n.Field})
		return t
	}
	panic(fmt.Sprintf("lower: %T has no address-of-lval rule", l))
}

// lvalValue computes the operand holding l's current value: a direct
// Var read for a plain identifier, or the trailing Load the address
// rules above stop short of.
func (fl *functionLowerer) lvalValue(l ast.Lval) ir.Operand {
	if id, ok := l.(*ast.IdLval); ok {
		return ir.Var(id.Name)
	}

	addr := fl.lvalAddr(l)
	valueType := fl.ctx.resolver.TypeOfLval(l, fl.env)
	t := fl.freshTemp(valueType)
	fl.emit(ir.Load{Dst: t, Addr: addr})
	return t
}
