package lower

import (
	"fmt"

	"cflat/internal/ast"
	"cflat/internal/ir"
	"cflat/internal/types"
)

func ptrTo(t types.Type) types.Type { return types.Ptr{Elem: t} }

// lowerAllocSize computes the element count an Alloc carries. For a
// struct type the count is structural — the field table Δ already fixes
// how many 8-byte slots the record needs — so a bare `new S` is lowered
// against Δ rather than against whatever size expression parsed (cflat's
// grammar only requires one when S names an array element type).
func (fl *functionLowerer) lowerAllocSize(t types.Type, parsed ast.Exp) ir.Operand {
	if s, ok := t.(types.Struct); ok {
		fields, _ := fl.ctx.resolver.Delta().Fields(s.Name)
		return ir.Const(int64(len(fields)))
	}
	return fl.lowerExp(parsed)
}

// lowerExp lowers e to the operand holding its value.
func (fl *functionLowerer) lowerExp(e ast.Exp) ir.Operand {
	switch n := e.(type) {
	case *ast.NumExp:
		return ir.Const(n.Value)

	case *ast.NilExp:
		return ir.Const(0)

	case *ast.IdExp:
		// A bare reference to a declared function or extern names code,
		// not data: its value is the function's address. buildGamma0 types
		// a declared function Ptr(Fn(...)) in Γ₀ so the name can be passed
		// around and called indirectly without an explicit `&`; an extern
		// keeps its Fn(...) type. CodeGen's addressed-operand path is the only
		// one that knows how to read a function's storage, so this
		// routes through the same AddrOf instruction `&add` would.
		if fl.ctx.funcNames[n.Name] || fl.ctx.externNames[n.Name] {
			t := fl.freshTemp(fl.ctx.resolver.TypeOfExp(n, fl.env))
			fl.emit(ir.AddrOf{Dst: t, Name: n.Name})
			return t
		}
		return ir.Var(n.Name)

	case *ast.UnOpExp:
		return fl.lowerUnOp(n)

	case *ast.BinOpExp:
		return fl.lowerBinOp(n)

	case *ast.CallExp:
		return fl.lowerCall(n.Callee, n.Args, true)

	case *ast.ArrayIndexExp:
		return fl.lowerArrayIndexExp(n)

	case *ast.FieldExp:
		return fl.lowerFieldExp(n)

	case *ast.NewExp:
		s := fl.lowerAllocSize(n.Type, n.Size)
		t := fl.freshTemp(ptrTo(n.Type))
		fl.emit(ir.Alloc{Dst: t, Size: s})
		return t
	}
	panic(fmt.Sprintf("lower: unhandled expression %T", e))
}

func (fl *functionLowerer) lowerUnOp(n *ast.UnOpExp) ir.Operand {
	switch n.Op {
	case ast.Deref:
		p := fl.lowerExp(n.Operand)
		pointee := fl.ctx.resolver.TypeOfExp(n, fl.env)
		t := fl.freshTemp(pointee)
		fl.emit(ir.Load{Dst: t, Addr: p})
		return t

	case ast.Neg:
		o := fl.lowerExp(n.Operand)
		t := fl.freshTemp(types.Int{})
		fl.emit(ir.Arith{Dst: t, Op: ir.Sub, A: ir.Const(0), B: o})
		return t

	case ast.Addr:
		return fl.lowerAddr(n.Operand)
	}
	panic("lower: unknown unary operator")
}

// lowerAddr lowers `&e`: it reduces to the same address computation the
// matching Lval shape would use, stopping short of the trailing Load.
func (fl *functionLowerer) lowerAddr(e ast.Exp) ir.Operand {
	switch n := e.(type) {
	case *ast.IdExp:
		pointee := fl.ctx.resolver.TypeOfExp(e, fl.env)
		t := fl.freshTemp(ptrTo(pointee))
		fl.emit(ir.AddrOf{Dst: t, Name: n.Name})
		return t

	case *ast.UnOpExp: // guaranteed Deref by the [ADDR] rule
		return fl.lowerExp(n.Operand)

	case *ast.ArrayIndexExp:
		p := fl.lowerExp(n.Base)
		i := fl.lowerExp(n.Index)
		elem := fl.ctx.resolver.TypeOfExp(e, fl.env)
		t := fl.freshTemp(ptrTo(elem))
		fl.emit(ir.Gep{Dst: t, Ptr: p, Index: i})
		return t

	case *ast.FieldExp:
		p := fl.lowerExp(n.Base)
		field := fl.ctx.resolver.TypeOfExp(e, fl.env)
		t := fl.freshTemp(ptrTo(field))
		fl.emit(ir.Gfp{Dst: t, Ptr: p, Field: n.Field})
		return t
	}
	panic(fmt.Sprintf("lower: %T is not a valid &-operand shape", e))
}

func (fl *functionLowerer) lowerBinOp(n *ast.BinOpExp) ir.Operand {
	a := fl.lowerExp(n.Left)
	b := fl.lowerExp(n.Right)

	if n.Op.IsArithmetic() {
		t := fl.freshTemp(types.Int{})
		fl.emit(ir.Arith{Dst: t, Op: arithOpFor(n.Op), A: a, B: b})
		return t
	}
	t := fl.freshTemp(types.Int{})
	fl.emit(ir.Cmp{Dst: t, Op: cmpOpFor(n.Op), A: a, B: b})
	return t
}

func arithOpFor(op ast.BinOp) ir.ArithOp {
	switch op {
	case ast.Add:
		return ir.Add
	case ast.Sub:
		return ir.Sub
	case ast.Mul:
		return ir.Mul
	case ast.Div:
		return ir.DivOp
	default:
		panic(fmt.Sprintf("lower: %s is not an arithmetic operator", op))
	}
}

func cmpOpFor(op ast.BinOp) ir.CmpOp {
	switch op {
	case ast.Eq:
		return ir.Eq
	case ast.Neq:
		return ir.Neq
	case ast.Lt:
		return ir.Lt
	case ast.Lte:
		return ir.Lte
	case ast.Gt:
		return ir.Gt
	case ast.Gte:
		return ir.Gte
	default:
		panic(fmt.Sprintf("lower: %s is not a comparison operator", op))
	}
}

func (fl *functionLowerer) lowerArrayIndexExp(n *ast.ArrayIndexExp) ir.Operand {
	p := fl.lowerExp(n.Base)
	i := fl.lowerExp(n.Index)
	elem := fl.ctx.resolver.TypeOfExp(n, fl.env)

	addr := fl.freshTemp(ptrTo(elem))
	fl.emit(ir.Gep{Dst: addr, Ptr: p, Index: i})
	val := fl.freshTemp(elem)
	fl.emit(ir.Load{Dst: val, Addr: addr})
	return val
}

func (fl *functionLowerer) lowerFieldExp(n *ast.FieldExp) ir.Operand {
	p := fl.lowerExp(n.Base)
	field := fl.ctx.resolver.TypeOfExp(n, fl.env)

	addr := fl.freshTemp(ptrTo(field))
	fl.emit(ir.Gfp{Dst: addr, Ptr: p, Field: n.Field})
	val := fl.freshTemp(field)
	fl.emit(ir.Load{Dst: val, Addr: addr})
	return val
}
