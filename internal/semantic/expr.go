package semantic

import (
	"cflat/internal/ast"
	"cflat/internal/types"
)

// typeOfExp computes the type of e under env, recording diagnostics as a
// side effect. Once any operand of a rule has already resolved to Any,
// the rule itself is skipped entirely — this is how the checker avoids
// cascading a single upstream error into a wall of follow-on noise.
func (c *Checker) typeOfExp(e ast.Exp, env *Gamma) types.Type {
	switch n := e.(type) {
	case *ast.NumExp:
		return types.Int{}

	case *ast.NilExp:
		// nil is a pointer to anything; Equal's Any-absorption makes it
		// assignable to any pointer-typed target.
		return types.Ptr{Elem: types.Any{}}

	case *ast.IdExp:
		t, ok := env.Lookup(n.Name)
		if !ok {
			c.diags.Add(n.Pos, "[ID]", "undefined identifier %q", n.Name)
			return types.Any{}
		}
		return t

	case *ast.UnOpExp:
		return c.typeOfUnOp(n, env)

	case *ast.BinOpExp:
		return c.typeOfBinOp(n, env)

	case *ast.CallExp:
		return c.checkCall(n.Pos, n.Callee, n.Args, env, true)

	case *ast.ArrayIndexExp:
		return c.typeOfArrayIndex(n.Pos, n.Base, n.Index, env)

	case *ast.FieldExp:
		return c.typeOfField(n.Pos, n.Base, n.Field, env)

	case *ast.NewExp:
		return c.typeOfNew(n.Pos, n.Type, n.Size, env)

	default:
		return types.Any{}
	}
}

func (c *Checker) typeOfUnOp(n *ast.UnOpExp, env *Gamma) types.Type {
	switch n.Op {
	case ast.Deref:
		t := c.typeOfExp(n.Operand, env)
		if isAny(t) {
			return types.Any{}
		}
		ptr, ok := t.(types.Ptr)
		if !ok {
			c.diags.Add(n.Pos, "[DEREF]", "cannot dereference non-pointer type %s", t)
			return types.Any{}
		}
		return ptr.Elem

	case ast.Neg:
		t := c.typeOfExp(n.Operand, env)
		if isAny(t) {
			return types.Any{}
		}
		if !isInt(t) {
			c.diags.Add(n.Pos, "[NEG]", "cannot negate non-int type %s", t)
			return types.Any{}
		}
		return types.Int{}

	case ast.Addr:
		if !isLvalShaped(n.Operand) {
			c.diags.Add(n.Pos, "[ADDR]", "cannot take the address of a non-lvalue expression")
			c.typeOfExp(n.Operand, env)
			return types.Any{}
		}
		t := c.typeOfExp(n.Operand, env)
		if isAny(t) {
			return types.Any{}
		}
		return types.Ptr{Elem: t}

	default:
		return types.Any{}
	}
}

// isLvalShaped reports whether e has the shape of the restricted Lval
// sublanguage — Id, Deref, ArrayIndex or Field — and may therefore have
// its address taken. This backs the [ADDR] rule: the parser accepts
// `&expr` for any expr, but only lvalue-shaped operands make sense to
// address.
func isLvalShaped(e ast.Exp) bool {
	switch n := e.(type) {
	case *ast.IdExp:
		return true
	case *ast.UnOpExp:
		return n.Op == ast.Deref
	case *ast.ArrayIndexExp:
		return true
	case *ast.FieldExp:
		return true
	default:
		return false
	}
}

func (c *Checker) typeOfBinOp(n *ast.BinOpExp, env *Gamma) types.Type {
	ta := c.typeOfExp(n.Left, env)
	tb := c.typeOfExp(n.Right, env)
	if isAny(ta) || isAny(tb) {
		return types.Any{}
	}

	if n.Op.IsEqualityComparison() {
		if !types.Equal(ta, tb) || !types.IsPrimitive(ta) {
			c.diags.Add(n.Pos, "[BINOP-EQ]", "operands of %s must be the same primitive type, got %s and %s", n.Op, ta, tb)
			return types.Any{}
		}
		return types.Int{}
	}

	if !isInt(ta) || !isInt(tb) {
		c.diags.Add(n.Pos, "[BINOP-REST]", "operands of %s must be int, got %s and %s", n.Op, ta, tb)
		return types.Any{}
	}
	return types.Int{}
}

func (c *Checker) typeOfArrayIndex(pos ast.Position, base, index ast.Exp, env *Gamma) types.Type {
	tbase := c.typeOfExp(base, env)
	tidx := c.typeOfExp(index, env)
	if isAny(tbase) || isAny(tidx) {
		return types.Any{}
	}
	ptr, isPtr := tbase.(types.Ptr)
	if !isPtr || !isInt(tidx) {
		c.diags.Add(pos, "[ARRAY]", "array index must be int and base must be a pointer, got base %s index %s", tbase, tidx)
		return types.Any{}
	}
	return ptr.Elem
}

func (c *Checker) typeOfField(pos ast.Position, base ast.Exp, field string, env *Gamma) types.Type {
	tbase := c.typeOfExp(base, env)
	return c.fieldType(pos, tbase, field)
}

func (c *Checker) fieldType(pos ast.Position, tbase types.Type, field string) types.Type {
	if isAny(tbase) {
		return types.Any{}
	}
	ptr, ok := tbase.(types.Ptr)
	if !ok {
		c.diags.Add(pos, "[FIELD]", "field access requires a pointer-to-struct, got %s", tbase)
		return types.Any{}
	}
	structT, ok := ptr.Elem.(types.Struct)
	if !ok {
		c.diags.Add(pos, "[FIELD]", "field access requires a pointer-to-struct, got %s", tbase)
		return types.Any{}
	}
	fields, ok := c.delta.Fields(structT.Name)
	if !ok {
		c.diags.Add(pos, "[FIELD]", "unknown struct %q", structT.Name)
		return types.Any{}
	}
	ft, ok := fields[field]
	if !ok {
		c.diags.Add(pos, "[FIELD]", "struct %q has no field %q", structT.Name, field)
		return types.Any{}
	}
	return ft
}

func (c *Checker) typeOfNew(pos ast.Position, elem types.Type, size ast.Exp, env *Gamma) types.Type {
	if _, ok := elem.(types.Fn); ok {
		c.diags.Add(pos, "[NEW]", "cannot allocate function type %s", elem)
		return types.Any{}
	}
	sizeType := c.typeOfExp(size, env)
	if !isAny(sizeType) && !isInt(sizeType) {
		c.diags.Add(pos, "[NEW]", "allocation size must be int, got %s", sizeType)
		return types.Any{}
	}
	return types.Ptr{Elem: elem}
}
