package semantic

import (
	"cflat/internal/ast"
	"cflat/internal/types"
)

// typeOfLval computes the type of l under env, using the same rules as
// the corresponding Exp variants ([ID], [DEREF], [ARRAY], [FIELD]) since
// an Lval's shape mirrors a restricted Exp.
func (c *Checker) typeOfLval(l ast.Lval, env *Gamma) types.Type {
	switch n := l.(type) {
	case *ast.IdLval:
		t, ok := env.Lookup(n.Name)
		if !ok {
			c.diags.Add(n.Pos, "[ID]", "undefined identifier %q", n.Name)
			return types.Any{}
		}
		return t

	case *ast.DerefLval:
		t := c.typeOfLval(n.Base, env)
		if isAny(t) {
			return types.Any{}
		}
		ptr, ok := t.(types.Ptr)
		if !ok {
			c.diags.Add(n.Pos, "[DEREF]", "cannot dereference non-pointer type %s", t)
			return types.Any{}
		}
		return ptr.Elem

	case *ast.ArrayIndexLval:
		tbase := c.typeOfLval(n.Base, env)
		tidx := c.typeOfExp(n.Index, env)
		if isAny(tbase) || isAny(tidx) {
			return types.Any{}
		}
		ptr, isPtr := tbase.(types.Ptr)
		if !isPtr || !isInt(tidx) {
			c.diags.Add(n.Pos, "[ARRAY]", "array index must be int and base must be a pointer, got base %s index %s", tbase, tidx)
			return types.Any{}
		}
		return ptr.Elem

	case *ast.FieldLval:
		tbase := c.typeOfLval(n.Base, env)
		return c.fieldType(n.Pos, tbase, n.Field)

	default:
		return types.Any{}
	}
}
