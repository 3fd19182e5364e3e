package semantic

import (
	"cflat/internal/ast"
	"cflat/internal/types"
)

// checkCall implements [ECALL-INTERNAL]/[ECALL-EXTERN]/[ECALL-*] (when
// exprForm is true, i.e. the call's value is used) and their [SCALL-*]
// counterparts otherwise. It returns the call's result type; callers in
// statement position ignore it.
func (c *Checker) checkCall(pos ast.Position, callee ast.Exp, args []ast.Exp, env *Gamma, exprForm bool) types.Type {
	prefix := "SCALL"
	if exprForm {
		prefix = "ECALL"
	}

	if id, ok := callee.(*ast.IdExp); ok && id.Name == "main" {
		c.diags.Add(pos, "["+prefix+"-INTERNAL]", "calling main")
		c.checkArgsIndependently(args, env)
		return types.Any{}
	}

	calleeType := c.typeOfExp(callee, env)
	if isAny(calleeType) {
		c.checkArgsIndependently(args, env)
		return types.Any{}
	}

	switch ct := calleeType.(type) {
	case types.Ptr:
		fn, ok := ct.Elem.(types.Fn)
		if !ok {
			c.diags.Add(pos, "["+prefix+"-*]", "callee has non-function type %s", calleeType)
			c.checkArgsIndependently(args, env)
			return types.Any{}
		}
		return c.checkCallShape(pos, "["+prefix+"-INTERNAL]", fn, args, env, exprForm)

	case types.Fn:
		return c.checkCallShape(pos, "["+prefix+"-EXTERN]", ct, args, env, exprForm)

	default:
		c.diags.Add(pos, "["+prefix+"-*]", "callee has non-function type %s", calleeType)
		c.checkArgsIndependently(args, env)
		return types.Any{}
	}
}

func (c *Checker) checkCallShape(pos ast.Position, tag string, fn types.Fn, args []ast.Exp, env *Gamma, exprForm bool) types.Type {
	if exprForm && fn.Ret == nil {
		c.diags.Add(pos, tag, "call used as an expression but %s returns no value", fn)
	}

	if len(args) != len(fn.Params) {
		c.diags.Add(pos, tag, "expected %d argument(s), got %d", len(fn.Params), len(args))
	}

	n := len(args)
	if len(fn.Params) < n {
		n = len(fn.Params)
	}
	for i := 0; i < n; i++ {
		argType := c.typeOfExp(args[i], env)
		if !isAny(argType) && !types.Equal(argType, fn.Params[i]) {
			c.diags.Add(pos, tag, "argument %d has type %s, expected %s", i+1, argType, fn.Params[i])
		}
	}
	for i := n; i < len(args); i++ {
		c.typeOfExp(args[i], env)
	}

	if exprForm {
		if fn.Ret == nil {
			return types.Any{}
		}
		return fn.Ret
	}
	return types.Any{}
}

func (c *Checker) checkArgsIndependently(args []ast.Exp, env *Gamma) {
	for _, a := range args {
		c.typeOfExp(a, env)
	}
}
