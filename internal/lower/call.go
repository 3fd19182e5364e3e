package lower

import (
	"cflat/internal/ast"
	"cflat/internal/ir"
	"cflat/internal/types"
)

// lowerCall handles both the expression form (CallExp, exprForm true)
// and the statement form (CallStmt, exprForm false). A callee naming a
// declared top-level function or extern lowers to CallDirect/CallExt;
// any other callee shape (a function-pointer-valued local, param,
// global, or a nested expression producing one) lowers to CallIndirect.
func (fl *functionLowerer) lowerCall(callee ast.Exp, args []ast.Exp, exprForm bool) ir.Operand {
	argOps := make([]ir.Operand, len(args))
	for i, a := range args {
		argOps[i] = fl.lowerExp(a)
	}

	var ret types.Type
	if exprForm {
		ret = fl.calleeSignature(callee).Ret
	}

	if id, ok := callee.(*ast.IdExp); ok {
		if fl.ctx.externNames[id.Name] {
			return fl.emitCallExt(id.Name, argOps, ret, exprForm)
		}
		if fl.ctx.funcNames[id.Name] {
			return fl.emitCallDirect(id.Name, argOps, ret, exprForm)
		}
		return fl.emitCallIndirect(ir.Var(id.Name), argOps, ret, exprForm)
	}

	ptr := fl.lowerExp(callee)
	return fl.emitCallIndirect(ptr, argOps, ret, exprForm)
}

// calleeSignature re-derives callee's Fn signature from its resolved
// type, unwrapping the Ptr a non-extern function value is bound at.
func (fl *functionLowerer) calleeSignature(callee ast.Exp) types.Fn {
	t := fl.ctx.resolver.TypeOfExp(callee, fl.env)
	if ptr, ok := t.(types.Ptr); ok {
		if fn, ok := ptr.Elem.(types.Fn); ok {
			return fn
		}
	}
	if fn, ok := t.(types.Fn); ok {
		return fn
	}
	return types.Fn{}
}

func (fl *functionLowerer) emitCallExt(name string, args []ir.Operand, ret types.Type, exprForm bool) ir.Operand {
	if !exprForm || ret == nil {
		fl.emit(ir.CallExt{Extern: name, Args: args})
		return ir.Operand{}
	}
	t := fl.freshTemp(ret)
	fl.emit(ir.CallExt{Dst: &t, Extern: name, Args: args})
	return t
}

func (fl *functionLowerer) emitCallDirect(name string, args []ir.Operand, ret types.Type, exprForm bool) ir.Operand {
	next := fl.freshLabel()
	if !exprForm || ret == nil {
		fl.terminate(ir.CallDirect{Func: name, Args: args, Next: next}, next)
		return ir.Operand{}
	}
	t := fl.freshTemp(ret)
	fl.terminate(ir.CallDirect{Dst: &t, Func: name, Args: args, Next: next}, next)
	return t
}

func (fl *functionLowerer) emitCallIndirect(ptr ir.Operand, args []ir.Operand, ret types.Type, exprForm bool) ir.Operand {
	next := fl.freshLabel()
	if !exprForm || ret == nil {
		fl.terminate(ir.CallIndirect{Ptr: ptr, Args: args, Next: next}, next)
		return ir.Operand{}
	}
	t := fl.freshTemp(ret)
	fl.terminate(ir.CallIndirect{Dst: &t, Ptr: ptr, Args: args, Next: next}, next)
	return t
}
