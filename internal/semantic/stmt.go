package semantic

import (
	"cflat/internal/ast"
	"cflat/internal/types"
)

func (c *Checker) checkStmts(stmts []ast.Stmt, env *Gamma, inLoop bool, fn *ast.Function) {
	for _, s := range stmts {
		c.checkStmt(s, env, inLoop, fn)
	}
}

func (c *Checker) checkStmt(s ast.Stmt, env *Gamma, inLoop bool, fn *ast.Function) {
	switch n := s.(type) {
	case *ast.AssignStmt:
		c.checkAssign(n, env)
	case *ast.IfStmt:
		c.checkGuard(n.Guard, env, "[IF]")
		c.checkStmts(n.Then, env, inLoop, fn)
		c.checkStmts(n.Else, env, inLoop, fn)
	case *ast.WhileStmt:
		c.checkGuard(n.Guard, env, "[WHILE]")
		c.checkStmts(n.Body, env, true, fn)
	case *ast.ReturnStmt:
		c.checkReturn(n, env, fn)
	case *ast.BreakStmt:
		if !inLoop {
			c.diags.Add(n.Pos, "[BREAK]", "break outside of a loop")
		}
	case *ast.ContinueStmt:
		if !inLoop {
			c.diags.Add(n.Pos, "[CONTINUE]", "continue outside of a loop")
		}
	case *ast.CallStmt:
		c.checkCall(n.Pos, n.Callee, n.Args, env, false)
	}
}

func (c *Checker) checkGuard(guard ast.Exp, env *Gamma, tag string) {
	t := c.typeOfExp(guard, env)
	if isAny(t) {
		return
	}
	if !isInt(t) {
		c.diags.Add(guard.NodePos(), tag, "guard must be int, got %s", t)
	}
}

func (c *Checker) checkReturn(n *ast.ReturnStmt, env *Gamma, fn *ast.Function) {
	if fn.RetType == nil {
		if n.Expr != nil {
			c.typeOfExp(n.Expr, env)
			c.diags.Add(n.Pos, "[RETURN-1]", "function %q declared with no return value but returns a value", fn.Name)
		}
		return
	}
	if n.Expr == nil {
		c.diags.Add(n.Pos, "[RETURN-2]", "function %q declared to return %s but returns nothing", fn.Name, fn.RetType)
		return
	}
	t := c.typeOfExp(n.Expr, env)
	if !isAny(t) && !types.Equal(t, fn.RetType) {
		c.diags.Add(n.Pos, "[RETURN-2]", "function %q declared to return %s but returns %s", fn.Name, fn.RetType, t)
	}
}

func (c *Checker) checkAssign(n *ast.AssignStmt, env *Gamma) {
	lvalType := c.typeOfLval(n.Lval, env)
	if types.IsStructOrFn(lvalType) {
		c.diags.Add(n.Pos, "[ASSIGN-EXP]", "assignment target may not have struct or function type")
	}

	switch rhs := n.Rhs.(type) {
	case *ast.RhsExp:
		rhsType := c.typeOfExp(rhs.Expr, env)
		if !isAny(lvalType) && !isAny(rhsType) && !types.Equal(lvalType, rhsType) {
			c.diags.Add(n.Pos, "[ASSIGN-EXP]", "cannot assign %s to target of type %s", rhsType, lvalType)
		}
	case *ast.RhsNew:
		c.checkAssignNew(n.Pos, lvalType, rhs, env)
	}
}

func (c *Checker) checkAssignNew(pos ast.Position, lvalType types.Type, rhs *ast.RhsNew, env *Gamma) {
	if _, ok := rhs.Type.(types.Fn); ok {
		c.diags.Add(pos, "[ASSIGN-NEW]", "cannot allocate function type %s", rhs.Type)
	}

	expected := types.Ptr{Elem: rhs.Type}
	if !isAny(lvalType) && !types.Equal(lvalType, expected) {
		c.diags.Add(pos, "[ASSIGN-NEW]", "assignment target has type %s but new allocates %s", lvalType, expected)
	}

	sizeType := c.typeOfExp(rhs.Size, env)
	if !isAny(sizeType) && !isInt(sizeType) {
		c.diags.Add(pos, "[ASSIGN-NEW]", "allocation size must be int, got %s", sizeType)
	}
}
