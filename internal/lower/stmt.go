package lower

import (
	"cflat/internal/ast"
	"cflat/internal/ir"
)

func (fl *functionLowerer) lowerStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		fl.lowerStmt(s)
	}
}

func (fl *functionLowerer) lowerStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.AssignStmt:
		fl.lowerAssign(n)
	case *ast.IfStmt:
		fl.lowerIf(n)
	case *ast.WhileStmt:
		fl.lowerWhile(n)
	case *ast.ReturnStmt:
		fl.lowerReturn(n)
	case *ast.BreakStmt:
		fl.terminate(ir.Jump{Label: fl.currentLoopEnd()}, fl.freshLabel())
	case *ast.ContinueStmt:
		fl.terminate(ir.Jump{Label: fl.currentLoopStart()}, fl.freshLabel())
	case *ast.CallStmt:
		fl.lowerCall(n.Callee, n.Args, false)
	}
}

func (fl *functionLowerer) lowerAssign(n *ast.AssignStmt) {
	if idl, ok := n.Lval.(*ast.IdLval); ok {
		switch rhs := n.Rhs.(type) {
		case *ast.RhsExp:
			o := fl.lowerExp(rhs.Expr)
			fl.emit(ir.Copy{Dst: ir.Var(idl.Name), Src: o})
		case *ast.RhsNew:
			s := fl.lowerAllocSize(rhs.Type, rhs.Size)
			fl.emit(ir.Alloc{Dst: ir.Var(idl.Name), Size: s})
		}
		return
	}

	addr := fl.lvalAddr(n.Lval)
	switch rhs := n.Rhs.(type) {
	case *ast.RhsExp:
		o := fl.lowerExp(rhs.Expr)
		fl.emit(ir.Store{Addr: addr, Val: o})
	case *ast.RhsNew:
		s := fl.lowerAllocSize(rhs.Type, rhs.Size)
		t := fl.freshTemp(ptrTo(rhs.Type))
		fl.emit(ir.Alloc{Dst: t, Size: s})
		fl.emit(ir.Store{Addr: addr, Val: t})
	}
}

// lowerIf allocates three fresh labels: a branch on the lowered guard,
// then-block jumping to the join, else-block jumping to the same join.
func (fl *functionLowerer) lowerIf(n *ast.IfStmt) {
	o := fl.lowerExp(n.Guard)
	lt, lf, le := fl.freshLabel(), fl.freshLabel(), fl.freshLabel()

	fl.terminate(ir.Branch{Cond: o, TrueLabel: lt, FalseLabel: lf}, lt)
	fl.lowerStmts(n.Then)
	fl.terminate(ir.Jump{Label: le}, lf)
	fl.lowerStmts(n.Else)
	fl.terminate(ir.Jump{Label: le}, le)
}

// lowerWhile re-evaluates the guard at the loop head on every
// iteration; Continue jumps back to that head, Break jumps past it.
func (fl *functionLowerer) lowerWhile(n *ast.WhileStmt) {
	lh, lb, le := fl.freshLabel(), fl.freshLabel(), fl.freshLabel()

	fl.terminate(ir.Jump{Label: lh}, lh)
	o := fl.lowerExp(n.Guard)
	fl.terminate(ir.Branch{Cond: o, TrueLabel: lb, FalseLabel: le}, lb)

	fl.pushLoop(lh, le)
	fl.lowerStmts(n.Body)
	fl.popLoop()

	fl.terminate(ir.Jump{Label: lh}, le)
}

func (fl *functionLowerer) lowerReturn(n *ast.ReturnStmt) {
	if n.Expr == nil {
		fl.terminate(ir.Ret{}, fl.freshLabel())
		return
	}
	o := fl.lowerExp(n.Expr)
	fl.terminate(ir.Ret{Value: &o}, fl.freshLabel())
}
