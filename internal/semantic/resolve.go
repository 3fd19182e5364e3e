package semantic

import (
	"cflat/internal/ast"
	"cflat/internal/types"
)

// Resolver re-derives the type of an expression or lval belonging to an
// already type-checked program, for use by later passes (the Lowerer)
// that need the type information the checker computed but never
// annotated back onto the AST. It reuses the checker's own rule
// implementations, so a Resolver's answers are exactly what Check would
// have reported — on a well-typed program no diagnostic ever fires, so
// the discarded internal diagnostic list is never read.
type Resolver struct {
	checker *Checker
}

// NewResolver builds Δ from prog and returns a Resolver ready to type
// function bodies once BuildEnv has supplied their Γ₀.
func NewResolver(prog *ast.Program) *Resolver {
	c := NewChecker()
	c.buildDelta(prog)
	return &Resolver{checker: c}
}

// BuildEnv returns Γ₀ for prog (globals, externs, non-main functions).
func (r *Resolver) BuildEnv(prog *ast.Program) *Gamma {
	return r.checker.buildGamma0(prog)
}

// Delta exposes the struct field table built by NewResolver.
func (r *Resolver) Delta() Delta {
	return r.checker.delta
}

// TypeOfExp resolves e's type under env.
func (r *Resolver) TypeOfExp(e ast.Exp, env *Gamma) types.Type {
	return r.checker.typeOfExp(e, env)
}

// TypeOfLval resolves l's type under env.
func (r *Resolver) TypeOfLval(l ast.Lval, env *Gamma) types.Type {
	return r.checker.typeOfLval(l, env)
}
