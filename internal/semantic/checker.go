// Package semantic implements the type checker: it consumes a parsed
// ast.Program and produces a sorted list of diagnostics. No subsequent
// stage runs on a program that yields any diagnostic.
package semantic

import (
	"cflat/internal/ast"
	"cflat/internal/diagnostics"
	"cflat/internal/types"
)

// Checker accumulates Γ/Δ and the diagnostic list across one Check call.
// A Checker is single-use: construct one per program with NewChecker.
type Checker struct {
	diags diagnostics.List
	delta Delta

	// mainRet is main's declared return type, recorded outside the shared
	// environment (main is never bound in Γ₀). main's own body is checked
	// against its declaration's RetType like any other function's.
	mainRet    types.Type
	haveMain   bool
}

// NewChecker creates an empty Checker.
func NewChecker() *Checker {
	return &Checker{delta: Delta{}}
}

// Check runs the full type checker over prog and returns its diagnostics
// in sorted, deterministic order. It never aborts early: it records
// everything it finds, even after the first error.
func Check(prog *ast.Program) []diagnostics.Diagnostic {
	c := NewChecker()
	c.buildDelta(prog)
	gamma0 := c.buildGamma0(prog)
	for _, fn := range prog.Functions {
		c.checkFunction(fn, gamma0)
	}
	return c.diags.Sorted()
}

func (c *Checker) buildDelta(prog *ast.Program) {
	for _, s := range prog.Structs {
		fields := make(map[string]types.Type, len(s.Fields))
		for _, f := range s.Fields {
			if types.IsStructOrFn(f.Type) {
				c.diags.Add(f.Pos, "[STRUCT]", "field %q of struct %q may not have struct or function type", f.Name, s.Name)
			}
			fields[f.Name] = f.Type
		}
		c.delta[s.Name] = fields
	}
}

// buildGamma0 populates Γ₀: globals, externs, and every non-main function
// bound to Ptr(Fn(...)). main is deliberately left unbound.
func (c *Checker) buildGamma0(prog *ast.Program) *Gamma {
	root := NewGamma(nil)

	for _, g := range prog.Globals {
		if types.IsStructOrFn(g.Type) {
			c.diags.Add(g.Pos, "[GLOBAL]", "global %q may not have struct or function type", g.Name)
		}
		root.Bind(g.Name, g.Type)
	}

	for _, e := range prog.Externs {
		root.Bind(e.Name, e.Type)
	}

	for _, fn := range prog.Functions {
		if fn.Name == "main" {
			c.mainRet = fn.RetType
			c.haveMain = true
			continue
		}
		root.Bind(fn.Name, types.Ptr{Elem: paramsFnType(fn)})
	}

	return root
}

func paramsFnType(fn *ast.Function) types.Fn {
	params := make([]types.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Type
	}
	return types.Fn{Params: params, Ret: fn.RetType}
}

func (c *Checker) checkFunction(fn *ast.Function, gamma0 *Gamma) {
	scope := NewGamma(gamma0)

	for _, p := range fn.Params {
		if types.IsStructOrFn(p.Type) {
			c.diags.Add(p.Pos, "[FUNCTION]", "parameter %q of function %q may not have struct or function type", p.Name, fn.Name)
		}
		scope.Bind(p.Name, p.Type)
	}

	for _, l := range fn.Locals {
		if types.IsStructOrFn(l.Type) {
			c.diags.Add(l.Pos, "[FUNCTION]", "local %q of function %q may not have struct or function type", l.Name, fn.Name)
		}
		if l.Init != nil {
			initType := c.typeOfExp(l.Init, scope)
			if !isAny(initType) && !types.Equal(initType, l.Type) {
				c.diags.Add(l.Pos, "[FUNCTION]", "local %q of function %q declared %s but initialized with %s", l.Name, fn.Name, l.Type, initType)
			}
		}
		scope.Bind(l.Name, l.Type)
	}

	c.checkStmts(fn.Body, scope, false, fn)
}

func isAny(t types.Type) bool {
	_, ok := t.(types.Any)
	return ok
}

func isInt(t types.Type) bool {
	_, ok := t.(types.Int)
	return ok
}
