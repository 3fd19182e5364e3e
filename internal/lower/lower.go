// Package lower turns a type-checked ast.Program into an ir.Program,
// assigning each function a fresh temporary/label namespace and cutting
// its emitted instruction stream into a pruned, reachable control-flow
// graph.
package lower

import (
	"fmt"

	"cflat/internal/ast"
	"cflat/internal/ir"
	"cflat/internal/semantic"
	"cflat/internal/types"
)

// Program lowers prog, which must already be free of diagnostics from
// semantic.Check — the Lowerer assumes well-typedness and does not
// re-validate it.
func Program(prog *ast.Program) *ir.Program {
	resolver := semantic.NewResolver(prog)
	gamma0 := resolver.BuildEnv(prog)

	funcNames := map[string]bool{}
	for _, fn := range prog.Functions {
		funcNames[fn.Name] = true
	}
	externNames := map[string]bool{}
	for _, e := range prog.Externs {
		externNames[e.Name] = true
	}

	out := &ir.Program{
		Globals: map[string]types.Type{},
		Externs: map[string]types.Fn{},
		Structs: map[string][]ir.Local{},
	}
	for _, g := range prog.Globals {
		out.Globals[g.Name] = g.Type
	}
	for _, e := range prog.Externs {
		out.Externs[e.Name] = e.Type
	}
	for _, s := range prog.Structs {
		fields := make([]ir.Local, len(s.Fields))
		for i, f := range s.Fields {
			fields[i] = ir.Local{Name: f.Name, Type: f.Type}
		}
		out.Structs[s.Name] = fields
	}

	ctx := &context{resolver: resolver, funcNames: funcNames, externNames: externNames}
	for _, fn := range prog.Functions {
		out.Functions = append(out.Functions, lowerFunction(fn, ctx, gamma0))
	}
	return out
}

// context is shared, read-only state across every function of one
// program: the Resolver (for re-deriving expression/lval types) and the
// name sets that tell lowerCall whether a callee resolves to a direct
// function symbol or an external one.
type context struct {
	resolver    *semantic.Resolver
	funcNames   map[string]bool
	externNames map[string]bool
}

// functionLowerer holds one function's temp/label counters, its local
// table, and the append-only block buffer being built up by terminate.
type functionLowerer struct {
	ctx *context
	env *semantic.Gamma

	tempCounter  int
	labelCounter int
	locals       []ir.Local

	curLabel  string
	curInstrs []ir.Instruction
	blocks    map[string]*ir.BasicBlock
	order     []string

	loopStart []string
	loopEnd   []string
}

func lowerFunction(fn *ast.Function, ctx *context, gamma0 *semantic.Gamma) *ir.Function {
	fl := &functionLowerer{
		ctx:    ctx,
		env:    semantic.NewGamma(gamma0),
		blocks: map[string]*ir.BasicBlock{},
	}

	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Name
		fl.env.Bind(p.Name, p.Type)
		fl.addLocal(p.Name, p.Type)
	}

	fl.start()

	for _, l := range fn.Locals {
		fl.env.Bind(l.Name, l.Type)
		fl.addLocal(l.Name, l.Type)
		if l.Init != nil {
			o := fl.lowerExp(l.Init)
			fl.emit(ir.Copy{Dst: ir.Var(l.Name), Src: o})
		}
	}

	fl.lowerStmts(fn.Body)
	fl.finish()

	out := &ir.Function{
		Name:    fn.Name,
		Params:  params,
		RetType: fn.RetType,
		Locals:  fl.locals,
		Blocks:  fl.blocks,
		Order:   fl.order,
	}
	ir.PruneUnreachable(out)
	return out
}

func (fl *functionLowerer) addLocal(name string, t types.Type) {
	fl.locals = append(fl.locals, ir.Local{Name: name, Type: t})
}

// freshTemp introduces a new temporary of type t, registers it in the
// function's local table, and returns the operand naming it.
func (fl *functionLowerer) freshTemp(t types.Type) ir.Operand {
	name := fmt.Sprintf("_t%d", fl.tempCounter)
	fl.tempCounter++
	fl.addLocal(name, t)
	return ir.Var(name)
}

func (fl *functionLowerer) freshLabel() string {
	name := fmt.Sprintf("lbl%d", fl.labelCounter)
	fl.labelCounter++
	return name
}

func (fl *functionLowerer) start() {
	fl.curLabel = "entry"
	fl.curInstrs = nil
}

func (fl *functionLowerer) emit(instr ir.Instruction) {
	fl.curInstrs = append(fl.curInstrs, instr)
}

// terminate closes the block being built with term, then opens next as
// the new current block. Every caller that ends a block must name the
// label of whatever comes after it — an explicit control-flow target
// for If/While, or a fresh continuation label for calls, break/continue
// and return.
func (fl *functionLowerer) terminate(term ir.Terminator, next string) {
	fl.blocks[fl.curLabel] = &ir.BasicBlock{Label: fl.curLabel, Instructions: fl.curInstrs, Terminator: term}
	fl.order = append(fl.order, fl.curLabel)
	fl.curLabel = next
	fl.curInstrs = nil
}

// finish closes whatever block is still open when a function's body
// runs out of statements without an explicit return on every path. A
// bare Ret is the only terminator that makes every such block valid
// regardless of the function's declared return type; control reaching
// it in a value-returning function is a source-level bug the checker
// does not reject, not a Lowerer concern.
func (fl *functionLowerer) finish() {
	fl.blocks[fl.curLabel] = &ir.BasicBlock{Label: fl.curLabel, Instructions: fl.curInstrs, Terminator: ir.Ret{}}
	fl.order = append(fl.order, fl.curLabel)
}

func (fl *functionLowerer) pushLoop(start, end string) {
	fl.loopStart = append(fl.loopStart, start)
	fl.loopEnd = append(fl.loopEnd, end)
}

func (fl *functionLowerer) popLoop() {
	fl.loopStart = fl.loopStart[:len(fl.loopStart)-1]
	fl.loopEnd = fl.loopEnd[:len(fl.loopEnd)-1]
}

func (fl *functionLowerer) currentLoopStart() string { return fl.loopStart[len(fl.loopStart)-1] }
func (fl *functionLowerer) currentLoopEnd() string   { return fl.loopEnd[len(fl.loopEnd)-1] }
