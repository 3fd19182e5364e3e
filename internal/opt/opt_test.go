package opt

import (
	"testing"

	"cflat/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleBlockFn builds a one-block "test" function whose entry holds
// instrs and returns the value of retVar.
func singleBlockFn(instrs []ir.Instruction, locals []ir.Local, retVar string) *ir.Function {
	ret := ir.Var(retVar)
	return &ir.Function{
		Name:   "test",
		Locals: locals,
		Blocks: map[string]*ir.BasicBlock{
			"entry": {Label: "entry", Instructions: instrs, Terminator: ir.Ret{Value: &ret}},
		},
		Order: []string{"entry"},
	}
}

func TestMulByZeroFoldsToCopy(t *testing.T) {
	fn := singleBlockFn([]ir.Instruction{
		ir.Arith{Dst: ir.Var("x"), Op: ir.Mul, A: ir.Var("n"), B: ir.Const(0)},
	}, nil, "x")

	Function(fn)

	c, ok := fn.Blocks["entry"].Instructions[0].(ir.Copy)
	require.True(t, ok, "expected Arith(x, mul, n, 0) to fold to Copy")
	assert.Equal(t, ir.Const(0), c.Src)
}

func TestPropagatedConstantFlowsIntoLaterUse(t *testing.T) {
	fn := singleBlockFn([]ir.Instruction{
		ir.Copy{Dst: ir.Var("a"), Src: ir.Const(5)},
		ir.Arith{Dst: ir.Var("b"), Op: ir.Add, A: ir.Var("a"), B: ir.Const(2)},
	}, nil, "b")

	Function(fn)

	instrs := fn.Blocks["entry"].Instructions
	b, ok := instrs[1].(ir.Copy)
	require.True(t, ok, "expected Arith(b, add, a, 2) to fold once a's value is known")
	assert.Equal(t, ir.Const(7), b.Src)
}

func TestNonConstantReadIsLeftUnchanged(t *testing.T) {
	fn := singleBlockFn([]ir.Instruction{
		ir.CallExt{Dst: ptr(ir.Var("a")), Extern: "read_int"},
		ir.Arith{Dst: ir.Var("b"), Op: ir.Add, A: ir.Var("a"), B: ir.Const(1)},
	}, nil, "b")

	Function(fn)

	instrs := fn.Blocks["entry"].Instructions
	arith, ok := instrs[1].(ir.Arith)
	require.True(t, ok, "an Arith reading a Top-valued variable stays an Arith")
	assert.Equal(t, ir.Var("a"), arith.A)
}

func TestConflictingValuesAcrossBranchesJoinToTop(t *testing.T) {
	trueVal := ir.Const(1)
	fn := &ir.Function{
		Name: "test",
		Blocks: map[string]*ir.BasicBlock{
			"entry": {Label: "entry", Terminator: ir.Branch{Cond: ir.Const(1), TrueLabel: "t", FalseLabel: "f"}},
			"t":     {Label: "t", Instructions: []ir.Instruction{ir.Copy{Dst: ir.Var("x"), Src: ir.Const(1)}}, Terminator: ir.Jump{Label: "join"}},
			"f":     {Label: "f", Instructions: []ir.Instruction{ir.Copy{Dst: ir.Var("x"), Src: ir.Const(2)}}, Terminator: ir.Jump{Label: "join"}},
			"join":  {Label: "join", Instructions: []ir.Instruction{ir.Arith{Dst: ir.Var("y"), Op: ir.Add, A: ir.Var("x"), B: ir.Const(0)}}, Terminator: ir.Ret{Value: &trueVal}},
		},
		Order: []string{"entry", "t", "f", "join"},
	}

	Function(fn)

	arith, ok := fn.Blocks["join"].Instructions[0].(ir.Arith)
	require.True(t, ok, "x is Top at the join point, so the read of x is not folded")
	assert.Equal(t, ir.Var("x"), arith.A)
}

func TestOptIsIdempotent(t *testing.T) {
	fn := singleBlockFn([]ir.Instruction{
		ir.Copy{Dst: ir.Var("a"), Src: ir.Const(3)},
		ir.Arith{Dst: ir.Var("b"), Op: ir.Mul, A: ir.Var("a"), B: ir.Const(0)},
		ir.Arith{Dst: ir.Var("c"), Op: ir.Add, A: ir.Var("b"), B: ir.Var("a")},
	}, nil, "c")

	Function(fn)
	first := cloneInstrs(fn.Blocks["entry"].Instructions)

	Function(fn)
	second := fn.Blocks["entry"].Instructions

	assert.Equal(t, first, second)
}

func ptr(o ir.Operand) *ir.Operand { return &o }

func cloneInstrs(in []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, len(in))
	copy(out, in)
	return out
}
