package parser

import (
	"testing"

	"cflat/internal/ast"
	"cflat/internal/lexer"
	"cflat/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.Scan(src)
	require.NoError(t, err)
	prog, err := Parse(toks)
	require.NoError(t, err)
	return prog
}

func TestTrivialReturnFunction(t *testing.T) {
	prog := mustParse(t, "fn main() -> int { return 3; }")

	require.Len(t, prog.Functions, 1)
	fn := prog.Functions[0]
	assert.Equal(t, "main", fn.Name)
	assert.Equal(t, types.Int{}, fn.RetType)
	require.Len(t, fn.Body, 1)
	ret, ok := fn.Body[0].(*ast.ReturnStmt)
	require.True(t, ok)
	num, ok := ret.Expr.(*ast.NumExp)
	require.True(t, ok)
	assert.Equal(t, int64(3), num.Value)
}

func TestArrayAllocationAndIndexedAssignment(t *testing.T) {
	prog := mustParse(t, `
		fn main() -> _ {
			let a:&int = new int[3];
			a[5] = 0;
			return;
		}
	`)

	fn := prog.Functions[0]
	require.Len(t, fn.Locals, 1)
	local := fn.Locals[0]
	assert.Equal(t, types.Ptr{Elem: types.Int{}}, local.Type)
	newExp, ok := local.Init.(*ast.NewExp)
	require.True(t, ok)
	assert.Equal(t, types.Int{}, newExp.Type)
	size, ok := newExp.Size.(*ast.NumExp)
	require.True(t, ok)
	assert.Equal(t, int64(3), size.Value)

	require.Len(t, fn.Body, 2)
	assign, ok := fn.Body[0].(*ast.AssignStmt)
	require.True(t, ok)
	idx, ok := assign.Lval.(*ast.ArrayIndexLval)
	require.True(t, ok)
	base, ok := idx.Base.(*ast.IdLval)
	require.True(t, ok)
	assert.Equal(t, "a", base.Name)
}

func TestStructAllocationFieldAssignmentAndAccess(t *testing.T) {
	prog := mustParse(t, `
		struct S { x:int, y:int }
		fn main() -> int {
			let p:&S = new S;
			p.y = 7;
			return p.y;
		}
	`)

	require.Len(t, prog.Structs, 1)
	s := prog.Structs[0]
	assert.Equal(t, "S", s.Name)
	require.Len(t, s.Fields, 2)
	assert.Equal(t, "y", s.Fields[1].Name)

	fn := prog.Functions[0]
	local := fn.Locals[0]
	newExp := local.Init.(*ast.NewExp)
	assert.Equal(t, types.Struct{Name: "S"}, newExp.Type)

	assign := fn.Body[0].(*ast.AssignStmt)
	field, ok := assign.Lval.(*ast.FieldLval)
	require.True(t, ok)
	assert.Equal(t, "y", field.Field)

	ret := fn.Body[1].(*ast.ReturnStmt)
	fieldExp, ok := ret.Expr.(*ast.FieldExp)
	require.True(t, ok)
	assert.Equal(t, "y", fieldExp.Field)
}

func TestExternAndIndirectCallThroughFunctionPointer(t *testing.T) {
	prog := mustParse(t, `
		extern printf: (&int) -> int;
		fn main() -> _ {
			let msg:int = 0;
			let f:&((&int) -> int) = &printf;
			f(&msg);
		}
	`)

	require.Len(t, prog.Externs, 1)
	ext := prog.Externs[0]
	assert.Equal(t, "printf", ext.Name)
	assert.Equal(t, types.Int{}, ext.Type.Ret)

	fn := prog.Functions[0]
	require.Len(t, fn.Locals, 2)
	fLocal := fn.Locals[1]
	ptrType, ok := fLocal.Type.(types.Ptr)
	require.True(t, ok)
	_, ok = ptrType.Elem.(types.Fn)
	require.True(t, ok)

	addrOf, ok := fLocal.Init.(*ast.UnOpExp)
	require.True(t, ok)
	assert.Equal(t, ast.Addr, addrOf.Op)
	callee := addrOf.Operand.(*ast.IdExp)
	assert.Equal(t, "printf", callee.Name)

	require.Len(t, fn.Body, 1)
	callStmt, ok := fn.Body[0].(*ast.CallStmt)
	require.True(t, ok)
	calleeId, ok := callStmt.Callee.(*ast.IdExp)
	require.True(t, ok)
	assert.Equal(t, "f", calleeId.Name)
	require.Len(t, callStmt.Args, 1)
}

func TestOperatorPrecedenceMulBindsTighterThanAdd(t *testing.T) {
	prog := mustParse(t, "fn main() -> int { return 1 + 2 * 3; }")

	ret := prog.Functions[0].Body[0].(*ast.ReturnStmt)
	top, ok := ret.Expr.(*ast.BinOpExp)
	require.True(t, ok)
	assert.Equal(t, ast.Add, top.Op)
	_, ok = top.Left.(*ast.NumExp)
	require.True(t, ok)
	right, ok := top.Right.(*ast.BinOpExp)
	require.True(t, ok)
	assert.Equal(t, ast.Mul, right.Op)
}

func TestElseIfChains(t *testing.T) {
	prog := mustParse(t, `
		fn main() -> int {
			if (1 < 2) {
				return 1;
			} else if (2 < 3) {
				return 2;
			} else {
				return 3;
			}
		}
	`)

	ifStmt := prog.Functions[0].Body[0].(*ast.IfStmt)
	require.Len(t, ifStmt.Else, 1)
	elseIf, ok := ifStmt.Else[0].(*ast.IfStmt)
	require.True(t, ok)
	require.Len(t, elseIf.Else, 1)
}

func TestMissingSemicolonIsFatalAtTheOffendingToken(t *testing.T) {
	toks, err := lexer.Scan("fn main() -> int { return 3 }")
	require.NoError(t, err)

	_, err = Parse(toks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse error at token")
}

func TestWhileLoopWithBreakAndContinue(t *testing.T) {
	prog := mustParse(t, `
		fn main() -> _ {
			while (1) {
				if (1) { break; }
				continue;
			}
			return;
		}
	`)

	while, ok := prog.Functions[0].Body[0].(*ast.WhileStmt)
	require.True(t, ok)
	require.Len(t, while.Body, 2)
	_, ok = while.Body[1].(*ast.ContinueStmt)
	require.True(t, ok)
}
