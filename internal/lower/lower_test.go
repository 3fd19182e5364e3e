package lower

import (
	"testing"

	"cflat/internal/ast"
	"cflat/internal/ir"
	"cflat/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fn(name string, ret types.Type, locals []*ast.LocalDecl, body []ast.Stmt) *ast.Function {
	return &ast.Function{Name: name, RetType: ret, Locals: locals, Body: body}
}

func lowerOne(t *testing.T, prog *ast.Program) *ir.Function {
	t.Helper()
	out := Program(prog)
	require.Len(t, out.Functions, 1)
	f := out.Functions[0]
	require.NoError(t, ir.CheckIntegrity(f))
	return f
}

func TestTrivialReturnLowersToSingleBlock(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			fn("main", types.Int{}, nil, []ast.Stmt{
				&ast.ReturnStmt{Expr: &ast.NumExp{Value: 3}},
			}),
		},
	}
	f := lowerOne(t, prog)
	require.Equal(t, []string{"entry"}, f.Order)
	ret, ok := f.Blocks["entry"].Terminator.(ir.Ret)
	require.True(t, ok)
	require.NotNil(t, ret.Value)
	assert.Equal(t, int64(3), ret.Value.Const)
}

func TestArrayWriteAndReadUsesGepAndLoad(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			fn("main", types.Int{},
				[]*ast.LocalDecl{
					{Name: "p", Type: types.Ptr{Elem: types.Int{}}},
				},
				[]ast.Stmt{
					&ast.AssignStmt{Lval: &ast.IdLval{Name: "p"}, Rhs: &ast.RhsNew{Type: types.Int{}, Size: &ast.NumExp{Value: 4}}},
					&ast.AssignStmt{
						Lval: &ast.ArrayIndexLval{Base: &ast.IdLval{Name: "p"}, Index: &ast.NumExp{Value: 0}},
						Rhs:  &ast.RhsExp{Expr: &ast.NumExp{Value: 5}},
					},
					&ast.ReturnStmt{Expr: &ast.ArrayIndexExp{Base: &ast.IdExp{Name: "p"}, Index: &ast.NumExp{Value: 0}}},
				}),
		},
	}
	f := lowerOne(t, prog)
	entry := f.Blocks["entry"]

	var sawAlloc, sawGep, sawStore, sawLoad bool
	for _, instr := range entry.Instructions {
		switch instr.(type) {
		case ir.Alloc:
			sawAlloc = true
		case ir.Gep:
			sawGep = true
		case ir.Store:
			sawStore = true
		case ir.Load:
			sawLoad = true
		}
	}
	assert.True(t, sawAlloc, "expected Alloc for `new int[4]`")
	assert.True(t, sawGep, "expected Gep for array indexing")
	assert.True(t, sawStore, "expected Store for the array write")
	assert.True(t, sawLoad, "expected Load for the array read")
}

func TestFieldAssignmentAndAccessUsesGfp(t *testing.T) {
	prog := &ast.Program{
		Structs: []*ast.StructDecl{
			{Name: "Point", Fields: []*ast.FieldDecl{
				{Name: "x", Type: types.Int{}},
				{Name: "y", Type: types.Int{}},
			}},
		},
		Functions: []*ast.Function{
			fn("main", types.Int{},
				[]*ast.LocalDecl{{Name: "p", Type: types.Ptr{Elem: types.Struct{Name: "Point"}}}},
				[]ast.Stmt{
					&ast.AssignStmt{Lval: &ast.IdLval{Name: "p"}, Rhs: &ast.RhsNew{Type: types.Struct{Name: "Point"}, Size: &ast.NumExp{Value: 1}}},
					&ast.AssignStmt{
						Lval: &ast.FieldLval{Base: &ast.IdLval{Name: "p"}, Field: "y"},
						Rhs:  &ast.RhsExp{Expr: &ast.NumExp{Value: 7}},
					},
					&ast.ReturnStmt{Expr: &ast.FieldExp{Base: &ast.IdExp{Name: "p"}, Field: "y"}},
				}),
		},
	}
	f := lowerOne(t, prog)
	entry := f.Blocks["entry"]

	gfpCount := 0
	for _, instr := range entry.Instructions {
		if g, ok := instr.(ir.Gfp); ok {
			gfpCount++
			assert.Equal(t, "y", g.Field)
		}
	}
	assert.Equal(t, 2, gfpCount, "expected one Gfp for the write and one for the read")
}

func TestIfElseBranchesToAJoinLabel(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			fn("main", types.Int{}, nil, []ast.Stmt{
				&ast.IfStmt{
					Guard: &ast.NumExp{Value: 1},
					Then:  []ast.Stmt{&ast.ReturnStmt{Expr: &ast.NumExp{Value: 1}}},
					Else:  []ast.Stmt{&ast.ReturnStmt{Expr: &ast.NumExp{Value: 2}}},
				},
			}),
		},
	}
	f := lowerOne(t, prog)

	entry := f.Blocks["entry"]
	branch, ok := entry.Terminator.(ir.Branch)
	require.True(t, ok)

	thenBlock := f.Blocks[branch.TrueLabel]
	elseBlock := f.Blocks[branch.FalseLabel]
	require.NotNil(t, thenBlock)
	require.NotNil(t, elseBlock)
	_, thenIsRet := thenBlock.Terminator.(ir.Ret)
	_, elseIsRet := elseBlock.Terminator.(ir.Ret)
	assert.True(t, thenIsRet)
	assert.True(t, elseIsRet)
}

func TestWhileLoopReEvaluatesGuardAtHead(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			fn("main", nil,
				[]*ast.LocalDecl{{Name: "i", Type: types.Int{}}},
				[]ast.Stmt{
					&ast.AssignStmt{Lval: &ast.IdLval{Name: "i"}, Rhs: &ast.RhsExp{Expr: &ast.NumExp{Value: 0}}},
					&ast.WhileStmt{
						Guard: &ast.BinOpExp{Op: ast.Lt, Left: &ast.IdExp{Name: "i"}, Right: &ast.NumExp{Value: 10}},
						Body: []ast.Stmt{
							&ast.IfStmt{
								Guard: &ast.BinOpExp{Op: ast.Eq, Left: &ast.IdExp{Name: "i"}, Right: &ast.NumExp{Value: 5}},
								Then:  []ast.Stmt{&ast.BreakStmt{}},
							},
							&ast.AssignStmt{
								Lval: &ast.IdLval{Name: "i"},
								Rhs:  &ast.RhsExp{Expr: &ast.BinOpExp{Op: ast.Add, Left: &ast.IdExp{Name: "i"}, Right: &ast.NumExp{Value: 1}}},
							},
							&ast.ContinueStmt{},
						},
					},
				}),
		},
	}
	f := lowerOne(t, prog)

	// After pruning, at least one reachable Jump must still target the
	// Branch-terminated loop head: entry's jump into the loop and
	// Continue's Jump both do (the body's own fallthrough Jump comes after
	// Continue, so its block is unreachable and pruned).
	jumpsToHead := 0
	var headLabel string
	for _, label := range f.Order {
		if j, ok := f.Blocks[label].Terminator.(ir.Jump); ok {
			if b, ok := f.Blocks[j.Label].Terminator.(ir.Branch); ok {
				headLabel = j.Label
				_ = b
				jumpsToHead++
			}
		}
	}
	assert.Greater(t, jumpsToHead, 0)
	assert.NotEmpty(t, headLabel)
}

func TestAddrOfLocalEmitsAddrOf(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			fn("main", nil,
				[]*ast.LocalDecl{
					{Name: "n", Type: types.Int{}},
					{Name: "p", Type: types.Ptr{Elem: types.Int{}}},
				},
				[]ast.Stmt{
					&ast.AssignStmt{Lval: &ast.IdLval{Name: "p"}, Rhs: &ast.RhsExp{Expr: &ast.UnOpExp{Op: ast.Addr, Operand: &ast.IdExp{Name: "n"}}}},
				}),
		},
	}
	f := lowerOne(t, prog)
	entry := f.Blocks["entry"]

	var found *ir.AddrOf
	for _, instr := range entry.Instructions {
		if a, ok := instr.(ir.AddrOf); ok {
			found = &a
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "n", found.Name)
}

func TestIndirectCallThroughFunctionPointerLocal(t *testing.T) {
	prog := &ast.Program{
		Externs: []*ast.Extern{
			{Name: "printf", Type: types.Fn{Params: []types.Type{types.Int{}}, Ret: types.Int{}}},
		},
		Functions: []*ast.Function{
			fn("main", types.Int{},
				[]*ast.LocalDecl{
					{Name: "f", Type: types.Ptr{Elem: types.Fn{Params: []types.Type{types.Int{}}, Ret: types.Int{}}}},
				},
				[]ast.Stmt{
					&ast.AssignStmt{Lval: &ast.IdLval{Name: "f"}, Rhs: &ast.RhsExp{Expr: &ast.UnOpExp{Op: ast.Addr, Operand: &ast.IdExp{Name: "printf"}}}},
					&ast.ReturnStmt{Expr: &ast.CallExp{Callee: &ast.IdExp{Name: "f"}, Args: []ast.Exp{&ast.NumExp{Value: 1}}}},
				}),
		},
	}
	f := lowerOne(t, prog)

	var sawIndirect bool
	for _, label := range f.Order {
		if ci, ok := f.Blocks[label].Terminator.(ir.CallIndirect); ok {
			sawIndirect = true
			assert.Equal(t, "f", ci.Ptr.Var)
		}
	}
	assert.True(t, sawIndirect, "expected a CallIndirect through the function-pointer local")
}

func TestDirectCallToDeclaredFunctionUsesCallDirect(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			fn("helper", types.Int{}, nil, []ast.Stmt{
				&ast.ReturnStmt{Expr: &ast.NumExp{Value: 9}},
			}),
			fn("main", types.Int{}, nil, []ast.Stmt{
				&ast.ReturnStmt{Expr: &ast.CallExp{Callee: &ast.IdExp{Name: "helper"}}},
			}),
		},
	}
	out := Program(prog)
	require.Len(t, out.Functions, 2)

	var main *ir.Function
	for _, f := range out.Functions {
		if f.Name == "main" {
			main = f
		}
	}
	require.NotNil(t, main)
	require.NoError(t, ir.CheckIntegrity(main))

	var sawDirect bool
	for _, label := range main.Order {
		if cd, ok := main.Blocks[label].Terminator.(ir.CallDirect); ok {
			sawDirect = true
			assert.Equal(t, "helper", cd.Func)
		}
	}
	assert.True(t, sawDirect, "expected a CallDirect to the declared function helper")
}

func TestBareFunctionNameAssignedAsValueEmitsAddrOf(t *testing.T) {
	fnType := types.Fn{Ret: types.Int{}}
	prog := &ast.Program{
		Functions: []*ast.Function{
			fn("add", types.Int{}, nil, []ast.Stmt{
				&ast.ReturnStmt{Expr: &ast.NumExp{Value: 9}},
			}),
			fn("main", types.Int{},
				[]*ast.LocalDecl{{Name: "p", Type: types.Ptr{Elem: fnType}}},
				[]ast.Stmt{
					&ast.AssignStmt{Lval: &ast.IdLval{Name: "p"}, Rhs: &ast.RhsExp{Expr: &ast.IdExp{Name: "add"}}},
					&ast.ReturnStmt{Expr: &ast.CallExp{Callee: &ast.IdExp{Name: "p"}}},
				}),
		},
	}
	out := Program(prog)
	require.Len(t, out.Functions, 2)

	var main *ir.Function
	for _, f := range out.Functions {
		if f.Name == "main" {
			main = f
		}
	}
	require.NotNil(t, main)
	require.NoError(t, ir.CheckIntegrity(main))

	var found *ir.AddrOf
	var copySrc *ir.Operand
	for _, label := range main.Order {
		for _, instr := range main.Blocks[label].Instructions {
			if a, ok := instr.(ir.AddrOf); ok {
				found = &a
			}
			if cp, ok := instr.(ir.Copy); ok {
				src := cp.Src
				copySrc = &src
				assert.NotEqual(t, "add", cp.Src.Var, "the function's address must not be read as a bare Var")
			}
		}
	}
	require.NotNil(t, found, "a bare function-name reference must lower through AddrOf, not Var")
	assert.Equal(t, "add", found.Name)
	require.NotNil(t, copySrc, "the AddrOf result must still be copied into p")
	assert.Equal(t, found.Dst.Var, copySrc.Var, "p must be copied from the AddrOf temp, not a bare reference to add")

	var sawIndirect bool
	for _, label := range main.Order {
		if ci, ok := main.Blocks[label].Terminator.(ir.CallIndirect); ok {
			sawIndirect = true
			assert.Equal(t, "p", ci.Ptr.Var)
		}
	}
	assert.True(t, sawIndirect, "expected a CallIndirect through p")
}

func TestNegLowersToZeroMinusOperand(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			fn("main", types.Int{}, nil, []ast.Stmt{
				&ast.ReturnStmt{Expr: &ast.UnOpExp{Op: ast.Neg, Operand: &ast.NumExp{Value: 4}}},
			}),
		},
	}
	f := lowerOne(t, prog)
	entry := f.Blocks["entry"]
	require.Len(t, entry.Instructions, 1)
	arith, ok := entry.Instructions[0].(ir.Arith)
	require.True(t, ok)
	assert.Equal(t, ir.Sub, arith.Op)
	assert.Equal(t, int64(0), arith.A.Const)
	assert.Equal(t, int64(4), arith.B.Const)
}
