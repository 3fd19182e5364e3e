package semantic

import (
	"testing"

	"cflat/internal/ast"
	"cflat/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tags(t *testing.T, program *ast.Program) []string {
	t.Helper()
	ds := Check(program)
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Message
	}
	return out
}

func fn(name string, ret types.Type, body []ast.Stmt) *ast.Function {
	return &ast.Function{Name: name, RetType: ret, Body: body}
}

func TestWellTypedProgramHasNoDiagnostics(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			fn("main", types.Int{}, []ast.Stmt{
				&ast.ReturnStmt{Expr: &ast.NumExp{Value: 3}},
			}),
		},
	}
	assert.Empty(t, tags(t, prog))
}

func TestUndefinedIdentifier(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			fn("main", types.Int{}, []ast.Stmt{
				&ast.ReturnStmt{Expr: &ast.IdExp{Name: "missing"}},
			}),
		},
	}
	ds := tags(t, prog)
	require.Len(t, ds, 1)
	assert.Contains(t, ds[0], "[ID]")
}

func TestCallingMainIsAlwaysRejected(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			fn("helper", nil, []ast.Stmt{
				&ast.CallStmt{Callee: &ast.IdExp{Name: "main"}},
			}),
			fn("main", nil, nil),
		},
	}
	ds := tags(t, prog)
	require.Len(t, ds, 1)
	assert.Contains(t, ds[0], "[SCALL-INTERNAL]")
	assert.Contains(t, ds[0], "calling main")
}

func TestBreakOutsideLoopIsRejected(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			fn("main", nil, []ast.Stmt{&ast.BreakStmt{}}),
		},
	}
	ds := tags(t, prog)
	require.Len(t, ds, 1)
	assert.Contains(t, ds[0], "[BREAK]")
}

func TestBreakInsideWhileIsAccepted(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			fn("main", nil, []ast.Stmt{
				&ast.WhileStmt{
					Guard: &ast.NumExp{Value: 1},
					Body:  []ast.Stmt{&ast.BreakStmt{}},
				},
			}),
		},
	}
	assert.Empty(t, tags(t, prog))
}

func TestReturnWithValueWhenNoneDeclared(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			fn("main", nil, []ast.Stmt{
				&ast.ReturnStmt{Expr: &ast.NumExp{Value: 1}},
			}),
		},
	}
	ds := tags(t, prog)
	require.Len(t, ds, 1)
	assert.Contains(t, ds[0], "[RETURN-1]")
}

func TestReturnTypeMismatch(t *testing.T) {
	prog := &ast.Program{
		Structs: []*ast.StructDecl{
			{Name: "S", Fields: []*ast.FieldDecl{{Name: "x", Type: types.Int{}}}},
		},
		Functions: []*ast.Function{
			fn("main", types.Ptr{Elem: types.Struct{Name: "S"}}, []ast.Stmt{
				&ast.ReturnStmt{Expr: &ast.NumExp{Value: 1}},
			}),
		},
	}
	ds := tags(t, prog)
	require.Len(t, ds, 1)
	assert.Contains(t, ds[0], "[RETURN-2]")
}

func TestNilAssignableToAnyPointer(t *testing.T) {
	prog := &ast.Program{
		Structs: []*ast.StructDecl{
			{Name: "S", Fields: []*ast.FieldDecl{{Name: "x", Type: types.Int{}}}},
		},
		Functions: []*ast.Function{
			{
				Name: "main",
				Locals: []*ast.LocalDecl{
					{Name: "p", Type: types.Ptr{Elem: types.Struct{Name: "S"}}},
				},
				Body: []ast.Stmt{
					&ast.AssignStmt{Lval: &ast.IdLval{Name: "p"}, Rhs: &ast.RhsExp{Expr: &ast.NilExp{}}},
				},
			},
		},
	}
	assert.Empty(t, tags(t, prog))
}

func TestAddrOfNonLvalueIsRejected(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			{
				Name: "main",
				Locals: []*ast.LocalDecl{
					{Name: "p", Type: types.Ptr{Elem: types.Int{}}},
				},
				Body: []ast.Stmt{
					&ast.AssignStmt{
						Lval: &ast.IdLval{Name: "p"},
						Rhs: &ast.RhsExp{Expr: &ast.UnOpExp{
							Op:      ast.Addr,
							Operand: &ast.BinOpExp{Op: ast.Add, Left: &ast.NumExp{Value: 1}, Right: &ast.NumExp{Value: 2}},
						}},
					},
				},
			},
		},
	}
	ds := tags(t, prog)
	require.Len(t, ds, 1)
	assert.Contains(t, ds[0], "[ADDR]")
}

func TestAddrOfIdentifierIsAccepted(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			{
				Name: "main",
				Locals: []*ast.LocalDecl{
					{Name: "n", Type: types.Int{}},
					{Name: "p", Type: types.Ptr{Elem: types.Int{}}},
				},
				Body: []ast.Stmt{
					&ast.AssignStmt{
						Lval: &ast.IdLval{Name: "p"},
						Rhs:  &ast.RhsExp{Expr: &ast.UnOpExp{Op: ast.Addr, Operand: &ast.IdExp{Name: "n"}}},
					},
				},
			},
		},
	}
	assert.Empty(t, tags(t, prog))
}

func TestArityMismatchOnExternCall(t *testing.T) {
	prog := &ast.Program{
		Externs: []*ast.Extern{
			{Name: "printf", Type: types.Fn{Params: []types.Type{types.Int{}}, Ret: types.Int{}}},
		},
		Functions: []*ast.Function{
			fn("main", types.Int{}, []ast.Stmt{
				&ast.ReturnStmt{Expr: &ast.CallExp{Callee: &ast.IdExp{Name: "printf"}}},
			}),
		},
	}
	ds := tags(t, prog)
	require.Len(t, ds, 1)
	assert.Contains(t, ds[0], "[ECALL-EXTERN]")
}

func TestAnyAbsorptionSuppressesCascade(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			fn("main", types.Int{}, []ast.Stmt{
				&ast.ReturnStmt{Expr: &ast.BinOpExp{
					Op:    ast.Add,
					Left:  &ast.IdExp{Name: "missing"},
					Right: &ast.NumExp{Value: 1},
				}},
			}),
		},
	}
	ds := tags(t, prog)
	require.Len(t, ds, 1)
	assert.Contains(t, ds[0], "[ID]")
}

func TestDiagnosticsAreLexicographicallySorted(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.Function{
			fn("main", nil, []ast.Stmt{
				&ast.AssignStmt{
					Lval: &ast.IdLval{Name: "missing1"},
					Rhs:  &ast.RhsExp{Expr: &ast.NumExp{Value: 1}},
				},
				&ast.IfStmt{
					Guard: &ast.BinOpExp{Op: ast.Add, Left: &ast.NilExp{}, Right: &ast.NumExp{Value: 1}},
				},
			}),
		},
	}
	ds := Check(prog)
	for i := 1; i < len(ds); i++ {
		assert.LessOrEqual(t, ds[i-1].Message, ds[i].Message)
	}
}

func TestStructFieldAccessAndOffsetOrderIndependence(t *testing.T) {
	prog := &ast.Program{
		Structs: []*ast.StructDecl{
			{Name: "Point", Fields: []*ast.FieldDecl{
				{Name: "x", Type: types.Int{}},
				{Name: "y", Type: types.Int{}},
			}},
		},
		Functions: []*ast.Function{
			{
				Name:    "main",
				RetType: types.Int{},
				Locals: []*ast.LocalDecl{
					{Name: "p", Type: types.Ptr{Elem: types.Struct{Name: "Point"}}},
				},
				Body: []ast.Stmt{
					&ast.AssignStmt{
						Lval: &ast.IdLval{Name: "p"},
						Rhs:  &ast.RhsNew{Type: types.Struct{Name: "Point"}, Size: &ast.NumExp{Value: 1}},
					},
					&ast.AssignStmt{
						Lval: &ast.FieldLval{Base: &ast.IdLval{Name: "p"}, Field: "y"},
						Rhs:  &ast.RhsExp{Expr: &ast.NumExp{Value: 7}},
					},
					&ast.ReturnStmt{Expr: &ast.FieldExp{Base: &ast.IdExp{Name: "p"}, Field: "y"}},
				},
			},
		},
	}
	assert.Empty(t, tags(t, prog))
}

func TestUnknownFieldIsRejected(t *testing.T) {
	prog := &ast.Program{
		Structs: []*ast.StructDecl{
			{Name: "Point", Fields: []*ast.FieldDecl{{Name: "x", Type: types.Int{}}}},
		},
		Functions: []*ast.Function{
			{
				Name: "main",
				Locals: []*ast.LocalDecl{
					{Name: "p", Type: types.Ptr{Elem: types.Struct{Name: "Point"}}},
				},
				Body: []ast.Stmt{
					&ast.AssignStmt{
						Lval: &ast.FieldLval{Base: &ast.IdLval{Name: "p"}, Field: "z"},
						Rhs:  &ast.RhsExp{Expr: &ast.NumExp{Value: 1}},
					},
				},
			},
		},
	}
	ds := tags(t, prog)
	require.Len(t, ds, 1)
	assert.Contains(t, ds[0], "[FIELD]")
}
