package ast

import (
	"encoding/json"
	"testing"

	"cflat/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProgram() *Program {
	return &Program{
		Globals: []*Global{
			{Name: "counter", Type: types.Int{}},
		},
		Externs: []*Extern{
			{Name: "print_int", Type: types.Fn{Params: []types.Type{types.Int{}}}},
		},
		Structs: []*StructDecl{
			{Name: "Point", Fields: []*FieldDecl{
				{Name: "x", Type: types.Int{}},
				{Name: "y", Type: types.Int{}},
			}},
		},
		Functions: []*Function{
			{
				Name:    "test",
				Params:  []*Param{{Name: "n", Type: types.Int{}}},
				RetType: types.Int{},
				Locals: []*LocalDecl{
					{Name: "p", Type: types.Ptr{Elem: types.Struct{Name: "Point"}}, Init: &NilExp{}},
				},
				Body: []Stmt{
					&AssignStmt{
						Lval: &FieldLval{Base: &IdLval{Name: "p"}, Field: "x"},
						Rhs:  &RhsExp{Expr: &BinOpExp{Op: Add, Left: &IdExp{Name: "n"}, Right: &NumExp{Value: 1}}},
					},
					&IfStmt{
						Guard: &BinOpExp{Op: Gt, Left: &IdExp{Name: "n"}, Right: &NumExp{Value: 0}},
						Then: []Stmt{
							&CallStmt{Callee: &IdExp{Name: "print_int"}, Args: []Exp{&IdExp{Name: "n"}}},
						},
						Else: []Stmt{
							&BreakStmt{},
						},
					},
					&WhileStmt{
						Guard: &UnOpExp{Op: Neg, Operand: &NumExp{Value: 1}},
						Body:  []Stmt{&ContinueStmt{}},
					},
					&AssignStmt{
						Lval: &IdLval{Name: "p"},
						Rhs:  &RhsNew{Type: types.Int{}, Size: &NumExp{Value: 4}},
					},
					&ReturnStmt{Expr: &ArrayIndexExp{Base: &IdExp{Name: "p"}, Index: &NumExp{Value: 0}}},
				},
			},
			{
				Name: "voidFn",
				Body: []Stmt{&ReturnStmt{}},
			},
		},
	}
}

func TestProgramJSONRoundTrip(t *testing.T) {
	prog := sampleProgram()
	data, err := json.MarshalIndent(prog, "", "  ")
	require.NoError(t, err)

	decoded, err := UnmarshalProgram(data)
	require.NoError(t, err)

	require.Len(t, decoded.Globals, 1)
	assert.Equal(t, "counter", decoded.Globals[0].Name)
	assert.True(t, types.Equal(decoded.Globals[0].Type, types.Int{}))

	require.Len(t, decoded.Externs, 1)
	assert.Equal(t, "print_int", decoded.Externs[0].Name)

	require.Len(t, decoded.Structs, 1)
	assert.Equal(t, "Point", decoded.Structs[0].Name)
	require.Len(t, decoded.Structs[0].Fields, 2)

	require.Len(t, decoded.Functions, 2)
	fn := decoded.Functions[0]
	assert.Equal(t, "test", fn.Name)
	assert.True(t, types.Equal(fn.RetType, types.Int{}))
	require.Len(t, fn.Locals, 1)
	assert.IsType(t, &NilExp{}, fn.Locals[0].Init)
	require.Len(t, fn.Body, 5)

	assign, ok := fn.Body[0].(*AssignStmt)
	require.True(t, ok)
	fieldLval, ok := assign.Lval.(*FieldLval)
	require.True(t, ok)
	assert.Equal(t, "x", fieldLval.Field)
	rhsExp, ok := assign.Rhs.(*RhsExp)
	require.True(t, ok)
	binop, ok := rhsExp.Expr.(*BinOpExp)
	require.True(t, ok)
	assert.Equal(t, Add, binop.Op)

	ifStmt, ok := fn.Body[1].(*IfStmt)
	require.True(t, ok)
	require.Len(t, ifStmt.Then, 1)
	callStmt, ok := ifStmt.Then[0].(*CallStmt)
	require.True(t, ok)
	assert.Len(t, callStmt.Args, 1)
	require.Len(t, ifStmt.Else, 1)
	assert.IsType(t, &BreakStmt{}, ifStmt.Else[0])

	whileStmt, ok := fn.Body[2].(*WhileStmt)
	require.True(t, ok)
	assert.IsType(t, &ContinueStmt{}, whileStmt.Body[0])

	newAssign, ok := fn.Body[3].(*AssignStmt)
	require.True(t, ok)
	rhsNew, ok := newAssign.Rhs.(*RhsNew)
	require.True(t, ok)
	assert.True(t, types.Equal(rhsNew.Type, types.Int{}))

	ret, ok := fn.Body[4].(*ReturnStmt)
	require.True(t, ok)
	assert.IsType(t, &ArrayIndexExp{}, ret.Expr)

	voidFn := decoded.Functions[1]
	assert.Nil(t, voidFn.RetType)
	assert.IsType(t, &ReturnStmt{}, voidFn.Body[0])
	assert.Nil(t, voidFn.Body[0].(*ReturnStmt).Expr)
}

func TestStmtTagsAreSingleKeyObjects(t *testing.T) {
	raw, err := marshalStmt(&BreakStmt{})
	require.NoError(t, err)
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	require.Len(t, m, 1)
	_, ok := m["Break"]
	assert.True(t, ok)
}

func TestUnmarshalUnknownStmtTagFails(t *testing.T) {
	_, err := unmarshalStmt(json.RawMessage(`{"Bogus": {}}`))
	assert.Error(t, err)
}

func TestUnmarshalMultiKeyObjectFails(t *testing.T) {
	_, err := unmarshalStmt(json.RawMessage(`{"Break": {}, "Continue": {}}`))
	assert.Error(t, err)
}

func TestBinOpRoundTripsAllOperators(t *testing.T) {
	ops := []BinOp{Add, Sub, Mul, Div, Eq, Neq, Lt, Lte, Gt, Gte}
	for _, op := range ops {
		exp := &BinOpExp{Op: op, Left: &NumExp{Value: 1}, Right: &NumExp{Value: 2}}
		raw, err := marshalExp(exp)
		require.NoError(t, err)
		decoded, err := unmarshalExp(raw)
		require.NoError(t, err)
		bo, ok := decoded.(*BinOpExp)
		require.True(t, ok)
		assert.Equal(t, op, bo.Op)
	}
}

func TestUnOpRoundTripsAllOperators(t *testing.T) {
	ops := []UnOp{Neg, Deref, Addr}
	for _, op := range ops {
		exp := &UnOpExp{Op: op, Operand: &NumExp{Value: 1}}
		raw, err := marshalExp(exp)
		require.NoError(t, err)
		decoded, err := unmarshalExp(raw)
		require.NoError(t, err)
		uo, ok := decoded.(*UnOpExp)
		require.True(t, ok)
		assert.Equal(t, op, uo.Op)
	}
}
