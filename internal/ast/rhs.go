package ast

import "cflat/internal/types"

// Rhs is the sum type {RhsExp, RhsNew}: the right-hand side of an
// Assign statement is either a plain expression or a heap allocation.
type Rhs interface {
	Node
	isRhs()
}

// RhsExp is a plain expression assigned to an Lval.
type RhsExp struct {
	Pos  Position
	Expr Exp
}

func (*RhsExp) isRhs()           {}
func (r *RhsExp) NodePos() Position { return r.Pos }

// RhsNew is `new T[n]`: allocate a heap array of n elements of type T.
type RhsNew struct {
	Pos  Position
	Type types.Type
	Size Exp
}

func (*RhsNew) isRhs()           {}
func (r *RhsNew) NodePos() Position { return r.Pos }
