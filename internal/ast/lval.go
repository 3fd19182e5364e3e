package ast

// Lval is the sum type {Id, Deref, ArrayIndex, Field}: the restricted
// sublanguage of expressions that may appear as an assignment target.
// Unlike Exp's ArrayIndex/Field, which wrap Exp, Lval's own
// ArrayIndex/Field wrap Lval (the base is itself assignable).
type Lval interface {
	Node
	isLval()
}

// IdLval names a variable directly (global, parameter or local).
type IdLval struct {
	Pos  Position
	Name string
}

func (*IdLval) isLval()           {}
func (l *IdLval) NodePos() Position { return l.Pos }

// DerefLval writes through a pointer.
type DerefLval struct {
	Pos  Position
	Base Lval
}

func (*DerefLval) isLval()           {}
func (l *DerefLval) NodePos() Position { return l.Pos }

// ArrayIndexLval indexes a heap array held by Base.
type ArrayIndexLval struct {
	Pos   Position
	Base  Lval
	Index Exp
}

func (*ArrayIndexLval) isLval()           {}
func (l *ArrayIndexLval) NodePos() Position { return l.Pos }

// FieldLval accesses a struct field through Base.
type FieldLval struct {
	Pos   Position
	Base  Lval
	Field string
}

func (*FieldLval) isLval()           {}
func (l *FieldLval) NodePos() Position { return l.Pos }
