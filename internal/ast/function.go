package ast

import "cflat/internal/types"

// Function is a top-level function declaration: name, ordered parameters,
// an optional return type (nil means the `_` "no return value" marker),
// ordered locals (each with an optional initializer) and an ordered
// statement list.
type Function struct {
	Pos     Position
	Name    string
	Params  []*Param
	RetType types.Type // nil == "_"
	Locals  []*LocalDecl
	Body    []Stmt
}

func (f *Function) NodePos() Position { return f.Pos }

// Param is one function parameter. Per [FUNCTION] it may not have struct or
// function type.
type Param struct {
	Pos  Position
	Name string
	Type types.Type
}

func (p *Param) NodePos() Position { return p.Pos }

// LocalDecl is one `let` declaration inside a function. Init is nil when the
// local has no initializer expression. Per [FUNCTION], a present Init must
// have exactly the declared type (subject to Any relaxation), and the
// declared type itself may not be struct or function.
type LocalDecl struct {
	Pos  Position
	Name string
	Type types.Type
	Init Exp // nilable
}

func (l *LocalDecl) NodePos() Position { return l.Pos }
