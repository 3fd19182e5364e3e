package ast

import "cflat/internal/types"

// Program is the root of the AST: globals, externs, structs and
// functions.
type Program struct {
	Globals   []*Global
	Externs   []*Extern
	Structs   []*StructDecl
	Functions []*Function
}

// Global declares a module-level variable. Per [GLOBAL] it may not have
// struct or function type.
type Global struct {
	Pos  Position
	Name string
	Type types.Type
}

func (g *Global) NodePos() Position { return g.Pos }

// Extern declares an externally-provided function with a known signature.
type Extern struct {
	Pos  Position
	Name string
	Type types.Fn
}

func (e *Extern) NodePos() Position { return e.Pos }

// StructDecl declares a nominal struct type; its fields form Δ's entry for
// this struct's name.
type StructDecl struct {
	Pos    Position
	Name   string
	Fields []*FieldDecl
}

func (s *StructDecl) NodePos() Position { return s.Pos }

// FieldDecl is one ordered field of a struct. Per [STRUCT] it may not have
// struct or function type.
type FieldDecl struct {
	Pos  Position
	Name string
	Type types.Type
}

func (f *FieldDecl) NodePos() Position { return f.Pos }
