// Package types implements the type lattice shared by the checker, the
// lowerer and the code generator: Any, Int, Struct(name), Ptr(T) and
// Fn(params, ret?).
package types

import "strings"

// Type is the sum type of cflat's type lattice. Any is the checker's
// bottom for error recovery and is never written by source text or
// serialized to the LIR wire format; Int/Struct/Ptr/Fn are the surface
// types.
type Type interface {
	isType()
	String() string
}

// Any compares equal to every other type (see Equal). It is how the
// checker suppresses cascades once a subexpression has already failed.
type Any struct{}

func (Any) isType()        {}
func (Any) String() string { return "any" }

// Int is the only primitive value type.
type Int struct{}

func (Int) isType()        {}
func (Int) String() string { return "int" }

// Struct is a nominal reference to a struct declaration; its fields live in
// the checker's Δ table, not on this node.
type Struct struct {
	Name string
}

func (Struct) isType()          {}
func (s Struct) String() string { return s.Name }

// Ptr is a pointer to any type, including Fn (function pointers).
type Ptr struct {
	Elem Type
}

func (Ptr) isType()        {}
func (p Ptr) String() string {
	return "&" + p.Elem.String()
}

// Fn is a function signature. Ret == nil means "no return value" (the `_`
// marker in source).
type Fn struct {
	Params []Type
	Ret    Type
}

func (Fn) isType() {}
func (f Fn) String() string {
	var b strings.Builder
	b.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(") -> ")
	if f.Ret == nil {
		b.WriteString("_")
	} else {
		b.WriteString(f.Ret.String())
	}
	return b.String()
}

// Equal is reflexive and symmetric on the non-Any fragment, and Any is
// universal (T == Any for every T).
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if _, ok := a.(Any); ok {
		return true
	}
	if _, ok := b.(Any); ok {
		return true
	}
	switch at := a.(type) {
	case Int:
		_, ok := b.(Int)
		return ok
	case Struct:
		bt, ok := b.(Struct)
		return ok && at.Name == bt.Name
	case Ptr:
		bt, ok := b.(Ptr)
		return ok && Equal(at.Elem, bt.Elem)
	case Fn:
		bt, ok := b.(Fn)
		if !ok || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		if (at.Ret == nil) != (bt.Ret == nil) {
			return false
		}
		return at.Ret == nil || Equal(at.Ret, bt.Ret)
	default:
		return false
	}
}

// IsStructOrFn reports whether t may not be used as a global, field,
// parameter or local type per the [GLOBAL]/[STRUCT]/[FUNCTION] rules.
func IsStructOrFn(t Type) bool {
	switch t.(type) {
	case Struct, Fn:
		return true
	default:
		return false
	}
}

// IsPrimitive reports whether t is int or a pointer, the two types
// [BINOP-EQ] accepts for == and !=.
func IsPrimitive(t Type) bool {
	switch t.(type) {
	case Int, Ptr:
		return true
	default:
		return false
	}
}
