// Package ir implements cflat's low-level IR: a per-function control-flow
// graph of basic blocks holding three-address instructions, consumed by
// the optimizer and the code generator.
package ir

import (
	"fmt"
	"strings"

	"cflat/internal/types"
)

// Operand is either a named variable (a local, parameter, global or
// Lowerer-introduced temporary) or a constant.
type Operand struct {
	IsConst bool
	Var     string
	Const   int64
}

// Var builds a variable operand.
func Var(name string) Operand { return Operand{Var: name} }

// Const builds a constant operand.
func Const(v int64) Operand { return Operand{IsConst: true, Const: v} }

func (o Operand) String() string {
	if o.IsConst {
		return fmt.Sprintf("%d", o.Const)
	}
	return o.Var
}

// ArithOp is the operator of an Arith instruction.
type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	DivOp
)

func (op ArithOp) String() string {
	switch op {
	case Add:
		return "add"
	case Sub:
		return "sub"
	case Mul:
		return "mul"
	case DivOp:
		return "div"
	default:
		return "?"
	}
}

// CmpOp is the operator of a Cmp instruction.
type CmpOp int

const (
	Eq CmpOp = iota
	Neq
	Lt
	Lte
	Gt
	Gte
)

func (op CmpOp) String() string {
	switch op {
	case Eq:
		return "eq"
	case Neq:
		return "neq"
	case Lt:
		return "lt"
	case Lte:
		return "lte"
	case Gt:
		return "gt"
	case Gte:
		return "gte"
	default:
		return "?"
	}
}

// Instruction is any non-terminal instruction inside a basic block.
type Instruction interface {
	isInstruction()
	String() string
}

// Copy assigns an operand's value to Dst.
type Copy struct {
	Dst Operand
	Src Operand
}

// Arith computes Dst = Op(A, B) for +, -, *, /.
type Arith struct {
	Dst Operand
	Op  ArithOp
	A   Operand
	B   Operand
}

// Cmp computes Dst = A Op B, yielding 1 or 0.
type Cmp struct {
	Dst Operand
	Op  CmpOp
	A   Operand
	B   Operand
}

// Alloc allocates a heap array of Size elements and binds the resulting
// pointer to Dst.
type Alloc struct {
	Dst  Operand
	Size Operand
}

// Load reads the value at the address held by Addr into Dst.
type Load struct {
	Dst  Operand
	Addr Operand
}

// Store writes Val to the address held by Addr.
type Store struct {
	Addr Operand
	Val  Operand
}

// Gep ("get element pointer") computes the address of element Index of
// the array at Ptr, binding it to Dst.
type Gep struct {
	Dst   Operand
	Ptr   Operand
	Index Operand
}

// Gfp ("get field pointer") computes the address of Field of the struct
// at Ptr, binding it to Dst.
type Gfp struct {
	Dst   Operand
	Ptr   Operand
	Field string
}

// AddrOf computes the address of the storage CodeGen assigns to Name —
// a local's stack slot, a global's data symbol, or a named function's
// code symbol. It backs `&x` for a plain identifier x: unlike Gep/Gfp,
// there is no existing pointer value to offset from, so the address
// comes from whichever symbol table already maps Name to storage.
type AddrOf struct {
	Dst  Operand
	Name string
}

// CallExt calls an externally declared function using the System V
// register convention. It is an inline instruction, not a terminator: it
// does not split its block.
type CallExt struct {
	Dst    *Operand // nil when the result is discarded
	Extern string
	Args   []Operand
}

func (Copy) isInstruction()     {}
func (Arith) isInstruction()    {}
func (Cmp) isInstruction()      {}
func (Alloc) isInstruction()    {}
func (Load) isInstruction()     {}
func (Store) isInstruction()    {}
func (Gep) isInstruction()      {}
func (Gfp) isInstruction()      {}
func (AddrOf) isInstruction()   {}
func (CallExt) isInstruction()  {}

func (i Copy) String() string  { return fmt.Sprintf("%s = copy %s", i.Dst, i.Src) }
func (i Arith) String() string { return fmt.Sprintf("%s = %s %s, %s", i.Dst, i.Op, i.A, i.B) }
func (i Cmp) String() string   { return fmt.Sprintf("%s = cmp %s %s, %s", i.Dst, i.Op, i.A, i.B) }
func (i Alloc) String() string { return fmt.Sprintf("%s = alloc %s", i.Dst, i.Size) }
func (i Load) String() string  { return fmt.Sprintf("%s = load %s", i.Dst, i.Addr) }
func (i Store) String() string { return fmt.Sprintf("store %s, %s", i.Addr, i.Val) }
func (i Gep) String() string   { return fmt.Sprintf("%s = gep %s, %s", i.Dst, i.Ptr, i.Index) }
func (i Gfp) String() string   { return fmt.Sprintf("%s = gfp %s, %s", i.Dst, i.Ptr, i.Field) }
func (i AddrOf) String() string {
	return fmt.Sprintf("%s = addr_of %s", i.Dst, i.Name)
}
func (i CallExt) String() string {
	dst := "_"
	if i.Dst != nil {
		dst = i.Dst.String()
	}
	return fmt.Sprintf("%s = call_ext %s(%s)", dst, i.Extern, joinOperands(i.Args))
}

func joinOperands(ops []Operand) string {
	parts := make([]string, len(ops))
	for i, o := range ops {
		parts[i] = o.String()
	}
	return strings.Join(parts, ", ")
}

// Terminator is the last instruction of a basic block.
type Terminator interface {
	isTerminator()
	String() string
	// Successors returns the labels this terminator may transfer control
	// to, used by the CFG's reachability worklist.
	Successors() []string
}

// Jump unconditionally transfers control to Label.
type Jump struct {
	Label string
}

// Branch transfers control to TrueLabel if Cond is nonzero, else to
// FalseLabel.
type Branch struct {
	Cond       Operand
	TrueLabel  string
	FalseLabel string
}

// Ret returns from the function, optionally with a value.
type Ret struct {
	Value *Operand
}

// CallDirect calls a function known by name using the internal
// all-stack calling convention, then falls through to Next.
type CallDirect struct {
	Dst  *Operand
	Func string
	Args []Operand
	Next string
}

// CallIndirect calls the function pointer held in Ptr, then falls
// through to Next.
type CallIndirect struct {
	Dst  *Operand
	Ptr  Operand
	Args []Operand
	Next string
}

func (Jump) isTerminator()         {}
func (Branch) isTerminator()       {}
func (Ret) isTerminator()          {}
func (CallDirect) isTerminator()   {}
func (CallIndirect) isTerminator() {}

func (t Jump) Successors() []string   { return []string{t.Label} }
func (t Branch) Successors() []string { return []string{t.TrueLabel, t.FalseLabel} }
func (t Ret) Successors() []string    { return nil }
func (t CallDirect) Successors() []string   { return []string{t.Next} }
func (t CallIndirect) Successors() []string { return []string{t.Next} }

func (t Jump) String() string { return fmt.Sprintf("jump %s", t.Label) }
func (t Branch) String() string {
	return fmt.Sprintf("branch %s, %s, %s", t.Cond, t.TrueLabel, t.FalseLabel)
}
func (t Ret) String() string {
	if t.Value == nil {
		return "ret"
	}
	return fmt.Sprintf("ret %s", *t.Value)
}
func (t CallDirect) String() string {
	dst := "_"
	if t.Dst != nil {
		dst = t.Dst.String()
	}
	return fmt.Sprintf("%s = call %s(%s) -> %s", dst, t.Func, joinOperands(t.Args), t.Next)
}
func (t CallIndirect) String() string {
	dst := "_"
	if t.Dst != nil {
		dst = t.Dst.String()
	}
	return fmt.Sprintf("%s = call *%s(%s) -> %s", dst, t.Ptr, joinOperands(t.Args), t.Next)
}

// BasicBlock is a label, a straight-line instruction sequence, and
// exactly one terminator.
type BasicBlock struct {
	Label        string
	Instructions []Instruction
	Terminator   Terminator
}

// Local describes one name's type in a function's local table — every
// parameter, declared local, and Lowerer-introduced temporary.
type Local struct {
	Name string
	Type types.Type
}

// Function is one LIR function: its signature, its local table
// (including temporaries), and its block map keyed by label.
type Function struct {
	Name    string
	Params  []string
	RetType types.Type // nil == no return value
	Locals  []Local
	Blocks  map[string]*BasicBlock
	Order   []string // block labels in emission order, for stable output
}

// Program is the LIR root: globals, externs, structs (carried through
// unchanged from the AST) and lowered functions.
type Program struct {
	Globals   map[string]types.Type
	Externs   map[string]types.Fn
	Structs   map[string][]Local // ordered field list per struct
	Functions []*Function
}
