package ir

import (
	"encoding/json"
	"fmt"

	"cflat/internal/types"
)

// This file implements the LIR wire format: instruction-variant tags
// (Copy, Arith, Cmp, Alloc, Load, Store, Gep, Gfp, AddrOf, CallExt) and
// terminator-variant tags (Jump, Branch, Ret, CallDirect, CallIndirect),
// each a single-key tagged object exactly like the AST codec.

// MarshalJSON encodes an Operand as {"Var": name} or {"Const": value}.
func (o Operand) MarshalJSON() ([]byte, error) {
	if o.IsConst {
		return json.Marshal(map[string]int64{"Const": o.Const})
	}
	return json.Marshal(map[string]string{"Var": o.Var})
}

// UnmarshalJSON decodes an Operand from its tagged wire form.
func (o *Operand) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if raw, ok := m["Var"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return err
		}
		*o = Operand{Var: name}
		return nil
	}
	if raw, ok := m["Const"]; ok {
		var v int64
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*o = Operand{IsConst: true, Const: v}
		return nil
	}
	return fmt.Errorf("operand must be {Var} or {Const}, got %s", data)
}

type localWire struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type functionWire struct {
	Name    string          `json:"name"`
	Params  []string        `json:"params"`
	RetTyp  json.RawMessage `json:"rettyp,omitempty"`
	Locals  []localWire     `json:"locals"`
	Blocks  []blockWire     `json:"blocks"`
}

type blockWire struct {
	Label        string            `json:"label"`
	Instructions []json.RawMessage `json:"instructions"`
	Terminator   json.RawMessage   `json:"terminator"`
}

type programWire struct {
	Globals   map[string]json.RawMessage `json:"globals"`
	Externs   map[string]json.RawMessage `json:"externs"`
	Structs   map[string][]localWire     `json:"structs"`
	Functions []functionWire             `json:"functions"`
}

// MarshalJSON encodes a Program in the LIR wire format.
func (prog *Program) MarshalJSON() ([]byte, error) {
	wire := programWire{
		Globals: map[string]json.RawMessage{},
		Externs: map[string]json.RawMessage{},
		Structs: map[string][]localWire{},
	}
	for name, t := range prog.Globals {
		raw, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		wire.Globals[name] = raw
	}
	for name, fn := range prog.Externs {
		raw, err := json.Marshal(fn)
		if err != nil {
			return nil, err
		}
		wire.Externs[name] = raw
	}
	for name, fields := range prog.Structs {
		fw := make([]localWire, len(fields))
		for i, f := range fields {
			raw, err := json.Marshal(f.Type)
			if err != nil {
				return nil, err
			}
			fw[i] = localWire{Name: f.Name, Type: raw}
		}
		wire.Structs[name] = fw
	}
	for _, fn := range prog.Functions {
		fw, err := marshalFunction(fn)
		if err != nil {
			return nil, err
		}
		wire.Functions = append(wire.Functions, *fw)
	}
	return json.Marshal(wire)
}

func marshalFunction(fn *Function) (*functionWire, error) {
	fw := &functionWire{Name: fn.Name, Params: fn.Params}
	if fn.RetType != nil {
		raw, err := json.Marshal(fn.RetType)
		if err != nil {
			return nil, err
		}
		fw.RetTyp = raw
	}
	for _, l := range fn.Locals {
		raw, err := json.Marshal(l.Type)
		if err != nil {
			return nil, err
		}
		fw.Locals = append(fw.Locals, localWire{Name: l.Name, Type: raw})
	}
	for _, label := range fn.Order {
		b := fn.Blocks[label]
		bw, err := marshalBlock(b)
		if err != nil {
			return nil, err
		}
		fw.Blocks = append(fw.Blocks, *bw)
	}
	return fw, nil
}

func marshalBlock(b *BasicBlock) (*blockWire, error) {
	bw := &blockWire{Label: b.Label}
	for _, instr := range b.Instructions {
		raw, err := marshalInstruction(instr)
		if err != nil {
			return nil, err
		}
		bw.Instructions = append(bw.Instructions, raw)
	}
	if b.Terminator != nil {
		raw, err := marshalTerminator(b.Terminator)
		if err != nil {
			return nil, err
		}
		bw.Terminator = raw
	}
	return bw, nil
}

func tagged(tag string, payload interface{}) (json.RawMessage, error) {
	payloadRaw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]json.RawMessage{tag: payloadRaw})
}

func singleTag(data []byte) (string, json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return "", nil, err
	}
	if len(m) != 1 {
		return "", nil, fmt.Errorf("expected single-key tagged object, got %d keys", len(m))
	}
	for k, v := range m {
		return k, v, nil
	}
	panic("unreachable")
}

func arithOpTag(op ArithOp) string {
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
		return "add"
	}
}

func arithOpFromTag(s string) (ArithOp, error) {
	switch s {
	case "add":
		return Add, nil
	case "sub":
		return Sub, nil
	case "mul":
		return Mul, nil
	case "div":
		return DivOp, nil
	default:
		return 0, fmt.Errorf("unknown arithmetic operator %q", s)
	}
}

func cmpOpTag(op CmpOp) string {
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
		return "eq"
	}
}

func cmpOpFromTag(s string) (CmpOp, error) {
	switch s {
	case "eq":
		return Eq, nil
	case "neq":
		return Neq, nil
	case "lt":
		return Lt, nil
	case "lte":
		return Lte, nil
	case "gt":
		return Gt, nil
	case "gte":
		return Gte, nil
	default:
		return 0, fmt.Errorf("unknown comparison operator %q", s)
	}
}

func marshalInstruction(i Instruction) (json.RawMessage, error) {
	switch n := i.(type) {
	case Copy:
		return tagged("Copy", struct {
			Dst Operand `json:"dst"`
			Src Operand `json:"src"`
		}{n.Dst, n.Src})
	case Arith:
		return tagged("Arith", struct {
			Dst Operand `json:"dst"`
			Op  string  `json:"op"`
			A   Operand `json:"a"`
			B   Operand `json:"b"`
		}{n.Dst, arithOpTag(n.Op), n.A, n.B})
	case Cmp:
		return tagged("Cmp", struct {
			Dst Operand `json:"dst"`
			Op  string  `json:"op"`
			A   Operand `json:"a"`
			B   Operand `json:"b"`
		}{n.Dst, cmpOpTag(n.Op), n.A, n.B})
	case Alloc:
		return tagged("Alloc", struct {
			Dst  Operand `json:"dst"`
			Size Operand `json:"size"`
		}{n.Dst, n.Size})
	case Load:
		return tagged("Load", struct {
			Dst  Operand `json:"dst"`
			Addr Operand `json:"addr"`
		}{n.Dst, n.Addr})
	case Store:
		return tagged("Store", struct {
			Addr Operand `json:"addr"`
			Val  Operand `json:"val"`
		}{n.Addr, n.Val})
	case Gep:
		return tagged("Gep", struct {
			Dst   Operand `json:"dst"`
			Ptr   Operand `json:"ptr"`
			Index Operand `json:"index"`
		}{n.Dst, n.Ptr, n.Index})
	case Gfp:
		return tagged("Gfp", struct {
			Dst   Operand `json:"dst"`
			Ptr   Operand `json:"ptr"`
			Field string  `json:"field"`
		}{n.Dst, n.Ptr, n.Field})
	case AddrOf:
		return tagged("AddrOf", struct {
			Dst  Operand `json:"dst"`
			Name string  `json:"name"`
		}{n.Dst, n.Name})
	case CallExt:
		return tagged("CallExt", struct {
			Dst    *Operand  `json:"dst,omitempty"`
			Extern string    `json:"extern"`
			Args   []Operand `json:"args"`
		}{n.Dst, n.Extern, n.Args})
	default:
		return nil, fmt.Errorf("unknown instruction type %T", i)
	}
}

func unmarshalInstruction(data json.RawMessage) (Instruction, error) {
	tag, payload, err := singleTag(data)
	if err != nil {
		return nil, fmt.Errorf("malformed instruction: %w", err)
	}
	switch tag {
	case "Copy":
		var w struct {
			Dst Operand `json:"dst"`
			Src Operand `json:"src"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return Copy{Dst: w.Dst, Src: w.Src}, nil
	case "Arith":
		var w struct {
			Dst Operand `json:"dst"`
			Op  string  `json:"op"`
			A   Operand `json:"a"`
			B   Operand `json:"b"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		op, err := arithOpFromTag(w.Op)
		if err != nil {
			return nil, err
		}
		return Arith{Dst: w.Dst, Op: op, A: w.A, B: w.B}, nil
	case "Cmp":
		var w struct {
			Dst Operand `json:"dst"`
			Op  string  `json:"op"`
			A   Operand `json:"a"`
			B   Operand `json:"b"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		op, err := cmpOpFromTag(w.Op)
		if err != nil {
			return nil, err
		}
		return Cmp{Dst: w.Dst, Op: op, A: w.A, B: w.B}, nil
	case "Alloc":
		var w struct {
			Dst  Operand `json:"dst"`
			Size Operand `json:"size"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return Alloc{Dst: w.Dst, Size: w.Size}, nil
	case "Load":
		var w struct {
			Dst  Operand `json:"dst"`
			Addr Operand `json:"addr"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return Load{Dst: w.Dst, Addr: w.Addr}, nil
	case "Store":
		var w struct {
			Addr Operand `json:"addr"`
			Val  Operand `json:"val"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return Store{Addr: w.Addr, Val: w.Val}, nil
	case "Gep":
		var w struct {
			Dst   Operand `json:"dst"`
			Ptr   Operand `json:"ptr"`
			Index Operand `json:"index"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return Gep{Dst: w.Dst, Ptr: w.Ptr, Index: w.Index}, nil
	case "Gfp":
		var w struct {
			Dst   Operand `json:"dst"`
			Ptr   Operand `json:"ptr"`
			Field string  `json:"field"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return Gfp{Dst: w.Dst, Ptr: w.Ptr, Field: w.Field}, nil
	case "AddrOf":
		var w struct {
			Dst  Operand `json:"dst"`
			Name string  `json:"name"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return AddrOf{Dst: w.Dst, Name: w.Name}, nil
	case "CallExt":
		var w struct {
			Dst    *Operand  `json:"dst,omitempty"`
			Extern string    `json:"extern"`
			Args   []Operand `json:"args"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return CallExt{Dst: w.Dst, Extern: w.Extern, Args: w.Args}, nil
	default:
		return nil, fmt.Errorf("unknown instruction tag %q", tag)
	}
}

func marshalTerminator(t Terminator) (json.RawMessage, error) {
	switch n := t.(type) {
	case Jump:
		return tagged("Jump", struct {
			Label string `json:"label"`
		}{n.Label})
	case Branch:
		return tagged("Branch", struct {
			Cond       Operand `json:"cond"`
			TrueLabel  string  `json:"tt"`
			FalseLabel string  `json:"ff"`
		}{n.Cond, n.TrueLabel, n.FalseLabel})
	case Ret:
		return tagged("Ret", struct {
			Value *Operand `json:"value,omitempty"`
		}{n.Value})
	case CallDirect:
		return tagged("CallDirect", struct {
			Dst  *Operand  `json:"dst,omitempty"`
			Func string    `json:"func"`
			Args []Operand `json:"args"`
			Next string    `json:"next"`
		}{n.Dst, n.Func, n.Args, n.Next})
	case CallIndirect:
		return tagged("CallIndirect", struct {
			Dst  *Operand  `json:"dst,omitempty"`
			Ptr  Operand   `json:"ptr"`
			Args []Operand `json:"args"`
			Next string    `json:"next"`
		}{n.Dst, n.Ptr, n.Args, n.Next})
	default:
		return nil, fmt.Errorf("unknown terminator type %T", t)
	}
}

func unmarshalTerminator(data json.RawMessage) (Terminator, error) {
	tag, payload, err := singleTag(data)
	if err != nil {
		return nil, fmt.Errorf("malformed terminator: %w", err)
	}
	switch tag {
	case "Jump":
		var w struct {
			Label string `json:"label"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return Jump{Label: w.Label}, nil
	case "Branch":
		var w struct {
			Cond       Operand `json:"cond"`
			TrueLabel  string  `json:"tt"`
			FalseLabel string  `json:"ff"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return Branch{Cond: w.Cond, TrueLabel: w.TrueLabel, FalseLabel: w.FalseLabel}, nil
	case "Ret":
		var w struct {
			Value *Operand `json:"value,omitempty"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return Ret{Value: w.Value}, nil
	case "CallDirect":
		var w struct {
			Dst  *Operand  `json:"dst,omitempty"`
			Func string    `json:"func"`
			Args []Operand `json:"args"`
			Next string    `json:"next"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return CallDirect{Dst: w.Dst, Func: w.Func, Args: w.Args, Next: w.Next}, nil
	case "CallIndirect":
		var w struct {
			Dst  *Operand  `json:"dst,omitempty"`
			Ptr  Operand   `json:"ptr"`
			Args []Operand `json:"args"`
			Next string    `json:"next"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return CallIndirect{Dst: w.Dst, Ptr: w.Ptr, Args: w.Args, Next: w.Next}, nil
	default:
		return nil, fmt.Errorf("unknown terminator tag %q", tag)
	}
}

// UnmarshalProgram decodes a Program from its wire form.
func UnmarshalProgram(data []byte) (*Program, error) {
	var wire programWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("malformed LIR program: %w", err)
	}
	prog := &Program{
		Globals: map[string]types.Type{},
		Externs: map[string]types.Fn{},
		Structs: map[string][]Local{},
	}
	for name, raw := range wire.Globals {
		t, err := types.Unmarshal(raw)
		if err != nil {
			return nil, fmt.Errorf("malformed global %q: %w", name, err)
		}
		prog.Globals[name] = t
	}
	for name, raw := range wire.Externs {
		t, err := types.Unmarshal(raw)
		if err != nil {
			return nil, fmt.Errorf("malformed extern %q: %w", name, err)
		}
		fn, ok := t.(types.Fn)
		if !ok {
			return nil, fmt.Errorf("extern %q must have Fn type, got %s", name, t)
		}
		prog.Externs[name] = fn
	}
	for name, fields := range wire.Structs {
		var locals []Local
		for _, f := range fields {
			t, err := types.Unmarshal(f.Type)
			if err != nil {
				return nil, fmt.Errorf("malformed field %q.%q: %w", name, f.Name, err)
			}
			locals = append(locals, Local{Name: f.Name, Type: t})
		}
		prog.Structs[name] = locals
	}
	for _, fw := range wire.Functions {
		fn, err := unmarshalFunction(&fw)
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, fn)
	}
	return prog, nil
}

func unmarshalFunction(fw *functionWire) (*Function, error) {
	fn := &Function{
		Name:   fw.Name,
		Params: fw.Params,
		Blocks: map[string]*BasicBlock{},
	}
	ret, err := types.UnmarshalField(fw.RetTyp)
	if err != nil {
		return nil, fmt.Errorf("function %q: malformed rettyp: %w", fw.Name, err)
	}
	fn.RetType = ret

	for _, l := range fw.Locals {
		t, err := types.Unmarshal(l.Type)
		if err != nil {
			return nil, fmt.Errorf("function %q: malformed local %q: %w", fw.Name, l.Name, err)
		}
		fn.Locals = append(fn.Locals, Local{Name: l.Name, Type: t})
	}

	for _, bw := range fw.Blocks {
		block := &BasicBlock{Label: bw.Label}
		for i, raw := range bw.Instructions {
			instr, err := unmarshalInstruction(raw)
			if err != nil {
				return nil, fmt.Errorf("function %q: block %q: instruction %d: %w", fw.Name, bw.Label, i, err)
			}
			block.Instructions = append(block.Instructions, instr)
		}
		if len(bw.Terminator) > 0 {
			term, err := unmarshalTerminator(bw.Terminator)
			if err != nil {
				return nil, fmt.Errorf("function %q: block %q: terminator: %w", fw.Name, bw.Label, err)
			}
			block.Terminator = term
		}
		fn.Blocks[bw.Label] = block
		fn.Order = append(fn.Order, bw.Label)
	}

	return fn, nil
}
