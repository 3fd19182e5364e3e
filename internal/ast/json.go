package ast

import (
	"encoding/json"
	"fmt"

	"cflat/internal/types"
)

// This file implements the JSON interchange format: every sum type
// marshals as a single-key tagged object, with field names (globals,
// externs, structs, functions, params, locals, body, rettyp, ...)
// matching the program structure they carry.

type programWire struct {
	Globals   []*globalWire    `json:"globals"`
	Externs   []*externWire    `json:"externs"`
	Structs   []*structWire    `json:"structs"`
	Functions []*functionWire  `json:"functions"`
}

type globalWire struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type externWire struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type structWire struct {
	Name   string       `json:"name"`
	Fields []fieldWire  `json:"fields"`
}

type fieldWire struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type functionWire struct {
	Name    string            `json:"name"`
	Params  []paramWire       `json:"params"`
	RetTyp  json.RawMessage   `json:"rettyp,omitempty"`
	Locals  []localWire       `json:"locals"`
	Body    []json.RawMessage `json:"body"`
}

type paramWire struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type localWire struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
	Init json.RawMessage `json:"init,omitempty"`
}

// MarshalJSON encodes a Program in the AST wire format.
func (prog *Program) MarshalJSON() ([]byte, error) {
	wire := programWire{}
	for _, g := range prog.Globals {
		raw, err := json.Marshal(g.Type)
		if err != nil {
			return nil, err
		}
		wire.Globals = append(wire.Globals, &globalWire{Name: g.Name, Type: raw})
	}
	for _, e := range prog.Externs {
		raw, err := json.Marshal(e.Type)
		if err != nil {
			return nil, err
		}
		wire.Externs = append(wire.Externs, &externWire{Name: e.Name, Type: raw})
	}
	for _, s := range prog.Structs {
		sw := &structWire{Name: s.Name}
		for _, f := range s.Fields {
			raw, err := json.Marshal(f.Type)
			if err != nil {
				return nil, err
			}
			sw.Fields = append(sw.Fields, fieldWire{Name: f.Name, Type: raw})
		}
		wire.Structs = append(wire.Structs, sw)
	}
	for _, fn := range prog.Functions {
		fw, err := marshalFunction(fn)
		if err != nil {
			return nil, err
		}
		wire.Functions = append(wire.Functions, fw)
	}
	return json.Marshal(wire)
}

func marshalFunction(fn *Function) (*functionWire, error) {
	fw := &functionWire{Name: fn.Name}
	for _, p := range fn.Params {
		raw, err := json.Marshal(p.Type)
		if err != nil {
			return nil, err
		}
		fw.Params = append(fw.Params, paramWire{Name: p.Name, Type: raw})
	}
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
		lw := localWire{Name: l.Name, Type: raw}
		if l.Init != nil {
			initRaw, err := marshalExp(l.Init)
			if err != nil {
				return nil, err
			}
			lw.Init = initRaw
		}
		fw.Locals = append(fw.Locals, lw)
	}
	for _, s := range fn.Body {
		raw, err := marshalStmt(s)
		if err != nil {
			return nil, err
		}
		fw.Body = append(fw.Body, raw)
	}
	return fw, nil
}

// UnmarshalProgram decodes a Program from its wire form.
func UnmarshalProgram(data []byte) (*Program, error) {
	var wire programWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("malformed program: %w", err)
	}
	prog := &Program{}
	for _, g := range wire.Globals {
		t, err := types.Unmarshal(g.Type)
		if err != nil {
			return nil, fmt.Errorf("malformed global %q: %w", g.Name, err)
		}
		prog.Globals = append(prog.Globals, &Global{Name: g.Name, Type: t})
	}
	for _, e := range wire.Externs {
		t, err := types.Unmarshal(e.Type)
		if err != nil {
			return nil, fmt.Errorf("malformed extern %q: %w", e.Name, err)
		}
		fn, ok := t.(types.Fn)
		if !ok {
			return nil, fmt.Errorf("extern %q must have Fn type, got %s", e.Name, t)
		}
		prog.Externs = append(prog.Externs, &Extern{Name: e.Name, Type: fn})
	}
	for _, s := range wire.Structs {
		sd := &StructDecl{Name: s.Name}
		for _, f := range s.Fields {
			t, err := types.Unmarshal(f.Type)
			if err != nil {
				return nil, fmt.Errorf("malformed field %q.%q: %w", s.Name, f.Name, err)
			}
			sd.Fields = append(sd.Fields, &FieldDecl{Name: f.Name, Type: t})
		}
		prog.Structs = append(prog.Structs, sd)
	}
	for _, fw := range wire.Functions {
		fn, err := unmarshalFunction(fw)
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, fn)
	}
	return prog, nil
}

func unmarshalFunction(fw *functionWire) (*Function, error) {
	fn := &Function{Name: fw.Name}
	for _, p := range fw.Params {
		t, err := types.Unmarshal(p.Type)
		if err != nil {
			return nil, fmt.Errorf("function %q: malformed param %q: %w", fw.Name, p.Name, err)
		}
		fn.Params = append(fn.Params, &Param{Name: p.Name, Type: t})
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
		ld := &LocalDecl{Name: l.Name, Type: t}
		if len(l.Init) > 0 {
			initExp, err := unmarshalExp(l.Init)
			if err != nil {
				return nil, fmt.Errorf("function %q: malformed local %q init: %w", fw.Name, l.Name, err)
			}
			ld.Init = initExp
		}
		fn.Locals = append(fn.Locals, ld)
	}
	for i, raw := range fw.Body {
		s, err := unmarshalStmt(raw)
		if err != nil {
			return nil, fmt.Errorf("function %q: malformed statement %d: %w", fw.Name, i, err)
		}
		fn.Body = append(fn.Body, s)
	}
	return fn, nil
}

// --- Stmt ---

func marshalStmt(s Stmt) (json.RawMessage, error) {
	var tag string
	var payload interface{}
	switch n := s.(type) {
	case *AssignStmt:
		lvalRaw, err := marshalLval(n.Lval)
		if err != nil {
			return nil, err
		}
		rhsRaw, err := marshalRhs(n.Rhs)
		if err != nil {
			return nil, err
		}
		tag, payload = "Assign", map[string]json.RawMessage{"lval": lvalRaw, "rhs": rhsRaw}
	case *IfStmt:
		guard, err := marshalExp(n.Guard)
		if err != nil {
			return nil, err
		}
		then, err := marshalStmtList(n.Then)
		if err != nil {
			return nil, err
		}
		els, err := marshalStmtList(n.Else)
		if err != nil {
			return nil, err
		}
		tag, payload = "If", struct {
			Guard json.RawMessage   `json:"guard"`
			Then  []json.RawMessage `json:"then"`
			Else  []json.RawMessage `json:"else"`
		}{guard, then, els}
	case *WhileStmt:
		guard, err := marshalExp(n.Guard)
		if err != nil {
			return nil, err
		}
		body, err := marshalStmtList(n.Body)
		if err != nil {
			return nil, err
		}
		tag, payload = "While", struct {
			Guard json.RawMessage   `json:"guard"`
			Body  []json.RawMessage `json:"body"`
		}{guard, body}
	case *ReturnStmt:
		var exprRaw json.RawMessage
		if n.Expr != nil {
			raw, err := marshalExp(n.Expr)
			if err != nil {
				return nil, err
			}
			exprRaw = raw
		}
		tag, payload = "Return", struct {
			Expr json.RawMessage `json:"expr,omitempty"`
		}{exprRaw}
	case *BreakStmt:
		tag, payload = "Break", struct{}{}
	case *ContinueStmt:
		tag, payload = "Continue", struct{}{}
	case *CallStmt:
		callee, err := marshalExp(n.Callee)
		if err != nil {
			return nil, err
		}
		args, err := marshalExpList(n.Args)
		if err != nil {
			return nil, err
		}
		tag, payload = "Call", struct {
			Callee json.RawMessage   `json:"callee"`
			Args   []json.RawMessage `json:"args"`
		}{callee, args}
	default:
		return nil, fmt.Errorf("unknown statement type %T", s)
	}
	payloadRaw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]json.RawMessage{tag: payloadRaw})
}

func marshalStmtList(stmts []Stmt) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(stmts))
	for i, s := range stmts {
		raw, err := marshalStmt(s)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return out, nil
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

func unmarshalStmt(data json.RawMessage) (Stmt, error) {
	tag, payload, err := singleTag(data)
	if err != nil {
		return nil, fmt.Errorf("malformed statement: %w", err)
	}
	switch tag {
	case "Assign":
		var w struct {
			Lval json.RawMessage `json:"lval"`
			Rhs  json.RawMessage `json:"rhs"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		lv, err := unmarshalLval(w.Lval)
		if err != nil {
			return nil, err
		}
		rh, err := unmarshalRhs(w.Rhs)
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Lval: lv, Rhs: rh}, nil
	case "If":
		var w struct {
			Guard json.RawMessage   `json:"guard"`
			Then  []json.RawMessage `json:"then"`
			Else  []json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		guard, err := unmarshalExp(w.Guard)
		if err != nil {
			return nil, err
		}
		then, err := unmarshalStmtList(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := unmarshalStmtList(w.Else)
		if err != nil {
			return nil, err
		}
		return &IfStmt{Guard: guard, Then: then, Else: els}, nil
	case "While":
		var w struct {
			Guard json.RawMessage   `json:"guard"`
			Body  []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		guard, err := unmarshalExp(w.Guard)
		if err != nil {
			return nil, err
		}
		body, err := unmarshalStmtList(w.Body)
		if err != nil {
			return nil, err
		}
		return &WhileStmt{Guard: guard, Body: body}, nil
	case "Return":
		var w struct {
			Expr json.RawMessage `json:"expr,omitempty"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		var expr Exp
		if len(w.Expr) > 0 {
			e, err := unmarshalExp(w.Expr)
			if err != nil {
				return nil, err
			}
			expr = e
		}
		return &ReturnStmt{Expr: expr}, nil
	case "Break":
		return &BreakStmt{}, nil
	case "Continue":
		return &ContinueStmt{}, nil
	case "Call":
		var w struct {
			Callee json.RawMessage   `json:"callee"`
			Args   []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		callee, err := unmarshalExp(w.Callee)
		if err != nil {
			return nil, err
		}
		args, err := unmarshalExpList(w.Args)
		if err != nil {
			return nil, err
		}
		return &CallStmt{Callee: callee, Args: args}, nil
	default:
		return nil, fmt.Errorf("unknown statement tag %q", tag)
	}
}

func unmarshalStmtList(data []json.RawMessage) ([]Stmt, error) {
	out := make([]Stmt, len(data))
	for i, raw := range data {
		s, err := unmarshalStmt(raw)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// --- Lval ---

func marshalLval(l Lval) (json.RawMessage, error) {
	var tag string
	var payload interface{}
	switch n := l.(type) {
	case *IdLval:
		tag, payload = "Id", struct {
			Name string `json:"name"`
		}{n.Name}
	case *DerefLval:
		base, err := marshalLval(n.Base)
		if err != nil {
			return nil, err
		}
		tag, payload = "Deref", struct {
			Base json.RawMessage `json:"base"`
		}{base}
	case *ArrayIndexLval:
		base, err := marshalLval(n.Base)
		if err != nil {
			return nil, err
		}
		index, err := marshalExp(n.Index)
		if err != nil {
			return nil, err
		}
		tag, payload = "ArrayIndex", struct {
			Base  json.RawMessage `json:"base"`
			Index json.RawMessage `json:"index"`
		}{base, index}
	case *FieldLval:
		base, err := marshalLval(n.Base)
		if err != nil {
			return nil, err
		}
		tag, payload = "Field", struct {
			Base  json.RawMessage `json:"base"`
			Field string          `json:"field"`
		}{base, n.Field}
	default:
		return nil, fmt.Errorf("unknown lval type %T", l)
	}
	payloadRaw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]json.RawMessage{tag: payloadRaw})
}

func unmarshalLval(data json.RawMessage) (Lval, error) {
	tag, payload, err := singleTag(data)
	if err != nil {
		return nil, fmt.Errorf("malformed lval: %w", err)
	}
	switch tag {
	case "Id":
		var w struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return &IdLval{Name: w.Name}, nil
	case "Deref":
		var w struct {
			Base json.RawMessage `json:"base"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		base, err := unmarshalLval(w.Base)
		if err != nil {
			return nil, err
		}
		return &DerefLval{Base: base}, nil
	case "ArrayIndex":
		var w struct {
			Base  json.RawMessage `json:"base"`
			Index json.RawMessage `json:"index"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		base, err := unmarshalLval(w.Base)
		if err != nil {
			return nil, err
		}
		index, err := unmarshalExp(w.Index)
		if err != nil {
			return nil, err
		}
		return &ArrayIndexLval{Base: base, Index: index}, nil
	case "Field":
		var w struct {
			Base  json.RawMessage `json:"base"`
			Field string          `json:"field"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		base, err := unmarshalLval(w.Base)
		if err != nil {
			return nil, err
		}
		return &FieldLval{Base: base, Field: w.Field}, nil
	default:
		return nil, fmt.Errorf("unknown lval tag %q", tag)
	}
}

// --- Rhs ---

func marshalRhs(r Rhs) (json.RawMessage, error) {
	var tag string
	var payload interface{}
	switch n := r.(type) {
	case *RhsExp:
		expr, err := marshalExp(n.Expr)
		if err != nil {
			return nil, err
		}
		tag, payload = "RhsExp", struct {
			Expr json.RawMessage `json:"expr"`
		}{expr}
	case *RhsNew:
		typeRaw, err := json.Marshal(n.Type)
		if err != nil {
			return nil, err
		}
		size, err := marshalExp(n.Size)
		if err != nil {
			return nil, err
		}
		tag, payload = "RhsNew", struct {
			Type json.RawMessage `json:"type"`
			Size json.RawMessage `json:"size"`
		}{typeRaw, size}
	default:
		return nil, fmt.Errorf("unknown rhs type %T", r)
	}
	payloadRaw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]json.RawMessage{tag: payloadRaw})
}

func unmarshalRhs(data json.RawMessage) (Rhs, error) {
	tag, payload, err := singleTag(data)
	if err != nil {
		return nil, fmt.Errorf("malformed rhs: %w", err)
	}
	switch tag {
	case "RhsExp":
		var w struct {
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		expr, err := unmarshalExp(w.Expr)
		if err != nil {
			return nil, err
		}
		return &RhsExp{Expr: expr}, nil
	case "RhsNew":
		var w struct {
			Type json.RawMessage `json:"type"`
			Size json.RawMessage `json:"size"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		t, err := types.Unmarshal(w.Type)
		if err != nil {
			return nil, err
		}
		size, err := unmarshalExp(w.Size)
		if err != nil {
			return nil, err
		}
		return &RhsNew{Type: t, Size: size}, nil
	default:
		return nil, fmt.Errorf("unknown rhs tag %q", tag)
	}
}

// --- Exp ---

func marshalExp(e Exp) (json.RawMessage, error) {
	var tag string
	var payload interface{}
	switch n := e.(type) {
	case *NumExp:
		tag, payload = "Num", struct {
			Value int64 `json:"value"`
		}{n.Value}
	case *IdExp:
		tag, payload = "Id", struct {
			Name string `json:"name"`
		}{n.Name}
	case *NilExp:
		tag, payload = "Nil", struct{}{}
	case *UnOpExp:
		operand, err := marshalExp(n.Operand)
		if err != nil {
			return nil, err
		}
		tag, payload = "UnOp", struct {
			Op      string          `json:"op"`
			Operand json.RawMessage `json:"operand"`
		}{unOpTag(n.Op), operand}
	case *BinOpExp:
		left, err := marshalExp(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := marshalExp(n.Right)
		if err != nil {
			return nil, err
		}
		tag, payload = "BinOp", struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}{binOpTag(n.Op), left, right}
	case *CallExp:
		callee, err := marshalExp(n.Callee)
		if err != nil {
			return nil, err
		}
		args, err := marshalExpList(n.Args)
		if err != nil {
			return nil, err
		}
		tag, payload = "Call", struct {
			Callee json.RawMessage   `json:"callee"`
			Args   []json.RawMessage `json:"args"`
		}{callee, args}
	case *ArrayIndexExp:
		base, err := marshalExp(n.Base)
		if err != nil {
			return nil, err
		}
		index, err := marshalExp(n.Index)
		if err != nil {
			return nil, err
		}
		tag, payload = "ArrayIndex", struct {
			Base  json.RawMessage `json:"base"`
			Index json.RawMessage `json:"index"`
		}{base, index}
	case *FieldExp:
		base, err := marshalExp(n.Base)
		if err != nil {
			return nil, err
		}
		tag, payload = "Field", struct {
			Base  json.RawMessage `json:"base"`
			Field string          `json:"field"`
		}{base, n.Field}
	case *NewExp:
		typeRaw, err := json.Marshal(n.Type)
		if err != nil {
			return nil, err
		}
		size, err := marshalExp(n.Size)
		if err != nil {
			return nil, err
		}
		tag, payload = "New", struct {
			Type json.RawMessage `json:"type"`
			Size json.RawMessage `json:"size"`
		}{typeRaw, size}
	default:
		return nil, fmt.Errorf("unknown expr type %T", e)
	}
	payloadRaw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]json.RawMessage{tag: payloadRaw})
}

func marshalExpList(exps []Exp) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(exps))
	for i, e := range exps {
		raw, err := marshalExp(e)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return out, nil
}

func unOpTag(op UnOp) string {
	switch op {
	case Neg:
		return "Neg"
	case Deref:
		return "Deref"
	case Addr:
		return "Addr"
	default:
		return "Neg"
	}
}

func unOpFromTag(s string) (UnOp, error) {
	switch s {
	case "Neg":
		return Neg, nil
	case "Deref":
		return Deref, nil
	case "Addr":
		return Addr, nil
	default:
		return 0, fmt.Errorf("unknown unary operator %q", s)
	}
}

func binOpTag(op BinOp) string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Eq:
		return "=="
	case Neq:
		return "!="
	case Lt:
		return "<"
	case Lte:
		return "<="
	case Gt:
		return ">"
	case Gte:
		return ">="
	default:
		return "+"
	}
}

func binOpFromTag(s string) (BinOp, error) {
	switch s {
	case "+":
		return Add, nil
	case "-":
		return Sub, nil
	case "*":
		return Mul, nil
	case "/":
		return Div, nil
	case "==":
		return Eq, nil
	case "!=":
		return Neq, nil
	case "<":
		return Lt, nil
	case "<=":
		return Lte, nil
	case ">":
		return Gt, nil
	case ">=":
		return Gte, nil
	default:
		return 0, fmt.Errorf("unknown binary operator %q", s)
	}
}

func unmarshalExp(data json.RawMessage) (Exp, error) {
	tag, payload, err := singleTag(data)
	if err != nil {
		return nil, fmt.Errorf("malformed expr: %w", err)
	}
	switch tag {
	case "Num":
		var w struct {
			Value int64 `json:"value"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return &NumExp{Value: w.Value}, nil
	case "Id":
		var w struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		return &IdExp{Name: w.Name}, nil
	case "Nil":
		return &NilExp{}, nil
	case "UnOp":
		var w struct {
			Op      string          `json:"op"`
			Operand json.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		op, err := unOpFromTag(w.Op)
		if err != nil {
			return nil, err
		}
		operand, err := unmarshalExp(w.Operand)
		if err != nil {
			return nil, err
		}
		return &UnOpExp{Op: op, Operand: operand}, nil
	case "BinOp":
		var w struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		op, err := binOpFromTag(w.Op)
		if err != nil {
			return nil, err
		}
		left, err := unmarshalExp(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := unmarshalExp(w.Right)
		if err != nil {
			return nil, err
		}
		return &BinOpExp{Op: op, Left: left, Right: right}, nil
	case "Call":
		var w struct {
			Callee json.RawMessage   `json:"callee"`
			Args   []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		callee, err := unmarshalExp(w.Callee)
		if err != nil {
			return nil, err
		}
		args, err := unmarshalExpList(w.Args)
		if err != nil {
			return nil, err
		}
		return &CallExp{Callee: callee, Args: args}, nil
	case "ArrayIndex":
		var w struct {
			Base  json.RawMessage `json:"base"`
			Index json.RawMessage `json:"index"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		base, err := unmarshalExp(w.Base)
		if err != nil {
			return nil, err
		}
		index, err := unmarshalExp(w.Index)
		if err != nil {
			return nil, err
		}
		return &ArrayIndexExp{Base: base, Index: index}, nil
	case "Field":
		var w struct {
			Base  json.RawMessage `json:"base"`
			Field string          `json:"field"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		base, err := unmarshalExp(w.Base)
		if err != nil {
			return nil, err
		}
		return &FieldExp{Base: base, Field: w.Field}, nil
	case "New":
		var w struct {
			Type json.RawMessage `json:"type"`
			Size json.RawMessage `json:"size"`
		}
		if err := json.Unmarshal(payload, &w); err != nil {
			return nil, err
		}
		t, err := types.Unmarshal(w.Type)
		if err != nil {
			return nil, err
		}
		size, err := unmarshalExp(w.Size)
		if err != nil {
			return nil, err
		}
		return &NewExp{Type: t, Size: size}, nil
	default:
		return nil, fmt.Errorf("unknown expr tag %q", tag)
	}
}

func unmarshalExpList(data []json.RawMessage) ([]Exp, error) {
	out := make([]Exp, len(data))
	for i, raw := range data {
		e, err := unmarshalExp(raw)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}
