package types

import (
	"encoding/json"
	"fmt"
)

// Types marshal as a bare string "Int", or a single-key tagged object
// {"Ptr": <Type>}, {"Struct": <name>} or {"Fn": {"params": [...], "ret": ...}}.
// Any never reaches the wire (it is a checker-internal bottom only).

func (Int) MarshalJSON() ([]byte, error) {
	return json.Marshal("Int")
}

func (s Struct) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Struct": s.Name})
}

func (p Ptr) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]Type{"Ptr": p.Elem})
}

type fnWire struct {
	Params []json.RawMessage `json:"params"`
	Ret    json.RawMessage   `json:"ret,omitempty"`
}

func (f Fn) MarshalJSON() ([]byte, error) {
	wire := fnWire{Params: make([]json.RawMessage, len(f.Params))}
	for i, p := range f.Params {
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		wire.Params[i] = raw
	}
	if f.Ret != nil {
		raw, err := json.Marshal(f.Ret)
		if err != nil {
			return nil, err
		}
		wire.Ret = raw
	}
	return json.Marshal(map[string]fnWire{"Fn": wire})
}

// Unmarshal decodes a Type from its wire form. Types has no UnmarshalJSON
// method on the interface itself (Go can't unmarshal into an interface),
// so callers needing a Type field go through this helper.
func Unmarshal(data []byte) (Type, error) {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		switch asString {
		case "Int":
			return Int{}, nil
		case "Any":
			return Any{}, nil
		default:
			return nil, fmt.Errorf("unknown primitive type %q", asString)
		}
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return nil, fmt.Errorf("malformed type: %w", err)
	}
	if raw, ok := tagged["Struct"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, fmt.Errorf("malformed Struct type: %w", err)
		}
		return Struct{Name: name}, nil
	}
	if raw, ok := tagged["Ptr"]; ok {
		elem, err := Unmarshal(raw)
		if err != nil {
			return nil, fmt.Errorf("malformed Ptr type: %w", err)
		}
		return Ptr{Elem: elem}, nil
	}
	if raw, ok := tagged["Fn"]; ok {
		var wire fnWire
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, fmt.Errorf("malformed Fn type: %w", err)
		}
		fn := Fn{Params: make([]Type, len(wire.Params))}
		for i, p := range wire.Params {
			t, err := Unmarshal(p)
			if err != nil {
				return nil, fmt.Errorf("malformed Fn param %d: %w", i, err)
			}
			fn.Params[i] = t
		}
		ret, err := UnmarshalField(wire.Ret)
		if err != nil {
			return nil, fmt.Errorf("malformed Fn ret: %w", err)
		}
		fn.Ret = ret
		return fn, nil
	}
	return nil, fmt.Errorf("malformed type object: %s", string(data))
}

// UnmarshalField decodes an optional (possibly absent/null) type field,
// used for Fn.Ret and similar "ret?" slots.
func UnmarshalField(data json.RawMessage) (Type, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	return Unmarshal(data)
}
