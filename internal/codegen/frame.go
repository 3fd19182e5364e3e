package codegen

import "cflat/internal/ir"

// frame holds one function's stack layout: a slot offset (positive for
// parameters, negative for locals/temporaries) per name, and the total
// frame size the prologue subtracts from %rsp.
type frame struct {
	offsets   map[string]int
	paramSet  map[string]bool
	frameSize int
}

// buildFrame assigns slots: parameters at +16, +24, ... in declared
// order; every other entry in fn.Locals (declared locals, then the
// Lowerer's temporaries, in the order they were introduced) at -8,
// -16, ... in that same order.
func buildFrame(fn *ir.Function) *frame {
	fr := &frame{offsets: map[string]int{}, paramSet: map[string]bool{}}
	for i, p := range fn.Params {
		fr.paramSet[p] = true
		fr.offsets[p] = 16 + 8*i
	}

	next := -8
	slots := 0
	for _, loc := range fn.Locals {
		if fr.paramSet[loc.Name] {
			continue
		}
		if _, already := fr.offsets[loc.Name]; already {
			continue
		}
		fr.offsets[loc.Name] = next
		next -= 8
		slots++
	}

	fr.frameSize = roundUp16(slots * 8)
	return fr
}

func roundUp16(n int) int {
	if n%16 == 0 {
		return n
	}
	return n + (16 - n%16)
}

func (fr *frame) isParam(name string) bool { return fr.paramSet[name] }

func (fr *frame) slotOffset(name string) (int, bool) {
	off, ok := fr.offsets[name]
	return off, ok
}

// structOffsets computes, for every struct, a flat field→byte-offset
// table: each field occupies 8 bytes regardless of its own type.
func structOffsets(prog *ir.Program) map[string]map[string]int {
	out := make(map[string]map[string]int, len(prog.Structs))
	for name, fields := range prog.Structs {
		table := make(map[string]int, len(fields))
		for i, f := range fields {
			table[f.Name] = i * 8
		}
		out[name] = table
	}
	return out
}
