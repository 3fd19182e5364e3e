package ir

import "fmt"

// PruneUnreachable removes every block not reachable from "entry" via a
// worklist traversal of terminator successors, and rewrites fn.Order to
// match. It runs once per function, right after the Lowerer finishes
// emitting its blocks.
func PruneUnreachable(fn *Function) {
	reachable := map[string]bool{}
	worklist := []string{"entry"}
	for len(worklist) > 0 {
		label := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if reachable[label] {
			continue
		}
		reachable[label] = true
		block, ok := fn.Blocks[label]
		if !ok || block.Terminator == nil {
			continue
		}
		for _, succ := range block.Terminator.Successors() {
			if !reachable[succ] {
				worklist = append(worklist, succ)
			}
		}
	}

	newOrder := make([]string, 0, len(fn.Order))
	for _, label := range fn.Order {
		if reachable[label] {
			newOrder = append(newOrder, label)
		} else {
			delete(fn.Blocks, label)
		}
	}
	fn.Order = newOrder
}

// CheckIntegrity validates a function's CFG: entry exists, every block
// ends with exactly one terminator, and every referenced label resolves
// within the same function. It returns the first violation found, or
// nil if fn is well-formed.
func CheckIntegrity(fn *Function) error {
	if _, ok := fn.Blocks["entry"]; !ok {
		return fmt.Errorf("function %q has no entry block", fn.Name)
	}
	for _, label := range fn.Order {
		block, ok := fn.Blocks[label]
		if !ok {
			return fmt.Errorf("function %q: order references block %q missing from the block map", fn.Name, label)
		}
		if block.Terminator == nil {
			return fmt.Errorf("function %q: block %q has no terminator", fn.Name, label)
		}
		for _, succ := range block.Terminator.Successors() {
			if _, ok := fn.Blocks[succ]; !ok {
				return fmt.Errorf("function %q: block %q references undefined label %q", fn.Name, label, succ)
			}
		}
	}
	return nil
}
