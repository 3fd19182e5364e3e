// Package diagnostics implements the type checker's output contract: an
// ordered list of messages, sorted lexicographically before they ever
// reach a writer, plus an optional caret-annotated rendering for terminal
// use.
package diagnostics

import (
	"fmt"
	"sort"
	"strings"

	"cflat/internal/ast"
)

// Diagnostic is one type-checker finding. Message always begins with the
// rule tag that produced it, e.g. "[ARRAY] index must be int".
type Diagnostic struct {
	Message string
	Pos     ast.Position
}

// List is a diagnostic list. The zero value is an empty list.
type List struct {
	items []Diagnostic
}

// Add appends a diagnostic built from a rule tag and a formatted message.
func (l *List) Add(pos ast.Position, tag, format string, args ...interface{}) {
	l.items = append(l.items, Diagnostic{
		Message: fmt.Sprintf("%s %s", tag, fmt.Sprintf(format, args...)),
		Pos:     pos,
	})
}

// Len reports how many diagnostics have been collected.
func (l *List) Len() int { return len(l.items) }

// Sorted returns the diagnostics in ascending lexicographic order of
// message text, giving a deterministic, rerun-stable order regardless of
// the order diagnostics were discovered in. The receiver is left
// untouched; callers get a fresh, independently sorted slice.
func (l *List) Sorted() []Diagnostic {
	out := make([]Diagnostic, len(l.items))
	copy(out, l.items)
	sort.Slice(out, func(i, j int) bool { return out[i].Message < out[j].Message })
	return out
}

// Lines renders the sorted diagnostics as plain text, one per line, with
// no trailing content when the list is empty (a well-typed program).
func Lines(ds []Diagnostic) string {
	var b strings.Builder
	for _, d := range ds {
		b.WriteString(d.Message)
		b.WriteString("\n")
	}
	return b.String()
}
