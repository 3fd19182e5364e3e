package diagnostics

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter renders diagnostics with source context and carets, in the
// same style as a Rust-like compiler front end. It is opt-in (the -pretty
// CLI flag); the plain sorted-text contract in Lines is the stdout
// contract the stage's external interface actually requires, and
// Reporter never changes that — it writes to stderr only.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter builds a Reporter over source for filename.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{filename: filename, lines: strings.Split(source, "\n")}
}

// Format renders one diagnostic as a multi-line, colorized block.
func (r *Reporter) Format(d Diagnostic) string {
	var b strings.Builder

	bold := color.New(color.FgRed, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	b.WriteString(fmt.Sprintf("%s: %s\n", bold("error"), d.Message))

	width := len(fmt.Sprintf("%d", d.Pos.Line))
	if width < 3 {
		width = 3
	}
	indent := strings.Repeat(" ", width)

	b.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n", indent, dim("-->"), r.filename, d.Pos.Line, d.Pos.Column))
	b.WriteString(fmt.Sprintf("%s %s\n", indent, dim("|")))

	if d.Pos.Line >= 1 && d.Pos.Line <= len(r.lines) {
		lineNo := fmt.Sprintf("%*d", width, d.Pos.Line)
		b.WriteString(fmt.Sprintf("%s %s %s\n", lineNo, dim("|"), r.lines[d.Pos.Line-1]))

		col := d.Pos.Column
		if col < 1 {
			col = 1
		}
		marker := strings.Repeat(" ", col-1) + bold("^")
		b.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("|"), marker))
	}
	b.WriteString("\n")
	return b.String()
}

// FormatAll renders every diagnostic in ds, in the order given (callers
// pass the already-sorted slice from List.Sorted when order matters).
func (r *Reporter) FormatAll(ds []Diagnostic) string {
	var b strings.Builder
	for _, d := range ds {
		b.WriteString(r.Format(d))
	}
	return b.String()
}
