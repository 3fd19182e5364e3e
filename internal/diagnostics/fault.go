package diagnostics

import "github.com/pkg/errors"

// Fault marks an internal invariant violation: malformed LIR reaching
// code generation, a CFG missing its entry block, and similar conditions
// that a well-formed pass should never produce. Unlike a Diagnostic,
// a Fault is always fatal to its pass.
type Fault struct {
	cause error
}

// NewFault wraps msg into a Fault, attaching a stack trace via pkg/errors
// so the failure can be traced back to the invariant that broke.
func NewFault(format string, args ...interface{}) *Fault {
	return &Fault{cause: errors.Errorf(format, args...)}
}

// WrapFault attaches a Fault context to an existing error.
func WrapFault(err error, msg string) *Fault {
	return &Fault{cause: errors.Wrap(err, msg)}
}

func (f *Fault) Error() string { return f.cause.Error() }

// Unwrap exposes the underlying pkg/errors-wrapped cause.
func (f *Fault) Unwrap() error { return f.cause }
