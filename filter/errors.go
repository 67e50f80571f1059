package filter

import (
	"fmt"

	"github.com/expr-lang/expr/file"
)

// CompilationError indicates a filter expression could not be compiled
type CompilationError struct {
	Expression string
	Reason     string
	Position   int // -1 if position is unknown
	Err        error
}

func (e *CompilationError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("compilation error at position %d in '%s': %s", e.Position, e.Expression, e.Reason)
	}
	return fmt.Sprintf("compilation error in '%s': %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// compilationError extracts the position from expr's error type when present.
func compilationError(expression, reason string, err error) *CompilationError {
	ce := &CompilationError{Expression: expression, Reason: reason, Position: -1, Err: err}
	if fe, ok := err.(*file.Error); ok {
		ce.Position = fe.Column
		ce.Reason = fe.Message
	}
	return ce
}
