package interp

import (
	"errors"
	"fmt"

	"github.com/you-not-fish/scl/internal/syntax"
)

// Runtime error kinds, matched with errors.Is.
var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrOverflow       = errors.New("integer overflow")
	ErrUndefined      = errors.New("undefined variable")
	ErrStepLimit      = errors.New("step budget exhausted")
	ErrInvalidTree    = errors.New("invalid tree")
)

// RuntimeError reports a failure while executing a program.
type RuntimeError struct {
	Pos  syntax.Pos
	Msg  string
	Kind error
}

func (e *RuntimeError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: runtime error: %s", e.Pos, e.Msg)
	}
	return "runtime error: " + e.Msg
}

func (e *RuntimeError) Unwrap() error { return e.Kind }

func runtimeErrorf(pos syntax.Pos, kind error, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Pos: pos, Msg: fmt.Sprintf(format, args...), Kind: kind}
}
