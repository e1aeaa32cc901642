// Package interp executes SCL programs by walking the syntax tree.
//
// Variables are 64-bit signed integers and start at zero when declared
// without an initializer. Arithmetic is checked: overflow and division
// by zero stop the program with a *RuntimeError. A step budget and the
// caller's context bound the run, since while loops need not terminate.
package interp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/you-not-fish/scl/internal/syntax"
)

// DefaultMaxSteps is the step budget used when Options.MaxSteps is zero.
const DefaultMaxSteps = 1_000_000

// ctxCheckInterval is how many steps run between context checks.
const ctxCheckInterval = 256

// Options configures an Interpreter.
type Options struct {
	MaxSteps int          // statements and loop tests allowed per run
	Logger   *slog.Logger // optional
	Trace    io.Writer    // when set, each executed statement is written here
}

// Interpreter runs programs. It is not safe for concurrent use; create
// one per goroutine.
type Interpreter struct {
	opts   Options
	logger *slog.Logger

	ctx   context.Context
	mem   *Memory
	steps int
}

// New creates an Interpreter.
func New(opts Options) *Interpreter {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Interpreter{
		opts:   opts,
		logger: logger.With("component", "interp"),
	}
}

// Run executes prog in fresh memory and returns the final state. On error
// the memory holds the state reached before the failing statement.
func (in *Interpreter) Run(ctx context.Context, prog *syntax.Program) (*Memory, error) {
	in.ctx = ctx
	in.mem = NewMemory()
	in.steps = 0

	start := time.Now()
	err := in.stmts(prog.Stmts)
	in.logger.Debug("program finished",
		"steps", in.steps,
		"variables", in.mem.Len(),
		"duration", time.Since(start),
		"error", err,
	)
	return in.mem, err
}

// Steps returns the number of steps taken by the last run.
func (in *Interpreter) Steps() int { return in.steps }

// Run executes prog with default options.
func Run(ctx context.Context, prog *syntax.Program) (*Memory, error) {
	return New(Options{}).Run(ctx, prog)
}

func (in *Interpreter) step(pos syntax.Pos) error {
	in.steps++
	if in.steps > in.opts.MaxSteps {
		return runtimeErrorf(pos, ErrStepLimit, "step budget of %d exhausted", in.opts.MaxSteps)
	}
	if in.steps%ctxCheckInterval == 1 {
		if err := in.ctx.Err(); err != nil {
			return runtimeErrorf(pos, err, "execution stopped: %v", err)
		}
	}
	return nil
}

func (in *Interpreter) trace(pos syntax.Pos, format string, args ...interface{}) {
	if in.opts.Trace == nil {
		return
	}
	fmt.Fprintf(in.opts.Trace, "%s: %s\n", pos, fmt.Sprintf(format, args...))
}

func (in *Interpreter) stmts(list []syntax.Stmt) error {
	for _, s := range list {
		if err := in.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) stmt(s syntax.Stmt) error {
	if err := in.step(s.Pos()); err != nil {
		return err
	}

	switch s := s.(type) {
	case *syntax.Declaration:
		var v int64
		if s.Init != nil {
			var err error
			if v, err = in.expr(s.Init); err != nil {
				return err
			}
		}
		in.mem.Declare(s.Name, v)
		in.trace(s.Pos(), "declare %s = %d", s.Name, v)

	case *syntax.Assignment:
		v, err := in.expr(s.Value)
		if err != nil {
			return err
		}
		if !in.mem.Set(s.Name, v) {
			return runtimeErrorf(s.Pos(), ErrUndefined, "assignment to undeclared variable %q", s.Name)
		}
		in.trace(s.Pos(), "%s = %d", s.Name, v)

	case *syntax.IfStmt:
		ok, err := in.cond(s.Cond)
		if err != nil {
			return err
		}
		in.trace(s.Pos(), "if %t", ok)
		switch {
		case ok:
			return in.block(s.Then)
		case s.Else != nil:
			return in.block(s.Else)
		}

	case *syntax.WhileStmt:
		for {
			ok, err := in.cond(s.Cond)
			if err != nil {
				return err
			}
			in.trace(s.Pos(), "while %t", ok)
			if !ok {
				return nil
			}
			if err := in.block(s.Body); err != nil {
				return err
			}
			if err := in.step(s.Pos()); err != nil {
				return err
			}
		}

	default:
		return runtimeErrorf(s.Pos(), ErrInvalidTree, "unexpected statement %T", s)
	}
	return nil
}

func (in *Interpreter) block(b *syntax.Block) error {
	if b == nil {
		return runtimeErrorf(syntax.Pos{}, ErrInvalidTree, "missing block")
	}
	return in.stmts(b.Stmts)
}

func (in *Interpreter) cond(r *syntax.RelOp) (bool, error) {
	if r == nil {
		return false, runtimeErrorf(syntax.Pos{}, ErrInvalidTree, "missing condition")
	}
	x, err := in.expr(r.X)
	if err != nil {
		return false, err
	}
	y, err := in.expr(r.Y)
	if err != nil {
		return false, err
	}
	switch r.Op {
	case syntax.Eql:
		return x == y, nil
	case syntax.Lss:
		return x < y, nil
	case syntax.Gtr:
		return x > y, nil
	}
	return false, runtimeErrorf(r.Pos(), ErrInvalidTree, "invalid relational operator %s", r.Op)
}

func (in *Interpreter) expr(e syntax.Expr) (int64, error) {
	switch e := e.(type) {
	case *syntax.IntLit:
		v, err := strconv.ParseInt(e.Value, 10, 64)
		if err != nil {
			return 0, runtimeErrorf(e.Pos(), ErrOverflow, "integer literal %s out of range", e.Value)
		}
		return v, nil

	case *syntax.Ident:
		v, ok := in.mem.Get(e.Name)
		if !ok {
			return 0, runtimeErrorf(e.Pos(), ErrUndefined, "variable %q is not defined", e.Name)
		}
		return v, nil

	case *syntax.BinOp:
		x, err := in.expr(e.X)
		if err != nil {
			return 0, err
		}
		y, err := in.expr(e.Y)
		if err != nil {
			return 0, err
		}
		return arith(e, x, y)

	case nil:
		return 0, runtimeErrorf(syntax.Pos{}, ErrInvalidTree, "missing expression")
	}
	return 0, runtimeErrorf(e.Pos(), ErrInvalidTree, "unexpected expression %T", e)
}

func arith(e *syntax.BinOp, x, y int64) (int64, error) {
	overflow := func() (int64, error) {
		return 0, runtimeErrorf(e.Pos(), ErrOverflow, "%d %s %d overflows", x, e.Op, y)
	}

	switch e.Op {
	case syntax.Add:
		r := x + y
		if (r > x) != (y > 0) {
			return overflow()
		}
		return r, nil

	case syntax.Sub:
		r := x - y
		if (r < x) != (y > 0) {
			return overflow()
		}
		return r, nil

	case syntax.Mul:
		if x == 0 || y == 0 {
			return 0, nil
		}
		r := x * y
		if r/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
			return overflow()
		}
		return r, nil

	case syntax.Div:
		if y == 0 {
			return 0, runtimeErrorf(e.Pos(), ErrDivisionByZero, "division by zero")
		}
		if x == math.MinInt64 && y == -1 {
			return overflow()
		}
		return x / y, nil
	}
	return 0, runtimeErrorf(e.Pos(), ErrInvalidTree, "invalid arithmetic operator %s", e.Op)
}
