package calc

import (
	"errors"
	"log/slog"
	"math"
	"math/big"
	"strconv"
)

// ErrEvaluation is the error marker: the single error Evaluate and
// EvaluatePrecise return for every failure.
var ErrEvaluation = errors.New("calc: cannot evaluate expression")

// AngleUnit selects the unit of the arguments of trigonometric functions.
type AngleUnit int

const (
	// Degrees converts trigonometric arguments from degrees to radians.
	Degrees AngleUnit = iota
	// Radians passes trigonometric arguments through unchanged.
	Radians
)

func (u AngleUnit) String() string {
	switch u {
	case Degrees:
		return "degrees"
	case Radians:
		return "radians"
	default:
		return "AngleUnit(" + strconv.Itoa(int(u)) + ")"
	}
}

// Evaluator evaluates calculator expressions. An Evaluator is immutable and
// safe for concurrent use.
type Evaluator struct {
	angle AngleUnit
	prec  uint
	log   *slog.Logger
}

// EvaluatorOption is an option used when creating an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithAngles sets the unit of trigonometric function arguments. The default is
// Degrees.
func WithAngles(u AngleUnit) EvaluatorOption {
	return func(e *Evaluator) {
		e.angle = u
	}
}

// WithPrec sets the precision in bits used by EvaluatePrecise. The default is
// 64.
func WithPrec(prec uint) EvaluatorOption {
	return func(e *Evaluator) {
		e.prec = prec
	}
}

// WithLogger sets the logger for failed evaluations. Without it, the Evaluator
// uses the package logger at the time of each evaluation.
func WithLogger(l *slog.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		e.log = l
	}
}

// New creates an Evaluator.
func New(opts ...EvaluatorOption) *Evaluator {
	e := Evaluator{angle: Degrees, prec: 64}
	for _, opt := range opts {
		opt(&e)
	}
	return &e
}

// Angles returns the angle unit of the evaluator's trigonometric functions.
func (e *Evaluator) Angles() AngleUnit {
	return e.angle
}

func (e *Evaluator) logger() *slog.Logger {
	if e.log != nil {
		return e.log
	}
	return Logger()
}

// Parse validates and parses an expression. The error, if any, is the
// detailed error from Validate, CheckBalance, or ParseString, in that order.
func (e *Evaluator) Parse(expr string) (*Expr, error) {
	if err := Validate(expr); err != nil {
		return nil, err
	}
	if err := CheckBalance(expr); err != nil {
		return nil, err
	}
	return ParseString(expr)
}

// Evaluate evaluates expr in double precision. The result is always finite.
// On any failure the result is 0 and the error is ErrEvaluation.
func (e *Evaluator) Evaluate(expr string) (float64, error) {
	x, err := e.Parse(expr)
	if err != nil {
		return 0, e.fail(expr, "parse", err)
	}
	r, err := x.Eval(e.angle)
	if err != nil {
		return 0, e.fail(expr, "eval", err)
	}
	return r, nil
}

// EvaluatePrecise evaluates expr to the evaluator's precision using
// arbitrary-precision floats. On any failure the result is nil and the error
// is ErrEvaluation.
func (e *Evaluator) EvaluatePrecise(expr string) (*big.Float, error) {
	x, err := e.Parse(expr)
	if err != nil {
		return nil, e.fail(expr, "parse", err)
	}
	ctx := NewContext(Prec(e.prec), Angles(e.angle))
	r := ctx.Eval(x)
	if r == nil {
		return nil, e.fail(expr, "eval", ctx.Err())
	}
	return r, nil
}

// fail logs the cause of a failed evaluation and returns the error marker.
func (e *Evaluator) fail(expr, stage string, err error) error {
	e.logger().Debug("calc: evaluation failed", slog.String("expr", expr), slog.String("stage", stage), slog.Any("err", err))
	return ErrEvaluation
}

var std = New()

// Evaluate evaluates expr in double precision with trigonometric arguments in
// degrees. The result is always finite. On any failure the result is 0 and
// the error is ErrEvaluation.
func Evaluate(expr string) (float64, error) {
	return std.Evaluate(expr)
}

// Eval evaluates the expression in double precision. If the result is NaN or
// infinite, the error is a *ResultError.
func (e *Expr) Eval(u AngleUnit) (float64, error) {
	r := e.n.eval(u)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, &ResultError{X: r}
	}
	return r, nil
}

// eval computes the node's value with IEEE semantics throughout.
func (n *node) eval(u AngleUnit) float64 {
	switch n.kind {
	case nodeNum:
		return n.num
	case nodeCall:
		var x float64
		if n.right != nil {
			x = n.right.eval(u)
		}
		return n.fn.Float(x, u)
	case nodeNeg:
		return -n.left.eval(u)
	case nodeAdd:
		return n.left.eval(u) + n.right.eval(u)
	case nodeSub:
		return n.left.eval(u) - n.right.eval(u)
	case nodeMul:
		return n.left.eval(u) * n.right.eval(u)
	case nodeDiv:
		return n.left.eval(u) / n.right.eval(u)
	case nodePow:
		return math.Pow(n.left.eval(u), n.right.eval(u))
	case nodeNop:
		return n.left.eval(u)
	default:
		panic("calc: invalid AST node " + n.kind.String())
	}
}

// ResultError is an error indicating that an expression evaluated to NaN or
// an infinity, e.g. from division by zero or a function argument outside the
// function's domain.
type ResultError struct {
	// X is the non-finite result.
	X float64
}

func (err *ResultError) Error() string {
	return "non-finite result " + strconv.FormatFloat(err.X, 'g', -1, 64)
}

// DomainError is an error returned by precise evaluation when an operation is
// applied to arguments outside its domain. DomainError unwraps to big.ErrNaN.
type DomainError struct {
	// X is the out-of-domain argument.
	X *big.Float
	// Func is a name identifying the function or operator.
	Func string
}

func (err *DomainError) Error() string {
	r := err.X.String() + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	return r
}

func (err *DomainError) Unwrap() error {
	return big.ErrNaN{}
}
