package calc

import (
	"errors"
	"math"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// Context is a context for evaluating expressions with arbitrary-precision
// floats. It is not safe to use a Context concurrently.
type Context struct {
	stack []*big.Float
	nums  map[string]*big.Float
	prec  uint
	angle AngleUnit
	err   error
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	precopt  uint
	angleopt AngleUnit
)

func (precopt) ctxOption()  {}
func (angleopt) ctxOption() {}

// Prec sets the precision of calculations.
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// Angles sets the unit of trigonometric function arguments.
func Angles(u AngleUnit) ContextOption {
	return angleopt(u)
}

// NewContext creates a new evaluation context. If no precision is given, the
// default is 64. If no angle unit is given, the default is Degrees.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{nums: make(map[string]*big.Float), prec: 64}
	return ctx.Clone(opts...)
}

// Eval evaluates an expression and returns the result. If an error occurs,
// e.g. an argument to a function is outside the function's domain, then the
// result is nil and ctx.Err returns the error.
func (ctx *Context) Eval(e *Expr) *big.Float {
	ctx.stack = ctx.stack[:0]
	err := ctx.run(e.n)
	if err == nil {
		if r := ctx.top(); r.IsInf() {
			err = &ResultError{X: math.Inf(r.Sign())}
		}
	}
	ctx.err = err
	if err != nil {
		return nil
	}
	return ctx.Result()
}

// run evaluates n. Exponent overflow can produce infinities that make later
// operations panic with big.ErrNaN; run reports those as a *ResultError.
func (ctx *Context) run(n *node) (err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		e, _ := p.(error)
		if errors.As(e, &big.ErrNaN{}) {
			err = &ResultError{X: math.NaN()}
			return
		}
		panic(p)
	}()
	return n.evalBig(ctx)
}

// Result returns the result obtained after evaluating an expression. Panics if
// ctx has not been used to evaluate an expression. Returns nil if an error
// occurred during evaluation.
func (ctx *Context) Result() *big.Float {
	if ctx.err != nil {
		return nil
	}
	switch len(ctx.stack) {
	case 0:
		panic("calc: Context.Result called before evaluating any expression")
	case 1:
		return ctx.stack[0]
	default:
		panic("calc: inconsistent stack: " + strconv.Itoa(len(ctx.stack)) + " items (bad AST?)")
	}
}

// Err returns the error that occurred while evaluating the last expression
// with ctx, if any.
func (ctx *Context) Err() error {
	return ctx.err
}

// Prec returns the precision to which values are computed in the context.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// Angles returns the unit of trigonometric function arguments in the context.
func (ctx *Context) Angles() AngleUnit {
	return ctx.angle
}

// Clone creates a copy of a context and applies options to it. The returned
// context has no Result and is safe to use to evaluate an expression.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		stack: make([]*big.Float, 0, cap(ctx.stack)),
		nums:  make(map[string]*big.Float, len(ctx.nums)),
		prec:  ctx.prec,
		angle: ctx.angle,
	}
	for _, opt := range opts {
		switch opt := opt.(type) {
		case nil:
		case precopt:
			n.prec = uint(opt)
		case angleopt:
			n.angle = AngleUnit(opt)
		default:
			panic("calc: unknown option type")
		}
	}
	// Copy numbers only if the new precision is no higher than the old, so
	// that we always use the precision we need.
	if n.prec <= ctx.prec {
		for k, v := range ctx.nums {
			n.nums[k] = new(big.Float).SetPrec(n.prec).Set(v)
		}
	}
	return &n
}

// push ensures a settable value on the stack.
func (ctx *Context) push() *big.Float {
	if len(ctx.stack) < cap(ctx.stack) {
		ctx.stack = ctx.stack[:len(ctx.stack)+1]
		if ctx.stack[len(ctx.stack)-1] == nil {
			ctx.stack[len(ctx.stack)-1] = new(big.Float).SetPrec(ctx.prec)
		}
	} else {
		ctx.stack = append(ctx.stack, new(big.Float).SetPrec(ctx.prec))
	}
	return ctx.stack[len(ctx.stack)-1]
}

// pop removes the top from the stack and returns it. The returned value may be
// modified by future node evaluations.
func (ctx *Context) pop() *big.Float {
	r := ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	return r
}

// top is a shortcut to get the top element of the stack.
func (ctx *Context) top() *big.Float {
	return ctx.stack[len(ctx.stack)-1]
}

// num gets a possibly cached number from its text.
func (ctx *Context) num(s string) (*big.Float, error) {
	if r := ctx.nums[s]; r != nil {
		return r, nil
	}
	r, _, err := new(big.Float).SetPrec(ctx.prec).Parse(s, 10)
	if err != nil {
		// The lexer only produces valid decimal literals, so the only
		// possible failure is an exponent too large for big.Float.
		return nil, &ResultError{X: math.Inf(1)}
	}
	ctx.nums[s] = r
	return r, nil
}

// evalBig pushes the node's value to the context's stack.
func (n *node) evalBig(ctx *Context) error {
	switch n.kind {
	case nodeNum:
		v, err := ctx.num(n.name)
		if err != nil {
			return err
		}
		ctx.push().Set(v)
	case nodeCall:
		r := ctx.push()
		k := len(ctx.stack)
		var invoc []*big.Float
		if n.right != nil {
			if err := n.right.evalBig(ctx); err != nil {
				return err
			}
			invoc = ctx.stack[k:len(ctx.stack):len(ctx.stack)]
		}
		if err := n.fn.Call(ctx, invoc, r); err != nil {
			var de *DomainError
			if errors.As(err, &de) && de.Func == "" {
				de.Func = n.name
			}
			return err
		}
		ctx.stack = ctx.stack[:k]
	case nodeNeg:
		if err := n.left.evalBig(ctx); err != nil {
			return err
		}
		v := ctx.top()
		v.Neg(v)
	case nodeAdd:
		if err := n.left.evalBig(ctx); err != nil {
			return err
		}
		if err := n.right.evalBig(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		l.Add(l, r)
	case nodeSub:
		if err := n.left.evalBig(ctx); err != nil {
			return err
		}
		if err := n.right.evalBig(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		l.Sub(l, r)
	case nodeMul:
		if err := n.left.evalBig(ctx); err != nil {
			return err
		}
		if err := n.right.evalBig(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		l.Mul(l, r)
	case nodeDiv:
		if err := n.left.evalBig(ctx); err != nil {
			return err
		}
		if err := n.right.evalBig(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		// Division by zero fails outright rather than producing an infinity.
		if r.Sign() == 0 {
			return &DomainError{X: r, Func: "/"}
		}
		l.Quo(l, r)
	case nodePow:
		if err := n.left.evalBig(ctx); err != nil {
			return err
		}
		if err := n.right.evalBig(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		if err := pow(l, l, r); err != nil {
			return err
		}
	case nodeNop:
		if err := n.left.evalBig(ctx); err != nil {
			return err
		}
	default:
		panic("calc: invalid AST node " + n.kind.String())
	}
	return nil
}

// maxIntExp is the largest exponent pow computes by repeated squaring.
const maxIntExp = 1 << 16

// pow sets z = x**y. Integer exponents are computed exactly up to the
// precision of z, which allows negative bases.
func pow(z, x, y *big.Float) error {
	switch {
	case x.IsInf() || y.IsInf():
		// Only exponent overflow gets infinities onto the stack.
		return &ResultError{X: math.Inf(1)}
	case y.Sign() == 0:
		z.SetInt64(1)
		return nil
	case x.Sign() == 0:
		if y.Sign() < 0 {
			return &DomainError{X: x, Func: "^"}
		}
		z.SetInt64(0)
		return nil
	}
	if y.IsInt() {
		if k, acc := y.Int64(); acc == big.Exact && -maxIntExp <= k && k <= maxIntExp {
			ipow(z, x, k)
			return nil
		}
	}
	if x.Sign() < 0 {
		if !y.IsInt() {
			return &DomainError{X: x, Func: "^"}
		}
		// Huge integer exponent of a negative base: the sign depends on the
		// parity of y, and the magnitude comes from bigfloat.
		var i big.Int
		y.Int(&i)
		odd := i.Bit(0) == 1
		if err := powPos(z, new(big.Float).Neg(x), y); err != nil {
			return err
		}
		if odd {
			z.Neg(z)
		}
		return nil
	}
	return powPos(z, x, y)
}

// powPos sets z = x**y for positive x. Results beyond the exponent range of
// big.Float are an error if too large and 0 if too small.
func powPos(z, x, y *big.Float) error {
	if x.Cmp(one) == 0 {
		z.SetInt64(1)
		return nil
	}
	// x = m * 2**e with 0.5 <= m < 1, so log2(x**y) = y * (e + log2(m)).
	var m big.Float
	e := x.MantExp(&m)
	mf, _ := m.Float64()
	yf, _ := y.Float64()
	switch l := yf * (float64(e) + math.Log2(mf)); {
	case l >= big.MaxExp:
		return &ResultError{X: math.Inf(1)}
	case l <= big.MinExp:
		z.SetInt64(0)
		return nil
	}
	// bigfloat.Pow returns its result, which is not always its first argument.
	z.Set(bigfloat.Pow(new(big.Float).SetPrec(z.Prec()), x, y))
	return nil
}

var one = big.NewFloat(1)

// ipow sets z = x**k by repeated squaring with guard bits.
func ipow(z, x *big.Float, k int64) {
	neg := k < 0
	if neg {
		k = -k
	}
	prec := z.Prec() + 32
	b := new(big.Float).SetPrec(prec).Set(x)
	r := new(big.Float).SetPrec(prec).SetInt64(1)
	for k > 0 {
		if k&1 != 0 {
			r.Mul(r, b)
		}
		b.Mul(b, b)
		k >>= 1
	}
	if neg {
		r.Quo(new(big.Float).SetPrec(prec).SetInt64(1), r)
	}
	z.Set(r)
}

// EvalPrecise is a shortcut to validate, parse, and evaluate a string
// expression with arbitrary-precision floats. Like Evaluate, every failure is
// reported as ErrEvaluation.
func EvalPrecise(src string, opts ...ContextOption) (*big.Float, error) {
	x, err := std.Parse(src)
	if err != nil {
		return nil, std.fail(src, "parse", err)
	}
	ctx := NewContext(opts...)
	r := ctx.Eval(x)
	if r == nil {
		return nil, std.fail(src, "eval", ctx.Err())
	}
	return r, nil
}
