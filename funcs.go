package calc

import (
	"errors"
	"math"
	"math/big"

	"github.com/zephyrtronium/bigfloat"
)

// Func is a calculator function of at most one argument, or a constant.
type Func interface {
	// CanCall returns whether the function can be called with n arguments.
	// Functions with CanCall(0) are constants and are written without an
	// argument list, e.g. "PI". Others are written with one parenthesized
	// argument, e.g. "sqrt(16)".
	CanCall(n int) bool

	// Float evaluates the function in double precision. Constants ignore x.
	// Out-of-domain arguments produce NaN or an infinity, as package math.
	Float(x float64, u AngleUnit) float64

	// Call evaluates the function to the precision of ctx. The argument, if
	// any, is invoc[0], and Call may modify it. Call must set r to its result
	// and should not use the value of r otherwise. Out-of-domain arguments
	// produce a *DomainError.
	Call(ctx *Context, invoc []*big.Float, r *big.Float) error
}

var globalfuncs = map[string]Func{
	"exp": Monadic(math.Exp, expBig),
	"log": Monadic(math.Log, func(out, in *big.Float) *big.Float {
		if in.Sign() <= 0 {
			panic(big.ErrNaN{})
		}
		return bigfloat.Log(out, in)
	}),
	"sqrt": Monadic(math.Sqrt, (*big.Float).Sqrt),

	// bigfloat has no trig, so precise evaluation goes through float64.
	"sin": Trig(math.Sin),
	"cos": Trig(math.Cos),
	"tan": Trig(math.Tan),

	// constants
	"PI": Niladic(math.Pi, bigfloat.Pi),
}

// expBig computes e**in. For |in| >= 2**31 the result is outside the exponent
// range of big.Float, so it is either 0 or out of the function's domain.
func expBig(out, in *big.Float) *big.Float {
	if in.MantExp(nil) > 31 {
		if in.Sign() < 0 {
			return out.SetInt64(0)
		}
		panic(big.ErrNaN{})
	}
	return bigfloat.Exp(out, in)
}

type monadic struct {
	f  func(float64) float64
	bf func(out, in *big.Float) *big.Float
}

func (m monadic) Float(x float64, u AngleUnit) float64 {
	return m.f(x)
}

func (m monadic) Call(ctx *Context, invoc []*big.Float, r *big.Float) (err error) {
	in := invoc[0]
	if in.IsInf() {
		return &DomainError{X: in}
	}
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		e, _ := p.(error)
		if errors.As(e, &big.ErrNaN{}) {
			err = &DomainError{X: in}
			return
		}
		panic(p)
	}()
	r.SetPrec(ctx.Prec())
	r.Set(m.bf(r, in))
	return nil
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic wraps a function of one variable into a Func. f computes the
// function in double precision. bf computes the function to the precision of
// out and returns the result, which may or may not be out. If bf is called on an
// argument outside its domain, it should panic with big.ErrNaN, or an error
// that unwraps to it.
func Monadic(f func(float64) float64, bf func(out, in *big.Float) *big.Float) Func {
	return monadic{f, bf}
}

type trig struct {
	f func(float64) float64
}

func (t trig) Float(x float64, u AngleUnit) float64 {
	if u == Degrees {
		x = x * math.Pi / 180
	}
	return t.f(x)
}

func (t trig) Call(ctx *Context, invoc []*big.Float, r *big.Float) error {
	in := invoc[0]
	x, _ := in.Float64()
	if ctx.angle == Degrees {
		// Convert a copy so that errors report the argument as written.
		var k, rad big.Float
		k.SetPrec(ctx.Prec() + 16)
		bigfloat.Pi(&k)
		k.Quo(&k, big.NewFloat(180))
		rad.SetPrec(k.Prec()).Mul(in, &k)
		x, _ = rad.Float64()
	}
	y := t.f(x)
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return &DomainError{X: in}
	}
	r.SetPrec(ctx.Prec()).SetFloat64(y)
	return nil
}

func (t trig) CanCall(n int) bool {
	return n == 1
}

// Trig wraps a trigonometric function of radians into a Func which converts
// its argument from degrees first when evaluated in Degrees. Precise
// evaluation computes the conversion to full precision but the function
// itself in float64.
func Trig(f func(float64) float64) Func {
	return trig{f}
}

type niladic struct {
	v float64
	f func(out *big.Float) *big.Float
}

func (n niladic) Float(x float64, u AngleUnit) float64 {
	return n.v
}

func (n niladic) Call(ctx *Context, invoc []*big.Float, r *big.Float) error {
	r.SetPrec(ctx.Prec())
	n.f(r)
	return nil
}

func (n niladic) CanCall(k int) bool {
	return k == 0
}

// Niladic wraps a constant into a Func. v is its double-precision value. f
// must set out to the constant to the precision of out; its return value is
// always ignored. Unlike Monadic, f is expected never to panic.
func Niladic(v float64, f func(out *big.Float) *big.Float) Func {
	return niladic{v, f}
}
