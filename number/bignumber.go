package number

import (
	"math"
	"math/rand/v2"

	"github.com/cockroachdb/apd/v3"
	"github.com/shopspring/decimal"
)

// BigNumberValue is a value of the bignumber backend. Besides finite
// decimals it represents the signed infinities and NaN.
type BigNumberValue struct {
	d   decimal.Decimal
	inf int8 // +1 or -1 when infinite
	nan bool
}

func (v BigNumberValue) String() string {
	switch {
	case v.nan:
		return "NaN"
	case v.inf > 0:
		return "∞"
	case v.inf < 0:
		return "-∞"
	}

	return v.d.String()
}

// Decimal returns the finite part of v.
func (v BigNumberValue) Decimal() decimal.Decimal { return v.d }

func (v BigNumberValue) finite() bool { return !v.nan && v.inf == 0 }

func (v BigNumberValue) sign() int {
	if v.inf != 0 {
		return int(v.inf)
	}

	return v.d.Sign()
}

var (
	bigNaN    = BigNumberValue{nan: true}
	bigPosInf = BigNumberValue{inf: 1}
	bigNegInf = BigNumberValue{inf: -1}
)

func bigInf(sign int) BigNumberValue {
	if sign < 0 {
		return bigNegInf
	}

	return bigPosInf
}

type bigNumberBackend struct {
	rand   *rand.Rand
	roots  *apd.Context
	fac    factorials
	places int32
}

func newBigNumber(cfg config) *bigNumberBackend {
	return &bigNumberBackend{
		places: int32(cfg.precision),
		rand:   cfg.rand(),
		// Roots and fractional powers go through apd with enough digits to
		// cover the integer part plus the configured decimal places.
		roots: decimalContext(cfg.precision + 40),
	}
}

func (*bigNumberBackend) Name() string { return BigNumber }

func (*bigNumberBackend) Zero() Value { return BigNumberValue{d: decimal.Zero} }

func (*bigNumberBackend) One() Value { return BigNumberValue{d: decimal.NewFromInt(1)} }

func (*bigNumberBackend) FromInt(n int64) Value {
	return BigNumberValue{d: decimal.NewFromInt(n)}
}

func (*bigNumberBackend) Parse(literal string) (Value, error) {
	d, err := decimal.NewFromString(literal)
	if err != nil {
		return nil, ErrLiteral
	}

	return BigNumberValue{d: d}, nil
}

func (b *bigNumberBackend) Basic(a Value, op Op, c Value) (Value, error) {
	x, err := cast[BigNumberValue](a)
	if err != nil {
		return nil, err
	}

	y, err := cast[BigNumberValue](c)
	if err != nil {
		return nil, err
	}

	if op.Relational() {
		if x.nan || y.nan {
			return boolean(b, op == OpNe), nil
		}

		return boolean(b, relate(b.cmp(x, y), op)), nil
	}

	if x.nan || y.nan {
		return bigNaN, nil
	}

	if !x.finite() || !y.finite() {
		return b.infinite(x, op, y)
	}

	switch op {
	case OpAdd:
		return BigNumberValue{d: x.d.Add(y.d)}, nil
	case OpSub:
		return BigNumberValue{d: x.d.Sub(y.d)}, nil
	case OpMul:
		return BigNumberValue{d: x.d.Mul(y.d)}, nil
	case OpDiv:
		if y.d.IsZero() {
			if x.d.IsZero() {
				return bigNaN, nil
			}

			return bigInf(x.d.Sign()), nil
		}

		return BigNumberValue{d: x.d.DivRound(y.d, b.places)}, nil
	case OpMod:
		if y.d.IsZero() {
			return bigNaN, nil
		}

		return BigNumberValue{d: x.d.Mod(y.d)}, nil
	case OpPow:
		return b.pow(x.d, y.d)
	}

	return nil, ErrOperator
}

func (b *bigNumberBackend) cmp(x, y BigNumberValue) int {
	if x.finite() && y.finite() {
		return x.d.Cmp(y.d)
	}

	xs, ys := 0, 0
	if x.inf != 0 {
		xs = int(x.inf)
	}

	if y.inf != 0 {
		ys = int(y.inf)
	}

	switch {
	case xs < ys:
		return -1
	case xs > ys:
		return 1
	}

	return 0
}

// infinite applies op when at least one operand is infinite.
func (b *bigNumberBackend) infinite(x BigNumberValue, op Op, y BigNumberValue) (Value, error) {
	switch op {
	case OpAdd, OpSub:
		ys := y.sign()
		if op == OpSub {
			ys = -ys
		}

		switch {
		case x.inf != 0 && y.inf != 0:
			if int(x.inf) != ys {
				return bigNaN, nil
			}

			return x, nil
		case x.inf != 0:
			return x, nil
		}

		return bigInf(ys), nil

	case OpMul:
		if x.sign() == 0 || y.sign() == 0 {
			return bigNaN, nil
		}

		return bigInf(x.sign() * y.sign()), nil

	case OpDiv:
		if x.inf != 0 && y.inf != 0 {
			return bigNaN, nil
		}

		if y.inf != 0 {
			return b.Zero(), nil
		}

		s := y.sign()
		if s == 0 {
			s = 1
		}

		return bigInf(x.sign() * s), nil

	case OpMod:
		if x.inf != 0 {
			return bigNaN, nil
		}

		return x, nil

	case OpPow:
		return b.fromFloat(math.Pow(b.float(x), b.float(y))), nil
	}

	return nil, ErrOperator
}

func (b *bigNumberBackend) pow(x, y decimal.Decimal) (Value, error) {
	if y.Equal(y.Truncate(0)) && y.Abs().LessThan(decimal.NewFromInt(1<<20)) {
		if x.IsZero() && y.Sign() < 0 {
			return bigPosInf, nil
		}

		return BigNumberValue{d: x.Pow(y).Round(b.places)}, nil
	}

	d, err := b.viaApd(x, func(ctx *apd.Context, r, v *apd.Decimal) (apd.Condition, error) {
		e, _, err := apd.NewFromString(y.String())
		if err != nil {
			return 0, err
		}

		return ctx.Pow(r, v, e)
	})
	if err != nil {
		return nil, err
	}

	return d, nil
}

// viaApd computes fn on x with the root context and converts back, rounded to
// the configured number of decimal places.
func (b *bigNumberBackend) viaApd(
	x decimal.Decimal,
	fn func(ctx *apd.Context, r, v *apd.Decimal) (apd.Condition, error),
) (Value, error) {
	v, _, err := apd.NewFromString(x.String())
	if err != nil {
		return nil, err
	}

	r := new(apd.Decimal)
	if _, err := fn(b.roots, r, v); err != nil {
		return nil, err
	}

	switch r.Form {
	case apd.Infinite:
		if r.Negative {
			return bigNegInf, nil
		}

		return bigPosInf, nil
	case apd.NaN, apd.NaNSignaling:
		return bigNaN, nil
	}

	d, err := decimal.NewFromString(r.Text('f'))
	if err != nil {
		return nil, err
	}

	return BigNumberValue{d: d.Round(b.places)}, nil
}

func (b *bigNumberBackend) float(v BigNumberValue) float64 {
	switch {
	case v.nan:
		return math.NaN()
	case v.inf != 0:
		return math.Inf(int(v.inf))
	}

	return v.d.InexactFloat64()
}

func (b *bigNumberBackend) fromFloat(f float64) Value {
	switch {
	case math.IsNaN(f):
		return bigNaN
	case math.IsInf(f, 0):
		return bigInf(int(math.Copysign(1, f)))
	}

	return BigNumberValue{d: decimal.NewFromFloat(f)}
}

func (b *bigNumberBackend) Truthy(v Value) bool {
	x, err := cast[BigNumberValue](v)

	return err == nil && (x.nan || x.sign() != 0)
}

func (b *bigNumberBackend) Count(v Value) (int64, error) {
	x, err := cast[BigNumberValue](v)
	if err != nil {
		return 0, err
	}

	if !x.finite() {
		return 0, ErrCount
	}

	t := x.d.Truncate(0)
	if t.Abs().GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, ErrCount
	}

	return t.IntPart(), nil
}

func (b *bigNumberBackend) Constants() map[string]Value {
	pi := decimal.RequireFromString(piDigits).Round(b.places)
	e := decimal.RequireFromString(eDigits).Round(b.places)

	return map[string]Value{
		"π": BigNumberValue{d: pi},
		"e": BigNumberValue{d: e},
		"∞": bigPosInf,
	}
}

// eDigits is Euler's number to 100 decimal places.
const eDigits = "2.7182818284590452353602874713526624977572470936999595749669676277240766303535475945713821785251664274"

// finite adapts fn to operate on finite values, passing NaN and infinities
// through unchanged.
func (b *bigNumberBackend) finite(fn func(decimal.Decimal) (Value, error)) func(Value) (Value, error) {
	return func(v Value) (Value, error) {
		x, err := cast[BigNumberValue](v)
		if err != nil {
			return nil, err
		}

		if !x.finite() {
			return x, nil
		}

		return fn(x.d)
	}
}

func (b *bigNumberBackend) Functions() map[string]Func {
	fns := map[string]Func{
		"abs": unary("x", func(v Value) (Value, error) {
			x, err := cast[BigNumberValue](v)
			if err != nil {
				return nil, err
			}

			if x.inf != 0 {
				return bigPosInf, nil
			}

			return BigNumberValue{d: x.d.Abs(), nan: x.nan}, nil
		}),
		"round": unary("x", b.finite(func(d decimal.Decimal) (Value, error) {
			return BigNumberValue{d: d.Round(0)}, nil
		})),
		"ceil": unary("x", b.finite(func(d decimal.Decimal) (Value, error) {
			return BigNumberValue{d: d.Ceil()}, nil
		})),
		"floor": unary("x", b.finite(func(d decimal.Decimal) (Value, error) {
			return BigNumberValue{d: d.Floor()}, nil
		})),
		"sign": unary("x", func(v Value) (Value, error) {
			x, err := cast[BigNumberValue](v)
			if err != nil {
				return nil, err
			}

			if x.nan {
				return bigNaN, nil
			}

			return b.FromInt(int64(x.sign())), nil
		}),
		"sqrt": unary("x", b.finite(func(d decimal.Decimal) (Value, error) {
			if d.Sign() < 0 {
				return bigNaN, nil
			}

			return b.viaApd(d, func(ctx *apd.Context, r, v *apd.Decimal) (apd.Condition, error) {
				return ctx.Sqrt(r, v)
			})
		})),
		"cbrt": unary("x", b.finite(func(d decimal.Decimal) (Value, error) {
			return b.viaApd(d, func(ctx *apd.Context, r, v *apd.Decimal) (apd.Condition, error) {
				return ctx.Cbrt(r, v)
			})
		})),
		"random": {Arity: 0, Run: func([]Value) (Value, error) {
			return BigNumberValue{d: decimal.NewFromFloat(b.rand.Float64()).Round(b.places)}, nil
		}},
		"isFinite": unary("x", func(v Value) (Value, error) {
			x, err := cast[BigNumberValue](v)
			if err != nil {
				return nil, err
			}

			return boolean(b, x.finite()), nil
		}),
		"isNaN": unary("x", func(v Value) (Value, error) {
			x, err := cast[BigNumberValue](v)
			if err != nil {
				return nil, err
			}

			return boolean(b, x.nan), nil
		}),
	}

	for name, fn := range common(b, &b.fac) {
		fns[name] = fn
	}

	return fns
}
