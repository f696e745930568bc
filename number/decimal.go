package number

import (
	"math"
	"math/rand/v2"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// piDigits is π to 100 decimal places; the decimal backend rounds it to the
// configured precision.
const piDigits = "3.1415926535897932384626433832795028841971693993751058209749445923078164062862089986280348253421170679"

// DecimalValue is a value of the decimal backend.
type DecimalValue struct {
	d *apd.Decimal
}

func (v DecimalValue) String() string { return formatApd(v.d) }

// Apd returns the underlying decimal.
func (v DecimalValue) Apd() *apd.Decimal { return v.d }

func formatApd(d *apd.Decimal) string {
	switch d.Form {
	case apd.Infinite:
		if d.Negative {
			return "-∞"
		}

		return "∞"

	case apd.NaN, apd.NaNSignaling:
		return "NaN"
	}

	s := d.Text('f')
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}

	if s == "-0" {
		s = "0"
	}

	return s
}

type decimalBackend struct {
	ctx  *apd.Context
	rand *rand.Rand
	fac  factorials
}

func newDecimal(cfg config) *decimalBackend {
	return &decimalBackend{
		ctx:  decimalContext(cfg.precision),
		rand: cfg.rand(),
	}
}

// decimalContext returns a half-up context of the given precision where
// division by zero and invalid operations produce ∞ and NaN instead of
// failing.
func decimalContext(precision int) *apd.Context {
	ctx := apd.BaseContext.WithPrecision(uint32(precision))
	ctx.Rounding = apd.RoundHalfUp
	ctx.Traps &^= apd.DivisionByZero | apd.InvalidOperation

	return ctx
}

func (*decimalBackend) Name() string { return Decimal }

func (b *decimalBackend) Zero() Value { return DecimalValue{apd.New(0, 0)} }

func (b *decimalBackend) One() Value { return DecimalValue{apd.New(1, 0)} }

func (b *decimalBackend) FromInt(n int64) Value {
	return DecimalValue{apd.New(n, 0)}
}

func (b *decimalBackend) Parse(literal string) (Value, error) {
	d, _, err := apd.NewFromString(literal)
	if err != nil {
		return nil, ErrLiteral
	}

	return DecimalValue{d}, nil
}

type apdOp func(d, x, y *apd.Decimal) (apd.Condition, error)

func (b *decimalBackend) arith(op Op) apdOp {
	switch op {
	case OpAdd:
		return b.ctx.Add
	case OpSub:
		return b.ctx.Sub
	case OpMul:
		return b.ctx.Mul
	case OpDiv:
		return b.ctx.Quo
	case OpMod:
		return b.ctx.Rem
	case OpPow:
		return b.ctx.Pow
	}

	return nil
}

func (b *decimalBackend) Basic(a Value, op Op, c Value) (Value, error) {
	x, err := cast[DecimalValue](a)
	if err != nil {
		return nil, err
	}

	y, err := cast[DecimalValue](c)
	if err != nil {
		return nil, err
	}

	if op.Relational() {
		if x.d.Form == apd.NaN || y.d.Form == apd.NaN {
			return boolean(b, op == OpNe), nil
		}

		return boolean(b, relate(x.d.Cmp(y.d), op)), nil
	}

	fn := b.arith(op)
	if fn == nil {
		return nil, ErrOperator
	}

	d := new(apd.Decimal)
	if _, err := fn(d, x.d, y.d); err != nil {
		return nil, err
	}

	return DecimalValue{d}, nil
}

func (b *decimalBackend) Truthy(v Value) bool {
	x, err := cast[DecimalValue](v)

	return err == nil && !x.d.IsZero()
}

func (b *decimalBackend) Count(v Value) (int64, error) {
	x, err := cast[DecimalValue](v)
	if err != nil {
		return 0, err
	}

	return apdCount(b.ctx, x.d)
}

func apdCount(ctx *apd.Context, x *apd.Decimal) (int64, error) {
	if x.Form != apd.Finite {
		return 0, ErrCount
	}

	c := *ctx
	c.Rounding = apd.RoundDown

	t := new(apd.Decimal)
	if _, err := c.RoundToIntegralValue(t, x); err != nil {
		return 0, err
	}

	n, err := t.Int64()
	if err != nil {
		return 0, ErrCount
	}

	return n, nil
}

func (b *decimalBackend) Constants() map[string]Value {
	pi := new(apd.Decimal)
	pi.SetString(piDigits)
	_, _ = b.ctx.Round(pi, pi)

	e := new(apd.Decimal)
	_, _ = b.ctx.Exp(e, apd.New(1, 0))

	return map[string]Value{
		"π": DecimalValue{pi},
		"e": DecimalValue{e},
		"∞": DecimalValue{&apd.Decimal{Form: apd.Infinite}},
	}
}

// apply runs a unary context method.
func (b *decimalBackend) apply(fn func(d, x *apd.Decimal) (apd.Condition, error)) func(Value) (Value, error) {
	return func(v Value) (Value, error) {
		x, err := cast[DecimalValue](v)
		if err != nil {
			return nil, err
		}

		d := new(apd.Decimal)
		if _, err := fn(d, x.d); err != nil {
			return nil, err
		}

		return DecimalValue{d}, nil
	}
}

// float runs fn on the float64 approximation of its argument. Used for the
// circular functions, which apd does not provide.
func (b *decimalBackend) float(fn func(float64) float64) func(Value) (Value, error) {
	return func(v Value) (Value, error) {
		x, err := cast[DecimalValue](v)
		if err != nil {
			return nil, err
		}

		f, err := x.d.Float64()
		if err != nil {
			return nil, ErrDomain
		}

		return b.fromFloat(fn(f)), nil
	}
}

func (b *decimalBackend) fromFloat(f float64) Value {
	switch {
	case math.IsNaN(f):
		return DecimalValue{&apd.Decimal{Form: apd.NaN}}
	case math.IsInf(f, 0):
		return DecimalValue{&apd.Decimal{Form: apd.Infinite, Negative: f < 0}}
	}

	d := new(apd.Decimal)
	if _, err := d.SetFloat64(f); err != nil {
		return b.Zero()
	}

	_, _ = b.ctx.Round(d, d)

	return DecimalValue{d}
}

// exp computes e^x and e^-x together for the hyperbolic functions.
func (b *decimalBackend) exp(x *apd.Decimal) (pos, neg *apd.Decimal, err error) {
	pos, neg = new(apd.Decimal), new(apd.Decimal)

	if _, err = b.ctx.Exp(pos, x); err != nil {
		return nil, nil, err
	}

	if _, err = b.ctx.Quo(neg, apd.New(1, 0), pos); err != nil {
		return nil, nil, err
	}

	return pos, neg, nil
}

func (b *decimalBackend) hyperbolic(combine func(d, p, n *apd.Decimal) error) func(Value) (Value, error) {
	return func(v Value) (Value, error) {
		x, err := cast[DecimalValue](v)
		if err != nil {
			return nil, err
		}

		p, n, err := b.exp(x.d)
		if err != nil {
			return nil, err
		}

		d := new(apd.Decimal)
		if err := combine(d, p, n); err != nil {
			return nil, err
		}

		return DecimalValue{d}, nil
	}
}

// inverseHyperbolic computes ln(x + sqrt(x*x + k)).
func (b *decimalBackend) inverseHyperbolic(k int64) func(Value) (Value, error) {
	return func(v Value) (Value, error) {
		x, err := cast[DecimalValue](v)
		if err != nil {
			return nil, err
		}

		d := new(apd.Decimal)
		if _, err := b.ctx.Mul(d, x.d, x.d); err != nil {
			return nil, err
		}

		if _, err := b.ctx.Add(d, d, apd.New(k, 0)); err != nil {
			return nil, err
		}

		if _, err := b.ctx.Sqrt(d, d); err != nil {
			return nil, err
		}

		if _, err := b.ctx.Add(d, d, x.d); err != nil {
			return nil, err
		}

		if _, err := b.ctx.Ln(d, d); err != nil {
			return nil, err
		}

		return DecimalValue{d}, nil
	}
}

func (b *decimalBackend) Functions() map[string]Func {
	half := apd.New(5, -1)
	two := apd.New(2, 0)

	fns := map[string]Func{
		"abs":   unary("x", b.apply(b.ctx.Abs)),
		"round": unary("x", b.apply(b.ctx.RoundToIntegralValue)),
		"ceil":  unary("x", b.apply(b.ctx.Ceil)),
		"floor": unary("x", b.apply(b.ctx.Floor)),
		"sqrt":  unary("x", b.apply(b.ctx.Sqrt)),
		"cbrt":  unary("x", b.apply(b.ctx.Cbrt)),
		"exp":   unary("x", b.apply(b.ctx.Exp)),
		"ln":    unary("x", b.apply(b.ctx.Ln)),
		"log":   unary("x", b.apply(b.ctx.Log10)),
		"sign": unary("x", func(v Value) (Value, error) {
			x, err := cast[DecimalValue](v)
			if err != nil {
				return nil, err
			}

			return b.FromInt(int64(x.d.Sign())), nil
		}),
		"random": {Arity: 0, Run: func([]Value) (Value, error) {
			return b.fromFloat(b.rand.Float64()), nil
		}},
		"isFinite": unary("x", func(v Value) (Value, error) {
			x, err := cast[DecimalValue](v)
			if err != nil {
				return nil, err
			}

			return boolean(b, x.d.Form == apd.Finite), nil
		}),
		"isNaN": unary("x", func(v Value) (Value, error) {
			x, err := cast[DecimalValue](v)
			if err != nil {
				return nil, err
			}

			return boolean(b, x.d.Form == apd.NaN || x.d.Form == apd.NaNSignaling), nil
		}),
		"sin":  unary("x", b.float(math.Sin)),
		"cos":  unary("x", b.float(math.Cos)),
		"tan":  unary("x", b.float(math.Tan)),
		"asin": unary("x", b.float(math.Asin)),
		"acos": unary("x", b.float(math.Acos)),
		"atan": unary("x", b.float(math.Atan)),
		"sinh": unary("x", b.hyperbolic(func(d, p, n *apd.Decimal) error {
			if _, err := b.ctx.Sub(d, p, n); err != nil {
				return err
			}

			_, err := b.ctx.Mul(d, d, half)

			return err
		})),
		"cosh": unary("x", b.hyperbolic(func(d, p, n *apd.Decimal) error {
			if _, err := b.ctx.Add(d, p, n); err != nil {
				return err
			}

			_, err := b.ctx.Mul(d, d, half)

			return err
		})),
		"tanh": unary("x", b.hyperbolic(func(d, p, n *apd.Decimal) error {
			num, den := new(apd.Decimal), new(apd.Decimal)

			if _, err := b.ctx.Sub(num, p, n); err != nil {
				return err
			}

			if _, err := b.ctx.Add(den, p, n); err != nil {
				return err
			}

			_, err := b.ctx.Quo(d, num, den)

			return err
		})),
		"asinh": unary("x", b.inverseHyperbolic(1)),
		"acosh": unary("x", b.inverseHyperbolic(-1)),
		"atanh": unary("x", func(v Value) (Value, error) {
			// atanh(x) = ln((1+x)/(1-x)) / 2
			x, err := cast[DecimalValue](v)
			if err != nil {
				return nil, err
			}

			one := apd.New(1, 0)
			num, den, d := new(apd.Decimal), new(apd.Decimal), new(apd.Decimal)

			if _, err := b.ctx.Add(num, one, x.d); err != nil {
				return nil, err
			}

			if _, err := b.ctx.Sub(den, one, x.d); err != nil {
				return nil, err
			}

			if _, err := b.ctx.Quo(d, num, den); err != nil {
				return nil, err
			}

			if _, err := b.ctx.Ln(d, d); err != nil {
				return nil, err
			}

			if _, err := b.ctx.Quo(d, d, two); err != nil {
				return nil, err
			}

			return DecimalValue{d}, nil
		}),
		"hypot": variadic(func(args []Value) (Value, error) {
			d := new(apd.Decimal)

			for _, v := range args {
				x, err := cast[DecimalValue](v)
				if err != nil {
					return nil, err
				}

				sq := new(apd.Decimal)
				if _, err := b.ctx.Mul(sq, x.d, x.d); err != nil {
					return nil, err
				}

				if _, err := b.ctx.Add(d, d, sq); err != nil {
					return nil, err
				}
			}

			if _, err := b.ctx.Sqrt(d, d); err != nil {
				return nil, err
			}

			return DecimalValue{d}, nil
		}),
	}

	for name, fn := range common(b, &b.fac) {
		fns[name] = fn
	}

	return fns
}
