package number

import (
	"math"
	"math/big"
	"math/rand/v2"
)

// FractionValue is an exact rational value of the fraction backend.
type FractionValue struct {
	r *big.Rat
}

func (v FractionValue) String() string { return v.r.RatString() }

// Rat returns the underlying rational.
func (v FractionValue) Rat() *big.Rat { return v.r }

type fractionBackend struct {
	rand *rand.Rand
	fac  factorials
}

func newFraction(cfg config) *fractionBackend {
	return &fractionBackend{rand: cfg.rand()}
}

func (*fractionBackend) Name() string { return Fraction }

func (*fractionBackend) Zero() Value { return FractionValue{new(big.Rat)} }

func (*fractionBackend) One() Value { return FractionValue{big.NewRat(1, 1)} }

func (*fractionBackend) FromInt(n int64) Value {
	return FractionValue{new(big.Rat).SetInt64(n)}
}

func (*fractionBackend) Parse(literal string) (Value, error) {
	r, ok := new(big.Rat).SetString(literal)
	if !ok {
		return nil, ErrLiteral
	}

	return FractionValue{r}, nil
}

func (b *fractionBackend) Basic(a Value, op Op, c Value) (Value, error) {
	x, err := cast[FractionValue](a)
	if err != nil {
		return nil, err
	}

	y, err := cast[FractionValue](c)
	if err != nil {
		return nil, err
	}

	if op.Relational() {
		return boolean(b, relate(x.r.Cmp(y.r), op)), nil
	}

	r := new(big.Rat)

	switch op {
	case OpAdd:
		r.Add(x.r, y.r)
	case OpSub:
		r.Sub(x.r, y.r)
	case OpMul:
		r.Mul(x.r, y.r)
	case OpDiv:
		if y.r.Sign() == 0 {
			return nil, ErrDivisionByZero
		}

		r.Quo(x.r, y.r)
	case OpMod:
		if y.r.Sign() == 0 {
			return nil, ErrDivisionByZero
		}

		// x - y*trunc(x/y), keeping the sign of the dividend
		q := new(big.Rat).Quo(x.r, y.r)
		t := new(big.Int).Quo(q.Num(), q.Denom())
		r.Sub(x.r, new(big.Rat).Mul(y.r, new(big.Rat).SetInt(t)))
	case OpPow:
		return b.pow(x.r, y.r)
	default:
		return nil, ErrOperator
	}

	return FractionValue{r}, nil
}

// pow is exact for integer exponents and for rational exponents whose root
// is exact; other exponents fall back to a float64 approximation.
func (b *fractionBackend) pow(x, y *big.Rat) (Value, error) {
	if y.IsInt() {
		n := y.Num()
		if !n.IsInt64() || n.Int64() > 1<<20 || n.Int64() < -(1<<20) {
			return nil, ErrDomain
		}

		return ratPow(x, n.Int64())
	}

	if k := y.Denom(); k.IsInt64() && k.Int64() == 2 && x.Sign() >= 0 {
		if root, ok := ratSqrt(x); ok {
			return ratPow(root, y.Num().Int64())
		}
	}

	xf, _ := x.Float64()
	yf, _ := y.Float64()

	return b.fromFloat(math.Pow(xf, yf))
}

func ratPow(x *big.Rat, n int64) (Value, error) {
	neg := n < 0
	if neg {
		n = -n
	}

	e := big.NewInt(n)
	num := new(big.Int).Exp(x.Num(), e, nil)
	den := new(big.Int).Exp(x.Denom(), e, nil)

	if neg {
		if num.Sign() == 0 {
			return nil, ErrDivisionByZero
		}

		num, den = den, num
	}

	return FractionValue{new(big.Rat).SetFrac(num, den)}, nil
}

// ratSqrt returns the exact square root of x when numerator and denominator
// are both perfect squares.
func ratSqrt(x *big.Rat) (*big.Rat, bool) {
	if x.Sign() < 0 {
		return nil, false
	}

	num := new(big.Int).Sqrt(x.Num())
	den := new(big.Int).Sqrt(x.Denom())

	if new(big.Int).Mul(num, num).Cmp(x.Num()) != 0 ||
		new(big.Int).Mul(den, den).Cmp(x.Denom()) != 0 {
		return nil, false
	}

	return new(big.Rat).SetFrac(num, den), true
}

func (b *fractionBackend) fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, ErrDomain
	}

	r := new(big.Rat)
	r.SetFloat64(f)

	return FractionValue{r}, nil
}

func (b *fractionBackend) Truthy(v Value) bool {
	x, err := cast[FractionValue](v)

	return err == nil && x.r.Sign() != 0
}

func (b *fractionBackend) Count(v Value) (int64, error) {
	x, err := cast[FractionValue](v)
	if err != nil {
		return 0, err
	}

	t := new(big.Int).Quo(x.r.Num(), x.r.Denom())
	if !t.IsInt64() {
		return 0, ErrCount
	}

	return t.Int64(), nil
}

func (b *fractionBackend) Constants() map[string]Value {
	pi, _ := new(big.Rat).SetString(piDigits[:22])
	e, _ := new(big.Rat).SetString(eDigits[:22])

	return map[string]Value{
		"π": FractionValue{pi},
		"e": FractionValue{e},
	}
}

// floorRat rounds x toward negative infinity.
func floorRat(x *big.Rat) *big.Int {
	q := new(big.Int)
	q.DivMod(x.Num(), x.Denom(), new(big.Int))

	return q
}

func (b *fractionBackend) rat(fn func(*big.Rat) (*big.Rat, error)) func(Value) (Value, error) {
	return func(v Value) (Value, error) {
		x, err := cast[FractionValue](v)
		if err != nil {
			return nil, err
		}

		r, err := fn(x.r)
		if err != nil {
			return nil, err
		}

		return FractionValue{r}, nil
	}
}

func (b *fractionBackend) ints(fn func(x, y *big.Int) *big.Int) func(Value, Value) (Value, error) {
	return func(u, v Value) (Value, error) {
		x, err := cast[FractionValue](u)
		if err != nil {
			return nil, err
		}

		y, err := cast[FractionValue](v)
		if err != nil {
			return nil, err
		}

		if !x.r.IsInt() || !y.r.IsInt() {
			return nil, ErrDomain
		}

		return FractionValue{new(big.Rat).SetInt(fn(x.r.Num(), y.r.Num()))}, nil
	}
}

func (b *fractionBackend) Functions() map[string]Func {
	gcd := func(x, y *big.Int) *big.Int {
		return new(big.Int).GCD(nil, nil, new(big.Int).Abs(x), new(big.Int).Abs(y))
	}

	fns := map[string]Func{
		"abs": unary("x", b.rat(func(x *big.Rat) (*big.Rat, error) {
			return new(big.Rat).Abs(x), nil
		})),
		"floor": unary("x", b.rat(func(x *big.Rat) (*big.Rat, error) {
			return new(big.Rat).SetInt(floorRat(x)), nil
		})),
		"ceil": unary("x", b.rat(func(x *big.Rat) (*big.Rat, error) {
			neg := new(big.Rat).Neg(x)

			return new(big.Rat).SetInt(new(big.Int).Neg(floorRat(neg))), nil
		})),
		"round": unary("x", b.rat(func(x *big.Rat) (*big.Rat, error) {
			// half away from zero
			half := new(big.Rat).Add(new(big.Rat).Abs(x), big.NewRat(1, 2))
			r := new(big.Rat).SetInt(floorRat(half))

			if x.Sign() < 0 {
				r.Neg(r)
			}

			return r, nil
		})),
		"sign": unary("x", b.rat(func(x *big.Rat) (*big.Rat, error) {
			return new(big.Rat).SetInt64(int64(x.Sign())), nil
		})),
		"sqrt": unary("x", func(v Value) (Value, error) {
			x, err := cast[FractionValue](v)
			if err != nil {
				return nil, err
			}

			if root, ok := ratSqrt(x.r); ok {
				return FractionValue{root}, nil
			}

			f, _ := x.r.Float64()

			return b.fromFloat(math.Sqrt(f))
		}),
		"cbrt": unary("x", func(v Value) (Value, error) {
			x, err := cast[FractionValue](v)
			if err != nil {
				return nil, err
			}

			f, _ := x.r.Float64()

			return b.fromFloat(math.Cbrt(f))
		}),
		"inverse": unary("x", b.rat(func(x *big.Rat) (*big.Rat, error) {
			if x.Sign() == 0 {
				return nil, ErrDivisionByZero
			}

			return new(big.Rat).Inv(x), nil
		})),
		"random": {Arity: 0, Run: func([]Value) (Value, error) {
			return b.fromFloat(b.rand.Float64())
		}},
		"isFinite": unary("x", func(v Value) (Value, error) {
			if _, err := cast[FractionValue](v); err != nil {
				return nil, err
			}

			return b.One(), nil
		}),
		"isNaN": unary("x", func(v Value) (Value, error) {
			if _, err := cast[FractionValue](v); err != nil {
				return nil, err
			}

			return b.Zero(), nil
		}),
		"gcd": binary("a", "b", b.ints(gcd)),
		"lcm": binary("a", "b", b.ints(func(x, y *big.Int) *big.Int {
			g := gcd(x, y)
			if g.Sign() == 0 {
				return g
			}

			l := new(big.Int).Mul(x, y)
			l.Abs(l)

			return l.Quo(l, g)
		})),
	}

	for name, fn := range common(b, &b.fac) {
		fns[name] = fn
	}

	return fns
}
