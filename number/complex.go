package number

import (
	"math"
	"math/cmplx"
	"math/rand/v2"
	"strconv"
	"strings"
)

// ComplexValue is a value of the complex backend.
type ComplexValue complex128

func (v ComplexValue) String() string {
	re, im := real(v), imag(v)

	format := func(f float64) string {
		switch {
		case math.IsInf(f, 1):
			return "∞"
		case math.IsInf(f, -1):
			return "-∞"
		}

		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	if im == 0 {
		return format(re)
	}

	var sb strings.Builder

	if re != 0 {
		sb.WriteString(format(re))

		if im < 0 {
			sb.WriteString(" - ")
		} else {
			sb.WriteString(" + ")
		}

		im = math.Abs(im)
	}

	if im != 1 && im != -1 {
		sb.WriteString(format(im))
	} else if im == -1 {
		sb.WriteByte('-')
	}

	sb.WriteByte('i')

	return sb.String()
}

type complexBackend struct {
	rand *rand.Rand
	fac  factorials
}

func newComplex(cfg config) *complexBackend {
	return &complexBackend{rand: cfg.rand()}
}

func (*complexBackend) Name() string { return Complex }

func (*complexBackend) Zero() Value { return ComplexValue(0) }

func (*complexBackend) One() Value { return ComplexValue(1) }

func (*complexBackend) FromInt(n int64) Value { return ComplexValue(complex(float64(n), 0)) }

func (*complexBackend) Parse(literal string) (Value, error) {
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return nil, ErrLiteral
	}

	return ComplexValue(complex(f, 0)), nil
}

func (b *complexBackend) Basic(a Value, op Op, c Value) (Value, error) {
	x, err := cast[ComplexValue](a)
	if err != nil {
		return nil, err
	}

	y, err := cast[ComplexValue](c)
	if err != nil {
		return nil, err
	}

	switch op {
	case OpAdd:
		return x + y, nil
	case OpSub:
		return x - y, nil
	case OpMul:
		return x * y, nil
	case OpDiv:
		if y == 0 {
			if x == 0 {
				return ComplexValue(cmplx.NaN()), nil
			}

			return ComplexValue(cmplx.Inf()), nil
		}

		return x / y, nil
	case OpPow:
		if imag(x) == 0 && imag(y) == 0 && (real(x) >= 0 || real(y) == math.Trunc(real(y))) {
			return ComplexValue(complex(math.Pow(real(x), real(y)), 0)), nil
		}

		return ComplexValue(cmplx.Pow(complex128(x), complex128(y))), nil
	case OpMod:
		if imag(x) != 0 || imag(y) != 0 {
			return nil, ErrDomain
		}

		return ComplexValue(complex(math.Mod(real(x), real(y)), 0)), nil
	case OpEq:
		return boolean(b, x == y), nil
	case OpNe:
		return boolean(b, x != y), nil
	}

	if op.Relational() {
		if imag(x) != 0 || imag(y) != 0 {
			return nil, ErrUnordered
		}

		cmp := 0

		switch {
		case real(x) < real(y):
			cmp = -1
		case real(x) > real(y):
			cmp = 1
		}

		return boolean(b, relate(cmp, op)), nil
	}

	return nil, ErrOperator
}

func (b *complexBackend) Truthy(v Value) bool {
	x, err := cast[ComplexValue](v)

	return err == nil && x != 0
}

func (b *complexBackend) Count(v Value) (int64, error) {
	x, err := cast[ComplexValue](v)
	if err != nil {
		return 0, err
	}

	re := real(x)
	if imag(x) != 0 || math.IsNaN(re) || math.IsInf(re, 0) ||
		math.Abs(re) > math.MaxInt64 {
		return 0, ErrCount
	}

	return int64(re), nil
}

func (b *complexBackend) Constants() map[string]Value {
	return map[string]Value{
		"π": ComplexValue(math.Pi),
		"e": ComplexValue(math.E),
		"∞": ComplexValue(complex(math.Inf(1), 0)),
		"i": ComplexValue(1i),
	}
}

func (b *complexBackend) lift(fn func(complex128) complex128) func(Value) (Value, error) {
	return func(v Value) (Value, error) {
		x, err := cast[ComplexValue](v)
		if err != nil {
			return nil, err
		}

		return ComplexValue(fn(complex128(x))), nil
	}
}

// parts applies fn to the real and imaginary parts independently.
func parts(fn func(float64) float64) func(complex128) complex128 {
	return func(z complex128) complex128 {
		return complex(fn(real(z)), fn(imag(z)))
	}
}

func (b *complexBackend) Functions() map[string]Func {
	fns := map[string]Func{
		"abs": unary("z", b.lift(func(z complex128) complex128 {
			return complex(cmplx.Abs(z), 0)
		})),
		"round": unary("z", b.lift(parts(math.Round))),
		"ceil":  unary("z", b.lift(parts(math.Ceil))),
		"floor": unary("z", b.lift(parts(math.Floor))),
		"sign": unary("z", b.lift(func(z complex128) complex128 {
			if z == 0 {
				return 0
			}

			return z / complex(cmplx.Abs(z), 0)
		})),
		"sqrt": unary("z", b.lift(cmplx.Sqrt)),
		"cbrt": unary("z", b.lift(func(z complex128) complex128 {
			if imag(z) == 0 {
				return complex(math.Cbrt(real(z)), 0)
			}

			return cmplx.Pow(z, 1.0/3)
		})),
		"exp":  unary("z", b.lift(cmplx.Exp)),
		"ln":   unary("z", b.lift(cmplx.Log)),
		"log":  unary("z", b.lift(cmplx.Log10)),
		"sin":  unary("z", b.lift(cmplx.Sin)),
		"cos":  unary("z", b.lift(cmplx.Cos)),
		"tan":  unary("z", b.lift(cmplx.Tan)),
		"asin": unary("z", b.lift(cmplx.Asin)),
		"acos": unary("z", b.lift(cmplx.Acos)),
		"atan": unary("z", b.lift(cmplx.Atan)),
		"sinh": unary("z", b.lift(cmplx.Sinh)),
		"cosh": unary("z", b.lift(cmplx.Cosh)),
		"tanh": unary("z", b.lift(cmplx.Tanh)),
		"asinh": unary("z", b.lift(cmplx.Asinh)),
		"acosh": unary("z", b.lift(cmplx.Acosh)),
		"atanh": unary("z", b.lift(cmplx.Atanh)),
		"hypot": variadic(func(args []Value) (Value, error) {
			var sum float64

			for _, v := range args {
				x, err := cast[ComplexValue](v)
				if err != nil {
					return nil, err
				}

				a := cmplx.Abs(complex128(x))
				sum += a * a
			}

			return ComplexValue(complex(math.Sqrt(sum), 0)), nil
		}),
		"conjugate": unary("z", b.lift(cmplx.Conj)),
		"Re": unary("z", b.lift(func(z complex128) complex128 {
			return complex(real(z), 0)
		})),
		"Im": unary("z", b.lift(func(z complex128) complex128 {
			return complex(imag(z), 0)
		})),
		"arg": unary("z", b.lift(func(z complex128) complex128 {
			return complex(cmplx.Phase(z), 0)
		})),
		"isReal": unary("z", func(v Value) (Value, error) {
			x, err := cast[ComplexValue](v)
			if err != nil {
				return nil, err
			}

			return boolean(b, imag(x) == 0), nil
		}),
		"isFinite": unary("z", func(v Value) (Value, error) {
			x, err := cast[ComplexValue](v)
			if err != nil {
				return nil, err
			}

			return boolean(b, !cmplx.IsInf(complex128(x)) && !cmplx.IsNaN(complex128(x))), nil
		}),
		"isNaN": unary("z", func(v Value) (Value, error) {
			x, err := cast[ComplexValue](v)
			if err != nil {
				return nil, err
			}

			return boolean(b, cmplx.IsNaN(complex128(x))), nil
		}),
		"random": {Arity: 0, Run: func([]Value) (Value, error) {
			return ComplexValue(complex(b.rand.Float64(), 0)), nil
		}},
	}

	for name, fn := range common(b, &b.fac) {
		fns[name] = fn
	}

	return fns
}
