package number

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

// Value is a number in some backend's representation.
type Value interface {
	String() string
}

// Op is a binary operator understood by [Backend.Basic].
type Op string

const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
	OpMod Op = "%"
	OpPow Op = "^"
	OpGt  Op = ">"
	OpLt  Op = "<"
	OpGe  Op = ">="
	OpLe  Op = "<="
	OpEq  Op = "=="
	OpNe  Op = "!="
)

// Relational reports whether op compares its operands rather than combining
// them.
func (op Op) Relational() bool {
	switch op {
	case OpGt, OpLt, OpGe, OpLe, OpEq, OpNe:
		return true
	}

	return false
}

// Arity is the number of arguments a built-in function accepts.
type Arity int

// Variadic marks a function accepting any number of arguments.
const Variadic Arity = -1

// Func is a built-in function.
type Func struct {
	Run    func(args []Value) (Value, error)
	Params []string
	Arity  Arity
}

// Backend is the capability set the evaluator computes with.
type Backend interface {
	Name() string
	Zero() Value
	One() Value
	FromInt(n int64) Value
	Parse(literal string) (Value, error)
	Basic(a Value, op Op, b Value) (Value, error)
	Truthy(v Value) bool
	// Count converts v to an iteration count, truncating toward the nearest
	// representable integer.
	Count(v Value) (int64, error)
	Constants() map[string]Value
	Functions() map[string]Func
}

// Backend names accepted by [New].
const (
	BigNumber = "bignumber"
	Fraction  = "fraction"
	Decimal   = "decimal"
	Complex   = "complex"
)

// DefaultBackend is used when no backend is named.
const DefaultBackend = BigNumber

// DefaultPrecision is the default number of decimal places (bignumber) or
// significant digits (decimal).
const DefaultPrecision = 20

var names = []string{BigNumber, Fraction, Decimal, Complex}

// Names returns the names of all backends.
func Names() []string { return slices.Clone(names) }

// Lookup reports whether name identifies a backend.
func Lookup(name string) bool { return slices.Contains(names, name) }

var (
	ErrUnknownBackend = errors.New("unknown numeric backend")
	ErrValueType      = errors.New("value belongs to another backend")
	ErrLiteral        = errors.New("invalid numeric literal")
	ErrDivisionByZero = errors.New("division by zero")
	ErrDomain         = errors.New("argument outside of the function domain")
	ErrUnordered      = errors.New("values are not ordered")
	ErrOperator       = errors.New("unsupported operator")
	ErrFactorial      = errors.New("factorial requires a non-negative integer")
	ErrCount          = errors.New("count is not a finite number")
)

// Option configures a backend instance.
type Option func(config) config

type config struct {
	precision int
	seed      [2]uint64
	seeded    bool
}

// WithPrecision sets the number of decimal places (bignumber) or significant
// digits (decimal). Values below one are ignored.
func WithPrecision(n int) Option {
	return func(c config) config {
		if n > 0 {
			c.precision = n
		}

		return c
	}
}

// WithSeed makes random reproducible.
func WithSeed(seed uint64) Option {
	return func(c config) config {
		c.seed = [2]uint64{seed, seed ^ 0x9e3779b97f4a7c15}
		c.seeded = true

		return c
	}
}

func makeConfig(opts ...Option) config {
	c := config{precision: DefaultPrecision}
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

func (c config) rand() *rand.Rand {
	if c.seeded {
		return rand.New(rand.NewPCG(c.seed[0], c.seed[1]))
	}

	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// New constructs the backend called name.
func New(name string, opts ...Option) (Backend, error) {
	cfg := makeConfig(opts...)

	switch name {
	case "", BigNumber:
		return newBigNumber(cfg), nil
	case Fraction:
		return newFraction(cfg), nil
	case Decimal:
		return newDecimal(cfg), nil
	case Complex:
		return newComplex(cfg), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

// MustNew is like [New] but panics on an unknown name.
func MustNew(name string, opts ...Option) Backend {
	b, err := New(name, opts...)
	if err != nil {
		panic(err)
	}

	return b
}

func cast[T Value](v Value) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T

		return zero, fmt.Errorf("%w: %T", ErrValueType, v)
	}

	return t, nil
}

// relate turns a three-way comparison into the result of a relational op.
func relate(cmp int, op Op) bool {
	switch op {
	case OpGt:
		return cmp > 0
	case OpLt:
		return cmp < 0
	case OpGe:
		return cmp >= 0
	case OpLe:
		return cmp <= 0
	case OpEq:
		return cmp == 0
	case OpNe:
		return cmp != 0
	}

	return false
}

func unary(params string, fn func(Value) (Value, error)) Func {
	return Func{
		Arity:  1,
		Params: []string{params},
		Run:    func(args []Value) (Value, error) { return fn(args[0]) },
	}
}

func binary(a, b string, fn func(Value, Value) (Value, error)) Func {
	return Func{
		Arity:  2,
		Params: []string{a, b},
		Run:    func(args []Value) (Value, error) { return fn(args[0], args[1]) },
	}
}

func variadic(fn func([]Value) (Value, error)) Func {
	return Func{Arity: Variadic, Params: []string{"values"}, Run: fn}
}
