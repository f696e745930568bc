package number

import (
	"errors"
	"testing"
)

func mustParse(t *testing.T, b Backend, s string) Value {
	t.Helper()

	v, err := b.Parse(s)
	if err != nil {
		t.Fatalf("%s: Parse(%q): %v", b.Name(), s, err)
	}

	return v
}

func basic(t *testing.T, b Backend, x string, op Op, y string) Value {
	t.Helper()

	v, err := b.Basic(mustParse(t, b, x), op, mustParse(t, b, y))
	if err != nil {
		t.Fatalf("%s: %s %s %s: %v", b.Name(), x, op, y, err)
	}

	return v
}

func TestBasic(t *testing.T) {
	tests := []struct {
		x, y string
		op   Op
		want map[string]string
	}{
		{"2", "3", OpAdd, map[string]string{BigNumber: "5", Fraction: "5", Decimal: "5", Complex: "5"}},
		{"2", "3", OpSub, map[string]string{BigNumber: "-1", Fraction: "-1", Decimal: "-1", Complex: "-1"}},
		{"2.5", "4", OpMul, map[string]string{BigNumber: "10", Fraction: "10", Decimal: "10", Complex: "10"}},
		{"1", "3", OpDiv, map[string]string{
			BigNumber: "0.33333333333333333333",
			Fraction:  "1/3",
			Decimal:   "0.33333333333333333333",
			Complex:   "0.3333333333333333",
		}},
		{"7", "3", OpMod, map[string]string{BigNumber: "1", Fraction: "1", Decimal: "1", Complex: "1"}},
		{"-7", "3", OpMod, map[string]string{BigNumber: "-1", Fraction: "-1", Decimal: "-1", Complex: "-1"}},
		{"2", "9", OpPow, map[string]string{BigNumber: "512", Fraction: "512", Decimal: "512", Complex: "512"}},
		{"2", "3", OpLt, map[string]string{BigNumber: "1", Fraction: "1", Decimal: "1", Complex: "1"}},
		{"2", "3", OpGe, map[string]string{BigNumber: "0", Fraction: "0", Decimal: "0", Complex: "0"}},
		{"3", "3", OpEq, map[string]string{BigNumber: "1", Fraction: "1", Decimal: "1", Complex: "1"}},
		{"3", "3", OpNe, map[string]string{BigNumber: "0", Fraction: "0", Decimal: "0", Complex: "0"}},
	}

	for _, name := range Names() {
		b := MustNew(name)

		for _, tt := range tests {
			t.Run(name+"/"+tt.x+string(tt.op)+tt.y, func(t *testing.T) {
				got := basic(t, b, tt.x, tt.op, tt.y).String()
				if got != tt.want[name] {
					t.Errorf("%s %s %s = %q, want %q", tt.x, tt.op, tt.y, got, tt.want[name])
				}
			})
		}
	}
}

func TestThirdTimesThree(t *testing.T) {
	tests := []struct {
		backend string
		exact   bool
	}{
		{Fraction, true},
		{Decimal, false},
		{BigNumber, false},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			b := MustNew(tt.backend)

			third := basic(t, b, "1", OpDiv, "3")

			product, err := b.Basic(third, OpMul, b.FromInt(3))
			if err != nil {
				t.Fatal(err)
			}

			eq, err := b.Basic(product, OpEq, b.One())
			if err != nil {
				t.Fatal(err)
			}

			if b.Truthy(eq) != tt.exact {
				t.Errorf("1/3*3 == 1 is %v (%s), want %v", b.Truthy(eq), product, tt.exact)
			}
		})
	}
}

func TestFactorialMemo(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			b := MustNew(name)
			fac := b.Functions()["fac"]

			got, err := fac.Run([]Value{b.FromInt(5)})
			if err != nil {
				t.Fatal(err)
			}

			if got.String() != "120" {
				t.Errorf("fac(5) = %s, want 120", got)
			}

			got, err = fac.Run([]Value{b.FromInt(3)})
			if err != nil {
				t.Fatal(err)
			}

			if got.String() != "6" {
				t.Errorf("fac(3) = %s, want 6", got)
			}

			if _, err := fac.Run([]Value{b.FromInt(-1)}); !errors.Is(err, ErrFactorial) {
				t.Errorf("fac(-1) error = %v, want %v", err, ErrFactorial)
			}
		})
	}
}

func TestFactorialCacheIsPerInstance(t *testing.T) {
	a := newFraction(makeConfig())
	b := newFraction(makeConfig())

	if _, err := a.Functions()["fac"].Run([]Value{a.FromInt(10)}); err != nil {
		t.Fatal(err)
	}

	if len(a.fac.cache) != 11 {
		t.Errorf("cache length = %d, want 11", len(a.fac.cache))
	}

	if len(b.fac.cache) != 0 {
		t.Errorf("second instance shares cache: length %d", len(b.fac.cache))
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"5", 5},
		{"2.9", 2},
		{"0", 0},
		{"-3", -3},
	}

	for _, name := range Names() {
		b := MustNew(name)

		for _, tt := range tests {
			t.Run(name+"/"+tt.in, func(t *testing.T) {
				got, err := b.Count(mustParse(t, b, tt.in))
				if err != nil {
					t.Fatal(err)
				}

				if got != tt.want {
					t.Errorf("Count(%s) = %d, want %d", tt.in, got, tt.want)
				}
			})
		}
	}
}

func TestConstants(t *testing.T) {
	tests := []struct {
		backend string
		names   []string
	}{
		{BigNumber, []string{"π", "e", "∞"}},
		{Fraction, []string{"π", "e"}},
		{Decimal, []string{"π", "e", "∞"}},
		{Complex, []string{"π", "e", "∞", "i"}},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			c := MustNew(tt.backend).Constants()
			if len(c) != len(tt.names) {
				t.Errorf("got %d constants, want %d", len(c), len(tt.names))
			}

			for _, n := range tt.names {
				if _, ok := c[n]; !ok {
					t.Errorf("missing constant %s", n)
				}
			}
		})
	}
}

func TestFunctionTables(t *testing.T) {
	shared := []string{
		"abs", "round", "ceil", "floor", "sign", "sqrt", "cbrt",
		"min", "max", "sum", "random", "fac", "mod", "isFinite", "isNaN",
	}
	transcendental := []string{
		"exp", "ln", "log", "sin", "cos", "tan", "asin", "acos", "atan",
		"sinh", "cosh", "tanh", "asinh", "acosh", "atanh", "hypot",
	}

	tests := []struct {
		backend string
		extra   []string
	}{
		{BigNumber, nil},
		{Fraction, []string{"gcd", "lcm", "inverse"}},
		{Decimal, transcendental},
		{Complex, append([]string{"conjugate", "Re", "Im", "arg", "isReal"}, transcendental...)},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			fns := MustNew(tt.backend).Functions()

			for _, n := range append(shared, tt.extra...) {
				if _, ok := fns[n]; !ok {
					t.Errorf("missing function %s", n)
				}
			}
		})
	}
}

func TestFunctions(t *testing.T) {
	tests := []struct {
		backend string
		fn      string
		args    []string
		want    string
	}{
		{BigNumber, "max", []string{"3", "9", "4"}, "9"},
		{BigNumber, "min", []string{"3", "9", "-4"}, "-4"},
		{BigNumber, "sum", []string{"1", "2", "3"}, "6"},
		{BigNumber, "sqrt", []string{"16"}, "4"},
		{BigNumber, "round", []string{"2.5"}, "3"},
		{BigNumber, "floor", []string{"-2.5"}, "-3"},
		{BigNumber, "sign", []string{"-7"}, "-1"},
		{Fraction, "gcd", []string{"12", "18"}, "6"},
		{Fraction, "lcm", []string{"4", "6"}, "12"},
		{Fraction, "inverse", []string{"0.25"}, "4"},
		{Fraction, "sqrt", []string{"0.25"}, "1/2"},
		{Fraction, "round", []string{"-2.5"}, "-3"},
		{Fraction, "ceil", []string{"2.1"}, "3"},
		{Decimal, "sqrt", []string{"2"}, "1.4142135623730950488"},
		{Decimal, "ln", []string{"1"}, "0"},
		{Decimal, "cosh", []string{"0"}, "1"},
		{Decimal, "hypot", []string{"3", "4"}, "5"},
		{Complex, "sqrt", []string{"-4"}, "2i"},
		{Complex, "abs", []string{"-3"}, "3"},
		{Complex, "Im", []string{"2"}, "0"},
		{Complex, "isReal", []string{"2"}, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.backend+"/"+tt.fn, func(t *testing.T) {
			b := MustNew(tt.backend)
			fn := b.Functions()[tt.fn]

			args := make([]Value, len(tt.args))
			for i, a := range tt.args {
				args[i] = mustParse(t, b, a)
			}

			got, err := fn.Run(args)
			if err != nil {
				t.Fatal(err)
			}

			if got.String() != tt.want {
				t.Errorf("%s(%v) = %s, want %s", tt.fn, tt.args, got, tt.want)
			}
		})
	}
}

func TestBigNumberInfinity(t *testing.T) {
	b := MustNew(BigNumber)
	inf := b.Constants()["∞"]

	tests := []struct {
		name string
		x    Value
		op   Op
		y    Value
		want string
	}{
		{"div_zero", b.One(), OpDiv, b.Zero(), "∞"},
		{"zero_div_zero", b.Zero(), OpDiv, b.Zero(), "NaN"},
		{"inf_plus_one", inf, OpAdd, b.One(), "∞"},
		{"inf_minus_inf", inf, OpSub, inf, "NaN"},
		{"one_div_inf", b.One(), OpDiv, inf, "0"},
		{"neg_times_inf", b.FromInt(-2), OpMul, inf, "-∞"},
		{"inf_gt_one", inf, OpGt, b.One(), "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Basic(tt.x, tt.op, tt.y)
			if err != nil {
				t.Fatal(err)
			}

			if got.String() != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRandomSeeded(t *testing.T) {
	a := MustNew(Decimal, WithSeed(7)).Functions()["random"]
	b := MustNew(Decimal, WithSeed(7)).Functions()["random"]

	x, _ := a.Run(nil)
	y, _ := b.Run(nil)

	if x.String() != y.String() {
		t.Errorf("seeded random differs: %s != %s", x, y)
	}
}

func TestNew(t *testing.T) {
	if _, err := New("octonion"); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("New(octonion) error = %v, want %v", err, ErrUnknownBackend)
	}

	b, err := New("")
	if err != nil {
		t.Fatal(err)
	}

	if b.Name() != DefaultBackend {
		t.Errorf("default backend = %s, want %s", b.Name(), DefaultBackend)
	}

	if _, err := b.Basic(b.One(), OpAdd, MustNew(Fraction).One()); !errors.Is(err, ErrValueType) {
		t.Errorf("mixed backends error = %v, want %v", err, ErrValueType)
	}
}
