package number

import "sync"

// factorials memoizes n! for one backend instance. Entries are only ever
// appended.
type factorials struct {
	mu    sync.Mutex
	cache []Value // cache[n] == n!
}

func (f *factorials) of(b Backend, n int64) (Value, error) {
	if n < 0 {
		return nil, ErrFactorial
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.cache) == 0 {
		f.cache = append(f.cache, b.One())
	}

	for k := int64(len(f.cache)); k <= n; k++ {
		next, err := b.Basic(f.cache[k-1], OpMul, b.FromInt(k))
		if err != nil {
			return nil, err
		}

		f.cache = append(f.cache, next)
	}

	return f.cache[n], nil
}

// integer reports the int64 held by v, if v is an integral value.
func integer(b Backend, v Value) (int64, bool) {
	n, err := b.Count(v)
	if err != nil {
		return 0, false
	}

	eq, err := b.Basic(v, OpEq, b.FromInt(n))
	if err != nil {
		return 0, false
	}

	return n, b.Truthy(eq)
}

// common returns the functions every backend shares, expressed through the
// backend's own arithmetic.
func common(b Backend, fac *factorials) map[string]Func {
	pick := func(op Op) func([]Value) (Value, error) {
		return func(args []Value) (Value, error) {
			if len(args) == 0 {
				return b.Zero(), nil
			}

			best := args[0]

			for _, v := range args[1:] {
				better, err := b.Basic(v, op, best)
				if err != nil {
					return nil, err
				}

				if b.Truthy(better) {
					best = v
				}
			}

			return best, nil
		}
	}

	return map[string]Func{
		"min": variadic(pick(OpLt)),
		"max": variadic(pick(OpGt)),
		"sum": variadic(func(args []Value) (Value, error) {
			total := b.Zero()

			for _, v := range args {
				var err error

				total, err = b.Basic(total, OpAdd, v)
				if err != nil {
					return nil, err
				}
			}

			return total, nil
		}),
		"mod": binary("a", "b", func(x, y Value) (Value, error) {
			return b.Basic(x, OpMod, y)
		}),
		"fac": unary("n", func(x Value) (Value, error) {
			n, ok := integer(b, x)
			if !ok {
				return nil, ErrFactorial
			}

			return fac.of(b, n)
		}),
	}
}

// boolean maps a Go bool onto the backend's one and zero values.
func boolean(b Backend, ok bool) Value {
	if ok {
		return b.One()
	}

	return b.Zero()
}
