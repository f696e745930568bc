package lang

import (
	"log/slog"

	"github.com/ardnew/numscript/number"
)

type precedence struct {
	level int
	right bool
}

// binaryOperators maps operator tokens to their precedence. Exponentiation
// is right-associative; every other level associates left.
var binaryOperators = map[string]precedence{
	"^":  {4, true},
	"*":  {3, false},
	"/":  {3, false},
	"%":  {3, false},
	"+":  {2, false},
	"-":  {2, false},
	">":  {1, false},
	"<":  {1, false},
	">=": {1, false},
	"<=": {1, false},
	"==": {1, false},
	"!=": {1, false},
}

// term is one element of an expression after operands are evaluated: either
// a value or a binary operator.
type term struct {
	value number.Value
	op    *Token
}

// expression evaluates toks. The anchor offset locates errors for an empty
// expression.
func (r *Runner) expression(toks []Token, anchor int) (number.Value, error) {
	toks = stripNewlines(toks)

	if r.program.Strict {
		toks = r.splitNames(toks)
	}

	if len(toks) == 0 {
		return nil, ErrEmptyExpression.At(anchor, 2)
	}

	if first := toks[0]; first.Kind == KindOperator &&
		(first.Value == "+" || first.Value == "-") {
		zero := Token{Kind: KindInteger, Value: "0", Index: first.Index, End: first.Index}
		toks = append([]Token{zero}, toks...)
	}

	if len(toks) == 1 {
		return r.operand(toks[0])
	}

	terms, err := r.terms(toks)
	if err != nil {
		return nil, err
	}

	return r.reduce(terms)
}

func stripNewlines(toks []Token) []Token {
	for i, tok := range toks {
		if tok.IsSymbol("\n") {
			out := make([]Token, 0, len(toks))
			out = append(out, toks[:i]...)

			for _, t := range toks[i+1:] {
				if !t.IsSymbol("\n") {
					out = append(out, t)
				}
			}

			return out
		}
	}

	return toks
}

// splitNames breaks every bare multi-character word into single-character
// names and fuses a function name with a directly following parenthesized
// group into a call. A multi-character word naming a callable stays whole
// when the group follows it.
func (r *Runner) splitNames(toks []Token) []Token {
	out := make([]Token, 0, len(toks))

	for i := 0; i < len(toks); i++ {
		tok := toks[i]

		switch {
		case tok.Kind == KindWord && i+1 < len(toks) && toks[i+1].IsParen() &&
			toks[i+1].Index == tok.End && r.callable(tok):
			out = append(out, call(r.program.Source, tok, toks[i+1]))
			i++

		case tok.Kind == KindWord:
			for j, ch := range tok.Value {
				s := string(ch)
				out = append(out, Token{
					Kind:  KindWord,
					Value: s,
					Index: tok.Index + j,
					End:   tok.Index + j + len(s),
				})
			}

		case tok.IsParen() && len(out) > 0 && r.callable(out[len(out)-1]):
			out[len(out)-1] = call(r.program.Source, out[len(out)-1], tok)

		default:
			out = append(out, tok)
		}
	}

	if len(out) != len(toks) {
		r.opts.logger.TraceContext(r.ctx, "strict split",
			slog.Int("tokens_in", len(toks)),
			slog.Int("tokens_out", len(out)))
	}

	return out
}

func (r *Runner) callable(tok Token) bool {
	if tok.Kind != KindWord {
		return false
	}

	v, _ := r.scopes.lookup(r.scope, tok.Value)

	return v != nil && v.Kind != VarNumber
}

// terms evaluates the operands of toks left to right, yielding an
// alternating value/operator sequence. Adjacent operands multiply
// implicitly and a '!' after an operand applies the factorial.
func (r *Runner) terms(toks []Token) ([]term, error) {
	terms := make([]term, 0, len(toks))
	prevValue := false

	for i := range toks {
		tok := toks[i]

		switch {
		case tok.operand():
			if prevValue {
				terms = append(terms, term{op: &Token{
					Kind: KindOperator, Value: "*", Index: tok.Index, End: tok.Index,
				}})
			}

			v, err := r.operand(tok)
			if err != nil {
				return nil, err
			}

			terms = append(terms, term{value: v})
			prevValue = true

		case tok.Is(KindOperator, "!"):
			if !prevValue {
				return nil, ErrUnexpectedOperator.AtToken(tok)
			}

			v, err := r.factorial(terms[len(terms)-1].value, tok)
			if err != nil {
				return nil, err
			}

			terms[len(terms)-1].value = v

		case tok.Kind == KindOperator:
			if _, ok := binaryOperators[tok.Value]; !ok || !prevValue {
				return nil, ErrUnexpectedOperator.AtToken(tok)
			}

			terms = append(terms, term{op: &toks[i]})
			prevValue = false

		default:
			return nil, ErrUnexpectedSymbol.AtToken(tok)
		}
	}

	if last := terms[len(terms)-1]; last.op != nil {
		return nil, ErrExpectedOperand.AtToken(*last.op)
	}

	return terms, nil
}

func (r *Runner) factorial(v number.Value, at Token) (number.Value, error) {
	fac, _ := r.scopes.lookup(r.root, "fac")
	if fac == nil || fac.Kind != VarBuiltin {
		return nil, ErrUndefinedFunction.AtToken(at)
	}

	res, err := fac.Builtin.Run([]number.Value{v})
	if err != nil {
		return nil, ErrArithmetic.Wrap(err).AtToken(at)
	}

	return res, nil
}

// reduce applies the binary operators in terms by precedence using the
// shunting-yard algorithm.
func (r *Runner) reduce(terms []term) (number.Value, error) {
	var (
		values []number.Value
		ops    []*Token
	)

	apply := func() error {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]

		n := len(values)
		a, b := values[n-2], values[n-1]
		values = values[:n-2]

		v, err := r.backend.Basic(a, number.Op(op.Value), b)
		if err != nil {
			return ErrArithmetic.Wrap(err).AtToken(*op)
		}

		values = append(values, v)

		return nil
	}

	for _, t := range terms {
		if t.op == nil {
			values = append(values, t.value)

			continue
		}

		p := binaryOperators[t.op.Value]

		for len(ops) > 0 {
			q := binaryOperators[ops[len(ops)-1].Value]
			if q.level < p.level || q.level == p.level && p.right {
				break
			}

			if err := apply(); err != nil {
				return nil, err
			}
		}

		ops = append(ops, t.op)
	}

	for len(ops) > 0 {
		if err := apply(); err != nil {
			return nil, err
		}
	}

	return values[0], nil
}

// operand evaluates a single value token.
func (r *Runner) operand(tok Token) (number.Value, error) {
	switch tok.Kind {
	case KindInteger, KindFloat:
		v, err := r.backend.Parse(tok.Value)
		if err != nil {
			return nil, ErrInvalidNumber.Wrap(err).AtToken(tok)
		}

		return v, nil

	case KindWord:
		v, _ := r.scopes.lookup(r.scope, tok.Value)

		switch {
		case v == nil:
			return nil, ErrUndefinedVariable.AtToken(tok)
		case v.Kind != VarNumber:
			return nil, ErrFunctionAsVariable.AtToken(tok)
		}

		return v.Value, nil

	case KindGroup:
		if tok.IsBlock() {
			return r.curly(tok)
		}

		return r.expression(tok.Children, tok.Index)

	case KindCall:
		return r.call(tok)
	}

	return nil, ErrUnexpectedSymbol.AtToken(tok)
}

// curly evaluates a curly expression: its statements run in a child scope
// and its value is the value returned or, failing that, the last value
// produced. An empty block is zero.
func (r *Runner) curly(tok Token) (number.Value, error) {
	stmts, err := r.program.block(tok)
	if err != nil {
		return nil, err
	}

	if err := r.enter(tok); err != nil {
		return nil, err
	}
	defer r.leave()

	out, err := r.nested(stmts)
	if err != nil {
		return nil, err
	}

	if out.flow == flowBreak {
		return nil, ErrBreakOutsideLoop.At(out.at.Index, out.at.End-out.at.Index)
	}

	if out.value == nil {
		return r.backend.Zero(), nil
	}

	return out.value, nil
}

// enter increments the nesting depth of function calls and curly
// expressions.
func (r *Runner) enter(at Token) error {
	if r.depth >= r.opts.maxDepth {
		return ErrMaxDepthExceeded.With(slog.Int("max_depth", r.opts.maxDepth)).
			AtToken(at)
	}

	if err := r.canceled(at.Index); err != nil {
		return err
	}

	r.depth++

	return nil
}

func (r *Runner) leave() { r.depth-- }
