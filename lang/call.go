package lang

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/numscript/number"
)

// argument is an evaluated call argument: a number or, for a bare name that
// denotes a function, a reference to that function.
type argument struct {
	value number.Value
	fn    *Variable
}

// splitArgs splits the contents of an argument group at top-level commas.
func splitArgs(group Token) ([][]Token, error) {
	children := stripNewlines(group.Children)
	if len(children) == 0 {
		return nil, nil
	}

	var (
		args [][]Token
		cur  []Token
	)

	for _, tok := range children {
		if !tok.IsSymbol(",") {
			cur = append(cur, tok)

			continue
		}

		if len(cur) == 0 {
			return nil, ErrUnexpectedComma.AtToken(tok)
		}

		args = append(args, cur)
		cur = nil
	}

	if len(cur) == 0 {
		last := children[len(children)-1]

		return nil, ErrUnexpectedEndOfArg.AtToken(last)
	}

	return append(args, cur), nil
}

func (r *Runner) call(tok Token) (number.Value, error) {
	name := tok.Name.Value

	if name == "exit" {
		return nil, ErrExit.AtToken(tok)
	}

	fn, _ := r.scopes.lookup(r.scope, name)

	switch {
	case fn == nil:
		return nil, ErrUndefinedFunction.AtToken(*tok.Name)
	case fn.Kind == VarNumber:
		return nil, ErrVariableAsFunction.AtToken(*tok.Name)
	}

	segments, err := splitArgs(*tok.Args)
	if err != nil {
		return nil, err
	}

	args := make([]argument, len(segments))

	for i, seg := range segments {
		if len(seg) == 1 && seg[0].Kind == KindWord {
			if ref, _ := r.scopes.lookup(r.scope, seg[0].Value); ref != nil &&
				ref.Kind != VarNumber {
				args[i].fn = ref

				continue
			}
		}

		if args[i].value, err = r.expression(seg, seg[0].Index); err != nil {
			return nil, err
		}
	}

	r.opts.logger.TraceContext(r.ctx, "call",
		slog.String("name", name),
		slog.String("kind", fn.Kind.String()),
		slog.Int("arg_count", len(args)))

	switch fn.Kind {
	case VarBuiltin:
		return r.callBuiltin(tok, fn, args)
	case VarInput:
		return r.input(tok, args)
	default:
		return r.callFunction(tok, fn, args)
	}
}

func arityError(tok Token, want, got int) error {
	return ErrArity.Describe(fmt.Sprintf("expected %d arguments, got %d", want, got)).
		With(slog.Int("want", want), slog.Int("got", got)).
		AtToken(tok)
}

func (r *Runner) callBuiltin(tok Token, fn *Variable, args []argument) (number.Value, error) {
	if fn.Builtin.Arity != number.Variadic && int(fn.Builtin.Arity) != len(args) {
		return nil, arityError(tok, int(fn.Builtin.Arity), len(args))
	}

	values := make([]number.Value, len(args))

	for i, a := range args {
		if a.fn != nil {
			return nil, ErrBuiltinArgument.Describe(
				ErrBuiltinArgument.msg + ": " + fn.Name).AtToken(*tok.Name)
		}

		values[i] = a.value
	}

	v, err := fn.Builtin.Run(values)
	if err != nil {
		return nil, ErrArithmetic.Wrap(err).
			With(slog.String("function", fn.Name)).
			AtToken(tok)
	}

	return v, nil
}

func (r *Runner) callFunction(tok Token, fn *Variable, args []argument) (number.Value, error) {
	if len(fn.Params) != len(args) {
		return nil, arityError(tok, len(fn.Params), len(args))
	}

	if err := r.enter(tok); err != nil {
		return nil, err
	}
	defer r.leave()

	saved := r.scope
	id := r.scopes.push(fn.Scope)
	r.scope = id

	defer func() {
		r.scopes.release(id)
		r.scope = saved
	}()

	for i, param := range fn.Params {
		bound := &Variable{Kind: VarNumber, Value: args[i].value}
		if ref := args[i].fn; ref != nil {
			alias := *ref
			alias.Constant = false
			bound = &alias
		}

		r.scopes.define(id, param, bound)
	}

	if fn.Body.Block == nil {
		return r.expression(fn.Body.Expr, tok.Index)
	}

	out, err := r.block(fn.Body.Block, false)
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

// input asks the host for a number. Inside [Runner.Start] the request
// suspends execution until [Execution.Resume].
func (r *Runner) input(tok Token, args []argument) (number.Value, error) {
	if len(args) != 0 {
		return nil, arityError(tok, 0, len(args))
	}

	req := &InputRequest{
		Offset:    tok.Index,
		Length:    tok.End - tok.Index,
		Statement: r.statementAt(tok.Index),
	}

	if r.yield == nil || !r.yield(req) {
		if r.stopErr != nil {
			return nil, r.stopErr
		}

		return nil, ErrStopped.AtToken(tok)
	}

	text := strings.TrimSpace(r.answer)

	v, err := r.backend.Parse(text)
	if err != nil {
		return nil, ErrInvalidInput.With(slog.String("input", text)).AtToken(tok)
	}

	r.opts.logger.TraceContext(r.ctx, "input received", valueAttr("value", v))

	return v, nil
}

// statementAt returns the source line containing offset.
func (r *Runner) statementAt(offset int) string {
	src := r.program.Source

	start := strings.LastIndexByte(src[:offset], '\n') + 1

	end := strings.IndexByte(src[offset:], '\n')
	if end < 0 {
		return strings.TrimSpace(src[start:])
	}

	return strings.TrimSpace(src[start : offset+end])
}
