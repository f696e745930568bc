package lang

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/ardnew/numscript/number"
)

// Runner executes compiled programs against a numeric backend.
//
// A Runner is not safe for concurrent use; create one per goroutine.
type Runner struct {
	backend number.Backend
	opts    options

	scopes arena
	root   scopeID
	scope  scopeID

	ctx     context.Context
	program *Program
	records []Record
	last    number.Value
	depth   int

	// input suspension, see Start
	yield   func(*InputRequest) bool
	answer  string
	stopErr error
}

// NewRunner returns a runner for backend.
func NewRunner(backend number.Backend, opts ...Option) *Runner {
	r := &Runner{
		backend: backend,
		opts:    makeOptions(opts...),
		root:    noScope,
	}
	r.reset()

	return r
}

// Backend returns the runner's numeric backend.
func (r *Runner) Backend() number.Backend { return r.backend }

// reset discards every binding and seeds a fresh root scope with the
// backend's constants and built-in functions.
func (r *Runner) reset() {
	r.scopes.release(0)
	r.root = r.scopes.push(noScope)
	r.scope = r.root

	for name, v := range r.backend.Constants() {
		r.scopes.define(r.root, name, &Variable{
			Kind: VarNumber, Value: v, Constant: true,
		})
	}

	for name, fn := range r.backend.Functions() {
		r.scopes.define(r.root, name, &Variable{
			Kind: VarBuiltin, Builtin: fn, Name: name, Constant: true,
		})
	}

	r.scopes.define(r.root, "input", &Variable{
		Kind: VarInput, Name: "input", Constant: true,
	})
}

// Run executes prog in a fresh root scope. Input requests are answered by
// the function set with [WithInput]; without one, a request fails with
// [ErrNoInput].
//
// The returned Result holds the records produced before any error.
func (r *Runner) Run(ctx context.Context, prog *Program) (*Result, error) {
	r.reset()

	return r.drive(ctx, r.start(ctx, prog))
}

func (r *Runner) drive(ctx context.Context, e *Execution) (*Result, error) {
	defer e.Stop()

	req, ok := e.Step()
	for ok {
		if r.opts.input == nil {
			r.stopErr = ErrNoInput.At(req.Offset, req.Length)
			e.Stop()

			break
		}

		text, err := r.opts.input(ctx, *req)
		if err != nil {
			r.stopErr = ErrReadInput.Wrap(err).At(req.Offset, req.Length)
			e.Stop()

			break
		}

		req, ok = e.Resume(text)
	}

	return e.Result()
}

// run executes the top-level statements of prog in the root scope.
func (r *Runner) run(ctx context.Context, prog *Program) (*Result, error) {
	start := time.Now()

	r.ctx, r.program = ctx, prog
	r.records, r.last, r.depth = nil, nil, 0
	r.scopes.release(r.root + 1)
	r.scope = r.root

	r.opts.logger.DebugContext(ctx, "run start",
		slog.String("backend", r.backend.Name()),
		slog.Int("statement_count", len(prog.Statements)))

	_, err := r.block(prog.Statements, true)

	res := &Result{
		Backend: r.backend.Name(),
		Records: r.records,
		Last:    r.last,
		Elapsed: time.Since(start),
	}

	if err != nil {
		r.opts.logger.DebugContext(ctx, "run failed", slog.Any("error", err))
		r.scopes.release(r.root + 1)
		r.scope = r.root

		return res, err
	}

	r.opts.logger.DebugContext(ctx, "run complete",
		slog.Int("record_count", len(res.Records)),
		slog.Duration("elapsed", res.Elapsed))

	return res, nil
}

type flow int

const (
	flowNext flow = iota
	flowBreak
	flowReturn
)

// outcome is what a statement or block hands back to its enclosing block.
type outcome struct {
	flow  flow
	value number.Value // nil when nothing produced a value
	at    *Statement   // break or return statement, for error locations
}

// block executes stmts in the current scope. Its value is that of the last
// value-producing statement.
func (r *Runner) block(stmts []Statement, top bool) (outcome, error) {
	var (
		last  outcome
		taken bool // an if/else-if chain already ran a branch
	)

	for i := range stmts {
		out, err := r.statement(&stmts[i], top, &taken)
		if err != nil {
			return outcome{}, err
		}

		if out.flow != flowNext {
			return out, nil
		}

		if out.value != nil {
			last.value = out.value
		}
	}

	return last, nil
}

// nested executes stmts in a new child scope.
func (r *Runner) nested(stmts []Statement) (outcome, error) {
	saved := r.scope
	id := r.scopes.push(saved)
	r.scope = id

	defer func() {
		r.scopes.release(id)
		r.scope = saved
	}()

	return r.block(stmts, false)
}

func (r *Runner) canceled(at int) error {
	if r.ctx.Err() != nil {
		return ErrCanceled.Wrap(context.Cause(r.ctx)).At(at, 1)
	}

	return nil
}

func (r *Runner) statement(st *Statement, top bool, taken *bool) (outcome, error) {
	start := time.Now()

	r.opts.logger.TraceContext(r.ctx, "execute statement", statementAttrs(st)...)

	var (
		out    outcome
		output []string
		value  number.Value
		err    error
	)

	switch st.Kind {
	case StmtSetVariable:
		value, err = r.setVariable(st)
		if err == nil {
			output = []string{st.Name.Value, "is set to", value.String()}
		}

	case StmtSetFunction:
		err = r.setFunction(st)
		output = []string{st.Signature(), "is set to", st.Body.Source}

	case StmtInline:
		if len(st.Expr) == 1 && st.Expr[0].IsBlock() {
			var stmts []Statement
			if stmts, err = r.program.block(st.Expr[0]); err == nil {
				if err = r.enter(st.Expr[0]); err == nil {
					out, err = r.nested(stmts)
					r.leave()
				}
			}

			value = out.value
		} else {
			value, err = r.expression(st.Expr, st.Index)
			out.value = value
		}

		if value != nil {
			output = []string{value.String()}
		}

	case StmtIf, StmtElseIf:
		if st.Kind == StmtElseIf && *taken {
			return outcome{}, nil
		}

		var ok bool
		if ok, err = r.condition(st); err == nil {
			*taken = ok
			if ok {
				out, err = r.nested(st.Block)
			}
		}

		output = []string{"the code will be executed if", sourceOf(st.Expr, r.program.Source)}

	case StmtElse:
		if *taken {
			return outcome{}, nil
		}

		out, err = r.nested(st.Block)
		output = []string{"the code will be executed if the previous conditions failed"}

	case StmtRepeatUntil:
		out, err = r.repeatUntil(st)
		output = []string{"a repeat loop will continue until", sourceOf(st.Expr, r.program.Source)}

	case StmtRepeatTimes, StmtRepeatTimesWith:
		var n int64

		out, n, err = r.repeatTimes(st)
		output = []string{"a repeat loop will continue", r.backend.FromInt(max(n, 0)).String(), "times"}

	case StmtLoop:
		out, err = r.loop(st)
		output = []string{"loop"}

	case StmtReturn:
		value, err = r.expression(st.Expr, st.Index)
		out = outcome{flow: flowReturn, value: value, at: st}

		if value != nil {
			output = []string{value.String()}
		}

	case StmtBreak:
		out = outcome{flow: flowBreak, at: st}

	case StmtPrint:
		output = []string{st.Text}

	case StmtThrow:
		return outcome{}, ErrThrow.Describe(st.Text).At(st.Index, st.End-st.Index)
	}

	if err != nil {
		return outcome{}, err
	}

	if st.Kind != StmtIf && st.Kind != StmtElseIf && st.Kind != StmtElse {
		*taken = false
	}

	r.record(st, top, output, value, start)

	return out, nil
}

// record appends a record for st. Print statements always record; inline
// expressions record outside of function bodies and curly expressions;
// everything else records only at top level.
func (r *Runner) record(
	st *Statement,
	top bool,
	output []string,
	value number.Value,
	start time.Time,
) {
	switch {
	case st.Kind == StmtPrint:
	case r.depth > 0:
		return
	case top:
	case st.Kind == StmtInline:
	default:
		return
	}

	r.records = append(r.records, Record{
		Kind:    st.Kind,
		Input:   st.Source,
		Output:  output,
		Elapsed: time.Since(start),
		Value:   value,
	})

	if value != nil {
		r.last = value
	}
}

func sourceOf(toks []Token, source string) string {
	if len(toks) == 0 {
		return ""
	}

	return source[toks[0].Index:toks[len(toks)-1].End]
}

func (r *Runner) condition(st *Statement) (bool, error) {
	v, err := r.expression(st.Expr, st.Index)
	if err != nil {
		return false, err
	}

	return r.backend.Truthy(v), nil
}

// iterate runs one pass of a loop body and reports whether the loop should
// stop, and the outcome to hand back when a return escapes it.
func (r *Runner) iterate(st *Statement) (bool, outcome, error) {
	out, err := r.nested(st.Block)
	if err != nil {
		return true, outcome{}, err
	}

	switch out.flow {
	case flowBreak:
		return true, outcome{}, nil
	case flowReturn:
		return true, out, nil
	}

	return false, outcome{}, nil
}

func (r *Runner) repeatUntil(st *Statement) (outcome, error) {
	for {
		if err := r.canceled(st.Index); err != nil {
			return outcome{}, err
		}

		done, err := r.condition(st)
		if err != nil || done {
			return outcome{}, err
		}

		stop, out, err := r.iterate(st)
		if stop {
			return out, err
		}
	}
}

func (r *Runner) loop(st *Statement) (outcome, error) {
	for {
		if err := r.canceled(st.Index); err != nil {
			return outcome{}, err
		}

		stop, out, err := r.iterate(st)
		if stop {
			return out, err
		}
	}
}

func (r *Runner) repeatTimes(st *Statement) (outcome, int64, error) {
	v, err := r.expression(st.Expr, st.Index)
	if err != nil {
		return outcome{}, 0, err
	}

	n, err := r.backend.Count(v)
	if err != nil {
		return outcome{}, 0, ErrRepeatCount.Wrap(err).At(
			st.Expr[0].Index, st.Expr[len(st.Expr)-1].End-st.Expr[0].Index)
	}

	for i := int64(1); i <= n; i++ {
		if err := r.canceled(st.Index); err != nil {
			return outcome{}, n, err
		}

		var (
			stop bool
			out  outcome
		)

		if st.Var != nil {
			stop, out, err = r.iterateWith(st, st.Var.Value, r.backend.FromInt(i))
		} else {
			stop, out, err = r.iterate(st)
		}

		if stop {
			return out, n, err
		}
	}

	return outcome{}, n, nil
}

// iterateWith runs one pass of a loop body with a constant counter bound in
// a scope between the loop and its body.
func (r *Runner) iterateWith(st *Statement, name string, counter number.Value) (bool, outcome, error) {
	saved := r.scope
	id := r.scopes.push(saved)
	r.scope = id
	r.scopes.define(id, name, &Variable{
		Kind: VarNumber, Value: counter, Constant: true,
	})

	defer func() {
		r.scopes.release(id)
		r.scope = saved
	}()

	return r.iterate(st)
}

func (r *Runner) setVariable(st *Statement) (number.Value, error) {
	name := st.Name.Value

	if r.program.Strict && utf8.RuneCountInString(name) != 1 {
		return nil, ErrStrictName.AtToken(*st.Name)
	}

	existing, owner := r.scopes.lookup(r.scope, name)

	if existing != nil && existing.Constant {
		if name == "π" {
			return nil, ErrConstant.Describe("π ≠ " + sourceOf(st.Expr, r.program.Source)).
				AtToken(*st.Name)
		}

		return nil, ErrConstant.AtToken(*st.Name)
	}

	if existing != nil && owner == r.scope && st.Constant {
		return nil, ErrConstantRedeclaration.AtToken(*st.Name)
	}

	value, err := r.expression(st.Expr, st.Name.End)
	if err != nil {
		return nil, err
	}

	bound := &Variable{Kind: VarNumber, Value: value, Constant: st.Constant}

	if existing != nil && !st.New {
		r.scopes.define(owner, name, bound)
	} else {
		r.scopes.define(r.scope, name, bound)
	}

	r.opts.logger.TraceContext(r.ctx, "variable set",
		slog.String("name", name),
		valueAttr("value", value),
		slog.Bool("constant", st.Constant))

	return value, nil
}

func (r *Runner) setFunction(st *Statement) error {
	name := st.Name.Value

	if existing, _ := r.scopes.lookup(r.scope, name); existing != nil && existing.Constant {
		return ErrConstant.AtToken(*st.Name)
	}

	r.scopes.define(r.scope, name, &Variable{
		Kind:   VarFunction,
		Name:   name,
		Params: st.ParamNames(),
		Body:   st.Body,
		Scope:  r.scope,
	})

	r.opts.logger.TraceContext(r.ctx, "function defined",
		slog.String("signature", st.Signature()))

	return nil
}
