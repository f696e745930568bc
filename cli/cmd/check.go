package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/numscript/lang"
	"github.com/ardnew/numscript/log"
)

// Check runs a script and evaluates expectations over its result.
//
// Each expectation is an expr-lang boolean expression over:
//
//	records  []{kind, input, output []string, text}
//	outputs  []string   each record's output joined with spaces
//	last     string     the last value produced, or ""
//	error    string     the script error, or ""
//	backend  string
//
// For example:
//
//	numscript check sum.ns -e 'last == "15"' -e 'error == ""'
type Check struct {
	Engine `embed:""`

	Expect []string `help:"Boolean expression over records, outputs, last, error, and backend." required:"" short:"e"`

	Script string `arg:"" default:"-" help:"Script file, name on the search path, or '-' for stdin." name:"script"`
}

// CheckEnv is the environment expectations are evaluated in.
type CheckEnv struct {
	Records []CheckRecord `expr:"records"`
	Outputs []string      `expr:"outputs"`
	Last    string        `expr:"last"`
	Error   string        `expr:"error"`
	Backend string        `expr:"backend"`
}

// CheckRecord is a [lang.Record] as seen by expectations.
type CheckRecord struct {
	Kind   string   `expr:"kind"`
	Input  string   `expr:"input"`
	Output []string `expr:"output"`
	Text   string   `expr:"text"`
}

// Expectation is a compiled expectation.
type Expectation struct {
	Source  string
	program *vm.Program
}

// CompileExpectation type-checks src against [CheckEnv].
func CompileExpectation(src string) (*Expectation, error) {
	prog, err := expr.Compile(src, expr.Env(CheckEnv{}), expr.AsBool())
	if err != nil {
		return nil, ErrExpectation.
			With(slog.String("expect", src)).
			Wrap(err)
	}

	return &Expectation{Source: src, program: prog}, nil
}

// Eval reports whether the expectation holds in env.
func (e *Expectation) Eval(env CheckEnv) (bool, error) {
	out, err := expr.Run(e.program, env)
	if err != nil {
		return false, ErrExpectation.
			With(slog.String("expect", e.Source)).
			Wrap(err)
	}

	ok, _ := out.(bool)

	return ok, nil
}

// MakeCheckEnv builds the expectation environment from a run.
func MakeCheckEnv(backend string, res *lang.Result, err error) CheckEnv {
	env := CheckEnv{Backend: backend}

	if res != nil {
		env.Last = res.LastString()
		env.Outputs = res.Outputs()

		env.Records = make([]CheckRecord, len(res.Records))
		for i, rec := range res.Records {
			env.Records[i] = CheckRecord{
				Kind:   rec.Kind.String(),
				Input:  rec.Input,
				Output: rec.Output,
				Text:   rec.String(),
			}
		}
	}

	if err != nil {
		env.Error = err.Error()
	}

	return env
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	stdio := stdioFrom(ctx)

	expects := make([]*Expectation, len(c.Expect))
	for i, src := range c.Expect {
		if expects[i], err = CompileExpectation(src); err != nil {
			return err
		}
	}

	sources, err := loadSources(ctx, []string{c.Script}, searchPathFrom(ctx))
	if err != nil {
		return err
	}

	src := sources[0]

	res, runErr := c.run(ctx, src)
	env := MakeCheckEnv(c.Backend, res, runErr)

	failed := 0

	for _, e := range expects {
		ok, err := e.Eval(env)
		if err != nil {
			return err
		}

		if !ok {
			failed++
		}

		c.report(stdio.Out, e.Source, ok)
	}

	log.DebugContext(ctx, "checked script",
		slog.String("script", src.Name),
		slog.Int("expectations", len(expects)),
		slog.Int("failed", failed))

	if failed > 0 {
		if runErr != nil {
			_ = RenderError(stdio.Err, src, runErr)
		}

		return ErrCheckFailed.With(
			slog.String("script", src.Name),
			slog.Int("failed", failed),
		)
	}

	return nil
}

func (c *Check) run(ctx context.Context, src Source) (*lang.Result, error) {
	ctx, cancel := c.Context(ctx)
	defer cancel()

	prog, err := c.Compile(ctx, src)
	if err != nil {
		return nil, err
	}

	backend, err := c.NewBackend()
	if err != nil {
		return nil, err
	}

	return lang.NewRunner(backend, c.Options()...).Run(ctx, prog)
}

func (c *Check) report(w io.Writer, src string, ok bool) {
	r := lipgloss.NewRenderer(w)

	status := r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")).Render("PASS")
	if !ok {
		status = r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")).Render("FAIL")
	}

	fmt.Fprintf(w, "%s %s\n", status, src)
}
