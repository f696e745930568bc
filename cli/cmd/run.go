package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/numscript/lang"
	"github.com/ardnew/numscript/log"
)

// Output formats for commands that print structured results.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Run compiles and runs scripts, printing each statement's record.
type Run struct {
	Engine `embed:""`

	Output string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})."             short:"o"`
	Indent int    `default:"2"                          help:"Indent width for JSON and YAML output." short:"i"`
	Last   bool   `                                     help:"Print only the last value produced."`

	Scripts []string `arg:"" help:"Script files, names on the search path, or '-' for stdin." name:"script" optional:""`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	stdio := stdioFrom(ctx)

	sources, err := loadSources(ctx, r.Scripts, searchPathFrom(ctx))
	if err != nil {
		return err
	}

	results := make([]*lang.Result, 0, len(sources))
	prompt := newPrompter(stdio)

	for _, src := range sources {
		prompt.script = src

		res, err := r.runSource(ctx, prompt, src)
		if err != nil {
			// Records produced before the failure are still printed.
			if res != nil && r.Output == OutputText {
				_ = r.printText(stdio.Out, res)
			}

			_ = RenderError(stdio.Err, src, err)

			return ErrExecute.With(slog.String("script", src.Name)).Wrap(err)
		}

		results = append(results, res)
	}

	return r.print(ctx, stdio.Out, results)
}

func (r *Run) runSource(
	ctx context.Context,
	prompt *prompter,
	src Source,
) (*lang.Result, error) {
	ctx, cancel := r.Context(ctx)
	defer cancel()

	prog, err := r.Compile(ctx, src)
	if err != nil {
		return nil, err
	}

	backend, err := r.NewBackend()
	if err != nil {
		return nil, err
	}

	runner := lang.NewRunner(backend, r.Options(lang.WithInput(prompt.answer))...)

	res, err := runner.Run(ctx, prog)
	if res != nil {
		log.DebugContext(ctx, "ran script",
			slog.String("script", src.Name),
			slog.Int("records", len(res.Records)),
			slog.Duration("elapsed", res.Elapsed))
	}

	return res, err
}

func (r *Run) print(ctx context.Context, w io.Writer, results []*lang.Result) error {
	var v any = results
	if len(results) == 1 {
		v = results[0]
	}

	switch r.Output {
	case OutputJSON:
		if err := lang.FormatJSON(ctx, w, v, r.Indent); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}
	case OutputYAML:
		if err := lang.FormatYAML(ctx, w, v, r.Indent); err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}
	default:
		for _, res := range results {
			if err := r.printText(w, res); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *Run) printText(w io.Writer, res *lang.Result) error {
	if r.Last {
		if s := res.LastString(); s != "" {
			_, err := fmt.Fprintln(w, s)

			return err
		}

		return nil
	}

	for _, out := range res.Outputs() {
		if _, err := fmt.Fprintln(w, out); err != nil {
			return err
		}
	}

	return nil
}

// prompter answers input requests with lines read from stdin, printing the
// requesting statement as the prompt.
type prompter struct {
	in     *bufio.Reader
	out    io.Writer
	script Source
}

func newPrompter(stdio Stdio) *prompter {
	return &prompter{in: bufio.NewReader(stdio.In), out: stdio.Err}
}

func (p *prompter) answer(_ context.Context, req lang.InputRequest) (string, error) {
	if p.script.IsStdin() {
		return "", ErrStdinInput
	}

	fmt.Fprintf(p.out, "%s ? ", strings.TrimSpace(req.Statement))

	line, err := p.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		if errors.Is(err, io.EOF) {
			return "", lang.ErrNoInput
		}

		return "", err
	}

	return strings.TrimSpace(line), nil
}
