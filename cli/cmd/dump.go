package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/numscript/lang"
)

// DumpOptions are the flags shared by the commands that print compiler
// stages as structured data.
type DumpOptions struct {
	Strict bool   `help:"Group and parse in strict mode."`
	Output string `default:"json" enum:"json,yaml" help:"Output format (${enum})."        short:"o"`
	Indent int    `default:"2"                     help:"Indent width; 0 prints compact." short:"i"`

	Script string `arg:"" default:"-" help:"Script file, name on the search path, or '-' for stdin." name:"script"`
}

func (d DumpOptions) load(ctx context.Context) (Source, error) {
	sources, err := loadSources(ctx, []string{d.Script}, searchPathFrom(ctx))
	if err != nil {
		return Source{}, err
	}

	return sources[0], nil
}

func (d DumpOptions) write(ctx context.Context, w io.Writer, v any) error {
	if d.Output == OutputYAML {
		if err := lang.FormatYAML(ctx, w, v, d.Indent); err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		return nil
	}

	if err := lang.FormatJSON(ctx, w, v, d.Indent); err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	return nil
}

// Tokens prints the token list of a script.
type Tokens struct {
	DumpOptions `embed:""`

	Grouped bool `help:"Print grouped tokens (calls, parentheses, blocks) instead of the flat list." short:"g"`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) error {
	stdio := stdioFrom(ctx)

	src, err := t.load(ctx)
	if err != nil {
		return err
	}

	toks := lang.Tokenize(src.Text)

	if t.Grouped {
		toks, err = lang.Group(src.Text, toks, t.Strict)
		if err != nil {
			_ = RenderError(stdio.Err, src, err)

			return ErrCompile.With(slog.String("script", src.Name)).Wrap(err)
		}
	}

	return t.write(ctx, stdio.Out, toks)
}

// Parse prints the statement tree of a script.
type Parse struct {
	DumpOptions `embed:""`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) error {
	stdio := stdioFrom(ctx)

	src, err := p.load(ctx)
	if err != nil {
		return err
	}

	prog, err := lang.Compile(ctx, src.Text, lang.WithStrict(p.Strict))
	if err != nil {
		_ = RenderError(stdio.Err, src, err)

		return ErrCompile.With(slog.String("script", src.Name)).Wrap(err)
	}

	return p.write(ctx, stdio.Out, prog)
}
