package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/numscript/lang"
	"github.com/ardnew/numscript/log"
)

// Fmt rewrites scripts in canonical form.
type Fmt struct {
	Strict bool `help:"Parse in strict mode."`
	Indent int  `default:"2"                                 help:"Indent width for blocks."                 short:"i"`
	Write  bool `help:"Write the result back to each script instead of stdout." short:"w"`

	Scripts []string `arg:"" help:"Script files, names on the search path, or '-' for stdin." name:"script" optional:""`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	stdio := stdioFrom(ctx)

	sources, err := loadSources(ctx, f.Scripts, searchPathFrom(ctx))
	if err != nil {
		return err
	}

	for _, src := range sources {
		prog, err := lang.Compile(ctx, src.Text, lang.WithStrict(f.Strict))
		if err != nil {
			_ = RenderError(stdio.Err, src, err)

			return ErrCompile.With(slog.String("script", src.Name)).Wrap(err)
		}

		var buf bytes.Buffer
		if err := prog.Format(ctx, &buf, f.Indent); err != nil {
			_ = RenderError(stdio.Err, src, err)

			return ErrFormat.With(slog.String("script", src.Name)).Wrap(err)
		}

		if err := f.emit(ctx, stdio.Out, src, buf.Bytes()); err != nil {
			return err
		}
	}

	return nil
}

func (f *Fmt) emit(ctx context.Context, w io.Writer, src Source, out []byte) error {
	if !f.Write || src.IsStdin() {
		_, err := w.Write(out)

		return err
	}

	if src.Text == string(out) {
		return nil
	}

	info, err := os.Stat(src.Name)
	if err != nil {
		return err
	}

	if err := os.WriteFile(src.Name, out, info.Mode().Perm()); err != nil {
		return err
	}

	log.DebugContext(ctx, "formatted script", slog.String("script", src.Name))

	return nil
}
