package lang

import (
	"context"
	"io"
	"log/slog"

	"github.com/klauspost/readahead"
)

// ReadSource reads a whole script from r.
func ReadSource(r io.Reader) (string, error) {
	// Wrap reader with async read-ahead so large scripts are fetched while
	// earlier chunks are copied.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadInput.Wrap(err)
	}

	return string(data), nil
}

// CompileReader reads a script from r and compiles it.
func CompileReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Program, error) {
	source, err := ReadSource(r)
	if err != nil {
		return nil, err
	}

	o := makeOptions(opts...)

	o.logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(source)),
		slog.Bool("read_ahead", true))

	return Compile(ctx, source, opts...)
}
