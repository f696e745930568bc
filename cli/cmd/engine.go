package cmd

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ardnew/numscript/lang"
	"github.com/ardnew/numscript/log"
	"github.com/ardnew/numscript/number"
)

// Engine holds the flags shared by commands that compile or run scripts.
type Engine struct {
	Backend   string        `default:"${backend}"   enum:"${backendEnum}" help:"Numeric backend (${enum})."                        short:"b"`
	Strict    bool          `default:"false"                              help:"Single-character names; adjacent letters multiply."`
	Precision int           `default:"${precision}"                       help:"Decimal places (bignumber) or significant digits (decimal)."`
	Seed      uint64        `default:"0"                                  help:"Seed for random(); 0 picks a random seed."`
	Timeout   time.Duration `default:"0s"                                 help:"Abort scripts running longer than this; 0 disables."`
	MaxDepth  int           `default:"${maxDepth}"                        help:"Maximum nesting of calls and curly expressions."`
}

// EngineVars returns the kong variables referenced by [Engine] tags.
func EngineVars() kong.Vars {
	return kong.Vars{
		"backend":     number.DefaultBackend,
		"backendEnum": strings.Join(number.Names(), ","),
		"precision":   strconv.Itoa(number.DefaultPrecision),
		"maxDepth":    strconv.Itoa(lang.DefaultMaxDepth),
	}
}

// DefaultEngine returns the engine configuration used when no flags are
// parsed.
func DefaultEngine() Engine {
	return Engine{
		Backend:   number.DefaultBackend,
		Precision: number.DefaultPrecision,
		MaxDepth:  lang.DefaultMaxDepth,
	}
}

// NewBackend constructs the selected numeric backend.
func (e Engine) NewBackend() (number.Backend, error) {
	opts := []number.Option{number.WithPrecision(e.Precision)}
	if e.Seed != 0 {
		opts = append(opts, number.WithSeed(e.Seed))
	}

	b, err := number.New(e.Backend, opts...)
	if err != nil {
		return nil, ErrBackend.
			With(slog.String("backend", e.Backend)).
			Wrap(err)
	}

	return b, nil
}

// Options returns the compile and run options for the engine flags.
func (e Engine) Options(extra ...lang.Option) []lang.Option {
	opts := []lang.Option{
		lang.WithStrict(e.Strict),
		lang.WithLogger(log.Default().With(slog.String("backend", e.Backend))),
	}

	if e.MaxDepth > 0 {
		opts = append(opts, lang.WithMaxDepth(e.MaxDepth))
	}

	return append(opts, extra...)
}

// Context applies the timeout, if any.
func (e Engine) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Timeout > 0 {
		return context.WithTimeoutCause(ctx, e.Timeout,
			ErrTimeout.With(slog.Duration("timeout", e.Timeout)))
	}

	return context.WithCancel(ctx)
}

// Compile compiles src with the engine flags, returning a located
// [lang.Error] on failure.
func (e Engine) Compile(ctx context.Context, src Source) (*lang.Program, error) {
	prog, err := lang.Compile(ctx, src.Text, e.Options()...)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "compiled script",
		slog.String("script", src.Name),
		slog.Int("statements", len(prog.Statements)),
		slog.Bool("strict", prog.Strict))

	return prog, nil
}
