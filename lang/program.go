package lang

import (
	"context"
	"log/slog"

	"github.com/ardnew/numscript/log"
)

// DefaultMaxDepth is the default limit on nested function calls and curly
// expressions.
const DefaultMaxDepth = 10000

// Program is a compiled script. It is immutable and safe to run repeatedly
// and concurrently.
type Program struct {
	Source     string      `json:"source"     yaml:"source"`
	Strict     bool        `json:"strict"     yaml:"strict"`
	Statements []Statement `json:"statements" yaml:"statements"`

	blocks map[int][]Statement
}

// block returns the statements of the curly expression opened at offset.
func (p *Program) block(tok Token) ([]Statement, error) {
	if stmts, ok := p.blocks[tok.Index]; ok {
		return stmts, nil
	}

	sub := newParser(p.Source, tok.Children, p.Strict)
	sub.blocks = p.blocks

	return sub.statements()
}

// options holds settings shared by compilation and execution.
type options struct {
	strict   bool
	maxDepth int
	logger   log.Logger
	input    InputFunc
}

// Option configures compilation or execution behavior.
type Option func(*options)

// WithStrict enables strict mode: names are single characters and adjacent
// letters multiply.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithMaxDepth sets the maximum nesting of function calls and curly
// expressions.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithInput sets the function [Runner.Run] calls when a script asks for
// input.
func WithInput(fn InputFunc) Option {
	return func(o *options) {
		o.input = fn
	}
}

func makeOptions(opts ...Option) options {
	o := options{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Compile tokenizes, groups, and parses source. Results are cached by source
// content and strict mode.
func Compile(ctx context.Context, source string, opts ...Option) (*Program, error) {
	o := makeOptions(opts...)

	o.logger.TraceContext(ctx, "compile start",
		slog.Int("source_length", len(source)),
		slog.Bool("strict", o.strict))

	return compileCached(ctx, source, o)
}

func compile(ctx context.Context, source string, o options) (*Program, error) {
	tokens := Tokenize(source)

	o.logger.TraceContext(ctx, "tokenized", slog.Int("token_count", len(tokens)))

	grouped, err := Group(source, tokens, o.strict)
	if err != nil {
		return nil, err
	}

	p := newParser(source, grouped, o.strict)

	stmts, err := p.statements()
	if err != nil {
		return nil, err
	}

	o.logger.TraceContext(ctx, "compile complete",
		slog.Int("statement_count", len(stmts)),
		slog.Int("block_count", len(p.blocks)))

	return &Program{
		Source:     source,
		Strict:     o.strict,
		Statements: stmts,
		blocks:     p.blocks,
	}, nil
}
