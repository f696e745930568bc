package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ardnew/numscript/cli/cmd/repl"
	"github.com/ardnew/numscript/log"
	"github.com/ardnew/numscript/number"
	"github.com/ardnew/numscript/pkg"
)

// Repl starts an interactive session. Scripts named on the command line are
// evaluated first, so their variables and functions are available at the
// prompt. The timeout flag does not apply to interactive input.
type Repl struct {
	Engine `embed:""`

	NoHistory bool `help:"Do not read or write the history file." name:"no-history"`

	Scripts []string `arg:"" help:"Scripts to load before the prompt." name:"script" optional:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	backend, err := r.NewBackend()
	if err != nil {
		return err
	}

	var preload []repl.Script

	if len(r.Scripts) > 0 {
		sources, err := loadSources(ctx, r.Scripts, searchPathFrom(ctx))
		if err != nil {
			return err
		}

		for _, src := range sources {
			preload = append(preload, repl.Script{Name: src.Name, Text: src.Text})
		}
	}

	cfg := repl.Config{
		Backend: backend,
		NewBackend: func(name string) (number.Backend, error) {
			e := r.Engine
			e.Backend = name

			return e.NewBackend()
		},
		Options:     r.Options(),
		HistoryPath: r.historyPath(ctx),
		Logger:      log.Default().WithGroup("repl"),
		Preload:     preload,
	}

	log.DebugContext(ctx, "starting repl",
		slog.String("backend", backend.Name()),
		slog.String("history", cfg.HistoryPath),
		slog.Int("preload", len(preload)))

	return repl.Run(ctx, cfg)
}

// historyPath returns the history file in the cache directory, or "" when
// history is disabled or the directory cannot be created.
func (r *Repl) historyPath(ctx context.Context) string {
	if r.NoHistory {
		return ""
	}

	dir := varFrom(ctx, CacheIdentifier)
	if dir == "" {
		dir = pkg.CacheDir()
	}

	if err := os.MkdirAll(dir, pkg.DirMode); err != nil {
		log.WarnContext(ctx, "history disabled",
			slog.String("cache", dir),
			slog.Any("error", err))

		return ""
	}

	return filepath.Join(dir, repl.HistoryFile)
}
