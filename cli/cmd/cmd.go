package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/numscript/lang"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// varFrom returns the kong variable name, or "" outside a kong context.
func varFrom(ctx context.Context, name string) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ""
	}

	return ktx.Model.Vars()[name]
}

// Stdio is the set of streams a command reads and writes.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type stdioKey struct{}

// WithStdio returns a new context.Context whose commands use the given
// streams instead of the process's standard streams.
func WithStdio(ctx context.Context, stdio Stdio) context.Context {
	return context.WithValue(ctx, stdioKey{}, stdio)
}

func stdioFrom(ctx context.Context) Stdio {
	s, _ := ctx.Value(stdioKey{}).(Stdio)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	if s.Err == nil {
		s.Err = os.Stderr
	}

	return s
}

// Source is one script loaded for a command.
type Source struct {
	// Name is the path the script was read from, or "-" for stdin.
	Name string
	Text string
}

// IsStdin reports whether the script was read from standard input.
func (s Source) IsStdin() bool { return s.Name == stdinSource }

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// loadSources reads the scripts named by args in order. Names are resolved
// with search; the same file named twice is read once. All occurrences of
// "-" read stdin once, after the named files. No arguments means stdin.
func loadSources(
	ctx context.Context,
	args []string,
	search SearchPath,
) ([]Source, error) {
	if len(args) == 0 {
		args = []string{stdinSource}
	}

	var (
		sources  = make([]Source, 0, len(args))
		seen     = make(map[fileKey]struct{})
		hasStdin bool
	)

	for _, arg := range args {
		if arg == stdinSource {
			hasStdin = true

			continue
		}

		path, err := search.Resolve(arg)
		if err != nil {
			return nil, err
		}

		src, ok, err := readUniqueFile(path, seen)
		if err != nil {
			return nil, err
		}

		if ok {
			sources = append(sources, src)
		}
	}

	if hasStdin {
		text, err := lang.ReadSource(stdioFrom(ctx).In)
		if err != nil {
			return nil, ErrReadScript.
				With(slog.String("script", stdinSource)).
				Wrap(err)
		}

		sources = append(sources, Source{Name: stdinSource, Text: text})
	}

	return sources, nil
}

// readUniqueFile reads the file at path if it hasn't been seen before.
// It resolves symlinks and uses device/inode to detect duplicates, reporting
// false for a duplicate.
func readUniqueFile(
	path string,
	seen map[fileKey]struct{},
) (Source, bool, error) {
	fail := func(err error) (Source, bool, error) {
		return Source{}, false, ErrReadScript.
			With(slog.String("script", path)).
			Wrap(err)
	}

	// Resolve to absolute path to handle relative path duplicates.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fail(err)
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return fail(err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return fail(err)
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return Source{}, false, nil
		}

		seen[key] = struct{}{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return fail(err)
	}
	defer file.Close()

	text, err := lang.ReadSource(file)
	if err != nil {
		return fail(err)
	}

	return Source{Name: path, Text: text}, true, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
