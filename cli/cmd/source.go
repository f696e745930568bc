package cmd

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/numscript/pkg"
)

// ScriptExt is the file extension tried when a script name has none.
const ScriptExt = ".ns"

// SearchPath is the ordered list of directories searched for scripts named
// without a directory component.
type SearchPath []string

// PathEnv returns the name of the environment variable listing extra script
// directories, such as NUMSCRIPT_PATH.
func PathEnv() string { return pkg.EnvVar("path") }

// MakeSearchPath composes the search path: the working directory, then the
// directories in env (a list separated by [os.PathListSeparator]), then
// scripts. Duplicates and directories that do not exist are dropped.
func MakeSearchPath(env, scripts string) SearchPath {
	prefix := []string{"."}

	list := mung.Make(
		mung.WithSubjectItems(strings.Join(compact(env, scripts), string(os.PathListSeparator))),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(isDir),
	).String()

	var path SearchPath

	for dir := range strings.SplitSeq(list, string(os.PathListSeparator)) {
		if dir != "" && !path.contains(dir) {
			path = append(path, dir)
		}
	}

	return path
}

// searchPathFrom builds the search path from the environment and the kong
// scripts variable.
func searchPathFrom(ctx context.Context) SearchPath {
	return MakeSearchPath(os.Getenv(PathEnv()), varFrom(ctx, ScriptsIdentifier))
}

func compact(items ...string) []string {
	out := items[:0:0]

	for _, item := range items {
		if item != "" {
			out = append(out, item)
		}
	}

	return out
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func (p SearchPath) contains(dir string) bool {
	clean := filepath.Clean(dir)

	for _, d := range p {
		if filepath.Clean(d) == clean {
			return true
		}
	}

	return false
}

// Resolve returns the path of the script called name. A name containing a
// path separator, or naming an existing file, is used as is. Otherwise each
// directory is tried in order, first with name and then with [ScriptExt]
// appended.
func (p SearchPath) Resolve(name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) || isFile(name) {
		if !isFile(name) {
			return "", ErrScriptNotFound.
				With(slog.String("script", name)).
				Wrap(fs.ErrNotExist)
		}

		return name, nil
	}

	candidates := []string{name}
	if filepath.Ext(name) == "" {
		candidates = append(candidates, name+ScriptExt)
	}

	for _, dir := range p {
		for _, c := range candidates {
			if path := filepath.Join(dir, c); isFile(path) {
				return path, nil
			}
		}
	}

	return "", ErrScriptNotFound.
		With(
			slog.String("script", name),
			slog.Any("search", []string(p)),
		).
		Wrap(fs.ErrNotExist)
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}
