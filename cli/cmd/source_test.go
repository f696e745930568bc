package cmd

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func writeScript(t *testing.T, dir, name, text string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestResolve(t *testing.T) {
	lib := t.TempDir()
	extra := t.TempDir()

	withExt := writeScript(t, lib, "sum.ns", "1 + 1")
	plain := writeScript(t, extra, "plain", "2")
	shadow := writeScript(t, extra, "sum.ns", "3")

	search := SearchPath{lib, extra}

	tests := []struct {
		name string
		want string
		err  error
	}{
		{name: "sum", want: withExt},
		{name: "sum.ns", want: withExt},
		{name: "plain", want: plain},
		{name: shadow, want: shadow},
		{name: "missing", err: ErrScriptNotFound},
		{name: filepath.Join(lib, "missing.ns"), err: ErrScriptNotFound},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.name), func(t *testing.T) {
			got, err := search.Resolve(tt.name)
			if tt.err != nil {
				if !errors.Is(err, tt.err) || !errors.Is(err, fs.ErrNotExist) {
					t.Fatalf("Resolve(%q) error = %v, want %v", tt.name, err, tt.err)
				}

				return
			}

			if err != nil {
				t.Fatal(err)
			}

			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestMakeSearchPath(t *testing.T) {
	envDir := t.TempDir()
	scripts := t.TempDir()
	missing := filepath.Join(t.TempDir(), "missing")

	env := strings.Join([]string{envDir, missing, envDir}, string(os.PathListSeparator))
	path := MakeSearchPath(env, scripts)

	for _, dir := range []string{envDir, scripts} {
		if !slices.Contains(path, dir) {
			t.Errorf("search path %q missing %q", path, dir)
		}
	}

	if slices.Contains(path, missing) {
		t.Errorf("search path %q contains missing directory", path)
	}

	if i, j := slices.Index(path, envDir), slices.Index(path, scripts); i > j {
		t.Errorf("environment directories should precede the scripts directory: %q", path)
	}

	seen := map[string]bool{}
	for _, dir := range path {
		if seen[dir] {
			t.Errorf("duplicate %q in %q", dir, path)
		}

		seen[dir] = true
	}
}

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "a.ns", "a = 1")
	other := writeScript(t, dir, "b.ns", "b = 2")

	ctx := WithStdio(t.Context(), Stdio{In: strings.NewReader("c = 3\n")})

	sources, err := loadSources(ctx,
		[]string{"-", "a", path, other, "-"}, SearchPath{dir})
	if err != nil {
		t.Fatal(err)
	}

	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name
	}

	if want := []string{path, other, "-"}; !slices.Equal(names, want) {
		t.Fatalf("sources = %q, want %q", names, want)
	}

	if sources[2].Text != "c = 3\n" || !sources[2].IsStdin() {
		t.Errorf("stdin source = %+v", sources[2])
	}

	if sources[0].IsStdin() {
		t.Error("file reported as stdin")
	}
}

func TestLoadSourcesDefaultsToStdin(t *testing.T) {
	ctx := WithStdio(t.Context(), Stdio{In: strings.NewReader("1")})

	sources, err := loadSources(ctx, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(sources) != 1 || !sources[0].IsStdin() || sources[0].Text != "1" {
		t.Errorf("sources = %+v", sources)
	}
}

func TestLoadSourcesMissing(t *testing.T) {
	_, err := loadSources(t.Context(), []string{"nope"}, SearchPath{t.TempDir()})
	if !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("error = %v, want %v", err, ErrScriptNotFound)
	}
}
