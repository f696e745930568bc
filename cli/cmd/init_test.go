package cmd

import (
	"errors"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

type initCLI struct {
	Verbose bool   `help:"Verbose."`
	Level   string `default:"info"  help:"Log level."`
	Pprof   string `help:"Profile." name:"pprof-mode"`

	Run  Run  `cmd:""`
	Init Init `cmd:""`
}

func parseInit(t *testing.T, confPath string, args ...string) (*initCLI, *kong.Context) {
	t.Helper()

	vars := kong.Vars{ConfigIdentifier: confPath}
	maps.Copy(vars, EngineVars())

	var cli initCLI

	parser, err := kong.New(&cli, vars)
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return &cli, ktx
}

func TestInit(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "config.yaml")

	cli, ktx := parseInit(t, confPath, "--verbose", "init")

	if err := cli.Init.Run(WithContext(t.Context(), ktx)); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(confPath)
	if err != nil {
		t.Fatal(err)
	}

	var conf map[string]any
	if err := yaml.Unmarshal(data, &conf); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}

	want := map[string]any{
		"verbose": true,
		"level":   "info",
		"backend": "bignumber",
	}

	for key, val := range want {
		if conf[key] != val {
			t.Errorf("%s = %#v, want %#v\n%s", key, conf[key], val, data)
		}
	}

	for _, key := range []string{"help", "pprof-mode", "output"} {
		if _, ok := conf[key]; ok {
			t.Errorf("%s should not be persisted:\n%s", key, data)
		}
	}

	info, err := os.Stat(confPath)
	if err != nil {
		t.Fatal(err)
	}

	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode = %o, want 600", perm)
	}
}

func TestInitExists(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(confPath, []byte("backend: fraction\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cli, ktx := parseInit(t, confPath, "init")

	err := cli.Init.Run(WithContext(t.Context(), ktx))
	if !errors.Is(err, ErrWriteConfig) || !errors.Is(err, ErrFileExists) {
		t.Fatalf("error = %v, want %v", err, ErrFileExists)
	}

	cli, ktx = parseInit(t, confPath, "init", "--force")

	if err := cli.Init.Run(WithContext(t.Context(), ktx)); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(confPath)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "backend: bignumber") {
		t.Errorf("config not overwritten:\n%s", data)
	}
}
