package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/numscript/lang"
	"github.com/ardnew/numscript/number"
)

type streams struct {
	out, err bytes.Buffer
}

func (s *streams) context(t *testing.T, stdin string) context.Context {
	t.Helper()

	return WithStdio(t.Context(), Stdio{
		In:  strings.NewReader(stdin),
		Out: &s.out,
		Err: &s.err,
	})
}

func newRun(output string, scripts ...string) *Run {
	return &Run{
		Engine:  DefaultEngine(),
		Output:  output,
		Indent:  2,
		Scripts: scripts,
	}
}

func TestRunText(t *testing.T) {
	path := writeScript(t, t.TempDir(), "s.ns", "x = 2\nprint twice\nx * 3")

	var s streams
	if err := newRun(OutputText, path).Run(s.context(t, "")); err != nil {
		t.Fatalf("Run: %v\n%s", err, s.err.String())
	}

	want := "x is set to 2\ntwice\n6\n"
	if got := s.out.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunLast(t *testing.T) {
	var s streams

	r := newRun(OutputText)
	r.Last = true

	if err := r.Run(s.context(t, "a = 1\nb = a + 41\nb")); err != nil {
		t.Fatal(err)
	}

	if got := s.out.String(); got != "42\n" {
		t.Errorf("output = %q, want %q", got, "42\n")
	}
}

func TestRunBackends(t *testing.T) {
	tests := []struct {
		backend string
		source  string
		want    string
	}{
		{number.BigNumber, "2^10 / 4", "256"},
		{number.Fraction, "1/3 + 1/6", "1/2"},
		{number.Decimal, "0.1 + 0.2", "0.3"},
		{number.Complex, "sqrt(-4)", "2i"},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			var s streams

			r := newRun(OutputText)
			r.Backend = tt.backend
			r.Last = true

			if err := r.Run(s.context(t, tt.source)); err != nil {
				t.Fatalf("Run: %v\n%s", err, s.err.String())
			}

			if got := strings.TrimSpace(s.out.String()); got != tt.want {
				t.Errorf("%s: %q = %q, want %q", tt.backend, tt.source, got, tt.want)
			}
		})
	}
}

type jsonResult struct {
	Backend string `json:"backend"`
	Records []struct {
		Kind   string   `json:"kind"`
		Input  string   `json:"input"`
		Output []string `json:"output"`
	} `json:"records"`
}

func TestRunStructured(t *testing.T) {
	dir := t.TempDir()
	a := writeScript(t, dir, "a.ns", "x = 1")
	b := writeScript(t, dir, "b.ns", "2 + 2")

	t.Run("json single", func(t *testing.T) {
		var s streams
		if err := newRun(OutputJSON, a).Run(s.context(t, "")); err != nil {
			t.Fatal(err)
		}

		var res jsonResult
		if err := json.Unmarshal(s.out.Bytes(), &res); err != nil {
			t.Fatalf("unmarshal %q: %v", s.out.String(), err)
		}

		if res.Backend != number.BigNumber || len(res.Records) != 1 ||
			res.Records[0].Input != "x = 1" {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("json multiple", func(t *testing.T) {
		var s streams
		if err := newRun(OutputJSON, a, b).Run(s.context(t, "")); err != nil {
			t.Fatal(err)
		}

		var res []jsonResult
		if err := json.Unmarshal(s.out.Bytes(), &res); err != nil {
			t.Fatalf("unmarshal %q: %v", s.out.String(), err)
		}

		if len(res) != 2 || res[1].Records[0].Output[0] != "4" {
			t.Errorf("results = %+v", res)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var s streams
		if err := newRun(OutputYAML, b).Run(s.context(t, "")); err != nil {
			t.Fatal(err)
		}

		var res struct {
			Backend string `yaml:"backend"`
			Records []struct {
				Input  string   `yaml:"input"`
				Output []string `yaml:"output"`
			} `yaml:"records"`
		}

		if err := yaml.Unmarshal(s.out.Bytes(), &res); err != nil {
			t.Fatalf("unmarshal %q: %v", s.out.String(), err)
		}

		if res.Backend != number.BigNumber || len(res.Records) != 1 ||
			res.Records[0].Input != "2 + 2" {
			t.Errorf("result = %+v", res)
		}
	})
}

func TestRunInput(t *testing.T) {
	path := writeScript(t, t.TempDir(), "in.ns", "a = input()\nb = input()\na * b")

	var s streams

	r := newRun(OutputText, path)
	r.Last = true

	if err := r.Run(s.context(t, "6\n7\n")); err != nil {
		t.Fatalf("Run: %v\n%s", err, s.err.String())
	}

	if got := s.out.String(); got != "42\n" {
		t.Errorf("output = %q, want 42", got)
	}

	if prompt := s.err.String(); !strings.Contains(prompt, "a = input() ? ") ||
		!strings.Contains(prompt, "b = input() ? ") {
		t.Errorf("prompts = %q", prompt)
	}
}

func TestRunInputErrors(t *testing.T) {
	t.Run("exhausted", func(t *testing.T) {
		path := writeScript(t, t.TempDir(), "in.ns", "a = input()")

		var s streams

		err := newRun(OutputText, path).Run(s.context(t, ""))
		if !errors.Is(err, ErrExecute) || !errors.Is(err, lang.ErrNoInput) {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("script on stdin", func(t *testing.T) {
		var s streams

		err := newRun(OutputText).Run(s.context(t, "a = input()"))
		if !errors.Is(err, ErrStdinInput) {
			t.Errorf("error = %v, want %v", err, ErrStdinInput)
		}
	})
}

func TestRunError(t *testing.T) {
	path := writeScript(t, t.TempDir(), "bad.ns", "x = 1\ny = x + nope")

	var s streams

	err := newRun(OutputText, path).Run(s.context(t, ""))
	if !errors.Is(err, ErrExecute) || !errors.Is(err, lang.ErrUndefinedVariable) {
		t.Fatalf("error = %v", err)
	}

	if got := s.out.String(); got != "x is set to 1\n" {
		t.Errorf("partial output = %q", got)
	}

	if msg := s.err.String(); !strings.Contains(msg, "bad.ns:2:9:") {
		t.Errorf("rendered error = %q", msg)
	}
}

func TestRunTimeout(t *testing.T) {
	var s streams

	r := newRun(OutputText)
	r.Timeout = 20 * time.Millisecond

	err := r.Run(s.context(t, "n = 0\nloop { n += 1 }"))
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("error = %v, want %v", err, ErrTimeout)
	}
}

func TestRunBadBackend(t *testing.T) {
	var s streams

	r := newRun(OutputText)
	r.Backend = "abacus"

	if err := r.Run(s.context(t, "1")); !errors.Is(err, ErrBackend) {
		t.Errorf("error = %v, want %v", err, ErrBackend)
	}
}

func TestFmt(t *testing.T) {
	var s streams

	f := &Fmt{Indent: 2}
	if err := f.Run(s.context(t, "x=1+2*3\nf(a,b)=max(a,b)")); err != nil {
		t.Fatal(err)
	}

	if got, want := s.out.String(), "x = 1 + 2 * 3\nf(a, b) = max(a, b)\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestFmtWrite(t *testing.T) {
	path := writeScript(t, t.TempDir(), "f.ns", "y=-3*(2)")

	var s streams

	f := &Fmt{Indent: 2, Write: true, Scripts: []string{path}}
	if err := f.Run(s.context(t, "")); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) == "y=-3*(2)" || !strings.HasPrefix(string(data), "y = ") {
		t.Errorf("file not rewritten: %q", data)
	}

	if s.out.Len() != 0 {
		t.Errorf("--write printed %q", s.out.String())
	}
}

func TestFmtWriteComments(t *testing.T) {
	t.Run("kept", func(t *testing.T) {
		path := writeScript(t, t.TempDir(), "area.ns", "# area of a circle\nr=2 # radius\n\n\nπ*r^2\n")

		var s streams

		f := &Fmt{Indent: 2, Write: true, Scripts: []string{path}}
		if err := f.Run(s.context(t, "")); err != nil {
			t.Fatal(err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}

		if want := "# area of a circle\nr = 2 # radius\n\nπ * r ^ 2\n"; string(data) != want {
			t.Errorf("file = %q, want %q", data, want)
		}
	})

	t.Run("inside a statement", func(t *testing.T) {
		const text = "loop {\n  # forever\n  break\n}\n"

		path := writeScript(t, t.TempDir(), "loop.ns", text)

		var s streams

		err := (&Fmt{Indent: 2, Write: true, Scripts: []string{path}}).Run(s.context(t, ""))
		if !errors.Is(err, ErrFormat) || !errors.Is(err, lang.ErrCommentPlacement) {
			t.Fatalf("error = %v, want %v", err, lang.ErrCommentPlacement)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}

		if string(data) != text {
			t.Errorf("file changed to %q", data)
		}

		if !strings.Contains(s.err.String(), "^") {
			t.Errorf("error not rendered: %q", s.err.String())
		}
	})
}

func TestFmtCompileError(t *testing.T) {
	var s streams

	err := (&Fmt{Indent: 2}).Run(s.context(t, "x = (1"))
	if !errors.Is(err, ErrCompile) {
		t.Errorf("error = %v, want %v", err, ErrCompile)
	}

	if !strings.Contains(s.err.String(), "^") {
		t.Errorf("error not rendered: %q", s.err.String())
	}
}

func TestTokens(t *testing.T) {
	t.Run("flat", func(t *testing.T) {
		var s streams

		cmd := &Tokens{DumpOptions: DumpOptions{Output: OutputJSON, Script: "-"}}
		if err := cmd.Run(s.context(t, "f(1)")); err != nil {
			t.Fatal(err)
		}

		var toks []map[string]any
		if err := json.Unmarshal(s.out.Bytes(), &toks); err != nil {
			t.Fatalf("unmarshal %q: %v", s.out.String(), err)
		}

		if len(toks) != 4 {
			t.Errorf("token count = %d, want 4: %s", len(toks), s.out.String())
		}
	})

	t.Run("grouped", func(t *testing.T) {
		var s streams

		cmd := &Tokens{
			DumpOptions: DumpOptions{Output: OutputJSON, Script: "-"},
			Grouped:     true,
		}
		if err := cmd.Run(s.context(t, "f(1)")); err != nil {
			t.Fatal(err)
		}

		var toks []map[string]any
		if err := json.Unmarshal(s.out.Bytes(), &toks); err != nil {
			t.Fatalf("unmarshal %q: %v", s.out.String(), err)
		}

		if len(toks) != 1 {
			t.Errorf("grouped token count = %d, want 1: %s", len(toks), s.out.String())
		}
	})

	t.Run("unbalanced", func(t *testing.T) {
		var s streams

		cmd := &Tokens{
			DumpOptions: DumpOptions{Output: OutputJSON, Script: "-"},
			Grouped:     true,
		}
		if err := cmd.Run(s.context(t, "f(1")); !errors.Is(err, ErrCompile) {
			t.Errorf("error = %v, want %v", err, ErrCompile)
		}
	})
}

func TestParse(t *testing.T) {
	var s streams

	cmd := &Parse{DumpOptions{Output: OutputYAML, Indent: 2, Script: "-"}}
	if err := cmd.Run(s.context(t, "x = 1\nprint hi")); err != nil {
		t.Fatal(err)
	}

	out := s.out.String()
	if !strings.Contains(out, "x = 1") || !strings.Contains(out, "print hi") {
		t.Errorf("parse output missing statement sources:\n%s", out)
	}
}
