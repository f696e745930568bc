package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestLogger_ZeroValueDiscards(t *testing.T) {
	var logger Logger

	logger.Info("nothing")
	logger.TraceContext(t.Context(), "nothing", slog.Int("n", 1))

	if logger.Level() != DefaultLevel || logger.Format() != DefaultFormat {
		t.Error("zero logger does not report defaults")
	}

	if logger.Enabled(t.Context(), LevelError) {
		t.Error("zero logger reports enabled")
	}

	if got := logger.With(slog.String("k", "v")); got.Logger != nil {
		t.Error("With on zero logger created a handler")
	}
}

func TestLogger_Make_Defaults(t *testing.T) {
	logger := Make(&bytes.Buffer{})

	if logger.Level() != LevelInfo {
		t.Errorf("level = %v, want info", logger.Level())
	}

	if logger.Format() != FormatText {
		t.Errorf("format = %v, want text", logger.Format())
	}

	if logger.caller {
		t.Error("caller enabled by default")
	}
}

func TestLogger_LevelFilters(t *testing.T) {
	tests := []struct {
		level Level
		log   func(Logger)
		want  bool
	}{
		{LevelInfo, func(l Logger) { l.Debug("m") }, false},
		{LevelInfo, func(l Logger) { l.Info("m") }, true},
		{LevelDebug, func(l Logger) { l.Trace("m") }, false},
		{LevelTrace, func(l Logger) { l.Trace("m") }, true},
		{LevelError, func(l Logger) { l.Warn("m") }, false},
		{LevelError, func(l Logger) { l.Error("m") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(Make(&buf, WithLevel(tt.level)))

			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("logged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithPretty(false), WithLevel(LevelTrace))
	logger.Trace("deep", slog.String("key", "value"))

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}

	if got["msg"] != "deep" || got["key"] != "value" || got["level"] != "TRACE" {
		t.Errorf("record = %v", got)
	}
}

func TestLogger_TimeLayout(t *testing.T) {
	tests := []struct {
		layout string
		check  func(string) bool
	}{
		{"RFC3339", func(s string) bool { return strings.Contains(s, "time=") && strings.Contains(s, "T") }},
		{"kitchen", func(s string) bool { return strings.Contains(s, "M ") }},
		{"none", func(s string) bool { return !strings.Contains(s, "time=") }},
		{"", func(s string) bool { return !strings.Contains(s, "time=") }},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			var buf bytes.Buffer

			Make(&buf, WithTimeLayout(tt.layout), WithPretty(false)).Info("m")

			if !tt.check(buf.String()) {
				t.Errorf("unexpected output for layout %q: %s", tt.layout, buf.String())
			}
		})
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true)).Info("here")

	if !strings.Contains(buf.String(), "source=log_test.go:") {
		t.Errorf("caller is not the test: %s", buf.String())
	}
}

func TestLogger_Wrap(t *testing.T) {
	var first, second bytes.Buffer

	base := Make(&first, WithLevel(LevelWarn))
	wrapped := base.Wrap(WithOutput(&second), WithLevel(LevelDebug))

	wrapped.Debug("to second")
	base.Debug("dropped")

	if first.Len() != 0 {
		t.Errorf("base logger wrote: %s", first.String())
	}

	if !strings.Contains(second.String(), "to second") {
		t.Errorf("wrapped logger did not write: %s", second.String())
	}

	if base.Level() != LevelWarn {
		t.Error("Wrap changed the base logger")
	}
}

func TestLogger_WithAttrsAndGroups(t *testing.T) {
	for _, pretty := range []bool{true, false} {
		t.Run(map[bool]string{true: "pretty", false: "plain"}[pretty], func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf, WithPretty(pretty), WithTimeLayout("none")).
				With(slog.String("component", "runner")).
				WithGroup("stmt").
				With(slog.Int("index", 3))

			logger.Info("executed", slog.String("kind", "print"))

			out := buf.String()
			for _, want := range []string{"component=runner", "stmt.index=3", "stmt.kind=print"} {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q: %s", want, out)
				}
			}
		})
	}
}

type located struct{ offset int }

func (l located) LogValue() slog.Value {
	return slog.GroupValue(slog.String("error", "bad"), slog.Int("offset", l.offset))
}

func TestPrettyText_ResolvesLogValuer(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithTimeLayout("none")).Error("failed", slog.Any("err", located{7}))

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "msg=failed") {
		t.Errorf("missing header: %s", out)
	}

	if !strings.Contains(out, "err.error=bad") || !strings.Contains(out, "err.offset=7") {
		t.Errorf("LogValuer not expanded: %s", out)
	}
}

func TestPrettyJSON_IsValid(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none")).
		WithGroup("run").
		Info("done",
			slog.Any("err", errors.New(`quote " inside`)),
			slog.Any("where", located{2}),
			slog.Bool("ok", true),
			slog.Float64("ratio", 0.5))

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("pretty JSON is not JSON: %v\n%s", err, buf.String())
	}

	run, ok := got["run"].(map[string]any)
	if !ok {
		t.Fatalf("group not nested: %v", got)
	}

	if run["err"] != `quote " inside` || run["ok"] != true || run["ratio"] != 0.5 {
		t.Errorf("group = %v", run)
	}

	if where, ok := run["where"].(map[string]any); !ok || where["offset"] != float64(2) {
		t.Errorf("where = %v", run["where"])
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithTimeLayout("none"))

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Go(func() {
			logger.With(slog.Int("worker", i)).Info("tick")
		})
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "\n"); n != 32 {
		t.Errorf("got %d lines, want 32", n)
	}
}

func TestDefaultLogger(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithFormat(FormatJSON), WithPretty(false)))
	Config(WithLevel(LevelDebug))

	tests := []struct {
		fn    func(string, ...slog.Attr)
		level string
	}{
		{Debug, "DEBUG"},
		{Info, "INFO"},
		{Warn, "WARN"},
		{Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.fn("message", slog.String("key", "value"))

			out := buf.String()
			if !strings.Contains(out, `"level":"`+tt.level+`"`) || !strings.Contains(out, `"key":"value"`) {
				t.Errorf("output = %s", out)
			}
		})
	}
}

func TestLevelAndFormatNames(t *testing.T) {
	var levels []string
	for name := range Levels() {
		levels = append(levels, name)
	}

	if got := strings.Join(levels, ","); got != "trace,debug,info,warn,error" {
		t.Errorf("Levels() = %s", got)
	}

	var formats []string
	for name := range Formats() {
		formats = append(formats, name)
	}

	if got := strings.Join(formats, ","); got != "text,json" {
		t.Errorf("Formats() = %s", got)
	}

	for _, name := range levels {
		if got := ParseLevel(name).String(); got != name {
			t.Errorf("ParseLevel(%q) = %s", name, got)
		}
	}

	if got := Level(2).String(); got != "Level(2)" {
		t.Errorf("unnamed level = %s", got)
	}
}
