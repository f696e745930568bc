package log

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// theme holds the styles used by the pretty handlers. Styles render through
// a renderer bound to the output, so color is dropped when the output is not
// a terminal.
type theme struct {
	key, str, num, yes, no, dur, when, null lipgloss.Style

	trace, debug, info, warn, fail lipgloss.Style
}

func newTheme(w io.Writer) *theme {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &theme{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		yes:  fg("2"),
		no:   fg("1"),
		dur:  fg("5"),
		when: fg("4"),
		null: fg("8"),

		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2").Bold(true),
		warn:  fg("3").Bold(true),
		fail:  fg("1").Bold(true),
	}
}

func (t *theme) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return t.fail
	case l >= slog.LevelWarn:
		return t.warn
	case l >= slog.LevelInfo:
		return t.info
	case l >= slog.LevelDebug:
		return t.debug
	default:
		return t.trace
	}
}

// scope is a group opened with WithGroup and the attributes added inside it.
type scope struct {
	name  string
	attrs []slog.Attr
}

// prettyBase carries the state shared by both pretty handlers.
type prettyBase struct {
	opts   slog.HandlerOptions
	theme  *theme
	mu     *sync.Mutex
	w      io.Writer
	scopes []scope // scopes[0] is the unnamed root
}

func newPrettyBase(w io.Writer, opts *slog.HandlerOptions) prettyBase {
	return prettyBase{
		opts:   *opts,
		theme:  newTheme(w),
		mu:     &sync.Mutex{},
		w:      w,
		scopes: []scope{{}},
	}
}

func (b prettyBase) enabled(level slog.Level) bool {
	threshold := slog.LevelInfo
	if b.opts.Level != nil {
		threshold = b.opts.Level.Level()
	}

	return level >= threshold
}

func (b prettyBase) withAttrs(attrs []slog.Attr) prettyBase {
	if len(attrs) == 0 {
		return b
	}

	b.scopes = slices.Clone(b.scopes)
	last := &b.scopes[len(b.scopes)-1]
	last.attrs = append(slices.Clone(last.attrs), attrs...)

	return b
}

func (b prettyBase) withGroup(name string) prettyBase {
	if name == "" {
		return b
	}

	b.scopes = append(slices.Clone(b.scopes), scope{name: name})

	return b
}

// attrs nests the record's attributes inside the open groups. Groups left
// empty are omitted.
func (b prettyBase) attrs(r slog.Record) []slog.Attr {
	n := len(b.scopes) - 1

	inner := slices.Clone(b.scopes[n].attrs)
	r.Attrs(func(a slog.Attr) bool {
		inner = append(inner, a)

		return true
	})

	for i := n; i > 0; i-- {
		outer := slices.Clone(b.scopes[i-1].attrs)
		if len(inner) > 0 {
			outer = append(outer, slog.Attr{
				Key:   b.scopes[i].name,
				Value: slog.GroupValue(inner...),
			})
		}

		inner = outer
	}

	return flatten(inner)
}

// header returns the built-in time, level, source, and message attributes
// after ReplaceAttr.
func (b prettyBase) header(r slog.Record) []slog.Attr {
	out := make([]slog.Attr, 0, 4)

	add := func(a slog.Attr) {
		if b.opts.ReplaceAttr != nil {
			a = b.opts.ReplaceAttr(nil, a)
		}

		if a.Key != "" {
			out = append(out, a)
		}
	}

	if !r.Time.IsZero() {
		add(slog.Time(slog.TimeKey, r.Time))
	}

	add(slog.Any(slog.LevelKey, r.Level))

	if b.opts.AddSource {
		if src := r.Source(); src != nil {
			add(slog.String(slog.SourceKey,
				fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line)))
		}
	}

	add(slog.String(slog.MessageKey, r.Message))

	return out
}

func (b prettyBase) write(p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.w.Write(p)

	return err
}

// flatten resolves LogValuers, drops empty attributes and groups, and
// inlines groups with empty keys.
func flatten(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))

	for _, a := range attrs {
		a.Value = a.Value.Resolve()

		if a.Equal(slog.Attr{}) {
			continue
		}

		if a.Value.Kind() != slog.KindGroup {
			out = append(out, a)

			continue
		}

		group := flatten(a.Value.Group())

		switch {
		case len(group) == 0:
		case a.Key == "":
			out = append(out, group...)
		default:
			out = append(out, slog.Attr{Key: a.Key, Value: slog.GroupValue(group...)})
		}
	}

	return out
}

// prettyTextHandler writes one line of key=value pairs per record with
// unquoted values, dim keys, and a colored level.
type prettyTextHandler struct{ prettyBase }

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyTextHandler {
	return &prettyTextHandler{newPrettyBase(w, opts)}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	for _, a := range h.header(r) {
		switch a.Key {
		case slog.LevelKey:
			h.field(&sb, a.Key, h.theme.level(r.Level).Render(a.Value.String()))
		case slog.MessageKey:
			h.field(&sb, a.Key, a.Value.String())
		default:
			h.attr(&sb, "", a)
		}
	}

	for _, a := range h.attrs(r) {
		h.attr(&sb, "", a)
	}

	sb.WriteByte('\n')

	return h.write([]byte(sb.String()))
}

func (h *prettyTextHandler) field(sb *strings.Builder, key, value string) {
	if sb.Len() > 0 {
		sb.WriteByte(' ')
	}

	sb.WriteString(h.theme.key.Render(key + "="))
	sb.WriteString(value)
}

func (h *prettyTextHandler) attr(sb *strings.Builder, prefix string, a slog.Attr) {
	if a.Value.Kind() == slog.KindGroup {
		for _, g := range a.Value.Group() {
			h.attr(sb, prefix+a.Key+".", g)
		}

		return
	}

	h.field(sb, prefix+a.Key, h.value(a.Value))
}

func (h *prettyTextHandler) value(v slog.Value) string {
	t := h.theme

	switch v.Kind() {
	case slog.KindString:
		return t.str.Render(v.String())
	case slog.KindInt64:
		return t.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return t.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return t.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return t.yes.Render("true")
		}

		return t.no.Render("false")
	case slog.KindDuration:
		return t.dur.Render(v.Duration().String())
	case slog.KindTime:
		return t.when.Render(v.Time().Format(time.RFC3339))
	}

	if v.Any() == nil {
		return t.null.Render("<nil>")
	}

	return t.str.Render(v.String())
}

// prettyJSONHandler writes each record as an indented JSON object with
// groups as nested objects.
type prettyJSONHandler struct{ prettyBase }

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyJSONHandler {
	return &prettyJSONHandler{newPrettyBase(w, opts)}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	attrs := append(h.header(r), h.attrs(r)...)

	h.object(&sb, attrs, 0, r.Level)
	sb.WriteByte('\n')

	return h.write([]byte(sb.String()))
}

func (h *prettyJSONHandler) object(
	sb *strings.Builder,
	attrs []slog.Attr,
	depth int,
	level slog.Level,
) {
	pad := strings.Repeat("  ", depth)

	sb.WriteString("{\n")

	for i, a := range attrs {
		sb.WriteString(pad + "  ")
		sb.WriteString(h.theme.key.Render(strconv.Quote(a.Key)))
		sb.WriteString(": ")

		switch {
		case a.Value.Kind() == slog.KindGroup:
			h.object(sb, a.Value.Group(), depth+1, level)
		case depth == 0 && a.Key == slog.LevelKey:
			sb.WriteString(h.theme.level(level).Render(strconv.Quote(a.Value.String())))
		default:
			sb.WriteString(h.value(a.Value))
		}

		if i < len(attrs)-1 {
			sb.WriteByte(',')
		}

		sb.WriteByte('\n')
	}

	sb.WriteString(pad + "}")
}

func (h *prettyJSONHandler) value(v slog.Value) string {
	t := h.theme

	switch v.Kind() {
	case slog.KindString:
		return t.str.Render(strconv.Quote(v.String()))
	case slog.KindInt64:
		return t.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return t.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		data, err := json.Marshal(v.Float64())
		if err != nil {
			return t.null.Render("null")
		}

		return t.num.Render(string(data))
	case slog.KindBool:
		if v.Bool() {
			return t.yes.Render("true")
		}

		return t.no.Render("false")
	case slog.KindDuration:
		return t.dur.Render(strconv.Quote(v.Duration().String()))
	case slog.KindTime:
		return t.when.Render(strconv.Quote(v.Time().Format(time.RFC3339Nano)))
	}

	switch x := v.Any().(type) {
	case nil:
		return t.null.Render("null")
	case error:
		return t.str.Render(strconv.Quote(x.Error()))
	case fmt.Stringer:
		return t.str.Render(strconv.Quote(x.String()))
	}

	data, err := json.Marshal(v.Any())
	if err != nil {
		return t.str.Render(strconv.Quote(fmt.Sprint(v.Any())))
	}

	return t.str.Render(string(data))
}
