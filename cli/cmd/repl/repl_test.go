package repl

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/numscript/lang"
	"github.com/ardnew/numscript/number"
)

func newTestModel(t *testing.T) model {
	t.Helper()

	cfg := Config{
		Backend: number.MustNew(number.BigNumber),
		NewBackend: func(name string) (number.Backend, error) {
			return number.New(name)
		},
	}

	return newModel(t.Context(), cfg, lang.NewSession(cfg.Backend), NewHistory(""))
}

// enter types line and presses Enter.
func enter(m model, line string) model {
	if line != "" {
		m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})

	return m
}

func lookupString(t *testing.T, m model, name string) string {
	t.Helper()

	v, ok := m.session.Lookup(name)
	if !ok {
		t.Fatalf("%s is not bound", name)
	}

	if v.Kind != lang.VarNumber {
		t.Fatalf("%s is a %s", name, v.Kind)
	}

	return v.Value.String()
}

func TestModelEval(t *testing.T) {
	m := newTestModel(t)

	m = enter(m, "x = 2")
	m = enter(m, "y = x * 21")

	if got := lookupString(t, m, "y"); got != "42" {
		t.Errorf("y = %s, want 42", got)
	}

	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	if len(m.transcript) != 2 || m.transcript[1] != "y = x * 21" {
		t.Errorf("transcript = %q", m.transcript)
	}

	if m.history.Len() != 2 {
		t.Errorf("history length = %d, want 2", m.history.Len())
	}
}

func TestModelEvalError(t *testing.T) {
	m := newTestModel(t)

	m = enter(m, "z = nope + 1")

	if _, ok := m.session.Lookup("z"); ok {
		t.Error("z bound after a failed statement")
	}

	if len(m.transcript) != 0 {
		t.Errorf("failed line kept in transcript: %q", m.transcript)
	}

	if m.mode != modeEval {
		t.Errorf("mode = %v, want eval", m.mode)
	}
}

func TestModelInput(t *testing.T) {
	m := newTestModel(t)

	m = enter(m, "y = input() + 1")

	if m.mode != modeInput || m.exec == nil {
		t.Fatalf("mode = %v, exec = %v; want a pending input", m.mode, m.exec)
	}

	if req := m.exec.Pending(); req == nil || req.Statement != "y = input() + 1" {
		t.Fatalf("pending = %+v", req)
	}

	if view := m.View(); !strings.Contains(view, "y = input() + 1") {
		t.Errorf("view does not show the statement:\n%s", view)
	}

	m = enter(m, "3")

	if m.mode != modeEval || m.exec != nil {
		t.Fatalf("mode = %v after answering", m.mode)
	}

	if got := lookupString(t, m, "y"); got != "4" {
		t.Errorf("y = %s, want 4", got)
	}

	// Answers are not recorded in history.
	if m.history.Len() != 1 {
		t.Errorf("history length = %d, want 1", m.history.Len())
	}
}

func TestModelInputCancel(t *testing.T) {
	m := newTestModel(t)

	m = enter(m, "a = input()")
	if m.mode != modeInput {
		t.Fatalf("mode = %v, want input", m.mode)
	}

	exec := m.exec

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})

	if m.mode != modeEval || m.exec != nil || m.quitting {
		t.Fatalf("mode = %v, quitting = %v after cancel", m.mode, m.quitting)
	}

	if _, err := exec.Result(); !errors.Is(err, lang.ErrStopped) {
		t.Errorf("result error = %v, want %v", err, lang.ErrStopped)
	}

	if _, ok := m.session.Lookup("a"); ok {
		t.Error("a bound after cancel")
	}
}

func TestModelCommands(t *testing.T) {
	m := newTestModel(t)
	m = enter(m, "x = 1")

	before, err := lang.Compile(t.Context(), "x = 1")
	if err != nil {
		t.Fatal(err)
	}

	m = enter(m, ":reset")
	if _, ok := m.session.Lookup("x"); ok {
		t.Error("x bound after reset")
	}

	if after, _ := lang.Compile(t.Context(), "x = 1"); after == before {
		t.Error("compiled programs cached across reset")
	}

	if entry, err := m.history.Entry(m.history.Len() - 1); err != nil ||
		entry != (HistoryEntry{"reset", modeCtrl}) {
		t.Errorf("last history entry = %+v, %v", entry, err)
	}

	m = enter(m, ":backend fraction")
	if got := m.session.Backend().Name(); got != number.Fraction {
		t.Errorf("backend = %s, want %s", got, number.Fraction)
	}

	m = enter(m, "h = 1/2 + 1/3")
	if got := lookupString(t, m, "h"); got != "5/6" {
		t.Errorf("h = %s, want 5/6", got)
	}

	m = enter(m, ":backend bogus")
	if got := m.session.Backend().Name(); got != number.Fraction {
		t.Errorf("backend after bad switch = %s", got)
	}

	// Esc toggles into control mode.
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeCtrl {
		t.Fatalf("mode = %v, want ctrl", m.mode)
	}

	m = enter(m, "quit")
	if !m.quitting {
		t.Error("quit did not quit")
	}
}

func TestModelListNames(t *testing.T) {
	m := newTestModel(t)
	m = enter(m, "const answer = 42")
	m = enter(m, "sq(v) = v * v")

	out := m.listNames()

	for _, want := range []string{"answer", "42 (const)", "sq(v)", "sqrt(x)"} {
		if !strings.Contains(out, want) {
			t.Errorf("names output missing %q:\n%s", want, out)
		}
	}
}

func TestModelHistoryNavigation(t *testing.T) {
	m := newTestModel(t)
	m = enter(m, "a = 1")
	m = enter(m, ":names")
	m = enter(m, "b = 2")

	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	m, _ = m.handleKey(up)
	if m.input.Value() != "b = 2" || m.mode != modeEval {
		t.Fatalf("first up = %q (%v)", m.input.Value(), m.mode)
	}

	m, _ = m.handleKey(up)
	if m.input.Value() != "names" || m.mode != modeCtrl {
		t.Fatalf("second up = %q (%v)", m.input.Value(), m.mode)
	}

	m, _ = m.handleKey(down)
	m, _ = m.handleKey(down)

	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("past newest = %q at %d", m.input.Value(), m.historyIdx)
	}

	// Shift+Up stays in the current mode.
	m = m.switchToMode(modeEval)
	m.historyIdx = m.history.Len()

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyShiftUp})
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyShiftUp})

	if m.input.Value() != "a = 1" || m.mode != modeEval {
		t.Errorf("mode-local history = %q (%v)", m.input.Value(), m.mode)
	}
}

func TestModelTabCompletion(t *testing.T) {
	m := newTestModel(t)

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("sqr")})
	if len(m.matches) == 0 {
		t.Fatal("no matches for sqr")
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})

	if got := m.input.Value(); got != "sqrt" {
		t.Errorf("completed = %q, want sqrt", got)
	}
}

func TestRenderError(t *testing.T) {
	_, err := lang.Compile(t.Context(), "1 + (2")
	if err == nil {
		t.Fatal("expected a compile error")
	}

	out := renderError("1 + (2", err)

	if !strings.Contains(out, "1 + (2") || !strings.Contains(out, "^") {
		t.Errorf("located error not underlined:\n%s", out)
	}

	plain := renderError("x", errors.New("boom"))
	if !strings.Contains(plain, "error: boom") || strings.Contains(plain, "^") {
		t.Errorf("unlocated error = %q", plain)
	}

	_, err = lang.Compile(t.Context(), "a = 1\nb = (")
	if err == nil {
		t.Fatal("expected a compile error")
	}

	if out := renderError("a = 1\nb = (", err); !strings.Contains(out, "line 2:") {
		t.Errorf("multi-line error missing row:\n%s", out)
	}
}
