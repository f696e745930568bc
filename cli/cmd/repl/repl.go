package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/numscript/lang"
	"github.com/ardnew/numscript/log"
	"github.com/ardnew/numscript/number"
)

// editMsg is sent when the transcript was edited and compiles.
type editMsg struct {
	source string
	prog   *lang.Program
}

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a compile
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-compile error.
type editErrorMsg struct{ err error }

const (
	evalPrompt  = "➜ "
	ctrlPrompt  = " :"
	inputPrompt = "? "
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode, or prefix with ':' in eval mode):

  help            Print this cruft
  names           List every bound name
  backend [NAME]  Show or switch the numeric backend (resets the session)
  reset           Discard every binding
  edit            Edit the session transcript in $EDITOR and re-run it
  clear           Clear screen
  quit            Exit REPL

Usage:
  Type statements to run them; bindings persist between lines
  A call to input() prompts with '?' for the value
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
	modeInput // answering a pending input() call
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("3")).
				Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true).
			Underline(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.
				Bold(true).
				Underline(true)
)

var modePrompts = map[inputMode]struct {
	text  string
	style lipgloss.Style
}{
	modeEval:  {evalPrompt, promptStyle},
	modeCtrl:  {ctrlPrompt, ctrlPromptStyle},
	modeInput: {inputPrompt, inputPromptStyle},
}

// echo formats an entered line with the prompt of mode.
func echo(mode inputMode, line string) string {
	p := modePrompts[mode]

	return p.style.Render(p.text) + inputStyle.Render(line)
}

// Script is a named source evaluated before the prompt appears.
type Script struct {
	Name string
	Text string
}

// Config configures a REPL session.
type Config struct {
	// Backend evaluates the session. It must not be nil.
	Backend number.Backend
	// NewBackend constructs a backend by name for the backend command. A nil
	// NewBackend disables switching.
	NewBackend func(name string) (number.Backend, error)
	// Options are applied to every session.
	Options []lang.Option
	// HistoryPath is the history file. Empty keeps history in memory.
	HistoryPath string
	Logger      log.Logger
	// Preload is evaluated in order into the initial session.
	Preload []Script
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	config     Config
	session    *lang.Session
	exec       *lang.Execution // suspended on input, or nil
	execSource string
	transcript []string // eval lines that ran to completion
	input      textinput.Model
	logger     log.Logger
	history    *History
	historyIdx int
	matches    fuzzy.Matches // current fuzzy match results
	candidates []string      // backing candidate list
	wordStart  int           // byte offset of current word start
	wordEnd    int           // byte offset of current word end
	suggIdx    int           // selected candidate index
	tabActive  bool          // whether user is tab-cycling
	preTabText string        // input text before tab-cycling began
	preTabCur  int           // cursor position before tab-cycling began
	width      int           // terminal width for ellipsization
	quitting   bool
	mode       inputMode
	evalText   string
	evalCursor int
	ctrlText   string
	ctrlCursor int
}

// Run starts the REPL.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if cfg.Backend == nil {
		return ErrNoBackend
	}

	cfg.Logger.TraceContext(
		ctx,
		"repl start",
		slog.String("backend", cfg.Backend.Name()),
		slog.String("history", cfg.HistoryPath),
		slog.Int("preload", len(cfg.Preload)),
	)

	session := lang.NewSession(cfg.Backend, cfg.Options...)

	var transcript []string

	for _, s := range cfg.Preload {
		if _, err := session.Eval(ctx, s.Text); err != nil {
			return fmt.Errorf("%w %s: %w", ErrPreload, s.Name, err)
		}

		transcript = append(transcript, strings.TrimRight(s.Text, "\n"))
	}

	history := NewHistory(cfg.HistoryPath)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history",
			slog.String("path", cfg.HistoryPath),
			slog.Any("error", err))
	}

	cfg.Logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, cfg, session, history)
	m.transcript = transcript

	p := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := p.Run()

	if fm, ok := final.(model); ok && fm.exec != nil {
		fm.exec.Stop()
	}

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	cfg Config,
	session *lang.Session,
	history *History,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		config:     cfg,
		session:    session,
		input:      ti,
		logger:     cfg.Logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeEval,
		suggIdx:    -1,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editMsg:
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("statement_count", len(msg.prog.Statements)),
		)

		m.session.Reset()
		m.transcript = nil

		m, cmd := m.start(msg.prog, msg.source)

		return m, tea.Sequence(
			tea.Println(resultStyle.Render("✔ session replaced")),
			cmd,
		)

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(
			errorStyle.Render("🗴 error: " + msg.err.Error()),
		)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	funcCall := detectFunctionCall(input, m.input.Position())

	switch {
	case m.mode == modeInput:
		hint := "input for: " + m.exec.Pending().Statement
		b.WriteString(hintStyle.Render(hint))

	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		hint := "Type a statement or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case funcCall.inCall && m.mode == modeEval && m.signatureHint(funcCall) != "":
		b.WriteString(m.signatureHint(funcCall))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(
			m.session, m.matches, m.suggIdx, m.tabActive, m.width,
		))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) signatureHint(call functionCall) string {
	signature, params := getSignature(m.session, call.name)
	if signature == "" {
		return ""
	}

	return renderSignatureHint(signature, params, call.argIndex)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.mode == modeInput {
			return m.cancelInput()
		}

		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() != "" {
			return m, nil
		}

		if m.mode == modeInput {
			return m.cancelInput()
		}

		m.quitting = true

		return m, tea.Quit

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(+1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp, tea.KeyDown, tea.KeyShiftUp, tea.KeyShiftDown:
		if m.mode == modeInput {
			return m, nil
		}

		dir := -1
		if msg.Type == tea.KeyDown || msg.Type == tea.KeyShiftDown {
			dir = +1
		}

		inMode := msg.Type == tea.KeyShiftUp || msg.Type == tea.KeyShiftDown

		return m.historySeek(dir, inMode), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCur)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeInput {
			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes, tea.KeySpace:
		// Space breaks out of tab-cycling, accepting the candidate.
		if m.tabActive && (msg.Type == tea.KeySpace || msg.String() == " ") {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key (backspace, delete, arrows) edits without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by dir through the current matches.
func (m model) cycle(dir int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	// Single candidate: complete and confirm immediately.
	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + dir + n) % n
	case dir > 0:
		m.suggIdx = 0
	default:
		m.suggIdx = n - 1
	}

	if !m.tabActive {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCur = m.input.Position()
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly one
// candidate remains and the typed word already equals it. Deletions and
// cursor movement pass false so editing never completes unexpectedly.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	candidate := m.matches[0].Str
	if m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	raw := m.input.Value()
	line := strings.TrimSpace(raw)

	if m.mode == modeInput {
		m.input.SetValue("")

		return m.answer(raw)
	}

	if line == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	refreshMatches(&m, false)

	mode := m.mode
	if cmd, ok := strings.CutPrefix(line, ":"); ok && mode == modeEval {
		mode, line = modeCtrl, strings.TrimSpace(cmd)
	}

	_ = m.history.Add(line, mode)
	m.historyIdx = m.history.Len()

	if mode == modeCtrl {
		m.logger.TraceContext(m.ctxFunc(), "repl command",
			slog.String("input", line))

		return m.executeCommand(line)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval",
		slog.String("input", line))

	echoCmd := tea.Println(echo(modeEval, line))

	prog, err := m.session.Compile(m.ctxFunc(), line)
	if err != nil {
		return m, tea.Sequence(echoCmd, tea.Println(renderError(line, err)))
	}

	m, cmd := m.start(prog, line)

	return m, tea.Sequence(echoCmd, cmd)
}

// start begins running prog in the session.
func (m model) start(prog *lang.Program, source string) (model, tea.Cmd) {
	exec := m.session.Start(m.ctxFunc(), prog)
	req, ok := exec.Step()

	return m.advance(exec, source, req, ok)
}

// answer resumes the suspended execution with text.
func (m model) answer(text string) (model, tea.Cmd) {
	exec, source := m.exec, m.execSource
	echoCmd := tea.Println(echo(modeInput, text))

	req, ok := exec.Resume(text)
	m, cmd := m.advance(exec, source, req, ok)

	return m, tea.Sequence(echoCmd, cmd)
}

// cancelInput abandons the suspended execution.
func (m model) cancelInput() (model, tea.Cmd) {
	exec, source := m.exec, m.execSource
	exec.Stop()
	m.input.SetValue("")

	m, cmd := m.advance(exec, source, nil, false)

	return m, cmd
}

// advance suspends on a pending input request, or prints the outcome of a
// finished execution.
func (m model) advance(
	exec *lang.Execution,
	source string,
	req *lang.InputRequest,
	pending bool,
) (model, tea.Cmd) {
	if pending {
		m.logger.TraceContext(m.ctxFunc(), "repl input requested",
			slog.String("statement", req.Statement))

		if m.mode != modeInput {
			m = m.switchToMode(modeInput)
		}

		m.exec, m.execSource = exec, source

		return m, nil
	}

	m.exec, m.execSource = nil, ""
	if m.mode == modeInput {
		m = m.switchToMode(modeEval)
	}

	res, err := exec.Result()

	var lines []string

	if res != nil {
		for _, rec := range res.Records {
			lines = append(lines, resultStyle.Render(rec.String()))
		}
	}

	if err != nil {
		m.logger.TraceContext(m.ctxFunc(), "repl eval result",
			slog.String("error", err.Error()))

		lines = append(lines, renderError(source, err))
	} else {
		m.transcript = append(m.transcript, source)
	}

	if len(lines) == 0 {
		return m, nil
	}

	return m, tea.Println(strings.Join(lines, "\n"))
}

func (m model) executeCommand(line string) (model, tea.Cmd) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return m, nil
	}

	echoCmd := tea.Println(echo(modeCtrl, line))

	cmd, args := parts[0], parts[1:]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoCmd, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoCmd, tea.Println(helpMessage()))

	case "n", "names":
		return m, tea.Sequence(echoCmd, tea.Println(m.listNames()))

	case "r", "reset":
		m.session.Reset()
		m.transcript = nil

		lang.ClearCache()

		return m, tea.Sequence(echoCmd,
			tea.Println(hintStyle.Render("session reset")))

	case "b", "backend":
		return m.switchBackend(echoCmd, args)

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echoCmd, m.handleEdit())

	default:
		return m, tea.Sequence(echoCmd, tea.Println(
			errorStyle.Render("Unknown command: "+cmd+" (try 'help')"),
		))
	}
}

func (m model) switchBackend(echoCmd tea.Cmd, args []string) (model, tea.Cmd) {
	current := m.session.Backend().Name()

	if len(args) == 0 {
		return m, tea.Sequence(echoCmd, tea.Println(
			resultStyle.Render(current)+" "+
				hintStyle.Render("("+strings.Join(number.Names(), ", ")+")"),
		))
	}

	if m.config.NewBackend == nil {
		return m, tea.Sequence(echoCmd, tea.Println(
			errorStyle.Render("error: "+ErrNoBackend.Error())))
	}

	backend, err := m.config.NewBackend(args[0])
	if err != nil {
		return m, tea.Sequence(echoCmd, tea.Println(
			errorStyle.Render("error: "+err.Error())))
	}

	m.session = lang.NewSession(backend, m.config.Options...)
	m.transcript = nil

	m.logger.DebugContext(m.ctxFunc(), "repl backend switched",
		slog.String("from", current),
		slog.String("to", backend.Name()))

	return m, tea.Sequence(echoCmd, tea.Println(
		hintStyle.Render("backend "+backend.Name()+", session reset")))
}

func (m model) handleEdit() tea.Cmd {
	cmd := &editCommand{
		source:  strings.Join(m.transcript, "\n"),
		compile: m.session.Compile,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.prog == nil {
			return editCancelledMsg{}
		}

		return editMsg{source: cmd.edited, prog: cmd.prog}
	})
}

// listNames renders every bound name with its value or signature.
func (m model) listNames() string {
	names := m.session.Names()
	slices.Sort(names)

	width := 0
	for _, name := range names {
		width = max(width, len(name))
	}

	var b strings.Builder

	for _, name := range names {
		v, ok := m.session.Lookup(name)
		if !ok {
			continue
		}

		var preview string

		switch v.Kind {
		case lang.VarNumber:
			preview = v.Value.String()
			if v.Constant {
				preview += " (const)"
			}
		default:
			sig, _ := getSignature(m.session, name)
			preview = v.Kind.String() + " " + sig
		}

		fmt.Fprintf(&b, "  %-*s %s\n", width, name, hintStyle.Render(preview))
	}

	return strings.TrimRight(b.String(), "\n")
}

// historySeek moves through history by dir. With inMode set only entries of
// the current mode are visited; otherwise the mode follows the entry.
func (m model) historySeek(dir int, inMode bool) model {
	n := m.history.Len()

	for i := m.historyIdx + dir; i >= 0 && i < n; i += dir {
		entry, err := m.history.Entry(i)
		if err != nil || inMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	// Moving past the newest entry clears the line.
	if dir > 0 && m.historyIdx < n {
		m.historyIdx = n
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchToMode switches to mode, preserving the eval and control lines.
func (m model) switchToMode(mode inputMode) model {
	switch m.mode {
	case modeEval:
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	case modeCtrl:
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode
	p := modePrompts[mode]
	m.input.Prompt = p.style.Render(p.text)

	switch mode {
	case modeEval:
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	case modeCtrl:
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	default:
		m.input.SetValue("")
	}

	m.tabActive = false
	refreshMatches(&m, false)

	return m
}

// renderError formats err, underlining its location in source when known.
func renderError(source string, err error) string {
	var le *lang.Error
	if !errors.As(err, &le) || !le.Located() {
		return errorStyle.Render("error: " + err.Error())
	}

	offset := min(max(le.Offset(), 0), len(source))
	lineStart := strings.LastIndexByte(source[:offset], '\n') + 1

	lineEnd := strings.IndexByte(source[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(source)
	} else {
		lineEnd += offset
	}

	row := strings.Count(source[:lineStart], "\n") + 1
	col := len([]rune(source[lineStart:offset]))
	span := max(1, min(len([]rune(source[offset:lineEnd])), max(le.Length(), 1)))

	var b strings.Builder

	if row > 1 || lineEnd < len(source) {
		fmt.Fprintf(&b, "%s\n", hintStyle.Render(fmt.Sprintf("line %d:", row)))
	}

	b.WriteString(inputStyle.Render(source[lineStart:lineEnd]))
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", col))
	b.WriteString(errorStyle.Render("^" + strings.Repeat("~", span-1)))
	b.WriteString("\n")
	b.WriteString(errorStyle.Render("error: " + err.Error()))

	return b.String()
}
