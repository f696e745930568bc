package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultIndent is the indent width used by [Program.Format] when none is
// given.
const DefaultIndent = 2

// Format writes the program in canonical numscript syntax. Compound
// assignments are written in their expanded form.
//
// Comments between top-level statements keep their own lines, a comment
// ending a statement's line stays on that line, and runs of blank lines
// collapse to one. A comment inside a statement fails with
// [ErrCommentPlacement] and nothing is written.
func (p *Program) Format(_ context.Context, w io.Writer, indent int) error {
	if indent <= 0 {
		indent = DefaultIndent
	}

	f := formatter{program: p, unit: strings.Repeat(" ", indent)}
	if err := f.top(p.Statements, Comments(p.Source)); err != nil {
		return err
	}

	_, err := io.WriteString(w, f.sb.String())

	return err
}

// FormatJSON writes v as JSON to the writer.
func FormatJSON(_ context.Context, w io.Writer, v any, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes v as YAML to the writer.
func FormatYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

type formatter struct {
	program *Program
	unit    string
	sb      strings.Builder
}

// top renders the top-level statements with the comments and blank lines
// around them. An if statement and its else branches form one unit.
func (f *formatter) top(stmts []Statement, comments []Comment) error {
	src := f.program.Source
	pos, wrote := 0, false

	for i := 0; i < len(stmts); {
		j := i + 1
		for j < len(stmts) && (stmts[j].Kind == StmtElse || stmts[j].Kind == StmtElseIf) {
			j++
		}

		start, end := stmts[i].Index, stmts[j-1].End

		for _, c := range comments {
			if c.Index >= start && c.Index < end {
				return ErrCommentPlacement.At(c.Index, c.End-c.Index)
			}
		}

		if f.gap(src[:start], pos, comments, &wrote) && wrote {
			f.sb.WriteByte('\n')
		}

		for k := i; k < j; k++ {
			if k > i {
				f.sb.WriteByte(' ')
			}

			f.statement(&stmts[k], 0)
		}

		pos = len(src)
		if line := strings.IndexByte(src[end:], '\n'); line >= 0 {
			pos = end + line
		}

		if j < len(stmts) && stmts[j].Index < pos {
			pos = stmts[j].Index
		}

		for _, c := range comments {
			if c.Index >= end && c.Index < pos {
				f.sb.WriteString(" " + c.Text)
			}
		}

		f.sb.WriteByte('\n')

		wrote = true
		i = j
	}

	f.gap(src, pos, comments, &wrote)

	return nil
}

// gap writes the comment lines of src[pos:] and reports whether a blank line
// is pending before the next statement.
func (f *formatter) gap(src string, pos int, comments []Comment, wrote *bool) bool {
	blank := false

	for pos < len(src) {
		lineEnd, tail := len(src), true
		if line := strings.IndexByte(src[pos:], '\n'); line >= 0 {
			lineEnd, tail = pos+line, false
		}

		commented := false

		for _, c := range comments {
			if c.Index >= pos && c.Index < lineEnd {
				if blank && *wrote {
					f.sb.WriteByte('\n')
				}

				f.sb.WriteString(c.Text + "\n")
				*wrote, blank, commented = true, false, true
			}
		}

		if !commented && !tail && pos > 0 && src[pos-1] == '\n' &&
			strings.Trim(src[pos:lineEnd], blankChars+";") == "" {
			blank = true
		}

		pos = lineEnd + 1
	}

	return blank
}

func (f *formatter) block(stmts []Statement, depth int) {
	pad := strings.Repeat(f.unit, depth)

	for i := range stmts {
		st := &stmts[i]

		if st.Kind == StmtElse || st.Kind == StmtElseIf {
			f.sb.WriteByte(' ')
		} else {
			f.sb.WriteString(pad)
		}

		f.statement(st, depth)

		if i+1 < len(stmts) {
			if next := stmts[i+1].Kind; next == StmtElse || next == StmtElseIf {
				continue
			}
		}

		f.sb.WriteByte('\n')
	}
}

// inline renders stmts on one line, as required inside function bodies and
// curly expressions.
func (f *formatter) inline(stmts []Statement) string {
	sub := formatter{program: f.program, unit: f.unit}

	for i := range stmts {
		if i > 0 {
			if k := stmts[i].Kind; k == StmtElse || k == StmtElseIf {
				sub.sb.WriteByte(' ')
			} else {
				sub.sb.WriteString("; ")
			}
		}

		sub.statement(&stmts[i], -1)
	}

	return sub.sb.String()
}

// body renders a control-flow block. A negative depth renders it inline.
func (f *formatter) body(stmts []Statement, depth int) {
	if len(stmts) == 0 {
		f.sb.WriteString("{}")

		return
	}

	if depth < 0 {
		f.sb.WriteString("{ " + f.inline(stmts) + " }")

		return
	}

	f.sb.WriteString("{\n")
	f.block(stmts, depth+1)
	f.sb.WriteString(strings.Repeat(f.unit, depth) + "}")
}

func (f *formatter) statement(st *Statement, depth int) {
	w := f.sb.WriteString

	switch st.Kind {
	case StmtSetVariable:
		switch {
		case st.Constant:
			w("const ")
		case st.New:
			w("let ")
		}

		w(st.Name.Value + " = " + f.tokens(st.Expr))

	case StmtSetFunction:
		w(st.Signature() + " = ")

		if st.Body.Block != nil {
			w(f.inline(st.Body.Block))
		} else {
			w(f.tokens(st.Body.Expr))
		}

	case StmtInline:
		w(f.tokens(st.Expr))

	case StmtIf:
		w("if " + f.tokens(st.Expr) + " ")
		f.body(st.Block, depth)

	case StmtElseIf:
		w("else if " + f.tokens(st.Expr) + " ")
		f.body(st.Block, depth)

	case StmtElse:
		w("else ")
		f.body(st.Block, depth)

	case StmtRepeatUntil:
		w("repeat until " + f.tokens(st.Expr) + " ")
		f.body(st.Block, depth)

	case StmtRepeatTimes:
		w("repeat " + f.tokens(st.Expr) + " times ")
		f.body(st.Block, depth)

	case StmtRepeatTimesWith:
		w("repeat " + f.tokens(st.Expr) + " times with " + st.Var.Value + " ")
		f.body(st.Block, depth)

	case StmtLoop:
		w("loop ")
		f.body(st.Block, depth)

	case StmtReturn:
		w("return " + f.tokens(st.Expr))

	case StmtBreak:
		w("break")

	case StmtPrint, StmtThrow:
		w(st.Keyword.Value)

		if st.Text != "" {
			w(" " + st.Text)
		}
	}
}

// tokens renders an expression run with single spaces between operands and
// binary operators.
func (f *formatter) tokens(toks []Token) string {
	var sb strings.Builder

	toks = stripNewlines(toks)
	for i, tok := range toks {
		if i > 0 && spaced(toks, i) {
			sb.WriteByte(' ')
		}

		sb.WriteString(f.token(tok))
	}

	return sb.String()
}

// spaced reports whether a space separates toks[i] from its predecessor.
func spaced(toks []Token, i int) bool {
	tok, prev := toks[i], toks[i-1]

	switch {
	case tok.IsSymbol(","), tok.Is(KindOperator, "!"):
		return false
	case prev.Kind == KindOperator && (prev.Value == "+" || prev.Value == "-"):
		// unary sign
		return !(i == 1 || toks[i-2].Kind == KindOperator || toks[i-2].IsSymbol(","))
	}

	return true
}

func (f *formatter) token(tok Token) string {
	switch {
	case tok.Kind == KindCall:
		return tok.Name.Value + "(" + f.tokens(tok.Args.Children) + ")"
	case tok.IsBlock():
		stmts, err := f.program.block(tok)
		if err != nil || len(stmts) == 0 {
			return "{}"
		}

		return "{ " + f.inline(stmts) + " }"
	case tok.Kind == KindGroup:
		return "(" + f.tokens(tok.Children) + ")"
	}

	return tok.Value
}
