package lang

import (
	"errors"
	"reflect"
	"slices"
	"testing"
)

func parse(t *testing.T, source string, strict bool) ([]Statement, error) {
	t.Helper()

	grouped, err := Group(source, Tokenize(source), strict)
	if err != nil {
		return nil, err
	}

	return Parse(source, grouped, strict)
}

func kinds(stmts []Statement) []StatementKind {
	out := make([]StatementKind, len(stmts))
	for i, st := range stmts {
		out[i] = st.Kind
	}

	return out
}

func TestParseKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []StatementKind
	}{
		{"assignment", "x = 1", []StatementKind{StmtSetVariable}},
		{"let", "let x = 1", []StatementKind{StmtSetVariable}},
		{"const", "const x = 1", []StatementKind{StmtSetVariable}},
		{"increment", "x++", []StatementKind{StmtSetVariable}},
		{"compound", "x *= 2 + 1", []StatementKind{StmtSetVariable}},
		{"function", "f(a, b) = a + b", []StatementKind{StmtSetFunction}},
		{"inline", "1 + 2", []StatementKind{StmtInline}},
		{"call", "max(1, 2)", []StatementKind{StmtInline}},
		{
			"if chain",
			"if x { 1 } else if y { 2 } else { 3 }",
			[]StatementKind{StmtIf, StmtElseIf, StmtElse},
		},
		{"repeat until", "repeat until x > 3 { x++ }", []StatementKind{StmtRepeatUntil}},
		{"repeat times", "repeat 3 times { x++ }", []StatementKind{StmtRepeatTimes}},
		{"repeat with", "repeat n + 1 times with i { x += i }", []StatementKind{StmtRepeatTimesWith}},
		{"loop", "loop { break }", []StatementKind{StmtLoop}},
		{"return", "return 1", []StatementKind{StmtReturn}},
		{"print", "print hello, world", []StatementKind{StmtPrint}},
		{"throw", "throw bad input", []StatementKind{StmtThrow}},
		{
			"separators",
			"x = 1; y = 2\n\nx + y",
			[]StatementKind{StmtSetVariable, StmtSetVariable, StmtInline},
		},
		{
			"continuation",
			"x = 1 + \\\n 2\nx",
			[]StatementKind{StmtSetVariable, StmtInline},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := parse(t, tt.input, false)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}

			if got := kinds(stmts); !slices.Equal(got, tt.want) {
				t.Errorf("kinds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseIdempotent(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		strict bool
	}{
		{"statements", "x = 1\nx += 2; print x\nx * 3", false},
		{"function body", "f(n) = if n <= 1 { 1 } else { n * f(n - 1) }\nf(5)", false},
		{"curly expression", "x = { let t = 3; t * t }", false},
		{"control flow", "if x > 1 { y = 1 } else if x { y = 2 } else { y = 3 }", false},
		{"loops", "repeat n + 1 times with i { x += i }\nloop { break }", false},
		{"continuation", "x = 1 + \\\n 2", false},
		{"strict", "x = 2\nxy(3)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grouped, err := Group(tt.input, Tokenize(tt.input), tt.strict)
			if err != nil {
				t.Fatalf("Group: %v", err)
			}

			first, err := Parse(tt.input, grouped, tt.strict)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}

			second, err := Parse(tt.input, grouped, tt.strict)
			if err != nil {
				t.Fatalf("Parse again: %v", err)
			}

			if !reflect.DeepEqual(first, second) {
				t.Errorf("statements differ between parses:\n%+v\n%+v", first, second)
			}
		})
	}
}

func TestParseDetails(t *testing.T) {
	t.Run("declaration flags", func(t *testing.T) {
		stmts, err := parse(t, "let a = 1\nconst b = 2\nc = 3", false)
		if err != nil {
			t.Fatal(err)
		}

		want := []struct{ new, constant bool }{{true, false}, {true, true}, {false, false}}
		for i, w := range want {
			if stmts[i].New != w.new || stmts[i].Constant != w.constant {
				t.Errorf("statement %d: new=%v constant=%v, want %v %v",
					i, stmts[i].New, stmts[i].Constant, w.new, w.constant)
			}
		}
	})

	t.Run("function signature", func(t *testing.T) {
		stmts, err := parse(t, "hyp(a, b) = sqrt(a^2 + b^2)", false)
		if err != nil {
			t.Fatal(err)
		}

		st := stmts[0]
		if got := st.Signature(); got != "hyp(a, b)" {
			t.Errorf("Signature = %q", got)
		}

		if got := st.ParamNames(); !slices.Equal(got, []string{"a", "b"}) {
			t.Errorf("ParamNames = %v", got)
		}

		if st.Body.Source != "sqrt(a^2 + b^2)" {
			t.Errorf("Body.Source = %q", st.Body.Source)
		}
	})

	t.Run("function block body", func(t *testing.T) {
		stmts, err := parse(t, "f(n) = if n <= 1 { 1 } else { n * f(n - 1) }", false)
		if err != nil {
			t.Fatal(err)
		}

		body := stmts[0].Body
		if got := kinds(body.Block); !slices.Equal(got, []StatementKind{StmtIf, StmtElse}) {
			t.Errorf("body kinds = %v", got)
		}
	})

	t.Run("repeat with counter", func(t *testing.T) {
		stmts, err := parse(t, "repeat 4 times with k { k }", false)
		if err != nil {
			t.Fatal(err)
		}

		if v := stmts[0].Var; v == nil || v.Value != "k" {
			t.Errorf("Var = %v, want k", v)
		}
	})

	t.Run("print text", func(t *testing.T) {
		stmts, err := parse(t, "print   the answer is 42  ", false)
		if err != nil {
			t.Fatal(err)
		}

		if got := stmts[0].Text; got != "the answer is 42" {
			t.Errorf("Text = %q", got)
		}
	})

	t.Run("statement source", func(t *testing.T) {
		src := "x = 1\n  y = x + 2  \n"

		stmts, err := parse(t, src, false)
		if err != nil {
			t.Fatal(err)
		}

		if got := stmts[1].Source; got != "y = x + 2" {
			t.Errorf("Source = %q", got)
		}

		if got := src[stmts[1].Index:stmts[1].End]; got != "y = x + 2" {
			t.Errorf("span = %q", got)
		}
	})

	t.Run("nested blocks", func(t *testing.T) {
		stmts, err := parse(t, "loop {\n  if x > 3 {\n    break\n  }\n  x++\n}", false)
		if err != nil {
			t.Fatal(err)
		}

		inner := stmts[0].Block
		if got := kinds(inner); !slices.Equal(got, []StatementKind{StmtIf, StmtSetVariable}) {
			t.Errorf("loop body kinds = %v", got)
		}

		if got := kinds(inner[0].Block); !slices.Equal(got, []StatementKind{StmtBreak}) {
			t.Errorf("if body kinds = %v", got)
		}
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		strict bool
		want   error
	}{
		{"else without if", "else { 1 }", false, ErrUnexpectedElse},
		{"else after statement", "x = 1\nelse { 2 }", false, ErrUnexpectedElse},
		{"if without block", "if 1 > 0", false, ErrMissingBlock},
		{"if without condition", "if { 1 }", false, ErrMissingCondition},
		{"loop without block", "loop", false, ErrMissingBlock},
		{"repeat without times", "repeat 3 { x }", false, ErrExpectedRepeat},
		{"repeat without amount", "repeat times { x }", false, ErrMissingAmount},
		{"let without name", "let = 1", false, ErrExpectedName},
		{"let without assignment", "let x 1", false, ErrExpectedAssign},
		{"empty assignment", "x =", false, ErrEmptyExpression},
		{"empty return", "return", false, ErrEmptyExpression},
		{"leading operator", "* 2", false, ErrUnexpectedSymbol},
		{"parameter comma", "f(a b) = a", false, ErrExpectedComma},
		{"parameter literal", "f(1) = 2", false, ErrExpectedParam},
		{"trailing parameter comma", "f(a,) = a", false, ErrExpectedParam},
		{"strict parameter", "f(ab) = ab", true, ErrStrictName},
		{"unfinished", "x = (1", false, ErrUnfinishedBracket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.input, tt.strict)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			var e *Error
			if !errors.As(err, &e) || !e.Located() {
				t.Errorf("error %v carries no source location", err)
			}
		})
	}
}
