package repl

import (
	"slices"
	"strings"
	"testing"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		cursor     int
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{"no call", "total", 5, "", 0, false},
		{"first arg open", "sqrt(", 5, "sqrt", 0, true},
		{"first arg value", "sqrt(1", 6, "sqrt", 0, true},
		{"second arg", "max(1,", 6, "max", 1, true},
		{"second arg value", "max(1, 2", 8, "max", 1, true},
		{"third arg", "sum(1, 2, 3", 11, "sum", 2, true},
		{"closed call", "max(1, 2)", 9, "", 0, false},
		{"cursor inside closed call", "max(1, 2)", 7, "max", 1, true},
		{"nested inner", "max(sqrt(4", 10, "sqrt", 0, true},
		{"nested outer after inner", "max(sqrt(4), ", 13, "max", 1, true},
		{"grouping paren", "(1 + 2", 6, "", 0, false},
		{"after operator", "2 * mod(7, ", 11, "mod", 1, true},
		{"keyword rejected", "if (x", 5, "", 0, false},
		{"curly in argument", "f({ a, b }, ", 12, "f", 1, true},
		{"unicode name", "√(2", len("√(2"), "√", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)
			if got.name != tt.wantName ||
				got.argIndex != tt.wantIndex ||
				got.inCall != tt.wantInCall {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want {%q %d %v}",
					tt.input, tt.cursor, got,
					tt.wantName, tt.wantIndex, tt.wantInCall)
			}
		})
	}
}

func TestGetSignature(t *testing.T) {
	s := newTestSession(t)

	if _, err := s.Eval(t.Context(), "n = 1\nhyp(a, b) = sqrt(a^2 + b^2)"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		wantSig    string
		wantParams []string
	}{
		{"sqrt", "sqrt(x)", []string{"x"}},
		{"mod", "mod(a, b)", []string{"a", "b"}},
		{"max", "max(...values)", []string{"...values"}},
		{"hyp", "hyp(a, b)", []string{"a", "b"}},
		{"input", "input()", nil},
		{"n", "", nil},
		{"missing", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, params := getSignature(s, tt.name)
			if sig != tt.wantSig {
				t.Errorf("signature = %q, want %q", sig, tt.wantSig)
			}

			if !slices.Equal(params, tt.wantParams) {
				t.Errorf("params = %q, want %q", params, tt.wantParams)
			}
		})
	}

	// The built-in parameter list is not modified by rendering.
	if sig, _ := getSignature(s, "max"); sig != "max(...values)" {
		t.Errorf("second lookup = %q", sig)
	}
}

func TestRenderSignatureHint(t *testing.T) {
	tests := []struct {
		name   string
		sig    string
		params []string
		arg    int
	}{
		{"first", "mod(a, b)", []string{"a", "b"}, 0},
		{"second", "mod(a, b)", []string{"a", "b"}, 1},
		{"variadic beyond", "max(...values)", []string{"...values"}, 4},
		{"no params", "input()", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSignatureHint(tt.sig, tt.params, tt.arg)

			name := tt.sig[:strings.Index(tt.sig, "(")]
			if !strings.Contains(got, name) {
				t.Errorf("hint %q missing name %q", got, name)
			}

			for _, p := range tt.params {
				if !strings.Contains(got, p) {
					t.Errorf("hint %q missing param %q", got, p)
				}
			}
		})
	}

	if got := renderSignatureHint("plain", nil, 0); !strings.Contains(got, "plain") {
		t.Errorf("hint without parens = %q", got)
	}
}
