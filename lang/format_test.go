package lang

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/numscript/number"
)

func format(t *testing.T, source string, indent int) string {
	t.Helper()

	prog, err := Compile(t.Context(), source)
	if err != nil {
		t.Fatalf("Compile(%q): %v", source, err)
	}

	var buf bytes.Buffer
	if err := prog.Format(t.Context(), &buf, indent); err != nil {
		t.Fatalf("Format: %v", err)
	}

	return buf.String()
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		indent int
		want   string
	}{
		{
			name:  "spacing",
			input: "x=1+2*3",
			want:  "x = 1 + 2 * 3\n",
		},
		{
			name:  "declarations",
			input: "let a=1;const b=2",
			want:  "let a = 1\nconst b = 2\n",
		},
		{
			name:  "unary sign",
			input: "y = -3 * (-x)",
			want:  "y = -3 * (-x)\n",
		},
		{
			name:  "compound expands",
			input: "x *= 2+1\nx++",
			want:  "x = x * (2 + 1)\nx = x + 1\n",
		},
		{
			name:  "function",
			input: "f(a,b)=max(a,b)!",
			want:  "f(a, b) = max(a, b)!\n",
		},
		{
			name:  "if chain",
			input: "if x>0{print yes}else if x<0{print no}else{x--}",
			want: "if x > 0 {\n  print yes\n} else if x < 0 {\n" +
				"  print no\n} else {\n  x = x - 1\n}\n",
		},
		{
			name:   "indent width",
			input:  "loop{repeat 2 times with i{i}}",
			indent: 4,
			want:   "loop {\n    repeat 2 times with i {\n        i\n    }\n}\n",
		},
		{
			name:  "empty block",
			input: "repeat until x {}",
			want:  "repeat until x {}\n",
		},
		{
			name:  "curly expression",
			input: "x = {let t=3;t*t}",
			want:  "x = { let t = 3; t * t }\n",
		},
		{
			name:  "block function body",
			input: "f(n) = if n<=1 {1} else {n*f(n-1)}",
			want:  "f(n) = if n <= 1 { 1 } else { n * f(n - 1) }\n",
		},
		{
			name:  "comments kept and blank lines collapsed",
			input: "\n# header\n\nx = 1 # one\n\n\ny = 2\n\n",
			want:  "# header\n\nx = 1 # one\n\ny = 2\n",
		},
		{
			name:  "comment lines between statements",
			input: "# area of a circle\nr = 2 # radius\nπ * r^2\n",
			want:  "# area of a circle\nr = 2 # radius\nπ * r ^ 2\n",
		},
		{
			name:  "trailing comment after separated statements",
			input: "a = 1; b = 2 # both\n  # indented\nb",
			want:  "a = 1\nb = 2 # both\n# indented\nb\n",
		},
		{
			name:  "final comment without newline",
			input: "x = 1\n\n# done",
			want:  "x = 1\n\n# done\n",
		},
		{
			name:  "comments only",
			input: "# nothing yet  \n",
			want:  "# nothing yet\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := format(t, tt.input, tt.indent); got != tt.want {
				t.Errorf("Format =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestFormatCommentInsideStatement(t *testing.T) {
	for _, src := range []string{
		"f(n) = if n > 1 { # big\n n } else { 0 }",
		"if x { 1 } # then\nelse { 2 }",
		"loop {\n  # forever\n  break\n}",
	} {
		t.Run(src, func(t *testing.T) {
			prog, err := Compile(t.Context(), src)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}

			var buf bytes.Buffer

			err = prog.Format(t.Context(), &buf, 0)
			if !errors.Is(err, ErrCommentPlacement) {
				t.Fatalf("error = %v, want %v", err, ErrCommentPlacement)
			}

			var lerr *Error
			if !errors.As(err, &lerr) || src[lerr.Offset()] != '#' {
				t.Errorf("error not located at the comment: %v", err)
			}

			if buf.Len() != 0 {
				t.Errorf("wrote %q on error", buf.String())
			}
		})
	}
}

func TestComments(t *testing.T) {
	got := Comments("x = 1 # one\n#two\t\ny # three")
	want := []Comment{
		{Text: "# one", Index: 6, End: 11},
		{Text: "#two", Index: 12, End: 17},
		{Text: "# three", Index: 20, End: 27},
	}

	if !slices.Equal(got, want) {
		t.Errorf("Comments = %+v, want %+v", got, want)
	}
}

func TestFormatIdempotent(t *testing.T) {
	inputs := []string{
		"# header\n\n\nx = 1 # one\n# two\ny = x",
		"x=1\nif x{ loop {break} } else { print  no }",
		"f(n)=if n<=1{1}else{n*f(n-1)}\nf(5)",
		"repeat 3 times with k { s += k^2 }",
		"a = {let b = 2; b!} + -1",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			once := format(t, input, 0)
			twice := format(t, once, 0)

			if once != twice {
				t.Errorf("not idempotent:\n%s\nthen\n%s", once, twice)
			}
		})
	}
}

func TestFormatPreservesMeaning(t *testing.T) {
	src := "s = 0\nrepeat 4 times with i { s += i * 2 }\nf(n) = if n > 3 { n } else { 0 }\nf(s)"

	backend := number.MustNew(number.Fraction)

	before, err := runWith(t, backend, src)
	if err != nil {
		t.Fatal(err)
	}

	after, err := runWith(t, backend, format(t, src, 0))
	if err != nil {
		t.Fatal(err)
	}

	if before.LastString() != after.LastString() {
		t.Errorf("formatted program yields %s, original %s",
			after.LastString(), before.LastString())
	}
}

func TestFormatJSON(t *testing.T) {
	res, err := run(t, "x = 2\nx * 3")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := FormatJSON(t.Context(), &buf, res, 2); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{`"backend": "bignumber"`, `"kind": "set_variable"`, `"6"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("JSON output missing %s:\n%s", want, buf.String())
		}
	}
}

func TestFormatYAML(t *testing.T) {
	prog, err := Compile(t.Context(), "print hi")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := FormatYAML(t.Context(), &buf, prog, 2); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"source: print hi", "kind: print", "text: hi"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("YAML output missing %q:\n%s", want, buf.String())
		}
	}
}
