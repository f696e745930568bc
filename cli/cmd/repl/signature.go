package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/numscript/lang"
	"github.com/ardnew/numscript/number"
)

// Styles for parameter hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string
	argIndex int  // current argument index (0-based)
	inCall   bool // true if cursor is inside parameter list
}

// detectFunctionCall reports the innermost call whose argument list
// contains the cursor, and which argument the cursor is in.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	// Scan backward for the unmatched '(' before the cursor.
	depth, open := 0, -1

	for i := cursor; i > 0 && open < 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	// A call is a name immediately followed by '('.
	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" || lang.IsKeyword(name) {
		return functionCall{}
	}

	argIndex := 0
	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(', '{':
			depth++
		case ')', '}':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// getSignature returns the signature of the callable bound to name and its
// parameter names. It returns "" if name is not callable.
func getSignature(s *lang.Session, name string) (signature string, params []string) {
	v, ok := s.Lookup(name)
	if !ok || v.Kind == lang.VarNumber {
		return "", nil
	}

	params = slices.Clone(v.ParamNames())

	switch {
	case v.Arity() == number.Variadic:
		if len(params) == 0 {
			params = []string{"...values"}
		} else if !strings.HasPrefix(params[len(params)-1], "...") {
			params[len(params)-1] = "..." + params[len(params)-1]
		}
	case len(params) < int(v.Arity()):
		for i := len(params); i < int(v.Arity()); i++ {
			params = append(params, string(rune('a'+i)))
		}
	}

	return name + "(" + strings.Join(params, ", ") + ")", params
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	open := strings.Index(signature, "(")
	if open == -1 {
		return signatureStyle.Render(signature)
	}

	var b strings.Builder
	b.WriteString(signatureNameStyle.Render(signature[:open]))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		// A variadic parameter stays highlighted for every later argument.
		variadic := strings.HasPrefix(param, "...")
		if currentArgIdx == i || variadic && currentArgIdx > i {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
