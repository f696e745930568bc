package lang

//go:generate go tool stringer --linecomment --type StatementKind --output stmt_string.go

// StatementKind classifies a statement.
type StatementKind int

const (
	StmtSetVariable StatementKind = iota // set_variable
	StmtSetFunction                      // set_function
	StmtInline                           // inline_execution
	StmtIf                               // if
	StmtElseIf                           // elseif
	StmtElse                             // else
	StmtRepeatUntil                      // repeat_until
	StmtRepeatTimes                      // repeat_times
	StmtRepeatTimesWith                  // repeat_times_with
	StmtLoop                             // loop
	StmtReturn                           // return
	StmtBreak                            // break
	StmtPrint                            // print
	StmtThrow                            // throw
)

// MarshalText implements encoding.TextMarshaler.
func (k StatementKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Statement is one parsed statement. Which fields are set depends on Kind:
//
//   - set_variable: Name, New, Constant, Expr
//   - set_function: Name, Params, Body
//   - inline_execution, return: Expr
//   - if, elseif, repeat_until: Expr (condition), Block
//   - repeat_times: Expr (amount), Block
//   - repeat_times_with: Expr (amount), Var, Block
//   - else, loop: Block
//   - print, throw: Text
type Statement struct {
	Kind     StatementKind `json:"kind"               yaml:"kind"`
	Source   string        `json:"source"             yaml:"source"`
	Index    int           `json:"index"              yaml:"index"`
	End      int           `json:"end"                yaml:"end"`
	Keyword  *Token        `json:"keyword,omitempty"  yaml:"keyword,omitempty"`
	Name     *Token        `json:"name,omitempty"     yaml:"name,omitempty"`
	New      bool          `json:"new,omitempty"      yaml:"new,omitempty"`
	Constant bool          `json:"constant,omitempty" yaml:"constant,omitempty"`
	Params   []Token       `json:"params,omitempty"   yaml:"params,omitempty"`
	Body     *Body         `json:"body,omitempty"     yaml:"body,omitempty"`
	Expr     []Token       `json:"expr,omitempty"     yaml:"expr,omitempty"`
	Var      *Token        `json:"var,omitempty"      yaml:"var,omitempty"`
	Block    []Statement   `json:"block,omitempty"    yaml:"block,omitempty"`
	Text     string        `json:"text,omitempty"     yaml:"text,omitempty"`
}

// Body is a function body: either a single expression or, when the body
// starts with a statement keyword, a statement block whose value is that of
// its last value-producing statement.
type Body struct {
	Source string      `json:"source"          yaml:"source"`
	Expr   []Token     `json:"expr,omitempty"  yaml:"expr,omitempty"`
	Block  []Statement `json:"block,omitempty" yaml:"block,omitempty"`
}

// Signature returns the "name(a, b)" form of a function statement.
func (s *Statement) Signature() string {
	if s.Name == nil {
		return ""
	}

	sig := s.Name.Value + "("

	for i, p := range s.Params {
		if i > 0 {
			sig += ", "
		}

		sig += p.Value
	}

	return sig + ")"
}

// ParamNames returns the names of a function statement's parameters.
func (s *Statement) ParamNames() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Value
	}

	return names
}

var keywords = map[string]bool{
	"let": true, "const": true, "if": true, "else": true, "repeat": true,
	"until": true, "times": true, "with": true, "loop": true, "return": true,
	"break": true, "print": true, "throw": true,
}

// leaders are the keywords that can begin a statement.
var leaders = map[string]bool{
	"let": true, "const": true, "if": true, "repeat": true, "loop": true,
	"return": true, "break": true, "print": true, "throw": true,
}

func isKeyword(word string) bool { return keywords[word] }

// IsKeyword reports whether word is reserved by the statement syntax.
func IsKeyword(word string) bool { return isKeyword(word) }

// Keywords returns the reserved words of the language.
func Keywords() []string { return sortedKeys(keywords) }
