package lang

//go:generate go tool stringer --linecomment --type Kind --output token_string.go

import (
	"strings"
	"unicode/utf8"
)

// Kind classifies a token.
type Kind int

const (
	// KindSymbol is a structural character: = ( ) [ ] { } . , ; \ or newline.
	KindSymbol Kind = iota // symbol

	// KindOperator is an arithmetic or relational operator.
	KindOperator // operator

	// KindInteger is a run of decimal digits.
	KindInteger // integer

	// KindFloat is a decimal literal with a fractional part.
	KindFloat // float

	// KindWord is a name: any maximal run of non-reserved characters.
	KindWord // word

	// KindGroup is a bracketed sequence produced by [Group].
	KindGroup // group

	// KindCall is a word immediately followed by a parenthesized group.
	KindCall // call
)

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Token is a lexical unit with its byte span [Index, End) in the source.
//
// Group tokens carry their delimiters in Opener and Closer and their contents
// in Children. Call tokens carry the function name in Name and the argument
// group in Args.
type Token struct {
	Kind     Kind    `json:"kind"               yaml:"kind"`
	Value    string  `json:"value"              yaml:"value"`
	Index    int     `json:"index"              yaml:"index"`
	End      int     `json:"end"                yaml:"end"`
	Children []Token `json:"children,omitempty" yaml:"children,omitempty"`
	Opener   *Token  `json:"opener,omitempty"   yaml:"opener,omitempty"`
	Closer   *Token  `json:"closer,omitempty"   yaml:"closer,omitempty"`
	Name     *Token  `json:"name,omitempty"     yaml:"name,omitempty"`
	Args     *Token  `json:"args,omitempty"     yaml:"args,omitempty"`
}

// Is reports whether t has the given kind and value.
func (t Token) Is(kind Kind, value string) bool {
	return t.Kind == kind && t.Value == value
}

// IsSymbol reports whether t is the given symbol.
func (t Token) IsSymbol(value string) bool { return t.Is(KindSymbol, value) }

// IsWord reports whether t is the given word.
func (t Token) IsWord(value string) bool { return t.Is(KindWord, value) }

// IsBlock reports whether t is a curly-brace group.
func (t Token) IsBlock() bool {
	return t.Kind == KindGroup && t.Opener != nil && t.Opener.Value == "{"
}

// IsParen reports whether t is a parenthesized group.
func (t Token) IsParen() bool {
	return t.Kind == KindGroup && t.Opener != nil && t.Opener.Value == "("
}

// terminator reports whether t ends a statement.
func (t Token) terminator() bool {
	return t.IsSymbol("\n") || t.IsSymbol(";")
}

// operand reports whether t can stand for a value in an expression.
func (t Token) operand() bool {
	switch t.Kind {
	case KindInteger, KindFloat, KindWord, KindGroup, KindCall:
		return true
	}

	return false
}

const (
	operatorChars = "+-*/%^><!"
	symbolChars   = "=()[]{}.,\n;\\"
	blankChars    = " \t\r"
	commentChar   = '#'
)

var twoCharOperators = []string{">=", "<=", "==", "!="}

func reserved(r rune) bool {
	return r == commentChar ||
		strings.ContainsRune(operatorChars, r) ||
		strings.ContainsRune(symbolChars, r) ||
		strings.ContainsRune(blankChars, r)
}

// Reserved reports whether r delimits words: an operator, a symbol, blank
// space, or the comment character.
func Reserved(r rune) bool { return reserved(r) }

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

// Comment is the span of one '#' comment, up to but excluding the newline.
type Comment struct {
	Text  string
	Index int
	End   int
}

func commentEnd(source string, i int) int {
	for i < len(source) && source[i] != '\n' {
		i++
	}

	return i
}

// Comments returns the comments Tokenize skips, in source order.
func Comments(source string) []Comment {
	var out []Comment

	for i := 0; i < len(source); {
		j := strings.IndexByte(source[i:], commentChar)
		if j < 0 {
			break
		}

		start := i + j
		end := commentEnd(source, start)
		out = append(out, Comment{
			Text:  strings.TrimRight(source[start:end], blankChars),
			Index: start,
			End:   end,
		})
		i = end
	}

	return out
}

// Tokenize splits source into a flat token sequence. It never fails: any
// character that is not reserved becomes part of a word.
//
// A digit run that follows a '.' symbol merges into a float, absorbing a
// preceding integer when there is one ("1.5") or standing alone as "0.5" for
// ".5".
func Tokenize(source string) []Token {
	var toks []Token

	for i := 0; i < len(source); {
		r, size := utf8.DecodeRuneInString(source[i:])

		switch {
		case strings.ContainsRune(blankChars, r):
			i += size

		case r == commentChar:
			i = commentEnd(source, i)

		case isTwoCharOperator(source[i:]):
			toks = append(toks, Token{
				Kind: KindOperator, Value: source[i : i+2], Index: i, End: i + 2,
			})
			i += 2

		case strings.ContainsRune(operatorChars, r):
			toks = append(toks, Token{
				Kind: KindOperator, Value: source[i : i+1], Index: i, End: i + 1,
			})
			i++

		case strings.ContainsRune(symbolChars, r):
			toks = append(toks, Token{
				Kind: KindSymbol, Value: source[i : i+1], Index: i, End: i + 1,
			})
			i++

		case isDigit(source[i]):
			j := i
			for j < len(source) && isDigit(source[j]) {
				j++
			}

			toks = appendNumber(toks, source[i:j], i, j)
			i = j

		default:
			j := i + size
			for j < len(source) {
				r, n := utf8.DecodeRuneInString(source[j:])
				if reserved(r) {
					break
				}

				j += n
			}

			toks = append(toks, Token{
				Kind: KindWord, Value: source[i:j], Index: i, End: j,
			})
			i = j
		}
	}

	return toks
}

func isTwoCharOperator(s string) bool {
	if len(s) < 2 {
		return false
	}

	for _, op := range twoCharOperators {
		if s[:2] == op {
			return true
		}
	}

	return false
}

func appendNumber(toks []Token, digits string, start, end int) []Token {
	n := len(toks)
	if n == 0 || !toks[n-1].IsSymbol(".") {
		return append(toks, Token{
			Kind: KindInteger, Value: digits, Index: start, End: end,
		})
	}

	dot := toks[n-1]

	if n >= 2 && toks[n-2].Kind == KindInteger {
		whole := toks[n-2]

		return append(toks[:n-2], Token{
			Kind:  KindFloat,
			Value: whole.Value + "." + digits,
			Index: whole.Index,
			End:   end,
		})
	}

	return append(toks[:n-1], Token{
		Kind: KindFloat, Value: "0." + digits, Index: dot.Index, End: end,
	})
}
