package lang

import "unicode/utf8"

var closers = map[string]string{"(": ")", "{": "}"}

// frame is an open bracket awaiting its closer.
type frame struct {
	opener   Token
	children []Token
}

// Group nests the flat tokens of source into bracketed groups. Only '(' and
// '{' form groups; '[' and ']' pass through as symbols.
//
// A word immediately followed by a parenthesized group fuses into a call
// token. In strict mode only single-character words fuse, since longer words
// are split into single-character names at evaluation time.
func Group(source string, tokens []Token, strict bool) ([]Token, error) {
	var (
		stack []frame
		root  = make([]Token, 0, len(tokens))
	)

	top := func() *[]Token {
		if len(stack) == 0 {
			return &root
		}

		return &stack[len(stack)-1].children
	}

	for _, tok := range tokens {
		if tok.Kind != KindSymbol {
			*top() = append(*top(), tok)

			continue
		}

		if _, ok := closers[tok.Value]; ok {
			stack = append(stack, frame{opener: tok})

			continue
		}

		if tok.Value != ")" && tok.Value != "}" {
			*top() = append(*top(), tok)

			continue
		}

		if len(stack) == 0 || closers[stack[len(stack)-1].opener.Value] != tok.Value {
			return nil, ErrUnexpectedSymbol.AtToken(tok)
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		opener, closer := f.opener, tok
		group := Token{
			Kind:     KindGroup,
			Value:    source[opener.Index:closer.End],
			Index:    opener.Index,
			End:      closer.End,
			Children: f.children,
			Opener:   &opener,
			Closer:   &closer,
		}

		parent := top()
		if n := len(*parent); n > 0 && opener.Value == "(" {
			if prev := (*parent)[n-1]; fusable(prev, strict) {
				(*parent)[n-1] = call(source, prev, group)

				continue
			}
		}

		*parent = append(*parent, group)
	}

	if len(stack) > 0 {
		return nil, ErrUnfinishedBracket.At(stack[len(stack)-1].opener.Index, 1)
	}

	return root, nil
}

func fusable(tok Token, strict bool) bool {
	if tok.Kind != KindWord || isKeyword(tok.Value) {
		return false
	}

	return !strict || utf8.RuneCountInString(tok.Value) == 1
}

func call(source string, name, args Token) Token {
	return Token{
		Kind:  KindCall,
		Value: source[name.Index:args.End],
		Index: name.Index,
		End:   args.End,
		Name:  &name,
		Args:  &args,
	}
}
