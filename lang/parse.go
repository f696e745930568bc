package lang

import (
	"strings"
	"unicode/utf8"
)

// Parse turns grouped tokens into statements.
func Parse(source string, tokens []Token, strict bool) ([]Statement, error) {
	p := newParser(source, tokens, strict)

	return p.statements()
}

// parser holds the parser state for one token sequence. Nested blocks are
// parsed by sub-parsers that share source and blocks.
type parser struct {
	source string
	strict bool
	toks   []Token
	pos    int
	blocks map[int][]Statement // curly expressions keyed by opener offset
}

func newParser(source string, tokens []Token, strict bool) *parser {
	return &parser{
		source: source,
		strict: strict,
		toks:   tokens,
		blocks: make(map[int][]Statement),
	}
}

func (p *parser) sub(tokens []Token) *parser {
	return &parser{
		source: p.source,
		strict: p.strict,
		toks:   tokens,
		blocks: p.blocks,
	}
}

func (p *parser) peek(n int) Token {
	if i := p.pos + n; i < len(p.toks) {
		return p.toks[i]
	}

	return Token{Kind: KindSymbol}
}

func (p *parser) statements() ([]Statement, error) {
	var out []Statement

	for p.pos < len(p.toks) {
		tok := p.toks[p.pos]
		if tok.terminator() || tok.IsSymbol("\\") {
			p.pos++

			continue
		}

		st, err := p.statement(out)
		if err != nil {
			return nil, err
		}

		out = append(out, st)
	}

	return out, nil
}

func (p *parser) statement(prev []Statement) (Statement, error) {
	tok := p.toks[p.pos]

	switch tok.Kind {
	case KindWord:
		if st, ok, err := p.compound(); ok || err != nil {
			return st, err
		}

		switch tok.Value {
		case "let", "const":
			return p.declaration()
		case "if":
			return p.conditional(StmtIf, p.pos+1)
		case "else":
			return p.otherwise(prev)
		case "repeat":
			return p.repeat()
		case "loop":
			return p.loop()
		case "return":
			return p.ret()
		case "break":
			p.pos++

			return Statement{
				Kind:    StmtBreak,
				Source:  tok.Value,
				Index:   tok.Index,
				End:     tok.End,
				Keyword: &tok,
			}, nil
		case "print", "throw":
			return p.text()
		}

		if p.peek(1).IsSymbol("=") {
			return p.assignment(tok, tok, false, false, p.pos+2)
		}

	case KindCall:
		if p.peek(1).IsSymbol("=") {
			return p.function()
		}

	case KindOperator, KindSymbol:
		return Statement{}, ErrUnexpectedSymbol.AtToken(tok)
	}

	return p.inline()
}

// line collects the tokens from index from up to the end of the statement,
// honoring '\' continuations: each backslash suppresses one terminator.
// It returns the tokens and the index of the terminator (or len(p.toks)).
func (p *parser) line(from int) ([]Token, int) {
	var (
		out  []Token
		skip int
	)

	i := from
	for ; i < len(p.toks); i++ {
		tok := p.toks[i]

		switch {
		case tok.IsSymbol("\\"):
			skip++
		case tok.terminator():
			if skip == 0 {
				return out, i
			}

			skip--
		default:
			out = append(out, tok)
		}
	}

	return out, i
}

// head collects the tokens from index from up to the first curly group on
// the same line. It reports false when the line ends first.
func (p *parser) head(from int) ([]Token, Token, int, bool) {
	var (
		out  []Token
		skip int
	)

	for i := from; i < len(p.toks); i++ {
		tok := p.toks[i]

		switch {
		case tok.IsBlock():
			return out, tok, i, true
		case tok.IsSymbol("\\"):
			skip++
		case tok.terminator():
			if skip == 0 {
				return nil, Token{}, i, false
			}

			skip--
		default:
			out = append(out, tok)
		}
	}

	return nil, Token{}, len(p.toks), false
}

func (p *parser) span(first Token, end int) (string, int, int) {
	return p.source[first.Index:end], first.Index, end
}

// collect parses every curly expression nested in toks.
func (p *parser) collect(toks []Token) error {
	for _, tok := range toks {
		switch {
		case tok.IsBlock():
			stmts, err := p.sub(tok.Children).statements()
			if err != nil {
				return err
			}

			p.blocks[tok.Index] = stmts
		case tok.Kind == KindGroup:
			if err := p.collect(tok.Children); err != nil {
				return err
			}
		case tok.Kind == KindCall:
			if err := p.collect(tok.Args.Children); err != nil {
				return err
			}
		}
	}

	return nil
}

var compoundOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "^": true,
}

// compound recognizes "x++", "x--" and "x OP= expr", desugaring them into a
// plain reassignment of x.
func (p *parser) compound() (Statement, bool, error) {
	name, op, next := p.toks[p.pos], p.peek(1), p.peek(2)
	if op.Kind != KindOperator || !compoundOperators[op.Value] {
		return Statement{}, false, nil
	}

	if (op.Value == "+" || op.Value == "-") &&
		next.Is(KindOperator, op.Value) && next.Index == op.End {
		if after := p.pos + 3; after >= len(p.toks) || p.toks[after].terminator() {
			one := Token{Kind: KindInteger, Value: "1", Index: next.Index, End: next.End}
			p.pos += 3

			src, start, end := p.span(name, next.End)

			return Statement{
				Kind:   StmtSetVariable,
				Source: src,
				Index:  start,
				End:    end,
				Name:   &name,
				Expr:   []Token{name, op, one},
			}, true, nil
		}
	}

	if !next.IsSymbol("=") || next.Index != op.End {
		return Statement{}, false, nil
	}

	rhs, stop := p.line(p.pos + 3)
	if len(rhs) == 0 {
		return Statement{}, true, ErrEmptyExpression.AtToken(next)
	}

	if err := p.collect(rhs); err != nil {
		return Statement{}, true, err
	}

	p.pos = stop
	src, start, end := p.span(name, rhs[len(rhs)-1].End)

	return Statement{
		Kind:   StmtSetVariable,
		Source: src,
		Index:  start,
		End:    end,
		Name:   &name,
		Expr:   []Token{name, op, p.wrap(rhs)},
	}, true, nil
}

// wrap encloses toks in a synthetic parenthesized group.
func (p *parser) wrap(toks []Token) Token {
	first, last := toks[0], toks[len(toks)-1]
	opener := Token{Kind: KindSymbol, Value: "(", Index: first.Index, End: first.Index}
	closer := Token{Kind: KindSymbol, Value: ")", Index: last.End, End: last.End}

	return Token{
		Kind:     KindGroup,
		Value:    p.source[first.Index:last.End],
		Index:    first.Index,
		End:      last.End,
		Children: toks,
		Opener:   &opener,
		Closer:   &closer,
	}
}

func (p *parser) declaration() (Statement, error) {
	kw, name := p.toks[p.pos], p.peek(1)
	if name.Kind != KindWord || isKeyword(name.Value) {
		return Statement{}, ErrExpectedName.AtToken(kw)
	}

	if !p.peek(2).IsSymbol("=") {
		return Statement{}, ErrExpectedAssign.AtToken(name)
	}

	return p.assignment(kw, name, true, kw.Value == "const", p.pos+3)
}

func (p *parser) assignment(
	first, name Token,
	isNew, constant bool,
	from int,
) (Statement, error) {
	eq := p.toks[from-1]

	rhs, stop := p.line(from)
	if len(rhs) == 0 {
		return Statement{}, ErrEmptyExpression.AtToken(eq)
	}

	if err := p.collect(rhs); err != nil {
		return Statement{}, err
	}

	p.pos = stop
	src, start, end := p.span(first, rhs[len(rhs)-1].End)

	st := Statement{
		Kind:     StmtSetVariable,
		Source:   src,
		Index:    start,
		End:      end,
		Name:     &name,
		New:      isNew,
		Constant: constant,
		Expr:     rhs,
	}

	if first.Index != name.Index {
		st.Keyword = &first
	}

	return st, nil
}

func parameters(children []Token) ([]Token, error) {
	var names []Token

	for i, tok := range children {
		if i%2 == 1 {
			if !tok.IsSymbol(",") {
				return nil, ErrExpectedComma.AtToken(tok)
			}

			continue
		}

		if tok.Kind != KindWord || isKeyword(tok.Value) {
			return nil, ErrExpectedParam.AtToken(tok)
		}

		names = append(names, tok)
	}

	if n := len(children); n > 0 && n%2 == 0 {
		return nil, ErrExpectedParam.AtToken(children[n-1])
	}

	return names, nil
}

func (p *parser) function() (Statement, error) {
	head, eq := p.toks[p.pos], p.toks[p.pos+1]

	params, err := parameters(head.Args.Children)
	if err != nil {
		return Statement{}, err
	}

	if p.strict {
		for _, param := range params {
			if utf8.RuneCountInString(param.Value) != 1 {
				return Statement{}, ErrStrictName.AtToken(param)
			}
		}
	}

	rhs, stop := p.line(p.pos + 2)
	if len(rhs) == 0 {
		return Statement{}, ErrEmptyExpression.AtToken(eq)
	}

	last := rhs[len(rhs)-1].End
	body := &Body{Source: p.source[rhs[0].Index:last]}

	if rhs[0].Kind == KindWord && leaders[rhs[0].Value] {
		if body.Block, err = p.sub(rhs).statements(); err != nil {
			return Statement{}, err
		}
	} else {
		if err := p.collect(rhs); err != nil {
			return Statement{}, err
		}

		body.Expr = rhs
	}

	p.pos = stop
	src, start, end := p.span(head, last)

	return Statement{
		Kind:   StmtSetFunction,
		Source: src,
		Index:  start,
		End:    end,
		Name:   head.Name,
		Params: params,
		Body:   body,
	}, nil
}

// block parses a curly group's contents and moves past it.
func (p *parser) block(kind StatementKind, kw Token, head []Token, group Token, at int) (Statement, error) {
	if err := p.collect(head); err != nil {
		return Statement{}, err
	}

	stmts, err := p.sub(group.Children).statements()
	if err != nil {
		return Statement{}, err
	}

	p.pos = at + 1
	src, start, end := p.span(kw, group.End)

	return Statement{
		Kind:    kind,
		Source:  src,
		Index:   start,
		End:     end,
		Keyword: &kw,
		Expr:    head,
		Block:   stmts,
	}, nil
}

func (p *parser) conditional(kind StatementKind, from int) (Statement, error) {
	kw := p.toks[p.pos]

	head, group, at, ok := p.head(from)
	if !ok {
		return Statement{}, ErrMissingBlock.AtToken(kw)
	}

	if len(head) == 0 {
		return Statement{}, ErrMissingCondition.AtToken(kw)
	}

	return p.block(kind, kw, head, group, at)
}

func (p *parser) otherwise(prev []Statement) (Statement, error) {
	kw := p.toks[p.pos]

	if n := len(prev); n == 0 ||
		prev[n-1].Kind != StmtIf && prev[n-1].Kind != StmtElseIf {
		return Statement{}, ErrUnexpectedElse.AtToken(kw)
	}

	next := p.peek(1)
	if next.IsWord("if") {
		return p.conditional(StmtElseIf, p.pos+2)
	}

	if !next.IsBlock() {
		return Statement{}, ErrMissingBlock.AtToken(kw)
	}

	return p.block(StmtElse, kw, nil, next, p.pos+1)
}

func (p *parser) repeat() (Statement, error) {
	kw := p.toks[p.pos]

	if p.peek(1).IsWord("until") {
		return p.conditional(StmtRepeatUntil, p.pos+2)
	}

	head, group, at, ok := p.head(p.pos + 1)
	if !ok {
		return Statement{}, ErrMissingBlock.AtToken(kw)
	}

	var (
		kind   StatementKind
		amount []Token
		with   *Token
	)

	switch n := len(head); {
	case n >= 3 && head[n-3].IsWord("times") && head[n-2].IsWord("with") &&
		head[n-1].Kind == KindWord && !isKeyword(head[n-1].Value):
		kind, amount, with = StmtRepeatTimesWith, head[:n-3], &head[n-1]
	case n >= 1 && head[n-1].IsWord("times"):
		kind, amount = StmtRepeatTimes, head[:n-1]
	default:
		return Statement{}, ErrExpectedRepeat.AtToken(kw)
	}

	if len(amount) == 0 {
		return Statement{}, ErrMissingAmount.AtToken(kw)
	}

	st, err := p.block(kind, kw, amount, group, at)
	if err != nil {
		return Statement{}, err
	}

	st.Var = with

	return st, nil
}

func (p *parser) loop() (Statement, error) {
	kw, next := p.toks[p.pos], p.peek(1)
	if !next.IsBlock() {
		return Statement{}, ErrMissingBlock.AtToken(kw)
	}

	return p.block(StmtLoop, kw, nil, next, p.pos+1)
}

func (p *parser) ret() (Statement, error) {
	kw := p.toks[p.pos]

	rhs, stop := p.line(p.pos + 1)
	if len(rhs) == 0 {
		return Statement{}, ErrEmptyExpression.AtToken(kw)
	}

	if err := p.collect(rhs); err != nil {
		return Statement{}, err
	}

	p.pos = stop
	src, start, end := p.span(kw, rhs[len(rhs)-1].End)

	return Statement{
		Kind:    StmtReturn,
		Source:  src,
		Index:   start,
		End:     end,
		Keyword: &kw,
		Expr:    rhs,
	}, nil
}

// text captures the raw source after print or throw up to the end of the
// line.
func (p *parser) text() (Statement, error) {
	kw := p.toks[p.pos]
	kind := StmtPrint

	if kw.Value == "throw" {
		kind = StmtThrow
	}

	rest, stop := p.line(p.pos + 1)

	end := kw.End
	if len(rest) > 0 {
		end = rest[len(rest)-1].End
	}

	p.pos = stop
	src, start, end := p.span(kw, end)

	return Statement{
		Kind:    kind,
		Source:  src,
		Index:   start,
		End:     end,
		Keyword: &kw,
		Text:    strings.TrimSpace(p.source[kw.End:end]),
	}, nil
}

func (p *parser) inline() (Statement, error) {
	rhs, stop := p.line(p.pos)

	if err := p.collect(rhs); err != nil {
		return Statement{}, err
	}

	p.pos = stop
	src, start, end := p.span(rhs[0], rhs[len(rhs)-1].End)

	return Statement{
		Kind:   StmtInline,
		Source: src,
		Index:  start,
		End:    end,
		Expr:   rhs,
	}, nil
}
