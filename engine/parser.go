package engine

import (
	"strconv"
	"strings"
)

type parser struct {
	src    *Source
	tokens []token
	pos    int
}

// parseSource turns one source file into its namespaces.
func parseSource(src *Source) ([]*namespace, *Error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{src: src, tokens: tokens}
	var namespaces []*namespace

	for !p.at(tokEOF, "") {
		ns, err := p.parseNamespace()
		if err != nil {
			return nil, err
		}
		namespaces = append(namespaces, ns)
	}

	return namespaces, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

// at reports whether the current token has the given kind and, when text
// is non-empty, the given text.
func (p *parser) at(kind tokenKind, text string) bool {
	tok := p.peek()
	return tok.kind == kind && (text == "" || tok.text == text)
}

func (p *parser) atKeyword(word string) bool {
	return p.at(tokIdent, word)
}

func (p *parser) accept(kind tokenKind, text string) bool {
	if p.at(kind, text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(kind tokenKind, text string) (token, *Error) {
	if p.at(kind, text) {
		return p.next(), nil
	}
	return token{}, p.unexpected(describeToken(kind, text))
}

func (p *parser) expectIdent() (token, *Error) {
	return p.expect(tokIdent, "")
}

func (p *parser) unexpected(want string) *Error {
	tok := p.peek()
	got := "end of input"
	if tok.kind != tokEOF {
		got = "`" + tok.text + "`"
	}
	return newError(SyntaxError, tok.span, "expected %s, found %s", want, got)
}

func describeToken(kind tokenKind, text string) string {
	if text != "" {
		return "`" + text + "`"
	}
	switch kind {
	case tokIdent:
		return "identifier"
	case tokString:
		return "string literal"
	default:
		return "token"
	}
}

func join(a, b Span) Span {
	return Span{Lo: a.Lo, Hi: b.Hi}
}

func (p *parser) last() Span {
	if p.pos == 0 {
		return p.peek().span
	}
	return p.tokens[p.pos-1].span
}

func (p *parser) parsePath() (string, Span, *Error) {
	first, err := p.expectIdent()
	if err != nil {
		return "", Span{}, err
	}

	parts := []string{first.text}
	span := first.span
	for p.at(tokPunct, ".") && p.tokens[p.pos+1].kind == tokIdent {
		p.next()
		part := p.next()
		parts = append(parts, part.text)
		span = join(span, part.span)
	}

	return strings.Join(parts, "."), span, nil
}

func (p *parser) parseNamespace() (*namespace, *Error) {
	start, err := p.expect(tokIdent, "namespace")
	if err != nil {
		return nil, err
	}

	name, _, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokPunct, "{"); err != nil {
		return nil, err
	}

	ns := &namespace{name: name}
	for !p.at(tokPunct, "}") {
		if p.at(tokEOF, "") {
			return nil, p.unexpected("`}`")
		}

		if p.accept(tokIdent, "open") {
			if _, _, err := p.parsePath(); err != nil {
				return nil, err
			}
			if _, err := p.expect(tokPunct, ";"); err != nil {
				return nil, err
			}
			continue
		}

		c, err := p.parseCallable(name)
		if err != nil {
			return nil, err
		}
		ns.callables = append(ns.callables, c)
	}

	end := p.next()
	ns.span = join(start.span, end.span)
	return ns, nil
}

func (p *parser) parseCallable(ns string) (*callable, *Error) {
	c := &callable{namespace: ns}
	start := p.peek().span

	for p.accept(tokPunct, "@") {
		attr, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokPunct, "("); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokPunct, ")"); err != nil {
			return nil, err
		}
		if attr.text == "EntryPoint" {
			c.entryPoint = true
		}
	}

	switch {
	case p.accept(tokIdent, "operation"):
		c.operation = true
	case p.accept(tokIdent, "function"):
	default:
		return nil, p.unexpected("`operation` or `function`")
	}

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	c.name = name.text

	if _, err := p.expect(tokPunct, "("); err != nil {
		return nil, err
	}
	for !p.at(tokPunct, ")") {
		pname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokPunct, ":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		c.params = append(c.params, param{name: pname.text, typ: typ, span: join(pname.span, p.last())})
		if !p.accept(tokPunct, ",") {
			break
		}
	}
	if _, err := p.expect(tokPunct, ")"); err != nil {
		return nil, err
	}

	if _, err := p.expect(tokPunct, ":"); err != nil {
		return nil, err
	}
	if c.returns, err = p.parseType(); err != nil {
		return nil, err
	}

	if c.body, err = p.parseBlock(); err != nil {
		return nil, err
	}

	c.span = join(start, c.body.span)
	return c, nil
}

func (p *parser) parseType() (string, *Error) {
	var typ string

	if p.accept(tokPunct, "(") {
		if _, err := p.expect(tokPunct, ")"); err != nil {
			return "", err
		}
		typ = "Unit"
	} else {
		name, err := p.expectIdent()
		if err != nil {
			return "", err
		}
		typ = name.text
	}

	for p.at(tokPunct, "[") && p.tokens[p.pos+1].text == "]" {
		p.next()
		p.next()
		typ += "[]"
	}

	return typ, nil
}

func (p *parser) parseBlock() (*block, *Error) {
	open, err := p.expect(tokPunct, "{")
	if err != nil {
		return nil, err
	}

	b := &block{}
	for !p.at(tokPunct, "}") {
		if p.at(tokEOF, "") {
			return nil, p.unexpected("`}`")
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		b.stmts = append(b.stmts, s)
	}

	closing := p.next()
	b.span = join(open.span, closing.span)
	return b, nil
}

func (p *parser) endStmt(start Span) (Span, *Error) {
	end, err := p.expect(tokPunct, ";")
	if err != nil {
		return Span{}, err
	}
	return join(start, end.span), nil
}

func (p *parser) parseStmt() (stmt, *Error) {
	start := p.peek().span

	switch {
	case p.atKeyword("let"), p.atKeyword("mutable"):
		mutable := p.next().text == "mutable"
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokPunct, "="); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		span, err := p.endStmt(start)
		if err != nil {
			return nil, err
		}
		return &letStmt{name: name.text, mutable: mutable, value: value, span: span}, nil

	case p.atKeyword("set"):
		p.next()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokPunct, "="); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		span, err := p.endStmt(start)
		if err != nil {
			return nil, err
		}
		return &setStmt{name: name.text, value: value, span: span}, nil

	case p.atKeyword("use"):
		p.next()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokPunct, "="); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokIdent, "Qubit"); err != nil {
			return nil, err
		}
		s := &useStmt{name: name.text}
		if p.accept(tokPunct, "[") {
			if s.size, err = p.parseExpr(); err != nil {
				return nil, err
			}
			if _, err := p.expect(tokPunct, "]"); err != nil {
				return nil, err
			}
		} else {
			if _, err := p.expect(tokPunct, "("); err != nil {
				return nil, err
			}
			if _, err := p.expect(tokPunct, ")"); err != nil {
				return nil, err
			}
		}
		if s.span, err = p.endStmt(start); err != nil {
			return nil, err
		}
		return s, nil

	case p.atKeyword("if"):
		p.next()
		s := &ifStmt{}
		for {
			cond, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			s.conds = append(s.conds, cond)
			s.blocks = append(s.blocks, body)
			if !p.accept(tokIdent, "elif") {
				break
			}
		}
		if p.accept(tokIdent, "else") {
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			s.orElse = body
		}
		s.span = join(start, p.last())
		return s, nil

	case p.atKeyword("for"):
		p.next()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokIdent, "in"); err != nil {
			return nil, err
		}
		from, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokPunct, ".."); err != nil {
			return nil, err
		}
		to, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &forStmt{name: name.text, from: from, to: to, body: body, span: join(start, body.span)}, nil

	case p.atKeyword("return"):
		p.next()
		s := &returnStmt{}
		if !p.at(tokPunct, ";") {
			value, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			s.value = value
		}
		span, err := p.endStmt(start)
		if err != nil {
			return nil, err
		}
		s.span = span
		return s, nil

	case p.atKeyword("fail"):
		p.next()
		message, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		span, err := p.endStmt(start)
		if err != nil {
			return nil, err
		}
		return &failStmt{message: message, span: span}, nil
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	span, err := p.endStmt(start)
	if err != nil {
		return nil, err
	}
	return &exprStmt{value: value, span: span}, nil
}

var binaryPrecedence = map[string]int{
	"or":  1,
	"and": 2,
	"==":  3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

func (p *parser) parseExpr() (expr, *Error) {
	return p.parseBinary(0)
}

// parseBinary is a precedence climber; operators bind left to right.
func (p *parser) parseBinary(minPrec int) (expr, *Error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.kind != tokPunct && tok.kind != tokIdent {
			return left, nil
		}
		prec, ok := binaryPrecedence[tok.text]
		if !ok || prec <= minPrec {
			return left, nil
		}
		p.next()

		right, err := p.parseBinary(prec)
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: tok.text, left: left, right: right, span: join(left.exprSpan(), right.exprSpan())}
	}
}

func (p *parser) parseUnary() (expr, *Error) {
	start := p.peek().span

	if p.accept(tokPunct, "-") || p.accept(tokIdent, "not") {
		op := p.tokens[p.pos-1].text
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{op: op, operand: operand, span: join(start, operand.exprSpan())}, nil
	}

	return p.parsePostfix()
}

func (p *parser) parsePostfix() (expr, *Error) {
	target, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.accept(tokPunct, "[") {
		index, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		end, err := p.expect(tokPunct, "]")
		if err != nil {
			return nil, err
		}
		target = &indexExpr{target: target, index: index, span: join(target.exprSpan(), end.span)}
	}

	return target, nil
}

func (p *parser) parsePrimary() (expr, *Error) {
	tok := p.peek()

	switch tok.kind {
	case tokInt:
		p.next()
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, newError(SyntaxError, tok.span, "invalid integer literal %s", tok.text)
		}
		return &literalExpr{value: IntValue(n), span: tok.span}, nil

	case tokDouble:
		p.next()
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, newError(SyntaxError, tok.span, "invalid double literal %s", tok.text)
		}
		return &literalExpr{value: DoubleValue(f), span: tok.span}, nil

	case tokString:
		p.next()
		return &literalExpr{value: StringValue(tok.text), span: tok.span}, nil

	case tokInterp:
		p.next()
		return p.parseInterpolation(tok)

	case tokIdent:
		switch tok.text {
		case "true", "false":
			p.next()
			return &literalExpr{value: BoolValue(tok.text == "true"), span: tok.span}, nil
		case "Zero", "One":
			p.next()
			return &literalExpr{value: ResultValue(tok.text == "One"), span: tok.span}, nil
		}

		name, span, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		if !p.at(tokPunct, "(") {
			return &identExpr{name: name, span: span}, nil
		}

		p.next()
		call := &callExpr{callee: name}
		for !p.at(tokPunct, ")") {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.args = append(call.args, arg)
			if !p.accept(tokPunct, ",") {
				break
			}
		}
		end, err := p.expect(tokPunct, ")")
		if err != nil {
			return nil, err
		}
		call.span = join(span, end.span)
		return call, nil

	case tokPunct:
		switch tok.text {
		case "(":
			p.next()
			if p.accept(tokPunct, ")") {
				return &literalExpr{value: Unit, span: join(tok.span, p.last())}, nil
			}
			inner, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokPunct, ")"); err != nil {
				return nil, err
			}
			return inner, nil

		case "[":
			p.next()
			arr := &arrayExpr{}
			for !p.at(tokPunct, "]") {
				item, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				arr.items = append(arr.items, item)
				if !p.accept(tokPunct, ",") {
					break
				}
			}
			end, err := p.expect(tokPunct, "]")
			if err != nil {
				return nil, err
			}
			arr.span = join(tok.span, end.span)
			return arr, nil
		}
	}

	return nil, p.unexpected("expression")
}

// parseInterpolation splits $"a {x} b" into text parts and expressions.
// Embedded expressions are attributed to the whole literal's span.
func (p *parser) parseInterpolation(tok token) (expr, *Error) {
	out := &interpExpr{span: tok.span}
	body := tok.text

	var text strings.Builder
	for i := 0; i < len(body); i++ {
		switch {
		case body[i] == '\\' && i+1 < len(body) && body[i+1] == '{':
			text.WriteByte('{')
			i++
		case body[i] == '{':
			end := strings.IndexByte(body[i:], '}')
			if end < 0 {
				return nil, newError(SyntaxError, tok.span, "unterminated interpolation")
			}
			inner := &Source{Name: p.src.Name, Contents: body[i+1 : i+end], Offset: tok.span.Lo}
			e, err := parseStandaloneExpr(inner, tok.span)
			if err != nil {
				return nil, err
			}
			out.parts = append(out.parts, text.String())
			out.exprs = append(out.exprs, e)
			text.Reset()
			i += end
		default:
			text.WriteByte(body[i])
		}
	}

	out.parts = append(out.parts, text.String())
	return out, nil
}

func parseStandaloneExpr(src *Source, span Span) (expr, *Error) {
	tokens, err := lex(src)
	if err != nil {
		err.Span = span
		return nil, err
	}

	sub := &parser{src: src, tokens: tokens}
	e, err := sub.parseExpr()
	if err != nil {
		err.Span = span
		return nil, err
	}
	if !sub.at(tokEOF, "") {
		return nil, newError(SyntaxError, span, "unexpected `%s` in interpolation", sub.peek().text)
	}

	return e, nil
}
