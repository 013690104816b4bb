package engine

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokDouble
	tokString
	tokInterp
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	span Span
}

var punctuation = []string{
	"..", "==", "!=", "<=", ">=", "->", "=>",
	"{", "}", "(", ")", "[", "]", ";", ",", ":", "@", ".",
	"=", "<", ">", "+", "-", "*", "/", "%",
}

// lex tokenizes one source, producing spans in the source map offset space.
func lex(src *Source) ([]token, *Error) {
	var (
		tokens []token
		text   = src.Contents
		pos    = 0
	)

	at := func(lo, hi int) Span {
		return Span{Lo: src.Offset + lo, Hi: src.Offset + hi}
	}

	for pos < len(text) {
		r, width := utf8.DecodeRuneInString(text[pos:])

		switch {
		case unicode.IsSpace(r):
			pos += width
			continue
		case strings.HasPrefix(text[pos:], "//"):
			if end := strings.IndexByte(text[pos:], '\n'); end >= 0 {
				pos += end + 1
			} else {
				pos = len(text)
			}
			continue
		case r == '"' || (r == '$' && strings.HasPrefix(text[pos:], `$"`)):
			kind := tokString
			start := pos
			if r == '$' {
				kind = tokInterp
				pos++
			}
			body, next, ok := scanString(text, pos)
			if !ok {
				return nil, newError(SyntaxError, at(start, len(text)), "unterminated string literal")
			}
			tokens = append(tokens, token{kind: kind, text: body, span: at(start, next)})
			pos = next
			continue
		case r == '_' || unicode.IsLetter(r):
			start := pos
			for pos < len(text) {
				r, width = utf8.DecodeRuneInString(text[pos:])
				if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
					break
				}
				pos += width
			}
			tokens = append(tokens, token{kind: tokIdent, text: text[start:pos], span: at(start, pos)})
			continue
		case unicode.IsDigit(r):
			start := pos
			kind := tokInt
			for pos < len(text) && isDigit(text[pos]) {
				pos++
			}
			// A '.' followed by a digit is a fraction; ".." is a range.
			if pos+1 < len(text) && text[pos] == '.' && isDigit(text[pos+1]) {
				kind = tokDouble
				pos++
				for pos < len(text) && isDigit(text[pos]) {
					pos++
				}
			}
			tokens = append(tokens, token{kind: kind, text: text[start:pos], span: at(start, pos)})
			continue
		}

		matched := false
		for _, p := range punctuation {
			if strings.HasPrefix(text[pos:], p) {
				tokens = append(tokens, token{kind: tokPunct, text: p, span: at(pos, pos+len(p))})
				pos += len(p)
				matched = true
				break
			}
		}
		if !matched {
			return nil, newError(SyntaxError, at(pos, pos+width), "unexpected character %q", r)
		}
	}

	tokens = append(tokens, token{kind: tokEOF, span: at(len(text), len(text))})
	return tokens, nil
}

// scanString reads a double-quoted literal starting at text[pos] == '"'.
func scanString(text string, pos int) (string, int, bool) {
	var b strings.Builder
	pos++

	for pos < len(text) {
		c := text[pos]
		switch c {
		case '"':
			return b.String(), pos + 1, true
		case '\\':
			if pos+1 >= len(text) {
				return "", pos, false
			}
			switch text[pos+1] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case '{':
				b.WriteString(`\{`)
			default:
				b.WriteByte(text[pos+1])
			}
			pos += 2
		default:
			b.WriteByte(c)
			pos++
		}
	}

	return "", pos, false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
