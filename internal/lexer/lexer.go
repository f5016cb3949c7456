// Package lexer turns mq source text into a finite ordered token stream
// with source spans (spec §4.1). It never panics: malformed input comes
// back as a *mqerr.Error of kind LexError.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/mqlang/mq/internal/mqerr"
	"github.com/mqlang/mq/internal/token"
)

// Lexer scans one rune at a time, tracking 1-based line/column (columns
// count code points, per spec §6.1) and a byte offset for spans.
type Lexer struct {
	src    string
	pos    int // byte offset
	line   int
	col    int
	tokens []token.Token
}

// Lex tokenizes source completely and returns the token stream ending in
// an EOF token, or the first LexError encountered.
func Lex(source string) ([]token.Token, error) {
	l := &Lexer{src: source, line: 1, col: 1}
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, tok)
		if tok.Kind == token.EOF {
			return l.tokens, nil
		}
	}
}

func (l *Lexer) span() mqerr.Span { return mqerr.Span{Line: l.line, Column: l.col, Offset: l.pos} }

func (l *Lexer) errf(span mqerr.Span, format string, args ...any) error {
	return mqerr.New(mqerr.KindLex, span, format, args...)
}

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

// peekRune returns the rune at the cursor (or 0 at EOF) and its width.
func (l *Lexer) peekRune() (rune, int) {
	if l.eof() {
		return 0, 0
	}
	r, w := utf8.DecodeRuneInString(l.src[l.pos:])
	return r, w
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

// advance consumes one rune, updating line/col bookkeeping.
func (l *Lexer) advance() rune {
	r, w := l.peekRune()
	l.pos += w
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// skipWhitespaceAndComments consumes whitespace only; comments are
// tokenized (not discarded) so the parser can attach them as
// doc-comments to the following binding (spec §4.1).
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		r, _ := l.peekRune()
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			l.advance()
			continue
		}
		return
	}
}

// next scans and returns the next token.
func (l *Lexer) next() (token.Token, error) {
	l.skipWhitespaceAndComments()
	start := l.span()
	if l.eof() {
		return token.Token{Kind: token.EOF, Span: start}, nil
	}

	r, _ := l.peekRune()

	switch {
	case r == '#':
		return l.lexComment(start)
	case r == '.':
		return l.lexSelectorOrDot(start)
	case r == ':':
		return l.lexColonOrSymbol(start)
	case r == '"':
		return l.lexString(start, false)
	case r == 's' && l.peekAt(1) == '"':
		l.advance() // consume 's'
		return l.lexString(start, true)
	case isDigit(r):
		return l.lexNumber(start)
	case r == '$':
		return l.lexEnvRef(start)
	case isIdentStart(r):
		return l.lexIdentOrKeyword(start)
	default:
		return l.lexOperatorOrPunct(start)
	}
}

func (l *Lexer) lexComment(start mqerr.Span) (token.Token, error) {
	begin := l.pos
	for {
		r, _ := l.peekRune()
		if r == 0 || r == '\n' {
			break
		}
		l.advance()
	}
	return token.Token{Kind: token.Comment, Literal: l.src[begin:l.pos], Span: start}, nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
func isIdentCont(r rune) bool { return isIdentStart(r) || isDigit(r) }

func (l *Lexer) lexIdentOrKeyword(start mqerr.Span) (token.Token, error) {
	begin := l.pos
	for {
		r, _ := l.peekRune()
		if !isIdentCont(r) {
			break
		}
		l.advance()
	}
	lit := l.src[begin:l.pos]
	safe := l.consumeSafeSuffix()
	kind := token.Ident
	if token.Keywords[lit] {
		kind = token.Keyword
	}
	return token.Token{Kind: kind, Literal: lit, Span: start, Safe: safe}, nil
}

// consumeSafeSuffix eats a trailing `?` safe-call modifier, if present.
func (l *Lexer) consumeSafeSuffix() bool {
	r, _ := l.peekRune()
	if r == '?' {
		l.advance()
		return true
	}
	return false
}

// lexEnvRef scans `$NAME` (spec §6.3), tokenized as an Ident whose
// literal retains the leading '$' so the evaluator can distinguish it
// from a bound name.
func (l *Lexer) lexEnvRef(start mqerr.Span) (token.Token, error) {
	l.advance() // consume '$'
	if !isIdentStart(runeAt(l.src, l.pos)) {
		return token.Token{}, l.errf(start, "expected identifier after '$'")
	}
	begin := l.pos
	for {
		r, _ := l.peekRune()
		if !isIdentCont(r) {
			break
		}
		l.advance()
	}
	return token.Token{Kind: token.Ident, Literal: "$" + l.src[begin:l.pos], Span: start}, nil
}

func (l *Lexer) lexNumber(start mqerr.Span) (token.Token, error) {
	begin := l.pos
	isFloat := false
	for {
		r, _ := l.peekRune()
		if isDigit(r) {
			l.advance()
			continue
		}
		if r == '.' && isDigit(runeAt(l.src, l.pos+1)) {
			isFloat = true
			l.advance()
			continue
		}
		if (r == 'e' || r == 'E') && looksLikeExponent(l.src, l.pos) {
			isFloat = true
			l.advance()
			if r2, _ := l.peekRune(); r2 == '+' || r2 == '-' {
				l.advance()
			}
			continue
		}
		break
	}
	lit := l.src[begin:l.pos]
	if isFloat {
		return token.Token{Kind: token.Float, Literal: lit, Span: start}, nil
	}
	return token.Token{Kind: token.Int, Literal: lit, Span: start}, nil
}

func runeAt(s string, i int) rune {
	if i < 0 || i >= len(s) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return r
}

func looksLikeExponent(s string, i int) bool {
	// i is the index of 'e'/'E'; valid exponent needs a following digit,
	// optionally after a sign.
	j := i + 1
	if j < len(s) && (s[j] == '+' || s[j] == '-') {
		j++
	}
	return j < len(s) && s[j] >= '0' && s[j] <= '9'
}

// lexSelectorOrDot handles `.ident`, `.[`, and a bare `.` used as the
// `.identity()` shorthand base in selector chains.
func (l *Lexer) lexSelectorOrDot(start mqerr.Span) (token.Token, error) {
	l.advance() // consume '.'
	r, _ := l.peekRune()
	switch {
	case r == '[':
		l.advance()
		return token.Token{Kind: token.SelectorHead, Literal: ".[", Span: start}, nil
	case isIdentStart(r):
		begin := l.pos
		for {
			r2, _ := l.peekRune()
			if !isIdentCont(r2) {
				break
			}
			l.advance()
		}
		lit := "." + l.src[begin:l.pos]
		safe := l.consumeSafeSuffix()
		return token.Token{Kind: token.SelectorHead, Literal: lit, Span: start, Safe: safe}, nil
	default:
		return token.Token{Kind: token.SelectorHead, Literal: ".", Span: start}, nil
	}
}

func (l *Lexer) lexColonOrSymbol(start mqerr.Span) (token.Token, error) {
	l.advance() // consume ':'
	r, _ := l.peekRune()
	if !isIdentStart(r) {
		return token.Token{Kind: token.Punct, Literal: ":", Span: start}, nil
	}
	begin := l.pos
	for {
		r2, _ := l.peekRune()
		if !isIdentCont(r2) {
			break
		}
		l.advance()
	}
	return token.Token{Kind: token.Symbol, Literal: l.src[begin:l.pos], Span: start}, nil
}

var multiCharOps = []string{"->", "==", "!=", "<=", ">=", "&&", "||"}

func (l *Lexer) lexOperatorOrPunct(start mqerr.Span) (token.Token, error) {
	for _, op := range multiCharOps {
		if strings.HasPrefix(l.src[l.pos:], op) {
			for range op {
				l.advance()
			}
			return token.Token{Kind: token.Op, Literal: op, Span: start}, nil
		}
	}
	r := l.advance()
	switch r {
	case '|', '=', '<', '>', '+', '-', '*', '/', '%', '!':
		return token.Token{Kind: token.Op, Literal: string(r), Span: start}, nil
	case '(', ')', '{', '}', '[', ']', ',', ';':
		return token.Token{Kind: token.Punct, Literal: string(r), Span: start}, nil
	default:
		return token.Token{}, l.errf(start, "unexpected character %q", r)
	}
}

// lexString scans a plain or interpolated string literal. For a plain
// string it returns one String token holding the unescaped value. For an
// interpolated string (s"...") it emits InterpStringStart, alternating
// InterpStringMid / (InterpExprStart ... InterpExprEnd pairs wrapping
// nested tokens) segments, and InterpStringEnd — flattened into l.tokens
// directly since a single logical string spans many tokens.
func (l *Lexer) lexString(start mqerr.Span, interp bool) (token.Token, error) {
	l.advance() // consume opening quote
	if interp {
		l.tokens = append(l.tokens, token.Token{Kind: token.InterpStringStart, Span: start})
	}
	var lit strings.Builder
	segStart := l.span()
	for {
		if l.eof() {
			return token.Token{}, l.errf(start, "unterminated string literal")
		}
		r, _ := l.peekRune()
		switch {
		case r == '"':
			l.advance()
			if interp {
				l.tokens = append(l.tokens, token.Token{Kind: token.InterpStringMid, Literal: lit.String(), Span: segStart})
				return token.Token{Kind: token.InterpStringEnd, Span: l.span()}, nil
			}
			return token.Token{Kind: token.String, Literal: lit.String(), Span: start}, nil
		case r == '\\':
			l.advance()
			ch, err := l.readEscape()
			if err != nil {
				return token.Token{}, err
			}
			lit.WriteRune(ch)
		case interp && r == '$' && l.peekAt(1) == '{':
			l.tokens = append(l.tokens, token.Token{Kind: token.InterpStringMid, Literal: lit.String(), Span: segStart})
			lit.Reset()
			l.advance()
			l.advance()
			exprStart := l.span()
			l.tokens = append(l.tokens, token.Token{Kind: token.InterpExprStart, Span: exprStart})
			if err := l.lexInterpolationExpr(); err != nil {
				return token.Token{}, err
			}
			segStart = l.span()
		default:
			l.advance()
			lit.WriteRune(r)
		}
	}
}

// lexInterpolationExpr lexes tokens up to the matching `}`, tracking
// brace depth so nested `{}` (e.g. from a nested dict literal) does not
// end the interpolation early.
func (l *Lexer) lexInterpolationExpr() error {
	depth := 0
	for {
		l.skipWhitespaceAndComments()
		if l.eof() {
			return l.errf(l.span(), "unterminated interpolation expression")
		}
		r, _ := l.peekRune()
		if r == '}' && depth == 0 {
			endSpan := l.span()
			l.advance()
			l.tokens = append(l.tokens, token.Token{Kind: token.InterpExprEnd, Span: endSpan})
			return nil
		}
		tok, err := l.next()
		if err != nil {
			return err
		}
		if tok.Kind == token.Punct && tok.Literal == "{" {
			depth++
		}
		if tok.Kind == token.Punct && tok.Literal == "}" {
			depth--
		}
		l.tokens = append(l.tokens, tok)
	}
}

func (l *Lexer) readEscape() (rune, error) {
	if l.eof() {
		return 0, l.errf(l.span(), "unterminated escape sequence")
	}
	r := l.advance()
	switch r {
	case '\\':
		return '\\', nil
	case '"':
		return '"', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'u':
		return l.readUnicodeEscape()
	default:
		return 0, l.errf(l.span(), "invalid escape sequence \\%c", r)
	}
}

func (l *Lexer) readUnicodeEscape() (rune, error) {
	if l.eof() || l.advance() != '{' {
		return 0, l.errf(l.span(), "invalid unicode escape: expected \\u{HEX}")
	}
	begin := l.pos
	for {
		r, _ := l.peekRune()
		if r == '}' {
			break
		}
		if !isHex(r) {
			return 0, l.errf(l.span(), "invalid unicode escape: non-hex digit %q", r)
		}
		l.advance()
	}
	hex := l.src[begin:l.pos]
	if l.eof() {
		return 0, l.errf(l.span(), "unterminated unicode escape")
	}
	l.advance() // consume '}'
	var code int64
	for _, c := range hex {
		code *= 16
		code += int64(hexVal(c))
	}
	return rune(code), nil
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hexVal(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	default:
		return int(r-'A') + 10
	}
}
