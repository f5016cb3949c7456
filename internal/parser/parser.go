// Package parser builds an AST from an mq token stream with a recursive-
// descent, Pratt-precedence expression grammar (spec §4.2). It never
// panics: malformed input comes back as a *mqerr.Error of kind
// ParseError.
package parser

import (
	"strconv"

	"github.com/mqlang/mq/internal/ast"
	"github.com/mqlang/mq/internal/lexer"
	"github.com/mqlang/mq/internal/mqerr"
	"github.com/mqlang/mq/internal/token"
)

// Parse lexes and parses a complete mq program.
func Parse(source string) (*ast.Program, error) {
	toks, err := lexer.Lex(source)
	if err != nil {
		return nil, err
	}
	toks, docs := filterComments(toks)
	p := &parser{toks: toks, docs: docs}
	return p.parseProgram()
}

// filterComments drops Comment tokens from the stream, recording each
// one against the index (in the filtered stream) of the token that
// immediately follows it. A run of consecutive comment lines collapses
// to its last line, matching the usual "comment glued to the next
// statement" doc-comment convention.
func filterComments(toks []token.Token) ([]token.Token, map[int]string) {
	out := make([]token.Token, 0, len(toks))
	docs := make(map[int]string)
	for _, t := range toks {
		if t.Kind == token.Comment {
			docs[len(out)] = t.Literal
			continue
		}
		out = append(out, t)
	}
	return out, docs
}

type parser struct {
	toks []token.Token
	pos  int
	docs map[int]string
	// pendingDoc holds the most recent comment immediately preceding the
	// current statement, attached to the next `def` parsed.
	pendingDoc string
}

func (p *parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF sentinel
	}
	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) atEOF() bool { return p.cur().Kind == token.EOF }

func (p *parser) errf(format string, args ...any) error {
	return mqerr.New(mqerr.KindParse, p.cur().Span, format, args...)
}

func (p *parser) expectPunct(lit string) (token.Token, error) {
	t := p.cur()
	if t.Kind != token.Punct || t.Literal != lit {
		return t, p.errf("expected %q, found %q", lit, t.Literal)
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(lit string) (token.Token, error) {
	t := p.cur()
	if t.Kind != token.Keyword || t.Literal != lit {
		return t, p.errf("expected keyword %q, found %q", lit, t.Literal)
	}
	return p.advance(), nil
}

func (p *parser) isKeyword(lit string) bool {
	t := p.cur()
	return t.Kind == token.Keyword && t.Literal == lit
}

func (p *parser) isPunct(lit string) bool {
	t := p.cur()
	return t.Kind == token.Punct && t.Literal == lit
}

func (p *parser) isOp(lit string) bool {
	t := p.cur()
	return t.Kind == token.Op && t.Literal == lit
}

// --- program / statements ---

func (p *parser) parseProgram() (*ast.Program, error) {
	start := p.cur().Span
	stmts, err := p.parseStmtList(func() bool { return p.atEOF() })
	if err != nil {
		return nil, err
	}
	if !p.atEOF() {
		return nil, p.errf("unexpected trailing token %q", p.cur().Literal)
	}
	return ast.NewProgram(start, stmts), nil
}

// parseStmtList parses ';'-separated statements until stop() is true.
// stop() is re-checked immediately after each statement, before a
// trailing ';' is consumed — otherwise a block whose own terminator is
// ';' (def/while/until/foreach/if bodies with no explicit `end`) would
// swallow that semicolon as an inter-statement separator and keep
// parsing whatever follows as more of its own body.
func (p *parser) parseStmtList(stop func() bool) ([]ast.Node, error) {
	var stmts []ast.Node
	for {
		if stop() {
			break
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if stop() {
			break
		}
		if p.isPunct(";") {
			p.advance()
			continue
		}
		break
	}
	return stmts, nil
}

func (p *parser) parseStmt() (ast.Node, error) {
	p.pendingDoc = p.docs[p.pos]
	switch {
	case p.isKeyword("let"):
		return p.parseLet()
	case p.isKeyword("var"):
		return p.parseVar()
	case p.isKeyword("def"):
		return p.parseDef()
	case p.isKeyword("include"):
		return p.parseInclude()
	case p.isKeyword("import"):
		return p.parseImport()
	case p.isKeyword("module"):
		return p.parseModuleDecl()
	default:
		return p.parsePipeExpr()
	}
}

func (p *parser) parseLet() (ast.Node, error) {
	start := p.advance().Span // 'let'
	name, err := p.expectIdentName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp("="); err != nil {
		return nil, err
	}
	val, err := p.parsePipeExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewLet(start, name, val), nil
}

func (p *parser) parseVar() (ast.Node, error) {
	start := p.advance().Span // 'var'
	name, err := p.expectIdentName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp("="); err != nil {
		return nil, err
	}
	val, err := p.parsePipeExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewVarAssign(start, name, val), nil
}

func (p *parser) expectOp(lit string) (token.Token, error) {
	t := p.cur()
	if t.Kind != token.Op || t.Literal != lit {
		return t, p.errf("expected operator %q, found %q", lit, t.Literal)
	}
	return p.advance(), nil
}

func (p *parser) expectIdentName() (string, error) {
	t := p.cur()
	if t.Kind != token.Ident {
		return "", p.errf("expected identifier, found %q", t.Literal)
	}
	p.advance()
	return t.Literal, nil
}

// parseDef parses `def NAME(params…): body;`.
func (p *parser) parseDef() (ast.Node, error) {
	doc := p.pendingDoc
	p.pendingDoc = ""
	start := p.advance().Span // 'def'
	name, err := p.expectIdentName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntil(func() bool { return p.isPunct(";") || p.atEOF() })
	if err != nil {
		return nil, err
	}
	return ast.NewDef(start, name, params, body, doc), nil
}

func (p *parser) parseParamList() ([]string, error) {
	var params []string
	for !p.isPunct(")") {
		name, err := p.expectIdentName()
		if err != nil {
			return nil, err
		}
		params = append(params, name)
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	return params, nil
}

func (p *parser) parseInclude() (ast.Node, error) {
	start := p.advance().Span
	t := p.cur()
	if t.Kind != token.String {
		return nil, p.errf("expected module name string after include")
	}
	p.advance()
	return ast.NewInclude(start, t.Literal), nil
}

func (p *parser) parseImport() (ast.Node, error) {
	start := p.advance().Span
	t := p.cur()
	if t.Kind != token.String {
		return nil, p.errf("expected module name string after import")
	}
	p.advance()
	return ast.NewImport(start, t.Literal), nil
}

func (p *parser) parseModuleDecl() (ast.Node, error) {
	start := p.advance().Span // 'module'
	name, err := p.expectIdentName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntil(func() bool { return p.isKeyword("end") })
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("end"); err != nil {
		return nil, err
	}
	return ast.NewModuleDecl(start, name, body), nil
}

// parseBlockUntil parses a ';'-separated statement sequence and wraps it
// as an ast.Block whose value is its last statement.
func (p *parser) parseBlockUntil(stop func() bool) (ast.Node, error) {
	start := p.cur().Span
	stmts, err := p.parseStmtList(stop)
	if err != nil {
		return nil, err
	}
	return ast.NewBlock(start, stmts), nil
}

// --- Pratt expression grammar ---

// parsePipeExpr is the lowest-precedence, left-associative pipe operator
// (spec §4.2): `a | f | g` parses as Pipe(Pipe(a, f), g).
func (p *parser) parsePipeExpr() (ast.Node, error) {
	left, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}
	for p.isOp("|") {
		start := p.advance().Span
		right, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		left = ast.NewPipe(start, left, right)
	}
	return left, nil
}

func (p *parser) parseOrExpr() (ast.Node, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.isOp("||") {
		start := p.advance().Span
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(start, "||", left, right)
	}
	return left, nil
}

func (p *parser) parseAndExpr() (ast.Node, error) {
	left, err := p.parseEqExpr()
	if err != nil {
		return nil, err
	}
	for p.isOp("&&") {
		start := p.advance().Span
		right, err := p.parseEqExpr()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(start, "&&", left, right)
	}
	return left, nil
}

func (p *parser) parseEqExpr() (ast.Node, error) {
	left, err := p.parseOrdExpr()
	if err != nil {
		return nil, err
	}
	for p.isOp("==") || p.isOp("!=") {
		op := p.advance()
		right, err := p.parseOrdExpr()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(op.Span, op.Literal, left, right)
	}
	return left, nil
}

func (p *parser) parseOrdExpr() (ast.Node, error) {
	left, err := p.parseAddExpr()
	if err != nil {
		return nil, err
	}
	for p.isOp("<") || p.isOp("<=") || p.isOp(">") || p.isOp(">=") {
		op := p.advance()
		right, err := p.parseAddExpr()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(op.Span, op.Literal, left, right)
	}
	return left, nil
}

func (p *parser) parseAddExpr() (ast.Node, error) {
	left, err := p.parseMulExpr()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.advance()
		right, err := p.parseMulExpr()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(op.Span, op.Literal, left, right)
	}
	return left, nil
}

func (p *parser) parseMulExpr() (ast.Node, error) {
	left, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}
	for p.isOp("*") || p.isOp("/") || p.isOp("%") {
		op := p.advance()
		right, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(op.Span, op.Literal, left, right)
	}
	return left, nil
}

func (p *parser) parseUnaryExpr() (ast.Node, error) {
	if p.isOp("!") || p.isOp("-") {
		op := p.advance()
		operand, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpr(op.Span, op.Literal, operand), nil
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by zero or more
// selector segments (`.ident`, `.[expr]`) chained on.
func (p *parser) parsePostfix() (ast.Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.SelectorHead {
		node, err = p.parseSelectorChain(node)
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

// parseSelectorChain consumes a run of selector-head tokens as a single
// Selector node; a bare `[expr]` right after an earlier segment adds
// another index segment, so `.[0][1]` chains two indexings. If seed is non-nil, the selector is chained after it via
// an implicit pipe (`expr.h` == `expr | .h`); a bare leading selector
// (seed == nil) operates on `self`.
func (p *parser) parseSelectorChain(seed ast.Node) (ast.Node, error) {
	start := p.cur().Span
	var segs []ast.SelectorSegment
	safe := false
	for p.cur().Kind == token.SelectorHead || (len(segs) > 0 && p.isPunct("[")) {
		head := p.advance()
		safe = safe || head.Safe
		switch {
		case head.Literal == ".[" || head.Literal == "[":
			if p.isPunct("]") {
				p.advance()
				segs = append(segs, ast.SelectorSegment{All: true})
				break
			}
			idx, err := p.parsePipeExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			segs = append(segs, ast.SelectorSegment{Index: idx})
		case head.Literal == ".":
			// bare dot: no-op segment (identity), permits `. | f`.
		default:
			name := head.Literal[1:]
			var args []ast.Node
			if p.isPunct("(") {
				p.advance()
				var err error
				args, err = p.parseArgList()
				if err != nil {
					return nil, err
				}
				if _, err := p.expectPunct(")"); err != nil {
					return nil, err
				}
			}
			segs = append(segs, ast.SelectorSegment{Name: name, Args: args})
		}
	}
	sel := ast.NewSelector(start, segs, safe)
	if seed == nil {
		return sel, nil
	}
	return ast.NewPipe(start, seed, sel), nil
}

func (p *parser) parseArgList() ([]ast.Node, error) {
	var args []ast.Node
	for !p.isPunct(")") {
		arg, err := p.parsePipeExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	return args, nil
}

func (p *parser) parsePrimary() (ast.Node, error) {
	t := p.cur()
	switch t.Kind {
	case token.Int:
		p.advance()
		n, err := strconv.ParseInt(t.Literal, 10, 64)
		if err != nil {
			return nil, p.errf("invalid integer literal %q", t.Literal)
		}
		return ast.NewNumberLit(t.Span, float64(n)), nil
	case token.Float:
		p.advance()
		n, err := strconv.ParseFloat(t.Literal, 64)
		if err != nil {
			return nil, p.errf("invalid float literal %q", t.Literal)
		}
		return ast.NewNumberLit(t.Span, n), nil
	case token.String:
		p.advance()
		return ast.NewStringLit(t.Span, t.Literal), nil
	case token.InterpStringStart:
		return p.parseInterpString()
	case token.Symbol:
		p.advance()
		return ast.NewSymbolLit(t.Span, t.Literal), nil
	case token.SelectorHead:
		return p.parseSelectorChain(nil)
	case token.Punct:
		if t.Literal == "(" {
			return p.parseGroup()
		}
		return nil, p.errf("unexpected token %q", t.Literal)
	case token.Keyword:
		return p.parseKeywordExpr()
	case token.Ident:
		return p.parseIdentOrCall(false, "")
	default:
		return nil, p.errf("unexpected token %q", t.Literal)
	}
}

func (p *parser) parseGroup() (ast.Node, error) {
	start := p.advance().Span // '('
	body, err := p.parseBlockUntil(func() bool { return p.isPunct(")") })
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return ast.NewGroup(start, body), nil
}

func (p *parser) parseInterpString() (ast.Node, error) {
	start := p.advance().Span // InterpStringStart
	var parts []ast.InterpPart
	for {
		t := p.cur()
		switch t.Kind {
		case token.InterpStringMid:
			p.advance()
			if t.Literal != "" {
				parts = append(parts, ast.InterpPart{Text: t.Literal})
			}
		case token.InterpExprStart:
			p.advance()
			expr, err := p.parsePipeExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectInterpExprEnd(); err != nil {
				return nil, err
			}
			parts = append(parts, ast.InterpPart{Expr: expr})
		case token.InterpStringEnd:
			p.advance()
			return ast.NewInterpStringLit(start, parts), nil
		default:
			return nil, p.errf("malformed interpolated string")
		}
	}
}

func (p *parser) expectInterpExprEnd() (token.Token, error) {
	t := p.cur()
	if t.Kind != token.InterpExprEnd {
		return t, p.errf("expected end of interpolation, found %q", t.Literal)
	}
	return p.advance(), nil
}

// parseIdentOrCall parses a bare identifier, a `module::function` call,
// or a call with parenthesized arguments.
func (p *parser) parseIdentOrCall(forceCall bool, module string) (ast.Node, error) {
	t := p.advance()
	name := t.Literal
	safe := t.Safe

	if module == "" && p.isPunct(":") && p.peekAt(1).Kind == token.Symbol {
		// `module::function` — the lexer sees the first ':' as a bare
		// Punct (since it isn't followed by an identifier start, the
		// second ':' is), then the second ':' followed by an identifier
		// start tokenizes as a Symbol holding the function name.
		p.advance() // ':'
		fn := p.advance().Literal
		return p.finishCall(t.Span, name, fn, safe)
	}

	if p.isPunct("(") {
		return p.finishCall(t.Span, module, name, safe)
	}
	if forceCall {
		return p.finishCallNoParen(t.Span, module, name, safe)
	}
	return ast.NewIdent(t.Span, name, safe), nil
}

func (p *parser) finishCall(span mqerr.Span, module, name string, safe bool) (ast.Node, error) {
	if !p.isPunct("(") {
		return ast.NewCall(span, module, name, nil, safe), nil
	}
	p.advance()
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return ast.NewCall(span, module, name, args, safe), nil
}

func (p *parser) finishCallNoParen(span mqerr.Span, module, name string, safe bool) (ast.Node, error) {
	return ast.NewCall(span, module, name, nil, safe), nil
}

func (p *parser) parseKeywordExpr() (ast.Node, error) {
	switch p.cur().Literal {
	case "true":
		t := p.advance()
		return ast.NewBoolLit(t.Span, true), nil
	case "false":
		t := p.advance()
		return ast.NewBoolLit(t.Span, false), nil
	case "None":
		t := p.advance()
		return ast.NewNoneLit(t.Span), nil
	case "self":
		t := p.advance()
		return ast.NewSelfExpr(t.Span), nil
	case "fn":
		return p.parseLambda()
	case "if":
		return p.parseIf()
	case "while":
		return p.parseWhile()
	case "until":
		return p.parseUntil()
	case "foreach":
		return p.parseForeach()
	case "match":
		return p.parseMatch()
	case "try":
		return p.parseTry()
	case "break":
		return p.parseBreak()
	case "continue":
		t := p.advance()
		return ast.NewContinue(t.Span), nil
	default:
		return nil, p.errf("unexpected keyword %q", p.cur().Literal)
	}
}

func (p *parser) parseLambda() (ast.Node, error) {
	start := p.advance().Span // 'fn'
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntil(func() bool { return p.isPunct(";") || p.atEOF() || p.isPunct(")") || p.isPunct(",") })
	if err != nil {
		return nil, err
	}
	// Unlike `def`, a lambda is rarely a standalone statement (it is
	// usually an argument expression), so it consumes its own trailing
	// ';' terminator rather than leaving it for an enclosing statement
	// list to eat.
	if p.isPunct(";") {
		p.advance()
	}
	return ast.NewLambda(start, params, body), nil
}

func (p *parser) parseParenCond() (ast.Node, error) {
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parsePipeExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *parser) parseIf() (ast.Node, error) {
	start := p.advance().Span // 'if'
	var conds, blocks []ast.Node
	cond, err := p.parseParenCond()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntil(func() bool {
		return p.isKeyword("elif") || p.isKeyword("else") || p.isKeyword("end") || p.atEOF() || p.isPunct(";")
	})
	if err != nil {
		return nil, err
	}
	conds = append(conds, cond)
	blocks = append(blocks, body)

	for p.isKeyword("elif") {
		p.advance()
		c, err := p.parseParenCond()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		b, err := p.parseBlockUntil(func() bool {
			return p.isKeyword("elif") || p.isKeyword("else") || p.isKeyword("end") || p.atEOF() || p.isPunct(";")
		})
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
		blocks = append(blocks, b)
	}

	var elseBody ast.Node
	if p.isKeyword("else") {
		p.advance()
		if _, err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		elseBody, err = p.parseBlockUntil(func() bool { return p.isKeyword("end") || p.atEOF() || p.isPunct(";") })
		if err != nil {
			return nil, err
		}
	}
	// A ';' directly followed by `end` closes both the last branch's
	// statement and the if itself (`if (c): break self; end`).
	if p.isPunct(";") && p.peekAt(1).Kind == token.Keyword && p.peekAt(1).Literal == "end" {
		p.advance()
	}
	if p.isKeyword("end") {
		p.advance()
	}
	return ast.NewIf(start, conds, blocks, elseBody), nil
}

func (p *parser) parseWhile() (ast.Node, error) {
	start := p.advance().Span
	cond, err := p.parseParenCond()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntil(func() bool { return p.isPunct(";") || p.atEOF() || p.isKeyword("end") })
	if err != nil {
		return nil, err
	}
	if p.isKeyword("end") {
		p.advance()
	}
	return ast.NewWhile(start, cond, body), nil
}

func (p *parser) parseUntil() (ast.Node, error) {
	start := p.advance().Span
	cond, err := p.parseParenCond()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntil(func() bool { return p.isPunct(";") || p.atEOF() || p.isKeyword("end") })
	if err != nil {
		return nil, err
	}
	if p.isKeyword("end") {
		p.advance()
	}
	return ast.NewUntil(start, cond, body), nil
}

func (p *parser) parseForeach() (ast.Node, error) {
	start := p.advance().Span
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	varName, err := p.expectIdentName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(","); err != nil {
		return nil, err
	}
	seq, err := p.parsePipeExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntil(func() bool { return p.isPunct(";") || p.atEOF() || p.isKeyword("end") })
	if err != nil {
		return nil, err
	}
	if p.isKeyword("end") {
		p.advance()
	}
	return ast.NewForeach(start, varName, seq, body), nil
}

func (p *parser) parseMatch() (ast.Node, error) {
	start := p.advance().Span
	subject, err := p.parseParenCond()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	var arms []ast.MatchArm
	for p.isOp("|") {
		p.advance()
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		// An arm body is one expression below pipe precedence, so the next
		// `|` starts the next arm instead of piping into this body.
		body, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		arms = append(arms, ast.MatchArm{Pattern: pat, Body: body})
	}
	if p.isKeyword("end") {
		p.advance()
	}
	return ast.NewMatch(start, subject, arms), nil
}

func (p *parser) parsePattern() (ast.Pattern, error) {
	t := p.cur()
	switch {
	case t.Kind == token.Ident && t.Literal == "_":
		p.advance()
		return ast.WildcardPattern{}, nil
	case t.Kind == token.Ident:
		p.advance()
		return ast.IdentPattern{Name: t.Literal}, nil
	case t.Kind == token.Punct && t.Literal == "[":
		return p.parseArrayPattern()
	default:
		lit, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return ast.LiteralPattern{Value: lit}, nil
	}
}

func (p *parser) parseArrayPattern() (ast.Pattern, error) {
	p.advance() // '['
	var elems []ast.Pattern
	for !p.isPunct("]") {
		el, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
		if p.isPunct(",") {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectPunct("]"); err != nil {
		return nil, err
	}
	return ast.ArrayPattern{Elems: elems}, nil
}

func (p *parser) parseTry() (ast.Node, error) {
	start := p.advance().Span
	if _, err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntil(func() bool { return p.isKeyword("catch") || p.atEOF() || p.isPunct(";") })
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("catch"); err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	catchBody, err := p.parseBlockUntil(func() bool { return p.atEOF() || p.isPunct(";") || p.isKeyword("end") })
	if err != nil {
		return nil, err
	}
	if p.isKeyword("end") {
		p.advance()
	}
	return ast.NewTry(start, body, catchBody), nil
}

func (p *parser) parseBreak() (ast.Node, error) {
	start := p.advance().Span
	if p.isPunct(";") || p.atEOF() || p.isOp("|") {
		return ast.NewBreak(start, nil), nil
	}
	val, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewBreak(start, val), nil
}
