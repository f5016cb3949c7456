// Package ast defines the mq abstract syntax tree (spec §3.3). Every node
// carries a source span; nodes are structurally immutable once built by
// the parser.
package ast

import "github.com/mqlang/mq/internal/mqerr"

// Node is implemented by every AST node kind.
type Node interface {
	Span() mqerr.Span
	node()
}

type base struct {
	span mqerr.Span
}

func (b base) Span() mqerr.Span { return b.span }
func (base) node()              {}

func newBase(span mqerr.Span) base { return base{span: span} }

// Program is the root of a parsed query: a sequence of top-level
// statements (let/var/def bindings and expressions).
type Program struct {
	base
	Stmts []Node
}

func NewProgram(span mqerr.Span, stmts []Node) *Program { return &Program{newBase(span), stmts} }

// Block is a ';'-separated sequence of statements evaluated for effect,
// whose value is its last statement's value (or None if empty). It backs
// every body position that admits let/var/def bindings scoped to that
// body: def/fn bodies, if/elif/else branches, loop bodies, try/catch
// arms.
type Block struct {
	base
	Stmts []Node
}

func NewBlock(span mqerr.Span, stmts []Node) *Block { return &Block{newBase(span), stmts} }

// --- literals ---

type NumberLit struct {
	base
	Value float64
}

type StringLit struct {
	base
	Value string
}

// InterpPart is one segment of an interpolated string: either literal
// text (Expr == nil) or an embedded expression (Text == "").
type InterpPart struct {
	Text string
	Expr Node
}

type InterpStringLit struct {
	base
	Parts []InterpPart
}

type SymbolLit struct {
	base
	Name string
}

type BoolLit struct {
	base
	Value bool
}

type NoneLit struct{ base }

type SelfExpr struct{ base }

func NewNumberLit(span mqerr.Span, v float64) *NumberLit { return &NumberLit{newBase(span), v} }
func NewStringLit(span mqerr.Span, v string) *StringLit  { return &StringLit{newBase(span), v} }
func NewInterpStringLit(span mqerr.Span, parts []InterpPart) *InterpStringLit {
	return &InterpStringLit{newBase(span), parts}
}
func NewSymbolLit(span mqerr.Span, name string) *SymbolLit { return &SymbolLit{newBase(span), name} }
func NewBoolLit(span mqerr.Span, v bool) *BoolLit          { return &BoolLit{newBase(span), v} }
func NewNoneLit(span mqerr.Span) *NoneLit                  { return &NoneLit{newBase(span)} }
func NewSelfExpr(span mqerr.Span) *SelfExpr                { return &SelfExpr{newBase(span)} }

// --- identifiers, calls, selectors ---

// Ident is a bare name reference, optionally safe-called (`name?`).
type Ident struct {
	base
	Name string
	Safe bool
}

func NewIdent(span mqerr.Span, name string, safe bool) *Ident { return &Ident{newBase(span), name, safe} }

// Call is a function invocation: a bare name (Module == "") or a
// module-qualified name (`module::function(...)`), with positional args.
type Call struct {
	base
	Module string
	Name   string
	Args   []Node
	Safe   bool
}

func NewCall(span mqerr.Span, module, name string, args []Node, safe bool) *Call {
	return &Call{newBase(span), module, name, args, safe}
}

// SelectorSegment is one step of a dotted/bracketed selector path:
// `.ident`, `.code("js")`, `.[i]`, or the wildcard `.[]`.
type SelectorSegment struct {
	Name  string // "" for an index segment
	Index Node   // non-nil for a `.[expr]` segment
	All   bool   // true for the `.[]` wildcard (every child, in order)
	Args  []Node // selector-call arguments, e.g. .code("js")
}

// Selector is a chained path expression (`.h`, `.code.lang`, `.[0][1]`),
// optionally safe (`.title?`).
type Selector struct {
	base
	Segments []SelectorSegment
	Safe     bool
}

func NewSelector(span mqerr.Span, segs []SelectorSegment, safe bool) *Selector {
	return &Selector{newBase(span), segs, safe}
}

// --- pipe, operators, grouping ---

type Pipe struct {
	base
	Left, Right Node
}

func NewPipe(span mqerr.Span, left, right Node) *Pipe { return &Pipe{newBase(span), left, right} }

type BinaryExpr struct {
	base
	Op          string
	Left, Right Node
}

func NewBinaryExpr(span mqerr.Span, op string, l, r Node) *BinaryExpr {
	return &BinaryExpr{newBase(span), op, l, r}
}

type UnaryExpr struct {
	base
	Op      string
	Operand Node
}

func NewUnaryExpr(span mqerr.Span, op string, operand Node) *UnaryExpr {
	return &UnaryExpr{newBase(span), op, operand}
}

type Group struct {
	base
	Inner Node
}

func NewGroup(span mqerr.Span, inner Node) *Group { return &Group{newBase(span), inner} }

// --- bindings ---

type Let struct {
	base
	Name  string
	Value Node
}

func NewLet(span mqerr.Span, name string, value Node) *Let { return &Let{newBase(span), name, value} }

type VarAssign struct {
	base
	Name  string
	Value Node
}

func NewVarAssign(span mqerr.Span, name string, value Node) *VarAssign {
	return &VarAssign{newBase(span), name, value}
}

type Lambda struct {
	base
	Params []string
	Body   Node
}

func NewLambda(span mqerr.Span, params []string, body Node) *Lambda {
	return &Lambda{newBase(span), params, body}
}

type Def struct {
	base
	Name   string
	Params []string
	Body   Node
	Doc    string
}

func NewDef(span mqerr.Span, name string, params []string, body Node, doc string) *Def {
	return &Def{newBase(span), name, params, body, doc}
}

// --- control flow ---

type If struct {
	base
	Conds  []Node // one per if/elif branch
	Blocks []Node // matching bodies
	Else   Node   // nil if absent
}

func NewIf(span mqerr.Span, conds, blocks []Node, els Node) *If {
	return &If{newBase(span), conds, blocks, els}
}

type While struct {
	base
	Cond Node
	Body Node
}

func NewWhile(span mqerr.Span, cond, body Node) *While { return &While{newBase(span), cond, body} }

type Until struct {
	base
	Cond Node
	Body Node
}

func NewUntil(span mqerr.Span, cond, body Node) *Until { return &Until{newBase(span), cond, body} }

type Foreach struct {
	base
	Var string
	Seq Node
	Body Node
}

func NewForeach(span mqerr.Span, v string, seq, body Node) *Foreach {
	return &Foreach{newBase(span), v, seq, body}
}

// Pattern is implemented by match-arm patterns.
type Pattern interface {
	pattern()
}

type LiteralPattern struct{ Value Node }
type IdentPattern struct{ Name string }
type ArrayPattern struct{ Elems []Pattern }
type WildcardPattern struct{}

func (LiteralPattern) pattern() {}
func (IdentPattern) pattern()   {}
func (ArrayPattern) pattern()   {}
func (WildcardPattern) pattern() {}

type MatchArm struct {
	Pattern Pattern
	Body    Node
}

type Match struct {
	base
	Subject Node
	Arms    []MatchArm
}

func NewMatch(span mqerr.Span, subject Node, arms []MatchArm) *Match {
	return &Match{newBase(span), subject, arms}
}

type Break struct {
	base
	Value Node // nil => None
}

func NewBreak(span mqerr.Span, value Node) *Break { return &Break{newBase(span), value} }

type Continue struct{ base }

func NewContinue(span mqerr.Span) *Continue { return &Continue{newBase(span)} }

type Try struct {
	base
	Body  Node
	Catch Node
}

func NewTry(span mqerr.Span, body, catch Node) *Try { return &Try{newBase(span), body, catch} }

// --- modules ---

type Include struct {
	base
	Name string
}

func NewInclude(span mqerr.Span, name string) *Include { return &Include{newBase(span), name} }

type Import struct {
	base
	Name string
}

func NewImport(span mqerr.Span, name string) *Import { return &Import{newBase(span), name} }

// ModuleDecl wraps a block of top-level defs as a named module, for the
// `module NAME: ... end` form.
type ModuleDecl struct {
	base
	Name string
	Body Node
}

func NewModuleDecl(span mqerr.Span, name string, body Node) *ModuleDecl {
	return &ModuleDecl{newBase(span), name, body}
}
