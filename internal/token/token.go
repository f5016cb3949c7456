// Package token defines the lexer's token kinds and the Token type,
// grounded on spec §4.1.
package token

import "github.com/mqlang/mq/internal/mqerr"

type Kind int

const (
	EOF Kind = iota
	Ident
	Keyword
	Int
	Float
	String
	InterpStringStart // s"
	InterpStringMid    // literal segment between ${...} interpolations
	InterpExprStart    // ${
	InterpExprEnd      // } closing an interpolation segment
	InterpStringEnd    // closing "
	Symbol             // :name
	SelectorHead       // .ident or .[
	Op
	Punct
	Comment
)

// Keywords recognized by the lexer (spec §4.1).
var Keywords = map[string]bool{
	"def": true, "let": true, "var": true, "if": true, "elif": true,
	"else": true, "end": true, "while": true, "until": true, "foreach": true,
	"match": true, "self": true, "None": true, "true": true, "false": true,
	"fn": true, "include": true, "import": true, "module": true,
	"break": true, "continue": true, "try": true, "catch": true, "loop": true,
}

// Token is one lexical token with its source span.
type Token struct {
	Kind    Kind
	Literal string
	Span    mqerr.Span
	// Safe marks a trailing `?` modifier on an identifier/call/selector.
	Safe bool
}

func (k Kind) String() string {
	names := map[Kind]string{
		EOF: "EOF", Ident: "Ident", Keyword: "Keyword", Int: "Int", Float: "Float",
		String: "String", InterpStringStart: "InterpStringStart", InterpStringMid: "InterpStringMid",
		InterpExprStart: "InterpExprStart", InterpExprEnd: "InterpExprEnd",
		InterpStringEnd: "InterpStringEnd", Symbol: "Symbol", SelectorHead: "SelectorHead",
		Op: "Op", Punct: "Punct", Comment: "Comment",
	}
	if s, ok := names[k]; ok {
		return s
	}
	return "Unknown"
}
