package lexer

import (
	"testing"

	"github.com/mqlang/mq/internal/token"
)

func TestLexSimpleTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Kind
	}{
		{
			name:  "identifier and call",
			input: "upcase()",
			want:  []token.Kind{token.Ident, token.Punct, token.Punct, token.EOF},
		},
		{
			name:  "selector",
			input: ".h | to_text()",
			want:  []token.Kind{token.SelectorHead, token.Op, token.Ident, token.Punct, token.Punct, token.EOF},
		},
		{
			name:  "number literals",
			input: "1 1.5 1e10",
			want:  []token.Kind{token.Int, token.Float, token.Float, token.EOF},
		},
		{
			name:  "symbol",
			input: ":name",
			want:  []token.Kind{token.Symbol, token.EOF},
		},
		{
			name:  "keyword vs identifier",
			input: "let x = if",
			want:  []token.Kind{token.Keyword, token.Ident, token.Op, token.Keyword, token.EOF},
		},
		{
			name:  "comment to end of line",
			input: "let x = 1 # trailing\nlet y = 2",
			want:  []token.Kind{token.Keyword, token.Ident, token.Op, token.Int, token.Comment, token.Keyword, token.Ident, token.Op, token.Int, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("Lex(%q) error: %v", tt.input, err)
			}
			if len(toks) != len(tt.want) {
				t.Fatalf("Lex(%q) = %d tokens, want %d (%v)", tt.input, len(toks), len(tt.want), toks)
			}
			for i, k := range tt.want {
				if toks[i].Kind != k {
					t.Errorf("token %d: got %v, want %v", i, toks[i].Kind, k)
				}
			}
		})
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks, err := Lex(`"a\nb\u{41}"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) != 2 || toks[0].Kind != token.String {
		t.Fatalf("got %v", toks)
	}
	want := "a\nbA"
	if toks[0].Literal != want {
		t.Errorf("got literal %q, want %q", toks[0].Literal, want)
	}
}

func TestLexInterpolatedString(t *testing.T) {
	toks, err := Lex(`s"hi ${name}!"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantKinds := []token.Kind{
		token.InterpStringStart,
		token.InterpStringMid,
		token.InterpExprStart,
		token.Ident,
		token.InterpExprEnd,
		token.InterpStringMid,
		token.InterpStringEnd,
		token.EOF,
	}
	if len(toks) != len(wantKinds) {
		t.Fatalf("got %d tokens (%v), want %d", len(toks), toks, len(wantKinds))
	}
	for i, k := range wantKinds {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestLexUnterminatedStringFails(t *testing.T) {
	_, err := Lex(`"unterminated`)
	if err == nil {
		t.Fatal("expected a LexError, got nil")
	}
}

func TestLexSafeCallSuffix(t *testing.T) {
	toks, err := Lex(`.title?`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !toks[0].Safe {
		t.Errorf("expected Safe=true on selector token, got %+v", toks[0])
	}
}

func FuzzLex(f *testing.F) {
	seeds := []string{
		`.h | to_text()`,
		`let x = 1 | x + 2`,
		`s"a${1+2}b"`,
		`"\u{1F600}"`,
		`include "utils"`,
		`match (x): | 1: "a" | _: "b" end`,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, src string) {
		// Lex must never panic on arbitrary input; errors are fine.
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("Lex panicked on %q: %v", src, r)
			}
		}()
		_, _ = Lex(src)
	})
}
