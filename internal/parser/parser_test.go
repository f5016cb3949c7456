package parser

import (
	"testing"

	"github.com/mqlang/mq/internal/ast"
)

func parseOrFatal(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	return prog
}

func TestParsePipeline(t *testing.T) {
	prog := parseOrFatal(t, `.h | to_text() | upcase()`)
	if len(prog.Stmts) != 1 {
		t.Fatalf("want 1 top-level stmt, got %d", len(prog.Stmts))
	}
	top, ok := prog.Stmts[0].(*ast.Pipe)
	if !ok {
		t.Fatalf("want *ast.Pipe, got %T", prog.Stmts[0])
	}
	if _, ok := top.Left.(*ast.Pipe); !ok {
		t.Fatalf("expected left-nested pipe chain, got %T", top.Left)
	}
}

func TestParseLetAndDef(t *testing.T) {
	prog := parseOrFatal(t, `let x = 1; def square(n): n * n; x | square()`)
	if len(prog.Stmts) != 3 {
		t.Fatalf("want 3 stmts, got %d: %#v", len(prog.Stmts), prog.Stmts)
	}
	letStmt, ok := prog.Stmts[0].(*ast.Let)
	if !ok || letStmt.Name != "x" {
		t.Fatalf("want Let x, got %#v", prog.Stmts[0])
	}
	def, ok := prog.Stmts[1].(*ast.Def)
	if !ok || def.Name != "square" || len(def.Params) != 1 {
		t.Fatalf("want Def square(n), got %#v", prog.Stmts[1])
	}
}

func TestParseDefDocComment(t *testing.T) {
	prog, err := Parse("# doubles a number\ndef double(n): n * 2;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def, ok := prog.Stmts[0].(*ast.Def)
	if !ok {
		t.Fatalf("want *ast.Def, got %T", prog.Stmts[0])
	}
	if def.Doc == "" {
		t.Errorf("expected Def.Doc to be populated from preceding comment")
	}
}

func TestParseSelectorChain(t *testing.T) {
	prog := parseOrFatal(t, `.[0][1]`)
	sel, ok := prog.Stmts[0].(*ast.Selector)
	if !ok {
		t.Fatalf("want *ast.Selector, got %T", prog.Stmts[0])
	}
	if len(sel.Segments) != 2 {
		t.Fatalf("want 2 index segments, got %d", len(sel.Segments))
	}
}

func TestParseSelectorWithArgs(t *testing.T) {
	prog := parseOrFatal(t, `.code("js")`)
	sel, ok := prog.Stmts[0].(*ast.Selector)
	if !ok {
		t.Fatalf("want *ast.Selector, got %T", prog.Stmts[0])
	}
	if len(sel.Segments) != 1 || sel.Segments[0].Name != "code" || len(sel.Segments[0].Args) != 1 {
		t.Fatalf("unexpected segments: %#v", sel.Segments)
	}
}

func TestParseSafeSelector(t *testing.T) {
	prog := parseOrFatal(t, `.title?`)
	sel, ok := prog.Stmts[0].(*ast.Selector)
	if !ok || !sel.Safe {
		t.Fatalf("want safe selector, got %#v", prog.Stmts[0])
	}
}

func TestParseIfElifElse(t *testing.T) {
	prog := parseOrFatal(t, `if (self == 1): "a" elif (self == 2): "b" else: "c" end`)
	ifNode, ok := prog.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("want *ast.If, got %T", prog.Stmts[0])
	}
	if len(ifNode.Conds) != 2 || ifNode.Else == nil {
		t.Fatalf("unexpected if shape: %#v", ifNode)
	}
}

func TestParseMatch(t *testing.T) {
	prog := parseOrFatal(t, `match (self): | 1: "one" | x: x | _: "other" end`)
	m, ok := prog.Stmts[0].(*ast.Match)
	if !ok {
		t.Fatalf("want *ast.Match, got %T", prog.Stmts[0])
	}
	if len(m.Arms) != 3 {
		t.Fatalf("want 3 arms, got %d", len(m.Arms))
	}
	if _, ok := m.Arms[0].Pattern.(ast.LiteralPattern); !ok {
		t.Errorf("arm 0 should be a literal pattern, got %#v", m.Arms[0].Pattern)
	}
	if _, ok := m.Arms[1].Pattern.(ast.IdentPattern); !ok {
		t.Errorf("arm 1 should be an identifier pattern, got %#v", m.Arms[1].Pattern)
	}
	if _, ok := m.Arms[2].Pattern.(ast.WildcardPattern); !ok {
		t.Errorf("arm 2 should be a wildcard pattern, got %#v", m.Arms[2].Pattern)
	}
}

func TestParseMatchArrayPattern(t *testing.T) {
	prog := parseOrFatal(t, `match (self): | [a, b]: a | _: self end`)
	m := prog.Stmts[0].(*ast.Match)
	arr, ok := m.Arms[0].Pattern.(ast.ArrayPattern)
	if !ok || len(arr.Elems) != 2 {
		t.Fatalf("want 2-elem array pattern, got %#v", m.Arms[0].Pattern)
	}
}

func TestParseWhileUntilForeach(t *testing.T) {
	for _, src := range []string{
		`while (self < 10): self + 1;`,
		`until (self == 0): self - 1;`,
		`foreach (x, self): x | upcase();`,
	} {
		if _, err := Parse(src); err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", src, err)
		}
	}
}

func TestParseTryCatch(t *testing.T) {
	prog := parseOrFatal(t, `try: risky() catch: self end`)
	tryNode, ok := prog.Stmts[0].(*ast.Try)
	if !ok || tryNode.Catch == nil {
		t.Fatalf("want *ast.Try with catch body, got %#v", prog.Stmts[0])
	}
}

func TestParseModuleCall(t *testing.T) {
	prog := parseOrFatal(t, `include "strings"; strings::trim(self)`)
	inc, ok := prog.Stmts[0].(*ast.Include)
	if !ok || inc.Name != "strings" {
		t.Fatalf("want Include(\"strings\"), got %#v", prog.Stmts[0])
	}
	call, ok := prog.Stmts[1].(*ast.Call)
	if !ok || call.Module != "strings" || call.Name != "trim" {
		t.Fatalf("want Call strings::trim, got %#v", prog.Stmts[1])
	}
}

func TestParseInterpolatedString(t *testing.T) {
	prog := parseOrFatal(t, `s"hi ${name}!"`)
	lit, ok := prog.Stmts[0].(*ast.InterpStringLit)
	if !ok {
		t.Fatalf("want *ast.InterpStringLit, got %T", prog.Stmts[0])
	}
	if len(lit.Parts) != 3 {
		t.Fatalf("want 3 parts (text, expr, text), got %d: %#v", len(lit.Parts), lit.Parts)
	}
	if lit.Parts[1].Expr == nil {
		t.Errorf("part 1 should carry an expression")
	}
}

func TestParseLambdaAndFold(t *testing.T) {
	prog := parseOrFatal(t, `fold(fn(acc, x): acc + x;, 0)`)
	call, ok := prog.Stmts[0].(*ast.Call)
	if !ok || call.Name != "fold" || len(call.Args) != 2 {
		t.Fatalf("want Call fold(lambda, 0), got %#v", prog.Stmts[0])
	}
	if _, ok := call.Args[0].(*ast.Lambda); !ok {
		t.Errorf("first arg should be a lambda, got %T", call.Args[0])
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	prog := parseOrFatal(t, `1 + 2 * 3 == 7 && true`)
	top, ok := prog.Stmts[0].(*ast.BinaryExpr)
	if !ok || top.Op != "&&" {
		t.Fatalf("want top-level &&, got %#v", prog.Stmts[0])
	}
	eq, ok := top.Left.(*ast.BinaryExpr)
	if !ok || eq.Op != "==" {
		t.Fatalf("want == under &&, got %#v", top.Left)
	}
	add, ok := eq.Left.(*ast.BinaryExpr)
	if !ok || add.Op != "+" {
		t.Fatalf("want + under ==, got %#v", eq.Left)
	}
	if _, ok := add.Right.(*ast.BinaryExpr); !ok {
		t.Errorf("want * nested under + (precedence), got %#v", add.Right)
	}
}

func TestParseBreakContinue(t *testing.T) {
	prog := parseOrFatal(t, `while (true): if (self == 5): break self; end;`)
	if len(prog.Stmts) != 1 {
		t.Fatalf("want 1 stmt, got %d", len(prog.Stmts))
	}
}

func TestParseErrorsDoNotPanic(t *testing.T) {
	bad := []string{
		`let = 1`,
		`def foo(: body;`,
		`if (true) no colon`,
		`match (x): | end`,
		`.code(`,
		`1 +`,
		`"unterminated`,
	}
	for _, src := range bad {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Parse(%q) panicked: %v", src, r)
				}
			}()
			if _, err := Parse(src); err == nil {
				t.Errorf("Parse(%q): expected error, got none", src)
			}
		}()
	}
}

func FuzzParser(f *testing.F) {
	seeds := []string{
		`.h | to_text() | upcase()`,
		`let x = 1; def square(n): n * n; x | square()`,
		`if (self == 1): "a" elif (self == 2): "b" else: "c" end`,
		`match (self): | 1: "one" | [a, b]: a | _: "other" end`,
		`while (self < 10): self + 1;`,
		`try: risky() catch: self end`,
		`include "strings"; strings::trim(self)`,
		`s"hi ${name}!"`,
		`fold(fn(acc, x): acc + x;, 0)`,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, src string) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("Parse panicked on %q: %v", src, r)
			}
		}()
		_, _ = Parse(src)
	})
}
