package eval

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mqlang/mq/internal/mdast"
	"github.com/mqlang/mq/internal/mqerr"
	"github.com/mqlang/mq/internal/parser"
	"github.com/mqlang/mq/internal/value"
)

// run parses src and evaluates it against self, the way mq.Engine.Run does
// for one input document, using a fresh Evaluator with default options.
func run(t *testing.T, src string, self value.Value) value.Value {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	ev := New(Options{})
	v, err := ev.Run(prog, self)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v
}

func runErr(t *testing.T, src string, self value.Value) error {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	ev := New(Options{})
	_, err = ev.Run(prog, self)
	return err
}

func doc(t *testing.T, src string) *mdast.Node {
	t.Helper()
	n, err := mdast.Parse(src)
	if err != nil {
		t.Fatalf("parse markdown: %v", err)
	}
	return n
}

// TestPipeBroadcastsOverSelectorMatches exercises spec §8 scenario (a): a
// selector matching more than one node produces a stream that the rest of
// the pipeline runs over element by element, not once against the whole
// collected array.
func TestPipeBroadcastsOverSelectorMatches(t *testing.T) {
	root := doc(t, "# A\n\n## B\n\npara\n")
	got := run(t, ".h | to_text()", value.NodeValue(root))
	if !got.IsSequence() {
		t.Fatalf("expected a sequence result, got %v", got)
	}
	items := got.Array()
	if len(items) != 2 || items[0].Str() != "A" || items[1].Str() != "B" {
		t.Fatalf("got %v, want [A B]", items)
	}
}

// TestPipeSingleMatchPassesThrough checks that a selector matching exactly
// one node behaves like an ordinary pipe (no stray one-element sequence
// surfacing as a surprising array downstream).
func TestPipeSingleMatchPassesThrough(t *testing.T) {
	root := doc(t, "# Only\n")
	got := run(t, ".h | to_text()", value.NodeValue(root))
	if got.IsSequence() {
		t.Fatalf("a single match should not be tagged as a sequence: %v", got)
	}
	if got.Str() != "Only" {
		t.Fatalf("got %q, want %q", got.Str(), "Only")
	}
}

// TestSelectFiltersBySelf covers spec §4.5: "select(cond) returns the
// input if cond is truthy, else None (pipelines skip None silently)".
func TestSelectFiltersBySelf(t *testing.T) {
	kept := run(t, "3 | select(gt(self, 2))", value.None)
	if kept.Number() != 3 {
		t.Fatalf("got %v, want 3", kept)
	}
	dropped := run(t, "1 | select(gt(self, 2))", value.None)
	if !dropped.IsNone() {
		t.Fatalf("got %v, want None", dropped)
	}
}

// TestSelectorUpdateBroadcastSplicesInPlace covers spec §8 scenario (c):
// set_attr applied per matched link, spliced back via ApplyUpdates, with
// non-matching content (the "and" text) untouched.
func TestSelectorUpdateBroadcastSplicesInPlace(t *testing.T) {
	root := doc(t, "[x](old/a) and [y](old/b)\n")
	prog, err := parser.Parse(`.link | set_attr(self, "url", "https://new/" + self.url)`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ev := New(Options{})
	if _, err := ev.Run(prog, value.NodeValue(root)); err != nil {
		t.Fatalf("eval: %v", err)
	}
	updated := ApplyUpdates(root, ev.Updates())
	links := collectKind(value.NodeValue(updated), mdast.KindLink)
	if len(links) != 2 {
		t.Fatalf("expected 2 links after splice, got %d", len(links))
	}
	if links[0].Node().URL != "https://new/old/a" || links[1].Node().URL != "https://new/old/b" {
		t.Fatalf("urls not rewritten: %+v %+v", links[0].Node(), links[1].Node())
	}
}

// TestSafeCallSuppressesCatchableError covers glossary "Safe call" and
// spec invariant 6.
func TestSafeCallSuppressesCatchableError(t *testing.T) {
	got := run(t, "undefined_name?", value.None)
	if !got.IsNone() {
		t.Fatalf("got %v, want None", got)
	}
	if err := runErr(t, "undefined_name", value.None); err == nil {
		t.Fatalf("expected an error without the safe-call suffix")
	}
}

// TestTryCatchBindsErrorAsSelf covers spec §4.2's try/catch: "evaluate b
// with the error value bound to self".
func TestTryCatchBindsErrorAsSelf(t *testing.T) {
	got := run(t, `try: div(1, 0) catch: type(self);`, value.None)
	if got.Str() != "error" {
		t.Fatalf("got %v, want the caught error's type", got)
	}
}

// TestWhileCollectsIterationResults covers spec §4.2: "while ... collects
// each iteration's result into an array and returns it".
func TestWhileCollectsIterationResults(t *testing.T) {
	got := run(t, `var i = 0; while (lt(i, 3)): var i = add(i, 1);`, value.None)
	items := got.Array()
	if len(items) != 3 || items[0].Number() != 1 || items[2].Number() != 3 {
		t.Fatalf("got %v, want [1 2 3]", items)
	}
}

// TestForeachBindsPerIterationScope covers spec §4.4: foreach "binds the
// loop variable in a fresh child scope per iteration".
func TestForeachBindsPerIterationScope(t *testing.T) {
	got := run(t, `foreach (x, range(0, 3)): mul(x, 10);`, value.None)
	items := got.Array()
	if len(items) != 3 || items[0].Number() != 0 || items[2].Number() != 20 {
		t.Fatalf("got %v, want [0 10 20]", items)
	}
}

// TestBreakUnwindsToNearestLoop covers spec §4.4 control flow for break.
func TestBreakUnwindsToNearestLoop(t *testing.T) {
	got := run(t, `foreach (x, range(0, 5)): if (eq(x, 2)): break(x) else: x;`, value.None)
	if got.Number() != 2 {
		t.Fatalf("got %v, want 2", got)
	}
}

// TestRecursionLimitRaisesCatchableError covers spec §4.4/§7:
// "RecursionLimit ... raises ... instead of a host-level crash" and is
// catchable.
func TestRecursionLimitRaisesCatchableError(t *testing.T) {
	src := `def loopy(n): loopy(add(n, 1)); loopy(0)`
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ev := New(Options{MaxRecursion: 32})
	_, err = ev.Run(prog, value.None)
	if err == nil {
		t.Fatalf("expected a recursion-limit error")
	}
	var me *mqerr.Error
	if !errors.As(err, &me) || me.Kind != mqerr.KindRecursionLimit || !me.Catchable() {
		t.Fatalf("got %v, want a catchable RecursionLimit error", err)
	}
}

// TestModuleIncludeAndCall covers spec §8 scenario (f).
func TestModuleIncludeAndCall(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "utils.mq"), []byte("def double(x): mul(x, 2);\ndef triple(x): mul(x, 3);\n"), 0o644); err != nil {
		t.Fatalf("write module: %v", err)
	}

	prog, err := parser.Parse(`include "utils"; to_number() | utils::double()`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ev := New(Options{})
	ev.opts.Resolver.UserDir = dir
	got, err := ev.Run(prog, value.String("21"))
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got.Number() != 42 {
		t.Fatalf("got %v, want 42", got.Number())
	}
}
