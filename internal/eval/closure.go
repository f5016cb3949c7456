package eval

import (
	"github.com/mqlang/mq/internal/ast"
	"github.com/mqlang/mq/internal/value"
)

// userFunc is a `def`-bound or `fn(...)` lambda closure: it captures the
// environment in effect at its definition and is invoked through the
// evaluator's generic apply path. It satisfies value.Closure so that
// lambdas can travel through the Value type like any other value (e.g.
// passed as an argument to `map`/`filter`/`fold`).
type userFunc struct {
	name   string
	params []string
	body   ast.Node
	env    Env // captured defining environment
}

func (f *userFunc) Name() string { return f.name }
func (f *userFunc) Arity() int   { return len(f.params) }

// builtinFunc wraps a name+arity+implementation triple for an intrinsic.
// Arity -1 marks a variadic builtin (no self-fill, no arity check).
type builtinFunc struct {
	name  string
	arity int
	impl  func(ev *Evaluator, args []value.Value) (value.Value, error)
}

func (f *builtinFunc) Name() string { return f.name }
func (f *builtinFunc) Arity() int {
	if f.arity < 0 {
		return 0
	}
	return f.arity
}
