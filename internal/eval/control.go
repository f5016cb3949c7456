package eval

import (
	"github.com/mqlang/mq/internal/ast"
	"github.com/mqlang/mq/internal/mqerr"
	"github.com/mqlang/mq/internal/value"
)

func (ev *Evaluator) evalIf(n *ast.If, env Env) (value.Value, flow, error) {
	for i, cond := range n.Conds {
		cv, err := ev.evalValue(cond, env)
		if err != nil {
			return value.None, noFlow, err
		}
		if cv.Truthy() {
			return ev.eval(n.Blocks[i], env.Child())
		}
	}
	if n.Else != nil {
		return ev.eval(n.Else, env.Child())
	}
	return value.None, noFlow, nil
}

// evalWhile collects each iteration's result into an array (spec §4.4).
func (ev *Evaluator) evalWhile(n *ast.While, env Env) (value.Value, flow, error) {
	var results []value.Value
	for i := 0; ; i++ {
		if i >= ev.opts.MaxIterations {
			return value.None, noFlow, mqerr.New(mqerr.KindIterationLimit, mqerr.Span{}, "loop exceeded %d iterations", ev.opts.MaxIterations)
		}
		cv, err := ev.evalValue(n.Cond, env)
		if err != nil {
			return value.None, noFlow, err
		}
		if !cv.Truthy() {
			break
		}
		v, fl, err := ev.eval(n.Body, env.Child())
		if err != nil {
			return value.None, noFlow, err
		}
		if fl.kind == sigBreak {
			return fl.value, noFlow, nil
		}
		if fl.kind == sigContinue {
			continue
		}
		results = append(results, v)
	}
	return value.ArrayNoCopy(results), noFlow, nil
}

// evalUntil evaluates the body before re-checking the condition, and
// returns the last body value (spec §4.4).
func (ev *Evaluator) evalUntil(n *ast.Until, env Env) (value.Value, flow, error) {
	last := value.None
	for i := 0; ; i++ {
		if i >= ev.opts.MaxIterations {
			return value.None, noFlow, mqerr.New(mqerr.KindIterationLimit, mqerr.Span{}, "loop exceeded %d iterations", ev.opts.MaxIterations)
		}
		v, fl, err := ev.eval(n.Body, env.Child())
		if err != nil {
			return value.None, noFlow, err
		}
		if fl.kind == sigBreak {
			return fl.value, noFlow, nil
		}
		if fl.kind != sigContinue {
			last = v
		}
		cv, err := ev.evalValue(n.Cond, env)
		if err != nil {
			return value.None, noFlow, err
		}
		if cv.Truthy() {
			break
		}
	}
	return last, noFlow, nil
}

// evalForeach iterates an array, a dict's values, or a node's children,
// producing an array of per-iteration results (spec §4.4).
func (ev *Evaluator) evalForeach(n *ast.Foreach, env Env) (value.Value, flow, error) {
	seq, err := ev.evalValue(n.Seq, env)
	if err != nil {
		return value.None, noFlow, err
	}
	items, err := iterableItems(seq)
	if err != nil {
		return value.None, noFlow, err
	}

	var results []value.Value
	for i, item := range items {
		if i >= ev.opts.MaxIterations {
			return value.None, noFlow, mqerr.New(mqerr.KindIterationLimit, mqerr.Span{}, "loop exceeded %d iterations", ev.opts.MaxIterations)
		}
		iterEnv := env.Child()
		iterEnv.Define(n.Var, item)
		v, fl, err := ev.eval(n.Body, iterEnv)
		if err != nil {
			return value.None, noFlow, err
		}
		if fl.kind == sigBreak {
			return fl.value, noFlow, nil
		}
		if fl.kind == sigContinue {
			continue
		}
		results = append(results, v)
	}
	return value.ArrayNoCopy(results), noFlow, nil
}

func iterableItems(v value.Value) ([]value.Value, error) {
	switch v.Kind() {
	case value.KindArray:
		return v.Array(), nil
	case value.KindDict:
		return v.Dict().Values(), nil
	case value.KindNode:
		children := v.Node().Children
		items := make([]value.Value, len(children))
		for i, c := range children {
			items[i] = value.NodeValue(c)
		}
		return items, nil
	case value.KindNone:
		return nil, nil
	default:
		return nil, mqerr.New(mqerr.KindType, mqerr.Span{}, "foreach: %s is not iterable", value.TypeName(v))
	}
}

// evalMatch tries arms top-to-bottom; the first matching pattern wins
// (spec §4.4).
func (ev *Evaluator) evalMatch(n *ast.Match, env Env) (value.Value, flow, error) {
	subject, err := ev.evalValue(n.Subject, env)
	if err != nil {
		return value.None, noFlow, err
	}
	for _, arm := range n.Arms {
		matchEnv, ok, err := ev.matchPattern(arm.Pattern, subject, env)
		if err != nil {
			return value.None, noFlow, err
		}
		if ok {
			return ev.eval(arm.Body, matchEnv)
		}
	}
	return value.None, noFlow, nil
}

func (ev *Evaluator) matchPattern(pat ast.Pattern, v value.Value, env Env) (Env, bool, error) {
	switch p := pat.(type) {
	case ast.WildcardPattern:
		return env, true, nil
	case ast.IdentPattern:
		child := env.Child()
		child.Define(p.Name, v)
		return child, true, nil
	case ast.LiteralPattern:
		want, err := ev.evalValue(p.Value, env)
		if err != nil {
			return env, false, err
		}
		return env, value.Equal(want, v), nil
	case ast.ArrayPattern:
		if v.Kind() != value.KindArray || len(v.Array()) != len(p.Elems) {
			return env, false, nil
		}
		child := env.Child()
		items := v.Array()
		for i, elemPat := range p.Elems {
			next, ok, err := ev.matchPattern(elemPat, items[i], child)
			if err != nil {
				return env, false, err
			}
			if !ok {
				return env, false, nil
			}
			child = next
		}
		return child, true, nil
	default:
		return env, false, mqerr.New(mqerr.KindType, mqerr.Span{}, "internal: unhandled match pattern %T", pat)
	}
}

// evalTry evaluates body; if it raises a catchable error, the catch
// block runs with the error value bound to self (spec §4.2/§4.4).
func (ev *Evaluator) evalTry(n *ast.Try, env Env) (value.Value, flow, error) {
	v, fl, err := ev.eval(n.Body, env.Child())
	if err == nil {
		return v, fl, nil
	}
	if !catchable(err) {
		return value.None, noFlow, err
	}
	errVal := errorToValue(err)
	return ev.eval(n.Catch, env.WithSelf(errVal))
}

func errorToValue(err error) value.Value {
	if me, ok := err.(*mqerr.Error); ok {
		return value.ErrorValue(string(me.Kind), me.Message, me.Span.Line, me.Span.Column)
	}
	return value.ErrorValue("Error", err.Error(), 0, 0)
}
