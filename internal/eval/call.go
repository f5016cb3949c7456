package eval

import (
	"github.com/mqlang/mq/internal/ast"
	"github.com/mqlang/mq/internal/mqerr"
	"github.com/mqlang/mq/internal/value"
)

func (ev *Evaluator) evalCall(n *ast.Call, env Env) (value.Value, flow, error) {
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := ev.evalValue(a, env)
		if err != nil {
			return value.None, noFlow, err
		}
		args[i] = v
	}

	fn, err := ev.lookupFunction(n.Module, n.Name, env)
	if err != nil {
		if n.Safe && catchable(err) {
			return value.None, noFlow, nil
		}
		return value.None, noFlow, err
	}

	res, err := ev.callClosure(fn, ev.fillSelf(fn, args, env), env)
	if err != nil {
		if n.Safe && catchable(err) {
			return value.None, noFlow, nil
		}
		return value.None, noFlow, err
	}
	return res, noFlow, nil
}

// fillSelf implements "missing trailing arguments are filled from self
// only for the first positional slot" (spec §4.4): if the call is one
// argument short of the callee's arity, self is prepended.
func (ev *Evaluator) fillSelf(fn value.Closure, args []value.Value, env Env) []value.Value {
	if fn.Arity() > 0 && len(args) == fn.Arity()-1 {
		return append([]value.Value{env.Self()}, args...)
	}
	return args
}

func (ev *Evaluator) lookupFunction(module, name string, env Env) (value.Closure, error) {
	if module != "" {
		mod, ok := ev.modules[module]
		if !ok {
			return nil, mqerr.New(mqerr.KindName, mqerr.Span{}, "module %q not included", module)
		}
		fn, ok := mod.defs[name]
		if !ok {
			return nil, mqerr.New(mqerr.KindName, mqerr.Span{}, "module %q has no function %q", module, name)
		}
		return fn, nil
	}
	if v, ok := env.Lookup(name); ok && v.Kind() == value.KindFunction {
		return v.Function(), nil
	}
	if v, ok := ev.root.Lookup(name); ok && v.Kind() == value.KindFunction {
		return v.Function(), nil
	}
	return nil, mqerr.New(mqerr.KindName, mqerr.Span{}, "undefined function %q", name)
}

// callClosure invokes fn with the given (already self-filled) args,
// dispatching to either a builtin implementation or a user function's
// body, under the configured recursion-depth limit (spec §4.4).
func (ev *Evaluator) callClosure(fn value.Closure, args []value.Value, env Env) (value.Value, error) {
	if bf, ok := fn.(*builtinFunc); ok {
		if bf.arity >= 0 && len(args) != bf.arity {
			return value.None, mqerr.New(mqerr.KindArity, mqerr.Span{}, "%s: expected %d argument(s), got %d", bf.name, bf.arity, len(args))
		}
		return bf.impl(ev, args)
	}

	uf, ok := fn.(*userFunc)
	if !ok {
		return value.None, mqerr.New(mqerr.KindType, mqerr.Span{}, "value is not callable")
	}
	if len(args) != len(uf.params) {
		return value.None, mqerr.New(mqerr.KindArity, mqerr.Span{}, "%s: expected %d argument(s), got %d", uf.name, len(uf.params), len(args))
	}

	ev.depth++
	defer func() { ev.depth-- }()
	if ev.depth > ev.opts.MaxRecursion {
		return value.None, mqerr.New(mqerr.KindRecursionLimit, mqerr.Span{}, "recursion depth exceeded %d", ev.opts.MaxRecursion)
	}

	callEnv := uf.env.Child()
	for i, p := range uf.params {
		callEnv.Define(p, args[i])
	}
	v, fl, err := ev.eval(uf.body, callEnv)
	if err != nil {
		if me, ok := err.(*mqerr.Error); ok {
			return value.None, me.WithStackFrame(uf.name)
		}
		return value.None, err
	}
	if fl.kind == sigBreak {
		return fl.value, nil
	}
	return v, nil
}
