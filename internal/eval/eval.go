// Package eval implements the tree-walking evaluator (spec §4.4): pipe
// self-threading, function calls with arity checking and self-filling,
// control flow, try/catch and safe-call error suppression, and the
// built-in symbol table.
package eval

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mqlang/mq/internal/ast"
	"github.com/mqlang/mq/internal/mdast"
	"github.com/mqlang/mq/internal/mqerr"
	"github.com/mqlang/mq/internal/module"
	"github.com/mqlang/mq/internal/value"
)

// flowKind tags how a block/loop body wants to unwind: sigNone means
// "evaluated normally, keep going"; sigBreak/sigContinue carry break and
// continue up to the nearest enclosing loop (spec §4.4).
type flowKind int

const (
	sigNone flowKind = iota
	sigBreak
	sigContinue
)

type flow struct {
	kind  flowKind
	value value.Value // meaningful only for sigBreak
}

var noFlow = flow{kind: sigNone}

// Options configures one Evaluator (ambient, not built-in-language,
// concerns: resource limits and I/O sinks).
type Options struct {
	// MaxRecursion bounds user function call depth (default 1024).
	MaxRecursion int
	// MaxIterations bounds while/until loop iterations (default 1e6).
	MaxIterations int
	Stdout        io.Writer
	Stderr        io.Writer
	Logger        *slog.Logger
	Resolver      *module.Resolver
	// Args holds `--args NAME VALUE` / `--rawfile NAME PATH` bindings,
	// visible to the program as plain identifiers.
	Args map[string]string
	// Getenv resolves `$NAME` environment-variable references, reporting
	// whether NAME was set at all so an explicitly-empty value can be
	// told apart from an unset one (spec §6.3: only the unset case
	// yields None). Defaults to os.LookupEnv.
	Getenv func(string) (string, bool)
	// FilePath is the value `__FILE__` resolves to.
	FilePath string
}

func (o *Options) normalize() {
	if o.MaxRecursion <= 0 {
		o.MaxRecursion = 1024
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = 1_000_000
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(o.Stderr, nil))
	}
	if o.Resolver == nil {
		o.Resolver = module.NewResolver()
	}
	if o.Getenv == nil {
		o.Getenv = os.LookupEnv
	}
}

// moduleScope holds one resolved module's exported functions and the
// environment its top-level `let`s ran in (spec §4.3/§6.4).
type moduleScope struct {
	defs map[string]*userFunc
	env  Env
}

// Evaluator drives one program against a sequence of self-values. It is
// not safe for concurrent use — callers wanting input-level parallelism
// (spec §5) construct one Evaluator per worker.
type Evaluator struct {
	opts    Options
	root    Env
	modules map[string]*moduleScope
	depth   int

	// updates records, for every broadcast pipe stage (the mechanism a
	// selector match feeds its rest-of-pipeline result through), the
	// original Markdown node a result replaces. The driver (mq.Engine, in
	// --update mode) uses this to splice matched positions back into the
	// source tree while leaving everything else untouched (spec §4.4
	// update context). Recorded unconditionally since the bookkeeping is
	// cheap and harmless when the caller isn't running in update mode.
	updates map[*mdast.Node]value.Value
}

// Updates returns the node-replacement map accumulated by this run, for
// --update mode splicing (see eval/update.go's ApplyUpdates).
func (ev *Evaluator) Updates() map[*mdast.Node]value.Value { return ev.updates }

// recordUpdate notes that evaluating the rest of a broadcast pipeline with
// self bound to orig produced result. Only meaningful when orig is itself
// a node that came from the document being queried; other self values are
// ignored.
func (ev *Evaluator) recordUpdate(orig, result value.Value) {
	if orig.Kind() != value.KindNode || orig.Node() == nil {
		return
	}
	if ev.updates == nil {
		ev.updates = make(map[*mdast.Node]value.Value)
	}
	ev.updates[orig.Node()] = result
}

// New builds an Evaluator with built-ins registered into a fresh root
// scope.
func New(opts Options) *Evaluator {
	opts.normalize()
	ev := &Evaluator{
		opts:    opts,
		root:    RootEnv(),
		modules: make(map[string]*moduleScope),
	}
	registerBuiltins(ev.root)
	for name, val := range opts.Args {
		ev.root.Define(name, value.String(val))
	}
	return ev
}

// Run evaluates program against self and returns its result (spec §4.4:
// "For each input, it evaluates the program with self bound to that
// input").
func (ev *Evaluator) Run(program *ast.Program, self value.Value) (value.Value, error) {
	env := ev.root.WithSelf(self)
	v, _, err := ev.evalStmts(program.Stmts, env)
	return v, err
}

func catchable(err error) bool {
	var e *mqerr.Error
	if ok := errorsAs(err, &e); ok {
		return e.Catchable()
	}
	return true
}

// errorsAs is a tiny local shim so this file doesn't need to import
// "errors" solely for this one call site used across several files.
func errorsAs(err error, target **mqerr.Error) bool {
	e, ok := err.(*mqerr.Error)
	if ok {
		*target = e
	}
	return ok
}

// evalValue evaluates node for its value only, in a context with no loop
// to receive a break/continue signal; an unexpected signal is a no-op
// (the node isn't a loop body).
func (ev *Evaluator) evalValue(node ast.Node, env Env) (value.Value, error) {
	v, _, err := ev.eval(node, env)
	return v, err
}

func (ev *Evaluator) evalStmts(stmts []ast.Node, env Env) (value.Value, flow, error) {
	result := value.None
	for _, stmt := range stmts {
		v, fl, err := ev.eval(stmt, env)
		if err != nil {
			return value.None, noFlow, err
		}
		result = v
		if fl.kind != sigNone {
			return result, fl, nil
		}
	}
	return result, noFlow, nil
}

// eval is the single dispatch point for every AST node kind.
func (ev *Evaluator) eval(node ast.Node, env Env) (value.Value, flow, error) {
	switch n := node.(type) {
	case *ast.Program:
		return ev.evalStmts(n.Stmts, env)
	case *ast.Block:
		return ev.evalStmts(n.Stmts, env.Child())
	case *ast.Group:
		return ev.eval(n.Inner, env)

	case *ast.NumberLit:
		return value.Number(n.Value), noFlow, nil
	case *ast.StringLit:
		return value.String(n.Value), noFlow, nil
	case *ast.BoolLit:
		return value.Bool(n.Value), noFlow, nil
	case *ast.NoneLit:
		return value.None, noFlow, nil
	case *ast.SymbolLit:
		return value.Symbol(n.Name), noFlow, nil
	case *ast.SelfExpr:
		return env.Self(), noFlow, nil
	case *ast.InterpStringLit:
		return ev.evalInterpString(n, env)

	case *ast.Ident:
		return ev.evalIdent(n, env)
	case *ast.Call:
		return ev.evalCall(n, env)
	case *ast.Selector:
		v, err := ev.evalSelector(n, env)
		return v, noFlow, err
	case *ast.Pipe:
		return ev.evalPipe(n, env)
	case *ast.BinaryExpr:
		v, err := ev.evalBinary(n, env)
		return v, noFlow, err
	case *ast.UnaryExpr:
		v, err := ev.evalUnary(n, env)
		return v, noFlow, err

	case *ast.Let:
		v, err := ev.evalValue(n.Value, env)
		if err != nil {
			return value.None, noFlow, err
		}
		env.Define(n.Name, v)
		return v, noFlow, nil
	case *ast.VarAssign:
		v, err := ev.evalValue(n.Value, env)
		if err != nil {
			return value.None, noFlow, err
		}
		if !env.Assign(n.Name, v) {
			env.Define(n.Name, v)
		}
		return v, noFlow, nil
	case *ast.Def:
		fn := &userFunc{name: n.Name, params: n.Params, body: n.Body, env: env}
		env.Define(n.Name, value.Function(fn))
		return value.None, noFlow, nil
	case *ast.Lambda:
		fn := &userFunc{name: "<lambda>", params: n.Params, body: n.Body, env: env}
		return value.Function(fn), noFlow, nil

	case *ast.If:
		return ev.evalIf(n, env)
	case *ast.While:
		return ev.evalWhile(n, env)
	case *ast.Until:
		return ev.evalUntil(n, env)
	case *ast.Foreach:
		return ev.evalForeach(n, env)
	case *ast.Match:
		return ev.evalMatch(n, env)
	case *ast.Break:
		var v value.Value
		if n.Value != nil {
			bv, err := ev.evalValue(n.Value, env)
			if err != nil {
				return value.None, noFlow, err
			}
			v = bv
		}
		return v, flow{kind: sigBreak, value: v}, nil
	case *ast.Continue:
		return value.None, flow{kind: sigContinue}, nil
	case *ast.Try:
		return ev.evalTry(n, env)

	case *ast.Include:
		return ev.evalInclude(n, env)
	case *ast.Import:
		return ev.evalInclude(n, env) // import behaves identically to include (spec §4.2/§6.4 don't distinguish beyond name)
	case *ast.ModuleDecl:
		return ev.evalModuleDecl(n, env)

	default:
		return value.None, noFlow, mqerr.New(mqerr.KindType, mqerr.Span{}, "internal: unhandled AST node %T", node)
	}
}

func (ev *Evaluator) evalInterpString(n *ast.InterpStringLit, env Env) (value.Value, flow, error) {
	var sb []byte
	for _, part := range n.Parts {
		if part.Expr == nil {
			sb = append(sb, part.Text...)
			continue
		}
		v, err := ev.evalValue(part.Expr, env)
		if err != nil {
			return value.None, noFlow, err
		}
		sb = append(sb, value.ToString(v)...)
	}
	return value.String(string(sb)), noFlow, nil
}

func (ev *Evaluator) evalPipe(n *ast.Pipe, env Env) (value.Value, flow, error) {
	left, fl, err := ev.eval(n.Left, env)
	if err != nil || fl.kind != sigNone {
		return left, fl, err
	}
	if left.IsSequence() {
		return ev.broadcastPipe(n.Right, left.Array(), env)
	}
	child := env.WithSelf(left)
	return ev.eval(n.Right, child)
}

func (ev *Evaluator) evalIdent(n *ast.Ident, env Env) (value.Value, flow, error) {
	if len(n.Name) > 0 && n.Name[0] == '$' {
		if s, ok := ev.opts.Getenv(n.Name[1:]); ok {
			return value.String(s), noFlow, nil
		}
		return value.None, noFlow, nil
	}
	if n.Name == "__FILE__" {
		return value.String(ev.opts.FilePath), noFlow, nil
	}
	if v, ok := env.Lookup(n.Name); ok {
		return v, noFlow, nil
	}
	if v, ok := ev.root.Lookup(n.Name); ok {
		if v.Kind() == value.KindFunction {
			res, err := ev.callClosure(v.Function(), []value.Value{env.Self()}, env)
			if n.Safe && err != nil {
				if catchable(err) {
					return value.None, noFlow, nil
				}
			}
			return res, noFlow, err
		}
		return v, noFlow, nil
	}
	if n.Safe {
		return value.None, noFlow, nil
	}
	return value.None, noFlow, mqerr.New(mqerr.KindName, mqerr.Span{}, "undefined name %q", n.Name)
}
