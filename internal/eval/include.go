package eval

import (
	"github.com/mqlang/mq/internal/ast"
	"github.com/mqlang/mq/internal/value"
)

// evalInclude resolves and loads a module, exporting its top-level `def`s
// under `name::function` and running its top-level `let`s once in a
// dedicated module environment (spec §4.3/§6.4). Re-including an already
// loaded module is a no-op, which is what makes "two include statements
// parse m.mq exactly once" (spec §8 property 5) hold at the evaluation
// layer too.
func (ev *Evaluator) evalInclude(n *ast.Include, env Env) (value.Value, flow, error) {
	if _, ok := ev.modules[n.Name]; ok {
		return value.None, noFlow, nil
	}
	mod, err := ev.opts.Resolver.Resolve(n.Name, ev.opts.FilePath)
	if err != nil {
		return value.None, noFlow, err
	}
	scope, err := ev.loadModuleBody(mod.Program.Stmts)
	if err != nil {
		return value.None, noFlow, err
	}
	ev.modules[n.Name] = scope
	return value.None, noFlow, nil
}

// evalModuleDecl handles the inline `module NAME: ... end` form, sharing
// the same namespace mechanics as a file-backed include.
func (ev *Evaluator) evalModuleDecl(n *ast.ModuleDecl, env Env) (value.Value, flow, error) {
	block, ok := n.Body.(*ast.Block)
	if !ok {
		return value.None, noFlow, nil
	}
	scope, err := ev.loadModuleBody(block.Stmts)
	if err != nil {
		return value.None, noFlow, err
	}
	ev.modules[n.Name] = scope
	return value.None, noFlow, nil
}

func (ev *Evaluator) loadModuleBody(stmts []ast.Node) (*moduleScope, error) {
	modEnv := ev.root.Child()
	defs := make(map[string]*userFunc)
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.Def:
			fn := &userFunc{name: s.Name, params: s.Params, body: s.Body, env: modEnv}
			defs[s.Name] = fn
			// Defined in modEnv too, so the module's own functions can
			// call each other (and recurse) without a self-qualified
			// `name::fn` prefix.
			modEnv.Define(s.Name, value.Function(fn))
		case *ast.Let:
			v, err := ev.evalValue(s.Value, modEnv)
			if err != nil {
				return nil, err
			}
			modEnv.Define(s.Name, v)
		case *ast.Include:
			if _, _, err := ev.evalInclude(s, modEnv); err != nil {
				return nil, err
			}
		default:
			if _, _, err := ev.eval(stmt, modEnv); err != nil {
				return nil, err
			}
		}
	}
	return &moduleScope{defs: defs, env: modEnv}, nil
}
