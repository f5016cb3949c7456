// Package mq implements a jq-like query and transformation language for
// Markdown documents. It exposes the entry points that the out-of-scope
// CLI, LSP/DAP, REPL/TUI, web crawler, FFI, and editor-plugin
// collaborators would call: NewEngine, Compile, and Engine.Run.
package mq

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mqlang/mq/internal/ast"
	"github.com/mqlang/mq/internal/eval"
	"github.com/mqlang/mq/internal/mdast"
	"github.com/mqlang/mq/internal/module"
	"github.com/mqlang/mq/internal/mqerr"
	"github.com/mqlang/mq/internal/parser"
	"github.com/mqlang/mq/internal/render"
	"github.com/mqlang/mq/internal/value"
)

// InputFormat selects how raw input text is converted into a sequence of
// runtime values (spec §6.2).
type InputFormat string

const (
	InputMarkdown InputFormat = "markdown"
	InputMDX      InputFormat = "mdx"
	InputHTML     InputFormat = "html"
	InputText     InputFormat = "text"
	InputRaw      InputFormat = "raw"
	InputNull     InputFormat = "null"
)

// OutputFormat selects how the program's result value is rendered back
// to text (spec §4.6/§6.2).
type OutputFormat string

const (
	OutputMarkdown OutputFormat = "markdown"
	OutputHTML     OutputFormat = "html"
	OutputJSON     OutputFormat = "json"
	OutputText     OutputFormat = "text"
	OutputNone     OutputFormat = "none"
)

// Mode selects how a batch of inputs is grouped into evaluation runs
// (spec §4.4 "driver reads... a sequence of input values", glossary
// entries for "Aggregate mode" / "Stream mode").
type Mode string

const (
	// ModeDocument runs the program once per input, each with self bound
	// to that input's own value (the default).
	ModeDocument Mode = "document"
	// ModeStream splits text input into lines and runs once per line.
	ModeStream Mode = "stream"
	// ModeAggregate collects every input into one array and runs the
	// program once against that array.
	ModeAggregate Mode = "aggregate"
)

// Options configures one Engine: resource limits, the query-callable
// environment (spec §6.3), and rendering knobs. It mirrors the teacher's
// flag bundle in cmd/dml/main.go — numeric knobs with defaults applied
// after construction, explicit overrides taking precedence over zero
// values.
type Options struct {
	// MaxRecursionDepth bounds user function call depth (default 1024).
	MaxRecursionDepth int
	// MaxLoopIterations bounds while/until loop iterations (default 1e6).
	MaxLoopIterations int
	// IncludePaths names module directories. Only the first entry is
	// used: it replaces the resolver's user directory (~/.mq) and is
	// searched before the lib/mq neighbors; later entries are ignored.
	IncludePaths []string

	// Env resolves `$NAME` references (spec §6.3); defaults to
	// os.LookupEnv. Injectable for testing and for sandboxing a query
	// from the real process environment.
	Env func(string) (string, bool)
	// Args holds `--args NAME VALUE` bindings, visible to the program as
	// plain identifiers.
	Args map[string]string
	// RawFiles holds `--rawfile NAME PATH` bindings: NAME is bound to
	// the already-read contents of PATH. mq never opens the file itself
	// (spec §9 non-goals: no file I/O beyond include/--rawfile).
	RawFiles map[string]string
	// CurrentFile is the value `__FILE__` resolves to.
	CurrentFile string

	Input  InputFormat
	Output OutputFormat
	Mode   Mode
	// Update runs in splice mode (spec §6 scenario c): selector-matched
	// positions are rewritten in the reconstructed document; non-matching
	// regions are left as their original in-memory nodes and
	// re-rendered, not copied byte-for-byte from source (see DESIGN.md).
	Update bool
	Render render.Config

	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func (o *Options) normalize() {
	if o.MaxRecursionDepth <= 0 {
		o.MaxRecursionDepth = 1024
	}
	if o.MaxLoopIterations <= 0 {
		o.MaxLoopIterations = 1_000_000
	}
	if o.Env == nil {
		o.Env = os.LookupEnv
	}
	if o.Input == "" {
		o.Input = InputMarkdown
	}
	if o.Output == "" {
		o.Output = OutputMarkdown
	}
	if o.Mode == "" {
		o.Mode = ModeDocument
	}
	if o.Render == (render.Config{}) {
		o.Render = render.DefaultConfig()
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
}

// Program is a parsed, not-yet-evaluated query (spec §3.3).
type Program struct {
	ast    *ast.Program
	source string
}

// Engine drives one or more Program runs against a shared module
// resolver and built-in registry, the way the teacher's cmd/dml holds
// one effective set of flags across its whole input stream. An Engine is
// not safe for concurrent use (spec §5: "each input document is
// evaluated in its own logical task"); construct one Engine per worker
// for input-level parallelism.
type Engine struct {
	opts     Options
	resolver *module.Resolver
}

// NewEngine builds an Engine, applying option defaults and constructing
// a module resolver. When IncludePaths is set, its first entry takes the
// place of ~/.mq as the resolver's user directory, ahead of the lib/mq
// directories.
func NewEngine(opts Options) *Engine {
	opts.normalize()
	r := module.NewResolver()
	if len(opts.IncludePaths) > 0 {
		r.UserDir = opts.IncludePaths[0]
	}
	return &Engine{opts: opts, resolver: r}
}

// Compile parses source into a reusable Program (spec §4.2). Parse
// errors are fatal (mqerr.KindParse, never catchable) and are returned
// directly.
func (e *Engine) Compile(source string) (*Program, error) {
	prog, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	return &Program{ast: prog, source: source}, nil
}

// Result is one input document's evaluation outcome: its rendered
// output, or the error that aborted it (spec §4.4: "uncaught errors
// abort the current input document, not the whole process").
type Result struct {
	Output string
	Err    error
}

// ExitCode maps a batch of Results to the process exit status spec §6.2
// names: 0 success, 1 evaluation error for at least one input, 2
// usage/parse error, 3 module-resolution error. Compile/resolver errors
// surface before any Result exists, so callers check those separately;
// ExitCode only classifies per-input evaluation failures.
func ExitCode(results []Result) int {
	for _, r := range results {
		if r.Err == nil {
			continue
		}
		if me, ok := r.Err.(*mqerr.Error); ok {
			switch me.Kind {
			case mqerr.KindModuleNotFound, mqerr.KindCycle:
				return 3
			}
		}
		return 1
	}
	return 0
}

// Run evaluates program against each of inputs, one Result per logical
// document under opts.Mode (spec §4.4, §6.2). Input text is ingested per
// opts.Input and the result value rendered per opts.Output.
func (e *Engine) Run(program *Program, inputs []string) ([]Result, error) {
	values, err := e.ingest(inputs)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(values))
	for i, v := range values {
		ev := e.newEvaluator()
		out, evalErr := ev.Run(program.ast, v)
		if evalErr != nil {
			results[i] = Result{Err: evalErr}
			e.opts.Logger.Warn("mq: evaluation failed", "index", i, "error", evalErr)
			continue
		}
		if e.opts.Update && v.Kind() == value.KindNode {
			spliced := eval.ApplyUpdates(v.Node(), ev.Updates())
			results[i] = Result{Output: e.render(value.NodeValue(spliced))}
			continue
		}
		results[i] = Result{Output: e.render(out)}
	}
	return results, nil
}

// RunString is a convenience wrapper around Run for the common
// single-document case (spec §6 scenarios a/b/d/e/f all exercise exactly
// this shape).
func (e *Engine) RunString(program *Program, input string) (string, error) {
	results, err := e.Run(program, []string{input})
	if err != nil {
		return "", err
	}
	if results[0].Err != nil {
		return "", results[0].Err
	}
	return results[0].Output, nil
}

func (e *Engine) newEvaluator() *eval.Evaluator {
	return eval.New(eval.Options{
		MaxRecursion:  e.opts.MaxRecursionDepth,
		MaxIterations: e.opts.MaxLoopIterations,
		Stdout:        e.opts.Stdout,
		Stderr:        e.opts.Stderr,
		Logger:        e.opts.Logger,
		Resolver:      e.resolver,
		Args:          e.mergedArgs(),
		Getenv:        e.opts.Env,
		FilePath:      e.opts.CurrentFile,
	})
}

func (e *Engine) mergedArgs() map[string]string {
	if len(e.opts.RawFiles) == 0 {
		return e.opts.Args
	}
	merged := make(map[string]string, len(e.opts.Args)+len(e.opts.RawFiles))
	for k, v := range e.opts.Args {
		merged[k] = v
	}
	for k, v := range e.opts.RawFiles {
		merged[k] = v
	}
	return merged
}

// ingest converts raw input text into one value.Value per logical
// document, honoring Mode (document/stream/aggregate) and Input format.
func (e *Engine) ingest(inputs []string) ([]value.Value, error) {
	docs := make([]value.Value, 0, len(inputs))
	for _, in := range inputs {
		v, err := e.ingestOne(in)
		if err != nil {
			return nil, err
		}
		docs = append(docs, v...)
	}

	switch e.opts.Mode {
	case ModeAggregate:
		return []value.Value{value.Array(docs)}, nil
	default:
		return docs, nil
	}
}

// ingestOne converts one raw input string into one or more values: one
// per §6.2 input surface, or (stream mode, text input) one per line.
func (e *Engine) ingestOne(in string) ([]value.Value, error) {
	switch e.opts.Input {
	case InputNull:
		return []value.Value{value.None}, nil
	case InputRaw:
		return []value.Value{value.String(in)}, nil
	case InputText:
		if e.opts.Mode == ModeStream {
			lines := strings.Split(in, "\n")
			out := make([]value.Value, len(lines))
			for i, l := range lines {
				out[i] = value.String(l)
			}
			return out, nil
		}
		return []value.Value{value.String(in)}, nil
	case InputMarkdown:
		n, err := mdast.Parse(in)
		if err != nil {
			return nil, mqerr.Wrap(mqerr.KindIO, mqerr.Span{}, err, "ingest markdown")
		}
		return []value.Value{value.NodeValue(n)}, nil
	case InputMDX:
		n, err := mdast.ParseMDX(in)
		if err != nil {
			return nil, mqerr.Wrap(mqerr.KindIO, mqerr.Span{}, err, "ingest mdx")
		}
		return []value.Value{value.NodeValue(n)}, nil
	case InputHTML:
		n, err := mdast.ParseHTML(in)
		if err != nil {
			return nil, mqerr.Wrap(mqerr.KindIO, mqerr.Span{}, err, "ingest html")
		}
		return []value.Value{value.NodeValue(n)}, nil
	default:
		return []value.Value{value.String(in)}, nil
	}
}

// render serializes a program's result value under opts.Output.
func (e *Engine) render(v value.Value) string {
	switch e.opts.Output {
	case OutputNone:
		return ""
	case OutputJSON:
		b, err := render.ToJSON(v)
		if err != nil {
			e.opts.Logger.Warn("mq: json render failed", "error", err)
			return ""
		}
		return string(b)
	case OutputHTML:
		return renderEach(v, func(n *mdast.Node) string { return render.ToHTML(n, e.opts.Render) })
	case OutputText:
		return render.ToText(v)
	default:
		return renderEach(v, func(n *mdast.Node) string { return render.ToMarkdown(n, e.opts.Render) })
	}
}

// renderEach applies a node renderer across a scalar node value or an
// array of node values, newline-joining multiple results — selectors
// routinely return an array of matched subtrees (spec §4.4 "Selectors").
func renderEach(v value.Value, one func(*mdast.Node) string) string {
	switch v.Kind() {
	case value.KindNode:
		return one(v.Node())
	case value.KindArray:
		items := v.Array()
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if item.Kind() == value.KindNode {
				parts = append(parts, one(item.Node()))
			} else {
				parts = append(parts, value.ToString(item))
			}
		}
		return strings.Join(parts, "\n")
	default:
		return value.ToString(v)
	}
}

// Run is a package-level convenience that compiles source and evaluates
// it once against input under opts, for callers that don't need to reuse
// a compiled Program or Engine across many inputs.
func Run(source, input string, opts Options) (string, error) {
	e := NewEngine(opts)
	prog, err := e.Compile(source)
	if err != nil {
		return "", err
	}
	return e.RunString(prog, input)
}
