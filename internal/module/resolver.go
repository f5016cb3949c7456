// Package module resolves `include "name"` statements to parsed .mq
// modules (spec §4.3): searching a fixed path order, caching by absolute
// path, and detecting circular includes.
package module

import (
	"os"
	"path/filepath"

	"github.com/mqlang/mq/internal/ast"
	"github.com/mqlang/mq/internal/mqerr"
	"github.com/mqlang/mq/internal/parser"
)

// Module is one resolved .mq file: its parsed program, ready for a caller
// to extract top-level `def`s and run its top-level `let`s once.
type Module struct {
	Name string
	Path string
	Program *ast.Program
}

// Resolver loads and caches modules by absolute path. It is not safe for
// concurrent use by multiple goroutines without external synchronization
// — the spec's concurrency model runs one resolver per input worker.
type Resolver struct {
	// UserDir is searched first (defaults to "~/.mq").
	UserDir string
	// ReadFile and Exists let callers substitute an in-memory filesystem
	// for tests; both default to the real filesystem.
	ReadFile func(string) ([]byte, error)
	Exists   func(string) bool

	cache   map[string]*Module
	loading []string // stack of absolute paths currently being resolved, for cycle detection
}

// NewResolver builds a Resolver with the default "~/.mq" user directory
// and the real filesystem.
func NewResolver() *Resolver {
	home, _ := os.UserHomeDir()
	userDir := ""
	if home != "" {
		userDir = filepath.Join(home, ".mq")
	}
	return &Resolver{
		UserDir:  userDir,
		ReadFile: os.ReadFile,
		Exists:   fileExists,
		cache:    make(map[string]*Module),
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Resolve loads the module named `name` (without its ".mq" suffix),
// searched relative to fromPath — the absolute path of the including
// source file, or "" for the top-level program. Search order: the user
// directory, a "lib/mq" directory alongside the including source, and a
// "lib/mq" directory alongside that directory's parent (spec §4.3).
func (r *Resolver) Resolve(name, fromPath string) (*Module, error) {
	candidates := r.searchPaths(fromPath)
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name+".mq")
		if r.Exists(candidate) {
			return r.load(candidate, name)
		}
	}
	return nil, mqerr.New(mqerr.KindModuleNotFound, mqerr.Span{}, "module %q not found (searched %v)", name, candidates)
}

func (r *Resolver) searchPaths(fromPath string) []string {
	var paths []string
	if r.UserDir != "" {
		paths = append(paths, r.UserDir)
	}
	if fromPath != "" {
		fromDir := filepath.Dir(fromPath)
		paths = append(paths, filepath.Join(fromDir, "lib", "mq"))
		parent := filepath.Dir(fromDir)
		paths = append(paths, filepath.Join(parent, "lib", "mq"))
	}
	return paths
}

func (r *Resolver) load(absPath, name string) (*Module, error) {
	if m, ok := r.cache[absPath]; ok {
		return m, nil
	}
	if r.onLoadingStack(absPath) {
		return nil, mqerr.New(mqerr.KindCycle, mqerr.Span{}, "circular include: %s", r.cycleChain(absPath))
	}

	r.loading = append(r.loading, absPath)
	defer func() { r.loading = r.loading[:len(r.loading)-1] }()

	src, err := r.ReadFile(absPath)
	if err != nil {
		return nil, mqerr.Wrap(mqerr.KindModuleNotFound, mqerr.Span{}, err, "reading module %q", name)
	}

	prog, err := parser.Parse(string(src))
	if err != nil {
		return nil, err
	}
	if err := r.resolveNestedIncludes(prog, absPath); err != nil {
		return nil, err
	}

	m := &Module{Name: name, Path: absPath, Program: prog}
	r.cache[absPath] = m
	return m, nil
}

// resolveNestedIncludes eagerly walks a module's top-level statements so
// that transitive includes are parsed (and cycle-checked) up front,
// mirroring "include may appear only at top level" (spec §6.4).
func (r *Resolver) resolveNestedIncludes(prog *ast.Program, fromPath string) error {
	for _, stmt := range prog.Stmts {
		inc, ok := stmt.(*ast.Include)
		if !ok {
			continue
		}
		if _, err := r.Resolve(inc.Name, fromPath); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) onLoadingStack(absPath string) bool {
	for _, p := range r.loading {
		if p == absPath {
			return true
		}
	}
	return false
}

func (r *Resolver) cycleChain(absPath string) string {
	chain := append(append([]string{}, r.loading...), absPath)
	out := chain[0]
	for _, p := range chain[1:] {
		out += " -> " + p
	}
	return out
}
