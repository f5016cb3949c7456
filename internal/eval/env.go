package eval

import "github.com/mqlang/mq/internal/value"

// frame is one lexical scope: a set of name bindings plus a handle to its
// parent frame. Frames are addressed by handle (an index into an Arena),
// never by pointer, so that a closure's captured environment and a
// frame's parent link never form a Go-level reference cycle (design note
// §9: "avoid strong cycles by giving each closure a shared handle to its
// frame while the frame's parent link remains a handle, not a
// back-pointer").
type frame struct {
	vars   map[string]value.Value
	parent int // -1 for the root frame
}

// Arena owns every frame allocated during one evaluation. It grows
// monotonically; frames are never freed individually — the whole arena
// is dropped when evaluation of one input document finishes.
type Arena struct {
	frames []*frame
}

// NewArena returns an Arena containing a single root frame (handle 0).
func NewArena() *Arena {
	a := &Arena{}
	a.frames = append(a.frames, &frame{vars: make(map[string]value.Value), parent: -1})
	return a
}

func (a *Arena) push(parent int) int {
	a.frames = append(a.frames, &frame{vars: make(map[string]value.Value), parent: parent})
	return len(a.frames) - 1
}

// Env is a handle into an Arena: the current scope plus the arena that
// owns its ancestry. Env values are cheap to copy.
type Env struct {
	arena  *Arena
	handle int
}

// RootEnv returns the handle-0 scope of a fresh Arena, used as the
// process-wide built-in scope (spec §4.4 "Built-ins live in a root
// scope").
func RootEnv() Env {
	return Env{arena: NewArena(), handle: 0}
}

// Child returns a new scope nested under e.
func (e Env) Child() Env {
	return Env{arena: e.arena, handle: e.arena.push(e.handle)}
}

// Define introduces name in the current scope, shadowing any outer
// binding of the same name (used by both `let` and `var`, and by
// parameter/loop-variable binding).
func (e Env) Define(name string, v value.Value) {
	e.arena.frames[e.handle].vars[name] = v
}

// Assign rewrites the nearest existing binding of name in the scope
// chain, in the frame that already holds it, and reports whether one was
// found. This backs `var`'s reassignment form (spec §3.4: "Reassignment
// (var) affects only the defining scope") — a `var NAME = expr` that
// re-targets a binding made in an enclosing scope (e.g. a loop counter
// declared before the loop, reassigned once per iteration in the loop
// body's own child scope) mutates that original frame rather than
// shadowing it locally every iteration.
func (e Env) Assign(name string, v value.Value) bool {
	h := e.handle
	for h != -1 {
		f := e.arena.frames[h]
		if _, ok := f.vars[name]; ok {
			f.vars[name] = v
			return true
		}
		h = f.parent
	}
	return false
}

// Lookup walks the scope chain outward, returning the nearest binding.
func (e Env) Lookup(name string) (value.Value, bool) {
	h := e.handle
	for h != -1 {
		f := e.arena.frames[h]
		if v, ok := f.vars[name]; ok {
			return v, true
		}
		h = f.parent
	}
	return value.None, false
}

// Self is shorthand for Lookup("self"); every scope that lacks its own
// binding inherits the enclosing one, which is how self-threading
// survives nested non-pipe expressions.
func (e Env) Self() value.Value {
	v, _ := e.Lookup("self")
	return v
}

// WithSelf returns a child scope with `self` rebound to v — the pipe
// operator's core mechanism (spec §4.4).
func (e Env) WithSelf(v value.Value) Env {
	c := e.Child()
	c.Define("self", v)
	return c
}
