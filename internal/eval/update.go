package eval

import (
	"github.com/mqlang/mq/internal/mdast"
	"github.com/mqlang/mq/internal/value"
)

// ApplyUpdates rebuilds root, splicing in the (original node -> result)
// pairs an Evaluator recorded while broadcasting a pipe over a selector's
// matches (spec §4.4 update context, glossary "Update mode"). A Node
// result replaces the matched node in place; a None result drops it from
// its parent's children; any other result kind is left as a no-op, since
// update mode only makes sense for node-shaped replacements. A subtree
// with no match inside it keeps its original *mdast.Node pointer; the
// ancestors of a replaced or dropped node are rebuilt as copies.
// Untouched subtrees are re-rendered from their parsed nodes, not copied
// from the source bytes.
func ApplyUpdates(root *mdast.Node, updates map[*mdast.Node]value.Value) *mdast.Node {
	if root == nil || len(updates) == 0 {
		return root
	}
	if repl, ok := updates[root]; ok {
		switch {
		case repl.Kind() == value.KindNode:
			return repl.Node()
		case repl.IsNone():
			return nil
		default:
			return root
		}
	}
	if len(root.Children) == 0 {
		return root
	}
	changed := false
	children := make([]*mdast.Node, 0, len(root.Children))
	for _, c := range root.Children {
		nc := ApplyUpdates(c, updates)
		if nc != c {
			changed = true
		}
		if nc != nil {
			children = append(children, nc)
		}
	}
	if !changed {
		return root
	}
	return root.WithChildren(children)
}
