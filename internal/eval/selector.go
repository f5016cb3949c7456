package eval

import (
	"github.com/mqlang/mq/internal/ast"
	"github.com/mqlang/mq/internal/mdast"
	"github.com/mqlang/mq/internal/value"
)

// kindSelectors maps a selector head name to the Markdown node kind(s) it
// matches (spec §4.4: "a selector recurses depth-first, preserving
// document order"). A name present here is a *kind* selector; any other
// name is treated as an attribute accessor instead (see nodeAttr).
var kindSelectors = map[string]mdast.Kind{
	"h":           mdast.KindHeading,
	"paragraph":   mdast.KindParagraph,
	"blockquote":  mdast.KindBlockquote,
	"list":        mdast.KindList,
	"list_item":   mdast.KindListItem,
	"code":        mdast.KindCodeBlock,
	"hr":          mdast.KindThematicBreak,
	"table":       mdast.KindTable,
	"table_row":   mdast.KindTableRow,
	"table_cell":  mdast.KindTableCell,
	"html":        mdast.KindHTMLBlock,
	"footnote":    mdast.KindFootnoteDef,
	"math":        mdast.KindMathBlock,
	"math_inline": mdast.KindMathInline,
	"definition":  mdast.KindDefinition,
	"mdx":         mdast.KindMDXFlow,
	"text":        mdast.KindText,
	"em":          mdast.KindEmphasis,
	"emphasis":    mdast.KindEmphasis,
	"strong":      mdast.KindStrong,
	"delete":      mdast.KindDelete,
	"inline_code": mdast.KindInlineCode,
	"link":        mdast.KindLink,
	"link_ref":    mdast.KindLinkRef,
	"image":       mdast.KindImage,
	"image_ref":   mdast.KindImageRef,
	"footnote_ref": mdast.KindFootnoteRef,
}

// evalSelector runs a compiled selector chain against self, threading the
// matched set segment by segment (spec §4.4, design note §9 "Selectors as
// data").
func (ev *Evaluator) evalSelector(sel *ast.Selector, env Env) (value.Value, error) {
	cur := []value.Value{env.Self()}
	for _, seg := range sel.Segments {
		var next []value.Value
		for _, v := range cur {
			matched, err := ev.applySegment(seg, v, env)
			if err != nil {
				if sel.Safe && catchable(err) {
					return value.None, nil
				}
				return value.None, err
			}
			next = append(next, matched...)
		}
		cur = next
	}
	return collapseMatches(cur), nil
}

// collapseMatches folds a selector's (or a broadcast's) collected matches
// down to a single result: none, exactly one value passed through bare, or
// a Sequence the pipe operator knows to broadcast over in turn.
func collapseMatches(vs []value.Value) value.Value {
	switch len(vs) {
	case 0:
		return value.None
	case 1:
		return vs[0]
	default:
		return value.Sequence(vs)
	}
}

// broadcastPipe implements self-threading over a selector-produced stream
// (spec §4.4's "central idiom"): the pipe's right-hand side runs once per
// matched element, self rebound to that element in a fresh child scope,
// rather than once against the whole collected array. A None result drops
// silently, matching `select`'s documented pipeline behaviour (spec §4.5).
// When the evaluator is recording update-mode splices (see eval/update.go),
// each (original node, result) pair is recorded as it is produced.
func (ev *Evaluator) broadcastPipe(right ast.Node, items []value.Value, env Env) (value.Value, flow, error) {
	out := make([]value.Value, 0, len(items))
	for _, item := range items {
		child := env.WithSelf(item)
		v, fl, err := ev.eval(right, child)
		if err != nil {
			return value.None, noFlow, err
		}
		ev.recordUpdate(item, v)
		if fl.kind != sigNone {
			return v, fl, nil
		}
		if !v.IsNone() {
			out = append(out, v)
		}
	}
	return collapseMatches(out), noFlow, nil
}

// applySegment applies one selector segment to a single value, returning
// the (possibly empty, possibly multi-valued) set of matches.
func (ev *Evaluator) applySegment(seg ast.SelectorSegment, v value.Value, env Env) ([]value.Value, error) {
	switch {
	case seg.All:
		return ev.selectAllChildren(v), nil
	case seg.Index != nil:
		idx, err := ev.evalValue(seg.Index, env)
		if err != nil {
			return nil, err
		}
		return ev.selectIndex(v, int(idx.Number())), nil
	case seg.Name == "":
		return []value.Value{v}, nil
	default:
		return ev.selectByName(seg, v, env)
	}
}

func (ev *Evaluator) selectAllChildren(v value.Value) []value.Value {
	switch v.Kind() {
	case value.KindArray:
		return append([]value.Value(nil), v.Array()...)
	case value.KindNode:
		out := make([]value.Value, 0, len(v.Node().Children))
		for _, c := range v.Node().Children {
			out = append(out, value.NodeValue(c))
		}
		return out
	default:
		return nil
	}
}

func (ev *Evaluator) selectIndex(v value.Value, i int) []value.Value {
	switch v.Kind() {
	case value.KindArray:
		arr := v.Array()
		if i < 0 || i >= len(arr) {
			return nil
		}
		return []value.Value{arr[i]}
	case value.KindNode:
		children := v.Node().Children
		if i < 0 || i >= len(children) {
			return nil
		}
		return []value.Value{value.NodeValue(children[i])}
	default:
		return nil
	}
}

func (ev *Evaluator) selectByName(seg ast.SelectorSegment, v value.Value, env Env) ([]value.Value, error) {
	if kind, ok := kindSelectors[seg.Name]; ok {
		matches := collectKind(v, kind)
		return ev.filterByArgs(seg, matches, env)
	}
	// Not a kind selector: plain attribute access, never recursive.
	switch v.Kind() {
	case value.KindNode:
		av, ok := nodeAttr(v.Node(), seg.Name)
		if !ok {
			return nil, nil
		}
		return []value.Value{av}, nil
	case value.KindDict:
		dv, ok := v.Dict().Get(seg.Name)
		if !ok {
			return nil, nil
		}
		return []value.Value{dv}, nil
	default:
		return nil, nil
	}
}

// collectKind walks v's node tree depth-first (document order) collecting
// every descendant (and v itself) whose Kind matches.
func collectKind(v value.Value, kind mdast.Kind) []value.Value {
	var out []value.Value
	switch v.Kind() {
	case value.KindNode:
		walkNode(v.Node(), kind, &out)
	case value.KindArray:
		for _, item := range v.Array() {
			out = append(out, collectKind(item, kind)...)
		}
	}
	return out
}

func walkNode(n *mdast.Node, kind mdast.Kind, out *[]value.Value) {
	if n == nil {
		return
	}
	if n.Kind == kind {
		*out = append(*out, value.NodeValue(n))
	}
	for _, c := range n.Children {
		walkNode(c, kind, out)
	}
}

// filterByArgs narrows matches using a selector's call arguments, e.g.
// `.code("js")` keeps only code blocks whose lang equals "js".
func (ev *Evaluator) filterByArgs(seg ast.SelectorSegment, matches []value.Value, env Env) ([]value.Value, error) {
	if len(seg.Args) == 0 {
		return matches, nil
	}
	want, err := ev.evalValue(seg.Args[0], env)
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, m := range matches {
		if m.Kind() != value.KindNode {
			continue
		}
		got, ok := primaryFilterAttr(m.Node())
		if ok && value.Equal(got, want) {
			out = append(out, m)
		}
	}
	return out, nil
}

// primaryFilterAttr picks the attribute a kind selector's sole call
// argument filters on, per node kind (e.g. code_block -> Lang, link ->
// URL). Used by forms like `.code("js")` / `.link("https://x")`.
func primaryFilterAttr(n *mdast.Node) (value.Value, bool) {
	switch n.Kind {
	case mdast.KindCodeBlock, mdast.KindInlineCode:
		return value.String(n.Lang), true
	case mdast.KindLink, mdast.KindLinkRef, mdast.KindImage, mdast.KindImageRef:
		return value.String(n.URL), true
	case mdast.KindHeading:
		return value.Int(n.Level), true
	default:
		return value.String(n.Value), true
	}
}

// nodeAttr implements the attribute-accessor half of selector dispatch
// (e.g. `.lang`, `.url`, `.depth`, `.title`).
func nodeAttr(n *mdast.Node, name string) (value.Value, bool) {
	switch name {
	case "lang":
		return value.String(n.Lang), true
	case "url":
		return value.String(n.URL), true
	case "title":
		if n.Title == "" {
			return value.None, false
		}
		return value.String(n.Title), true
	case "alt":
		return value.String(n.Alt), true
	case "label":
		return value.String(n.Label), true
	case "value":
		return value.String(n.Value), true
	case "depth", "level":
		return value.Int(n.Level), true
	case "ordered":
		return value.Bool(n.Ordered), true
	case "start":
		return value.Int(n.Start), true
	case "index":
		return value.Int(n.Index), true
	case "row":
		return value.Int(n.Row), true
	case "column":
		return value.Int(n.Column), true
	case "checked":
		if n.Checked == nil {
			return value.None, false
		}
		return value.Bool(*n.Checked), true
	case "fenced":
		return value.Bool(n.Fenced), true
	case "children":
		items := make([]value.Value, len(n.Children))
		for i, c := range n.Children {
			items[i] = value.NodeValue(c)
		}
		return value.ArrayNoCopy(items), true
	case "text":
		return value.String(mdast.ToText(n)), true
	default:
		return value.None, false
	}
}
