package builtin

import (
	"github.com/mqlang/mq/internal/mdast"
	"github.com/mqlang/mq/internal/render"
	"github.com/mqlang/mq/internal/value"
)

func node(v value.Value) (*mdast.Node, bool) {
	if v.Kind() != value.KindNode {
		return nil, false
	}
	return v.Node(), true
}

// --- constructors (spec §4.5) ---

func ToH(args []value.Value) (value.Value, error) {
	text, ok1 := str(args[0])
	depth, ok2 := num(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("a string and a number", args...)
	}
	return value.NodeValue(mdast.Heading(int(depth), text)), nil
}

func ToCode(args []value.Value) (value.Value, error) {
	text, ok1 := str(args[0])
	lang, ok2 := str(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two strings", args...)
	}
	return value.NodeValue(mdast.CodeBlock(text, lang)), nil
}

func ToCodeInline(args []value.Value) (value.Value, error) {
	text, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string", args...)
	}
	return value.NodeValue(mdast.InlineCode(text)), nil
}

func ToLink(args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return value.None, typeErr("url, text, and an optional title", args...)
	}
	url, ok1 := str(args[0])
	text, ok2 := str(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("url, text, and an optional title", args...)
	}
	title := ""
	if len(args) > 2 {
		title, _ = str(args[2])
	}
	return value.NodeValue(mdast.Link(url, text, title)), nil
}

func ToImage(args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return value.None, typeErr("url, alt, and an optional title", args...)
	}
	url, ok1 := str(args[0])
	alt, ok2 := str(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("url, alt, and an optional title", args...)
	}
	title := ""
	if len(args) > 2 {
		title, _ = str(args[2])
	}
	return value.NodeValue(mdast.Image(url, alt, title)), nil
}

func ToStrong(args []value.Value) (value.Value, error) {
	text, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string", args...)
	}
	return value.NodeValue(mdast.Strong(text)), nil
}

func ToEm(args []value.Value) (value.Value, error) {
	text, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string", args...)
	}
	return value.NodeValue(mdast.Emphasis(text)), nil
}

func ToHr([]value.Value) (value.Value, error) {
	return value.NodeValue(mdast.ThematicBreak()), nil
}

func ToMath(args []value.Value) (value.Value, error) {
	text, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string", args...)
	}
	return value.NodeValue(mdast.MathBlock(text)), nil
}

func ToMathInline(args []value.Value) (value.Value, error) {
	text, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string", args...)
	}
	return value.NodeValue(mdast.MathInline(text)), nil
}

func ToMdText(args []value.Value) (value.Value, error) {
	text, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string", args...)
	}
	return value.NodeValue(mdast.Text(text)), nil
}

// ToMdList builds a TOC-style nested list item at the given nesting
// level (spec §8 scenario d); val may be a plain string or an
// already-built node (e.g. the link `to_link` produced).
func ToMdList(args []value.Value) (value.Value, error) {
	level, ok := num(args[1])
	if !ok {
		return value.None, typeErr("a string or node, and a number", args...)
	}
	if n, ok := node(args[0]); ok {
		return value.NodeValue(mdast.ListFromNode(n, int(level), false)), nil
	}
	text, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string or node, and a number", args...)
	}
	return value.NodeValue(mdast.List(text, int(level), false)), nil
}

func ToMdTableRow(args []value.Value) (value.Value, error) {
	a, ok := arr(args[0])
	if !ok {
		return value.None, typeErr("an array of strings", args...)
	}
	cells := make([]*mdast.Node, len(a))
	for i, v := range a {
		cells[i] = mdast.TableCell(0, i+1, value.ToString(v))
	}
	return value.NodeValue(mdast.TableRow(cells...)), nil
}

func ToMdTableCell(args []value.Value) (value.Value, error) {
	text, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string", args...)
	}
	return value.NodeValue(mdast.TableCell(0, 0, text)), nil
}

// --- mutators (spec §4.5; always return copies) ---

func SetAttr(args []value.Value) (value.Value, error) {
	n, ok1 := node(args[0])
	name, ok2 := str(args[1])
	val, ok3 := str(args[2])
	if !ok1 || !ok2 || !ok3 {
		return value.None, typeErr("a node, a string, and a string", args...)
	}
	return value.NodeValue(mdast.SetAttr(n, name, val)), nil
}

func SetCheck(args []value.Value) (value.Value, error) {
	n, ok1 := node(args[0])
	if !ok1 || args[1].Kind() != value.KindBool {
		return value.None, typeErr("a node and a bool", args...)
	}
	return value.NodeValue(mdast.SetCheck(n, args[1].Bool())), nil
}

func SetRef(args []value.Value) (value.Value, error) {
	n, ok1 := node(args[0])
	label, ok2 := str(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("a node and a string", args...)
	}
	return value.NodeValue(mdast.SetRef(n, label)), nil
}

func SetCodeBlockLang(args []value.Value) (value.Value, error) {
	n, ok1 := node(args[0])
	lang, ok2 := str(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("a node and a string", args...)
	}
	return value.NodeValue(mdast.SetCodeBlockLang(n, lang)), nil
}

func SetListOrdered(args []value.Value) (value.Value, error) {
	n, ok1 := node(args[0])
	if !ok1 || args[1].Kind() != value.KindBool {
		return value.None, typeErr("a node and a bool", args...)
	}
	return value.NodeValue(mdast.SetListOrdered(n, args[1].Bool())), nil
}

func IncreaseHeaderLevel(args []value.Value) (value.Value, error) {
	n, ok := node(args[0])
	if !ok {
		return value.None, typeErr("a node", args...)
	}
	return value.NodeValue(mdast.IncreaseHeaderLevel(n)), nil
}

func DecreaseHeaderLevel(args []value.Value) (value.Value, error) {
	n, ok := node(args[0])
	if !ok {
		return value.None, typeErr("a node", args...)
	}
	return value.NodeValue(mdast.DecreaseHeaderLevel(n)), nil
}

// --- projections (spec §4.5) ---

func ToText(args []value.Value) (value.Value, error) {
	n, ok := node(args[0])
	if !ok {
		return value.String(value.ToString(args[0])), nil
	}
	return value.String(mdast.ToText(n)), nil
}

func ToMarkdownString(args []value.Value) (value.Value, error) {
	n, ok := node(args[0])
	if !ok {
		return value.None, typeErr("a node", args...)
	}
	return value.String(render.ToMarkdown(n, render.DefaultConfig())), nil
}

func ToHTML(args []value.Value) (value.Value, error) {
	n, ok := node(args[0])
	if !ok {
		return value.None, typeErr("a node", args...)
	}
	return value.String(render.ToHTML(n, render.DefaultConfig())), nil
}

func ToMdName(args []value.Value) (value.Value, error) {
	n, ok := node(args[0])
	if !ok {
		return value.None, typeErr("a node", args...)
	}
	return value.String(string(n.Kind)), nil
}

// Attr is the generic attribute reader backing `.attr(node, "name")`,
// mirroring the selector surface's nodeAttr table for programmatic use.
func Attr(args []value.Value) (value.Value, error) {
	n, ok1 := node(args[0])
	name, ok2 := str(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("a node and a string", args...)
	}
	switch name {
	case "lang":
		return value.String(n.Lang), nil
	case "url":
		return value.String(n.URL), nil
	case "title":
		return value.String(n.Title), nil
	case "alt":
		return value.String(n.Alt), nil
	case "label":
		return value.String(n.Label), nil
	case "value":
		return value.String(n.Value), nil
	case "level", "depth":
		return value.Int(n.Level), nil
	case "ordered":
		return value.Bool(n.Ordered), nil
	case "checked":
		if n.Checked == nil {
			return value.None, nil
		}
		return value.Bool(*n.Checked), nil
	default:
		return value.None, nil
	}
}
