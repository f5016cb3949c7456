package mdast

// This file backs the node-constructor and node-mutator builtins of
// spec §4.5 (`to_h`, `to_code`, ..., `set_attr`, ...). Constructors
// always produce a node with zero Position (it was never parsed from
// text); mutators always return a copy, never touching the receiver.

func Heading(level int, text string) *Node {
	return &Node{Kind: KindHeading, Level: level, Children: []*Node{Text(text)}}
}

func CodeBlock(text, lang string) *Node {
	return &Node{Kind: KindCodeBlock, Value: text, Lang: lang, Fenced: true}
}

func InlineCode(text string) *Node {
	return &Node{Kind: KindInlineCode, Value: text}
}

func Link(url, text, title string) *Node {
	return &Node{Kind: KindLink, URL: url, Title: title, Children: []*Node{Text(text)}}
}

func Image(url, alt, title string) *Node {
	return &Node{Kind: KindImage, URL: url, Alt: alt, Title: title}
}

func Strong(text string) *Node {
	return &Node{Kind: KindStrong, Children: []*Node{Text(text)}}
}

func Emphasis(text string) *Node {
	return &Node{Kind: KindEmphasis, Children: []*Node{Text(text)}}
}

func ThematicBreak() *Node {
	return &Node{Kind: KindThematicBreak}
}

func MathBlock(value string) *Node {
	return &Node{Kind: KindMathBlock, Value: value}
}

func MathInline(value string) *Node {
	return &Node{Kind: KindMathInline, Value: value}
}

func Text(value string) *Node {
	return &Node{Kind: KindText, Value: value}
}

// List builds a list node holding one list item with itemText, backing
// `to_md_list`. The level is only recorded on the item's Level field: the
// result is always a single flat list, and no nested list is built for
// levels above 1.
func List(itemText string, level int, ordered bool) *Node {
	item := &Node{Kind: KindListItem, Level: level, Ordered: ordered, Index: 1, Children: []*Node{Paragraph(itemText)}}
	return &Node{Kind: KindList, Ordered: ordered, Start: 1, Children: []*Node{item}}
}

// ListFromNode wraps an already-built inline node (e.g. a link) as the
// sole content of a single list item at the given nesting level.
func ListFromNode(content *Node, level int, ordered bool) *Node {
	item := &Node{Kind: KindListItem, Level: level, Ordered: ordered, Index: 1, Children: []*Node{Paragraph("").WithChildren([]*Node{content})}}
	return &Node{Kind: KindList, Ordered: ordered, Start: 1, Children: []*Node{item}}
}

func Paragraph(text string) *Node {
	if text == "" {
		return &Node{Kind: KindParagraph}
	}
	return &Node{Kind: KindParagraph, Children: []*Node{Text(text)}}
}

func TableRow(cells ...*Node) *Node {
	return &Node{Kind: KindTableRow, Children: cells}
}

func TableCell(row, column int, text string) *Node {
	return &Node{Kind: KindTableCell, Row: row, Column: column, Children: []*Node{Text(text)}}
}

// SetAttr implements the generic node mutator: it returns a copy of n
// with the named attribute replaced. Recognized names mirror the
// attributes accessible via the selector/attr() surface.
func SetAttr(n *Node, name, val string) *Node {
	cp := n.clone()
	switch name {
	case "url":
		cp.URL = val
	case "title":
		cp.Title = val
	case "alt":
		cp.Alt = val
	case "label":
		cp.Label = val
	case "lang":
		cp.Lang = val
	case "value":
		cp.Value = val
	}
	return cp
}

func SetCheck(n *Node, checked bool) *Node {
	cp := n.clone()
	cp.Checked = &checked
	return cp
}

func SetRef(n *Node, label string) *Node {
	cp := n.clone()
	cp.Label = label
	return cp
}

func SetCodeBlockLang(n *Node, lang string) *Node {
	cp := n.clone()
	cp.Lang = lang
	return cp
}

func SetListOrdered(n *Node, ordered bool) *Node {
	cp := n.clone()
	cp.Ordered = ordered
	return cp
}

func IncreaseHeaderLevel(n *Node) *Node {
	cp := n.clone()
	if cp.Level < 6 {
		cp.Level++
	}
	return cp
}

func DecreaseHeaderLevel(n *Node) *Node {
	cp := n.clone()
	if cp.Level > 1 {
		cp.Level--
	}
	return cp
}
