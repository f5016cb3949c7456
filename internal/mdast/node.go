// Package mdast implements the immutable Markdown node tree (spec §3.1):
// a tagged variant tree with kind-specific attributes, built by ingesting
// gomarkdown/markdown's AST (and a small amount of hand-rolled
// preprocessing for frontmatter and footnotes, which gomarkdown does not
// model) or by mq's node-constructor builtins (to_h, to_code, ...).
package mdast

// Kind tags a Markdown node's variant. The set mirrors spec §3.1 exactly;
// it is closed, so callers switch on Kind rather than type-assert.
type Kind string

const (
	// Block kinds.
	KindHeading       Kind = "heading"
	KindParagraph     Kind = "paragraph"
	KindBlockquote    Kind = "blockquote"
	KindList          Kind = "list"
	KindListItem      Kind = "list_item"
	KindCodeBlock     Kind = "code_block"
	KindThematicBreak Kind = "thematic_break"
	KindTable         Kind = "table"
	KindTableRow      Kind = "table_row"
	KindTableCell     Kind = "table_cell"
	KindHTMLBlock     Kind = "html_block"
	KindFootnoteDef   Kind = "footnote_definition"
	KindMathBlock     Kind = "math_block"
	KindYAMLFront     Kind = "yaml_frontmatter"
	KindTOMLFront     Kind = "toml_frontmatter"
	KindDefinition    Kind = "definition"
	KindMDXFlow       Kind = "mdx_flow"

	// Inline kinds.
	KindText       Kind = "text"
	KindEmphasis   Kind = "emphasis"
	KindStrong     Kind = "strong"
	KindDelete     Kind = "delete"
	KindInlineCode Kind = "inline_code"
	KindLink       Kind = "link"
	KindLinkRef    Kind = "link_ref"
	KindImage      Kind = "image"
	KindImageRef   Kind = "image_ref"
	KindBreak      Kind = "break"
	KindMathInline Kind = "math_inline"
	KindMDXText    Kind = "mdx_text"
	KindFootnoteRef Kind = "footnote_ref"

	// KindDocument is the synthetic root produced by Parse; it is not
	// one of spec §3.1's node kinds but every document needs a single
	// root to hold top-level blocks (and, when present, a leading
	// frontmatter node).
	KindDocument Kind = "document"
)

// Position is a source location, populated when a node came from parsed
// text; constructed nodes (to_h, to_code, ...) leave it zero (spec §3.1:
// "if parsed from text").
type Position struct {
	Line   int
	Column int
}

// Node is the immutable tagged Markdown node. Exactly the fields
// relevant to Kind are meaningful. "Mutation" never happens in place:
// every With* method returns a new *Node, sharing the unchanged
// substructure (logical sharing, spec §3.1/§3.2).
type Node struct {
	Kind Kind
	Pos  Position

	Children []*Node

	// heading / list_item
	Level int

	// list / list_item
	Ordered bool
	Start   int
	Checked *bool
	Index   int

	// code_block / inline_code / html_block / math_block / math_inline /
	// yaml_frontmatter / toml_frontmatter / mdx_flow / mdx_text / text
	Value  string
	Lang   string
	Fenced bool

	// table / table_cell
	Align  []string
	Row    int
	Column int

	// link / link_ref / image / image_ref / footnote_definition /
	// footnote_ref / definition
	Label string
	URL   string
	Title string
	Alt   string

	// raw holds the verbatim source text this node was parsed from, when
	// known. Only the document roots built by Parse, ParseHTML and ParseMDX
	// set it; --update
	// splicing does not consume it (see SPEC_FULL.md §4, DESIGN.md).
	raw string
}

// Raw returns the original source text this node was parsed from, or ""
// for a constructed node.
func (n *Node) Raw() string {
	if n == nil {
		return ""
	}
	return n.raw
}

// WithRaw returns a copy of n with its raw source slice set.
func (n *Node) WithRaw(raw string) *Node {
	cp := n.clone()
	cp.raw = raw
	return cp
}

// clone performs a shallow copy: children slice header is copied (not the
// *Node pointers, which are logically immutable and safely shared).
func (n *Node) clone() *Node {
	cp := *n
	if n.Children != nil {
		cp.Children = append([]*Node(nil), n.Children...)
	}
	if n.Align != nil {
		cp.Align = append([]string(nil), n.Align...)
	}
	if n.Checked != nil {
		b := *n.Checked
		cp.Checked = &b
	}
	return &cp
}

// WithChildren returns a copy of n with its children replaced.
func (n *Node) WithChildren(children []*Node) *Node {
	cp := n.clone()
	cp.Children = children
	return cp
}

// WithAttr returns a copy of n with set applied to the copy.
func (n *Node) WithAttr(name string, set func(*Node)) *Node {
	cp := n.clone()
	set(cp)
	return cp
}

// Equal does a deep structural comparison of two node trees, used by
// value.Equal.
func Equal(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind || a.Level != b.Level || a.Ordered != b.Ordered ||
		a.Start != b.Start || a.Index != b.Index || a.Value != b.Value ||
		a.Lang != b.Lang || a.Fenced != b.Fenced || a.Row != b.Row ||
		a.Column != b.Column || a.Label != b.Label || a.URL != b.URL ||
		a.Title != b.Title || a.Alt != b.Alt {
		return false
	}
	if (a.Checked == nil) != (b.Checked == nil) {
		return false
	}
	if a.Checked != nil && *a.Checked != *b.Checked {
		return false
	}
	if len(a.Align) != len(b.Align) {
		return false
	}
	for i := range a.Align {
		if a.Align[i] != b.Align[i] {
			return false
		}
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// IsContainer reports whether a node kind recurses into children when a
// selector walks it (spec §4.4: "applied to a node that is a container").
func (n *Node) IsContainer() bool {
	switch n.Kind {
	case KindParagraph, KindBlockquote, KindList, KindListItem, KindTable,
		KindTableRow, KindTableCell, KindHeading, KindEmphasis, KindStrong,
		KindDelete, KindLink, KindLinkRef, KindFootnoteDef, KindDocument:
		return true
	default:
		return false
	}
}
