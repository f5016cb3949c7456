package mdast

import "strings"

// ToText concatenates a node's text payload, the way `to_text()` and the
// plain-text output surface do (spec §4.6). Block boundaries are joined
// with a single newline; inline content is concatenated directly.
func ToText(n *Node) string {
	var sb strings.Builder
	writeText(n, &sb)
	return strings.TrimRight(sb.String(), "\n")
}

func writeText(n *Node, sb *strings.Builder) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindText, KindInlineCode, KindCodeBlock, KindHTMLBlock, KindMathBlock,
		KindMathInline, KindMDXFlow, KindMDXText, KindYAMLFront, KindTOMLFront:
		sb.WriteString(n.Value)
	case KindBreak:
		sb.WriteString("\n")
	case KindThematicBreak:
		// no textual payload
	case KindLink, KindLinkRef, KindEmphasis, KindStrong, KindDelete:
		writeChildrenText(n, sb)
	case KindImage:
		sb.WriteString(n.Alt)
	case KindImageRef:
		sb.WriteString(n.Alt)
	case KindFootnoteRef:
		sb.WriteString(n.Label)
	case KindHeading, KindParagraph, KindListItem, KindTableCell, KindTableRow,
		KindBlockquote, KindFootnoteDef:
		writeChildrenText(n, sb)
		sb.WriteString("\n")
	default:
		writeChildrenText(n, sb)
	}
}

func writeChildrenText(n *Node, sb *strings.Builder) {
	for _, c := range n.Children {
		writeText(c, sb)
	}
}

// ChildrenValues returns a node's direct children.
func (n *Node) ChildrenValues() []*Node {
	if n == nil {
		return nil
	}
	return n.Children
}
