// Package render converts mq's value/node model to the four output
// surfaces named in spec §4.6: markdown, html, json, text. Grounded on
// the teacher's `GenerateLatexFromAST`/`RenderMarkdownAST` shape — a
// `switch n.Kind` dispatch recursing over children into a
// `strings.Builder` — generalized from LaTeX emission to CommonMark+GFM
// emission.
package render

import (
	"strconv"
	"strings"

	"github.com/mqlang/mq/internal/mdast"
)

// ListStyle selects the bullet marker for unordered lists.
type ListStyle string

const (
	ListStyleDash  ListStyle = "dash"
	ListStyleStar  ListStyle = "star"
	ListStylePlus  ListStyle = "plus"
)

// LinkURLStyle controls whether link/image destinations are wrapped in
// angle brackets.
type LinkURLStyle string

const (
	LinkURLStyleNone  LinkURLStyle = "none"
	LinkURLStyleAngle LinkURLStyle = "angle"
)

// LinkTitleStyle controls the quoting of a link/image title.
type LinkTitleStyle string

const (
	LinkTitleStyleNone   LinkTitleStyle = "none"
	LinkTitleStyleDouble LinkTitleStyle = "double"
	LinkTitleStyleSingle LinkTitleStyle = "single"
	LinkTitleStyleParen  LinkTitleStyle = "paren"
)

// Config bundles the Markdown rendering options named in spec §4.6.
type Config struct {
	ListStyle          ListStyle
	LinkURLStyle       LinkURLStyle
	LinkTitleStyle     LinkTitleStyle
	OrderedListMarker  string // default "."
}

// DefaultConfig matches the teacher's common-case default: dashes, no
// angle brackets, double-quoted titles, "." after ordered-list numbers.
func DefaultConfig() Config {
	return Config{
		ListStyle:         ListStyleDash,
		LinkURLStyle:      LinkURLStyleNone,
		LinkTitleStyle:    LinkTitleStyleDouble,
		OrderedListMarker: ".",
	}
}

// ToMarkdown renders n as CommonMark+GFM text (spec §4.6). Re-parsing the
// result with mdast.Parse yields a structurally equivalent tree (spec §8
// invariant 4), modulo normalized whitespace between blocks.
func ToMarkdown(n *mdast.Node, cfg Config) string {
	var sb strings.Builder
	writeBlock(&sb, n, cfg, 0)
	return strings.TrimRight(sb.String(), "\n")
}

func (cfg Config) bullet() string {
	switch cfg.ListStyle {
	case ListStyleStar:
		return "*"
	case ListStylePlus:
		return "+"
	default:
		return "-"
	}
}

func writeBlock(sb *strings.Builder, n *mdast.Node, cfg Config, indent int) {
	if n == nil {
		return
	}
	pad := strings.Repeat("  ", indent)
	switch n.Kind {
	case mdast.KindDocument:
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteString("\n\n")
			}
			writeBlock(sb, c, cfg, indent)
		}
	case mdast.KindHeading:
		sb.WriteString(pad + strings.Repeat("#", clampLevel(n.Level)) + " ")
		writeInlineChildren(sb, n, cfg)
	case mdast.KindParagraph:
		sb.WriteString(pad)
		writeInlineChildren(sb, n, cfg)
	case mdast.KindBlockquote:
		inner := renderChildrenBlocks(n, cfg, 0)
		for _, line := range strings.Split(inner, "\n") {
			sb.WriteString(pad + "> " + line + "\n")
		}
	case mdast.KindList:
		for i, item := range n.Children {
			marker := cfg.bullet()
			if item.Ordered {
				marker = strconv.Itoa(item.Index) + cfg.OrderedListMarker
			}
			prefix := pad + marker + " "
			if item.Checked != nil {
				if *item.Checked {
					prefix += "[x] "
				} else {
					prefix += "[ ] "
				}
			}
			sb.WriteString(prefix)
			writeListItemBody(sb, item, cfg, indent)
			if i < len(n.Children)-1 {
				sb.WriteString("\n")
			}
		}
	case mdast.KindCodeBlock:
		fence := "```"
		sb.WriteString(pad + fence + n.Lang + "\n")
		for _, line := range strings.Split(n.Value, "\n") {
			sb.WriteString(pad + line + "\n")
		}
		sb.WriteString(pad + fence)
	case mdast.KindThematicBreak:
		sb.WriteString(pad + "---")
	case mdast.KindHTMLBlock:
		sb.WriteString(n.Value)
	case mdast.KindMathBlock:
		sb.WriteString(pad + "$$\n" + n.Value + "\n$$")
	case mdast.KindYAMLFront:
		sb.WriteString("---\n" + n.Value + "\n---")
	case mdast.KindTOMLFront:
		sb.WriteString("+++\n" + n.Value + "\n+++")
	case mdast.KindTable:
		writeTable(sb, n, cfg)
	case mdast.KindFootnoteDef:
		sb.WriteString("[^" + n.Label + "]: ")
		writeInlineChildren(sb, n, cfg)
	case mdast.KindMDXFlow:
		sb.WriteString(n.Value)
	default:
		writeInlineChildren(sb, n, cfg)
	}
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

func renderChildrenBlocks(n *mdast.Node, cfg Config, indent int) string {
	var sb strings.Builder
	for i, c := range n.Children {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		writeBlock(&sb, c, cfg, indent)
	}
	return sb.String()
}

func writeListItemBody(sb *strings.Builder, item *mdast.Node, cfg Config, indent int) {
	for i, c := range item.Children {
		if i > 0 {
			sb.WriteString("\n")
		}
		if c.Kind == mdast.KindList {
			sb.WriteString("\n")
			writeBlock(sb, c, cfg, indent+1)
		} else {
			writeBlock(sb, c, cfg, 0)
		}
	}
}

func writeTable(sb *strings.Builder, n *mdast.Node, cfg Config) {
	for i, row := range n.Children {
		sb.WriteString("|")
		for _, cell := range row.Children {
			sb.WriteString(" ")
			writeInlineChildren(sb, cell, cfg)
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
		if i == 0 {
			sb.WriteString("|")
			for range row.Children {
				sb.WriteString(" --- |")
			}
			sb.WriteString("\n")
		}
	}
}

func writeInlineChildren(sb *strings.Builder, n *mdast.Node, cfg Config) {
	for _, c := range n.Children {
		writeInline(sb, c, cfg)
	}
}

func writeInline(sb *strings.Builder, n *mdast.Node, cfg Config) {
	if n == nil {
		return
	}
	switch n.Kind {
	case mdast.KindText:
		sb.WriteString(n.Value)
	case mdast.KindBreak:
		sb.WriteString("  \n")
	case mdast.KindEmphasis:
		sb.WriteString("*")
		writeInlineChildren(sb, n, cfg)
		sb.WriteString("*")
	case mdast.KindStrong:
		sb.WriteString("**")
		writeInlineChildren(sb, n, cfg)
		sb.WriteString("**")
	case mdast.KindDelete:
		sb.WriteString("~~")
		writeInlineChildren(sb, n, cfg)
		sb.WriteString("~~")
	case mdast.KindInlineCode:
		sb.WriteString("`" + n.Value + "`")
	case mdast.KindMathInline:
		sb.WriteString("$" + n.Value + "$")
	case mdast.KindLink:
		sb.WriteString("[")
		writeInlineChildren(sb, n, cfg)
		sb.WriteString("](" + destination(n.URL, cfg) + titleSuffix(n.Title, cfg) + ")")
	case mdast.KindLinkRef:
		writeInlineChildren(sb, n, cfg)
		sb.WriteString("[" + n.Label + "]")
	case mdast.KindImage:
		sb.WriteString("![" + n.Alt + "](" + destination(n.URL, cfg) + titleSuffix(n.Title, cfg) + ")")
	case mdast.KindImageRef:
		sb.WriteString("![" + n.Alt + "][" + n.Label + "]")
	case mdast.KindFootnoteRef:
		sb.WriteString("[^" + n.Label + "]")
	case mdast.KindMDXText:
		sb.WriteString(n.Value)
	default:
		writeInlineChildren(sb, n, cfg)
	}
}

func destination(url string, cfg Config) string {
	if cfg.LinkURLStyle == LinkURLStyleAngle {
		return "<" + url + ">"
	}
	return url
}

func titleSuffix(title string, cfg Config) string {
	if title == "" {
		return ""
	}
	switch cfg.LinkTitleStyle {
	case LinkTitleStyleSingle:
		return " '" + title + "'"
	case LinkTitleStyleParen:
		return " (" + title + ")"
	case LinkTitleStyleNone:
		return ""
	default:
		return ` "` + title + `"`
	}
}
