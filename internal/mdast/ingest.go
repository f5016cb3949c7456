package mdast

import (
	"fmt"
	"strings"

	gmast "github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Parse ingests CommonMark+GFM source text into mq's own node tree,
// grounded on the teacher's internal/markdown/markdown.go walk
// (`switch n := node.(type)` over `ast.Node`, recursing via
// `n.GetChildren()`). Frontmatter and footnotes are handled by a
// lightweight preprocessing pass before handing the remainder to
// gomarkdown, since neither is part of gomarkdown's own node set.
func Parse(source string) (*Node, error) {
	front, footnotes, body := splitPreamble(source)

	extensions := gmparser.CommonExtensions | gmparser.AutoHeadingIDs | gmparser.MathJax
	p := gmparser.NewWithExtensions(extensions)
	root := p.Parse([]byte(body))

	var children []*Node
	if front != nil {
		children = append(children, front)
	}
	for _, c := range root.GetChildren() {
		children = append(children, convert(c, footnotes)...)
	}
	for _, def := range footnoteDefinitionNodes(footnotes) {
		children = append(children, def)
	}
	return &Node{Kind: KindDocument, Children: children, raw: source}, nil
}

// splitPreamble extracts a leading YAML (`---`) or TOML (`+++`)
// frontmatter block and any `[^label]: text` footnote-definition lines,
// returning the remaining Markdown body for gomarkdown to parse.
// Footnote definitions are stripped because gomarkdown has no footnote
// node; inline `[^label]` references are rewritten into footnote_ref
// nodes in a post-pass over Text nodes (see convert).
func splitPreamble(source string) (front *Node, footnotes map[string]string, body string) {
	footnotes = map[string]string{}
	rest := source

	if strings.HasPrefix(rest, "---\n") {
		if end := strings.Index(rest[4:], "\n---"); end >= 0 {
			raw := rest[4 : 4+end]
			var probe any
			if yaml.Unmarshal([]byte(raw), &probe) == nil {
				front = &Node{Kind: KindYAMLFront, Value: raw}
				afterIdx := 4 + end + 4
				rest = strings.TrimPrefix(rest[afterIdx:], "\n")
			}
		}
	} else if strings.HasPrefix(rest, "+++\n") {
		if end := strings.Index(rest[4:], "\n+++"); end >= 0 {
			raw := rest[4 : 4+end]
			var probe map[string]any
			if toml.Unmarshal([]byte(raw), &probe) == nil {
				front = &Node{Kind: KindTOMLFront, Value: raw}
				afterIdx := 4 + end + 4
				rest = strings.TrimPrefix(rest[afterIdx:], "\n")
			}
		}
	}

	lines := strings.Split(rest, "\n")
	kept := lines[:0:0]
	for _, line := range lines {
		if label, text, ok := parseFootnoteDefLine(line); ok {
			footnotes[label] = text
			continue
		}
		kept = append(kept, line)
	}
	return front, footnotes, strings.Join(kept, "\n")
}

func parseFootnoteDefLine(line string) (label, text string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "[^") {
		return "", "", false
	}
	close := strings.Index(trimmed, "]:")
	if close < 2 {
		return "", "", false
	}
	label = trimmed[2:close]
	if strings.ContainsAny(label, " \t") || label == "" {
		return "", "", false
	}
	text = strings.TrimSpace(trimmed[close+2:])
	return label, text, true
}

func footnoteDefinitionNodes(footnotes map[string]string) []*Node {
	if len(footnotes) == 0 {
		return nil
	}
	out := make([]*Node, 0, len(footnotes))
	for label, text := range footnotes {
		out = append(out, &Node{Kind: KindFootnoteDef, Label: label, Children: []*Node{Paragraph(text)}})
	}
	return out
}

// convert maps one gomarkdown ast.Node (and, recursively, its children)
// into one or more mq nodes. Most kinds map 1:1; a Text node containing
// `[^label]` references may expand into several nodes.
func convert(n gmast.Node, footnotes map[string]string) []*Node {
	switch t := n.(type) {
	case *gmast.Heading:
		return []*Node{{Kind: KindHeading, Level: t.Level, Children: convertAll(t.GetChildren(), footnotes)}}
	case *gmast.Paragraph:
		return []*Node{{Kind: KindParagraph, Children: convertAll(t.GetChildren(), footnotes)}}
	case *gmast.BlockQuote:
		return []*Node{{Kind: KindBlockquote, Children: convertAll(t.GetChildren(), footnotes)}}
	case *gmast.List:
		ordered := t.ListFlags&gmast.ListTypeOrdered != 0
		return []*Node{{Kind: KindList, Ordered: ordered, Start: startOrOne(t.Start), Children: convertListItems(t.GetChildren(), footnotes, ordered)}}
	case *gmast.CodeBlock:
		return []*Node{{Kind: KindCodeBlock, Lang: string(t.Info), Value: string(t.Literal), Fenced: t.IsFenced}}
	case *gmast.HorizontalRule:
		return []*Node{{Kind: KindThematicBreak}}
	case *gmast.HTMLBlock:
		return []*Node{{Kind: KindHTMLBlock, Value: string(t.Literal)}}
	case *gmast.Table:
		return []*Node{{Kind: KindTable, Children: convertAll(t.GetChildren(), footnotes)}}
	case *gmast.TableHeader:
		return convertAll(t.GetChildren(), footnotes)
	case *gmast.TableBody:
		return convertAll(t.GetChildren(), footnotes)
	case *gmast.TableRow:
		return []*Node{{Kind: KindTableRow, Children: convertAll(t.GetChildren(), footnotes)}}
	case *gmast.TableCell:
		align := cellAlign(t.Align)
		return []*Node{{Kind: KindTableCell, Align: []string{align}, Children: convertAll(t.GetChildren(), footnotes)}}
	case *gmast.MathBlock:
		return []*Node{{Kind: KindMathBlock, Value: string(t.Literal)}}
	case *gmast.Math:
		return []*Node{{Kind: KindMathInline, Value: string(t.Literal)}}
	case *gmast.Text:
		return convertText(string(t.Literal), footnotes)
	case *gmast.Emph:
		return []*Node{{Kind: KindEmphasis, Children: convertAll(t.GetChildren(), footnotes)}}
	case *gmast.Strong:
		return []*Node{{Kind: KindStrong, Children: convertAll(t.GetChildren(), footnotes)}}
	case *gmast.Del:
		return []*Node{{Kind: KindDelete, Children: convertAll(t.GetChildren(), footnotes)}}
	case *gmast.Code:
		return []*Node{{Kind: KindInlineCode, Value: string(t.Literal)}}
	case *gmast.Link:
		return []*Node{{Kind: KindLink, URL: string(t.Destination), Title: string(t.Title), Children: convertAll(t.GetChildren(), footnotes)}}
	case *gmast.Image:
		return []*Node{{Kind: KindImage, URL: string(t.Destination), Title: string(t.Title), Alt: altText(t)}}
	case *gmast.Softbreak:
		return []*Node{{Kind: KindText, Value: "\n"}}
	case *gmast.Hardbreak:
		return []*Node{{Kind: KindBreak}}
	case *gmast.HTMLSpan:
		return []*Node{{Kind: KindText, Value: string(t.Literal)}}
	case *gmast.ListItem:
		// Reached only if a caller walks List children directly without
		// going through convertListItems (defensive fallback).
		return []*Node{{Kind: KindListItem, Children: convertAll(t.GetChildren(), footnotes)}}
	case *gmast.Document:
		return convertAll(t.GetChildren(), footnotes)
	default:
		if container := n.AsContainer(); container != nil {
			return convertAll(container.Children, footnotes)
		}
		return nil
	}
}

func convertAll(nodes []gmast.Node, footnotes map[string]string) []*Node {
	var out []*Node
	for _, c := range nodes {
		out = append(out, convert(c, footnotes)...)
	}
	return out
}

// convertListItems handles checkbox detection: GFM task-list items start
// their rendered text with "[ ] " or "[x] ", a textual convention that
// does not depend on gomarkdown extension internals.
func convertListItems(items []gmast.Node, footnotes map[string]string, ordered bool) []*Node {
	out := make([]*Node, 0, len(items))
	for i, raw := range items {
		li, ok := raw.(*gmast.ListItem)
		if !ok {
			continue
		}
		children := convertAll(li.GetChildren(), footnotes)
		checked := detectAndStripCheckbox(children)
		out = append(out, &Node{
			Kind:     KindListItem,
			Ordered:  ordered,
			Index:    i + 1,
			Checked:  checked,
			Children: children,
		})
	}
	return out
}

func detectAndStripCheckbox(children []*Node) *bool {
	if len(children) == 0 {
		return nil
	}
	first := children[0]
	if first.Kind != KindParagraph && first.Kind != KindText {
		return nil
	}
	target := first
	if first.Kind == KindParagraph && len(first.Children) > 0 {
		target = first.Children[0]
	}
	if target.Kind != KindText {
		return nil
	}
	text := target.Value
	switch {
	case strings.HasPrefix(text, "[ ] "):
		unchecked := false
		target.Value = strings.TrimPrefix(text, "[ ] ")
		return &unchecked
	case strings.HasPrefix(text, "[x] "), strings.HasPrefix(text, "[X] "):
		checkedVal := true
		target.Value = text[4:]
		return &checkedVal
	default:
		return nil
	}
}

func startOrOne(start int) int {
	if start <= 0 {
		return 1
	}
	return start
}

func cellAlign(a gmast.CellAlignFlags) string {
	switch a {
	case gmast.TableAlignLeft:
		return "left"
	case gmast.TableAlignRight:
		return "right"
	case gmast.TableAlignCenter:
		return "center"
	default:
		return "none"
	}
}

func altText(img *gmast.Image) string {
	var sb strings.Builder
	for _, c := range img.GetChildren() {
		if txt, ok := c.(*gmast.Text); ok {
			sb.Write(txt.Literal)
		}
	}
	return sb.String()
}

// convertText splits a Text literal around `[^label]` footnote
// references, when the label is one collected by splitPreamble.
func convertText(literal string, footnotes map[string]string) []*Node {
	if len(footnotes) == 0 || !strings.Contains(literal, "[^") {
		return []*Node{{Kind: KindText, Value: literal}}
	}
	var out []*Node
	rest := literal
	for {
		idx := strings.Index(rest, "[^")
		if idx < 0 {
			if rest != "" {
				out = append(out, &Node{Kind: KindText, Value: rest})
			}
			break
		}
		if idx > 0 {
			out = append(out, &Node{Kind: KindText, Value: rest[:idx]})
		}
		close := strings.Index(rest[idx:], "]")
		if close < 0 {
			out = append(out, &Node{Kind: KindText, Value: rest[idx:]})
			break
		}
		label := rest[idx+2 : idx+close]
		if _, known := footnotes[label]; known {
			out = append(out, &Node{Kind: KindFootnoteRef, Label: label})
		} else {
			out = append(out, &Node{Kind: KindText, Value: rest[idx : idx+close+1]})
		}
		rest = rest[idx+close+1:]
	}
	return out
}

// ValidationError wraps a frontmatter parse failure; exported for callers
// that want to distinguish it from a plain parse result.
type ValidationError struct {
	Format string
	Cause  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s frontmatter: %v", e.Format, e.Cause)
}

func (e *ValidationError) Unwrap() error { return e.Cause }
