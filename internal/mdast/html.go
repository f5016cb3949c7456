package mdast

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML ingests an HTML document into mq's own node tree, mapping
// structural markup onto the same Kind set Markdown ingestion produces
// (spec §6.2: html input is "converted to Markdown on ingress"), so a
// selector/predicate never needs to know which input surface a document
// arrived through. Grounded on the CLaaT Markdown/HTML parser's
// atom-keyed `*html.Node` walk (`findAtom`, `DataAtom` switch over
// `FirstChild`/`NextSibling`) in the retrieval pack, adapted from its
// MD→HTML→types.Node direction into a direct HTML→mdast.Node one.
func ParseHTML(source string) (*Node, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, err
	}
	body := findHTMLAtom(doc, atom.Body)
	if body == nil {
		body = doc
	}
	return &Node{Kind: KindDocument, Children: convertHTMLChildren(body), raw: source}, nil
}

func findHTMLAtom(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findHTMLAtom(c, a); found != nil {
			return found
		}
	}
	return nil
}

func convertHTMLChildren(n *html.Node) []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, convertHTML(c)...)
	}
	return out
}

func htmlAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// convertHTML maps one *html.Node (and, recursively, its children) into
// zero or more mq nodes. Unrecognized elements (span, div, section, ...)
// are transparent containers: their children are hoisted up rather than
// dropped, matching gomarkdown ingestion's own default-container
// fallback in convert().
func convertHTML(n *html.Node) []*Node {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return []*Node{Text(n.Data)}
	case html.CommentNode, html.DoctypeNode:
		return nil
	case html.ElementNode:
		return convertHTMLElement(n)
	default:
		return convertHTMLChildren(n)
	}
}

func convertHTMLElement(n *html.Node) []*Node {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.DataAtom-atom.H1) + 1
		return []*Node{{Kind: KindHeading, Level: level, Children: convertHTMLChildren(n)}}
	case atom.P:
		return []*Node{{Kind: KindParagraph, Children: convertHTMLChildren(n)}}
	case atom.Blockquote:
		return []*Node{{Kind: KindBlockquote, Children: convertHTMLChildren(n)}}
	case atom.Ul, atom.Ol:
		ordered := n.DataAtom == atom.Ol
		return []*Node{{Kind: KindList, Ordered: ordered, Start: 1, Children: convertHTMLListItems(n, ordered)}}
	case atom.Li:
		return []*Node{{Kind: KindListItem, Children: convertHTMLChildren(n)}}
	case atom.Pre:
		return []*Node{convertHTMLCodeBlock(n)}
	case atom.Code:
		if n.Parent != nil && n.Parent.DataAtom == atom.Pre {
			return convertHTMLChildren(n)
		}
		return []*Node{{Kind: KindInlineCode, Value: htmlTextContent(n)}}
	case atom.A:
		return []*Node{{Kind: KindLink, URL: htmlAttr(n, "href"), Title: htmlAttr(n, "title"), Children: convertHTMLChildren(n)}}
	case atom.Img:
		return []*Node{{Kind: KindImage, URL: htmlAttr(n, "src"), Alt: htmlAttr(n, "alt"), Title: htmlAttr(n, "title")}}
	case atom.Strong, atom.B:
		return []*Node{{Kind: KindStrong, Children: convertHTMLChildren(n)}}
	case atom.Em, atom.I:
		return []*Node{{Kind: KindEmphasis, Children: convertHTMLChildren(n)}}
	case atom.Del, atom.S, atom.Strike:
		return []*Node{{Kind: KindDelete, Children: convertHTMLChildren(n)}}
	case atom.Hr:
		return []*Node{ThematicBreak()}
	case atom.Br:
		return []*Node{{Kind: KindBreak}}
	case atom.Table:
		return []*Node{{Kind: KindTable, Children: convertHTMLTableRows(n)}}
	case atom.Script, atom.Style, atom.Head:
		return nil
	default:
		return convertHTMLChildren(n)
	}
}

func convertHTMLListItems(n *html.Node, ordered bool) []*Node {
	var out []*Node
	idx := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		idx++
		out = append(out, &Node{Kind: KindListItem, Ordered: ordered, Index: idx, Children: convertHTMLChildren(c)})
	}
	return out
}

// convertHTMLCodeBlock handles a <pre> block, preferring a nested <code>
// child's text and its "language-xxx" class (the convention both GFM
// renderers and syntax highlighters emit) for Lang.
func convertHTMLCodeBlock(n *html.Node) *Node {
	lang := ""
	content := n
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Code {
			content = c
			lang = languageFromClass(htmlAttr(c, "class"))
			break
		}
	}
	return &Node{Kind: KindCodeBlock, Lang: lang, Value: htmlTextContent(content), Fenced: true}
}

func languageFromClass(class string) string {
	for _, cls := range strings.Fields(class) {
		if strings.HasPrefix(cls, "language-") {
			return strings.TrimPrefix(cls, "language-")
		}
	}
	return ""
}

func convertHTMLTableRows(n *html.Node) []*Node {
	var rows []*Node
	row := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Thead, atom.Tbody, atom.Tfoot:
				walk(c)
			case atom.Tr:
				row++
				col := 0
				var cells []*Node
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type != html.ElementNode || (cell.DataAtom != atom.Td && cell.DataAtom != atom.Th) {
						continue
					}
					col++
					cells = append(cells, &Node{Kind: KindTableCell, Row: row, Column: col, Children: convertHTMLChildren(cell)})
				}
				rows = append(rows, &Node{Kind: KindTableRow, Children: cells})
			}
		}
	}
	walk(n)
	return rows
}

func htmlTextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSuffix(sb.String(), "\n")
}
