package render

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	gmparser "github.com/gomarkdown/markdown/parser"

	"github.com/mqlang/mq/internal/mdast"
)

// ToHTML renders n to HTML (spec §4.6) via gomarkdown's own HTML
// renderer: n is first emitted as CommonMark+GFM text (ToMarkdown), then
// re-parsed and rendered by gomarkdown so that HTML output tracks
// exactly the same tag mapping the teacher's markdown dependency family
// ships, rather than a second hand-rolled tag table.
func ToHTML(n *mdast.Node, cfg Config) string {
	src := []byte(ToMarkdown(n, cfg))
	extensions := gmparser.CommonExtensions | gmparser.AutoHeadingIDs | gmparser.MathJax
	p := gmparser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML(src, p, renderer))
}
