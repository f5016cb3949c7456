package render

import (
	"strings"
	"testing"

	"github.com/mqlang/mq/internal/mdast"
)

func TestToMarkdownHeadingAndParagraph(t *testing.T) {
	doc := &mdast.Node{Kind: mdast.KindDocument, Children: []*mdast.Node{
		mdast.Heading(2, "Title"),
		mdast.Paragraph("Body text."),
	}}
	got := ToMarkdown(doc, DefaultConfig())
	want := "## Title\n\nBody text."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestToMarkdownListStyles(t *testing.T) {
	list := mdast.List("item", 1, false)
	cfg := DefaultConfig()
	cfg.ListStyle = ListStyleStar
	got := ToMarkdown(list, cfg)
	if !strings.HasPrefix(got, "* ") {
		t.Fatalf("got %q, want prefix %q", got, "* ")
	}
}

func wrapInline(n *mdast.Node) *mdast.Node {
	return (&mdast.Node{Kind: mdast.KindParagraph}).WithChildren([]*mdast.Node{n})
}

func TestToMarkdownLinkURLStyleAngle(t *testing.T) {
	link := wrapInline(mdast.Link("https://example.com", "text", ""))
	cfg := DefaultConfig()
	cfg.LinkURLStyle = LinkURLStyleAngle
	got := ToMarkdown(link, cfg)
	want := "[text](<https://example.com>)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestToMarkdownLinkTitleStyles(t *testing.T) {
	cases := []struct {
		style LinkTitleStyle
		want  string
	}{
		{LinkTitleStyleDouble, `[t](u "Title")`},
		{LinkTitleStyleSingle, "[t](u 'Title')"},
		{LinkTitleStyleParen, "[t](u (Title))"},
		{LinkTitleStyleNone, "[t](u)"},
	}
	for _, c := range cases {
		link := wrapInline(mdast.Link("u", "t", "Title"))
		cfg := DefaultConfig()
		cfg.LinkTitleStyle = c.style
		if got := ToMarkdown(link, cfg); got != c.want {
			t.Errorf("style %v: got %q, want %q", c.style, got, c.want)
		}
	}
}

func TestToMarkdownCodeBlockFence(t *testing.T) {
	cb := mdast.CodeBlock("x := 1\n", "go")
	got := ToMarkdown(cb, DefaultConfig())
	want := "```go\nx := 1\n\n```"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestToMarkdownTable(t *testing.T) {
	table := &mdast.Node{Kind: mdast.KindTable, Children: []*mdast.Node{
		mdast.TableRow(mdast.TableCell(0, 0, "A"), mdast.TableCell(0, 1, "B")),
		mdast.TableRow(mdast.TableCell(1, 0, "1"), mdast.TableCell(1, 1, "2")),
	}}
	got := ToMarkdown(table, DefaultConfig())
	want := "| A | B |\n| --- | --- |\n| 1 | 2 |"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestToMarkdownRoundTripsThroughParse(t *testing.T) {
	src := "# Title\n\nSome **bold** and *em* text.\n\n- one\n- two\n"
	doc, err := mdast.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rendered := ToMarkdown(doc, DefaultConfig())
	reparsed, err := mdast.Parse(rendered)
	if err != nil {
		t.Fatalf("re-parse rendered markdown: %v", err)
	}
	if mdast.ToText(reparsed) != mdast.ToText(doc) {
		t.Fatalf("round-trip text mismatch: got %q, want %q", mdast.ToText(reparsed), mdast.ToText(doc))
	}
}
