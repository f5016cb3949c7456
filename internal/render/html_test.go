package render

import (
	"strings"
	"testing"

	"github.com/mqlang/mq/internal/mdast"
)

func TestToHTMLHeadingAndEmphasis(t *testing.T) {
	doc := &mdast.Node{Kind: mdast.KindDocument, Children: []*mdast.Node{
		mdast.Heading(1, "Title"),
		(&mdast.Node{Kind: mdast.KindParagraph}).WithChildren([]*mdast.Node{mdast.Emphasis("hi")}),
	}}
	got := ToHTML(doc, DefaultConfig())
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Title") {
		t.Fatalf("got %q, want an <h1> containing Title", got)
	}
	if !strings.Contains(got, "<em>hi</em>") {
		t.Fatalf("got %q, want emphasis rendered as <em>", got)
	}
}

func TestToHTMLCodeBlock(t *testing.T) {
	cb := mdast.CodeBlock("a()\n", "go")
	got := ToHTML(cb, DefaultConfig())
	if !strings.Contains(got, "<pre") || !strings.Contains(got, "a()") {
		t.Fatalf("got %q, want a <pre> block containing the code", got)
	}
}
