package mdast

import "testing"

func findKind(n *Node, k Kind) *Node {
	if n == nil {
		return nil
	}
	if n.Kind == k {
		return n
	}
	for _, c := range n.Children {
		if found := findKind(c, k); found != nil {
			return found
		}
	}
	return nil
}

func countKind(n *Node, k Kind) int {
	if n == nil {
		return 0
	}
	count := 0
	if n.Kind == k {
		count++
	}
	for _, c := range n.Children {
		count += countKind(c, k)
	}
	return count
}

func TestParseHeadingAndParagraph(t *testing.T) {
	doc, err := Parse("# Title\n\nSome text.\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	h := findKind(doc, KindHeading)
	if h == nil || h.Level != 1 || ToText(h) != "Title" {
		t.Fatalf("got heading %+v, want level 1 %q", h, "Title")
	}
	p := findKind(doc, KindParagraph)
	if p == nil || ToText(p) != "Some text." {
		t.Fatalf("got paragraph %+v", p)
	}
}

func TestParseYAMLFrontmatter(t *testing.T) {
	src := "---\ntitle: Doc\n---\n\n# Body\n"
	doc, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	front := findKind(doc, KindYAMLFront)
	if front == nil || front.Value != "title: Doc" {
		t.Fatalf("got frontmatter %+v", front)
	}
}

func TestParseFootnoteDefinitionAndReference(t *testing.T) {
	src := "See note[^a].\n\n[^a]: explanation text\n"
	doc, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ref := findKind(doc, KindFootnoteRef)
	if ref == nil || ref.Label != "a" {
		t.Fatalf("got footnote ref %+v", ref)
	}
	def := findKind(doc, KindFootnoteDef)
	if def == nil || def.Label != "a" {
		t.Fatalf("got footnote def %+v", def)
	}
}

func TestParseTaskListCheckbox(t *testing.T) {
	src := "- [x] done\n- [ ] not done\n"
	doc, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	list := findKind(doc, KindList)
	if list == nil || len(list.Children) != 2 {
		t.Fatalf("got list %+v", list)
	}
	first, second := list.Children[0], list.Children[1]
	if first.Checked == nil || !*first.Checked {
		t.Fatalf("first item should be checked, got %+v", first.Checked)
	}
	if second.Checked == nil || *second.Checked {
		t.Fatalf("second item should be unchecked, got %+v", second.Checked)
	}
}

func TestParseRootCarriesRaw(t *testing.T) {
	src := "# Title\n"
	doc, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Raw() != src {
		t.Fatalf("got Raw() %q, want %q", doc.Raw(), src)
	}
	h := findKind(doc, KindHeading)
	if h.Raw() != "" {
		t.Fatalf("non-root node should have empty Raw(), got %q", h.Raw())
	}
}

func TestParseHTMLStructuralElements(t *testing.T) {
	src := "<h2>Section</h2><p>Hello <strong>world</strong>.</p>" +
		"<ul><li>one</li><li>two</li></ul>" +
		"<pre><code class=\"language-go\">fmt.Println()</code></pre>" +
		"<a href=\"https://example.com\">link</a>"
	doc, err := ParseHTML(src)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}

	h := findKind(doc, KindHeading)
	if h == nil || h.Level != 2 || ToText(h) != "Section" {
		t.Fatalf("got heading %+v", h)
	}
	strong := findKind(doc, KindStrong)
	if strong == nil || ToText(strong) != "world" {
		t.Fatalf("got strong %+v", strong)
	}
	list := findKind(doc, KindList)
	if list == nil || list.Ordered || len(list.Children) != 2 {
		t.Fatalf("got list %+v", list)
	}
	code := findKind(doc, KindCodeBlock)
	if code == nil || code.Lang != "go" || code.Value != "fmt.Println()" {
		t.Fatalf("got code block %+v", code)
	}
	link := findKind(doc, KindLink)
	if link == nil || link.URL != "https://example.com" || ToText(link) != "link" {
		t.Fatalf("got link %+v", link)
	}
}

func TestParseHTMLTransparentContainer(t *testing.T) {
	// div/span are not in mq's node set; their children should be hoisted
	// rather than dropped.
	doc, err := ParseHTML("<div><span>kept</span></div>")
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	if ToText(doc) != "kept" {
		t.Fatalf("got %q, want transparent-container text preserved", ToText(doc))
	}
}

func TestParseHTMLTable(t *testing.T) {
	src := "<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table>"
	doc, err := ParseHTML(src)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	table := findKind(doc, KindTable)
	if table == nil || len(table.Children) != 2 {
		t.Fatalf("got table %+v", table)
	}
	row0 := table.Children[0]
	if len(row0.Children) != 2 || ToText(row0.Children[0]) != "A" {
		t.Fatalf("got header row %+v", row0)
	}
}

func TestParseMDXBlockFlowSelfClosing(t *testing.T) {
	src := "# Title\n\n<Counter initial={3} />\n\nAfter.\n"
	doc, err := ParseMDX(src)
	if err != nil {
		t.Fatalf("ParseMDX: %v", err)
	}
	flow := findKind(doc, KindMDXFlow)
	if flow == nil || flow.Value != "<Counter initial={3} />" {
		t.Fatalf("got mdx_flow %+v", flow)
	}
	if doc.Raw() != src {
		t.Fatalf("got Raw() %q, want original MDX source", doc.Raw())
	}
}

func TestParseMDXBlockFlowOpenCloseTag(t *testing.T) {
	src := "<Alert>\nSomething happened.\n</Alert>\n"
	doc, err := ParseMDX(src)
	if err != nil {
		t.Fatalf("ParseMDX: %v", err)
	}
	flow := findKind(doc, KindMDXFlow)
	if flow == nil {
		t.Fatalf("expected mdx_flow node, got none in %+v", doc)
	}
	want := "<Alert>\nSomething happened.\n</Alert>"
	if flow.Value != want {
		t.Fatalf("got mdx_flow %q, want %q", flow.Value, want)
	}
}

func TestParseMDXInlineFlow(t *testing.T) {
	src := "Count is {count} today.\n"
	doc, err := ParseMDX(src)
	if err != nil {
		t.Fatalf("ParseMDX: %v", err)
	}
	if countKind(doc, KindMDXText) != 1 {
		t.Fatalf("expected exactly one mdx_text node in %+v", doc)
	}
	text := findKind(doc, KindMDXText)
	if text.Value != "{count}" {
		t.Fatalf("got mdx_text %q, want %q", text.Value, "{count}")
	}
}

func TestParseMDXOrdinaryMarkdownUnaffected(t *testing.T) {
	doc, err := ParseMDX("# Hello\n\nplain paragraph.\n")
	if err != nil {
		t.Fatalf("ParseMDX: %v", err)
	}
	if countKind(doc, KindMDXFlow) != 0 || countKind(doc, KindMDXText) != 0 {
		t.Fatalf("unexpected mdx nodes in purely Markdown input: %+v", doc)
	}
	h := findKind(doc, KindHeading)
	if h == nil || ToText(h) != "Hello" {
		t.Fatalf("got heading %+v", h)
	}
}
