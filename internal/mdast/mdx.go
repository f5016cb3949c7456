package mdast

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	mdxSelfClosingLine = regexp.MustCompile(`^<([A-Z][A-Za-z0-9.]*)(\s[^<>]*)?/>$`)
	mdxOpenTagLine     = regexp.MustCompile(`^<([A-Z][A-Za-z0-9.]*)(\s[^<>]*)?>$`)
	mdxBareExprLine    = regexp.MustCompile(`^\{[^{}]*\}$`)
	mdxInline          = regexp.MustCompile(`<[A-Z][A-Za-z0-9.]*(?:\s[^<>]*)?/>|\{[^{}]*\}`)
)

const mdxFlowPlaceholder = "mdxflowZZ%dZZ"

// ParseMDX ingests MDX source: ordinary Markdown is parsed exactly as
// Parse does, but JSX-like flow is detected first and preserved verbatim
// as mdx_flow (block level, spec §6.2) / mdx_text (inline level) nodes
// rather than handed to gomarkdown, which has no notion of embedded JSX.
// The detector is deliberately minimal — a single component tag
// (self-closing or with a matching closing line) or a single `{expr}`
// expression, each needing blank-line separation from surrounding prose
// to be recognized as block-level flow — not a JSX grammar; a query
// language needs to select and round-trip such flow, not parse
// arbitrary JavaScript.
func ParseMDX(source string) (*Node, error) {
	stripped, flows := extractMDXBlockFlow(source)
	doc, err := Parse(stripped)
	if err != nil {
		return nil, err
	}
	doc = doc.WithChildren(restoreMDXBlockFlow(doc.Children, flows))
	doc = splitMDXInlineFlow(doc)
	return doc.WithRaw(source), nil
}

// extractMDXBlockFlow replaces each recognized block-level JSX/expression
// run with a single placeholder line (so gomarkdown parses it as an
// ordinary one-line paragraph), returning the rewritten body plus a
// table from placeholder to the original flow text. Fenced code blocks
// are left untouched.
func extractMDXBlockFlow(source string) (string, map[string]string) {
	lines := strings.Split(source, "\n")
	flows := map[string]string{}
	var out []string
	inFence := false
	n := 0
	// blank reports whether line k is empty or lies outside the input.
	blank := func(k int) bool { return k < 0 || k >= len(lines) || strings.TrimSpace(lines[k]) == "" }
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}

		switch {
		case (mdxSelfClosingLine.MatchString(trimmed) || mdxBareExprLine.MatchString(trimmed)) && blank(i-1) && blank(i+1):
			id := fmt.Sprintf(mdxFlowPlaceholder, n)
			flows[id] = trimmed
			n++
			out = append(out, id)
			continue
		}

		if tag := mdxOpenTagLine.FindStringSubmatch(trimmed); tag != nil && blank(i-1) {
			closeTag := "</" + tag[1] + ">"
			block := []string{trimmed}
			j := i + 1
			for j < len(lines) {
				block = append(block, lines[j])
				if strings.TrimSpace(lines[j]) == closeTag {
					break
				}
				j++
			}
			if j < len(lines) && blank(j+1) {
				id := fmt.Sprintf(mdxFlowPlaceholder, n)
				flows[id] = strings.Join(block, "\n")
				n++
				out = append(out, id)
				i = j
				continue
			}
		}

		out = append(out, line)
	}
	return strings.Join(out, "\n"), flows
}

// restoreMDXBlockFlow walks the parsed tree replacing any paragraph whose
// sole content is a placeholder with the mdx_flow node it stands for.
func restoreMDXBlockFlow(children []*Node, flows map[string]string) []*Node {
	if len(flows) == 0 {
		return children
	}
	out := make([]*Node, 0, len(children))
	for _, c := range children {
		if c.Kind == KindParagraph && len(c.Children) == 1 && c.Children[0].Kind == KindText {
			if raw, ok := flows[c.Children[0].Value]; ok {
				out = append(out, &Node{Kind: KindMDXFlow, Value: raw})
				continue
			}
		}
		if len(c.Children) > 0 {
			c = c.WithChildren(restoreMDXBlockFlow(c.Children, flows))
		}
		out = append(out, c)
	}
	return out
}

// splitMDXInlineFlow walks the whole tree splitting any text run that
// contains an inline self-closing component or `{expr}` into separate
// text/mdx_text nodes, mirroring convertText's footnote-splitting shape
// in ingest.go.
func splitMDXInlineFlow(n *Node) *Node {
	if n == nil || len(n.Children) == 0 {
		return n
	}
	var newChildren []*Node
	changed := false
	for _, c := range n.Children {
		if c.Kind == KindText && mdxInline.MatchString(c.Value) {
			changed = true
			newChildren = append(newChildren, splitTextMDXInline(c.Value)...)
			continue
		}
		nc := splitMDXInlineFlow(c)
		if nc != c {
			changed = true
		}
		newChildren = append(newChildren, nc)
	}
	if !changed {
		return n
	}
	return n.WithChildren(newChildren)
}

func splitTextMDXInline(text string) []*Node {
	var out []*Node
	rest := text
	for {
		loc := mdxInline.FindStringIndex(rest)
		if loc == nil {
			if rest != "" {
				out = append(out, Text(rest))
			}
			break
		}
		if loc[0] > 0 {
			out = append(out, Text(rest[:loc[0]]))
		}
		out = append(out, &Node{Kind: KindMDXText, Value: rest[loc[0]:loc[1]]})
		rest = rest[loc[1]:]
	}
	return out
}
