package builtin

import (
	"github.com/mqlang/mq/internal/mdast"
	"github.com/mqlang/mq/internal/value"
)

// kindPredicate builds a one-argument `is_x(node)` predicate bound to a
// fixed mdast.Kind, backing the `is_h1`..`is_h6`/`is_mdx`/etc. family
// (spec §4.5 "Predicates on nodes").
func kindPredicate(kind mdast.Kind) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		n, ok := node(args[0])
		if !ok {
			return value.Bool(false), nil
		}
		return value.Bool(n.Kind == kind), nil
	}
}

// levelPredicate builds `is_h1`..`is_h6`: a heading predicate additionally
// checking Level.
func levelPredicate(level int) func([]value.Value) (value.Value, error) {
	return func(args []value.Value) (value.Value, error) {
		n, ok := node(args[0])
		if !ok {
			return value.Bool(false), nil
		}
		return value.Bool(n.Kind == mdast.KindHeading && n.Level == level), nil
	}
}

var (
	IsMDX        = kindPredicate(mdast.KindMDXFlow)
	IsCode       = kindPredicate(mdast.KindCodeBlock)
	IsInlineCode = kindPredicate(mdast.KindInlineCode)
	IsLink       = kindPredicate(mdast.KindLink)
	IsImage      = kindPredicate(mdast.KindImage)
	IsList       = kindPredicate(mdast.KindList)
	IsListItem   = kindPredicate(mdast.KindListItem)
	IsTable      = kindPredicate(mdast.KindTable)
	IsParagraph  = kindPredicate(mdast.KindParagraph)
	IsBlockquote = kindPredicate(mdast.KindBlockquote)
	IsHr         = kindPredicate(mdast.KindThematicBreak)
	IsHTML       = kindPredicate(mdast.KindHTMLBlock)
	IsText       = kindPredicate(mdast.KindText)
	IsStrong     = kindPredicate(mdast.KindStrong)
	IsEmphasis   = kindPredicate(mdast.KindEmphasis)
	IsMath       = kindPredicate(mdast.KindMathBlock)
	IsFootnote   = kindPredicate(mdast.KindFootnoteDef)

	IsH1 = levelPredicate(1)
	IsH2 = levelPredicate(2)
	IsH3 = levelPredicate(3)
	IsH4 = levelPredicate(4)
	IsH5 = levelPredicate(5)
	IsH6 = levelPredicate(6)
)
