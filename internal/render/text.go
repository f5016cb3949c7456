package render

import (
	"strings"

	"github.com/mqlang/mq/internal/mdast"
	"github.com/mqlang/mq/internal/value"
)

// ToText renders v as plain text (spec §4.6): nodes flatten to their
// text payload, arrays join one value per line, everything else uses its
// display string.
func ToText(v value.Value) string {
	switch v.Kind() {
	case value.KindNode:
		return mdast.ToText(v.Node())
	case value.KindArray:
		lines := make([]string, len(v.Array()))
		for i, item := range v.Array() {
			lines[i] = ToText(item)
		}
		return strings.Join(lines, "\n")
	default:
		return value.ToString(v)
	}
}
