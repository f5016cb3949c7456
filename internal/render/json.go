package render

import (
	"encoding/json"

	"github.com/mqlang/mq/internal/mdast"
	"github.com/mqlang/mq/internal/value"
)

// ToJSON serializes v the way spec §4.6 describes: nodes become tagged
// objects with a "kind" field plus their meaningful attributes; scalars
// and containers map onto their natural JSON shape.
func ToJSON(v value.Value) ([]byte, error) {
	return json.Marshal(toJSONAny(v))
}

func toJSONAny(v value.Value) any {
	switch v.Kind() {
	case value.KindNone:
		return nil
	case value.KindBool:
		return v.Bool()
	case value.KindNumber:
		return v.Number()
	case value.KindString:
		return v.Str()
	case value.KindSymbol:
		return ":" + v.SymbolName()
	case value.KindArray:
		out := make([]any, len(v.Array()))
		for i, item := range v.Array() {
			out[i] = toJSONAny(item)
		}
		return out
	case value.KindDict:
		out := make(map[string]any, v.Dict().Len())
		for _, k := range v.Dict().Keys() {
			dv, _ := v.Dict().Get(k)
			out[k] = toJSONAny(dv)
		}
		return out
	case value.KindNode:
		return nodeToJSONAny(v.Node())
	case value.KindFunction:
		return map[string]any{"kind": "function", "name": v.Function().Name(), "arity": v.Function().Arity()}
	case value.KindError:
		e := v.ErrValue()
		return map[string]any{"kind": "error", "error_kind": e.Kind, "message": e.Message, "line": e.Line, "column": e.Column}
	default:
		return nil
	}
}

func nodeToJSONAny(n *mdast.Node) any {
	if n == nil {
		return nil
	}
	out := map[string]any{"kind": string(n.Kind)}
	if n.Level != 0 {
		out["level"] = n.Level
	}
	if n.Value != "" {
		out["value"] = n.Value
	}
	if n.Lang != "" {
		out["lang"] = n.Lang
	}
	if n.URL != "" {
		out["url"] = n.URL
	}
	if n.Title != "" {
		out["title"] = n.Title
	}
	if n.Alt != "" {
		out["alt"] = n.Alt
	}
	if n.Label != "" {
		out["label"] = n.Label
	}
	if n.Ordered {
		out["ordered"] = true
	}
	if n.Start != 0 {
		out["start"] = n.Start
	}
	if n.Checked != nil {
		out["checked"] = *n.Checked
	}
	if n.Fenced {
		out["fenced"] = true
	}
	if len(n.Align) > 0 {
		out["align"] = n.Align
	}
	if len(n.Children) > 0 {
		children := make([]any, len(n.Children))
		for i, c := range n.Children {
			children[i] = nodeToJSONAny(c)
		}
		out["children"] = children
	}
	return out
}
