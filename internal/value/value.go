// Package value implements the unified runtime value model described in
// spec §3.2: a closed set of variants (None, Bool, Number, String,
// Symbol, Array, Dict, Node, Function, Error) dispatched by an explicit
// tag check rather than open interface polymorphism (design note §9:
// "Dynamic dispatch on values").
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mqlang/mq/internal/mdast"
)

// Kind tags a Value's variant.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindNumber
	KindString
	KindSymbol
	KindArray
	KindDict
	KindNode
	KindFunction
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindArray:
		return "array"
	case KindDict:
		return "dict"
	case KindNode:
		return "node"
	case KindFunction:
		return "function"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Closure is satisfied by the evaluator's function representation. It is
// declared here, not implemented here, so that the value package never
// imports the evaluator (breaking the only cycle risk in the module
// graph, per design note §9).
type Closure interface {
	Arity() int
	Name() string
}

// ErrValue is the payload of a Value of KindError: a recoverable runtime
// error lifted into value space (e.g. for try/catch's `self` binding).
type ErrValue struct {
	Kind    string
	Message string
	Line    int
	Column  int
}

// Value is the single runtime value type threaded through the evaluator.
// Exactly one of the typed fields is meaningful, selected by Kind. Values
// are copied by struct assignment; Array/Dict share their backing slices/
// maps copy-on-write so that pipelines can fan out a value to
// multiple consumers without aliasing bugs.
type Value struct {
	kind Kind
	// seq marks an Array value as a selector-produced stream rather than a
	// constructed array literal (design note §9 "Selectors as data"): the
	// pipe operator broadcasts the right-hand side over a seq array,
	// element by element, instead of passing the whole array as one self
	// (spec §4.4 "central idiom"). Plain arrays (dict/range/map/... output)
	// never set this and flow through `|` as a single value, as before.
	seq bool

	b    bool
	num  float64
	str  string
	sym  string
	arr  []Value
	dict *Dict
	node *mdast.Node
	fn   Closure
	err  *ErrValue
}

// None is the distinguished absent value; it is never equal to an empty
// string or empty array (spec §3.2).
var None = Value{kind: KindNone}

func Bool(b bool) Value       { return Value{kind: KindBool, b: b} }
func Number(n float64) Value  { return Value{kind: KindNumber, num: n} }
func Int(n int) Value         { return Value{kind: KindNumber, num: float64(n)} }
func String(s string) Value   { return Value{kind: KindString, str: s} }
func Symbol(s string) Value   { return Value{kind: KindSymbol, sym: s} }
func NodeValue(n *mdast.Node) Value {
	if n == nil {
		return None
	}
	return Value{kind: KindNode, node: n}
}
func Function(f Closure) Value { return Value{kind: KindFunction, fn: f} }

func Array(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, arr: cp}
}

// ArrayNoCopy wraps items without copying; callers must not mutate items
// afterward. Used internally by builtins that just built a fresh slice.
func ArrayNoCopy(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// Sequence wraps items the way a selector's collected matches do: the
// result is still a plain Array in every respect (type, length, indexing),
// but the pipe operator recognizes the tag and broadcasts across it
// instead of treating it as one self (spec §4.4).
func Sequence(items []Value) Value {
	v := ArrayNoCopy(items)
	v.seq = true
	return v
}

// IsSequence reports whether this Array value was produced by matching
// (selectors, pipe broadcast), as opposed to being built by a literal,
// dict/map/filter call, or other array-constructing builtin.
func (v Value) IsSequence() bool { return v.kind == KindArray && v.seq }

func DictValue(d *Dict) Value {
	if d == nil {
		d = NewDict()
	}
	return Value{kind: KindDict, dict: d}
}

func ErrorValue(kind, message string, line, column int) Value {
	return Value{kind: KindError, err: &ErrValue{Kind: kind, Message: message, Line: line, Column: column}}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNone() bool  { return v.kind == KindNone }
func (v Value) IsBool() bool  { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsString() bool { return v.kind == KindString }
func (v Value) IsSymbol() bool { return v.kind == KindSymbol }
func (v Value) IsArray() bool  { return v.kind == KindArray }
func (v Value) IsDict() bool   { return v.kind == KindDict }
func (v Value) IsNode() bool   { return v.kind == KindNode }
func (v Value) IsFunction() bool { return v.kind == KindFunction }
func (v Value) IsError() bool  { return v.kind == KindError }

func (v Value) Bool() bool          { return v.b }
func (v Value) Number() float64     { return v.num }
func (v Value) Str() string         { return v.str }
func (v Value) SymbolName() string  { return v.sym }
func (v Value) Array() []Value      { return v.arr }
func (v Value) Dict() *Dict         { return v.dict }
func (v Value) Node() *mdast.Node   { return v.node }
func (v Value) Function() Closure   { return v.fn }
func (v Value) ErrValue() *ErrValue { return v.err }

// Truthy implements mq's truthiness rule: None and false are falsy; the
// number 0 and empty string/array/dict are also falsy, everything else
// (including Node and Function values) is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNone:
		return false
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0
	case KindString:
		return v.str != ""
	case KindSymbol:
		return v.sym != ""
	case KindArray:
		return len(v.arr) > 0
	case KindDict:
		return v.dict != nil && v.dict.Len() > 0
	default:
		return true
	}
}

// Equal implements structural equality used by eq/ne and == / != and by
// uniq/group_by key comparison.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		// Numbers and booleans never cross-compare equal to other kinds.
		return false
	}
	switch a.kind {
	case KindNone:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindString:
		return a.str == b.str
	case KindSymbol:
		return a.sym == b.sym
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if a.dict.Len() != b.dict.Len() {
			return false
		}
		for _, k := range a.dict.Keys() {
			bv, ok := b.dict.Get(k)
			if !ok {
				return false
			}
			av, _ := a.dict.Get(k)
			if !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindNode:
		return a.node == b.node || (a.node != nil && b.node != nil && mdast.Equal(a.node, b.node))
	case KindFunction:
		return a.fn == b.fn
	case KindError:
		return a.err.Kind == b.err.Kind && a.err.Message == b.err.Message
	default:
		return false
	}
}

// Compare orders two values for sort/sort_by and the ordering operators.
// Numbers compare numerically, strings lexically; mixed kinds compare by
// Kind tag so that sort is always total and deterministic.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		default:
			return 0
		}
	case KindString:
		return strings.Compare(a.str, b.str)
	case KindSymbol:
		return strings.Compare(a.sym, b.sym)
	case KindBool:
		if a.b == b.b {
			return 0
		}
		if !a.b {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// IsInteger reports whether a Number value holds an exact integer within
// the 2^53 range where float64 arithmetic is exact (spec §3.2).
func (v Value) IsInteger() bool {
	if v.kind != KindNumber {
		return false
	}
	return v.num == math.Trunc(v.num) && math.Abs(v.num) < (1<<53)
}

// ToString renders a value the way string interpolation and to_string()
// do: strings pass through unquoted, everything else uses its display
// form.
func ToString(v Value) string {
	switch v.kind {
	case KindNone:
		return ""
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return FormatNumber(v.num)
	case KindString:
		return v.str
	case KindSymbol:
		return ":" + v.sym
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			parts[i] = ToDisplayString(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindDict:
		return dictDisplay(v.dict)
	case KindNode:
		return mdast.ToText(v.node)
	case KindFunction:
		return fmt.Sprintf("<function %s/%d>", v.fn.Name(), v.fn.Arity())
	case KindError:
		return fmt.Sprintf("%s: %s", v.err.Kind, v.err.Message)
	default:
		return ""
	}
}

// ToDisplayString is used for values nested inside arrays/dicts, where
// strings must be quoted to stay unambiguous.
func ToDisplayString(v Value) string {
	if v.kind == KindString {
		return strconv.Quote(v.str)
	}
	return ToString(v)
}

func dictDisplay(d *Dict) string {
	if d == nil {
		return "{}"
	}
	keys := d.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		val, _ := d.Get(k)
		parts = append(parts, fmt.Sprintf("%s: %s", strconv.Quote(k), ToDisplayString(val)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FormatNumber renders a float64 the way mq programs expect to see
// integers: without a trailing ".0" when the value is integral.
func FormatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// TypeName returns the name the `type` builtin reports.
func TypeName(v Value) string {
	switch v.kind {
	case KindNode:
		if v.node != nil {
			return "node"
		}
		return "none"
	default:
		return v.kind.String()
	}
}

// SortValues sorts a copy of vs in place using Compare and returns it.
func SortValues(vs []Value) []Value {
	cp := make([]Value, len(vs))
	copy(cp, vs)
	sort.SliceStable(cp, func(i, j int) bool { return Compare(cp[i], cp[j]) < 0 })
	return cp
}
