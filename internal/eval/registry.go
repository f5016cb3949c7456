package eval

import (
	"fmt"
	"sort"

	"github.com/mqlang/mq/internal/builtin"
	"github.com/mqlang/mq/internal/mqerr"
	"github.com/mqlang/mq/internal/value"
)

// pure adapts a value-level intrinsic from internal/builtin (which knows
// nothing about the evaluator) into a builtinFunc.
func pure(name string, arity int, fn func([]value.Value) (value.Value, error)) *builtinFunc {
	return &builtinFunc{name: name, arity: arity, impl: func(ev *Evaluator, args []value.Value) (value.Value, error) {
		return fn(args)
	}}
}

// registerBuiltins populates env with the full built-in symbol table
// (spec §4.5): pure value-level intrinsics from internal/builtin, plus
// the higher-order combinators below that must call back into the
// evaluator to invoke a closure argument.
func registerBuiltins(env Env) {
	table := []*builtinFunc{
		// numeric
		pure("add", 2, builtin.Add), pure("sub", 2, builtin.Sub), pure("mul", 2, builtin.Mul),
		pure("div", 2, builtin.Div), pure("mod", 2, builtin.Mod), pure("pow", 2, builtin.Pow),
		pure("abs", 1, builtin.Abs), pure("round", 1, builtin.Round), pure("ceil", 1, builtin.Ceil),
		pure("floor", 1, builtin.Floor), pure("trunc", 1, builtin.Trunc), pure("negate", 1, builtin.Negate),
		pure("to_number", 1, builtin.ToNumber),

		// string
		pure("upcase", 1, builtin.Upcase), pure("downcase", 1, builtin.Downcase),
		pure("split", 2, builtin.Split), pure("join", 2, builtin.Join), pure("trim", 1, builtin.Trim),
		pure("ltrimstr", 2, builtin.Ltrimstr), pure("rtrimstr", 2, builtin.Rtrimstr),
		pure("starts_with", 2, builtin.StartsWith), pure("ends_with", 2, builtin.EndsWith),
		pure("contains", 2, builtin.Contains), pure("index", 2, builtin.Index), pure("rindex", 2, builtin.Rindex),
		pure("slice", 3, builtin.Slice), pure("replace", 3, builtin.Replace), pure("gsub", 3, builtin.Gsub),
		pure("regex_match", 2, builtin.RegexMatch), pure("capture", 2, builtin.Capture),
		pure("repeat", 2, builtin.Repeat), pure("explode", 1, builtin.Explode), pure("implode", 1, builtin.Implode),
		pure("url_encode", 1, builtin.URLEncode), pure("base64", 1, builtin.Base64Encode),
		pure("base64d", 1, builtin.Base64Decode),

		// array
		pure("len", 1, builtin.Len), pure("reverse", 1, builtin.Reverse), pure("sort", 1, builtin.Sort),
		pure("compact", 1, builtin.Compact), pure("uniq", 1, builtin.Uniq), pure("flatten", 1, builtin.Flatten),
		pure("first", 1, builtin.First), pure("last", 1, builtin.Last), pure("nth", 2, builtin.Nth),
		pure("min", 1, builtin.Min), pure("max", 1, builtin.Max), pure("range", -1, builtin.Range),
		pure("to_array", 1, builtin.ToArray),

		// dict
		pure("dict", -1, builtin.Dict), pure("get", 2, builtin.Get), pure("set", 3, builtin.Set),
		pure("keys", 1, builtin.Keys), pure("values", 1, builtin.Values), pure("entries", 1, builtin.Entries),
		pure("update", 2, builtin.Update), pure("del", 2, builtin.Del),

		// node constructors
		pure("to_h", 2, builtin.ToH), pure("to_code", 2, builtin.ToCode),
		pure("to_code_inline", 1, builtin.ToCodeInline), pure("to_link", -1, builtin.ToLink),
		pure("to_image", -1, builtin.ToImage), pure("to_strong", 1, builtin.ToStrong),
		pure("to_em", 1, builtin.ToEm), pure("to_hr", 0, builtin.ToHr),
		pure("to_math", 1, builtin.ToMath), pure("to_math_inline", 1, builtin.ToMathInline),
		pure("to_md_text", 1, builtin.ToMdText), pure("to_md_list", 2, builtin.ToMdList),
		pure("to_md_table_row", 1, builtin.ToMdTableRow), pure("to_md_table_cell", 1, builtin.ToMdTableCell),

		// node mutators
		pure("set_attr", 3, builtin.SetAttr), pure("set_check", 2, builtin.SetCheck),
		pure("set_ref", 2, builtin.SetRef), pure("set_code_block_lang", 2, builtin.SetCodeBlockLang),
		pure("set_list_ordered", 2, builtin.SetListOrdered),
		pure("increase_header_level", 1, builtin.IncreaseHeaderLevel),
		pure("decrease_header_level", 1, builtin.DecreaseHeaderLevel),

		// node projections
		pure("to_text", 1, builtin.ToText), pure("to_markdown_string", 1, builtin.ToMarkdownString),
		pure("to_html", 1, builtin.ToHTML), pure("to_md_name", 1, builtin.ToMdName),
		pure("attr", 2, builtin.Attr),

		// type/utility
		pure("type", 1, builtin.Type), pure("to_string", 1, builtin.ToString),
		pure("is_none", 1, builtin.IsNone), pure("is_empty", 1, builtin.IsEmpty),
		pure("coalesce", -1, builtin.Coalesce), pure("identity", 1, builtin.Identity),
		pure("error", 1, builtin.Error), pure("halt", -1, builtin.Halt), pure("assert", -1, builtin.Assert),
		pure("now", 0, builtin.Now), pure("from_date", 1, builtin.FromDate), pure("to_date", 1, builtin.ToDate),
		pure("all_symbols", 0, builtin.AllSymbols),

		// comparison/logic
		pure("eq", 2, builtin.Eq), pure("ne", 2, builtin.Ne), pure("lt", 2, builtin.Lt),
		pure("lte", 2, builtin.Lte), pure("gt", 2, builtin.Gt), pure("gte", 2, builtin.Gte),
		pure("and", 2, builtin.And), pure("or", 2, builtin.Or), pure("not", 1, builtin.Not),

		// node predicates
		pure("is_mdx", 1, builtin.IsMDX), pure("is_code", 1, builtin.IsCode),
		pure("is_inline_code", 1, builtin.IsInlineCode), pure("is_link", 1, builtin.IsLink),
		pure("is_image", 1, builtin.IsImage), pure("is_list", 1, builtin.IsList),
		pure("is_list_item", 1, builtin.IsListItem), pure("is_table", 1, builtin.IsTable),
		pure("is_paragraph", 1, builtin.IsParagraph), pure("is_blockquote", 1, builtin.IsBlockquote),
		pure("is_hr", 1, builtin.IsHr), pure("is_html", 1, builtin.IsHTML), pure("is_text", 1, builtin.IsText),
		pure("is_strong", 1, builtin.IsStrong), pure("is_emphasis", 1, builtin.IsEmphasis),
		pure("is_math", 1, builtin.IsMath), pure("is_footnote", 1, builtin.IsFootnote),
		pure("is_h1", 1, builtin.IsH1), pure("is_h2", 1, builtin.IsH2), pure("is_h3", 1, builtin.IsH3),
		pure("is_h4", 1, builtin.IsH4), pure("is_h5", 1, builtin.IsH5), pure("is_h6", 1, builtin.IsH6),
	}

	for _, fn := range table {
		env.Define(fn.name, value.Function(fn))
	}

	for _, fn := range higherOrderBuiltins() {
		env.Define(fn.name, value.Function(fn))
	}

	builtin.AllSymbolsLister = func() []string {
		names := make([]string, 0, len(table))
		for _, fn := range table {
			names = append(names, fn.name)
		}
		for _, fn := range higherOrderBuiltins() {
			names = append(names, fn.name)
		}
		sort.Strings(names)
		return names
	}
}

// higherOrderBuiltins returns the combinators that invoke a closure
// argument (spec §4.5 array group): map, filter, fold, select, any, all,
// sort_by, group_by, unique_by, pluck, plus print/stderr, the only two
// built-ins with an observable side effect on the host (spec §4.4
// "Observable side effects") — both need the evaluator's Options to
// reach the configured sink, so neither can be a `pure` intrinsic.
func higherOrderBuiltins() []*builtinFunc {
	return []*builtinFunc{
		{name: "map", arity: 2, impl: biMap},
		{name: "filter", arity: 2, impl: biFilter},
		{name: "fold", arity: 2, impl: biFold},
		{name: "select", arity: 2, impl: biSelect},
		{name: "any", arity: 2, impl: biAny},
		{name: "all", arity: 2, impl: biAll},
		{name: "sort_by", arity: 2, impl: biSortBy},
		{name: "group_by", arity: 2, impl: biGroupBy},
		{name: "unique_by", arity: 2, impl: biUniqueBy},
		{name: "pluck", arity: 2, impl: biPluck},
		{name: "print", arity: 1, impl: biPrint},
		{name: "stderr", arity: 1, impl: biStderr},
	}
}

// biPrint writes self's display form followed by a newline to the
// configured stdout sink and passes self through unchanged, so it can
// sit in the middle of a pipeline without disturbing the value flowing
// through it.
func biPrint(ev *Evaluator, args []value.Value) (value.Value, error) {
	fmt.Fprintln(ev.opts.Stdout, value.ToString(args[0]))
	return args[0], nil
}

// biStderr is biPrint's twin for the diagnostic sink.
func biStderr(ev *Evaluator, args []value.Value) (value.Value, error) {
	fmt.Fprintln(ev.opts.Stderr, value.ToString(args[0]))
	return args[0], nil
}

func asArray(v value.Value) ([]value.Value, error) {
	if v.Kind() != value.KindArray {
		return nil, mqerr.New(mqerr.KindType, mqerr.Span{}, "expected an array, got %s", value.TypeName(v))
	}
	return v.Array(), nil
}

func asClosure(v value.Value) (value.Closure, error) {
	if v.Kind() != value.KindFunction {
		return nil, mqerr.New(mqerr.KindType, mqerr.Span{}, "expected a function, got %s", value.TypeName(v))
	}
	return v.Function(), nil
}

func biMap(ev *Evaluator, args []value.Value) (value.Value, error) {
	items, err := asArray(args[0])
	if err != nil {
		return value.None, err
	}
	fn, err := asClosure(args[1])
	if err != nil {
		return value.None, err
	}
	out := make([]value.Value, len(items))
	for i, item := range items {
		v, err := ev.callClosure(fn, []value.Value{item}, ev.root)
		if err != nil {
			return value.None, err
		}
		out[i] = v
	}
	return value.ArrayNoCopy(out), nil
}

func biFilter(ev *Evaluator, args []value.Value) (value.Value, error) {
	items, err := asArray(args[0])
	if err != nil {
		return value.None, err
	}
	fn, err := asClosure(args[1])
	if err != nil {
		return value.None, err
	}
	var out []value.Value
	for _, item := range items {
		keep, err := ev.callClosure(fn, []value.Value{item}, ev.root)
		if err != nil {
			return value.None, err
		}
		if keep.Truthy() {
			out = append(out, item)
		}
	}
	return value.ArrayNoCopy(out), nil
}

// biFold implements `fold(arr, fn)`, threading an accumulator through
// fn(acc, item) left to right. The accumulator starts as None; there is
// no initial-value argument.
func biFold(ev *Evaluator, args []value.Value) (value.Value, error) {
	items, err := asArray(args[0])
	if err != nil {
		return value.None, err
	}
	fn, err := asClosure(args[1])
	if err != nil {
		return value.None, err
	}
	if fn.Arity() < 2 {
		return value.None, mqerr.New(mqerr.KindArity, mqerr.Span{}, "fold: accumulator function needs 2 parameters")
	}
	acc := value.None
	for _, item := range items {
		acc, err = ev.callClosure(fn, []value.Value{acc, item}, ev.root)
		if err != nil {
			return value.None, err
		}
	}
	return acc, nil
}

// biSelect implements `select(cond)`: returns self if cond is truthy,
// else None (spec §4.5). Declared at arity 2 so fillSelf (call.go) prepends
// self as the implicit first argument for the call-site form `select(cond)`
// — self is the value select returns, cond is only ever tested for
// truthiness, matching the worked example in spec §8 scenario (b).
func biSelect(ev *Evaluator, args []value.Value) (value.Value, error) {
	if args[1].Truthy() {
		return args[0], nil
	}
	return value.None, nil
}

func biAny(ev *Evaluator, args []value.Value) (value.Value, error) {
	items, err := asArray(args[0])
	if err != nil {
		return value.None, err
	}
	fn, err := asClosure(args[1])
	if err != nil {
		return value.None, err
	}
	for _, item := range items {
		v, err := ev.callClosure(fn, []value.Value{item}, ev.root)
		if err != nil {
			return value.None, err
		}
		if v.Truthy() {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func biAll(ev *Evaluator, args []value.Value) (value.Value, error) {
	items, err := asArray(args[0])
	if err != nil {
		return value.None, err
	}
	fn, err := asClosure(args[1])
	if err != nil {
		return value.None, err
	}
	for _, item := range items {
		v, err := ev.callClosure(fn, []value.Value{item}, ev.root)
		if err != nil {
			return value.None, err
		}
		if !v.Truthy() {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

func biSortBy(ev *Evaluator, args []value.Value) (value.Value, error) {
	items, err := asArray(args[0])
	if err != nil {
		return value.None, err
	}
	fn, err := asClosure(args[1])
	if err != nil {
		return value.None, err
	}
	keys := make([]value.Value, len(items))
	for i, item := range items {
		k, err := ev.callClosure(fn, []value.Value{item}, ev.root)
		if err != nil {
			return value.None, err
		}
		keys[i] = k
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return value.Compare(keys[idx[a]], keys[idx[b]]) < 0 })
	out := make([]value.Value, len(items))
	for i, j := range idx {
		out[i] = items[j]
	}
	return value.ArrayNoCopy(out), nil
}

// biGroupBy buckets items by key, preserving first-seen key order, each
// bucket itself an array (spec §4.5 `group_by`).
func biGroupBy(ev *Evaluator, args []value.Value) (value.Value, error) {
	items, err := asArray(args[0])
	if err != nil {
		return value.None, err
	}
	fn, err := asClosure(args[1])
	if err != nil {
		return value.None, err
	}
	var groupKeys []value.Value
	groups := map[int][]value.Value{}
	for _, item := range items {
		k, err := ev.callClosure(fn, []value.Value{item}, ev.root)
		if err != nil {
			return value.None, err
		}
		gi := -1
		for i, gk := range groupKeys {
			if value.Equal(gk, k) {
				gi = i
				break
			}
		}
		if gi == -1 {
			gi = len(groupKeys)
			groupKeys = append(groupKeys, k)
		}
		groups[gi] = append(groups[gi], item)
	}
	out := make([]value.Value, len(groupKeys))
	for i := range groupKeys {
		out[i] = value.ArrayNoCopy(groups[i])
	}
	return value.ArrayNoCopy(out), nil
}

func biUniqueBy(ev *Evaluator, args []value.Value) (value.Value, error) {
	items, err := asArray(args[0])
	if err != nil {
		return value.None, err
	}
	fn, err := asClosure(args[1])
	if err != nil {
		return value.None, err
	}
	var out []value.Value
	var seen []value.Value
	for _, item := range items {
		k, err := ev.callClosure(fn, []value.Value{item}, ev.root)
		if err != nil {
			return value.None, err
		}
		dup := false
		for _, s := range seen {
			if value.Equal(s, k) {
				dup = true
				break
			}
		}
		if !dup {
			seen = append(seen, k)
			out = append(out, item)
		}
	}
	return value.ArrayNoCopy(out), nil
}

// biPluck maps a selector-like accessor function over items and collects
// its results, a thin convenience over map commonly used as
// `pluck(arr, fn(x): x.title;)`.
func biPluck(ev *Evaluator, args []value.Value) (value.Value, error) {
	return biMap(ev, args)
}
