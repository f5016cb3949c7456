package builtin

import (
	"github.com/mqlang/mq/internal/value"
)

func arr(v value.Value) ([]value.Value, bool) {
	if v.Kind() != value.KindArray {
		return nil, false
	}
	return v.Array(), true
}

func Len(args []value.Value) (value.Value, error) {
	switch args[0].Kind() {
	case value.KindArray:
		return value.Int(len(args[0].Array())), nil
	case value.KindString:
		return value.Int(len([]rune(args[0].Str()))), nil
	case value.KindDict:
		return value.Int(args[0].Dict().Len()), nil
	default:
		return value.None, typeErr("an array, string, or dict", args...)
	}
}

func Reverse(args []value.Value) (value.Value, error) {
	a, ok := arr(args[0])
	if !ok {
		return value.None, typeErr("an array", args...)
	}
	out := make([]value.Value, len(a))
	for i, v := range a {
		out[len(a)-1-i] = v
	}
	return value.ArrayNoCopy(out), nil
}

func Sort(args []value.Value) (value.Value, error) {
	a, ok := arr(args[0])
	if !ok {
		return value.None, typeErr("an array", args...)
	}
	return value.ArrayNoCopy(value.SortValues(a)), nil
}

// Compact drops every None element (spec's additive builtin, SPEC_FULL.md
// §5–8).
func Compact(args []value.Value) (value.Value, error) {
	a, ok := arr(args[0])
	if !ok {
		return value.None, typeErr("an array", args...)
	}
	out := make([]value.Value, 0, len(a))
	for _, v := range a {
		if !v.IsNone() {
			out = append(out, v)
		}
	}
	return value.ArrayNoCopy(out), nil
}

// Uniq removes consecutive and non-consecutive duplicate elements,
// preserving first-seen order.
func Uniq(args []value.Value) (value.Value, error) {
	a, ok := arr(args[0])
	if !ok {
		return value.None, typeErr("an array", args...)
	}
	var out []value.Value
	for _, v := range a {
		dup := false
		for _, seen := range out {
			if value.Equal(seen, v) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return value.ArrayNoCopy(out), nil
}

// Flatten flattens exactly one level of array nesting.
func Flatten(args []value.Value) (value.Value, error) {
	a, ok := arr(args[0])
	if !ok {
		return value.None, typeErr("an array", args...)
	}
	var out []value.Value
	for _, v := range a {
		if v.Kind() == value.KindArray {
			out = append(out, v.Array()...)
		} else {
			out = append(out, v)
		}
	}
	return value.ArrayNoCopy(out), nil
}

func First(args []value.Value) (value.Value, error) {
	a, ok := arr(args[0])
	if !ok {
		return value.None, typeErr("an array", args...)
	}
	if len(a) == 0 {
		return value.None, nil
	}
	return a[0], nil
}

func Last(args []value.Value) (value.Value, error) {
	a, ok := arr(args[0])
	if !ok {
		return value.None, typeErr("an array", args...)
	}
	if len(a) == 0 {
		return value.None, nil
	}
	return a[len(a)-1], nil
}

// Nth returns the element at index i, or None out of range (additive
// builtin, SPEC_FULL.md §5–8).
func Nth(args []value.Value) (value.Value, error) {
	a, ok := arr(args[0])
	if !ok || args[1].Kind() != value.KindNumber {
		return value.None, typeErr("an array and a number", args...)
	}
	i := int(args[1].Number())
	if i < 0 || i >= len(a) {
		return value.None, nil
	}
	return a[i], nil
}

func Min(args []value.Value) (value.Value, error) {
	a, ok := arr(args[0])
	if !ok || len(a) == 0 {
		return value.None, nil
	}
	m := a[0]
	for _, v := range a[1:] {
		if value.Compare(v, m) < 0 {
			m = v
		}
	}
	return m, nil
}

func Max(args []value.Value) (value.Value, error) {
	a, ok := arr(args[0])
	if !ok || len(a) == 0 {
		return value.None, nil
	}
	m := a[0]
	for _, v := range a[1:] {
		if value.Compare(v, m) > 0 {
			m = v
		}
	}
	return m, nil
}

// Range produces [start, end) stepping by 1 (or by step when a third
// argument is given).
func Range(args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return value.None, typeErr("two or three numbers", args...)
	}
	start, ok1 := num(args[0])
	end, ok2 := num(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two or three numbers", args...)
	}
	step := 1.0
	if len(args) == 3 {
		s, ok := num(args[2])
		if !ok || s == 0 {
			return value.None, typeErr("a non-zero step", args...)
		}
		step = s
	}
	var out []value.Value
	if step > 0 {
		for v := start; v < end; v += step {
			out = append(out, value.Number(v))
		}
	} else {
		for v := start; v > end; v += step {
			out = append(out, value.Number(v))
		}
	}
	return value.ArrayNoCopy(out), nil
}

// Del removes a key from a dict, returning a new dict (spec's additive
// builtin, SPEC_FULL.md §5–8).
func Del(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindDict {
		return value.None, typeErr("a dict and a string", args...)
	}
	key, ok := str(args[1])
	if !ok {
		return value.None, typeErr("a dict and a string", args...)
	}
	return value.DictValue(args[0].Dict().Without(key)), nil
}

// ToArray wraps a non-array value as a singleton array, or passes an
// array through unchanged (additive builtin, SPEC_FULL.md §5–8).
func ToArray(args []value.Value) (value.Value, error) {
	if args[0].Kind() == value.KindArray {
		return args[0], nil
	}
	if args[0].IsNone() {
		return value.ArrayNoCopy(nil), nil
	}
	return value.ArrayNoCopy([]value.Value{args[0]}), nil
}
