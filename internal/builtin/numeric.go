// Package builtin implements the ~200 value-level intrinsics of spec
// §4.5, grouped by contract into one file per group (numeric, string,
// array, dict, node, utility, comparison, predicate). Every function here
// is pure: it takes already-evaluated arguments and returns a value or a
// *mqerr.Error, with no access to the evaluator or environment. Built-ins
// that must invoke a closure (`map`, `filter`, `fold`, `sort_by`, ...)
// live in internal/eval instead, since only the evaluator can call a
// value.Closure.
package builtin

import (
	"math"
	"strconv"

	"github.com/mqlang/mq/internal/mqerr"
	"github.com/mqlang/mq/internal/value"
)

func typeErr(want string, args ...value.Value) error {
	got := make([]string, len(args))
	for i, a := range args {
		got[i] = value.TypeName(a)
	}
	return mqerr.New(mqerr.KindType, mqerr.Span{}, "expected %s, got %v", want, got)
}

func num(v value.Value) (float64, bool) {
	if v.Kind() != value.KindNumber {
		return 0, false
	}
	return v.Number(), true
}

// Add implements `add(a, b)`.
func Add(args []value.Value) (value.Value, error) {
	a, ok1 := num(args[0])
	b, ok2 := num(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two numbers", args...)
	}
	return value.Number(a + b), nil
}

func Sub(args []value.Value) (value.Value, error) {
	a, ok1 := num(args[0])
	b, ok2 := num(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two numbers", args...)
	}
	return value.Number(a - b), nil
}

func Mul(args []value.Value) (value.Value, error) {
	a, ok1 := num(args[0])
	b, ok2 := num(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two numbers", args...)
	}
	return value.Number(a * b), nil
}

// Div implements `div(a, b)`, rounding toward zero when used on integers
// via Trunc, matching spec §4.5 "div/mod round toward zero".
func Div(args []value.Value) (value.Value, error) {
	a, ok1 := num(args[0])
	b, ok2 := num(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two numbers", args...)
	}
	if b == 0 {
		return value.None, mqerr.New(mqerr.KindDivByZero, mqerr.Span{}, "division by zero")
	}
	return value.Number(math.Trunc(a / b)), nil
}

func Mod(args []value.Value) (value.Value, error) {
	a, ok1 := num(args[0])
	b, ok2 := num(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two numbers", args...)
	}
	if b == 0 {
		return value.None, mqerr.New(mqerr.KindDivByZero, mqerr.Span{}, "division by zero")
	}
	return value.Number(float64(int64(a) % int64(b))), nil
}

func Pow(args []value.Value) (value.Value, error) {
	a, ok1 := num(args[0])
	b, ok2 := num(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two numbers", args...)
	}
	return value.Number(math.Pow(a, b)), nil
}

func Abs(args []value.Value) (value.Value, error) {
	a, ok := num(args[0])
	if !ok {
		return value.None, typeErr("a number", args...)
	}
	return value.Number(math.Abs(a)), nil
}

func Round(args []value.Value) (value.Value, error) {
	a, ok := num(args[0])
	if !ok {
		return value.None, typeErr("a number", args...)
	}
	return value.Number(math.Round(a)), nil
}

func Ceil(args []value.Value) (value.Value, error) {
	a, ok := num(args[0])
	if !ok {
		return value.None, typeErr("a number", args...)
	}
	return value.Number(math.Ceil(a)), nil
}

func Floor(args []value.Value) (value.Value, error) {
	a, ok := num(args[0])
	if !ok {
		return value.None, typeErr("a number", args...)
	}
	return value.Number(math.Floor(a)), nil
}

func Trunc(args []value.Value) (value.Value, error) {
	a, ok := num(args[0])
	if !ok {
		return value.None, typeErr("a number", args...)
	}
	return value.Number(math.Trunc(a)), nil
}

func Negate(args []value.Value) (value.Value, error) {
	a, ok := num(args[0])
	if !ok {
		return value.None, typeErr("a number", args...)
	}
	return value.Number(-a), nil
}

// ToNumber coerces a string or number to a number, raising TypeError on
// anything else or an unparsable string.
func ToNumber(args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Kind() {
	case value.KindNumber:
		return v, nil
	case value.KindString:
		n, err := strconv.ParseFloat(v.Str(), 64)
		if err != nil {
			return value.None, mqerr.New(mqerr.KindType, mqerr.Span{}, "to_number: %q is not numeric", v.Str())
		}
		return value.Number(n), nil
	case value.KindBool:
		if v.Bool() {
			return value.Number(1), nil
		}
		return value.Number(0), nil
	default:
		return value.None, typeErr("a string or number", v)
	}
}
