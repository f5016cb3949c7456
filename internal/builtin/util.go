package builtin

import (
	"time"

	"github.com/mqlang/mq/internal/mqerr"
	"github.com/mqlang/mq/internal/value"
)

func Type(args []value.Value) (value.Value, error) {
	return value.String(value.TypeName(args[0])), nil
}

func ToString(args []value.Value) (value.Value, error) {
	return value.String(value.ToString(args[0])), nil
}

func IsNone(args []value.Value) (value.Value, error) {
	return value.Bool(args[0].IsNone()), nil
}

// IsEmpty reports whether a string/array/dict has zero length, or
// whether the value is None.
func IsEmpty(args []value.Value) (value.Value, error) {
	v := args[0]
	switch v.Kind() {
	case value.KindNone:
		return value.Bool(true), nil
	case value.KindString:
		return value.Bool(v.Str() == ""), nil
	case value.KindArray:
		return value.Bool(len(v.Array()) == 0), nil
	case value.KindDict:
		return value.Bool(v.Dict().Len() == 0), nil
	default:
		return value.Bool(false), nil
	}
}

// Coalesce returns the first non-None argument, or None if all are None.
func Coalesce(args []value.Value) (value.Value, error) {
	for _, v := range args {
		if !v.IsNone() {
			return v, nil
		}
	}
	return value.None, nil
}

func Identity(args []value.Value) (value.Value, error) {
	return args[0], nil
}

// Error raises a catchable error carrying the given message as its
// payload, for use with try/catch (spec §4.5 `error(msg)`).
func Error(args []value.Value) (value.Value, error) {
	msg, ok := str(args[0])
	if !ok {
		msg = value.ToString(args[0])
	}
	return value.None, mqerr.New(mqerr.KindAssertion, mqerr.Span{}, "%s", msg)
}

// Halt terminates evaluation of the current input; unlike `error`, it is
// never catchable (spec §7 additive kind).
func Halt(args []value.Value) (value.Value, error) {
	msg := ""
	if len(args) > 0 {
		msg = value.ToString(args[0])
	}
	return value.None, mqerr.New(mqerr.KindHalt, mqerr.Span{}, "halt: %s", msg)
}

// Assert raises AssertionFailed when cond is falsy.
func Assert(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.None, mqerr.New(mqerr.KindArity, mqerr.Span{}, "assert: expected at least 1 argument")
	}
	if !args[0].Truthy() {
		msg := "assertion failed"
		if len(args) > 1 {
			msg = value.ToString(args[1])
		}
		return value.None, mqerr.New(mqerr.KindAssertion, mqerr.Span{}, "%s", msg)
	}
	return args[0], nil
}

// Now returns the current Unix timestamp in seconds.
func Now([]value.Value) (value.Value, error) {
	return value.Number(float64(time.Now().Unix())), nil
}

// FromDate parses an RFC3339 timestamp string into a Unix-seconds number.
func FromDate(args []value.Value) (value.Value, error) {
	s, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string", args...)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return value.None, mqerr.New(mqerr.KindType, mqerr.Span{}, "from_date: %s", err)
	}
	return value.Number(float64(t.Unix())), nil
}

// ToDate formats a Unix-seconds number as an RFC3339 timestamp string.
func ToDate(args []value.Value) (value.Value, error) {
	n, ok := num(args[0])
	if !ok {
		return value.None, typeErr("a number", args...)
	}
	return value.String(time.Unix(int64(n), 0).UTC().Format(time.RFC3339)), nil
}

// AllSymbols is populated by the evaluator's registry (it needs the root
// scope's name table, which this package doesn't have access to); this
// placeholder keeps the contract name documented here.
var AllSymbolsLister func() []string

func AllSymbols([]value.Value) (value.Value, error) {
	if AllSymbolsLister == nil {
		return value.ArrayNoCopy(nil), nil
	}
	names := AllSymbolsLister()
	out := make([]value.Value, len(names))
	for i, n := range names {
		out[i] = value.String(n)
	}
	return value.ArrayNoCopy(out), nil
}
