package builtin

import "github.com/mqlang/mq/internal/value"

func Eq(args []value.Value) (value.Value, error)  { return value.Bool(value.Equal(args[0], args[1])), nil }
func Ne(args []value.Value) (value.Value, error)  { return value.Bool(!value.Equal(args[0], args[1])), nil }
func Lt(args []value.Value) (value.Value, error)  { return value.Bool(value.Compare(args[0], args[1]) < 0), nil }
func Lte(args []value.Value) (value.Value, error) { return value.Bool(value.Compare(args[0], args[1]) <= 0), nil }
func Gt(args []value.Value) (value.Value, error)  { return value.Bool(value.Compare(args[0], args[1]) > 0), nil }
func Gte(args []value.Value) (value.Value, error) { return value.Bool(value.Compare(args[0], args[1]) >= 0), nil }

func And(args []value.Value) (value.Value, error) {
	return value.Bool(args[0].Truthy() && args[1].Truthy()), nil
}

func Or(args []value.Value) (value.Value, error) {
	return value.Bool(args[0].Truthy() || args[1].Truthy()), nil
}

func Not(args []value.Value) (value.Value, error) {
	return value.Bool(!args[0].Truthy()), nil
}
