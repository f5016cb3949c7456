package builtin

import "github.com/mqlang/mq/internal/value"

// Dict builds a dict from an array of [key, value] pairs (spec §4.5
// `dict(...)`).
func Dict(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.DictValue(value.NewDict()), nil
	}
	if args[0].Kind() != value.KindArray {
		return value.None, typeErr("an array of [key, value] pairs", args...)
	}
	d := value.NewDict()
	for _, pair := range args[0].Array() {
		if pair.Kind() != value.KindArray || len(pair.Array()) != 2 {
			return value.None, typeErr("an array of [key, value] pairs", args...)
		}
		kv := pair.Array()
		key, ok := str(kv[0])
		if !ok {
			return value.None, typeErr("string keys", args...)
		}
		d = d.With(key, kv[1])
	}
	return value.DictValue(d), nil
}

func Get(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindDict {
		return value.None, typeErr("a dict and a string", args...)
	}
	key, ok := str(args[1])
	if !ok {
		return value.None, typeErr("a dict and a string", args...)
	}
	v, _ := args[0].Dict().Get(key)
	return v, nil
}

// Set returns a new dict with key bound to val; the original is
// unchanged (spec §4.5).
func Set(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindDict {
		return value.None, typeErr("a dict, a string, and a value", args...)
	}
	key, ok := str(args[1])
	if !ok {
		return value.None, typeErr("a dict, a string, and a value", args...)
	}
	return value.DictValue(args[0].Dict().With(key, args[2])), nil
}

func Keys(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindDict {
		return value.None, typeErr("a dict", args...)
	}
	keys := args[0].Dict().Keys()
	out := make([]value.Value, len(keys))
	for i, k := range keys {
		out[i] = value.String(k)
	}
	return value.ArrayNoCopy(out), nil
}

func Values(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindDict {
		return value.None, typeErr("a dict", args...)
	}
	return value.ArrayNoCopy(args[0].Dict().Values()), nil
}

func Entries(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindDict {
		return value.None, typeErr("a dict", args...)
	}
	pairs := args[0].Dict().Entries()
	out := make([]value.Value, len(pairs))
	for i, p := range pairs {
		out[i] = value.ArrayNoCopy([]value.Value{p[0], p[1]})
	}
	return value.ArrayNoCopy(out), nil
}

// Update merges the second dict's bindings into the first, the second
// winning on key collision.
func Update(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindDict || args[1].Kind() != value.KindDict {
		return value.None, typeErr("two dicts", args...)
	}
	d := args[0].Dict()
	for _, k := range args[1].Dict().Keys() {
		v, _ := args[1].Dict().Get(k)
		d = d.With(k, v)
	}
	return value.DictValue(d), nil
}
