package value

// Dict is an insertion-ordered string-keyed map (spec §3.2). It is never
// mutated in place once shared: With/Without return a new Dict so that a
// Value holding the old Dict keeps seeing the old bindings, matching the
// "mutators return copies" rule applied to node transforms (spec §4.5).
type Dict struct {
	keys   []string
	values map[string]Value
}

// NewDict returns an empty Dict.
func NewDict() *Dict {
	return &Dict{values: make(map[string]Value)}
}

// Get looks up a key, preserving None-vs-absent distinction via the ok
// return.
func (d *Dict) Get(key string) (Value, bool) {
	if d == nil {
		return None, false
	}
	v, ok := d.values[key]
	return v, ok
}

// Len reports the number of bindings.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Keys returns keys in insertion order. The caller must not mutate the
// returned slice.
func (d *Dict) Keys() []string {
	if d == nil {
		return nil
	}
	return d.keys
}

// Values returns values in key-insertion order.
func (d *Dict) Values() []Value {
	if d == nil {
		return nil
	}
	out := make([]Value, len(d.keys))
	for i, k := range d.keys {
		out[i] = d.values[k]
	}
	return out
}

// With returns a new Dict with key bound to val, appended at the end of
// insertion order if new, or updated in place (order preserved) if the
// key already exists.
func (d *Dict) With(key string, val Value) *Dict {
	nd := &Dict{
		keys:   make([]string, 0, d.Len()+1),
		values: make(map[string]Value, d.Len()+1),
	}
	if d != nil {
		nd.keys = append(nd.keys, d.keys...)
		for k, v := range d.values {
			nd.values[k] = v
		}
	}
	if _, exists := nd.values[key]; !exists {
		nd.keys = append(nd.keys, key)
	}
	nd.values[key] = val
	return nd
}

// Without returns a new Dict with key removed, used by the `del` builtin.
func (d *Dict) Without(key string) *Dict {
	nd := NewDict()
	for _, k := range d.Keys() {
		if k == key {
			continue
		}
		v, _ := d.Get(k)
		nd = nd.With(k, v)
	}
	return nd
}

// Entries returns [key, value] pairs in insertion order, as used by the
// `entries` builtin.
func (d *Dict) Entries() [][2]Value {
	keys := d.Keys()
	out := make([][2]Value, len(keys))
	for i, k := range keys {
		v, _ := d.Get(k)
		out[i] = [2]Value{String(k), v}
	}
	return out
}

// DictFromPairs builds a Dict from an ordered slice of key/value pairs.
func DictFromPairs(pairs [][2]string) *Dict {
	d := NewDict()
	for _, p := range pairs {
		d = d.With(p[0], String(p[1]))
	}
	return d
}
