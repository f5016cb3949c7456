package builtin

import (
	"testing"

	"github.com/mqlang/mq/internal/value"
)

func nums(vs ...float64) value.Value {
	out := make([]value.Value, len(vs))
	for i, v := range vs {
		out[i] = value.Number(v)
	}
	return value.ArrayNoCopy(out)
}

func TestLen(t *testing.T) {
	tests := []struct {
		name string
		arg  value.Value
		want int
	}{
		{"array", nums(1, 2, 3), 3},
		{"string", value.String("héllo"), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Len([]value.Value{tt.arg})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if int(got.Number()) != tt.want {
				t.Errorf("got %v, want %v", got.Number(), tt.want)
			}
		})
	}
}

func TestReverse(t *testing.T) {
	got, err := Reverse([]value.Value{nums(1, 2, 3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{3, 2, 1}
	for i, v := range got.Array() {
		if v.Number() != want[i] {
			t.Errorf("index %d: got %v, want %v", i, v.Number(), want[i])
		}
	}
}

func TestCompactDropsNone(t *testing.T) {
	in := value.ArrayNoCopy([]value.Value{value.Number(1), value.None, value.Number(2)})
	got, err := Compact([]value.Value{in})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Array()) != 2 {
		t.Fatalf("got %d elements, want 2", len(got.Array()))
	}
}

func TestUniqPreservesFirstSeenOrder(t *testing.T) {
	in := nums(1, 2, 1, 3, 2)
	got, err := Uniq([]value.Value{in})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{1, 2, 3}
	if len(got.Array()) != len(want) {
		t.Fatalf("got %d elements, want %d", len(got.Array()), len(want))
	}
	for i, v := range got.Array() {
		if v.Number() != want[i] {
			t.Errorf("index %d: got %v, want %v", i, v.Number(), want[i])
		}
	}
}

func TestFlattenOneLevel(t *testing.T) {
	in := value.ArrayNoCopy([]value.Value{nums(1, 2), nums(3, 4)})
	got, err := Flatten([]value.Value{in})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Array()) != 4 {
		t.Fatalf("got %d elements, want 4", len(got.Array()))
	}
}

func TestFirstLastNth(t *testing.T) {
	in := nums(10, 20, 30)
	first, _ := First([]value.Value{in})
	if first.Number() != 10 {
		t.Errorf("first: got %v, want 10", first.Number())
	}
	last, _ := Last([]value.Value{in})
	if last.Number() != 30 {
		t.Errorf("last: got %v, want 30", last.Number())
	}
	nth, err := Nth([]value.Value{in, value.Number(1)})
	if err != nil || nth.Number() != 20 {
		t.Errorf("nth(1): got %v, err %v", nth, err)
	}
	outOfRange, err := Nth([]value.Value{in, value.Number(5)})
	if err != nil || !outOfRange.IsNone() {
		t.Errorf("nth out of range: got %v, err %v", outOfRange, err)
	}
}

func TestFirstLastEmptyIsNone(t *testing.T) {
	empty := value.ArrayNoCopy(nil)
	first, err := First([]value.Value{empty})
	if err != nil || !first.IsNone() {
		t.Errorf("first of empty: got %v, err %v", first, err)
	}
}

func TestMinMax(t *testing.T) {
	in := nums(3, 1, 2)
	min, _ := Min([]value.Value{in})
	if min.Number() != 1 {
		t.Errorf("min: got %v, want 1", min.Number())
	}
	max, _ := Max([]value.Value{in})
	if max.Number() != 3 {
		t.Errorf("max: got %v, want 3", max.Number())
	}
}

func TestRangeDefaultStep(t *testing.T) {
	got, err := Range([]value.Value{value.Number(0), value.Number(3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0, 1, 2}
	if len(got.Array()) != len(want) {
		t.Fatalf("got %d elements, want %d", len(got.Array()), len(want))
	}
	for i, v := range got.Array() {
		if v.Number() != want[i] {
			t.Errorf("index %d: got %v, want %v", i, v.Number(), want[i])
		}
	}
}

func TestRangeExplicitStep(t *testing.T) {
	got, err := Range([]value.Value{value.Number(0), value.Number(10), value.Number(5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0, 5}
	if len(got.Array()) != len(want) {
		t.Fatalf("got %d elements, want %d", len(got.Array()), len(want))
	}
}

func TestToArrayWrapsSingleton(t *testing.T) {
	got, err := ToArray([]value.Value{value.Number(5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Array()) != 1 || got.Array()[0].Number() != 5 {
		t.Errorf("got %v, want [5]", got)
	}
}

func TestToArrayPassesArrayThrough(t *testing.T) {
	in := nums(1, 2)
	got, err := ToArray([]value.Value{in})
	if err != nil || len(got.Array()) != 2 {
		t.Fatalf("got %v, err %v", got, err)
	}
}

func TestDel(t *testing.T) {
	d := value.NewDict().With("a", value.Number(1)).With("b", value.Number(2))
	got, err := Del([]value.Value{value.DictValue(d), value.String("a")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Dict().Len() != 1 {
		t.Errorf("got %d keys, want 1", got.Dict().Len())
	}
	if _, ok := got.Dict().Get("a"); ok {
		t.Errorf("expected key 'a' to be removed")
	}
}
