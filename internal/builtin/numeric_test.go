package builtin

import (
	"testing"

	"github.com/mqlang/mq/internal/mqerr"
	"github.com/mqlang/mq/internal/value"
)

func TestNumericArithmetic(t *testing.T) {
	tests := []struct {
		name string
		fn   func([]value.Value) (value.Value, error)
		args []value.Value
		want float64
	}{
		{"add", Add, []value.Value{value.Number(2), value.Number(3)}, 5},
		{"sub", Sub, []value.Value{value.Number(5), value.Number(3)}, 2},
		{"mul", Mul, []value.Value{value.Number(4), value.Number(3)}, 12},
		{"div truncates toward zero", Div, []value.Value{value.Number(-7), value.Number(2)}, -3},
		{"mod", Mod, []value.Value{value.Number(7), value.Number(2)}, 1},
		{"pow", Pow, []value.Value{value.Number(2), value.Number(10)}, 1024},
		{"abs", Abs, []value.Value{value.Number(-5)}, 5},
		{"round", Round, []value.Value{value.Number(2.5)}, 3},
		{"ceil", Ceil, []value.Value{value.Number(2.1)}, 3},
		{"floor", Floor, []value.Value{value.Number(2.9)}, 2},
		{"trunc", Trunc, []value.Value{value.Number(-2.9)}, -2},
		{"negate", Negate, []value.Value{value.Number(5)}, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Number() != tt.want {
				t.Errorf("got %v, want %v", got.Number(), tt.want)
			}
		})
	}
}

func TestDivByZero(t *testing.T) {
	_, err := Div([]value.Value{value.Number(1), value.Number(0)})
	if err == nil {
		t.Fatal("expected an error")
	}
	me, ok := err.(*mqerr.Error)
	if !ok || me.Kind != mqerr.KindDivByZero {
		t.Fatalf("got %v, want KindDivByZero", err)
	}
}

func TestModByZero(t *testing.T) {
	_, err := Mod([]value.Value{value.Number(1), value.Number(0)})
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestToNumber(t *testing.T) {
	got, err := ToNumber([]value.Value{value.String("21")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Number() != 21 {
		t.Errorf("got %v, want 21", got.Number())
	}
}
