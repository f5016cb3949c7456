package builtin

import (
	"testing"

	"github.com/mqlang/mq/internal/mqerr"
	"github.com/mqlang/mq/internal/value"
)

func TestTypeAndToString(t *testing.T) {
	got, err := Type([]value.Value{value.Number(1)})
	if err != nil || got.Str() != "number" {
		t.Fatalf("type: got %v, err %v", got, err)
	}
	s, err := ToString([]value.Value{value.Number(1)})
	if err != nil || s.Str() != "1" {
		t.Fatalf("to_string: got %v, err %v", s, err)
	}
}

func TestIsNoneIsEmpty(t *testing.T) {
	none, _ := IsNone([]value.Value{value.None})
	if !none.Bool() {
		t.Error("is_none(None) should be true")
	}
	notNone, _ := IsNone([]value.Value{value.Number(0)})
	if notNone.Bool() {
		t.Error("is_none(0) should be false")
	}
	emptyArr, _ := IsEmpty([]value.Value{value.ArrayNoCopy(nil)})
	if !emptyArr.Bool() {
		t.Error("is_empty([]) should be true")
	}
	emptyStr, _ := IsEmpty([]value.Value{value.String("")})
	if !emptyStr.Bool() {
		t.Error(`is_empty("") should be true`)
	}
	nonEmpty, _ := IsEmpty([]value.Value{value.String("x")})
	if nonEmpty.Bool() {
		t.Error(`is_empty("x") should be false`)
	}
}

func TestCoalesce(t *testing.T) {
	got, err := Coalesce([]value.Value{value.None, value.None, value.Number(5)})
	if err != nil || got.Number() != 5 {
		t.Fatalf("got %v, err %v", got, err)
	}
	allNone, err := Coalesce([]value.Value{value.None, value.None})
	if err != nil || !allNone.IsNone() {
		t.Fatalf("got %v, err %v", allNone, err)
	}
}

func TestAssertPassesThroughTruthy(t *testing.T) {
	got, err := Assert([]value.Value{value.Bool(true)})
	if err != nil || !got.Bool() {
		t.Fatalf("got %v, err %v", got, err)
	}
}

func TestAssertFailsOnFalsy(t *testing.T) {
	_, err := Assert([]value.Value{value.Bool(false)})
	me, ok := err.(*mqerr.Error)
	if !ok || me.Kind != mqerr.KindAssertion {
		t.Fatalf("got %v, want KindAssertion", err)
	}
}

func TestAssertZeroArgsDoesNotPanic(t *testing.T) {
	_, err := Assert(nil)
	if err == nil {
		t.Fatal("expected an arity error")
	}
}

func TestHaltIsNeverCatchable(t *testing.T) {
	_, err := Halt([]value.Value{value.String("stop")})
	me, ok := err.(*mqerr.Error)
	if !ok || me.Kind != mqerr.KindHalt {
		t.Fatalf("got %v, want KindHalt", err)
	}
	if me.Catchable() {
		t.Error("halt should never be catchable")
	}
}

func TestErrorBuiltinIsCatchable(t *testing.T) {
	_, err := Error([]value.Value{value.String("boom")})
	me, ok := err.(*mqerr.Error)
	if !ok {
		t.Fatalf("got %v, want *mqerr.Error", err)
	}
	if !me.Catchable() {
		t.Error("error() should be catchable")
	}
}

func TestFromDateToDateRoundTrip(t *testing.T) {
	ts, err := FromDate([]value.Value{value.String("2020-01-01T00:00:00Z")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := ToDate([]value.Value{ts})
	if err != nil || back.Str() != "2020-01-01T00:00:00Z" {
		t.Fatalf("got %v, err %v", back, err)
	}
}

func TestAllSymbolsWithoutListerIsEmptyArray(t *testing.T) {
	prev := AllSymbolsLister
	AllSymbolsLister = nil
	defer func() { AllSymbolsLister = prev }()

	got, err := AllSymbols(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind() != value.KindArray || len(got.Array()) != 0 {
		t.Errorf("got %v, want empty array", got)
	}
}

func TestAllSymbolsUsesLister(t *testing.T) {
	prev := AllSymbolsLister
	AllSymbolsLister = func() []string { return []string{"add", "sub"} }
	defer func() { AllSymbolsLister = prev }()

	got, err := AllSymbols(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Array()) != 2 || got.Array()[0].Str() != "add" {
		t.Errorf("got %v", got)
	}
}
