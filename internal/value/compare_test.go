package value

import (
	"math"
	"testing"
)

func TestEqualNullPropagates(t *testing.T) {
	_, ok := Equal(NullValue, IntValue(1))
	if ok {
		t.Fatal("expected Equal(Null, 1) to be undefined (Null)")
	}
	_, ok = Equal(IntValue(1), NullValue)
	if ok {
		t.Fatal("expected Equal(1, Null) to be undefined (Null)")
	}
}

func TestEqualNumericCrossKind(t *testing.T) {
	v, ok := Equal(IntValue(1), FloatValue(1.0))
	if !ok || !v.B {
		t.Fatalf("expected 1 = 1.0 to be true, got %v ok=%v", v, ok)
	}
}

func TestEqualNaN(t *testing.T) {
	nan := FloatValue(math.NaN())
	v, ok := Equal(nan, nan)
	if !ok {
		t.Fatal("NaN = NaN should be a defined (non-null) comparison")
	}
	if v.B {
		t.Fatal("NaN should never equal itself")
	}
}

func TestCompareMismatchedKindIsFalse(t *testing.T) {
	_, ok := Compare(StringValue("a"), BoolValue(true))
	if ok {
		t.Fatal("cross-kind ordering should be undefined (caller renders false)")
	}
}

func TestCompareNullUndefined(t *testing.T) {
	_, ok := Compare(NullValue, IntValue(1))
	if ok {
		t.Fatal("Null comparisons should be undefined so callers can propagate Null")
	}
}

func TestTruth(t *testing.T) {
	if Truth(NullValue) {
		t.Fatal("Null should not be truthy")
	}
	if Truth(BoolValue(false)) {
		t.Fatal("false should not be truthy")
	}
	if !Truth(BoolValue(true)) {
		t.Fatal("true should be truthy")
	}
}

func TestDeepEqualLists(t *testing.T) {
	a := ListValue([]Value{IntValue(1), StringValue("x")})
	b := ListValue([]Value{IntValue(1), StringValue("x")})
	v, ok := Equal(a, b)
	if !ok || !v.B {
		t.Fatalf("expected equal lists, got %v ok=%v", v, ok)
	}
}

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", IntValue(2))
	m.Set("a", IntValue(1))
	m.Set("b", IntValue(3))
	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("expected insertion order [b a], got %v", keys)
	}
}
