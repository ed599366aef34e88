package value

import "math"

// Equal implements Cypher's three-valued `=`. Any Null operand yields Null
// (ok=false). Otherwise it returns the boolean result in v with ok=true.
// NaN never equals anything, including itself.
func Equal(a, b Value) (v Value, ok bool) {
	if a.IsNull() || b.IsNull() {
		return NullValue, false
	}
	return BoolValue(deepEqual(a, b)), true
}

// NotEqual implements Cypher's `<>`: Null in, Null out; otherwise negation
// of Equal.
func NotEqual(a, b Value) (v Value, ok bool) {
	eq, ok := Equal(a, b)
	if !ok {
		return NullValue, false
	}
	return BoolValue(!eq.B), true
}

func deepEqual(a, b Value) bool {
	if a.Kind == Float && math.IsNaN(a.F) {
		return false
	}
	if b.Kind == Float && math.IsNaN(b.F) {
		return false
	}
	// Numeric cross-kind equality: 1 = 1.0 is true in Cypher.
	if isNumeric(a.Kind) && isNumeric(b.Kind) {
		return numericEqual(a, b)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Bool:
		return a.B == b.B
	case String:
		return a.S == b.S
	case List:
		if len(a.L) != len(b.L) {
			return false
		}
		for i := range a.L {
			if !deepEqual(a.L[i], b.L[i]) {
				return false
			}
		}
		return true
	case Map:
		ak, bk := a.M.Keys(), b.M.Keys()
		if len(ak) != len(bk) {
			return false
		}
		for _, k := range ak {
			av, _ := a.M.Get(k)
			bv, ok := b.M.Get(k)
			if !ok || !deepEqual(av, bv) {
				return false
			}
		}
		return true
	case Date, Time, DateTime:
		return a.T.Equal(b.T)
	case Duration:
		return a.Dur == b.Dur
	case Point:
		return a.Pt == b.Pt
	case Distance:
		return a.F == b.F
	case Node:
		return a.Nd.ID == b.Nd.ID
	case Edge:
		return a.Ed.ID == b.Ed.ID
	case Path:
		if len(a.Pa.Edges) != len(b.Pa.Edges) {
			return false
		}
		for i := range a.Pa.Edges {
			if a.Pa.Edges[i].ID != b.Pa.Edges[i].ID {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isNumeric(k Kind) bool { return k == Int || k == Float }

func numericEqual(a, b Value) bool {
	if a.Kind == Int && b.Kind == Int {
		return a.I == b.I
	}
	af, bf := asFloat(a), asFloat(b)
	if math.IsNaN(af) || math.IsNaN(bf) {
		return false
	}
	return af == bf
}

func asFloat(v Value) float64 {
	if v.Kind == Int {
		return float64(v.I)
	}
	return v.F
}

// Compare orders a and b within a single kind. ok is false when either
// operand is Null (caller should propagate Null) or when the kinds don't
// match (caller should treat this as "false", per spec §3.1).
func Compare(a, b Value) (cmp int, ok bool) {
	if a.IsNull() || b.IsNull() {
		return 0, false
	}
	if isNumeric(a.Kind) && isNumeric(b.Kind) {
		af, bf := asFloat(a), asFloat(b)
		if math.IsNaN(af) || math.IsNaN(bf) {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	if a.Kind != b.Kind {
		return 0, false
	}
	switch a.Kind {
	case String:
		return stringsCompare(a.S, b.S), true
	case Bool:
		if a.B == b.B {
			return 0, true
		}
		if !a.B && b.B {
			return -1, true
		}
		return 1, true
	case Date, Time, DateTime:
		switch {
		case a.T.Before(b.T):
			return -1, true
		case a.T.After(b.T):
			return 1, true
		default:
			return 0, true
		}
	case Distance:
		switch {
		case a.F < b.F:
			return -1, true
		case a.F > b.F:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

func stringsCompare(a, b string) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Truth evaluates a boolean-typed Value for WHERE/AND/OR purposes. Null and
// any non-Bool value are "not satisfied".
func Truth(v Value) bool {
	return v.Kind == Bool && v.B
}

// IsNullish reports whether v is the Null value (helper for callers that
// only need to special-case absorption).
func IsNullish(v Value) bool { return v.IsNull() }
