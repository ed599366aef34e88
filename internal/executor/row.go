// Package executor implements the pull-iterator execution model: one
// Open/Next/Close iterator per logical plan.Op, streaming row bindings
// bottom-up (spec §4.6), grounded on the teacher's query.Query.Execute(ctx,
// g) contract (internal/query/query.go) generalized from "one query, one
// shot, one Result" into a composable per-operator iterator tree.
package executor

import "github.com/cypherdb/cypherdb/internal/value"

// Row is one stream of variable bindings flowing through the operator
// tree. Nil entries are never stored; an unbound variable is simply
// absent from the map (callers treat a missing key as Null).
type Row map[string]value.Value

// Clone returns an independent copy so operators that must branch (Expand
// fanning one input row into many, CartesianProduct) never alias a
// shared row.
func (r Row) Clone() Row {
	out := make(Row, len(r)+2)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Get returns a bound variable's value, or Null if unbound.
func (r Row) Get(name string) value.Value {
	if v, ok := r[name]; ok {
		return v
	}
	return value.NullValue
}

// Merge returns a new row combining r with other; other's keys win on
// conflict (used by the cartesian product and the value hash join to
// combine a left row with a right row).
func (r Row) Merge(other Row) Row {
	out := r.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}
