// Package planner turns a parsed ast.Query into a logical plan.Op tree,
// validating variable types clause-by-clause as it goes (spec §4.2),
// grounded on original_source's graphforge.planner.types.TypeContext:
// here reimplemented as a value type copied at branch points instead of a
// mutated shared dict, which is the idiomatic Go shape for the same
// "copy-on-branch" scoping rule OPTIONAL MATCH and UNION need.
package planner

import (
	"maps"

	"github.com/cypherdb/cypherdb/internal/cerr"
)

// VarType is the set of runtime shapes a bound query variable may take,
// as established by the pattern or expression that first introduces it.
type VarType int

const (
	TypeUnknown VarType = iota
	TypeNode
	TypeRelationship
	TypePath
	TypeScalar
	TypeList
	TypeMap
)

func (t VarType) String() string {
	switch t {
	case TypeNode:
		return "Node"
	case TypeRelationship:
		return "Relationship"
	case TypePath:
		return "Path"
	case TypeScalar:
		return "Scalar"
	case TypeList:
		return "List"
	case TypeMap:
		return "Map"
	default:
		return "Unknown"
	}
}

// TypeContext tracks every variable bound so far in a query and its type,
// so the planner can reject `MATCH (n)-[n]->(m)` (n reused as both a node
// and a relationship) before ever touching the store.
type TypeContext struct {
	vars map[string]VarType
}

// NewTypeContext returns an empty context.
func NewTypeContext() *TypeContext {
	return &TypeContext{vars: make(map[string]VarType)}
}

// Copy returns an independent snapshot, used when planning a branch (an
// OPTIONAL MATCH's inner pattern, a subquery) that must not leak new
// bindings back into the outer scope on failure.
func (tc *TypeContext) Copy() *TypeContext {
	return &TypeContext{vars: maps.Clone(tc.vars)}
}

// GetType reports the type of a previously bound variable.
func (tc *TypeContext) GetType(name string) (VarType, bool) {
	t, ok := tc.vars[name]
	return t, ok
}

// BindVariable introduces name with the given type, or validates that an
// existing binding is compatible (spec: reusing a variable is only valid
// if every occurrence agrees on type).
func (tc *TypeContext) BindVariable(name string, t VarType) error {
	if name == "" {
		return nil
	}
	existing, ok := tc.vars[name]
	if !ok {
		tc.vars[name] = t
		return nil
	}
	return tc.ValidateCompatible(name, existing, t)
}

// ValidateCompatible reports a VariableTypeConflict if want != have.
func (tc *TypeContext) ValidateCompatible(name string, have, want VarType) error {
	if have == want || have == TypeUnknown || want == TypeUnknown {
		return nil
	}
	return cerr.New(cerr.KindVariableTypeConflict,
		"variable %q already bound as %s, cannot reuse as %s", name, have, want)
}

// Forget removes a variable, used when a WITH/RETURN projection narrows
// scope and the old name is about to be reintroduced as an alias.
func (tc *TypeContext) Forget(name string) { delete(tc.vars, name) }

// Reset clears every binding, used when a WITH clause without `*`
// re-scopes the whole query to only its projected items.
func (tc *TypeContext) Reset() { tc.vars = make(map[string]VarType) }

// Names returns every currently bound variable name.
func (tc *TypeContext) Names() []string {
	out := make([]string, 0, len(tc.vars))
	for n := range tc.vars {
		out = append(out, n)
	}
	return out
}
