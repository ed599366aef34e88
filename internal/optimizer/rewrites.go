package optimizer

import (
	"sort"

	"github.com/cypherdb/cypherdb/internal/ast"
	"github.com/cypherdb/cypherdb/internal/plan"
	"github.com/cypherdb/cypherdb/internal/stats"
)

// scanStrategySelection picks a cheaper access path for a Filter sitting
// directly atop a scan leaf (spec §4.4 scan-strategy selection): an exact
// `ID(var) = expr` conjunct becomes a NodeByIDSeek regardless of what else
// the scan carries, and otherwise an AllNodesScan with one or more
// `_HASLABEL` conjuncts (multi-label node patterns, which buildPath never
// turns into a LabelScan on their own) is rewritten into a LabelScan on
// whichever label stats estimates as the smallest, leaving any remaining
// conjuncts as a residual Filter.
func scanStrategySelection(op plan.Op, s *stats.Snapshot) (plan.Op, bool) {
	f, ok := op.(*plan.Filter)
	if !ok {
		return op, false
	}
	var scanVar string
	switch n := f.Kids[0].(type) {
	case *plan.AllNodesScan:
		scanVar = n.Var
	case *plan.LabelScan:
		scanVar = n.Var
	default:
		return op, false
	}
	clauses := splitConjunction(f.Predicate)

	for i, clause := range clauses {
		if val, ok := idSeekValue(clause, scanVar); ok {
			seek := &plan.NodeByIDSeek{Base: plan.NewLeaf(), Var: scanVar, ID: val}
			return filterOverRest(seek, clauses, i), true
		}
	}

	if s == nil {
		return op, false
	}
	if _, ok := f.Kids[0].(*plan.AllNodesScan); !ok {
		return op, false
	}
	bestIdx := -1
	var bestLabel string
	var bestCard float64
	for i, clause := range clauses {
		label, ok := hasLabelOn(clause, scanVar)
		if !ok {
			continue
		}
		card := s.EstimateScanCardinality(label)
		if bestIdx == -1 || card < bestCard {
			bestIdx, bestLabel, bestCard = i, label, card
		}
	}
	if bestIdx == -1 {
		return op, false
	}
	labelScan := &plan.LabelScan{Base: plan.NewLeaf(), Var: scanVar, Label: bestLabel}
	return filterOverRest(labelScan, clauses, bestIdx), true
}

// filterOverRest wraps scan in a Filter over clauses with the element at
// idx removed, or returns scan bare when idx was the only conjunct.
func filterOverRest(scan plan.Op, clauses []ast.Expr, idx int) plan.Op {
	rest := append(append([]ast.Expr{}, clauses[:idx]...), clauses[idx+1:]...)
	if len(rest) == 0 {
		return scan
	}
	return &plan.Filter{Base: plan.NewUnary(scan), Predicate: joinConjunction(rest)}
}

func idCallOn(e ast.Expr, varName string) bool {
	fc, ok := e.(*ast.FunctionCall)
	if !ok || fc.Name != "ID" || len(fc.Args) != 1 {
		return false
	}
	v, ok := fc.Args[0].(*ast.Variable)
	return ok && v.Name == varName
}

// idSeekValue reports whether clause is `ID(varName) = expr` (in either
// operand order), returning the id-valued side.
func idSeekValue(clause ast.Expr, varName string) (ast.Expr, bool) {
	bop, ok := clause.(*ast.BinaryOp)
	if !ok || bop.Op != "=" {
		return nil, false
	}
	switch {
	case idCallOn(bop.Left, varName):
		return bop.Right, true
	case idCallOn(bop.Right, varName):
		return bop.Left, true
	}
	return nil, false
}

// hasLabelOn reports whether clause is `_HASLABEL(varName, "Label")`, the
// shape propsPredicate emits for every node label constraint.
func hasLabelOn(clause ast.Expr, varName string) (string, bool) {
	fc, ok := clause.(*ast.FunctionCall)
	if !ok || fc.Name != "_HASLABEL" || len(fc.Args) != 2 {
		return "", false
	}
	v, ok := fc.Args[0].(*ast.Variable)
	if !ok || v.Name != varName {
		return "", false
	}
	lit, ok := fc.Args[1].(*ast.Literal)
	if !ok || lit.Kind != ast.LitString {
		return "", false
	}
	return lit.S, true
}

// pushdownFilterPastExpand moves a Filter's clauses that only reference
// variables bound before an Expand down past it, so they run once per
// pre-expansion row instead of once per expanded row (spec §4.4 predicate
// pushdown, broadened past pushdownFilter's CartesianProduct-only case).
// OptionalExpand is excluded by the type assertion below: it is never a
// *plan.Expand (spec: never reorder past an OPTIONAL boundary).
func pushdownFilterPastExpand(op plan.Op, s *stats.Snapshot) (plan.Op, bool) {
	f, ok := op.(*plan.Filter)
	if !ok {
		return op, false
	}
	exp, ok := f.Kids[0].(*plan.Expand)
	if !ok {
		return op, false
	}
	below := exp.Kids[0]
	belowVars := boundVars(below)
	clauses := splitConjunction(f.Predicate)
	var pushable, remaining []ast.Expr
	for _, c := range clauses {
		if subsetOf(exprVars(c), belowVars) {
			pushable = append(pushable, c)
		} else {
			remaining = append(remaining, c)
		}
	}
	if len(pushable) == 0 {
		return op, false
	}
	newBelow := &plan.Filter{Base: plan.NewUnary(below), Predicate: joinConjunction(pushable)}
	newExpand := &plan.Expand{
		Base: plan.NewUnary(newBelow), From: exp.From, RelVar: exp.RelVar, ToVar: exp.ToVar,
		Types: exp.Types, Direction: exp.Direction, MinHops: exp.MinHops, MaxHops: exp.MaxHops,
	}
	if len(remaining) == 0 {
		return newExpand, true
	}
	return &plan.Filter{Base: plan.NewUnary(newExpand), Predicate: joinConjunction(remaining)}, true
}

// flattenLeftDeepCartesian collects the leaves of a left-deep
// CartesianProduct chain, the shape combine() builds when a query has more
// than two disconnected pattern parts.
func flattenLeftDeepCartesian(op plan.Op) []plan.Op {
	cp, ok := op.(*plan.CartesianProduct)
	if !ok {
		return []plan.Op{op}
	}
	return append(flattenLeftDeepCartesian(cp.Kids[0]), cp.Kids[1])
}

func rebuildLeftDeepCartesian(leaves []plan.Op) plan.Op {
	result := leaves[0]
	for _, leaf := range leaves[1:] {
		result = &plan.CartesianProduct{Base: plan.NewBinary(result, leaf)}
	}
	return result
}

// reorderCartesianChain generalizes reorderCartesian's operand swap to a
// chain of three or more disconnected parts, sorting leaves by estimated
// cardinality (stable, so equally-estimated leaves keep source order) —
// spec §4.4's join reordering for "a chain of Expands and scans". Chains of
// two leaves are left to reorderCartesian.
func reorderCartesianChain(op plan.Op, s *stats.Snapshot) (plan.Op, bool) {
	if s == nil {
		return op, false
	}
	cp, ok := op.(*plan.CartesianProduct)
	if !ok {
		return op, false
	}
	leaves := flattenLeftDeepCartesian(cp)
	if len(leaves) < 3 {
		return op, false
	}
	cards := make([]float64, len(leaves))
	for i, l := range leaves {
		cards[i] = estimateCardinality(l, s)
	}
	order := make([]int, len(leaves))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return cards[order[i]] < cards[order[j]] })
	changed := false
	ordered := make([]plan.Op, len(leaves))
	for i, idx := range order {
		if idx != i {
			changed = true
		}
		ordered[i] = leaves[idx]
	}
	if !changed {
		return op, false
	}
	return rebuildLeftDeepCartesian(ordered), true
}

// eliminateNoOpProjection drops a Projection that neither rescopes
// (Discard), deduplicates (Distinct), nor renames/recomputes anything: every
// column is a bare identity reference to an already-bound variable, so the
// output row is exactly the input row (spec §4.4 "drop no-op projections
// whose items exactly match the input schema").
func eliminateNoOpProjection(op plan.Op, s *stats.Snapshot) (plan.Op, bool) {
	p, ok := op.(*plan.Projection)
	if !ok || p.Discard || p.Distinct || len(p.Columns) == 0 {
		return op, false
	}
	for _, c := range p.Columns {
		v, ok := c.Expr.(*ast.Variable)
		if !ok || v.Name != c.Alias {
			return op, false
		}
	}
	return p.Kids[0], true
}

// coalesceAdjacentFilters merges two directly-stacked Filters into one
// conjunction, so a single predicate evaluation covers both (spec §4.4
// redundant operator elimination).
func coalesceAdjacentFilters(op plan.Op, s *stats.Snapshot) (plan.Op, bool) {
	outer, ok := op.(*plan.Filter)
	if !ok {
		return op, false
	}
	inner, ok := outer.Kids[0].(*plan.Filter)
	if !ok {
		return op, false
	}
	merged := &ast.BinaryOp{Op: "AND", Left: inner.Predicate, Right: outer.Predicate}
	return &plan.Filter{Base: plan.NewUnary(inner.Kids[0]), Predicate: merged}, true
}

// distinctAboveAggregation drops a DISTINCT Projection sitting directly
// atop an Aggregation when its columns are exactly passthroughColumns of
// the Aggregation's own output — the only shape the planner ever produces
// for `RETURN DISTINCT` over an aggregate (planProjection). An Aggregation
// already emits at most one row per distinct combination of its IsGroup
// columns, and this Projection's columns are an unconditional 1:1
// passthrough of every Aggregation column (group and aggregate alike), so
// the wrapping DISTINCT can never remove a row the Aggregation didn't
// already collapse (spec §4.4 "move DISTINCT above aggregations that
// already produce distinct groups").
func distinctAboveAggregation(op plan.Op, s *stats.Snapshot) (plan.Op, bool) {
	p, ok := op.(*plan.Projection)
	if !ok || !p.Distinct {
		return op, false
	}
	agg, ok := p.Kids[0].(*plan.Aggregation)
	if !ok || len(p.Columns) != len(agg.Columns) {
		return op, false
	}
	for i, c := range p.Columns {
		v, ok := c.Expr.(*ast.Variable)
		if !ok || v.Name != agg.Columns[i].Alias || c.Alias != agg.Columns[i].Alias {
			return op, false
		}
	}
	newP := *p
	newP.Distinct = false
	return &newP, true
}
