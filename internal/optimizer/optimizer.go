// Package optimizer rewrites a logical plan.Op tree into an equivalent,
// cheaper one: predicate pushdown, cartesian-to-join conversion, cost-based
// join-side ordering, and dead-operator elimination, grounded on
// original_source's graphforge.optimizer (QueryOptimizer/PredicateAnalysis)
// and reshaped into the idiomatic Go form of a fixed-point rule list over an
// immutable tree (spec §4.4).
package optimizer

import (
	"github.com/cypherdb/cypherdb/internal/ast"
	"github.com/cypherdb/cypherdb/internal/plan"
	"github.com/cypherdb/cypherdb/internal/stats"
)

// rule rewrites one plan node (after its children have already been
// rewritten), returning the replacement and whether it changed anything.
type rule func(op plan.Op, s *stats.Snapshot) (plan.Op, bool)

var rules = []rule{
	eliminateTrivialFilter,
	coalesceAdjacentFilters,
	pushdownFilter,
	pushdownFilterPastExpand,
	scanStrategySelection,
	cartesianToHashJoin,
	reorderCartesian,
	reorderCartesianChain,
	eliminateNoOpProjection,
	distinctAboveAggregation,
}

// Optimize rewrites op to a fixed point: every rule is applied bottom-up,
// repeating the whole pass list until none of them change the tree, or
// maxPasses is hit as a backstop against a pathological rewrite cycle.
func Optimize(op plan.Op, s *stats.Snapshot) plan.Op {
	const maxPasses = 8
	for i := 0; i < maxPasses; i++ {
		rewritten, changed := applyOnce(op, s)
		op = rewritten
		if !changed {
			break
		}
	}
	return op
}

func applyOnce(op plan.Op, s *stats.Snapshot) (plan.Op, bool) {
	if op == nil {
		return nil, false
	}
	changed := false
	kids := op.Children()
	newKids := make([]plan.Op, len(kids))
	for i, k := range kids {
		rk, c := applyOnce(k, s)
		newKids[i] = rk
		changed = changed || c
	}
	op = withChildren(op, newKids)

	for _, r := range rules {
		next, c := r(op, s)
		if c {
			op = next
			changed = true
		}
	}
	return op, changed
}

// withChildren rebuilds op with newKids as its children, preserving every
// other field. Every operator embeds plan.Base as its first field, which
// is the only thing a rewrite rule ever needs to replace wholesale.
func withChildren(op plan.Op, newKids []plan.Op) plan.Op {
	switch n := op.(type) {
	case *plan.AllNodesScan, *plan.LabelScan, *plan.NodeByIDSeek:
		return op // leaves: no children to rewrite
	case *plan.Expand:
		n.Kids = newKids
		return n
	case *plan.OptionalExpand:
		n.Kids = newKids
		n.Expand.Kids = newKids
		return n
	case *plan.OptionalScan:
		n.Kids = newKids
		return n
	case *plan.Filter:
		n.Kids = newKids
		return n
	case *plan.Projection:
		n.Kids = newKids
		return n
	case *plan.Aggregation:
		n.Kids = newKids
		return n
	case *plan.Sort:
		n.Kids = newKids
		return n
	case *plan.Skip:
		n.Kids = newKids
		return n
	case *plan.Limit:
		n.Kids = newKids
		return n
	case *plan.Unwind:
		n.Kids = newKids
		return n
	case *plan.Create:
		n.Kids = newKids
		return n
	case *plan.Merge:
		n.Kids = newKids
		return n
	case *plan.SetOp:
		n.Kids = newKids
		return n
	case *plan.RemoveOp:
		n.Kids = newKids
		return n
	case *plan.DeleteOp:
		n.Kids = newKids
		return n
	case *plan.CartesianProduct:
		n.Kids = newKids
		return n
	case *plan.ValueHashJoin:
		n.Kids = newKids
		return n
	default:
		return op
	}
}

// eliminateTrivialFilter drops a Filter whose predicate is the literal
// `true`, a no-op the planner never emits directly but that other rules
// (pushdownFilter splitting a conjunction) can leave behind.
func eliminateTrivialFilter(op plan.Op, s *stats.Snapshot) (plan.Op, bool) {
	f, ok := op.(*plan.Filter)
	if !ok {
		return op, false
	}
	if lit, ok := f.Predicate.(*ast.Literal); ok && lit.Kind == ast.LitBool && lit.B {
		return f.Kids[0], true
	}
	return op, false
}

// pushdownFilter moves a Filter below a CartesianProduct when its
// predicate only references variables bound on one side, so the
// predicate runs before rows pair up instead of after — the single
// highest-value rewrite for disconnected multi-MATCH patterns.
func pushdownFilter(op plan.Op, s *stats.Snapshot) (plan.Op, bool) {
	f, ok := op.(*plan.Filter)
	if !ok {
		return op, false
	}
	cp, ok := f.Kids[0].(*plan.CartesianProduct)
	if !ok {
		return op, false
	}
	left, right := cp.Kids[0], cp.Kids[1]
	leftVars, rightVars := boundVars(left), boundVars(right)
	clauses := splitConjunction(f.Predicate)
	var remaining []ast.Expr
	pushedLeft, pushedRight := false, false
	for _, clause := range clauses {
		refs := exprVars(clause)
		switch {
		case subsetOf(refs, leftVars):
			left = &plan.Filter{Base: plan.NewUnary(left), Predicate: clause}
			pushedLeft = true
		case subsetOf(refs, rightVars):
			right = &plan.Filter{Base: plan.NewUnary(right), Predicate: clause}
			pushedRight = true
		default:
			remaining = append(remaining, clause)
		}
	}
	if !pushedLeft && !pushedRight {
		return op, false
	}
	newCP := &plan.CartesianProduct{Base: plan.NewBinary(left, right)}
	if len(remaining) == 0 {
		return newCP, true
	}
	return &plan.Filter{Base: plan.NewUnary(newCP), Predicate: joinConjunction(remaining)}, true
}

// cartesianToHashJoin replaces a CartesianProduct immediately followed by
// an equality Filter between a left-only and a right-only expression with
// a ValueHashJoin — the optimizer's join-recognition step (spec §4.4).
func cartesianToHashJoin(op plan.Op, s *stats.Snapshot) (plan.Op, bool) {
	f, ok := op.(*plan.Filter)
	if !ok {
		return op, false
	}
	cp, ok := f.Kids[0].(*plan.CartesianProduct)
	if !ok {
		return op, false
	}
	left, right := cp.Kids[0], cp.Kids[1]
	leftVars, rightVars := boundVars(left), boundVars(right)
	clauses := splitConjunction(f.Predicate)
	for i, clause := range clauses {
		bop, ok := clause.(*ast.BinaryOp)
		if !ok || bop.Op != "=" {
			continue
		}
		lRefs, rRefs := exprVars(bop.Left), exprVars(bop.Right)
		var leftKey, rightKey ast.Expr
		switch {
		case subsetOf(lRefs, leftVars) && subsetOf(rRefs, rightVars):
			leftKey, rightKey = bop.Left, bop.Right
		case subsetOf(rRefs, leftVars) && subsetOf(lRefs, rightVars):
			leftKey, rightKey = bop.Right, bop.Left
		default:
			continue
		}
		join := &plan.ValueHashJoin{Base: plan.NewBinary(left, right), LeftKey: leftKey, RightKey: rightKey}
		rest := append(append([]ast.Expr{}, clauses[:i]...), clauses[i+1:]...)
		if len(rest) == 0 {
			return join, true
		}
		return &plan.Filter{Base: plan.NewUnary(join), Predicate: joinConjunction(rest)}, true
	}
	return op, false
}

// reorderCartesian swaps a CartesianProduct's operands so the
// lower-estimated-cardinality side is built first (the right/"probe-table"
// side in cartesianIter), bounding the materialized row count when
// statistics are available.
func reorderCartesian(op plan.Op, s *stats.Snapshot) (plan.Op, bool) {
	if s == nil {
		return op, false
	}
	cp, ok := op.(*plan.CartesianProduct)
	if !ok {
		return op, false
	}
	left, right := cp.Kids[0], cp.Kids[1]
	// A chain of three or more disconnected parts is reorderCartesianChain's
	// job exclusively: touching it here too would have the two rules fight
	// over ordering across passes (binary swap vs. whole-chain sort).
	if _, ok := left.(*plan.CartesianProduct); ok {
		return op, false
	}
	if estimateCardinality(left, s) <= estimateCardinality(right, s) {
		return op, false
	}
	return &plan.CartesianProduct{Base: plan.NewBinary(right, left)}, true
}

func estimateCardinality(op plan.Op, s *stats.Snapshot) float64 {
	switch n := op.(type) {
	case *plan.AllNodesScan:
		return s.EstimateScanCardinality("")
	case *plan.LabelScan:
		return s.EstimateScanCardinality(n.Label)
	case *plan.NodeByIDSeek:
		return 1
	case *plan.Expand:
		relType := ""
		if len(n.Types) == 1 {
			relType = n.Types[0]
		}
		return s.EstimateExpandCardinality(estimateCardinality(n.Kids[0], s), relType)
	case *plan.OptionalExpand:
		return estimateCardinality(&n.Expand, s)
	case *plan.Filter:
		isEq := false
		if bop, ok := n.Predicate.(*ast.BinaryOp); ok && bop.Op == "=" {
			isEq = true
		}
		return estimateCardinality(n.Kids[0], s) * stats.EstimateFilterSelectivity(isEq)
	case *plan.CartesianProduct:
		return estimateCardinality(n.Kids[0], s) * estimateCardinality(n.Kids[1], s)
	case *plan.ValueHashJoin:
		l, r := estimateCardinality(n.Kids[0], s), estimateCardinality(n.Kids[1], s)
		if l < r {
			return l
		}
		return r
	default:
		if len(op.Children()) == 1 {
			return estimateCardinality(op.Children()[0], s)
		}
		return 1
	}
}
