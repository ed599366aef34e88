package planner

import (
	"github.com/cypherdb/cypherdb/internal/ast"
	"github.com/cypherdb/cypherdb/internal/cerr"
	"github.com/cypherdb/cypherdb/internal/plan"
)

// Planner compiles an ast.Query into a logical plan.Op tree, threading a
// TypeContext through the clause sequence so `MATCH (n)-[n]->(m)`-style
// variable reuse conflicts surface before the optimizer or executor ever
// see the query (spec §4.2).
type Planner struct {
	tc *TypeContext
}

// New returns a Planner with a fresh, empty TypeContext.
func New() *Planner { return &Planner{tc: NewTypeContext()} }

// Plan compiles q into a logical plan rooted at the final clause.
func (p *Planner) Plan(q *ast.Query) (plan.Op, error) {
	var current plan.Op
	for _, c := range q.Clauses {
		var err error
		current, err = p.planClause(current, c)
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

// TypeContext exposes the planner's current variable bindings, used by
// the embedding layer to validate RETURN column names against it.
func (p *Planner) TypeContext() *TypeContext { return p.tc }

func (p *Planner) planClause(current plan.Op, c ast.Clause) (plan.Op, error) {
	switch clause := c.(type) {
	case *ast.MatchClause:
		return p.planMatch(current, clause)
	case *ast.UnwindClause:
		return p.planUnwind(current, clause)
	case *ast.CreateClause:
		return p.planCreate(current, clause)
	case *ast.MergeClause:
		return p.planMerge(current, clause)
	case *ast.SetClause:
		return &plan.SetOp{Base: unaryBase(current), Items: clause.Items}, nil
	case *ast.RemoveClause:
		return &plan.RemoveOp{Base: unaryBase(current), Items: clause.Items}, nil
	case *ast.DeleteClause:
		return &plan.DeleteOp{Base: unaryBase(current), Variables: clause.Variables, Detach: clause.Detach}, nil
	case *ast.WithClause:
		return p.planWith(current, clause)
	case *ast.ReturnClause:
		return p.planReturn(current, clause)
	default:
		return nil, cerr.New(cerr.KindInternalError, "planner: unhandled clause %T", c)
	}
}

func unaryBase(input plan.Op) plan.Base {
	if input == nil {
		return plan.Base{}
	}
	return plan.Base{Kids: []plan.Op{input}}
}

func combine(current, next plan.Op) plan.Op {
	if current == nil {
		return next
	}
	return &plan.CartesianProduct{Base: plan.NewBinary(current, next)}
}

func (p *Planner) planMatch(current plan.Op, m *ast.MatchClause) (plan.Op, error) {
	var freshPlan plan.Op
	var freshVars []string
	for _, path := range m.Patterns {
		head := path.Elements[0].Node
		if current != nil && head.Variable != "" {
			if _, bound := p.tc.GetType(head.Variable); bound {
				// The first node is already bound by an earlier pattern/clause:
				// thread the hops onto the existing row stream instead of
				// rescanning and cartesian-joining (also one of the two cases
				// this planner lowers OPTIONAL MATCH's outer-join semantics
				// into genuine null-padding — see doc comment on extendPath).
				next, err := p.extendPath(current, path, m.Optional)
				if err != nil {
					return nil, err
				}
				current = next
				continue
			}
		}
		pathPlan, err := p.buildPath(path, m.Optional)
		if err != nil {
			return nil, err
		}
		freshPlan = combine(freshPlan, pathPlan)
		freshVars = append(freshVars, pathVars(path)...)
	}
	if freshPlan == nil {
		if m.Where != nil {
			current = &plan.Filter{Base: plan.NewUnary(current), Predicate: m.Where}
		}
		return current, nil
	}
	if !m.Optional {
		current = combine(current, freshPlan)
		if m.Where != nil {
			current = &plan.Filter{Base: plan.NewUnary(current), Predicate: m.Where}
		}
		return current, nil
	}
	// A standalone OPTIONAL MATCH (head variable not already bound by an
	// earlier clause) needs its own Null-padding: wrap the fresh scan in
	// OptionalScan so it contributes exactly one row, with every variable
	// it introduces bound to Null, when the pattern (and its own WHERE,
	// evaluated before padding, not after) matches nothing. Without this,
	// combining it into current via a plain CartesianProduct would silently
	// drop current's rows instead of padding them (spec: OptionalExpand's
	// "emits a single row bound to Null" contract applies to the head scan
	// too, not just later hops).
	if m.Where != nil {
		freshPlan = &plan.Filter{Base: plan.NewUnary(freshPlan), Predicate: m.Where}
	}
	freshPlan = &plan.OptionalScan{Base: plan.NewUnary(freshPlan), Vars: freshVars}
	return combine(current, freshPlan), nil
}

// pathVars lists every variable a pattern path introduces, in source
// order, for OptionalScan's Null-padding row.
func pathVars(path *ast.PatternPath) []string {
	var vars []string
	for _, el := range path.Elements {
		switch {
		case el.Node != nil && el.Node.Variable != "":
			vars = append(vars, el.Node.Variable)
		case el.Rel != nil && el.Rel.Variable != "":
			vars = append(vars, el.Rel.Variable)
		}
	}
	return vars
}

// extendPath walks path's relationship hops starting from an
// already-bound head variable, appending Expand (or OptionalExpand, for
// OPTIONAL MATCH) operators directly onto current rather than scanning a
// fresh copy of the head node. An OPTIONAL MATCH whose head variable is
// new to the query instead goes through buildPath and is wrapped in a
// plan.OptionalScan by planMatch, so both shapes get genuine outer-join
// semantics.
func (p *Planner) extendPath(current plan.Op, path *ast.PatternPath, optional bool) (plan.Op, error) {
	head := path.Elements[0].Node
	fromVar := head.Variable
	for i := 1; i+1 < len(path.Elements); i += 2 {
		rel := path.Elements[i].Rel
		node := path.Elements[i+1].Node
		if err := p.tc.BindVariable(rel.Variable, TypeRelationship); err != nil {
			return nil, err
		}
		if err := p.tc.BindVariable(node.Variable, TypeNode); err != nil {
			return nil, err
		}
		minHops, maxHops := 1, 1
		if rel.Length != nil {
			minHops, maxHops = rel.Length.Min, rel.Length.Max
		}
		base := plan.Expand{
			Base:      plan.NewUnary(current),
			From:      fromVar,
			RelVar:    rel.Variable,
			ToVar:     node.Variable,
			Types:     rel.Types,
			Direction: rel.Direction,
			MinHops:   minHops,
			MaxHops:   maxHops,
		}
		var step plan.Op
		if optional {
			step = &plan.OptionalExpand{Base: base.Base, Expand: base}
		} else {
			step = &base
		}
		current = step
		if len(node.Props) > 0 || len(rel.Props) > 0 {
			pred := mergePredicates(
				propsPredicate(node.Variable, node.Labels, node.Props),
				propsPredicate(rel.Variable, nil, rel.Props),
			)
			if pred != nil {
				current = &plan.Filter{Base: plan.NewUnary(current), Predicate: pred}
			}
		}
		fromVar = node.Variable
	}
	return current, nil
}

// buildPath lowers one pattern path into a scan (for the first node) chained
// with Expand/OptionalExpand operators for each subsequent hop.
func (p *Planner) buildPath(path *ast.PatternPath, optional bool) (plan.Op, error) {
	if len(path.Elements) == 0 {
		return nil, cerr.New(cerr.KindSyntaxError, "empty pattern path")
	}
	head := path.Elements[0].Node
	if err := p.tc.BindVariable(head.Variable, TypeNode); err != nil {
		return nil, err
	}

	var scan plan.Op
	switch {
	case len(head.Labels) == 1:
		scan = &plan.LabelScan{Base: plan.NewLeaf(), Var: head.Variable, Label: head.Labels[0]}
	default:
		scan = &plan.AllNodesScan{Base: plan.NewLeaf(), Var: head.Variable}
	}
	if len(head.Props) > 0 || len(head.Labels) > 1 {
		scan = &plan.Filter{Base: plan.NewUnary(scan), Predicate: propsPredicate(head.Variable, head.Labels, head.Props)}
	}

	fromVar := head.Variable
	current := scan
	for i := 1; i+1 < len(path.Elements); i += 2 {
		rel := path.Elements[i].Rel
		node := path.Elements[i+1].Node
		if err := p.tc.BindVariable(rel.Variable, TypeRelationship); err != nil {
			return nil, err
		}
		if err := p.tc.BindVariable(node.Variable, TypeNode); err != nil {
			return nil, err
		}
		minHops, maxHops := 1, 1
		if rel.Length != nil {
			minHops, maxHops = rel.Length.Min, rel.Length.Max
		}
		base := plan.Expand{
			Base:      plan.NewUnary(current),
			From:      fromVar,
			RelVar:    rel.Variable,
			ToVar:     node.Variable,
			Types:     rel.Types,
			Direction: rel.Direction,
			MinHops:   minHops,
			MaxHops:   maxHops,
		}
		if optional {
			current = &plan.OptionalExpand{Base: base.Base, Expand: base}
		} else {
			current = &base
		}
		if len(node.Props) > 0 || len(rel.Props) > 0 {
			pred := mergePredicates(
				propsPredicate(node.Variable, node.Labels, node.Props),
				propsPredicate(rel.Variable, nil, rel.Props),
			)
			if pred != nil {
				current = &plan.Filter{Base: plan.NewUnary(current), Predicate: pred}
			}
		}
		fromVar = node.Variable
	}
	return current, nil
}

// propsPredicate lowers a pattern's inline property/label constraints into
// an equivalent WHERE predicate, evaluated by the same Filter operator
// used for explicit WHERE clauses.
func propsPredicate(variable string, labels []string, props []ast.PropConstraint) ast.Expr {
	var pred ast.Expr
	for _, l := range labels {
		check := &ast.FunctionCall{Name: "_HASLABEL", Args: []ast.Expr{&ast.Variable{Name: variable}, &ast.Literal{Kind: ast.LitString, S: l}}}
		pred = mergePredicates(pred, check)
	}
	for _, pc := range props {
		eq := &ast.BinaryOp{
			Op:    "=",
			Left:  &ast.PropertyAccess{Target: &ast.Variable{Name: variable}, Property: pc.Key},
			Right: pc.Value,
		}
		pred = mergePredicates(pred, eq)
	}
	return pred
}

func mergePredicates(a, b ast.Expr) ast.Expr {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return &ast.BinaryOp{Op: "AND", Left: a, Right: b}
	}
}

func (p *Planner) planUnwind(current plan.Op, u *ast.UnwindClause) (plan.Op, error) {
	if err := p.tc.BindVariable(u.Alias, TypeUnknown); err != nil {
		return nil, err
	}
	return &plan.Unwind{Base: unaryBase(current), Expr: u.Expr, Alias: u.Alias}, nil
}

func (p *Planner) planCreate(current plan.Op, c *ast.CreateClause) (plan.Op, error) {
	op := &plan.Create{Base: unaryBase(current)}
	for _, path := range c.Patterns {
		if err := p.lowerCreatePath(path, op); err != nil {
			return nil, err
		}
	}
	return op, nil
}

func (p *Planner) lowerCreatePath(path *ast.PatternPath, op *plan.Create) error {
	var prevVar string
	for i, el := range path.Elements {
		switch {
		case el.Node != nil:
			if _, bound := p.tc.GetType(el.Node.Variable); !bound || el.Node.Variable == "" {
				op.Nodes = append(op.Nodes, plan.CreateNodeSpec{Var: el.Node.Variable, Labels: el.Node.Labels, Props: el.Node.Props})
			}
			if err := p.tc.BindVariable(el.Node.Variable, TypeNode); err != nil {
				return err
			}
			prevVar = el.Node.Variable
		case el.Rel != nil:
			to := path.Elements[i+1].Node
			if err := p.tc.BindVariable(el.Rel.Variable, TypeRelationship); err != nil {
				return err
			}
			relType := ""
			if len(el.Rel.Types) > 0 {
				relType = el.Rel.Types[0]
			}
			op.Rels = append(op.Rels, plan.CreateRelSpec{
				Var: el.Rel.Variable, Type: relType, FromVar: prevVar, ToVar: to.Variable,
				Direction: el.Rel.Direction, Props: el.Rel.Props,
			})
		}
	}
	return nil
}

func (p *Planner) planMerge(current plan.Op, m *ast.MergeClause) (plan.Op, error) {
	for _, el := range m.Pattern.Elements {
		if el.Node != nil {
			if err := p.tc.BindVariable(el.Node.Variable, TypeNode); err != nil {
				return nil, err
			}
		}
		if el.Rel != nil {
			if err := p.tc.BindVariable(el.Rel.Variable, TypeRelationship); err != nil {
				return nil, err
			}
		}
	}
	op := &plan.Merge{Base: unaryBase(current), Pattern: m.Pattern}
	if m.OnCreate != nil {
		op.OnCreate = m.OnCreate.Items
	}
	if m.OnMatch != nil {
		op.OnMatch = m.OnMatch.Items
	}
	return op, nil
}

func (p *Planner) planWith(current plan.Op, w *ast.WithClause) (plan.Op, error) {
	proj, err := p.planProjection(current, w.Items, w.Star, w.Distinct, true)
	if err != nil {
		return nil, err
	}
	if w.Where != nil {
		proj = &plan.Filter{Base: plan.NewUnary(proj), Predicate: w.Where}
	}
	return p.applyOrderSkipLimit(proj, w.OrderBy, w.Skip, w.Limit)
}

func (p *Planner) planReturn(current plan.Op, r *ast.ReturnClause) (plan.Op, error) {
	proj, err := p.planProjection(current, r.Items, r.Star, r.Distinct, false)
	if err != nil {
		return nil, err
	}
	return p.applyOrderSkipLimit(proj, r.OrderBy, r.Skip, r.Limit)
}

var aggregateFunctions = map[string]bool{
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true, "COLLECT": true,
}

// containsAggregate reports whether e calls an aggregate function anywhere
// in its tree (aggregates do not nest, but may appear inside e.g. an
// arithmetic expression: `count(n) + 1`).
func containsAggregate(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.FunctionCall:
		if aggregateFunctions[n.Name] {
			return true
		}
		for _, a := range n.Args {
			if containsAggregate(a) {
				return true
			}
		}
	case *ast.BinaryOp:
		return containsAggregate(n.Left) || containsAggregate(n.Right)
	case *ast.UnaryOp:
		return containsAggregate(n.Operand)
	case *ast.PropertyAccess:
		return containsAggregate(n.Target)
	case *ast.CaseExpr:
		if n.Test != nil && containsAggregate(n.Test) {
			return true
		}
		for _, alt := range n.Alternatives {
			if containsAggregate(alt.When) || containsAggregate(alt.Then) {
				return true
			}
		}
		if n.Else != nil {
			return containsAggregate(n.Else)
		}
	}
	return false
}

func (p *Planner) planProjection(current plan.Op, items []ast.ProjectionItem, star, distinct, rescope bool) (plan.Op, error) {
	var cols []plan.ProjectionColumn
	if star {
		for _, name := range p.tc.Names() {
			cols = append(cols, plan.ProjectionColumn{Expr: &ast.Variable{Name: name}, Alias: name})
		}
	}
	hasAggregate := false
	for _, it := range items {
		alias := it.Alias
		if alias == "" {
			alias = it.Expr.String()
		}
		cols = append(cols, plan.ProjectionColumn{Expr: it.Expr, Alias: alias})
		if containsAggregate(it.Expr) {
			hasAggregate = true
		}
	}

	var result plan.Op
	if hasAggregate {
		aggCols := make([]plan.AggregationColumn, len(cols))
		for i, c := range cols {
			aggCols[i] = plan.AggregationColumn{Expr: c.Expr, Alias: c.Alias, IsGroup: !containsAggregate(c.Expr)}
		}
		result = &plan.Aggregation{Base: unaryBase(current), Columns: aggCols}
		if distinct {
			result = &plan.Projection{Base: plan.NewUnary(result), Columns: passthroughColumns(cols), Discard: true, Distinct: true}
		}
	} else {
		result = &plan.Projection{Base: unaryBase(current), Columns: cols, Discard: rescope, Distinct: distinct}
	}

	if rescope {
		p.tc.Reset()
		for _, c := range cols {
			if err := p.tc.BindVariable(c.Alias, TypeUnknown); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

func passthroughColumns(cols []plan.ProjectionColumn) []plan.ProjectionColumn {
	out := make([]plan.ProjectionColumn, len(cols))
	for i, c := range cols {
		out[i] = plan.ProjectionColumn{Expr: &ast.Variable{Name: c.Alias}, Alias: c.Alias}
	}
	return out
}

func (p *Planner) applyOrderSkipLimit(current plan.Op, order []ast.OrderItem, skip, limit ast.Expr) (plan.Op, error) {
	if len(order) > 0 {
		keys := make([]plan.SortKey, len(order))
		for i, o := range order {
			keys[i] = plan.SortKey{Expr: o.Expr, Descending: o.Descending}
		}
		current = &plan.Sort{Base: plan.NewUnary(current), Keys: keys}
	}
	if skip != nil {
		current = &plan.Skip{Base: plan.NewUnary(current), Count: skip}
	}
	if limit != nil {
		current = &plan.Limit{Base: plan.NewUnary(current), Count: limit}
	}
	return current, nil
}
