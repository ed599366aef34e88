package executor

import (
	"context"

	"github.com/cypherdb/cypherdb/internal/ast"
	"github.com/cypherdb/cypherdb/internal/cerr"
	"github.com/cypherdb/cypherdb/internal/graph"
	"github.com/cypherdb/cypherdb/internal/plan"
	"github.com/cypherdb/cypherdb/internal/value"
)

// ---- Create ----

type createIter struct {
	input Iterator
	nodes []plan.CreateNodeSpec
	rels  []plan.CreateRelSpec
	g     graph.Store
	ec    *EvalContext
}

func (c *createIter) Open(ctx context.Context) error { return c.input.Open(ctx) }

func (c *createIter) Next(ctx context.Context) (Row, bool, error) {
	row, ok, err := c.input.Next(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	out := row.Clone()
	if err := applyCreate(c.ec, ctx, c.g, out, c.nodes, c.rels); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (c *createIter) Close() error { return c.input.Close() }

func applyCreate(ec *EvalContext, ctx context.Context, g graph.Store, row Row, nodes []plan.CreateNodeSpec, rels []plan.CreateRelSpec) error {
	for _, spec := range nodes {
		props, err := evalPropConstraints(ec, ctx, row, spec.Props)
		if err != nil {
			return err
		}
		id, err := g.CreateNode(spec.Labels, props)
		if err != nil {
			return err
		}
		n, err := g.GetNode(id)
		if err != nil {
			return err
		}
		if spec.Var != "" {
			row[spec.Var] = nodeToValue(n)
		}
	}
	for _, spec := range rels {
		props, err := evalPropConstraints(ec, ctx, row, spec.Props)
		if err != nil {
			return err
		}
		fromVal, toVal := row.Get(spec.FromVar), row.Get(spec.ToVar)
		from, to := graph.NodeID(fromVal.Nd.ID), graph.NodeID(toVal.Nd.ID)
		if spec.Direction == ast.In {
			from, to = to, from
		}
		id, err := g.CreateRelationship(spec.Type, from, to, props)
		if err != nil {
			return err
		}
		r, err := g.GetRelationship(id)
		if err != nil {
			return err
		}
		if spec.Var != "" {
			row[spec.Var] = relToValue(r)
		}
	}
	return nil
}

func evalPropConstraints(ec *EvalContext, ctx context.Context, row Row, props []ast.PropConstraint) (map[string]value.Value, error) {
	if len(props) == 0 {
		return nil, nil
	}
	ec.Ctx, ec.Row = ctx, row
	out := make(map[string]value.Value, len(props))
	for _, p := range props {
		v, err := Eval(ec, p.Value)
		if err != nil {
			return nil, err
		}
		out[p.Key] = v
	}
	return out, nil
}

// ---- Merge ----

type mergeIter struct {
	input    Iterator
	pattern  *ast.PatternPath
	onCreate []ast.SetItem
	onMatch  []ast.SetItem
	g        graph.Store
	ec       *EvalContext
}

func (m *mergeIter) Open(ctx context.Context) error { return m.input.Open(ctx) }

func (m *mergeIter) Next(ctx context.Context) (Row, bool, error) {
	row, ok, err := m.input.Next(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	out := row.Clone()
	matched, err := m.tryMatch(ctx, out)
	if err != nil {
		return nil, false, err
	}
	if matched {
		if err := applySetItems(m.ec, ctx, m.g, out, m.onMatch); err != nil {
			return nil, false, err
		}
		return out, true, nil
	}

	nodes, rels := lowerMergePattern(m.pattern)
	unbound := nodes[:0]
	for _, n := range nodes {
		if n.Var != "" && out.Get(n.Var).Kind == value.Node {
			continue
		}
		unbound = append(unbound, n)
	}
	if err := applyCreate(m.ec, ctx, m.g, out, unbound, rels); err != nil {
		return nil, false, err
	}
	if err := applySetItems(m.ec, ctx, m.g, out, m.onCreate); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// tryMatch runs the pattern as a MATCH before MERGE falls back to create,
// so re-running the same MERGE is idempotent: a bare node matches directly
// against the label index, and a node/relationship chain is matched by
// walking the store from each label-indexed candidate head, the same
// incident-edge traversal expandIter uses for MATCH.
func (m *mergeIter) tryMatch(ctx context.Context, row Row) (bool, error) {
	elements := m.pattern.Elements
	headNode := elements[0].Node
	if headNode == nil {
		return false, nil
	}
	if len(elements) == 1 {
		candidates := m.candidateNodes(headNode)
		for _, id := range candidates {
			n, err := m.g.GetNode(id)
			if err != nil {
				continue
			}
			if hasAllLabels(n, headNode.Labels) && nodeMatchesProps(m.ec, ctx, row, n, headNode.Props) {
				if headNode.Variable != "" {
					row[headNode.Variable] = nodeToValue(n)
				}
				return true, nil
			}
		}
		return false, nil
	}

	if headNode.Variable != "" {
		if bound := row.Get(headNode.Variable); bound.Kind == value.Node {
			n, err := m.g.GetNode(graph.NodeID(bound.Nd.ID))
			if err != nil {
				return false, nil
			}
			final, ok, err := m.matchChain(ctx, row.Clone(), elements, 1, n)
			if err != nil || !ok {
				return false, err
			}
			for k, v := range final {
				row[k] = v
			}
			return true, nil
		}
	}

	candidates := m.candidateNodes(headNode)
	for _, id := range candidates {
		n, err := m.g.GetNode(id)
		if err != nil {
			continue
		}
		if !hasAllLabels(n, headNode.Labels) || !nodeMatchesProps(m.ec, ctx, row, n, headNode.Props) {
			continue
		}
		trial := row.Clone()
		if headNode.Variable != "" {
			trial[headNode.Variable] = nodeToValue(n)
		}
		final, ok, err := m.matchChain(ctx, trial, elements, 1, n)
		if err != nil {
			return false, err
		}
		if ok {
			for k, v := range final {
				row[k] = v
			}
			return true, nil
		}
	}
	return false, nil
}

// matchChain extends a MERGE match one relationship/node hop at a time,
// starting at elements[idx] (a RelationshipPattern) from the node already
// matched at current. It backtracks across ambiguous relationship
// candidates, returning the first row whose full chain matches the store.
func (m *mergeIter) matchChain(ctx context.Context, row Row, elements []ast.PatternElement, idx int, current *graph.Node) (Row, bool, error) {
	if idx >= len(elements) {
		return row, true, nil
	}
	relPat := elements[idx].Rel
	nodePat := elements[idx+1].Node
	relIDs, err := m.g.IncidentEdges(current.ID, graphDirection(relPat.Direction), relPat.Types)
	if err != nil {
		return nil, false, nil
	}
	for _, relID := range relIDs {
		rel, err := m.g.GetRelationship(relID)
		if err != nil {
			continue
		}
		if !relMatchesProps(m.ec, ctx, row, rel, relPat.Props) {
			continue
		}
		var landingID graph.NodeID
		switch {
		case rel.From == current.ID:
			landingID = rel.To
		default:
			landingID = rel.From
		}
		landing, err := m.g.GetNode(landingID)
		if err != nil {
			continue
		}
		if !hasAllLabels(landing, nodePat.Labels) || !nodeMatchesProps(m.ec, ctx, row, landing, nodePat.Props) {
			continue
		}
		if nodePat.Variable != "" {
			if bound := row.Get(nodePat.Variable); bound.Kind == value.Node && bound.Nd.ID != int64(landing.ID) {
				continue
			}
		}
		trial := row.Clone()
		if relPat.Variable != "" {
			trial[relPat.Variable] = relToValue(rel)
		}
		if nodePat.Variable != "" {
			trial[nodePat.Variable] = nodeToValue(landing)
		}
		final, ok, err := m.matchChain(ctx, trial, elements, idx+2, landing)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return final, true, nil
		}
	}
	return nil, false, nil
}

func (m *mergeIter) candidateNodes(np *ast.NodePattern) []graph.NodeID {
	if len(np.Labels) > 0 {
		return m.g.ScanLabel(np.Labels[0])
	}
	return m.g.ScanAllNodes()
}

func hasAllLabels(n *graph.Node, labels []string) bool {
	for _, l := range labels {
		if !n.HasLabel(l) {
			return false
		}
	}
	return true
}

func nodeMatchesProps(ec *EvalContext, ctx context.Context, row Row, n *graph.Node, props []ast.PropConstraint) bool {
	return propsMatch(ec, ctx, row, n.Props, props)
}

func relMatchesProps(ec *EvalContext, ctx context.Context, row Row, r *graph.Relationship, props []ast.PropConstraint) bool {
	return propsMatch(ec, ctx, row, r.Props, props)
}

// propsMatch evaluates each constraint's value expression against row, so a
// MERGE pattern like `MERGE (b:Person {name: a.name})` resolves `a.name`
// against the already-bound outer row instead of an empty one.
func propsMatch(ec *EvalContext, ctx context.Context, row Row, have map[string]value.Value, props []ast.PropConstraint) bool {
	ec.Ctx, ec.Row = ctx, row
	for _, pc := range props {
		want, err := Eval(ec, pc.Value)
		if err != nil {
			return false
		}
		v, ok := have[pc.Key]
		if !ok {
			return false
		}
		eq, ok := value.Equal(v, want)
		if !ok || eq.Kind != value.Bool || !eq.B {
			return false
		}
	}
	return true
}

func lowerMergePattern(path *ast.PatternPath) ([]plan.CreateNodeSpec, []plan.CreateRelSpec) {
	var nodes []plan.CreateNodeSpec
	var rels []plan.CreateRelSpec
	var prevVar string
	for i, el := range path.Elements {
		switch {
		case el.Node != nil:
			nodes = append(nodes, plan.CreateNodeSpec{Var: el.Node.Variable, Labels: el.Node.Labels, Props: el.Node.Props})
			prevVar = el.Node.Variable
		case el.Rel != nil:
			to := path.Elements[i+1].Node
			relType := ""
			if len(el.Rel.Types) > 0 {
				relType = el.Rel.Types[0]
			}
			rels = append(rels, plan.CreateRelSpec{Var: el.Rel.Variable, Type: relType, FromVar: prevVar, ToVar: to.Variable, Direction: el.Rel.Direction, Props: el.Rel.Props})
		}
	}
	return nodes, rels
}

func (m *mergeIter) Close() error { return m.input.Close() }

// ---- Set / Remove / Delete ----

type setIter struct {
	input Iterator
	items []ast.SetItem
	g     graph.Store
	ec    *EvalContext
}

func (s *setIter) Open(ctx context.Context) error { return s.input.Open(ctx) }

func (s *setIter) Next(ctx context.Context) (Row, bool, error) {
	row, ok, err := s.input.Next(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	out := row.Clone()
	if err := applySetItems(s.ec, ctx, s.g, out, s.items); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (s *setIter) Close() error { return s.input.Close() }

func applySetItems(ec *EvalContext, ctx context.Context, g graph.Store, row Row, items []ast.SetItem) error {
	ec.Ctx, ec.Row = ctx, row
	for _, it := range items {
		target := row.Get(it.Variable)
		switch it.Kind {
		case ast.SetLabels:
			if target.Kind != value.Node {
				return cerr.New(cerr.KindTypeError, "SET labels requires a node variable")
			}
			id := graph.NodeID(target.Nd.ID)
			for _, l := range it.Labels {
				if err := g.AddLabel(id, l); err != nil {
					return err
				}
			}
			n, err := g.GetNode(id)
			if err != nil {
				return err
			}
			row[it.Variable] = nodeToValue(n)
		case ast.SetProperty:
			v, err := Eval(ec, it.Value)
			if err != nil {
				return err
			}
			if err := setProperty(g, target, it.Property, v); err != nil {
				return err
			}
			row[it.Variable] = refreshed(g, target)
		case ast.SetPropertyMap:
			v, err := Eval(ec, it.Value)
			if err != nil {
				return err
			}
			if v.Kind != value.Map {
				return cerr.New(cerr.KindTypeError, "SET %s = ... requires a map expression", it.Variable)
			}
			if !it.Additive {
				if err := clearProperties(g, target); err != nil {
					return err
				}
			}
			for _, k := range v.M.Keys() {
				pv, _ := v.M.Get(k)
				if err := setProperty(g, target, k, pv); err != nil {
					return err
				}
			}
			row[it.Variable] = refreshed(g, target)
		}
	}
	return nil
}

func setProperty(g graph.Store, target value.Value, key string, v value.Value) error {
	switch target.Kind {
	case value.Node:
		return g.SetNodeProperty(graph.NodeID(target.Nd.ID), key, v)
	case value.Edge:
		return g.SetRelProperty(graph.RelID(target.Ed.ID), key, v)
	default:
		return cerr.New(cerr.KindTypeError, "cannot SET a property on a %s value", target.Kind)
	}
}

func clearProperties(g graph.Store, target value.Value) error {
	switch target.Kind {
	case value.Node:
		n, err := g.GetNode(graph.NodeID(target.Nd.ID))
		if err != nil {
			return err
		}
		for k := range n.Props {
			_ = g.RemoveNodeProperty(n.ID, k)
		}
	case value.Edge:
		r, err := g.GetRelationship(graph.RelID(target.Ed.ID))
		if err != nil {
			return err
		}
		for k := range r.Props {
			_ = g.RemoveRelProperty(r.ID, k)
		}
	}
	return nil
}

func refreshed(g graph.Store, target value.Value) value.Value {
	switch target.Kind {
	case value.Node:
		if n, err := g.GetNode(graph.NodeID(target.Nd.ID)); err == nil {
			return nodeToValue(n)
		}
	case value.Edge:
		if r, err := g.GetRelationship(graph.RelID(target.Ed.ID)); err == nil {
			return relToValue(r)
		}
	}
	return target
}

type removeIter struct {
	input Iterator
	items []ast.RemoveItem
	g     graph.Store
}

func (r *removeIter) Open(ctx context.Context) error { return r.input.Open(ctx) }

func (r *removeIter) Next(ctx context.Context) (Row, bool, error) {
	row, ok, err := r.input.Next(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	out := row.Clone()
	for _, it := range r.items {
		target := out.Get(it.Variable)
		if target.Kind != value.Node && target.Kind != value.Edge {
			continue
		}
		if len(it.Labels) > 0 {
			if target.Kind != value.Node {
				return nil, false, cerr.New(cerr.KindTypeError, "REMOVE labels requires a node variable")
			}
			id := graph.NodeID(target.Nd.ID)
			for _, l := range it.Labels {
				_ = r.g.RemoveLabel(id, l)
			}
			out[it.Variable] = refreshed(r.g, target)
			continue
		}
		switch target.Kind {
		case value.Node:
			_ = r.g.RemoveNodeProperty(graph.NodeID(target.Nd.ID), it.Property)
		case value.Edge:
			_ = r.g.RemoveRelProperty(graph.RelID(target.Ed.ID), it.Property)
		}
		out[it.Variable] = refreshed(r.g, target)
	}
	return out, true, nil
}

func (r *removeIter) Close() error { return r.input.Close() }

type deleteIter struct {
	input  Iterator
	vars   []ast.Expr
	detach bool
	g      graph.Store
	ec     *EvalContext
}

func (d *deleteIter) Open(ctx context.Context) error { return d.input.Open(ctx) }

func (d *deleteIter) Next(ctx context.Context) (Row, bool, error) {
	row, ok, err := d.input.Next(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	d.ec.Ctx, d.ec.Row = ctx, row
	for _, e := range d.vars {
		v, err := Eval(d.ec, e)
		if err != nil {
			return nil, false, err
		}
		switch v.Kind {
		case value.Node:
			if err := d.g.DeleteNode(graph.NodeID(v.Nd.ID), d.detach); err != nil {
				return nil, false, err
			}
		case value.Edge:
			if err := d.g.DeleteRelationship(graph.RelID(v.Ed.ID)); err != nil {
				return nil, false, err
			}
		}
	}
	return row, true, nil
}

func (d *deleteIter) Close() error { return d.input.Close() }
