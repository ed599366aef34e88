package executor

import (
	"context"
	"sort"

	"github.com/cypherdb/cypherdb/internal/ast"
	"github.com/cypherdb/cypherdb/internal/graph"
	"github.com/cypherdb/cypherdb/internal/plan"
	"github.com/cypherdb/cypherdb/internal/value"
)

// ---- Scans ----

// seed, when non-nil, holds a single already-bound row for a pattern
// variable introduced by an enclosing query (a correlated EXISTS{}/COUNT{}
// subquery) — the scan yields that one row instead of touching the store.
type allNodesScan struct {
	g     graph.Store
	varr  string
	seed  Row
	ids   []graph.NodeID
	idx   int
	done  bool
}

func (s *allNodesScan) Open(ctx context.Context) error {
	if _, ok := s.seed[s.varr]; ok {
		return nil
	}
	s.ids = s.g.ScanAllNodes()
	return nil
}

func (s *allNodesScan) Next(ctx context.Context) (Row, bool, error) {
	if err := checkCancelled(ctx); err != nil {
		return nil, false, err
	}
	if v, ok := s.seed[s.varr]; ok {
		if s.done {
			return nil, false, nil
		}
		s.done = true
		return Row{s.varr: v}, true, nil
	}
	for s.idx < len(s.ids) {
		id := s.ids[s.idx]
		s.idx++
		n, err := s.g.GetNode(id)
		if err != nil {
			continue
		}
		return Row{s.varr: nodeToValue(n)}, true, nil
	}
	return nil, false, nil
}

func (s *allNodesScan) Close() error { return nil }

type labelScan struct {
	g     graph.Store
	varr  string
	label string
	seed  Row
	ids   []graph.NodeID
	idx   int
	done  bool
}

func (s *labelScan) Open(ctx context.Context) error {
	if _, ok := s.seed[s.varr]; ok {
		return nil
	}
	s.ids = s.g.ScanLabel(s.label)
	return nil
}

func (s *labelScan) Next(ctx context.Context) (Row, bool, error) {
	if err := checkCancelled(ctx); err != nil {
		return nil, false, err
	}
	if v, ok := s.seed[s.varr]; ok {
		if s.done {
			return nil, false, nil
		}
		s.done = true
		return Row{s.varr: v}, true, nil
	}
	for s.idx < len(s.ids) {
		id := s.ids[s.idx]
		s.idx++
		n, err := s.g.GetNode(id)
		if err != nil {
			continue
		}
		return Row{s.varr: nodeToValue(n)}, true, nil
	}
	return nil, false, nil
}

func (s *labelScan) Close() error { return nil }

// nodeByIDSeek binds Var to the single node named by an id expression.
// It takes no input: a seed binding for Var is returned as is, and
// otherwise the id expression is evaluated once against an empty row.
type nodeByIDSeek struct {
	g    graph.Store
	varr string
	id   ast.Expr
	ec   *EvalContext
	seed Row
	done bool
}

func (s *nodeByIDSeek) Open(ctx context.Context) error { return nil }

func (s *nodeByIDSeek) Next(ctx context.Context) (Row, bool, error) {
	if s.done {
		return nil, false, nil
	}
	s.done = true
	if v, ok := s.seed[s.varr]; ok {
		return Row{s.varr: v}, true, nil
	}
	s.ec.Ctx, s.ec.Row = ctx, Row{}
	idVal, err := Eval(s.ec, s.id)
	if err != nil {
		return nil, false, err
	}
	if idVal.Kind != value.Int {
		return nil, false, nil
	}
	n, err := s.g.GetNode(graph.NodeID(idVal.I))
	if err != nil {
		return nil, false, nil
	}
	return Row{s.varr: nodeToValue(n)}, true, nil
}

func (s *nodeByIDSeek) Close() error { return nil }

// ---- Expand ----

type expandIter struct {
	g                     graph.Store
	input                 Iterator
	from, relVar, toVar   string
	types                 []string
	dir                   ast.Direction
	minHops, maxHops      int
	params                map[string]value.Value
	seed                  Row

	curBase Row
	pending []Row
	pidx    int
}

func graphDirection(d ast.Direction) graph.Direction {
	switch d {
	case ast.Out:
		return graph.Outgoing
	case ast.In:
		return graph.Incoming
	default:
		return graph.Either
	}
}

func (e *expandIter) Open(ctx context.Context) error { return e.input.Open(ctx) }

func (e *expandIter) Next(ctx context.Context) (Row, bool, error) {
	for {
		if e.pidx < len(e.pending) {
			row := e.pending[e.pidx]
			e.pidx++
			return row, true, nil
		}
		base, ok, err := e.input.Next(ctx)
		if err != nil || !ok {
			return nil, ok, err
		}
		fromVal := base.Get(e.from)
		if fromVal.Kind != value.Node {
			continue
		}
		max := e.maxHops
		if max == ast.Unbounded {
			max = 64
		}
		rows := e.expandFrom(graph.NodeID(fromVal.Nd.ID), base, 1, max, nil, nil)
		e.pending = rows
		e.pidx = 0
		e.curBase = base
	}
}

// expandFrom walks relationships depth-first up to maxHops, collecting one
// output row per path whose length is within [minHops, maxHops]. The cycle
// policy is edge-uniqueness: a relationship id may not repeat within a
// single matched path, but a node may be revisited via a different
// relationship (invariant I6).
func (e *expandIter) expandFrom(from graph.NodeID, base Row, depth, maxHops int, edgePath []value.Value, visitedRels []graph.RelID) []Row {
	var out []Row
	relIDs, err := e.g.IncidentEdges(from, graphDirection(e.dir), e.types)
	if err != nil {
		return nil
	}
	for _, relID := range relIDs {
		if containsRelID(visitedRels, relID) {
			continue
		}
		rel, err := e.g.GetRelationship(relID)
		if err != nil {
			continue
		}
		var landing graph.NodeID
		switch {
		case rel.From == from:
			landing = rel.To
		default:
			landing = rel.From
		}
		landingNode, err := e.g.GetNode(landing)
		if err != nil {
			continue
		}
		newPath := append(append([]value.Value{}, edgePath...), relToValue(rel))
		newVisited := append(append([]graph.RelID{}, visitedRels...), relID)
		if depth >= e.minHops {
			row := base.Clone()
			if e.relVar != "" {
				if e.maxHops == 1 && e.minHops == 1 {
					row[e.relVar] = newPath[len(newPath)-1]
				} else {
					row[e.relVar] = value.ListValue(newPath)
				}
			}
			row[e.toVar] = nodeToValue(landingNode)
			out = append(out, row)
		}
		if depth < maxHops {
			out = append(out, e.expandFrom(landing, base, depth+1, maxHops, newPath, newVisited)...)
		}
	}
	return out
}

func containsRelID(s []graph.RelID, id graph.RelID) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

func (e *expandIter) Close() error { return e.input.Close() }

// optionalExpandIter wraps expandIter so a base row with no matching
// relationship still yields once, with RelVar/ToVar bound to Null
// (OPTIONAL MATCH, spec §3.1).
type optionalExpandIter struct {
	expandIter
}

func (o *optionalExpandIter) Next(ctx context.Context) (Row, bool, error) {
	for {
		if o.pidx < len(o.pending) {
			row := o.pending[o.pidx]
			o.pidx++
			return row, true, nil
		}
		base, ok, err := o.input.Next(ctx)
		if err != nil || !ok {
			return nil, ok, err
		}
		fromVal := base.Get(o.from)
		if fromVal.Kind != value.Node {
			row := base.Clone()
			row[o.toVar] = value.NullValue
			if o.relVar != "" {
				row[o.relVar] = value.NullValue
			}
			return row, true, nil
		}
		max := o.maxHops
		if max == ast.Unbounded {
			max = 64
		}
		rows := o.expandFrom(graph.NodeID(fromVal.Nd.ID), base, 1, max, nil, nil)
		if len(rows) == 0 {
			row := base.Clone()
			row[o.toVar] = value.NullValue
			if o.relVar != "" {
				row[o.relVar] = value.NullValue
			}
			return row, true, nil
		}
		o.pending = rows
		o.pidx = 0
	}
}

// optionalScanIter wraps a pattern's head scan (plus any chained hops and
// inline filters) so a standalone OPTIONAL MATCH whose head variable is
// not already bound still yields exactly one row, with vars bound to
// Null, when the wrapped subtree produces nothing — the head-scan
// counterpart to optionalExpandIter, which only covers hops after an
// already-bound head.
type optionalScanIter struct {
	input Iterator
	vars  []string
	saw   bool
	done  bool
}

func (o *optionalScanIter) Open(ctx context.Context) error { return o.input.Open(ctx) }

func (o *optionalScanIter) Next(ctx context.Context) (Row, bool, error) {
	row, ok, err := o.input.Next(ctx)
	if err != nil {
		return nil, false, err
	}
	if ok {
		o.saw = true
		return row, true, nil
	}
	if o.saw || o.done {
		return nil, false, nil
	}
	o.done = true
	null := make(Row, len(o.vars))
	for _, v := range o.vars {
		null[v] = value.NullValue
	}
	return null, true, nil
}

func (o *optionalScanIter) Close() error { return o.input.Close() }

// ---- Filter ----

type filterIter struct {
	input     Iterator
	predicate ast.Expr
	ec        *EvalContext
}

func (f *filterIter) Open(ctx context.Context) error { return f.input.Open(ctx) }

func (f *filterIter) Next(ctx context.Context) (Row, bool, error) {
	for {
		row, ok, err := f.input.Next(ctx)
		if err != nil || !ok {
			return nil, ok, err
		}
		f.ec.Ctx = ctx
		f.ec.Row = row
		v, err := Eval(f.ec, f.predicate)
		if err != nil {
			return nil, false, err
		}
		if v.Kind == value.Bool && v.B {
			return row, true, nil
		}
	}
}

func (f *filterIter) Close() error { return f.input.Close() }

// ---- Projection ----

type projectionIter struct {
	input    Iterator
	columns  []plan.ProjectionColumn
	discard  bool
	distinct bool
	ec       *EvalContext
	seen     map[string]bool
}

func (p *projectionIter) Open(ctx context.Context) error {
	p.seen = make(map[string]bool)
	return p.input.Open(ctx)
}

func (p *projectionIter) Next(ctx context.Context) (Row, bool, error) {
	for {
		row, ok, err := p.input.Next(ctx)
		if err != nil || !ok {
			return nil, ok, err
		}
		p.ec.Ctx = ctx
		p.ec.Row = row
		out := Row{}
		if !p.discard {
			for k, v := range row {
				out[k] = v
			}
		}
		sig := ""
		for _, col := range p.columns {
			v, err := Eval(p.ec, col.Expr)
			if err != nil {
				return nil, false, err
			}
			out[col.Alias] = v
			sig += v.String() + "\x1f"
		}
		if p.distinct {
			if p.seen[sig] {
				continue
			}
			p.seen[sig] = true
		}
		return out, true, nil
	}
}

func (p *projectionIter) Close() error { return p.input.Close() }

// ---- Sort / Skip / Limit ----

type sortIter struct {
	input    Iterator
	keys     []plan.SortKey
	ec       *EvalContext
	rows     []Row
	idx      int
	sorted   bool
}

func (s *sortIter) Open(ctx context.Context) error { return s.input.Open(ctx) }

func (s *sortIter) materialize(ctx context.Context) error {
	for {
		row, ok, err := s.input.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		s.rows = append(s.rows, row)
	}
	sort.SliceStable(s.rows, func(i, j int) bool {
		for _, k := range s.keys {
			s.ec.Row = s.rows[i]
			vi, _ := Eval(s.ec, k.Expr)
			s.ec.Row = s.rows[j]
			vj, _ := Eval(s.ec, k.Expr)
			cmp, ok := value.Compare(vi, vj)
			if !ok {
				if vi.IsNull() != vj.IsNull() {
					return vj.IsNull() // Null sorts last
				}
				continue
			}
			if cmp == 0 {
				continue
			}
			if k.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	s.sorted = true
	return nil
}

func (s *sortIter) Next(ctx context.Context) (Row, bool, error) {
	if !s.sorted {
		s.ec.Ctx = ctx
		if err := s.materialize(ctx); err != nil {
			return nil, false, err
		}
	}
	if s.idx >= len(s.rows) {
		return nil, false, nil
	}
	row := s.rows[s.idx]
	s.idx++
	return row, true, nil
}

func (s *sortIter) Close() error { return s.input.Close() }

type skipIter struct {
	input   Iterator
	count   ast.Expr
	ec      *EvalContext
	skipped bool
	n       int64
}

func (s *skipIter) Open(ctx context.Context) error { return s.input.Open(ctx) }

func (s *skipIter) Next(ctx context.Context) (Row, bool, error) {
	if !s.skipped {
		s.ec.Ctx = ctx
		v, err := Eval(s.ec, s.count)
		if err != nil {
			return nil, false, err
		}
		if v.Kind == value.Int {
			s.n = v.I
		}
		s.skipped = true
		for i := int64(0); i < s.n; i++ {
			_, ok, err := s.input.Next(ctx)
			if err != nil || !ok {
				return nil, ok, err
			}
		}
	}
	return s.input.Next(ctx)
}

func (s *skipIter) Close() error { return s.input.Close() }

type limitIter struct {
	input   Iterator
	count   ast.Expr
	ec      *EvalContext
	limit   int64
	emitted int64
	sized   bool
}

func (l *limitIter) Open(ctx context.Context) error { return l.input.Open(ctx) }

func (l *limitIter) Next(ctx context.Context) (Row, bool, error) {
	if !l.sized {
		l.ec.Ctx = ctx
		v, err := Eval(l.ec, l.count)
		if err != nil {
			return nil, false, err
		}
		if v.Kind == value.Int {
			l.limit = v.I
		}
		l.sized = true
	}
	if l.emitted >= l.limit {
		return nil, false, nil
	}
	row, ok, err := l.input.Next(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	l.emitted++
	return row, true, nil
}

func (l *limitIter) Close() error { return l.input.Close() }

// ---- Unwind ----

type unwindIter struct {
	input Iterator
	expr  ast.Expr
	alias string
	ec    *EvalContext

	base  Row
	items []value.Value
	idx   int
}

func (u *unwindIter) Open(ctx context.Context) error { return u.input.Open(ctx) }

func (u *unwindIter) Next(ctx context.Context) (Row, bool, error) {
	for {
		if u.idx < len(u.items) {
			v := u.items[u.idx]
			u.idx++
			row := u.base.Clone()
			row[u.alias] = v
			return row, true, nil
		}
		row, ok, err := u.input.Next(ctx)
		if err != nil || !ok {
			return nil, ok, err
		}
		u.ec.Ctx = ctx
		u.ec.Row = row
		v, err := Eval(u.ec, u.expr)
		if err != nil {
			return nil, false, err
		}
		u.base = row
		switch v.Kind {
		case value.Null:
			u.items, u.idx = nil, 0
		case value.List:
			u.items, u.idx = v.L, 0
		default:
			u.items, u.idx = []value.Value{v}, 0
		}
	}
}

func (u *unwindIter) Close() error { return u.input.Close() }

// ---- Cartesian product ----

type cartesianIter struct {
	left, right Iterator
	rightRows   []Row
	rIdx        int
	curLeft     Row
	haveLeft    bool
}

func (c *cartesianIter) Open(ctx context.Context) error {
	if err := c.left.Open(ctx); err != nil {
		return err
	}
	if err := c.right.Open(ctx); err != nil {
		return err
	}
	for {
		row, ok, err := c.right.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		c.rightRows = append(c.rightRows, row)
	}
	return nil
}

func (c *cartesianIter) Next(ctx context.Context) (Row, bool, error) {
	for {
		if c.haveLeft && c.rIdx < len(c.rightRows) {
			row := c.curLeft.Merge(c.rightRows[c.rIdx])
			c.rIdx++
			return row, true, nil
		}
		row, ok, err := c.left.Next(ctx)
		if err != nil || !ok {
			return nil, ok, err
		}
		c.curLeft = row
		c.haveLeft = true
		c.rIdx = 0
	}
}

func (c *cartesianIter) Close() error {
	err1 := c.left.Close()
	err2 := c.right.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// ---- Value hash join ----

type hashJoinIter struct {
	left, right        Iterator
	leftKey, rightKey  ast.Expr
	ec                 *EvalContext

	buckets  map[string][]Row
	curLeft  Row
	matches  []Row
	mIdx     int
}

func (h *hashJoinIter) Open(ctx context.Context) error {
	if err := h.left.Open(ctx); err != nil {
		return err
	}
	if err := h.right.Open(ctx); err != nil {
		return err
	}
	h.buckets = make(map[string][]Row)
	for {
		row, ok, err := h.right.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		h.ec.Ctx, h.ec.Row = ctx, row
		v, err := Eval(h.ec, h.rightKey)
		if err != nil {
			return err
		}
		key := v.String()
		h.buckets[key] = append(h.buckets[key], row)
	}
	return nil
}

func (h *hashJoinIter) Next(ctx context.Context) (Row, bool, error) {
	for {
		if h.mIdx < len(h.matches) {
			row := h.curLeft.Merge(h.matches[h.mIdx])
			h.mIdx++
			return row, true, nil
		}
		row, ok, err := h.left.Next(ctx)
		if err != nil || !ok {
			return nil, ok, err
		}
		h.ec.Ctx, h.ec.Row = ctx, row
		v, err := Eval(h.ec, h.leftKey)
		if err != nil {
			return nil, false, err
		}
		h.curLeft = row
		h.matches = h.buckets[v.String()]
		h.mIdx = 0
	}
}

func (h *hashJoinIter) Close() error {
	err1 := h.left.Close()
	err2 := h.right.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
