package parser

import (
	"math/big"
	"strings"

	"github.com/cypherdb/cypherdb/internal/ast"
	"github.com/cypherdb/cypherdb/internal/cerr"
)

func convertQuery(gq *grammarQuery) (*ast.Query, error) {
	q := &ast.Query{}
	for _, c := range gq.Clauses {
		clause, err := convertClause(c)
		if err != nil {
			return nil, err
		}
		q.Clauses = append(q.Clauses, clause)
	}
	return q, nil
}

func convertClause(c *grammarClause) (ast.Clause, error) {
	switch {
	case c.Match != nil:
		return convertMatch(c.Match)
	case c.Unwind != nil:
		expr, err := convertExpr(c.Unwind.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.UnwindClause{Expr: expr, Alias: c.Unwind.Alias}, nil
	case c.Create != nil:
		paths, err := convertPaths(c.Create.Patterns)
		if err != nil {
			return nil, err
		}
		return &ast.CreateClause{Patterns: paths}, nil
	case c.Merge != nil:
		return convertMerge(c.Merge)
	case c.Set != nil:
		items, err := convertSetItems(c.Set.Items)
		if err != nil {
			return nil, err
		}
		return &ast.SetClause{Items: items}, nil
	case c.Remove != nil:
		return convertRemove(c.Remove)
	case c.Delete != nil:
		return convertDelete(c.Delete)
	case c.With != nil:
		return convertWith(c.With)
	case c.Return != nil:
		return convertReturn(c.Return)
	default:
		return nil, cerr.New(cerr.KindSyntaxError, "empty or unrecognized clause")
	}
}

func convertMatch(m *grammarMatch) (*ast.MatchClause, error) {
	paths, err := convertPaths(m.Patterns)
	if err != nil {
		return nil, err
	}
	var where ast.Expr
	if m.Where != nil {
		where, err = convertExpr(m.Where)
		if err != nil {
			return nil, err
		}
	}
	return &ast.MatchClause{Patterns: paths, Where: where, Optional: m.Optional}, nil
}

func convertMerge(m *grammarMerge) (*ast.MergeClause, error) {
	paths, err := convertPaths([]*grammarPath{m.Pattern})
	if err != nil {
		return nil, err
	}
	mc := &ast.MergeClause{Pattern: paths[0]}
	if m.OnCreate != nil {
		items, err := convertSetItems(m.OnCreate)
		if err != nil {
			return nil, err
		}
		mc.OnCreate = &ast.OnSetClause{Items: items}
	}
	if m.OnMatch != nil {
		items, err := convertSetItems(m.OnMatch)
		if err != nil {
			return nil, err
		}
		mc.OnMatch = &ast.OnSetClause{Items: items}
	}
	return mc, nil
}

func convertSetItems(items *grammarSetItems) ([]ast.SetItem, error) {
	var out []ast.SetItem
	for _, it := range items.Items {
		var value ast.Expr
		var err error
		if it.Value != nil {
			value, err = convertExpr(it.Value)
			if err != nil {
				return nil, err
			}
		}
		switch {
		case len(it.Labels) > 0:
			out = append(out, ast.SetItem{Kind: ast.SetLabels, Variable: it.Variable, Labels: it.Labels})
		case it.Property != nil:
			out = append(out, ast.SetItem{Kind: ast.SetProperty, Variable: it.Variable, Property: *it.Property, Value: value})
		default:
			out = append(out, ast.SetItem{Kind: ast.SetPropertyMap, Variable: it.Variable, Value: value, Additive: it.Additive})
		}
	}
	return out, nil
}

func convertRemove(r *grammarRemove) (*ast.RemoveClause, error) {
	rc := &ast.RemoveClause{}
	for _, it := range r.Items {
		item := ast.RemoveItem{Variable: it.Variable}
		if it.Property != nil {
			item.Property = *it.Property
		} else {
			item.Labels = it.Labels
		}
		rc.Items = append(rc.Items, item)
	}
	return rc, nil
}

func convertDelete(d *grammarDelete) (*ast.DeleteClause, error) {
	dc := &ast.DeleteClause{Detach: d.Detach}
	for _, e := range d.Items {
		expr, err := convertExpr(e)
		if err != nil {
			return nil, err
		}
		dc.Variables = append(dc.Variables, expr)
	}
	return dc, nil
}

func convertProjItems(items []*grammarProjItem) ([]ast.ProjectionItem, error) {
	var out []ast.ProjectionItem
	for _, it := range items {
		expr, err := convertExpr(it.Expr)
		if err != nil {
			return nil, err
		}
		out = append(out, ast.ProjectionItem{Expr: expr, Alias: it.Alias})
	}
	return out, nil
}

func convertOrderBy(items []*grammarOrderItem) ([]ast.OrderItem, error) {
	var out []ast.OrderItem
	for _, it := range items {
		expr, err := convertExpr(it.Expr.Expr)
		if err != nil {
			return nil, err
		}
		out = append(out, ast.OrderItem{Expr: expr, Descending: it.Expr.Desc})
	}
	return out, nil
}

func convertWith(w *grammarWith) (*ast.WithClause, error) {
	wc := &ast.WithClause{Distinct: w.Distinct, Star: w.Star}
	items, err := convertProjItems(w.Items)
	if err != nil {
		return nil, err
	}
	wc.Items = items
	if w.Where != nil {
		wc.Where, err = convertExpr(w.Where)
		if err != nil {
			return nil, err
		}
	}
	wc.OrderBy, err = convertOrderBy(w.OrderBy)
	if err != nil {
		return nil, err
	}
	if w.Skip != nil {
		wc.Skip, err = convertExpr(w.Skip)
		if err != nil {
			return nil, err
		}
	}
	if w.Limit != nil {
		wc.Limit, err = convertExpr(w.Limit)
		if err != nil {
			return nil, err
		}
	}
	return wc, nil
}

func convertReturn(r *grammarReturn) (*ast.ReturnClause, error) {
	rc := &ast.ReturnClause{Distinct: r.Distinct, Star: r.Star}
	items, err := convertProjItems(r.Items)
	if err != nil {
		return nil, err
	}
	rc.Items = items
	rc.OrderBy, err = convertOrderBy(r.OrderBy)
	if err != nil {
		return nil, err
	}
	if r.Skip != nil {
		rc.Skip, err = convertExpr(r.Skip)
		if err != nil {
			return nil, err
		}
	}
	if r.Limit != nil {
		rc.Limit, err = convertExpr(r.Limit)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// ---- Patterns ----

func convertPaths(gps []*grammarPath) ([]*ast.PatternPath, error) {
	var out []*ast.PatternPath
	for _, gp := range gps {
		p, err := convertPath(gp)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func convertPath(gp *grammarPath) (*ast.PatternPath, error) {
	path := &ast.PatternPath{}
	if gp.Variable != nil {
		path.Variable = *gp.Variable
	}
	headNode, err := convertNodePattern(gp.Head)
	if err != nil {
		return nil, err
	}
	path.Elements = append(path.Elements, ast.PatternElement{Node: headNode})
	for _, tail := range gp.Tail {
		rel, err := convertRelPattern(tail.Rel)
		if err != nil {
			return nil, err
		}
		node, err := convertNodePattern(tail.Node)
		if err != nil {
			return nil, err
		}
		path.Elements = append(path.Elements, ast.PatternElement{Rel: rel})
		path.Elements = append(path.Elements, ast.PatternElement{Node: node})
	}
	return path, nil
}

func convertNodePattern(gn *grammarNodePattern) (*ast.NodePattern, error) {
	np := &ast.NodePattern{Labels: gn.Labels}
	if gn.Variable != nil {
		np.Variable = *gn.Variable
	}
	props, err := convertPropConstraints(gn.Props)
	if err != nil {
		return nil, err
	}
	np.Props = props
	return np, nil
}

func convertRelPattern(gr *grammarRelPattern) (*ast.RelationshipPattern, error) {
	rp := &ast.RelationshipPattern{Types: gr.Types}
	if gr.Variable != nil {
		rp.Variable = *gr.Variable
	}
	switch {
	case gr.LeftArrow && !gr.RightArrow:
		rp.Direction = ast.In
	case gr.RightArrow && !gr.LeftArrow:
		rp.Direction = ast.Out
	default:
		rp.Direction = ast.Undirected
	}
	if gr.Length != nil {
		lr := &ast.LengthRange{Min: 1, Max: ast.Unbounded}
		if gr.Length.Min != nil {
			lr.Min = *gr.Length.Min
			lr.Max = lr.Min
		}
		if gr.Length.Dot {
			lr.Max = ast.Unbounded
			if gr.Length.Max != nil {
				lr.Max = *gr.Length.Max
			}
		}
		rp.Length = lr
	}
	props, err := convertPropConstraints(gr.Props)
	if err != nil {
		return nil, err
	}
	rp.Props = props
	return rp, nil
}

func convertPropConstraints(m *grammarMapLit) ([]ast.PropConstraint, error) {
	if m == nil {
		return nil, nil
	}
	var out []ast.PropConstraint
	for i, k := range m.Keys {
		v, err := convertExpr(m.Values[i])
		if err != nil {
			return nil, err
		}
		out = append(out, ast.PropConstraint{Key: k, Value: v})
	}
	return out, nil
}

// ---- Expressions ----

func convertExpr(e *grammarExpr) (ast.Expr, error) { return convertOr(e.Or) }

func convertOr(o *grammarOrExpr) (ast.Expr, error) {
	left, err := convertXor(o.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range o.Rest {
		right, err := convertXor(r)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

func convertXor(x *grammarXorExpr) (ast.Expr, error) {
	left, err := convertAnd(x.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range x.Rest {
		right, err := convertAnd(r)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: "XOR", Left: left, Right: right}
	}
	return left, nil
}

func convertAnd(a *grammarAndExpr) (ast.Expr, error) {
	left, err := convertNot(a.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range a.Rest {
		right, err := convertNot(r)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

func convertNot(n *grammarNotExpr) (ast.Expr, error) {
	inner, err := convertComparison(n.Cmp)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n.Nots; i++ {
		inner = &ast.UnaryOp{Op: "NOT", Operand: inner}
	}
	return inner, nil
}

func convertComparison(c *grammarComparison) (ast.Expr, error) {
	left, err := convertAdd(c.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range c.Ops {
		switch {
		case op.Op != "":
			right, err := convertAdd(op.Right)
			if err != nil {
				return nil, err
			}
			left = &ast.BinaryOp{Op: op.Op, Left: left, Right: right}
		case op.InOp:
			right, err := convertAdd(op.InRight)
			if err != nil {
				return nil, err
			}
			left = &ast.BinaryOp{Op: "IN", Left: left, Right: right}
		case op.StartsOp:
			right, err := convertAdd(op.StartsVal)
			if err != nil {
				return nil, err
			}
			left = &ast.BinaryOp{Op: "STARTS WITH", Left: left, Right: right}
		case op.IsNullOp:
			opName := "IS NULL"
			if op.IsNot {
				opName = "IS NOT NULL"
			}
			left = &ast.UnaryOp{Op: opName, Operand: left}
		}
	}
	return left, nil
}

func convertAdd(a *grammarAdd) (ast.Expr, error) {
	left, err := convertMul(a.Left)
	if err != nil {
		return nil, err
	}
	for _, f := range a.Rest {
		right, err := convertMul(f.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: f.Op, Left: left, Right: right}
	}
	return left, nil
}

func convertMul(m *grammarMul) (ast.Expr, error) {
	left, err := convertPow(m.Left)
	if err != nil {
		return nil, err
	}
	for _, f := range m.Rest {
		right, err := convertPow(f.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Op: f.Op, Left: left, Right: right}
	}
	return left, nil
}

func convertPow(p *grammarPow) (ast.Expr, error) {
	left, err := convertUnary(p.Left)
	if err != nil {
		return nil, err
	}
	if p.Right != nil {
		right, err := convertPow(p.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{Op: "^", Left: left, Right: right}, nil
	}
	return left, nil
}

func convertUnary(u *grammarUnary) (ast.Expr, error) {
	inner, err := convertPostfix(u.Postfix)
	if err != nil {
		return nil, err
	}
	if u.Neg {
		return &ast.UnaryOp{Op: "-", Operand: inner}, nil
	}
	return inner, nil
}

func convertPostfix(p *grammarPostfix) (ast.Expr, error) {
	atom, err := convertAtom(p.Atom)
	if err != nil {
		return nil, err
	}
	for _, prop := range p.Props {
		atom = &ast.PropertyAccess{Target: atom, Property: prop}
	}
	return atom, nil
}

func convertAtom(a *grammarAtom) (ast.Expr, error) {
	switch {
	case a.Literal != nil:
		return convertLiteral(a.Literal)
	case a.Param != nil:
		return &ast.Parameter{Name: strings.TrimPrefix(*a.Param, "$")}, nil
	case a.Case != nil:
		return convertCase(a.Case)
	case a.Exists != nil:
		q, err := convertQuery(a.Exists.Query)
		if err != nil {
			return nil, err
		}
		return &ast.ExistsSubquery{Query: q}, nil
	case a.Count != nil:
		q, err := convertQuery(a.Count.Query)
		if err != nil {
			return nil, err
		}
		return &ast.CountSubquery{Query: q}, nil
	case a.List != nil:
		items := make([]ast.Expr, 0, len(a.List.Items))
		for _, it := range a.List.Items {
			e, err := convertExpr(it)
			if err != nil {
				return nil, err
			}
			items = append(items, e)
		}
		return &ast.ListLiteral{Items: items}, nil
	case a.Map != nil:
		values := make([]ast.Expr, 0, len(a.Map.Values))
		for _, v := range a.Map.Values {
			e, err := convertExpr(v)
			if err != nil {
				return nil, err
			}
			values = append(values, e)
		}
		return &ast.MapLiteral{Keys: a.Map.Keys, Values: values}, nil
	case a.Func != nil:
		return convertFuncCall(a.Func)
	case a.Variable != nil:
		return &ast.Variable{Name: *a.Variable}, nil
	case a.Paren != nil:
		return convertExpr(a.Paren)
	default:
		return nil, cerr.New(cerr.KindSyntaxError, "empty expression atom")
	}
}

func convertFuncCall(f *grammarFuncCall) (ast.Expr, error) {
	name := strings.ToUpper(f.Name)
	if f.Star {
		return &ast.FunctionCall{Name: name, Args: nil, Distinct: f.Distinct, Star: true}, nil
	}
	args := make([]ast.Expr, 0, len(f.Args))
	for _, a := range f.Args {
		e, err := convertExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	return &ast.FunctionCall{Name: name, Args: args, Distinct: f.Distinct}, nil
}

func convertCase(c *grammarCase) (ast.Expr, error) {
	ce := &ast.CaseExpr{}
	if c.Test != nil {
		test, err := convertExpr(c.Test)
		if err != nil {
			return nil, err
		}
		ce.Test = test
	}
	for _, alt := range c.Alts {
		when, err := convertExpr(alt.When)
		if err != nil {
			return nil, err
		}
		then, err := convertExpr(alt.Then)
		if err != nil {
			return nil, err
		}
		ce.Alternatives = append(ce.Alternatives, ast.CaseAlternative{When: when, Then: then})
	}
	if c.Else != nil {
		elseExpr, err := convertExpr(c.Else)
		if err != nil {
			return nil, err
		}
		ce.Else = elseExpr
	}
	return ce, nil
}

// convertLiteral parses the raw magnitude into a big.Int without applying
// sign: a leading `-` in source is a separate UnaryOp (spec §4.1), so
// overflow to int64 is only ever checked at evaluation time.
func convertLiteral(l *grammarLiteral) (ast.Expr, error) {
	switch {
	case l.Null:
		return &ast.Literal{Kind: ast.LitNull}, nil
	case l.True:
		return &ast.Literal{Kind: ast.LitBool, B: true}, nil
	case l.False:
		return &ast.Literal{Kind: ast.LitBool, B: false}, nil
	case l.Hex != nil:
		mag, ok := new(big.Int).SetString((*l.Hex)[2:], 16)
		if !ok {
			return nil, cerr.New(cerr.KindSyntaxError, "invalid hex literal %q", *l.Hex)
		}
		return &ast.Literal{Kind: ast.LitInt, Mag: mag}, nil
	case l.Octal != nil:
		mag, ok := new(big.Int).SetString((*l.Octal)[2:], 8)
		if !ok {
			return nil, cerr.New(cerr.KindSyntaxError, "invalid octal literal %q", *l.Octal)
		}
		return &ast.Literal{Kind: ast.LitInt, Mag: mag}, nil
	case l.Float != nil:
		return &ast.Literal{Kind: ast.LitFloat, F: *l.Float}, nil
	case l.Int != nil:
		mag, ok := new(big.Int).SetString(*l.Int, 10)
		if !ok {
			return nil, cerr.New(cerr.KindSyntaxError, "invalid integer literal %q", *l.Int)
		}
		return &ast.Literal{Kind: ast.LitInt, Mag: mag}, nil
	case l.Str != nil:
		return &ast.Literal{Kind: ast.LitString, S: *l.Str}, nil
	default:
		return nil, cerr.New(cerr.KindSyntaxError, "empty literal")
	}
}
