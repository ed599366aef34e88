package optimizer

import "github.com/cypherdb/cypherdb/internal/ast"
import "github.com/cypherdb/cypherdb/internal/plan"

// boundVars collects every variable name a plan subtree introduces, so a
// rewrite rule can tell which side of a join a predicate clause belongs to.
func boundVars(op plan.Op) map[string]bool {
	out := make(map[string]bool)
	collectVars(op, out)
	return out
}

func collectVars(op plan.Op, out map[string]bool) {
	switch n := op.(type) {
	case *plan.AllNodesScan:
		out[n.Var] = true
	case *plan.LabelScan:
		out[n.Var] = true
	case *plan.NodeByIDSeek:
		out[n.Var] = true
	case *plan.Expand:
		if n.RelVar != "" {
			out[n.RelVar] = true
		}
		out[n.ToVar] = true
	case *plan.OptionalExpand:
		// n.Expand shares n's Kids (optimizer.withChildren keeps both in
		// sync), so this already walks the whole child subtree once;
		// falling through to the generic loop below would walk it again.
		collectVars(&n.Expand, out)
		return
	case *plan.Unwind:
		out[n.Alias] = true
	case *plan.Projection:
		for _, c := range n.Columns {
			out[c.Alias] = true
		}
	case *plan.Aggregation:
		for _, c := range n.Columns {
			out[c.Alias] = true
		}
	}
	for _, k := range op.Children() {
		collectVars(k, out)
	}
}

// exprVars collects the set of variable names e's evaluation reads.
func exprVars(e ast.Expr) map[string]bool {
	out := make(map[string]bool)
	walkExprVars(e, out)
	return out
}

func walkExprVars(e ast.Expr, out map[string]bool) {
	switch n := e.(type) {
	case *ast.Variable:
		out[n.Name] = true
	case *ast.PropertyAccess:
		walkExprVars(n.Target, out)
	case *ast.BinaryOp:
		walkExprVars(n.Left, out)
		walkExprVars(n.Right, out)
	case *ast.UnaryOp:
		walkExprVars(n.Operand, out)
	case *ast.FunctionCall:
		for _, a := range n.Args {
			walkExprVars(a, out)
		}
	case *ast.ListLiteral:
		for _, it := range n.Items {
			walkExprVars(it, out)
		}
	case *ast.MapLiteral:
		for _, v := range n.Values {
			walkExprVars(v, out)
		}
	case *ast.CaseExpr:
		if n.Test != nil {
			walkExprVars(n.Test, out)
		}
		for _, alt := range n.Alternatives {
			walkExprVars(alt.When, out)
			walkExprVars(alt.Then, out)
		}
		if n.Else != nil {
			walkExprVars(n.Else, out)
		}
	}
}

func subsetOf(refs, bound map[string]bool) bool {
	for v := range refs {
		if !bound[v] {
			return false
		}
	}
	return true
}

// splitConjunction flattens a chain of AND expressions into its leaves, so
// pushdown can relocate each conjunct independently. A non-AND expression
// splits to itself.
func splitConjunction(e ast.Expr) []ast.Expr {
	bop, ok := e.(*ast.BinaryOp)
	if !ok || bop.Op != "AND" {
		return []ast.Expr{e}
	}
	return append(splitConjunction(bop.Left), splitConjunction(bop.Right)...)
}

// joinConjunction is splitConjunction's inverse: rebuilds a left-deep AND
// chain from a clause list (the caller has already guaranteed len > 0).
func joinConjunction(clauses []ast.Expr) ast.Expr {
	out := clauses[0]
	for _, c := range clauses[1:] {
		out = &ast.BinaryOp{Op: "AND", Left: out, Right: c}
	}
	return out
}
