package executor

import (
	"github.com/cypherdb/cypherdb/internal/cerr"
	"github.com/cypherdb/cypherdb/internal/graph"
	"github.com/cypherdb/cypherdb/internal/plan"
	"github.com/cypherdb/cypherdb/internal/value"
)

// Build turns a logical plan.Op tree into a runtime Iterator tree, one
// concrete iterator per Op, wiring every leaf scan to g and every
// expression-evaluating node to a shared EvalContext. seed carries any
// outer-scope bindings a correlated subquery's leaf scans should bind to
// directly instead of rescanning the graph (spec §4.7 EXISTS{}/COUNT{}).
func Build(op plan.Op, g graph.Store, params map[string]value.Value, seed Row) (Iterator, error) {
	ec := &EvalContext{Params: params, Store: g}
	return build(op, g, ec, seed)
}

func build(op plan.Op, g graph.Store, ec *EvalContext, seed Row) (Iterator, error) {
	children := op.Children()
	var kids []Iterator
	for _, k := range children {
		it, err := build(k, g, ec, seed)
		if err != nil {
			return nil, err
		}
		kids = append(kids, it)
	}

	switch n := op.(type) {
	case *plan.AllNodesScan:
		return &allNodesScan{g: g, varr: n.Var, seed: seed}, nil
	case *plan.LabelScan:
		return &labelScan{g: g, varr: n.Var, label: n.Label, seed: seed}, nil
	case *plan.NodeByIDSeek:
		return &nodeByIDSeek{g: g, varr: n.Var, id: n.ID, ec: ec, seed: seed}, nil
	case *plan.OptionalScan:
		return &optionalScanIter{input: kids[0], vars: n.Vars}, nil
	case *plan.OptionalExpand:
		return &optionalExpandIter{expandIter: expandIter{
			g: g, input: kids[0], from: n.From, relVar: n.RelVar, toVar: n.ToVar,
			types: n.Types, dir: n.Direction, minHops: n.MinHops, maxHops: n.MaxHops,
		}}, nil
	case *plan.Expand:
		return &expandIter{
			g: g, input: kids[0], from: n.From, relVar: n.RelVar, toVar: n.ToVar,
			types: n.Types, dir: n.Direction, minHops: n.MinHops, maxHops: n.MaxHops,
		}, nil
	case *plan.Filter:
		return &filterIter{input: kids[0], predicate: n.Predicate, ec: ec}, nil
	case *plan.Projection:
		return &projectionIter{input: kids[0], columns: n.Columns, discard: n.Discard, distinct: n.Distinct, ec: ec}, nil
	case *plan.Aggregation:
		return &aggregationIter{input: kids[0], columns: n.Columns, ec: ec}, nil
	case *plan.Sort:
		return &sortIter{input: kids[0], keys: n.Keys, ec: ec}, nil
	case *plan.Skip:
		return &skipIter{input: kids[0], count: n.Count, ec: ec}, nil
	case *plan.Limit:
		return &limitIter{input: kids[0], count: n.Count, ec: ec}, nil
	case *plan.Unwind:
		return &unwindIter{input: kids[0], expr: n.Expr, alias: n.Alias, ec: ec}, nil
	case *plan.Create:
		return &createIter{input: kids[0], nodes: n.Nodes, rels: n.Rels, g: g, ec: ec}, nil
	case *plan.Merge:
		return &mergeIter{input: kids[0], pattern: n.Pattern, onCreate: n.OnCreate, onMatch: n.OnMatch, g: g, ec: ec}, nil
	case *plan.SetOp:
		return &setIter{input: kids[0], items: n.Items, g: g, ec: ec}, nil
	case *plan.RemoveOp:
		return &removeIter{input: kids[0], items: n.Items, g: g}, nil
	case *plan.DeleteOp:
		return &deleteIter{input: kids[0], vars: n.Variables, detach: n.Detach, g: g, ec: ec}, nil
	case *plan.CartesianProduct:
		return &cartesianIter{left: kids[0], right: kids[1]}, nil
	case *plan.ValueHashJoin:
		return &hashJoinIter{left: kids[0], right: kids[1], leftKey: n.LeftKey, rightKey: n.RightKey, ec: ec}, nil
	default:
		return nil, cerr.New(cerr.KindInternalError, "build: unhandled plan operator %T", op)
	}
}
