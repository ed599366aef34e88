package executor

import (
	"context"

	"github.com/cypherdb/cypherdb/internal/ast"
	"github.com/cypherdb/cypherdb/internal/graph"
	"github.com/cypherdb/cypherdb/internal/plan"
	"github.com/cypherdb/cypherdb/internal/value"
)

// ResultSet is a fully materialized query result: the RETURN column order
// (empty for a write-only query with no RETURN clause) and the rows
// produced, in order. Grounded on the teacher's single-shot Result
// contract (internal/result.Result), generalized from one fixed result
// kind into an ordered row stream.
type ResultSet struct {
	Columns []string
	Rows    []Row
}

// Execute runs a fully planned query to completion against g, pulling
// every row from the operator tree built by internal/executor.Build.
// Mutation operators (Create/Merge/SetOp/RemoveOp/DeleteOp) perform their
// side effects as rows are pulled, the same as any other iterator —
// Cypher has no separate "apply" phase.
func Execute(ctx context.Context, op plan.Op, g graph.Store, params map[string]value.Value, columns []string) (*ResultSet, error) {
	it, err := Build(op, g, params, nil)
	if err != nil {
		return nil, err
	}
	if err := it.Open(ctx); err != nil {
		return nil, err
	}
	defer it.Close()

	rs := &ResultSet{Columns: columns}
	for {
		row, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, nil
}

// Project renders one row down to its RETURN/WITH columns in declared
// order, for callers (the embedding API, cmd/cli, cmd/server) that only
// care about the final projected shape rather than the full binding set.
func (rs *ResultSet) Project() [][]value.Value {
	out := make([][]value.Value, len(rs.Rows))
	for i, row := range rs.Rows {
		vals := make([]value.Value, len(rs.Columns))
		for j, c := range rs.Columns {
			vals[j] = row.Get(c)
		}
		out[i] = vals
	}
	return out
}

// ResultColumns extracts the final projected column list from a planned
// query's AST, used by the embedding API to label ResultSet.Project rows
// without re-walking the plan tree.
func ResultColumns(q *ast.Query) []string {
	for i := len(q.Clauses) - 1; i >= 0; i-- {
		switch c := q.Clauses[i].(type) {
		case *ast.ReturnClause:
			return projectionNames(c.Items, c.Star)
		}
	}
	return nil
}

func projectionNames(items []ast.ProjectionItem, star bool) []string {
	var names []string
	if star {
		// Star without a preceding WITH can only be resolved against the
		// TypeContext at plan time; the planner records it on the final
		// Projection/Aggregation columns instead, so callers should read
		// ResultSet.Columns as populated by the planner when Star is set.
		return nil
	}
	for _, it := range items {
		if it.Alias != "" {
			names = append(names, it.Alias)
		} else {
			names = append(names, it.Expr.String())
		}
	}
	return names
}
