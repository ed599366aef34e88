package executor

import (
	"github.com/cypherdb/cypherdb/internal/ast"
	"github.com/cypherdb/cypherdb/internal/planner"
	"github.com/cypherdb/cypherdb/internal/value"
)

// runSubquery plans and runs q with the outer row's bindings seeded in, so
// a correlated pattern like `EXISTS { (a)-[:KNOWS]->(b) }` resolves `a` to
// the value already bound in the enclosing scope instead of rescanning
// every node (spec §3.3 EXISTS{}/COUNT{} subqueries).
func runSubquery(c *EvalContext, q *ast.Query, limit int) (int, error) {
	p := planner.New()
	op, err := p.Plan(q)
	if err != nil {
		return 0, err
	}
	it, err := Build(op, c.Store, c.Params, c.Row)
	if err != nil {
		return 0, err
	}
	if err := it.Open(c.Ctx); err != nil {
		return 0, err
	}
	defer it.Close()

	count := 0
	for {
		_, ok, err := it.Next(c.Ctx)
		if err != nil {
			return count, err
		}
		if !ok {
			return count, nil
		}
		count++
		if limit > 0 && count >= limit {
			return count, nil
		}
	}
}

func evalExists(c *EvalContext, n *ast.ExistsSubquery) (value.Value, error) {
	count, err := runSubquery(c, n.Query, 1)
	if err != nil {
		return value.NullValue, err
	}
	return value.BoolValue(count > 0), nil
}

func evalCount(c *EvalContext, n *ast.CountSubquery) (value.Value, error) {
	count, err := runSubquery(c, n.Query, 0)
	if err != nil {
		return value.NullValue, err
	}
	return value.IntValue(int64(count)), nil
}
