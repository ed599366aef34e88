package executor

import (
	"context"

	"github.com/cypherdb/cypherdb/internal/ast"
	"github.com/cypherdb/cypherdb/internal/plan"
	"github.com/cypherdb/cypherdb/internal/value"
)

// aggregationIter groups input rows by the non-aggregate columns and
// reduces every aggregate column over each group, fully materializing its
// input — aggregation is inherently a blocking operator in the pull model
// (spec §4.3 Aggregation).
type aggregationIter struct {
	input   Iterator
	columns []plan.AggregationColumn
	ec      *EvalContext

	rows    []Row
	idx     int
	grouped bool
}

func (a *aggregationIter) Open(ctx context.Context) error { return a.input.Open(ctx) }

func (a *aggregationIter) Next(ctx context.Context) (Row, bool, error) {
	if !a.grouped {
		a.ec.Ctx = ctx
		if err := a.group(ctx); err != nil {
			return nil, false, err
		}
	}
	if a.idx >= len(a.rows) {
		return nil, false, nil
	}
	row := a.rows[a.idx]
	a.idx++
	return row, true, nil
}

func (a *aggregationIter) Close() error { return a.input.Close() }

type aggGroup struct {
	key   string
	keyV  map[string]value.Value
	accs  map[string]*accumulator
}

func (a *aggregationIter) group(ctx context.Context) error {
	groups := make(map[string]*aggGroup)
	var order []string

	var groupCols, aggCols []plan.AggregationColumn
	for _, c := range a.columns {
		if c.IsGroup {
			groupCols = append(groupCols, c)
		} else {
			aggCols = append(aggCols, c)
		}
	}

	for {
		row, ok, err := a.input.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		a.ec.Row = row
		keyParts := make(map[string]value.Value, len(groupCols))
		key := ""
		for _, gc := range groupCols {
			v, err := Eval(a.ec, gc.Expr)
			if err != nil {
				return err
			}
			keyParts[gc.Alias] = v
			key += v.String() + "\x1f"
		}
		g, ok := groups[key]
		if !ok {
			g = &aggGroup{key: key, keyV: keyParts, accs: make(map[string]*accumulator)}
			for _, ac := range aggCols {
				fc, _ := ac.Expr.(*ast.FunctionCall)
				g.accs[ac.Alias] = newAccumulator(fc)
			}
			groups[key] = g
			order = append(order, key)
		}
		for _, ac := range aggCols {
			fc, ok := ac.Expr.(*ast.FunctionCall)
			if !ok {
				continue
			}
			var arg value.Value
			if len(fc.Args) > 0 {
				v, err := Eval(a.ec, fc.Args[0])
				if err != nil {
					return err
				}
				arg = v
			}
			g.accs[ac.Alias].add(arg)
		}
	}

	if len(groups) == 0 && len(groupCols) == 0 {
		// No input rows and no grouping keys: aggregates still produce one
		// row (e.g. `RETURN count(*)` over an empty match is 0, not zero rows).
		row := Row{}
		for _, ac := range aggCols {
			fc, _ := ac.Expr.(*ast.FunctionCall)
			row[ac.Alias] = newAccumulator(fc).result()
		}
		a.rows = []Row{row}
		a.grouped = true
		return nil
	}

	for _, key := range order {
		g := groups[key]
		row := Row{}
		for k, v := range g.keyV {
			row[k] = v
		}
		for _, ac := range aggCols {
			row[ac.Alias] = g.accs[ac.Alias].result()
		}
		a.rows = append(a.rows, row)
	}
	a.grouped = true
	return nil
}

// accumulator reduces one aggregate function's argument stream.
type accumulator struct {
	name     string
	distinct bool
	countAll bool
	seen     map[string]bool

	count   int64
	sum     float64
	sumIsF  bool
	min, max value.Value
	haveMM  bool
	collect []value.Value
}

func newAccumulator(fc *ast.FunctionCall) *accumulator {
	a := &accumulator{seen: make(map[string]bool)}
	if fc != nil {
		a.name = fc.Name
		a.distinct = fc.Distinct
		a.countAll = fc.Star
	}
	return a
}

func (a *accumulator) add(v value.Value) {
	if a.distinct {
		sig := v.String()
		if a.seen[sig] {
			return
		}
		a.seen[sig] = true
	}
	switch a.name {
	case "COUNT":
		if !a.countAll && v.IsNull() {
			return
		}
		a.count++
	case "SUM", "AVG":
		if v.IsNull() {
			return
		}
		if v.Kind == value.Float {
			a.sumIsF = true
		}
		a.sum += asFloat64(v)
		a.count++
	case "MIN":
		if v.IsNull() {
			return
		}
		if !a.haveMM {
			a.min, a.haveMM = v, true
			return
		}
		if cmp, ok := value.Compare(v, a.min); ok && cmp < 0 {
			a.min = v
		}
	case "MAX":
		if v.IsNull() {
			return
		}
		if !a.haveMM {
			a.max, a.haveMM = v, true
			return
		}
		if cmp, ok := value.Compare(v, a.max); ok && cmp > 0 {
			a.max = v
		}
	case "COLLECT":
		if v.IsNull() {
			return
		}
		a.collect = append(a.collect, v)
	}
}

func (a *accumulator) result() value.Value {
	switch a.name {
	case "COUNT":
		return value.IntValue(a.count)
	case "SUM":
		if a.sumIsF {
			return value.FloatValue(a.sum)
		}
		return value.IntValue(int64(a.sum))
	case "AVG":
		if a.count == 0 {
			return value.NullValue
		}
		return value.FloatValue(a.sum / float64(a.count))
	case "MIN":
		if !a.haveMM {
			return value.NullValue
		}
		return a.min
	case "MAX":
		if !a.haveMM {
			return value.NullValue
		}
		return a.max
	case "COLLECT":
		if a.collect == nil {
			return value.ListValue(nil)
		}
		return value.ListValue(a.collect)
	default:
		return value.NullValue
	}
}
