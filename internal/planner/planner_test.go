package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherdb/cypherdb/internal/parser"
	"github.com/cypherdb/cypherdb/internal/plan"
)

func planText(t *testing.T, text string) plan.Op {
	t.Helper()
	q, err := parser.Parse(text)
	require.NoError(t, err)
	op, err := New().Plan(q)
	require.NoError(t, err)
	return op
}

func TestPlanSimpleLabelScanAndReturn(t *testing.T) {
	op := planText(t, `MATCH (n:Person) RETURN n.name AS name`)
	proj, ok := op.(*plan.Projection)
	require.True(t, ok)
	require.Len(t, proj.Children(), 1)
	_, ok = proj.Children()[0].(*plan.LabelScan)
	assert.True(t, ok)
}

func TestPlanSingleHopExpand(t *testing.T) {
	op := planText(t, `MATCH (a:Person)-[:KNOWS]->(b:Person) RETURN a, b`)
	proj, ok := op.(*plan.Projection)
	require.True(t, ok)
	expand, ok := proj.Children()[0].(*plan.Expand)
	require.True(t, ok)
	assert.Equal(t, []string{"KNOWS"}, expand.Types)
	assert.Equal(t, 1, expand.MinHops)
	assert.Equal(t, 1, expand.MaxHops)
}

func TestPlanVariableLengthExpand(t *testing.T) {
	op := planText(t, `MATCH (a)-[:KNOWS*2..4]->(b) RETURN b`)
	proj := op.(*plan.Projection)
	expand := proj.Children()[0].(*plan.Expand)
	assert.Equal(t, 2, expand.MinHops)
	assert.Equal(t, 4, expand.MaxHops)
}

func TestPlanOptionalMatchProducesOptionalExpand(t *testing.T) {
	op := planText(t, `MATCH (n:Person) OPTIONAL MATCH (n)-[:KNOWS]->(m) RETURN n, m`)
	proj := op.(*plan.Projection)
	_, ok := proj.Children()[0].(*plan.OptionalExpand)
	assert.True(t, ok)
}

func TestPlanStandaloneOptionalMatchProducesOptionalScanWithWhereInside(t *testing.T) {
	op := planText(t, `OPTIONAL MATCH (p:Person) WHERE p.age > 999 RETURN p`)
	proj := op.(*plan.Projection)
	scan, ok := proj.Children()[0].(*plan.OptionalScan)
	require.True(t, ok)
	assert.Equal(t, []string{"p"}, scan.Vars)
	_, ok = scan.Children()[0].(*plan.Filter)
	assert.True(t, ok, "WHERE must be evaluated inside the optional scan, before null-padding")
}

func TestPlanWhereProducesFilter(t *testing.T) {
	op := planText(t, `MATCH (n:Person) WHERE n.age > 18 RETURN n`)
	proj := op.(*plan.Projection)
	_, ok := proj.Children()[0].(*plan.Filter)
	assert.True(t, ok)
}

func TestPlanCreateClause(t *testing.T) {
	op := planText(t, `CREATE (n:Person {name: "Ada"})`)
	_, ok := op.(*plan.Create)
	assert.True(t, ok)
}

func TestPlanMergeClause(t *testing.T) {
	op := planText(t, `MERGE (n:Person {name: "Ada"}) ON CREATE SET n.new = true`)
	_, ok := op.(*plan.Merge)
	assert.True(t, ok)
}

func TestPlanAggregationForCountStar(t *testing.T) {
	op := planText(t, `MATCH (n:Person) RETURN count(n) AS c`)
	_, ok := op.(*plan.Aggregation)
	assert.True(t, ok)
}

func TestPlanOrderBySkipLimit(t *testing.T) {
	op := planText(t, `MATCH (n:Person) RETURN n ORDER BY n.name SKIP 1 LIMIT 10`)
	_, ok := op.(*plan.Limit)
	require.True(t, ok)
	skip := op.Children()[0]
	_, ok = skip.(*plan.Skip)
	require.True(t, ok)
	sort := skip.Children()[0]
	_, ok = sort.(*plan.Sort)
	assert.True(t, ok)
}

func TestPlanRejectsVariableReboundWithConflictingType(t *testing.T) {
	q, err := parser.Parse(`MATCH (n:Person)-[n]->(m) RETURN n`)
	require.NoError(t, err)
	_, err = New().Plan(q)
	assert.Error(t, err)
}

func TestPlanUnwindClause(t *testing.T) {
	op := planText(t, `UNWIND [1, 2, 3] AS x RETURN x`)
	proj := op.(*plan.Projection)
	_, ok := proj.Children()[0].(*plan.Unwind)
	assert.True(t, ok)
}
