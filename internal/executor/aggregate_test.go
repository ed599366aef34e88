package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cypherdb/cypherdb/internal/ast"
	"github.com/cypherdb/cypherdb/internal/value"
)

func TestAccumulatorCountStar(t *testing.T) {
	a := newAccumulator(&ast.FunctionCall{Name: "COUNT", Star: true})
	a.add(value.NullValue)
	a.add(value.IntValue(1))
	assert.Equal(t, int64(2), a.result().I)
}

func TestAccumulatorCountSkipsNullWhenNotStar(t *testing.T) {
	a := newAccumulator(&ast.FunctionCall{Name: "COUNT"})
	a.add(value.NullValue)
	a.add(value.IntValue(1))
	a.add(value.IntValue(2))
	assert.Equal(t, int64(2), a.result().I)
}

func TestAccumulatorSumKeepsIntWhenAllInt(t *testing.T) {
	a := newAccumulator(&ast.FunctionCall{Name: "SUM"})
	a.add(value.IntValue(2))
	a.add(value.IntValue(3))
	r := a.result()
	assert.Equal(t, value.Int, r.Kind)
	assert.Equal(t, int64(5), r.I)
}

func TestAccumulatorSumPromotesToFloat(t *testing.T) {
	a := newAccumulator(&ast.FunctionCall{Name: "SUM"})
	a.add(value.IntValue(2))
	a.add(value.FloatValue(1.5))
	r := a.result()
	assert.Equal(t, value.Float, r.Kind)
	assert.InDelta(t, 3.5, r.F, 1e-9)
}

func TestAccumulatorAvgOfEmptyGroupIsNull(t *testing.T) {
	a := newAccumulator(&ast.FunctionCall{Name: "AVG"})
	assert.True(t, a.result().IsNull())
}

func TestAccumulatorMinMax(t *testing.T) {
	min := newAccumulator(&ast.FunctionCall{Name: "MIN"})
	max := newAccumulator(&ast.FunctionCall{Name: "MAX"})
	for _, v := range []int64{5, 1, 9, 3} {
		min.add(value.IntValue(v))
		max.add(value.IntValue(v))
	}
	assert.Equal(t, int64(1), min.result().I)
	assert.Equal(t, int64(9), max.result().I)
}

func TestAccumulatorDistinctCollapsesDuplicates(t *testing.T) {
	a := newAccumulator(&ast.FunctionCall{Name: "COUNT", Distinct: true})
	a.add(value.IntValue(1))
	a.add(value.IntValue(1))
	a.add(value.IntValue(2))
	assert.Equal(t, int64(2), a.result().I)
}

func TestAccumulatorCollectSkipsNullsAndPreservesOrder(t *testing.T) {
	a := newAccumulator(&ast.FunctionCall{Name: "COLLECT"})
	a.add(value.IntValue(1))
	a.add(value.NullValue)
	a.add(value.IntValue(2))
	r := a.result()
	require := assert.New(t)
	require.Len(r.L, 2)
	require.Equal(int64(1), r.L[0].I)
	require.Equal(int64(2), r.L[1].I)
}

func TestAccumulatorCollectOfNoValuesIsEmptyListNotNull(t *testing.T) {
	a := newAccumulator(&ast.FunctionCall{Name: "COLLECT"})
	r := a.result()
	assert.Equal(t, value.List, r.Kind)
	assert.Empty(t, r.L)
}
