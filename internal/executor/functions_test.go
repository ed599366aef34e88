package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherdb/cypherdb/internal/ast"
	"github.com/cypherdb/cypherdb/internal/value"
)

func call(name string, args ...ast.Expr) *ast.FunctionCall {
	return &ast.FunctionCall{Name: name, Args: args}
}

func TestCallScalarSizeOnString(t *testing.T) {
	v, err := callScalar(evalCtx(nil), call("SIZE", strLit("hello")))
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.I)
}

func TestCallScalarHeadAndTailOnList(t *testing.T) {
	list := &ast.ListLiteral{Items: []ast.Expr{intLit(1), intLit(2), intLit(3)}}
	head, err := callScalar(evalCtx(nil), call("HEAD", list))
	require.NoError(t, err)
	assert.Equal(t, int64(1), head.I)

	tail, err := callScalar(evalCtx(nil), call("TAIL", list))
	require.NoError(t, err)
	require.Len(t, tail.L, 2)
	assert.Equal(t, int64(2), tail.L[0].I)
}

func TestCallScalarRangeWithStep(t *testing.T) {
	v, err := callScalar(evalCtx(nil), call("RANGE", intLit(0), intLit(10), intLit(2)))
	require.NoError(t, err)
	require.Len(t, v.L, 6)
	assert.Equal(t, int64(8), v.L[4].I)
}

func TestCallScalarToIntegerFromString(t *testing.T) {
	v, err := callScalar(evalCtx(nil), call("TOINTEGER", strLit("42")))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.I)
}

func TestCallScalarToIntegerFromUnparsableStringIsNull(t *testing.T) {
	v, err := callScalar(evalCtx(nil), call("TOINTEGER", strLit("nope")))
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestCallScalarSubstringWithLength(t *testing.T) {
	v, err := callScalar(evalCtx(nil), call("SUBSTRING", strLit("hello world"), intLit(6), intLit(5)))
	require.NoError(t, err)
	assert.Equal(t, "world", v.S)
}

func TestCallScalarSubstringClampsOutOfRange(t *testing.T) {
	v, err := callScalar(evalCtx(nil), call("SUBSTRING", strLit("hi"), intLit(10)))
	require.NoError(t, err)
	assert.Equal(t, "", v.S)
}

func TestCallScalarReplaceAndSplit(t *testing.T) {
	rep, err := callScalar(evalCtx(nil), call("REPLACE", strLit("a,b,c"), strLit(","), strLit(";")))
	require.NoError(t, err)
	assert.Equal(t, "a;b;c", rep.S)

	sp, err := callScalar(evalCtx(nil), call("SPLIT", strLit("a,b,c"), strLit(",")))
	require.NoError(t, err)
	require.Len(t, sp.L, 3)
	assert.Equal(t, "b", sp.L[1].S)
}

func TestCallScalarCoalesceReturnsFirstNonNull(t *testing.T) {
	v, err := callScalar(evalCtx(nil), call("COALESCE", &ast.Literal{Kind: ast.LitNull}, strLit("fallback")))
	require.NoError(t, err)
	assert.Equal(t, "fallback", v.S)
}

func TestCallScalarLabelsRequiresNode(t *testing.T) {
	_, err := callScalar(evalCtx(nil), call("LABELS", intLit(1)))
	require.Error(t, err)
}

func TestCallScalarWrongArityErrors(t *testing.T) {
	_, err := callScalar(evalCtx(nil), call("SIZE"))
	assert.Error(t, err)
}

func TestCallScalarHasLabelMarker(t *testing.T) {
	n := value.NodeValue(value.NodeRef{ID: 1, Labels: []string{"Person"}})
	row := Row{"n": n}
	v, err := callScalar(evalCtx(row), call("_HASLABEL", &ast.Variable{Name: "n"}, strLit("Person")))
	require.NoError(t, err)
	assert.True(t, v.B)

	v, err = callScalar(evalCtx(row), call("_HASLABEL", &ast.Variable{Name: "n"}, strLit("Company")))
	require.NoError(t, err)
	assert.False(t, v.B)
}
