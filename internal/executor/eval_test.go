package executor

import (
	"context"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherdb/cypherdb/internal/ast"
	"github.com/cypherdb/cypherdb/internal/cerr"
	"github.com/cypherdb/cypherdb/internal/value"
)

func intLit(n int64) *ast.Literal {
	return &ast.Literal{Kind: ast.LitInt, Mag: big.NewInt(n)}
}

func strLit(s string) *ast.Literal {
	return &ast.Literal{Kind: ast.LitString, S: s}
}

func evalCtx(row Row) *EvalContext {
	return &EvalContext{Ctx: context.Background(), Row: row, Params: map[string]value.Value{}}
}

func TestEvalArithmeticIntPreservesType(t *testing.T) {
	v, err := Eval(evalCtx(nil), &ast.BinaryOp{Op: "+", Left: intLit(2), Right: intLit(3)})
	require.NoError(t, err)
	assert.Equal(t, value.Int, v.Kind)
	assert.Equal(t, int64(5), v.I)
}

func TestEvalIntDivisionByZero(t *testing.T) {
	_, err := Eval(evalCtx(nil), &ast.BinaryOp{Op: "/", Left: intLit(1), Right: intLit(0)})
	require.Error(t, err)
	kind, ok := cerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, cerr.KindDivisionByZero, kind)
}

func TestEvalIntAdditionOverflow(t *testing.T) {
	big1 := &ast.Literal{Kind: ast.LitInt, Mag: big.NewInt(math.MaxInt64)}
	_, err := Eval(evalCtx(nil), &ast.BinaryOp{Op: "+", Left: big1, Right: intLit(1)})
	require.Error(t, err)
	kind, ok := cerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, cerr.KindOverflow, kind)
}

func TestEvalIntDivisionPromotesToFloatOnRemainder(t *testing.T) {
	v, err := Eval(evalCtx(nil), &ast.BinaryOp{Op: "/", Left: intLit(7), Right: intLit(2)})
	require.NoError(t, err)
	assert.Equal(t, value.Float, v.Kind)
	assert.InDelta(t, 3.5, v.F, 1e-9)
}

func TestEvalStringConcatenation(t *testing.T) {
	v, err := Eval(evalCtx(nil), &ast.BinaryOp{Op: "+", Left: strLit("foo"), Right: strLit("bar")})
	require.NoError(t, err)
	assert.Equal(t, "foobar", v.S)
}

func TestEvalAndShortCircuitsOnFalseWithoutErroringOnRight(t *testing.T) {
	// Right side would raise DivisionByZero if evaluated; AND with a false
	// left must short-circuit to false without evaluating it.
	badRight := &ast.BinaryOp{Op: "/", Left: intLit(1), Right: intLit(0)}
	v, err := Eval(evalCtx(nil), &ast.BinaryOp{
		Op:    "AND",
		Left:  &ast.Literal{Kind: ast.LitBool, B: false},
		Right: badRight,
	})
	require.NoError(t, err)
	assert.False(t, v.B)
}

func TestEvalAndWithNullAndTrueIsNull(t *testing.T) {
	v, err := Eval(evalCtx(nil), &ast.BinaryOp{
		Op:    "AND",
		Left:  &ast.Literal{Kind: ast.LitNull},
		Right: &ast.Literal{Kind: ast.LitBool, B: true},
	})
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestEvalComparisonWithNullIsNull(t *testing.T) {
	v, err := Eval(evalCtx(nil), &ast.BinaryOp{Op: "<", Left: intLit(1), Right: &ast.Literal{Kind: ast.LitNull}})
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestEvalInOperator(t *testing.T) {
	list := &ast.ListLiteral{Items: []ast.Expr{intLit(1), intLit(2), intLit(3)}}
	v, err := Eval(evalCtx(nil), &ast.BinaryOp{Op: "IN", Left: intLit(2), Right: list})
	require.NoError(t, err)
	assert.True(t, v.B)

	v, err = Eval(evalCtx(nil), &ast.BinaryOp{Op: "IN", Left: intLit(9), Right: list})
	require.NoError(t, err)
	assert.False(t, v.B)
}

func TestEvalPropertyAccessOnNull(t *testing.T) {
	v, err := Eval(evalCtx(nil), &ast.PropertyAccess{Target: &ast.Literal{Kind: ast.LitNull}, Property: "name"})
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestEvalUnaryMinusOnLiteralIntMin(t *testing.T) {
	lit := &ast.Literal{Kind: ast.LitInt, Mag: new(big.Int).Abs(big.NewInt(math.MinInt64))}
	v, err := Eval(evalCtx(nil), &ast.UnaryOp{Op: "-", Operand: lit})
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), v.I)
}

func TestEvalCaseSimpleForm(t *testing.T) {
	expr := &ast.CaseExpr{
		Test: intLit(2),
		Alternatives: []ast.CaseAlternative{
			{When: intLit(1), Then: strLit("one")},
			{When: intLit(2), Then: strLit("two")},
		},
		Else: strLit("other"),
	}
	v, err := Eval(evalCtx(nil), expr)
	require.NoError(t, err)
	assert.Equal(t, "two", v.S)
}

func TestEvalCaseGenericFormFallsThroughToElse(t *testing.T) {
	expr := &ast.CaseExpr{
		Alternatives: []ast.CaseAlternative{
			{When: &ast.Literal{Kind: ast.LitBool, B: false}, Then: strLit("no")},
		},
		Else: strLit("fallback"),
	}
	v, err := Eval(evalCtx(nil), expr)
	require.NoError(t, err)
	assert.Equal(t, "fallback", v.S)
}

func TestEvalVariableAndMapLiteral(t *testing.T) {
	row := Row{"n": value.IntValue(42)}
	m := &ast.MapLiteral{Keys: []string{"x"}, Values: []ast.Expr{&ast.Variable{Name: "n"}}}
	v, err := Eval(evalCtx(row), m)
	require.NoError(t, err)
	got, ok := v.M.Get("x")
	require.True(t, ok)
	assert.Equal(t, int64(42), got.I)
}
