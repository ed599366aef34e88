package ast

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLiteralStringFormatsEachKind(t *testing.T) {
	assert.Equal(t, "null", (&Literal{Kind: LitNull}).String())
	assert.Equal(t, "true", (&Literal{Kind: LitBool, B: true}).String())
	assert.Equal(t, "42", (&Literal{Kind: LitInt, Mag: big.NewInt(42)}).String())
	assert.Equal(t, `"hi"`, (&Literal{Kind: LitString, S: "hi"}).String())
}

func TestBinaryOpStringIsFullyParenthesized(t *testing.T) {
	expr := &BinaryOp{Op: "+", Left: &Variable{Name: "a"}, Right: &Variable{Name: "b"}}
	assert.Equal(t, "(a + b)", expr.String())
}

func TestUnaryOpString(t *testing.T) {
	expr := &UnaryOp{Op: "NOT", Operand: &Variable{Name: "x"}}
	assert.Equal(t, "(NOT x)", expr.String())
}

func TestPropertyAccessString(t *testing.T) {
	expr := &PropertyAccess{Target: &Variable{Name: "n"}, Property: "name"}
	assert.Equal(t, "n.name", expr.String())
}

func TestFunctionCallStringWithDistinctAndStar(t *testing.T) {
	plain := &FunctionCall{Name: "COUNT", Args: []Expr{&Variable{Name: "n"}}}
	assert.Equal(t, "COUNT(n)", plain.String())

	distinct := &FunctionCall{Name: "COUNT", Args: []Expr{&Variable{Name: "n"}}, Distinct: true}
	assert.Equal(t, "COUNT(DISTINCT n)", distinct.String())

	star := &FunctionCall{Name: "COUNT", Star: true}
	assert.Equal(t, "COUNT(*)", star.String())
}

func TestListAndMapLiteralString(t *testing.T) {
	list := &ListLiteral{Items: []Expr{&Variable{Name: "a"}, &Variable{Name: "b"}}}
	assert.Equal(t, "[a, b]", list.String())

	m := &MapLiteral{Keys: []string{"x"}, Values: []Expr{&Variable{Name: "a"}}}
	assert.Equal(t, "{x: a}", m.String())
}

func TestCaseExprStringIncludesElseAndEnd(t *testing.T) {
	expr := &CaseExpr{
		Test: &Variable{Name: "x"},
		Alternatives: []CaseAlternative{
			{When: &Literal{Kind: LitInt, Mag: big.NewInt(1)}, Then: &Variable{Name: "a"}},
		},
		Else: &Variable{Name: "b"},
	}
	s := expr.String()
	assert.Contains(t, s, "CASE x")
	assert.Contains(t, s, "WHEN 1 THEN a")
	assert.Contains(t, s, "ELSE b")
	assert.Contains(t, s, "END")
}

func TestVariableAndWildcardAndParameterString(t *testing.T) {
	assert.Equal(t, "n", (&Variable{Name: "n"}).String())
	assert.Equal(t, "*", (&Wildcard{}).String())
	assert.Equal(t, "$p", (&Parameter{Name: "p"}).String())
}
