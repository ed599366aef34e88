package ast

import (
	"fmt"
	"math/big"
	"strings"
)

// Expr is any Cypher expression node. Most implementations render a
// structural String(); ExistsSubquery, CountSubquery and PathExpr render
// a fixed placeholder. No Hash method is defined.
type Expr interface {
	String() string
	exprNode()
}

// LiteralKind tags the scalar kind of a Literal node.
type LiteralKind int

const (
	LitNull LiteralKind = iota
	LitBool
	LitInt
	LitFloat
	LitString
)

// Literal is a constant scalar parsed directly from source text.
//
// Integer magnitude is kept as a big.Int, always non-negative: a leading
// `-` in source is a UnaryOp negation wrapping this literal, never part of
// the literal itself. This lets `-0x8000000000000000` evaluate to
// INT64_MIN while the bare positive form overflows at evaluation, not
// parse, time (spec §4.1).
type Literal struct {
	Kind LiteralKind
	B    bool
	Mag  *big.Int
	F    float64
	S    string
}

func (l *Literal) exprNode() {}
func (l *Literal) String() string {
	switch l.Kind {
	case LitNull:
		return "null"
	case LitBool:
		return fmt.Sprintf("%v", l.B)
	case LitInt:
		return l.Mag.String()
	case LitFloat:
		return fmt.Sprintf("%g", l.F)
	case LitString:
		return fmt.Sprintf("%q", l.S)
	default:
		return "?lit"
	}
}

// Variable references a bound name: `n`, `r`, `p`.
type Variable struct {
	Name string
}

func (v *Variable) exprNode() {}
func (v *Variable) String() string { return v.Name }

// Wildcard is the bare `*` used in `RETURN *` / `WITH *`.
type Wildcard struct{}

func (w *Wildcard) exprNode() {}
func (w *Wildcard) String() string { return "*" }

// PropertyAccess reads a property off a bound variable: `n.name`.
type PropertyAccess struct {
	Target   Expr
	Property string
}

func (p *PropertyAccess) exprNode() {}
func (p *PropertyAccess) String() string { return p.Target.String() + "." + p.Property }

// Parameter references a query parameter: `$name`.
type Parameter struct {
	Name string
}

func (p *Parameter) exprNode() {}
func (p *Parameter) String() string { return "$" + p.Name }

// BinaryOp is any two-operand operator: arithmetic, comparison, boolean,
// string, or list membership (`IN`).
type BinaryOp struct {
	Op    string
	Left  Expr
	Right Expr
}

func (b *BinaryOp) exprNode() {}
func (b *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op, b.Right.String())
}

// UnaryOp is a one-operand prefix operator: `NOT`, unary `-`, `IS NULL`,
// `IS NOT NULL`.
type UnaryOp struct {
	Op      string
	Operand Expr
}

func (u *UnaryOp) exprNode() {}
func (u *UnaryOp) String() string { return fmt.Sprintf("(%s %s)", u.Op, u.Operand.String()) }

// FunctionCall is a scalar or aggregate function application.
type FunctionCall struct {
	Name     string // canonicalised uppercase
	Args     []Expr
	Distinct bool
	Star     bool // true for count(*); Args is empty in that case
}

func (f *FunctionCall) exprNode() {}
func (f *FunctionCall) String() string {
	if f.Star {
		return f.Name + "(*)"
	}
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	distinct := ""
	if f.Distinct {
		distinct = "DISTINCT "
	}
	return fmt.Sprintf("%s(%s%s)", f.Name, distinct, strings.Join(parts, ", "))
}

// ListLiteral is an inline `[a, b, c]` expression.
type ListLiteral struct {
	Items []Expr
}

func (l *ListLiteral) exprNode() {}
func (l *ListLiteral) String() string {
	parts := make([]string, len(l.Items))
	for i, it := range l.Items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// MapLiteral is an inline `{key: expr, ...}` expression.
type MapLiteral struct {
	Keys   []string
	Values []Expr
}

func (m *MapLiteral) exprNode() {}
func (m *MapLiteral) String() string {
	parts := make([]string, len(m.Keys))
	for i, k := range m.Keys {
		parts[i] = fmt.Sprintf("%s: %s", k, m.Values[i].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// CaseAlternative is one `WHEN cond THEN result` arm.
type CaseAlternative struct {
	When Expr
	Then Expr
}

// CaseExpr is a generic or simple CASE expression.
// When Test != nil, each alternative's When is compared against Test
// (simple form: `CASE x WHEN 1 THEN ...`); otherwise each When is itself a
// boolean condition (generic form: `CASE WHEN x > 1 THEN ...`).
type CaseExpr struct {
	Test         Expr
	Alternatives []CaseAlternative
	Else         Expr // nil if no ELSE
}

func (c *CaseExpr) exprNode() {}
func (c *CaseExpr) String() string {
	var b strings.Builder
	b.WriteString("CASE ")
	if c.Test != nil {
		b.WriteString(c.Test.String())
		b.WriteByte(' ')
	}
	for _, a := range c.Alternatives {
		fmt.Fprintf(&b, "WHEN %s THEN %s ", a.When.String(), a.Then.String())
	}
	if c.Else != nil {
		fmt.Fprintf(&b, "ELSE %s ", c.Else.String())
	}
	b.WriteString("END")
	return b.String()
}

// ExistsSubquery is `EXISTS { <pattern-or-query> }`.
type ExistsSubquery struct {
	Query *Query
}

func (e *ExistsSubquery) exprNode() {}
func (e *ExistsSubquery) String() string { return "EXISTS { ... }" }

// CountSubquery is `COUNT { <pattern-or-query> }`.
type CountSubquery struct {
	Query *Query
}

func (c *CountSubquery) exprNode() {}
func (c *CountSubquery) String() string { return "COUNT { ... }" }

// PathExpr names a whole bound path variable used as an expression, or a
// path pattern appearing in expression position (e.g. inside a predicate).
type PathExpr struct {
	Path *PatternPath
}

func (p *PathExpr) exprNode() {}
func (p *PathExpr) String() string { return "<path-expr>" }
