package executor

import (
	"context"
	"math"
	"math/big"
	"strings"

	"github.com/cypherdb/cypherdb/internal/ast"
	"github.com/cypherdb/cypherdb/internal/cerr"
	"github.com/cypherdb/cypherdb/internal/graph"
	"github.com/cypherdb/cypherdb/internal/value"
)

// EvalContext carries everything expression evaluation needs beyond the
// current row: query parameters, the graph store (for subqueries and
// store-backed functions), and the enclosing context for cancellation.
type EvalContext struct {
	Ctx    context.Context
	Row    Row
	Params map[string]value.Value
	Store  graph.Store
}

// Eval evaluates e against c, implementing Cypher's three-valued logic:
// any operand that is Null makes a comparison/arithmetic expression Null
// rather than erroring, except where the spec calls for a hard TypeError.
func Eval(c *EvalContext, e ast.Expr) (value.Value, error) {
	if err := checkCancelled(c.Ctx); err != nil {
		return value.NullValue, err
	}
	switch n := e.(type) {
	case *ast.Literal:
		return evalLiteral(n)
	case *ast.Variable:
		return c.Row.Get(n.Name), nil
	case *ast.Wildcard:
		return value.NullValue, nil
	case *ast.Parameter:
		if v, ok := c.Params[n.Name]; ok {
			return v, nil
		}
		return value.NullValue, nil
	case *ast.PropertyAccess:
		return evalPropertyAccess(c, n)
	case *ast.BinaryOp:
		return evalBinary(c, n)
	case *ast.UnaryOp:
		return evalUnary(c, n)
	case *ast.FunctionCall:
		return callScalar(c, n)
	case *ast.ListLiteral:
		items := make([]value.Value, 0, len(n.Items))
		for _, it := range n.Items {
			v, err := Eval(c, it)
			if err != nil {
				return value.NullValue, err
			}
			items = append(items, v)
		}
		return value.ListValue(items), nil
	case *ast.MapLiteral:
		m := value.NewOrderedMap()
		for i, k := range n.Keys {
			v, err := Eval(c, n.Values[i])
			if err != nil {
				return value.NullValue, err
			}
			m.Set(k, v)
		}
		return value.MapValue(m), nil
	case *ast.CaseExpr:
		return evalCase(c, n)
	case *ast.ExistsSubquery:
		return evalExists(c, n)
	case *ast.CountSubquery:
		return evalCount(c, n)
	default:
		return value.NullValue, cerr.New(cerr.KindInternalError, "eval: unhandled expression %T", e)
	}
}

// int64Bounds is the two's-complement range literal magnitudes (and
// negations of them) must fit into.
var (
	maxInt64Mag = big.NewInt(math.MaxInt64)
	minInt64Mag = new(big.Int).Abs(big.NewInt(math.MinInt64))
)

func evalLiteral(l *ast.Literal) (value.Value, error) {
	switch l.Kind {
	case ast.LitNull:
		return value.NullValue, nil
	case ast.LitBool:
		return value.BoolValue(l.B), nil
	case ast.LitFloat:
		return value.FloatValue(l.F), nil
	case ast.LitString:
		return value.StringValue(l.S), nil
	case ast.LitInt:
		if l.Mag.Cmp(maxInt64Mag) > 0 {
			return value.NullValue, cerr.New(cerr.KindOverflow, "integer literal %s exceeds int64 range", l.Mag.String())
		}
		return value.IntValue(l.Mag.Int64()), nil
	default:
		return value.NullValue, cerr.New(cerr.KindInternalError, "unknown literal kind %v", l.Kind)
	}
}

// evalLiteralNegated evaluates a Literal known to be the operand of a
// unary minus, allowing the one extra magnitude (INT64_MIN) that would
// overflow as a bare positive literal (spec §4.1).
func evalLiteralNegated(l *ast.Literal) (value.Value, error) {
	if l.Kind != ast.LitInt {
		v, err := evalLiteral(l)
		if err != nil {
			return value.NullValue, err
		}
		return negate(v)
	}
	if l.Mag.Cmp(minInt64Mag) > 0 {
		return value.NullValue, cerr.New(cerr.KindOverflow, "integer literal -%s exceeds int64 range", l.Mag.String())
	}
	if l.Mag.Cmp(minInt64Mag) == 0 {
		return value.IntValue(math.MinInt64), nil
	}
	return value.IntValue(-l.Mag.Int64()), nil
}

func evalPropertyAccess(c *EvalContext, n *ast.PropertyAccess) (value.Value, error) {
	target, err := Eval(c, n.Target)
	if err != nil {
		return value.NullValue, err
	}
	switch target.Kind {
	case value.Null:
		return value.NullValue, nil
	case value.Node:
		if v, ok := target.Nd.Props[n.Property]; ok {
			return v, nil
		}
		return value.NullValue, nil
	case value.Edge:
		if v, ok := target.Ed.Props[n.Property]; ok {
			return v, nil
		}
		return value.NullValue, nil
	case value.Map:
		if v, ok := target.M.Get(n.Property); ok {
			return v, nil
		}
		return value.NullValue, nil
	default:
		return value.NullValue, cerr.New(cerr.KindTypeError, "cannot access property %q of a %s value", n.Property, target.Kind)
	}
}

func evalUnary(c *EvalContext, n *ast.UnaryOp) (value.Value, error) {
	switch n.Op {
	case "-":
		if lit, ok := n.Operand.(*ast.Literal); ok {
			return evalLiteralNegated(lit)
		}
		v, err := Eval(c, n.Operand)
		if err != nil {
			return value.NullValue, err
		}
		return negate(v)
	case "NOT":
		v, err := Eval(c, n.Operand)
		if err != nil {
			return value.NullValue, err
		}
		if v.IsNull() {
			return value.NullValue, nil
		}
		if v.Kind != value.Bool {
			return value.NullValue, cerr.New(cerr.KindTypeError, "NOT requires a boolean operand, got %s", v.Kind)
		}
		return value.BoolValue(!v.B), nil
	case "IS NULL":
		v, err := Eval(c, n.Operand)
		if err != nil {
			return value.NullValue, err
		}
		return value.BoolValue(v.IsNull()), nil
	case "IS NOT NULL":
		v, err := Eval(c, n.Operand)
		if err != nil {
			return value.NullValue, err
		}
		return value.BoolValue(!v.IsNull()), nil
	default:
		return value.NullValue, cerr.New(cerr.KindInternalError, "unhandled unary operator %q", n.Op)
	}
}

func negate(v value.Value) (value.Value, error) {
	switch v.Kind {
	case value.Null:
		return value.NullValue, nil
	case value.Int:
		if v.I == math.MinInt64 {
			return value.NullValue, cerr.New(cerr.KindOverflow, "negation of %d overflows int64", v.I)
		}
		return value.IntValue(-v.I), nil
	case value.Float:
		return value.FloatValue(-v.F), nil
	default:
		return value.NullValue, cerr.New(cerr.KindTypeError, "cannot negate a %s value", v.Kind)
	}
}

func evalBinary(c *EvalContext, n *ast.BinaryOp) (value.Value, error) {
	switch n.Op {
	case "AND":
		return evalAnd(c, n)
	case "OR":
		return evalOr(c, n)
	case "XOR":
		return evalXor(c, n)
	}
	left, err := Eval(c, n.Left)
	if err != nil {
		return value.NullValue, err
	}
	right, err := Eval(c, n.Right)
	if err != nil {
		return value.NullValue, err
	}
	switch n.Op {
	case "+", "-", "*", "/", "%", "^":
		return evalArith(n.Op, left, right)
	case "=":
		eq, ok := value.Equal(left, right)
		if !ok {
			return value.NullValue, nil
		}
		return eq, nil
	case "<>":
		eq, ok := value.NotEqual(left, right)
		if !ok {
			return value.NullValue, nil
		}
		return eq, nil
	case "<", "<=", ">", ">=":
		return evalOrderComparison(n.Op, left, right)
	case "IN":
		return evalIn(left, right)
	case "STARTS WITH":
		return evalStringPredicate("STARTS WITH", left, right)
	default:
		return value.NullValue, cerr.New(cerr.KindInternalError, "unhandled binary operator %q", n.Op)
	}
}

func evalAnd(c *EvalContext, n *ast.BinaryOp) (value.Value, error) {
	left, err := Eval(c, n.Left)
	if err != nil {
		return value.NullValue, err
	}
	if left.Kind == value.Bool && !left.B {
		return value.BoolValue(false), nil
	}
	right, err := Eval(c, n.Right)
	if err != nil {
		return value.NullValue, err
	}
	if right.Kind == value.Bool && !right.B {
		return value.BoolValue(false), nil
	}
	if left.IsNull() || right.IsNull() {
		return value.NullValue, nil
	}
	if left.Kind != value.Bool || right.Kind != value.Bool {
		return value.NullValue, cerr.New(cerr.KindTypeError, "AND requires boolean operands")
	}
	return value.BoolValue(true), nil
}

func evalOr(c *EvalContext, n *ast.BinaryOp) (value.Value, error) {
	left, err := Eval(c, n.Left)
	if err != nil {
		return value.NullValue, err
	}
	if left.Kind == value.Bool && left.B {
		return value.BoolValue(true), nil
	}
	right, err := Eval(c, n.Right)
	if err != nil {
		return value.NullValue, err
	}
	if right.Kind == value.Bool && right.B {
		return value.BoolValue(true), nil
	}
	if left.IsNull() || right.IsNull() {
		return value.NullValue, nil
	}
	if left.Kind != value.Bool || right.Kind != value.Bool {
		return value.NullValue, cerr.New(cerr.KindTypeError, "OR requires boolean operands")
	}
	return value.BoolValue(false), nil
}

func evalXor(c *EvalContext, n *ast.BinaryOp) (value.Value, error) {
	left, err := Eval(c, n.Left)
	if err != nil {
		return value.NullValue, err
	}
	right, err := Eval(c, n.Right)
	if err != nil {
		return value.NullValue, err
	}
	if left.IsNull() || right.IsNull() {
		return value.NullValue, nil
	}
	if left.Kind != value.Bool || right.Kind != value.Bool {
		return value.NullValue, cerr.New(cerr.KindTypeError, "XOR requires boolean operands")
	}
	return value.BoolValue(left.B != right.B), nil
}

func evalOrderComparison(op string, left, right value.Value) (value.Value, error) {
	cmp, ok := value.Compare(left, right)
	if !ok {
		return value.NullValue, nil
	}
	switch op {
	case "<":
		return value.BoolValue(cmp < 0), nil
	case "<=":
		return value.BoolValue(cmp <= 0), nil
	case ">":
		return value.BoolValue(cmp > 0), nil
	case ">=":
		return value.BoolValue(cmp >= 0), nil
	default:
		return value.NullValue, cerr.New(cerr.KindInternalError, "unhandled comparison operator %q", op)
	}
}

func evalIn(left, right value.Value) (value.Value, error) {
	if right.IsNull() {
		return value.NullValue, nil
	}
	if right.Kind != value.List {
		return value.NullValue, cerr.New(cerr.KindTypeError, "IN requires a list on the right, got %s", right.Kind)
	}
	sawNull := left.IsNull()
	for _, item := range right.L {
		eq, ok := value.Equal(left, item)
		if ok && eq.Kind == value.Bool && eq.B {
			return value.BoolValue(true), nil
		}
		if !ok {
			sawNull = true
		}
	}
	if sawNull {
		return value.NullValue, nil
	}
	return value.BoolValue(false), nil
}

func evalStringPredicate(op string, left, right value.Value) (value.Value, error) {
	if left.IsNull() || right.IsNull() {
		return value.NullValue, nil
	}
	if left.Kind != value.String || right.Kind != value.String {
		return value.NullValue, cerr.New(cerr.KindTypeError, "%s requires string operands", op)
	}
	switch op {
	case "STARTS WITH":
		return value.BoolValue(strings.HasPrefix(left.S, right.S)), nil
	default:
		return value.NullValue, cerr.New(cerr.KindInternalError, "unhandled string predicate %q", op)
	}
}

func evalArith(op string, left, right value.Value) (value.Value, error) {
	if op == "+" && (left.Kind == value.String || right.Kind == value.String) {
		if left.IsNull() || right.IsNull() {
			return value.NullValue, nil
		}
		return value.StringValue(left.String() + right.String()), nil
	}
	if op == "+" && (left.Kind == value.List || right.Kind == value.List) {
		if left.IsNull() || right.IsNull() {
			return value.NullValue, nil
		}
		return concatLists(left, right), nil
	}
	if left.IsNull() || right.IsNull() {
		return value.NullValue, nil
	}
	if !isNumber(left) || !isNumber(right) {
		return value.NullValue, cerr.New(cerr.KindTypeError, "arithmetic %q requires numeric operands, got %s and %s", op, left.Kind, right.Kind)
	}
	if left.Kind == value.Int && right.Kind == value.Int && op != "/" {
		return intArith(op, left.I, right.I)
	}
	lf, rf := asFloat64(left), asFloat64(right)
	switch op {
	case "+":
		return value.FloatValue(lf + rf), nil
	case "-":
		return value.FloatValue(lf - rf), nil
	case "*":
		return value.FloatValue(lf * rf), nil
	case "/":
		if rf == 0 {
			return value.NullValue, cerr.New(cerr.KindDivisionByZero, "division by zero")
		}
		if left.Kind == value.Int && right.Kind == value.Int {
			if left.I%right.I == 0 {
				return value.IntValue(left.I / right.I), nil
			}
		}
		return value.FloatValue(lf / rf), nil
	case "%":
		return value.FloatValue(math.Mod(lf, rf)), nil
	case "^":
		return value.FloatValue(math.Pow(lf, rf)), nil
	default:
		return value.NullValue, cerr.New(cerr.KindInternalError, "unhandled arithmetic operator %q", op)
	}
}

func intArith(op string, l, r int64) (value.Value, error) {
	switch op {
	case "+":
		sum := l + r
		if (r > 0 && sum < l) || (r < 0 && sum > l) {
			return value.NullValue, cerr.New(cerr.KindOverflow, "%d + %d overflows int64", l, r)
		}
		return value.IntValue(sum), nil
	case "-":
		diff := l - r
		if (r < 0 && diff < l) || (r > 0 && diff > l) {
			return value.NullValue, cerr.New(cerr.KindOverflow, "%d - %d overflows int64", l, r)
		}
		return value.IntValue(diff), nil
	case "*":
		if l == 0 || r == 0 {
			return value.IntValue(0), nil
		}
		prod := l * r
		if prod/r != l {
			return value.NullValue, cerr.New(cerr.KindOverflow, "%d * %d overflows int64", l, r)
		}
		return value.IntValue(prod), nil
	case "%":
		if r == 0 {
			return value.NullValue, cerr.New(cerr.KindDivisionByZero, "division by zero")
		}
		return value.IntValue(l % r), nil
	default:
		return value.NullValue, cerr.New(cerr.KindInternalError, "unhandled int arithmetic operator %q", op)
	}
}

func isNumber(v value.Value) bool { return v.Kind == value.Int || v.Kind == value.Float }

func asFloat64(v value.Value) float64 {
	if v.Kind == value.Int {
		return float64(v.I)
	}
	return v.F
}

func concatLists(left, right value.Value) value.Value {
	out := make([]value.Value, 0, len(left.L)+len(right.L))
	if left.Kind == value.List {
		out = append(out, left.L...)
	} else {
		out = append(out, left)
	}
	if right.Kind == value.List {
		out = append(out, right.L...)
	} else {
		out = append(out, right)
	}
	return value.ListValue(out)
}

func evalCase(c *EvalContext, n *ast.CaseExpr) (value.Value, error) {
	var test value.Value
	hasTest := n.Test != nil
	if hasTest {
		v, err := Eval(c, n.Test)
		if err != nil {
			return value.NullValue, err
		}
		test = v
	}
	for _, alt := range n.Alternatives {
		if hasTest {
			whenVal, err := Eval(c, alt.When)
			if err != nil {
				return value.NullValue, err
			}
			eq, ok := value.Equal(test, whenVal)
			if ok && eq.Kind == value.Bool && eq.B {
				return Eval(c, alt.Then)
			}
			continue
		}
		cond, err := Eval(c, alt.When)
		if err != nil {
			return value.NullValue, err
		}
		if cond.Kind == value.Bool && cond.B {
			return Eval(c, alt.Then)
		}
	}
	if n.Else != nil {
		return Eval(c, n.Else)
	}
	return value.NullValue, nil
}
