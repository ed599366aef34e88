package executor

import (
	"math"
	"strconv"
	"strings"

	"github.com/cypherdb/cypherdb/internal/ast"
	"github.com/cypherdb/cypherdb/internal/cerr"
	"github.com/cypherdb/cypherdb/internal/value"
)

// callScalar dispatches a non-aggregate FunctionCall. Aggregate names
// (COUNT/SUM/AVG/MIN/MAX/COLLECT) never reach here directly in a properly
// planned query — the planner lowers them into a plan.Aggregation — but
// evaluating one standalone (e.g. a malformed nested call) falls through
// to the default case below.
func callScalar(c *EvalContext, f *ast.FunctionCall) (value.Value, error) {
	switch f.Name {
	case "_HASLABEL":
		return evalHasLabel(c, f)
	case "ID":
		return fn1(c, f, func(v value.Value) (value.Value, error) {
			switch v.Kind {
			case value.Node:
				return value.IntValue(v.Nd.ID), nil
			case value.Edge:
				return value.IntValue(v.Ed.ID), nil
			case value.Null:
				return value.NullValue, nil
			default:
				return value.NullValue, cerr.New(cerr.KindTypeError, "id() requires a node or relationship, got %s", v.Kind)
			}
		})
	case "LABELS":
		return fn1(c, f, func(v value.Value) (value.Value, error) {
			if v.IsNull() {
				return value.NullValue, nil
			}
			if v.Kind != value.Node {
				return value.NullValue, cerr.New(cerr.KindTypeError, "labels() requires a node, got %s", v.Kind)
			}
			out := make([]value.Value, len(v.Nd.Labels))
			for i, l := range v.Nd.Labels {
				out[i] = value.StringValue(l)
			}
			return value.ListValue(out), nil
		})
	case "TYPE":
		return fn1(c, f, func(v value.Value) (value.Value, error) {
			if v.IsNull() {
				return value.NullValue, nil
			}
			if v.Kind != value.Edge {
				return value.NullValue, cerr.New(cerr.KindTypeError, "type() requires a relationship, got %s", v.Kind)
			}
			return value.StringValue(v.Ed.Type), nil
		})
	case "PROPERTIES":
		return fn1(c, f, func(v value.Value) (value.Value, error) {
			var props map[string]value.Value
			switch v.Kind {
			case value.Node:
				props = v.Nd.Props
			case value.Edge:
				props = v.Ed.Props
			case value.Map:
				return v, nil
			case value.Null:
				return value.NullValue, nil
			default:
				return value.NullValue, cerr.New(cerr.KindTypeError, "properties() requires a node, relationship, or map, got %s", v.Kind)
			}
			om := value.NewOrderedMap()
			for k, pv := range props {
				om.Set(k, pv)
			}
			return value.MapValue(om), nil
		})
	case "KEYS":
		return fn1(c, f, func(v value.Value) (value.Value, error) {
			var keys []string
			switch v.Kind {
			case value.Node:
				for k := range v.Nd.Props {
					keys = append(keys, k)
				}
			case value.Edge:
				for k := range v.Ed.Props {
					keys = append(keys, k)
				}
			case value.Map:
				keys = v.M.Keys()
			case value.Null:
				return value.NullValue, nil
			default:
				return value.NullValue, cerr.New(cerr.KindTypeError, "keys() requires a node, relationship, or map, got %s", v.Kind)
			}
			out := make([]value.Value, len(keys))
			for i, k := range keys {
				out[i] = value.StringValue(k)
			}
			return value.ListValue(out), nil
		})
	case "SIZE", "LENGTH":
		return fn1(c, f, func(v value.Value) (value.Value, error) {
			switch v.Kind {
			case value.Null:
				return value.NullValue, nil
			case value.List:
				return value.IntValue(int64(len(v.L))), nil
			case value.String:
				return value.IntValue(int64(len([]rune(v.S)))), nil
			case value.Path:
				return value.IntValue(int64(len(v.Pa.Edges))), nil
			default:
				return value.NullValue, cerr.New(cerr.KindTypeError, "%s() requires a list, string, or path, got %s", strings.ToLower(f.Name), v.Kind)
			}
		})
	case "HEAD":
		return fn1(c, f, func(v value.Value) (value.Value, error) {
			if v.IsNull() {
				return value.NullValue, nil
			}
			if v.Kind != value.List {
				return value.NullValue, cerr.New(cerr.KindTypeError, "head() requires a list, got %s", v.Kind)
			}
			if len(v.L) == 0 {
				return value.NullValue, nil
			}
			return v.L[0], nil
		})
	case "LAST":
		return fn1(c, f, func(v value.Value) (value.Value, error) {
			if v.IsNull() {
				return value.NullValue, nil
			}
			if v.Kind != value.List {
				return value.NullValue, cerr.New(cerr.KindTypeError, "last() requires a list, got %s", v.Kind)
			}
			if len(v.L) == 0 {
				return value.NullValue, nil
			}
			return v.L[len(v.L)-1], nil
		})
	case "TAIL":
		return fn1(c, f, func(v value.Value) (value.Value, error) {
			if v.IsNull() {
				return value.NullValue, nil
			}
			if v.Kind != value.List {
				return value.NullValue, cerr.New(cerr.KindTypeError, "tail() requires a list, got %s", v.Kind)
			}
			if len(v.L) <= 1 {
				return value.ListValue(nil), nil
			}
			return value.ListValue(append([]value.Value{}, v.L[1:]...)), nil
		})
	case "RANGE":
		return evalRange(c, f)
	case "NODES":
		return fn1(c, f, func(v value.Value) (value.Value, error) {
			if v.IsNull() {
				return value.NullValue, nil
			}
			if v.Kind != value.Path {
				return value.NullValue, cerr.New(cerr.KindTypeError, "nodes() requires a path, got %s", v.Kind)
			}
			out := make([]value.Value, len(v.Pa.Nodes))
			for i, n := range v.Pa.Nodes {
				out[i] = value.NodeValue(n)
			}
			return value.ListValue(out), nil
		})
	case "RELATIONSHIPS":
		return fn1(c, f, func(v value.Value) (value.Value, error) {
			if v.IsNull() {
				return value.NullValue, nil
			}
			if v.Kind != value.Path {
				return value.NullValue, cerr.New(cerr.KindTypeError, "relationships() requires a path, got %s", v.Kind)
			}
			out := make([]value.Value, len(v.Pa.Edges))
			for i, e := range v.Pa.Edges {
				out[i] = value.EdgeValue(e)
			}
			return value.ListValue(out), nil
		})
	case "TOINTEGER":
		return fn1(c, f, toInteger)
	case "TOFLOAT":
		return fn1(c, f, toFloat)
	case "TOSTRING":
		return fn1(c, f, func(v value.Value) (value.Value, error) {
			if v.IsNull() {
				return value.NullValue, nil
			}
			return value.StringValue(v.String()), nil
		})
	case "TOBOOLEAN":
		return fn1(c, f, func(v value.Value) (value.Value, error) {
			switch v.Kind {
			case value.Null:
				return value.NullValue, nil
			case value.Bool:
				return v, nil
			case value.String:
				switch strings.ToLower(v.S) {
				case "true":
					return value.BoolValue(true), nil
				case "false":
					return value.BoolValue(false), nil
				default:
					return value.NullValue, nil
				}
			default:
				return value.NullValue, cerr.New(cerr.KindTypeError, "toBoolean() requires a boolean or string, got %s", v.Kind)
			}
		})
	case "ABS":
		return fn1(c, f, func(v value.Value) (value.Value, error) {
			switch v.Kind {
			case value.Null:
				return value.NullValue, nil
			case value.Int:
				if v.I < 0 {
					return value.IntValue(-v.I), nil
				}
				return v, nil
			case value.Float:
				return value.FloatValue(math.Abs(v.F)), nil
			default:
				return value.NullValue, cerr.New(cerr.KindTypeError, "abs() requires a numeric value, got %s", v.Kind)
			}
		})
	case "CEIL":
		return mathFn1(c, f, math.Ceil)
	case "FLOOR":
		return mathFn1(c, f, math.Floor)
	case "ROUND":
		return mathFn1(c, f, math.Round)
	case "SQRT":
		return mathFn1(c, f, math.Sqrt)
	case "SUBSTRING":
		return evalSubstring(c, f)
	case "TRIM":
		return strFn1(c, f, strings.TrimSpace)
	case "LTRIM":
		return strFn1(c, f, func(s string) string { return strings.TrimLeft(s, " \t\n\r") })
	case "RTRIM":
		return strFn1(c, f, func(s string) string { return strings.TrimRight(s, " \t\n\r") })
	case "TOUPPER":
		return strFn1(c, f, strings.ToUpper)
	case "TOLOWER":
		return strFn1(c, f, strings.ToLower)
	case "LEFT":
		return evalLeftRight(c, f, true)
	case "RIGHT":
		return evalLeftRight(c, f, false)
	case "REPLACE":
		return evalReplace(c, f)
	case "SPLIT":
		return evalSplit(c, f)
	case "EXISTS":
		return fn1(c, f, func(v value.Value) (value.Value, error) {
			return value.BoolValue(!v.IsNull()), nil
		})
	case "COALESCE":
		return evalCoalesce(c, f)
	default:
		return value.NullValue, cerr.New(cerr.KindInternalError, "unknown function %q", f.Name)
	}
}

func fn1(c *EvalContext, f *ast.FunctionCall, apply func(value.Value) (value.Value, error)) (value.Value, error) {
	if len(f.Args) != 1 {
		return value.NullValue, cerr.New(cerr.KindTypeError, "%s() takes exactly one argument", strings.ToLower(f.Name))
	}
	v, err := Eval(c, f.Args[0])
	if err != nil {
		return value.NullValue, err
	}
	return apply(v)
}

func mathFn1(c *EvalContext, f *ast.FunctionCall, fn func(float64) float64) (value.Value, error) {
	return fn1(c, f, func(v value.Value) (value.Value, error) {
		if v.IsNull() {
			return value.NullValue, nil
		}
		if !isNumber(v) {
			return value.NullValue, cerr.New(cerr.KindTypeError, "%s() requires a numeric value, got %s", strings.ToLower(f.Name), v.Kind)
		}
		return value.FloatValue(fn(asFloat64(v))), nil
	})
}

func strFn1(c *EvalContext, f *ast.FunctionCall, fn func(string) string) (value.Value, error) {
	return fn1(c, f, func(v value.Value) (value.Value, error) {
		if v.IsNull() {
			return value.NullValue, nil
		}
		if v.Kind != value.String {
			return value.NullValue, cerr.New(cerr.KindTypeError, "%s() requires a string, got %s", strings.ToLower(f.Name), v.Kind)
		}
		return value.StringValue(fn(v.S)), nil
	})
}

func toInteger(v value.Value) (value.Value, error) {
	switch v.Kind {
	case value.Null:
		return value.NullValue, nil
	case value.Int:
		return v, nil
	case value.Float:
		return value.IntValue(int64(v.F)), nil
	case value.String:
		s := strings.TrimSpace(v.S)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return value.IntValue(i), nil
		}
		if fv, err := strconv.ParseFloat(s, 64); err == nil {
			return value.IntValue(int64(fv)), nil
		}
		return value.NullValue, nil
	default:
		return value.NullValue, cerr.New(cerr.KindTypeError, "toInteger() requires a numeric or string value, got %s", v.Kind)
	}
}

func toFloat(v value.Value) (value.Value, error) {
	switch v.Kind {
	case value.Null:
		return value.NullValue, nil
	case value.Float:
		return v, nil
	case value.Int:
		return value.FloatValue(float64(v.I)), nil
	case value.String:
		if fv, err := strconv.ParseFloat(strings.TrimSpace(v.S), 64); err == nil {
			return value.FloatValue(fv), nil
		}
		return value.NullValue, nil
	default:
		return value.NullValue, cerr.New(cerr.KindTypeError, "toFloat() requires a numeric or string value, got %s", v.Kind)
	}
}

func evalRange(c *EvalContext, f *ast.FunctionCall) (value.Value, error) {
	if len(f.Args) < 2 || len(f.Args) > 3 {
		return value.NullValue, cerr.New(cerr.KindTypeError, "range() takes two or three arguments")
	}
	start, err := Eval(c, f.Args[0])
	if err != nil {
		return value.NullValue, err
	}
	end, err := Eval(c, f.Args[1])
	if err != nil {
		return value.NullValue, err
	}
	step := int64(1)
	if len(f.Args) == 3 {
		sv, err := Eval(c, f.Args[2])
		if err != nil {
			return value.NullValue, err
		}
		if sv.IsNull() {
			return value.NullValue, nil
		}
		if sv.Kind != value.Int {
			return value.NullValue, cerr.New(cerr.KindTypeError, "range() step must be an integer")
		}
		step = sv.I
	}
	if start.IsNull() || end.IsNull() {
		return value.NullValue, nil
	}
	if start.Kind != value.Int || end.Kind != value.Int || step == 0 {
		return value.NullValue, cerr.New(cerr.KindTypeError, "range() requires integer bounds and a non-zero step")
	}
	var out []value.Value
	if step > 0 {
		for i := start.I; i <= end.I; i += step {
			out = append(out, value.IntValue(i))
		}
	} else {
		for i := start.I; i >= end.I; i += step {
			out = append(out, value.IntValue(i))
		}
	}
	return value.ListValue(out), nil
}

func evalSubstring(c *EvalContext, f *ast.FunctionCall) (value.Value, error) {
	if len(f.Args) < 2 || len(f.Args) > 3 {
		return value.NullValue, cerr.New(cerr.KindTypeError, "substring() takes two or three arguments")
	}
	sv, err := Eval(c, f.Args[0])
	if err != nil {
		return value.NullValue, err
	}
	if sv.IsNull() {
		return value.NullValue, nil
	}
	if sv.Kind != value.String {
		return value.NullValue, cerr.New(cerr.KindTypeError, "substring() requires a string, got %s", sv.Kind)
	}
	startV, err := Eval(c, f.Args[1])
	if err != nil {
		return value.NullValue, err
	}
	if startV.Kind != value.Int {
		return value.NullValue, cerr.New(cerr.KindTypeError, "substring() start must be an integer")
	}
	runes := []rune(sv.S)
	start := int(startV.I)
	if start < 0 {
		start = 0
	}
	if start > len(runes) {
		start = len(runes)
	}
	end := len(runes)
	if len(f.Args) == 3 {
		lenV, err := Eval(c, f.Args[2])
		if err != nil {
			return value.NullValue, err
		}
		if lenV.Kind != value.Int {
			return value.NullValue, cerr.New(cerr.KindTypeError, "substring() length must be an integer")
		}
		end = start + int(lenV.I)
		if end > len(runes) {
			end = len(runes)
		}
	}
	if end < start {
		end = start
	}
	return value.StringValue(string(runes[start:end])), nil
}

func evalLeftRight(c *EvalContext, f *ast.FunctionCall, left bool) (value.Value, error) {
	name := "right"
	if left {
		name = "left"
	}
	if len(f.Args) != 2 {
		return value.NullValue, cerr.New(cerr.KindTypeError, "%s() takes exactly two arguments", name)
	}
	sv, err := Eval(c, f.Args[0])
	if err != nil {
		return value.NullValue, err
	}
	if sv.IsNull() {
		return value.NullValue, nil
	}
	if sv.Kind != value.String {
		return value.NullValue, cerr.New(cerr.KindTypeError, "%s() requires a string, got %s", name, sv.Kind)
	}
	nv, err := Eval(c, f.Args[1])
	if err != nil {
		return value.NullValue, err
	}
	if nv.Kind != value.Int {
		return value.NullValue, cerr.New(cerr.KindTypeError, "%s() length must be an integer", name)
	}
	runes := []rune(sv.S)
	n := int(nv.I)
	if n < 0 {
		n = 0
	}
	if n > len(runes) {
		n = len(runes)
	}
	if left {
		return value.StringValue(string(runes[:n])), nil
	}
	return value.StringValue(string(runes[len(runes)-n:])), nil
}

func evalReplace(c *EvalContext, f *ast.FunctionCall) (value.Value, error) {
	if len(f.Args) != 3 {
		return value.NullValue, cerr.New(cerr.KindTypeError, "replace() takes exactly three arguments")
	}
	args := make([]value.Value, 3)
	for i, a := range f.Args {
		v, err := Eval(c, a)
		if err != nil {
			return value.NullValue, err
		}
		args[i] = v
	}
	if args[0].IsNull() || args[1].IsNull() || args[2].IsNull() {
		return value.NullValue, nil
	}
	if args[0].Kind != value.String || args[1].Kind != value.String || args[2].Kind != value.String {
		return value.NullValue, cerr.New(cerr.KindTypeError, "replace() requires string arguments")
	}
	return value.StringValue(strings.ReplaceAll(args[0].S, args[1].S, args[2].S)), nil
}

func evalSplit(c *EvalContext, f *ast.FunctionCall) (value.Value, error) {
	if len(f.Args) != 2 {
		return value.NullValue, cerr.New(cerr.KindTypeError, "split() takes exactly two arguments")
	}
	sv, err := Eval(c, f.Args[0])
	if err != nil {
		return value.NullValue, err
	}
	dv, err := Eval(c, f.Args[1])
	if err != nil {
		return value.NullValue, err
	}
	if sv.IsNull() || dv.IsNull() {
		return value.NullValue, nil
	}
	if sv.Kind != value.String || dv.Kind != value.String {
		return value.NullValue, cerr.New(cerr.KindTypeError, "split() requires string arguments")
	}
	parts := strings.Split(sv.S, dv.S)
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = value.StringValue(p)
	}
	return value.ListValue(out), nil
}

func evalCoalesce(c *EvalContext, f *ast.FunctionCall) (value.Value, error) {
	for _, a := range f.Args {
		v, err := Eval(c, a)
		if err != nil {
			return value.NullValue, err
		}
		if !v.IsNull() {
			return v, nil
		}
	}
	return value.NullValue, nil
}

// evalHasLabel interprets the synthetic marker the planner emits for
// inline pattern labels (`(n:Person)`), lowered to a predicate so label
// checks compose with the rest of a WHERE-style Filter.
func evalHasLabel(c *EvalContext, f *ast.FunctionCall) (value.Value, error) {
	if len(f.Args) != 2 {
		return value.NullValue, cerr.New(cerr.KindInternalError, "_HASLABEL takes exactly two arguments")
	}
	v, err := Eval(c, f.Args[0])
	if err != nil {
		return value.NullValue, err
	}
	if v.IsNull() {
		return value.NullValue, nil
	}
	if v.Kind != value.Node {
		return value.BoolValue(false), nil
	}
	lit, ok := f.Args[1].(*ast.Literal)
	if !ok || lit.Kind != ast.LitString {
		return value.NullValue, cerr.New(cerr.KindInternalError, "_HASLABEL requires a string literal label")
	}
	for _, l := range v.Nd.Labels {
		if l == lit.S {
			return value.BoolValue(true), nil
		}
	}
	return value.BoolValue(false), nil
}
