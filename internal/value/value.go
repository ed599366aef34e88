// Package value implements the closed set of runtime value kinds the
// executor evaluates expressions into, along with their three-valued
// equality, ordering, and truth semantics.
package value

import (
	"fmt"
	"time"
)

// Kind tags the closed sum of runtime value kinds.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Float
	String
	List
	Map
	Date
	Time
	DateTime
	Duration
	Point
	Distance
	Path
	Node
	Edge
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "Null"
	case Bool:
		return "Bool"
	case Int:
		return "Int"
	case Float:
		return "Float"
	case String:
		return "String"
	case List:
		return "List"
	case Map:
		return "Map"
	case Date:
		return "Date"
	case Time:
		return "Time"
	case DateTime:
		return "DateTime"
	case Duration:
		return "Duration"
	case Point:
		return "Point"
	case Distance:
		return "Distance"
	case Path:
		return "Path"
	case Node:
		return "Node"
	case Edge:
		return "Edge"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// NodeRef carries a node's identity plus a snapshot of labels/properties
// taken at evaluation time. The executor resolves these from the store on
// demand; Values never embed a live reference back into the store.
type NodeRef struct {
	ID     int64
	Labels []string
	Props  map[string]Value
}

// EdgeRef carries a relationship's identity plus its endpoints and a
// properties snapshot. Identity is the id alone: src/dst/type are cached
// for display and traversal, not part of equality.
type EdgeRef struct {
	ID    int64
	Type  string
	From  int64
	To    int64
	Props map[string]Value
}

// PathValue is an alternating node/edge sequence of length >= 0 nodes - 1
// edges, produced by pattern matches.
type PathValue struct {
	Nodes []NodeRef
	Edges []EdgeRef
}

// PointValue is a 2D or 3D spatial coordinate.
type PointValue struct {
	X, Y, Z float64
	Is3D    bool
	SRID    int
}

// DurationValue is a calendar+clock quantity, matching Cypher's duration
// components (months/days are calendar-relative, seconds/nanos are exact).
type DurationValue struct {
	Months  int64
	Days    int64
	Seconds int64
	Nanos   int64
}

// Value is the tagged union every operator and expression pattern-matches
// on. Zero value is Null.
type Value struct {
	Kind Kind

	B bool
	I int64
	F float64
	S string

	L []Value
	M *OrderedMap

	T time.Time // used for Date, Time, DateTime

	Dur   DurationValue
	Pt    PointValue
	Pa    PathValue
	Nd    NodeRef
	Ed    EdgeRef
}

// NullValue is the canonical Null.
var NullValue = Value{Kind: Null}

func BoolValue(b bool) Value    { return Value{Kind: Bool, B: b} }
func IntValue(i int64) Value    { return Value{Kind: Int, I: i} }
func FloatValue(f float64) Value { return Value{Kind: Float, F: f} }
func StringValue(s string) Value { return Value{Kind: String, S: s} }
func ListValue(l []Value) Value  { return Value{Kind: List, L: l} }
func MapValue(m *OrderedMap) Value { return Value{Kind: Map, M: m} }
func NodeValue(n NodeRef) Value  { return Value{Kind: Node, Nd: n} }
func EdgeValue(e EdgeRef) Value  { return Value{Kind: Edge, Ed: e} }
func PathValueOf(p PathValue) Value { return Value{Kind: Path, Pa: p} }
func DistanceValue(d float64) Value { return Value{Kind: Distance, F: d} }
func PointValueOf(p PointValue) Value { return Value{Kind: Point, Pt: p} }
func DurationValueOf(d DurationValue) Value { return Value{Kind: Duration, Dur: d} }
func DateValue(t time.Time) Value     { return Value{Kind: Date, T: t} }
func TimeValue(t time.Time) Value     { return Value{Kind: Time, T: t} }
func DateTimeValue(t time.Time) Value { return Value{Kind: DateTime, T: t} }

func (v Value) IsNull() bool { return v.Kind == Null }

func (v Value) String() string {
	switch v.Kind {
	case Null:
		return "null"
	case Bool:
		return fmt.Sprintf("%v", v.B)
	case Int:
		return fmt.Sprintf("%d", v.I)
	case Float:
		return fmt.Sprintf("%g", v.F)
	case String:
		return v.S
	case List:
		return fmt.Sprintf("%v", v.L)
	case Map:
		return v.M.String()
	case Node:
		return fmt.Sprintf("(id=%d :%v)", v.Nd.ID, v.Nd.Labels)
	case Edge:
		return fmt.Sprintf("[id=%d :%s]", v.Ed.ID, v.Ed.Type)
	case Path:
		return fmt.Sprintf("<path len=%d>", len(v.Pa.Edges))
	case Duration:
		return fmt.Sprintf("P%dM%dDT%dS", v.Dur.Months, v.Dur.Days, v.Dur.Seconds)
	case Point:
		return fmt.Sprintf("point(%g,%g,%g)", v.Pt.X, v.Pt.Y, v.Pt.Z)
	case Distance:
		return fmt.Sprintf("%g", v.F)
	default:
		return v.T.String()
	}
}
