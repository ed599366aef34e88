// Package plan defines the logical query plan: a tree of pull-iterator
// operators produced by internal/planner, rewritten by internal/optimizer,
// and executed by internal/executor (spec §4.3).
package plan

import "github.com/cypherdb/cypherdb/internal/ast"

// Op is any logical plan operator. Operators form a tree via Children；
// the executor builds one runtime iterator per Op, bottom-up.
type Op interface {
	Children() []Op
	opNode()
}

// Base holds an operator's children; every concrete Op embeds it.
type Base struct {
	Kids []Op
}

func (b *Base) Children() []Op { return b.Kids }

// AllNodesScan yields every node in the graph, binding it to Var.
type AllNodesScan struct {
	Base
	Var string
}

func (*AllNodesScan) opNode() {}

// LabelScan yields every node carrying Label, binding it to Var.
type LabelScan struct {
	Base
	Var   string
	Label string
}

func (*LabelScan) opNode() {}

// NodeByIDSeek binds Var to the single node named by a constant/parameter
// id expression, or produces zero rows if it does not exist.
type NodeByIDSeek struct {
	Base
	Var string
	ID  ast.Expr
}

func (*NodeByIDSeek) opNode() {}

// Expand walks a relationship pattern hop from an already-bound node
// variable From, binding the traversed relationship (RelVar) and the
// landing node (ToVar). MinHops/MaxHops > 1 implement variable-length
// patterns (-1 MaxHops means unbounded).
type Expand struct {
	Base
	From      string
	RelVar    string
	ToVar     string
	Types     []string
	Direction ast.Direction
	MinHops   int
	MaxHops   int
}

func (*Expand) opNode() {}

// OptionalExpand behaves like Expand but emits a row with ToVar/RelVar
// bound to Null instead of terminating the stream when no relationship
// matches (spec: OPTIONAL MATCH semantics).
type OptionalExpand struct {
	Base
	Expand
}

func (*OptionalExpand) opNode() {}

// OptionalScan wraps a pattern's head scan (and any hops chained onto it)
// so a standalone OPTIONAL MATCH whose head variable is not already bound
// still yields a single Null-bound row when the pattern matches nothing,
// rather than contributing zero rows to an enclosing cartesian product
// (spec: OPTIONAL MATCH is a left outer join at every level, including
// the head scan).
type OptionalScan struct {
	Base
	Vars []string
}

func (*OptionalScan) opNode() {}

// Filter drops rows for which Predicate does not evaluate to true (Null
// and false are both rejected — spec §3.4 three-valued WHERE semantics).
type Filter struct {
	Base
	Predicate ast.Expr
}

func (*Filter) opNode() {}

// ProjectionColumn is one computed output column.
type ProjectionColumn struct {
	Expr  ast.Expr
	Alias string
}

// Projection computes a new row shape from the input bindings. Discard
// drops any input variable not listed in Columns (WITH's scoping rule);
// RETURN uses Discard=false only for the final result-column naming pass.
type Projection struct {
	Base
	Columns  []ProjectionColumn
	Discard  bool
	Distinct bool
}

func (*Projection) opNode() {}

// AggregationColumn is one aggregate or grouping-key output column.
type AggregationColumn struct {
	Expr     ast.Expr // a FunctionCall for aggregates, any expr for grouping keys
	Alias    string
	IsGroup  bool
}

// Aggregation groups rows by the IsGroup columns and reduces the rest with
// their aggregate functions, emitting one row per distinct group (or one
// row total with no grouping keys).
type Aggregation struct {
	Base
	Columns []AggregationColumn
}

func (*Aggregation) opNode() {}

// Sort orders rows by a sequence of expressions.
type Sort struct {
	Base
	Keys []SortKey
}

// SortKey is one ORDER BY term.
type SortKey struct {
	Expr       ast.Expr
	Descending bool
}

func (*Sort) opNode() {}

// Skip discards the first N rows.
type Skip struct {
	Base
	Count ast.Expr
}

func (*Skip) opNode() {}

// Limit yields at most N rows then closes its input early.
type Limit struct {
	Base
	Count ast.Expr
}

func (*Limit) opNode() {}

// Unwind expands a list-valued expression into one row per element.
type Unwind struct {
	Base
	Expr  ast.Expr
	Alias string
}

func (*Unwind) opNode() {}

// CreateNodeSpec describes one node pattern to instantiate.
type CreateNodeSpec struct {
	Var    string
	Labels []string
	Props  []ast.PropConstraint
}

// CreateRelSpec describes one relationship pattern to instantiate,
// referencing already-bound or just-created node variables.
type CreateRelSpec struct {
	Var       string
	Type      string
	FromVar   string
	ToVar     string
	Direction ast.Direction
	Props     []ast.PropConstraint
}

// Create executes once per input row, instantiating nodes then
// relationships in source order and binding their variables.
type Create struct {
	Base
	Nodes []CreateNodeSpec
	Rels  []CreateRelSpec
}

func (*Create) opNode() {}

// Merge matches Pattern per input row (as Match would); rows with no match
// create the pattern and apply OnCreate, rows with a match apply OnMatch.
type Merge struct {
	Base
	Pattern  *ast.PatternPath
	OnCreate []ast.SetItem
	OnMatch  []ast.SetItem
}

func (*Merge) opNode() {}

// SetOp applies a SET clause's items to each row's bound variables.
type SetOp struct {
	Base
	Items []ast.SetItem
}

func (*SetOp) opNode() {}

// RemoveOp applies a REMOVE clause's items to each row's bound variables.
type RemoveOp struct {
	Base
	Items []ast.RemoveItem
}

func (*RemoveOp) opNode() {}

// DeleteOp deletes the bound node/relationship values named by
// Variables. Detach additionally detaches and deletes incident
// relationships of any targeted node.
type DeleteOp struct {
	Base
	Variables []ast.Expr
	Detach    bool
}

func (*DeleteOp) opNode() {}

// CartesianProduct pairs every row of Left with every row of Right: used
// for disconnected pattern parts and multi-MATCH queries the optimizer
// could not turn into a join.
type CartesianProduct struct {
	Base
}

func (*CartesianProduct) opNode() {}

// ValueHashJoin joins Left and Right rows sharing equal values of
// LeftKey/RightKey — the optimizer's preferred replacement for a
// CartesianProduct + Filter pair when a shared bound variable exists.
type ValueHashJoin struct {
	Base
	LeftKey  ast.Expr
	RightKey ast.Expr
}

func (*ValueHashJoin) opNode() {}

// NewBinary builds a base holding exactly [left, right] children.
func NewBinary(left, right Op) Base { return Base{Kids: []Op{left, right}} }

// NewUnary builds a base holding exactly [input] children.
func NewUnary(input Op) Base { return Base{Kids: []Op{input}} }

// NewLeaf builds a base holding no children (a scan).
func NewLeaf() Base { return Base{} }
