package executor

import (
	"github.com/cypherdb/cypherdb/internal/graph"
	"github.com/cypherdb/cypherdb/internal/value"
)

// nodeToValue snapshots a stored node into a value.NodeRef. Every Value
// carrying a node/edge is a point-in-time copy; mutating it requires
// going back through the store (spec §3.2: Values never embed a live
// store reference).
func nodeToValue(n *graph.Node) value.Value {
	return value.NodeValue(value.NodeRef{ID: int64(n.ID), Labels: append([]string{}, n.Labels...), Props: cloneProps(n.Props)})
}

func relToValue(r *graph.Relationship) value.Value {
	return value.EdgeValue(value.EdgeRef{
		ID: int64(r.ID), Type: r.Type, From: int64(r.From), To: int64(r.To), Props: cloneProps(r.Props),
	})
}

func cloneProps(m map[string]value.Value) map[string]value.Value {
	out := make(map[string]value.Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
