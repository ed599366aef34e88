package graph

import "github.com/cypherdb/cypherdb/internal/value"

// Store is the in-memory labelled multigraph contract the executor pulls
// from. Implementations must keep labelIndex/typeIndex/adjacency consistent
// with every mutation (invariant I2) and preserve insertion order on scans
// (spec §4.5) so query results are reproducible.
type Store interface {
	CreateNode(labels []string, props map[string]value.Value) (NodeID, error)
	DeleteNode(id NodeID, detach bool) error
	GetNode(id NodeID) (*Node, error)
	ContainsNode(id NodeID) bool
	SetNodeProperty(id NodeID, key string, v value.Value) error
	RemoveNodeProperty(id NodeID, key string) error
	AddLabel(id NodeID, label string) error
	RemoveLabel(id NodeID, label string) error

	CreateRelationship(relType string, from, to NodeID, props map[string]value.Value) (RelID, error)
	DeleteRelationship(id RelID) error
	GetRelationship(id RelID) (*Relationship, error)
	SetRelProperty(id RelID, key string, v value.Value) error
	RemoveRelProperty(id RelID, key string) error

	// ScanAllNodes returns every node id in insertion order.
	ScanAllNodes() []NodeID
	// ScanLabel returns node ids carrying label, in insertion order.
	ScanLabel(label string) []NodeID
	// ScanType returns relationship ids of relType, in insertion order.
	ScanType(relType string) []RelID

	// IncidentEdges returns relationship ids touching id in direction dir,
	// optionally filtered to relTypes (empty slice = any type), preserving
	// insertion order.
	IncidentEdges(id NodeID, dir Direction, relTypes []string) ([]RelID, error)

	NodeCount() int
	RelCount() int
	NodeCountByLabel(label string) int
	RelCountByType(relType string) int
	AvgOutDegreeByType(relType string) float64

	// Clone returns a deep, independent copy, used to isolate
	// variable-length path exploration and Yen-style candidate pruning from
	// the live working set.
	Clone() Store
}
