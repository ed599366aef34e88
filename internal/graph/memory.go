package graph

import (
	"maps"

	"github.com/cypherdb/cypherdb/internal/value"
)

// MemoryStore is the in-memory adjacency-list graph, adapted from the
// teacher's ProbabilisticAdjacencyListGraph: the same node/edge maps and
// out/in adjacency shape, generalized from single-probability Bernoulli
// edges to labelled multigraph nodes and typed relationships, plus label
// and type indexes for scans.
type MemoryStore struct {
	nodes map[NodeID]*Node
	rels  map[RelID]*Relationship

	out map[NodeID][]RelID
	in  map[NodeID][]RelID

	labelIndex map[string][]NodeID
	typeIndex  map[string][]RelID

	nextNodeID NodeID
	nextRelID  RelID
}

// NewMemoryStore creates an empty in-memory graph store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:      make(map[NodeID]*Node),
		rels:       make(map[RelID]*Relationship),
		out:        make(map[NodeID][]RelID),
		in:         make(map[NodeID][]RelID),
		labelIndex: make(map[string][]NodeID),
		typeIndex:  make(map[string][]RelID),
	}
}

func (g *MemoryStore) CreateNode(labels []string, props map[string]value.Value) (NodeID, error) {
	for _, l := range labels {
		if l == "" || !isLetter(rune(l[0])) {
			return 0, errInvalidName("label", l)
		}
	}
	id := g.nextNodeID
	g.nextNodeID++

	n := &Node{
		ID:     id,
		Labels: append([]string{}, labels...),
		Props:  maps.Clone(props),
	}
	if n.Props == nil {
		n.Props = make(map[string]value.Value)
	}
	g.nodes[id] = n
	g.out[id] = nil
	g.in[id] = nil

	for _, l := range dedupeLabels(labels) {
		g.labelIndex[l] = append(g.labelIndex[l], id)
	}
	return id, nil
}

// RestoreNode reinserts a node at its original id, used only when replaying
// a durable Backend's contents into a fresh store (internal/storage), where
// preserving the id a property graph's queries and results were built
// against matters more than the usual sequential-assignment invariant.
func (g *MemoryStore) RestoreNode(id NodeID, labels []string, props map[string]value.Value) {
	n := &Node{ID: id, Labels: append([]string{}, labels...), Props: maps.Clone(props)}
	if n.Props == nil {
		n.Props = make(map[string]value.Value)
	}
	g.nodes[id] = n
	g.out[id] = nil
	g.in[id] = nil
	for _, l := range dedupeLabels(labels) {
		g.labelIndex[l] = append(g.labelIndex[l], id)
	}
	if id >= g.nextNodeID {
		g.nextNodeID = id + 1
	}
}

// RestoreRelationship reinserts a relationship at its original id; see
// RestoreNode.
func (g *MemoryStore) RestoreRelationship(id RelID, relType string, from, to NodeID, props map[string]value.Value) {
	p := maps.Clone(props)
	if p == nil {
		p = make(map[string]value.Value)
	}
	r := &Relationship{ID: id, Type: relType, From: from, To: to, Props: p}
	g.rels[id] = r
	g.out[from] = append(g.out[from], id)
	g.in[to] = append(g.in[to], id)
	g.typeIndex[relType] = append(g.typeIndex[relType], id)
	if id >= g.nextRelID {
		g.nextRelID = id + 1
	}
}

func dedupeLabels(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func (g *MemoryStore) DeleteNode(id NodeID, detach bool) error {
	n, ok := g.nodes[id]
	if !ok {
		return errNodeNotFound(id)
	}

	incident := append(append([]RelID{}, g.out[id]...), g.in[id]...)
	if len(incident) > 0 && !detach {
		return errIncidentEdges(id)
	}
	for _, relID := range incident {
		_ = g.DeleteRelationship(relID)
	}

	for _, l := range n.Labels {
		g.labelIndex[l] = removeNodeID(g.labelIndex[l], id)
	}
	delete(g.nodes, id)
	delete(g.out, id)
	delete(g.in, id)
	return nil
}

func (g *MemoryStore) GetNode(id NodeID) (*Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, errNodeNotFound(id)
	}
	return n, nil
}

func (g *MemoryStore) ContainsNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

func (g *MemoryStore) SetNodeProperty(id NodeID, key string, v value.Value) error {
	n, ok := g.nodes[id]
	if !ok {
		return errNodeNotFound(id)
	}
	n.Props[key] = v
	return nil
}

func (g *MemoryStore) RemoveNodeProperty(id NodeID, key string) error {
	n, ok := g.nodes[id]
	if !ok {
		return errNodeNotFound(id)
	}
	delete(n.Props, key)
	return nil
}

func (g *MemoryStore) AddLabel(id NodeID, label string) error {
	n, ok := g.nodes[id]
	if !ok {
		return errNodeNotFound(id)
	}
	if n.HasLabel(label) {
		return nil
	}
	n.Labels = append(n.Labels, label)
	g.labelIndex[label] = append(g.labelIndex[label], id)
	return nil
}

func (g *MemoryStore) RemoveLabel(id NodeID, label string) error {
	n, ok := g.nodes[id]
	if !ok {
		return errNodeNotFound(id)
	}
	if !n.HasLabel(label) {
		return nil
	}
	newLabels := make([]string, 0, len(n.Labels))
	for _, l := range n.Labels {
		if l != label {
			newLabels = append(newLabels, l)
		}
	}
	n.Labels = newLabels
	g.labelIndex[label] = removeNodeID(g.labelIndex[label], id)
	return nil
}

func (g *MemoryStore) CreateRelationship(relType string, from, to NodeID, props map[string]value.Value) (RelID, error) {
	if relType == "" || !isLetter(rune(relType[0])) {
		return 0, errInvalidName("relationship type", relType)
	}
	if !g.ContainsNode(from) {
		return 0, errNodeNotFound(from)
	}
	if !g.ContainsNode(to) {
		return 0, errNodeNotFound(to)
	}

	id := g.nextRelID
	g.nextRelID++

	props = maps.Clone(props)
	if props == nil {
		props = make(map[string]value.Value)
	}
	r := &Relationship{ID: id, Type: relType, From: from, To: to, Props: props}
	g.rels[id] = r
	g.out[from] = append(g.out[from], id)
	g.in[to] = append(g.in[to], id)
	g.typeIndex[relType] = append(g.typeIndex[relType], id)
	return id, nil
}

func (g *MemoryStore) DeleteRelationship(id RelID) error {
	r, ok := g.rels[id]
	if !ok {
		return errRelNotFound(id)
	}
	g.out[r.From] = removeRelID(g.out[r.From], id)
	g.in[r.To] = removeRelID(g.in[r.To], id)
	g.typeIndex[r.Type] = removeRelID(g.typeIndex[r.Type], id)
	delete(g.rels, id)
	return nil
}

func (g *MemoryStore) GetRelationship(id RelID) (*Relationship, error) {
	r, ok := g.rels[id]
	if !ok {
		return nil, errRelNotFound(id)
	}
	return r, nil
}

func (g *MemoryStore) SetRelProperty(id RelID, key string, v value.Value) error {
	r, ok := g.rels[id]
	if !ok {
		return errRelNotFound(id)
	}
	r.Props[key] = v
	return nil
}

func (g *MemoryStore) RemoveRelProperty(id RelID, key string) error {
	r, ok := g.rels[id]
	if !ok {
		return errRelNotFound(id)
	}
	delete(r.Props, key)
	return nil
}

func (g *MemoryStore) ScanAllNodes() []NodeID {
	out := make([]NodeID, 0, len(g.nodes))
	for id := NodeID(0); id < g.nextNodeID; id++ {
		if _, ok := g.nodes[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (g *MemoryStore) ScanLabel(label string) []NodeID {
	src := g.labelIndex[label]
	out := make([]NodeID, len(src))
	copy(out, src)
	return out
}

func (g *MemoryStore) ScanType(relType string) []RelID {
	src := g.typeIndex[relType]
	out := make([]RelID, len(src))
	copy(out, src)
	return out
}

func (g *MemoryStore) IncidentEdges(id NodeID, dir Direction, relTypes []string) ([]RelID, error) {
	if !g.ContainsNode(id) {
		return nil, errNodeNotFound(id)
	}
	var src []RelID
	switch dir {
	case Outgoing:
		src = g.out[id]
	case Incoming:
		src = g.in[id]
	case Either:
		src = append(append([]RelID{}, g.out[id]...), g.in[id]...)
	}
	if len(relTypes) == 0 {
		out := make([]RelID, len(src))
		copy(out, src)
		return out, nil
	}
	allowed := make(map[string]bool, len(relTypes))
	for _, t := range relTypes {
		allowed[t] = true
	}
	out := make([]RelID, 0, len(src))
	for _, relID := range src {
		if allowed[g.rels[relID].Type] {
			out = append(out, relID)
		}
	}
	return out, nil
}

func (g *MemoryStore) NodeCount() int { return len(g.nodes) }
func (g *MemoryStore) RelCount() int  { return len(g.rels) }

func (g *MemoryStore) NodeCountByLabel(label string) int { return len(g.labelIndex[label]) }
func (g *MemoryStore) RelCountByType(relType string) int { return len(g.typeIndex[relType]) }

func (g *MemoryStore) AvgOutDegreeByType(relType string) float64 {
	if len(g.nodes) == 0 {
		return 0
	}
	return float64(len(g.typeIndex[relType])) / float64(len(g.nodes))
}

// Clone returns a deep, independent copy of the store.
func (g *MemoryStore) Clone() Store {
	clone := NewMemoryStore()
	clone.nextNodeID = g.nextNodeID
	clone.nextRelID = g.nextRelID

	for id, n := range g.nodes {
		clone.nodes[id] = &Node{
			ID:     n.ID,
			Labels: append([]string{}, n.Labels...),
			Props:  maps.Clone(n.Props),
		}
		clone.out[id] = nil
		clone.in[id] = nil
	}
	for id, r := range g.rels {
		clone.rels[id] = &Relationship{
			ID: r.ID, Type: r.Type, From: r.From, To: r.To,
			Props: maps.Clone(r.Props),
		}
	}
	for id, list := range g.out {
		clone.out[id] = append([]RelID{}, list...)
	}
	for id, list := range g.in {
		clone.in[id] = append([]RelID{}, list...)
	}
	for l, list := range g.labelIndex {
		clone.labelIndex[l] = append([]NodeID{}, list...)
	}
	for t, list := range g.typeIndex {
		clone.typeIndex[t] = append([]RelID{}, list...)
	}
	return clone
}

func removeNodeID(s []NodeID, id NodeID) []NodeID {
	for i, v := range s {
		if v == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

func removeRelID(s []RelID, id RelID) []RelID {
	for i, v := range s {
		if v == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
