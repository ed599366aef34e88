// Package stats snapshots graph-shape statistics used by the optimizer's
// cardinality estimator, grounded on the teacher's GraphStatistics concept
// from original_source (graphforge.planner.statistics): eagerly maintained
// counters over a Store rather than a periodic ANALYZE pass.
package stats

import "github.com/cypherdb/cypherdb/internal/graph"

// Snapshot is a read-only, point-in-time view of a graph's shape, cheap to
// recompute from a graph.Store because the store itself keeps running
// counts (graph.Store.NodeCount, NodeCountByLabel, ...).
type Snapshot struct {
	TotalNodes int
	TotalRels  int

	nodesByLabel map[string]int
	relsByType   map[string]int
	avgOutDegree map[string]float64
}

// Collect builds a Snapshot from the live store. Labels/relTypes are the
// full set of distinct label/type names known to the planner (typically
// gathered once at query-compile time from the store's indexes).
func Collect(g graph.Store, labels, relTypes []string) *Snapshot {
	s := &Snapshot{
		TotalNodes:   g.NodeCount(),
		TotalRels:    g.RelCount(),
		nodesByLabel: make(map[string]int, len(labels)),
		relsByType:   make(map[string]int, len(relTypes)),
		avgOutDegree: make(map[string]float64, len(relTypes)),
	}
	for _, l := range labels {
		s.nodesByLabel[l] = g.NodeCountByLabel(l)
	}
	for _, t := range relTypes {
		s.relsByType[t] = g.RelCountByType(t)
		s.avgOutDegree[t] = g.AvgOutDegreeByType(t)
	}
	return s
}

// NodesWithLabel estimates the number of nodes carrying label.
func (s *Snapshot) NodesWithLabel(label string) int {
	if n, ok := s.nodesByLabel[label]; ok {
		return n
	}
	return 0
}

// RelsOfType estimates the number of relationships of the given type.
func (s *Snapshot) RelsOfType(relType string) int {
	if n, ok := s.relsByType[relType]; ok {
		return n
	}
	return 0
}

// AvgOutDegree estimates the average number of outgoing relType
// relationships per node, used to cost an Expand without scanning it.
func (s *Snapshot) AvgOutDegree(relType string) float64 {
	return s.avgOutDegree[relType]
}

// EstimateScanCardinality estimates row count for a label scan (or, with
// label == "", a full node scan).
func (s *Snapshot) EstimateScanCardinality(label string) float64 {
	if label == "" {
		return float64(s.TotalNodes)
	}
	return float64(s.NodesWithLabel(label))
}

// EstimateExpandCardinality estimates row count for expanding inputRows
// input rows across a relationship of the given type (or every type, when
// relType == "").
func (s *Snapshot) EstimateExpandCardinality(inputRows float64, relType string) float64 {
	if relType == "" {
		if s.TotalNodes == 0 {
			return 0
		}
		return inputRows * (float64(s.TotalRels) / float64(s.TotalNodes))
	}
	return inputRows * s.AvgOutDegree(relType)
}

// EstimateFilterSelectivity applies a crude, fixed selectivity for a
// predicate: equality on a property is assumed more selective than a
// general comparison. The optimizer uses relative ordering more than
// absolute accuracy (spec §4.4).
func EstimateFilterSelectivity(isEquality bool) float64 {
	if isEquality {
		return 0.1
	}
	return 0.3
}
