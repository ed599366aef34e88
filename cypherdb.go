// Package cypherdb is the embedding API: open a handle over an in-memory
// or durable graph, run Cypher text against it, or use the fast-path
// node/relationship constructors that bypass the parser entirely (spec
// §6.1). Adapted from the teacher's PGraph (New/Load/LoadFile/Query/Save/
// SaveFile), generalized from "one JSON blob, one DSL line" to a durable
// bbolt-backed store and a full Cypher statement pipeline.
package cypherdb

import (
	"context"

	"github.com/cypherdb/cypherdb/internal/ast"
	"github.com/cypherdb/cypherdb/internal/cerr"
	"github.com/cypherdb/cypherdb/internal/config"
	"github.com/cypherdb/cypherdb/internal/cylog"
	"github.com/cypherdb/cypherdb/internal/engine"
	"github.com/cypherdb/cypherdb/internal/executor"
	"github.com/cypherdb/cypherdb/internal/graph"
	"github.com/cypherdb/cypherdb/internal/parser"
	"github.com/cypherdb/cypherdb/internal/storage"
	"github.com/cypherdb/cypherdb/internal/value"
)

// ResultSet is the RowSet spec §6.1 describes: an ordered column list and
// the rows produced, each row an ordered Value tuple in column order.
type ResultSet = executor.ResultSet

// Handle is one open graph: an in-memory Store, optionally mirrored to a
// durable Backend. Not safe for concurrent use from multiple goroutines —
// the same single-threaded-per-handle model as the teacher's PGraph and
// spec §5.
type Handle struct {
	store   *graph.MemoryStore
	backend *storage.Backend
	eng     *engine.Engine
	cfg     config.Config
}

// Open returns a handle over the graph at path. An empty path falls back
// to the configured backend path (CYPHERDB_BACKEND_PATH); when that is
// empty too, the handle is purely in-memory with no durable mirror. A
// non-empty path opens (creating if absent) a bbolt-backed Backend and
// replays its contents into a fresh MemoryStore.
func Open(path string) (*Handle, error) {
	cfg := config.Load()
	_ = cylog.SetLevel(cfg.LogLevel)
	if path == "" {
		path = cfg.BackendPath
	}

	h := &Handle{}
	if path == "" {
		h.store = graph.NewMemoryStore()
	} else {
		backend, err := storage.Open(path)
		if err != nil {
			return nil, err
		}
		store, err := backend.LoadSnapshot()
		if err != nil {
			backend.Close()
			return nil, err
		}
		h.backend = backend
		h.store = store
	}
	h.cfg = cfg
	h.eng = engine.New(h.store)
	return h, nil
}

// Execute parses, plans, optimizes, and runs text, returning its RowSet.
// A write query that successfully completes is, when a durable Backend is
// attached, mirrored to it as a single bbolt transaction — the
// query-boundary commit point spec §4.5 describes. A failed query's
// partial in-memory mutations (if any were applied before the fault) are
// never written through to the Backend, so a durable handle cannot regress
// below its last successfully completed query.
func (h *Handle) Execute(ctx context.Context, text string, params map[string]value.Value) (*ResultSet, error) {
	if h.cfg.DefaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.DefaultTimeout)
		defer cancel()
	}
	rs, err := h.eng.Run(ctx, text, params)
	if err != nil {
		return nil, err
	}
	if h.backend != nil && mutates(text) {
		if err := h.syncBackend(); err != nil {
			return rs, err
		}
	}
	return rs, nil
}

// mutates reports whether text contains a clause that can change store
// state, used to skip the Backend sync after a read-only query.
func mutates(text string) bool {
	q, err := parser.Parse(text)
	if err != nil {
		return false
	}
	for _, c := range q.Clauses {
		switch c.(type) {
		case *ast.CreateClause, *ast.MergeClause, *ast.SetClause, *ast.RemoveClause, *ast.DeleteClause:
			return true
		}
	}
	return false
}

// syncBackend mirrors the live store's full contents into the Backend as
// one transaction. Re-encoding every node and relationship on each write is
// the simple, obviously-correct strategy for the scale this engine targets
// (spec's embedded, single-process use case); a production-scale backend
// would track per-query dirty sets instead.
func (h *Handle) syncBackend() error {
	tx, err := h.backend.BeginTx()
	if err != nil {
		return err
	}
	for _, id := range h.store.ScanAllNodes() {
		n, err := h.store.GetNode(id)
		if err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.PutNode(id, n); err != nil {
			tx.Rollback()
			return err
		}
	}
	for _, relType := range allTypes(h.store) {
		for _, id := range h.store.ScanType(relType) {
			r, err := h.store.GetRelationship(id)
			if err != nil {
				tx.Rollback()
				return err
			}
			if err := tx.PutRelationship(id, r); err != nil {
				tx.Rollback()
				return err
			}
		}
	}
	if err := tx.PutStats(storage.Stats{
		TotalNodes: h.store.NodeCount(),
		TotalRels:  h.store.RelCount(),
	}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func allTypes(store *graph.MemoryStore) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range store.ScanAllNodes() {
		edges, err := store.IncidentEdges(id, graph.Outgoing, nil)
		if err != nil {
			continue
		}
		for _, eid := range edges {
			r, err := store.GetRelationship(eid)
			if err != nil {
				continue
			}
			if !seen[r.Type] {
				seen[r.Type] = true
				out = append(out, r.Type)
			}
		}
	}
	return out
}

// CreateNode creates a node directly, bypassing the parser (spec §6.1's
// fast path). Returns a NodeRef snapshot of the created node's identity,
// labels, and properties.
func (h *Handle) CreateNode(labels []string, props map[string]value.Value) (value.NodeRef, error) {
	id, err := h.store.CreateNode(labels, props)
	if err != nil {
		return value.NodeRef{}, err
	}
	n, err := h.store.GetNode(id)
	if err != nil {
		return value.NodeRef{}, err
	}
	ref := value.NodeRef{ID: int64(id), Labels: n.Labels, Props: n.Props}
	if h.backend != nil {
		if err := h.syncBackend(); err != nil {
			return ref, err
		}
	}
	return ref, nil
}

// CreateRelationship creates a relationship directly between two existing
// nodes, bypassing the parser.
func (h *Handle) CreateRelationship(from, to value.NodeRef, relType string, props map[string]value.Value) (value.EdgeRef, error) {
	if !h.store.ContainsNode(graph.NodeID(from.ID)) {
		return value.EdgeRef{}, cerr.New(cerr.KindNotFound, "node %d not found", from.ID)
	}
	if !h.store.ContainsNode(graph.NodeID(to.ID)) {
		return value.EdgeRef{}, cerr.New(cerr.KindNotFound, "node %d not found", to.ID)
	}
	id, err := h.store.CreateRelationship(relType, graph.NodeID(from.ID), graph.NodeID(to.ID), props)
	if err != nil {
		return value.EdgeRef{}, err
	}
	r, err := h.store.GetRelationship(id)
	if err != nil {
		return value.EdgeRef{}, err
	}
	ref := value.EdgeRef{ID: int64(id), Type: r.Type, From: int64(r.From), To: int64(r.To), Props: r.Props}
	if h.backend != nil {
		if err := h.syncBackend(); err != nil {
			return ref, err
		}
	}
	return ref, nil
}

// StoreOf exposes h's underlying graph.Store, for callers (cmd/cli's
// dataset loaders) that need direct bulk-load access bypassing both the
// parser and the fast-path constructors. Mutating through the returned
// Store does not itself trigger a Backend sync — call Sync afterward if
// durability matters for a bulk load.
func StoreOf(h *Handle) (graph.Store, error) {
	return h.store, nil
}

// Sync mirrors the live store's full contents to the attached Backend, if
// any. A no-op on a purely in-memory handle.
func (h *Handle) Sync() error {
	if h.backend == nil {
		return nil
	}
	return h.syncBackend()
}

// Close flushes and releases the Backend, if one is attached.
func (h *Handle) Close() error {
	if h.backend == nil {
		return nil
	}
	cylog.Storage().Info("handle closing")
	return h.backend.Close()
}
