package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"

	"github.com/cypherdb/cypherdb/internal/cerr"
	"github.com/cypherdb/cypherdb/internal/cylog"
	"github.com/cypherdb/cypherdb/internal/graph"
)

var (
	bucketNodes  = []byte("nodes")
	bucketEdges  = []byte("edges")
	bucketLabels = []byte("labelIndex")
	bucketTypes  = []byte("typeIndex")
	bucketStats  = []byte("stats")
)

var statsKey = []byte("snapshot")

// Stats is the durable counters bucket's single record, refreshed on every
// commit so a reopened Backend can answer cardinality questions without
// replaying every node and edge first.
type Stats struct {
	TotalNodes int            `msgpack:"totalNodes"`
	TotalRels  int            `msgpack:"totalRels"`
	LastCommit int64          `msgpack:"lastCommit"` // unix nanoseconds, stamped by the caller
	NodesBy    map[string]int `msgpack:"nodesByLabel"`
	RelsBy     map[string]int `msgpack:"relsByType"`
}

// Backend is the durable mirror behind a graph.Store: one bbolt file,
// one bucket per entity kind, msgpack-encoded records keyed by the
// entity's big-endian int64 id — grounded on bbolt's own Bolt/bbolt-cmd
// convention of a bucket-per-collection KV layout (spec §4.5).
type Backend struct {
	db *bbolt.DB
}

// Open opens (creating if absent) the bbolt file at path and ensures every
// bucket this Backend needs exists.
func Open(path string) (*Backend, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, cerr.New(cerr.KindStorageError, "opening backend at %s: %v", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketNodes, bucketEdges, bucketLabels, bucketTypes, bucketStats} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, cerr.New(cerr.KindStorageError, "initializing buckets at %s: %v", path, err)
	}
	cylog.Storage().WithField("path", path).Info("backend opened")
	return &Backend{db: db}, nil
}

// Close flushes and releases the underlying bbolt file.
func (b *Backend) Close() error {
	return b.db.Close()
}

func idKey(id int64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(id))
	return k
}

// Tx is one query's worth of durable mutations: every call commits or
// rolls back as a unit, matching the in-memory executor's own
// commit-per-query boundary (spec §4.5).
type Tx struct {
	tx *bbolt.Tx
}

// BeginTx starts a writable bbolt transaction.
func (b *Backend) BeginTx() (*Tx, error) {
	tx, err := b.db.Begin(true)
	if err != nil {
		return nil, cerr.New(cerr.KindStorageError, "beginning transaction: %v", err)
	}
	return &Tx{tx: tx}, nil
}

// PutNode upserts a node record.
func (t *Tx) PutNode(id graph.NodeID, n *graph.Node) error {
	props, err := encodeProps(n.Props)
	if err != nil {
		return err
	}
	buf, err := msgpack.Marshal(&wireNode{Labels: n.Labels, Props: props})
	if err != nil {
		return cerr.New(cerr.KindStorageError, "encoding node %d: %v", id, err)
	}
	if err := t.tx.Bucket(bucketNodes).Put(idKey(int64(id)), buf); err != nil {
		return cerr.New(cerr.KindStorageError, "writing node %d: %v", id, err)
	}
	for _, l := range n.Labels {
		if err := t.addToLabelIndex(l, id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteNode removes a node record. The caller is responsible for already
// having removed its incident relationships (graph.Store.DeleteNode's
// detach contract).
func (t *Tx) DeleteNode(id graph.NodeID, labels []string) error {
	if err := t.tx.Bucket(bucketNodes).Delete(idKey(int64(id))); err != nil {
		return cerr.New(cerr.KindStorageError, "deleting node %d: %v", id, err)
	}
	for _, l := range labels {
		if err := t.removeFromLabelIndex(l, id); err != nil {
			return err
		}
	}
	return nil
}

// PutRelationship upserts a relationship record.
func (t *Tx) PutRelationship(id graph.RelID, r *graph.Relationship) error {
	props, err := encodeProps(r.Props)
	if err != nil {
		return err
	}
	buf, err := msgpack.Marshal(&wireRelationship{
		Type: r.Type, From: int64(r.From), To: int64(r.To), Props: props,
	})
	if err != nil {
		return cerr.New(cerr.KindStorageError, "encoding relationship %d: %v", id, err)
	}
	if err := t.tx.Bucket(bucketEdges).Put(idKey(int64(id)), buf); err != nil {
		return cerr.New(cerr.KindStorageError, "writing relationship %d: %v", id, err)
	}
	return t.addToTypeIndex(r.Type, id)
}

// DeleteRelationship removes a relationship record.
func (t *Tx) DeleteRelationship(id graph.RelID, relType string) error {
	if err := t.tx.Bucket(bucketEdges).Delete(idKey(int64(id))); err != nil {
		return cerr.New(cerr.KindStorageError, "deleting relationship %d: %v", id, err)
	}
	return t.removeFromTypeIndex(relType, id)
}

// PutStats overwrites the durable counters record.
func (t *Tx) PutStats(s Stats) error {
	buf, err := msgpack.Marshal(&s)
	if err != nil {
		return cerr.New(cerr.KindStorageError, "encoding stats: %v", err)
	}
	if err := t.tx.Bucket(bucketStats).Put(statsKey, buf); err != nil {
		return cerr.New(cerr.KindStorageError, "writing stats: %v", err)
	}
	return nil
}

// Commit finalizes every mutation made against t as a unit.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return cerr.New(cerr.KindStorageError, "committing transaction: %v", err)
	}
	cylog.Storage().Debug("transaction committed")
	return nil
}

// Rollback discards every mutation made against t.
func (t *Tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		return cerr.New(cerr.KindStorageError, "rolling back transaction: %v", err)
	}
	cylog.Storage().Debug("transaction rolled back")
	return nil
}

func (t *Tx) addToLabelIndex(label string, id graph.NodeID) error {
	b, err := t.tx.Bucket(bucketLabels).CreateBucketIfNotExists([]byte(label))
	if err != nil {
		return cerr.New(cerr.KindStorageError, "label index %s: %v", label, err)
	}
	return b.Put(idKey(int64(id)), []byte{1})
}

func (t *Tx) removeFromLabelIndex(label string, id graph.NodeID) error {
	b := t.tx.Bucket(bucketLabels).Bucket([]byte(label))
	if b == nil {
		return nil
	}
	return b.Delete(idKey(int64(id)))
}

func (t *Tx) addToTypeIndex(relType string, id graph.RelID) error {
	b, err := t.tx.Bucket(bucketTypes).CreateBucketIfNotExists([]byte(relType))
	if err != nil {
		return cerr.New(cerr.KindStorageError, "type index %s: %v", relType, err)
	}
	return b.Put(idKey(int64(id)), []byte{1})
}

func (t *Tx) removeFromTypeIndex(relType string, id graph.RelID) error {
	b := t.tx.Bucket(bucketTypes).Bucket([]byte(relType))
	if b == nil {
		return nil
	}
	return b.Delete(idKey(int64(id)))
}

// LoadSnapshot replays every durable node and relationship into a fresh
// graph.MemoryStore, preserving original ids via RestoreNode/
// RestoreRelationship so that results computed before a restart (ids,
// cached paths) stay valid after one.
func (b *Backend) LoadSnapshot() (*graph.MemoryStore, error) {
	store := graph.NewMemoryStore()
	err := b.db.View(func(tx *bbolt.Tx) error {
		nb := tx.Bucket(bucketNodes)
		if err := nb.ForEach(func(k, v []byte) error {
			var wn wireNode
			if err := msgpack.Unmarshal(v, &wn); err != nil {
				return fmt.Errorf("decoding node: %w", err)
			}
			props, err := decodeProps(wn.Props)
			if err != nil {
				return err
			}
			id := graph.NodeID(int64(binary.BigEndian.Uint64(k)))
			store.RestoreNode(id, wn.Labels, props)
			return nil
		}); err != nil {
			return err
		}
		eb := tx.Bucket(bucketEdges)
		return eb.ForEach(func(k, v []byte) error {
			var wr wireRelationship
			if err := msgpack.Unmarshal(v, &wr); err != nil {
				return fmt.Errorf("decoding relationship: %w", err)
			}
			props, err := decodeProps(wr.Props)
			if err != nil {
				return err
			}
			id := graph.RelID(int64(binary.BigEndian.Uint64(k)))
			store.RestoreRelationship(id, wr.Type, graph.NodeID(wr.From), graph.NodeID(wr.To), props)
			return nil
		})
	})
	if err != nil {
		return nil, cerr.New(cerr.KindStorageError, "loading snapshot: %v", err)
	}
	cylog.Storage().WithFields(map[string]any{
		"nodes": store.NodeCount(), "rels": store.RelCount(),
	}).Info("snapshot loaded")
	return store, nil
}

// ReadStats returns the last-committed durable counters record, or the
// zero Stats if none has ever been written.
func (b *Backend) ReadStats() (Stats, error) {
	var s Stats
	err := b.db.View(func(tx *bbolt.Tx) error {
		buf := tx.Bucket(bucketStats).Get(statsKey)
		if buf == nil {
			return nil
		}
		return msgpack.Unmarshal(buf, &s)
	})
	if err != nil {
		return Stats{}, cerr.New(cerr.KindStorageError, "reading stats: %v", err)
	}
	return s, nil
}
