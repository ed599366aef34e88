package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherdb/cypherdb/internal/graph"
	"github.com/cypherdb/cypherdb/internal/value"
)

func openTestBackend(t *testing.T) *Backend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.db")
	b, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBackendPutAndLoadSnapshot(t *testing.T) {
	b := openTestBackend(t)

	tx, err := b.BeginTx()
	require.NoError(t, err)

	n := &graph.Node{ID: 1, Labels: []string{"Person"}, Props: map[string]value.Value{
		"name": value.StringValue("Alice"),
		"age":  value.IntValue(30),
	}}
	require.NoError(t, tx.PutNode(1, n))

	n2 := &graph.Node{ID: 2, Labels: []string{"Person"}, Props: map[string]value.Value{
		"name": value.StringValue("Bob"),
	}}
	require.NoError(t, tx.PutNode(2, n2))

	r := &graph.Relationship{ID: 1, Type: "KNOWS", From: 1, To: 2, Props: map[string]value.Value{
		"since": value.IntValue(2020),
	}}
	require.NoError(t, tx.PutRelationship(1, r))
	require.NoError(t, tx.Commit())

	store, err := b.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 2, store.NodeCount())
	assert.Equal(t, 1, store.RelCount())

	got, err := store.GetNode(1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Props["name"].S)
	assert.Equal(t, int64(30), got.Props["age"].I)

	gotRel, err := store.GetRelationship(1)
	require.NoError(t, err)
	assert.Equal(t, "KNOWS", gotRel.Type)
	assert.Equal(t, graph.NodeID(1), gotRel.From)
	assert.Equal(t, graph.NodeID(2), gotRel.To)
}

func TestBackendDeleteNodeRemovesLabelIndex(t *testing.T) {
	b := openTestBackend(t)

	tx, err := b.BeginTx()
	require.NoError(t, err)
	n := &graph.Node{ID: 1, Labels: []string{"Person"}, Props: map[string]value.Value{}}
	require.NoError(t, tx.PutNode(1, n))
	require.NoError(t, tx.Commit())

	tx2, err := b.BeginTx()
	require.NoError(t, err)
	require.NoError(t, tx2.DeleteNode(1, []string{"Person"}))
	require.NoError(t, tx2.Commit())

	store, err := b.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 0, store.NodeCount())
}

func TestBackendRollbackDiscardsChanges(t *testing.T) {
	b := openTestBackend(t)

	tx, err := b.BeginTx()
	require.NoError(t, err)
	n := &graph.Node{ID: 1, Labels: []string{"Person"}, Props: map[string]value.Value{}}
	require.NoError(t, tx.PutNode(1, n))
	require.NoError(t, tx.Rollback())

	store, err := b.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 0, store.NodeCount())
}

func TestBackendStatsRoundtrip(t *testing.T) {
	b := openTestBackend(t)

	tx, err := b.BeginTx()
	require.NoError(t, err)
	require.NoError(t, tx.PutStats(Stats{
		TotalNodes: 5,
		TotalRels:  3,
		NodesBy:    map[string]int{"Person": 5},
		RelsBy:     map[string]int{"KNOWS": 3},
	}))
	require.NoError(t, tx.Commit())

	s, err := b.ReadStats()
	require.NoError(t, err)
	assert.Equal(t, 5, s.TotalNodes)
	assert.Equal(t, 3, s.TotalRels)
	assert.Equal(t, 5, s.NodesBy["Person"])
}

func TestBackendPropertyRoundtripAllKinds(t *testing.T) {
	b := openTestBackend(t)

	tx, err := b.BeginTx()
	require.NoError(t, err)
	n := &graph.Node{ID: 1, Labels: []string{"Mixed"}, Props: map[string]value.Value{
		"s":   value.StringValue("hi"),
		"i":   value.IntValue(42),
		"f":   value.FloatValue(3.5),
		"b":   value.BoolValue(true),
		"nul": value.Value{Kind: value.Null},
		"lst": value.ListValue([]value.Value{value.IntValue(1), value.IntValue(2)}),
	}}
	require.NoError(t, tx.PutNode(1, n))
	require.NoError(t, tx.Commit())

	store, err := b.LoadSnapshot()
	require.NoError(t, err)
	got, err := store.GetNode(1)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Props["s"].S)
	assert.Equal(t, int64(42), got.Props["i"].I)
	assert.Equal(t, 3.5, got.Props["f"].F)
	assert.Equal(t, true, got.Props["b"].B)
	assert.True(t, got.Props["nul"].IsNull())
	require.Len(t, got.Props["lst"].L, 2)
	assert.Equal(t, int64(1), got.Props["lst"].L[0].I)
}

func TestBackendRejectsNodeValueAsProperty(t *testing.T) {
	b := openTestBackend(t)

	tx, err := b.BeginTx()
	require.NoError(t, err)
	n := &graph.Node{ID: 1, Labels: []string{"Bad"}, Props: map[string]value.Value{
		"ref": value.NodeValue(value.NodeRef{ID: 99}),
	}}
	err = tx.PutNode(1, n)
	assert.Error(t, err)
	tx.Rollback()
}
