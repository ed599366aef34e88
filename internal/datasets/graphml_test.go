package datasets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherdb/cypherdb/internal/graph"
)

const sampleGraphML = `<?xml version="1.0"?>
<graphml>
  <key id="d0" for="node" attr.name="name" attr.type="string"/>
  <key id="d1" for="edge" attr.name="weight" attr.type="double"/>
  <graph edgedefault="directed">
    <node id="n0"><data key="d0">Ada</data></node>
    <node id="n1"><data key="d0">Bob</data></node>
    <edge source="n0" target="n1"><data key="d1">2.5</data></edge>
  </graph>
</graphml>`

func TestGraphMLLoaderImportsNodesAndEdges(t *testing.T) {
	path := writeTemp(t, "sample.graphml", sampleGraphML)
	store := graph.NewMemoryStore()
	l := &GraphMLLoader{}
	require.NoError(t, l.Load(store, path))

	assert.Equal(t, 2, store.NodeCount())
	assert.Equal(t, 1, store.RelCount())

	ids := store.ScanLabel("Node")
	require.Len(t, ids, 2)
	n, err := store.GetNode(ids[0])
	require.NoError(t, err)
	assert.Contains(t, []string{"Ada", "Bob"}, n.Props["name"].S)

	relIDs := store.ScanType("LINK")
	require.Len(t, relIDs, 1)
	rel, err := store.GetRelationship(relIDs[0])
	require.NoError(t, err)
	assert.InDelta(t, 2.5, rel.Props["weight"].F, 1e-9)
}

func TestGraphMLLoaderUsesCustomLabelAndType(t *testing.T) {
	path := writeTemp(t, "sample.graphml", sampleGraphML)
	store := graph.NewMemoryStore()
	l := &GraphMLLoader{NodeLabel: "Account", RelType: "TRANSFER"}
	require.NoError(t, l.Load(store, path))

	assert.Len(t, store.ScanLabel("Account"), 2)
	assert.Len(t, store.ScanType("TRANSFER"), 1)
}

func TestGraphMLLoaderRejectsUnknownEdgeEndpoint(t *testing.T) {
	bad := `<?xml version="1.0"?>
<graphml>
  <graph edgedefault="directed">
    <node id="n0"></node>
    <edge source="n0" target="missing"></edge>
  </graph>
</graphml>`
	path := writeTemp(t, "bad.graphml", bad)
	store := graph.NewMemoryStore()
	l := &GraphMLLoader{}
	assert.Error(t, l.Load(store, path))
}
