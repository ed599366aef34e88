package datasets

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherdb/cypherdb/internal/graph"
	"github.com/cypherdb/cypherdb/internal/value"
)

func TestJSONGraphExportThenLoadRoundtrip(t *testing.T) {
	store := graph.NewMemoryStore()
	a, err := store.CreateNode([]string{"Person"}, map[string]value.Value{
		"name": value.StringValue("Ada"),
		"age":  value.IntValue(30),
	})
	require.NoError(t, err)
	b, err := store.CreateNode([]string{"Person"}, nil)
	require.NoError(t, err)
	_, err = store.CreateRelationship("KNOWS", a, b, map[string]value.Value{"since": value.IntValue(2020)})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, Export(store, path))

	out := graph.NewMemoryStore()
	l := &JSONGraphLoader{}
	require.NoError(t, l.Load(out, path))

	assert.Equal(t, store.NodeCount(), out.NodeCount())
	assert.Equal(t, store.RelCount(), out.RelCount())

	n, err := out.GetNode(a)
	require.NoError(t, err)
	assert.Equal(t, "Ada", n.Props["name"].S)
	assert.Equal(t, int64(30), n.Props["age"].I)
}

func TestJSONGraphLoaderRejectsMalformedJSON(t *testing.T) {
	path := writeTemp(t, "bad.json", "{not json")
	store := graph.NewMemoryStore()
	l := &JSONGraphLoader{}
	assert.Error(t, l.Load(store, path))
}
