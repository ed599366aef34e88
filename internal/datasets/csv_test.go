package datasets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherdb/cypherdb/internal/graph"
)

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestCSVLoaderWhitespaceDelimited(t *testing.T) {
	path := writeTemp(t, "edges.txt", "# SNAP-style edge list\n1 2\n2 3\n1 3\n")
	store := graph.NewMemoryStore()
	l := &CSVLoader{}
	require.NoError(t, l.Load(store, path))
	assert.Equal(t, 3, store.NodeCount())
	assert.Equal(t, 3, store.RelCount())
}

func TestCSVLoaderCommaDelimitedWithHeader(t *testing.T) {
	path := writeTemp(t, "edges.csv", "src,dst,type,weight\na,b,FOLLOWS,1.5\nb,c,FOLLOWS,2.0\n")
	store := graph.NewMemoryStore()
	l := &CSVLoader{Label: "User"}
	require.NoError(t, l.Load(store, path))
	assert.Equal(t, 3, store.NodeCount())
	assert.Equal(t, 2, store.RelCount())
	ids := store.ScanType("FOLLOWS")
	require.Len(t, ids, 2)
	rel, err := store.GetRelationship(ids[0])
	require.NoError(t, err)
	assert.Equal(t, "FOLLOWS", rel.Type)
	assert.Equal(t, 1.5, rel.Props["weight"].F)
}

func TestCSVLoaderDedupesRepeatedExternalIDs(t *testing.T) {
	path := writeTemp(t, "edges.txt", "1 2\n1 2\n")
	store := graph.NewMemoryStore()
	l := &CSVLoader{}
	require.NoError(t, l.Load(store, path))
	assert.Equal(t, 2, store.NodeCount())
	assert.Equal(t, 2, store.RelCount())
}

func TestLoaderRegistryDispatch(t *testing.T) {
	l, err := ForFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, "csv", l.Format())

	_, err = ForFormat("does-not-exist")
	assert.Error(t, err)
}
