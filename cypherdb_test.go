package cypherdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherdb/cypherdb/internal/value"
)

func TestHandleInMemoryExecuteAndFastPath(t *testing.T) {
	h, err := Open("")
	require.NoError(t, err)
	defer h.Close()

	ref, err := h.CreateNode([]string{"Person"}, map[string]value.Value{
		"name": value.StringValue("Ada"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Person"}, ref.Labels)

	rs, err := h.Execute(context.Background(), `MATCH (n:Person) RETURN n.name AS name`, nil)
	require.NoError(t, err)
	vals := rs.Project()
	require.Len(t, vals, 1)
	assert.Equal(t, "Ada", vals[0][0].S)
}

func TestHandleCreateRelationshipValidatesEndpoints(t *testing.T) {
	h, err := Open("")
	require.NoError(t, err)
	defer h.Close()

	a, err := h.CreateNode([]string{"Person"}, nil)
	require.NoError(t, err)

	_, err = h.CreateRelationship(a, value.NodeRef{ID: 9999}, "KNOWS", nil)
	assert.Error(t, err)
}

func TestHandleDurableRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.db")

	h, err := Open(path)
	require.NoError(t, err)
	_, err = h.Execute(context.Background(), `CREATE (n:Person {name: "Durable"})`, nil)
	require.NoError(t, err)
	require.NoError(t, h.Close())

	h2, err := Open(path)
	require.NoError(t, err)
	defer h2.Close()

	rs, err := h2.Execute(context.Background(), `MATCH (n:Person) RETURN n.name AS name`, nil)
	require.NoError(t, err)
	vals := rs.Project()
	require.Len(t, vals, 1)
	assert.Equal(t, "Durable", vals[0][0].S)
}

func TestHandleReadOnlyQuerySkipsBackendSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.db")
	h, err := Open(path)
	require.NoError(t, err)
	defer h.Close()

	_, err = h.Execute(context.Background(), `MATCH (n) RETURN n`, nil)
	require.NoError(t, err)
}
