package datasets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherdb/cypherdb/internal/graph"
)

func TestCypherLoaderExecutesStatements(t *testing.T) {
	path := writeTemp(t, "seed.cypher", `
CREATE (a:Person {name: "Ada"});
CREATE (b:Person {name: "Bob"});
MATCH (a:Person {name: "Ada"}), (b:Person {name: "Bob"}) CREATE (a)-[:KNOWS]->(b);
`)
	store := graph.NewMemoryStore()
	l := &CypherLoader{}
	require.NoError(t, l.Load(store, path))
	assert.Equal(t, 2, store.NodeCount())
	assert.Equal(t, 1, store.RelCount())
}

func TestCypherLoaderSkipsSchemaStatements(t *testing.T) {
	path := writeTemp(t, "seed.cypher", `
CREATE CONSTRAINT ON (n:Person) ASSERT n.name IS UNIQUE;
CREATE (a:Person {name: "Ada"});
`)
	store := graph.NewMemoryStore()
	l := &CypherLoader{}
	require.NoError(t, l.Load(store, path))
	assert.Equal(t, 1, store.NodeCount())
}

func TestCypherLoaderIgnoresCommentLines(t *testing.T) {
	path := writeTemp(t, "seed.cypher", "// a comment\nCREATE (a:Person);\n")
	store := graph.NewMemoryStore()
	l := &CypherLoader{}
	require.NoError(t, l.Load(store, path))
	assert.Equal(t, 1, store.NodeCount())
}
