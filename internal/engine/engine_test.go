package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherdb/cypherdb/internal/cerr"
	"github.com/cypherdb/cypherdb/internal/graph"
	"github.com/cypherdb/cypherdb/internal/value"
)

func TestEngineCreateAndMatchRoundtrip(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	_, err := e.Run(context.Background(), `CREATE (n:Person {name: "Alice", age: 30})`, nil)
	require.NoError(t, err)

	rs, err := e.Run(context.Background(), `MATCH (n:Person) RETURN n.name AS name, n.age AS age`, nil)
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	vals := rs.Project()
	require.Len(t, vals, 1)
	assert.Equal(t, "Alice", vals[0][0].S)
	assert.Equal(t, int64(30), vals[0][1].I)
}

func TestEngineMatchRelationshipPattern(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	_, err := e.Run(context.Background(), `CREATE (a:Person {name: "Alice"})-[:KNOWS]->(b:Person {name: "Bob"})`, nil)
	require.NoError(t, err)

	rs, err := e.Run(context.Background(), `MATCH (a:Person)-[:KNOWS]->(b:Person) RETURN a.name AS a, b.name AS b`, nil)
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	vals := rs.Project()
	assert.Equal(t, "Alice", vals[0][0].S)
	assert.Equal(t, "Bob", vals[0][1].S)
}

func TestEngineVariableLengthExpandAllowsNodeRevisitViaDistinctEdge(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	// Two distinct KNOWS relationships between the same pair of nodes
	// (a multigraph). A 2-hop undirected walk out of a and back to a must
	// be allowed: it revisits the node a but never reuses a relationship.
	// There are two such walks, one per order of the two relationships.
	_, err := e.Run(context.Background(),
		`CREATE (a:Person {name: "A"})-[:KNOWS]-(b:Person {name: "B"}), (a)-[:KNOWS]-(b)`, nil)
	require.NoError(t, err)

	rs, err := e.Run(context.Background(),
		`MATCH (a:Person {name: "A"})-[:KNOWS*2..2]-(m) RETURN m.name AS name`, nil)
	require.NoError(t, err)
	vals := rs.Project()
	require.Len(t, vals, 2)
	assert.Equal(t, "A", vals[0][0].S)
	assert.Equal(t, "A", vals[1][0].S)
}

func TestEngineOptionalMatchYieldsNullOnNoMatch(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	_, err := e.Run(context.Background(), `CREATE (n:Person {name: "Solo"})`, nil)
	require.NoError(t, err)

	rs, err := e.Run(context.Background(),
		`MATCH (n:Person) OPTIONAL MATCH (n)-[:KNOWS]->(m) RETURN n.name AS name, m AS friend`, nil)
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	vals := rs.Project()
	assert.Equal(t, "Solo", vals[0][0].S)
	assert.True(t, vals[0][1].IsNull())
}

func TestEngineStandaloneOptionalMatchYieldsNullRowWhenHeadUnbound(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	_, err := e.Run(context.Background(), `CREATE (:Person {name: "Young", age: 20})`, nil)
	require.NoError(t, err)

	rs, err := e.Run(context.Background(),
		`OPTIONAL MATCH (p:Person) WHERE p.age > 999 RETURN p AS p`, nil)
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)
	assert.True(t, rs.Rows[0]["p"].IsNull())
}

func TestEngineStandaloneOptionalMatchYieldsRowsWhenHeadMatches(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	_, err := e.Run(context.Background(), `CREATE (:Person {name: "Old", age: 1000})`, nil)
	require.NoError(t, err)

	rs, err := e.Run(context.Background(),
		`OPTIONAL MATCH (p:Person) WHERE p.age > 999 RETURN p.name AS name`, nil)
	require.NoError(t, err)
	vals := rs.Project()
	require.Len(t, vals, 1)
	assert.Equal(t, "Old", vals[0][0].S)
}

func TestEngineHexAndOctalLiteralsEndToEnd(t *testing.T) {
	// Ported from original_source's test_hex_octal_literals.py.
	store := graph.NewMemoryStore()
	e := New(store)

	cases := []struct {
		query string
		want  int64
	}{
		{`RETURN 0xFF AS n`, 255},
		{`RETURN -0x1 AS n`, -1},
		{`RETURN -0x0 AS n`, 0},
		{`RETURN 0x10 + 0x10 AS n`, 32},
		{`RETURN 0o17 AS n`, 15},
		{`RETURN -0o1 AS n`, -1},
		{`RETURN 0o10 + 0o10 AS n`, 16},
		{`RETURN 9223372036854775807 AS n`, math.MaxInt64},
		{`RETURN 0x7FFFFFFFFFFFFFFF AS n`, math.MaxInt64},
		{`RETURN -0x8000000000000000 AS n`, math.MinInt64},
	}
	for _, c := range cases {
		rs, err := e.Run(context.Background(), c.query, nil)
		require.NoError(t, err, c.query)
		vals := rs.Project()
		require.Len(t, vals, 1, c.query)
		assert.Equal(t, c.want, vals[0][0].I, c.query)
	}
}

func TestEngineHexLiteralInWhereAndCreate(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	_, err := e.Run(context.Background(), `CREATE (:Config {flags: 0xA5})`, nil)
	require.NoError(t, err)

	rs, err := e.Run(context.Background(), `MATCH (c:Config) WHERE c.flags = 0xA5 RETURN c.flags AS f`, nil)
	require.NoError(t, err)
	vals := rs.Project()
	require.Len(t, vals, 1)
	assert.Equal(t, int64(0xA5), vals[0][0].I)
}

func TestEngineIntegerLiteralOverflowRaises(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	for _, query := range []string{
		`RETURN 0x8000000000000000 AS n`,
		`RETURN -0x8000000000000001 AS n`,
		`RETURN 0o1000000000000000000000 AS n`,
		`RETURN 9223372036854775808 AS n`,
	} {
		_, err := e.Run(context.Background(), query, nil)
		require.Error(t, err, query)
		kind, ok := cerr.KindOf(err)
		require.True(t, ok, query)
		assert.Equal(t, cerr.KindOverflow, kind, query)
	}
}

func TestEngineSetAndRemove(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	_, err := e.Run(context.Background(), `CREATE (n:Person {name: "Carl", age: 40})`, nil)
	require.NoError(t, err)
	_, err = e.Run(context.Background(), `MATCH (n:Person {name: "Carl"}) SET n.age = 41`, nil)
	require.NoError(t, err)
	_, err = e.Run(context.Background(), `MATCH (n:Person {name: "Carl"}) REMOVE n.age`, nil)
	require.NoError(t, err)

	rs, err := e.Run(context.Background(), `MATCH (n:Person {name: "Carl"}) RETURN n.age AS age`, nil)
	require.NoError(t, err)
	vals := rs.Project()
	assert.True(t, vals[0][0].IsNull())
}

func TestEngineDeleteDetach(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	_, err := e.Run(context.Background(), `CREATE (a:Person {name: "X"})-[:KNOWS]->(b:Person {name: "Y"})`, nil)
	require.NoError(t, err)
	_, err = e.Run(context.Background(), `MATCH (n:Person {name: "X"}) DETACH DELETE n`, nil)
	require.NoError(t, err)

	rs, err := e.Run(context.Background(), `MATCH (n:Person) RETURN n.name AS name`, nil)
	require.NoError(t, err)
	vals := rs.Project()
	require.Len(t, vals, 1)
	assert.Equal(t, "Y", vals[0][0].S)
}

func TestEngineMergeCreatesOnce(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	for i := 0; i < 2; i++ {
		_, err := e.Run(context.Background(), `MERGE (n:Person {name: "Uniq"}) ON CREATE SET n.created = true`, nil)
		require.NoError(t, err)
	}

	rs, err := e.Run(context.Background(), `MATCH (n:Person {name: "Uniq"}) RETURN n.name AS name`, nil)
	require.NoError(t, err)
	assert.Len(t, rs.Rows, 1)
}

func TestEngineMergeRelationshipPatternIsIdempotent(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	_, err := e.Run(context.Background(), `CREATE (:Person {name: "Alice"}), (:Person {name: "Bob"})`, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := e.Run(context.Background(),
			`MATCH (a:Person {name: "Alice"}), (b:Person {name: "Bob"}) MERGE (a)-[:KNOWS]->(b)`, nil)
		require.NoError(t, err)
	}

	rs, err := e.Run(context.Background(), `MATCH (:Person)-[r:KNOWS]->(:Person) RETURN r`, nil)
	require.NoError(t, err)
	assert.Len(t, rs.Rows, 1)
}

func TestEngineMergeWholePatternCreatesRelationshipOnce(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	for i := 0; i < 3; i++ {
		_, err := e.Run(context.Background(),
			`MERGE (a:Person {name: "Carol"})-[:KNOWS]->(b:Person {name: "Dan"})`, nil)
		require.NoError(t, err)
	}

	rs, err := e.Run(context.Background(), `MATCH (:Person {name: "Carol"})-[r:KNOWS]->(:Person {name: "Dan"}) RETURN r`, nil)
	require.NoError(t, err)
	assert.Len(t, rs.Rows, 1)

	nodes, err := e.Run(context.Background(), `MATCH (n:Person) RETURN n`, nil)
	require.NoError(t, err)
	assert.Len(t, nodes.Rows, 2)
}

func TestEngineMergeNodePropertyConstraintSeesOuterRow(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	_, err := e.Run(context.Background(), `CREATE (:Person {name: "Ada"})`, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := e.Run(context.Background(),
			`MATCH (a:Person {name: "Ada"}) MERGE (b:Person {name: a.name})`, nil)
		require.NoError(t, err)
	}

	rs, err := e.Run(context.Background(), `MATCH (n:Person {name: "Ada"}) RETURN n`, nil)
	require.NoError(t, err)
	assert.Len(t, rs.Rows, 1)
}

func TestEngineUnwindAndAggregate(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	_, err := e.Run(context.Background(), `UNWIND [1, 2, 3] AS x CREATE (:Num {v: x})`, nil)
	require.NoError(t, err)

	rs, err := e.Run(context.Background(), `MATCH (n:Num) RETURN count(n) AS c`, nil)
	require.NoError(t, err)
	vals := rs.Project()
	assert.Equal(t, int64(3), vals[0][0].I)
}

func TestEngineQueryParameters(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	_, err := e.Run(context.Background(), `CREATE (n:Person {name: $name})`, map[string]value.Value{
		"name": value.StringValue("Param'd"),
	})
	require.NoError(t, err)

	rs, err := e.Run(context.Background(), `MATCH (n:Person {name: $name}) RETURN n.name AS name`, map[string]value.Value{
		"name": value.StringValue("Param'd"),
	})
	require.NoError(t, err)
	vals := rs.Project()
	assert.Equal(t, "Param'd", vals[0][0].S)
}

func TestEngineSyntaxErrorWrapsToSentinelKind(t *testing.T) {
	store := graph.NewMemoryStore()
	e := New(store)

	_, err := e.Run(context.Background(), `MATCH (n RETURN n`, nil)
	require.Error(t, err)
	assert.True(t, ErrSyntax.Is(err))
}

