package graph

import (
	"testing"

	"github.com/cypherdb/cypherdb/internal/value"
)

func TestCreateAndScanLabel(t *testing.T) {
	g := NewMemoryStore()
	a, _ := g.CreateNode([]string{"Person"}, nil)
	b, _ := g.CreateNode([]string{"Person"}, nil)
	_, _ = g.CreateNode([]string{"Dog"}, nil)

	ids := g.ScanLabel("Person")
	if len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Fatalf("expected [%d %d] in insertion order, got %v", a, b, ids)
	}
}

func TestDeleteNodeWithIncidentEdgesFails(t *testing.T) {
	g := NewMemoryStore()
	a, _ := g.CreateNode(nil, nil)
	b, _ := g.CreateNode(nil, nil)
	_, _ = g.CreateRelationship("KNOWS", a, b, nil)

	if err := g.DeleteNode(a, false); err == nil {
		t.Fatal("expected ConstraintViolation deleting a node with incident edges")
	}
	if err := g.DeleteNode(a, true); err != nil {
		t.Fatalf("DETACH DELETE should succeed: %v", err)
	}
	if g.ContainsNode(a) {
		t.Fatal("node should be gone after detach delete")
	}
}

func TestReferentialIntegrityOnRelationshipCreate(t *testing.T) {
	g := NewMemoryStore()
	a, _ := g.CreateNode(nil, nil)
	if _, err := g.CreateRelationship("KNOWS", a, 999, nil); err == nil {
		t.Fatal("expected NotFound creating a relationship to a missing node")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := NewMemoryStore()
	a, _ := g.CreateNode([]string{"Person"}, map[string]value.Value{"name": value.StringValue("Alice")})
	b, _ := g.CreateNode([]string{"Person"}, nil)
	_, _ = g.CreateRelationship("KNOWS", a, b, nil)

	clone := g.Clone()
	if err := clone.DeleteNode(a, true); err != nil {
		t.Fatalf("delete on clone failed: %v", err)
	}
	if !g.ContainsNode(a) {
		t.Fatal("deleting from the clone must not affect the original store")
	}
}

func TestIndexConsistencyAfterLabelMutation(t *testing.T) {
	g := NewMemoryStore()
	a, _ := g.CreateNode([]string{"Person"}, nil)

	if err := g.AddLabel(a, "Employee"); err != nil {
		t.Fatalf("AddLabel failed: %v", err)
	}
	if g.NodeCountByLabel("Employee") != 1 {
		t.Fatal("label index should reflect added label")
	}

	if err := g.RemoveLabel(a, "Person"); err != nil {
		t.Fatalf("RemoveLabel failed: %v", err)
	}
	if g.NodeCountByLabel("Person") != 0 {
		t.Fatal("label index should reflect removed label")
	}

	n, _ := g.GetNode(a)
	if n.HasLabel("Person") || !n.HasLabel("Employee") {
		t.Fatalf("node labels inconsistent with index: %v", n.Labels)
	}
}

func TestAvgOutDegreeByType(t *testing.T) {
	g := NewMemoryStore()
	a, _ := g.CreateNode(nil, nil)
	b, _ := g.CreateNode(nil, nil)
	_, _ = g.CreateRelationship("KNOWS", a, b, nil)
	_, _ = g.CreateRelationship("KNOWS", b, a, nil)

	if got := g.AvgOutDegreeByType("KNOWS"); got != 1.0 {
		t.Fatalf("expected avg out degree 1.0 for 2 nodes / 2 edges, got %v", got)
	}
}
