package graph

import (
	"errors"
	"math"
	"testing"
)

func buildPath(t *testing.T, types ...string) (*Graph, []NodeID) {
	t.Helper()
	g := NewGraph()
	ids := make([]NodeID, len(types))
	for i, typ := range types {
		ids[i] = g.AddNode(typ, nil)
		if i > 0 {
			if _, err := g.AddEdge(ids[i-1], ids[i]); err != nil {
				t.Fatalf("AddEdge: %v", err)
			}
		}
	}
	return g, ids
}

func TestGraph_AddEdgeIdempotent(t *testing.T) {
	g, ids := buildPath(t, "A", "B")
	added, err := g.AddEdge(ids[1], ids[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added {
		t.Errorf("re-adding an existing edge reported added")
	}
	if g.EdgeCount() != 1 {
		t.Errorf("expected 1 edge, got %d", g.EdgeCount())
	}
}

func TestGraph_AddEdgeErrors(t *testing.T) {
	g, ids := buildPath(t, "A")
	if _, err := g.AddEdge(ids[0], ids[0]); !errors.Is(err, ErrSelfLoop) {
		t.Errorf("expected ErrSelfLoop, got %v", err)
	}
	if _, err := g.AddEdge(ids[0], 99); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestGraph_RemoveNodeDropsIncidentEdges(t *testing.T) {
	g, ids := buildPath(t, "A", "B", "C")
	if _, err := g.AddEdge(ids[0], ids[2]); err != nil {
		t.Fatal(err)
	}
	dropped, err := g.RemoveNode(ids[1])
	if err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if dropped != 2 {
		t.Errorf("expected 2 dropped edges, got %d", dropped)
	}
	if g.EdgeCount() != 1 || !g.HasEdge(ids[0], ids[2]) {
		t.Errorf("expected only A-C to remain, got %v", g.Edges())
	}
	if g.Index().Count("B") != 0 {
		t.Errorf("type index still counts B")
	}
	if err := g.Check(); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestGraph_IDsNeverReused(t *testing.T) {
	g := NewGraph()
	a := g.AddNode("A", nil)
	if _, err := g.RemoveNode(a); err != nil {
		t.Fatal(err)
	}
	b := g.AddNode("A", nil)
	if b <= a {
		t.Errorf("id %d reused or went backwards after %d", b, a)
	}
}

func TestTypeIndex_TracksMutations(t *testing.T) {
	g := NewGraph()
	var live []NodeID
	for i := 0; i < 10; i++ {
		typ := "A"
		if i%3 == 0 {
			typ = "B"
		}
		live = append(live, g.AddNode(typ, i))
	}
	for _, id := range live[:4] {
		if _, err := g.RemoveNode(id); err != nil {
			t.Fatal(err)
		}
	}

	want := map[string]int{}
	for _, n := range g.Nodes() {
		want[n.Type]++
	}
	for typ, c := range want {
		if got := g.Index().Count(typ); got != c {
			t.Errorf("Count(%s) = %d, want %d", typ, got, c)
		}
		if !g.Index().ContainsAtLeast(typ, c) || g.Index().ContainsAtLeast(typ, c+1) {
			t.Errorf("ContainsAtLeast(%s) disagrees with count %d", typ, c)
		}
		if len(g.Index().IDs(typ)) != c {
			t.Errorf("IDs(%s) has %d entries, want %d", typ, len(g.Index().IDs(typ)), c)
		}
	}
	if err := g.Check(); err != nil {
		t.Errorf("Check: %v", err)
	}
}

func TestTypeIndex_RegisterTwice(t *testing.T) {
	ix := NewTypeIndex()
	n := Node{ID: 1, Type: "A"}
	ix.Register(n)
	ix.Register(n)
	if ix.Count("A") != 1 {
		t.Errorf("expected count 1, got %d", ix.Count("A"))
	}
	ix.Unregister(n)
	ix.Unregister(n)
	if ix.Count("A") != 0 || len(ix.Types()) != 0 {
		t.Errorf("expected empty index, got %v", ix.Counts())
	}
}

func TestGraph_CloneIsIndependent(t *testing.T) {
	g, ids := buildPath(t, "A", "B")
	c := g.Clone()
	if _, err := c.RemoveNode(ids[0]); err != nil {
		t.Fatal(err)
	}
	next := c.AddNode("C", nil)
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("source graph mutated through clone")
	}
	if next != 3 {
		t.Errorf("clone should continue the id sequence, got %d", next)
	}
	if err := c.Check(); err != nil {
		t.Errorf("clone Check: %v", err)
	}
}

func TestInterchange_ImportRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		ic   Interchange
	}{
		{"zero id", Interchange{Nodes: []NodeRecord{{ID: 0, Type: "A"}}}},
		{"id above ceiling", Interchange{Nodes: []NodeRecord{{ID: MaxNodeID + 1, Type: "A"}}}},
		{"max uint64 id", Interchange{
			Nodes: []NodeRecord{{ID: 1, Type: "A"}, {ID: math.MaxUint64, Type: "B"}},
			Edges: [][2]NodeID{{1, math.MaxUint64}},
		}},
		{"missing type", Interchange{Nodes: []NodeRecord{{ID: 1}}}},
		{"duplicate id", Interchange{Nodes: []NodeRecord{{ID: 1, Type: "A"}, {ID: 1, Type: "B"}}}},
		{"dangling edge", Interchange{Nodes: []NodeRecord{{ID: 1, Type: "A"}}, Edges: [][2]NodeID{{1, 2}}}},
		{"self loop", Interchange{Nodes: []NodeRecord{{ID: 1, Type: "A"}}, Edges: [][2]NodeID{{1, 1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Import(tc.ic); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestInterchange_ImportKeepsIDs(t *testing.T) {
	g, err := Import(Interchange{
		Nodes: []NodeRecord{{ID: 7, Type: "A", Payload: "x"}, {ID: 3, Type: "B"}},
		Edges: [][2]NodeID{{7, 3}, {3, 7}},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("expected repeated edges to collapse, got %d", g.EdgeCount())
	}
	if n, _ := g.Node(7); n.Payload != "x" {
		t.Errorf("payload lost: %v", n.Payload)
	}
	if id := g.AddNode("C", nil); id != 8 {
		t.Errorf("expected allocator to continue at 8, got %d", id)
	}
	out := g.Export()
	if out.Nodes[0].ID != 3 || out.Edges[0] != [2]NodeID{3, 7} {
		t.Errorf("export not in id order: %+v", out)
	}
}

func TestInterchange_ImportAtCeilingKeepsAllocatorSound(t *testing.T) {
	g, err := Import(Interchange{
		Nodes: []NodeRecord{{ID: 1, Type: "A"}, {ID: MaxNodeID, Type: "B"}},
		Edges: [][2]NodeID{{1, MaxNodeID}},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	a := g.AddNode("C", nil)
	b := g.AddNode("C", nil)
	if a != MaxNodeID+1 || b != MaxNodeID+2 {
		t.Errorf("expected fresh ids after the ceiling, got %d %d", a, b)
	}
	if g.NodeCount() != 4 || g.Degree(1) != 1 {
		t.Errorf("live nodes disturbed: %d nodes, degree(1)=%d", g.NodeCount(), g.Degree(1))
	}
	if err := g.Check(); err != nil {
		t.Errorf("Check: %v", err)
	}
}
