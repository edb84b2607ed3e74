package graph

import "fmt"

// Interchange is the export schema: a node list of (id, type, payload)
// triples and an edge list of id pairs.
type Interchange struct {
	Nodes []NodeRecord `json:"nodes" yaml:"nodes"`
	Edges [][2]NodeID  `json:"edges" yaml:"edges"`
}

// NodeRecord is one exported node.
type NodeRecord struct {
	ID      NodeID `json:"id" yaml:"id"`
	Type    string `json:"type" yaml:"type"`
	Payload any    `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// Export snapshots g in id order.
func (g *Graph) Export() Interchange {
	nodes := g.Nodes()
	out := Interchange{
		Nodes: make([]NodeRecord, len(nodes)),
		Edges: make([][2]NodeID, 0, g.edges),
	}
	for i, n := range nodes {
		out.Nodes[i] = NodeRecord{ID: n.ID, Type: n.Type, Payload: n.Payload}
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, [2]NodeID{e.A, e.B})
	}
	return out
}

// Import rebuilds a Graph from an interchange document, keeping the given ids.
// Repeated edges collapse into one.
func Import(ic Interchange) (*Graph, error) {
	g := NewGraph()
	for i, rec := range ic.Nodes {
		if rec.ID == 0 || rec.ID > MaxNodeID {
			return nil, fmt.Errorf("nodes[%d]: id %d outside [1, %d]", i, rec.ID, MaxNodeID)
		}
		if rec.Type == "" {
			return nil, fmt.Errorf("nodes[%d]: type is required", i)
		}
		if g.HasNode(rec.ID) {
			return nil, fmt.Errorf("nodes[%d]: duplicate id %d", i, rec.ID)
		}
		g.insert(&Node{ID: rec.ID, Type: rec.Type, Payload: rec.Payload})
	}
	for i, e := range ic.Edges {
		if _, err := g.AddEdge(e[0], e[1]); err != nil {
			return nil, fmt.Errorf("edges[%d]: %w", i, err)
		}
	}
	return g, nil
}
