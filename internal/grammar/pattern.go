package grammar

import (
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/graphgram/internal/graph"
)

// Pattern is an LHS or product graph. Nodes are numbered 1..Len() in order
// of first appearance in the rule text and carry their Name as payload.
// A Pattern is immutable once lowered.
type Pattern struct {
	g     *graph.Graph
	names []Name
	ids   map[Name]graph.NodeID
}

func newPattern() *Pattern {
	return &Pattern{g: graph.NewGraph(), ids: make(map[Name]graph.NodeID)}
}

func (p *Pattern) node(n Name) graph.NodeID {
	if id, ok := p.ids[n]; ok {
		return id
	}
	id := p.g.AddNode(n.Type, n)
	p.ids[n] = id
	p.names = append(p.names, n)
	return id
}

// Len returns the number of pattern nodes.
func (p *Pattern) Len() int { return len(p.names) }

// Names returns the node names in id order.
func (p *Pattern) Names() []Name {
	out := make([]Name, len(p.names))
	copy(out, p.names)
	return out
}

// NodeIDs returns 1..Len().
func (p *Pattern) NodeIDs() []graph.NodeID { return p.g.NodeIDs() }

// ID returns the pattern node id for n.
func (p *Pattern) ID(n Name) (graph.NodeID, bool) {
	id, ok := p.ids[n]
	return id, ok
}

// Has reports whether n occurs in the pattern.
func (p *Pattern) Has(n Name) bool {
	_, ok := p.ids[n]
	return ok
}

// Name returns the name of pattern node id.
func (p *Pattern) Name(id graph.NodeID) Name {
	return p.names[id-1]
}

// Type returns the type of pattern node id.
func (p *Pattern) Type(id graph.NodeID) string {
	return p.names[id-1].Type
}

// Neighbors returns the pattern nodes adjacent to id.
func (p *Pattern) Neighbors(id graph.NodeID) []graph.NodeID { return p.g.Neighbors(id) }

// HasEdge reports whether pattern nodes a and b are adjacent.
func (p *Pattern) HasEdge(a, b graph.NodeID) bool { return p.g.HasEdge(a, b) }

// Edges returns the pattern edges.
func (p *Pattern) Edges() []graph.Edge { return p.g.Edges() }

// EdgeCount returns the number of pattern edges.
func (p *Pattern) EdgeCount() int { return p.g.EdgeCount() }

// TypeCounts returns the multiset of node types in the pattern.
func (p *Pattern) TypeCounts() map[string]int { return p.g.TypeCounts() }

// Instantiate returns a fresh host graph with the pattern's shape.
// Node payloads are the pattern names rendered as strings.
func (p *Pattern) Instantiate() *graph.Graph {
	g := graph.NewGraph()
	ids := make(map[graph.NodeID]graph.NodeID, len(p.names))
	for i, n := range p.names {
		ids[graph.NodeID(i+1)] = g.AddNode(n.Type, n.String())
	}
	for _, e := range p.g.Edges() {
		_, _ = g.AddEdge(ids[e.A], ids[e.B])
	}
	return g
}

// String renders the pattern in product syntax that parses back to the
// same shape: one path per edge plus every isolated node. Anonymous names,
// and unlabeled names that would be written more than once, are given
// labels not otherwise used by their type.
func (p *Pattern) String() string {
	edges := p.g.Edges()
	uses := make([]int, len(p.names))
	for _, e := range edges {
		uses[e.A-1]++
		uses[e.B-1]++
	}
	unlabeled := make(map[string]int)
	taken := make(map[string]map[int]bool)
	for i, n := range p.names {
		if uses[i] == 0 {
			uses[i] = 1
		}
		if n.HasLabel {
			if taken[n.Type] == nil {
				taken[n.Type] = make(map[int]bool)
			}
			taken[n.Type][n.Label] = true
		} else {
			unlabeled[n.Type] += uses[i]
		}
	}

	tokens := make([]string, len(p.names))
	last := make(map[string]int)
	for i, n := range p.names {
		switch {
		case n.HasLabel:
			tokens[i] = n.String()
		case unlabeled[n.Type] == 1:
			tokens[i] = n.Type
		default:
			l := last[n.Type] + 1
			for taken[n.Type][l] {
				l++
			}
			last[n.Type] = l
			tokens[i] = fmt.Sprintf("%s%d", n.Type, l)
		}
	}

	var parts []string
	for _, e := range edges {
		parts = append(parts, tokens[e.A-1]+"->"+tokens[e.B-1])
	}
	for i, tok := range tokens {
		if p.g.Degree(graph.NodeID(i+1)) == 0 {
			parts = append(parts, tok)
		}
	}
	return strings.Join(parts, ", ")
}
