package graph

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNodeNotFound = errors.New("graph: node not found")
	ErrSelfLoop     = errors.New("graph: self-loop not allowed")
)

// MaxNodeID is the largest id a caller may supply to Import. Ids above it
// are reserved for the allocator, so it can never wrap around onto a live
// node.
const MaxNodeID NodeID = 1<<53 - 1

// Graph holds nodes and their undirected adjacency sets.
// The type index is patched on every mutation and never rebuilt lazily.
type Graph struct {
	nodes  map[NodeID]*Node
	adj    map[NodeID]map[NodeID]struct{}
	edges  int
	index  *TypeIndex
	nextID NodeID
}

// NewGraph allocates an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:  make(map[NodeID]*Node),
		adj:    make(map[NodeID]map[NodeID]struct{}),
		index:  NewTypeIndex(),
		nextID: 1,
	}
}

// AddNode creates a node of typ with a fresh id.
func (g *Graph) AddNode(typ string, payload any) NodeID {
	id := g.nextID
	if _, live := g.nodes[id]; live || id == 0 {
		panic(fmt.Sprintf("graph: id allocator exhausted at %d", id))
	}
	g.nextID++
	g.insert(&Node{ID: id, Type: typ, Payload: payload})
	return id
}

func (g *Graph) insert(n *Node) {
	g.nodes[n.ID] = n
	g.adj[n.ID] = make(map[NodeID]struct{})
	g.index.Register(*n)
	if n.ID >= g.nextID {
		g.nextID = n.ID + 1
	}
}

// RemoveNode deletes id together with every incident edge and returns the
// number of edges dropped.
func (g *Graph) RemoveNode(id NodeID) (int, error) {
	n, ok := g.nodes[id]
	if !ok {
		return 0, fmt.Errorf("remove %d: %w", id, ErrNodeNotFound)
	}
	dropped := len(g.adj[id])
	for other := range g.adj[id] {
		delete(g.adj[other], id)
	}
	g.edges -= dropped
	delete(g.adj, id)
	delete(g.nodes, id)
	g.index.Unregister(*n)
	return dropped, nil
}

// AddEdge connects a and b. It reports false when the edge already existed.
func (g *Graph) AddEdge(a, b NodeID) (bool, error) {
	if a == b {
		return false, fmt.Errorf("edge %d-%d: %w", a, b, ErrSelfLoop)
	}
	if _, ok := g.nodes[a]; !ok {
		return false, fmt.Errorf("edge %d-%d: %w", a, b, ErrNodeNotFound)
	}
	if _, ok := g.nodes[b]; !ok {
		return false, fmt.Errorf("edge %d-%d: %w", a, b, ErrNodeNotFound)
	}
	if _, ok := g.adj[a][b]; ok {
		return false, nil
	}
	g.adj[a][b] = struct{}{}
	g.adj[b][a] = struct{}{}
	g.edges++
	return true, nil
}

// RemoveEdge disconnects a and b, reporting whether an edge was removed.
func (g *Graph) RemoveEdge(a, b NodeID) bool {
	if _, ok := g.adj[a][b]; !ok {
		return false
	}
	delete(g.adj[a], b)
	delete(g.adj[b], a)
	g.edges--
	return true
}

// HasEdge reports whether a and b are adjacent.
func (g *Graph) HasEdge(a, b NodeID) bool {
	_, ok := g.adj[a][b]
	return ok
}

// HasNode reports whether id is live.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns a copy of the node (false if not found).
func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// SetPayload replaces the payload of id. The type is immutable.
func (g *Graph) SetPayload(id NodeID, payload any) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	n.Payload = payload
	return true
}

// Neighbors returns the ids adjacent to id in ascending order.
func (g *Graph) Neighbors(id NodeID) []NodeID {
	out := make([]NodeID, 0, len(g.adj[id]))
	for n := range g.adj[id] {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Degree returns the number of edges incident to id.
func (g *Graph) Degree(id NodeID) int {
	return len(g.adj[id])
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// NodeIDs returns every live id in ascending order.
func (g *Graph) NodeIDs() []NodeID {
	out := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Nodes returns copies of every node ordered by id.
func (g *Graph) Nodes() []Node {
	ids := g.NodeIDs()
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = *g.nodes[id]
	}
	return out
}

// Edges returns every edge ordered by (A, B).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for a, ns := range g.adj {
		for b := range ns {
			if a < b {
				out = append(out, Edge{A: a, B: b})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// Index exposes the type index for read-only queries.
func (g *Graph) Index() TypeLookup {
	return g.index
}

// TypeCounts returns a copy of the type → count table.
func (g *Graph) TypeCounts() map[string]int {
	return g.index.Counts()
}

// Clone returns a deep copy that keeps ids and the id allocator position.
// Payloads are copied by value, not deeply.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:  make(map[NodeID]*Node, len(g.nodes)),
		adj:    make(map[NodeID]map[NodeID]struct{}, len(g.adj)),
		edges:  g.edges,
		index:  g.index.clone(),
		nextID: g.nextID,
	}
	for id, n := range g.nodes {
		cp := *n
		c.nodes[id] = &cp
	}
	for id, ns := range g.adj {
		m := make(map[NodeID]struct{}, len(ns))
		for o := range ns {
			m[o] = struct{}{}
		}
		c.adj[id] = m
	}
	return c
}

// Check verifies the structural invariants: symmetric adjacency between live
// nodes, a matching edge count, and a type index that mirrors the node set.
func (g *Graph) Check() error {
	half := 0
	for a, ns := range g.adj {
		if _, ok := g.nodes[a]; !ok {
			return fmt.Errorf("adjacency for dead node %d", a)
		}
		for b := range ns {
			if _, ok := g.nodes[b]; !ok {
				return fmt.Errorf("edge %d-%d: endpoint %d: %w", a, b, b, ErrNodeNotFound)
			}
			if _, ok := g.adj[b][a]; !ok {
				return fmt.Errorf("edge %d-%d is not symmetric", a, b)
			}
			half++
		}
	}
	if half != 2*g.edges {
		return fmt.Errorf("edge count %d does not match adjacency (%d)", g.edges, half/2)
	}
	counts := make(map[string]int)
	for _, n := range g.nodes {
		counts[n.Type]++
		if n.ID >= g.nextID {
			return fmt.Errorf("node %d is not below the id allocator (%d)", n.ID, g.nextID)
		}
	}
	for t, c := range counts {
		if got := g.index.Count(t); got != c {
			return fmt.Errorf("type index: count(%s) = %d, want %d", t, got, c)
		}
	}
	for _, t := range g.index.Types() {
		if counts[t] == 0 {
			return fmt.Errorf("type index: stale bucket %s", t)
		}
	}
	return nil
}
