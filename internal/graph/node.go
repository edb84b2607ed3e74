// Package graph holds the undirected, simple, typed graph that every host,
// pattern and product graph is stored in.
package graph

import "fmt"

// NodeID identifies a node within one Graph. IDs are allocated from a
// monotonically increasing counter and never reused after deletion.
type NodeID uint64

// Node is a typed vertex carrying an opaque caller-defined payload.
// The engine only ever looks at Type.
type Node struct {
	ID      NodeID
	Type    string
	Payload any
}

func (n Node) String() string {
	return fmt.Sprintf("%s#%d", n.Type, n.ID)
}

// Edge is an unordered pair of distinct node ids, stored with A < B.
type Edge struct {
	A NodeID
	B NodeID
}

// NewEdge returns the normalised edge between a and b.
func NewEdge(a, b NodeID) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// Other returns the endpoint of e that is not id.
func (e Edge) Other(id NodeID) NodeID {
	if e.A == id {
		return e.B
	}
	return e.A
}

func (e Edge) String() string {
	return fmt.Sprintf("%d-%d", e.A, e.B)
}
