package graph

import "sort"

// TypeLookup is the read-only view of a TypeIndex handed out by Graph.
type TypeLookup interface {
	Count(typ string) int
	ContainsAtLeast(typ string, n int) bool
	IDs(typ string) []NodeID
	Types() []string
}

// TypeIndex buckets node ids by type.
// count(t) always equals the number of registered nodes of type t.
type TypeIndex struct {
	buckets map[string]map[NodeID]struct{}
	counts  map[string]int
}

// NewTypeIndex allocates an empty index.
func NewTypeIndex() *TypeIndex {
	return &TypeIndex{
		buckets: make(map[string]map[NodeID]struct{}),
		counts:  make(map[string]int),
	}
}

// Register adds n to its type bucket. Registering twice is a no-op.
func (ix *TypeIndex) Register(n Node) {
	b, ok := ix.buckets[n.Type]
	if !ok {
		b = make(map[NodeID]struct{})
		ix.buckets[n.Type] = b
	}
	if _, dup := b[n.ID]; dup {
		return
	}
	b[n.ID] = struct{}{}
	ix.counts[n.Type]++
}

// Unregister removes n from its type bucket. Unknown nodes are ignored.
func (ix *TypeIndex) Unregister(n Node) {
	b, ok := ix.buckets[n.Type]
	if !ok {
		return
	}
	if _, present := b[n.ID]; !present {
		return
	}
	delete(b, n.ID)
	ix.counts[n.Type]--
	if ix.counts[n.Type] == 0 {
		delete(ix.buckets, n.Type)
		delete(ix.counts, n.Type)
	}
}

// Count returns the number of live nodes of typ.
func (ix *TypeIndex) Count(typ string) int {
	return ix.counts[typ]
}

// ContainsAtLeast reports whether at least n nodes of typ are registered.
func (ix *TypeIndex) ContainsAtLeast(typ string, n int) bool {
	return ix.counts[typ] >= n
}

// IDs returns the ids of typ in ascending order.
func (ix *TypeIndex) IDs(typ string) []NodeID {
	b := ix.buckets[typ]
	out := make([]NodeID, 0, len(b))
	for id := range b {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Types returns every type with at least one node, sorted.
func (ix *TypeIndex) Types() []string {
	out := make([]string, 0, len(ix.counts))
	for t := range ix.counts {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Counts returns a copy of the type → count table.
func (ix *TypeIndex) Counts() map[string]int {
	out := make(map[string]int, len(ix.counts))
	for t, c := range ix.counts {
		out[t] = c
	}
	return out
}

func (ix *TypeIndex) clone() *TypeIndex {
	c := NewTypeIndex()
	for t, b := range ix.buckets {
		nb := make(map[NodeID]struct{}, len(b))
		for id := range b {
			nb[id] = struct{}{}
		}
		c.buckets[t] = nb
		c.counts[t] = ix.counts[t]
	}
	return c
}
