// Package match finds embeddings of rule patterns into host graphs.
package match

import (
	"iter"
	"sort"

	"github.com/gyaneshwarpardhi/graphgram/internal/grammar"
	"github.com/gyaneshwarpardhi/graphgram/internal/graph"
)

// Embedding is an injective, type-preserving mapping of a pattern into a
// host graph that carries every pattern edge onto a host edge. Only the
// matcher produces embeddings; the zero value embeds nothing.
type Embedding struct {
	pattern *grammar.Pattern
	images  []graph.NodeID // indexed by pattern node id - 1
}

// Pattern returns the pattern this embedding belongs to.
func (e Embedding) Pattern() *grammar.Pattern { return e.pattern }

// Image returns the host node that pattern name n maps to.
func (e Embedding) Image(n grammar.Name) (graph.NodeID, bool) {
	if e.pattern == nil {
		return 0, false
	}
	id, ok := e.pattern.ID(n)
	if !ok {
		return 0, false
	}
	return e.images[id-1], true
}

// Images returns the host ids in pattern node order.
func (e Embedding) Images() []graph.NodeID {
	out := make([]graph.NodeID, len(e.images))
	copy(out, e.images)
	return out
}

// Admissible is the cheap pre-filter: the host must hold at least as many
// nodes of each type as the pattern. It never rejects an embeddable pattern.
func Admissible(host *graph.Graph, pattern *grammar.Pattern) bool {
	ix := host.Index()
	for t, c := range pattern.TypeCounts() {
		if !ix.ContainsAtLeast(t, c) {
			return false
		}
	}
	return true
}

// Embeddings lazily enumerates every embedding of pattern in host in a
// deterministic order. host must not be mutated while the sequence is
// being consumed.
func Embeddings(host *graph.Graph, pattern *grammar.Pattern) iter.Seq[Embedding] {
	return func(yield func(Embedding) bool) {
		if pattern.Len() == 0 || !Admissible(host, pattern) {
			return
		}
		s := newSearch(host, pattern)
		s.run(0, yield)
	}
}

// Exists reports whether at least one embedding exists.
func Exists(host *graph.Graph, pattern *grammar.Pattern) bool {
	for range Embeddings(host, pattern) {
		return true
	}
	return false
}

// Collect returns up to limit embeddings (all of them when limit <= 0).
func Collect(host *graph.Graph, pattern *grammar.Pattern, limit int) []Embedding {
	var out []Embedding
	for e := range Embeddings(host, pattern) {
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// search is a backtracking subgraph-isomorphism walk over a fixed
// pattern-node order.
type search struct {
	host    *graph.Graph
	pattern *grammar.Pattern
	order   []graph.NodeID // pattern nodes in visiting order
	anchor  []graph.NodeID // earlier-visited neighbour of order[i], 0 if none
	back    [][]graph.NodeID
	images  []graph.NodeID
	used    map[graph.NodeID]struct{}
}

func newSearch(host *graph.Graph, pattern *grammar.Pattern) *search {
	s := &search{
		host:    host,
		pattern: pattern,
		images:  make([]graph.NodeID, pattern.Len()),
		used:    make(map[graph.NodeID]struct{}, pattern.Len()),
	}
	s.plan()
	return s
}

// plan orders pattern nodes so that each component starts at its rarest
// host type and then grows along pattern edges, most-connected first.
func (s *search) plan() {
	ids := s.pattern.NodeIDs()
	ix := s.host.Index()
	rarity := func(id graph.NodeID) int { return ix.Count(s.pattern.Type(id)) }

	seeds := make([]graph.NodeID, len(ids))
	copy(seeds, ids)
	sort.SliceStable(seeds, func(i, j int) bool {
		ri, rj := rarity(seeds[i]), rarity(seeds[j])
		if ri != rj {
			return ri < rj
		}
		return len(s.pattern.Neighbors(seeds[i])) > len(s.pattern.Neighbors(seeds[j]))
	})

	placed := make(map[graph.NodeID]bool, len(ids))
	for _, seed := range seeds {
		if placed[seed] {
			continue
		}
		placed[seed] = true
		s.order = append(s.order, seed)
		s.anchor = append(s.anchor, 0)
		// Breadth-first over the component, anchoring each node on the
		// neighbour that reached it.
		for k := len(s.order) - 1; k < len(s.order); k++ {
			cur := s.order[k]
			for _, nb := range s.pattern.Neighbors(cur) {
				if placed[nb] {
					continue
				}
				placed[nb] = true
				s.order = append(s.order, nb)
				s.anchor = append(s.anchor, cur)
			}
		}
	}

	pos := make(map[graph.NodeID]int, len(s.order))
	for i, id := range s.order {
		pos[id] = i
	}
	s.back = make([][]graph.NodeID, len(s.order))
	for i, id := range s.order {
		for _, nb := range s.pattern.Neighbors(id) {
			if pos[nb] < i && nb != s.anchor[i] {
				s.back[i] = append(s.back[i], nb)
			}
		}
	}
}

func (s *search) candidates(i int) []graph.NodeID {
	if a := s.anchor[i]; a != 0 {
		return s.host.Neighbors(s.images[a-1])
	}
	return s.host.Index().IDs(s.pattern.Type(s.order[i]))
}

func (s *search) run(i int, yield func(Embedding) bool) bool {
	if i == len(s.order) {
		images := make([]graph.NodeID, len(s.images))
		copy(images, s.images)
		return yield(Embedding{pattern: s.pattern, images: images})
	}
	pid := s.order[i]
	typ := s.pattern.Type(pid)
	for _, h := range s.candidates(i) {
		if _, taken := s.used[h]; taken {
			continue
		}
		if n, _ := s.host.Node(h); n.Type != typ {
			continue
		}
		if !s.consistent(i, h) {
			continue
		}
		s.images[pid-1] = h
		s.used[h] = struct{}{}
		more := s.run(i+1, yield)
		delete(s.used, h)
		s.images[pid-1] = 0
		if !more {
			return false
		}
	}
	return true
}

// consistent checks the pattern edges from order[i] back to already-mapped
// nodes other than its anchor, which candidates() already guarantees.
func (s *search) consistent(i int, h graph.NodeID) bool {
	for _, nb := range s.back[i] {
		if !s.host.HasEdge(h, s.images[nb-1]) {
			return false
		}
	}
	return true
}
