package grammar

import "sort"

// TypeCount is one entry of a rule's required type multiset.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Correspondence partitions the names of an LHS against one product.
type Correspondence struct {
	Surviving []Name // in both LHS and product
	Removed   []Name // LHS only
	Created   []Name // product only
}

// Rule is a compiled production: one LHS pattern and an ordered, non-empty
// list of alternative products. Rules are immutable and safe to share
// between goroutines.
type Rule struct {
	index    int
	source   string
	lhs      *Pattern
	products []*Pattern
	corr     []Correspondence
	required []TypeCount
}

// Index is the rule's position in its grammar.
func (r *Rule) Index() int { return r.index }

// Source is the rule text the rule was compiled from.
func (r *Rule) Source() string { return r.source }

// LHS returns the pattern graph.
func (r *Rule) LHS() *Pattern { return r.lhs }

// NumProducts returns the number of alternatives.
func (r *Rule) NumProducts() int { return len(r.products) }

// Product returns alternative i.
func (r *Rule) Product(i int) *Pattern { return r.products[i] }

// Products returns the alternatives in source order.
func (r *Rule) Products() []*Pattern {
	out := make([]*Pattern, len(r.products))
	copy(out, r.products)
	return out
}

// Correspondence returns the name table linking the LHS with product i.
func (r *Rule) Correspondence(i int) Correspondence { return r.corr[i] }

// RequiredTypes returns the LHS type multiset, sorted by type.
func (r *Rule) RequiredTypes() []TypeCount {
	out := make([]TypeCount, len(r.required))
	copy(out, r.required)
	return out
}

func (r *Rule) String() string { return r.source }

func requiredTypes(p *Pattern) []TypeCount {
	counts := p.TypeCounts()
	out := make([]TypeCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, TypeCount{Type: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

func correspond(lhs, product *Pattern) Correspondence {
	var c Correspondence
	for _, n := range lhs.names {
		if !n.Anonymous() && product.Has(n) {
			c.Surviving = append(c.Surviving, n)
		} else {
			c.Removed = append(c.Removed, n)
		}
	}
	for _, n := range product.names {
		if n.Anonymous() || !lhs.Has(n) {
			c.Created = append(c.Created, n)
		}
	}
	return c
}
