package grammar

import "fmt"

// Lower turns a parse tree into a Rule and performs every semantic check.
// It does not look at the source text except to report errors.
func Lower(n *RuleNode) (*Rule, error) {
	semErr := func(pos Position, format string, args ...any) error {
		return &SemanticError{Source: n.Source, Pos: pos, Msg: fmt.Sprintf(format, args...)}
	}

	lhs, err := lowerProduct(n.LHS, semErr)
	if err != nil {
		return nil, err
	}
	if lhs.Len() == 0 {
		return nil, semErr(n.Pos, "empty left-hand side")
	}
	if len(n.RHS) == 0 {
		return nil, semErr(n.Pos, "rule has no right-hand side")
	}

	r := &Rule{
		source:   n.Source,
		lhs:      lhs,
		required: requiredTypes(lhs),
	}
	for i, pn := range n.RHS {
		prod, err := lowerProduct(pn, semErr)
		if err != nil {
			return nil, err
		}
		if prod.Len() == 0 {
			return nil, semErr(pn.Pos, "alternative %d has no nodes", i+1)
		}
		r.products = append(r.products, prod)
		r.corr = append(r.corr, correspond(lhs, prod))
	}
	return r, nil
}

func lowerProduct(pn ProductNode, semErr func(Position, string, ...any) error) (*Pattern, error) {
	// Count unlabeled occurrences per type to decide canonical vs anonymous.
	unlabeled := make(map[string]int)
	for _, path := range pn.Paths {
		for _, id := range path.IDs {
			if !id.HasLabel {
				unlabeled[id.Type]++
			}
		}
	}

	p := newPattern()
	anon := make(map[string]int)
	for _, path := range pn.Paths {
		var prev Name
		for i, id := range path.IDs {
			var name Name
			switch {
			case id.HasLabel:
				name = Name{Type: id.Type, Label: id.Label, HasLabel: true}
			case unlabeled[id.Type] == 1:
				name = Name{Type: id.Type}
			default:
				anon[id.Type]++
				name = Name{Type: id.Type, Anon: anon[id.Type]}
			}
			cur := p.node(name)
			if i > 0 {
				if prev == name {
					return nil, semErr(id.Pos, "edge from %s to itself", name)
				}
				if _, err := p.g.AddEdge(p.ids[prev], cur); err != nil {
					return nil, semErr(id.Pos, "edge %s->%s: %v", prev, name, err)
				}
			}
			prev = name
		}
	}
	return p, nil
}
