package grammar

import "fmt"

// Grammar is an immutable, ordered rule set. It is safe for concurrent use
// by any number of generators.
type Grammar struct {
	rules []*Rule
}

// Compile compiles one rule per text. It fails as a whole if any rule fails;
// no partial grammar is returned.
func Compile(texts []string) (*Grammar, error) {
	g := &Grammar{rules: make([]*Rule, 0, len(texts))}
	for i, text := range texts {
		node, err := ParseRule(text)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if err := g.add(node); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return g, nil
}

// CompileSource compiles a grammar written as a single text with one or more
// ";"-terminated rules.
func CompileSource(src string) (*Grammar, error) {
	nodes, err := ParseRules(src)
	if err != nil {
		return nil, err
	}
	g := &Grammar{rules: make([]*Rule, 0, len(nodes))}
	for i, node := range nodes {
		if err := g.add(node); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return g, nil
}

// CompileAll compiles single-rule texts followed by the rules of a
// multi-rule source block, indexing them in that order.
func CompileAll(texts []string, src string) (*Grammar, error) {
	g, err := Compile(texts)
	if err != nil {
		return nil, err
	}
	nodes, err := ParseRules(src)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	for i, node := range nodes {
		if err := g.add(node); err != nil {
			return nil, fmt.Errorf("source rule %d: %w", i, err)
		}
	}
	return g, nil
}

func (g *Grammar) add(node *RuleNode) error {
	r, err := Lower(node)
	if err != nil {
		return err
	}
	r.index = len(g.rules)
	g.rules = append(g.rules, r)
	return nil
}

// Len returns the number of rules.
func (g *Grammar) Len() int { return len(g.rules) }

// Rule returns rule i.
func (g *Grammar) Rule(i int) *Rule { return g.rules[i] }

// Rules returns the rules in source order.
func (g *Grammar) Rules() []*Rule {
	out := make([]*Rule, len(g.rules))
	copy(out, g.rules)
	return out
}
