// Package seed builds the starting host graph of a generation run.
package seed

import (
	"errors"
	"fmt"

	"github.com/gyaneshwarpardhi/graphgram/internal/config"
	"github.com/gyaneshwarpardhi/graphgram/internal/generator"
	"github.com/gyaneshwarpardhi/graphgram/internal/grammar"
	"github.com/gyaneshwarpardhi/graphgram/internal/graph"
)

// Strategy is the interface all seed modes must satisfy.
type Strategy interface {
	// Mode returns the string key this strategy is registered under.
	Mode() string
	// Validate checks a grammar and its seed definition at catalog build time.
	Validate(gr *grammar.Grammar, def *config.SeedDef) error
	// Build returns a fresh seed graph. Every call returns a new graph.
	Build(gr *grammar.Grammar, def *config.SeedDef) (*graph.Graph, error)
}

// Sentinel seeds a single node of type generator.SentinelType.
type Sentinel struct{}

func (Sentinel) Mode() string { return config.SeedSentinel }

func (Sentinel) Validate(*grammar.Grammar, *config.SeedDef) error { return nil }

func (Sentinel) Build(*grammar.Grammar, *config.SeedDef) (*graph.Graph, error) {
	return generator.SentinelSeed(), nil
}

// FirstLHS seeds a copy of the first rule's left-hand side, so that rule
// is applicable on the first step.
type FirstLHS struct{}

func (FirstLHS) Mode() string { return config.SeedFirstLHS }

func (FirstLHS) Validate(gr *grammar.Grammar, _ *config.SeedDef) error {
	if gr.Len() == 0 {
		return errors.New("first_lhs: grammar has no rules")
	}
	return nil
}

func (s FirstLHS) Build(gr *grammar.Grammar, def *config.SeedDef) (*graph.Graph, error) {
	if err := s.Validate(gr, def); err != nil {
		return nil, err
	}
	return gr.Rule(0).LHS().Instantiate(), nil
}

// Explicit seeds the graph written out in the grammar definition.
type Explicit struct{}

func (Explicit) Mode() string { return config.SeedExplicit }

func (s Explicit) Validate(gr *grammar.Grammar, def *config.SeedDef) error {
	_, err := s.Build(gr, def)
	return err
}

func (Explicit) Build(_ *grammar.Grammar, def *config.SeedDef) (*graph.Graph, error) {
	if def == nil || len(def.Nodes) == 0 {
		return nil, errors.New("explicit: seed has no nodes")
	}
	g := graph.NewGraph()
	ids := make(map[string]graph.NodeID, len(def.Nodes))
	for _, n := range def.Nodes {
		if n.Type == "" {
			return nil, fmt.Errorf("explicit: node %q has no type", n.ID)
		}
		if _, dup := ids[n.ID]; dup {
			return nil, fmt.Errorf("explicit: duplicate node %q", n.ID)
		}
		ids[n.ID] = g.AddNode(n.Type, n.Payload)
	}
	for _, e := range def.Edges {
		a, okA := ids[e[0]]
		b, okB := ids[e[1]]
		if !okA || !okB {
			return nil, fmt.Errorf("explicit: edge %s-%s references an unknown node", e[0], e[1])
		}
		if _, err := g.AddEdge(a, b); err != nil {
			return nil, fmt.Errorf("explicit: edge %s-%s: %w", e[0], e[1], err)
		}
	}
	return g, nil
}
