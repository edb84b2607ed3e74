package config

import (
	"fmt"
	"strings"
)

// Validate checks the config for:
//   - Required fields and duplicate grammar IDs
//   - Blank rule entries
//   - Negative bounds
//   - Explicit seeds that are missing or reference undeclared nodes
//
// Rule text itself is compiled (and rejected) when the catalog is built.
func Validate(cfg *CatalogConfig) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string
	validateGeneration("generation", cfg.Generation, &errs)
	if cfg.Engine.Workers < 0 || cfg.Engine.QueueDepth < 0 || cfg.Engine.RunTimeoutMs < 0 || cfg.Engine.RetainRuns < 0 {
		errs = append(errs, "engine: settings must not be negative")
	}

	ids := make(map[string]int) // id → index
	for i, gd := range cfg.Grammars {
		if gd.ID == "" {
			errs = append(errs, fmt.Sprintf("grammars[%d]: id is required", i))
			continue
		}
		loc := fmt.Sprintf("grammar %s", gd.ID)
		if prev, ok := ids[gd.ID]; ok {
			errs = append(errs, fmt.Sprintf("duplicate id %q (grammars[%d] and grammars[%d])", gd.ID, prev, i))
		} else {
			ids[gd.ID] = i
		}
		for j, r := range gd.Rules {
			if strings.TrimSpace(r) == "" {
				errs = append(errs, fmt.Sprintf("%s: rules[%d] is blank", loc, j))
			}
		}
		validateGeneration(loc, GenerationConf{
			MaxSteps:       gd.MaxSteps,
			MaxNodes:       gd.MaxNodes,
			EmbeddingLimit: gd.EmbeddingLimit,
		}, &errs)
		mode := gd.Generation(cfg.Generation).SeedMode
		if mode == SeedExplicit && gd.Seed == nil {
			errs = append(errs, fmt.Sprintf("%s: seed_mode %s requires a seed", loc, SeedExplicit))
		}
		if gd.Seed != nil {
			validateSeed(loc, gd.Seed, &errs)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validateGeneration(loc string, g GenerationConf, errs *[]string) {
	if g.MaxSteps < 0 {
		*errs = append(*errs, fmt.Sprintf("%s: max_steps must not be negative", loc))
	}
	if g.MaxNodes < 0 {
		*errs = append(*errs, fmt.Sprintf("%s: max_nodes must not be negative", loc))
	}
	if g.EmbeddingLimit < 0 {
		*errs = append(*errs, fmt.Sprintf("%s: embedding_limit must not be negative", loc))
	}
}

func validateSeed(loc string, sd *SeedDef, errs *[]string) {
	if len(sd.Nodes) == 0 {
		*errs = append(*errs, fmt.Sprintf("%s.seed: at least one node is required", loc))
	}
	nodes := make(map[string]bool, len(sd.Nodes))
	for i, n := range sd.Nodes {
		switch {
		case n.ID == "":
			*errs = append(*errs, fmt.Sprintf("%s.seed.nodes[%d]: id is required", loc, i))
		case nodes[n.ID]:
			*errs = append(*errs, fmt.Sprintf("%s.seed.nodes[%d]: duplicate id %q", loc, i, n.ID))
		default:
			nodes[n.ID] = true
		}
		if n.Type == "" {
			*errs = append(*errs, fmt.Sprintf("%s.seed.nodes[%d]: type is required", loc, i))
		}
	}
	for i, e := range sd.Edges {
		for _, end := range e {
			if !nodes[end] {
				*errs = append(*errs, fmt.Sprintf("%s.seed.edges[%d]: unknown node %q", loc, i, end))
			}
		}
		if e[0] == e[1] {
			*errs = append(*errs, fmt.Sprintf("%s.seed.edges[%d]: self-loop on %q", loc, i, e[0]))
		}
	}
}
