package config

// CatalogConfig is the top-level YAML structure.
type CatalogConfig struct {
	Version    string         `yaml:"version"`
	Engine     EngineConf     `yaml:"engine"`
	Generation GenerationConf `yaml:"generation"`
	Grammars   []GrammarDef   `yaml:"grammars"`
}

// EngineConf holds tunable concurrency settings for the run pool.
type EngineConf struct {
	Workers      int `yaml:"workers"`
	QueueDepth   int `yaml:"queue_depth"`
	RunTimeoutMs int `yaml:"run_timeout_ms"`
	RetainRuns   int `yaml:"retain_runs"` // async results kept in memory
}

// GenerationConf bounds a single generation run. Zero bounds mean unbounded.
type GenerationConf struct {
	MaxSteps       int    `yaml:"max_steps" json:"max_steps"`
	MaxNodes       int    `yaml:"max_nodes" json:"max_nodes"`
	EmbeddingLimit int    `yaml:"embedding_limit" json:"embedding_limit"`
	SeedMode       string `yaml:"seed_mode" json:"seed_mode"`
}

// Seed modes understood by the default seed registry.
const (
	SeedSentinel = "sentinel"
	SeedFirstLHS = "first_lhs"
	SeedExplicit = "explicit"
)

// GrammarDef is one named rule set. Rules holds one rule per entry; Source
// may hold several ";"-terminated rules in one block. Both may be used.
type GrammarDef struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description"`
	Enabled     bool     `yaml:"enabled"`
	Rules       []string `yaml:"rules"`
	Source      string   `yaml:"source"`

	// Per-grammar overrides; zero values inherit from the top-level generation block.
	MaxSteps       int    `yaml:"max_steps"`
	MaxNodes       int    `yaml:"max_nodes"`
	EmbeddingLimit int    `yaml:"embedding_limit"`
	SeedMode       string `yaml:"seed_mode"`

	Seed *SeedDef `yaml:"seed,omitempty"`
}

// Generation merges the grammar overrides onto defaults.
func (d GrammarDef) Generation(defaults GenerationConf) GenerationConf {
	out := defaults
	if d.MaxSteps != 0 {
		out.MaxSteps = d.MaxSteps
	}
	if d.MaxNodes != 0 {
		out.MaxNodes = d.MaxNodes
	}
	if d.EmbeddingLimit != 0 {
		out.EmbeddingLimit = d.EmbeddingLimit
	}
	if d.SeedMode != "" {
		out.SeedMode = d.SeedMode
	}
	return out
}

// SeedDef is an explicit seed graph. Node ids are local to the definition.
type SeedDef struct {
	Nodes []SeedNode  `yaml:"nodes"`
	Edges [][2]string `yaml:"edges"`
}

// SeedNode is one seed node.
type SeedNode struct {
	ID      string `yaml:"id"`
	Type    string `yaml:"type"`
	Payload any    `yaml:"payload,omitempty"`
}
