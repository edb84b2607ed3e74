// Package run is the request/result model for generation runs.
package run

import (
	"time"

	"github.com/gyaneshwarpardhi/graphgram/internal/generator"
	"github.com/gyaneshwarpardhi/graphgram/internal/graph"
)

// Request asks for one generation run.
type Request struct {
	ID        string `json:"id"`
	GrammarID string `json:"grammar_id"`
	Seed      *int64 `json:"seed,omitempty"` // nil draws one from the clock
	// Bounds may only tighten the grammar's configured bounds.
	MaxSteps   int                `json:"max_steps,omitempty"`
	MaxNodes   int                `json:"max_nodes,omitempty"`
	SeedGraph  *graph.Interchange `json:"seed_graph,omitempty"` // replaces the grammar's seed strategy
	Trace      bool               `json:"trace,omitempty"`
	ReceivedAt time.Time          `json:"-"`
}

// Status is the lifecycle position of a run.
type Status string

const (
	Queued Status = "queued"
	Done   Status = "done"
	Failed Status = "failed"
)

// Step is one applied rewrite, recorded when Request.Trace is set.
type Step struct {
	Step    int            `json:"step" yaml:"step"`
	Rule    int            `json:"rule" yaml:"rule"`
	Source  string         `json:"source" yaml:"source"`
	Product int            `json:"product" yaml:"product"`
	Removed []graph.NodeID `json:"removed" yaml:"removed"`
	Created []graph.NodeID `json:"created" yaml:"created"`
	Nodes   int            `json:"nodes" yaml:"nodes"`
	Edges   int            `json:"edges" yaml:"edges"`
}

// FromRecord converts a generator step record.
func FromRecord(rec generator.StepRecord) Step {
	return Step{
		Step:    rec.Step,
		Rule:    rec.Rule,
		Source:  rec.Source,
		Product: rec.Product,
		Removed: rec.Removed,
		Created: rec.Created,
		Nodes:   rec.Nodes,
		Edges:   rec.Edges,
	}
}

// Result is the outcome of one run.
type Result struct {
	RunID      string               `json:"run_id" yaml:"run_id"`
	GrammarID  string               `json:"grammar_id" yaml:"grammar_id"`
	Seed       int64                `json:"seed" yaml:"seed"`
	Status     Status               `json:"status" yaml:"status"`
	Halt       generator.HaltReason `json:"halt,omitempty" yaml:"halt,omitempty"`
	Steps      int                  `json:"steps" yaml:"steps"`
	Nodes      int                  `json:"nodes" yaml:"nodes"`
	Edges      int                  `json:"edges" yaml:"edges"`
	DurationMs int64                `json:"duration_ms" yaml:"duration_ms"`
	Graph      *graph.Interchange   `json:"graph,omitempty" yaml:"graph,omitempty"`
	Trace      []Step               `json:"trace,omitempty" yaml:"trace,omitempty"`
	Error      string               `json:"error,omitempty" yaml:"error,omitempty"`
}
