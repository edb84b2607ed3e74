// Package generator drives a grammar over a host graph until no rule
// applies or a configured bound is reached.
package generator

import (
	"log/slog"
	"math/rand"

	"github.com/gyaneshwarpardhi/graphgram/internal/grammar"
	"github.com/gyaneshwarpardhi/graphgram/internal/graph"
	"github.com/gyaneshwarpardhi/graphgram/internal/match"
	"github.com/gyaneshwarpardhi/graphgram/internal/rewrite"
)

// SentinelType is the type of the default seed node.
const SentinelType = "start"

// HaltReason says why generation stopped.
type HaltReason string

const (
	Fixpoint  HaltReason = "fixpoint"   // no rule applies
	StepBound HaltReason = "step_bound" // MaxSteps rewrites done, rules still applicable
	NodeBound HaltReason = "node_bound" // MaxNodes reached, rules still applicable
)

// State is the generator's position in its scan/rewrite cycle.
type State string

const (
	Ready     State = "ready"
	Scanning  State = "scanning"
	Rewriting State = "rewriting"
	Halted    State = "halted"
)

// StepRecord describes one applied rewrite.
type StepRecord struct {
	Step      int
	Rule      int
	Source    string
	Product   int
	Embedding []graph.NodeID
	Removed   []graph.NodeID
	Created   []graph.NodeID
	Nodes     int
	Edges     int
}

// Options tunes a Generator. Zero bounds mean unbounded.
type Options struct {
	// Seed is the starting host graph; the generator mutates it in place.
	// Nil means a single SentinelType node.
	Seed *graph.Graph

	MaxSteps int
	MaxNodes int

	// EmbeddingLimit caps how many embeddings of the chosen rule are
	// enumerated before one is picked at random; 0 enumerates all.
	EmbeddingLimit int

	Logger *slog.Logger

	// OnStep is called after every rewrite.
	OnStep func(StepRecord)
}

// Generator owns one host graph and rewrites it with a shared grammar.
// A Generator is not safe for concurrent use; run one per goroutine.
type Generator struct {
	grammar *grammar.Grammar
	rng     *rand.Rand
	opts    Options
	log     *slog.Logger

	host   *graph.Graph
	state  State
	steps  int
	reason HaltReason
}

// SentinelSeed returns a graph holding one SentinelType node.
func SentinelSeed() *graph.Graph {
	g := graph.NewGraph()
	g.AddNode(SentinelType, nil)
	return g
}

// New creates a Generator in the Ready state. rng is the only source of
// randomness, so equal grammar, seed graph and rng seed give equal output.
func New(gr *grammar.Grammar, rng *rand.Rand, opts Options) *Generator {
	if gr == nil || rng == nil {
		panic("generator: grammar and random source are required")
	}
	host := opts.Seed
	if host == nil {
		host = SentinelSeed()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Generator{
		grammar: gr,
		rng:     rng,
		opts:    opts,
		log:     log,
		host:    host,
		state:   Ready,
	}
}

// Graph returns the current host graph.
func (g *Generator) Graph() *graph.Graph { return g.host }

// State returns the current state.
func (g *Generator) State() State { return g.state }

// Steps returns the number of rewrites applied so far.
func (g *Generator) Steps() int { return g.steps }

// Reason returns the halt reason, or "" while not halted.
func (g *Generator) Reason() HaltReason { return g.reason }

// Useable returns the rules that currently have at least one embedding,
// in grammar order. The type-count pre-filter runs before any matching.
func (g *Generator) Useable() []*grammar.Rule {
	var out []*grammar.Rule
	for _, r := range g.grammar.Rules() {
		if !match.Admissible(g.host, r.LHS()) {
			continue
		}
		if match.Exists(g.host, r.LHS()) {
			out = append(out, r)
		}
	}
	return out
}

// Step runs one scan and, unless the generator halts, one rewrite.
// It reports whether a rewrite was applied.
func (g *Generator) Step() bool {
	if g.state == Halted {
		return false
	}

	g.state = Scanning
	useable := g.Useable()
	switch {
	case len(useable) == 0:
		return g.halt(Fixpoint)
	case g.opts.MaxSteps > 0 && g.steps >= g.opts.MaxSteps:
		return g.halt(StepBound)
	case g.opts.MaxNodes > 0 && g.host.NodeCount() >= g.opts.MaxNodes:
		return g.halt(NodeBound)
	}

	g.state = Rewriting
	rule := useable[g.rng.Intn(len(useable))]
	embs := match.Collect(g.host, rule.LHS(), g.opts.EmbeddingLimit)
	emb := embs[g.rng.Intn(len(embs))]
	product := 0
	if rule.NumProducts() > 1 {
		product = g.rng.Intn(rule.NumProducts())
	}

	res := rewrite.Apply(g.host, rule, emb, product)
	g.steps++
	g.state = Ready

	rec := StepRecord{
		Step:      g.steps,
		Rule:      rule.Index(),
		Source:    rule.Source(),
		Product:   product,
		Embedding: emb.Images(),
		Removed:   res.Removed,
		Nodes:     g.host.NodeCount(),
		Edges:     g.host.EdgeCount(),
	}
	for _, n := range rule.Correspondence(product).Created {
		rec.Created = append(rec.Created, res.Created[n])
	}
	g.log.Debug("rewrite applied",
		"step", rec.Step,
		"rule", rec.Rule,
		"product", rec.Product,
		"candidates", len(useable),
		"embeddings", len(embs),
		"nodes", rec.Nodes,
		"edges", rec.Edges,
	)
	if g.opts.OnStep != nil {
		g.opts.OnStep(rec)
	}
	return true
}

func (g *Generator) halt(reason HaltReason) bool {
	g.state = Halted
	g.reason = reason
	g.log.Debug("generation halted",
		"reason", reason,
		"steps", g.steps,
		"nodes", g.host.NodeCount(),
		"edges", g.host.EdgeCount(),
	)
	return false
}

// Generate steps until the generator halts and returns the final graph.
func (g *Generator) Generate() (*graph.Graph, HaltReason) {
	for g.Step() {
	}
	return g.host, g.reason
}
