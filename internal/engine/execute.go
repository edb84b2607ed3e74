package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/gyaneshwarpardhi/graphgram/internal/catalog"
	"github.com/gyaneshwarpardhi/graphgram/internal/generator"
	"github.com/gyaneshwarpardhi/graphgram/internal/graph"
	"github.com/gyaneshwarpardhi/graphgram/internal/metrics"
	"github.com/gyaneshwarpardhi/graphgram/internal/run"
)

var (
	ErrQueueFull      = errors.New("run queue full")
	ErrUnknownGrammar = errors.New("unknown grammar")
	ErrBadSeedGraph   = errors.New("invalid seed graph")
)

// Execute performs one generation run on the calling goroutine. The run
// stops early, with ctx's error, if ctx ends between two rewrites.
func Execute(ctx context.Context, cat *catalog.Catalog, req *run.Request, log *slog.Logger) (*run.Result, error) {
	start := time.Now()
	entry := cat.Get(req.GrammarID)
	if entry == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownGrammar, req.GrammarID)
	}

	host, err := seedGraph(entry, req)
	if err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	if log == nil {
		log = slog.Default()
	}

	res := &run.Result{RunID: req.ID, GrammarID: req.GrammarID, Seed: seed}
	rewrites := metrics.Rewrites.WithLabelValues(req.GrammarID)
	gen := generator.New(entry.Grammar, rand.New(rand.NewSource(seed)), generator.Options{
		Seed:           host,
		MaxSteps:       tighten(entry.Generation.MaxSteps, req.MaxSteps),
		MaxNodes:       tighten(entry.Generation.MaxNodes, req.MaxNodes),
		EmbeddingLimit: entry.Generation.EmbeddingLimit,
		Logger:         log.With("run", req.ID, "grammar", req.GrammarID),
		OnStep: func(rec generator.StepRecord) {
			rewrites.Inc()
			if req.Trace {
				res.Trace = append(res.Trace, run.FromRecord(rec))
			}
		},
	})

	for gen.Step() {
		if err := ctx.Err(); err != nil {
			metrics.RunsFailed.WithLabelValues(req.GrammarID).Inc()
			return nil, fmt.Errorf("run %s stopped after %d steps: %w", req.ID, gen.Steps(), err)
		}
	}

	out := gen.Graph().Export()
	res.Status = run.Done
	res.Halt = gen.Reason()
	res.Steps = gen.Steps()
	res.Nodes = gen.Graph().NodeCount()
	res.Edges = gen.Graph().EdgeCount()
	res.Graph = &out
	res.DurationMs = time.Since(start).Milliseconds()

	metrics.RunsTotal.WithLabelValues(req.GrammarID, string(res.Halt)).Inc()
	metrics.RunDuration.Observe(float64(res.DurationMs))
	metrics.RunNodes.Observe(float64(res.Nodes))
	return res, nil
}

func seedGraph(entry *catalog.Entry, req *run.Request) (*graph.Graph, error) {
	if req.SeedGraph != nil {
		g, err := graph.Import(*req.SeedGraph)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadSeedGraph, err)
		}
		return g, nil
	}
	g, err := entry.NewSeed()
	if err != nil {
		return nil, fmt.Errorf("grammar %s seed: %w", entry.ID, err)
	}
	return g, nil
}

// tighten applies a request bound only when it is stricter than the
// configured one. Zero means unbounded on both sides.
func tighten(configured, requested int) int {
	if requested <= 0 {
		return configured
	}
	if configured == 0 || requested < configured {
		return requested
	}
	return configured
}
