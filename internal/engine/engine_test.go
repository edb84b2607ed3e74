package engine_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gyaneshwarpardhi/graphgram/internal/catalog"
	"github.com/gyaneshwarpardhi/graphgram/internal/config"
	"github.com/gyaneshwarpardhi/graphgram/internal/engine"
	"github.com/gyaneshwarpardhi/graphgram/internal/generator"
	"github.com/gyaneshwarpardhi/graphgram/internal/graph"
	"github.com/gyaneshwarpardhi/graphgram/internal/run"
	"github.com/gyaneshwarpardhi/graphgram/internal/seed"
)

const catalogYAML = `
version: "1"
grammars:
  - id: dungeon
    enabled: true
    max_steps: 30
    source: |
      start ==> entrance->room1, room1->exit;
      room1->room2 ==> room1->hall->room2;
      room ==> room->chest | room->room1, room1->monster;
  - id: grow
    enabled: true
    seed_mode: first_lhs
    rules: ["A ==> A, A;"]
`

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cfg, err := config.Parse([]byte(catalogYAML))
	require.NoError(t, err)
	// grow is unbounded: it only stops on the run timeout.
	cfg.Generation.MaxSteps = 0
	cfg.Generation.MaxNodes = 0
	c, err := catalog.Build(cfg, seed.DefaultRegistry())
	require.NoError(t, err)
	return c
}

func seedPtr(v int64) *int64 { return &v }

func newEngine(t *testing.T, conf config.EngineConf) (*engine.Engine, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	e := engine.New(ctx, newCatalog(t), conf)
	return e, func() {
		cancel()
		e.Shutdown()
	}
}

func TestExecute_Deterministic(t *testing.T) {
	cat := newCatalog(t)
	req := &run.Request{ID: "r1", GrammarID: "dungeon", Seed: seedPtr(42), Trace: true}

	a, err := engine.Execute(context.Background(), cat, req, nil)
	require.NoError(t, err)
	b, err := engine.Execute(context.Background(), cat, req, nil)
	require.NoError(t, err)

	assert.Equal(t, run.Done, a.Status)
	assert.Equal(t, int64(42), a.Seed)
	assert.Len(t, a.Trace, a.Steps)
	assert.Equal(t, a.Nodes, len(a.Graph.Nodes))
	if diff := cmp.Diff(a.Graph, b.Graph); diff != "" {
		t.Errorf("same seed, different graphs (-a +b):\n%s", diff)
	}
}

func TestExecute_Bounds(t *testing.T) {
	cat := newCatalog(t)

	res, err := engine.Execute(context.Background(), cat,
		&run.Request{ID: "r", GrammarID: "grow", Seed: seedPtr(1), MaxSteps: 7}, nil)
	require.NoError(t, err)
	assert.Equal(t, generator.StepBound, res.Halt)
	assert.Equal(t, 7, res.Steps)
	assert.Equal(t, 8, res.Nodes)

	res, err = engine.Execute(context.Background(), cat,
		&run.Request{ID: "r", GrammarID: "grow", Seed: seedPtr(1), MaxNodes: 5}, nil)
	require.NoError(t, err)
	assert.Equal(t, generator.NodeBound, res.Halt)
	assert.Equal(t, 5, res.Nodes)

	// Request bounds cannot loosen the grammar's.
	res, err = engine.Execute(context.Background(), cat,
		&run.Request{ID: "r", GrammarID: "dungeon", Seed: seedPtr(1), MaxSteps: 10_000}, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Steps, 30)
}

func TestExecute_SeedGraph(t *testing.T) {
	cat := newCatalog(t)
	seedGraph := &graph.Interchange{
		Nodes: []graph.NodeRecord{{ID: 1, Type: "room"}, {ID: 2, Type: "room"}},
		Edges: [][2]graph.NodeID{{1, 2}},
	}
	res, err := engine.Execute(context.Background(), cat,
		&run.Request{ID: "r", GrammarID: "dungeon", Seed: seedPtr(3), MaxSteps: 1, SeedGraph: seedGraph}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Steps)
	assert.GreaterOrEqual(t, res.Nodes, 3)

	bad := &graph.Interchange{Edges: [][2]graph.NodeID{{1, 2}}}
	_, err = engine.Execute(context.Background(), cat,
		&run.Request{ID: "r", GrammarID: "dungeon", SeedGraph: bad}, nil)
	assert.True(t, errors.Is(err, engine.ErrBadSeedGraph))
}

func TestExecute_Errors(t *testing.T) {
	cat := newCatalog(t)
	_, err := engine.Execute(context.Background(), cat, &run.Request{GrammarID: "nope"}, nil)
	assert.True(t, errors.Is(err, engine.ErrUnknownGrammar))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.Execute(ctx, cat, &run.Request{ID: "r", GrammarID: "grow", Seed: seedPtr(1)}, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEngine_RunSync(t *testing.T) {
	defer goleak.VerifyNone(t)
	e, stop := newEngine(t, config.EngineConf{Workers: 2, QueueDepth: 4, RunTimeoutMs: 2000, RetainRuns: 10})
	defer stop()

	res, err := e.RunSync(context.Background(), &run.Request{ID: "s1", GrammarID: "dungeon", Seed: seedPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, "s1", res.RunID)
	assert.NotEmpty(t, res.Halt)

	_, err = e.RunSync(context.Background(), &run.Request{ID: "s2", GrammarID: "missing"})
	assert.True(t, errors.Is(err, engine.ErrUnknownGrammar))
}

func TestEngine_RunSyncTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)
	e, stop := newEngine(t, config.EngineConf{Workers: 1, QueueDepth: 1, RunTimeoutMs: 50, RetainRuns: 10})
	defer stop()

	_, err := e.RunSync(context.Background(), &run.Request{ID: "t", GrammarID: "grow", Seed: seedPtr(1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestEngine_RunAsync(t *testing.T) {
	defer goleak.VerifyNone(t)
	e, stop := newEngine(t, config.EngineConf{Workers: 2, QueueDepth: 8, RunTimeoutMs: 2000, RetainRuns: 10})
	defer stop()

	require.NoError(t, e.RunAsync(&run.Request{ID: "a1", GrammarID: "dungeon", Seed: seedPtr(5)}))
	require.Eventually(t, func() bool {
		res, ok := e.Result("a1")
		return ok && res.Status == run.Done
	}, 2*time.Second, 5*time.Millisecond)

	_, ok := e.Result("never")
	assert.False(t, ok)
	assert.True(t, errors.Is(e.RunAsync(&run.Request{ID: "a2", GrammarID: "missing"}), engine.ErrUnknownGrammar))
}

func TestEngine_QueueFull(t *testing.T) {
	defer goleak.VerifyNone(t)
	e, stop := newEngine(t, config.EngineConf{Workers: 1, QueueDepth: 1, RunTimeoutMs: 300, RetainRuns: 10})
	defer stop()

	rejected := 0
	for _, id := range []string{"q1", "q2", "q3"} {
		err := e.RunAsync(&run.Request{ID: id, GrammarID: "grow", Seed: seedPtr(1)})
		if errors.Is(err, engine.ErrQueueFull) {
			rejected++
			_, ok := e.Result(id)
			assert.False(t, ok, "rejected run %s must not be retained", id)
		}
	}
	assert.GreaterOrEqual(t, rejected, 1)
}

func TestEngine_SwapCatalog(t *testing.T) {
	defer goleak.VerifyNone(t)
	e, stop := newEngine(t, config.EngineConf{Workers: 1, QueueDepth: 2, RunTimeoutMs: 1000, RetainRuns: 10})
	defer stop()

	cfg, err := config.Parse([]byte(`
version: "2"
grammars:
  - id: tiny
    enabled: true
    rules: ["start ==> leaf;"]
`))
	require.NoError(t, err)
	c, err := catalog.Build(cfg, seed.DefaultRegistry())
	require.NoError(t, err)
	e.SwapCatalog(c)

	assert.Equal(t, "2", e.Catalog().Version())
	res, err := e.RunSync(context.Background(), &run.Request{ID: "x", GrammarID: "tiny", Seed: seedPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, generator.Fixpoint, res.Halt)
	assert.Equal(t, 1, res.Steps)

	_, err = e.RunSync(context.Background(), &run.Request{ID: "y", GrammarID: "dungeon"})
	assert.True(t, errors.Is(err, engine.ErrUnknownGrammar))
}

func TestEngine_ShutdownRejects(t *testing.T) {
	defer goleak.VerifyNone(t)
	e, stop := newEngine(t, config.EngineConf{Workers: 1, QueueDepth: 2, RunTimeoutMs: 1000, RetainRuns: 10})
	stop()
	assert.True(t, errors.Is(e.RunAsync(&run.Request{ID: "z", GrammarID: "dungeon"}), engine.ErrQueueFull))
}

func TestEngine_BindLoader(t *testing.T) {
	defer goleak.VerifyNone(t)
	e, stop := newEngine(t, config.EngineConf{Workers: 1, QueueDepth: 2, RunTimeoutMs: 1000, RetainRuns: 10})
	defer stop()

	path := filepath.Join(t.TempDir(), "grammars.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o644))
	loader, err := config.NewLoader(path)
	require.NoError(t, err)
	e.BindLoader(loader, seed.DefaultRegistry())

	next := strings.Replace(catalogYAML, `version: "1"`, `version: "2"`, 1)
	require.NoError(t, os.WriteFile(path, []byte(next), 0o644))
	_, err = loader.Reload()
	require.NoError(t, err)
	assert.Equal(t, "2", e.Catalog().Version())

	broken := strings.Replace(next, `version: "2"`, `version: "3"`, 1)
	broken = strings.Replace(broken, `"A ==> A, A;"`, `"A ==> ;"`, 1)
	require.NoError(t, os.WriteFile(path, []byte(broken), 0o644))
	_, err = loader.Reload()
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrRejected))
	assert.Equal(t, "2", e.Catalog().Version())
	assert.Equal(t, "2", loader.Config().Version)
}
