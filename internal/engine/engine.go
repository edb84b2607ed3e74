package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gyaneshwarpardhi/graphgram/internal/catalog"
	"github.com/gyaneshwarpardhi/graphgram/internal/config"
	"github.com/gyaneshwarpardhi/graphgram/internal/metrics"
	"github.com/gyaneshwarpardhi/graphgram/internal/run"
	"github.com/gyaneshwarpardhi/graphgram/internal/seed"
)

// Engine runs independent generation runs on a bounded worker pool. Every
// run owns its host graph and random source; compiled grammars are shared
// read-only through the current catalog.
type Engine struct {
	catalog atomic.Pointer[catalog.Catalog]
	pool    *workerPool[*runWork]
	store   *resultStore
	conf    *config.EngineConf
	log     *slog.Logger
}

type runWork struct {
	ctx     context.Context // set for sync runs; async runs use the run timeout
	req     *run.Request
	resultC chan outcome
}

type outcome struct {
	res *run.Result
	err error
}

// New creates an Engine using conf and starts the worker pool.
func New(ctx context.Context, cat *catalog.Catalog, conf config.EngineConf) *Engine {
	e := &Engine{
		store: newResultStore(conf.RetainRuns),
		conf:  &conf,
		log:   slog.Default().With("component", "engine"),
	}
	e.SwapCatalog(cat)
	e.pool = newWorkerPool[*runWork](ctx, conf.Workers, conf.QueueDepth, e.process)
	return e
}

// SwapCatalog atomically replaces the grammar catalog (used on hot-reload).
// Runs already executing finish against the catalog they started with.
func (e *Engine) SwapCatalog(c *catalog.Catalog) {
	e.catalog.Store(c)
	metrics.CatalogGrammars.Set(float64(c.Len()))
}

// BindLoader makes every reload of loader rebuild the catalog and swap it in.
// A config whose catalog fails to build is rejected by the loader, so
// loader.Config() always describes the catalog being served.
func (e *Engine) BindLoader(loader *config.Loader, seeds *seed.Registry) {
	loader.SetGate(func(cfg *config.CatalogConfig) error {
		cat, err := catalog.FromConfig(cfg, seeds)
		if err != nil {
			return err
		}
		e.SwapCatalog(cat)
		e.log.Info("grammar catalog swapped", "version", cat.Version(), "grammars", cat.Len())
		return nil
	})
}

// Catalog returns the current catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog.Load()
}

// RunSync executes a run on the pool and waits for its result.
func (e *Engine) RunSync(ctx context.Context, req *run.Request) (*run.Result, error) {
	if e.Catalog().Get(req.GrammarID) == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownGrammar, req.GrammarID)
	}
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	w := &runWork{ctx: ctx, req: req, resultC: make(chan outcome, 1)}
	if !e.pool.Submit(w) {
		metrics.RunsRejected.Inc()
		return nil, fmt.Errorf("%w (capacity %d)", ErrQueueFull, e.conf.QueueDepth)
	}
	metrics.RunsEnqueued.Inc()

	select {
	case out := <-w.resultC:
		return out.res, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("run %s timeout after %v: %w", req.ID, e.timeout(), ctx.Err())
		}
		return nil, ctx.Err()
	}
}

// RunAsync enqueues a run for background execution. Its result is retained
// and can be fetched with Result once the run finishes.
func (e *Engine) RunAsync(req *run.Request) error {
	if e.Catalog().Get(req.GrammarID) == nil {
		return fmt.Errorf("%w %q", ErrUnknownGrammar, req.GrammarID)
	}
	// Stored before submitting so a fast worker cannot be overwritten.
	e.store.put(&run.Result{RunID: req.ID, GrammarID: req.GrammarID, Status: run.Queued})
	if !e.pool.Submit(&runWork{req: req}) {
		e.store.drop(req.ID)
		metrics.RunsRejected.Inc()
		return fmt.Errorf("%w (capacity %d)", ErrQueueFull, e.conf.QueueDepth)
	}
	metrics.RunsEnqueued.Inc()
	return nil
}

// Result returns a retained async result.
func (e *Engine) Result(id string) (*run.Result, bool) {
	return e.store.get(id)
}

// QueueUtilization returns queue used / capacity (0–1).
func (e *Engine) QueueUtilization() float64 {
	if e.pool.QueueCap() == 0 {
		return 0
	}
	return float64(e.pool.QueueLen()) / float64(e.pool.QueueCap())
}

func (e *Engine) timeout() time.Duration {
	return time.Duration(e.conf.RunTimeoutMs) * time.Millisecond
}

// withTimeout bounds ctx by the run timeout; a zero timeout means none.
func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.conf.RunTimeoutMs <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout())
}

func (e *Engine) process(ctx context.Context, w *runWork) {
	if w.ctx != nil {
		ctx = w.ctx
	} else {
		var cancel context.CancelFunc
		ctx, cancel = e.withTimeout(ctx)
		defer cancel()
	}

	res, err := Execute(ctx, e.Catalog(), w.req, e.log)
	if err != nil {
		e.log.Warn("run failed", "run", w.req.ID, "grammar", w.req.GrammarID, "err", err)
	}
	if w.resultC != nil {
		w.resultC <- outcome{res: res, err: err}
		return
	}
	if err != nil {
		res = &run.Result{RunID: w.req.ID, GrammarID: w.req.GrammarID, Status: run.Failed, Error: err.Error()}
	}
	e.store.put(res)
}

// Shutdown drains the pool gracefully.
func (e *Engine) Shutdown() {
	e.pool.Drain()
}
