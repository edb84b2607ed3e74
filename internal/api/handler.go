package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/graphgram/internal/config"
	"github.com/gyaneshwarpardhi/graphgram/internal/engine"
	"github.com/gyaneshwarpardhi/graphgram/internal/grammar"
	"github.com/gyaneshwarpardhi/graphgram/internal/metrics"
	"github.com/gyaneshwarpardhi/graphgram/internal/run"
)

const maxBatchSize = 100

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng    *engine.Engine
	loader *config.Loader
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes. loader is expected
// to be bound to eng with Engine.BindLoader.
func New(eng *engine.Engine, loader *config.Loader) http.Handler {
	h := &Handler{eng: eng, loader: loader, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/runs", h.createRun)
	h.mux.HandleFunc("POST /v1/runs/batch", h.createBatch)
	h.mux.HandleFunc("GET /v1/runs/{id}", h.getRun)
	h.mux.HandleFunc("GET /v1/grammars", h.listGrammars)
	h.mux.HandleFunc("POST /v1/grammars/reload", h.reloadGrammars)
	h.mux.HandleFunc("POST /v1/grammars/compile", h.compileGrammar)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// POST /v1/runs: synchronous single run.
func (h *Handler) createRun(w http.ResponseWriter, r *http.Request) {
	var req run.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if req.GrammarID == "" {
		writeError(w, http.StatusBadRequest, "grammar_id is required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	req.ReceivedAt = time.Now()

	res, err := h.eng.RunSync(r.Context(), &req)
	if err != nil {
		writeError(w, runErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func runErrorStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnknownGrammar):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrBadSeedGraph):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrQueueFull):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// POST /v1/runs/batch: async batch of runs (up to 100).
func (h *Handler) createBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []*run.Request
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "batch must contain at least one run")
		return
	}
	if len(reqs) > maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch size %d exceeds max %d", len(reqs), maxBatchSize))
		return
	}

	now := time.Now()
	jobID := uuid.New().String()
	runIDs := make([]string, 0, len(reqs))
	for _, req := range reqs {
		if req == nil {
			continue
		}
		if req.ID == "" {
			req.ID = uuid.New().String()
		}
		req.ReceivedAt = now
		if err := h.eng.RunAsync(req); err == nil {
			runIDs = append(runIDs, req.ID)
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   jobID,
		"total":    len(reqs),
		"queued":   len(runIDs),
		"rejected": len(reqs) - len(runIDs),
		"run_ids":  runIDs,
	})
}

// GET /v1/runs/{id}: fetch a retained async run.
func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, ok := h.eng.Result(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("run %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type grammarSummary struct {
	ID          string                `json:"id"`
	Description string                `json:"description,omitempty"`
	Rules       []string              `json:"rules"`
	Generation  config.GenerationConf `json:"generation"`
}

// GET /v1/grammars: list compiled grammars.
func (h *Handler) listGrammars(w http.ResponseWriter, r *http.Request) {
	cat := h.eng.Catalog()
	out := make([]grammarSummary, 0, cat.Len())
	for _, id := range cat.IDs() {
		e := cat.Get(id)
		s := grammarSummary{ID: e.ID, Description: e.Description, Generation: e.Generation}
		for _, rule := range e.Grammar.Rules() {
			s.Rules = append(s.Rules, rule.Source())
		}
		out = append(out, s)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version":  cat.Version(),
		"grammars": out,
	})
}

// POST /v1/grammars/reload: hot-reload grammars from disk.
func (h *Handler) reloadGrammars(w http.ResponseWriter, r *http.Request) {
	// The loader's gate rebuilds and swaps the catalog before committing.
	if _, err := h.loader.Reload(); err != nil {
		switch {
		case errors.Is(err, grammar.ErrGrammar):
			writeGrammarError(w, err)
		case errors.Is(err, config.ErrRejected):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	cat := h.eng.Catalog()
	writeJSON(w, http.StatusOK, map[string]any{
		"reloaded":       true,
		"grammars_count": cat.Len(),
	})
}

type compileRequest struct {
	Rules  []string `json:"rules"`
	Source string   `json:"source"`
}

type compiledRule struct {
	Index         int                 `json:"index"`
	Source        string              `json:"source"`
	LHS           string              `json:"lhs"`
	Products      []string            `json:"products"`
	RequiredTypes []grammar.TypeCount `json:"required_types"`
}

// POST /v1/grammars/compile: compile rule text without touching the catalog.
func (h *Handler) compileGrammar(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	gr, err := grammar.CompileAll(req.Rules, req.Source)
	if err != nil {
		writeGrammarError(w, err)
		return
	}
	out := make([]compiledRule, 0, gr.Len())
	for _, rule := range gr.Rules() {
		cr := compiledRule{
			Index:         rule.Index(),
			Source:        rule.Source(),
			LHS:           rule.LHS().String(),
			RequiredTypes: rule.RequiredTypes(),
		}
		for _, p := range rule.Products() {
			cr.Products = append(cr.Products, p.String())
		}
		out = append(out, cr)
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": out})
}

// GET /healthz: always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 if run queue >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ready",
		"queue_utilization": util,
		"grammars":          h.eng.Catalog().Len(),
	})
}
