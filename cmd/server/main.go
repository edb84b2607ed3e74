package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gyaneshwarpardhi/graphgram/internal/api"
	"github.com/gyaneshwarpardhi/graphgram/internal/catalog"
	"github.com/gyaneshwarpardhi/graphgram/internal/config"
	"github.com/gyaneshwarpardhi/graphgram/internal/engine"
	"github.com/gyaneshwarpardhi/graphgram/internal/seed"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cfgPath := flag.String("config", "configs/grammars.yaml", "Path to grammar catalog YAML")
	debug := flag.Bool("debug", false, "Log every rewrite step")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()

	// ── Compile grammars ──────────────────────────────────────────────────────
	seeds := seed.DefaultRegistry()
	cat, err := catalog.FromConfig(cfg, seeds)
	if err != nil {
		slog.Error("failed to build grammar catalog", "err", err)
		os.Exit(1)
	}
	slog.Info("grammar catalog built", "version", cat.Version(), "grammars", cat.IDs())

	// ── Engine ────────────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New(ctx, cat, cfg.Engine)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	eng.BindLoader(loader, seeds)
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.New(eng, loader)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: time.Duration(cfg.Engine.RunTimeoutMs)*time.Millisecond + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	cancel() // stop in-flight runs
	eng.Shutdown()
	slog.Info("goodbye")
}
