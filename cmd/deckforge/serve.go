package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/deckforge/internal/artifact"
	"git.home.luguber.info/inful/deckforge/internal/config"
	"git.home.luguber.info/inful/deckforge/internal/eventstore"
	"git.home.luguber.info/inful/deckforge/internal/llm"
	"git.home.luguber.info/inful/deckforge/internal/metrics"
	"git.home.luguber.info/inful/deckforge/internal/pipeline"
	"git.home.luguber.info/inful/deckforge/internal/retention"
	"git.home.luguber.info/inful/deckforge/internal/retry"
	"git.home.luguber.info/inful/deckforge/internal/server"
	"git.home.luguber.info/inful/deckforge/internal/stream"
)

// runServe wires the full service and blocks until interrupted.
func runServe(cfg *config.Config) error {
	client := newLLMClient(cfg)

	graph, err := pipeline.BuildDeckGraph(client)
	if err != nil {
		return fmt.Errorf("build stage graph: %w", err)
	}

	assembler, err := artifact.NewJSONAssembler(cfg.Server.OutputDir)
	if err != nil {
		return fmt.Errorf("prepare output dir: %w", err)
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	orch := pipeline.NewOrchestrator(graph, assembler,
		pipeline.WithRecorder(recorder),
		pipeline.WithStageTimeout(cfg.Pipeline.StageTimeout))

	store, err := eventstore.NewSQLiteStore(cfg.Server.EventDBPath)
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}
	defer store.Close()

	broker := stream.NewBroker(cfg.Pipeline.EventBuffer)

	srv := server.New(cfg, orch, broker, store, client.Info(),
		server.WithRegistry(registry))

	var janitor *retention.Janitor
	if cfg.Retention.Enabled {
		janitor, err = retention.NewJanitor(cfg.Server.OutputDir, cfg.Retention.MaxAge)
		if err != nil {
			return fmt.Errorf("create retention janitor: %w", err)
		}
		if err := janitor.Start(cfg.Retention.SweepInterval); err != nil {
			return fmt.Errorf("start retention janitor: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case s := <-sig:
		slog.Info("shutting down", "signal", s.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if janitor != nil {
		if err := janitor.Stop(); err != nil {
			slog.Warn("janitor shutdown failed", "error", err)
		}
	}
	return srv.Shutdown(shutdownCtx)
}

func newLLMClient(cfg *config.Config) *llm.HTTPClient {
	policy := retry.NewPolicy(retry.BackoffLinear, cfg.LLM.RetryBackoff, 30*time.Second, cfg.LLM.MaxRetries)
	return llm.NewHTTPClient(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.APIKey(), cfg.LLM.Timeout,
		llm.WithRetryPolicy(policy))
}
