package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/bookstruct/internal/api"
	"github.com/dgallion1/bookstruct/internal/config"
	"github.com/dgallion1/bookstruct/internal/pathstore"
	"github.com/dgallion1/bookstruct/internal/pipeline"
	"github.com/dgallion1/bookstruct/internal/structure"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ps := openPathstore(cfg, log)
	engine := structure.NewEngine(cfg.Profile(), cfg.StructureOptions(), log)

	orch := pipeline.NewOrchestrator(cfg, engine, ps, log)
	orch.Start(context.WithoutCancel(ctx))

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(orch, log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		drain(httpServer, orch, ps, log)
	}()

	log.Info("starting bookstruct", "port", cfg.Port, "strategy", cfg.StructureOptions().Strategy, "pathstore", ps != nil)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http listener failed", "error", err)
		os.Exit(1)
	}
	<-done
}

// openPathstore returns nil when no pathstore URL is set; structured books
// then stay on their job until it expires.
func openPathstore(cfg config.Config, log *slog.Logger) *pathstore.Client {
	if !cfg.PathstoreEnabled() {
		log.Warn("pathstore not configured, structured books are kept in memory only")
		return nil
	}
	return pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
}

// drain stops accepting uploads, then cancels the structuring workers and
// closes the pathstore sink once they have returned.
func drain(httpServer *http.Server, orch *pipeline.Orchestrator, ps *pathstore.Client, log *slog.Logger) {
	log.Info("stopping bookstruct", "queued_jobs", orch.QueueDepth(), "tracked_jobs", orch.Jobs())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("upload listener did not close cleanly", "error", err)
	}

	orch.Stop()
	if ps != nil {
		ps.Close()
	}
	log.Info("structuring workers stopped")
}
