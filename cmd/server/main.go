package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studylink/cnxgest/internal/api"
	"github.com/studylink/cnxgest/internal/cache"
	"github.com/studylink/cnxgest/internal/config"
	"github.com/studylink/cnxgest/internal/library"
	"github.com/studylink/cnxgest/internal/pipeline"
	"github.com/studylink/cnxgest/internal/textbook"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the book library and optional disk cache.
	lib := library.New(cfg.BundlePath)
	var store *cache.Cache
	if cfg.CacheDir != "" {
		var err error
		store, err = cache.New(cfg.CacheDir)
		if err != nil {
			log.Error("cache init failed", "error", err)
			os.Exit(1)
		}
	}
	svc := textbook.NewService(lib, store, log)

	// Initialize the corpus pipeline.
	orch := pipeline.NewOrchestrator(cfg, svc, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(svc, orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting cnxgest", "port", cfg.Port, "bundle", cfg.BundlePath)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
