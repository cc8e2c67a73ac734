package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tanloong/neosca/internal/api"
	"github.com/tanloong/neosca/internal/catalog"
	"github.com/tanloong/neosca/internal/config"
	"github.com/tanloong/neosca/internal/nlp"
	"github.com/tanloong/neosca/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Structure catalog: built-in unless a file is configured.
	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		var err error
		cat, err = catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			log.Error("invalid catalog", "path", cfg.CatalogPath, "error", err)
			os.Exit(1)
		}
		log.Info("loaded catalog", "path", cfg.CatalogPath, "structures", len(cat.Names()))
	}

	// Parse service client.
	stats := nlp.NewParseStats(time.Hour)
	parser := nlp.NewClient(cfg.ParserURL, cfg.ParserAPIKey, stats)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, parser, cat, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, stats, log, cfg)

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

		parser.Close()
	}()

	log.Info("starting neosca", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
