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

	"github.com/joho/godotenv"

	"github.com/facturaia/invoice-engine/internal/agent"
	"github.com/facturaia/invoice-engine/internal/async"
	"github.com/facturaia/invoice-engine/internal/audit"
	"github.com/facturaia/invoice-engine/internal/classify"
	"github.com/facturaia/invoice-engine/internal/common"
	"github.com/facturaia/invoice-engine/internal/export"
	"github.com/facturaia/invoice-engine/internal/extract"
	"github.com/facturaia/invoice-engine/internal/ingest"
	"github.com/facturaia/invoice-engine/internal/pipeline"
	"github.com/facturaia/invoice-engine/internal/repository"
	"github.com/facturaia/invoice-engine/internal/server"
	"github.com/facturaia/invoice-engine/internal/textsource"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	if err := repository.HealthCheck(ctx, pool, 3*time.Second, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database health OK")

	docsRepo := repository.NewDocumentRepository(pool, logger)
	invoicesRepo := repository.NewInvoiceRepository(pool, logger)

	var auditor audit.Store = audit.NopStore{}
	if cfg.Audit.Path != "" {
		auditor, err = audit.OpenSQLite(cfg.Audit.Path, logger)
		if err != nil {
			logger.Error("failed to open audit store", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := auditor.Close(); err != nil {
				logger.Warn("failed to close audit store", "error", err)
			}
		}()
	}

	var ag agent.Classifier
	if cfg.Agent.BaseURL != "" {
		ag = agent.NewClient(agent.Config{
			BaseURL:       cfg.Agent.BaseURL,
			ClassifyAgent: cfg.Agent.ClassifyAgent,
			TriageAgent:   cfg.Agent.TriageAgent,
			Timeout:       cfg.Agent.Timeout,
		}, logger)
		logger.Info("agent classifier enabled", "base_url", cfg.Agent.BaseURL)
	} else {
		logger.Warn("agent URL not configured, classification runs in legacy mode only")
	}

	extractor := extract.NewExtractor(logger)
	classifier := classify.NewClassifier(logger, classify.Config{AgentThreshold: cfg.Agent.Threshold}, ag)
	pipe := pipeline.New(logger, extractor, classifier)
	processor := pipeline.NewProcessor(logger, textsource.NewPlainReader(logger), pipe, docsRepo, invoicesRepo, auditor)

	queue := async.NewProcessorQueue(processor, logger)

	if len(cfg.Ingest.WatchDirs) > 0 {
		events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       cfg.Ingest.WatchDirs,
			InitialScan: true,
			Debounce:    cfg.Ingest.Debounce,
		}, logger)
		if err != nil {
			logger.Error("failed to start watcher", "error", err)
			os.Exit(1)
		}
		go func() {
			for path := range events {
				_ = queue.Enqueue(ctx, async.Job{Path: path, SubmittedAt: time.Now()})
			}
		}()
		go func() {
			for err := range watchErrs {
				logger.Error("ingest watcher error", "error", err)
			}
		}()
		logger.Info("watching drop directories", "dirs", cfg.Ingest.WatchDirs)
	}

	exporter := export.NewService(invoicesRepo, logger)
	srv := server.New(logger, pipe, invoicesRepo, exporter, pool)

	httpSrv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: srv.Router(),
	}
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}
