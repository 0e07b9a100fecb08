package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/facturaia/invoice-engine/internal/agent"
	"github.com/facturaia/invoice-engine/internal/audit"
	"github.com/facturaia/invoice-engine/internal/classify"
	"github.com/facturaia/invoice-engine/internal/common"
	"github.com/facturaia/invoice-engine/internal/export"
	"github.com/facturaia/invoice-engine/internal/extract"
	"github.com/facturaia/invoice-engine/internal/ingest"
	"github.com/facturaia/invoice-engine/internal/pipeline"
	"github.com/facturaia/invoice-engine/internal/repository"
	"github.com/facturaia/invoice-engine/internal/textsource"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir     = flag.String("dir", "", "directory to process invoices from (required)")
		out     = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		fromStr = flag.String("from", "", "from date YYYY-MM-DD")
		toStr   = flag.String("to", "", "to date YYYY-MM-DD")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "invoices.xlsx")
	}

	var from, to *time.Time
	if *fromStr != "" {
		parsed, err := time.Parse("2006-01-02", *fromStr)
		if err != nil {
			printError("Error: invalid --from date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		}
		from = &parsed
	}
	if *toStr != "" {
		parsed, err := time.Parse("2006-01-02", *toStr)
		if err != nil {
			printError("Error: invalid --to date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		}
		to = &parsed
	}

	_ = godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	docsRepo := repository.NewDocumentRepository(pool, logger)
	invoicesRepo := repository.NewInvoiceRepository(pool, logger)

	var auditor audit.Store = audit.NopStore{}
	if cfg.Audit.Path != "" {
		auditor, err = audit.OpenSQLite(cfg.Audit.Path, logger)
		if err != nil {
			logger.Error("failed to open audit store", "error", err)
			os.Exit(1)
		}
		defer func() { _ = auditor.Close() }()
	}

	var ag agent.Classifier
	if cfg.Agent.BaseURL != "" {
		ag = agent.NewClient(agent.Config{
			BaseURL:       cfg.Agent.BaseURL,
			ClassifyAgent: cfg.Agent.ClassifyAgent,
			TriageAgent:   cfg.Agent.TriageAgent,
			Timeout:       cfg.Agent.Timeout,
		}, logger)
		logger.Info("agent classifier enabled")
	} else {
		logger.Warn("agent URL not configured, classification runs in legacy mode only")
	}

	extractor := extract.NewExtractor(logger)
	classifier := classify.NewClassifier(logger, classify.Config{AgentThreshold: cfg.Agent.Threshold}, ag)
	pipe := pipeline.New(logger, extractor, classifier)
	processor := pipeline.NewProcessor(logger, textsource.NewPlainReader(logger), pipe, docsRepo, invoicesRepo, auditor)

	logger.Info("starting batch run", "dir", *dir)
	results, stats, err := ingest.ScanDirectory(ctx, *dir, nil, true, func(ctx context.Context, path string) (string, error) {
		inv, err := processor.ProcessPath(ctx, path)
		if err != nil {
			return "", err
		}
		return inv.ID.String(), nil
	})
	if err != nil {
		logger.Error("failed to scan directory", "error", err)
		os.Exit(1)
	}
	for _, r := range results {
		if r.Err != "" {
			logger.Error("document failed", "path", r.Path, "error", r.Err)
		}
	}
	logger.Info("scan complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed)

	logger.Info("exporting to XLSX", "output", *out)
	exportService := export.NewService(invoicesRepo, logger)
	xlsxBytes, err := exportService.ExportInvoicesXLSX(ctx, from, to)
	if err != nil {
		logger.Error("failed to export invoices", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	logger.Info("batch processing complete",
		"documents_processed", stats.Succeeded,
		"failures", stats.Failed,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Documents processed: %d\n", stats.Succeeded)
	fmt.Printf("- Failures: %d\n", stats.Failed)
	fmt.Printf("- Output: %s\n", *out)
}
