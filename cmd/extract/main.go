// Command extract runs the extraction pipeline on a single document and
// prints the resulting invoice as JSON. No database required.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/facturaia/invoice-engine/internal/agent"
	"github.com/facturaia/invoice-engine/internal/classify"
	"github.com/facturaia/invoice-engine/internal/common"
	"github.com/facturaia/invoice-engine/internal/entity"
	"github.com/facturaia/invoice-engine/internal/extract"
	"github.com/facturaia/invoice-engine/internal/pipeline"
)

func main() {
	file := flag.String("file", "", "path to a .txt document (reads stdin when omitted)")
	flag.Parse()

	_ = godotenv.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	var (
		text       []byte
		sourcePath string
		err        error
	)
	if *file != "" {
		text, err = os.ReadFile(*file)
		sourcePath = *file
	} else {
		text, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	var ag agent.Classifier
	if cfg.Agent.BaseURL != "" {
		ag = agent.NewClient(agent.Config{
			BaseURL:       cfg.Agent.BaseURL,
			ClassifyAgent: cfg.Agent.ClassifyAgent,
			TriageAgent:   cfg.Agent.TriageAgent,
			Timeout:       cfg.Agent.Timeout,
		}, logger)
	}

	extractor := extract.NewExtractor(logger)
	classifier := classify.NewClassifier(logger, classify.Config{AgentThreshold: cfg.Agent.Threshold}, ag)
	pipe := pipeline.New(logger, extractor, classifier)

	inv, err := pipe.Run(context.Background(), entity.RawText{
		Text:       string(text),
		SourcePath: sourcePath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(inv); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
}
