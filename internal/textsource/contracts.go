package textsource

import (
	"context"
	"time"
)

// TextSource is Stage 1: file -> raw text.
type TextSource interface {
	Read(ctx context.Context, path string) (TextResult, error)
}

type TextResult struct {
	Text       string
	SourceType string // "TEXT" | "PDF" | "IMAGE"
	Method     string // "plain-read" for now; OCR methods slot in later
	Duration   time.Duration
	Warnings   []string
}
