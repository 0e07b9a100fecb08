package textsource

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/facturaia/invoice-engine/constants"
)

// maxTextBytes caps how much of a document we read. Invoices are small;
// anything larger is almost certainly not one.
const maxTextBytes = 4 << 20

// PlainReader reads .txt documents verbatim. It is the only source wired
// today; PDF and image sources plug into the same interface once an OCR
// backend lands.
type PlainReader struct {
	logger *slog.Logger
}

func NewPlainReader(logger *slog.Logger) *PlainReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlainReader{logger: logger}
}

func (r *PlainReader) Read(ctx context.Context, path string) (TextResult, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return TextResult{}, err
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	if constants.MapExtToFormat(ext) != "TXT" {
		return TextResult{}, fmt.Errorf("unsupported source format: %q", ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return TextResult{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > maxTextBytes {
		return TextResult{}, fmt.Errorf("file too large: %d bytes", info.Size())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return TextResult{}, fmt.Errorf("read %s: %w", path, err)
	}

	res := TextResult{
		Text:       string(raw),
		SourceType: "TEXT",
		Method:     "plain-read",
		Duration:   time.Since(start),
	}
	if !utf8.Valid(raw) {
		res.Warnings = append(res.Warnings, "content is not valid UTF-8")
	}
	if strings.TrimSpace(res.Text) == "" {
		res.Warnings = append(res.Warnings, "content is empty")
	}

	r.logger.Debug("textsource.read",
		"path", path, "bytes", len(raw), "elapsed_ms", res.Duration.Milliseconds())
	return res, nil
}
