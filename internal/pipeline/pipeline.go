// Package pipeline assembles extraction and classification into the one
// record downstream accounting consumes. The pipeline itself never
// touches storage; the Processor in this package owns persistence.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/facturaia/invoice-engine/internal/classify"
	"github.com/facturaia/invoice-engine/internal/common"
	"github.com/facturaia/invoice-engine/internal/entity"
	"github.com/facturaia/invoice-engine/internal/extract"
)

// Pipeline coordinates field extraction then classification.
type Pipeline struct {
	logger     *slog.Logger
	extractor  *extract.Extractor
	classifier *classify.Classifier
	now        func() time.Time
}

type Option func(*Pipeline)

// WithClock overrides the timestamp source. Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

func New(logger *slog.Logger, extractor *extract.Extractor, classifier *classify.Classifier, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		logger:     logger,
		extractor:  extractor,
		classifier: classifier,
		now:        time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run produces a complete ProcessedInvoice from raw document text. Empty
// or whitespace-only input is the single rejection case; everything else
// yields a record, falling back to sentinel values field by field.
func (p *Pipeline) Run(ctx context.Context, raw entity.RawText) (entity.ProcessedInvoice, error) {
	start := time.Now()
	if strings.TrimSpace(raw.Text) == "" {
		return entity.ProcessedInvoice{}, common.ErrEmptyText
	}

	fields := p.extractor.Extract(raw.Text)
	cls := p.classifier.Classify(ctx, raw.Text)

	inv := entity.ProcessedInvoice{
		ID:                       uuid.New(),
		Date:                     fields.Date,
		Vendor:                   fields.VendorName,
		Client:                   fields.ClientName,
		Items:                    fields.Items,
		Subtotal:                 fields.Subtotal,
		TaxAmount:                fields.TaxAmount,
		Total:                    fields.Total,
		NIT:                      fields.NIT,
		InvoiceNumber:            fields.InvoiceNumber,
		InvoiceType:              cls.InvoiceType,
		ClassificationMethod:     cls.Method,
		ClassificationConfidence: cls.Confidence,
		SourcePath:               raw.SourcePath,
		ProcessedAt:              p.now().UTC(),
	}

	p.logger.Info("pipeline.run.ok",
		"invoice_id", inv.ID,
		"vendor", inv.Vendor,
		"total", inv.Total,
		"invoice_type", inv.InvoiceType,
		"method", inv.ClassificationMethod,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return inv, nil
}
