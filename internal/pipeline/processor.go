package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/facturaia/invoice-engine/constants"
	"github.com/facturaia/invoice-engine/internal/audit"
	"github.com/facturaia/invoice-engine/internal/entity"
	"github.com/facturaia/invoice-engine/internal/repository"
	"github.com/facturaia/invoice-engine/internal/textsource"
)

// Processor runs the full path for one document: read text, extract and
// classify, persist the invoice, advance the document row through its
// statuses, and record the classification audit entry.
type Processor struct {
	logger   *slog.Logger
	source   textsource.TextSource
	pipeline *Pipeline
	docs     repository.DocumentRepository
	invoices repository.InvoiceRepository
	auditor  audit.Store
}

func NewProcessor(
	logger *slog.Logger,
	source textsource.TextSource,
	pipe *Pipeline,
	docs repository.DocumentRepository,
	invoices repository.InvoiceRepository,
	auditor audit.Store,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if auditor == nil {
		auditor = audit.NopStore{}
	}
	return &Processor{
		logger:   logger,
		source:   source,
		pipeline: pipe,
		docs:     docs,
		invoices: invoices,
		auditor:  auditor,
	}
}

// ProcessPath ingests one file end to end. The returned invoice is nil
// when processing failed; the document row then carries the error.
func (p *Processor) ProcessPath(ctx context.Context, path string) (*entity.ProcessedInvoice, error) {
	doc, err := p.docs.Upsert(ctx, path, filepath.Ext(path))
	if err != nil {
		p.logger.Error("processor.register.failed", "path", path, "error", err)
		return nil, err
	}
	if err := p.docs.SetStatus(ctx, doc.ID, constants.JobStatusRunning); err != nil {
		return nil, err
	}

	text, err := p.source.Read(ctx, path)
	if err != nil {
		p.fail(ctx, doc.ID, err)
		return nil, err
	}
	for _, w := range text.Warnings {
		p.logger.Warn("processor.textsource.warning", "document_id", doc.ID, "warning", w)
	}

	inv, err := p.pipeline.Run(ctx, entity.RawText{
		Text:       text.Text,
		SourcePath: path,
		FileExt:    doc.FileExt,
	})
	if err != nil {
		p.fail(ctx, doc.ID, err)
		return nil, err
	}

	if err := p.invoices.Insert(ctx, &inv); err != nil {
		p.fail(ctx, doc.ID, err)
		return nil, err
	}

	// Audit failures must not fail the document; the invoice is already
	// persisted.
	if err := p.auditor.Record(ctx, audit.Entry{
		InvoiceID:  inv.ID,
		SourcePath: path,
		Result: entity.ClassificationResult{
			InvoiceType: inv.InvoiceType,
			Method:      inv.ClassificationMethod,
			Confidence:  inv.ClassificationConfidence,
		},
	}); err != nil {
		p.logger.Warn("processor.audit.failed", "invoice_id", inv.ID, "error", err)
	}

	if err := p.docs.MarkParsed(ctx, doc.ID, inv.ID); err != nil {
		return nil, err
	}

	p.logger.Info("processor.document.parsed",
		"document_id", doc.ID, "invoice_id", inv.ID, "path", path)
	return &inv, nil
}

func (p *Processor) fail(ctx context.Context, docID uuid.UUID, cause error) {
	p.logger.Error("processor.document.failed", "document_id", docID, "error", cause)
	if err := p.docs.MarkFailed(ctx, docID, cause.Error()); err != nil {
		p.logger.Error("processor.mark_failed.failed", "document_id", docID, "error", err)
	}
}
