// Package extract locates and parses typed invoice fields out of
// free-form document text using ordered fallback pattern chains.
//
// Extraction never fails for data-quality reasons: every field has a
// documented default applied when no pattern matches, so the output is
// always a complete record.
package extract

import (
	"log/slog"
	"time"

	"github.com/facturaia/invoice-engine/constants"
	"github.com/facturaia/invoice-engine/internal/entity"
)

// Extractor applies the per-field strategy chains to raw document text.
// Safe for concurrent use across documents.
type Extractor struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock overrides the processing-date source used when no date
// pattern matches.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

func NewExtractor(logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{logger: logger, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract returns a complete ExtractedFields record for text. Missing
// optional fields resolve to their documented defaults, never to an
// error.
func (e *Extractor) Extract(text string) entity.ExtractedFields {
	d := newDocument(text)

	date, dateSrc := e.extractDate(d)
	vendor, vendorSrc := extractVendor(d)
	client := extractClient(d)
	total, subtotal, tax := extractTotals(d)
	items := extractItems(d)

	e.logger.Debug("extract.fields",
		"date_source", dateSrc,
		"vendor_source", vendorSrc,
		"total", total.String(),
		"items", len(items),
	)

	return entity.ExtractedFields{
		Date:          date,
		VendorName:    vendor,
		ClientName:    client,
		Items:         items,
		Subtotal:      subtotal,
		TaxAmount:     tax,
		Total:         total,
		NIT:           extractNIT(d),
		InvoiceNumber: extractInvoiceNumber(d),
	}
}

func extractClient(d *document) string {
	if v, _, ok := runChain(d, clientChain); ok {
		return trimPartyBoilerplate(v)
	}
	return constants.UnknownClient
}
