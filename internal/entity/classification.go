package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/facturaia/invoice-engine/constants"
)

// ClassificationResult is the outcome of classifying one document.
// InvoiceType is always one of the two valid values; ambiguity is
// resolved, never surfaced as unknown.
type ClassificationResult struct {
	InvoiceType constants.InvoiceType          `json:"invoice_type"`
	Method      constants.ClassificationMethod `json:"method"`
	Confidence  *float64                       `json:"confidence,omitempty"` // nil in LEGACY mode
	Rationale   string                         `json:"rationale"`
}

// ProcessedInvoice is the single record emitted per document. It is the
// sole contract consumed by the downstream accounting-posting layer.
type ProcessedInvoice struct {
	ID                       uuid.UUID                      `json:"id"`
	Date                     string                         `json:"date"` // YYYY-MM-DD
	Vendor                   string                         `json:"vendor"`
	Client                   string                         `json:"client"`
	Items                    []InvoiceItem                  `json:"items"`
	Subtotal                 decimal.Decimal                `json:"subtotal"`
	TaxAmount                decimal.Decimal                `json:"tax_amount"`
	Total                    decimal.Decimal                `json:"total"`
	NIT                      string                         `json:"nit,omitempty"`
	InvoiceNumber            string                         `json:"invoice_number,omitempty"`
	InvoiceType              constants.InvoiceType          `json:"invoice_type"`
	ClassificationMethod     constants.ClassificationMethod `json:"classification_method"`
	ClassificationConfidence *float64                       `json:"classification_confidence,omitempty"`
	SourcePath               string                         `json:"source_path,omitempty"`
	ProcessedAt              time.Time                      `json:"processed_at"`
}

// Document represents one ingested source file for data transfer between
// layers.
type Document struct {
	ID         uuid.UUID  `json:"id"`
	SourcePath string     `json:"source_path"`
	FileExt    string     `json:"file_ext"`
	Format     string     `json:"format"`
	Status     string     `json:"status"`
	Error      *string    `json:"error,omitempty"`
	InvoiceID  *uuid.UUID `json:"invoice_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
