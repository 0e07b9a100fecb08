package entity

import (
	"github.com/shopspring/decimal"
)

// InvoiceItem is one billed line on a document. Total is derived, never
// stored independently.
type InvoiceItem struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Total returns quantity * unit price.
func (i InvoiceItem) Total() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// ExtractedFields is the structured output of field extraction. Every
// field carries its documented fallback value when no pattern matched;
// there is no null field in this record.
type ExtractedFields struct {
	Date          string          `json:"date"` // YYYY-MM-DD
	VendorName    string          `json:"vendor_name"`
	ClientName    string          `json:"client_name"`
	Items         []InvoiceItem   `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Total         decimal.Decimal `json:"total"`
	NIT           string          `json:"nit,omitempty"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
}

// RawText is the full text of one document plus trivial provenance.
// Produced once by the upstream text-extraction collaborator and consumed
// read-only here.
type RawText struct {
	Text       string `json:"text"`
	SourcePath string `json:"source_path,omitempty"`
	FileExt    string `json:"file_ext,omitempty"`
}
