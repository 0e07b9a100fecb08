package extract

import "regexp"

// Single-pass labelled chains, no positional fallback: a missing tax id
// or invoice number yields an empty value.
var nitChain = []textStrategy{
	labelled("nit_label", regexp.MustCompile(`(?i)\bnit\.?\s*:?\s*(\d[\d.]*(?:\s*-\s*\d)?)`)),
	labelled("nit_dotted_label", regexp.MustCompile(`(?i)\bn\.i\.t\.?\s*:?\s*(\d[\d.]*(?:\s*-\s*\d)?)`)),
}

var invoiceNumberChain = []textStrategy{
	labelled("factura_no", regexp.MustCompile(`(?i)factura\s*(?:de\s+venta\s*)?(?:electr[oó]nica\s*)?(?:no|n[°º]|#|num(?:ero)?)\.?\s*:?\s*([A-Za-z0-9-]+)`)),
	labelled("invoice_no", regexp.MustCompile(`(?i)\binvoice\s*(?:no|number|#)\.?\s*:?\s*([A-Za-z0-9-]+)`)),
	labelled("no_factura", regexp.MustCompile(`(?i)\bno\.?\s*factura\s*:?\s*([A-Za-z0-9-]+)`)),
}

func extractNIT(d *document) string {
	v, _, _ := runChain(d, nitChain)
	return v
}

func extractInvoiceNumber(d *document) string {
	v, _, _ := runChain(d, invoiceNumberChain)
	return v
}
