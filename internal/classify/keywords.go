package classify

import "regexp"

// Keyword sets scored by frequency over the lower-cased text. Both
// Spanish and English labels appear on the documents this system sees.
var purchaseKeywords = []string{
	"proveedor", "compra", "bill", "purchase", "supplier", "vendor",
	"orden de compra", "pedido", "receipt", "gasto",
}

var saleKeywords = []string{
	"cliente", "venta", "invoice", "sale", "customer",
	"orden de venta", "cotizacion", "cotización", "quote",
}

// Strong purchase signals short-circuit scoring entirely: these phrases
// are unambiguous on Colombian documents even when sale keywords happen
// to outnumber purchase keywords. Utility provider names are matched on
// word boundaries ("declaro" must not trigger "claro").
var strongPurchaseRes = []*regexp.Regexp{
	regexp.MustCompile(`cuenta\s+de\s+cobro`),
	regexp.MustCompile(`servicios\s+p[uú]blicos`),
	regexp.MustCompile(`factura\s+de\s+proveedor`),
	regexp.MustCompile(`\b(?:epm|claro|movistar|tigo|vanti|codensa)\b`),
}

// Secondary tie-break patterns, consulted only on an exact score tie.
var (
	tieSaleRes = []*regexp.Regexp{
		regexp.MustCompile(`factura\s+electr[oó]nica\s+de\s+venta`),
		regexp.MustCompile(`\binvoice\b`),
	}
	tiePurchaseRes = []*regexp.Regexp{
		regexp.MustCompile(`\bbill\b`),
		regexp.MustCompile(`\breceipt\b`),
		regexp.MustCompile(`\bproveedor\b`),
	}
)
