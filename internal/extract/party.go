package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/facturaia/invoice-engine/constants"
)

var vendorLabelChain = []textStrategy{
	labelled("proveedor_label", regexp.MustCompile(`(?i)proveedor\s*:\s*(.+)`)),
	labelled("vendor_label", regexp.MustCompile(`(?i)\bvendor\s*:\s*(.+)`)),
	labelled("from_label", regexp.MustCompile(`(?i)\bfrom\s*:\s*(.+)`)),
	labelled("bill_to_label", regexp.MustCompile(`(?i)\bbill\s+to\s*:\s*(.+)`)),
}

var clientChain = []textStrategy{
	labelled("cliente_label", regexp.MustCompile(`(?i)cliente\s*:\s*(.+)`)),
	labelled("customer_label", regexp.MustCompile(`(?i)\bcustomer\s*:\s*(.+)`)),
	labelled("senores_label", regexp.MustCompile(`(?i)se[ñn]ores\s*:?\s*(.+)`)),
}

// Boilerplate labels that sometimes leak into a captured party name when
// two fields share a line ("Proveedor: ACME SAS  Cliente: ..."). Matched
// as whole words so names like "Updates S.A.S." survive intact.
var partyBoilerplateRe = regexp.MustCompile(`(?i)\b(?:cliente|customer|nit|fecha|date)\b`)

var (
	cuentaDeCobroRe = regexp.MustCompile(`(?i)cuenta\s+de\s+cobro`)
	nitLineRe       = regexp.MustCompile(`(?i)^\s*(?:nit|n\.i\.t|c\.c|cc)\b|^[\d.\-\s]+$`)
	debeARe         = regexp.MustCompile(`(?i)debe\s+a`)
)

// Structural keywords that disqualify a line from being a company name.
var companyBlacklist = []string{
	"factura", "invoice", "fecha", "date", "total", "subtotal", "nit",
	"iva", "tel", "direcc", "cuenta", "cobro", "cliente", "customer",
	"valor", "pago", "regimen", "resolucion", "email", "@",
}

// extractVendor resolves the counterparty name: labelled patterns first,
// then the cuenta-de-cobro header heuristic, then the company-like-line
// heuristic, then the sentinel. Never fails.
func extractVendor(d *document) (string, string) {
	if v, src, ok := runChain(d, vendorLabelChain); ok {
		return trimPartyBoilerplate(v), src
	}
	if v, ok := vendorFromCuentaDeCobro(d); ok {
		return v, "cuenta_de_cobro"
	}
	if v, ok := vendorFromCompanyLine(d); ok {
		return v, "company_line"
	}
	return constants.UnknownVendor, "default"
}

// trimPartyBoilerplate cuts a captured party name at the first leaked
// field label, keeping only the name itself.
func trimPartyBoilerplate(v string) string {
	if loc := partyBoilerplateRe.FindStringIndex(v); loc != nil && loc[0] > 0 {
		v = v[:loc[0]]
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(v), ":,-"))
}

// vendorFromCuentaDeCobro handles the common Colombian "cuenta de cobro"
// layout: the issuer's name sits within a few lines below the header,
// above the "debe a" clause.
func vendorFromCuentaDeCobro(d *document) (string, bool) {
	headerAt := -1
	for i := 0; i < len(d.lines) && i < 20; i++ {
		if cuentaDeCobroRe.MatchString(d.lines[i]) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return "", false
	}
	seen := 0
	for i := headerAt + 1; i < len(d.lines) && seen < 4; i++ {
		line := d.line(i)
		if line == "" {
			continue
		}
		seen++
		if nitLineRe.MatchString(line) || debeARe.MatchString(line) {
			continue
		}
		return line, true
	}
	return "", false
}

// vendorFromCompanyLine scans the document head for the first line that
// reads like a company name: mostly uppercase, enough letters, and no
// structural keywords.
func vendorFromCompanyLine(d *document) (string, bool) {
	for i := 0; i < len(d.lines) && i < 60; i++ {
		line := d.line(i)
		if companyLike(line) {
			return line, true
		}
	}
	return "", false
}

func companyLike(line string) bool {
	if line == "" {
		return false
	}
	lower := strings.ToLower(line)
	for _, kw := range companyBlacklist {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	var letters, upper int
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters < 3 {
		return false
	}
	return upper*2 > letters
}
