package extract

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/facturaia/invoice-engine/constants"
	"github.com/facturaia/invoice-engine/internal/normalize"
)

var (
	sumaDeRe       = regexp.MustCompile(`(?i)la\s+suma\s+de`)
	numericTokenRe = regexp.MustCompile(`\$?\s*\d[\d.,]*`)

	// Ordered labelled total patterns, strongest label first. The \b on
	// the bare TOTAL pattern keeps it from matching inside SUBTOTAL.
	totalLabelRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total\s+factura\s*:?\s*\$?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)valor\s+a\s+pagar\s*:?\s*\$?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)\btotal\s*:?\s*\$?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)\bamount\s*:?\s*\$?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)importe\s+total\s*:?\s*\$?\s*([\d.,]+)`),
	}

	totalKeywordLineRe = regexp.MustCompile(`(?i)total|valor\s+a\s+pagar|importe|amount`)

	subtotalLabelRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)sub\s*-?\s*total\s*:?\s*\$?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)base\s+imponible\s*:?\s*\$?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)valor\s+antes\s+de\s+iva\s*:?\s*\$?\s*([\d.,]+)`),
	}

	taxLabelRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\biva\b\s*\(?\s*\d{0,2}\s*%?\s*\)?\s*:?\s*\$?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)\bimpuestos?\b\s*:?\s*\$?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)\btax\b\s*:?\s*\$?\s*([\d.,]+)`),
	}
)

// extractTotals resolves total, subtotal and tax. Total is tried first
// through its own prioritized chain; a missing subtotal with a known
// total is derived as total - tax rather than left unset. Every value is
// non-negative; misses resolve to zero.
func extractTotals(d *document) (total, subtotal, tax decimal.Decimal) {
	total = extractTotal(d)
	subtotal = findLabelledAmount(d, subtotalLabelRes)
	tax = findLabelledAmount(d, taxLabelRes)

	if subtotal.IsZero() && total.IsPositive() {
		subtotal = total.Sub(tax)
		if subtotal.IsNegative() {
			subtotal = decimal.Zero
		}
	}
	return total, subtotal, tax
}

func extractTotal(d *document) decimal.Decimal {
	// Written-amount marker takes precedence: "LA SUMA DE" announces the
	// authoritative figure within the next couple of lines.
	if v, ok := totalFromSumaDe(d); ok {
		return v
	}
	if v := findLabelledAmount(d, totalLabelRes); v.IsPositive() {
		return v
	}
	// Line-level fallback: any total-like line, first plausible token.
	for _, line := range d.lines {
		if !totalKeywordLineRe.MatchString(line) {
			continue
		}
		if v, ok := firstPlausibleAmount(line); ok {
			return v
		}
	}
	return decimal.Zero
}

func totalFromSumaDe(d *document) (decimal.Decimal, bool) {
	for i, line := range d.lines {
		if !sumaDeRe.MatchString(line) {
			continue
		}
		// The amount follows the marker, on the same line or within the
		// next three.
		for j := i; j <= i+3; j++ {
			if v, ok := firstPlausibleAmount(d.line(j)); ok {
				return v, true
			}
		}
		return decimal.Zero, false
	}
	return decimal.Zero, false
}

// firstPlausibleAmount returns the first numeric token on the line whose
// normalized value clears the plausibility floor.
func firstPlausibleAmount(line string) (decimal.Decimal, bool) {
	for _, tok := range numericTokenRe.FindAllString(line, -1) {
		v := normalize.Amount(tok)
		if v.GreaterThan(decimal.NewFromInt(constants.MinPlausibleTotal)) {
			return v, true
		}
	}
	return decimal.Zero, false
}

func findLabelledAmount(d *document, res []*regexp.Regexp) decimal.Decimal {
	for _, re := range res {
		if m := re.FindStringSubmatch(d.text); m != nil {
			if v := normalize.Amount(m[1]); v.IsPositive() {
				return v
			}
		}
	}
	return decimal.Zero
}
