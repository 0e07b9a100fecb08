// Package normalize turns currency-like tokens into exact decimal values.
//
// Latin-American invoices mix separator conventions: "251.200" usually
// means two hundred fifty-one thousand two hundred, while "251,20" is a
// decimal. A single token cannot resolve the ambiguity, so the rules here
// follow the conventions actually seen on invoices: the last separator
// wins as decimal point, unless the trailing group looks like a thousands
// group.
package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount parses raw into a decimal value. It is pure and best-effort:
// same input always yields the same output, and unparseable input yields
// zero rather than an error. Callers validate totals downstream.
func Amount(raw string) decimal.Decimal {
	cleaned := stripNonNumeric(raw)

	dots := strings.Count(cleaned, ".")
	commas := strings.Count(cleaned, ",")

	switch {
	case dots > 0 && commas > 0:
		// Whichever separator appears last is the decimal point.
		if strings.LastIndex(cleaned, ".") > strings.LastIndex(cleaned, ",") {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	case dots > 0:
		if !isDecimalTail(cleaned, ".", dots) {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	case commas > 0:
		if isDecimalTail(cleaned, ",", commas) {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	if d, err := decimal.NewFromString(cleaned); err == nil {
		return d
	}
	// Last resort: maybe the raw string was already parseable as-is.
	if d, err := decimal.NewFromString(strings.TrimSpace(raw)); err == nil {
		return d
	}
	return decimal.Zero
}

// isDecimalTail reports whether a lone separator is followed by a 1-2
// digit group, i.e. reads as a decimal point rather than a thousands
// separator.
func isDecimalTail(s, sep string, count int) bool {
	if count != 1 {
		return false
	}
	tail := s[strings.Index(s, sep)+1:]
	return len(tail) >= 1 && len(tail) <= 2
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
