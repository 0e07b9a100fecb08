package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Ordered date chain: labelled Spanish, labelled English, bare slash
// form, bare dash form, then the long emission label. First match wins,
// so a labelled "Fecha:" beats a bare date appearing earlier in the text.
var dateChain = []textStrategy{
	dateStrategy("fecha_label", regexp.MustCompile(`(?i)fecha\s*:\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)),
	dateStrategy("date_label", regexp.MustCompile(`(?i)\bdate\s*:\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)),
	dateStrategy("bare_slash", regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`)),
	dateStrategy("bare_dash", regexp.MustCompile(`\b(\d{1,2}-\d{1,2}-\d{4})\b`)),
	dateStrategy("emision_label", regexp.MustCompile(`(?i)fecha\s+de\s+emisi[oó]n\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)),
}

func dateStrategy(name string, re *regexp.Regexp) textStrategy {
	return textStrategy{name: name, fn: func(d *document) (string, bool) {
		m := re.FindStringSubmatch(d.text)
		if m == nil {
			return "", false
		}
		return normalizeDate(m[1])
	}}
}

// extractDate resolves the document date, defaulting to the current
// processing date: a missing date never blocks a posting.
func (e *Extractor) extractDate(d *document) (string, string) {
	if v, src, ok := runChain(d, dateChain); ok {
		return v, src
	}
	return e.now().Format("2006-01-02"), "default_today"
}

// normalizeDate converts DD/MM/YYYY, DD-MM-YYYY and DD/MM/YY into
// ISO-8601. Two-digit years are assumed 20xx. Structurally impossible
// dates are rejected so the chain can keep falling through.
func normalizeDate(raw string) (string, bool) {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return "", false
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}
