package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/facturaia/invoice-engine/constants"
	"github.com/facturaia/invoice-engine/internal/entity"
	"github.com/facturaia/invoice-engine/internal/normalize"
)

var (
	itemLineRe  = regexp.MustCompile(`^\s*([A-Za-z0-9][\w-]{1,19})\s+-\s+(.+)$`)
	quantityRe  = regexp.MustCompile(`(?i)\b(\d+)\s*unidad(?:es)?\b`)
	unitPriceRe = regexp.MustCompile(`(?i)precio\s+unit\.?\s*:?\s*\$?\s*([\d.,]+)`)
)

// extractItems scans for repeating "<code> - <description>" lines and,
// for each, looks at the line itself plus the next two for a quantity
// ("<N> Unidad") and a unit price ("Precio unit. $..."). An empty scan
// yields a single synthetic placeholder: downstream postings require at
// least one item.
func extractItems(d *document) []entity.InvoiceItem {
	var items []entity.InvoiceItem
	for i, raw := range d.lines {
		m := itemLineRe.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil || !descriptionLike(m[2]) {
			continue
		}
		item := entity.InvoiceItem{
			Code:        m[1],
			Description: strings.TrimSpace(m[2]),
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.Zero,
		}
		for j := i; j <= i+2; j++ {
			line := d.line(j)
			if qm := quantityRe.FindStringSubmatch(line); qm != nil {
				if n, err := strconv.Atoi(qm[1]); err == nil && n > 0 {
					item.Quantity = decimal.NewFromInt(int64(n))
				}
			}
			if pm := unitPriceRe.FindStringSubmatch(line); pm != nil {
				item.UnitPrice = normalize.Amount(pm[1])
			}
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		items = []entity.InvoiceItem{placeholderItem()}
	}
	return items
}

// descriptionLike filters out numeric runs (dates, phone numbers) that
// happen to match the code-dash-description shape.
func descriptionLike(s string) bool {
	var letters int
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 3
}

func placeholderItem() entity.InvoiceItem {
	return entity.InvoiceItem{
		Code:        constants.PlaceholderItemCode,
		Description: constants.PlaceholderItemDescription,
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.Zero,
	}
}
