package constants

// InvoiceType says whether a document records a purchase or a sale.
type InvoiceType string

// Stable values (store these exact strings in DB).
const (
	InvoiceTypePurchase InvoiceType = "PURCHASE"
	InvoiceTypeSale     InvoiceType = "SALE"
)

// ClassificationMethod records which tier produced the final invoice type.
type ClassificationMethod string

const (
	MethodLegacy ClassificationMethod = "LEGACY" // keyword scoring
	MethodAgent  ClassificationMethod = "AGENT"  // external agent, confidence above threshold
	MethodTriage ClassificationMethod = "TRIAGE" // escalation after a low-confidence agent answer
)

// Wire values used by the classification agent (Spanish payloads).
const (
	AgentTypePurchase = "compra"
	AgentTypeSale     = "venta"
)

// FromAgentType maps an agent wire value to an InvoiceType.
func FromAgentType(s string) (InvoiceType, bool) {
	switch s {
	case AgentTypePurchase:
		return InvoiceTypePurchase, true
	case AgentTypeSale:
		return InvoiceTypeSale, true
	}
	return "", false
}
