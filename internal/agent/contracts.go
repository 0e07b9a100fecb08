package agent

import (
	"context"

	"github.com/facturaia/invoice-engine/constants"
)

// Verdict is the classification agent's answer for one document.
type Verdict struct {
	Type       string  `json:"tipo"`      // "compra" | "venta"
	Confidence float64 `json:"confianza"` // 0..1
	Rationale  string  `json:"razon"`
}

// TriageRequest is the payload for the escalation call: the original
// text plus everything both tiers already concluded, so the triage agent
// can arbitrate.
type TriageRequest struct {
	Text          string                `json:"texto"`
	LegacyType    constants.InvoiceType `json:"resultado_legacy"`
	AgentType     string                `json:"resultado_agente"`
	AgentReason   string                `json:"razon_agente"`
	Confidence    float64               `json:"confianza_agente"`
	PurchaseScore int                   `json:"puntaje_compra"`
	SaleScore     int                   `json:"puntaje_venta"`
}

// Classifier is the interface the classification tier depends on. Both
// calls are blocking with a fixed client timeout; any transport or shape
// error is returned as-is and the caller degrades to its baseline.
type Classifier interface {
	ClassifyDocument(ctx context.Context, text string) (Verdict, error)
	Triage(ctx context.Context, req TriageRequest) (constants.InvoiceType, error)
}
