// Package classify decides whether a document records a purchase or a
// sale. The keyword-scoring baseline always runs; an external agent, when
// configured, can override it above a confidence threshold, with a triage
// escalation for low-confidence answers. Agent failures of any kind
// degrade to the baseline — the agent path is an enhancement, never a
// hard dependency.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/facturaia/invoice-engine/constants"
	"github.com/facturaia/invoice-engine/internal/agent"
	"github.com/facturaia/invoice-engine/internal/entity"
)

// Config holds thresholds and behavior flags for classification.
type Config struct {
	// AgentThreshold is the minimum agent confidence accepted before
	// escalating to triage. Default constants.DefaultAgentConfidence.
	AgentThreshold float64
	// TieBreak resolves an exact keyword-score tie that the secondary
	// patterns also cannot break. Default PURCHASE.
	TieBreak constants.InvoiceType
}

// Classifier is stateless per document and safe for concurrent use.
type Classifier struct {
	logger *slog.Logger
	cfg    Config
	agent  agent.Classifier // nil means LEGACY only
}

func NewClassifier(logger *slog.Logger, cfg Config, ag agent.Classifier) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AgentThreshold <= 0 {
		cfg.AgentThreshold = constants.DefaultAgentConfidence
	}
	if cfg.TieBreak == "" {
		cfg.TieBreak = constants.InvoiceTypePurchase
	}
	return &Classifier{logger: logger, cfg: cfg, agent: ag}
}

// Classify always returns a resolved result; it never errors and never
// surfaces "unknown".
func (c *Classifier) Classify(ctx context.Context, text string) entity.ClassificationResult {
	legacy := c.scoreLegacy(text)

	if c.agent == nil {
		return legacy.result()
	}

	verdict, err := c.agent.ClassifyDocument(ctx, text)
	if err != nil {
		c.logger.Warn("classify.agent.unavailable", "error", err)
		return legacy.result()
	}
	agentType, ok := constants.FromAgentType(verdict.Type)
	if !ok {
		c.logger.Warn("classify.agent.invalid_type", "type", verdict.Type)
		return legacy.result()
	}

	if verdict.Confidence >= c.cfg.AgentThreshold {
		conf := verdict.Confidence
		return entity.ClassificationResult{
			InvoiceType: agentType,
			Method:      constants.MethodAgent,
			Confidence:  &conf,
			Rationale:   verdict.Rationale,
		}
	}

	c.logger.Info("classify.agent.low_confidence",
		"confidence", verdict.Confidence, "threshold", c.cfg.AgentThreshold)

	corrected, err := c.agent.Triage(ctx, agent.TriageRequest{
		Text:          text,
		LegacyType:    legacy.invoiceType,
		AgentType:     verdict.Type,
		AgentReason:   verdict.Rationale,
		Confidence:    verdict.Confidence,
		PurchaseScore: legacy.purchaseScore,
		SaleScore:     legacy.saleScore,
	})
	if err != nil {
		c.logger.Warn("classify.triage.unavailable", "error", err)
		return legacy.result()
	}
	conf := verdict.Confidence
	return entity.ClassificationResult{
		InvoiceType: corrected,
		Method:      constants.MethodTriage,
		Confidence:  &conf,
		Rationale:   fmt.Sprintf("triage corrected low-confidence agent answer (%s)", verdict.Type),
	}
}

// legacyScore carries the baseline outcome plus the raw scores, which
// the triage payload exposes to the second agent.
type legacyScore struct {
	invoiceType   constants.InvoiceType
	rationale     string
	purchaseScore int
	saleScore     int
}

func (s legacyScore) result() entity.ClassificationResult {
	return entity.ClassificationResult{
		InvoiceType: s.invoiceType,
		Method:      constants.MethodLegacy,
		Rationale:   s.rationale,
	}
}

func (c *Classifier) scoreLegacy(text string) legacyScore {
	lower := strings.ToLower(text)

	for _, re := range strongPurchaseRes {
		if m := re.FindString(lower); m != "" {
			return legacyScore{
				invoiceType: constants.InvoiceTypePurchase,
				rationale:   fmt.Sprintf("strong purchase signal %q", m),
			}
		}
	}

	p := countKeywords(lower, purchaseKeywords)
	s := countKeywords(lower, saleKeywords)
	score := legacyScore{purchaseScore: p, saleScore: s}

	switch {
	case p > s:
		score.invoiceType = constants.InvoiceTypePurchase
		score.rationale = fmt.Sprintf("purchase keywords %d > sale keywords %d", p, s)
	case s > p:
		score.invoiceType = constants.InvoiceTypeSale
		score.rationale = fmt.Sprintf("sale keywords %d > purchase keywords %d", s, p)
	default:
		score.invoiceType, score.rationale = c.breakTie(lower, p)
	}
	return score
}

func (c *Classifier) breakTie(lower string, score int) (constants.InvoiceType, string) {
	if m := firstMatch(lower, tieSaleRes); m != "" {
		return constants.InvoiceTypeSale, fmt.Sprintf("tie at %d broken by %q", score, m)
	}
	if m := firstMatch(lower, tiePurchaseRes); m != "" {
		return constants.InvoiceTypePurchase, fmt.Sprintf("tie at %d broken by %q", score, m)
	}
	return c.cfg.TieBreak, fmt.Sprintf("tie at %d, default bias", score)
}

func firstMatch(lower string, res []*regexp.Regexp) string {
	for _, re := range res {
		if m := re.FindString(lower); m != "" {
			return m
		}
	}
	return ""
}

func countKeywords(lower string, keywords []string) int {
	var n int
	for _, kw := range keywords {
		n += strings.Count(lower, kw)
	}
	return n
}
