package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturaia/invoice-engine/constants"
	"github.com/facturaia/invoice-engine/internal/agent"
)

type mockAgent struct {
	verdict    agent.Verdict
	verdictErr error
	triageType constants.InvoiceType
	triageErr  error
	triaged    bool
}

func (m *mockAgent) ClassifyDocument(_ context.Context, _ string) (agent.Verdict, error) {
	return m.verdict, m.verdictErr
}

func (m *mockAgent) Triage(_ context.Context, _ agent.TriageRequest) (constants.InvoiceType, error) {
	m.triaged = true
	return m.triageType, m.triageErr
}

func TestClassifyLegacyScoring(t *testing.T) {
	c := NewClassifier(nil, Config{}, nil)

	tests := []struct {
		name string
		text string
		want constants.InvoiceType
	}{
		{"purchase heavy", "orden de compra para proveedor, pedido urgente", constants.InvoiceTypePurchase},
		{"sale heavy", "factura para cliente, venta de servicios, customer copy", constants.InvoiceTypeSale},
		{"tie broken by invoice", "purchase pedido, cliente invoice", constants.InvoiceTypeSale},
		{"empty defaults to bias", "texto sin palabras clave", constants.InvoiceTypePurchase},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(context.Background(), tt.text)
			assert.Equal(t, tt.want, res.InvoiceType)
			assert.Equal(t, constants.MethodLegacy, res.Method)
			assert.Nil(t, res.Confidence)
			assert.NotEmpty(t, res.Rationale)
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier(nil, Config{}, nil)
	text := "factura electronica de venta para cliente con proveedor mencionado"
	first := c.Classify(context.Background(), text)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, c.Classify(context.Background(), text))
	}
}

func TestClassifyStrongSignalOverride(t *testing.T) {
	c := NewClassifier(nil, Config{}, nil)
	// Sale keywords dominate, but the strong signal wins outright.
	text := "CUENTA DE COBRO\ncliente venta invoice sale customer cliente venta"
	res := c.Classify(context.Background(), text)
	assert.Equal(t, constants.InvoiceTypePurchase, res.InvoiceType)
	assert.Equal(t, constants.MethodLegacy, res.Method)
}

func TestClassifyStrongSignalWordBoundary(t *testing.T) {
	c := NewClassifier(nil, Config{}, nil)
	// "declaro" must not trigger the "claro" utility signal.
	res := c.Classify(context.Background(), "declaro que la venta al cliente fue realizada, invoice adjunta")
	assert.Equal(t, constants.InvoiceTypeSale, res.InvoiceType)
}

func TestClassifyAgentHighConfidenceWins(t *testing.T) {
	m := &mockAgent{verdict: agent.Verdict{Type: "venta", Confidence: 0.92, Rationale: "membrete del emisor"}}
	c := NewClassifier(nil, Config{}, m)
	// Legacy would say purchase; agent overrides.
	res := c.Classify(context.Background(), "orden de compra del proveedor")
	assert.Equal(t, constants.InvoiceTypeSale, res.InvoiceType)
	assert.Equal(t, constants.MethodAgent, res.Method)
	require.NotNil(t, res.Confidence)
	assert.InDelta(t, 0.92, *res.Confidence, 1e-9)
	assert.False(t, m.triaged)
}

func TestClassifyLowConfidenceGoesToTriage(t *testing.T) {
	m := &mockAgent{
		verdict:    agent.Verdict{Type: "venta", Confidence: 0.5},
		triageType: constants.InvoiceTypePurchase,
	}
	c := NewClassifier(nil, Config{AgentThreshold: 0.75}, m)
	res := c.Classify(context.Background(), "documento ambiguo")
	assert.True(t, m.triaged, "triage must be consulted below threshold")
	assert.Equal(t, constants.InvoiceTypePurchase, res.InvoiceType)
	assert.Equal(t, constants.MethodTriage, res.Method)
}

func TestClassifyLowConfidenceNeverUsedDirectly(t *testing.T) {
	m := &mockAgent{
		verdict:   agent.Verdict{Type: "venta", Confidence: 0.5},
		triageErr: errors.New("triage unreachable"),
	}
	c := NewClassifier(nil, Config{AgentThreshold: 0.75}, m)
	// Triage down: fall back to LEGACY (purchase here), not the agent's answer.
	res := c.Classify(context.Background(), "orden de compra del proveedor")
	assert.Equal(t, constants.InvoiceTypePurchase, res.InvoiceType)
	assert.Equal(t, constants.MethodLegacy, res.Method)
}

func TestClassifyAgentErrorFallsBackToLegacy(t *testing.T) {
	m := &mockAgent{verdictErr: errors.New("connection refused")}
	c := NewClassifier(nil, Config{}, m)
	res := c.Classify(context.Background(), "venta al cliente")
	assert.Equal(t, constants.InvoiceTypeSale, res.InvoiceType)
	assert.Equal(t, constants.MethodLegacy, res.Method)
	assert.False(t, m.triaged)
}

func TestClassifyAgentInvalidTypeFallsBackToLegacy(t *testing.T) {
	m := &mockAgent{verdict: agent.Verdict{Type: "desconocido", Confidence: 0.99}}
	c := NewClassifier(nil, Config{}, m)
	res := c.Classify(context.Background(), "venta al cliente")
	assert.Equal(t, constants.InvoiceTypeSale, res.InvoiceType)
	assert.Equal(t, constants.MethodLegacy, res.Method)
}
