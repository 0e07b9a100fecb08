// Package agent is the HTTP client for the external classification
// service. Requests carry {mode, name, input, chat}; well-formed
// responses nest the agent's answer under response.output.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/facturaia/invoice-engine/constants"
)

// Config for the agent client.
type Config struct {
	BaseURL       string        // e.g. http://localhost:8700
	ClassifyAgent string        // agent name for the first-pass call
	TriageAgent   string        // agent name for the escalation call
	Timeout       time.Duration // whole-call timeout, default 45s
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient returns an HTTP-backed Classifier. Retries, if any, belong
// to the transport; this client makes exactly one attempt per call.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.ClassifyAgent == "" {
		cfg.ClassifyAgent = "clasificador-facturas"
	}
	if cfg.TriageAgent == "" {
		cfg.TriageAgent = "triage-facturas"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type executeRequest struct {
	Mode  string `json:"mode"`
	Name  string `json:"name"`
	Input any    `json:"input"`
	Chat  bool   `json:"chat"`
}

type executeResponse struct {
	Response struct {
		Output json.RawMessage `json:"output"`
	} `json:"response"`
}

func (c *Client) ClassifyDocument(ctx context.Context, text string) (Verdict, error) {
	out, err := c.execute(ctx, c.cfg.ClassifyAgent, text)
	if err != nil {
		return Verdict{}, err
	}
	if err := validateJSONAgainstSchema(classifyOutputSchema(), out); err != nil {
		return Verdict{}, fmt.Errorf("classify output: %w", err)
	}
	var v Verdict
	if err := json.Unmarshal(out, &v); err != nil {
		return Verdict{}, fmt.Errorf("decode classify output: %w", err)
	}
	return v, nil
}

func (c *Client) Triage(ctx context.Context, req TriageRequest) (constants.InvoiceType, error) {
	out, err := c.execute(ctx, c.cfg.TriageAgent, req)
	if err != nil {
		return "", err
	}
	if err := validateJSONAgainstSchema(triageOutputSchema(), out); err != nil {
		return "", fmt.Errorf("triage output: %w", err)
	}
	var payload struct {
		Corrected struct {
			Type string `json:"tipo"`
		} `json:"datos_corregidos"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return "", fmt.Errorf("decode triage output: %w", err)
	}
	t, ok := constants.FromAgentType(payload.Corrected.Type)
	if !ok {
		return "", fmt.Errorf("triage returned invalid type %q", payload.Corrected.Type)
	}
	return t, nil
}

// execute posts one agent call and returns the raw response.output.
func (c *Client) execute(ctx context.Context, name string, input any) ([]byte, error) {
	reqID := uuid.New().String()
	start := time.Now()

	body, err := json.Marshal(executeRequest{Mode: "agent", Name: name, Input: input, Chat: false})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := c.cfg.BaseURL + "/execute"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("agent.http.request",
		"req_id", reqID, "agent", name, "content_length", len(body))

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("agent.http.send_error",
			"req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("agent.http.body_close_error", "req_id", reqID, "error", err)
		}
	}()

	raw, _ := io.ReadAll(resp.Body)

	c.logger.Info("agent.http.response",
		"req_id", reqID, "status", resp.StatusCode, "bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("agent status %d", resp.StatusCode)
	}

	var env executeResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if len(env.Response.Output) == 0 {
		return nil, fmt.Errorf("envelope missing response.output")
	}
	return env.Response.Output, nil
}
