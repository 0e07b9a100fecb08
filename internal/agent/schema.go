package agent

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/facturaia/invoice-engine/constants"
)

// Expected output shapes. A response that does not validate is treated
// as an agent failure by the caller, never as a partial answer.

func classifyOutputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tipo": map[string]any{
				"type": "string",
				"enum": []string{constants.AgentTypePurchase, constants.AgentTypeSale},
			},
			"confianza": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"razon":     map[string]any{"type": "string"},
		},
		"required": []string{"tipo", "confianza"},
	}
}

func triageOutputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"datos_corregidos": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"tipo": map[string]any{
						"type": "string",
						"enum": []string{constants.AgentTypePurchase, constants.AgentTypeSale},
					},
				},
				"required": []string{"tipo"},
			},
		},
		"required": []string{"datos_corregidos"},
	}
}

// validateJSONAgainstSchema validates data against schemaMap.
func validateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
