// Package llm adapts the OpenAI, Anthropic and Gemini chat APIs to advisortypes.ChatClient.
package llm

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"eu5advisor/internal/config"
)

// ParamRules holds the optional generation parameters. Whether a parameter is sent,
// and under which name, depends on the model.
type ParamRules struct {
	Temperature         float64
	MaxCompletionTokens int
}

// DefaultParamRules returns the configured defaults.
func DefaultParamRules() ParamRules {
	return ParamRules{
		Temperature:         config.DefaultTemperature,
		MaxCompletionTokens: config.DefaultMaxCompletionTokens,
	}
}

// sendsTemperature reports whether the model accepts a temperature.
func (r ParamRules) sendsTemperature(model string) bool {
	return config.SupportsTemperature(model)
}

// maxTokens returns the token limit, falling back to the default for unset values.
func (r ParamRules) maxTokens() int64 {
	if r.MaxCompletionTokens <= 0 {
		return config.DefaultMaxCompletionTokens
	}
	return int64(r.MaxCompletionTokens)
}

// schemaMap converts a reflected schema into a plain JSON object.
func schemaMap(schema *jsonschema.Schema) (map[string]any, error) {
	if schema == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}, nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode tool schema: %w", err)
	}
	delete(out, "$schema")
	delete(out, "$id")
	return out, nil
}
