package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"google.golang.org/genai"

	"eu5advisor/internal/config"
	"eu5advisor/internal/logger"
	"eu5advisor/pkg/advisortypes"
)

// GeminiClient talks to the Google Gemini API.
type GeminiClient struct {
	apiKey     string
	rules      ParamRules
	httpClient *http.Client
	client     *genai.Client
}

// NewGeminiClient creates a Gemini client with lazy initialization.
func NewGeminiClient(apiKey string, rules ParamRules) *GeminiClient {
	return &GeminiClient{
		apiKey: apiKey,
		rules:  rules,
	}
}

// SetHTTPClient replaces the HTTP client used by the SDK.
func (c *GeminiClient) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
	c.client = nil
}

// ProviderName returns the provider name for this client.
func (c *GeminiClient) ProviderName() string {
	return config.ProviderGemini
}

// IsConfigured returns true if the client has an API key.
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *GeminiClient) initializeClientIfNeeded(ctx context.Context) error {
	if c.client != nil {
		return nil
	}

	if c.apiKey == "" {
		return fmt.Errorf("google API key not configured")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.httpClient != nil {
		clientConfig.HTTPClient = c.httpClient
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client

	logger.Debug("Gemini client initialized", "provider", "gemini")
	return nil
}

// Complete sends one generate-content request and returns the assistant message.
func (c *GeminiClient) Complete(ctx context.Context, req advisortypes.ChatRequest) (advisortypes.Message, error) {
	if err := c.initializeClientIfNeeded(ctx); err != nil {
		return advisortypes.Message{}, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	contents, system := convertMessagesToGemini(req.Messages)
	generation := c.buildGenerationConfig(req, system)

	logger.Debug("Sending Gemini request", "model", req.Model, "content_count", len(contents))
	result, err := c.client.Models.GenerateContent(ctx, req.Model, contents, generation)
	if err != nil {
		logger.Error("Gemini request failed", "error", err)
		return advisortypes.Message{}, fmt.Errorf("gemini request failed: %w", err)
	}

	reply := processGeminiResponse(result)
	logger.Debug("Gemini response received", "content_length", len(reply.Content), "tool_calls", len(reply.ToolCalls))
	return reply, nil
}

func (c *GeminiClient) buildGenerationConfig(req advisortypes.ChatRequest, system []string) *genai.GenerateContentConfig {
	generation := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(c.rules.maxTokens()),
	}

	if len(system) > 0 {
		generation.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	if c.rules.sendsTemperature(req.Model) {
		temperature := float32(c.rules.Temperature)
		generation.Temperature = &temperature
	}

	if len(req.Tools) > 0 {
		declarations := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, def := range req.Tools {
			declarations = append(declarations, &genai.FunctionDeclaration{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  convertSchema(def.Parameters),
			})
		}
		generation.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}
		generation.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAuto},
		}
	}

	return generation
}

// convertMessagesToGemini returns the conversation contents and the system prompts.
// Tool results become function responses in a user turn.
func convertMessagesToGemini(messages []advisortypes.Message) ([]*genai.Content, []string) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))

	appendParts := func(role string, parts ...*genai.Part) {
		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts = append(contents[n-1].Parts, parts...)
			return
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}

	for _, msg := range messages {
		switch msg.Role {
		case advisortypes.RoleSystem:
			system = append(system, msg.Content)
		case advisortypes.RoleUser:
			appendParts(string(genai.RoleUser), genai.NewPartFromText(msg.Content))
		case advisortypes.RoleAssistant:
			var parts []*genai.Part
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				part := genai.NewPartFromFunctionCall(call.Name, decodeArgs(call.Arguments))
				part.FunctionCall.ID = call.ID
				parts = append(parts, part)
			}
			if len(parts) > 0 {
				appendParts(string(genai.RoleModel), parts...)
			}
		case advisortypes.RoleTool:
			part := genai.NewPartFromFunctionResponse(msg.Name, map[string]any{"output": msg.Content})
			part.FunctionResponse.ID = msg.ToolCallID
			appendParts(string(genai.RoleUser), part)
		}
	}

	return contents, system
}

func processGeminiResponse(result *genai.GenerateContentResponse) advisortypes.Message {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return advisortypes.AssistantMessage("")
	}

	var text strings.Builder
	var calls []advisortypes.ToolCall
	for _, part := range result.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil || part.FunctionCall.Args == nil {
				args = []byte("{}")
			}
			id := part.FunctionCall.ID
			if id == "" {
				id = "call_" + uuid.New().String()
			}
			calls = append(calls, advisortypes.ToolCall{ID: id, Name: part.FunctionCall.Name, Arguments: string(args)})
			continue
		}
		text.WriteString(part.Text)
	}

	return advisortypes.AssistantMessage(text.String(), calls...)
}

func decodeArgs(arguments string) map[string]any {
	args := map[string]any{}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return map[string]any{}
	}
	return args
}

// convertSchema maps the subset of JSON schema used by tool arguments onto genai.Schema.
func convertSchema(schema *jsonschema.Schema) *genai.Schema {
	if schema == nil {
		return &genai.Schema{Type: genai.TypeObject}
	}

	out := &genai.Schema{
		Type:        schemaType(schema.Type),
		Description: schema.Description,
		Required:    schema.Required,
	}
	for _, value := range schema.Enum {
		out.Enum = append(out.Enum, fmt.Sprint(value))
	}
	if v, err := schema.Minimum.Float64(); err == nil {
		out.Minimum = &v
	}
	if v, err := schema.Maximum.Float64(); err == nil {
		out.Maximum = &v
	}
	if schema.Items != nil {
		out.Items = convertSchema(schema.Items)
	}
	if schema.Properties != nil && schema.Properties.Len() > 0 {
		out.Properties = make(map[string]*genai.Schema, schema.Properties.Len())
		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			out.Properties[pair.Key] = convertSchema(pair.Value)
			out.PropertyOrdering = append(out.PropertyOrdering, pair.Key)
		}
	}
	return out
}

func schemaType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeObject
	}
}
