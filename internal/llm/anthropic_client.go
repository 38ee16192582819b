package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tidwall/gjson"

	"eu5advisor/internal/config"
	"eu5advisor/internal/logger"
	"eu5advisor/pkg/advisortypes"
)

// AnthropicClient talks to the Anthropic messages API.
type AnthropicClient struct {
	apiKey string
	rules  ParamRules
	client *anthropic.Client
}

// NewAnthropicClient creates an Anthropic client with lazy initialization.
func NewAnthropicClient(apiKey string, rules ParamRules) *AnthropicClient {
	return &AnthropicClient{
		apiKey: apiKey,
		rules:  rules,
	}
}

// ProviderName returns the provider name for this client.
func (c *AnthropicClient) ProviderName() string {
	return config.ProviderAnthropic
}

// IsConfigured returns true if the client has an API key.
func (c *AnthropicClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *AnthropicClient) initializeClientIfNeeded() error {
	if c.client != nil {
		return nil
	}

	if c.apiKey == "" {
		return fmt.Errorf("anthropic API key not configured")
	}

	client := anthropic.NewClient(option.WithAPIKey(c.apiKey))
	c.client = &client

	logger.Debug("Anthropic client initialized", "provider", "anthropic")
	return nil
}

// Complete sends one messages request and returns the assistant message.
func (c *AnthropicClient) Complete(ctx context.Context, req advisortypes.ChatRequest) (advisortypes.Message, error) {
	if err := c.initializeClientIfNeeded(); err != nil {
		return advisortypes.Message{}, fmt.Errorf("failed to initialize Anthropic client: %w", err)
	}

	params, err := c.buildParams(req)
	if err != nil {
		return advisortypes.Message{}, err
	}

	logger.Debug("Sending Anthropic request", "model", req.Model, "message_count", len(params.Messages))
	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		logger.Error("Anthropic request failed", "error", err)
		return advisortypes.Message{}, fmt.Errorf("anthropic request failed: %w", err)
	}

	var text strings.Builder
	var calls []advisortypes.ToolCall
	for _, block := range message.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(block.Text)
		case anthropic.ToolUseBlock:
			calls = append(calls, advisortypes.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}

	logger.Debug("Anthropic response received", "content_length", text.Len(), "tool_calls", len(calls))
	return advisortypes.AssistantMessage(text.String(), calls...), nil
}

func (c *AnthropicClient) buildParams(req advisortypes.ChatRequest) (anthropic.MessageNewParams, error) {
	messages, system := convertMessagesToAnthropic(req.Messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: c.rules.maxTokens(),
		Messages:  messages,
	}

	for _, prompt := range system {
		params.System = append(params.System, anthropic.TextBlockParam{Text: prompt})
	}

	if len(req.Tools) > 0 {
		tools := make([]anthropic.ToolUnionParam, 0, len(req.Tools))
		for _, def := range req.Tools {
			schema, err := schemaMap(def.Parameters)
			if err != nil {
				return params, err
			}
			inputSchema := anthropic.ToolInputSchemaParam{Properties: schema["properties"]}
			if required, ok := schema["required"].([]any); ok {
				for _, name := range required {
					inputSchema.Required = append(inputSchema.Required, fmt.Sprint(name))
				}
			}
			tools = append(tools, anthropic.ToolUnionParam{
				OfTool: &anthropic.ToolParam{
					Name:        def.Name,
					Description: anthropic.String(def.Description),
					InputSchema: inputSchema,
				},
			})
		}
		params.Tools = tools
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}

	if c.rules.sendsTemperature(req.Model) {
		params.Temperature = anthropic.Float(c.rules.Temperature)
	}

	return params, nil
}

// convertMessagesToAnthropic splits system prompts out of the transcript and converts
// the rest. Tool results travel as tool_result blocks in a user turn, and consecutive
// turns of the same role are merged.
func convertMessagesToAnthropic(messages []advisortypes.Message) ([]anthropic.MessageParam, []string) {
	var system []string
	out := make([]anthropic.MessageParam, 0, len(messages))

	appendBlocks := func(role anthropic.MessageParamRole, blocks ...anthropic.ContentBlockParamUnion) {
		if len(blocks) == 0 {
			return
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			return
		}
		out = append(out, anthropic.MessageParam{Role: role, Content: blocks})
	}

	for _, msg := range messages {
		switch msg.Role {
		case advisortypes.RoleSystem:
			system = append(system, msg.Content)
		case advisortypes.RoleUser:
			appendBlocks(anthropic.MessageParamRoleUser, anthropic.NewTextBlock(msg.Content))
		case advisortypes.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfText: &anthropic.TextBlockParam{Text: msg.Content},
				})
			}
			for _, call := range msg.ToolCalls {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    call.ID,
						Name:  call.Name,
						Input: toolInput(call.Arguments),
					},
				})
			}
			appendBlocks(anthropic.MessageParamRoleAssistant, blocks...)
		case advisortypes.RoleTool:
			appendBlocks(anthropic.MessageParamRoleUser, anthropic.ContentBlockParamUnion{
				OfToolResult: &anthropic.ToolResultBlockParam{
					ToolUseID: msg.ToolCallID,
					Content: []anthropic.ToolResultBlockParamContentUnion{
						{OfText: &anthropic.TextBlockParam{Text: msg.Content}},
					},
				},
			})
		}
	}

	return out, system
}

// toolInput echoes the model's arguments back; tool_use input must be a JSON object.
func toolInput(arguments string) any {
	if parsed := gjson.Parse(arguments); gjson.Valid(arguments) && parsed.IsObject() {
		return json.RawMessage(arguments)
	}
	return map[string]any{}
}
