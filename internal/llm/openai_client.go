package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"eu5advisor/internal/config"
	"eu5advisor/internal/logger"
	"eu5advisor/pkg/advisortypes"
)

// OpenAIClient talks to the OpenAI chat completions API or any compatible endpoint.
// The SDK client is created on the first request.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	rules      ParamRules
	httpClient *http.Client
	client     *openai.Client
}

// NewOpenAIClient creates an OpenAI client with lazy initialization. An empty baseURL
// uses the public API.
func NewOpenAIClient(apiKey, baseURL string, rules ParamRules) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		rules:   rules,
	}
}

// SetHTTPClient replaces the HTTP client used by the SDK.
func (c *OpenAIClient) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
	// Force re-initialization with the new transport
	c.client = nil
}

// ProviderName returns the provider name for this client.
func (c *OpenAIClient) ProviderName() string {
	return config.ProviderOpenAI
}

// IsConfigured returns true if the client has an API key.
func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *OpenAIClient) initializeClientIfNeeded() error {
	if c.client != nil {
		return nil
	}

	if c.apiKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}

	options := []option.RequestOption{option.WithAPIKey(c.apiKey)}
	if c.baseURL != "" {
		options = append(options, option.WithBaseURL(c.baseURL))
	}
	if c.httpClient != nil {
		options = append(options, option.WithHTTPClient(c.httpClient))
	}

	client := openai.NewClient(options...)
	c.client = &client

	logger.Debug("OpenAI client initialized", "provider", "openai", "base_url", c.baseURL)
	return nil
}

// Complete sends one chat completion request and returns the assistant message.
func (c *OpenAIClient) Complete(ctx context.Context, req advisortypes.ChatRequest) (advisortypes.Message, error) {
	if err := c.initializeClientIfNeeded(); err != nil {
		return advisortypes.Message{}, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}

	params, err := c.buildParams(req)
	if err != nil {
		return advisortypes.Message{}, err
	}

	logger.Debug("Sending OpenAI request", "model", req.Model, "message_count", len(params.Messages), "tools", len(params.Tools))
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("OpenAI request failed", "error", err)
		return advisortypes.Message{}, fmt.Errorf("openai request failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return advisortypes.Message{}, fmt.Errorf("no response choices returned")
	}

	reply := completion.Choices[0].Message
	calls := make([]advisortypes.ToolCall, 0, len(reply.ToolCalls))
	for _, tc := range reply.ToolCalls {
		calls = append(calls, advisortypes.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	logger.Debug("OpenAI response received", "content_length", len(reply.Content), "tool_calls", len(calls))
	return advisortypes.AssistantMessage(reply.Content, calls...), nil
}

// buildParams converts a chat request, applying the model's parameter rules:
// gpt-5 models get max_completion_tokens and no temperature, others get only a
// temperature.
func (c *OpenAIClient) buildParams(req advisortypes.ChatRequest) (openai.ChatCompletionNewParams, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: convertMessagesToOpenAI(req.Messages),
	}

	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, 0, len(req.Tools))
		for _, def := range req.Tools {
			schema, err := schemaMap(def.Parameters)
			if err != nil {
				return params, err
			}
			tools = append(tools, openai.ChatCompletionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        def.Name,
					Description: openai.String(def.Description),
					Parameters:  openai.FunctionParameters(schema),
				},
			})
		}
		params.Tools = tools
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String(string(toolChoice(req.ToolChoice))),
		}
	}

	// Other models are sent no token limit.
	if config.UsesMaxCompletionTokens(req.Model) {
		params.MaxCompletionTokens = openai.Int(c.rules.maxTokens())
	}
	if c.rules.sendsTemperature(req.Model) {
		params.Temperature = openai.Float(c.rules.Temperature)
	}

	return params, nil
}

func convertMessagesToOpenAI(messages []advisortypes.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case advisortypes.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case advisortypes.RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case advisortypes.RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		case advisortypes.RoleAssistant:
			if !msg.HasToolCalls() {
				out = append(out, openai.AssistantMessage(msg.Content))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if msg.Content != "" {
				assistant.Content.OfString = openai.String(msg.Content)
			}
			for _, call := range msg.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: call.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		default:
			// Skip unknown roles
			continue
		}
	}

	return out
}

func toolChoice(choice advisortypes.ToolChoice) advisortypes.ToolChoice {
	if choice == "" {
		return advisortypes.ToolChoiceAuto
	}
	return choice
}
