package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"eu5advisor/internal/config"
	"eu5advisor/internal/tools"
	"eu5advisor/pkg/advisortypes"
)

func TestAnthropicConvertMessages(t *testing.T) {
	req := sampleRequest("claude-sonnet-4-20250514")
	req.Messages = append(req.Messages,
		advisortypes.ToolMessage("call_2", tools.WebSearch, "hits"),
		advisortypes.SystemMessage("directive"),
	)

	messages, system := convertMessagesToAnthropic(req.Messages)
	assert.Equal(t, []string{"persona", "directive"}, system)

	require.Len(t, messages, 3)
	assert.Equal(t, "user", string(messages[0].Role))
	assert.Equal(t, "assistant", string(messages[1].Role))
	require.Len(t, messages[1].Content, 1)
	require.NotNil(t, messages[1].Content[0].OfToolUse)
	assert.Equal(t, "call_1", messages[1].Content[0].OfToolUse.ID)

	assert.Equal(t, "user", string(messages[2].Role))
	require.Len(t, messages[2].Content, 2, "tool results share one user turn")
	assert.Equal(t, "call_1", messages[2].Content[0].OfToolResult.ToolUseID)
	assert.Equal(t, "call_2", messages[2].Content[1].OfToolResult.ToolUseID)
}

func TestAnthropicBuildParams(t *testing.T) {
	client := NewAnthropicClient("sk-ant", ParamRules{Temperature: 0.5, MaxCompletionTokens: 1000})
	params, err := client.buildParams(sampleRequest("claude-sonnet-4-20250514"))
	require.NoError(t, err)

	body := marshalParams(t, params)
	assert.Equal(t, int64(1000), body.Get("max_tokens").Int())
	assert.InDelta(t, 0.5, body.Get("temperature").Float(), 1e-9)
	assert.Equal(t, "persona", body.Get("system.0.text").String())
	assert.Equal(t, "auto", body.Get("tool_choice.type").String())
	assert.Equal(t, tools.QueryKnowledge, body.Get("tools.0.name").String())
	assert.Equal(t, "category", body.Get("tools.0.input_schema.required.0").String())
	assert.True(t, body.Get("tools.0.input_schema.properties.category").Exists())
}

func TestToolInput(t *testing.T) {
	assert.Equal(t, map[string]any{}, toolInput("not json"))
	assert.Equal(t, map[string]any{}, toolInput(`["array"]`))
	assert.NotEqual(t, map[string]any{}, toolInput(`{"category":"mechanics"}`))
}

func TestGeminiConvertMessages(t *testing.T) {
	contents, system := convertMessagesToGemini(sampleRequest("gemini-2.5-flash").Messages)
	assert.Equal(t, []string{"persona"}, system)

	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, "How does trade work?", contents[0].Parts[0].Text)

	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	call := contents[1].Parts[0].FunctionCall
	require.NotNil(t, call)
	assert.Equal(t, "call_1", call.ID)
	assert.Equal(t, map[string]any{"category": "mechanics"}, call.Args)

	response := contents[2].Parts[0].FunctionResponse
	require.NotNil(t, response)
	assert.Equal(t, tools.QueryKnowledge, response.Name)
	assert.Equal(t, map[string]any{"output": "listing"}, response.Response)
}

func TestGeminiProcessResponse(t *testing.T) {
	result := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking", Thought: true},
				{Text: "Checking the wiki."},
				{FunctionCall: &genai.FunctionCall{Name: tools.WebSearch, Args: map[string]any{"query": "trade"}}},
			}},
		}},
	}

	reply := processGeminiResponse(result)
	assert.Equal(t, "Checking the wiki.", reply.Content)
	require.Len(t, reply.ToolCalls, 1)
	assert.Equal(t, tools.WebSearch, reply.ToolCalls[0].Name)
	assert.JSONEq(t, `{"query":"trade"}`, reply.ToolCalls[0].Arguments)
	assert.NotEmpty(t, reply.ToolCalls[0].ID)

	empty := processGeminiResponse(&genai.GenerateContentResponse{})
	assert.Empty(t, empty.Content)
	assert.False(t, empty.HasToolCalls())
}

func TestGeminiConvertSchema(t *testing.T) {
	defs := tools.Definitions(tools.Topics{Categories: []string{"mechanics", "nations"}})
	schema := convertSchema(defs[0].Parameters)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, []string{"category"}, schema.Required)
	assert.Equal(t, []string{"category", "subcategory"}, schema.PropertyOrdering)
	assert.Equal(t, genai.TypeString, schema.Properties["category"].Type)
	assert.Equal(t, []string{"mechanics", "nations"}, schema.Properties["category"].Enum)

	search := convertSchema(defs[1].Parameters)
	assert.Equal(t, genai.TypeInteger, search.Properties["num_results"].Type)
	require.NotNil(t, search.Properties["num_results"].Maximum)
	assert.Equal(t, 10.0, *search.Properties["num_results"].Maximum)
	assert.Nil(t, search.Properties["query"].Minimum)
}

func TestGeminiBuildGenerationConfig(t *testing.T) {
	client := NewGeminiClient("key", ParamRules{Temperature: 0.25, MaxCompletionTokens: 512})
	req := sampleRequest("gemini-2.5-flash")
	_, system := convertMessagesToGemini(req.Messages)

	generation := client.buildGenerationConfig(req, system)
	assert.Equal(t, int32(512), generation.MaxOutputTokens)
	require.NotNil(t, generation.Temperature)
	assert.InDelta(t, 0.25, *generation.Temperature, 1e-6)
	require.NotNil(t, generation.SystemInstruction)
	assert.Equal(t, "persona", generation.SystemInstruction.Parts[0].Text)
	require.Len(t, generation.Tools, 1)
	assert.Len(t, generation.Tools[0].FunctionDeclarations, 2)
	assert.Equal(t, genai.FunctionCallingConfigModeAuto, generation.ToolConfig.FunctionCallingConfig.Mode)
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
		wantErr  string
	}{
		{provider: config.ProviderOpenAI, wantName: "openai"},
		{provider: config.ProviderAnthropic, wantName: "anthropic"},
		{provider: config.ProviderGemini, wantName: "gemini"},
		{provider: "mistral", wantErr: "unsupported provider"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			client, err := NewClient(&config.Config{Provider: tt.provider, APIKey: "key"})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, client.ProviderName())
		})
	}

	_, err := NewClient(&config.Config{Provider: config.ProviderOpenAI})
	require.Error(t, err)
}
