package advisortypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageConstructors(t *testing.T) {
	tests := []struct {
		name     string
		msg      Message
		role     Role
		content  string
		hasCalls bool
	}{
		{name: "system", msg: SystemMessage("persona"), role: RoleSystem, content: "persona"},
		{name: "user", msg: UserMessage("hello"), role: RoleUser, content: "hello"},
		{name: "assistant text", msg: AssistantMessage("answer"), role: RoleAssistant, content: "answer"},
		{
			name:     "assistant with calls",
			msg:      AssistantMessage("", ToolCall{ID: "c1", Name: "web_search", Arguments: `{"query":"x"}`}),
			role:     RoleAssistant,
			hasCalls: true,
		},
		{name: "tool", msg: ToolMessage("c1", "web_search", "result"), role: RoleTool, content: "result"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.role, tt.msg.Role)
			assert.Equal(t, tt.content, tt.msg.Content)
			assert.Equal(t, tt.hasCalls, tt.msg.HasToolCalls())
		})
	}
}

func TestToolMessage_CorrelatesCall(t *testing.T) {
	msg := ToolMessage("call_42", "query_knowledge", "text")
	assert.Equal(t, "call_42", msg.ToolCallID)
	assert.Equal(t, "query_knowledge", msg.Name)
}

func TestCloneMessages_DeepCopiesToolCalls(t *testing.T) {
	original := []Message{
		SystemMessage("sys"),
		AssistantMessage("", ToolCall{ID: "a", Name: "web_search", Arguments: "{}"}),
	}

	clone := CloneMessages(original)
	clone[1].ToolCalls[0].ID = "changed"
	clone[0].Content = "changed"

	assert.Equal(t, "a", original[1].ToolCalls[0].ID)
	assert.Equal(t, "sys", original[0].Content)
}

func TestKnowledgeResultVariants(t *testing.T) {
	found := KnowledgeFoundResult("# Economy", "mechanics/economy", "mechanics/economy_mechanics.md")
	assert.Equal(t, KnowledgeFound, found.Outcome)
	assert.Equal(t, 9, found.Size)
	assert.Equal(t, "found", found.Outcome.String())

	listing := KnowledgeListing("Please specify a subcategory.")
	assert.Equal(t, KnowledgeNeedsSpecificity, listing.Outcome)
	assert.Equal(t, "needs_specificity", listing.Outcome.String())

	failure := KnowledgeFailure("boom")
	assert.Equal(t, KnowledgeError, failure.Outcome)
	assert.Equal(t, "boom", failure.Message)
	assert.Equal(t, "error", failure.Outcome.String())
}
