// Package advisortypes defines the shared data model for the EU5 advisor.
// This file contains the conversation transcript types: roles, messages and tool calls.
package advisortypes

// Role identifies the author of a message in the conversation transcript.
type Role string

// Transcript roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is one LLM-issued invocation request.
// Arguments holds the raw encoded parameter payload exactly as the model produced it;
// it is validated only when the call is executed.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message represents a single turn unit in the conversation transcript.
// Content may be empty when an assistant message carries only tool calls.
// ToolCalls is set only on assistant messages, ToolCallID and Name only on tool messages.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// SystemMessage creates a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant-role message with optional tool calls.
func AssistantMessage(content string, calls ...ToolCall) Message {
	msg := Message{Role: RoleAssistant, Content: content}
	if len(calls) > 0 {
		msg.ToolCalls = append([]ToolCall(nil), calls...)
	}
	return msg
}

// ToolMessage creates a tool-role message answering the call with the given id.
func ToolMessage(toolCallID, name, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID, Name: name}
}

// HasToolCalls reports whether the message requests tool invocations.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// CloneMessage returns a deep copy of the message.
func CloneMessage(in Message) Message {
	out := in
	if len(in.ToolCalls) > 0 {
		out.ToolCalls = append([]ToolCall(nil), in.ToolCalls...)
	}
	return out
}

// CloneMessages returns deep copies of all messages.
func CloneMessages(in []Message) []Message {
	out := make([]Message, len(in))
	for i := range in {
		out[i] = CloneMessage(in[i])
	}
	return out
}
