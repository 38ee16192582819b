// Package advisortypes defines LLM-related types and interfaces for the EU5 advisor.
// This file contains the chat request shape, tool definitions and the client abstraction.
package advisortypes

import (
	"context"

	"github.com/invopop/jsonschema"
)

// ToolChoice selects how the model may pick tools for a request.
type ToolChoice string

// Supported tool selection modes.
const (
	ToolChoiceAuto ToolChoice = "auto"
	ToolChoiceNone ToolChoice = "none"
)

// ToolDefinition describes one function the model may call.
// Parameters is the JSON schema of the function arguments object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}

// ChatRequest is one call to the LLM chat endpoint.
type ChatRequest struct {
	Model      string
	Messages   []Message
	Tools      []ToolDefinition
	ToolChoice ToolChoice
}

// ChatClient defines the interface for LLM provider implementations.
// Complete sends the ordered message list and returns the single assistant message
// produced by the model. Transport, auth and rate-limit failures are returned as errors.
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (Message, error)

	// ProviderName returns the name of the LLM provider (e.g., "openai", "anthropic").
	ProviderName() string
}
