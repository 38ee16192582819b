// Package advisor runs EU5 strategy conversations: it keeps the transcript, trims it
// at turn-group boundaries and drives the tool-calling loop against a chat model.
package advisor

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"eu5advisor/internal/logger"
	"eu5advisor/pkg/advisortypes"
)

// Defaults for Options fields left at zero.
const (
	DefaultMaxHistoryMessages = 40
	DefaultMaxToolIterations  = 10
)

// Observer receives progress events of a turn. Nil functions are skipped.
type Observer struct {
	OnToolCall   func(call advisortypes.ToolCall)
	OnToolResult func(call advisortypes.ToolCall, result string)
	OnTrim       func(dropped, limit int)
}

// Options configures a Controller.
type Options struct {
	Model              string
	SystemPrompt       string // defaults to SystemPrompt
	MaxHistoryMessages int
	MaxToolIterations  int
	Tools              []advisortypes.ToolDefinition
	Observer           Observer
}

// Controller owns one conversation. It is not safe for concurrent use; run one
// Controller per conversation.
type Controller struct {
	id         string
	client     advisortypes.ChatClient
	executor   advisortypes.ToolExecutor
	opts       Options
	transcript []advisortypes.Message
	logger     *log.Logger
}

// New creates a controller with a fresh transcript.
func New(client advisortypes.ChatClient, executor advisortypes.ToolExecutor, opts Options) *Controller {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = SystemPrompt
	}
	if opts.MaxHistoryMessages <= 0 {
		opts.MaxHistoryMessages = DefaultMaxHistoryMessages
	}
	if opts.MaxToolIterations <= 0 {
		opts.MaxToolIterations = DefaultMaxToolIterations
	}

	c := &Controller{
		id:       uuid.New().String(),
		client:   client,
		executor: executor,
		opts:     opts,
		logger:   logger.NewStyledLogger("Advisor"),
	}
	c.Reset()
	return c
}

// ID identifies the conversation in logs.
func (c *Controller) ID() string {
	return c.id
}

// Reset replaces the transcript with the single persona system message.
func (c *Controller) Reset() {
	c.transcript = []advisortypes.Message{advisortypes.SystemMessage(c.opts.SystemPrompt)}
}

// Transcript returns a copy of the stored conversation.
func (c *Controller) Transcript() []advisortypes.Message {
	return advisortypes.CloneMessages(c.transcript)
}

// Converse adds the user's text to the conversation and runs the model, executing
// requested tools, until it answers in text or the iteration budget is spent. Spending
// the budget is not an error: FallbackMessage is returned. Chat endpoint failures are
// wrapped and returned without retry.
func (c *Controller) Converse(ctx context.Context, text string) (string, error) {
	complexMode := IsComplex(text)
	c.transcript = append(c.transcript, advisortypes.UserMessage(text))
	c.logger.Debug("turn started", "conversation", c.id, "complex", complexMode, "messages", len(c.transcript))

	for iteration := 1; iteration <= c.opts.MaxToolIterations; iteration++ {
		c.Trim()

		req := advisortypes.ChatRequest{
			Model:      c.opts.Model,
			Messages:   c.outgoing(complexMode),
			Tools:      c.opts.Tools,
			ToolChoice: advisortypes.ToolChoiceAuto,
		}

		c.logger.Debug("calling model", "iteration", iteration, "messages", len(req.Messages))
		reply, err := c.client.Complete(ctx, req)
		if err != nil {
			return "", fmt.Errorf("%s request failed: %w", c.client.ProviderName(), err)
		}

		reply.Role = advisortypes.RoleAssistant
		c.transcript = append(c.transcript, advisortypes.CloneMessage(reply))

		if reply.HasToolCalls() {
			c.logger.Debug("model requested tools", "iteration", iteration, "count", len(reply.ToolCalls))
			for _, call := range reply.ToolCalls {
				c.runTool(ctx, call)
			}
			continue
		}

		if reply.Content != "" {
			return reply.Content, nil
		}
		c.logger.Debug("model returned neither text nor tool calls", "iteration", iteration)
	}

	c.logger.Warn("tool iteration budget exhausted", "conversation", c.id, "limit", c.opts.MaxToolIterations)
	return FallbackMessage, nil
}

func (c *Controller) runTool(ctx context.Context, call advisortypes.ToolCall) {
	c.logger.Debug("executing tool", "tool", call.Name, "arguments", call.Arguments)
	if c.opts.Observer.OnToolCall != nil {
		c.opts.Observer.OnToolCall(call)
	}

	result := c.executor.Execute(ctx, call)

	if c.opts.Observer.OnToolResult != nil {
		c.opts.Observer.OnToolResult(call, result)
	}
	c.transcript = append(c.transcript, advisortypes.ToolMessage(call.ID, call.Name, result))
}

// outgoing builds the request messages: the transcript with the complex-mode directive
// right after the persona when requested.
func (c *Controller) outgoing(complexMode bool) []advisortypes.Message {
	messages := make([]advisortypes.Message, 0, len(c.transcript)+1)
	messages = append(messages, c.transcript[0])
	if complexMode {
		messages = append(messages, advisortypes.SystemMessage(ComplexModeDirective))
	}
	messages = append(messages, c.transcript[1:]...)
	return messages
}
