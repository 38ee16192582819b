package testutils

import (
	"context"
	"errors"
	"sync"

	"eu5advisor/pkg/advisortypes"
)

// ErrScriptExhausted is returned once a MockChatClient has replayed every reply.
var ErrScriptExhausted = errors.New("mock chat client: script exhausted")

// MockChatClient replays scripted replies in order and records each request.
type MockChatClient struct {
	mu       sync.Mutex
	replies  []advisortypes.Message
	err      error
	requests []advisortypes.ChatRequest
}

// NewMockChatClient creates a client answering with replies, one per request.
func NewMockChatClient(replies ...advisortypes.Message) *MockChatClient {
	return &MockChatClient{replies: replies}
}

// SetError makes every following request fail with err.
func (m *MockChatClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Complete implements advisortypes.ChatClient.
func (m *MockChatClient) Complete(_ context.Context, req advisortypes.ChatRequest) (advisortypes.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req.Messages = advisortypes.CloneMessages(req.Messages)
	m.requests = append(m.requests, req)
	if m.err != nil {
		return advisortypes.Message{}, m.err
	}
	if len(m.replies) == 0 {
		return advisortypes.Message{}, ErrScriptExhausted
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return reply, nil
}

// ProviderName implements advisortypes.ChatClient.
func (m *MockChatClient) ProviderName() string {
	return "mock"
}

// Requests returns the requests received so far.
func (m *MockChatClient) Requests() []advisortypes.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]advisortypes.ChatRequest(nil), m.requests...)
}
