package services

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a scriptable Provider for tests. Responses are consumed
// in order; when the script is exhausted the last entry repeats. Call
// tracking is safe for concurrent use.
type MockProvider struct {
	ChatCompletionFunc func(ctx context.Context, req ProviderRequest) (string, error)

	// Scripted responses, consumed in order.
	Responses []MockResponse

	// Track calls for assertions.
	Calls []ProviderRequest

	mu sync.Mutex
}

// MockResponse is one scripted completion outcome.
type MockResponse struct {
	Content string
	Err     error
}

// NewMockProvider creates an empty mock. With no script and no function it
// answers every call with "mock response".
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) ChatCompletion(ctx context.Context, req ProviderRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if m.ChatCompletionFunc != nil {
		return m.ChatCompletionFunc(ctx, req)
	}

	if len(m.Responses) > 0 {
		idx := len(m.Calls) - 1
		if idx >= len(m.Responses) {
			idx = len(m.Responses) - 1
		}
		r := m.Responses[idx]
		return r.Content, r.Err
	}

	return "mock response", nil
}

// CallCount returns how many completion calls were made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or false when none were made.
func (m *MockProvider) LastCall() (ProviderRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return ProviderRequest{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}

// Script replaces the response script.
func (m *MockProvider) Script(responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = responses
	m.Calls = nil
}

// FailTimes scripts n failures followed by one success.
func (m *MockProvider) FailTimes(n int, thenContent string) {
	responses := make([]MockResponse, 0, n+1)
	for i := 0; i < n; i++ {
		responses = append(responses, MockResponse{Err: fmt.Errorf("mock transient failure %d", i+1)})
	}
	responses = append(responses, MockResponse{Content: thenContent})
	m.Script(responses...)
}

// Reset clears the script and call tracking.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = nil
	m.Calls = nil
	m.ChatCompletionFunc = nil
}
