package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scholar-api/internal/generation"
)

// MockProvider implements generation.Provider for testing
type MockProvider struct {
	// CallFn allows test cases to mock the Call behavior
	CallFn func(ctx context.Context, prompt string, opts generation.CallOptions) (string, error)

	// Responses are returned in order by successive calls; the last one repeats
	Responses []string
	// Err is returned when set and CallFn is nil
	Err error

	ProviderName string
	ModelName    string

	// Call tracking for verification
	Calls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times Call was called
		Count int

		// Prompts contains all prompts passed to Call
		Prompts []string

		// Options contains all options passed to Call
		Options []generation.CallOptions
	}
}

// NewMockProvider creates a MockProvider that returns the given responses in order
func NewMockProvider(responses ...string) *MockProvider {
	return &MockProvider{Responses: responses}
}

// NewMockProviderWithError creates a MockProvider that always fails with err
func NewMockProviderWithError(err error) *MockProvider {
	return &MockProvider{Err: err}
}

// Call implements generation.Provider
func (m *MockProvider) Call(ctx context.Context, prompt string, opts generation.CallOptions) (string, error) {
	m.Calls.mu.Lock()
	idx := m.Calls.Count
	m.Calls.Count++
	m.Calls.Prompts = append(m.Calls.Prompts, prompt)
	m.Calls.Options = append(m.Calls.Options, opts)
	m.Calls.mu.Unlock()

	if m.CallFn != nil {
		return m.CallFn(ctx, prompt, opts)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

// TestConnection implements generation.Provider
func (m *MockProvider) TestConnection(ctx context.Context) generation.ConnectionStatus {
	return generation.Probe(ctx, m)
}

// Name implements generation.Provider
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Model implements generation.Provider
func (m *MockProvider) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// CallCount returns the number of Call invocations
func (m *MockProvider) CallCount() int {
	m.Calls.mu.Lock()
	defer m.Calls.mu.Unlock()
	return m.Calls.Count
}

// LastPrompt returns the most recent prompt, or "" if Call was never invoked
func (m *MockProvider) LastPrompt() string {
	m.Calls.mu.Lock()
	defer m.Calls.mu.Unlock()
	if len(m.Calls.Prompts) == 0 {
		return ""
	}
	return m.Calls.Prompts[len(m.Calls.Prompts)-1]
}

// Reset resets the call tracking state
func (m *MockProvider) Reset() {
	m.Calls.mu.Lock()
	defer m.Calls.mu.Unlock()

	m.Calls.Count = 0
	m.Calls.Prompts = nil
	m.Calls.Options = nil
}

// StaticFactory returns a generation.Factory that always yields p, recording
// the requested models and keys.
func StaticFactory(p generation.Provider, seen *[]generation.Credentials) generation.Factory {
	var mu sync.Mutex
	return func(_ context.Context, model, apiKey string) (generation.Provider, error) {
		if seen != nil {
			mu.Lock()
			*seen = append(*seen, generation.Credentials{Model: model, APIKey: apiKey})
			mu.Unlock()
		}
		return p, nil
	}
}
