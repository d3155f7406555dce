package llm

import (
	"context"
	"sync"
)

// MockResponse is one scripted reply.
type MockResponse struct {
	Text string
	Err  error
}

// MockProvider replays scripted replies in order and records every request.
// When Repeat is set the last reply is reused once the script runs out.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Repeat    bool
	Calls     []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

func (m *MockProvider) Complete(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{}
	}
	resp := m.responses[0]
	if len(m.responses) > 1 || !m.Repeat {
		m.responses = m.responses[1:]
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Response{Text: StripCitations(resp.Text), Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse appends a scripted reply.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Complete calls so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
