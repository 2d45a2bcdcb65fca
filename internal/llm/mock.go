package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests. Responses are returned in
// order; once exhausted the last one repeats.
type MockClient struct {
	mu        sync.Mutex
	Responses []MockResponse
	Requests  []Request
}

// MockResponse is one scripted reply.
type MockResponse struct {
	Text string
	Err  error
}

// NewMockClient returns a client that answers with the given texts.
func NewMockClient(texts ...string) *MockClient {
	m := &MockClient{}
	for _, t := range texts {
		m.Responses = append(m.Responses, MockResponse{Text: t})
	}
	return m
}

// Generate records the request and returns the next scripted reply.
func (m *MockClient) Generate(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := len(m.Requests)
	m.Requests = append(m.Requests, req)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(m.Responses) == 0 {
		return "", ErrEmptyResponse
	}
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	r := m.Responses[idx]
	return r.Text, r.Err
}

// Calls returns the number of Generate calls so far.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
