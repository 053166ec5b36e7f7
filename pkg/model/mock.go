package model

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a scripted Client for tests and for `axon run --dry-run`
// style exploration. Responses are queued per-call, or a single
// ResponseFn can compute one dynamically from the prompts it was given.
type MockClient struct {
	mu        sync.Mutex
	responses []Response
	errors    []error
	calls     []MockCall
	ResponseFn func(systemPrompt, userPrompt string, opts CallOptions) (Response, error)
}

// MockCall records one invocation of Call, for assertions in tests.
type MockCall struct {
	SystemPrompt string
	UserPrompt   string
	Opts         CallOptions
}

// NewMockClient returns a MockClient with no scripted responses; Call
// returns an error until responses are queued or ResponseFn is set.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// QueueResponse appends a response to be returned by successive calls,
// in FIFO order.
func (m *MockClient) QueueResponse(r Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, r)
}

// QueueError appends an error to be returned in place of a response.
// Errors and responses share one FIFO queue by call order: whichever
// was queued first for that call index wins, tracked separately here
// via a parallel slice indexed the same as responses would be.
func (m *MockClient) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// pad errors up to the responses already queued so this error lands
	// at the same index as its placeholder response
	for len(m.errors) < len(m.responses) {
		m.errors = append(m.errors, nil)
	}
	m.responses = append(m.responses, Response{})
	m.errors = append(m.errors, err)
}

// Calls returns every call made to this client so far, in order.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockClient) Call(ctx context.Context, systemPrompt, userPrompt string, opts CallOptions) (Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt, Opts: opts})
	idx := len(m.calls) - 1
	fn := m.ResponseFn
	m.mu.Unlock()

	if fn != nil {
		return fn(systemPrompt, userPrompt, opts)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if idx >= len(m.responses) {
		return Response{}, fmt.Errorf("mock client: no scripted response for call %d", idx)
	}
	if idx < len(m.errors) && m.errors[idx] != nil {
		return Response{}, m.errors[idx]
	}
	return m.responses[idx], nil
}
