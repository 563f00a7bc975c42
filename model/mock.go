package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/kingbootoshi/cypher-core/core"
)

// MockClient is a lightweight in-memory Client useful for tests & examples.
// Responses are scripted in FIFO order; every request is recorded for
// inspection. Safe for concurrent use.
type MockClient struct {
	mu        sync.Mutex
	info      Info
	script    []*Response
	err       error
	requests  []*Request
	responses map[string]string
}

// NewMockClient constructs a MockClient for the given provider identity.
func NewMockClient(provider, modelName string) *MockClient {
	return &MockClient{
		info: Info{
			Provider:       provider,
			Model:          modelName,
			SupportsImages: true,
		},
		responses: make(map[string]string),
	}
}

// SetInfo overrides the reported capabilities (image support, inline schema).
func (m *MockClient) SetInfo(info Info) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.info = info
}

// Enqueue appends scripted responses returned in order by ChatCompletion.
func (m *MockClient) Enqueue(responses ...*Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, responses...)
}

// EnqueueText is shorthand for scripting a plain text completion.
func (m *MockClient) EnqueueText(texts ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range texts {
		m.script = append(m.script, &Response{Text: t})
	}
}

// Fail makes every subsequent call return err (nil restores normal behavior).
func (m *MockClient) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// AddResponse registers a deterministic canned completion keyed by the last
// message content. Scripted responses take precedence.
func (m *MockClient) AddResponse(input, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[input] = response
}

// ChatCompletion implements Client.
func (m *MockClient) ChatCompletion(ctx context.Context, req *Request) (*Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) > 0 {
		resp := m.script[0]
		m.script = m.script[1:]
		return resp, nil
	}

	var input string
	if len(req.Messages) > 0 {
		input = req.Messages[len(req.Messages)-1].Content
	}
	if canned, ok := m.responses[input]; ok {
		return &Response{Text: canned}, nil
	}
	return &Response{Text: fmt.Sprintf("Mock response to: %s", input)}, nil
}

// Info implements Client.
func (m *MockClient) Info() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info
}

// Requests returns a copy of every request seen so far.
func (m *MockClient) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// CallCount reports how many completions were requested.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// MockFunctionCall scripts a function call response.
func MockFunctionCall(name, arguments string) *Response {
	return &Response{FunctionCall: &core.FunctionCall{ID: core.NewID(), Name: name, Arguments: arguments}}
}

var _ Client = (*MockClient)(nil)
