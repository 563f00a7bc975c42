package trace

import (
	"sync"

	"github.com/kingbootoshi/cypher-core/core"
)

// Sink receives state updates from running agents. Implementations must be
// safe for concurrent use; agents may publish from multiple goroutines.
//
// RegisterAgent returns an opaque identifier the agent passes to every
// subsequent publish. Publishing under an unknown identifier is a no-op.
type Sink interface {
	// RegisterAgent announces a new agent and returns its identifier.
	RegisterAgent(name, description string) string

	// PublishSystemPrompt records the most recently compiled system prompt.
	PublishSystemPrompt(id, prompt string)

	// PublishHistory records the current chat history.
	PublishHistory(id string, history []core.Message)

	// PublishResponse records the latest rendered model response.
	PublishResponse(id, response string)

	// PublishRun records the snapshot of a completed run.
	PublishRun(id string, run *core.RunSnapshot)
}

// NopSink discards all published state.
type NopSink struct{}

// NewNopSink creates a sink that ignores everything published to it.
func NewNopSink() *NopSink { return &NopSink{} }

// RegisterAgent implements Sink.
func (NopSink) RegisterAgent(name, description string) string { return core.NewID() }

// PublishSystemPrompt implements Sink.
func (NopSink) PublishSystemPrompt(id, prompt string) {}

// PublishHistory implements Sink.
func (NopSink) PublishHistory(id string, history []core.Message) {}

// PublishResponse implements Sink.
func (NopSink) PublishResponse(id, response string) {}

// PublishRun implements Sink.
func (NopSink) PublishRun(id string, run *core.RunSnapshot) {}

// Multi fans publications out to several sinks. Each child sink issues its
// own identifier on registration; Multi keeps the mapping so a single
// identifier works at the fan-out boundary.
func Multi(sinks ...Sink) Sink {
	return &multiSink{sinks: sinks, ids: make(map[string][]string)}
}

type multiSink struct {
	sinks []Sink

	mu  sync.Mutex
	ids map[string][]string
}

// RegisterAgent implements Sink.
func (m *multiSink) RegisterAgent(name, description string) string {
	children := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		children[i] = s.RegisterAgent(name, description)
	}

	id := core.NewID()
	m.mu.Lock()
	m.ids[id] = children
	m.mu.Unlock()
	return id
}

// PublishSystemPrompt implements Sink.
func (m *multiSink) PublishSystemPrompt(id, prompt string) {
	for i, s := range m.sinks {
		if child, ok := m.childID(id, i); ok {
			s.PublishSystemPrompt(child, prompt)
		}
	}
}

// PublishHistory implements Sink.
func (m *multiSink) PublishHistory(id string, history []core.Message) {
	for i, s := range m.sinks {
		if child, ok := m.childID(id, i); ok {
			s.PublishHistory(child, history)
		}
	}
}

// PublishResponse implements Sink.
func (m *multiSink) PublishResponse(id, response string) {
	for i, s := range m.sinks {
		if child, ok := m.childID(id, i); ok {
			s.PublishResponse(child, response)
		}
	}
}

// PublishRun implements Sink.
func (m *multiSink) PublishRun(id string, run *core.RunSnapshot) {
	for i, s := range m.sinks {
		if child, ok := m.childID(id, i); ok {
			s.PublishRun(child, run)
		}
	}
}

func (m *multiSink) childID(id string, i int) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	children, ok := m.ids[id]
	if !ok || i >= len(children) {
		return "", false
	}
	return children[i], true
}

var (
	_ Sink = (*NopSink)(nil)
	_ Sink = (*multiSink)(nil)
)
