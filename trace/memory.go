package trace

import (
	"sync"
	"time"

	"github.com/kingbootoshi/cypher-core/core"
)

// AgentState is the latest published view of one agent.
type AgentState struct {
	ID           string
	Name         string
	Description  string
	SystemPrompt string
	History      []core.Message
	LastResponse string
	LastRun      *core.RunSnapshot
	UpdatedAt    time.Time
}

// Clone returns a deep copy safe for use after release of the sink's lock.
func (s *AgentState) Clone() *AgentState {
	if s == nil {
		return nil
	}
	clone := *s
	clone.History = core.CloneMessages(s.History)
	clone.LastRun = s.LastRun.Clone()
	return &clone
}

// MemorySink is a volatile Sink implementation keeping the latest state per
// agent in a process local map. It is safe for concurrent access and best
// suited for tests, inspection tooling or ephemeral demo servers. Each
// returned state is cloned to prevent external mutation of internal state.
type MemorySink struct {
	mu     sync.RWMutex
	agents map[string]*AgentState
}

// NewMemorySink constructs an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{agents: make(map[string]*AgentState)}
}

// RegisterAgent implements Sink.
func (s *MemorySink) RegisterAgent(name, description string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := core.NewID()
	s.agents[id] = &AgentState{
		ID:          id,
		Name:        name,
		Description: description,
		UpdatedAt:   time.Now(),
	}
	return id
}

// PublishSystemPrompt implements Sink.
func (s *MemorySink) PublishSystemPrompt(id, prompt string) {
	s.update(id, func(state *AgentState) {
		state.SystemPrompt = prompt
	})
}

// PublishHistory implements Sink.
func (s *MemorySink) PublishHistory(id string, history []core.Message) {
	cloned := core.CloneMessages(history)
	s.update(id, func(state *AgentState) {
		state.History = cloned
	})
}

// PublishResponse implements Sink.
func (s *MemorySink) PublishResponse(id, response string) {
	s.update(id, func(state *AgentState) {
		state.LastResponse = response
	})
}

// PublishRun implements Sink.
func (s *MemorySink) PublishRun(id string, run *core.RunSnapshot) {
	cloned := run.Clone()
	s.update(id, func(state *AgentState) {
		state.LastRun = cloned
	})
}

// Agent returns a clone of the state for one agent.
func (s *MemorySink) Agent(id string) (*AgentState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.agents[id]
	if !ok {
		return nil, false
	}
	return state.Clone(), true
}

// Agents returns clones of all registered agent states.
func (s *MemorySink) Agents() []*AgentState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*AgentState, 0, len(s.agents))
	for _, state := range s.agents {
		out = append(out, state.Clone())
	}
	return out
}

// update applies fn to a registered agent's state; unknown ids are ignored so
// publishing never disturbs the run that produced the data.
func (s *MemorySink) update(id string, fn func(state *AgentState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.agents[id]
	if !ok {
		return
	}
	fn(state)
	state.UpdatedAt = time.Now()
}

var _ Sink = (*MemorySink)(nil)
