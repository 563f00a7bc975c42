package trace

import (
	"sync"

	"github.com/kingbootoshi/cypher-core/core"
	"github.com/kingbootoshi/cypher-core/logging"
)

// LogSink emits structured log events for published agent state. Prompt and
// history payloads are logged by size, not content; run snapshots log their
// outcome fields.
type LogSink struct {
	logger logging.Logger

	mu    sync.RWMutex
	names map[string]string
}

// NewLogSink creates a sink that logs publications through the given logger.
func NewLogSink(logger logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.NewDefaultSlogLogger()
	}
	return &LogSink{logger: logger, names: make(map[string]string)}
}

// RegisterAgent implements Sink.
func (s *LogSink) RegisterAgent(name, description string) string {
	id := core.NewID()
	s.mu.Lock()
	s.names[id] = name
	s.mu.Unlock()

	s.logger.Info("Agent registered", "agent", name, "agent_id", id)
	return id
}

// PublishSystemPrompt implements Sink.
func (s *LogSink) PublishSystemPrompt(id, prompt string) {
	s.logger.Debug("System prompt compiled", "agent", s.name(id), "chars", len(prompt))
}

// PublishHistory implements Sink.
func (s *LogSink) PublishHistory(id string, history []core.Message) {
	s.logger.Debug("History updated", "agent", s.name(id), "messages", len(history))
}

// PublishResponse implements Sink.
func (s *LogSink) PublishResponse(id, response string) {
	s.logger.Debug("Response rendered", "agent", s.name(id), "chars", len(response))
}

// PublishRun implements Sink.
func (s *LogSink) PublishRun(id string, run *core.RunSnapshot) {
	if run == nil {
		return
	}
	if run.Success {
		s.logger.Info("Run completed",
			"agent", s.name(id),
			"run_id", run.RunID,
			"history", len(run.History),
		)
		return
	}
	s.logger.Error("Run failed",
		"agent", s.name(id),
		"run_id", run.RunID,
		"error", run.Error,
	)
}

func (s *LogSink) name(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if name, ok := s.names[id]; ok {
		return name
	}
	return id
}

var _ Sink = (*LogSink)(nil)
