package core

import "time"

// SnapshotHistoryLimit bounds how many trailing history messages a run
// snapshot retains after sanitization.
const SnapshotHistoryLimit = 10

// RunSnapshot is the bounded diagnostic record of one agent run. It is built
// fresh per run from fixed fields only, so nothing in it self-references and
// no cycle stripping is needed. Raw provider payloads, client handles and
// network parameters never enter a snapshot; token usage is the normalized
// count, not the provider object.
type RunSnapshot struct {
	RunID        string        `json:"run_id"`
	AgentID      string        `json:"agent_id,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	Input        string        `json:"input,omitempty"`
	SystemPrompt string        `json:"system_prompt,omitempty"`
	History      []Message     `json:"history,omitempty"`
	ResponseText string        `json:"response_text,omitempty"`
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
	Usage        *TokenUsage   `json:"usage,omitempty"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
}

// Sanitize stores a redacted view of history on the snapshot: at most
// SnapshotHistoryLimit trailing messages, each reduced to role and content.
// Nested snapshots and image payloads are dropped, which keeps snapshots
// attached to messages from growing without bound.
func (s *RunSnapshot) Sanitize(history []Message) {
	start := 0
	if len(history) > SnapshotHistoryLimit {
		start = len(history) - SnapshotHistoryLimit
	}
	redacted := make([]Message, 0, len(history)-start)
	for _, m := range history[start:] {
		redacted = append(redacted, Message{Role: m.Role, Content: m.Content})
	}
	s.History = redacted
}

// Clone returns a deep copy safe to hand across API boundaries. A nil
// receiver yields nil.
func (s *RunSnapshot) Clone() *RunSnapshot {
	if s == nil {
		return nil
	}
	cp := *s
	if s.History != nil {
		cp.History = make([]Message, len(s.History))
		copy(cp.History, s.History)
	}
	if s.FunctionCall != nil {
		fc := *s.FunctionCall
		cp.FunctionCall = &fc
	}
	if s.Usage != nil {
		u := *s.Usage
		cp.Usage = &u
	}
	return &cp
}
