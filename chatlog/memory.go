package chatlog

import (
	"sync"

	"github.com/kingbootoshi/cypher-core/core"
)

// MemoryRecorder keeps conversation records in memory. It is safe for
// concurrent use and intended for tests and inspection tooling.
type MemoryRecorder struct {
	mu    sync.Mutex
	full  []Record
	turns []Record
}

// NewMemoryRecorder constructs an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// RecordFull implements Recorder.
func (r *MemoryRecorder) RecordFull(history []core.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.full = append(r.full, NewRecord(history...))
	return nil
}

// RecordTurn implements Recorder.
func (r *MemoryRecorder) RecordTurn(userMsg, assistantMsg core.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, NewRecord(userMsg, assistantMsg))
	return nil
}

// Full returns a copy of all full-history records.
func (r *MemoryRecorder) Full() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), r.full...)
}

// Turns returns a copy of all turn-pair records.
func (r *MemoryRecorder) Turns() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), r.turns...)
}

// Close implements Recorder.
func (r *MemoryRecorder) Close() error { return nil }

var _ Recorder = (*MemoryRecorder)(nil)
