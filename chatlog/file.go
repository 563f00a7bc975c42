package chatlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kingbootoshi/cypher-core/core"
)

// Stamp layout for session file names, e.g. 20260824_153000_full.jsonl.
const stampLayout = "20060102_150405"

// FileRecorder appends conversation records to a pair of session-stamped
// .jsonl files. Every write is synced before returning, trading throughput
// for a durable one-record-per-turn log even if the process is killed
// mid-conversation.
type FileRecorder struct {
	mu    sync.Mutex
	full  *os.File
	turns *os.File
}

// NewFileRecorder creates the log directory when missing and opens a fresh
// pair of session files named with the current timestamp.
func NewFileRecorder(dir string) (*FileRecorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	stamp := time.Now().Format(stampLayout)
	full, err := openAppend(filepath.Join(dir, stamp+"_full.jsonl"))
	if err != nil {
		return nil, err
	}
	turns, err := openAppend(filepath.Join(dir, stamp+"_turns.jsonl"))
	if err != nil {
		full.Close()
		return nil, err
	}

	return &FileRecorder{full: full, turns: turns}, nil
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// RecordFull implements Recorder.
func (r *FileRecorder) RecordFull(history []core.Message) error {
	return r.append(r.full, NewRecord(history...))
}

// RecordTurn implements Recorder.
func (r *FileRecorder) RecordTurn(userMsg, assistantMsg core.Message) error {
	return r.append(r.turns, NewRecord(userMsg, assistantMsg))
}

// FullPath returns the path of the full-history log file.
func (r *FileRecorder) FullPath() string { return r.full.Name() }

// TurnsPath returns the path of the turn-pair log file.
func (r *FileRecorder) TurnsPath() string { return r.turns.Name() }

// Close flushes and closes both session files.
func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fullErr := r.full.Close()
	turnsErr := r.turns.Close()
	if fullErr != nil {
		return fullErr
	}
	return turnsErr
}

func (r *FileRecorder) append(f *os.File, record Record) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return f.Sync()
}

var _ Recorder = (*FileRecorder)(nil)
