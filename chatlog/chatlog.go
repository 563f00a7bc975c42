package chatlog

import (
	"github.com/kingbootoshi/cypher-core/core"
)

// Entry is the persisted view of one message: role and content only. Images,
// snapshots and any other diagnostic attachments never reach disk.
type Entry struct {
	Role    core.Role `json:"role"`
	Content string    `json:"content"`
}

// Record is one physical line of a conversation log.
type Record struct {
	Messages []Entry `json:"messages"`
}

// NewRecord reduces messages to a persisted record.
func NewRecord(msgs ...core.Message) Record {
	entries := make([]Entry, len(msgs))
	for i, m := range msgs {
		entries[i] = Entry{Role: m.Role, Content: m.Content}
	}
	return Record{Messages: entries}
}

// Recorder receives conversation records as they are produced. RecordFull
// covers the speaking agent's entire history after its turn; RecordTurn
// covers exactly the user/assistant pair just produced. Implementations must
// make records durable before returning so a later crash cannot lose
// completed turns.
type Recorder interface {
	RecordFull(history []core.Message) error
	RecordTurn(userMsg, assistantMsg core.Message) error
	Close() error
}
