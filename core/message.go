package core

// Role identifies the author of a message in a conversation history.
type Role string

const (
	// RoleSystem marks the canonical instruction message. A history holds at
	// most one and it always sits at index 0.
	RoleSystem Role = "system"
	// RoleUser marks input delivered to an agent.
	RoleUser Role = "user"
	// RoleAssistant marks model-produced output.
	RoleAssistant Role = "assistant"
	// RoleTool marks provider-level tool payloads. The run loop never appends
	// this role itself; tool output travels packaged inside user messages.
	RoleTool Role = "tool"
)

// ImageData is a binary image attachment with its MIME type.
type ImageData struct {
	Data     []byte `json:"data,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
}

// Valid reports whether the image carries both a payload and a MIME type.
func (i ImageData) Valid() bool { return len(i.Data) > 0 && i.MIMEType != "" }

// Message is a single entry of an agent's conversation history, ordered
// oldest first. Content may be empty for pure image messages. RunMeta is only
// set on assistant messages produced by a run and carries the sanitized
// snapshot of that run.
type Message struct {
	Role    Role         `json:"role"`
	Content string       `json:"content"`
	Image   *ImageData   `json:"image,omitempty"`
	RunMeta *RunSnapshot `json:"run_meta,omitempty"`
}

// NewSystemMessage creates the canonical system message.
func NewSystemMessage(text string) Message { return Message{Role: RoleSystem, Content: text} }

// NewUserMessage creates a plain text user message.
func NewUserMessage(text string) Message { return Message{Role: RoleUser, Content: text} }

// NewUserImageMessage creates a user message carrying an image attachment.
func NewUserImageMessage(text string, img ImageData) Message {
	return Message{Role: RoleUser, Content: text, Image: &img}
}

// NewAssistantMessage creates a plain text assistant message.
func NewAssistantMessage(text string) Message { return Message{Role: RoleAssistant, Content: text} }

// Clone returns a copy whose Image and RunMeta pointers are independent of
// the receiver. Image bytes are shared (treated as immutable); snapshots are
// deep-copied.
func (m Message) Clone() Message {
	cp := m
	if m.Image != nil {
		img := *m.Image
		cp.Image = &img
	}
	cp.RunMeta = m.RunMeta.Clone()
	return cp
}

// CloneMessages returns a defensive copy of a history slice.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}
