package testutil

import (
	"github.com/kingbootoshi/cypher-core/core"
)

// ConversationBuilder provides a fluent helper for constructing message
// histories in tests.
// Example:
//
//	history := testutil.NewConversation().
//		System("You are terse.").
//		User("hi").
//		Assistant("hello").
//		Build()
//
// Chain only the parts you need; messages keep insertion order.
type ConversationBuilder struct {
	messages []core.Message
}

// NewConversation creates an empty builder.
func NewConversation() *ConversationBuilder { return &ConversationBuilder{} }

// System appends a system message (chainable).
func (b *ConversationBuilder) System(text string) *ConversationBuilder {
	return b.append(core.NewSystemMessage(text))
}

// User appends a plain text user message (chainable).
func (b *ConversationBuilder) User(text string) *ConversationBuilder {
	return b.append(core.NewUserMessage(text))
}

// Assistant appends a plain text assistant message (chainable).
func (b *ConversationBuilder) Assistant(text string) *ConversationBuilder {
	return b.append(core.NewAssistantMessage(text))
}

// UserImage appends a user message carrying an image attachment (chainable).
func (b *ConversationBuilder) UserImage(text, mimeType string, data []byte) *ConversationBuilder {
	return b.append(core.NewUserImageMessage(text, core.ImageData{MIMEType: mimeType, Data: data}))
}

// Stamped appends an assistant message carrying a run snapshot (chainable).
func (b *ConversationBuilder) Stamped(text string, run *core.RunSnapshot) *ConversationBuilder {
	msg := core.NewAssistantMessage(text)
	msg.RunMeta = run
	return b.append(msg)
}

// Message appends an arbitrary prebuilt message (chainable).
func (b *ConversationBuilder) Message(msg core.Message) *ConversationBuilder {
	return b.append(msg)
}

// Build returns the assembled history as an independent slice.
func (b *ConversationBuilder) Build() []core.Message {
	out := make([]core.Message, len(b.messages))
	copy(out, b.messages)
	return out
}

func (b *ConversationBuilder) append(msg core.Message) *ConversationBuilder {
	b.messages = append(b.messages, msg)
	return b
}
