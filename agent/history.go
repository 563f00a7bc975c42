package agent

import "github.com/kingbootoshi/cypher-core/core"

// AddMessage appends an arbitrary message and publishes the updated history.
func (a *Agent) AddMessage(msg core.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.appendLocked(msg)
}

// AddUserMessage appends a user message. At most one image travels with the
// text; any further images are appended as standalone user messages.
func (a *Agent) AddUserMessage(text string, images ...core.ImageData) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(images) == 0 {
		a.appendLocked(core.NewUserMessage(text))
		return
	}
	a.appendLocked(core.NewUserImageMessage(text, images[0]))
	for _, img := range images[1:] {
		a.appendLocked(core.NewUserImageMessage("", img))
	}
}

// AddAgentMessage appends an assistant message stamped with the sanitized
// snapshot of the current run and publishes the updated history.
func (a *Agent) AddAgentMessage(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.addAgentMessageLocked(text)
}

// AddImages appends each image as its own user message. The whole call is
// silently dropped when the model client does not accept images or when any
// image is structurally invalid.
func (a *Agent) AddImages(images ...core.ImageData) {
	if len(images) == 0 {
		return
	}
	if !a.client.Info().SupportsImages {
		a.logger.Debug("Images dropped", "agent", a.name, "reason", "client does not support images")
		return
	}
	for _, img := range images {
		if !img.Valid() {
			a.logger.Debug("Images dropped", "agent", a.name, "reason", "invalid image payload")
			return
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, img := range images {
		a.appendLocked(core.NewUserImageMessage("", img))
	}
}

// LastAgentMessage returns the most recent assistant message, scanning from
// the end of the history.
func (a *Agent) LastAgentMessage() (core.Message, bool) {
	return a.lastByRole(core.RoleAssistant)
}

// LastUserMessage returns the most recent user message, scanning from the end
// of the history.
func (a *Agent) LastUserMessage() (core.Message, bool) {
	return a.lastByRole(core.RoleUser)
}

// LoadChatHistory replaces the conversation with the existing system message
// (when present) followed by exactly the supplied messages. This is the only
// operation that discards history.
func (a *Agent) LoadChatHistory(messages []core.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := make([]core.Message, 0, len(messages)+1)
	if len(a.history) > 0 && a.history[0].Role == core.RoleSystem {
		next = append(next, a.history[0])
	}
	next = append(next, core.CloneMessages(messages)...)
	a.history = next

	a.sink.PublishHistory(a.traceID, a.history)
}

func (a *Agent) lastByRole(role core.Role) (core.Message, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := len(a.history) - 1; i >= 0; i-- {
		if a.history[i].Role == role {
			return a.history[i].Clone(), true
		}
	}
	return core.Message{}, false
}

// appendLocked grows the history and publishes the update; the caller must
// hold the lock.
func (a *Agent) appendLocked(msg core.Message) {
	a.history = append(a.history, msg)
	a.sink.PublishHistory(a.traceID, a.history)
}

// addAgentMessageLocked appends an assistant message carrying a sanitized
// stamp of the in-flight run; the caller must hold the lock.
func (a *Agent) addAgentMessageLocked(text string) {
	msg := core.NewAssistantMessage(text)
	if a.lastRun != nil {
		stamp := a.lastRun.Clone()
		stamp.Sanitize(a.history)
		msg.RunMeta = stamp
	}
	a.appendLocked(msg)
}
