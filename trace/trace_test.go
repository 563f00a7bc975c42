package trace

import (
	"testing"

	"github.com/kingbootoshi/cypher-core/core"
	"github.com/kingbootoshi/cypher-core/internal/testutil"
	"github.com/kingbootoshi/cypher-core/logging"
)

func TestMemorySinkPublish(t *testing.T) {
	sink := NewMemorySink()
	id := sink.RegisterAgent("alice", "test agent")
	if id == "" {
		t.Fatalf("expected non-empty agent id")
	}

	sink.PublishSystemPrompt(id, "You are Alice.")
	sink.PublishHistory(id, testutil.NewConversation().
		System("You are Alice.").
		User("hello").
		Build())
	sink.PublishResponse(id, "hi there")
	sink.PublishRun(id, &core.RunSnapshot{RunID: "r1", Success: true})

	state, ok := sink.Agent(id)
	if !ok {
		t.Fatalf("expected registered agent")
	}
	if state.Name != "alice" || state.SystemPrompt != "You are Alice." {
		t.Fatalf("unexpected state: %#v", state)
	}
	if len(state.History) != 2 {
		t.Fatalf("expected 2 history messages, got %d", len(state.History))
	}
	if state.LastResponse != "hi there" {
		t.Fatalf("unexpected response: %q", state.LastResponse)
	}
	if state.LastRun == nil || state.LastRun.RunID != "r1" {
		t.Fatalf("unexpected run: %#v", state.LastRun)
	}
	if state.UpdatedAt.IsZero() {
		t.Fatalf("expected update timestamp")
	}
}

func TestMemorySinkUnknownIDIgnored(t *testing.T) {
	sink := NewMemorySink()
	sink.PublishResponse("missing", "ignored")
	if _, ok := sink.Agent("missing"); ok {
		t.Fatalf("unknown id must not create state")
	}
	if got := len(sink.Agents()); got != 0 {
		t.Fatalf("expected no agents, got %d", got)
	}
}

func TestMemorySinkCloneIsolation(t *testing.T) {
	sink := NewMemorySink()
	id := sink.RegisterAgent("alice", "")

	history := []core.Message{core.NewUserMessage("original")}
	sink.PublishHistory(id, history)
	history[0].Content = "mutated"

	state, _ := sink.Agent(id)
	if state.History[0].Content != "original" {
		t.Fatalf("sink state shares caller memory")
	}

	state.History[0].Content = "mutated again"
	fresh, _ := sink.Agent(id)
	if fresh.History[0].Content != "original" {
		t.Fatalf("returned state shares sink memory")
	}
}

func TestMultiSinkFanOut(t *testing.T) {
	first := NewMemorySink()
	second := NewMemorySink()
	sink := Multi(first, second)

	id := sink.RegisterAgent("bob", "")
	sink.PublishResponse(id, "fanned out")

	for _, child := range []*MemorySink{first, second} {
		agents := child.Agents()
		if len(agents) != 1 {
			t.Fatalf("expected 1 agent in child sink, got %d", len(agents))
		}
		if agents[0].LastResponse != "fanned out" {
			t.Fatalf("publish did not reach child: %#v", agents[0])
		}
	}
}

func TestMultiSinkUnknownIDIgnored(t *testing.T) {
	child := NewMemorySink()
	sink := Multi(child)
	sink.PublishResponse("missing", "ignored")
	if got := len(child.Agents()); got != 0 {
		t.Fatalf("expected no agents, got %d", got)
	}
}

func TestLogSink(t *testing.T) {
	sink := NewLogSink(logging.NoOpLogger{})
	id := sink.RegisterAgent("carol", "")
	if id == "" {
		t.Fatalf("expected non-empty agent id")
	}

	// Publications must not panic on nil runs or unknown ids.
	sink.PublishRun(id, nil)
	sink.PublishRun(id, &core.RunSnapshot{RunID: "r1", Success: false, Error: "boom"})
	sink.PublishSystemPrompt("missing", "prompt")
}
