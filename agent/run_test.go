package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingbootoshi/cypher-core/core"
	"github.com/kingbootoshi/cypher-core/model"
	"github.com/kingbootoshi/cypher-core/schema"
	"github.com/kingbootoshi/cypher-core/tool"
	"github.com/kingbootoshi/cypher-core/trace"
)

func answerSchema(t *testing.T) *schema.Schema {
	t.Helper()
	return schema.MustNew("answer", "A located answer.", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer":     map[string]any{"type": "string"},
			"confidence": map[string]any{"type": "number"},
		},
		"required": []any{"answer", "confidence"},
	})
}

func TestRunPlainText(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.EnqueueText("hi")
	a := New("alice", "You are Alice.", client)

	result := a.Run(context.Background(), "hello", nil)
	require.True(t, result.Success)
	assert.Equal(t, "hi", result.Output)

	history := a.History()
	require.Len(t, history, 3)
	assert.Equal(t, core.RoleSystem, history[0].Role)
	assert.Equal(t, core.RoleUser, history[1].Role)
	assert.Equal(t, "hello", history[1].Content)
	assert.Equal(t, core.RoleAssistant, history[2].Role)
	assert.Equal(t, "hi", history[2].Content)
}

func TestRunWithoutInput(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.EnqueueText("monologue")
	a := New("alice", "You are Alice.", client)

	result := a.Run(context.Background(), "", nil)
	require.True(t, result.Success)

	history := a.History()
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleAssistant, history[1].Role)
}

func TestRunEmptyResponseAppendsNothing(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.EnqueueText("")
	a := New("alice", "You are Alice.", client)

	result := a.Run(context.Background(), "hello", nil)
	require.True(t, result.Success)
	assert.Equal(t, "", result.Output)

	history := a.History()
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleUser, history[1].Role)
}

func TestRunCompilesPromptVariables(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.EnqueueText("ok", "ok")
	a := New("alice", "You are {{name}} in {{city}}.", client, func(o *Options) {
		o.Vars = Vars{"name": NewVar("Alice")}
	})

	a.Run(context.Background(), "hi", nil)
	prompt := a.History()[0].Content
	assert.Contains(t, prompt, "Alice")
	assert.Contains(t, prompt, "{{city}}", "unresolved placeholders stay verbatim")

	// Call-time overrides win over registered variables.
	a.Run(context.Background(), "hi", map[string]string{"name": "Mallory", "city": "Berlin"})
	prompt = a.SystemPrompt()
	assert.Contains(t, prompt, "Mallory")
	assert.Contains(t, prompt, "Berlin")
}

func TestRunDynamicVarRecompiledEachRun(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.EnqueueText("ok", "ok")

	calls := 0
	a := New("alice", "Run number {{n}}.", client, func(o *Options) {
		o.Vars = Vars{"n": NewVarFunc(func() string {
			calls++
			return map[int]string{1: "one", 2: "two"}[calls]
		})}
	})

	a.Run(context.Background(), "hi", nil)
	assert.Contains(t, a.History()[0].Content, "one")
	a.Run(context.Background(), "hi", nil)
	assert.Contains(t, a.History()[0].Content, "two")
}

func TestRunSendsSystemSeparately(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.EnqueueText("ok")
	a := New("alice", "You are Alice.", client)

	a.Run(context.Background(), "hello", nil)

	reqs := client.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "You are Alice.", reqs[0].System)
	for _, m := range reqs[0].Messages {
		assert.NotEqual(t, core.RoleSystem, m.Role)
	}
}

func TestRunClientFailure(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.Fail(errors.New("boom"))
	a := New("alice", "You are Alice.", client)

	result := a.Run(context.Background(), "hello", nil)
	require.False(t, result.Success)
	assert.Equal(t, "boom", result.Error)
	assert.Equal(t, "", result.Output)

	// The input stays in history; no assistant message was produced.
	history := a.History()
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleUser, history[1].Role)
}

func TestRunSchemaSuccess(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.EnqueueText(`{"answer":"Paris","confidence":0.9}`)
	a := New("alice", "Answer questions.", client, func(o *Options) {
		o.Schema = answerSchema(t)
	})

	result := a.Run(context.Background(), "Capital of France?", nil)
	require.True(t, result.Success)

	output := result.Object()
	require.NotNil(t, output)
	assert.Equal(t, "Paris", output["answer"])
	assert.Equal(t, 0.9, output["confidence"])

	// Schema mode appends the format contract to the compiled prompt.
	assert.Contains(t, a.History()[0].Content, "JSON")
}

func TestRunSchemaFencedOutput(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.EnqueueText("```json\n{\"answer\":\"Paris\",\"confidence\":0.9}\n```")
	a := New("alice", "Answer questions.", client, func(o *Options) {
		o.Schema = answerSchema(t)
	})

	result := a.Run(context.Background(), "Capital of France?", nil)
	require.True(t, result.Success)
	assert.Equal(t, "Paris", result.Object()["answer"])
}

func TestRunSchemaInvalidText(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.EnqueueText("not json")
	a := New("alice", "Answer questions.", client, func(o *Options) {
		o.Schema = answerSchema(t)
	})

	result := a.Run(context.Background(), "Capital of France?", nil)
	require.False(t, result.Success)
	assert.Equal(t, "Failed to parse structured output", result.Error)
	assert.Equal(t, map[string]any{}, result.Output)

	// The raw text still lands in history; only the result reports failure.
	last, ok := a.LastAgentMessage()
	require.True(t, ok)
	assert.Equal(t, "not json", last.Content)
}

func TestRunSchemaViolatingText(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.EnqueueText(`{"answer":"Paris"}`)
	a := New("alice", "Answer questions.", client, func(o *Options) {
		o.Schema = answerSchema(t)
	})

	result := a.Run(context.Background(), "Capital of France?", nil)
	require.False(t, result.Success)
	assert.Equal(t, "Failed to parse structured output", result.Error)
}

func TestRunSchemaFunctionCallAccepted(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.Enqueue(model.MockFunctionCall("emit_answer", `{"answer":"Paris","confidence":0.9}`))
	a := New("alice", "Answer questions.", client, func(o *Options) {
		o.Schema = answerSchema(t)
	})

	// An unexpected function call in schema mode still succeeds when its
	// arguments satisfy the schema.
	result := a.Run(context.Background(), "Capital of France?", nil)
	require.True(t, result.Success)
	assert.Equal(t, "Paris", result.Object()["answer"])
}

func TestRunSchemaFunctionCallRejected(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.Enqueue(model.MockFunctionCall("emit_answer", `{"answer":42}`))
	a := New("alice", "Answer questions.", client, func(o *Options) {
		o.Schema = answerSchema(t)
	})

	result := a.Run(context.Background(), "Capital of France?", nil)
	require.False(t, result.Success)
	assert.Equal(t, "Failed to parse structured output from functionCall", result.Error)
	assert.Equal(t, map[string]any{}, result.Output)
}

func TestRunInlineSchemaInjectionOnce(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.SetInfo(model.Info{Provider: "mock", Model: "test-model", SupportsImages: true, InlineSchema: true})
	client.EnqueueText(`{"answer":"Paris","confidence":0.9}`, `{"answer":"London","confidence":0.8}`)
	a := New("alice", "Answer questions.", client, func(o *Options) {
		o.Schema = answerSchema(t)
	})

	require.False(t, a.HasInjectedSchema())
	a.Run(context.Background(), "Capital of France?", nil)
	require.True(t, a.HasInjectedSchema())

	history := a.History()
	require.Len(t, history, 4)
	assert.Equal(t, core.RoleAssistant, history[1].Role, "injection precedes the input")
	assert.Contains(t, history[1].Content, "JSON object")
	assert.Equal(t, core.RoleUser, history[2].Role)

	a.Run(context.Background(), "Capital of England?", nil)

	injected := 0
	for _, m := range a.History() {
		if strings.Contains(m.Content, "JSON object conforming") {
			injected++
		}
	}
	assert.Equal(t, 1, injected, "injection happens at most once per agent lifetime")
}

func TestRunToolMode(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.Enqueue(model.MockFunctionCall("save_memory", `{"note":"remember this","priority":2}`))

	saveMemory := tool.New("save_memory", "Persist a note.", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"note":     map[string]any{"type": "string"},
			"priority": map[string]any{"type": "number"},
		},
	})
	a := New("alice", "You are Alice.", client, func(o *Options) {
		o.Tools = []*tool.Descriptor{saveMemory}
	})

	result := a.Run(context.Background(), "note this down", nil)
	require.True(t, result.Success)
	assert.Equal(t, "## USED TOOL: save_memory\nNOTE: \"remember this\"\nPRIORITY: 2", result.Output)

	last, ok := a.LastAgentMessage()
	require.True(t, ok)
	assert.Equal(t, result.Output, last.Content)

	// The request carried the tool definitions.
	reqs := client.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Tools, 1)
	assert.Equal(t, "save_memory", reqs[0].Tools[0].Function.Name)
	assert.Nil(t, reqs[0].Schema)
}

func TestRunToolModeMalformedArguments(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.Enqueue(model.MockFunctionCall("save_memory", "not json"))
	a := New("alice", "You are Alice.", client, func(o *Options) {
		o.Tools = []*tool.Descriptor{tool.New("save_memory", "", nil)}
	})

	result := a.Run(context.Background(), "note this down", nil)
	require.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Equal(t, "", result.Output)
}

func TestRunToolModeIgnoresSchema(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.EnqueueText("just text")
	a := New("alice", "You are Alice.", client, func(o *Options) {
		o.Tools = []*tool.Descriptor{tool.New("noop", "", nil)}
		o.Schema = answerSchema(t)
	})

	result := a.Run(context.Background(), "hello", nil)
	require.True(t, result.Success)
	assert.Equal(t, "just text", result.Output)

	reqs := client.Requests()
	require.Len(t, reqs, 1)
	assert.Nil(t, reqs[0].Schema, "schema is ignored in tool mode")
}

func TestRunStampsAssistantMessage(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.EnqueueText("hi")
	a := New("alice", "You are Alice.", client)

	a.Run(context.Background(), "hello", nil)

	last, ok := a.LastAgentMessage()
	require.True(t, ok)
	require.NotNil(t, last.RunMeta)
	assert.NotEmpty(t, last.RunMeta.RunID)
	assert.Equal(t, "hello", last.RunMeta.Input)
	for _, m := range last.RunMeta.History {
		assert.Nil(t, m.RunMeta, "stamped snapshots carry no nested snapshots")
		assert.Nil(t, m.Image)
	}
}

func TestRunPublishesToSink(t *testing.T) {
	sink := trace.NewMemorySink()
	client := model.NewMockClient("mock", "test-model")
	client.EnqueueText("hi")
	a := New("alice", "You are Alice.", client, func(o *Options) {
		o.Sink = sink
	})

	result := a.Run(context.Background(), "hello", nil)
	require.True(t, result.Success)

	state, ok := sink.Agent(a.TraceID())
	require.True(t, ok)
	assert.Equal(t, "You are Alice.", state.SystemPrompt)
	assert.Equal(t, "hi", state.LastResponse)
	require.NotNil(t, state.LastRun)
	assert.True(t, state.LastRun.Success)
	require.Len(t, state.History, 3)
}

func TestRunSnapshotTruncatesHistory(t *testing.T) {
	client := model.NewMockClient("mock", "test-model")
	client.EnqueueText("reply")
	a := New("alice", "You are Alice.", client)

	for i := 0; i < 15; i++ {
		a.AddUserMessage("filler")
		a.AddAgentMessage("filler reply")
	}

	a.Run(context.Background(), "hello", nil)

	snap := a.LastRun()
	require.NotNil(t, snap)
	assert.Len(t, snap.History, core.SnapshotHistoryLimit)
}
