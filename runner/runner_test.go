package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingbootoshi/cypher-core/agent"
	"github.com/kingbootoshi/cypher-core/chatlog"
	"github.com/kingbootoshi/cypher-core/core"
	"github.com/kingbootoshi/cypher-core/internal/testutil"
	"github.com/kingbootoshi/cypher-core/model"
)

func scriptedAgent(name string, replies ...string) (*agent.Agent, *model.MockClient) {
	client := model.NewMockClient("mock", "test-model")
	client.EnqueueText(replies...)
	return agent.New(name, "You are "+name+".", client), client
}

func TestRunAlternatesStrictly(t *testing.T) {
	bob, _ := scriptedAgent("bob", "b1", "b2")
	alice, _ := scriptedAgent("alice", "a1", "a2")

	var order []string
	recorder := chatlog.NewMemoryRecorder()
	r := New(bob, alice, func(o *Options) {
		o.MaxTurns = 4
		o.Recorder = recorder
		o.Stop = func(turn int, speaker *agent.Agent, reply core.Message) bool {
			order = append(order, speaker.Name())
			return false
		}
	})

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopMaxTurns, report.Reason)
	assert.Equal(t, 4, report.Turns)
	assert.Equal(t, []string{"bob", "alice", "bob", "alice"}, order)

	assert.Len(t, recorder.Full(), 4)
	assert.Len(t, recorder.Turns(), 4)
}

func TestRunFeedsReplyToListener(t *testing.T) {
	bob, _ := scriptedAgent("bob", "hello alice")
	alice, _ := scriptedAgent("alice")

	r := New(bob, alice, func(o *Options) { o.MaxTurns = 1 })
	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Turns)
	assert.Equal(t, "bob", report.LastSpeaker)

	history := alice.History()
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleUser, history[1].Role)
	assert.Equal(t, "hello alice", history[1].Content)
}

func TestRunRecordsTurnPairs(t *testing.T) {
	// bob starts with an empty conversation; alice is seeded ending on a
	// user turn.
	bobClient := model.NewMockClient("mock", "test-model")
	bobClient.EnqueueText("b1")
	bob := agent.New("bob", "You are bob.", bobClient)

	aliceClient := model.NewMockClient("mock", "test-model")
	aliceClient.EnqueueText("a1")
	alice := agent.New("alice", "You are alice.", aliceClient, func(o *agent.Options) {
		o.History = []core.Message{core.NewUserMessage("seed question")}
	})

	recorder := chatlog.NewMemoryRecorder()
	r := New(bob, alice, func(o *Options) {
		o.MaxTurns = 2
		o.Recorder = recorder
	})

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.Turns)

	turns := recorder.Turns()
	require.Len(t, turns, 2)

	// First turn: bob had nothing before his reply except the system
	// message, which pairs by position.
	require.Len(t, turns[0].Messages, 2)
	assert.Equal(t, core.RoleSystem, turns[0].Messages[0].Role)
	assert.Equal(t, "b1", turns[0].Messages[1].Content)

	// Second turn: alice pairs bob's handed-over reply with her answer.
	require.Len(t, turns[1].Messages, 2)
	assert.Equal(t, core.RoleUser, turns[1].Messages[0].Role)
	assert.Equal(t, "b1", turns[1].Messages[0].Content)
	assert.Equal(t, "a1", turns[1].Messages[1].Content)

	// Full records cover the speaker's entire history at that point.
	full := recorder.Full()
	require.Len(t, full, 2)
	assert.Len(t, full[0].Messages, 2)
	assert.Len(t, full[1].Messages, 4)
}

func TestRunStopsOnFailure(t *testing.T) {
	bobClient := model.NewMockClient("mock", "test-model")
	bobClient.Fail(errors.New("boom"))
	bob := agent.New("bob", "You are bob.", bobClient)
	alice, _ := scriptedAgent("alice")

	r := New(bob, alice)
	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopRunFailed, report.Reason)
	assert.Equal(t, 0, report.Turns)
	assert.Equal(t, "bob", report.LastSpeaker)
	assert.Equal(t, "boom", report.LastResult.Error)
}

func TestRunStopsWithoutReply(t *testing.T) {
	// An empty rendered response appends no assistant message, so the
	// speaker has nothing to hand over.
	bob, _ := scriptedAgent("bob", "")
	alice, _ := scriptedAgent("alice")

	r := New(bob, alice)
	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopNoReply, report.Reason)
	assert.Equal(t, 0, report.Turns)
}

func TestRunStopPredicate(t *testing.T) {
	bob, _ := scriptedAgent("bob", "b1", "b2")
	alice, _ := scriptedAgent("alice", "a1")

	r := New(bob, alice, func(o *Options) {
		o.Stop = func(turn int, speaker *agent.Agent, reply core.Message) bool {
			return turn == 2
		}
	})

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StopRequested, report.Reason)
	assert.Equal(t, 2, report.Turns)
	assert.Equal(t, "alice", report.LastSpeaker)
}

func TestRunCancelledContext(t *testing.T) {
	bob, _ := scriptedAgent("bob", "b1")
	alice, _ := scriptedAgent("alice")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(bob, alice)
	report, err := r.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, StopCancelled, report.Reason)
	assert.Equal(t, 0, report.Turns)
}

func TestTurnPair(t *testing.T) {
	_, _, ok := turnPair([]core.Message{core.NewUserMessage("alone")})
	assert.False(t, ok)

	_, _, ok = turnPair([]core.Message{core.NewAssistantMessage("first")})
	assert.False(t, ok, "assistant at head has no predecessor")

	history := testutil.NewConversation().
		System("sys").
		User("q1").
		Assistant("a1").
		User("q2").
		Assistant("a2").
		User("dangling").
		Build()
	userMsg, assistantMsg, ok := turnPair(history)
	require.True(t, ok)
	assert.Equal(t, "q2", userMsg.Content)
	assert.Equal(t, "a2", assistantMsg.Content)
}
