package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/kingbootoshi/cypher-core/agent"
	"github.com/kingbootoshi/cypher-core/chatlog"
	"github.com/kingbootoshi/cypher-core/core"
	"github.com/kingbootoshi/cypher-core/logging"
)

// StopReason explains why a conversation loop ended.
type StopReason string

const (
	// StopRunFailed marks a speaker run that returned a failure result.
	StopRunFailed StopReason = "run_failed"
	// StopNoReply marks a speaker with no assistant message to hand over.
	StopNoReply StopReason = "no_reply"
	// StopMaxTurns marks an exhausted turn budget.
	StopMaxTurns StopReason = "max_turns"
	// StopRequested marks a termination requested by the Stop predicate.
	StopRequested StopReason = "stop_requested"
	// StopCancelled marks context cancellation.
	StopCancelled StopReason = "cancelled"
	// StopRecordFailed marks a persistence failure.
	StopRecordFailed StopReason = "record_failed"
)

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// MaxTurns bounds the conversation; 0 means unbounded.
	MaxTurns int
	// Stop is consulted after every successful turn; returning true ends the
	// conversation with StopRequested.
	Stop func(turn int, speaker *agent.Agent, reply core.Message) bool
	// Recorder persists full and turn records. Defaults to in-memory.
	Recorder chatlog.Recorder
	// Logger receives turn events.
	Logger logging.Logger
}

// Runner drives two agents in strict alternation. Each turn runs the current
// speaker, hands its newest assistant message to the listener as user input,
// persists the full history plus the produced turn pair, then swaps roles.
// The two agents are never run concurrently; the loop is the single thread of
// control.
type Runner struct {
	first  *agent.Agent
	second *agent.Agent

	maxTurns int
	stop     func(turn int, speaker *agent.Agent, reply core.Message) bool
	recorder chatlog.Recorder
	logger   logging.Logger
}

// Report summarizes a finished conversation.
type Report struct {
	// Turns counts completed turns.
	Turns int
	// Reason explains the termination.
	Reason StopReason
	// LastSpeaker names the agent that ran last.
	LastSpeaker string
	// LastResult is the outcome of the last run, failed or not.
	LastResult core.RunResult
}

// New constructs a Runner starting with first as the initial speaker.
func New(first, second *agent.Agent, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Recorder: chatlog.NewMemoryRecorder(),
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		first:    first,
		second:   second,
		maxTurns: opts.MaxTurns,
		stop:     opts.Stop,
		recorder: opts.Recorder,
		logger:   opts.Logger,
	}
}

// Run executes the conversation loop until a run fails, an agent has no reply
// to hand over, the turn budget is exhausted, the Stop predicate fires or ctx
// is cancelled. Protocol endings are reported in the Report; the returned
// error is non-nil only for cancellation and persistence failures.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	speaker, listener := r.first, r.second
	report := &Report{}

	for turn := 1; r.maxTurns == 0 || turn <= r.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			report.Reason = StopCancelled
			return report, err
		}

		start := time.Now()
		result := speaker.Run(ctx, "", nil)
		report.LastSpeaker = speaker.Name()
		report.LastResult = result

		if !result.Success {
			r.logger.Error("Turn failed",
				"turn", turn,
				"speaker", speaker.Name(),
				"error", result.Error,
			)
			report.Reason = StopRunFailed
			return report, nil
		}

		reply, ok := speaker.LastAgentMessage()
		if !ok {
			report.Reason = StopNoReply
			return report, nil
		}

		report.Turns = turn

		// The sole data channel between the two agents.
		listener.AddUserMessage(reply.Content)

		history := speaker.History()
		if err := r.recorder.RecordFull(history); err != nil {
			report.Reason = StopRecordFailed
			return report, fmt.Errorf("record full history: %w", err)
		}
		if userMsg, assistantMsg, ok := turnPair(history); ok {
			if err := r.recorder.RecordTurn(userMsg, assistantMsg); err != nil {
				report.Reason = StopRecordFailed
				return report, fmt.Errorf("record turn: %w", err)
			}
		}

		r.logger.Info("Turn completed",
			"turn", turn,
			"speaker", speaker.Name(),
			"duration_ms", time.Since(start).Milliseconds(),
		)

		if r.stop != nil && r.stop(turn, speaker, reply) {
			report.Reason = StopRequested
			return report, nil
		}

		speaker, listener = listener, speaker
	}

	report.Reason = StopMaxTurns
	return report, nil
}

// turnPair extracts the newest assistant message and its immediate
// predecessor by position. The pair is skipped when the assistant message is
// absent or sits at the head of the history.
func turnPair(history []core.Message) (core.Message, core.Message, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == core.RoleAssistant {
			if i == 0 {
				return core.Message{}, core.Message{}, false
			}
			return history[i-1], history[i], true
		}
	}
	return core.Message{}, core.Message{}, false
}
