// Package cypher provides a high-level façade over the agent, runner, and
// chatlog packages enabling rapid construction of two-agent scripted
// conversations. Most applications interact with this package by:
//  1. Loading a config.Config from YAML (or building one in code)
//  2. Creating a Session via New() (optionally injecting clients, sinks, or
//     a recorder)
//  3. Calling Run() and inspecting the report and the conversation logs
//
// The façade delegates turn orchestration to runner.Runner while keeping
// setup ergonomics concise. All defaults are safe for local use: the
// conversation is logged to the configured directory and tracing goes to the
// supplied logger. Tests typically inject model.MockClient instances and an
// in-memory recorder.
package cypher

import (
	"context"
	"fmt"
	"os"

	"github.com/kingbootoshi/cypher-core/agent"
	"github.com/kingbootoshi/cypher-core/chatlog"
	"github.com/kingbootoshi/cypher-core/config"
	"github.com/kingbootoshi/cypher-core/core"
	"github.com/kingbootoshi/cypher-core/logging"
	"github.com/kingbootoshi/cypher-core/model"
	"github.com/kingbootoshi/cypher-core/model/anthropic"
	"github.com/kingbootoshi/cypher-core/model/fireworks"
	"github.com/kingbootoshi/cypher-core/model/openai"
	"github.com/kingbootoshi/cypher-core/runner"
	"github.com/kingbootoshi/cypher-core/trace"
)

// Options configures the Session built by New.
type Options struct {
	// Logger receives run and turn events (defaults to NoOp logger if nil).
	Logger logging.Logger

	// Sink receives agent trace updates in addition to the built-in log sink.
	Sink trace.Sink

	// Recorder overrides the file recorder derived from run.log_dir.
	Recorder chatlog.Recorder

	// Clients overrides the provider client per agent name. Agents without an
	// entry get a client built from their provider settings.
	Clients map[string]model.Client

	// Stop ends the conversation early; see runner.Options.
	Stop func(turn int, speaker *agent.Agent, reply core.Message) bool
}

// Session is the high-level façade aggregating two agents, their runner, and
// the conversation recorder.
type Session struct {
	first    *agent.Agent
	second   *agent.Agent
	runner   *runner.Runner
	recorder chatlog.Recorder
}

// New builds a Session from cfg. The configuration is validated, one agent is
// constructed per entry, and the agent named by run.starter is placed in the
// first-speaker seat.
func New(cfg *config.Config, optFns ...func(o *Options)) (*Session, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	sink := trace.Sink(trace.NewLogSink(opts.Logger))
	if opts.Sink != nil {
		sink = trace.Multi(opts.Sink, sink)
	}

	recorder := opts.Recorder
	if recorder == nil {
		var err error
		recorder, err = chatlog.NewFileRecorder(cfg.Run.LogDir)
		if err != nil {
			return nil, fmt.Errorf("open conversation log: %w", err)
		}
	}

	agents := make([]*agent.Agent, 0, len(cfg.Agents))
	for _, ac := range cfg.Agents {
		client := opts.Clients[ac.Name]
		if client == nil {
			var err error
			client, err = newClient(ac)
			if err != nil {
				return nil, err
			}
		}
		agents = append(agents, newAgent(ac, client, sink, opts.Logger))
	}

	first, second := agents[0], agents[1]
	if cfg.Starter() == second.Name() {
		first, second = second, first
	}

	r := runner.New(first, second, func(o *runner.Options) {
		o.MaxTurns = cfg.Run.MaxTurns
		o.Stop = opts.Stop
		o.Recorder = recorder
		o.Logger = opts.Logger
	})

	return &Session{first: first, second: second, runner: r, recorder: recorder}, nil
}

// Run executes the conversation until a stop condition is reached.
func (s *Session) Run(ctx context.Context) (*runner.Report, error) {
	return s.runner.Run(ctx)
}

// First returns the agent speaking first.
func (s *Session) First() *agent.Agent { return s.first }

// Second returns the responding agent.
func (s *Session) Second() *agent.Agent { return s.second }

// Agent returns the named agent, or nil when the name is unknown.
func (s *Session) Agent(name string) *agent.Agent {
	switch name {
	case s.first.Name():
		return s.first
	case s.second.Name():
		return s.second
	}
	return nil
}

// Recorder exposes the conversation recorder. Callers that let New build the
// default can assert to *chatlog.FileRecorder to read the log paths.
func (s *Session) Recorder() chatlog.Recorder { return s.recorder }

// Close releases the conversation log files.
func (s *Session) Close() error { return s.recorder.Close() }

func newAgent(ac config.AgentConfig, client model.Client, sink trace.Sink, logger logging.Logger) *agent.Agent {
	vars := make(agent.Vars, len(ac.Variables))
	for k, v := range ac.Variables {
		vars[k] = agent.NewVar(v)
	}

	history := make([]core.Message, 0, len(ac.History))
	for _, m := range ac.History {
		history = append(history, core.Message{Role: core.Role(m.Role), Content: m.Content})
	}

	return agent.New(ac.Name, ac.SystemPrompt, client, func(o *agent.Options) {
		o.Description = ac.Description
		o.Vars = vars
		o.Sink = sink
		o.Logger = logger
		o.History = history
	})
}

// newClient builds the provider client an agent entry asks for. The
// credential environment variable is checked up front so a misconfigured run
// fails at construction rather than on the first model call.
func newClient(ac config.AgentConfig) (model.Client, error) {
	switch ac.Provider {
	case config.ProviderOpenAI:
		if err := requireEnv("OPENAI_API_KEY", ac.Name); err != nil {
			return nil, err
		}
		return openai.New(func(o *openai.Options) {
			applyModelSettings(ac, &o.Model, &o.Temperature, &o.MaxCompletionTokens)
		}), nil

	case config.ProviderAnthropic:
		if err := requireEnv("ANTHROPIC_API_KEY", ac.Name); err != nil {
			return nil, err
		}
		return anthropic.New(func(o *anthropic.Options) {
			applyModelSettings(ac, &o.Model, &o.Temperature, &o.MaxTokens)
		}), nil

	case config.ProviderFireworks:
		if err := requireEnv("FIREWORKS_API_KEY", ac.Name); err != nil {
			return nil, err
		}
		return fireworks.New(func(o *fireworks.Options) {
			applyModelSettings(ac, &o.Model, &o.Temperature, &o.MaxTokens)
		}), nil

	default:
		return nil, fmt.Errorf("agent %q: unsupported provider %q", ac.Name, ac.Provider)
	}
}

// applyModelSettings copies the optional config fields over the provider
// defaults, leaving defaults in place where the config is silent.
func applyModelSettings(ac config.AgentConfig, modelName *string, temperature *float64, maxTokens *int64) {
	if ac.Model != "" {
		*modelName = ac.Model
	}
	if ac.Temperature != nil {
		*temperature = *ac.Temperature
	}
	if ac.MaxTokens > 0 {
		*maxTokens = ac.MaxTokens
	}
}

func requireEnv(key, agentName string) error {
	if os.Getenv(key) == "" {
		return fmt.Errorf("agent %q: %s is not set", agentName, key)
	}
	return nil
}
