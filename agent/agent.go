package agent

import (
	"sync"

	"github.com/kingbootoshi/cypher-core/core"
	"github.com/kingbootoshi/cypher-core/logging"
	"github.com/kingbootoshi/cypher-core/model"
	"github.com/kingbootoshi/cypher-core/schema"
	"github.com/kingbootoshi/cypher-core/tool"
	"github.com/kingbootoshi/cypher-core/trace"
)

// Options configure an Agent instance.
//
// Use functional options with New to override defaults.
type Options struct {
	// Description is published to the trace sink on registration.
	Description string
	// Vars are the registered prompt variables. Per-run overrides passed to
	// Run win over entries registered here.
	Vars Vars
	// Tools declare callable capabilities. A non-empty set switches every run
	// into tool mode.
	Tools []*tool.Descriptor
	// Schema constrains the final answer when no tools are defined.
	Schema *schema.Schema
	// Sink receives prompt, history and run snapshot updates.
	Sink trace.Sink
	// Logger receives structured run events.
	Logger logging.Logger
	// History seeds the conversation following the system message. Entries
	// should be user or assistant messages.
	History []core.Message
}

// Agent owns one side of a scripted conversation: its message history, its
// tool set, its output schema and a reference to the model client that
// answers for it. The client is injected and shared; the agent never manages
// its lifecycle.
//
// All exported methods are safe for concurrent use, though the intended usage
// is strictly sequential: one run at a time, driven by the runner package.
type Agent struct {
	name        string
	description string
	template    string
	client      model.Client
	vars        Vars
	tools       []*tool.Descriptor
	schema      *schema.Schema
	sink        trace.Sink
	logger      logging.Logger

	mu             sync.Mutex
	history        []core.Message
	traceID        string
	schemaInjected bool
	lastRun        *core.RunSnapshot
}

// New creates an agent with the given prompt template, bound to a model
// client. The history is seeded with the template as its system message
// followed by any messages from Options.History; the template is recompiled
// over that system slot on every run.
func New(name, template string, client model.Client, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Vars:   Vars{},
		Sink:   trace.NewNopSink(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &Agent{
		name:        name,
		description: opts.Description,
		template:    template,
		client:      client,
		vars:        opts.Vars,
		tools:       opts.Tools,
		schema:      opts.Schema,
		sink:        opts.Sink,
		logger:      opts.Logger,
	}

	a.history = append(a.history, core.NewSystemMessage(template))
	a.history = append(a.history, core.CloneMessages(opts.History)...)

	a.traceID = a.sink.RegisterAgent(name, opts.Description)
	a.sink.PublishHistory(a.traceID, a.history)

	return a
}

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.name }

// Description returns the agent's description.
func (a *Agent) Description() string { return a.description }

// TraceID returns the identifier issued by the trace sink on registration.
func (a *Agent) TraceID() string { return a.traceID }

// SystemPrompt returns the current system message content. Before the first
// run this is the raw template; afterwards it is the last compiled prompt.
func (a *Agent) SystemPrompt() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.history) > 0 && a.history[0].Role == core.RoleSystem {
		return a.history[0].Content
	}
	return a.template
}

// HasInjectedSchema reports whether the one-time inline schema message has
// been added to the history.
func (a *Agent) HasInjectedSchema() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.schemaInjected
}

// History returns a defensive copy of the full conversation history,
// system message first.
func (a *Agent) History() []core.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return core.CloneMessages(a.history)
}

// LastRun returns a copy of the snapshot of the most recent run, or nil if
// the agent has never run.
func (a *Agent) LastRun() *core.RunSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastRun.Clone()
}
