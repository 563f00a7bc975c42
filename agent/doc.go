// Package agent implements the scripted conversation agent at the heart of
// cypher-core: a prompt template compiled with dynamic variables, an owned
// message history, and a run loop that performs exactly one model
// request/response cycle per invocation.
//
// An agent is constructed once with a fixed template and seeded history, then
// mutated in place across runs. Each run compiles the system prompt,
// dispatches the model call through an injected model.Client, interprets the
// response as plain text, a tool call or schema-constrained JSON, appends the
// outcome to the history and returns a uniform core.RunResult. Failures are
// data, not panics: transport errors and structured-output violations both
// surface as results with Success false.
//
// Agents publish their compiled prompt, history and per-run snapshots to a
// trace.Sink, and the runner package alternates two agents into a scripted
// conversation.
package agent
