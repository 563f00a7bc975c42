// Package trace defines the observer boundary for agent activity.
//
// Agents publish their compiled system prompt, chat history, latest response
// and per-run snapshots to a Sink. Implementations decide what to do with the
// stream: MemorySink keeps the latest state per agent for inspection and
// dashboards, LogSink emits structured log events, NopSink discards
// everything. Sinks are passive observers; publishing never fails and never
// influences the run that produced the data.
package trace
