// Package core provides the foundational domain types shared across
// cypher-core. It defines the core abstractions for:
//
//   - Messages (ordered conversation history entries with role semantics)
//   - Function calls and token usage (normalized across model providers)
//   - Run results (the uniform outcome of a single agent run)
//   - Run snapshots (bounded diagnostic records attached to assistant output)
//
// The package intentionally keeps implementation concerns (providers, the
// agent run loop, orchestration, persistence) out of scope so that every
// other package can depend on it without cycles.
package core
