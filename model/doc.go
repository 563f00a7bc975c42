// Package model defines the provider-agnostic abstractions and concrete
// helpers for interacting with language models inside cypher-core.
//
// Core goals:
//   - Normalize chat completion request/response shapes across vendors
//   - Normalize tool / function call representation (ToolDefinition, FunctionCall)
//   - Expose provider capabilities (image support, schema request support)
//     so the agent core can branch without per-provider knowledge
//   - Facilitate lightweight mocking for tests (MockClient)
//
// Providers (OpenAI, Anthropic, Fireworks) implement the Client interface
// from this package so higher layers (agents, the runner) remain decoupled
// from vendor SDKs.
package model
