package model

import (
	"context"

	"github.com/kingbootoshi/cypher-core/core"
	"github.com/kingbootoshi/cypher-core/schema"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// ToolChoice instructs the provider whether a tool must be invoked.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide whether to call a tool.
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceRequired forces the model to call some tool.
	ToolChoiceRequired ToolChoice = "required"
	// ToolChoiceNone forbids tool calls.
	ToolChoiceNone ToolChoice = "none"
)

// Request captures the normalized model input produced by the agent core.
// Exactly one of two modes applies: tool mode (Tools non-empty, Schema
// ignored) or schema mode (Schema set, Tools empty). With neither, the
// request is a plain text completion.
type Request struct {
	System     string           `json:"system,omitempty"`
	Messages   []core.Message   `json:"messages"`
	Tools      []ToolDefinition `json:"tools,omitempty"`
	ToolChoice ToolChoice       `json:"tool_choice,omitempty"` // empty = provider default for the tool set
	Schema     *schema.Schema   `json:"-"`
}

// Response is the normalized completion returned by a provider. Absence of
// text or of a function call is expressed by zero values, never an error; a
// response carries at most one function call.
type Response struct {
	ID           string             `json:"id,omitempty"`
	Text         string             `json:"text,omitempty"`
	FunctionCall *core.FunctionCall `json:"function_call,omitempty"`
	Usage        *core.TokenUsage   `json:"usage,omitempty"`
}

// Info contains metadata and capabilities of a client implementation.
type Info struct {
	Provider string `json:"provider"` // "openai", "anthropic", "fireworks", etc.
	Model    string `json:"model"`
	// SupportsImages reports whether image attachments can be sent.
	SupportsImages bool `json:"supports_images"`
	// InlineSchema reports that the provider has no schema request parameter,
	// so structured output needs the schema injected as an instruction.
	InlineSchema bool `json:"inline_schema"`
}

// Client is the minimal interface the agent core requires to drive a chat
// completion. Implementations own transport and auth; failures surface as
// returned errors and are never retried here.
type Client interface {
	ChatCompletion(ctx context.Context, req *Request) (*Response, error)

	// Info returns information about the client implementation.
	Info() Info
}
