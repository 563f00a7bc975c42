// Package tool implements the function / tool calling subsystem that lets
// agents advertise structured capabilities to model providers and render the
// resulting calls into deterministic transcript text.
//
// Tools here are declarations, not executables: scripted conversation agents
// never run a function themselves. A model response selecting a tool is
// rendered into the chat transcript (see RenderCall) so both sides of the
// conversation, and the persisted training data, record the attempted call.
package tool

import (
	"github.com/kingbootoshi/cypher-core/internal/util"
	"github.com/kingbootoshi/cypher-core/model"
)

// Descriptor declares a single callable capability.
//
// Descriptor implementations should:
//   - Provide clear, descriptive names (snake_case recommended)
//   - Define proper JSON schema for parameters
//   - Keep descriptions concise and imperative ("Save a note about …")
type Descriptor struct {
	// Tool identifier (snake_case recommended)
	name string
	// Human-readable description shown to models
	description string
	// JSON schema describing accepted arguments
	parameters map[string]any
}

// New constructs a Descriptor from an explicit schema.
//
// Example:
//
//	saveMemory := tool.New(
//	  "save_memory",
//	  "Persist a note for later conversations",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "note": map[string]any{"type": "string"},
//	    },
//	    "required": []string{"note"},
//	  },
//	)
func New(name, description string, parameters map[string]any) *Descriptor {
	return &Descriptor{
		name:        name,
		description: description,
		parameters:  parameters,
	}
}

// FromStruct derives the parameter schema from a struct using reflection. It
// is a convenience for simple argument containers and produces a schema
// equivalent to util.CreateSchema(structType).
//
// Example:
//
//	type SaveMemoryArgs struct {
//	  Note string `json:"note" description:"The note to persist"`
//	}
//
//	saveMemory := tool.FromStruct(
//	  "save_memory",
//	  "Persist a note for later conversations",
//	  SaveMemoryArgs{},
//	)
func FromStruct(name, description string, structType any) *Descriptor {
	return New(name, description, util.CreateSchema(structType))
}

// Name returns the unique tool name used in function call declarations.
func (t *Descriptor) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *Descriptor) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *Descriptor) Parameters() map[string]any { return t.parameters }

// Definition returns the provider-neutral wire form of this tool.
func (t *Descriptor) Definition() model.ToolDefinition {
	return model.ToolDefinition{
		Type: "function",
		Function: model.FunctionDefinition{
			Name:        t.name,
			Description: t.description,
			Parameters:  t.parameters,
		},
	}
}

// Definitions maps a list of descriptors into their wire form.
func Definitions(tools []*Descriptor) []model.ToolDefinition {
	if len(tools) == 0 {
		return nil
	}
	out := make([]model.ToolDefinition, len(tools))
	for i, t := range tools {
		out[i] = t.Definition()
	}
	return out
}
