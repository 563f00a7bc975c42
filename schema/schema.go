// Package schema defines structured output contracts: JSON Schema shapes an
// agent's final answer must satisfy when it declares no tools. Definitions
// are compiled once at construction and reused for every validation.
package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonschema"

	"github.com/kingbootoshi/cypher-core/internal/util"
)

// Schema is a compiled structural contract with a name and description, used
// both in provider request parameters and in prompt instructions.
type Schema struct {
	name        string
	description string
	definition  map[string]any
	compiled    *jsonschema.Schema
}

// New compiles a schema from its raw JSON Schema definition map.
func New(name, description string, definition map[string]any) (*Schema, error) {
	raw, err := json.Marshal(definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiled, err := compiler.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", name, err)
	}
	return &Schema{
		name:        name,
		description: description,
		definition:  definition,
		compiled:    compiled,
	}, nil
}

// MustNew is like New but panics on compile failure. Intended for package
// level contract declarations.
func MustNew(name, description string, definition map[string]any) *Schema {
	s, err := New(name, description, definition)
	if err != nil {
		panic(err)
	}
	return s
}

// FromStruct derives the definition from a Go struct using reflection over
// json and description tags, then compiles it.
func FromStruct(name, description string, v any) (*Schema, error) {
	return New(name, description, util.CreateSchema(v))
}

// Name returns the contract name.
func (s *Schema) Name() string { return s.name }

// Description returns the human-readable contract description.
func (s *Schema) Description() string { return s.description }

// Definition returns the raw JSON Schema definition map.
func (s *Schema) Definition() map[string]any { return s.definition }

// Empty returns the zero value of the contract shape. Failed schema runs
// carry it as their output.
func (s *Schema) Empty() map[string]any { return map[string]any{} }

// Validate checks a decoded value against the compiled schema.
func (s *Schema) Validate(v any) error {
	result := s.compiled.Validate(v)
	if !result.IsValid() {
		return fmt.Errorf("schema %q violated: %s", s.name, result.Error())
	}
	return nil
}

// Parse decodes text as a JSON object and validates it against the schema.
// Markdown code fences wrapping the payload are tolerated and stripped.
func (s *Schema) Parse(text string) (map[string]any, error) {
	raw := stripCodeFences(text)
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("decode structured output: %w", err)
	}
	if err := s.Validate(decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// Instruction renders the prompt text describing the contract. The agent core
// appends it to compiled system prompts in schema mode and injects it inline
// for providers without a schema request parameter.
func (s *Schema) Instruction() string {
	pretty, err := json.MarshalIndent(s.definition, "", "  ")
	if err != nil {
		pretty = []byte("{}")
	}
	var b strings.Builder
	b.WriteString("Your response must be a single JSON object")
	if s.name != "" {
		fmt.Fprintf(&b, " satisfying the %q contract", s.name)
	}
	b.WriteString(".")
	if s.description != "" {
		b.WriteString(" ")
		b.WriteString(s.description)
	}
	b.WriteString("\nJSON Schema:\n")
	b.Write(pretty)
	b.WriteString("\nRespond with JSON only: no prose, no code fences.")
	return b.String()
}

// codeFenceRe matches markdown code fences wrapping JSON.
var codeFenceRe = regexp.MustCompile(`(?si)^` + "```" + `(?:json)?\s*(.*?)\s*` + "```" + `$`)

// stripCodeFences removes markdown code fences if the model wrapped its output.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return s
}
