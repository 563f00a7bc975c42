package core

// RunResult is the uniform outcome of a single agent run. Output holds either
// the rendered response text or, when the agent declares an output schema,
// the decoded value conforming to that schema. Failed schema runs carry an
// empty map; failed plain runs carry an empty string.
type RunResult struct {
	Success bool   `json:"success"`
	Output  any    `json:"output"`
	Error   string `json:"error,omitempty"`
}

// Text returns the output when the run produced text, or "" otherwise.
func (r RunResult) Text() string {
	if s, ok := r.Output.(string); ok {
		return s
	}
	return ""
}

// Object returns the output when the run produced a schema-decoded object,
// or nil otherwise.
func (r RunResult) Object() map[string]any {
	if m, ok := r.Output.(map[string]any); ok {
		return m
	}
	return nil
}
