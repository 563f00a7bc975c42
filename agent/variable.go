package agent

// Var supplies the value for one {{placeholder}} in an agent's prompt
// template. Implementations are either fixed literals or zero-argument
// suppliers evaluated fresh on every prompt compilation.
type Var interface {
	Resolve() string
}

// StaticVar is a fixed literal variable value.
type StaticVar string

// Resolve implements Var.
func (v StaticVar) Resolve() string { return string(v) }

// DynamicVar is evaluated on every prompt compilation.
type DynamicVar func() string

// Resolve implements Var.
func (v DynamicVar) Resolve() string { return v() }

// NewVar creates a variable with a fixed value.
func NewVar(value string) Var { return StaticVar(value) }

// NewVarFunc creates a variable whose value is computed at compile time.
func NewVarFunc(fn func() string) Var { return DynamicVar(fn) }

// Vars maps placeholder keys to their suppliers.
type Vars map[string]Var

// Resolve materializes every registered variable into a plain string map.
// Per-call overrides win over registered variables with the same key.
func (v Vars) Resolve(overrides map[string]string) map[string]string {
	out := make(map[string]string, len(v)+len(overrides))
	for key, value := range v {
		if value == nil {
			continue
		}
		out[key] = value.Resolve()
	}
	for key, value := range overrides {
		out[key] = value
	}
	return out
}
