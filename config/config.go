package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported model providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderFireworks = "fireworks"
)

// Config is the top-level duologue configuration.
type Config struct {
	Run    RunConfig     `yaml:"run"`
	Agents []AgentConfig `yaml:"agents"`
}

// RunConfig controls the conversation loop.
type RunConfig struct {
	// Starter names the agent that speaks first. Empty means the first
	// agent in the list.
	Starter string `yaml:"starter,omitempty"`
	// MaxTurns caps the number of turns. Zero means no cap.
	MaxTurns int `yaml:"max_turns,omitempty"`
	// LogDir is the directory the conversation logs are written to.
	LogDir string `yaml:"log_dir,omitempty"`
}

// AgentConfig defines one scripted participant.
type AgentConfig struct {
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description,omitempty"`
	Provider     string            `yaml:"provider"`
	Model        string            `yaml:"model,omitempty"`
	Temperature  *float64          `yaml:"temperature,omitempty"`
	MaxTokens    int64             `yaml:"max_tokens,omitempty"`
	SystemPrompt string            `yaml:"system_prompt"`
	Variables    map[string]string `yaml:"variables,omitempty"`
	History      []MessageConfig   `yaml:"history,omitempty"`
}

// MessageConfig seeds one prior message into an agent's history.
type MessageConfig struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

// Defaults returns a configuration with the built-in defaults applied.
func Defaults() *Config {
	return &Config{
		Run: RunConfig{
			MaxTurns: 10,
			LogDir:   "logs",
		},
	}
}

// Load reads a YAML configuration from path, applies defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a
// *ValidationError when one or more problems are found, allowing callers
// to report all issues at once.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateRun(cfg, ve)
	validateAgents(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateRun(cfg *Config, ve *ValidationError) {
	if cfg.Run.MaxTurns < 0 {
		ve.Add("run.max_turns must be >= 0")
	}
	if cfg.Run.Starter == "" {
		return
	}
	for _, a := range cfg.Agents {
		if a.Name == cfg.Run.Starter {
			return
		}
	}
	ve.Add("run.starter %q does not match any agent name", cfg.Run.Starter)
}

func validateAgents(cfg *Config, ve *ValidationError) {
	if len(cfg.Agents) != 2 {
		ve.Add("agents must list exactly two agents, got %d", len(cfg.Agents))
	}

	seen := map[string]bool{}
	for i, a := range cfg.Agents {
		if a.Name == "" {
			ve.Add("agents[%d].name must not be empty", i)
		} else if seen[a.Name] {
			ve.Add("agents[%d].name %q is used more than once", i, a.Name)
		}
		seen[a.Name] = true

		switch a.Provider {
		case ProviderOpenAI, ProviderAnthropic, ProviderFireworks:
		case "":
			ve.Add("agents[%d].provider must not be empty", i)
		default:
			ve.Add("agents[%d].provider %q is not supported", i, a.Provider)
		}

		if a.SystemPrompt == "" {
			ve.Add("agents[%d].system_prompt must not be empty", i)
		}
		if a.Temperature != nil && (*a.Temperature < 0 || *a.Temperature > 2) {
			ve.Add("agents[%d].temperature must be between 0 and 2", i)
		}
		if a.MaxTokens < 0 {
			ve.Add("agents[%d].max_tokens must be >= 0", i)
		}

		for j, m := range a.History {
			if m.Role != "user" && m.Role != "assistant" {
				ve.Add("agents[%d].history[%d].role must be \"user\" or \"assistant\", got %q", i, j, m.Role)
			}
		}
	}
}

// Starter returns the configured starting agent name, defaulting to the
// first agent in the list.
func (c *Config) Starter() string {
	if c.Run.Starter != "" {
		return c.Run.Starter
	}
	if len(c.Agents) > 0 {
		return c.Agents[0].Name
	}
	return ""
}
