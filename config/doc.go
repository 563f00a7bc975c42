// Package config loads and validates duologue run definitions from YAML.
//
// A configuration names exactly two agents, the provider and model each one
// talks to, and the loop settings (starter, turn limit, log directory). Load
// reads a file, fills in defaults, and validates the result; Validate can be
// used on its own for configurations built in code.
package config
