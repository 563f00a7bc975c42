package util

import "strings"

// RenderPrompt substitutes every {{key}} occurrence in text with the mapped
// value. Placeholders with no matching key are left verbatim, never an error;
// a prompt without placeholders passes through untouched.
// This lives in internal to avoid committing to public API stability prematurely.
func RenderPrompt(text string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(text, "{{") { // fast path: no template markers
		return text
	}
	out := text
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}
