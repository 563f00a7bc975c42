package tool

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kingbootoshi/cypher-core/core"
)

// RenderCall converts a function call into deterministic transcript text:
//
//	## USED TOOL: save_memory
//	NOTE: "remember the password"
//	PRIORITY: 2
//
// Argument keys are upper-cased and emitted in sorted order so the same call
// always renders identically regardless of argument ordering in the provider
// payload. Values carry their JSON encoding, which keeps textual values
// quoted and leaves numbers and booleans bare. Malformed argument JSON is an
// error; callers treat it as a failed run.
func RenderCall(call *core.FunctionCall) (string, error) {
	if call == nil {
		return "", fmt.Errorf("nil function call")
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("malformed arguments for %s: %w", call.Name, err)
		}
	}

	var b strings.Builder
	b.WriteString("## USED TOOL: ")
	b.WriteString(call.Name)

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.WriteString("\n")
		b.WriteString(strings.ToUpper(k))
		b.WriteString(": ")
		b.WriteString(renderValue(args[k]))
	}

	return b.String(), nil
}

func renderValue(v any) string {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(encoded)
}
