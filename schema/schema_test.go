package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answerSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := New("answer", "A factual answer with confidence.", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answer":     map[string]any{"type": "string"},
			"confidence": map[string]any{"type": "number"},
		},
		"required": []string{"answer", "confidence"},
	})
	require.NoError(t, err)
	return s
}

func TestNew_InvalidDefinition(t *testing.T) {
	_, err := New("bad", "", map[string]any{
		"type": 42, // type must be a string or array of strings
	})
	require.Error(t, err)
}

func TestParse_Valid(t *testing.T) {
	s := answerSchema(t)
	out, err := s.Parse(`{"answer":"Paris","confidence":0.9}`)
	require.NoError(t, err)
	assert.Equal(t, "Paris", out["answer"])
	assert.Equal(t, 0.9, out["confidence"])
}

func TestParse_StripsCodeFences(t *testing.T) {
	s := answerSchema(t)
	out, err := s.Parse("```json\n{\"answer\":\"Paris\",\"confidence\":0.9}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Paris", out["answer"])
}

func TestParse_InvalidJSON(t *testing.T) {
	s := answerSchema(t)
	_, err := s.Parse("not json")
	require.Error(t, err)
}

func TestParse_SchemaViolation(t *testing.T) {
	s := answerSchema(t)
	_, err := s.Parse(`{"answer":"Paris"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "answer")
}

func TestValidate(t *testing.T) {
	s := answerSchema(t)
	require.NoError(t, s.Validate(map[string]any{"answer": "Paris", "confidence": 0.9}))
	require.Error(t, s.Validate(map[string]any{"answer": 7, "confidence": 0.9}))
}

func TestFromStruct(t *testing.T) {
	type weather struct {
		City    string  `json:"city" description:"city name"`
		Celsius float64 `json:"celsius"`
	}
	s, err := FromStruct("weather", "Current conditions.", weather{})
	require.NoError(t, err)

	out, err := s.Parse(`{"city":"Oslo","celsius":-3.5}`)
	require.NoError(t, err)
	assert.Equal(t, "Oslo", out["city"])

	_, err = s.Parse(`{"city":"Oslo"}`)
	require.Error(t, err)
}

func TestEmpty(t *testing.T) {
	s := answerSchema(t)
	if len(s.Empty()) != 0 {
		t.Fatalf("expected empty map, got %#v", s.Empty())
	}
}

func TestInstruction(t *testing.T) {
	s := answerSchema(t)
	instr := s.Instruction()
	assert.Contains(t, instr, `"answer"`)
	assert.Contains(t, instr, "JSON Schema:")
	assert.Contains(t, instr, "JSON only")
	if !strings.Contains(instr, "answer") {
		t.Fatalf("instruction should name the contract fields: %s", instr)
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":               `{"a":1}`,
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}
	for in, want := range cases {
		if got := stripCodeFences(in); got != want {
			t.Fatalf("stripCodeFences(%q) = %q, want %q", in, got, want)
		}
	}
}
