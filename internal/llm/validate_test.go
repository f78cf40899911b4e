package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func recommendationSchema() *Schema {
	return &Schema{
		Name:        "recommendation",
		Description: "One learning recommendation",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"recommendation": map[string]any{"type": "string", "minLength": 1},
				"subject": map[string]any{
					"type": "string",
					"enum": []any{"Computer Science", "Mathematics", "Language", "Science"},
				},
			},
			"required":             []any{"recommendation"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"minimal", `{"recommendation":"Practice fractions."}`, true},
		{"with subject", `{"recommendation":"Review loops.","subject":"Computer Science"}`, true},
		{"missing field", `{}`, false},
		{"empty text", `{"recommendation":""}`, false},
		{"wrong type", `{"recommendation":3}`, false},
		{"unknown subject", `{"recommendation":"Read.","subject":"History"}`, false},
		{"extra field", `{"recommendation":"Read.","score":10}`, false},
		{"plain text", `Practice fractions.`, false},
		{"empty", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(recommendationSchema(), json.RawMessage(tt.raw))
			if tt.valid {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("err = %v, want *ErrInvalidResponse", err)
			}
			if string(invErr.Content) != tt.raw {
				t.Errorf("content = %q, want %q", invErr.Content, tt.raw)
			}
			if !strings.Contains(err.Error(), "recommendation") {
				t.Errorf("error %q should name the schema", err)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not json at all`)); err != nil {
		t.Fatalf("nil schema should accept anything, got: %v", err)
	}
}

func TestValidateResponse_SameNameDifferentDefinition(t *testing.T) {
	loose := recommendationSchema()
	strict := recommendationSchema()
	strict.Definition["required"] = []any{"recommendation", "subject"}

	raw := json.RawMessage(`{"recommendation":"Practice fractions."}`)
	if err := validateResponse(loose, raw); err != nil {
		t.Fatalf("loose: %v", err)
	}
	if err := validateResponse(strict, raw); err == nil {
		t.Fatal("strict schema reused the loose validator")
	}
	if err := validateResponse(loose, raw); err != nil {
		t.Fatalf("loose after strict: %v", err)
	}
}

func TestValidateResponse_BadSchema(t *testing.T) {
	bad := &Schema{
		Name:       "broken",
		Definition: map[string]any{"type": "no-such-type"},
	}
	err := validateResponse(bad, json.RawMessage(`{}`))
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) || !strings.Contains(err.Error(), "broken") {
		t.Fatalf("err = %v, want *ErrInvalidResponse naming the schema", err)
	}
}

func TestValidateResponse_LargeIntegers(t *testing.T) {
	s := &Schema{
		Name: "xp-award",
		Definition: map[string]any{
			"type":       "object",
			"properties": map[string]any{"xp": map[string]any{"type": "integer", "minimum": 0}},
			"required":   []any{"xp"},
		},
	}
	if err := validateResponse(s, json.RawMessage(`{"xp":9007199254740993}`)); err != nil {
		t.Fatalf("large integer: %v", err)
	}
	if err := validateResponse(s, json.RawMessage(`{"xp":1.5}`)); err == nil {
		t.Fatal("fractional xp should be rejected")
	}
}
