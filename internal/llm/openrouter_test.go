package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	defaults := DefaultConfig().OpenRouter

	tests := []struct {
		name      string
		cfg       OpenRouterConfig
		wantModel string
		wantErr   bool
	}{
		{"default model", OpenRouterConfig{APIKey: "sk-or-test", Model: defaults.Model}, "google/gemini-2.5-flash", false},
		{"vendor prefix kept", OpenRouterConfig{APIKey: "sk-or-test", Model: "openai/gpt-4o-mini"}, "openai/gpt-4o-mini", false},
		{"missing key", OpenRouterConfig{Model: defaults.Model}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewOpenRouterProvider(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.ModelID() != tt.wantModel {
				t.Errorf("model = %q, want %q", p.ModelID(), tt.wantModel)
			}
		})
	}
}

func TestOpenRouterDefaultModelIsPriced(t *testing.T) {
	if LookupCost(DefaultConfig().OpenRouter.Model) == nil {
		t.Fatal("default OpenRouter model has no cost entry")
	}
}

// newOpenRouterServer answers chat completions with content and records the
// request path and model.
func newOpenRouterServer(t *testing.T, content string) (*OpenRouterProvider, *string, *string) {
	t.Helper()
	var path, model string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		model = body.Model

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "gen-test",
			"object": "chat.completion",
			"model":  body.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 30, "completion_tokens": 12, "total_tokens": 42},
		})
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "google/gemini-2.5-flash",
		BaseURL: server.URL + "/api/v1",
	})
	if err != nil {
		t.Fatalf("NewOpenRouterProvider: %v", err)
	}
	return p, &path, &model
}

func TestOpenRouterProvider_Recommendation(t *testing.T) {
	p, path, model := newOpenRouterServer(t, `{"recommendation":"Practice fractions next."}`)

	resp, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Suggest one next step."}},
		Schema:   recommendationSchema(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *path != "/api/v1/chat/completions" {
		t.Errorf("path = %q", *path)
	}
	if *model != "google/gemini-2.5-flash" {
		t.Errorf("model sent = %q", *model)
	}
	if resp.Usage.TotalTokens != 42 {
		t.Errorf("total tokens = %d, want 42", resp.Usage.TotalTokens)
	}
}

func TestOpenRouterProvider_RecommendationBreaksSchema(t *testing.T) {
	p, _, _ := newOpenRouterServer(t, `{"recommendation":"Practice fractions next.","subject":"History"}`)

	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Suggest one next step."}},
		Schema:   recommendationSchema(),
	})
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}
