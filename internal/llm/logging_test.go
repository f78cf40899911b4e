package llm

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aischool/aischool/internal/store"
)

func openEventRepo(t *testing.T) store.EventRepo {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "llm.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s.EventRepo()
}

func TestLogging_RecordsSuccess(t *testing.T) {
	events := openEventRepo(t)
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"recommendation":"Try the Python quiz."}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 8},
	})
	p := WithLogging(mock, ProviderMock, events, nil)

	ctx := WithPurpose(context.Background(), "recommendation")
	_, err := p.Generate(ctx, Request{
		System:      "sys",
		Messages:    []Message{{Role: RoleUser, Content: "What next?"}},
		Schema:      &Schema{Name: "recommendation", Definition: map[string]any{"type": "object"}},
		Temperature: 0.8,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got, err := events.QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil || len(got) != 1 {
		t.Fatalf("events = %+v, %v", got, err)
	}
	e := got[0]
	if e.Provider != "mock" || e.Model != "mock" || e.Purpose != "recommendation" || !e.Success {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.InputTokens != 12 || e.OutputTokens != 8 {
		t.Errorf("tokens = %d/%d", e.InputTokens, e.OutputTokens)
	}
	for _, want := range []string{"[system]\nsys", "[user]\nWhat next?", "[schema: recommendation]", "[temperature: 0.8]"} {
		if !strings.Contains(e.RequestBody, want) {
			t.Errorf("request body missing %q:\n%s", want, e.RequestBody)
		}
	}
	if e.ResponseBody != `{"recommendation":"Try the Python quiz."}` {
		t.Errorf("response body = %q", e.ResponseBody)
	}
}

func TestLogging_RecordsFailure(t *testing.T) {
	events := openEventRepo(t)
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("offline")}})
	p := WithLogging(mock, ProviderMock, events, nil)

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if err == nil {
		t.Fatal("expected error")
	}

	got, _ := events.QueryLLMEvents(context.Background(), store.QueryOpts{})
	if len(got) != 1 || got[0].Success || !strings.Contains(got[0].ErrorMessage, "offline") {
		t.Fatalf("events = %+v", got)
	}
	if got[0].Purpose != "unknown" {
		t.Errorf("purpose = %q", got[0].Purpose)
	}
}

func TestLogging_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`"ok"`)})
	p := WithLogging(mock, ProviderMock, nil, nil)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("model = %q", p.ModelID())
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gemini-2.5-flash")
	if c == nil {
		t.Fatal("expected pricing for gemini-2.5-flash")
	}
	if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-2.8) > 1e-9 {
		t.Errorf("cost = %v, want 2.8", got)
	}
	if LookupCost("google/gemini-2.5-flash") == nil {
		t.Error("expected vendor prefix to be ignored")
	}
	if LookupCost("mock") != nil {
		t.Error("expected nil for unknown model")
	}
}
