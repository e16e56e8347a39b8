package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/gtmquest/gtm-advisor/agent/contract"
	toolx "github.com/gtmquest/gtm-advisor/agent/tool"
)

// scriptedBackend replays a fixed sequence of completions and records each
// request it receives.
type scriptedBackend struct {
	responses []contractx.CompletionResponse
	err       error

	requests []contractx.CompletionRequest
}

func (b *scriptedBackend) Complete(_ context.Context, req contractx.CompletionRequest) (contractx.CompletionResponse, error) {
	b.requests = append(b.requests, req)
	if b.err != nil {
		return contractx.CompletionResponse{}, b.err
	}
	if len(b.responses) == 0 {
		return contractx.CompletionResponse{Content: "done"}, nil
	}
	resp := b.responses[0]
	b.responses = b.responses[1:]
	return resp, nil
}

func newTestEngine(t *testing.T, backend contractx.ReasoningBackend) *Engine {
	t.Helper()
	e, err := New(backend, toolx.NewRegistry(nil), "You are a GTM advisor.")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestRunTurnPlainReply(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{responses: []contractx.CompletionResponse{
		{Content: "Tell me about your company."},
	}}
	e := newTestEngine(t, backend)
	s := newSession("s1")

	reply, err := e.RunTurn(context.Background(), s, "hi")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if reply != "Tell me about your company." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(s.history) != 2 {
		t.Fatalf("expected user+assistant history, got %d entries", len(s.history))
	}
	if got := backend.requests[0].System; !strings.Contains(got, "Current Report State") {
		t.Fatalf("system prompt must embed the report: %q", got)
	}
	if len(backend.requests[0].Tools) == 0 {
		t.Fatal("tool specs must be offered to the backend")
	}
}

func TestRunTurnExecutesToolsAndPublishes(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{responses: []contractx.CompletionResponse{
		{ToolCalls: []contractx.ToolCall{
			{ID: "call_1", Tool: toolx.ToolUpdateCompanyInfo, Args: map[string]any{"company_name": "Acme"}},
			{ID: "call_2", Tool: toolx.ToolSetStrategy, Args: map[string]any{
				"name": "PLG Motion", "type": "plg", "summary": "Self-serve first.",
				"action_items": []any{"Ship a free tier"}, "recommended_for": []any{"dev tools"},
			}},
		}},
		{Content: "I've drafted a PLG strategy for Acme."},
	}}
	e := newTestEngine(t, backend)
	s := newSession("s1")
	sub := s.Channel().Subscribe()
	defer sub.Cancel()
	<-sub.C() // seed snapshot

	reply, err := e.RunTurn(context.Background(), s, "we're Acme, suggest a strategy")
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if reply != "I've drafted a PLG strategy for Acme." {
		t.Fatalf("unexpected reply: %q", reply)
	}

	st := s.Snapshot()
	if st.CompanyName != "Acme" {
		t.Fatalf("company info not applied: %+v", st)
	}
	if st.Strategy == nil || st.Strategy.Name != "PLG Motion" {
		t.Fatalf("strategy not applied: %+v", st.Strategy)
	}

	// Two mutations, at least one pending snapshot converging on both.
	snap := <-sub.C()
	if snap.State.CompanyName != "Acme" || snap.State.Strategy == nil {
		t.Fatalf("final snapshot must carry both mutations: %+v", snap.State)
	}

	// History: user, assistant-with-calls, two tool acks, final assistant.
	if len(s.history) != 5 {
		t.Fatalf("expected 5 history entries, got %d", len(s.history))
	}
	ack := s.history[2]
	if ack.Role != contractx.RoleTool || ack.ToolCallID != "call_1" {
		t.Fatalf("tool ack misplaced: %+v", ack)
	}
	if !strings.Contains(ack.Content, `"success":true`) {
		t.Fatalf("ack must be serialized into history: %s", ack.Content)
	}

	// The second completion request must include the tool results.
	if len(backend.requests) != 2 {
		t.Fatalf("expected 2 backend calls, got %d", len(backend.requests))
	}
	last := backend.requests[1].Messages
	if last[len(last)-1].Role != contractx.RoleTool {
		t.Fatalf("backend must see tool results: %+v", last[len(last)-1])
	}
}

func TestRunTurnFailedToolKeepsTurnAlive(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{responses: []contractx.CompletionResponse{
		{ToolCalls: []contractx.ToolCall{
			{ID: "call_1", Tool: "no_such_tool"},
		}},
		{Content: "Let me try that differently."},
	}}
	e := newTestEngine(t, backend)
	s := newSession("s1")

	reply, err := e.RunTurn(context.Background(), s, "do something")
	if err != nil {
		t.Fatalf("a failing tool must not abort the turn: %v", err)
	}
	if reply != "Let me try that differently." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if !strings.Contains(s.history[2].Content, `"success":false`) {
		t.Fatalf("failure ack must reach the backend: %s", s.history[2].Content)
	}
}

func TestRunTurnBackendError(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &scriptedBackend{err: errors.New("upstream 503")})
	s := newSession("s1")

	if _, err := e.RunTurn(context.Background(), s, "hi"); err == nil {
		t.Fatal("backend error must surface")
	}
}

func TestRunTurnEmptyMessage(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &scriptedBackend{})
	s := newSession("s1")

	if _, err := e.RunTurn(context.Background(), s, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestRunTurnNilBackend(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil)
	s := newSession("s1")

	if _, err := e.RunTurn(context.Background(), s, "hi"); !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestManagerSessionLifecycle(t *testing.T) {
	t.Parallel()

	m := NewManager()
	if _, err := m.Session(" "); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("blank id must be rejected, got %v", err)
	}

	a, err := m.Session("abc")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	b, _ := m.Session("abc")
	if a != b {
		t.Fatal("same id must return the same session")
	}

	if _, ok := m.Lookup("missing"); ok {
		t.Fatal("Lookup must not create sessions")
	}
	if got, ok := m.Lookup("abc"); !ok || got != a {
		t.Fatal("Lookup must find existing sessions")
	}

	// A fresh session already carries a seed snapshot for watchers.
	if snap := a.Channel().Latest(); snap.Seq == 0 || snap.State == nil {
		t.Fatalf("expected seeded snapshot, got %+v", snap)
	}
}
