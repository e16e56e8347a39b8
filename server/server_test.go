package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	contractx "github.com/gtmquest/gtm-advisor/agent/contract"
	enginex "github.com/gtmquest/gtm-advisor/agent/engine"
	toolx "github.com/gtmquest/gtm-advisor/agent/tool"
)

type stubBackend struct {
	resp contractx.CompletionResponse
	err  error
}

func (b *stubBackend) Complete(context.Context, contractx.CompletionRequest) (contractx.CompletionResponse, error) {
	return b.resp, b.err
}

func newTestServer(t *testing.T, backend contractx.ReasoningBackend) *Server {
	t.Helper()
	e, err := enginex.New(backend, toolx.NewRegistry(nil), "persona")
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	voice := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return New(e, enginex.NewManager(), voice)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubBackend{})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["status"] != "healthy" || payload["agent"] != "gtm_agent" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestMessageRoundTrip(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubBackend{resp: contractx.CompletionResponse{Content: "Tell me more."}})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("POST", "/api/session/abc/message",
		strings.NewReader(`{"message":"hi"}`)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Reply string         `json:"reply"`
		State map[string]any `json:"state"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reply != "Tell me more." {
		t.Fatalf("reply = %q", resp.Reply)
	}
	if _, ok := resp.State["recommended_providers"]; !ok {
		t.Fatalf("response must carry the full report: %+v", resp.State)
	}
}

func TestMessageBackendFailureAnswersInAssistantVoice(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubBackend{err: errors.New("upstream 503")})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("POST", "/api/session/abc/message",
		strings.NewReader(`{"message":"hi"}`)))

	if w.Code != http.StatusOK {
		t.Fatalf("backend failure must not become a transport error: %d", w.Code)
	}
	var resp struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reply != turnErrorReply {
		t.Fatalf("reply = %q", resp.Reply)
	}
}

func TestMessageValidation(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubBackend{})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("POST", "/api/session/abc/message",
		strings.NewReader(`{"message":"  "}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank message: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("POST", "/api/session/abc/message",
		strings.NewReader(`{not json`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: status = %d", w.Code)
	}
}

func TestStateUnknownSession(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubBackend{})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/api/session/missing/state", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestStateAfterTurn(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubBackend{resp: contractx.CompletionResponse{Content: "ok"}})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("POST", "/api/session/abc/message",
		strings.NewReader(`{"message":"hi"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("seed turn failed: %d", w.Code)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/api/session/abc/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var state map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := state["use_cases"]; !ok {
		t.Fatalf("expected full report shape: %+v", state)
	}
}

func TestVoiceMount(t *testing.T) {
	t.Parallel()

	var hit bool
	e, err := enginex.New(&stubBackend{}, toolx.NewRegistry(nil), "persona")
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	srv := New(e, enginex.NewManager(), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hit = true
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("POST", "/chat/completions", strings.NewReader(`{}`)))
	if !hit {
		t.Fatal("voice handler not mounted")
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubBackend{})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("OPTIONS", "/api/session/abc/message", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatal("preflight must carry CORS headers")
	}
}
