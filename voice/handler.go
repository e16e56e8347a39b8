// Package voice serves the voice-call bridge: a stateless chat-completion
// endpoint that re-frames the advisor persona as short streamed replies.
// It never touches report state and never surfaces a transport error; any
// failure is masked behind a streamed apology so the caller-side player
// always receives a well-formed stream.
package voice

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/gtmquest/gtm-advisor/agent/contract"
)

const (
	defaultUserMessage = "Hello"
	apologyReply       = "Sorry, I'm having a little trouble right now. Could you say that again?"
	doneSentinel       = "[DONE]"
)

type completionRequest struct {
	Messages []requestMessage `json:"messages"`
}

type requestMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chunkDelta struct {
	Content string `json:"content,omitempty"`
}

type chunkChoice struct {
	Index        int        `json:"index"`
	Delta        chunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

type completionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []chunkChoice `json:"choices"`
}

type Handler struct {
	backend contractx.TextBackend
	persona string
	model   string
	now     func() time.Time
	newID   func() string
}

type Option func(*Handler)

// WithClock overrides chunk timestamps. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHandler builds the voice bridge. backend may be nil; requests then
// stream the apology.
func NewHandler(backend contractx.TextBackend, persona, model string, opts ...Option) *Handler {
	h := &Handler{
		backend: backend,
		persona: strings.TrimSpace(persona),
		model:   model,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reply := h.reply(r)
	h.stream(w, reply)
}

// reply derives the turn's reply, collapsing every failure into the fixed
// apology.
func (h *Handler) reply(r *http.Request) string {
	var req completionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("voice request decode failed")
		return apologyReply
	}
	if h.backend == nil {
		log.Warn().Msg("voice backend not configured")
		return apologyReply
	}

	system, history, userMessage := splitConversation(req.Messages)
	persona := h.persona
	if system != "" {
		persona = system
	}

	reply, err := h.backend.Generate(r.Context(), persona, history, userMessage)
	if err != nil {
		log.Error().Err(err).Msg("voice generation failed")
		return apologyReply
	}
	return reply
}

// splitConversation extracts the caller-supplied system instruction, the
// replayed prior turns, and the latest user utterance. The latest user turn
// is excluded from history because it is appended to the prompt explicitly;
// a missing user turn defaults to a greeting.
func splitConversation(messages []requestMessage) (system string, history []contractx.Message, userMessage string) {
	lastUser := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			lastUser = i
			break
		}
	}

	userMessage = defaultUserMessage
	if lastUser >= 0 && strings.TrimSpace(messages[lastUser].Content) != "" {
		userMessage = messages[lastUser].Content
	}

	for i, m := range messages {
		switch m.Role {
		case "system":
			system = strings.TrimSpace(m.Content)
		case "user":
			if i != lastUser {
				history = append(history, contractx.Message{Role: contractx.RoleUser, Content: m.Content})
			}
		case "assistant":
			history = append(history, contractx.Message{Role: contractx.RoleAssistant, Content: m.Content})
		}
	}
	return system, history, userMessage
}

// stream emits the reply as whitespace-delimited content deltas. All but
// the final fragment keep a single trailing space so concatenation
// reproduces the reply, then a finish chunk and the [DONE] sentinel close
// the stream.
func (h *Handler) stream(w http.ResponseWriter, reply string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}

	id := "chatcmpl-" + h.newID()
	created := h.now().Unix()

	fragments := strings.Fields(reply)
	for i, fragment := range fragments {
		content := fragment
		if i < len(fragments)-1 {
			content += " "
		}
		h.writeChunk(w, completionChunk{
			ID:      id,
			Object:  "chat.completion.chunk",
			Created: created,
			Model:   h.model,
			Choices: []chunkChoice{{Delta: chunkDelta{Content: content}}},
		})
		flush()
	}

	stop := "stop"
	h.writeChunk(w, completionChunk{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   h.model,
		Choices: []chunkChoice{{Delta: chunkDelta{}, FinishReason: &stop}},
	})
	flush()

	fmt.Fprintf(w, "data: %s\n\n", doneSentinel)
	flush()
}

func (h *Handler) writeChunk(w http.ResponseWriter, chunk completionChunk) {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
}
