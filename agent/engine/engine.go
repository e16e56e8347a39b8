// Package engine drives conversation turns. The engine does not reason
// itself: it feeds history, the current report, and tool descriptors to the
// reasoning backend, executes whichever tools the backend selects, and ends
// the turn when the backend answers with a plain message.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/gtmquest/gtm-advisor/agent/contract"
	reportx "github.com/gtmquest/gtm-advisor/agent/report"
	toolx "github.com/gtmquest/gtm-advisor/agent/tool"
)

var ErrEmptyMessage = errors.New("message is empty")

type Engine struct {
	backend  contractx.ReasoningBackend
	registry *toolx.Registry
	persona  string
}

// New wires the engine's collaborators. backend may be nil; turns then fail
// with a recoverable error instead of the process refusing to start.
func New(backend contractx.ReasoningBackend, registry *toolx.Registry, persona string) (*Engine, error) {
	if registry == nil {
		return nil, errors.New("tool registry is required")
	}
	return &Engine{
		backend:  backend,
		registry: registry,
		persona:  strings.TrimSpace(persona),
	}, nil
}

// RunTurn processes one user utterance: loop the backend until it stops
// requesting tools, executing each requested tool sequentially and
// publishing a snapshot after each mutation. Returns the assistant's final
// message for the turn.
//
// Progression through discovery, strategy, and recommendations is advisory:
// the persona steers it, the engine imposes no ordering or call caps.
func (e *Engine) RunTurn(ctx context.Context, s *Session, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}
	if e.backend == nil {
		return "", contractx.ErrModelInvoke
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, contractx.Message{Role: contractx.RoleUser, Content: text})

	for {
		resp, err := e.backend.Complete(ctx, contractx.CompletionRequest{
			System:   e.systemPrompt(s.state),
			Messages: s.history,
			Tools:    e.registry.Specs(),
		})
		if err != nil {
			log.Error().Err(err).Str("session_id", s.ID).Msg("reasoning backend failed")
			return "", err
		}

		if len(resp.ToolCalls) == 0 {
			s.history = append(s.history, contractx.Message{
				Role:    contractx.RoleAssistant,
				Content: resp.Content,
			})
			return resp.Content, nil
		}

		s.history = append(s.history, contractx.Message{
			Role:      contractx.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		// Sequential execution: each call fully mutates state, and the
		// snapshot published after it reflects the whole call.
		for _, call := range resp.ToolCalls {
			ack := e.registry.Execute(ctx, s.state, call)
			s.channel.Publish(s.state.Clone())

			payload, err := json.Marshal(ack)
			if err != nil {
				payload = []byte(`{"success":false,"message":"internal ack encoding error"}`)
			}
			s.history = append(s.history, contractx.Message{
				Role:       contractx.RoleTool,
				Content:    string(payload),
				ToolCallID: call.ID,
			})
		}
	}
}

// systemPrompt combines the persona with the live report so the backend
// always sees what the client is already rendering.
func (e *Engine) systemPrompt(st *reportx.State) string {
	snapshot, err := json.Marshal(st)
	if err != nil {
		return e.persona
	}
	var b strings.Builder
	b.WriteString(e.persona)
	b.WriteString("\n\n## Current Report State\n")
	b.Write(snapshot)
	return b.String()
}
