// Package server mounts the HTTP surface: health check, session message and
// state endpoints, the websocket state-sync mount, and the voice completion
// endpoint.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	enginex "github.com/gtmquest/gtm-advisor/agent/engine"
)

// turnErrorReply is what the client sees when the reasoning backend fails a
// turn: an assistant-style message, not a transport error.
const turnErrorReply = "I ran into a problem on my end. Could you try that again?"

type Server struct {
	engine   *enginex.Engine
	sessions *enginex.Manager
	voice    http.Handler
	router   *mux.Router
}

func New(engine *enginex.Engine, sessions *enginex.Manager, voice http.Handler) *Server {
	s := &Server{
		engine:   engine,
		sessions: sessions,
		voice:    voice,
	}
	s.router = s.routes()
	return s
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(logMiddleware(s.router))
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/session/{id}/message", s.handleMessage).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/session/{id}/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/api/session/{id}/watch", s.handleWatch).Methods(http.MethodGet)
	r.Handle("/chat/completions", s.voice).Methods(http.MethodPost, http.MethodOptions)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"agent":  "gtm_agent",
	})
}

type messageRequest struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Reply string `json:"reply"`
	State any    `json:"state"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	session, err := s.sessions.Session(sessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := s.engine.RunTurn(r.Context(), session, req.Message)
	if err != nil {
		if errors.Is(err, enginex.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}
		// Backend failures are recoverable: answer in the assistant's
		// voice and keep the session alive.
		log.Error().Err(err).Str("session_id", sessionID).Msg("turn failed")
		reply = turnErrorReply
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Reply: reply,
		State: session.Snapshot(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	session, ok := s.sessions.Lookup(sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("response encode failed")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
