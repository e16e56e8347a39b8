package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Cross-origin is handled globally; the socket carries no credentials.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWatch streams report snapshots over a websocket. The latest
// snapshot is delivered immediately on connect, so a reconnecting client
// starts from current state; afterwards one message arrives per observed
// mutation, with intermediate snapshots coalesced under backpressure.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	session, err := s.sessions.Session(sessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := session.Channel().Subscribe()
	defer sub.Cancel()

	// Reader goroutine: the state stream is one-directional, so the only
	// thing to read is the close handshake.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case snap, ok := <-sub.C():
			if !ok {
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				log.Debug().Err(err).Str("session_id", sessionID).Msg("watch write failed")
				return
			}
		}
	}
}
