package server

import (
	"net/http"

	jsonwriter "github.com/dgellow/auth-front/internal/json"
	"github.com/dgellow/auth-front/internal/session"
)

// SessionResponse reports whether the browser holds a session
type SessionResponse struct {
	Authenticated bool `json:"authenticated"`
}

// SessionHandlers exposes the session slot to scripts
type SessionHandlers struct {
	sessions session.Store
}

// NewSessionHandlers creates the session API handlers
func NewSessionHandlers(sessions session.Store) *SessionHandlers {
	return &SessionHandlers{sessions: sessions}
}

// GetHandler reports session presence. The token itself is never returned.
func (h *SessionHandlers) GetHandler(w http.ResponseWriter, r *http.Request) {
	authenticated := h.sessions.Has(r)
	if !authenticated {
		clearStaleSession(w, r, h.sessions)
	}
	_ = jsonwriter.Write(w, SessionResponse{Authenticated: authenticated})
}

// DeleteHandler logs out
func (h *SessionHandlers) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	_ = jsonwriter.Write(w, SessionResponse{Authenticated: false})
}
