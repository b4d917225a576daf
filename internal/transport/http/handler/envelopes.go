package handler

import (
	"encoding/json"
	"net/http"

	"github.com/web3ix-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps a successful sign-in. The user is lifted out of the
// session so clients read it from one place.
type AuthEnvelope struct {
	User    *domain.Account `json:"user"`
	Session *domain.Session `json:"session,omitempty"`
}

func newAuthEnvelope(sess *domain.Session) AuthEnvelope {
	if sess == nil {
		return AuthEnvelope{}
	}
	s := *sess
	s.User = nil
	return AuthEnvelope{User: sess.User, Session: &s}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// decodeJSON reports false (after writing the 400) when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
