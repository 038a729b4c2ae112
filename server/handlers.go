package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/strideify/auth-service/auth"
)

const (
	contentTypeJSON   = "application/json"
	sessionCookieName = "jwt"
)

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupHandler registers a new account and issues the first session token
// as a cookie.
func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := decodeCredentials(w, r)
		if !ok {
			return
		}

		signedToken, err := s.auth.Register(r.Context(), payload.Username, payload.Password)
		if err != nil {
			s.writeAuthError(w, err)
			return
		}

		setSessionCookie(w, signedToken)
		writeJSONMessage(w, "success", http.StatusOK)
	}
}

// LoginHandler verifies credentials and issues a rotated session token as a
// cookie. The previous token stops verifying once this succeeds.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := decodeCredentials(w, r)
		if !ok {
			return
		}

		signedToken, err := s.auth.Login(r.Context(), payload.Username, payload.Password)
		if err != nil {
			s.writeAuthError(w, err)
			return
		}

		setSessionCookie(w, signedToken)
		writeJSONMessage(w, "success", http.StatusOK)
	}
}

// SessionHandler authenticates the ambient session cookie and reports the
// identity it was issued for.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			writeJSONError(w, "invalid_token", auth.ErrInvalidToken.Error(), http.StatusForbidden)
			return
		}

		username, err := s.auth.VerifySession(r.Context(), cookie.Value)
		if err != nil {
			s.writeAuthError(w, err)
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message":  "success",
			"username": username,
		})
	}
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsPayload, bool) {
	var payload credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid_request", "Failed to parse request body", http.StatusBadRequest)
		return payload, false
	}
	return payload, true
}

// writeAuthError maps service failures onto stable outcome codes. Anything
// unclassified is reported as an internal failure with no detail leaked.
func (s *Server) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrAlreadyExists):
		writeJSONError(w, "already_exists", err.Error(), http.StatusConflict)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSONError(w, "invalid_credentials", err.Error(), http.StatusUnauthorized)
	case errors.Is(err, auth.ErrInvalidToken):
		writeJSONError(w, "invalid_token", err.Error(), http.StatusForbidden)
	case errors.Is(err, auth.ErrSuperseded):
		writeJSONError(w, "superseded", err.Error(), http.StatusForbidden)
	case errors.Is(err, auth.ErrPersistence):
		// Retryable by the caller, so it keeps its own outcome code.
		log.Error().Err(err).Msg("auth operation failed")
		writeJSONError(w, "persistence_failure", "Internal failure", http.StatusInternalServerError)
	default:
		log.Error().Err(err).Msg("auth operation failed")
		writeJSONError(w, "internal_failure", "Internal failure", http.StatusInternalServerError)
	}
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}

func writeJSONMessage(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func writeJSONError(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
