package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/schoolhub/chat-server-go/internal/audit"
	"github.com/schoolhub/chat-server-go/internal/auth"
	"github.com/schoolhub/chat-server-go/internal/repository"
	"github.com/schoolhub/chat-server-go/internal/util"
)

type AuthHandler struct {
	users  repository.UserRepository
	issuer *auth.Issuer
}

func NewAuthHandler(users repository.UserRepository, issuer *auth.Issuer) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer}
}

// Token exchanges a username and password for an access token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}

	user, err := h.users.FindByUsername(r.Context(), req.Username)
	if err != nil {
		log.Error().Err(err).Msg("token handler: user lookup failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Login failed"})
		return
	}

	// Identical response for unknown users and bad passwords.
	if user == nil || !util.CheckPasswordHash(req.Password, user.PasswordHash) {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginFailure, Username: req.Username})
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		log.Error().Err(err).Int64("userId", user.ID).Msg("token handler: signing failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Login failed"})
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginSuccess, UserID: user.ID, Username: user.Username})
	writeJSON(w, http.StatusOK, map[string]string{"access": token})
}
