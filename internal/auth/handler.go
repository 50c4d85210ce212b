package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/masiqhakaze/website/internal/models"
)

// Handler holds auth-related HTTP handlers.
type Handler struct {
	creds    *CredentialStore
	sessions *Sessions
	log      *zap.Logger
}

func NewHandler(creds *CredentialStore, sessions *Sessions, log *zap.Logger) *Handler {
	return &Handler{creds: creds, sessions: sessions, log: log}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// TokenFromRequest returns the bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// Login checks the admin password and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, models.LoginResponse{Message: "invalid request body"})
		return
	}

	ok, err := h.creds.Authenticate(r.Context(), req.Password)
	if err != nil {
		h.log.Error("authenticate", zap.Error(err))
		WriteJSON(w, http.StatusInternalServerError, models.LoginResponse{Message: "internal error"})
		return
	}
	if !ok {
		WriteJSON(w, http.StatusForbidden, models.LoginResponse{Message: "Invalid password"})
		return
	}

	token, err := h.sessions.Start(r.Context())
	if err != nil {
		h.log.Error("start session", zap.Error(err))
		WriteJSON(w, http.StatusInternalServerError, models.LoginResponse{Message: "session creation failed"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessions.TTL().Seconds()),
	})
	h.log.Info("admin logged in", zap.String("remote", r.RemoteAddr))
	WriteJSON(w, http.StatusOK, models.LoginResponse{Message: "Authenticated", Token: token})
}

// UpdatePassword sets the first password or replaces the current one.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, models.LoginResponse{Message: "invalid request body"})
		return
	}

	err := h.creds.SetOrReplace(r.Context(), req.OldPassword, req.NewPassword)
	switch {
	case errors.Is(err, ErrCredentialMismatch):
		WriteJSON(w, http.StatusForbidden, models.LoginResponse{Message: "Old password does not match"})
		return
	case errors.Is(err, ErrEmptyPassword):
		WriteJSON(w, http.StatusBadRequest, models.LoginResponse{Message: "New password must not be empty"})
		return
	case errors.Is(err, ErrPasswordTooLong):
		WriteJSON(w, http.StatusBadRequest, models.LoginResponse{Message: "New password must be at most 72 bytes"})
		return
	case err != nil:
		h.log.Error("update password", zap.Error(err))
		WriteJSON(w, http.StatusInternalServerError, models.LoginResponse{Message: "internal error"})
		return
	}

	h.log.Info("admin password updated")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := TokenFromRequest(r); token != "" {
		if err := h.sessions.End(r.Context(), token); err != nil {
			h.log.Warn("end session", zap.Error(err))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	WriteJSON(w, http.StatusOK, models.LoginResponse{Message: "logged out"})
}
