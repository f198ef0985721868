// Package handler exposes registration and session endpoints.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/propdesk/backoffice/internal/domain/auth/middleware"
	"github.com/propdesk/backoffice/internal/domain/auth/service"
	"github.com/propdesk/backoffice/pkg/httputil"
)

// Handler serves auth endpoints.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

// NewHandler creates a new auth handler
func NewHandler(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || len(req.Password) < 8 {
		httputil.WriteError(w, http.StatusBadRequest, "email, username, and a password of at least 8 characters are required")
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Username, req.Password)
	if errors.Is(err, service.ErrEmailTaken) {
		httputil.WriteError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		h.logger.Error("registration failed", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"id":    user.ID.String(),
		"email": user.Email,
	})
}

// Login handles POST /api/auth/login. On success the token is returned in
// the body and set as an HTTP-only cookie for browser clients.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.service.Login(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)), req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		h.logger.Error("login failed", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Logout handles POST /api/auth/logout by expiring the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
