// Package handler exposes the notification inbox endpoints.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/propdesk/backoffice/internal/domain/auth/middleware"
	"github.com/propdesk/backoffice/internal/domain/notification/service"
	"github.com/propdesk/backoffice/pkg/httputil"
)

// Handler serves notification endpoints.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

// NewHandler creates a new notification handler
func NewHandler(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type notificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	SenderID  uuid.UUID `json:"senderId"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// List handles GET /api/notifications, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	notifications, err := h.service.List(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to list notifications", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Message:   n.Message,
			SenderID:  n.SenderID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"notifications": out})
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	updated, err := h.service.MarkAllRead(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to mark notifications read", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}
