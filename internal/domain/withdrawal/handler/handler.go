// Package handler exposes withdrawal submission and review endpoints.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/propdesk/backoffice/internal/domain/auth/middleware"
	"github.com/propdesk/backoffice/internal/domain/withdrawal/repository"
	"github.com/propdesk/backoffice/internal/domain/withdrawal/service"
	"github.com/propdesk/backoffice/pkg/httputil"
)

// Handler serves withdrawal endpoints.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

// NewHandler creates a new withdrawal handler
func NewHandler(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type createRequest struct {
	Amount string `json:"amount"`
	Reason string `json:"reason"`
}

type reviewRequest struct {
	Approve bool    `json:"approve"`
	Amount  *string `json:"amount,omitempty"`
}

type withdrawalResponse struct {
	ID         uuid.UUID  `json:"id"`
	ProfileID  uuid.UUID  `json:"profileId"`
	Amount     string     `json:"amount"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty"`
}

// Create handles POST /api/withdrawals.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	created, err := h.service.Create(r.Context(), middleware.UserIDFromContext(r.Context()), amount, req.Reason)
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		httputil.WriteError(w, http.StatusBadRequest, "amount must be positive")
	case errors.Is(err, service.ErrNoProfile):
		httputil.WriteError(w, http.StatusNotFound, "no profile for user")
	case err != nil:
		h.logger.Error("failed to create withdrawal", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create withdrawal")
	default:
		httputil.WriteJSON(w, http.StatusCreated, toResponse(created))
	}
}

// ListMine handles GET /api/withdrawals for the authenticated trader.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.ListForUser(r.Context(), middleware.UserIDFromContext(r.Context()))
	if errors.Is(err, service.ErrNoProfile) {
		httputil.WriteError(w, http.StatusNotFound, "no profile for user")
		return
	}
	if err != nil {
		h.logger.Error("failed to list withdrawals", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list withdrawals")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"withdrawals": toResponses(requests)})
}

// ListAll handles GET /api/admin/withdrawals with an optional status filter.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.logger.Error("failed to list withdrawals", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list withdrawals")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"withdrawals": toResponses(requests)})
}

// Review handles POST /api/admin/withdrawals/{id}/review.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var adjusted *decimal.Decimal
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		adjusted = &amount
	}

	reviewed, err := h.service.Review(r.Context(), middleware.UserIDFromContext(r.Context()), requestID, req.Approve, adjusted)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, "withdrawal request not found")
	case errors.Is(err, service.ErrAlreadyReviewed):
		httputil.WriteError(w, http.StatusConflict, "request already reviewed")
	case errors.Is(err, service.ErrInvalidAmount):
		httputil.WriteError(w, http.StatusBadRequest, "amount must be positive")
	case err != nil:
		h.logger.Error("failed to review withdrawal", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to review withdrawal")
	default:
		httputil.WriteJSON(w, http.StatusOK, toResponse(reviewed))
	}
}

func toResponse(req *repository.WithdrawalRequest) withdrawalResponse {
	return withdrawalResponse{
		ID:         req.ID,
		ProfileID:  req.ProfileID,
		Amount:     req.Amount.StringFixed(2),
		Reason:     req.Reason,
		Status:     req.Status,
		CreatedAt:  req.CreatedAt,
		ReviewedAt: req.ReviewedAt,
	}
}

func toResponses(requests []*repository.WithdrawalRequest) []withdrawalResponse {
	out := make([]withdrawalResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, toResponse(req))
	}
	return out
}
