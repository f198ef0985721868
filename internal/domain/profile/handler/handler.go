// Package handler exposes profile directory and onboarding endpoints.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/propdesk/backoffice/internal/domain/auth/middleware"
	"github.com/propdesk/backoffice/internal/domain/profile/repository"
	"github.com/propdesk/backoffice/internal/domain/profile/service"
	"github.com/propdesk/backoffice/pkg/httputil"
)

// Handler serves profile endpoints.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

// NewHandler creates a new profile handler
func NewHandler(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type profileResponse struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"userId"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	AccountNumber *string   `json:"accountNumber"`
	Share         *float64  `json:"share"`
	CreatedAt     time.Time `json:"createdAt"`
}

type onboardingResponse struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"userId"`
	Status        string     `json:"status"`
	Share         *float64   `json:"share"`
	AccountNumber *string    `json:"accountNumber"`
	CreatedAt     time.Time  `json:"createdAt"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
}

type reviewRequest struct {
	Approve       bool     `json:"approve"`
	Share         *float64 `json:"share,omitempty"`
	AccountNumber *string  `json:"accountNumber,omitempty"`
}

// Me handles GET /api/profile for the authenticated caller.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
	if errors.Is(err, repository.ErrNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "no profile for user")
		return
	}
	if err != nil {
		h.logger.Error("failed to get profile", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}

// List handles GET /api/admin/profiles with an optional fuzzy name query.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("failed to list profiles", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list profiles")
		return
	}

	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileResponse(p))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"profiles": out})
}

// SubmitOnboarding handles POST /api/onboarding.
func (h *Handler) SubmitOnboarding(w http.ResponseWriter, r *http.Request) {
	req, err := h.service.SubmitOnboarding(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("failed to submit onboarding", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to submit onboarding request")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toOnboardingResponse(req))
}

// ListOnboarding handles GET /api/admin/onboarding with an optional status
// filter.
func (h *Handler) ListOnboarding(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.ListOnboarding(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.logger.Error("failed to list onboarding requests", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list onboarding requests")
		return
	}

	out := make([]onboardingResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, toOnboardingResponse(req))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"requests": out})
}

// ReviewOnboarding handles POST /api/admin/onboarding/{id}/review.
func (h *Handler) ReviewOnboarding(w http.ResponseWriter, r *http.Request) {
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

	reviewed, err := h.service.ReviewOnboarding(r.Context(), middleware.UserIDFromContext(r.Context()), requestID, req.Approve, req.Share, req.AccountNumber)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, "onboarding request not found")
	case errors.Is(err, service.ErrAlreadyReviewed):
		httputil.WriteError(w, http.StatusConflict, "request already reviewed")
	case errors.Is(err, service.ErrMissingAllocation):
		httputil.WriteError(w, http.StatusBadRequest, "share and account number are required to approve")
	case err != nil:
		h.logger.Error("failed to review onboarding", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to review onboarding request")
	default:
		httputil.WriteJSON(w, http.StatusOK, toOnboardingResponse(reviewed))
	}
}

func toProfileResponse(p *repository.Profile) profileResponse {
	return profileResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		FullName:      p.FullName,
		Email:         p.Email,
		Role:          p.Role,
		AccountNumber: p.AccountNumber,
		Share:         p.Share,
		CreatedAt:     p.CreatedAt,
	}
}

func toOnboardingResponse(req *repository.OnboardingRequest) onboardingResponse {
	return onboardingResponse{
		ID:            req.ID,
		UserID:        req.UserID,
		Status:        req.Status,
		Share:         req.Share,
		AccountNumber: req.AccountNumber,
		CreatedAt:     req.CreatedAt,
		ReviewedAt:    req.ReviewedAt,
	}
}
