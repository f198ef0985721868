// Package handler exposes the performance analytics endpoints.
package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/propdesk/backoffice/internal/domain/auth/middleware"
	ledger "github.com/propdesk/backoffice/internal/domain/ingest/repository"
	"github.com/propdesk/backoffice/internal/domain/performance/repository"
	"github.com/propdesk/backoffice/internal/domain/performance/service"
	"github.com/propdesk/backoffice/pkg/httputil"
)

// Handler serves analytics endpoints.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

// NewHandler creates a new performance handler
func NewHandler(service *service.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type entryResponse struct {
	ID            uuid.UUID `json:"id"`
	RecordedAt    time.Time `json:"recordedAt"`
	AccountNumber int64     `json:"accountNumber"`
	AccountType   string    `json:"accountType"`
	Orders        float64   `json:"orders"`
	Fills         float64   `json:"fills"`
	Qty           float64   `json:"qty"`
	StartBalance  float64   `json:"startBalance"`
	Gross         float64   `json:"gross"`
	Net           float64   `json:"net"`
	AdjNet        float64   `json:"adjNet"`
	TradeFees     float64   `json:"tradeFees"`
	Total         float64   `json:"total"`
	Transfer      float64   `json:"transfer"`
	EndBalance    float64   `json:"endBalance"`
}

// List handles GET /api/analytics for the authenticated trader.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	category, filter := queryParams(r)

	entries, err := h.service.ListForUser(r.Context(), middleware.UserIDFromContext(r.Context()), category, filter)
	if errors.Is(err, service.ErrNoProfile) {
		httputil.WriteError(w, http.StatusNotFound, "no profile for user")
		return
	}
	if err != nil {
		h.logger.Error("failed to list performance", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list performance")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": toResponses(entries)})
}

// ListAll handles GET /api/admin/analytics across every profile.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	category, filter := queryParams(r)

	entries, err := h.service.ListAll(r.Context(), category, filter)
	if err != nil {
		h.logger.Error("failed to list performance", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list performance")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": toResponses(entries)})
}

// Export handles GET /api/analytics/export, streaming the caller's entries
// as a CSV attachment.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	category, filter := queryParams(r)

	entries, err := h.service.ListForUser(r.Context(), middleware.UserIDFromContext(r.Context()), category, filter)
	if errors.Is(err, service.ErrNoProfile) {
		httputil.WriteError(w, http.StatusNotFound, "no profile for user")
		return
	}
	if err != nil {
		h.logger.Error("failed to export performance", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to export performance")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="performance-%s-%s.csv"`, category, time.Now().Format("2006-01-02")))
	if err := h.service.ExportCSV(entries, w); err != nil {
		h.logger.Error("failed to write csv", slog.Any("error", err))
	}
}

func queryParams(r *http.Request) (ledger.Category, repository.Filter) {
	q := r.URL.Query()
	category := ledger.ResolveAccountType(q.Get("category"))

	filter := repository.Filter{}
	if raw := q.Get("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.From = t
		}
	}
	if raw := q.Get("to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			// Inclusive end of day.
			filter.To = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = n
	}
	return category, filter
}

func toResponses(entries []*ledger.LedgerEntry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:            e.ID,
			RecordedAt:    e.RecordedAt,
			AccountNumber: e.AccountNumber,
			AccountType:   string(e.AccountType),
			Orders:        e.Orders,
			Fills:         e.Fills,
			Qty:           e.Qty,
			StartBalance:  e.StartBalance,
			Gross:         e.Gross,
			Net:           e.Net,
			AdjNet:        e.AdjNet,
			TradeFees:     e.TradeFees,
			Total:         e.Total,
			Transfer:      e.Transfer,
			EndBalance:    e.EndBalance,
		})
	}
	return out
}
