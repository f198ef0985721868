// Package handler exposes the clearing-report upload endpoint.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/propdesk/backoffice/internal/domain/auth/middleware"
	"github.com/propdesk/backoffice/internal/domain/ingest/service"
	"github.com/propdesk/backoffice/pkg/httputil"
)

// Handler serves the upload endpoint.
type Handler struct {
	service        *service.Service
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewHandler creates a new ingest handler
func NewHandler(service *service.Service, maxUploadBytes int64, logger *slog.Logger) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type uploadResponse struct {
	Message string           `json:"message"`
	Summary *service.Summary `json:"summary"`
}

// Upload handles POST /api/admin/upload-excel. The workbook is read from the
// "file" multipart field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	h.logger.Info("processing upload",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
	)

	summary, err := h.service.Ingest(r.Context(), file, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error("ingestion failed", slog.Any("error", err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to process upload")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, uploadResponse{
		Message: "Upload processed",
		Summary: summary,
	})
}
