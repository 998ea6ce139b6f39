package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/user/caption-service/internal/delivery/http/response"
	"github.com/user/caption-service/internal/delivery/http/view"
	"github.com/user/caption-service/internal/entity"
	"github.com/user/caption-service/internal/repository"
	"github.com/user/caption-service/internal/usecase"
)

const (
	uploadField       = "file"
	healthCheckBudget = 2 * time.Second
)

type Handler struct {
	pipeline       usecase.CaptionPipeline
	view           *view.Renderer
	cache          repository.CaptionCacheRepository
	provider       string
	maxUploadBytes int64
}

// NewHandler wires the page handlers. cache may be nil; it is only pinged
// by the health check.
func NewHandler(
	pipeline usecase.CaptionPipeline,
	renderer *view.Renderer,
	cache repository.CaptionCacheRepository,
	provider string,
	maxUploadBytes int64,
) *Handler {
	return &Handler{
		pipeline:       pipeline,
		view:           renderer,
		cache:          cache,
		provider:       provider,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleIndex renders the upload form without a caption.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, "")
}

// HandleUpload runs the caption pipeline on the multipart "file" field.
// Every failure redirects back to the page; only the logs tell them apart.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var upload entity.UploadedImage
	file, header, err := r.FormFile(uploadField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// Leave upload empty; the pipeline rejects it like any other missing file.
	case err != nil:
		slog.Warn("Failed to parse upload form",
			"error", err,
			"request_id", chimw.GetReqID(r.Context()),
		)
		h.redirectBack(w, r)
		return
	default:
		defer file.Close()
		upload = entity.UploadedImage{Filename: header.Filename, Content: file, Size: header.Size}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	analysis, err := h.pipeline.Caption(r.Context(), upload)
	if err != nil {
		h.logFailure(r, upload, err)
		h.redirectBack(w, r)
		return
	}

	h.render(w, analysis.Caption)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := response.HealthResponse{Status: "ok", Provider: h.provider}
	status := http.StatusOK

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckBudget)
		defer cancel()

		resp.Dependencies = map[string]string{"redis": "healthy"}
		if err := h.cache.Ping(ctx); err != nil {
			slog.Error("health check failed for redis", "error", err)
			resp.Dependencies["redis"] = "unhealthy"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	h.writeJSON(w, status, resp)
}

func (h *Handler) render(w http.ResponseWriter, caption string) {
	if err := h.view.Render(w, http.StatusOK, caption); err != nil {
		slog.Error("Failed to render page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) redirectBack(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, r.URL.RequestURI(), http.StatusFound)
}

func (h *Handler) logFailure(r *http.Request, upload entity.UploadedImage, err error) {
	attrs := []any{
		"error_type", usecase.ErrorType(err),
		"filename", upload.Filename,
		"request_id", chimw.GetReqID(r.Context()),
		"error", err,
	}
	switch {
	case errors.Is(err, usecase.ErrMissingFile):
		slog.Info("Upload rejected", attrs...)
	case errors.Is(err, usecase.ErrUnsupportedType):
		slog.Warn("Upload rejected", attrs...)
	default:
		slog.Error("Upload processing failed", attrs...)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}
