package upload

import (
	"geo-upload/internal/config"
	"geo-upload/internal/core/port"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
)

// BasePath is where the upload routes are mounted
const BasePath = "/api/v1/upload"

// HandlerV1 is the handler for v1 upload routes
type HandlerV1 struct {
	uploadService    port.UploadService
	logger           *slog.Logger
	cookieName       string
	cookieTTL        time.Duration
	secureCookie     bool
	maxUploadSize    int64
	maxMemory        int64
	progressInterval time.Duration
}

// NewUploadHandlerV1 creates HandlerV1
func NewUploadHandlerV1(service port.UploadService, uploadCfg config.FileUploadConfig, sessionCfg config.SessionConfig, secureCookie bool, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		uploadService:    service,
		logger:           logger,
		cookieName:       sessionCfg.CookieName,
		cookieTTL:        sessionCfg.TTL,
		secureCookie:     secureCookie,
		maxUploadSize:    uploadCfg.MaxUploadSize,
		maxMemory:        uploadCfg.MaxMemory,
		progressInterval: uploadCfg.ProgressInterval,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", h.GetStepV1)
	router.Post("/", h.PostStepV1)
	router.Get("/progress", h.GetProgressV1)
	router.Get("/progress/ws", h.StreamProgressV1)
	router.Get("/resume/{importID}", h.ResumeV1)
	router.Delete("/imports/{importID}", h.DeleteUploadV1)
	router.Get("/{step}", h.GetStepV1)
	router.Post("/{step}", h.PostStepV1)

	return router
}
