package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"hy-whisper/internal/api/dto"
	"hy-whisper/internal/api/errors"
	"hy-whisper/internal/app/audio"
	"hy-whisper/internal/config"
)

// AvailableEndpoints is listed in the body of every 404
var AvailableEndpoints = []string{
	"POST /api/transcribe - Transcribe audio",
	"GET /api/status - Server status",
	"GET /api/formats - Supported formats",
	"GET /health - Liveness probe",
	"GET /metrics - Prometheus metrics",
}

// InfoHandler serves the read-only endpoints describing the server
type InfoHandler struct {
	cfg       config.Config
	validator *audio.Validator
	now       func() time.Time
}

// NewInfoHandler creates a new info handler
func NewInfoHandler(cfg config.Config, validator *audio.Validator) *InfoHandler {
	return &InfoHandler{
		cfg:       cfg,
		validator: validator,
		now:       time.Now,
	}
}

// Status handles GET /api/status
func (h *InfoHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StatusResponse{
		Status:                "OK",
		Timestamp:             h.now().UTC().Format(time.RFC3339Nano),
		HasProviderCredential: h.cfg.HasProviderCredential(),
		Environment:           h.cfg.Environment,
		UploadsDir:            h.cfg.UploadsDir,
		MaxFileSize:           h.cfg.MaxFileSizeHuman(),
	})
}

// Formats handles GET /api/formats
func (h *InfoHandler) Formats(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FormatsResponse{
		SupportedFormats:   h.validator.SupportedFormats(),
		MaxFileSize:        h.cfg.MaxFileSize,
		MaxFileSizeHuman:   h.cfg.MaxFileSizeHuman(),
		SupportedMimeTypes: h.validator.SupportedMimeTypes(),
	})
}

// Health handles GET /health
func (h *InfoHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// NotFound answers unmatched routes
func (h *InfoHandler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.NotFoundResponse{
		Error:              errors.MsgNotFound,
		AvailableEndpoints: AvailableEndpoints,
	})
}
