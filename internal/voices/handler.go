package voices

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"scriptorium-backend/internal/shared/server/middleware"
	"scriptorium-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers for samples and identities to the service.
// Cloning itself goes through the pipeline coordinator, not this handler.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches voice routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/voice-samples", h.uploadSample)
	rg.GET("/voice-samples", h.listSamples)
	rg.PATCH("/voice-samples/:id", h.setEligibility)
	rg.GET("/voices", h.listIdentities)
	rg.DELETE("/voices/:id", h.deleteIdentity)
}

type sampleResponse struct {
	SampleID   string    `json:"sampleId"`
	Path       string    `json:"path"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	Eligible   bool      `json:"eligible"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toSampleResponse(sample Sample) sampleResponse {
	return sampleResponse{
		SampleID:   sample.ID,
		Path:       sample.StorageKey,
		MimeType:   sample.MimeType,
		SizeBytes:  sample.SizeBytes,
		Eligible:   sample.Eligible,
		UploadedAt: sample.CreatedAt,
	}
}

func (h *Handler) uploadSample(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxSampleBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size > MaxSampleBytes {
		respond.Error(c, http.StatusBadRequest, "file_too_large", "file size exceeds limit", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")

	sample, err := h.Svc.UploadSample(c.Request.Context(), userID, fileHeader.Filename, mimeType, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedType):
			respond.Error(c, http.StatusBadRequest, "unsupported_type", "file type not supported", nil)
		case errors.Is(err, ErrTooLarge):
			respond.Error(c, http.StatusBadRequest, "file_too_large", "file size exceeds limit", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload voice sample", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toSampleResponse(sample))
}

func (h *Handler) listSamples(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	samples, err := h.Svc.ListSamples(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list voice samples", nil)
		return
	}

	resp := make([]sampleResponse, 0, len(samples))
	for _, sample := range samples {
		resp = append(resp, toSampleResponse(sample))
	}
	respond.JSON(c, http.StatusOK, resp)
}

type eligibilityRequest struct {
	Eligible *bool `json:"eligible"`
}

func (h *Handler) setEligibility(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req eligibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Eligible == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "eligible is required", nil)
		return
	}

	if err := h.Svc.SetSampleEligibility(c.Request.Context(), userID, c.Param("id"), *req.Eligible); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "voice sample not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update voice sample", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

type identityResponse struct {
	VoiceID   string    `json:"voiceId"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) listIdentities(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	identities, err := h.Svc.ListIdentities(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list voices", nil)
		return
	}

	resp := make([]identityResponse, 0, len(identities))
	for _, identity := range identities {
		resp = append(resp, identityResponse{
			VoiceID:   identity.ID,
			Label:     identity.Label,
			CreatedAt: identity.CreatedAt,
		})
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) deleteIdentity(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.DeleteIdentity(c.Request.Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "voice not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete voice", nil)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
