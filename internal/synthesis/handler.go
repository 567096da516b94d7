package synthesis

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"scriptorium-backend/internal/shared/server/middleware"
	"scriptorium-backend/internal/shared/server/respond"
	"scriptorium-backend/internal/shared/storage/object"
)

// Handler serves the synthesis audit trail and stored audio. Running a
// synthesis goes through the pipeline coordinator.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches synthesis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tts-events", h.listEvents)
	rg.GET("/tts-output/:id", h.downloadOutput)
}

type eventResponse struct {
	EventID          string    `json:"eventId"`
	InitiatedAt      time.Time `json:"initiatedAt"`
	Successful       bool      `json:"successful"`
	SourceDocumentID *string   `json:"sourceDocumentId,omitempty"`
	OutputKey        *string   `json:"outputKey,omitempty"`
	VoiceUsed        string    `json:"voiceUsed"`
	AudioLength      int64     `json:"audioLength"`
}

func (h *Handler) listEvents(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	events, err := h.Svc.ListEvents(c.Request.Context(), userID, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list synthesis events", nil)
		return
	}

	resp := make([]eventResponse, 0, len(events))
	for _, event := range events {
		resp = append(resp, eventResponse{
			EventID:          event.ID,
			InitiatedAt:      event.InitiatedAt,
			Successful:       event.Successful,
			SourceDocumentID: event.SourceDocumentID,
			OutputKey:        event.OutputKey,
			VoiceUsed:        event.VoiceUsed,
			AudioLength:      event.AudioLength,
		})
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) downloadOutput(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	id := strings.TrimSuffix(c.Param("id"), ".mp3")
	outputKey := OutputPrefix + id + ".mp3"

	body, err := h.Svc.OpenOutput(c.Request.Context(), userID, outputKey)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, object.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "audio not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid output id", nil)
		case errors.Is(err, object.ErrUnavailable):
			respond.Error(c, http.StatusServiceUnavailable, "store_unavailable", "object store unavailable", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open audio", nil)
		}
		return
	}
	defer body.Close()

	c.Header("Content-Type", "audio/mpeg")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, body)
}
