package pipeline

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"scriptorium-backend/internal/shared/server/middleware"
	"scriptorium-backend/internal/shared/server/respond"
	"scriptorium-backend/internal/synthesis"
	"scriptorium-backend/internal/tts"
)

// Handler exposes the clone and synthesize operations over HTTP.
type Handler struct {
	Coord *Coordinator
}

// NewHandler constructs a Handler.
func NewHandler(coord *Coordinator) *Handler {
	return &Handler{Coord: coord}
}

// RegisterRoutes attaches pipeline routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/voice-clone", h.cloneVoice)
	rg.POST("/tts", h.synthesize)
}

type cloneRequest struct {
	Label     string   `json:"label" binding:"required"`
	SampleIDs []string `json:"sampleIds"`
}

type cloneResponse struct {
	VoiceID   string    `json:"voiceId"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) cloneVoice(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req cloneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "label is required", nil)
		return
	}

	identity, outcome := h.Coord.CloneVoice(c.Request.Context(), userID, req.Label, req.SampleIDs)
	if outcome.Kind != KindOK {
		respondOutcome(c, outcome)
		return
	}

	respond.JSON(c, http.StatusCreated, cloneResponse{
		VoiceID:   identity.ID,
		Label:     identity.Label,
		CreatedAt: identity.CreatedAt,
	})
}

type synthesizeRequest struct {
	Text             string   `json:"text" binding:"required"`
	VoiceID          string   `json:"voiceId" binding:"required"`
	SourceDocumentID *string  `json:"sourceDocumentId"`
	Stability        *float64 `json:"stability"`
	SimilarityBoost  *float64 `json:"similarityBoost"`
	Style            *float64 `json:"style"`
	SpeakerBoost     *bool    `json:"speakerBoost"`
}

func (h *Handler) synthesize(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req synthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "text and voiceId are required", nil)
		return
	}

	result, outcome := h.Coord.Synthesize(c.Request.Context(), userID, synthesis.Request{
		Text:             req.Text,
		VoiceID:          req.VoiceID,
		SourceDocumentID: req.SourceDocumentID,
		Settings: tts.Settings{
			Stability:       req.Stability,
			SimilarityBoost: req.SimilarityBoost,
			Style:           req.Style,
			SpeakerBoost:    req.SpeakerBoost,
		},
	})
	if outcome.Kind != KindOK {
		// The audio survived even though storage did not; deliver it and
		// let the client decide whether to retry the upload later.
		if outcome.Kind == KindStorageFailed && len(outcome.Audio) > 0 {
			c.Header("X-Storage-Failed", "true")
			c.Data(http.StatusOK, "audio/mpeg", outcome.Audio)
			return
		}
		respondOutcome(c, outcome)
		return
	}

	c.Header("X-Output-Key", result.OutputKey)
	c.Data(http.StatusOK, "audio/mpeg", result.Audio)
}

// respondOutcome maps an Outcome kind to the standard error envelope.
func respondOutcome(c *gin.Context, outcome Outcome) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch outcome.Kind {
	case KindInvalidInput:
		status, message = http.StatusBadRequest, "invalid input"
	case KindForbidden:
		status, message = http.StatusForbidden, "forbidden"
	case KindNotFound:
		status, message = http.StatusNotFound, "not found"
	case KindNoSamples:
		status, message = http.StatusBadRequest, "no eligible voice samples"
	case KindSampleUnavailable:
		status, message = http.StatusConflict, "voice sample unavailable"
	case KindProviderRejected:
		status, message = http.StatusBadGateway, "voice provider rejected the request"
	case KindClonePersistFailed:
		status, message = http.StatusInternalServerError, "voice created but could not be saved"
	case KindStoreUnavailable:
		status, message = http.StatusServiceUnavailable, "object store unavailable"
	}

	respond.Error(c, status, outcome.Kind, message, outcome.Detail)
}
