package synthesis

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"scriptorium-backend/internal/shared/metrics"
	"scriptorium-backend/internal/shared/storage/object"
	"scriptorium-backend/internal/shared/telemetry"
	"scriptorium-backend/internal/tts"
	"scriptorium-backend/internal/voices"
)

// OutputPrefix is where synthesized audio lands in the object store.
const OutputPrefix = "tts-output/"

// Request describes one synthesis attempt.
type Request struct {
	Text             string
	VoiceID          string
	SourceDocumentID *string
	Settings         tts.Settings
}

// Result is the outcome of a successful synthesis.
type Result struct {
	Audio     []byte
	OutputKey string
	Event     Event
}

// Service runs text-to-speech synthesis and keeps the audit trail.
type Service struct {
	Repo     Repo
	Store    object.ObjectStore
	Voices   *voices.Service
	Provider tts.Provider

	// PublicVoiceIDs are provider voices usable by any user, typically
	// the provider's stock voices.
	PublicVoiceIDs map[string]struct{}

	// DefaultSettings fill in voice options the request leaves unset,
	// before the provider applies its own documented defaults.
	DefaultSettings tts.Settings
}

// Synthesize converts text to speech with the given voice. An event row is
// appended for every attempt that reaches the provider, failed or not; the
// audit trail is the authoritative usage record.
func (s *Service) Synthesize(ctx context.Context, userID string, req Request) (Result, error) {
	if userID == "" || req.VoiceID == "" {
		return Result{}, ErrInvalidInput
	}
	if strings.TrimSpace(req.Text) == "" {
		return Result{}, ErrEmptyText
	}

	if err := s.authorizeVoice(ctx, userID, req.VoiceID); err != nil {
		return Result{}, err
	}

	metrics.IncSynthesisStarted()
	started := time.Now().UTC()

	// The provider call bills the account whether or not the client is
	// still listening, so the call and everything after it run detached
	// from request cancellation.
	opCtx := context.WithoutCancel(ctx)

	audio, err := s.Provider.Synthesize(opCtx, req.Text, req.VoiceID, s.mergeSettings(req.Settings))
	metrics.ObserveSynthesisDuration(time.Since(started).Seconds())
	if err != nil {
		s.recordEvent(opCtx, Event{
			ID:               uuid.NewString(),
			UserID:           userID,
			InitiatedAt:      started,
			Successful:       false,
			SourceDocumentID: req.SourceDocumentID,
			VoiceUsed:        req.VoiceID,
		})
		metrics.IncSynthesisFailed("provider_rejected")
		telemetry.Error("synthesis.provider_rejected", map[string]any{
			"user_id":  userID,
			"voice_id": req.VoiceID,
			"error":    err.Error(),
		})
		return Result{}, err
	}

	metrics.ObserveSynthesisAudioBytes(int64(len(audio)))

	outputKey := OutputPrefix + uuid.NewString() + ".mp3"
	if _, err := s.Store.SaveWithKey(opCtx, outputKey, "audio/mpeg", bytes.NewReader(audio)); err != nil {
		s.recordEvent(opCtx, Event{
			ID:               uuid.NewString(),
			UserID:           userID,
			InitiatedAt:      started,
			Successful:       false,
			SourceDocumentID: req.SourceDocumentID,
			VoiceUsed:        req.VoiceID,
			AudioLength:      int64(len(audio)),
		})
		metrics.IncSynthesisFailed("storage_failed")
		telemetry.Error("synthesis.storage_failed", map[string]any{
			"user_id":  userID,
			"voice_id": req.VoiceID,
			"error":    err.Error(),
		})
		return Result{}, &StorageFailedError{Audio: audio, Err: err}
	}

	event := Event{
		ID:               uuid.NewString(),
		UserID:           userID,
		InitiatedAt:      started,
		Successful:       true,
		SourceDocumentID: req.SourceDocumentID,
		OutputKey:        &outputKey,
		VoiceUsed:        req.VoiceID,
		AudioLength:      int64(len(audio)),
	}
	s.recordEvent(opCtx, event)

	metrics.IncSynthesisCompleted()
	telemetry.Info("synthesis.completed", map[string]any{
		"user_id":     userID,
		"voice_id":    req.VoiceID,
		"output_key":  outputKey,
		"audio_bytes": len(audio),
	})
	return Result{Audio: audio, OutputKey: outputKey, Event: event}, nil
}

func (s *Service) mergeSettings(settings tts.Settings) tts.Settings {
	if settings.Stability == nil {
		settings.Stability = s.DefaultSettings.Stability
	}
	if settings.SimilarityBoost == nil {
		settings.SimilarityBoost = s.DefaultSettings.SimilarityBoost
	}
	if settings.Style == nil {
		settings.Style = s.DefaultSettings.Style
	}
	if settings.SpeakerBoost == nil {
		settings.SpeakerBoost = s.DefaultSettings.SpeakerBoost
	}
	return settings
}

// authorizeVoice allows a voice the user owns or one on the public list.
func (s *Service) authorizeVoice(ctx context.Context, userID, voiceID string) error {
	if _, ok := s.PublicVoiceIDs[voiceID]; ok {
		return nil
	}

	identity, err := s.Voices.GetIdentity(ctx, voiceID)
	if err != nil {
		if errors.Is(err, voices.ErrNotFound) {
			return ErrForbidden
		}
		return err
	}
	if identity.UserID != userID {
		return ErrForbidden
	}
	return nil
}

// recordEvent appends to the audit trail. A failed insert is logged but
// never masks the synthesis outcome the caller is waiting on.
func (s *Service) recordEvent(ctx context.Context, event Event) {
	if err := s.Repo.CreateEvent(ctx, event); err != nil {
		telemetry.Error("synthesis.event_write_failed", map[string]any{
			"user_id":  event.UserID,
			"event_id": event.ID,
			"error":    err.Error(),
		})
	}
}

// ListEvents returns the user's synthesis history newest-first.
func (s *Service) ListEvents(ctx context.Context, userID string, limit int) ([]Event, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.Repo.ListEventsByUser(ctx, userID, limit)
}

// OpenOutput streams previously synthesized audio by its storage key.
func (s *Service) OpenOutput(ctx context.Context, userID, outputKey string) (io.ReadCloser, error) {
	if !strings.HasPrefix(outputKey, OutputPrefix) {
		return nil, ErrInvalidInput
	}
	if _, err := s.Repo.GetEventByOutputKey(ctx, userID, outputKey); err != nil {
		return nil, err
	}
	return s.Store.Open(ctx, outputKey)
}
