package tts

import (
	"context"
	"errors"
	"fmt"
)

// Provider abstracts the external voice-cloning / text-to-speech service.
// Both operations are single-shot network calls: a non-2xx response is a
// rejection, never a partial success.
type Provider interface {
	// CloneVoice builds one named voice from all samples in a single
	// atomic request and returns the provider-assigned voice id.
	CloneVoice(ctx context.Context, label string, samples []Sample) (string, error)

	// Synthesize converts text to audio using the given voice and settings.
	Synthesize(ctx context.Context, text, voiceID string, settings Settings) ([]byte, error)
}

// Sample is one raw audio recording sent to the provider as cloning input.
type Sample struct {
	FileName string
	MimeType string
	Data     []byte
}

// Settings are the recognized synthesis options. Nil fields fall back to
// the documented defaults.
type Settings struct {
	Stability       *float64
	SimilarityBoost *float64
	Style           *float64
	SpeakerBoost    *bool
}

// Documented synthesis defaults, applied when the caller configuration
// leaves an option unset.
const (
	DefaultStability       = 0.0
	DefaultSimilarityBoost = 0.0
	DefaultStyle           = 0.5
	DefaultSpeakerBoost    = true
)

// Resolve returns the effective option values with defaults applied.
func (s Settings) Resolve() (stability, similarity, style float64, speakerBoost bool) {
	stability = DefaultStability
	similarity = DefaultSimilarityBoost
	style = DefaultStyle
	speakerBoost = DefaultSpeakerBoost
	if s.Stability != nil {
		stability = *s.Stability
	}
	if s.SimilarityBoost != nil {
		similarity = *s.SimilarityBoost
	}
	if s.Style != nil {
		style = *s.Style
	}
	if s.SpeakerBoost != nil {
		speakerBoost = *s.SpeakerBoost
	}
	return stability, similarity, style, speakerBoost
}

// ProviderError is a non-success response from the provider.
type ProviderError struct {
	Status  int
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("provider rejected: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("provider rejected: status %d: %s", e.Status, e.Message)
}

// ErrNotConfigured is returned by the placeholder provider.
var ErrNotConfigured = errors.New("tts provider not configured")

// PlaceholderProvider is a stub implementation until provider wiring is added.
type PlaceholderProvider struct{}

// CloneVoice returns ErrNotConfigured.
func (PlaceholderProvider) CloneVoice(ctx context.Context, label string, samples []Sample) (string, error) {
	_ = ctx
	_ = label
	_ = samples
	return "", ErrNotConfigured
}

// Synthesize returns ErrNotConfigured.
func (PlaceholderProvider) Synthesize(ctx context.Context, text, voiceID string, settings Settings) ([]byte, error) {
	_ = ctx
	_ = text
	_ = voiceID
	_ = settings
	return nil, ErrNotConfigured
}
