package pipeline

import (
	"context"
	"errors"

	"scriptorium-backend/internal/shared/storage/object"
	"scriptorium-backend/internal/synthesis"
	"scriptorium-backend/internal/tts"
	"scriptorium-backend/internal/voices"
)

// Outcome kinds, stable across transports. The HTTP handler maps them to
// status codes; other callers can switch on Kind directly.
const (
	KindOK                 = "ok"
	KindInvalidInput       = "invalid_input"
	KindForbidden          = "forbidden"
	KindNotFound           = "not_found"
	KindNoSamples          = "no_samples"
	KindSampleUnavailable  = "sample_unavailable"
	KindProviderRejected   = "provider_rejected"
	KindClonePersistFailed = "persistence_after_clone_failed"
	KindStorageFailed      = "storage_after_synthesis_failed"
	KindStoreUnavailable   = "store_unavailable"
	KindInternal           = "internal"
)

// Outcome classifies a pipeline error for callers that need to branch on
// the failure mode rather than unwrap sentinel chains themselves.
type Outcome struct {
	Kind string
	// Detail carries mode-specific data: the orphaned provider voice id
	// for KindClonePersistFailed, the provider status code for
	// KindProviderRejected.
	Detail map[string]any
	// Audio is set for KindStorageFailed: the synthesized bytes that
	// could not be stored, still deliverable to the caller.
	Audio []byte
	Err   error
}

// Coordinator fronts the two provider-facing operations, voice cloning and
// synthesis, and folds their error taxonomies into Outcomes.
type Coordinator struct {
	Voices    *voices.Service
	Synthesis *synthesis.Service
}

// CloneVoice builds a voice identity from the user's samples.
func (c *Coordinator) CloneVoice(ctx context.Context, userID, label string, sampleIDs []string) (voices.Identity, Outcome) {
	identity, err := c.Voices.Clone(ctx, userID, label, sampleIDs)
	if err != nil {
		return voices.Identity{}, classifyClone(err)
	}
	return identity, Outcome{Kind: KindOK}
}

// Synthesize converts text to speech with the given voice.
func (c *Coordinator) Synthesize(ctx context.Context, userID string, req synthesis.Request) (synthesis.Result, Outcome) {
	result, err := c.Synthesis.Synthesize(ctx, userID, req)
	if err != nil {
		return synthesis.Result{}, classifySynthesis(err)
	}
	return result, Outcome{Kind: KindOK}
}

func classifyClone(err error) Outcome {
	var persistErr *voices.PersistFailedError
	var providerErr *tts.ProviderError

	switch {
	case errors.As(err, &persistErr):
		return Outcome{
			Kind:   KindClonePersistFailed,
			Detail: map[string]any{"orphanVoiceId": persistErr.VoiceID},
			Err:    err,
		}
	case errors.As(err, &providerErr):
		return Outcome{
			Kind:   KindProviderRejected,
			Detail: map[string]any{"providerStatus": providerErr.Status},
			Err:    err,
		}
	case errors.Is(err, voices.ErrNoSamples):
		return Outcome{Kind: KindNoSamples, Err: err}
	case errors.Is(err, voices.ErrSampleUnavailable):
		return Outcome{Kind: KindSampleUnavailable, Err: err}
	case errors.Is(err, voices.ErrForbidden):
		return Outcome{Kind: KindForbidden, Err: err}
	case errors.Is(err, voices.ErrNotFound):
		return Outcome{Kind: KindNotFound, Err: err}
	case errors.Is(err, voices.ErrInvalidInput):
		return Outcome{Kind: KindInvalidInput, Err: err}
	case errors.Is(err, object.ErrUnavailable):
		return Outcome{Kind: KindStoreUnavailable, Err: err}
	default:
		return Outcome{Kind: KindInternal, Err: err}
	}
}

func classifySynthesis(err error) Outcome {
	var storageErr *synthesis.StorageFailedError
	var providerErr *tts.ProviderError

	switch {
	case errors.As(err, &storageErr):
		return Outcome{
			Kind:  KindStorageFailed,
			Audio: storageErr.Audio,
			Err:   err,
		}
	case errors.As(err, &providerErr):
		return Outcome{
			Kind:   KindProviderRejected,
			Detail: map[string]any{"providerStatus": providerErr.Status},
			Err:    err,
		}
	case errors.Is(err, synthesis.ErrEmptyText):
		return Outcome{Kind: KindInvalidInput, Err: err}
	case errors.Is(err, synthesis.ErrForbidden):
		return Outcome{Kind: KindForbidden, Err: err}
	case errors.Is(err, synthesis.ErrNotFound):
		return Outcome{Kind: KindNotFound, Err: err}
	case errors.Is(err, synthesis.ErrInvalidInput):
		return Outcome{Kind: KindInvalidInput, Err: err}
	case errors.Is(err, object.ErrUnavailable):
		return Outcome{Kind: KindStoreUnavailable, Err: err}
	default:
		return Outcome{Kind: KindInternal, Err: err}
	}
}
