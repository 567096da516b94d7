package voices

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"scriptorium-backend/internal/shared/metrics"
	"scriptorium-backend/internal/shared/storage/object"
	"scriptorium-backend/internal/shared/telemetry"
	"scriptorium-backend/internal/tts"
)

// MaxSampleBytes is the upload size limit for voice samples.
const MaxSampleBytes = 10 << 20 // 10 MiB

var allowedSampleTypes = map[string]struct{}{
	"audio/mpeg": {},
	"audio/wav":  {},
}

// Service contains business logic for voice samples and identities.
type Service struct {
	Repo     Repo
	Store    object.ObjectStore
	Provider tts.Provider
}

// UploadSample validates, stores and records one voice sample.
func (s *Service) UploadSample(ctx context.Context, userID, fileName, mimeType string, r io.Reader) (Sample, error) {
	if fileName == "" {
		return Sample{}, ErrInvalidInput
	}
	if _, ok := allowedSampleTypes[mimeType]; !ok {
		return Sample{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxSampleBytes+1))
	if err != nil {
		return Sample{}, err
	}
	if int64(len(data)) > MaxSampleBytes {
		return Sample{}, ErrTooLarge
	}

	storageKey, size, _, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if err != nil {
		return Sample{}, err
	}

	sample := Sample{
		ID:         uuid.NewString(),
		UserID:     userID,
		StorageKey: storageKey,
		MimeType:   mimeType,
		SizeBytes:  size,
		Eligible:   true,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Repo.CreateSample(ctx, sample); err != nil {
		return Sample{}, err
	}
	return sample, nil
}

// ListSamples returns the user's samples newest-first.
func (s *Service) ListSamples(ctx context.Context, userID string) ([]Sample, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListSamplesByUser(ctx, userID, false)
}

// SetSampleEligibility marks a sample usable or unusable for cloning.
func (s *Service) SetSampleEligibility(ctx context.Context, userID, sampleID string, eligible bool) error {
	if sampleID == "" {
		return ErrInvalidInput
	}
	return s.Repo.SetSampleEligibility(ctx, userID, sampleID, eligible)
}

// Clone builds one named voice identity from the user's samples.
//
// When sampleIDs is empty, the user's eligible samples are used. The
// operation is all-or-nothing up to the provider call: ownership of every
// sample is verified and every sample's bytes are fetched before the single
// provider request, and nothing is persisted unless the provider succeeds.
func (s *Service) Clone(ctx context.Context, userID, label string, sampleIDs []string) (Identity, error) {
	if userID == "" || label == "" {
		return Identity{}, ErrInvalidInput
	}

	metrics.IncCloneStarted()

	samples, err := s.resolveSamples(ctx, userID, sampleIDs)
	if err != nil {
		metrics.IncCloneFailed(failureKind(err))
		return Identity{}, err
	}

	inputs := make([]tts.Sample, 0, len(samples))
	for _, sample := range samples {
		data, err := s.fetchSample(ctx, sample)
		if err != nil {
			metrics.IncCloneFailed("sample_unavailable")
			return Identity{}, err
		}
		inputs = append(inputs, tts.Sample{
			FileName: sample.ID,
			MimeType: sample.MimeType,
			Data:     data,
		})
	}

	// From here on the operation must survive a client disconnect: the
	// provider call creates a billed resource, and abandoning it between
	// the call and the insert would orphan it silently.
	opCtx := context.WithoutCancel(ctx)

	voiceID, err := s.Provider.CloneVoice(opCtx, label, inputs)
	if err != nil {
		metrics.IncCloneFailed("provider_rejected")
		telemetry.Error("voice.clone.provider_rejected", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return Identity{}, err
	}

	identity := Identity{
		ID:        voiceID,
		UserID:    userID,
		Label:     label,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.CreateIdentity(opCtx, identity); err != nil {
		metrics.IncCloneFailed("persistence_failed")
		telemetry.Error("voice.clone.persist_failed", map[string]any{
			"user_id":  userID,
			"voice_id": voiceID,
			"error":    err.Error(),
		})
		return Identity{}, &PersistFailedError{VoiceID: voiceID, Err: err}
	}

	metrics.IncCloneCompleted()
	telemetry.Info("voice.clone.completed", map[string]any{
		"user_id":  userID,
		"voice_id": voiceID,
		"samples":  len(inputs),
	})
	return identity, nil
}

// resolveSamples maps the requested sample ids (or, when none are given,
// the user's eligible samples) to sample records, enforcing ownership. It
// never touches the object store or the provider.
func (s *Service) resolveSamples(ctx context.Context, userID string, sampleIDs []string) ([]Sample, error) {
	if len(sampleIDs) == 0 {
		eligible, err := s.Repo.ListSamplesByUser(ctx, userID, true)
		if err != nil {
			return nil, err
		}
		if len(eligible) == 0 {
			return nil, ErrNoSamples
		}
		return eligible, nil
	}

	seen := make(map[string]struct{}, len(sampleIDs))
	out := make([]Sample, 0, len(sampleIDs))
	for _, id := range sampleIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		sample, err := s.Repo.GetSampleByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if sample.UserID != userID {
			return nil, fmt.Errorf("%w: sample %s", ErrForbidden, id)
		}
		out = append(out, sample)
	}
	if len(out) == 0 {
		return nil, ErrNoSamples
	}
	return out, nil
}

func (s *Service) fetchSample(ctx context.Context, sample Sample) ([]byte, error) {
	body, err := s.Store.Open(ctx, sample.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: sample %s: %v", ErrSampleUnavailable, sample.ID, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: sample %s: %v", ErrSampleUnavailable, sample.ID, err)
	}
	return data, nil
}

// ListIdentities returns the user's voice identities newest-first.
func (s *Service) ListIdentities(ctx context.Context, userID string) ([]Identity, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListIdentitiesByUser(ctx, userID)
}

// GetIdentity returns one voice identity by provider id.
func (s *Service) GetIdentity(ctx context.Context, voiceID string) (Identity, error) {
	if voiceID == "" {
		return Identity{}, ErrInvalidInput
	}
	return s.Repo.GetIdentityByID(ctx, voiceID)
}

// DeleteIdentity removes a voice identity owned by the user. Identities are
// deletable independently of the samples they were cloned from.
func (s *Service) DeleteIdentity(ctx context.Context, userID, voiceID string) error {
	if voiceID == "" {
		return ErrInvalidInput
	}
	return s.Repo.DeleteIdentity(ctx, userID, voiceID)
}

func failureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoSamples):
		return "no_samples"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
