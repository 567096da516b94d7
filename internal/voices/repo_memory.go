package voices

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu         sync.RWMutex
	samples    map[string]Sample
	identities map[string]Identity
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		samples:    make(map[string]Sample),
		identities: make(map[string]Identity),
	}
}

// CreateSample stores a voice sample.
func (r *MemoryRepo) CreateSample(ctx context.Context, sample Sample) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples[sample.ID] = sample
	return nil
}

// GetSampleByID returns a sample by ID.
func (r *MemoryRepo) GetSampleByID(ctx context.Context, sampleID string) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sample, ok := r.samples[sampleID]
	if !ok {
		return Sample{}, ErrNotFound
	}
	return sample, nil
}

// ListSamplesByUser returns a user's samples newest-first.
func (r *MemoryRepo) ListSamplesByUser(ctx context.Context, userID string, onlyEligible bool) ([]Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []Sample
	for _, sample := range r.samples {
		if sample.UserID != userID {
			continue
		}
		if onlyEligible && !sample.Eligible {
			continue
		}
		out = append(out, sample)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// SetSampleEligibility flips the cloning eligibility flag.
func (r *MemoryRepo) SetSampleEligibility(ctx context.Context, userID, sampleID string, eligible bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sample, ok := r.samples[sampleID]
	if !ok || sample.UserID != userID {
		return ErrNotFound
	}
	sample.Eligible = eligible
	r.samples[sampleID] = sample
	return nil
}

// CreateIdentity stores a voice identity.
func (r *MemoryRepo) CreateIdentity(ctx context.Context, identity Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.identities[identity.ID] = identity
	return nil
}

// GetIdentityByID returns a voice identity by its provider id.
func (r *MemoryRepo) GetIdentityByID(ctx context.Context, voiceID string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.identities[voiceID]
	if !ok {
		return Identity{}, ErrNotFound
	}
	return identity, nil
}

// ListIdentitiesByUser returns a user's voice identities newest-first.
func (r *MemoryRepo) ListIdentitiesByUser(ctx context.Context, userID string) ([]Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []Identity
	for _, identity := range r.identities {
		if identity.UserID == userID {
			out = append(out, identity)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteIdentity removes a voice identity owned by the user.
func (r *MemoryRepo) DeleteIdentity(ctx context.Context, userID, voiceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.identities[voiceID]
	if !ok || identity.UserID != userID {
		return ErrNotFound
	}
	delete(r.identities, voiceID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
