package voices

import "context"

// Repo defines persistence operations for voice samples and identities.
type Repo interface {
	CreateSample(ctx context.Context, sample Sample) error
	GetSampleByID(ctx context.Context, sampleID string) (Sample, error)
	ListSamplesByUser(ctx context.Context, userID string, onlyEligible bool) ([]Sample, error)
	SetSampleEligibility(ctx context.Context, userID, sampleID string, eligible bool) error

	CreateIdentity(ctx context.Context, identity Identity) error
	GetIdentityByID(ctx context.Context, voiceID string) (Identity, error)
	ListIdentitiesByUser(ctx context.Context, userID string) ([]Identity, error)
	DeleteIdentity(ctx context.Context, userID, voiceID string) error
}
