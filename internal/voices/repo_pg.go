package voices

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateSample inserts a voice sample.
func (r *PGRepo) CreateSample(ctx context.Context, sample Sample) error {
	const query = `
INSERT INTO voice_samples (id, user_id, storage_key, mime_type, size_bytes, eligible, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		sample.ID,
		sample.UserID,
		sample.StorageKey,
		sample.MimeType,
		sample.SizeBytes,
		sample.Eligible,
		sample.CreatedAt,
	)
	return err
}

// GetSampleByID returns a sample by ID.
func (r *PGRepo) GetSampleByID(ctx context.Context, sampleID string) (Sample, error) {
	const query = `
SELECT id, user_id, storage_key, mime_type, size_bytes, eligible, created_at
FROM voice_samples
WHERE id = $1
LIMIT 1`
	var sample Sample
	err := r.DB.QueryRowContext(ctx, query, sampleID).Scan(
		&sample.ID,
		&sample.UserID,
		&sample.StorageKey,
		&sample.MimeType,
		&sample.SizeBytes,
		&sample.Eligible,
		&sample.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Sample{}, ErrNotFound
		}
		return Sample{}, err
	}
	return sample, nil
}

// ListSamplesByUser lists a user's samples newest-first.
func (r *PGRepo) ListSamplesByUser(ctx context.Context, userID string, onlyEligible bool) ([]Sample, error) {
	query := `
SELECT id, user_id, storage_key, mime_type, size_bytes, eligible, created_at
FROM voice_samples
WHERE user_id = $1`
	if onlyEligible {
		query += ` AND eligible`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var sample Sample
		if err := rows.Scan(
			&sample.ID,
			&sample.UserID,
			&sample.StorageKey,
			&sample.MimeType,
			&sample.SizeBytes,
			&sample.Eligible,
			&sample.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, sample)
	}
	return out, rows.Err()
}

// SetSampleEligibility flips the cloning eligibility flag.
func (r *PGRepo) SetSampleEligibility(ctx context.Context, userID, sampleID string, eligible bool) error {
	const query = `UPDATE voice_samples SET eligible = $1 WHERE id = $2 AND user_id = $3`
	res, err := r.DB.ExecContext(ctx, query, eligible, sampleID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateIdentity inserts a voice identity.
func (r *PGRepo) CreateIdentity(ctx context.Context, identity Identity) error {
	const query = `
INSERT INTO voice_identities (id, user_id, label, created_at)
VALUES ($1, $2, $3, $4)`
	_, err := r.DB.ExecContext(ctx, query,
		identity.ID,
		identity.UserID,
		identity.Label,
		identity.CreatedAt,
	)
	return err
}

// GetIdentityByID returns a voice identity by its provider id.
func (r *PGRepo) GetIdentityByID(ctx context.Context, voiceID string) (Identity, error) {
	const query = `
SELECT id, user_id, label, created_at
FROM voice_identities
WHERE id = $1 AND deleted_at IS NULL
LIMIT 1`
	var identity Identity
	err := r.DB.QueryRowContext(ctx, query, voiceID).Scan(
		&identity.ID,
		&identity.UserID,
		&identity.Label,
		&identity.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, ErrNotFound
		}
		return Identity{}, err
	}
	return identity, nil
}

// ListIdentitiesByUser lists a user's voice identities newest-first.
func (r *PGRepo) ListIdentitiesByUser(ctx context.Context, userID string) ([]Identity, error) {
	const query = `
SELECT id, user_id, label, created_at
FROM voice_identities
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Identity
	for rows.Next() {
		var identity Identity
		if err := rows.Scan(
			&identity.ID,
			&identity.UserID,
			&identity.Label,
			&identity.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, identity)
	}
	return out, rows.Err()
}

// DeleteIdentity soft-deletes a voice identity owned by the user.
func (r *PGRepo) DeleteIdentity(ctx context.Context, userID, voiceID string) error {
	const query = `
UPDATE voice_identities SET deleted_at = now()
WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, voiceID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
