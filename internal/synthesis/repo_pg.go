package synthesis

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateEvent appends one synthesis event.
func (r *PGRepo) CreateEvent(ctx context.Context, event Event) error {
	const query = `
INSERT INTO synthesis_events (id, user_id, initiated_at, successful, source_document_id, output_key, voice_used, audio_length)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		event.ID,
		event.UserID,
		event.InitiatedAt,
		event.Successful,
		event.SourceDocumentID,
		event.OutputKey,
		event.VoiceUsed,
		event.AudioLength,
	)
	return err
}

// ListEventsByUser lists a user's synthesis events newest-first.
func (r *PGRepo) ListEventsByUser(ctx context.Context, userID string, limit int) ([]Event, error) {
	const query = `
SELECT id, user_id, initiated_at, successful, source_document_id, output_key, voice_used, audio_length
FROM synthesis_events
WHERE user_id = $1
ORDER BY initiated_at DESC
LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var event Event
		if err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.InitiatedAt,
			&event.Successful,
			&event.SourceDocumentID,
			&event.OutputKey,
			&event.VoiceUsed,
			&event.AudioLength,
		); err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// GetEventByOutputKey returns the user's event for one stored output.
func (r *PGRepo) GetEventByOutputKey(ctx context.Context, userID, outputKey string) (Event, error) {
	const query = `
SELECT id, user_id, initiated_at, successful, source_document_id, output_key, voice_used, audio_length
FROM synthesis_events
WHERE user_id = $1 AND output_key = $2
LIMIT 1`
	var event Event
	err := r.DB.QueryRowContext(ctx, query, userID, outputKey).Scan(
		&event.ID,
		&event.UserID,
		&event.InitiatedAt,
		&event.Successful,
		&event.SourceDocumentID,
		&event.OutputKey,
		&event.VoiceUsed,
		&event.AudioLength,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Event{}, ErrNotFound
		}
		return Event{}, err
	}
	return event, nil
}

var _ Repo = (*PGRepo)(nil)
