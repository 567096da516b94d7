package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id, project_id, user_id, file_name, mime_type, size_bytes, storage_key, extracted_text, position, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var extracted sql.NullString
	if doc.ExtractedText != nil {
		extracted = sql.NullString{String: *doc.ExtractedText, Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.ProjectID,
		doc.UserID,
		doc.FileName,
		doc.MimeType,
		doc.SizeBytes,
		doc.StorageKey,
		extracted,
		doc.Position,
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	const query = `
SELECT id, project_id, user_id, file_name, mime_type, size_bytes, storage_key, extracted_text, position, created_at
FROM documents
WHERE id = $1
LIMIT 1`
	var doc Document
	var extracted sql.NullString
	err := r.DB.QueryRowContext(ctx, query, documentID).Scan(
		&doc.ID,
		&doc.ProjectID,
		&doc.UserID,
		&doc.FileName,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.StorageKey,
		&extracted,
		&doc.Position,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	if extracted.Valid {
		doc.ExtractedText = &extracted.String
	}
	return doc, nil
}

// ListByProject lists documents in narration order.
func (r *PGRepo) ListByProject(ctx context.Context, projectID string) ([]Document, error) {
	const query = `
SELECT id, project_id, user_id, file_name, mime_type, size_bytes, storage_key, extracted_text, position, created_at
FROM documents
WHERE project_id = $1
ORDER BY position ASC, created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		var extracted sql.NullString
		if err := rows.Scan(
			&doc.ID,
			&doc.ProjectID,
			&doc.UserID,
			&doc.FileName,
			&doc.MimeType,
			&doc.SizeBytes,
			&doc.StorageKey,
			&extracted,
			&doc.Position,
			&doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		if extracted.Valid {
			doc.ExtractedText = &extracted.String
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// UpdatePositions rewrites the narration order for a project in one
// transaction. orderedIDs is assumed validated against the project's
// document set by the service.
func (r *PGRepo) UpdatePositions(ctx context.Context, projectID string, orderedIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `UPDATE documents SET position = $1 WHERE id = $2 AND project_id = $3`
	for i, id := range orderedIDs {
		res, err := tx.ExecContext(ctx, query, i, id, projectID)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: document %s", ErrBadSequence, id)
		}
	}
	return tx.Commit()
}

var _ Repo = (*PGRepo)(nil)
