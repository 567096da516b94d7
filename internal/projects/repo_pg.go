package projects

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new project.
func (r *PGRepo) Create(ctx context.Context, project Project) error {
	const query = `
INSERT INTO projects (id, user_id, title, author, description, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		project.ID,
		project.UserID,
		project.Title,
		nullable(project.Author),
		nullable(project.Description),
		project.CreatedAt,
	)
	return err
}

// GetByID returns a project by ID.
func (r *PGRepo) GetByID(ctx context.Context, projectID string) (Project, error) {
	const query = `
SELECT id, user_id, title, author, description, created_at
FROM projects
WHERE id = $1
LIMIT 1`
	var project Project
	var author sql.NullString
	var description sql.NullString
	err := r.DB.QueryRowContext(ctx, query, projectID).Scan(
		&project.ID,
		&project.UserID,
		&project.Title,
		&author,
		&description,
		&project.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}
	project.Author = author.String
	project.Description = description.String
	return project, nil
}

// ListByUser lists projects ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Project, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, title, author, description, created_at
FROM projects
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var project Project
		var author sql.NullString
		var description sql.NullString
		if err := rows.Scan(
			&project.ID,
			&project.UserID,
			&project.Title,
			&author,
			&description,
			&project.CreatedAt,
		); err != nil {
			return nil, err
		}
		project.Author = author.String
		project.Description = description.String
		out = append(out, project)
	}
	return out, rows.Err()
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
