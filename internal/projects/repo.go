package projects

import "context"

// Repo defines persistence operations for projects.
type Repo interface {
	Create(ctx context.Context, project Project) error
	GetByID(ctx context.Context, projectID string) (Project, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Project, error)
}
