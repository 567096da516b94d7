package documents

import "context"

// Repo defines persistence operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	ListByProject(ctx context.Context, projectID string) ([]Document, error)
	UpdatePositions(ctx context.Context, projectID string, orderedIDs []string) error
}
