package synthesis

import "context"

// Repo defines persistence operations for synthesis events.
type Repo interface {
	CreateEvent(ctx context.Context, event Event) error
	ListEventsByUser(ctx context.Context, userID string, limit int) ([]Event, error)
	GetEventByOutputKey(ctx context.Context, userID, outputKey string) (Event, error)
}
