package synthesis

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	events []Event
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// CreateEvent appends one synthesis event.
func (r *MemoryRepo) CreateEvent(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// ListEventsByUser lists a user's synthesis events newest-first.
func (r *MemoryRepo) ListEventsByUser(ctx context.Context, userID string, limit int) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []Event
	for _, event := range r.events {
		if event.UserID == userID {
			out = append(out, event)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].InitiatedAt.After(out[j].InitiatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetEventByOutputKey returns the user's event for one stored output.
func (r *MemoryRepo) GetEventByOutputKey(ctx context.Context, userID, outputKey string) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, event := range r.events {
		if event.UserID == userID && event.OutputKey != nil && *event.OutputKey == outputKey {
			return event, nil
		}
	}
	return Event{}, ErrNotFound
}

var _ Repo = (*MemoryRepo)(nil)
