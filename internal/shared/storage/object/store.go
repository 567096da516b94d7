package object

import (
	"context"
	"errors"
	"io"
)

// ObjectStore defines the contract for saving and retrieving binary objects.
// Writes are last-writer-wins by key; there is no versioning. The store
// never retries internally — callers classify failures via ErrNotFound and
// ErrUnavailable and decide their own retry policy.
type ObjectStore interface {
	// Save stores the reader contents under the user's namespace and
	// returns the generated storage key.
	Save(ctx context.Context, userID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)

	// SaveWithKey stores the reader contents at an exact storage key,
	// overwriting any previous object at that key.
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (sizeBytes int64, err error)

	// Open retrieves a stored object for reading.
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

var (
	// ErrNotFound indicates no object exists at the requested key. The
	// condition is permanent for that key; retrying will not help.
	ErrNotFound = errors.New("object not found")

	// ErrUnavailable indicates a transient backend failure. The caller may
	// safely retry the same operation.
	ErrUnavailable = errors.New("object store unavailable")
)
