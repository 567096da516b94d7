package synthesis

import "errors"

var (
	// ErrEmptyText means the request contained no text to synthesize.
	ErrEmptyText = errors.New("text is empty")
	// ErrForbidden means the voice is neither owned by the user nor public.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput means the request failed validation.
	ErrInvalidInput = errors.New("invalid input")
)

// StorageFailedError reports that the provider produced audio but the
// object store write failed. The synthesized bytes are carried so the
// caller can still deliver them.
type StorageFailedError struct {
	Audio []byte
	Err   error
}

func (e *StorageFailedError) Error() string {
	return "audio synthesized but storage failed: " + e.Err.Error()
}

func (e *StorageFailedError) Unwrap() error { return e.Err }
