package voices

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a sample or identity was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden indicates an ownership mismatch.
	ErrForbidden = errors.New("forbidden")

	// ErrTooLarge indicates the upload exceeds the size limit.
	ErrTooLarge = errors.New("file size exceeds limit")

	// ErrUnsupportedType indicates a non-audio upload.
	ErrUnsupportedType = errors.New("file type not supported")

	// ErrNoSamples indicates a clone request with no usable samples. It is
	// raised before any external call is made.
	ErrNoSamples = errors.New("no samples to clone from")

	// ErrSampleUnavailable indicates a sample's bytes could not be fetched.
	// The clone is all-or-nothing: nothing is persisted when any fetch
	// fails.
	ErrSampleUnavailable = errors.New("sample unavailable")
)

// PersistFailedError reports that the provider created a voice but the
// local insert failed afterwards. VoiceID is the orphaned provider-side
// voice; it is surfaced so the caller can retry persistence or clean up,
// instead of re-running the billed clone call.
type PersistFailedError struct {
	VoiceID string
	Err     error
}

func (e *PersistFailedError) Error() string {
	return fmt.Sprintf("voice %s created by provider but not persisted: %v", e.VoiceID, e.Err)
}

func (e *PersistFailedError) Unwrap() error { return e.Err }
