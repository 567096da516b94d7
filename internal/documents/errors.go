package documents

import "errors"

var (
	// ErrNotFound indicates the document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden indicates the document belongs to another user.
	ErrForbidden = errors.New("forbidden")

	// ErrTooLarge indicates the upload exceeds the size limit.
	ErrTooLarge = errors.New("file size exceeds limit")

	// ErrUnsupportedType indicates the media type is not in the allow-list.
	ErrUnsupportedType = errors.New("file type not supported")

	// ErrBadSequence indicates a reorder request that does not match the
	// project's document set exactly.
	ErrBadSequence = errors.New("sequence does not match project documents")
)
