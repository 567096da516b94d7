package voices

import "time"

// Sample is one raw audio recording owned by a user, usable as cloning
// input. Samples are referenced, never mutated, except for the eligibility
// flag.
type Sample struct {
	ID         string
	UserID     string
	StorageKey string
	MimeType   string
	SizeBytes  int64
	Eligible   bool
	CreatedAt  time.Time
}

// Identity is a cloned voice. The ID is the opaque identifier assigned by
// the external synthesis provider; a row exists only after a fully
// successful clone, and is never updated.
type Identity struct {
	ID        string
	UserID    string
	Label     string
	CreatedAt time.Time
}
