package synthesis

import "time"

// Event is one append-only record of a synthesis attempt. Events are
// written for failures as well as successes and are never updated.
type Event struct {
	ID               string
	UserID           string
	InitiatedAt      time.Time
	Successful       bool
	SourceDocumentID *string
	OutputKey        *string
	VoiceUsed        string
	AudioLength      int64
}
