package documents

import "time"

// Document represents an uploaded document owned by a project.
// ExtractedText is set exactly when the media type is text-extractable;
// documents are immutable after upload except for their position in the
// project's narration order.
type Document struct {
	ID            string
	ProjectID     string
	UserID        string
	FileName      string
	MimeType      string
	SizeBytes     int64
	StorageKey    string
	ExtractedText *string
	Position      int
	CreatedAt     time.Time
}
