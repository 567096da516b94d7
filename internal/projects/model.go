package projects

import "time"

// Project is a user-owned collection of documents narrated in sequence.
type Project struct {
	ID          string
	UserID      string
	Title       string
	Author      string
	Description string
	CreatedAt   time.Time
}
