package model

import "time"

// Job is a job posting saved by a user, either manually or through the
// browser-extension ingest path. The (user_id, url) pair is UNIQUE in the DB:
// saving the same posting twice is a conflict, not a second row.
type Job struct {
	ID           string    `json:"id"           db:"id"`
	UserID       string    `json:"userId"       db:"user_id"`
	Title        string    `json:"title"        db:"title"`
	Company      string    `json:"company"      db:"company"`
	Location     string    `json:"location"     db:"location"`
	Description  string    `json:"description"  db:"description"`
	Requirements string    `json:"requirements" db:"requirements"`
	URL          string    `json:"url"          db:"url"`
	Source       string    `json:"source"       db:"source"` // e.g. "Manual", "Extension"
	SavedAt      time.Time `json:"savedAt"      db:"saved_at"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
}
