package model

import "time"

// GenerationType is the kind of document the AI backend produced.
type GenerationType string

const (
	GenerationCV          GenerationType = "CV"
	GenerationCoverLetter GenerationType = "COVER_LETTER"
)

// Generation is one stored AI-generation result. Input keeps the JSON the
// user submitted so a generation can be re-run or audited later; Output is
// the raw text blob returned by the backend.
type Generation struct {
	ID        string         `json:"id"        db:"id"`
	UserID    string         `json:"userId"    db:"user_id"`
	Type      GenerationType `json:"type"      db:"type"`
	Input     string         `json:"input"     db:"input"`
	Output    string         `json:"output"    db:"output"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
}
