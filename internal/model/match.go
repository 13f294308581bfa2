package model

import "time"

// MatchScore is the persisted result of the scoring engine for one
// (user, job) pair. Recomputation overwrites the row in place — there is
// exactly one score per pair (UNIQUE(user_id, job_id)), never a history.
type MatchScore struct {
	ID           string    `json:"id"           db:"id"`
	UserID       string    `json:"userId"       db:"user_id"`
	JobID        string    `json:"jobId"        db:"job_id"`
	Score        int       `json:"score"        db:"score"` // 0..100
	Explanation  string    `json:"explanation"  db:"explanation"`
	CalculatedAt time.Time `json:"calculatedAt" db:"calculated_at"`
}
