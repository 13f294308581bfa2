package model

import "time"

// ApplicationStatus tracks where an application stands in the funnel.
type ApplicationStatus string

const (
	StatusSaved     ApplicationStatus = "SAVED"
	StatusApplied   ApplicationStatus = "APPLIED"
	StatusInterview ApplicationStatus = "INTERVIEW"
	StatusOffer     ApplicationStatus = "OFFER"
	StatusRejected  ApplicationStatus = "REJECTED"
)

// Valid reports whether s is one of the known application statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusSaved, StatusApplied, StatusInterview, StatusOffer, StatusRejected:
		return true
	}
	return false
}

// Application links a user to a saved job with a funnel status and free-form
// notes. One application per (user, job) pair — UNIQUE(user_id, job_id) in the
// DB. AppliedAt is nil until the user records when they actually applied.
type Application struct {
	ID        string            `json:"id"        db:"id"`
	UserID    string            `json:"userId"    db:"user_id"`
	JobID     string            `json:"jobId"     db:"job_id"`
	Status    ApplicationStatus `json:"status"    db:"status"`
	Notes     string            `json:"notes"     db:"notes"`
	AppliedAt *time.Time        `json:"appliedAt" db:"applied_at"`
	CreatedAt time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time         `json:"updatedAt" db:"updated_at"`
}
