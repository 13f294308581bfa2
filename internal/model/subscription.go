package model

import "time"

// Subscription plan codes and the processor statuses we care about.
const (
	PlanPro = "PRO"

	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
)

// Subscription mirrors the payment processor's state for a user. One active
// row per user (UNIQUE user_id); it is created and mutated exclusively by
// admitted webhook events — request handlers only ever read it.
type Subscription struct {
	ID         string     `json:"id"         db:"id"`
	UserID     string     `json:"userId"     db:"user_id"`
	ExternalID string     `json:"externalId" db:"external_id"` // processor's subscription id
	PlanCode   string     `json:"planCode"   db:"plan_code"`
	Status     string     `json:"status"     db:"status"` // processor-reported, e.g. "active"
	PeriodEnd  *time.Time `json:"periodEnd"  db:"period_end"`
	CreatedAt  time.Time  `json:"createdAt"  db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt"  db:"updated_at"`
}

// IsActivePro reports whether the subscription currently grants PRO features.
func (s *Subscription) IsActivePro() bool {
	return s != nil && s.PlanCode == PlanPro && s.Status == SubscriptionActive
}
