package model

import "time"

// WebhookEvent records a payment-processor event that has already been
// applied. Presence of a row means "seen" — rows are inserted once and never
// updated. The UNIQUE constraint on event_id is what makes the idempotency
// guard safe under concurrent duplicate delivery.
type WebhookEvent struct {
	EventID   string    `json:"eventId"   db:"event_id"`
	EventType string    `json:"eventType" db:"event_type"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
