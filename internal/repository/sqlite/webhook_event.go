package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/alternagen/api/internal/repository"
)

var _ repository.WebhookEventRepository = (*DB)(nil)

// AdmitWebhookEvent records an event id and reports whether it was seen for
// the first time. The INSERT races against the PRIMARY KEY on event_id, so
// two concurrent deliveries of the same event cannot both be admitted: one
// insert succeeds, the other hits the constraint and returns false.
func (db *DB) AdmitWebhookEvent(ctx context.Context, eventID, eventType string) (bool, error) {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO webhook_events (event_id, event_type, created_at) VALUES (?, ?, ?)`,
		eventID, eventType, time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("sqlite: admitting webhook event %s: %w", eventID, err)
	}

	return true, nil
}
