package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/alternagen/api/internal/apperror"
	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/repository"
)

var _ repository.SubscriptionRepository = (*DB)(nil)

// UpsertSubscription writes the subscription keyed on user_id. A checkout
// completed for a user who already has a row (re-subscribe after cancel)
// overwrites it — one active row per user.
func (db *DB) UpsertSubscription(ctx context.Context, sub *model.Subscription) error {
	if sub.ID == "" {
		sub.ID = xid.New().String()
	}
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO subscriptions (id, user_id, external_id, plan_code, status, period_end, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		     external_id = excluded.external_id,
		     plan_code = excluded.plan_code,
		     status = excluded.status,
		     period_end = excluded.period_end,
		     updated_at = excluded.updated_at`,
		sub.ID,
		sub.UserID,
		sub.ExternalID,
		sub.PlanCode,
		sub.Status,
		nullableTime(sub.PeriodEnd),
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting subscription: %w", err)
	}

	return nil
}

func (db *DB) GetSubscriptionByUserID(ctx context.Context, userID string) (*model.Subscription, error) {
	var (
		sub       model.Subscription
		periodEnd sql.NullTime
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, external_id, plan_code, status, period_end, created_at, updated_at
		 FROM subscriptions
		 WHERE user_id = ?`,
		userID,
	).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.ExternalID,
		&sub.PlanCode,
		&sub.Status,
		&periodEnd,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("subscription", userID)
		}
		return nil, fmt.Errorf("sqlite: getting subscription for user %s: %w", userID, err)
	}

	if periodEnd.Valid {
		sub.PeriodEnd = &periodEnd.Time
	}

	return &sub, nil
}

// UpdateSubscriptionByExternalID applies a processor-side change (status,
// period end) to the row carrying that subscription id, returning the owning
// user so the caller can mirror the change onto the credits ledger. An
// unknown external id returns ("", nil): events for subscriptions we never
// recorded are skipped, not errors.
func (db *DB) UpdateSubscriptionByExternalID(ctx context.Context, externalID, status string, periodEnd *time.Time) (string, error) {
	var userID string
	err := db.conn.QueryRowContext(ctx,
		`UPDATE subscriptions
		 SET status = ?, period_end = COALESCE(?, period_end), updated_at = ?
		 WHERE external_id = ?
		 RETURNING user_id`,
		status, nullableTime(periodEnd), time.Now(), externalID,
	).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("sqlite: updating subscription %s: %w", externalID, err)
	}

	return userID, nil
}
