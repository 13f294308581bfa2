package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/repository"
)

var _ repository.CreditsRepository = (*DB)(nil)

// ConsumeCredit is the gate in front of every AI generation.
//
// The sequence is:
//  1. INSERT ... ON CONFLICT DO NOTHING seeds the ledger with the free
//     allowance on first use (a no-op afterwards);
//  2. subscribed users pass without touching the counter;
//  3. otherwise a single conditional UPDATE decrements only while
//     free_credits > 0 — RowsAffected tells us whether we won.
//
// Step 3 is deliberately NOT a read-check-write: two concurrent requests
// both race the same UPDATE and SQLite serializes them, so exactly as many
// decrements happen as there were credits. The CHECK(free_credits >= 0)
// constraint backs this up at the schema level.
func (db *DB) ConsumeCredit(ctx context.Context, userID string) (bool, error) {
	if err := db.ensureCredits(ctx, userID); err != nil {
		return false, err
	}

	var subscribed bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT is_subscribed FROM credits WHERE user_id = ?`,
		userID,
	).Scan(&subscribed)
	if err != nil {
		return false, fmt.Errorf("sqlite: reading subscription flag: %w", err)
	}
	if subscribed {
		return true, nil
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE credits
		 SET free_credits = free_credits - 1, updated_at = ?
		 WHERE user_id = ? AND free_credits > 0 AND is_subscribed = 0`,
		time.Now(), userID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: decrementing credits: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// GetCredits returns the ledger, creating it lazily so the credits endpoint
// never 404s for a user who simply hasn't generated anything yet.
func (db *DB) GetCredits(ctx context.Context, userID string) (*model.Credits, error) {
	if err := db.ensureCredits(ctx, userID); err != nil {
		return nil, err
	}

	var (
		credits model.Credits
		subEnd  sql.NullTime
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, free_credits, is_subscribed, subscription_end, created_at, updated_at
		 FROM credits
		 WHERE user_id = ?`,
		userID,
	).Scan(
		&credits.UserID,
		&credits.FreeCredits,
		&credits.IsSubscribed,
		&subEnd,
		&credits.CreatedAt,
		&credits.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting credits for user %s: %w", userID, err)
	}

	if subEnd.Valid {
		credits.SubscriptionEnd = &subEnd.Time
	}

	return &credits, nil
}

// SetSubscribed mirrors the subscription state onto the ledger so the
// credit gate can answer without a join. Called only from the billing
// webhook path.
func (db *DB) SetSubscribed(ctx context.Context, userID string, subscribed bool, periodEnd *time.Time) error {
	if err := db.ensureCredits(ctx, userID); err != nil {
		return err
	}

	_, err := db.conn.ExecContext(ctx,
		`UPDATE credits
		 SET is_subscribed = ?, subscription_end = ?, updated_at = ?
		 WHERE user_id = ?`,
		subscribed, nullableTime(periodEnd), time.Now(), userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting subscription flag: %w", err)
	}

	return nil
}

// ensureCredits seeds the ledger row with the free allowance. ON CONFLICT
// DO NOTHING makes it safe to call from concurrent requests — only one
// insert wins, the rest are no-ops.
func (db *DB) ensureCredits(ctx context.Context, userID string) error {
	now := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO credits (user_id, free_credits, is_subscribed, created_at, updated_at)
		 VALUES (?, ?, 0, ?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		userID, model.FreeCredits, now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: seeding credits for user %s: %w", userID, err)
	}

	return nil
}
