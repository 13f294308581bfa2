package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/repository"
)

var _ repository.MatchRepository = (*DB)(nil)

// UpsertMatchScore writes the score for one (user, job) pair.
//
// ON CONFLICT ... DO UPDATE makes recomputation overwrite the existing row
// in one statement: there is exactly one score per pair, never a history,
// and concurrent recomputations can't produce duplicates. The original row's
// id and the conflict target (user_id, job_id) are left untouched.
func (db *DB) UpsertMatchScore(ctx context.Context, score *model.MatchScore) error {
	if score.ID == "" {
		score.ID = xid.New().String()
	}
	score.CalculatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO match_scores (id, user_id, job_id, score, explanation, calculated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, job_id) DO UPDATE SET
		     score = excluded.score,
		     explanation = excluded.explanation,
		     calculated_at = excluded.calculated_at`,
		score.ID,
		score.UserID,
		score.JobID,
		score.Score,
		score.Explanation,
		score.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting match score: %w", err)
	}

	return nil
}

// ListMatchScores returns up to limit of the user's scores, best first.
func (db *DB) ListMatchScores(ctx context.Context, userID string, limit int) ([]model.MatchScore, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, job_id, score, explanation, calculated_at
		 FROM match_scores
		 WHERE user_id = ?
		 ORDER BY score DESC, calculated_at DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing match scores: %w", err)
	}
	defer rows.Close()

	scores := make([]model.MatchScore, 0, limit)
	for rows.Next() {
		var s model.MatchScore
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.JobID, &s.Score, &s.Explanation, &s.CalculatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning match score row: %w", err)
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating match scores: %w", err)
	}

	return scores, nil
}

// CountMatchesAbove counts the user's scores strictly above threshold. The
// daily brief uses this as its "new opportunities" stat.
func (db *DB) CountMatchesAbove(ctx context.Context, userID string, threshold int) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM match_scores WHERE user_id = ? AND score > ?`,
		userID, threshold,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting match scores: %w", err)
	}

	return count, nil
}
