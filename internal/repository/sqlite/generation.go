package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/alternagen/api/internal/model"
	"github.com/alternagen/api/internal/repository"
)

var _ repository.GenerationRepository = (*DB)(nil)

func (db *DB) CreateGeneration(ctx context.Context, gen *model.Generation) error {
	gen.ID = xid.New().String()
	gen.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO generations (id, user_id, type, input, output, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		gen.ID,
		gen.UserID,
		gen.Type,
		gen.Input,
		gen.Output,
		gen.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating generation: %w", err)
	}

	return nil
}

func (db *DB) ListGenerations(ctx context.Context, userID string, limit int) ([]model.Generation, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, type, input, output, created_at
		 FROM generations
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing generations: %w", err)
	}
	defer rows.Close()

	gens := make([]model.Generation, 0, limit)
	for rows.Next() {
		var g model.Generation
		if err := rows.Scan(
			&g.ID, &g.UserID, &g.Type, &g.Input, &g.Output, &g.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning generation row: %w", err)
		}
		gens = append(gens, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating generations: %w", err)
	}

	return gens, nil
}
